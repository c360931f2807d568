package dto

// EnrichmentPersonInput is one person row in an enrichment-result payload.
type EnrichmentPersonInput struct {
	FullName    string `json:"full_name"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// EnrichmentCompanyInput carries the company enrichment fields returned by
// the external enrichment service. All fields are optional; only non-empty
// values are merged, and never over existing non-null data.
type EnrichmentCompanyInput struct {
	OrgNr           string `json:"orgnr,omitempty"`
	Industry        string `json:"industry,omitempty"`
	CompanySize     string `json:"company_size,omitempty"`
	Location        string `json:"location,omitempty"`
	Sector          string `json:"sector,omitempty"`
	ProffURL        string `json:"proff_url,omitempty"`
	ProfitBeforeTax string `json:"profit_before_tax,omitempty"`
	Turnover        string `json:"turnover,omitempty"`
}

// EnrichmentResultRequest is the async correction payload posted back by the
// enrichment service, anchored to an existing job post by finn_id.
type EnrichmentResultRequest struct {
	FinnID         string                  `json:"finn_id"`
	Company        *EnrichmentCompanyInput `json:"company,omitempty"`
	DecisionMakers []EnrichmentPersonInput `json:"decision_makers"`
	ContactPersons []EnrichmentPersonInput `json:"contact_persons"`
}

// EnrichmentApplyResponse reports what an enrichment result changed.
type EnrichmentApplyResponse struct {
	CompanyChangedFields []string    `json:"company_changed_fields"`
	PeopleCreated        int         `json:"people_created"`
	PeopleMatched        int         `json:"people_matched"`
	SkippedPeople        int         `json:"skipped_people"`
	CompanyPeople        LinkOutcome `json:"company_people"`
	JobPostPeople        LinkOutcome `json:"job_post_people"`
}

// EnrichmentPerson is one person entry in the outbound enrichment payload.
type EnrichmentPerson struct {
	FullName    string `json:"full_name"`
	Title       string `json:"title,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// EnrichmentPayload is the outbound webhook body sent to the enrichment
// service after a posting has been ingested.
type EnrichmentPayload struct {
	FinnID             string             `json:"finn_id"`
	FinnURL            string             `json:"finn_url"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Location           string             `json:"location,omitempty"`
	Sector             string             `json:"sector,omitempty"`
	CompanyKey         string             `json:"company_key"`
	CompanyName        string             `json:"company_name"`
	CompanyDomain      string             `json:"company_domain,omitempty"`
	OrgNr              string             `json:"orgnr,omitempty"`
	Industry           string             `json:"industry,omitempty"`
	CompanySize        string             `json:"company_size,omitempty"`
	ProffURL           string             `json:"proff_url,omitempty"`
	DecisionMakers     []EnrichmentPerson `json:"decision_makers"`
	ContactPersons     []EnrichmentPerson `json:"contact_persons"`
	DecisionMakersText string             `json:"decision_makers_text"`
	ContactPersonsText string             `json:"contact_persons_text"`
}
