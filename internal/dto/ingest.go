package dto

// ContactPersonInput is one contact attached to an inbound posting.
type ContactPersonInput struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Email       string `json:"email,omitempty"`
	LinkedIn    string `json:"linkedin,omitempty"`
}

// IngestJobRequest is the inbound contract for a single scraped job posting.
// URL, Title, Description and Company are required; a posting identifier must
// be derivable from URL or supplied as Finnkode.
type IngestJobRequest struct {
	URL               string               `json:"url"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	Company           string               `json:"company"`
	ContactPersons    []ContactPersonInput `json:"contactPersons,omitempty"`
	ApplicationURL    string               `json:"applicationUrl,omitempty"`
	Location          string               `json:"location,omitempty"`
	EmploymentType    string               `json:"employmentType,omitempty"`
	Salary            string               `json:"salary,omitempty"`
	PublicationDate   string               `json:"publicationDate,omitempty"`
	ExpirationDate    string               `json:"expirationDate,omitempty"`
	CompanyLogoURL    string               `json:"companyLogoUrl,omitempty"`
	Domain            string               `json:"domain,omitempty"`
	OrgNr             string               `json:"orgnr,omitempty"`
	Sector            string               `json:"sector,omitempty"`
	Industries        []string             `json:"industries,omitempty"`
	PositionFunctions []string             `json:"positionFunctions,omitempty"`
	Language          string               `json:"language,omitempty"`
	Finnkode          string               `json:"finnkode,omitempty"`
	Source            string               `json:"source,omitempty"`
}

// ValidationError reports a single field-level problem with an inbound
// payload.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// EntityOutcome reports how one entity was affected by an ingestion.
type EntityOutcome struct {
	Key             string   `json:"key"`
	Created         bool     `json:"created"`
	MatchedExisting bool     `json:"matched_existing"`
	ChangedFields   []string `json:"changed_fields,omitempty"`
}

// LinkOutcome reports link-table accounting for a batch.
type LinkOutcome struct {
	Inserted int `json:"inserted"`
	Existing int `json:"existing"`
}

// IngestJobResponse is the per-entity accounting returned after ingesting a
// posting.
type IngestJobResponse struct {
	Company        EntityOutcome   `json:"company"`
	JobPost        EntityOutcome   `json:"job_post"`
	People         []EntityOutcome `json:"people"`
	SkippedPeople  int             `json:"skipped_people"`
	CompanyPeople  LinkOutcome     `json:"company_people"`
	JobPostPeople  LinkOutcome     `json:"job_post_people"`
}
