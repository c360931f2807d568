package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// descriptionByteBudget caps the free-text description sent to the
// enrichment service.
const descriptionByteBudget = 6000

// EnrichmentService applies async enrichment results pushed back by the
// external enrichment consumer, anchored to an existing job post by finn_id.
type EnrichmentService struct {
	resolver  *Resolver
	links     *LinkReconciler
	jobs      repository.JobPostsRepository
	companies repository.CompaniesRepository
}

// NewEnrichmentService wires the enrichment-result applier.
func NewEnrichmentService(resolver *Resolver, links *LinkReconciler, jobs repository.JobPostsRepository, companies repository.CompaniesRepository) *EnrichmentService {
	return &EnrichmentService{resolver: resolver, links: links, jobs: jobs, companies: companies}
}

// ApplyResult merges an enrichment result into the store. Company fields
// null-fill only; person rows go through the resolver so repeated results
// never create duplicates. Returns repository.ErrJobPostNotFound when the
// finn_id anchors nothing.
func (s *EnrichmentService) ApplyResult(ctx context.Context, req dto.EnrichmentResultRequest) (dto.EnrichmentApplyResponse, error) {
	var resp dto.EnrichmentApplyResponse

	finnID := strings.TrimSpace(req.FinnID)
	if finnID == "" {
		return resp, ValidationErrors{{Field: "finn_id", Message: "is required"}}
	}

	job, err := s.jobs.FindByFinnID(ctx, finnID)
	if err != nil {
		return resp, err
	}
	company, err := s.companies.FindByID(ctx, job.CompanyID)
	if err != nil {
		return resp, err
	}

	if req.Company != nil {
		fields := map[string]any{
			"orgnr":             normalize.OrgNr(req.Company.OrgNr),
			"industry":          strings.TrimSpace(req.Company.Industry),
			"company_size":      strings.TrimSpace(req.Company.CompanySize),
			"location":          strings.TrimSpace(req.Company.Location),
			"sector":            strings.TrimSpace(req.Company.Sector),
			"proff_url":         strings.TrimSpace(req.Company.ProffURL),
			"profit_before_tax": strings.TrimSpace(req.Company.ProfitBeforeTax),
			"turnover":          strings.TrimSpace(req.Company.Turnover),
		}
		changed, err := s.resolver.MergeCompanyFields(ctx, company, fields)
		if err != nil {
			return resp, fmt.Errorf("merge company fields: %w", err)
		}
		resp.CompanyChangedFields = changed
	}

	var (
		companyLinks []entity.CompanyPerson
		jobLinks     []entity.JobPostPerson
	)
	apply := func(people []dto.EnrichmentPersonInput, role entity.Role) error {
		for _, input := range people {
			res, ok, err := s.resolveEnrichedPerson(ctx, input, company)
			if err != nil {
				return err
			}
			if !ok {
				resp.SkippedPeople++
				continue
			}
			if res.Created {
				resp.PeopleCreated++
			} else {
				resp.PeopleMatched++
			}
			companyLinks = append(companyLinks, entity.CompanyPerson{CompanyID: company.ID, PersonID: res.Person.ID, Role: role})
			jobLinks = append(jobLinks, entity.JobPostPerson{JobPostID: job.ID, PersonID: res.Person.ID, Role: role})
		}
		return nil
	}
	if err := apply(req.DecisionMakers, entity.RoleDecisionMaker); err != nil {
		return resp, err
	}
	if err := apply(req.ContactPersons, entity.RoleContactPerson); err != nil {
		return resp, err
	}

	resp.CompanyPeople, err = s.links.ReconcileCompanyPeople(ctx, companyLinks)
	if err != nil {
		return resp, fmt.Errorf("reconcile company links: %w", err)
	}
	resp.JobPostPeople, err = s.links.ReconcileJobPostPeople(ctx, job.ID, company.ID, jobLinks)
	if err != nil {
		return resp, fmt.Errorf("reconcile job post links: %w", err)
	}
	return resp, nil
}

func (s *EnrichmentService) resolveEnrichedPerson(ctx context.Context, input dto.EnrichmentPersonInput, company *entity.Company) (PersonResolution, bool, error) {
	name := strings.TrimSpace(input.FullName)
	hasStrongSignal := normalize.LinkedInURL(input.LinkedInURL) != "" ||
		normalize.Email(input.Email) != "" ||
		normalize.Phone(input.Phone) != ""
	if !normalize.ValidPersonName(name) && !hasStrongSignal {
		return PersonResolution{}, false, nil
	}

	domain := ""
	if company.CleanDomain != nil {
		domain = *company.CleanDomain
	}
	candidate, err := BuildPersonCandidate(name, input.Title, input.Email, input.Phone, input.LinkedInURL, company.CompanyKey, domain)
	if err != nil {
		return PersonResolution{}, false, nil
	}

	res, err := s.resolver.ResolvePerson(ctx, candidate)
	if err != nil {
		return PersonResolution{}, false, fmt.Errorf("resolve person %q: %w", name, err)
	}
	return res, true, nil
}

// BuildEnrichmentPayload assembles the outbound webhook body for a posting:
// job and company fields plus the decision makers and contact persons
// currently linked to the posting, with compact text renderings and the
// description truncated to the byte budget.
func (s *IngestService) BuildEnrichmentPayload(ctx context.Context, job *entity.JobPost, company *entity.Company) (*dto.EnrichmentPayload, error) {
	links, err := s.linkRepo.ListJobPostPeople(ctx, []uuid.UUID{job.ID})
	if err != nil {
		return nil, fmt.Errorf("list job post links: %w", err)
	}

	roleByPerson := make(map[uuid.UUID]entity.Role, len(links))
	ids := make([]uuid.UUID, 0, len(links))
	for _, link := range links {
		if existing, ok := roleByPerson[link.PersonID]; ok {
			// Decision maker outranks any other role held by the same person.
			if existing == entity.RoleDecisionMaker || link.Role != entity.RoleDecisionMaker {
				continue
			}
		} else {
			ids = append(ids, link.PersonID)
		}
		roleByPerson[link.PersonID] = link.Role
	}

	people, err := s.people.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list linked people: %w", err)
	}
	sort.Slice(people, func(i, j int) bool { return people[i].FullName < people[j].FullName })

	var decisionMakers, contacts []dto.EnrichmentPerson
	for _, person := range people {
		rendered := renderEnrichmentPerson(person)
		if roleByPerson[person.ID] == entity.RoleDecisionMaker {
			decisionMakers = append(decisionMakers, rendered)
		} else {
			contacts = append(contacts, rendered)
		}
	}

	payload := &dto.EnrichmentPayload{
		FinnID:             job.FinnID,
		FinnURL:            job.FinnURL,
		Title:              job.Title,
		CompanyKey:         company.CompanyKey,
		CompanyName:        company.Name,
		DecisionMakers:     decisionMakers,
		ContactPersons:     contacts,
		DecisionMakersText: renderPersonLines(decisionMakers),
		ContactPersonsText: renderPersonLines(contacts),
	}
	if job.Description != nil {
		payload.Description = TruncateUTF8(*job.Description, descriptionByteBudget)
	}
	if job.Location != nil {
		payload.Location = *job.Location
	}
	if job.Sector != nil {
		payload.Sector = *job.Sector
	}
	if company.CleanDomain != nil {
		payload.CompanyDomain = *company.CleanDomain
	}
	if company.OrgNr != nil {
		payload.OrgNr = *company.OrgNr
	}
	if company.Industry != nil {
		payload.Industry = *company.Industry
	}
	if company.CompanySize != nil {
		payload.CompanySize = *company.CompanySize
	}
	if company.ProffURL != nil {
		payload.ProffURL = *company.ProffURL
	}
	return payload, nil
}

func renderEnrichmentPerson(person entity.Person) dto.EnrichmentPerson {
	rendered := dto.EnrichmentPerson{FullName: person.FullName}
	if person.Title != nil {
		rendered.Title = *person.Title
	}
	if person.Email != nil {
		rendered.Email = *person.Email
	}
	if person.Phone != nil {
		if e164 := normalize.PhoneE164(*person.Phone); e164 != "" {
			rendered.Phone = e164
		} else {
			rendered.Phone = *person.Phone
		}
	}
	if person.LinkedInURL != nil {
		rendered.LinkedInURL = *person.LinkedInURL
	}
	return rendered
}

// renderPersonLines produces one comma-joined line per person: name, title,
// email, phone, LinkedIn, skipping absent fields.
func renderPersonLines(people []dto.EnrichmentPerson) string {
	lines := make([]string, 0, len(people))
	for _, person := range people {
		var parts []string
		for _, part := range []string{person.FullName, person.Title, person.Email, person.Phone, person.LinkedInURL} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, ", "))
		}
	}
	return strings.Join(lines, "\n")
}

// TruncateUTF8 cuts a string to at most max bytes without splitting a rune,
// preferring a paragraph boundary, then a sentence boundary, when one falls
// in the second half of the budget.
func TruncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	prefix := s[:max]

	if idx := strings.LastIndex(prefix, "\n\n"); idx >= max/2 {
		return strings.TrimSpace(prefix[:idx])
	}

	sentenceEnd := -1
	for _, boundary := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if idx := strings.LastIndex(prefix, boundary); idx > sentenceEnd {
			sentenceEnd = idx
		}
	}
	if sentenceEnd >= max/2 {
		return strings.TrimSpace(prefix[:sentenceEnd+1])
	}
	return strings.TrimSpace(prefix)
}
