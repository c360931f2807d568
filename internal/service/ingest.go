package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/keys"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// defaultSource tags postings whose payload does not name the scraper that
// produced them.
const defaultSource = "api"

// ValidationErrors aggregates field-level payload problems. The payload is
// rejected before any side effect.
type ValidationErrors []dto.ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, v := range e {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "invalid payload: " + strings.Join(parts, "; ")
}

// IngestService orchestrates single-posting ingestion: normalization, key
// derivation, identity resolution and link reconciliation, in that order.
// Each store call commits independently; an aborted request leaves the
// writes already made, which re-ingestion converges back into one row set.
type IngestService struct {
	resolver *Resolver
	links    *LinkReconciler
	people   repository.PeopleRepository
	linkRepo repository.LinksRepository
}

// NewIngestService wires the ingestion orchestrator.
func NewIngestService(resolver *Resolver, links *LinkReconciler, people repository.PeopleRepository, linkRepo repository.LinksRepository) *IngestService {
	return &IngestService{resolver: resolver, links: links, people: people, linkRepo: linkRepo}
}

// ValidatePayload checks the inbound contract: url, title, description and
// company are required, and a posting identifier must be derivable.
func ValidatePayload(req dto.IngestJobRequest) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(req.URL) == "" {
		errs = append(errs, dto.ValidationError{Field: "url", Message: "is required"})
	}
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, dto.ValidationError{Field: "title", Message: "is required"})
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, dto.ValidationError{Field: "description", Message: "is required"})
	}
	if strings.TrimSpace(req.Company) == "" {
		errs = append(errs, dto.ValidationError{Field: "company", Message: "is required"})
	}
	if strings.TrimSpace(req.URL) != "" || strings.TrimSpace(req.Finnkode) != "" {
		if _, err := keys.FinnID(req.URL, req.Finnkode); err != nil {
			errs = append(errs, dto.ValidationError{Field: "url", Message: "no posting id in url and no finnkode supplied"})
		}
	}
	return errs
}

// IngestJob processes one posting end to end and returns the per-entity
// accounting plus the outbound enrichment payload for the caller to deliver
// after the response has been committed.
func (s *IngestService) IngestJob(ctx context.Context, req dto.IngestJobRequest) (dto.IngestJobResponse, *dto.EnrichmentPayload, error) {
	var resp dto.IngestJobResponse

	if errs := ValidatePayload(req); len(errs) > 0 {
		return resp, nil, errs
	}

	finnID, err := keys.FinnID(req.URL, req.Finnkode)
	if err != nil {
		return resp, nil, fmt.Errorf("posting %q: %w", req.URL, err)
	}

	companyCandidate, err := BuildCompanyCandidate(req.Company, req.Domain, req.OrgNr)
	if err != nil {
		return resp, nil, err
	}
	companyRes, err := s.resolver.ResolveCompany(ctx, companyCandidate)
	if err != nil {
		return resp, nil, fmt.Errorf("resolve company: %w", err)
	}
	company := companyRes.Company
	resp.Company = dto.EntityOutcome{
		Key:             company.CompanyKey,
		Created:         companyRes.Created,
		MatchedExisting: !companyRes.Created,
		ChangedFields:   companyRes.ChangedFields,
	}

	jobCandidate := buildJobPostCandidate(finnID, company, req)
	jobRes, err := s.resolver.ResolveJobPost(ctx, jobCandidate)
	if err != nil {
		return resp, nil, fmt.Errorf("resolve job post: %w", err)
	}
	job := jobRes.JobPost
	resp.JobPost = dto.EntityOutcome{
		Key:             job.FinnID,
		Created:         jobRes.Created,
		MatchedExisting: !jobRes.Created,
	}
	if jobRes.SourceMerged {
		resp.JobPost.ChangedFields = []string{"source"}
	}

	var (
		companyLinks []entity.CompanyPerson
		jobLinks     []entity.JobPostPerson
	)
	for _, contact := range DedupeContactInputs(req.ContactPersons, req.Domain, req.Company) {
		person, role, ok, err := s.resolveContact(ctx, contact, company, req.Domain)
		if err != nil {
			return resp, nil, err
		}
		if !ok {
			resp.SkippedPeople++
			continue
		}
		resp.People = append(resp.People, person.outcome)
		companyLinks = append(companyLinks, entity.CompanyPerson{CompanyID: company.ID, PersonID: person.person.ID, Role: role})
		jobLinks = append(jobLinks, entity.JobPostPerson{JobPostID: job.ID, PersonID: person.person.ID, Role: role})
	}

	// Company links first so freshly ingested decision makers propagate
	// onto the posting in the same request.
	resp.CompanyPeople, err = s.links.ReconcileCompanyPeople(ctx, companyLinks)
	if err != nil {
		return resp, nil, fmt.Errorf("reconcile company links: %w", err)
	}
	resp.JobPostPeople, err = s.links.ReconcileJobPostPeople(ctx, job.ID, company.ID, jobLinks)
	if err != nil {
		return resp, nil, fmt.Errorf("reconcile job post links: %w", err)
	}

	payload, err := s.BuildEnrichmentPayload(ctx, job, company)
	if err != nil {
		// The ingest itself succeeded; payload assembly is best-effort.
		return resp, nil, nil
	}
	return resp, payload, nil
}

type resolvedContact struct {
	person  *entity.Person
	outcome dto.EntityOutcome
}

// resolveContact normalizes and resolves one contact. A contact is skipped
// (not an error) when its name has fewer than two words and no stronger
// signal identifies it, or when no identifying signal exists at all.
func (s *IngestService) resolveContact(ctx context.Context, contact dto.ContactPersonInput, company *entity.Company, rawDomain string) (resolvedContact, entity.Role, bool, error) {
	name := strings.TrimSpace(contact.Name)
	hasStrongSignal := normalize.LinkedInURL(contact.LinkedIn) != "" ||
		normalize.Email(contact.Email) != "" ||
		normalize.Phone(contact.PhoneNumber) != ""

	if !normalize.ValidPersonName(name) && !hasStrongSignal {
		return resolvedContact{}, "", false, nil
	}

	candidate, err := BuildPersonCandidate(name, contact.Role, contact.Email, contact.PhoneNumber, contact.LinkedIn, company.CompanyKey, rawDomain)
	if err != nil {
		// No derivable key: skip this contact, keep the posting.
		return resolvedContact{}, "", false, nil
	}

	res, err := s.resolver.ResolvePerson(ctx, candidate)
	if err != nil {
		return resolvedContact{}, "", false, fmt.Errorf("resolve person %q: %w", name, err)
	}

	role := normalize.ClassifyRole(contact.Role)
	outcome := dto.EntityOutcome{
		Key:             res.Person.PersonKey,
		Created:         res.Created,
		MatchedExisting: !res.Created,
		ChangedFields:   res.ChangedFields,
	}
	return resolvedContact{person: res.Person, outcome: outcome}, role, true, nil
}

func buildJobPostCandidate(finnID string, company *entity.Company, req dto.IngestJobRequest) *entity.JobPost {
	post := &entity.JobPost{
		FinnID:    finnID,
		FinnURL:   strings.TrimSpace(req.URL),
		CompanyID: company.ID,
		Title:     strings.TrimSpace(req.Title),
		Source:    strings.TrimSpace(req.Source),
	}
	if post.Source == "" {
		post.Source = defaultSource
	}
	if desc := strings.TrimSpace(req.Description); desc != "" {
		post.Description = &desc
	}
	if appURL := strings.TrimSpace(req.ApplicationURL); appURL != "" {
		post.ApplicationURL = &appURL
	}
	if location := strings.TrimSpace(req.Location); location != "" {
		post.Location = &location
	}
	if employment := strings.TrimSpace(req.EmploymentType); employment != "" {
		post.EmploymentType = &employment
	}
	if salary := strings.TrimSpace(req.Salary); salary != "" {
		post.Salary = &salary
	}
	if published := normalize.Date(req.PublicationDate); published != "" {
		post.PublicationDate = &published
	}
	if expires := normalize.Date(req.ExpirationDate); expires != "" {
		post.ExpirationDate = &expires
	}
	if sector := strings.TrimSpace(req.Sector); sector != "" {
		post.Sector = &sector
	}

	seen := make(map[string]struct{}, len(req.Industries))
	for _, industry := range req.Industries {
		industry = strings.TrimSpace(industry)
		if industry == "" {
			continue
		}
		if _, dup := seen[industry]; dup {
			continue
		}
		seen[industry] = struct{}{}
		post.Industries = append(post.Industries, industry)
	}
	return post
}
