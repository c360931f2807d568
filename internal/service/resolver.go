package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/keys"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// Resolver decides, for a single incoming company, person or job post,
// whether it already exists in the store under any of its identifiers, and
// merges into the existing row instead of inserting a duplicate. Matching is
// optimistic: a race between two concurrent requests for the same new entity
// is settled by the store's conflict target, so one row always survives even
// when the created/updated accounting attributes it to the wrong request.
type Resolver struct {
	companies repository.CompaniesRepository
	people    repository.PeopleRepository
	jobs      repository.JobPostsRepository
}

// NewResolver wires a resolver over the three entity repositories.
func NewResolver(companies repository.CompaniesRepository, people repository.PeopleRepository, jobs repository.JobPostsRepository) *Resolver {
	return &Resolver{companies: companies, people: people, jobs: jobs}
}

// CompanyResolution reports the outcome of resolving one company.
type CompanyResolution struct {
	Company       *entity.Company
	Created       bool
	ChangedFields []string
}

// PersonResolution reports the outcome of resolving one person.
type PersonResolution struct {
	Person        *entity.Person
	Created       bool
	ChangedFields []string
}

// JobPostResolution reports the outcome of resolving one job post.
type JobPostResolution struct {
	JobPost      *entity.JobPost
	Created      bool
	SourceMerged bool
}

// BuildCompanyCandidate normalizes raw company signals into a candidate
// entity with its natural key derived. Returns keys.ErrNoIdentifier when no
// signal is strong enough.
func BuildCompanyCandidate(name, domain, orgnr string) (*entity.Company, error) {
	key, err := keys.CompanyKey(keys.CompanySignals{
		OrgNr:  orgnr,
		Domain: domain,
		Name:   name,
	})
	if err != nil {
		return nil, fmt.Errorf("company %q: %w", name, err)
	}

	candidate := &entity.Company{
		CompanyKey: key,
		Name:       strings.TrimSpace(name),
	}
	if domain = strings.TrimSpace(domain); domain != "" {
		candidate.Domain = &domain
	}
	if clean := normalize.Domain(domain); clean != "" && clean != keys.PlaceholderDomain {
		candidate.CleanDomain = &clean
	}
	if cleanName := normalize.CompanyName(name); cleanName != "" {
		candidate.CleanName = &cleanName
	}
	if normOrgNr := normalize.OrgNr(orgnr); normOrgNr != "" {
		candidate.OrgNr = &normOrgNr
	}
	return candidate, nil
}

// ResolveCompany matches the candidate against the store by orgnr, clean
// domain, clean name and finally natural key. A match is null-filled with the
// candidate's values; a miss inserts under the candidate's key with
// conflict-as-update race tolerance.
func (r *Resolver) ResolveCompany(ctx context.Context, candidate *entity.Company) (CompanyResolution, error) {
	existing, err := r.findCompany(ctx, candidate)
	if err != nil {
		return CompanyResolution{}, err
	}

	if existing == nil {
		stored, created, err := r.companies.Upsert(ctx, candidate)
		if err != nil {
			return CompanyResolution{}, err
		}
		return CompanyResolution{Company: stored, Created: created}, nil
	}

	fields := companyFieldUpdates(existing, candidate)
	changed, err := r.applyCompanyFields(ctx, existing, fields)
	if err != nil {
		return CompanyResolution{}, err
	}
	return CompanyResolution{Company: existing, ChangedFields: changed}, nil
}

// MergeCompanyFields null-fills an already-resolved company with additional
// attribute values, e.g. from an enrichment result.
func (r *Resolver) MergeCompanyFields(ctx context.Context, company *entity.Company, fields map[string]any) ([]string, error) {
	pruned := make(map[string]any, len(fields))
	for name, value := range fields {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		if companyFieldIsSet(company, name) {
			continue
		}
		pruned[name] = value
	}
	return r.applyCompanyFields(ctx, company, pruned)
}

func (r *Resolver) applyCompanyFields(ctx context.Context, company *entity.Company, fields map[string]any) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	changed, err := r.companies.UpdateFields(ctx, company.CompanyKey, fields)
	if err != nil {
		return nil, err
	}
	applyCompanyFieldsInMemory(company, fields)
	return changed, nil
}

func (r *Resolver) findCompany(ctx context.Context, candidate *entity.Company) (*entity.Company, error) {
	type lookup struct {
		arg  *string
		find func(context.Context, string) (*entity.Company, error)
	}
	key := candidate.CompanyKey
	lookups := []lookup{
		{candidate.OrgNr, r.companies.FindByOrgNr},
		{candidate.CleanDomain, r.companies.FindByCleanDomain},
		{candidate.CleanName, r.companies.FindByCleanName},
		{&key, r.companies.FindByKey},
	}

	for _, l := range lookups {
		if l.arg == nil || *l.arg == "" {
			continue
		}
		found, err := l.find(ctx, *l.arg)
		if err != nil {
			if errors.Is(err, repository.ErrCompanyNotFound) {
				continue
			}
			return nil, err
		}
		return found, nil
	}
	return nil, nil
}

// companyFieldUpdates returns the columns present on the candidate that are
// currently null on the existing row. Non-null values are never overwritten.
func companyFieldUpdates(existing, candidate *entity.Company) map[string]any {
	fields := make(map[string]any)
	if existing.Name == "" && candidate.Name != "" {
		fields["name"] = candidate.Name
	}
	for name, pair := range map[string][2]*string{
		"domain":            {existing.Domain, candidate.Domain},
		"clean_domain":      {existing.CleanDomain, candidate.CleanDomain},
		"clean_name":        {existing.CleanName, candidate.CleanName},
		"orgnr":             {existing.OrgNr, candidate.OrgNr},
		"industry":          {existing.Industry, candidate.Industry},
		"company_size":      {existing.CompanySize, candidate.CompanySize},
		"location":          {existing.Location, candidate.Location},
		"sector":            {existing.Sector, candidate.Sector},
		"proff_url":         {existing.ProffURL, candidate.ProffURL},
		"profit_before_tax": {existing.ProfitBeforeTax, candidate.ProfitBeforeTax},
		"turnover":          {existing.Turnover, candidate.Turnover},
	} {
		if pair[0] == nil && pair[1] != nil && *pair[1] != "" {
			fields[name] = *pair[1]
		}
	}
	return fields
}

func companyFieldIsSet(company *entity.Company, name string) bool {
	switch name {
	case "name":
		return company.Name != ""
	case "domain":
		return company.Domain != nil
	case "clean_domain":
		return company.CleanDomain != nil
	case "clean_name":
		return company.CleanName != nil
	case "orgnr":
		return company.OrgNr != nil
	case "industry":
		return company.Industry != nil
	case "company_size":
		return company.CompanySize != nil
	case "location":
		return company.Location != nil
	case "sector":
		return company.Sector != nil
	case "proff_url":
		return company.ProffURL != nil
	case "profit_before_tax":
		return company.ProfitBeforeTax != nil
	case "turnover":
		return company.Turnover != nil
	}
	return false
}

func applyCompanyFieldsInMemory(company *entity.Company, fields map[string]any) {
	for name, value := range fields {
		s, ok := value.(string)
		if !ok {
			continue
		}
		v := s
		switch name {
		case "name":
			company.Name = v
		case "domain":
			company.Domain = &v
		case "clean_domain":
			company.CleanDomain = &v
		case "clean_name":
			company.CleanName = &v
		case "orgnr":
			company.OrgNr = &v
		case "industry":
			company.Industry = &v
		case "company_size":
			company.CompanySize = &v
		case "location":
			company.Location = &v
		case "sector":
			company.Sector = &v
		case "proff_url":
			company.ProffURL = &v
		case "profit_before_tax":
			company.ProfitBeforeTax = &v
		case "turnover":
			company.Turnover = &v
		}
	}
}

// BuildPersonCandidate normalizes raw contact signals into a candidate
// person with its natural key derived. companyName and companyDomain anchor
// name-only contacts. Returns keys.ErrNoIdentifier when no signal is strong
// enough.
func BuildPersonCandidate(fullName, title, email, phone, linkedinURL, companyName, companyDomain string) (*entity.Person, error) {
	key, err := keys.PersonKey(keys.PersonSignals{
		LinkedInURL:      linkedinURL,
		Email:            email,
		Phone:            phone,
		Domain:           companyDomain,
		CompanyNameOrKey: companyName,
		FullName:         fullName,
	})
	if err != nil {
		return nil, fmt.Errorf("person %q: %w", fullName, err)
	}

	candidate := &entity.Person{
		PersonKey: key,
		FullName:  strings.TrimSpace(fullName),
	}
	if title = strings.TrimSpace(title); title != "" {
		candidate.Title = &title
	}
	if email := normalize.Email(email); email != "" {
		candidate.Email = &email
	}
	if phone := normalize.Phone(phone); phone != "" {
		candidate.Phone = &phone
	}
	if linkedin := normalize.LinkedInURL(linkedinURL); linkedin != "" {
		candidate.LinkedInURL = &linkedin
	}
	if name := normalize.NameKey(companyName); name != "" {
		candidate.NormalizedCompanyName = &name
	}
	if domain := normalize.Domain(companyDomain); domain != "" && domain != keys.PlaceholderDomain {
		candidate.NormalizedCompanyDomain = &domain
	}
	return candidate, nil
}

// ResolvePerson matches the candidate against the store by LinkedIn, email,
// phone and finally exact name+domain. The name+domain match deliberately
// suppresses duplicate inserts even though it is the weakest signal:
// postings from the same company frequently repeat a contact by name only.
func (r *Resolver) ResolvePerson(ctx context.Context, candidate *entity.Person) (PersonResolution, error) {
	existing, err := r.findPerson(ctx, candidate)
	if err != nil {
		return PersonResolution{}, err
	}

	if existing == nil {
		stored, created, err := r.people.Upsert(ctx, candidate)
		if err != nil {
			return PersonResolution{}, err
		}
		return PersonResolution{Person: stored, Created: created}, nil
	}

	fields := personFieldUpdates(existing, candidate)
	if len(fields) == 0 {
		return PersonResolution{Person: existing}, nil
	}
	changed, err := r.people.UpdateFields(ctx, existing.PersonKey, fields)
	if err != nil {
		return PersonResolution{}, err
	}
	applyPersonFieldsInMemory(existing, fields)
	return PersonResolution{Person: existing, ChangedFields: changed}, nil
}

func (r *Resolver) findPerson(ctx context.Context, candidate *entity.Person) (*entity.Person, error) {
	type lookup struct {
		arg  *string
		find func(context.Context, string) (*entity.Person, error)
	}
	lookups := []lookup{
		{candidate.LinkedInURL, r.people.FindByLinkedIn},
		{candidate.Email, r.people.FindByEmail},
		{candidate.Phone, r.people.FindByPhone},
	}

	for _, l := range lookups {
		if l.arg == nil || *l.arg == "" {
			continue
		}
		found, err := l.find(ctx, *l.arg)
		if err != nil {
			if errors.Is(err, repository.ErrPersonNotFound) {
				continue
			}
			return nil, err
		}
		return found, nil
	}

	if candidate.FullName != "" && candidate.NormalizedCompanyDomain != nil {
		nameKey := normalize.NameKey(candidate.FullName)
		found, err := r.people.FindByNameAndDomain(ctx, nameKey, *candidate.NormalizedCompanyDomain)
		if err != nil {
			if errors.Is(err, repository.ErrPersonNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return found, nil
	}
	return nil, nil
}

func personFieldUpdates(existing, candidate *entity.Person) map[string]any {
	fields := make(map[string]any)
	if existing.FullName == "" && candidate.FullName != "" {
		fields["full_name"] = candidate.FullName
	}
	for name, pair := range map[string][2]*string{
		"title":                     {existing.Title, candidate.Title},
		"email":                     {existing.Email, candidate.Email},
		"phone":                     {existing.Phone, candidate.Phone},
		"linkedin_url":              {existing.LinkedInURL, candidate.LinkedInURL},
		"normalized_company_name":   {existing.NormalizedCompanyName, candidate.NormalizedCompanyName},
		"normalized_company_domain": {existing.NormalizedCompanyDomain, candidate.NormalizedCompanyDomain},
	} {
		if pair[0] == nil && pair[1] != nil && *pair[1] != "" {
			fields[name] = *pair[1]
		}
	}
	return fields
}

func applyPersonFieldsInMemory(person *entity.Person, fields map[string]any) {
	for name, value := range fields {
		s, ok := value.(string)
		if !ok {
			continue
		}
		v := s
		switch name {
		case "full_name":
			person.FullName = v
		case "title":
			person.Title = &v
		case "email":
			person.Email = &v
		case "phone":
			person.Phone = &v
		case "linkedin_url":
			person.LinkedInURL = &v
		case "normalized_company_name":
			person.NormalizedCompanyName = &v
		case "normalized_company_domain":
			person.NormalizedCompanyDomain = &v
		}
	}
}

// ResolveJobPost matches by finn_id only. A match merges the source sets and
// leaves every other field untouched; a miss inserts with the usual
// conflict-as-update race tolerance.
func (r *Resolver) ResolveJobPost(ctx context.Context, candidate *entity.JobPost) (JobPostResolution, error) {
	existing, err := r.jobs.FindByFinnID(ctx, candidate.FinnID)
	if err != nil && !errors.Is(err, repository.ErrJobPostNotFound) {
		return JobPostResolution{}, err
	}

	if existing == nil {
		candidate.Source = MergeSourceSet("", candidate.Source)
		stored, created, err := r.jobs.Upsert(ctx, candidate)
		if err != nil {
			return JobPostResolution{}, err
		}
		return JobPostResolution{JobPost: stored, Created: created}, nil
	}

	merged := MergeSourceSet(existing.Source, candidate.Source)
	if merged == existing.Source {
		return JobPostResolution{JobPost: existing}, nil
	}
	if err := r.jobs.UpdateSource(ctx, existing.FinnID, merged); err != nil {
		return JobPostResolution{}, err
	}
	existing.Source = merged
	return JobPostResolution{JobPost: existing, SourceMerged: true}, nil
}

// MergeSourceSet combines two comma-joined source sets into one
// deduplicated, alphabetically sorted, comma-joined set.
func MergeSourceSet(a, b string) string {
	seen := make(map[string]struct{})
	var out []string
	for _, chunk := range append(strings.Split(a, ","), strings.Split(b, ",")...) {
		source := strings.TrimSpace(chunk)
		if source == "" {
			continue
		}
		if _, dup := seen[source]; dup {
			continue
		}
		seen[source] = struct{}{}
		out = append(out, source)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
