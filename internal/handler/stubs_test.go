package handler

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// memStore backs the handler tests with a map-based implementation of the
// repository interfaces.
type memStore struct {
	companies    map[string]*entity.Company
	people       map[string]*entity.Person
	jobs         map[string]*entity.JobPost
	companyLinks []entity.CompanyPerson
	jobLinks     []entity.JobPostPerson
}

func newMemStore() *memStore {
	return &memStore{
		companies: make(map[string]*entity.Company),
		people:    make(map[string]*entity.Person),
		jobs:      make(map[string]*entity.JobPost),
	}
}

func setIfNil(dst **string, value any) {
	if *dst != nil {
		return
	}
	switch v := value.(type) {
	case string:
		if v != "" {
			val := v
			*dst = &val
		}
	case *string:
		if v != nil && *v != "" {
			val := *v
			*dst = &val
		}
	}
}

type memCompanies struct{ store *memStore }

func (m *memCompanies) findWhere(match func(*entity.Company) bool) (*entity.Company, error) {
	for _, c := range m.store.companies {
		if match(c) {
			return c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (m *memCompanies) FindByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	return m.findWhere(func(c *entity.Company) bool { return c.ID == id })
}

func (m *memCompanies) FindByOrgNr(_ context.Context, orgnr string) (*entity.Company, error) {
	return m.findWhere(func(c *entity.Company) bool { return c.OrgNr != nil && *c.OrgNr == orgnr })
}

func (m *memCompanies) FindByCleanDomain(_ context.Context, domain string) (*entity.Company, error) {
	return m.findWhere(func(c *entity.Company) bool { return c.CleanDomain != nil && *c.CleanDomain == domain })
}

func (m *memCompanies) FindByCleanName(_ context.Context, cleanName string) (*entity.Company, error) {
	return m.findWhere(func(c *entity.Company) bool { return c.CleanName != nil && *c.CleanName == cleanName })
}

func (m *memCompanies) FindByKey(_ context.Context, key string) (*entity.Company, error) {
	if c, ok := m.store.companies[key]; ok {
		return c, nil
	}
	return nil, repository.ErrCompanyNotFound
}

func (m *memCompanies) Upsert(_ context.Context, company *entity.Company) (*entity.Company, bool, error) {
	if existing, ok := m.store.companies[company.CompanyKey]; ok {
		setIfNil(&existing.Domain, company.Domain)
		setIfNil(&existing.CleanDomain, company.CleanDomain)
		setIfNil(&existing.CleanName, company.CleanName)
		setIfNil(&existing.OrgNr, company.OrgNr)
		return existing, false, nil
	}
	clone := *company
	clone.ID = uuid.New()
	m.store.companies[company.CompanyKey] = &clone
	return &clone, true, nil
}

func (m *memCompanies) UpdateFields(_ context.Context, companyKey string, fields map[string]any) ([]string, error) {
	company, ok := m.store.companies[companyKey]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		names = append(names, name)
		switch name {
		case "domain":
			setIfNil(&company.Domain, value)
		case "clean_domain":
			setIfNil(&company.CleanDomain, value)
		case "clean_name":
			setIfNil(&company.CleanName, value)
		case "orgnr":
			setIfNil(&company.OrgNr, value)
		case "industry":
			setIfNil(&company.Industry, value)
		case "company_size":
			setIfNil(&company.CompanySize, value)
		case "location":
			setIfNil(&company.Location, value)
		case "sector":
			setIfNil(&company.Sector, value)
		case "proff_url":
			setIfNil(&company.ProffURL, value)
		case "profit_before_tax":
			setIfNil(&company.ProfitBeforeTax, value)
		case "turnover":
			setIfNil(&company.Turnover, value)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memCompanies) List(_ context.Context, _ dto.ListFilter) ([]entity.Company, error) {
	var out []entity.Company
	for _, c := range m.store.companies {
		out = append(out, *c)
	}
	return out, nil
}

var _ repository.CompaniesRepository = (*memCompanies)(nil)

type memPeople struct{ store *memStore }

func (m *memPeople) findWhere(match func(*entity.Person) bool) (*entity.Person, error) {
	for _, p := range m.store.people {
		if match(p) {
			return p, nil
		}
	}
	return nil, repository.ErrPersonNotFound
}

func (m *memPeople) FindByLinkedIn(_ context.Context, linkedinURL string) (*entity.Person, error) {
	return m.findWhere(func(p *entity.Person) bool { return p.LinkedInURL != nil && *p.LinkedInURL == linkedinURL })
}

func (m *memPeople) FindByEmail(_ context.Context, email string) (*entity.Person, error) {
	return m.findWhere(func(p *entity.Person) bool { return p.Email != nil && *p.Email == email })
}

func (m *memPeople) FindByPhone(_ context.Context, phone string) (*entity.Person, error) {
	return m.findWhere(func(p *entity.Person) bool { return p.Phone != nil && *p.Phone == phone })
}

func (m *memPeople) FindByNameAndDomain(_ context.Context, nameKey, domain string) (*entity.Person, error) {
	return m.findWhere(func(p *entity.Person) bool {
		return normalize.NameKey(p.FullName) == nameKey &&
			p.NormalizedCompanyDomain != nil && *p.NormalizedCompanyDomain == domain
	})
}

func (m *memPeople) FindByKey(_ context.Context, key string) (*entity.Person, error) {
	if p, ok := m.store.people[key]; ok {
		return p, nil
	}
	return nil, repository.ErrPersonNotFound
}

func (m *memPeople) Upsert(_ context.Context, person *entity.Person) (*entity.Person, bool, error) {
	if existing, ok := m.store.people[person.PersonKey]; ok {
		setIfNil(&existing.Email, person.Email)
		setIfNil(&existing.Phone, person.Phone)
		setIfNil(&existing.LinkedInURL, person.LinkedInURL)
		return existing, false, nil
	}
	clone := *person
	clone.ID = uuid.New()
	m.store.people[person.PersonKey] = &clone
	return &clone, true, nil
}

func (m *memPeople) UpdateFields(_ context.Context, personKey string, fields map[string]any) ([]string, error) {
	person, ok := m.store.people[personKey]
	if !ok {
		return nil, repository.ErrPersonNotFound
	}
	names := make([]string, 0, len(fields))
	for name, value := range fields {
		names = append(names, name)
		switch name {
		case "title":
			setIfNil(&person.Title, value)
		case "email":
			setIfNil(&person.Email, value)
		case "phone":
			setIfNil(&person.Phone, value)
		case "linkedin_url":
			setIfNil(&person.LinkedInURL, value)
		case "normalized_company_name":
			setIfNil(&person.NormalizedCompanyName, value)
		case "normalized_company_domain":
			setIfNil(&person.NormalizedCompanyDomain, value)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *memPeople) ListByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Person, error) {
	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []entity.Person
	for _, p := range m.store.people {
		if wanted[p.ID] {
			out = append(out, *p)
		}
	}
	return out, nil
}

var _ repository.PeopleRepository = (*memPeople)(nil)

type memJobs struct{ store *memStore }

func (m *memJobs) FindByFinnID(_ context.Context, finnID string) (*entity.JobPost, error) {
	if j, ok := m.store.jobs[finnID]; ok {
		return j, nil
	}
	return nil, repository.ErrJobPostNotFound
}

func (m *memJobs) Upsert(_ context.Context, post *entity.JobPost) (*entity.JobPost, bool, error) {
	if existing, ok := m.store.jobs[post.FinnID]; ok {
		if post.Source != "" && !strings.Contains(existing.Source, post.Source) {
			existing.Source = existing.Source + "," + post.Source
		}
		return existing, false, nil
	}
	clone := *post
	clone.ID = uuid.New()
	m.store.jobs[post.FinnID] = &clone
	return &clone, true, nil
}

func (m *memJobs) UpdateSource(_ context.Context, finnID, source string) error {
	job, ok := m.store.jobs[finnID]
	if !ok {
		return repository.ErrJobPostNotFound
	}
	job.Source = source
	return nil
}

var _ repository.JobPostsRepository = (*memJobs)(nil)

type memLinks struct{ store *memStore }

func (m *memLinks) UpsertCompanyPeople(_ context.Context, links []entity.CompanyPerson) error {
	for _, link := range links {
		exists := false
		for _, have := range m.store.companyLinks {
			if have == link {
				exists = true
				break
			}
		}
		if !exists {
			m.store.companyLinks = append(m.store.companyLinks, link)
		}
	}
	return nil
}

func (m *memLinks) UpsertJobPostPeople(_ context.Context, links []entity.JobPostPerson) error {
	for _, link := range links {
		exists := false
		for _, have := range m.store.jobLinks {
			if have == link {
				exists = true
				break
			}
		}
		if !exists {
			m.store.jobLinks = append(m.store.jobLinks, link)
		}
	}
	return nil
}

func (m *memLinks) ListCompanyPeople(_ context.Context, companyIDs []uuid.UUID) ([]entity.CompanyPerson, error) {
	wanted := make(map[uuid.UUID]bool, len(companyIDs))
	for _, id := range companyIDs {
		wanted[id] = true
	}
	var out []entity.CompanyPerson
	for _, link := range m.store.companyLinks {
		if wanted[link.CompanyID] {
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *memLinks) ListJobPostPeople(_ context.Context, jobPostIDs []uuid.UUID) ([]entity.JobPostPerson, error) {
	wanted := make(map[uuid.UUID]bool, len(jobPostIDs))
	for _, id := range jobPostIDs {
		wanted[id] = true
	}
	var out []entity.JobPostPerson
	for _, link := range m.store.jobLinks {
		if wanted[link.JobPostID] {
			out = append(out, link)
		}
	}
	return out, nil
}

func (m *memLinks) ListCompanyDecisionMakers(_ context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, link := range m.store.companyLinks {
		if link.CompanyID == companyID && link.Role == entity.RoleDecisionMaker {
			ids = append(ids, link.PersonID)
		}
	}
	return ids, nil
}

var _ repository.LinksRepository = (*memLinks)(nil)

// recordingPoster captures webhook deliveries from the detached goroutine.
type recordingPoster struct {
	mu         sync.Mutex
	delivered  chan *dto.EnrichmentPayload
	requestIDs []string
}

func newRecordingPoster() *recordingPoster {
	return &recordingPoster{delivered: make(chan *dto.EnrichmentPayload, 4)}
}

func (p *recordingPoster) PostJSON(_ context.Context, _ string, payload any, requestID string) error {
	p.mu.Lock()
	p.requestIDs = append(p.requestIDs, requestID)
	p.mu.Unlock()
	if ep, ok := payload.(*dto.EnrichmentPayload); ok {
		p.delivered <- ep
	}
	return nil
}

var _ EnrichmentPoster = (*recordingPoster)(nil)
