package service

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/normalize"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// fakeStore backs the in-memory repository fakes with the same merge
// semantics as the SQL layer: inserts key on the natural key, conflicts
// null-fill, links are insert-if-absent.
type fakeStore struct {
	companies map[string]*entity.Company
	people    map[string]*entity.Person
	jobs      map[string]*entity.JobPost

	companyLinks []entity.CompanyPerson
	jobLinks     []entity.JobPostPerson
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[string]*entity.Company),
		people:    make(map[string]*entity.Person),
		jobs:      make(map[string]*entity.JobPost),
	}
}

func (s *fakeStore) newResolver() *Resolver {
	return NewResolver(&fakeCompanies{s}, &fakePeople{s}, &fakeJobs{s})
}

type fakeCompanies struct{ store *fakeStore }

var _ repository.CompaniesRepository = (*fakeCompanies)(nil)

func (f *fakeCompanies) FindByID(_ context.Context, id uuid.UUID) (*entity.Company, error) {
	for _, c := range f.store.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (f *fakeCompanies) findWhere(match func(*entity.Company) bool) (*entity.Company, error) {
	for _, c := range f.store.companies {
		if match(c) {
			return c, nil
		}
	}
	return nil, repository.ErrCompanyNotFound
}

func (f *fakeCompanies) FindByOrgNr(_ context.Context, orgnr string) (*entity.Company, error) {
	return f.findWhere(func(c *entity.Company) bool { return c.OrgNr != nil && *c.OrgNr == orgnr })
}

func (f *fakeCompanies) FindByCleanDomain(_ context.Context, domain string) (*entity.Company, error) {
	return f.findWhere(func(c *entity.Company) bool { return c.CleanDomain != nil && *c.CleanDomain == domain })
}

func (f *fakeCompanies) FindByCleanName(_ context.Context, cleanName string) (*entity.Company, error) {
	return f.findWhere(func(c *entity.Company) bool { return c.CleanName != nil && *c.CleanName == cleanName })
}

func (f *fakeCompanies) FindByKey(_ context.Context, key string) (*entity.Company, error) {
	if c, ok := f.store.companies[key]; ok {
		return c, nil
	}
	return nil, repository.ErrCompanyNotFound
}

func (f *fakeCompanies) Upsert(_ context.Context, company *entity.Company) (*entity.Company, bool, error) {
	if existing, ok := f.store.companies[company.CompanyKey]; ok {
		fillCompanyFromCandidate(existing, company)
		return existing, false, nil
	}
	clone := *company
	clone.ID = uuid.New()
	f.store.companies[clone.CompanyKey] = &clone
	return &clone, true, nil
}

func (f *fakeCompanies) UpdateFields(_ context.Context, companyKey string, fields map[string]any) ([]string, error) {
	company, ok := f.store.companies[companyKey]
	if !ok {
		return nil, repository.ErrCompanyNotFound
	}
	names := make([]string, 0, len(fields))
	coalesced := make(map[string]any, len(fields))
	for name, value := range fields {
		names = append(names, name)
		if !companyFieldIsSet(company, name) {
			coalesced[name] = value
		}
	}
	applyCompanyFieldsInMemory(company, coalesced)
	sort.Strings(names)
	return names, nil
}

func (f *fakeCompanies) List(_ context.Context, _ dto.ListFilter) ([]entity.Company, error) {
	var out []entity.Company
	for _, c := range f.store.companies {
		out = append(out, *c)
	}
	return out, nil
}

func fillCompanyFromCandidate(dst, src *entity.Company) {
	if dst.Name == "" {
		dst.Name = src.Name
	}
	fill := func(d **string, s *string) {
		if *d == nil && s != nil {
			v := *s
			*d = &v
		}
	}
	fill(&dst.Domain, src.Domain)
	fill(&dst.CleanDomain, src.CleanDomain)
	fill(&dst.CleanName, src.CleanName)
	fill(&dst.OrgNr, src.OrgNr)
	fill(&dst.Industry, src.Industry)
	fill(&dst.CompanySize, src.CompanySize)
	fill(&dst.Location, src.Location)
	fill(&dst.Sector, src.Sector)
	fill(&dst.ProffURL, src.ProffURL)
	fill(&dst.ProfitBeforeTax, src.ProfitBeforeTax)
	fill(&dst.Turnover, src.Turnover)
}

type fakePeople struct{ store *fakeStore }

var _ repository.PeopleRepository = (*fakePeople)(nil)

func (f *fakePeople) findWhere(match func(*entity.Person) bool) (*entity.Person, error) {
	for _, p := range f.store.people {
		if match(p) {
			return p, nil
		}
	}
	return nil, repository.ErrPersonNotFound
}

func (f *fakePeople) FindByLinkedIn(_ context.Context, linkedinURL string) (*entity.Person, error) {
	return f.findWhere(func(p *entity.Person) bool { return p.LinkedInURL != nil && *p.LinkedInURL == linkedinURL })
}

func (f *fakePeople) FindByEmail(_ context.Context, email string) (*entity.Person, error) {
	return f.findWhere(func(p *entity.Person) bool { return p.Email != nil && *p.Email == email })
}

func (f *fakePeople) FindByPhone(_ context.Context, phone string) (*entity.Person, error) {
	return f.findWhere(func(p *entity.Person) bool { return p.Phone != nil && *p.Phone == phone })
}

func (f *fakePeople) FindByNameAndDomain(_ context.Context, nameKey, domain string) (*entity.Person, error) {
	return f.findWhere(func(p *entity.Person) bool {
		return normalize.NameKey(p.FullName) == nameKey &&
			p.NormalizedCompanyDomain != nil && *p.NormalizedCompanyDomain == domain
	})
}

func (f *fakePeople) FindByKey(_ context.Context, key string) (*entity.Person, error) {
	if p, ok := f.store.people[key]; ok {
		return p, nil
	}
	return nil, repository.ErrPersonNotFound
}

func (f *fakePeople) Upsert(_ context.Context, person *entity.Person) (*entity.Person, bool, error) {
	if existing, ok := f.store.people[person.PersonKey]; ok {
		return existing, false, nil
	}
	clone := *person
	clone.ID = uuid.New()
	f.store.people[clone.PersonKey] = &clone
	return &clone, true, nil
}

func (f *fakePeople) UpdateFields(_ context.Context, personKey string, fields map[string]any) ([]string, error) {
	person, ok := f.store.people[personKey]
	if !ok {
		return nil, repository.ErrPersonNotFound
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	applyPersonFieldsInMemory(person, fields)
	sort.Strings(names)
	return names, nil
}

func (f *fakePeople) ListByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Person, error) {
	var out []entity.Person
	for _, id := range ids {
		for _, p := range f.store.people {
			if p.ID == id {
				out = append(out, *p)
			}
		}
	}
	return out, nil
}

type fakeJobs struct{ store *fakeStore }

var _ repository.JobPostsRepository = (*fakeJobs)(nil)

func (f *fakeJobs) FindByFinnID(_ context.Context, finnID string) (*entity.JobPost, error) {
	if j, ok := f.store.jobs[finnID]; ok {
		return j, nil
	}
	return nil, repository.ErrJobPostNotFound
}

func (f *fakeJobs) Upsert(_ context.Context, post *entity.JobPost) (*entity.JobPost, bool, error) {
	if existing, ok := f.store.jobs[post.FinnID]; ok {
		return existing, false, nil
	}
	clone := *post
	clone.ID = uuid.New()
	f.store.jobs[clone.FinnID] = &clone
	return &clone, true, nil
}

func (f *fakeJobs) UpdateSource(_ context.Context, finnID, source string) error {
	job, ok := f.store.jobs[finnID]
	if !ok {
		return repository.ErrJobPostNotFound
	}
	job.Source = source
	return nil
}

type fakeLinks struct{ store *fakeStore }

var _ repository.LinksRepository = (*fakeLinks)(nil)

func (f *fakeLinks) UpsertCompanyPeople(_ context.Context, links []entity.CompanyPerson) error {
	for _, link := range links {
		exists := false
		for _, existing := range f.store.companyLinks {
			if existing == link {
				exists = true
				break
			}
		}
		if !exists {
			f.store.companyLinks = append(f.store.companyLinks, link)
		}
	}
	return nil
}

func (f *fakeLinks) UpsertJobPostPeople(_ context.Context, links []entity.JobPostPerson) error {
	for _, link := range links {
		exists := false
		for _, existing := range f.store.jobLinks {
			if existing == link {
				exists = true
				break
			}
		}
		if !exists {
			f.store.jobLinks = append(f.store.jobLinks, link)
		}
	}
	return nil
}

func (f *fakeLinks) ListCompanyPeople(_ context.Context, companyIDs []uuid.UUID) ([]entity.CompanyPerson, error) {
	var out []entity.CompanyPerson
	for _, link := range f.store.companyLinks {
		for _, id := range companyIDs {
			if link.CompanyID == id {
				out = append(out, link)
			}
		}
	}
	return out, nil
}

func (f *fakeLinks) ListJobPostPeople(_ context.Context, jobPostIDs []uuid.UUID) ([]entity.JobPostPerson, error) {
	var out []entity.JobPostPerson
	for _, link := range f.store.jobLinks {
		for _, id := range jobPostIDs {
			if link.JobPostID == id {
				out = append(out, link)
			}
		}
	}
	return out, nil
}

func (f *fakeLinks) ListCompanyDecisionMakers(_ context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, link := range f.store.companyLinks {
		if link.CompanyID == companyID && link.Role == entity.RoleDecisionMaker {
			out = append(out, link.PersonID)
		}
	}
	return out, nil
}
