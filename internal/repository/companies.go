package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
)

// ErrCompanyNotFound is returned when no company matches the lookup criteria.
var ErrCompanyNotFound = errors.New("company not found")

// CompaniesRepository describes persistence operations for companies. The
// finders mirror the resolver's match priority: orgnr, clean domain, clean
// name, natural key.
type CompaniesRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	FindByOrgNr(ctx context.Context, orgnr string) (*entity.Company, error)
	FindByCleanDomain(ctx context.Context, domain string) (*entity.Company, error)
	FindByCleanName(ctx context.Context, cleanName string) (*entity.Company, error)
	FindByKey(ctx context.Context, key string) (*entity.Company, error)
	Upsert(ctx context.Context, company *entity.Company) (*entity.Company, bool, error)
	UpdateFields(ctx context.Context, companyKey string, fields map[string]any) ([]string, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
}

// PGXCompaniesRepository implements CompaniesRepository using pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool *pgxpool.Pool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

const companyColumns = `
        id,
        company_key,
        name,
        domain,
        clean_domain,
        clean_name,
        orgnr,
        industry,
        company_size,
        location,
        sector,
        proff_url,
        profit_before_tax,
        turnover,
        created_at,
        updated_at
`

// FindByID fetches a company by its surrogate id.
func (r *PGXCompaniesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return r.findOne(ctx, "id = $1", id)
}

// FindByOrgNr fetches a company by its normalized organisation number.
func (r *PGXCompaniesRepository) FindByOrgNr(ctx context.Context, orgnr string) (*entity.Company, error) {
	return r.findOne(ctx, "orgnr = $1", orgnr)
}

// FindByCleanDomain fetches a company by its normalized domain host.
func (r *PGXCompaniesRepository) FindByCleanDomain(ctx context.Context, domain string) (*entity.Company, error) {
	return r.findOne(ctx, "clean_domain = $1", domain)
}

// FindByCleanName fetches a company by its suffix-stripped comparison name.
func (r *PGXCompaniesRepository) FindByCleanName(ctx context.Context, cleanName string) (*entity.Company, error) {
	return r.findOne(ctx, "clean_name = $1", cleanName)
}

// FindByKey fetches a company by its natural key.
func (r *PGXCompaniesRepository) FindByKey(ctx context.Context, key string) (*entity.Company, error) {
	return r.findOne(ctx, "company_key = $1", key)
}

func (r *PGXCompaniesRepository) findOne(ctx context.Context, predicate string, arg any) (*entity.Company, error) {
	query := "SELECT " + companyColumns + " FROM companies WHERE " + predicate + " LIMIT 1"
	row := r.pool.QueryRow(ctx, query, arg)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("query company: %w", err)
	}
	return company, nil
}

// Upsert inserts a company keyed by company_key. A concurrent insert of the
// same key turns into a null-filling update, so the race loser still
// converges on one row; the returned flag reports whether a row was created.
func (r *PGXCompaniesRepository) Upsert(ctx context.Context, company *entity.Company) (*entity.Company, bool, error) {
	if company == nil {
		return nil, false, fmt.Errorf("company payload is nil")
	}
	if company.CompanyKey == "" {
		return nil, false, fmt.Errorf("company key must not be empty")
	}

	query := `
        INSERT INTO companies (
            company_key,
            name,
            domain,
            clean_domain,
            clean_name,
            orgnr,
            industry,
            company_size,
            location,
            sector,
            proff_url,
            profit_before_tax,
            turnover,
            updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
        ON CONFLICT (company_key) DO UPDATE SET
            name = COALESCE(NULLIF(companies.name, ''), EXCLUDED.name),
            domain = COALESCE(companies.domain, EXCLUDED.domain),
            clean_domain = COALESCE(companies.clean_domain, EXCLUDED.clean_domain),
            clean_name = COALESCE(companies.clean_name, EXCLUDED.clean_name),
            orgnr = COALESCE(companies.orgnr, EXCLUDED.orgnr),
            industry = COALESCE(companies.industry, EXCLUDED.industry),
            company_size = COALESCE(companies.company_size, EXCLUDED.company_size),
            location = COALESCE(companies.location, EXCLUDED.location),
            sector = COALESCE(companies.sector, EXCLUDED.sector),
            proff_url = COALESCE(companies.proff_url, EXCLUDED.proff_url),
            profit_before_tax = COALESCE(companies.profit_before_tax, EXCLUDED.profit_before_tax),
            turnover = COALESCE(companies.turnover, EXCLUDED.turnover),
            updated_at = NOW()
        RETURNING ` + companyColumns + `, xmax = 0
    `

	row := r.pool.QueryRow(ctx, query,
		company.CompanyKey,
		company.Name,
		company.Domain,
		company.CleanDomain,
		company.CleanName,
		company.OrgNr,
		company.Industry,
		company.CompanySize,
		company.Location,
		company.Sector,
		company.ProffURL,
		company.ProfitBeforeTax,
		company.Turnover,
	)

	stored, created, err := scanCompanyWithInserted(row)
	if err != nil {
		return nil, false, fmt.Errorf("upsert company %q: %w", company.CompanyKey, err)
	}
	return stored, created, nil
}

// companyUpdateColumns whitelists the columns UpdateFields may touch.
var companyUpdateColumns = map[string]struct{}{
	"name": {}, "domain": {}, "clean_domain": {}, "clean_name": {},
	"orgnr": {}, "industry": {}, "company_size": {}, "location": {},
	"sector": {}, "proff_url": {}, "profit_before_tax": {}, "turnover": {},
}

// UpdateFields null-fills the given columns on the company row. Existing
// non-null values are never overwritten. Returns the field names applied, in
// sorted order.
func (r *PGXCompaniesRepository) UpdateFields(ctx context.Context, companyKey string, fields map[string]any) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := companyUpdateColumns[name]; !ok {
			return nil, fmt.Errorf("column %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := []any{companyKey}
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, $%d)", name, name, i+2))
		args = append(args, fields[name])
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE companies SET %s WHERE company_key = $1", strings.Join(sets, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update company %q: %w", companyKey, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCompanyNotFound
	}
	return names, nil
}

// List retrieves companies matching the provided filter, newest first.
func (r *PGXCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString("SELECT " + companyColumns + " FROM companies")

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR company_key ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	if filter.Industry != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(industry) = LOWER($%d)", idx))
		args = append(args, filter.Industry)
		idx++
	}
	if filter.Location != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(location) = LOWER($%d)", idx))
		args = append(args, filter.Location)
		idx++
	}
	if filter.Sector != "" {
		clauses = append(clauses, fmt.Sprintf("LOWER(sector) = LOWER($%d)", idx))
		args = append(args, filter.Sector)
		idx++
	}

	if len(clauses) > 0 {
		baseQuery.WriteString(" WHERE ")
		baseQuery.WriteString(strings.Join(clauses, " AND "))
	}
	baseQuery.WriteString(" ORDER BY updated_at DESC, name ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var (
		c      entity.Company
		fields companyNullFields
	)
	if err := row.Scan(fields.dest(&c)...); err != nil {
		return nil, err
	}
	fields.apply(&c)
	return &c, nil
}

func scanCompanyWithInserted(row pgx.Row) (*entity.Company, bool, error) {
	var (
		c        entity.Company
		fields   companyNullFields
		inserted bool
	)
	dest := append(fields.dest(&c), &inserted)
	if err := row.Scan(dest...); err != nil {
		return nil, false, err
	}
	fields.apply(&c)
	return &c, inserted, nil
}

// companyNullFields gathers the nullable scan targets for a company row.
type companyNullFields struct {
	domain          sql.NullString
	cleanDomain     sql.NullString
	cleanName       sql.NullString
	orgnr           sql.NullString
	industry        sql.NullString
	companySize     sql.NullString
	location        sql.NullString
	sector          sql.NullString
	proffURL        sql.NullString
	profitBeforeTax sql.NullString
	turnover        sql.NullString
}

func (f *companyNullFields) dest(c *entity.Company) []any {
	return []any{
		&c.ID,
		&c.CompanyKey,
		&c.Name,
		&f.domain,
		&f.cleanDomain,
		&f.cleanName,
		&f.orgnr,
		&f.industry,
		&f.companySize,
		&f.location,
		&f.sector,
		&f.proffURL,
		&f.profitBeforeTax,
		&f.turnover,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

func (f *companyNullFields) apply(c *entity.Company) {
	c.Domain = nullStringToPtr(f.domain)
	c.CleanDomain = nullStringToPtr(f.cleanDomain)
	c.CleanName = nullStringToPtr(f.cleanName)
	c.OrgNr = nullStringToPtr(f.orgnr)
	c.Industry = nullStringToPtr(f.industry)
	c.CompanySize = nullStringToPtr(f.companySize)
	c.Location = nullStringToPtr(f.location)
	c.Sector = nullStringToPtr(f.sector)
	c.ProffURL = nullStringToPtr(f.proffURL)
	c.ProfitBeforeTax = nullStringToPtr(f.profitBeforeTax)
	c.Turnover = nullStringToPtr(f.turnover)
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
