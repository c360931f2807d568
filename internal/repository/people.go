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

	"github.com/stillingsradar/ingest-api/internal/entity"
)

// ErrPersonNotFound is returned when no person matches the lookup criteria.
var ErrPersonNotFound = errors.New("person not found")

// PeopleRepository describes persistence operations for people. The finders
// mirror the resolver's match priority: LinkedIn, email, phone, name+domain.
type PeopleRepository interface {
	FindByLinkedIn(ctx context.Context, linkedinURL string) (*entity.Person, error)
	FindByEmail(ctx context.Context, email string) (*entity.Person, error)
	FindByPhone(ctx context.Context, phone string) (*entity.Person, error)
	FindByNameAndDomain(ctx context.Context, nameKey, domain string) (*entity.Person, error)
	FindByKey(ctx context.Context, key string) (*entity.Person, error)
	Upsert(ctx context.Context, person *entity.Person) (*entity.Person, bool, error)
	UpdateFields(ctx context.Context, personKey string, fields map[string]any) ([]string, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Person, error)
}

// PGXPeopleRepository implements PeopleRepository using pgx.
type PGXPeopleRepository struct {
	pool pgxPool
}

// NewPGXPeopleRepository wires a pgx backed repository.
func NewPGXPeopleRepository(pool *pgxpool.Pool) *PGXPeopleRepository {
	return &PGXPeopleRepository{pool: pool}
}

const personColumns = `
        id,
        person_key,
        full_name,
        title,
        email,
        phone,
        linkedin_url,
        normalized_company_name,
        normalized_company_domain,
        created_at,
        updated_at
`

// FindByLinkedIn fetches a person by canonicalized LinkedIn URL.
func (r *PGXPeopleRepository) FindByLinkedIn(ctx context.Context, linkedinURL string) (*entity.Person, error) {
	return r.findOne(ctx, "linkedin_url = $1", linkedinURL)
}

// FindByEmail fetches a person by normalized email.
func (r *PGXPeopleRepository) FindByEmail(ctx context.Context, email string) (*entity.Person, error) {
	return r.findOne(ctx, "email = $1", email)
}

// FindByPhone fetches a person by normalized phone digits.
func (r *PGXPeopleRepository) FindByPhone(ctx context.Context, phone string) (*entity.Person, error) {
	return r.findOne(ctx, "phone = $1", phone)
}

// FindByKey fetches a person by natural key.
func (r *PGXPeopleRepository) FindByKey(ctx context.Context, key string) (*entity.Person, error) {
	return r.findOne(ctx, "person_key = $1", key)
}

func (r *PGXPeopleRepository) findOne(ctx context.Context, predicate string, args ...any) (*entity.Person, error) {
	query := "SELECT " + personColumns + " FROM people WHERE " + predicate + " LIMIT 1"
	row := r.pool.QueryRow(ctx, query, args...)
	person, err := scanPerson(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("query person: %w", err)
	}
	return person, nil
}

// FindByNameAndDomain fetches a person by exact normalized name plus employer
// domain. A hit here is authoritative for suppressing duplicate inserts even
// though the signal is weaker than LinkedIn, email or phone.
func (r *PGXPeopleRepository) FindByNameAndDomain(ctx context.Context, nameKey, domain string) (*entity.Person, error) {
	return r.findOne(ctx, "LOWER(full_name) = $1 AND normalized_company_domain = $2", nameKey, domain)
}

// Upsert inserts a person keyed by person_key, with the same race tolerance
// as company upserts: a concurrent insert of the same key becomes a
// null-filling update.
func (r *PGXPeopleRepository) Upsert(ctx context.Context, person *entity.Person) (*entity.Person, bool, error) {
	if person == nil {
		return nil, false, fmt.Errorf("person payload is nil")
	}
	if person.PersonKey == "" {
		return nil, false, fmt.Errorf("person key must not be empty")
	}

	query := `
        INSERT INTO people (
            person_key,
            full_name,
            title,
            email,
            phone,
            linkedin_url,
            normalized_company_name,
            normalized_company_domain,
            updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
        ON CONFLICT (person_key) DO UPDATE SET
            full_name = COALESCE(NULLIF(people.full_name, ''), EXCLUDED.full_name),
            title = COALESCE(people.title, EXCLUDED.title),
            email = COALESCE(people.email, EXCLUDED.email),
            phone = COALESCE(people.phone, EXCLUDED.phone),
            linkedin_url = COALESCE(people.linkedin_url, EXCLUDED.linkedin_url),
            normalized_company_name = COALESCE(people.normalized_company_name, EXCLUDED.normalized_company_name),
            normalized_company_domain = COALESCE(people.normalized_company_domain, EXCLUDED.normalized_company_domain),
            updated_at = NOW()
        RETURNING ` + personColumns + `, xmax = 0
    `

	row := r.pool.QueryRow(ctx, query,
		person.PersonKey,
		person.FullName,
		person.Title,
		person.Email,
		person.Phone,
		person.LinkedInURL,
		person.NormalizedCompanyName,
		person.NormalizedCompanyDomain,
	)

	stored, created, err := scanPersonWithInserted(row)
	if err != nil {
		return nil, false, fmt.Errorf("upsert person %q: %w", person.PersonKey, err)
	}
	return stored, created, nil
}

var personUpdateColumns = map[string]struct{}{
	"full_name": {}, "title": {}, "email": {}, "phone": {},
	"linkedin_url": {}, "normalized_company_name": {}, "normalized_company_domain": {},
}

// UpdateFields null-fills the given columns on the person row and returns
// the field names applied, in sorted order.
func (r *PGXPeopleRepository) UpdateFields(ctx context.Context, personKey string, fields map[string]any) ([]string, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := personUpdateColumns[name]; !ok {
			return nil, fmt.Errorf("column %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := []any{personKey}
	for i, name := range names {
		sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, $%d)", name, name, i+2))
		args = append(args, fields[name])
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE people SET %s WHERE person_key = $1", strings.Join(sets, ", "))
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update person %q: %w", personKey, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPersonNotFound
	}
	return names, nil
}

// ListByIDs returns the people with the given row identifiers.
func (r *PGXPeopleRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT " + personColumns + " FROM people WHERE id = ANY($1)"
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var people []entity.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *person)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return people, nil
}

type personNullFields struct {
	title         sql.NullString
	email         sql.NullString
	phone         sql.NullString
	linkedinURL   sql.NullString
	companyName   sql.NullString
	companyDomain sql.NullString
}

func (f *personNullFields) dest(p *entity.Person) []any {
	return []any{
		&p.ID,
		&p.PersonKey,
		&p.FullName,
		&f.title,
		&f.email,
		&f.phone,
		&f.linkedinURL,
		&f.companyName,
		&f.companyDomain,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func (f *personNullFields) apply(p *entity.Person) {
	p.Title = nullStringToPtr(f.title)
	p.Email = nullStringToPtr(f.email)
	p.Phone = nullStringToPtr(f.phone)
	p.LinkedInURL = nullStringToPtr(f.linkedinURL)
	p.NormalizedCompanyName = nullStringToPtr(f.companyName)
	p.NormalizedCompanyDomain = nullStringToPtr(f.companyDomain)
}

func scanPerson(row pgx.Row) (*entity.Person, error) {
	var (
		p      entity.Person
		fields personNullFields
	)
	if err := row.Scan(fields.dest(&p)...); err != nil {
		return nil, err
	}
	fields.apply(&p)
	return &p, nil
}

func scanPersonWithInserted(row pgx.Row) (*entity.Person, bool, error) {
	var (
		p        entity.Person
		fields   personNullFields
		inserted bool
	)
	dest := append(fields.dest(&p), &inserted)
	if err := row.Scan(dest...); err != nil {
		return nil, false, err
	}
	fields.apply(&p)
	return &p, inserted, nil
}
