package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stillingsradar/ingest-api/internal/entity"
)

// ErrJobPostNotFound is returned when no job post matches the lookup.
var ErrJobPostNotFound = errors.New("job post not found")

// JobPostsRepository describes persistence operations for job posts, keyed
// by finn_id.
type JobPostsRepository interface {
	FindByFinnID(ctx context.Context, finnID string) (*entity.JobPost, error)
	Upsert(ctx context.Context, post *entity.JobPost) (*entity.JobPost, bool, error)
	UpdateSource(ctx context.Context, finnID, source string) error
}

// PGXJobPostsRepository implements JobPostsRepository using pgx.
type PGXJobPostsRepository struct {
	pool pgxPool
}

// NewPGXJobPostsRepository wires a pgx backed repository.
func NewPGXJobPostsRepository(pool *pgxpool.Pool) *PGXJobPostsRepository {
	return &PGXJobPostsRepository{pool: pool}
}

const jobPostColumns = `
        id,
        finn_id,
        finn_url,
        company_id,
        title,
        description,
        application_url,
        location,
        employment_type,
        salary,
        publication_date,
        expiration_date,
        sector,
        industries,
        source,
        created_at,
        updated_at
`

// FindByFinnID fetches a job post by its posting identifier.
func (r *PGXJobPostsRepository) FindByFinnID(ctx context.Context, finnID string) (*entity.JobPost, error) {
	query := "SELECT " + jobPostColumns + " FROM job_posts WHERE finn_id = $1 LIMIT 1"
	row := r.pool.QueryRow(ctx, query, finnID)
	post, err := scanJobPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobPostNotFound
		}
		return nil, fmt.Errorf("query job post: %w", err)
	}
	return post, nil
}

// Upsert inserts a job post keyed by finn_id. On a concurrent-insert
// conflict the existing row wins except for the source column, which keeps
// accumulating: the incoming source string is appended when the existing set
// does not already contain it. The source-set merge on the ordinary
// found-then-update path is done by the resolver.
func (r *PGXJobPostsRepository) Upsert(ctx context.Context, post *entity.JobPost) (*entity.JobPost, bool, error) {
	if post == nil {
		return nil, false, fmt.Errorf("job post payload is nil")
	}
	if post.FinnID == "" {
		return nil, false, fmt.Errorf("finn_id must not be empty")
	}

	query := `
        INSERT INTO job_posts (
            finn_id,
            finn_url,
            company_id,
            title,
            description,
            application_url,
            location,
            employment_type,
            salary,
            publication_date,
            expiration_date,
            sector,
            industries,
            source,
            updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
        ON CONFLICT (finn_id) DO UPDATE SET
            source = CASE
                WHEN EXCLUDED.source = '' OR POSITION(EXCLUDED.source IN job_posts.source) > 0
                    THEN job_posts.source
                WHEN job_posts.source = '' THEN EXCLUDED.source
                ELSE job_posts.source || ',' || EXCLUDED.source
            END,
            updated_at = NOW()
        RETURNING ` + jobPostColumns + `, xmax = 0
    `

	row := r.pool.QueryRow(ctx, query,
		post.FinnID,
		post.FinnURL,
		post.CompanyID,
		post.Title,
		post.Description,
		post.ApplicationURL,
		post.Location,
		post.EmploymentType,
		post.Salary,
		post.PublicationDate,
		post.ExpirationDate,
		post.Sector,
		post.Industries,
		post.Source,
	)

	stored, created, err := scanJobPostWithInserted(row)
	if err != nil {
		return nil, false, fmt.Errorf("upsert job post %q: %w", post.FinnID, err)
	}
	return stored, created, nil
}

// UpdateSource replaces the merged source set on an existing posting.
func (r *PGXJobPostsRepository) UpdateSource(ctx context.Context, finnID, source string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE job_posts SET source = $2, updated_at = NOW() WHERE finn_id = $1",
		finnID, source,
	)
	if err != nil {
		return fmt.Errorf("update job post source %q: %w", finnID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrJobPostNotFound
	}
	return nil
}

type jobPostNullFields struct {
	description     sql.NullString
	applicationURL  sql.NullString
	location        sql.NullString
	employmentType  sql.NullString
	salary          sql.NullString
	publicationDate sql.NullString
	expirationDate  sql.NullString
	sector          sql.NullString
}

func (f *jobPostNullFields) dest(p *entity.JobPost) []any {
	return []any{
		&p.ID,
		&p.FinnID,
		&p.FinnURL,
		&p.CompanyID,
		&p.Title,
		&f.description,
		&f.applicationURL,
		&f.location,
		&f.employmentType,
		&f.salary,
		&f.publicationDate,
		&f.expirationDate,
		&f.sector,
		&p.Industries,
		&p.Source,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

func (f *jobPostNullFields) apply(p *entity.JobPost) {
	p.Description = nullStringToPtr(f.description)
	p.ApplicationURL = nullStringToPtr(f.applicationURL)
	p.Location = nullStringToPtr(f.location)
	p.EmploymentType = nullStringToPtr(f.employmentType)
	p.Salary = nullStringToPtr(f.salary)
	p.PublicationDate = nullStringToPtr(f.publicationDate)
	p.ExpirationDate = nullStringToPtr(f.expirationDate)
	p.Sector = nullStringToPtr(f.sector)
}

func scanJobPost(row pgx.Row) (*entity.JobPost, error) {
	var (
		p      entity.JobPost
		fields jobPostNullFields
	)
	if err := row.Scan(fields.dest(&p)...); err != nil {
		return nil, err
	}
	fields.apply(&p)
	return &p, nil
}

func scanJobPostWithInserted(row pgx.Row) (*entity.JobPost, bool, error) {
	var (
		p        entity.JobPost
		fields   jobPostNullFields
		inserted bool
	)
	dest := append(fields.dest(&p), &inserted)
	if err := row.Scan(dest...); err != nil {
		return nil, false, err
	}
	fields.apply(&p)
	return &p, inserted, nil
}
