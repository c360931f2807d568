package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stillingsradar/ingest-api/internal/entity"
)

// LinksRepository describes persistence operations for the company_people
// and job_post_people link tables. The (owner, subject, role) triple is
// unique per table; link rows carry no payload beyond existence.
type LinksRepository interface {
	UpsertCompanyPeople(ctx context.Context, links []entity.CompanyPerson) error
	UpsertJobPostPeople(ctx context.Context, links []entity.JobPostPerson) error
	ListCompanyPeople(ctx context.Context, companyIDs []uuid.UUID) ([]entity.CompanyPerson, error)
	ListJobPostPeople(ctx context.Context, jobPostIDs []uuid.UUID) ([]entity.JobPostPerson, error)
	ListCompanyDecisionMakers(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error)
}

// PGXLinksRepository implements LinksRepository using pgx.
type PGXLinksRepository struct {
	pool pgxPool
}

// NewPGXLinksRepository wires a pgx backed repository.
func NewPGXLinksRepository(pool *pgxpool.Pool) *PGXLinksRepository {
	return &PGXLinksRepository{pool: pool}
}

// UpsertCompanyPeople writes company-person links inside one transaction.
// Conflicting triples are left untouched. Callers must have deduplicated the
// batch; some backends reject the same conflict target twice in one command.
func (r *PGXLinksRepository) UpsertCompanyPeople(ctx context.Context, links []entity.CompanyPerson) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start company_people tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
        INSERT INTO company_people (company_id, person_id, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (company_id, person_id, role) DO NOTHING
    `
	for _, link := range links {
		if _, err := tx.Exec(ctx, query, link.CompanyID, link.PersonID, link.Role); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("upsert company_people link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit company_people tx: %w", err)
	}
	return nil
}

// UpsertJobPostPeople writes job-post-person links inside one transaction.
func (r *PGXLinksRepository) UpsertJobPostPeople(ctx context.Context, links []entity.JobPostPerson) error {
	if len(links) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("start job_post_people tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const query = `
        INSERT INTO job_post_people (job_post_id, person_id, role)
        VALUES ($1, $2, $3)
        ON CONFLICT (job_post_id, person_id, role) DO NOTHING
    `
	for _, link := range links {
		if _, err := tx.Exec(ctx, query, link.JobPostID, link.PersonID, link.Role); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return fmt.Errorf("upsert job_post_people link: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit job_post_people tx: %w", err)
	}
	return nil
}

// ListCompanyPeople returns all links whose owner is in the given ID set.
func (r *PGXLinksRepository) ListCompanyPeople(ctx context.Context, companyIDs []uuid.UUID) ([]entity.CompanyPerson, error) {
	if len(companyIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT company_id, person_id, role FROM company_people WHERE company_id = ANY($1)",
		companyIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list company_people: %w", err)
	}
	defer rows.Close()

	var links []entity.CompanyPerson
	for rows.Next() {
		var link entity.CompanyPerson
		if err := rows.Scan(&link.CompanyID, &link.PersonID, &link.Role); err != nil {
			return nil, fmt.Errorf("scan company_people link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company_people: %w", err)
	}
	return links, nil
}

// ListJobPostPeople returns all links whose owner is in the given ID set.
func (r *PGXLinksRepository) ListJobPostPeople(ctx context.Context, jobPostIDs []uuid.UUID) ([]entity.JobPostPerson, error) {
	if len(jobPostIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx,
		"SELECT job_post_id, person_id, role FROM job_post_people WHERE job_post_id = ANY($1)",
		jobPostIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list job_post_people: %w", err)
	}
	defer rows.Close()

	var links []entity.JobPostPerson
	for rows.Next() {
		var link entity.JobPostPerson
		if err := rows.Scan(&link.JobPostID, &link.PersonID, &link.Role); err != nil {
			return nil, fmt.Errorf("scan job_post_people link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job_post_people: %w", err)
	}
	return links, nil
}

// ListCompanyDecisionMakers returns the person IDs linked to the company
// with the decision_maker role.
func (r *PGXLinksRepository) ListCompanyDecisionMakers(ctx context.Context, companyID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT person_id FROM company_people WHERE company_id = $1 AND role = $2",
		companyID, entity.RoleDecisionMaker,
	)
	if err != nil {
		return nil, fmt.Errorf("list company decision makers: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan decision maker id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decision makers: %w", err)
	}
	return ids, nil
}
