package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/entity"
	"github.com/stillingsradar/ingest-api/internal/repository"
)

// LinkReconciler builds and writes (owner, subject, role) relation rows for
// a batch of already-resolved entities. Batches are deduplicated before the
// write because some store backends reject the same conflict target twice in
// one command. "Inserted vs existing" accounting is pre-computed against the
// store before the upsert; under concurrent writers a racing insert may be
// counted as existing, which is accepted since link rows carry no payload
// beyond existence.
type LinkReconciler struct {
	links repository.LinksRepository
}

// NewLinkReconciler wires a reconciler over the links repository.
func NewLinkReconciler(links repository.LinksRepository) *LinkReconciler {
	return &LinkReconciler{links: links}
}

type linkTriple struct {
	owner   uuid.UUID
	subject uuid.UUID
	role    entity.Role
}

// ReconcileCompanyPeople deduplicates and persists company-person links,
// reporting how many were new versus already present.
func (l *LinkReconciler) ReconcileCompanyPeople(ctx context.Context, batch []entity.CompanyPerson) (dto.LinkOutcome, error) {
	var outcome dto.LinkOutcome
	if len(batch) == 0 {
		return outcome, nil
	}

	seen := make(map[linkTriple]struct{}, len(batch))
	deduped := make([]entity.CompanyPerson, 0, len(batch))
	ownerIDs := make([]uuid.UUID, 0, len(batch))
	for _, link := range batch {
		triple := linkTriple{link.CompanyID, link.PersonID, link.Role}
		if _, dup := seen[triple]; dup {
			continue
		}
		seen[triple] = struct{}{}
		deduped = append(deduped, link)
		ownerIDs = appendUniqueID(ownerIDs, link.CompanyID)
	}

	existing, err := l.links.ListCompanyPeople(ctx, ownerIDs)
	if err != nil {
		return outcome, err
	}
	existingSet := make(map[linkTriple]struct{}, len(existing))
	for _, link := range existing {
		existingSet[linkTriple{link.CompanyID, link.PersonID, link.Role}] = struct{}{}
	}

	for _, link := range deduped {
		if _, ok := existingSet[linkTriple{link.CompanyID, link.PersonID, link.Role}]; ok {
			outcome.Existing++
		} else {
			outcome.Inserted++
		}
	}

	if err := l.links.UpsertCompanyPeople(ctx, deduped); err != nil {
		return dto.LinkOutcome{}, err
	}
	return outcome, nil
}

// ReconcileJobPostPeople deduplicates and persists job-post-person links.
// Every decision maker already linked to the posting's company is propagated
// onto the posting itself, unless the batch already links that person to the
// post with the decision_maker role, so decision-maker visibility
// accumulates across a company's postings without duplicate rows.
func (l *LinkReconciler) ReconcileJobPostPeople(ctx context.Context, jobPostID, companyID uuid.UUID, batch []entity.JobPostPerson) (dto.LinkOutcome, error) {
	var outcome dto.LinkOutcome

	decisionMakers, err := l.links.ListCompanyDecisionMakers(ctx, companyID)
	if err != nil {
		return outcome, err
	}

	inBatch := make(map[linkTriple]struct{}, len(batch))
	for _, link := range batch {
		inBatch[linkTriple{link.JobPostID, link.PersonID, link.Role}] = struct{}{}
	}
	for _, personID := range decisionMakers {
		triple := linkTriple{jobPostID, personID, entity.RoleDecisionMaker}
		if _, ok := inBatch[triple]; ok {
			continue
		}
		batch = append(batch, entity.JobPostPerson{JobPostID: jobPostID, PersonID: personID, Role: entity.RoleDecisionMaker})
		inBatch[triple] = struct{}{}
	}
	if len(batch) == 0 {
		return outcome, nil
	}

	seen := make(map[linkTriple]struct{}, len(batch))
	deduped := make([]entity.JobPostPerson, 0, len(batch))
	ownerIDs := make([]uuid.UUID, 0, len(batch))
	for _, link := range batch {
		triple := linkTriple{link.JobPostID, link.PersonID, link.Role}
		if _, dup := seen[triple]; dup {
			continue
		}
		seen[triple] = struct{}{}
		deduped = append(deduped, link)
		ownerIDs = appendUniqueID(ownerIDs, link.JobPostID)
	}

	existing, err := l.links.ListJobPostPeople(ctx, ownerIDs)
	if err != nil {
		return outcome, err
	}
	existingSet := make(map[linkTriple]struct{}, len(existing))
	for _, link := range existing {
		existingSet[linkTriple{link.JobPostID, link.PersonID, link.Role}] = struct{}{}
	}

	for _, link := range deduped {
		if _, ok := existingSet[linkTriple{link.JobPostID, link.PersonID, link.Role}]; ok {
			outcome.Existing++
		} else {
			outcome.Inserted++
		}
	}

	if err := l.links.UpsertJobPostPeople(ctx, deduped); err != nil {
		return dto.LinkOutcome{}, err
	}
	return outcome, nil
}

func appendUniqueID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
