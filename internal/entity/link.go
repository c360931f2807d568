package entity

import "github.com/google/uuid"

// Role classifies how a person relates to a company or posting.
type Role string

const (
	RoleContactPerson Role = "contact_person"
	RoleDecisionMaker Role = "decision_maker"
	RoleRecruiter     Role = "recruiter"
	RoleOther         Role = "other"
)

// CompanyPerson links a person to a company with a role. The
// (company_id, person_id, role) triple is unique.
type CompanyPerson struct {
	CompanyID uuid.UUID `json:"company_id"`
	PersonID  uuid.UUID `json:"person_id"`
	Role      Role      `json:"role"`
}

// JobPostPerson links a person to a job post with a role. The
// (job_post_id, person_id, role) triple is unique.
type JobPostPerson struct {
	JobPostID uuid.UUID `json:"job_post_id"`
	PersonID  uuid.UUID `json:"person_id"`
	Role      Role      `json:"role"`
}
