package entity

import (
	"time"

	"github.com/google/uuid"
)

// JobPost represents one job advertisement, unique per FinnID. Source holds
// the comma-joined, deduplicated set of scrapers that have seen the posting.
type JobPost struct {
	ID              uuid.UUID  `json:"id"`
	FinnID          string     `json:"finn_id"`
	FinnURL         string     `json:"finn_url"`
	CompanyID       uuid.UUID  `json:"company_id"`
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	ApplicationURL  *string    `json:"application_url,omitempty"`
	Location        *string    `json:"location,omitempty"`
	EmploymentType  *string    `json:"employment_type,omitempty"`
	Salary          *string    `json:"salary,omitempty"`
	PublicationDate *string    `json:"publication_date,omitempty"`
	ExpirationDate  *string    `json:"expiration_date,omitempty"`
	Sector          *string    `json:"sector,omitempty"`
	Industries      []string   `json:"industries,omitempty"`
	Source          string     `json:"source"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
