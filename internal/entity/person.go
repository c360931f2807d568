package entity

import (
	"time"

	"github.com/google/uuid"
)

// Person represents an individual contact. PersonKey is derived from the
// strongest identifying signal available (LinkedIn > email > phone >
// domain+name > company+name).
type Person struct {
	ID                      uuid.UUID `json:"id"`
	PersonKey               string    `json:"person_key"`
	FullName                string    `json:"full_name"`
	Title                   *string   `json:"title,omitempty"`
	Email                   *string   `json:"email,omitempty"`
	Phone                   *string   `json:"phone,omitempty"`
	LinkedInURL             *string   `json:"linkedin_url,omitempty"`
	NormalizedCompanyName   *string   `json:"normalized_company_name,omitempty"`
	NormalizedCompanyDomain *string   `json:"normalized_company_domain,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}
