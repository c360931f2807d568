package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company represents an employer organisation consolidated from scraped
// postings. CompanyKey is the natural key derived from orgnr, domain or name
// and stays stable across re-ingestion of equivalent data.
type Company struct {
	ID              uuid.UUID `json:"id"`
	CompanyKey      string    `json:"company_key"`
	Name            string    `json:"name"`
	Domain          *string   `json:"domain,omitempty"`
	CleanDomain     *string   `json:"clean_domain,omitempty"`
	CleanName       *string   `json:"clean_name,omitempty"`
	OrgNr           *string   `json:"orgnr,omitempty"`
	Industry        *string   `json:"industry,omitempty"`
	CompanySize     *string   `json:"company_size,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Sector          *string   `json:"sector,omitempty"`
	ProffURL        *string   `json:"proff_url,omitempty"`
	ProfitBeforeTax *string   `json:"profit_before_tax,omitempty"`
	Turnover        *string   `json:"turnover,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
