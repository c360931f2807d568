package service

import (
	"strings"

	"github.com/stillingsradar/ingest-api/internal/dto"
	"github.com/stillingsradar/ingest-api/internal/keys"
	"github.com/stillingsradar/ingest-api/internal/normalize"
)

// CompanyRecord is one raw row in a bulk company import, before identity
// resolution.
type CompanyRecord struct {
	Name            string
	OrgNr           string
	Domain          string
	Industry        string
	CompanySize     string
	Location        string
	Sector          string
	ProffURL        string
	ProfitBeforeTax string
	Turnover        string
}

// Completeness weights mirror the key builder's priority order: a row with
// an orgnr outranks any combination of weaker signals.
const (
	weightOrgNr  = 8
	weightDomain = 4
	weightName   = 2
)

// identifierGroups maps each normalized identifier to a group index. It is
// incremental union-find without path compression: the first identifier seen
// acts as the group representative, and the map is rebuilt on every run.
type identifierGroups struct {
	byIdent map[string]int
	count   int
}

func newIdentifierGroups() *identifierGroups {
	return &identifierGroups{byIdent: make(map[string]int)}
}

// assign joins the first group any of the identifiers already belongs to, or
// mints a new group, then registers the unmapped identifiers.
func (g *identifierGroups) assign(idents []string) int {
	group := -1
	for _, ident := range idents {
		if existing, ok := g.byIdent[ident]; ok {
			group = existing
			break
		}
	}
	if group < 0 {
		group = g.count
		g.count++
	}
	for _, ident := range idents {
		if _, ok := g.byIdent[ident]; !ok {
			g.byIdent[ident] = group
		}
	}
	return group
}

func companyIdentifiers(row CompanyRecord) []string {
	var idents []string
	if orgnr := normalize.OrgNr(row.OrgNr); orgnr != "" {
		idents = append(idents, "orgnr:"+orgnr)
	}
	if domain := normalize.Domain(row.Domain); domain != "" && domain != keys.PlaceholderDomain {
		idents = append(idents, "domain:"+domain)
	}
	if name := normalize.CompanyName(row.Name); name != "" {
		idents = append(idents, "name:"+name)
	}
	if slug := normalize.Slug(row.Name); slug != "" {
		idents = append(idents, "slug:"+slug)
	}
	return idents
}

func companyScore(row CompanyRecord) int {
	score := 0
	if normalize.OrgNr(row.OrgNr) != "" {
		score += weightOrgNr
	}
	if domain := normalize.Domain(row.Domain); domain != "" && domain != keys.PlaceholderDomain {
		score += weightDomain
	}
	if strings.TrimSpace(row.Name) != "" {
		score += weightName
	}
	for _, extra := range []string{row.Industry, row.CompanySize, row.Location, row.Sector, row.ProffURL, row.ProfitBeforeTax, row.Turnover} {
		if strings.TrimSpace(extra) != "" {
			score++
		}
	}
	return score
}

// DedupeCompanyRecords groups raw rows into equivalence classes over shared
// identifiers and reduces each class to one canonical record: the most
// complete row wins, the rest null-coalesce into it. Rows with no identifier
// at all are dropped.
func DedupeCompanyRecords(rows []CompanyRecord) []CompanyRecord {
	groups := newIdentifierGroups()
	grouped := make(map[int][]CompanyRecord)
	var order []int

	for _, row := range rows {
		idents := companyIdentifiers(row)
		if len(idents) == 0 {
			continue
		}
		group := groups.assign(idents)
		if _, ok := grouped[group]; !ok {
			order = append(order, group)
		}
		grouped[group] = append(grouped[group], row)
	}

	out := make([]CompanyRecord, 0, len(order))
	for _, group := range order {
		out = append(out, reduceCompanyGroup(grouped[group]))
	}
	return out
}

func reduceCompanyGroup(rows []CompanyRecord) CompanyRecord {
	best := 0
	bestScore := companyScore(rows[0])
	for i := 1; i < len(rows); i++ {
		if score := companyScore(rows[i]); score > bestScore {
			best = i
			bestScore = score
		}
	}

	merged := rows[best]
	for i, row := range rows {
		if i == best {
			continue
		}
		coalesceCompanyRecord(&merged, row)
	}
	return merged
}

// coalesceCompanyRecord fills empty fields of dst from src, never
// overwriting a non-empty value.
func coalesceCompanyRecord(dst *CompanyRecord, src CompanyRecord) {
	fill := func(dstField *string, srcValue string) {
		if strings.TrimSpace(*dstField) == "" && strings.TrimSpace(srcValue) != "" {
			*dstField = srcValue
		}
	}
	fill(&dst.Name, src.Name)
	fill(&dst.OrgNr, src.OrgNr)
	fill(&dst.Domain, src.Domain)
	fill(&dst.Industry, src.Industry)
	fill(&dst.CompanySize, src.CompanySize)
	fill(&dst.Location, src.Location)
	fill(&dst.Sector, src.Sector)
	fill(&dst.ProffURL, src.ProffURL)
	fill(&dst.ProfitBeforeTax, src.ProfitBeforeTax)
	fill(&dst.Turnover, src.Turnover)
}

func contactIdentifiers(contact dto.ContactPersonInput, companyDomain, companyName string) []string {
	var idents []string
	if linkedin := normalize.LinkedInURL(contact.LinkedIn); linkedin != "" {
		idents = append(idents, "linkedin:"+linkedin)
	}
	if email := normalize.Email(contact.Email); email != "" {
		idents = append(idents, "email:"+email)
	}
	if phone := normalize.Phone(contact.PhoneNumber); phone != "" {
		idents = append(idents, "phone:"+phone)
	}
	if name := normalize.NameKey(contact.Name); name != "" {
		anchor := normalize.Domain(companyDomain)
		if anchor == "" || anchor == keys.PlaceholderDomain {
			anchor = normalize.NameKey(companyName)
		}
		if anchor != "" {
			idents = append(idents, "name:"+anchor+"_"+name)
		}
	}
	return idents
}

// DedupeContactInputs collapses contacts within one posting that share any
// identifying signal, keeping the first occurrence and filling its empty
// fields from later duplicates.
func DedupeContactInputs(contacts []dto.ContactPersonInput, companyDomain, companyName string) []dto.ContactPersonInput {
	groups := newIdentifierGroups()
	seen := make(map[int]int)
	var out []dto.ContactPersonInput

	for _, contact := range contacts {
		idents := contactIdentifiers(contact, companyDomain, companyName)
		if len(idents) == 0 {
			continue
		}
		group := groups.assign(idents)
		if idx, ok := seen[group]; ok {
			fillContact(&out[idx], contact)
			continue
		}
		seen[group] = len(out)
		out = append(out, contact)
	}
	return out
}

func fillContact(dst *dto.ContactPersonInput, src dto.ContactPersonInput) {
	if strings.TrimSpace(dst.Name) == "" {
		dst.Name = src.Name
	}
	if strings.TrimSpace(dst.Role) == "" {
		dst.Role = src.Role
	}
	if strings.TrimSpace(dst.Email) == "" {
		dst.Email = src.Email
	}
	if strings.TrimSpace(dst.PhoneNumber) == "" {
		dst.PhoneNumber = src.PhoneNumber
	}
	if strings.TrimSpace(dst.LinkedIn) == "" {
		dst.LinkedIn = src.LinkedIn
	}
}
