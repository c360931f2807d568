// Package keys derives stable natural keys for companies, people and job
// posts from normalized attributes. Keys are deterministic: re-ingesting
// equivalent data always yields the same key.
package keys

import (
	"errors"
	"regexp"
	"strings"

	"github.com/stillingsradar/ingest-api/internal/normalize"
)

// PlaceholderDomain marks the scraping platform itself and is never accepted
// as an identity signal.
const PlaceholderDomain = "finn.no"

// ErrNoIdentifier is returned when no signal is strong enough to build a
// natural key. It is a hard per-record rejection, never a fallback to a
// random identifier.
var ErrNoIdentifier = errors.New("no identifier strong enough to derive a natural key")

var finnIDPattern = regexp.MustCompile(`/job/ad/(\d+)`)

// CompanySignals carries the raw identifying attributes of a company record.
type CompanySignals struct {
	OrgNr       string
	CleanDomain string
	Domain      string
	Name        string
}

// CompanyKey derives the natural company key, first signal wins:
// orgnr > clean domain > domain > name slug. The placeholder domain is
// rejected at both domain tiers.
func CompanyKey(s CompanySignals) (string, error) {
	if orgnr := normalize.OrgNr(s.OrgNr); orgnr != "" {
		return orgnr, nil
	}
	if domain := normalize.Domain(s.CleanDomain); domain != "" && domain != PlaceholderDomain {
		return domain, nil
	}
	if domain := normalize.Domain(s.Domain); domain != "" && domain != PlaceholderDomain {
		return domain, nil
	}
	if slug := normalize.Slug(s.Name); slug != "" {
		return slug, nil
	}
	return "", ErrNoIdentifier
}

// PersonSignals carries the raw identifying attributes of a contact.
type PersonSignals struct {
	LinkedInURL string
	Email       string
	Phone       string
	// Domain is the employer's domain, preferred over the company name
	// because it survives company renames.
	Domain string
	// CompanyNameOrKey anchors a name-only contact when no domain exists.
	CompanyNameOrKey string
	FullName         string
}

// PersonKey derives the natural person key, first signal wins:
// LinkedIn > email > phone > domain+name > company+name.
func PersonKey(s PersonSignals) (string, error) {
	if linkedin := normalize.LinkedInURL(s.LinkedInURL); linkedin != "" {
		return linkedin, nil
	}
	if email := normalize.Email(s.Email); email != "" {
		return email, nil
	}
	if phone := normalize.Phone(s.Phone); phone != "" {
		return phone, nil
	}

	name := normalize.NameKey(s.FullName)
	if name == "" {
		return "", ErrNoIdentifier
	}
	if domain := normalize.Domain(s.Domain); domain != "" && domain != PlaceholderDomain {
		return domain + "_" + name, nil
	}
	if company := normalize.NameKey(s.CompanyNameOrKey); company != "" {
		return company + "_" + name, nil
	}
	return "", ErrNoIdentifier
}

// FinnID extracts the posting identifier from a finn.no job URL (the numeric
// segment after /job/ad/) or accepts an explicitly supplied code. Absence of
// both rejects the record.
func FinnID(rawURL, finnkode string) (string, error) {
	if code := strings.TrimSpace(finnkode); code != "" {
		return code, nil
	}
	if m := finnIDPattern.FindStringSubmatch(strings.TrimSpace(rawURL)); len(m) == 2 {
		return m[1], nil
	}
	return "", ErrNoIdentifier
}
