// Package normalize holds the pure string normalizers used for identity
// resolution. Every function accepts raw scraped input and returns the
// canonical form, or the empty string when no canonical form exists; none of
// them return errors.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

const (
	nameKeyMaxLen = 100
	slugMaxLen    = 80

	// defaultPhoneRegion anchors E.164 rendering; stored phone keys use the
	// deterministic digit rules in Phone instead.
	defaultPhoneRegion = "NO"
)

var (
	wwwPrefixPattern = regexp.MustCompile(`^www\d*\.`)
	whitespace       = regexp.MustCompile(`\s+`)
	idnaProfile      = idna.Lookup
)

// Domain extracts the canonical lowercase host from a raw domain or URL
// string, stripping any www/www2/www3... prefix. Returns "" on empty input.
func Domain(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	host := ""
	candidate := raw
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	if u, err := url.Parse(candidate); err == nil && u.Host != "" {
		host = u.Hostname()
	} else {
		// Manual fallback for strings url.Parse rejects.
		host = raw
		if idx := strings.Index(host, "://"); idx >= 0 {
			host = host[idx+3:]
		}
		for _, sep := range []string{"/", "?", "#", ":"} {
			if idx := strings.Index(host, sep); idx >= 0 {
				host = host[:idx]
			}
		}
	}

	host = strings.ToLower(strings.Trim(host, "."))
	for {
		stripped := wwwPrefixPattern.ReplaceAllString(host, "")
		if stripped == host {
			break
		}
		host = stripped
	}
	if host == "" {
		return ""
	}
	if ascii, err := idnaProfile.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return host
}

// Email lowercases and trims an email address. Returns "" on empty input.
func Email(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Phone reduces a raw phone string to bare digits and strips a Norwegian
// country code only when the original string carried an explicit marker
// (+47, 0047, "47 ", "47-"). An 8-digit number that merely starts with 47 is
// left alone.
func Phone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	out := digits.String()
	if out == "" {
		return ""
	}

	marker := strings.HasPrefix(trimmed, "+47") ||
		strings.HasPrefix(trimmed, "0047") ||
		strings.HasPrefix(trimmed, "47 ") ||
		strings.HasPrefix(trimmed, "47-")

	if marker && len(out) == 10 && strings.HasPrefix(out, "47") {
		return out[2:]
	}
	if strings.HasPrefix(out, "0047") && len(out) == 12 {
		return out[4:]
	}
	return out
}

// PhoneE164 renders a phone number in E.164 when phonenumbers can parse it,
// defaulting to Norway. Returns "" when the number cannot be parsed or is
// not valid; callers fall back to the stored digit form.
func PhoneE164(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, defaultPhoneRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// LinkedInURL canonicalizes a LinkedIn profile or company URL: country
// subdomains collapse to www.linkedin.com, query, fragment and trailing
// slash are stripped. Non-LinkedIn hosts yield "".
func LinkedInURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	if !strings.Contains(host, "linkedin.") {
		return ""
	}
	if host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com") {
		host = "www.linkedin.com"
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	return "https://" + host + path
}

// OrgNr strips all whitespace from an organisation number. Returns "" on
// empty input.
func OrgNr(raw string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(raw), "")
}

// NameKey normalizes a personal or company name for use inside a natural
// key: trimmed, lowercased, internal whitespace collapsed, capped at 100
// characters.
func NameKey(raw string) string {
	name := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
	if runes := []rune(name); len(runes) > nameKeyMaxLen {
		name = string(runes[:nameKeyMaxLen])
	}
	return name
}

// NameCompare produces the comparison form of a name: NameKey with all
// non-word characters removed.
func NameCompare(raw string) string {
	name := NameKey(raw)
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return whitespace.ReplaceAllString(strings.TrimSpace(b.String()), " ")
}

// legalSuffixes lists the entity suffixes stripped from company names before
// comparison. Checked as the final whitespace-separated token, one strip only.
var legalSuffixes = map[string]struct{}{
	"as": {}, "asa": {}, "a/s": {}, "ans": {}, "da": {}, "ba": {}, "sa": {},
	"nuf": {}, "ks": {},
	"corporation": {}, "incorporated": {}, "limited": {}, "company": {},
	"corp": {}, "inc": {}, "ltd": {}, "llc": {}, "llp": {}, "gmbh": {},
	"ag": {}, "bv": {}, "nv": {}, "plc": {}, "co": {},
	"group": {}, "holding": {}, "holdings": {},
}

// CompanyName produces the canonical comparison key for fuzzy company
// identity: lowercased, one trailing legal-entity suffix stripped, then all
// non-alphanumeric characters removed (Nordic letters preserved).
func CompanyName(raw string) string {
	name := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")
	if name == "" {
		return ""
	}

	if idx := strings.LastIndex(name, " "); idx > 0 {
		last := strings.TrimRight(name[idx+1:], ".")
		if _, ok := legalSuffixes[last]; ok {
			name = name[:idx]
		}
	}

	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug lowercases a name and strips everything but letters and digits,
// capped at 80 characters. Used as the weakest company key signal.
func Slug(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	slug := b.String()
	if runes := []rune(slug); len(runes) > slugMaxLen {
		slug = string(runes[:slugMaxLen])
	}
	return slug
}

// ValidPersonName reports whether a name carries at least two
// whitespace-separated tokens; single-token names are not identifying.
func ValidPersonName(name string) bool {
	return len(strings.Fields(name)) >= 2
}
