package normalize

import (
	"strings"
	"time"
)

// placeholderDates are scraped tokens that mean "no date".
var placeholderDates = map[string]struct{}{
	"snarest":     {},
	"asap":        {},
	"immediately": {},
}

var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2. January 2006",
	"January 2, 2006",
}

// Date parses a scraped date string and re-serializes it as an ISO-8601 date
// (YYYY-MM-DD). Accepts ISO-prefixed strings, Norwegian DD.MM.YYYY, and a
// handful of fallback layouts. Placeholder tokens and unparseable input both
// map to "".
func Date(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, ok := placeholderDates[strings.ToLower(raw)]; ok {
		return ""
	}

	// ISO-prefixed: trust the leading YYYY-MM-DD and drop the rest.
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if t, err := time.Parse("02.01.2006", raw); err == nil {
		return t.Format("2006-01-02")
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
