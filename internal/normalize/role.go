package normalize

import (
	"strings"

	"github.com/stillingsradar/ingest-api/internal/entity"
)

// Keyword lists are ordered; decision-maker keywords are checked before
// recruiter keywords so that mixed titles ("rekrutterende leder") classify
// as decision makers.
var decisionMakerKeywords = []string{
	"daglig leder",
	"administrerende",
	"adm. dir",
	"adm.dir",
	"avdelingsleder",
	"fagleder",
	"seksjonsleder",
	"teamleder",
	"leder",
	"sjef",
	"direktør",
	"partner",
	"eier",
	"gründer",
	"styreleder",
	"ceo",
	"cfo",
	"coo",
	"cto",
	"chief",
	"founder",
	"owner",
	"director",
	"vice president",
	"head of",
	"manager",
}

var recruiterKeywords = []string{
	"rekrutterer",
	"rekruttering",
	"bemanning",
	"headhunter",
	"recruiter",
	"recruitment",
	"talent",
	"sourcing",
	"hr-",
	"hr ",
	"people & culture",
}

// ClassifyRole maps a free-text job title to a link role. Decision-maker
// keywords win ties; a missing or unmatched title defaults to
// contact_person.
func ClassifyRole(title string) entity.Role {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return entity.RoleContactPerson
	}
	for _, kw := range decisionMakerKeywords {
		if strings.Contains(title, kw) {
			return entity.RoleDecisionMaker
		}
	}
	for _, kw := range recruiterKeywords {
		if strings.Contains(title, kw) {
			return entity.RoleRecruiter
		}
	}
	return entity.RoleContactPerson
}
