package normalize

import "testing"

func TestDomain(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":               {"", ""},
		"bare host":           {"acme-energy.no", "acme-energy.no"},
		"full url":            {"https://www.acme-energy.no/careers?id=3", "acme-energy.no"},
		"http scheme":         {"http://acme-energy.no", "acme-energy.no"},
		"www prefix":          {"www.acme-energy.no", "acme-energy.no"},
		"numbered www":        {"www2.acme-energy.no", "acme-energy.no"},
		"stacked www":         {"www.www2.acme-energy.no", "acme-energy.no"},
		"uppercase":           {"WWW.ACME-ENERGY.NO", "acme-energy.no"},
		"port stripped":       {"acme-energy.no:8080", "acme-energy.no"},
		"trailing dot":        {"acme-energy.no.", "acme-energy.no"},
		"path only no parse":  {"acme-energy.no/jobs", "acme-energy.no"},
		"unicode host":        {"blåbær.no", "xn--blbr-roan.no"},
		"placeholder kept":    {"https://www.finn.no/job/ad/1", "finn.no"},
		"whitespace":          {"  acme.no  ", "acme.no"},
		"scheme only garbage": {"https://", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Domain(tt.in); got != tt.want {
				t.Fatalf("Domain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDomainIdempotent(t *testing.T) {
	for _, in := range []string{"https://www.acme-energy.no/careers", "www.www2.acme.no", "blåbær.no"} {
		once := Domain(in)
		if twice := Domain(once); twice != once {
			t.Fatalf("Domain not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestPhone(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":                     {"", ""},
		"plain eight digits":        {"99988877", "99988877"},
		"spaces":                    {"999 88 877", "99988877"},
		"plus 47 marker":            {"+47 99988877", "99988877"},
		"plus 47 with spaces":       {"+47 999 88 877", "99988877"},
		"0047 marker":               {"0047 99988877", "99988877"},
		"47 space marker":           {"47 99988877", "99988877"},
		"47 dash marker":            {"47-99988877", "99988877"},
		"starts with 47 no marker":  {"47998877", "47998877"},
		"ten digits no marker kept": {"4799888777", "4799888777"},
		"letters only":              {"call me", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Phone(tt.in); got != tt.want {
				t.Fatalf("Phone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPhoneE164(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"norwegian mobile":  {"99988877", "+4799988877"},
		"already e164":      {"+4799988877", "+4799988877"},
		"with spaces":       {"+47 999 88 877", "+4799988877"},
		"unparseable":       {"abc", ""},
		"too short invalid": {"123", ""},
		"empty":             {"", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := PhoneE164(tt.in); got != tt.want {
				t.Fatalf("PhoneE164(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLinkedInURL(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":             {"", ""},
		"canonical":         {"https://www.linkedin.com/in/kari-nordmann", "https://www.linkedin.com/in/kari-nordmann"},
		"trailing slash":    {"https://www.linkedin.com/in/kari-nordmann/", "https://www.linkedin.com/in/kari-nordmann"},
		"country subdomain": {"https://no.linkedin.com/in/kari-nordmann", "https://www.linkedin.com/in/kari-nordmann"},
		"bare domain":       {"linkedin.com/in/kari-nordmann", "https://www.linkedin.com/in/kari-nordmann"},
		"query stripped":    {"https://www.linkedin.com/in/kari-nordmann?trk=abc#top", "https://www.linkedin.com/in/kari-nordmann"},
		"company page":      {"https://www.linkedin.com/company/acme-energy/", "https://www.linkedin.com/company/acme-energy"},
		"not linkedin":      {"https://example.com/in/kari", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := LinkedInURL(tt.in); got != tt.want {
				t.Fatalf("LinkedInURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOrgNr(t *testing.T) {
	if got := OrgNr(" 998 877 665 "); got != "998877665" {
		t.Fatalf("expected whitespace stripped, got %q", got)
	}
	if got := OrgNr(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestNameKey(t *testing.T) {
	if got := NameKey("  Kari   NORDMANN "); got != "kari nordmann" {
		t.Fatalf("unexpected name key: %q", got)
	}
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	if got := NameKey(string(long)); len([]rune(got)) != 100 {
		t.Fatalf("expected 100 rune cap, got %d", len([]rune(got)))
	}
}

func TestNameCompare(t *testing.T) {
	if got := NameCompare("Kari-Anne O'Nordmann"); got != "karianne onordmann" {
		t.Fatalf("unexpected compare form: %q", got)
	}
}

func TestCompanyName(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":             {"", ""},
		"plain":             {"ACME Energy", "acmeenergy"},
		"as suffix":         {"ACME Energy AS", "acmeenergy"},
		"asa suffix":        {"ACME Energy ASA", "acmeenergy"},
		"a slash s":         {"Acme Energy A/S", "acmeenergy"},
		"suffix with dot":   {"Acme Energy AS.", "acmeenergy"},
		"one strip only":    {"Acme Holding AS", "acmeholding"},
		"suffix is name":    {"AS", "as"},
		"english ltd":       {"Acme Energy Ltd", "acmeenergy"},
		"nordic letters":    {"Blåbær Næring AS", "blåbærnæring"},
		"punctuation":       {"Acme-Energy AS", "acmeenergy"},
		"suffix mid-name":   {"AS Acme Energy", "asacmeenergy"},
		"digits preserved":  {"Acme 24 AS", "acme24"},
		"spaces collapsed":  {"  Acme   Energy  ", "acmeenergy"},
		"group suffix":      {"Acme Group", "acme"},
		"unmatched trailer": {"Acme Energy Norge", "acmeenergynorge"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := CompanyName(tt.in); got != tt.want {
				t.Fatalf("CompanyName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("ACME Energy"); got != "acmeenergy" {
		t.Fatalf("unexpected slug: %q", got)
	}
	if got := Slug("Blåbær & Co."); got != "blåbærco" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestValidPersonName(t *testing.T) {
	tests := map[string]struct {
		in   string
		want bool
	}{
		"two words":   {"Kari Nordmann", true},
		"three words": {"Kari Anne Nordmann", true},
		"one word":    {"Kari", false},
		"empty":       {"", false},
		"whitespace":  {"   ", false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := ValidPersonName(tt.in); got != tt.want {
				t.Fatalf("ValidPersonName(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"empty":            {"", ""},
		"iso":              {"2026-01-02", "2026-01-02"},
		"iso datetime":     {"2026-01-02T10:00:00Z", "2026-01-02"},
		"iso with time":    {"2026-01-02 10:00:00", "2026-01-02"},
		"norwegian":        {"02.01.2026", "2026-01-02"},
		"slash format":     {"02/01/2026", "2026-01-02"},
		"placeholder":      {"Snarest", ""},
		"placeholder asap": {"ASAP", ""},
		"garbage":          {"next summer", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := Date(tt.in); got != tt.want {
				t.Fatalf("Date(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
