package transalliance

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

// postalRule recognises one national postal code and the city text around it.
type postalRule struct {
	country string
	re      *regexp.Regexp
	format  func(m []string) string
}

var (
	ltPostal = postalRule{
		country: "LT",
		re:      regexp.MustCompile(`(?i)\bLT\s*-?\s*(\d{5})\b`),
		format:  func(m []string) string { return "LT-" + m[1] },
	}
	frPostal = postalRule{
		country: "FR",
		re:      regexp.MustCompile(`\b(?:F-)?(\d{5})\b`),
		format:  func(m []string) string { return m[1] },
	}
	ukPostal = postalRule{
		country: "GB",
		re:      regexp.MustCompile(`\b([A-Z]{1,2}\d[A-Z\d]?)\s*(\d[A-Z]{2})\b`),
		format:  func(m []string) string { return m[1] + " " + m[2] },
	}

	// domesticDigits is a five-digit code printed without a country prefix.
	domesticDigits = regexp.MustCompile(`\b(\d{5})\b`)
	streetKeyword  = regexp.MustCompile(`(?i)\b(street|st|road|rd|avenue|ave|lane|way|park|unit|estate|industrial|boulevard|bd|place|rue|route|chemin|allee|quai|g|gatve|pr|al)\b`)
	cityText       = regexp.MustCompile(`^[\p{L}][\p{L}\s\-'.]+$`)
)

// Resolver turns a buffer of raw lines into an address for one role.
type Resolver struct {
	role       Role
	rules      []postalRule
	country    string
	countries  normalize.CountryLookup
	classifier *Classifier
	// streetScan looks past buffer[0] for an address-shaped street line.
	streetScan bool
}

// domesticPostal reads a bare five-digit code as a code of country, written
// the way that country prints it.
func domesticPostal(country string) postalRule {
	rule := postalRule{
		country: country,
		re:      domesticDigits,
		format:  func(m []string) string { return m[1] },
	}
	if strings.EqualFold(country, ltPostal.country) {
		rule.format = ltPostal.format
	}
	return rule
}

func newResolvers(c *compiledTables, cls *Classifier, countries normalize.CountryLookup) map[Role]*Resolver {
	// The LT code carries its own prefix and is tried first everywhere;
	// a bare five-digit French rule would otherwise claim it. Customers are
	// domestic, so their bare five-digit codes belong to the customer country.
	return map[Role]*Resolver{
		RoleCustomer: {
			role: RoleCustomer, rules: []postalRule{ltPostal, domesticPostal(c.countries.Customer), ukPostal},
			country: c.countries.Customer, countries: countries, classifier: cls,
		},
		RoleLoading: {
			role: RoleLoading, rules: []postalRule{ltPostal, ukPostal, frPostal},
			country: c.countries.Loading, countries: countries, classifier: cls, streetScan: true,
		},
		RoleDelivery: {
			role: RoleDelivery, rules: []postalRule{ltPostal, frPostal, ukPostal},
			country: c.countries.Delivery, countries: countries, classifier: cls, streetScan: true,
		},
	}
}

// Resolve builds an address from buffer using every fallback.
func (r *Resolver) Resolve(buffer []string) entity.Address {
	a, _ := r.resolve(buffer, false)
	return a
}

// ResolveInto merges the address found in buffer into dst. Fields already set
// on dst are kept.
func (r *Resolver) ResolveInto(dst *entity.Address, buffer []string) {
	mergeAddress(dst, r.Resolve(buffer))
}

// resolve reports completeness alongside the address. In strict mode the city
// is only taken from a postal-code line, never from position.
func (r *Resolver) resolve(buffer []string, strict bool) (entity.Address, bool) {
	var a entity.Address
	if len(buffer) == 0 {
		return a, false
	}

	postalIdx, countryIdx := -1, -1
	postalCountry, postalStreet := "", ""
	for i, raw := range buffer {
		line := strings.TrimSpace(raw)
		if postalIdx < 0 {
			if code, city, street, country, ok := r.matchPostal(line); ok {
				a.PostalCode, a.City = code, city
				postalStreet, postalCountry = street, country
				postalIdx = i
				continue
			}
		}
		if countryIdx < 0 && r.isCountryLine(line) {
			a.Country = line
			countryIdx = i
		}
	}

	used := func(i int) bool { return i == postalIdx || i == countryIdx }

	// buffer[0] is the street by default; location roles first look for a
	// line shaped like one.
	streetIdx := -1
	if r.streetScan {
		for i, line := range buffer {
			if !used(i) && looksLikeStreet(line) && r.classifier.IsAddressLine(line) {
				streetIdx = i
				break
			}
		}
	}
	if streetIdx < 0 && !used(0) {
		streetIdx = 0
	}
	if streetIdx >= 0 {
		a.Street = strings.TrimSpace(buffer[streetIdx])
	}
	if a.Street == "" {
		a.Street = postalStreet
	}

	if postalIdx >= 0 && a.City == "" {
		for _, i := range []int{postalIdx + 1, postalIdx - 1} {
			if i < 0 || i >= len(buffer) || used(i) || i == streetIdx {
				continue
			}
			if line := strings.TrimSpace(buffer[i]); cityText.MatchString(line) {
				a.City = line
				break
			}
		}
	}
	if !strict && postalIdx < 0 && a.City == "" {
		a.City = positionalCity(buffer, streetIdx, used)
	}

	if a.Country == "" {
		a.Country = postalCountry
	}
	if a.Country == "" && (a.City != "" || a.PostalCode != "") {
		a.Country = r.country
	}

	complete := a.Street != "" && a.City != "" && postalIdx >= 0
	return a, complete
}

// positionalCity is buffer[1]. When that line holds the street or the
// country, the first free line after the street is taken; lines above the
// street are never read as the city.
func positionalCity(buffer []string, streetIdx int, used func(int) bool) string {
	free := func(i int) bool { return i < len(buffer) && !used(i) && i != streetIdx }
	if free(1) {
		return strings.TrimSpace(buffer[1])
	}
	start := streetIdx + 1
	if start < 2 {
		start = 2
	}
	for i := start; i < len(buffer); i++ {
		if free(i) {
			return strings.TrimSpace(buffer[i])
		}
	}
	return ""
}

// matchPostal tries each rule in order on line. The text left after removing
// the code is split on commas: the last segment is the city and anything
// before it is street text.
func (r *Resolver) matchPostal(line string) (code, city, street, country string, ok bool) {
	for _, rule := range r.rules {
		loc := rule.re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		m := make([]string, 0, len(loc)/2)
		for i := 0; i+1 < len(loc); i += 2 {
			if loc[i] < 0 {
				m = append(m, "")
				continue
			}
			m = append(m, line[loc[i]:loc[i+1]])
		}
		rest := strings.TrimSpace(line[:loc[0]] + " " + line[loc[1]:])
		rest = strings.Trim(rest, " ,-")
		parts := splitNonEmpty(rest, ",")
		if len(parts) > 0 {
			city = parts[len(parts)-1]
			street = strings.Join(parts[:len(parts)-1], ", ")
		}
		return rule.format(m), city, street, rule.country, true
	}
	return "", "", "", "", false
}

// isCountryLine reports a short, digit-free line naming a country.
func (r *Resolver) isCountryLine(line string) bool {
	if r.countries == nil || line == "" || len(strings.Fields(line)) > 3 {
		return false
	}
	if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return false
	}
	_, ok := r.countries.ISOCode(line)
	return ok
}

// looksLikeStreet is an all-caps line carrying a number, or any line with a
// street keyword.
func looksLikeStreet(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	hasDigit := strings.IndexFunc(line, unicode.IsDigit) >= 0
	if hasDigit && line == strings.ToUpper(line) && strings.IndexFunc(line, unicode.IsLetter) >= 0 {
		return true
	}
	return streetKeyword.MatchString(line)
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// mergeAddress fills the empty fields of dst from src.
func mergeAddress(dst *entity.Address, src entity.Address) {
	if dst.Street == "" {
		dst.Street = src.Street
	}
	if dst.City == "" {
		dst.City = src.City
	}
	if dst.PostalCode == "" {
		dst.PostalCode = src.PostalCode
	}
	if dst.Country == "" {
		dst.Country = src.Country
	}
}
