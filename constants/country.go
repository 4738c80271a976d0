package constants

import (
	"strings"
)

type Country string

const (
	Austria       Country = "AT"
	Belgium       Country = "BE"
	CzechRepublic Country = "CZ"
	Denmark       Country = "DK"
	Estonia       Country = "EE"
	France        Country = "FR"
	Germany       Country = "DE"
	Ireland       Country = "IE"
	Italy         Country = "IT"
	Latvia        Country = "LV"
	Lithuania     Country = "LT"
	Luxembourg    Country = "LU"
	Netherlands   Country = "NL"
	Poland        Country = "PL"
	Portugal      Country = "PT"
	Spain         Country = "ES"
	Sweden        Country = "SE"
	Switzerland   Country = "CH"
	UnitedKingdom Country = "GB"
	UnitedStates  Country = "US"
)

var countryNames = map[string]Country{
	"austria":        Austria,
	"belgium":        Belgium,
	"czech republic": CzechRepublic,
	"czechia":        CzechRepublic,
	"denmark":        Denmark,
	"estonia":        Estonia,
	"france":         France,
	"germany":        Germany,
	"ireland":        Ireland,
	"italy":          Italy,
	"latvia":         Latvia,
	"lithuania":      Lithuania,
	"luxembourg":     Luxembourg,
	"netherlands":    Netherlands,
	"poland":         Poland,
	"portugal":       Portugal,
	"spain":          Spain,
	"sweden":         Sweden,
	"switzerland":    Switzerland,
	"united kingdom": UnitedKingdom,
	"united states":  UnitedStates,
}

// CanonicalizeCountry maps a free-text country name, a local spelling or an
// ISO alpha-2 code onto a known ISO code.
func CanonicalizeCountry(input string) (Country, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.Trim(normalized, ".,;:")
	if normalized == "" {
		return "", false
	}

	// synonyms map
	synonyms := map[string]Country{
		"uk":                       UnitedKingdom,
		"u.k":                      UnitedKingdom,
		"great britain":            UnitedKingdom,
		"england":                  UnitedKingdom,
		"scotland":                 UnitedKingdom,
		"wales":                    UnitedKingdom,
		"deutschland":              Germany,
		"lietuva":                  Lithuania,
		"lietuvos respublika":      Lithuania,
		"nederland":                Netherlands,
		"holland":                  Netherlands,
		"the netherlands":          Netherlands,
		"espana":                   Spain,
		"españa":                   Spain,
		"italia":                   Italy,
		"polska":                   Poland,
		"belgique":                 Belgium,
		"schweiz":                  Switzerland,
		"suisse":                   Switzerland,
		"usa":                      UnitedStates,
		"united states of america": UnitedStates,
	}

	if c, ok := synonyms[normalized]; ok {
		return c, true
	}
	if c, ok := countryNames[normalized]; ok {
		return c, true
	}

	// already an ISO code
	if len(normalized) == 2 {
		code := Country(strings.ToUpper(normalized))
		for _, c := range countryNames {
			if c == code {
				return c, true
			}
		}
	}

	return "", false
}

// CountryTable is the country-name to ISO-code lookup used by the normalizer.
type CountryTable struct{}

// ISOCode implements normalize.CountryLookup.
func (CountryTable) ISOCode(name string) (string, bool) {
	c, ok := CanonicalizeCountry(name)
	return string(c), ok
}
