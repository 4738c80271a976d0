// Package transalliance extracts orders from the Transalliance transport
// document template.
package transalliance

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule is one deny-list entry: lines matching Pattern are noise of kind Meaning.
type Rule struct {
	Pattern string `yaml:"pattern"`
	Meaning string `yaml:"meaning"`
}

// Markers holds the section-opening patterns. Customer markers are ranked:
// an earlier pattern reopens a customer block opened by a later one.
type Markers struct {
	Customer []string `yaml:"customer"`
	Loading  []string `yaml:"loading"`
	Delivery []string `yaml:"delivery"`
}

// RoleCountries is the country assumed for each party role.
type RoleCountries struct {
	Customer string `yaml:"customer"`
	Loading  string `yaml:"loading"`
	Delivery string `yaml:"delivery"`
}

// Tables is the declarative description of the template. Everything the scan
// loop matches against lives here so it can be audited and overridden.
type Tables struct {
	// Detector is the operator name printed on every document of the family.
	Detector string  `yaml:"detector"`
	Markers  Markers `yaml:"markers"`
	// RangeSeparators split the from/to times of a window line.
	RangeSeparators []string      `yaml:"range_separators"`
	CustomerDeny    []Rule        `yaml:"customer_deny"`
	LocationDeny    []Rule        `yaml:"location_deny"`
	AddressDeny     []Rule        `yaml:"address_deny"`
	Countries       RoleCountries `yaml:"countries"`
}

var commonDeny = []Rule{
	{Pattern: `(?i)\bREF\b`, Meaning: "reference marker"},
	{Pattern: `(?i)\bweight\b`, Meaning: "weight marker"},
	{Pattern: `(?i)instruction`, Meaning: "instruction marker"},
	{Pattern: `(?i)^\s*(goods|cargo|nature of goods)\b`, Meaning: "goods marker"},
	{Pattern: `(?i)\b(packages?|pallets?|quantity|qty)\s*[.:]`, Meaning: "package marker"},
	{Pattern: `(?i)\b(freight|price|total)\b`, Meaning: "price marker"},
	{Pattern: `(?i)payment terms`, Meaning: "payment terms label"},
	{Pattern: `(?i)date\s*/\s*time`, Meaning: "document date label"},
	{Pattern: `(?i)^\s*(loading|delivery)\b`, Meaning: "section marker"},
	{Pattern: `(?i)transalliance`, Meaning: "operator header"},
	{Pattern: `(?i)^\s*page\s+\d+`, Meaning: "page footer"},
	{Pattern: `(?i)\b(conditions|terms and)\b`, Meaning: "legal boilerplate"},
}

// DefaultTables returns the tables for the printed Transalliance template.
func DefaultTables() Tables {
	location := append([]Rule{}, commonDeny...)
	location = append(location,
		Rule{Pattern: `(?i)^\s*(ONE|TWO|THREE)\s*:`, Meaning: "window label"},
		Rule{Pattern: `(?i)opening hours`, Meaning: "opening hours"},
		Rule{Pattern: `(?i)\bdate\b`, Meaning: "date label"},
	)

	address := append([]Rule{}, location...)
	address = append(address,
		Rule{Pattern: `(?i)\b(tel|phone|fax|gsm|mob|mobile)\b`, Meaning: "telephone"},
		Rule{Pattern: `(?i)\b(vat|pvm|tva)\b`, Meaning: "vat code"},
		Rule{Pattern: `(?i)e-?mail`, Meaning: "email label"},
		Rule{Pattern: `(?i)\bcontact\b`, Meaning: "contact person"},
		Rule{Pattern: `(?i)(company code|reg\.?\s*no|registration)`, Meaning: "company code"},
	)

	return Tables{
		Detector: "TRANSALLIANCE TS LTD",
		Markers: Markers{
			Customer: []string{`(?i)payment terms`, `^\s*Date\s*/\s*Time\s*:`},
			Loading:  []string{`^\s*Loading\b`},
			Delivery: []string{`^\s*Delivery\b`},
		},
		RangeSeparators: []string{"–", "-", "—", "â€“", "to"},
		CustomerDeny:    append([]Rule{}, commonDeny...),
		LocationDeny:    location,
		AddressDeny:     address,
		Countries: RoleCountries{
			Customer: "LT",
			Loading:  "GB",
			Delivery: "FR",
		},
	}
}

// LoadTables overlays the YAML file at path onto DefaultTables. Keys absent
// from the file keep their defaults. An empty path returns the defaults.
func LoadTables(path string) (Tables, error) {
	t := DefaultTables()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read template tables: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return t, fmt.Errorf("parse template tables %s: %w", path, err)
	}
	return t, nil
}

type compiledRule struct {
	re      *regexp.Regexp
	meaning string
}

type compiledTables struct {
	detector        string
	customerOpen    []*regexp.Regexp
	loadingOpen     []*regexp.Regexp
	deliveryOpen    []*regexp.Regexp
	customerDeny    []compiledRule
	locationDeny    []compiledRule
	addressDeny     []compiledRule
	window          *regexp.Regexp
	countries       RoleCountries
	rangeSeparators []string
}

func (t Tables) compile() (*compiledTables, error) {
	if strings.TrimSpace(t.Detector) == "" {
		return nil, fmt.Errorf("template tables: detector marker is empty")
	}
	if len(t.RangeSeparators) == 0 {
		return nil, fmt.Errorf("template tables: no range separators")
	}

	c := &compiledTables{
		detector:        t.Detector,
		countries:       t.Countries,
		rangeSeparators: t.RangeSeparators,
	}
	var err error
	if c.customerOpen, err = compilePatterns("customer marker", t.Markers.Customer); err != nil {
		return nil, err
	}
	if c.loadingOpen, err = compilePatterns("loading marker", t.Markers.Loading); err != nil {
		return nil, err
	}
	if c.deliveryOpen, err = compilePatterns("delivery marker", t.Markers.Delivery); err != nil {
		return nil, err
	}
	if c.customerDeny, err = compileRules("customer deny", t.CustomerDeny); err != nil {
		return nil, err
	}
	if c.locationDeny, err = compileRules("location deny", t.LocationDeny); err != nil {
		return nil, err
	}
	if c.addressDeny, err = compileRules("address deny", t.AddressDeny); err != nil {
		return nil, err
	}
	if c.window, err = windowPattern(t.RangeSeparators); err != nil {
		return nil, err
	}
	return c, nil
}

func compilePatterns(table string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", table, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func compileRules(table string, rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", table, r.Pattern, err)
		}
		out = append(out, compiledRule{re: re, meaning: r.Meaning})
	}
	return out, nil
}

func matchAny(res []*regexp.Regexp, line string) bool {
	return matchIndex(res, line) >= 0
}

// matchIndex returns the index of the first pattern matching line, or -1.
func matchIndex(res []*regexp.Regexp, line string) int {
	for i, re := range res {
		if re.MatchString(line) {
			return i
		}
	}
	return -1
}

// firstRule returns the meaning of the first rule matching line.
func firstRule(rules []compiledRule, line string) (string, bool) {
	for _, r := range rules {
		if r.re.MatchString(line) {
			return r.meaning, true
		}
	}
	return "", false
}
