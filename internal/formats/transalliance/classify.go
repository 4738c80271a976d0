package transalliance

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Role is the party a location block describes.
type Role int

const (
	RoleCustomer Role = iota
	RoleLoading
	RoleDelivery
)

func (r Role) String() string {
	switch r {
	case RoleCustomer:
		return "customer"
	case RoleLoading:
		return "loading"
	case RoleDelivery:
		return "delivery"
	}
	return "unknown"
}

const (
	minDataLineLength    = 3
	minAddressLineLength = 6
)

var (
	addressCharset = regexp.MustCompile(`^[\p{L}\p{N}\s\-.,/@]+$`)
	dateShaped     = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
)

// Classifier holds the line predicates used while a section is open. All
// methods are pure.
type Classifier struct {
	tables *compiledTables
}

// IsCustomerDataLine reports whether line still belongs to a customer block.
func (c *Classifier) IsCustomerDataLine(line string) bool {
	_, noise := c.ExplainCustomer(line)
	return !noise
}

// ExplainCustomer returns why line is noise for the customer block.
func (c *Classifier) ExplainCustomer(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < minDataLineLength {
		return "too short", true
	}
	return firstRule(c.tables.customerDeny, line)
}

// IsLocationDataLine reports whether line still belongs to a loading or
// delivery block.
func (c *Classifier) IsLocationDataLine(line string, role Role) bool {
	_, noise := c.ExplainLocation(line, role)
	return !noise
}

// ExplainLocation returns why line is noise for a location block. Date lines
// are always noise there; the window extractor owns them.
func (c *Classifier) ExplainLocation(line string, _ Role) (string, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < minDataLineLength {
		return "too short", true
	}
	if dateShaped.MatchString(line) {
		return "date line", true
	}
	return firstRule(c.tables.locationDeny, line)
}

// IsAddressLine is the strict filter for street and city candidates.
func (c *Classifier) IsAddressLine(line string) bool {
	_, noise := c.ExplainAddress(line)
	return !noise
}

// ExplainAddress returns why line cannot be street or city text.
func (c *Classifier) ExplainAddress(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) < minAddressLineLength {
		return "too short", true
	}
	if !addressCharset.MatchString(line) {
		return "unexpected characters", true
	}
	return firstRule(c.tables.addressDeny, line)
}
