package transalliance

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

var (
	referencePattern    = regexp.MustCompile(`(?i)\bREF\b\s*[.:#]*\s*([A-Z0-9][A-Z0-9/\-]*)`)
	documentDatePattern = regexp.MustCompile(`(?i)date\s*/\s*time\s*[.:]*\s*(\d{1,2}/\d{1,2}/\d{2,4})`)

	weightPattern   = regexp.MustCompile(`(?i)\bweight\b[^0-9]*(\d[\d.,\s]*)`)
	goodsPattern    = regexp.MustCompile(`(?i)^\s*(?:nature of goods|goods|cargo|description)\s*[.:]+\s*(.+)$`)
	packagesPattern = regexp.MustCompile(`(?i)\b(?:packages?|pallets?|quantity|qty|colli)\s*[.:]+\s*(\d+)\s*([\p{L}-]+)?`)
	countPattern    = regexp.MustCompile(`(?i)^\s*(\d+)\s*(eur-?pallets?|pallets?|pal|plt|colli|colis|cartons?|ctn|crates?|rolls?|drums?|packages?|pkgs?|pcs)\b`)
	pricePattern    = regexp.MustCompile(`(?i)\b(?:freight price|freight|price|total)\b[^0-9]*(\d[\d.,\s]*\d|\d)\s*(EUR|GBP|USD|PLN|CHF|€|£|\$)?`)

	// Metadata lines attach to a party without closing its section.
	emailPattern   = regexp.MustCompile(`[\w.+-]+@[\w-]+(?:\.[\w-]+)+`)
	vatPattern     = regexp.MustCompile(`(?i)\b(?:VAT|PVM|TVA)\b(?:\s*(?:code|no\.?|number|nr\.?))?\s*[.:]*\s*([A-Z]{2}\s?[A-Z0-9]{6,14})`)
	contactPattern = regexp.MustCompile(`(?i)^\s*contact(?:\s*person)?\s*[.:]+\s*(.+)$`)
	codePattern    = regexp.MustCompile(`(?i)^\s*(?:company code|reg\.?\s*no\.?|registration(?:\s*no\.?)?)\s*[.:]*\s*([A-Z0-9-]{5,})`)
	phonePattern   = regexp.MustCompile(`(?i)^\s*(?:tel|phone|fax|gsm|mob|mobile)\b`)
)

var currencySymbols = map[string]string{
	"€": "EUR",
	"£": "GBP",
	"$": "USD",
}

// extractReference returns the order reference printed after "REF".
func extractReference(line string) (string, bool) {
	m := referencePattern.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractDocumentDate returns the day of a "Date/Time : dd/mm/yyyy" line.
func extractDocumentDate(line string) (time.Time, bool) {
	m := documentDatePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	return parseDocumentDate(m[1])
}

// cargoBuilder collects cargo fields; a field seen twice starts a new item.
type cargoBuilder struct {
	items   []entity.CargoItem
	current entity.CargoItem
	set     map[string]bool
	price   *float64
	curr    string
}

func newCargoBuilder() *cargoBuilder {
	return &cargoBuilder{set: map[string]bool{}}
}

func (b *cargoBuilder) field(name string) {
	if b.set[name] {
		b.push()
	}
	b.set[name] = true
}

func (b *cargoBuilder) push() {
	if len(b.set) == 0 {
		return
	}
	b.items = append(b.items, b.current)
	b.current = entity.CargoItem{}
	b.set = map[string]bool{}
}

// observe extracts any cargo or price field from line and reports whether
// something was recognised.
func (b *cargoBuilder) observe(line string) bool {
	if m := weightPattern.FindStringSubmatch(line); m != nil {
		if v, ok := normalize.ParseDecimal(m[1]); ok {
			b.field("weight")
			b.current.Weight = v
			return true
		}
	}
	if m := goodsPattern.FindStringSubmatch(line); m != nil {
		b.field("title")
		b.current.Title = strings.TrimSpace(m[1])
		return true
	}
	if m := packagesPattern.FindStringSubmatch(line); m != nil {
		return b.packages(m[1], m[2])
	}
	if m := countPattern.FindStringSubmatch(line); m != nil {
		return b.packages(m[1], m[2])
	}
	if m := pricePattern.FindStringSubmatch(line); m != nil && b.price == nil {
		if v, ok := normalize.ParseDecimal(m[1]); ok {
			b.price = &v
			cur := strings.ToUpper(m[2])
			if code, ok := currencySymbols[m[2]]; ok {
				cur = code
			}
			b.curr = cur
			return true
		}
	}
	return false
}

func (b *cargoBuilder) packages(count, kind string) bool {
	n, err := strconv.Atoi(count)
	if err != nil {
		return false
	}
	b.field("packages")
	b.current.PackageCount = n
	if kind != "" {
		t, _ := constants.CanonicalizePackageType(kind)
		b.current.PackageType = string(t)
	} else if b.current.PackageType == "" {
		b.current.PackageType = string(constants.Pallet)
	}
	return true
}

func (b *cargoBuilder) finish() []entity.CargoItem {
	b.push()
	return b.items
}

// metadata applies a contact line to p. It reports whether line was contact
// metadata at all; telephone lines are recognised and dropped.
func metadata(p *entity.Party, line string) bool {
	switch {
	case phonePattern.MatchString(line):
		if p != nil && p.Email == "" {
			if m := emailPattern.FindString(line); m != "" {
				p.Email = m
			}
		}
		return true
	case contactPattern.MatchString(line):
		if p != nil && p.ContactPerson == "" {
			p.ContactPerson = strings.TrimSpace(contactPattern.FindStringSubmatch(line)[1])
		}
		return true
	case vatPattern.MatchString(line):
		if p != nil && p.VATCode == "" {
			p.VATCode = strings.ReplaceAll(vatPattern.FindStringSubmatch(line)[1], " ", "")
		}
		return true
	case codePattern.MatchString(line):
		if p != nil && p.CompanyCode == "" {
			p.CompanyCode = codePattern.FindStringSubmatch(line)[1]
		}
		return true
	case emailPattern.MatchString(line):
		if p != nil && p.Email == "" {
			p.Email = emailPattern.FindString(line)
		}
		return true
	}
	return false
}
