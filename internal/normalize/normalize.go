// Package normalize enforces the output invariants of an extracted order:
// every party and address field present, ISO country codes, ordered time
// windows and at least one cargo line.
package normalize

import (
	"math"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// Timestamp layouts used on every time window.
const (
	TimestampLayout = "2006-01-02T15:04:05"
	DateLayout      = "2006-01-02"
)

const minFieldLength = 2

// CountryLookup maps a free-text country name to its ISO alpha-2 code.
type CountryLookup interface {
	ISOCode(name string) (string, bool)
}

// Options carries the per-call values the normalizer needs.
type Options struct {
	// OrderDate is the document date. Zero means "today" per the normalizer clock.
	OrderDate time.Time
}

type Normalizer struct {
	countries CountryLookup
	defaults  Defaults
	now       func() time.Time
}

func New(countries CountryLookup, defaults Defaults) *Normalizer {
	return &Normalizer{
		countries: countries,
		defaults:  defaults,
		now:       time.Now,
	}
}

// WithClock replaces the clock used when no order date is known.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	c := *n
	c.now = now
	return &c
}

// Defaults returns the placeholders this normalizer substitutes.
func (n *Normalizer) Defaults() Defaults {
	return n.defaults
}

// OrderDay resolves the order date used for defaulted windows.
func (n *Normalizer) OrderDay(opts Options) time.Time {
	d := opts.OrderDate
	if d.IsZero() {
		d = n.now()
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize rewrites o in place. Applying it twice yields the same order.
func (n *Normalizer) Normalize(o *entity.Order, opts Options) {
	day := n.OrderDay(opts)

	o.OrderReference = strings.TrimSpace(o.OrderReference)
	if o.OrderReference == "" {
		o.OrderReference = n.reference(o, day)
	}
	n.party(&o.Customer, n.defaults.Customer)

	if len(o.LoadingLocations) == 0 {
		o.LoadingLocations = []entity.Location{{}}
	}
	for i := range o.LoadingLocations {
		loc := &o.LoadingLocations[i]
		n.party(&loc.CompanyAddress, n.defaults.Loading)
		loc.Time = window(loc.Time, day, loadingFromHour, loadingToHour)
	}

	if len(o.DestinationLocations) == 0 {
		o.DestinationLocations = []entity.Location{{}}
	}
	destDay := day.AddDate(0, 0, destinationDayShift)
	for i := range o.DestinationLocations {
		loc := &o.DestinationLocations[i]
		n.party(&loc.CompanyAddress, n.defaults.Delivery)
		loc.Time = window(loc.Time, destDay, destinationFromHour, destinationToHour)
	}

	n.cargos(o)

	if o.FreightPrice != nil {
		if math.IsNaN(*o.FreightPrice) || *o.FreightPrice < 0 {
			o.FreightPrice = nil
		}
	}
	o.FreightCurrency = strings.ToUpper(strings.TrimSpace(o.FreightCurrency))
	if o.FreightPrice != nil && o.FreightCurrency == "" {
		o.FreightCurrency = n.defaults.Currency
	}

	if o.AttachmentFilenames == nil {
		o.AttachmentFilenames = []string{}
	}
}

// reference names an order printed without one after its first attachment,
// or after the order day when there is no attachment.
func (n *Normalizer) reference(o *entity.Order, day time.Time) string {
	key := day.Format("20060102")
	for _, name := range o.AttachmentFilenames {
		base := filepath.Base(strings.TrimSpace(name))
		if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
			key = stem
			break
		}
	}
	if n.defaults.ReferencePrefix == "" {
		return key
	}
	return n.defaults.ReferencePrefix + "-" + key
}

func (n *Normalizer) party(p *entity.Party, d RoleDefaults) {
	p.Company = strings.TrimSpace(p.Company)
	if utf8.RuneCountInString(p.Company) < minFieldLength {
		p.Company = d.Company
	}
	p.CompanyCode = strings.TrimSpace(p.CompanyCode)
	p.VATCode = strings.TrimSpace(p.VATCode)
	p.Email = strings.TrimSpace(p.Email)
	p.ContactPerson = strings.TrimSpace(p.ContactPerson)

	a := &p.Address
	a.Street = strings.TrimSpace(a.Street)
	if a.Street == "" {
		a.Street = d.Street
	}
	a.City = strings.TrimSpace(a.City)
	if utf8.RuneCountInString(a.City) < minFieldLength {
		a.City = d.City
	}
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	if a.PostalCode == "" {
		a.PostalCode = d.PostalCode
	}
	a.Country = n.country(a.Country, d.Country)
}

// country converts a free-text name to ISO; unknown non-empty names are kept.
func (n *Normalizer) country(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if n.countries != nil {
		if code, ok := n.countries.ISOCode(raw); ok && code != "" {
			return code
		}
	}
	return raw
}

func (n *Normalizer) cargos(o *entity.Order) {
	if len(o.Cargos) == 0 {
		o.Cargos = []entity.CargoItem{{Title: n.defaults.CargoTitle, PackageCount: 1}}
	}
	for i := range o.Cargos {
		c := &o.Cargos[i]
		c.Title = strings.TrimSpace(c.Title)
		if c.Title == "" {
			c.Title = n.defaults.CargoTitle
		}
		if math.IsNaN(c.Weight) || c.Weight < 0 {
			c.Weight = 0
		}
		if c.PackageCount < 1 {
			c.PackageCount = 1
		}
		c.PackageType = strings.TrimSpace(c.PackageType)
	}
}

// window keeps a parseable window (ordering its bounds) and otherwise returns
// the default window on day.
func window(w entity.TimeWindow, day time.Time, fromHour, toHour int) entity.TimeWindow {
	from, errFrom := time.Parse(TimestampLayout, w.DatetimeFrom)
	to, errTo := time.Parse(TimestampLayout, w.DatetimeTo)
	if errFrom == nil && errTo == nil {
		if from.After(to) {
			w.DatetimeFrom, w.DatetimeTo = w.DatetimeTo, w.DatetimeFrom
		}
		return w
	}
	return DefaultWindow(day, fromHour, toHour)
}

// DefaultWindow builds {day}T{from}:00:00 .. {day}T{to}:00:00.
func DefaultWindow(day time.Time, fromHour, toHour int) entity.TimeWindow {
	base := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return entity.TimeWindow{
		DatetimeFrom: base.Add(time.Duration(fromHour) * time.Hour).Format(TimestampLayout),
		DatetimeTo:   base.Add(time.Duration(toHour) * time.Hour).Format(TimestampLayout),
	}
}

// LoadingWindow is the default loading window on day.
func LoadingWindow(day time.Time) entity.TimeWindow {
	return DefaultWindow(day, loadingFromHour, loadingToHour)
}

// DestinationWindow is the default delivery window on day.
func DestinationWindow(day time.Time) entity.TimeWindow {
	return DefaultWindow(day, destinationFromHour, destinationToHour)
}
