package normalize

import (
	"reflect"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

type stubCountries map[string]string

func (s stubCountries) ISOCode(name string) (string, bool) {
	code, ok := s[strings.ToLower(strings.TrimSpace(name))]
	return code, ok
}

func testNormalizer() *Normalizer {
	countries := stubCountries{
		"france":         "FR",
		"fr":             "FR",
		"gb":             "GB",
		"lt":             "LT",
		"united kingdom": "GB",
	}
	fixed := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	return New(countries, DefaultDefaults()).WithClock(func() time.Time { return fixed })
}

func TestNormalize_EmptyOrderGetsDefaults(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()

	n.Normalize(o, Options{OrderDate: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)})

	d := DefaultDefaults()
	if o.Customer.Company != d.Customer.Company {
		t.Errorf("customer company = %q, want %q", o.Customer.Company, d.Customer.Company)
	}
	if len(o.LoadingLocations) != 1 || len(o.DestinationLocations) != 1 {
		t.Fatalf("expected one loading and one destination location, got %d/%d",
			len(o.LoadingLocations), len(o.DestinationLocations))
	}

	load := o.LoadingLocations[0].Time
	if load.DatetimeFrom != "2024-06-01T08:00:00" || load.DatetimeTo != "2024-06-01T15:00:00" {
		t.Errorf("loading window = %+v", load)
	}
	dest := o.DestinationLocations[0].Time
	if dest.DatetimeFrom != "2024-06-03T07:00:00" || dest.DatetimeTo != "2024-06-03T13:00:00" {
		t.Errorf("destination window = %+v", dest)
	}

	if len(o.Cargos) != 1 {
		t.Fatalf("expected synthesized cargo, got %d", len(o.Cargos))
	}
	if o.Cargos[0].PackageCount != 1 || o.Cargos[0].Weight != 0 || o.Cargos[0].Title != d.CargoTitle {
		t.Errorf("unexpected default cargo: %+v", o.Cargos[0])
	}
	if o.AttachmentFilenames == nil {
		t.Error("attachment filenames should be non-nil")
	}
}

func TestNormalize_UsesClockWithoutOrderDate(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()

	n.Normalize(o, Options{})

	if got := o.LoadingLocations[0].Time.DatetimeFrom; got != "2025-03-10T08:00:00" {
		t.Errorf("loading from = %q, want clock date", got)
	}
	if got := o.DestinationLocations[0].Time.DatetimeTo; got != "2025-03-12T13:00:00" {
		t.Errorf("destination to = %q", got)
	}
}

func TestNormalize_MinimumLengths(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()
	o.Customer.Company = "X"
	o.Customer.Address.City = " "
	o.LoadingLocations = []entity.Location{{CompanyAddress: entity.Party{Company: "A", Address: entity.Address{City: "B"}}}}
	o.DestinationLocations = []entity.Location{{CompanyAddress: entity.Party{Company: "Kept Ltd", Address: entity.Address{City: "LYON"}}}}

	n.Normalize(o, Options{})

	d := DefaultDefaults()
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"customer company", o.Customer.Company, d.Customer.Company},
		{"customer city", o.Customer.Address.City, d.Customer.City},
		{"loading company", o.LoadingLocations[0].CompanyAddress.Company, d.Loading.Company},
		{"loading city", o.LoadingLocations[0].CompanyAddress.Address.City, d.Loading.City},
		{"delivery company", o.DestinationLocations[0].CompanyAddress.Company, "Kept Ltd"},
		{"delivery city", o.DestinationLocations[0].CompanyAddress.Address.City, "LYON"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestNormalize_CountryNamesBecomeISO(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()
	o.Customer.Address.Country = "France"
	o.LoadingLocations = []entity.Location{{CompanyAddress: entity.Party{Address: entity.Address{Country: "United Kingdom"}}}}
	o.DestinationLocations = []entity.Location{{CompanyAddress: entity.Party{Address: entity.Address{Country: "Atlantis"}}}}

	n.Normalize(o, Options{})

	if got := o.Customer.Address.Country; got != "FR" {
		t.Errorf("customer country = %q, want FR", got)
	}
	if got := o.LoadingLocations[0].CompanyAddress.Address.Country; got != "GB" {
		t.Errorf("loading country = %q, want GB", got)
	}
	if got := o.DestinationLocations[0].CompanyAddress.Address.Country; got != "Atlantis" {
		t.Errorf("unknown country should be kept, got %q", got)
	}
}

func TestNormalize_WindowOrdering(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()
	o.LoadingLocations = []entity.Location{{Time: entity.TimeWindow{
		DatetimeFrom: "2025-09-17T15:00:00",
		DatetimeTo:   "2025-09-17T08:00:00",
	}}}
	o.DestinationLocations = []entity.Location{{Time: entity.TimeWindow{
		DatetimeFrom: "garbage",
		DatetimeTo:   "2025-09-19T08:00:00",
	}}}

	n.Normalize(o, Options{OrderDate: time.Date(2025, 9, 16, 0, 0, 0, 0, time.UTC)})

	load := o.LoadingLocations[0].Time
	if load.DatetimeFrom != "2025-09-17T08:00:00" || load.DatetimeTo != "2025-09-17T15:00:00" {
		t.Errorf("loading window not ordered: %+v", load)
	}
	dest := o.DestinationLocations[0].Time
	if dest.DatetimeFrom != "2025-09-18T07:00:00" || dest.DatetimeTo != "2025-09-18T13:00:00" {
		t.Errorf("unparseable window should be defaulted: %+v", dest)
	}
}

func TestNormalize_CargoInvariants(t *testing.T) {
	n := testNormalizer()
	o := entity.NewOrder()
	o.Cargos = []entity.CargoItem{
		{Title: "  Steel coils ", Weight: -5, PackageCount: 0},
		{Title: "", Weight: 24000.5, PackageCount: 33, PackageType: " pallet "},
	}

	n.Normalize(o, Options{})

	if o.Cargos[0].Title != "Steel coils" || o.Cargos[0].Weight != 0 || o.Cargos[0].PackageCount != 1 {
		t.Errorf("cargo 0 = %+v", o.Cargos[0])
	}
	if o.Cargos[1].Title != DefaultDefaults().CargoTitle || o.Cargos[1].PackageCount != 33 || o.Cargos[1].PackageType != "pallet" {
		t.Errorf("cargo 1 = %+v", o.Cargos[1])
	}
}

func TestNormalize_FreightCurrency(t *testing.T) {
	n := testNormalizer()
	price := 850.0
	o := entity.NewOrder()
	o.FreightPrice = &price

	n.Normalize(o, Options{})
	if o.FreightCurrency != "EUR" {
		t.Errorf("currency = %q, want EUR", o.FreightCurrency)
	}

	o2 := entity.NewOrder()
	o2.FreightCurrency = "gbp"
	n.Normalize(o2, Options{})
	if o2.FreightCurrency != "GBP" {
		t.Errorf("currency = %q, want GBP", o2.FreightCurrency)
	}
}

func TestNormalize_MissingReference(t *testing.T) {
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		reference   string
		attachments []string
		want        string
	}{
		{"named after the attachment", "", []string{"scans/TA-0917.pdf"}, "NOREF-TA-0917"},
		{"blank reference", "   ", []string{"order.txt"}, "NOREF-order"},
		{"order day without attachment", "", nil, "NOREF-20240601"},
		{"printed reference kept", " 12345 ", []string{"order.pdf"}, "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := entity.NewOrder()
			o.OrderReference = tt.reference
			o.AttachmentFilenames = append(o.AttachmentFilenames, tt.attachments...)

			testNormalizer().Normalize(o, Options{OrderDate: day})

			if o.OrderReference != tt.want {
				t.Errorf("reference = %q, want %q", o.OrderReference, tt.want)
			}
		})
	}

	d := DefaultDefaults()
	d.ReferencePrefix = ""
	o := entity.NewOrder()
	New(nil, d).Normalize(o, Options{OrderDate: day})
	if o.OrderReference != "20240601" {
		t.Errorf("unprefixed reference = %q", o.OrderReference)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := testNormalizer()
	price := 1250.0
	inputs := []*entity.Order{
		entity.NewOrder(),
		{
			OrderReference: " 12345 ",
			Customer: entity.Party{Company: "Test Client 2", Address: entity.Address{
				Street: "Rugin G. 2", City: "VILNIUS", PostalCode: "LT-01205", Country: "LT",
			}},
			LoadingLocations: []entity.Location{{Time: entity.TimeWindow{
				DatetimeFrom: "2025-09-17T15:00:00", DatetimeTo: "2025-09-17T08:00:00",
			}}},
			Cargos:       []entity.CargoItem{{Weight: 24000.5}},
			FreightPrice: &price,
		},
	}

	for i, in := range inputs {
		once := in.Clone()
		n.Normalize(once, Options{OrderDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
		twice := once.Clone()
		n.Normalize(twice, Options{OrderDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("input %d: normalizer not idempotent\nonce:  %+v\ntwice: %+v", i, once, twice)
		}
	}
}

func TestFallback_IsComplete(t *testing.T) {
	n := testNormalizer()
	o := n.Fallback(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "order.pdf")

	if o.OrderReference != FallbackReference {
		t.Errorf("reference = %q", o.OrderReference)
	}
	parties := []entity.Party{o.Customer, o.LoadingLocations[0].CompanyAddress, o.DestinationLocations[0].CompanyAddress}
	for i, p := range parties {
		if utf8.RuneCountInString(p.Company) < 2 || utf8.RuneCountInString(p.Address.City) < 2 {
			t.Errorf("party %d violates minimum lengths: %+v", i, p)
		}
		if p.Address.Street == "" || p.Address.PostalCode == "" || len(p.Address.Country) != 2 {
			t.Errorf("party %d has empty address fields: %+v", i, p.Address)
		}
	}
	if len(o.AttachmentFilenames) != 1 || o.AttachmentFilenames[0] != "order.pdf" {
		t.Errorf("attachments = %v", o.AttachmentFilenames)
	}

	again := o.Clone()
	n.Normalize(again, Options{OrderDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)})
	if !reflect.DeepEqual(o, again) {
		t.Error("fallback record drifts under normalization")
	}
}
