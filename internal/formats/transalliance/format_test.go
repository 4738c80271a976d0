package transalliance

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return newTestEngineWithTables(t, DefaultTables())
}

func newTestEngineWithTables(t *testing.T, tables Tables) *Engine {
	t.Helper()
	return newTestEngineWithSink(t, tables, nil)
}

func newTestEngineWithSink(t *testing.T, tables Tables, sink formats.OrderSink) *Engine {
	t.Helper()
	v, err := formats.NewOrderValidator()
	if err != nil {
		t.Fatalf("NewOrderValidator: %v", err)
	}
	n := normalize.New(constants.CountryTable{}, normalize.DefaultDefaults()).
		WithClock(func() time.Time { return fixedNow })
	e, err := New(tables, constants.CountryTable{}, formats.NewAssembler(n, v, sink, nil), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestValidateFormat(t *testing.T) {
	e := newTestEngine(t)
	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"marker first", []string{"TRANSALLIANCE TS LTD", "REF . 1"}, true},
		{"marker embedded", []string{"x", "Carrier: TRANSALLIANCE TS LTD (UK)"}, true},
		{"missing marker", []string{"Transport order", "REF . 1"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.ValidateFormat(tt.lines); got != tt.want {
				t.Errorf("ValidateFormat = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessLines_CustomerBlock(t *testing.T) {
	e := newTestEngine(t)
	lines := []string{
		"TRANSALLIANCE TS LTD",
		"REF . 12345",
		"Date/Time : 01/06/2024 10:00",
		"Test Client 2",
		"Rugin G. 2",
		"LT-01205 VILNIUS",
	}

	res := e.ProcessLines(context.Background(), lines, "order.pdf")

	if res.Fallback {
		t.Fatal("unexpected fallback")
	}
	o := res.Order
	if o.OrderReference != "12345" {
		t.Errorf("reference = %q, want 12345", o.OrderReference)
	}
	want := entity.Party{
		Company: "Test Client 2",
		Address: entity.Address{
			Street:     "Rugin G. 2",
			City:       "VILNIUS",
			PostalCode: "LT-01205",
			Country:    "LT",
		},
	}
	if o.Customer != want {
		t.Errorf("customer = %+v\nwant       %+v", o.Customer, want)
	}
	// Windows default off the document date.
	if got := o.LoadingLocations[0].Time.DatetimeFrom; got != "2024-06-01T08:00:00" {
		t.Errorf("loading from = %q", got)
	}
	if got := o.DestinationLocations[0].Time.DatetimeFrom; got != "2024-06-03T07:00:00" {
		t.Errorf("destination from = %q", got)
	}
	if !reflect.DeepEqual(o.AttachmentFilenames, []string{"order.pdf"}) {
		t.Errorf("attachments = %v", o.AttachmentFilenames)
	}
}

func TestProcessLines_LoadingWindow(t *testing.T) {
	e := newTestEngine(t)
	lines := []string{
		"TRANSALLIANCE TS LTD",
		"Loading",
		"ONE: 17/09/25 8h00 – 15h00",
	}

	res := e.ProcessLines(context.Background(), lines, "")

	if res.Fallback {
		t.Fatal("unexpected fallback")
	}
	got := res.Order.LoadingLocations[0].Time
	want := entity.TimeWindow{DatetimeFrom: "2025-09-17T08:00:00", DatetimeTo: "2025-09-17T15:00:00"}
	if got != want {
		t.Errorf("loading window = %+v, want %+v", got, want)
	}
}

func TestProcessLines_MarkerOnlyFallsBack(t *testing.T) {
	e := newTestEngine(t)
	inputs := [][]string{
		{"TRANSALLIANCE TS LTD"},
		{"TRANSALLIANCE TS LTD", "", "   ", "###", "lorem ipsum"},
	}

	for i, lines := range inputs {
		res := e.ProcessLines(context.Background(), lines, "scan.pdf")
		if !res.Fallback {
			t.Errorf("input %d: expected fallback", i)
			continue
		}
		o := res.Order
		if o.OrderReference != normalize.FallbackReference {
			t.Errorf("input %d: reference = %q", i, o.OrderReference)
		}
		if len(o.LoadingLocations) == 0 || len(o.DestinationLocations) == 0 || len(o.Cargos) == 0 {
			t.Errorf("input %d: fallback is incomplete: %+v", i, o)
		}
		if o.Customer.Address.PostalCode == "" || o.Customer.Address.Street == "" {
			t.Errorf("input %d: fallback customer address incomplete: %+v", i, o.Customer.Address)
		}
	}
}

func TestProcessLines_WeightWithThousandsSeparator(t *testing.T) {
	e := newTestEngine(t)
	res := e.ProcessLines(context.Background(), []string{
		"TRANSALLIANCE TS LTD",
		"Weight . : 24,000.500",
	}, "")

	if len(res.Order.Cargos) != 1 {
		t.Fatalf("cargos = %+v", res.Order.Cargos)
	}
	if got := res.Order.Cargos[0].Weight; got != 24000.5 {
		t.Errorf("weight = %v, want 24000.5", got)
	}
	if got := res.Order.Cargos[0].PackageCount; got != 1 {
		t.Errorf("package count = %d, want 1", got)
	}
}

func TestProcessLines_FullDocument(t *testing.T) {
	e := newTestEngine(t)
	lines := []string{
		"TRANSALLIANCE TS LTD",
		"REF . TA-2025-0917",
		"Date/Time : 16/09/2025 09:12",
		"Test Client 2",
		"Rugin G. 2",
		"LT-01205 VILNIUS",
		"VAT: LT100012345678",
		"Email: orders@testclient.lt",
		"Loading",
		"ONE: 17/09/25 8h00 – 15h00",
		"BROOKFIELD LOGISTICS LTD",
		"UNIT 2 BROOKFIELD PARK",
		"DERBY DE21 4SU",
		"Delivery",
		"ONE: 19/09/25 7h00 â€“ 13h00",
		"ENTREPOT PARIS NORD",
		"12 RUE DE LA PAIX",
		"75002 PARIS",
		"Goods : Steel coils",
		"Weight . : 24,000.500",
		"Pallets : 33 EUR",
		"Freight price : 1 250,00 EUR",
	}

	res := e.ProcessLines(context.Background(), lines, "ta.pdf")
	if res.Fallback {
		t.Fatal("unexpected fallback")
	}
	o := res.Order

	if o.OrderReference != "TA-2025-0917" {
		t.Errorf("reference = %q", o.OrderReference)
	}
	if o.Customer.VATCode != "LT100012345678" || o.Customer.Email != "orders@testclient.lt" {
		t.Errorf("customer metadata = %+v", o.Customer)
	}

	load := o.LoadingLocations[0]
	wantLoad := entity.Location{
		CompanyAddress: entity.Party{
			Company: "BROOKFIELD LOGISTICS LTD",
			Address: entity.Address{Street: "UNIT 2 BROOKFIELD PARK", City: "DERBY", PostalCode: "DE21 4SU", Country: "GB"},
		},
		Time: entity.TimeWindow{DatetimeFrom: "2025-09-17T08:00:00", DatetimeTo: "2025-09-17T15:00:00"},
	}
	if load != wantLoad {
		t.Errorf("loading = %+v\nwant      %+v", load, wantLoad)
	}

	dest := o.DestinationLocations[0]
	wantDest := entity.Location{
		CompanyAddress: entity.Party{
			Company: "ENTREPOT PARIS NORD",
			Address: entity.Address{Street: "12 RUE DE LA PAIX", City: "PARIS", PostalCode: "75002", Country: "FR"},
		},
		Time: entity.TimeWindow{DatetimeFrom: "2025-09-19T07:00:00", DatetimeTo: "2025-09-19T13:00:00"},
	}
	if dest != wantDest {
		t.Errorf("destination = %+v\nwant          %+v", dest, wantDest)
	}

	wantCargo := []entity.CargoItem{{Title: "Steel coils", Weight: 24000.5, PackageCount: 33, PackageType: "eur-pallet"}}
	if !reflect.DeepEqual(o.Cargos, wantCargo) {
		t.Errorf("cargos = %+v", o.Cargos)
	}
	if o.FreightPrice == nil || *o.FreightPrice != 1250 || o.FreightCurrency != "EUR" {
		t.Errorf("freight = %v %q", o.FreightPrice, o.FreightCurrency)
	}
}

func TestProcessLines_RepeatedFieldStartsNewCargo(t *testing.T) {
	e := newTestEngine(t)
	res := e.ProcessLines(context.Background(), []string{
		"TRANSALLIANCE TS LTD",
		"Goods : Paper rolls",
		"Weight : 1200",
		"Goods : Cardboard",
		"Weight : 800,5",
	}, "")

	want := []entity.CargoItem{
		{Title: "Paper rolls", Weight: 1200, PackageCount: 1},
		{Title: "Cardboard", Weight: 800.5, PackageCount: 1},
	}
	if !reflect.DeepEqual(res.Order.Cargos, want) {
		t.Errorf("cargos = %+v", res.Order.Cargos)
	}
}

func TestProcessLines_NoiseClosesSection(t *testing.T) {
	e := newTestEngine(t)
	res := e.ProcessLines(context.Background(), []string{
		"TRANSALLIANCE TS LTD",
		"Payment terms : 30 days",
		"Test Client 2",
		"Rugin G. 2",
		"Instructions : call before arrival",
		"Some stray line",
	}, "")

	c := res.Order.Customer
	if c.Company != "Test Client 2" || c.Address.Street != "Rugin G. 2" {
		t.Errorf("customer = %+v", c)
	}
	// No postal line: the buffer had one line, so the city is defaulted.
	if c.Address.City != normalize.DefaultDefaults().Customer.City {
		t.Errorf("city = %q", c.Address.City)
	}
}

func TestProcessLines_PaymentTermsOutranksHeader(t *testing.T) {
	e := newTestEngine(t)
	res := e.ProcessLines(context.Background(), []string{
		"TRANSALLIANCE TS LTD",
		"REF . 12345",
		"Date/Time : 01/06/2024 10:00",
		"Brookfield Logistics Ltd",
		"Unit 2, Brookfield Park",
		"Payment terms : 30 days",
		"Test Client 2",
		"Rugin G. 2",
		"LT-01205 VILNIUS",
		"Date/Time : 02/06/2024 11:00",
	}, "")

	want := entity.Party{
		Company: "Test Client 2",
		Address: entity.Address{Street: "Rugin G. 2", City: "VILNIUS", PostalCode: "LT-01205", Country: "LT"},
	}
	if res.Order.Customer != want {
		t.Errorf("customer = %+v\nwant       %+v", res.Order.Customer, want)
	}
}

func TestProcessLines_RecoversFromPanic(t *testing.T) {
	e := newTestEngine(t)
	broken := *e
	broken.resolvers = map[Role]*Resolver{}

	res := broken.ProcessLines(context.Background(), []string{
		"TRANSALLIANCE TS LTD",
		"Date/Time : 01/06/2024 10:00",
		"Test Client 2",
		"Rugin G. 2",
		"LT-01205 VILNIUS",
	}, "x.pdf")

	if !res.Fallback || res.Order.OrderReference != normalize.FallbackReference {
		t.Errorf("expected fallback after panic, got %+v", res)
	}
}

func TestProcessLines_Concurrent(t *testing.T) {
	e := newTestEngine(t)
	lines := []string{
		"TRANSALLIANCE TS LTD",
		"REF . 12345",
		"Date/Time : 01/06/2024 10:00",
		"Test Client 2",
		"Rugin G. 2",
		"LT-01205 VILNIUS",
		"Loading",
		"ONE: 17/09/25 8h00 – 15h00",
	}
	want := e.ProcessLines(context.Background(), lines, "a.pdf").Order

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := e.ProcessLines(context.Background(), lines, "a.pdf").Order
			if !reflect.DeepEqual(got, want) {
				errs <- "concurrent result differs"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Error(msg)
	}
}
