package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

type stubOrders struct {
	orders []*repository.StoredOrder
	filter repository.ListFilter
	err    error
}

func (s *stubOrders) Create(context.Context, *entity.Order) (*entity.Order, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrders) Get(context.Context, string) (*repository.StoredOrder, error) {
	return nil, errors.New("not implemented")
}

func (s *stubOrders) List(_ context.Context, f repository.ListFilter) ([]*repository.StoredOrder, error) {
	s.filter = f
	return s.orders, s.err
}

func (s *stubOrders) Count(context.Context, repository.ListFilter) (int, error) {
	return len(s.orders), s.err
}

func TestExportOrdersXLSX(t *testing.T) {
	price := 1250.0
	o := entity.NewOrder()
	o.OrderReference = "12345"
	o.Customer = entity.Party{Company: "UAB Kauno Logistika", Address: entity.Address{City: "Kaunas", Country: "LT"}}
	o.LoadingLocations = append(o.LoadingLocations, entity.Location{
		CompanyAddress: entity.Party{Company: "Derby Steel", Address: entity.Address{City: "DERBY", Country: "GB"}},
		Time:           entity.TimeWindow{DatetimeFrom: "2025-09-17T08:00:00", DatetimeTo: "2025-09-17T15:00:00"},
	})
	o.Cargos = append(o.Cargos,
		entity.CargoItem{Title: "Steel coils", Weight: 24000.5, PackageCount: 33},
		entity.CargoItem{Title: "Spare parts", Weight: 100, PackageCount: 2},
	)
	o.FreightPrice = &price
	o.FreightCurrency = "EUR"
	o.AttachmentFilenames = append(o.AttachmentFilenames, "order.pdf")

	stub := &stubOrders{orders: []*repository.StoredOrder{{
		ID:        "id-1",
		Format:    "transalliance",
		Status:    constants.OrderStatusParsed,
		CreatedAt: time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC),
		Order:     o,
	}}}
	svc := NewService(stub, slog.New(slog.NewTextHandler(io.Discard, nil)))

	from := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	b, err := svc.ExportOrdersXLSX(context.Background(), &from, &to)
	if err != nil {
		t.Fatalf("ExportOrdersXLSX: %v", err)
	}
	if !stub.filter.From.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v", stub.filter.From)
	}
	if !stub.filter.To.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("To = %v", stub.filter.To)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one", len(rows))
	}
	checks := map[int]string{
		0:  "2025-03-10 09:30",
		1:  "12345",
		2:  "transalliance",
		3:  "PARSED",
		6:  "Derby Steel, DERBY, GB",
		7:  "2025-09-17T08:00:00",
		10: "Steel coils; Spare parts",
		11: "24100.5",
		12: "35",
		13: "1250",
		14: "EUR",
		15: "order.pdf",
	}
	for col, want := range checks {
		if got := rows[1][col]; got != want {
			t.Errorf("column %d = %q, want %q", col+1, got, want)
		}
	}
}

func TestExportOrdersXLSX_OpenEndedWindow(t *testing.T) {
	stub := &stubOrders{}
	svc := NewService(stub, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC) }

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := svc.ExportOrdersXLSX(context.Background(), &from, nil); err != nil {
		t.Fatalf("ExportOrdersXLSX: %v", err)
	}
	if stub.filter.To == nil || !stub.filter.To.Equal(time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("To = %v", stub.filter.To)
	}
}

func TestExportOrdersXLSX_ListError(t *testing.T) {
	stub := &stubOrders{err: errors.New("boom")}
	svc := NewService(stub, nil)
	if _, err := svc.ExportOrdersXLSX(context.Background(), nil, nil); err == nil {
		t.Fatal("expected error")
	}
}
