package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/formats/exampledoc"
	"github.com/joseph-ayodele/freight-orders/internal/formats/transalliance"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

type contextSink struct {
	attachment string
	requestID  string
	format     string
}

func (s *contextSink) Create(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	s.attachment = common.AttachmentFromContext(ctx)
	s.requestID = common.RequestIDFromContext(ctx)
	s.format = common.FormatFromContext(ctx)
	o.ID = "stored-1"
	return o, nil
}

func newTestProcessor(t *testing.T, sink formats.OrderSink) *Processor {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	n := normalize.New(constants.CountryTable{}, normalize.DefaultDefaults()).
		WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })
	v, err := formats.NewOrderValidator()
	if err != nil {
		t.Fatalf("NewOrderValidator: %v", err)
	}
	asm := formats.NewAssembler(n, v, sink, logger)
	ta, err := transalliance.New(transalliance.DefaultTables(), constants.CountryTable{}, asm, logger)
	if err != nil {
		t.Fatalf("transalliance.New: %v", err)
	}
	ex, err := exampledoc.New(asm, logger)
	if err != nil {
		t.Fatalf("exampledoc.New: %v", err)
	}
	return NewProcessor(logger, formats.NewRegistry(logger, ta, ex))
}

func TestProcessFile_TextDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order-12345.txt")
	doc := "TRANSALLIANCE TS LTD\r\nREF . 12345\r\nLoading\r\nONE: 17/09/25 8h00 - 15h00\r\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	sink := &contextSink{}
	p := newTestProcessor(t, sink)

	res, err := p.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if res.Format != transalliance.Name {
		t.Errorf("Format = %q", res.Format)
	}
	if res.Order.OrderReference != "12345" {
		t.Errorf("OrderReference = %q", res.Order.OrderReference)
	}
	if got := res.Order.LoadingLocations[0].Time.DatetimeFrom; got != "2025-09-17T08:00:00" {
		t.Errorf("loading from = %q", got)
	}
	if !res.Persisted || res.Order.ID != "stored-1" {
		t.Errorf("Persisted = %v, ID = %q", res.Persisted, res.Order.ID)
	}
	if sink.attachment != "order-12345.txt" || sink.requestID == "" || sink.format != transalliance.Name {
		t.Errorf("sink context = %+v", sink)
	}
	if len(res.Order.AttachmentFilenames) == 0 || res.Order.AttachmentFilenames[0] != "order-12345.txt" {
		t.Errorf("AttachmentFilenames = %q", res.Order.AttachmentFilenames)
	}
}

func TestProcessFile_KeepsCallerRequestID(t *testing.T) {
	sink := &contextSink{}
	p := newTestProcessor(t, sink).WithReader(func(context.Context, string) ([]string, error) {
		return []string{"TRANSALLIANCE TS LTD"}, nil
	})
	ctx := common.WithRequestID(context.Background(), "req-1")
	res, err := p.ProcessFile(ctx, "/in/empty.pdf")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if !res.Fallback {
		t.Error("marker-only document should fall back")
	}
	if sink.requestID != "req-1" {
		t.Errorf("request id = %q", sink.requestID)
	}
}

func TestProcessFile_Errors(t *testing.T) {
	p := newTestProcessor(t, nil)

	if _, err := p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file should fail")
	}

	p.WithReader(func(context.Context, string) ([]string, error) {
		return []string{"Some other carrier", "Invoice"}, nil
	})
	_, err := p.ProcessFile(context.Background(), "other.pdf")
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}
