package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/repository"
)

const sheet = "Orders"

// Service produces XLSX workbooks from stored orders.
type Service struct {
	orders repository.OrderRepository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(orders repository.OrderRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{orders: orders, logger: logger, now: time.Now}
}

// ExportOrdersXLSX returns an XLSX workbook (as bytes) of orders stored in
// the given date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all orders.
func (s *Service) ExportOrdersXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC); the upper bound is exclusive midnight
	var fromDate, toDate *time.Time
	if from != nil {
		f := dayStart(*from)
		fromDate = &f
	}
	if to != nil {
		t := dayStart(*to).AddDate(0, 0, 1)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		t := dayStart(s.now().UTC()).AddDate(0, 0, 1)
		toDate = &t
	}

	recs, err := s.orders.List(ctx, repository.ListFilter{From: fromDate, To: toDate})
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	_ = f.DeleteSheet("Sheet1")
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Created",
		"Order Reference",
		"Format",
		"Status",
		"Customer",
		"Customer Country",
		"Loading",
		"Loading From",
		"Delivery",
		"Delivery To",
		"Cargo",
		"Weight (kg)",
		"Packages",
		"Freight Price",
		"Currency",
		"Attachment",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		o := r.Order
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format("2006-01-02 15:04"))
		write(2, o.OrderReference)
		write(3, r.Format)
		write(4, string(r.Status))
		write(5, o.Customer.Company)
		write(6, o.Customer.Address.Country)

		if len(o.LoadingLocations) > 0 {
			l := o.LoadingLocations[0]
			write(7, place(l.CompanyAddress))
			write(8, l.Time.DatetimeFrom)
		}
		if len(o.DestinationLocations) > 0 {
			d := o.DestinationLocations[0]
			write(9, place(d.CompanyAddress))
			write(10, d.Time.DatetimeTo)
		}

		titles, weight, packages := cargoTotals(o.Cargos)
		write(11, truncate(titles, 140))
		write(12, weight)
		write(13, packages)

		if o.FreightPrice != nil {
			write(14, *o.FreightPrice)
		}
		write(15, o.FreightCurrency)
		write(16, strings.Join(o.AttachmentFilenames, ", "))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 17) // created
	_ = f.SetColWidth(sheet, "B", "D", 16) // reference, format, status
	_ = f.SetColWidth(sheet, "E", "E", 32) // customer
	_ = f.SetColWidth(sheet, "G", "J", 28) // stops
	_ = f.SetColWidth(sheet, "K", "K", 40) // cargo
	_ = f.SetColWidth(sheet, "P", "P", 40) // attachment

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// place renders "Company, City, CC".
func place(p entity.Party) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Company, p.Address.City, p.Address.Country} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func cargoTotals(items []entity.CargoItem) (string, float64, int) {
	var (
		titles   []string
		weight   float64
		packages int
	)
	for _, c := range items {
		if c.Title != "" {
			titles = append(titles, c.Title)
		}
		weight += c.Weight
		packages += c.PackageCount
	}
	return strings.Join(titles, "; "), weight, packages
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
