// Package exampledoc handles the "Example Transport Document" layout: one
// labelled field per line.
package exampledoc

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/freight-orders/constants"
	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

const (
	Name   = "example-document"
	Marker = "Example Transport Document"
)

// Goods line used when the document lists none.
const (
	exampleGoodsTitle    = "Example goods"
	exampleGoodsQuantity = 10
	exampleGoodsWeight   = 1200.5
)

var (
	orderNoPattern  = regexp.MustCompile(`(?i)\border\s*no\b\.?\s*[:#]?\s*(\S+)`)
	pickupPattern   = regexp.MustCompile(`(?i)\bpickup\s+date\s*:?\s*(.+)$`)
	deliveryPattern = regexp.MustCompile(`(?i)\bdelivery\s+date\s*:?\s*(.+)$`)
	partyPattern    = regexp.MustCompile(`(?i)^\s*(shipper|consignee)(?:\s+(address|country))?\s*:\s*(.+)$`)
	goodsPattern    = regexp.MustCompile(`(?i)^\s*goods\s*:\s*(.+)$`)
	postalPrefix    = regexp.MustCompile(`^([A-Z]{0,2}-?\d[\dA-Z -]*?)\s+(\p{L}.*)$`)
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2/1/06",
	"2 January 2006",
	"January 2, 2006",
}

type Format struct {
	assembler *formats.Assembler
	logger    *slog.Logger
}

var _ formats.Format = (*Format)(nil)

func New(assembler *formats.Assembler, logger *slog.Logger) (*Format, error) {
	if assembler == nil {
		return nil, fmt.Errorf("exampledoc: assembler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Format{assembler: assembler, logger: logger}, nil
}

func (f *Format) Name() string { return Name }

func (f *Format) ValidateFormat(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, Marker) {
			return true
		}
	}
	return false
}

// ProcessLines reads the labelled fields and hands the order to the assembler.
func (f *Format) ProcessLines(ctx context.Context, lines []string, attachment string) (res *formats.Result) {
	log := common.Logger(ctx, f.logger).With("format", Name)
	defer func() {
		if r := recover(); r != nil {
			log.Error("extraction panicked", "panic", r)
			res = f.assembler.Finish(ctx, Name, nil, time.Time{}, attachment, true)
		}
	}()

	order, pickup := extract(lines)
	if attachment != "" {
		order.AttachmentFilenames = append(order.AttachmentFilenames, attachment)
	}
	return f.assembler.Finish(ctx, Name, order, pickup, attachment, false)
}

// extract fills an order from the labelled lines. The pickup day is returned
// as the order date.
func extract(lines []string) (*entity.Order, time.Time) {
	o := entity.NewOrder()
	shipper := entity.Location{}
	consignee := entity.Location{}
	var pickup, delivery time.Time

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := orderNoPattern.FindStringSubmatch(line); m != nil && o.OrderReference == "" {
			o.OrderReference = strings.Trim(m[1], ":#")
			continue
		}
		if m := pickupPattern.FindStringSubmatch(line); m != nil && pickup.IsZero() {
			pickup, _ = parseDate(m[1])
			continue
		}
		if m := deliveryPattern.FindStringSubmatch(line); m != nil && delivery.IsZero() {
			delivery, _ = parseDate(m[1])
			continue
		}
		if m := partyPattern.FindStringSubmatch(line); m != nil {
			target := &shipper.CompanyAddress
			if strings.EqualFold(m[1], "consignee") {
				target = &consignee.CompanyAddress
			}
			applyPartyField(target, strings.ToLower(m[2]), strings.TrimSpace(m[3]))
			continue
		}
		if m := goodsPattern.FindStringSubmatch(line); m != nil {
			if item, ok := parseGoods(m[1]); ok {
				o.Cargos = append(o.Cargos, item)
			}
		}
	}

	if !pickup.IsZero() {
		shipper.Time = normalize.LoadingWindow(pickup)
	}
	if !delivery.IsZero() {
		consignee.Time = normalize.DestinationWindow(delivery)
	}
	o.Customer = shipper.CompanyAddress
	o.LoadingLocations = append(o.LoadingLocations, shipper)
	o.DestinationLocations = append(o.DestinationLocations, consignee)

	if len(o.Cargos) == 0 {
		o.Cargos = append(o.Cargos, entity.CargoItem{
			Title:        exampleGoodsTitle,
			Weight:       exampleGoodsWeight,
			PackageCount: exampleGoodsQuantity,
			PackageType:  string(constants.Package),
		})
	}
	return o, pickup
}

func applyPartyField(p *entity.Party, field, value string) {
	switch field {
	case "":
		if p.Company == "" {
			p.Company = value
		}
	case "country":
		if p.Address.Country == "" {
			p.Address.Country = value
		}
	case "address":
		if p.Address.Street == "" {
			p.Address = splitAddress(value, p.Address.Country)
		}
	}
}

// splitAddress reads "street, postal city". The last comma-separated segment
// carries the postal code and city.
func splitAddress(value, country string) entity.Address {
	a := entity.Address{Country: country}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 {
		a.Street = parts[0]
		return a
	}
	a.Street = strings.Join(parts[:len(parts)-1], ", ")
	last := parts[len(parts)-1]
	if m := postalPrefix.FindStringSubmatch(last); m != nil {
		a.PostalCode = strings.TrimSpace(m[1])
		a.City = strings.TrimSpace(m[2])
	} else {
		a.City = last
	}
	return a
}

// parseGoods reads "description; quantity; weight". Quantity and weight may
// be omitted.
func parseGoods(value string) (entity.CargoItem, bool) {
	parts := strings.Split(value, ";")
	item := entity.CargoItem{Title: strings.TrimSpace(parts[0]), PackageType: string(constants.Package)}
	if item.Title == "" {
		return item, false
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			item.PackageCount = n
		}
	}
	if len(parts) > 2 {
		w := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[2]), "kg"))
		if v, ok := normalize.ParseDecimal(w); ok {
			item.Weight = v
		}
	}
	return item, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimLeft(s, ": "))
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
