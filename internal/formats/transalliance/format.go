package transalliance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/formats"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

// Name identifies the format in results and logs.
const Name = "transalliance"

var defaultCompiled = sync.OnceValue(func() *compiledTables {
	c, err := DefaultTables().compile()
	if err != nil {
		panic(fmt.Sprintf("transalliance: default tables do not compile: %v", err))
	}
	return c
})

// Engine implements formats.Format for the Transalliance template. It keeps
// no per-document state and is safe for concurrent use.
type Engine struct {
	tables     *compiledTables
	classifier *Classifier
	resolvers  map[Role]*Resolver
	assembler  *formats.Assembler
	logger     *slog.Logger
}

var _ formats.Format = (*Engine)(nil)

func New(t Tables, countries normalize.CountryLookup, assembler *formats.Assembler, logger *slog.Logger) (*Engine, error) {
	if assembler == nil {
		return nil, fmt.Errorf("transalliance: assembler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	c, err := t.compile()
	if err != nil {
		return nil, err
	}
	cls := &Classifier{tables: c}
	return &Engine{
		tables:     c,
		classifier: cls,
		resolvers:  newResolvers(c, cls, countries),
		assembler:  assembler,
		logger:     logger,
	}, nil
}

func (e *Engine) Name() string { return Name }

// ValidateFormat reports whether any line carries the operator name.
func (e *Engine) ValidateFormat(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, e.tables.detector) {
			return true
		}
	}
	return false
}

func (e *Engine) Classifier() *Classifier { return e.classifier }

// Resolver returns the address resolver for role.
func (e *Engine) Resolver(role Role) *Resolver { return e.resolvers[role] }

// ResolveCustomer merges the customer address found in buffer into dst.
func (e *Engine) ResolveCustomer(dst *entity.Address, buffer []string) {
	e.resolvers[RoleCustomer].ResolveInto(dst, buffer)
}

func (e *Engine) ResolveLoading(buffer []string) entity.Address {
	return e.resolvers[RoleLoading].Resolve(buffer)
}

func (e *Engine) ResolveDelivery(buffer []string) entity.Address {
	return e.resolvers[RoleDelivery].Resolve(buffer)
}

// ExtractWindow is ExtractWindow using the engine's range separators.
func (e *Engine) ExtractWindow(lines []string, start int) (entity.TimeWindow, int, bool) {
	return e.tables.extractWindow(lines, start)
}

// Extract scans lines into a raw, unnormalized order and the document date.
// A panic during the scan is returned as an error.
func (e *Engine) Extract(lines []string) (order *entity.Order, orderDate time.Time, err error) {
	defer func() {
		if r := recover(); r != nil {
			order = nil
			err = common.NewAppError("EXTRACTION_PANIC", fmt.Sprintf("%v", r), common.ErrInternal)
		}
	}()
	t := newTracker(e, lines)
	order = t.scan()
	return order, t.orderDate, nil
}

// ProcessLines never fails: a scan error or an empty extraction yields the
// fallback order.
func (e *Engine) ProcessLines(ctx context.Context, lines []string, attachment string) *formats.Result {
	log := common.Logger(ctx, e.logger).With("format", Name)

	order, orderDate, err := e.Extract(lines)
	switch {
	case err != nil:
		log.Error("extraction failed", "error", err, "lines", len(lines))
		return e.assembler.Finish(ctx, Name, nil, orderDate, attachment, true)
	case isEmptyExtraction(order):
		log.Warn("nothing extracted beyond the format marker", "lines", len(lines))
		return e.assembler.Finish(ctx, Name, nil, orderDate, attachment, true)
	}

	if attachment != "" {
		order.AttachmentFilenames = append(order.AttachmentFilenames, attachment)
	}
	log.Debug("extraction finished",
		"order_reference", order.OrderReference,
		"cargos", len(order.Cargos),
		"loading", len(order.LoadingLocations),
		"destination", len(order.DestinationLocations),
	)
	return e.assembler.Finish(ctx, Name, order, orderDate, attachment, false)
}

func isEmptyExtraction(o *entity.Order) bool {
	if o.OrderReference != "" || o.Customer != (entity.Party{}) || len(o.Cargos) > 0 || o.FreightPrice != nil {
		return false
	}
	for _, l := range o.LoadingLocations {
		if l != (entity.Location{}) {
			return false
		}
	}
	for _, l := range o.DestinationLocations {
		if l != (entity.Location{}) {
			return false
		}
	}
	return true
}
