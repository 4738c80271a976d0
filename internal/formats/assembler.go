package formats

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/freight-orders/internal/common"
	"github.com/joseph-ayodele/freight-orders/internal/entity"
	"github.com/joseph-ayodele/freight-orders/internal/normalize"
)

// Assembler normalizes an extracted order, checks it against the order schema
// and hands it to the sink.
type Assembler struct {
	normalizer *normalize.Normalizer
	validator  *OrderValidator
	sink       OrderSink
	logger     *slog.Logger
}

func NewAssembler(n *normalize.Normalizer, v *OrderValidator, sink OrderSink, logger *slog.Logger) *Assembler {
	if sink == nil {
		sink = DiscardSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{normalizer: n, validator: v, sink: sink, logger: logger}
}

// Normalizer exposes the normalizer so engines can build fallback records.
func (a *Assembler) Normalizer() *normalize.Normalizer {
	return a.normalizer
}

// Fallback builds the canonical record for attachment.
func (a *Assembler) Fallback(orderDate time.Time, attachment string) *entity.Order {
	return a.normalizer.Fallback(orderDate, attachment)
}

// Finish runs the final steps for one document. It never fails: a schema
// violation swaps in the fallback record and a sink failure keeps the
// assembler's own record.
func (a *Assembler) Finish(ctx context.Context, format string, order *entity.Order, orderDate time.Time, attachment string, fallback bool) *Result {
	log := common.Logger(ctx, a.logger).With("format", format)

	if order == nil {
		order = a.normalizer.Fallback(orderDate, attachment)
		fallback = true
	} else {
		a.normalizer.Normalize(order, normalize.Options{OrderDate: orderDate})
	}

	if a.validator != nil {
		if err := a.validator.Validate(order); err != nil {
			log.Warn("normalized order failed schema validation", "error", err, "fallback", true)
			order = a.normalizer.Fallback(orderDate, attachment)
			fallback = true
		}
	}
	if fallback {
		log.Warn("fallback order used", "fallback", true)
	}

	res := &Result{Format: format, Order: order, Fallback: fallback}

	sinkCtx := common.WithFallback(common.WithFormat(ctx, format), fallback)
	created, err := a.sink.Create(sinkCtx, order.Clone())
	switch {
	case err != nil:
		log.Error("order sink failed, keeping extracted record", "error", err, "order_reference", order.OrderReference)
	case created == nil:
		log.Debug("order sink returned nothing, keeping extracted record", "order_reference", order.OrderReference)
	default:
		res.Order = created
		res.Persisted = true
		log.Info("order created", "order_reference", created.OrderReference, "id", created.ID, "fallback", fallback)
	}
	return res
}
