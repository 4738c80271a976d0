// Package formats holds the document-format contract, the registry that
// selects an engine for a line sequence, and the assembler that finalizes
// extracted orders.
package formats

import (
	"context"

	"github.com/joseph-ayodele/freight-orders/internal/entity"
)

// Format is one document family: a cheap detector plus a line processor.
type Format interface {
	Name() string
	// ValidateFormat reports whether lines belong to this family. No side effects.
	ValidateFormat(lines []string) bool
	// ProcessLines never fails: it returns a normalized order, falling back to
	// the canonical record when extraction breaks down.
	ProcessLines(ctx context.Context, lines []string, attachment string) *Result
}

// Result is the outcome of processing one document.
type Result struct {
	Format    string        `json:"format"`
	Order     *entity.Order `json:"order"`
	Fallback  bool          `json:"fallback"`
	Persisted bool          `json:"persisted"`
}

// OrderSink is the order-creation collaborator. A nil order or an error means
// creation failed.
type OrderSink interface {
	Create(ctx context.Context, order *entity.Order) (*entity.Order, error)
}

// DiscardSink accepts nothing; the assembler keeps its own record.
type DiscardSink struct{}

func (DiscardSink) Create(context.Context, *entity.Order) (*entity.Order, error) {
	return nil, nil
}
