// Package guard keeps status derivation from moving an order out of a
// terminal state.
package guard

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/metrics"
	"github.com/rl1809/order-reconciler/internal/port"
)

// Activation describes one restored order.
type Activation struct {
	OrderID        string             `json:"order_id"`
	OriginalStatus domain.OrderStatus `json:"original_status"`
	DerivedStatus  domain.OrderStatus `json:"derived_status"`
}

type snapshot struct {
	status            domain.OrderStatus
	refundStatus      string
	refundAmount      decimal.Decimal
	refundCompletedAt domain.Timestamp
	refundHistory     []any
	completedAt       domain.Timestamp
	wasOverdue        bool
	overdueDays       int
}

func take(o domain.Order) snapshot {
	return snapshot{
		status:            o.Status,
		refundStatus:      o.RefundStatus,
		refundAmount:      o.RefundAmount,
		refundCompletedAt: o.RefundCompletedAt,
		refundHistory:     o.RefundHistory,
		completedAt:       o.CompletedAt,
		wasOverdue:        o.WasOverdue,
		overdueDays:       o.OverdueDays,
	}
}

func (s snapshot) restore(o domain.Order) domain.Order {
	o.Status = s.status
	o.RefundStatus = s.refundStatus
	o.RefundAmount = s.refundAmount
	o.RefundCompletedAt = s.refundCompletedAt
	o.RefundHistory = s.refundHistory
	o.CompletedAt = s.completedAt
	o.WasOverdue = s.wasOverdue
	o.OverdueDays = s.overdueDays
	return o
}

type Guard struct {
	deriver port.StatusDeriver
	logger  *slog.Logger
}

func New(deriver port.StatusDeriver, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{deriver: deriver, logger: logger}
}

// Apply runs the status deriver and restores the original status and refund
// metadata when a terminal status would otherwise change. The returned
// activation is nil when nothing was restored.
func (g *Guard) Apply(o domain.Order) (domain.Order, *Activation) {
	before := take(o)
	derived := g.deriver.Derive(o)

	if !before.status.IsTerminal() || derived.Status == before.status {
		return derived, nil
	}

	act := &Activation{
		OrderID:        o.ID,
		OriginalStatus: before.status,
		DerivedStatus:  derived.Status,
	}
	g.logger.Warn("terminal status restored after derivation",
		"order_id", act.OrderID,
		"original_status", act.OriginalStatus,
		"derived_status", act.DerivedStatus,
	)
	metrics.GuardActivations.WithLabelValues(string(before.status)).Inc()

	return before.restore(derived), act
}
