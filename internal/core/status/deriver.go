// Package status derives display status from order timestamps.
package status

import (
	"math"
	"time"

	"github.com/rl1809/order-reconciler/internal/core/domain"
)

const deadlineLayout = "2006-01-02 15:04:05"

const (
	DefaultDeliveryDays = 7
	DefaultNearDeadline = 24 * time.Hour
)

// Deriver is the default timestamp-driven status heuristic. It knows nothing
// about refunds or cancellations, which is why its output must always pass
// through the terminal-state guard.
type Deriver struct {
	now          func() time.Time
	deliveryDays int
	nearDeadline time.Duration
}

type Option func(*Deriver)

func WithClock(now func() time.Time) Option {
	return func(d *Deriver) {
		d.now = now
	}
}

func WithDeliveryDays(days int) Option {
	return func(d *Deriver) {
		if days > 0 {
			d.deliveryDays = days
		}
	}
}

func WithNearDeadline(window time.Duration) Option {
	return func(d *Deriver) {
		if window > 0 {
			d.nearDeadline = window
		}
	}
}

func NewDeriver(opts ...Option) *Deriver {
	d := &Deriver{
		now:          time.Now,
		deliveryDays: DefaultDeliveryDays,
		nearDeadline: DefaultNearDeadline,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Deriver) Derive(o domain.Order) domain.Order {
	if completed(o) {
		o.Status = domain.OrderStatusCompleted
		return o
	}

	switch o.Status {
	case domain.OrderStatusUnpaid, domain.OrderStatusWaitingConfirm:
		return o
	}

	deadline, ok := d.deadline(o)
	if !ok {
		if o.Status == "" || o.Status == domain.OrderStatusPaid {
			o.Status = domain.OrderStatusProcessing
		}
		return o
	}
	o.Deadline = domain.NewTimestamp(deadline.In(time.Local).Format(deadlineLayout))

	now := d.now()
	switch remaining := deadline.Sub(now); {
	case remaining < 0:
		o.Status = domain.OrderStatusOverdue
		o.WasOverdue = true
		o.OverdueDays = int(math.Ceil(-remaining.Hours() / 24))
	case remaining <= d.nearDeadline:
		o.Status = domain.OrderStatusNearDeadline
	default:
		o.Status = domain.OrderStatusProcessing
	}
	return o
}

// completed reports a parseable, non-epoch completion time. Merged records
// may carry placeholders such as 0, false or "null" in completedAt.
func completed(o domain.Order) bool {
	t, ok := o.CompletedAt.Time()
	return ok && t.UnixMilli() > 0
}

func (d *Deriver) deadline(o domain.Order) (time.Time, bool) {
	if t, ok := o.Deadline.Time(); ok {
		return t, true
	}
	created, ok := o.CreateTime.Time()
	if !ok {
		return time.Time{}, false
	}
	days := o.DeliveryDays
	if days <= 0 {
		days = d.deliveryDays
	}
	return created.AddDate(0, 0, days), true
}
