package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rl1809/order-reconciler/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func order(status domain.OrderStatus, created string) domain.Order {
	return domain.Order{
		ID:         "o1",
		Status:     status,
		CreateTime: domain.NewTimestamp(created),
	}
}

func TestDerive(t *testing.T) {
	d := NewDeriver(WithClock(clock), WithDeliveryDays(7), WithNearDeadline(24*time.Hour))

	tests := []struct {
		name        string
		in          domain.Order
		wantStatus  domain.OrderStatus
		wantOverdue int
	}{
		{"paid well before deadline", order(domain.OrderStatusPaid, "2026-03-08 12:00:00"), domain.OrderStatusProcessing, 0},
		{"within near-deadline window", order(domain.OrderStatusProcessing, "2026-03-03 18:00:00"), domain.OrderStatusNearDeadline, 0},
		{"past deadline", order(domain.OrderStatusProcessing, "2026-02-28 18:00:00"), domain.OrderStatusOverdue, 3},
		{"unpaid untouched", order(domain.OrderStatusUnpaid, "2026-01-01 00:00:00"), domain.OrderStatusUnpaid, 0},
		{"waiting confirmation untouched", order(domain.OrderStatusWaitingConfirm, "2026-01-01 00:00:00"), domain.OrderStatusWaitingConfirm, 0},
		{"no timestamps, paid", domain.Order{ID: "o2", Status: domain.OrderStatusPaid}, domain.OrderStatusProcessing, 0},
		{"no timestamps, unknown status kept", domain.Order{ID: "o3", Status: "custom"}, "custom", 0},
		{"refunded order revived by timestamps", order(domain.OrderStatusRefunded, "2026-02-01 00:00:00"), domain.OrderStatusOverdue, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Derive(tt.in)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantOverdue, got.OverdueDays)
			assert.Equal(t, tt.wantOverdue > 0, got.WasOverdue)
		})
	}
}

func TestDerive_CompletedAtWins(t *testing.T) {
	d := NewDeriver(WithClock(clock))
	in := order(domain.OrderStatusProcessing, "2026-01-01 00:00:00")
	in.CompletedAt = domain.NewTimestamp("2026-01-05 00:00:00")

	assert.Equal(t, domain.OrderStatusCompleted, d.Derive(in).Status)

	for _, raw := range []any{0, json.Number("0"), "0", false, "null", "undefined", nil} {
		in := order(domain.OrderStatusProcessing, "")
		in.CompletedAt = domain.NewTimestamp(raw)
		assert.Equal(t, domain.OrderStatusProcessing, d.Derive(in).Status, "completedAt=%v", raw)
	}
}

func TestDerive_EpochMillisAndExplicitDeadline(t *testing.T) {
	d := NewDeriver(WithClock(clock))

	in := domain.Order{ID: "o1", Status: domain.OrderStatusPaid, Deadline: domain.NewTimestamp(fixedNow.Add(2 * time.Hour).UnixMilli())}
	assert.Equal(t, domain.OrderStatusNearDeadline, d.Derive(in).Status)

	in = domain.Order{ID: "o1", Status: domain.OrderStatusPaid, CreateTime: domain.NewTimestamp(fixedNow.AddDate(0, 0, -1).UnixMilli()), DeliveryDays: 14}
	assert.Equal(t, domain.OrderStatusProcessing, d.Derive(in).Status)
}

func TestDerive_Idempotent(t *testing.T) {
	d := NewDeriver(WithClock(clock))
	once := d.Derive(order(domain.OrderStatusPaid, "2026-02-20 08:30:00"))
	twice := d.Derive(once)

	assert.Equal(t, once.Status, twice.Status)
	assert.Equal(t, once.OverdueDays, twice.OverdueDays)
	assert.Equal(t, once.Deadline, twice.Deadline)
}

func TestDescribe(t *testing.T) {
	text, class := Describe(domain.OrderStatusCompleted)
	assert.Equal(t, "Completed", text)
	assert.Equal(t, "status-completed", class)

	text, class = Describe("bogus")
	assert.Equal(t, "Unknown", text)
	assert.Equal(t, "status-unknown", class)

	o := Apply(domain.Order{Status: domain.OrderStatusRefunding})
	assert.Equal(t, "Refund in progress", o.StatusText)
}
