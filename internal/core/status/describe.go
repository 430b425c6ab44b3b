package status

import "github.com/rl1809/order-reconciler/internal/core/domain"

type label struct {
	text  string
	class string
}

var labels = map[domain.OrderStatus]label{
	domain.OrderStatusUnpaid:         {"Awaiting payment", "status-unpaid"},
	domain.OrderStatusPaid:           {"Paid", "status-paid"},
	domain.OrderStatusProcessing:     {"In progress", "status-processing"},
	domain.OrderStatusWaitingConfirm: {"Awaiting confirmation", "status-waiting"},
	domain.OrderStatusNearDeadline:   {"Due soon", "status-warning"},
	domain.OrderStatusOverdue:        {"Overdue", "status-overdue"},
	domain.OrderStatusCompleted:      {"Completed", "status-completed"},
	domain.OrderStatusRefunded:       {"Refunded", "status-refunded"},
	domain.OrderStatusRefunding:      {"Refund in progress", "status-refunding"},
	domain.OrderStatusCancelled:      {"Cancelled", "status-cancelled"},
}

// Describe returns the display text and style class for a status.
func Describe(s domain.OrderStatus) (string, string) {
	if l, ok := labels[s]; ok {
		return l.text, l.class
	}
	return "Unknown", "status-unknown"
}

// Apply sets StatusText and StatusClass from the order's final status.
func Apply(o domain.Order) domain.Order {
	o.StatusText, o.StatusClass = Describe(o.Status)
	return o
}
