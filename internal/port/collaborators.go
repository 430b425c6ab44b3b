package port

import "github.com/rl1809/order-reconciler/internal/core/domain"

type StatusDeriver interface {
	// Derive recomputes status fields from timestamps. It must be pure and
	// idempotent; callers wrap it with the terminal-state guard.
	Derive(order domain.Order) domain.Order
}

// ImageOptions selects the fallback asset for one image slot.
type ImageOptions struct {
	Namespace string
	Fallback  string
}

type ImageNormalizer interface {
	// Normalize turns any stored reference into a renderable one, returning
	// the fallback when the reference cannot be shown
	Normalize(ref string, opts ImageOptions) string
}
