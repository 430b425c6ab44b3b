package port

import (
	"context"
	"encoding/json"
)

type SnapshotCache interface {
	// GetReconciled returns the cached reconciled order list, ok=false on a miss
	GetReconciled(ctx context.Context) (json.RawMessage, bool, error)

	// SetReconciled caches the reconciled order list until it expires
	SetReconciled(ctx context.Context, payload json.RawMessage) error

	// Invalidate drops the cached list so the next read reconciles again
	Invalidate(ctx context.Context) error
}
