package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/rl1809/order-reconciler/internal/adapter/handler/rpc"
	"github.com/rl1809/order-reconciler/internal/core/diagnostics"
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/service"
	"github.com/rl1809/order-reconciler/internal/port"
)

// Reconciler is the part of service.ReconcileService the handlers serve.
type Reconciler interface {
	Reconcile(ctx context.Context) (*service.Result, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Audit(ctx context.Context) (*diagnostics.Report, error)
}

// orderList serves the reconciled list, reading through the snapshot cache
// when one is configured.
type orderList struct {
	svc    Reconciler
	cache  port.SnapshotCache
	logger *slog.Logger
}

func (l *orderList) load(ctx context.Context, refresh bool) (json.RawMessage, error) {
	if l.cache != nil && !refresh {
		payload, ok, err := l.cache.GetReconciled(ctx)
		if err != nil {
			l.logger.Warn("snapshot cache read failed", "error", err)
		} else if ok {
			return payload, nil
		}
	}

	res, err := l.svc.Reconcile(ctx)
	if err != nil {
		return nil, err
	}

	view := rpc.ListOrdersResponse{
		Orders:       make([]domain.Record, len(res.Orders)),
		Count:        len(res.Orders),
		Rejected:     res.Rejected,
		FailedStores: res.FailedStores,
	}
	for i, o := range res.Orders {
		view.Orders[i] = o.Record()
	}

	payload, err := json.Marshal(view)
	if err != nil {
		return nil, err
	}

	// a pass with missing stores is served but not cached
	if l.cache != nil && len(res.FailedStores) == 0 {
		if err := l.cache.SetReconciled(ctx, payload); err != nil {
			l.logger.Warn("snapshot cache write failed", "error", err)
		}
	}
	return payload, nil
}
