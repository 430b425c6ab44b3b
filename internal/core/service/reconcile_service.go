package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rl1809/order-reconciler/internal/core/diagnostics"
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/guard"
	"github.com/rl1809/order-reconciler/internal/core/merge"
	"github.com/rl1809/order-reconciler/internal/metrics"
	"github.com/rl1809/order-reconciler/internal/port"
)

var ErrOrderNotFound = errors.New("order not found")

var tracer = otel.Tracer("github.com/rl1809/order-reconciler/internal/core/service")

type Config struct {
	// Stores are read in this order; later stores win priority fields.
	Stores             []string
	IdentityKeys       []string
	VersionField       string
	ProductsCollection string
	ArtistsCollection  string
	ServiceCollections []string
	Fallbacks          ImageFallbacks
}

// Result is one reconciliation pass.
type Result struct {
	Orders       []domain.Order
	Rejected     []merge.Rejection
	Activations  []guard.Activation
	FailedStores []string
}

type ReconcileService struct {
	repo     port.CollectionRepository
	pipeline *Pipeline
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
}

func NewReconcileService(repo port.CollectionRepository, deriver port.StatusDeriver, images port.ImageNormalizer, cfg Config, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	var opts []merge.Option
	if cfg.VersionField != "" {
		opts = append(opts, merge.WithVersionField(cfg.VersionField))
	}
	return &ReconcileService{
		repo:     repo,
		pipeline: NewPipeline(merge.NewMerger(opts...), deriver, images, cfg.Fallbacks, logger),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Reconcile loads every store and the catalog and returns one finished order
// per id. Unavailable stores degrade to empty; only a cancelled context is
// an error.
func (s *ReconcileService) Reconcile(ctx context.Context) (*Result, error) {
	ctx, span := tracer.Start(ctx, "ReconcileService.Reconcile")
	defer span.End()
	start := time.Now()

	loaded := s.loadStores(ctx)
	cat := s.loadCatalog(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	orders, activations := s.pipeline.Run(loaded.stores, cat)

	metrics.RecordsMerged.Observe(float64(len(orders)))
	metrics.ReconcileDuration.WithLabelValues("reconcile").Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("orders", len(orders)),
		attribute.Int("rejected", len(loaded.rejected)),
		attribute.Int("guard_activations", len(activations)),
	)
	s.logger.Info("reconciled orders",
		"orders", len(orders),
		"rejected", len(loaded.rejected),
		"guard_activations", len(activations),
		"failed_stores", loaded.failed,
	)

	return &Result{
		Orders:       orders,
		Rejected:     loaded.rejected,
		Activations:  activations,
		FailedStores: loaded.failed,
	}, nil
}

// Get reconciles and returns the order with the given id.
func (s *ReconcileService) Get(ctx context.Context, id string) (*domain.Order, error) {
	res, err := s.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	for i := range res.Orders {
		if res.Orders[i].ID == id {
			return &res.Orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// Audit runs the diagnostics over the raw store contents.
func (s *ReconcileService) Audit(ctx context.Context) (*diagnostics.Report, error) {
	ctx, span := tracer.Start(ctx, "ReconcileService.Audit")
	defer span.End()
	start := time.Now()

	loaded := s.loadStores(ctx)
	cat := s.loadCatalog(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	report := diagnostics.Check(diagnostics.Input{
		Stores:   loaded.stores,
		Artists:  cat.Artists,
		Rejected: loaded.rejected,
	})
	report.ReportID = uuid.NewString()
	report.GeneratedAt = s.now().UTC()
	report.Log(s.logger)

	metrics.ReconcileDuration.WithLabelValues("audit").Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("duplicates", len(report.Duplicates)))
	return &report, nil
}
