// Package bootstrap wires configuration into storage adapters and the
// reconcile service for the binaries under cmd/.
package bootstrap

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/order-reconciler/internal/adapter/storage"
	"github.com/rl1809/order-reconciler/internal/config"
	"github.com/rl1809/order-reconciler/internal/core/imagepath"
	"github.com/rl1809/order-reconciler/internal/core/service"
	"github.com/rl1809/order-reconciler/internal/core/status"
	"github.com/rl1809/order-reconciler/internal/port"
)

// RecordWriter writes single orders with optimistic locking. Only the MySQL
// backend provides it.
type RecordWriter interface {
	RecordVersion(ctx context.Context, store, id string) (int64, error)
	PutRecord(ctx context.Context, store, id string, payload json.RawMessage, expectedVersion int64) error
}

type App struct {
	Service *service.ReconcileService
	Repo    port.CollectionRepository
	// Cache is nil unless the backend is redis.
	Cache   port.SnapshotCache
	Records RecordWriter

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{}

	switch cfg.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to connect redis: %w", err)
		}
		adapter := storage.NewRedisAdapter(rdb, cfg.Redis.KeyPrefix, cfg.Redis.CacheTTL)
		app.Repo = adapter
		app.Cache = adapter
		app.closers = append(app.closers, rdb.Close)

	case config.BackendMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open mysql: %w", err)
		}
		db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping mysql: %w", err)
		}
		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		app.Repo = adapter
		app.Records = adapter
		app.closers = append(app.closers, db.Close)

	case config.BackendFile:
		app.Repo = storage.NewFileAdapter(cfg.File.Path)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	app.Service = NewService(cfg, app.Repo, logger)
	return app, nil
}

// NewService builds the reconcile service over any repository.
func NewService(cfg *config.Config, repo port.CollectionRepository, logger *slog.Logger) *service.ReconcileService {
	deriver := status.NewDeriver(
		status.WithDeliveryDays(cfg.Status.DeliveryDays),
		status.WithNearDeadline(cfg.Status.NearDeadline),
	)
	fb := cfg.Images.Fallbacks

	return service.NewReconcileService(repo, deriver, imagepath.NewNormalizer(cfg.Images.CDNBase), service.Config{
		Stores:             cfg.Stores,
		IdentityKeys:       cfg.Merge.IdentityKeys,
		VersionField:       cfg.Merge.VersionField,
		ProductsCollection: cfg.Catalog.Products,
		ArtistsCollection:  cfg.Catalog.Artists,
		ServiceCollections: cfg.Catalog.Services,
		Fallbacks: service.ImageFallbacks{
			Product: fb.Product,
			Artist:  fb.Artist,
			Service: fb.Service,
			Buyer:   fb.Buyer,
			Item:    fb.Item,
		},
	}, logger)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
