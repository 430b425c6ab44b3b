package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/rl1809/order-reconciler/internal/adapter/storage"
	"github.com/rl1809/order-reconciler/internal/bootstrap"
	"github.com/rl1809/order-reconciler/internal/config"
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/merge"
	"github.com/rl1809/order-reconciler/internal/logging"
)

const casRetries = 3

type options struct {
	configPath string
	backend    string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "reconcile",
		Short:        "Merge order stores into one normalized view and audit them",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("RECONCILER_CONFIG"), "path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "override the configured backend (redis, mysql, file)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", time.Minute, "overall deadline for the command")

	root.AddCommand(newRunCmd(opts), newAuditCmd(opts), newSeedCmd(opts))
	return root
}

// setup loads config and storage. Logs go to stderr so stdout stays JSON.
func setup(ctx context.Context, cmd *cobra.Command, opts *options) (*bootstrap.App, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	logger, err := logging.NewWithWriter(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "reconcile"}, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app, logger, nil
}

func withTimeout(cmd *cobra.Command, opts *options) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, opts.timeout)
}

func newRunCmd(opts *options) *cobra.Command {
	var saveTo string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile all stores and print the normalized orders as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()

			app, logger, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.Service.Reconcile(ctx)
			if err != nil {
				return err
			}

			records := make([]any, len(res.Orders))
			for i, o := range res.Orders {
				records[i] = o.Record()
			}

			if saveTo != "" {
				if err := app.Repo.SaveCollection(ctx, saveTo, records); err != nil {
					return fmt.Errorf("save %s: %w", saveTo, err)
				}
				logger.Info("saved reconciled orders", "collection", saveTo, "orders", len(records))
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&saveTo, "save", "", "also write the result to this collection")
	return cmd
}

func newAuditCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Report duplicates, status-count drift and per-artist rollups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()

			app, _, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.Service.Audit(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func newSeedCmd(opts *options) *cobra.Command {
	var (
		from    string
		perItem bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Copy collections from a JSON snapshot into the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if from == "" {
				return errors.New("--from is required")
			}
			ctx, cancel := withTimeout(cmd, opts)
			defer cancel()

			app, logger, err := setup(ctx, cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			src := storage.NewFileAdapter(from)
			names, err := src.Collections()
			if err != nil {
				return err
			}
			sort.Strings(names)

			for _, name := range names {
				elems, err := src.LoadCollection(ctx, name)
				if err != nil {
					return err
				}

				if perItem {
					if app.Records == nil {
						return errors.New("--per-record needs the mysql backend")
					}
					if err := putRecords(ctx, app.Records, name, elems, logger); err != nil {
						return err
					}
				} else if err := app.Repo.SaveCollection(ctx, name, elems); err != nil {
					return fmt.Errorf("seed %s: %w", name, err)
				}
				logger.Info("seeded collection", "collection", name, "elements", len(elems))
			}

			if app.Cache != nil {
				return app.Cache.Invalidate(ctx)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "snapshot file of the form {\"<collection>\": [...]}")
	cmd.Flags().BoolVar(&perItem, "per-record", false, "write each order with optimistic locking instead of replacing collections")
	return cmd
}

// putRecords upserts each identified element, re-reading the row version
// when another writer got there first.
func putRecords(ctx context.Context, w bootstrap.RecordWriter, store string, elems []any, logger *slog.Logger) error {
	for i, elem := range elems {
		rec, ok := domain.AsRecord(elem)
		id := ""
		if ok {
			id = merge.IdentityOf(rec)
		}
		if id == "" {
			logger.Warn("skipping element without identity", "collection", store, "index", i)
			continue
		}

		payload, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		for attempt := 0; ; attempt++ {
			version, err := w.RecordVersion(ctx, store, id)
			if err != nil {
				return err
			}
			err = w.PutRecord(ctx, store, id, payload, version)
			if err == nil {
				break
			}
			if !errors.Is(err, storage.ErrOptimisticLock) || attempt+1 >= casRetries {
				return fmt.Errorf("put %s/%s: %w", store, id, err)
			}
			logger.Debug("version conflict, retrying", "collection", store, "order_id", id)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
