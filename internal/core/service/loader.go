package service

import (
	"context"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/enrich"
	"github.com/rl1809/order-reconciler/internal/core/merge"
	"github.com/rl1809/order-reconciler/internal/metrics"
)

// Catalog is the reference data used for enrichment and diagnostics.
type Catalog struct {
	Products []domain.Product
	Services []domain.ServiceAgent
	Artists  []domain.Artist
}

type loadResult struct {
	stores   []merge.StoreRecords
	rejected []merge.Rejection
	failed   []string
}

// loadStores reads the configured stores in order. A store that fails to
// load contributes nothing; the pass continues with the rest.
func (s *ReconcileService) loadStores(ctx context.Context) loadResult {
	var res loadResult
	for _, name := range s.cfg.Stores {
		raw, err := s.repo.LoadCollection(ctx, name)
		if err != nil {
			s.logger.Warn("store unavailable, treating as empty", "store", name, "error", err)
			metrics.StoreLoadFailures.WithLabelValues(name).Inc()
			res.failed = append(res.failed, name)
			raw = nil
		}

		accepted, rejected := merge.Validate(name, raw, s.cfg.IdentityKeys)
		for _, r := range rejected {
			metrics.RecordsRejected.WithLabelValues(string(r.Reason)).Inc()
		}
		if len(rejected) > 0 {
			s.logger.Info("records rejected", "store", name, "count", len(rejected))
		}
		res.stores = append(res.stores, merge.StoreRecords{Store: name, Records: accepted})
		res.rejected = append(res.rejected, rejected...)
	}
	return res
}

func (s *ReconcileService) loadCatalog(ctx context.Context) Catalog {
	var cat Catalog

	for _, rec := range s.loadRecords(ctx, s.cfg.ProductsCollection) {
		if p, ok := domain.ProductFromRecord(rec); ok {
			cat.Products = append(cat.Products, p)
		}
	}

	lists := make([][]domain.ServiceAgent, 0, len(s.cfg.ServiceCollections))
	for _, name := range s.cfg.ServiceCollections {
		var list []domain.ServiceAgent
		for _, rec := range s.loadRecords(ctx, name) {
			if agent, ok := domain.ServiceAgentFromRecord(rec); ok {
				list = append(list, agent)
			}
		}
		lists = append(lists, list)
	}
	cat.Services = enrich.MergeDirectory(lists...)

	for _, rec := range s.loadRecords(ctx, s.cfg.ArtistsCollection) {
		if a, ok := domain.ArtistFromRecord(rec); ok {
			cat.Artists = append(cat.Artists, a)
		}
	}
	return cat
}

// loadRecords returns the JSON objects of a catalog collection, skipping
// anything else. Missing or failing collections are empty.
func (s *ReconcileService) loadRecords(ctx context.Context, name string) []domain.Record {
	if name == "" {
		return nil
	}
	raw, err := s.repo.LoadCollection(ctx, name)
	if err != nil {
		s.logger.Warn("catalog collection unavailable", "collection", name, "error", err)
		metrics.StoreLoadFailures.WithLabelValues(name).Inc()
		return nil
	}
	out := make([]domain.Record, 0, len(raw))
	for _, elem := range raw {
		if rec, ok := domain.AsRecord(elem); ok {
			out = append(out, rec)
		}
	}
	return out
}
