package service

import (
	"log/slog"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/enrich"
	"github.com/rl1809/order-reconciler/internal/core/guard"
	"github.com/rl1809/order-reconciler/internal/core/imagepath"
	"github.com/rl1809/order-reconciler/internal/core/merge"
	"github.com/rl1809/order-reconciler/internal/core/status"
	"github.com/rl1809/order-reconciler/internal/port"
)

// ImageFallbacks holds the asset shown for each image slot when the stored
// reference cannot be rendered.
type ImageFallbacks struct {
	Product string
	Artist  string
	Service string
	Buyer   string
	Item    string
}

// Pipeline is the synchronous core: merge, guard the derived status, enrich,
// and normalize images. It holds no state between runs.
type Pipeline struct {
	merger    *merge.Merger
	guard     *guard.Guard
	images    port.ImageNormalizer
	fallbacks ImageFallbacks
}

func NewPipeline(merger *merge.Merger, deriver port.StatusDeriver, images port.ImageNormalizer, fallbacks ImageFallbacks, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		merger:    merger,
		guard:     guard.New(deriver, logger),
		images:    images,
		fallbacks: fallbacks,
	}
}

// Run turns accepted store records into finished orders, in first-seen order.
func (p *Pipeline) Run(stores []merge.StoreRecords, cat Catalog) ([]domain.Order, []guard.Activation) {
	merged := p.merger.Merge(stores)
	resolver := enrich.NewResolver(cat.Products, cat.Services, cat.Artists)

	orders := make([]domain.Order, 0, len(merged))
	var activations []guard.Activation
	for _, rec := range merged {
		o, act := p.guard.Apply(domain.OrderFromRecord(rec))
		if act != nil {
			activations = append(activations, *act)
		}
		o = status.Apply(o)
		o = resolver.Resolve(o)
		o = p.normalizeImages(o)
		orders = append(orders, o)
	}
	return orders, activations
}

func (p *Pipeline) normalizeImages(o domain.Order) domain.Order {
	o.ProductImage = p.images.Normalize(o.ProductImage, port.ImageOptions{Namespace: imagepath.NamespaceProduct, Fallback: p.fallbacks.Product})
	o.ArtistAvatar = p.images.Normalize(o.ArtistAvatar, port.ImageOptions{Namespace: imagepath.NamespaceArtist, Fallback: p.fallbacks.Artist})
	o.ServiceAvatar = p.images.Normalize(o.ServiceAvatar, port.ImageOptions{Namespace: imagepath.NamespaceService, Fallback: p.fallbacks.Service})
	o.BuyerAvatar = p.images.Normalize(o.BuyerAvatar, port.ImageOptions{Namespace: imagepath.NamespaceBuyer, Fallback: p.fallbacks.Buyer})

	if len(o.Items) > 0 {
		items := make([]domain.Item, len(o.Items))
		for i, it := range o.Items {
			it.ProductImage = p.images.Normalize(it.ProductImage, port.ImageOptions{Namespace: imagepath.NamespaceItem, Fallback: p.fallbacks.Item})
			items[i] = it
		}
		o.Items = items
	}
	return o
}
