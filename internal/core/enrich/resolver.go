// Package enrich backfills artist, service and product attributes of an order
// from catalog data. Catalog values never overwrite meaningful order values.
package enrich

import (
	"strings"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/sanitize"
)

// Literals used when nothing better is known.
const (
	UnknownArtist     = "unknown artist"
	PendingAssignment = "pending assignment"
)

type Resolver struct {
	productsByID   map[string]domain.Product
	productsByName map[string]domain.Product
	services       map[string]domain.ServiceAgent
	artists        map[string]domain.Artist
}

// NewResolver indexes the catalog. The first entry for a key wins; only
// approved artists are indexed.
func NewResolver(products []domain.Product, services []domain.ServiceAgent, artists []domain.Artist) *Resolver {
	r := &Resolver{
		productsByID:   make(map[string]domain.Product, len(products)),
		productsByName: make(map[string]domain.Product, len(products)),
		services:       make(map[string]domain.ServiceAgent, len(services)),
		artists:        make(map[string]domain.Artist, len(artists)),
	}
	for _, p := range products {
		if p.ID != "" {
			if _, dup := r.productsByID[p.ID]; !dup {
				r.productsByID[p.ID] = p
			}
		}
		if name := strings.TrimSpace(p.Name); name != "" {
			if _, dup := r.productsByName[name]; !dup {
				r.productsByName[name] = p
			}
		}
	}
	for _, s := range services {
		for _, key := range s.Keys() {
			if _, dup := r.services[key]; !dup {
				r.services[key] = s
			}
		}
	}
	for _, a := range artists {
		if !a.Approved() {
			continue
		}
		for _, key := range []string{a.ID, a.UserID} {
			if key == "" {
				continue
			}
			if _, dup := r.artists[key]; !dup {
				r.artists[key] = a
			}
		}
	}
	return r
}

// Product finds a product by id, falling back to its name.
func (r *Resolver) Product(id, name string) (domain.Product, bool) {
	if id != "" {
		if p, ok := r.productsByID[id]; ok {
			return p, true
		}
	}
	if name = strings.TrimSpace(name); name != "" {
		if p, ok := r.productsByName[name]; ok {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (r *Resolver) Service(id string) (domain.ServiceAgent, bool) {
	s, ok := r.services[strings.TrimSpace(id)]
	return s, ok
}

func (r *Resolver) Artist(id string) (domain.Artist, bool) {
	a, ok := r.artists[strings.TrimSpace(id)]
	return a, ok
}

// Resolve returns the order with catalog attributes filled in, service
// assignment computed and fallback literals applied.
func (r *Resolver) Resolve(o domain.Order) domain.Order {
	if p, ok := r.Product(o.ProductID, o.ProductName); ok {
		o.ProductName = fillGeneric(o.ProductName, p.Name)
		o.ProductImage = fillAvatar(o.ProductImage, firstImage(p.Images))
		o.ArtistID = fillGeneric(o.ArtistID, p.ArtistID)
		o.ArtistName = fillName(o.ArtistName, p.ArtistName)
		o.ArtistAvatar = fillAvatar(o.ArtistAvatar, p.ArtistAvatar)
	}

	if a, ok := r.Artist(o.ArtistID); ok {
		o.ArtistName = fillName(o.ArtistName, a.Name)
		o.ArtistAvatar = fillAvatar(o.ArtistAvatar, a.Avatar)
	}

	if len(o.Items) > 0 {
		items := make([]domain.Item, len(o.Items))
		for i, it := range o.Items {
			if p, ok := r.Product(it.ProductID, it.ProductName); ok {
				it.ProductName = fillGeneric(it.ProductName, p.Name)
				it.ProductImage = fillAvatar(it.ProductImage, firstImage(p.Images))
			}
			items[i] = it
		}
		o.Items = items
	}

	o = r.resolveService(o)

	if !sanitize.IsMeaningfulName(o.ArtistName) {
		o.ArtistName = UnknownArtist
	}
	if !sanitize.IsMeaningfulImage(o.ArtistAvatar) {
		o.ArtistAvatar = ""
	}
	if !sanitize.IsMeaningfulImage(o.BuyerAvatar) {
		o.BuyerAvatar = ""
	}
	return o
}

func (r *Resolver) resolveService(o domain.Order) domain.Order {
	if s, ok := r.Service(o.ServiceID); ok {
		o.ServiceName = fillName(o.ServiceName, s.DisplayName())
		o.ServiceAvatar = fillAvatar(o.ServiceAvatar, s.DisplayAvatar())
	}

	if sanitize.IsMeaningful(strings.TrimSpace(o.ServiceID)) || sanitize.IsMeaningfulName(o.ServiceName) {
		o.ServiceStatus = domain.ServiceStatusAssigned
	} else {
		o.ServiceStatus = domain.ServiceStatusPending
	}
	o.NeedsService = o.ServiceStatus == domain.ServiceStatusPending

	if !sanitize.IsMeaningfulName(o.ServiceName) {
		o.ServiceName = PendingAssignment
	}
	if !sanitize.IsMeaningfulImage(o.ServiceAvatar) {
		o.ServiceAvatar = ""
	}
	return o
}

func fillGeneric(current, candidate string) string {
	if !sanitize.IsMeaningful(strings.TrimSpace(current)) && sanitize.IsMeaningful(strings.TrimSpace(candidate)) {
		return candidate
	}
	return current
}

func fillName(current, candidate string) string {
	if !sanitize.IsMeaningfulName(current) && sanitize.IsMeaningfulName(candidate) {
		return candidate
	}
	return current
}

// fillAvatar fills image fields. It also replaces a meaningful value that
// cannot be rendered, but only with a candidate that can.
func fillAvatar(current, candidate string) string {
	if !sanitize.IsMeaningfulImage(candidate) {
		return current
	}
	if !sanitize.IsMeaningfulImage(current) {
		return candidate
	}
	if sanitize.IsRenderInvalid(current) && !sanitize.IsRenderInvalid(candidate) {
		return candidate
	}
	return current
}

// firstImage prefers the first renderable catalog image over the first
// meaningful one.
func firstImage(images []string) string {
	fallback := ""
	for _, img := range images {
		if !sanitize.IsMeaningfulImage(img) {
			continue
		}
		if !sanitize.IsRenderInvalid(img) {
			return img
		}
		if fallback == "" {
			fallback = img
		}
	}
	return fallback
}
