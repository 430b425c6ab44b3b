// Package imagepath turns stored image references into ones a client can render.
package imagepath

import (
	"strings"

	"github.com/rl1809/order-reconciler/internal/core/sanitize"
	"github.com/rl1809/order-reconciler/internal/port"
)

const cloudScheme = "cloud://"

// Namespaces used for the image slots of an order.
const (
	NamespaceProduct = "product"
	NamespaceArtist  = "artist"
	NamespaceService = "service"
	NamespaceBuyer   = "buyer"
	NamespaceItem    = "item"
)

// Normalizer is the default port.ImageNormalizer. Every output is a fixed
// point: normalizing it again returns it unchanged.
type Normalizer struct {
	cdnBase string
}

// NewNormalizer rewrites cloud file ids onto cdnBase when it is set.
func NewNormalizer(cdnBase string) *Normalizer {
	return &Normalizer{cdnBase: strings.TrimRight(cdnBase, "/")}
}

func (n *Normalizer) Normalize(ref string, opts port.ImageOptions) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || !sanitize.IsMeaningfulImage(ref) || sanitize.IsEphemeral(ref) {
		return n.fallback(opts)
	}

	lower := strings.ToLower(ref)
	switch {
	case strings.HasPrefix(lower, cloudScheme):
		if n.cdnBase == "" {
			return ref
		}
		// cloud://<env>/<path>
		rest := ref[len(cloudScheme):]
		slash := strings.Index(rest, "/")
		if slash < 0 || slash == len(rest)-1 {
			return n.fallback(opts)
		}
		return n.cdnBase + rest[slash:]
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"),
		strings.HasPrefix(lower, "data:image/"), strings.HasPrefix(ref, "/"):
		return ref
	case strings.Contains(ref, "://"):
		// unknown scheme
		return n.fallback(opts)
	}
	return "/" + strings.TrimLeft(strings.TrimPrefix(ref, "./"), "/")
}

func (n *Normalizer) fallback(opts port.ImageOptions) string {
	return strings.TrimSpace(opts.Fallback)
}
