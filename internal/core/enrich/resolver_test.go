package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/order-reconciler/internal/core/domain"
)

var catalog = []domain.Product{
	{
		ID:           "p1",
		Name:         "Portrait commission",
		ArtistID:     "a1",
		ArtistName:   "Maya",
		ArtistAvatar: "https://cdn.example.com/maya.png",
		Images:       []string{"", "/assets/default-product.png", "https://cdn.example.com/p1.png"},
	},
	{ID: "p2", Name: "Chibi sketch", ArtistID: "a2", ArtistName: "unknown"},
}

var directory = []domain.ServiceAgent{
	{ID: "s1", Name: "Lin", Avatar: "https://cdn.example.com/lin.png", IsActive: true},
	{UserID: "u9", NickName: "Qiao", AvatarURL: "https://cdn.example.com/qiao.png"},
}

var artists = []domain.Artist{
	{ID: "a2", Name: "Kai", Avatar: "https://cdn.example.com/kai.png", Status: "approved"},
	{ID: "a3", Name: "Rejected Person", Status: "rejected"},
}

func newResolver() *Resolver {
	return NewResolver(catalog, directory, artists)
}

func TestResolve_FillsFromProductByID(t *testing.T) {
	out := newResolver().Resolve(domain.Order{ID: "o1", ProductID: "p1"})

	assert.Equal(t, "Portrait commission", out.ProductName)
	assert.Equal(t, "https://cdn.example.com/p1.png", out.ProductImage)
	assert.Equal(t, "a1", out.ArtistID)
	assert.Equal(t, "Maya", out.ArtistName)
	assert.Equal(t, "https://cdn.example.com/maya.png", out.ArtistAvatar)
}

func TestResolve_FallsBackToProductName(t *testing.T) {
	out := newResolver().Resolve(domain.Order{ID: "o1", ProductID: "gone", ProductName: " Portrait commission "})

	assert.Equal(t, "Maya", out.ArtistName)
	assert.Equal(t, "a1", out.ArtistID)
}

func TestResolve_NeverOverwritesMeaningfulValues(t *testing.T) {
	out := newResolver().Resolve(domain.Order{
		ID:           "o1",
		ProductID:    "p1",
		ProductName:  "Custom name",
		ProductImage: "https://cdn.example.com/own.png",
		ArtistID:     "a9",
		ArtistName:   "Rin",
		ArtistAvatar: "https://cdn.example.com/rin.png",
	})

	assert.Equal(t, "Custom name", out.ProductName)
	assert.Equal(t, "https://cdn.example.com/own.png", out.ProductImage)
	assert.Equal(t, "a9", out.ArtistID)
	assert.Equal(t, "Rin", out.ArtistName)
	assert.Equal(t, "https://cdn.example.com/rin.png", out.ArtistAvatar)
}

func TestResolve_ReplacesRenderInvalidAvatar(t *testing.T) {
	out := newResolver().Resolve(domain.Order{ID: "o1", ProductID: "p1", ArtistAvatar: "wxfile://tmp_88.jpg"})
	assert.Equal(t, "https://cdn.example.com/maya.png", out.ArtistAvatar)

	out = newResolver().Resolve(domain.Order{ID: "o2", ArtistAvatar: "wxfile://tmp_88.jpg"})
	assert.Equal(t, "wxfile://tmp_88.jpg", out.ArtistAvatar, "kept when nothing better exists")
}

func TestResolve_ApprovedArtistDirectory(t *testing.T) {
	out := newResolver().Resolve(domain.Order{ID: "o1", ProductID: "p2"})
	assert.Equal(t, "Kai", out.ArtistName, "placeholder catalog name skipped, directory used")
	assert.Equal(t, "https://cdn.example.com/kai.png", out.ArtistAvatar)

	out = newResolver().Resolve(domain.Order{ID: "o2", ArtistID: "a3"})
	assert.Equal(t, UnknownArtist, out.ArtistName, "unapproved artists are not used")
}

func TestResolve_Fallbacks(t *testing.T) {
	out := newResolver().Resolve(domain.Order{
		ID:            "o1",
		ArtistName:    "Artist",
		ArtistAvatar:  "/assets/default-avatar.png",
		ServiceName:   "customer service",
		ServiceAvatar: "/assets/default-service.png",
		BuyerAvatar:   "default-avatar",
	})

	assert.Equal(t, UnknownArtist, out.ArtistName)
	assert.Equal(t, "", out.ArtistAvatar)
	assert.Equal(t, PendingAssignment, out.ServiceName)
	assert.Equal(t, "", out.ServiceAvatar)
	assert.Equal(t, "", out.BuyerAvatar)
	assert.Equal(t, domain.ServiceStatusPending, out.ServiceStatus)
	assert.True(t, out.NeedsService)
}

func TestResolve_ServiceAssignment(t *testing.T) {
	tests := []struct {
		name       string
		in         domain.Order
		wantName   string
		wantAvatar string
		wantStatus domain.ServiceStatus
		wantNeeds  bool
	}{
		{"by id", domain.Order{ServiceID: "s1"}, "Lin", "https://cdn.example.com/lin.png", domain.ServiceStatusAssigned, false},
		{"by user id with nick name", domain.Order{ServiceID: "u9"}, "Qiao", "https://cdn.example.com/qiao.png", domain.ServiceStatusAssigned, false},
		{"unknown id still assigned", domain.Order{ServiceID: "s404"}, PendingAssignment, "", domain.ServiceStatusAssigned, false},
		{"name only", domain.Order{ServiceName: "Wen"}, "Wen", "", domain.ServiceStatusAssigned, false},
		{"nothing", domain.Order{}, PendingAssignment, "", domain.ServiceStatusPending, true},
		{"placeholder name", domain.Order{ServiceName: "待分配"}, PendingAssignment, "", domain.ServiceStatusPending, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := newResolver().Resolve(tt.in)
			assert.Equal(t, tt.wantName, out.ServiceName)
			assert.Equal(t, tt.wantAvatar, out.ServiceAvatar)
			assert.Equal(t, tt.wantStatus, out.ServiceStatus)
			assert.Equal(t, tt.wantNeeds, out.NeedsService)
		})
	}
}

func TestResolve_Items(t *testing.T) {
	out := newResolver().Resolve(domain.Order{
		ID: "o1",
		Items: []domain.Item{
			{ProductID: "p1"},
			{ProductName: "Chibi sketch", ProductImage: "https://cdn.example.com/own.png"},
			{ProductID: "missing"},
		},
	})

	require.Len(t, out.Items, 3)
	assert.Equal(t, "Portrait commission", out.Items[0].ProductName)
	assert.Equal(t, "https://cdn.example.com/p1.png", out.Items[0].ProductImage)
	assert.Equal(t, "https://cdn.example.com/own.png", out.Items[1].ProductImage)
	assert.Equal(t, "", out.Items[2].ProductImage)
}

func TestResolve_ReplacesRenderInvalidProductImage(t *testing.T) {
	r := NewResolver([]domain.Product{
		{ID: "p1", Images: []string{"wxfile://tmp/catalog.png", "https://cdn.example.com/p1.png"}},
		{ID: "p2", Images: []string{"wxfile://tmp/only.png"}},
	}, nil, nil)

	out := r.Resolve(domain.Order{
		ID:           "o1",
		ProductID:    "p1",
		ProductImage: "wxfile://tmp/cover.png",
		Items:        []domain.Item{{ProductID: "p1", ProductImage: "http://tmp/item.png"}},
	})
	assert.Equal(t, "https://cdn.example.com/p1.png", out.ProductImage)
	assert.Equal(t, "https://cdn.example.com/p1.png", out.Items[0].ProductImage)

	out = r.Resolve(domain.Order{ID: "o2", ProductID: "p2", ProductImage: "wxfile://tmp/cover.png"})
	assert.Equal(t, "wxfile://tmp/cover.png", out.ProductImage, "kept when nothing better exists")
}

func TestResolve_Idempotent(t *testing.T) {
	r := newResolver()
	inputs := []domain.Order{
		{ID: "o1", ProductID: "p1"},
		{ID: "o2", ServiceID: "s1", ArtistAvatar: "wxfile://x"},
		{ID: "o3"},
		{ID: "o4", ProductID: "p1", ProductImage: "wxfile://tmp/cover.png"},
	}
	for _, in := range inputs {
		once := r.Resolve(in)
		assert.Equal(t, once, r.Resolve(once))
	}
}

func TestMergeDirectory(t *testing.T) {
	merged := MergeDirectory(
		[]domain.ServiceAgent{
			{ID: "s1", UserID: "u1", Name: "default service", Avatar: "wxfile://a"},
			{ID: "s2", Name: "Mo"},
		},
		[]domain.ServiceAgent{
			{UserID: "u1", NickName: "Lin", Name: "Lin", Avatar: "https://cdn.example.com/lin.png", IsActive: true},
			{UserID: "u3", NickName: "Pei"},
		},
	)

	require.Len(t, merged, 3)
	assert.Equal(t, "s1", merged[0].ID)
	assert.Equal(t, "Lin", merged[0].Name)
	assert.Equal(t, "https://cdn.example.com/lin.png", merged[0].Avatar)
	assert.True(t, merged[0].IsActive)
	assert.Equal(t, "Mo", merged[1].Name)
	assert.Equal(t, "u3", merged[2].Key())
}
