package sanitize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMeaningfulName_Placeholders(t *testing.T) {
	placeholders := []any{
		"", "   ", nil,
		"unknown", "Unknown Artist", "UNASSIGNED", "default", "Default Service",
		"artist", "Artist", "customer service", "Customer Service", "service",
		"pending assignment", "N/A", "null", "undefined",
		"未知画师", "待分配", "默认客服", "画师", "客服",
	}
	for _, v := range placeholders {
		assert.False(t, IsMeaningfulName(v), "expected %q to be a placeholder", v)
	}
}

func TestIsMeaningfulName_RealNames(t *testing.T) {
	for _, v := range []string{"Maya", "artist maya", "Service Desk Lin", "小雨", "Known"} {
		assert.True(t, IsMeaningfulName(v), "expected %q to be meaningful", v)
	}
}

func TestIsMeaningfulImage(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"blank", "", false},
		{"whitespace", "  ", false},
		{"nil", nil, false},
		{"default avatar asset", "/assets/default-avatar.png", false},
		{"default service asset", "/assets/default-service.png", false},
		{"marker in cdn url", "https://cdn.example.com/img/default-avatar-2.png", false},
		{"placeholder marker", "https://cdn.example.com/placeholder.jpg", false},
		{"cdn image", "https://cdn.example.com/u/42.png", true},
		{"cloud file id", "cloud://prod-1a2b/avatars/42.png", true},
		{"ephemeral still meaningful", "wxfile://tmp_1234.jpg", true},
		{"bundle path still meaningful", "/assets/banner.png", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMeaningfulImage(tt.in))
		})
	}
}

func TestIsMeaningful_Generic(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"string", "x", true},
		{"zero number", json.Number("0"), true},
		{"float", 12.5, true},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
		{"bad json number", json.Number("abc"), false},
		{"empty slice", []any{}, false},
		{"slice", []any{"a"}, true},
		{"empty object", map[string]any{}, false},
		{"object", map[string]any{"k": 1}, true},
		{"false", false, true},
		{"int", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMeaningful(tt.in))
		})
	}
}

func TestIsMeaningfulField_Dispatch(t *testing.T) {
	assert.False(t, IsMeaningfulField("artistName", "unknown"))
	assert.True(t, IsMeaningfulField("productName", "unknown"), "generic fields do not use the name denylist")
	assert.False(t, IsMeaningfulField("serviceAvatar", "/assets/default-service.png"))
	assert.False(t, IsMeaningfulField("buyerAvatar", ""))
	assert.True(t, IsMeaningfulField("remark", "hello"))
	assert.False(t, IsMeaningfulField("remark", nil))
}

func TestIsRenderInvalid(t *testing.T) {
	assert.True(t, IsRenderInvalid("wxfile://tmp_abc.jpg"))
	assert.True(t, IsRenderInvalid("http://tmp/abc.jpg"))
	assert.True(t, IsRenderInvalid("/assets/avatar-custom.png"))
	assert.True(t, IsRenderInvalid("../images/a.png"))
	assert.False(t, IsRenderInvalid("https://cdn.example.com/a.png"))
	assert.False(t, IsRenderInvalid("cloud://env/a.png"))

	assert.True(t, NeedsImage(""))
	assert.True(t, NeedsImage("wxfile://a"))
	assert.False(t, NeedsImage("https://cdn.example.com/a.png"))
}

func TestIsPlainObject(t *testing.T) {
	type record map[string]any
	assert.True(t, IsPlainObject(map[string]any{}))
	assert.True(t, IsPlainObject(record{"a": 1}))
	assert.False(t, IsPlainObject([]any{}))
	assert.False(t, IsPlainObject(nil))
	assert.False(t, IsPlainObject("x"))
}
