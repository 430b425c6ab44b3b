// Package sanitize decides whether a stored field value is usable or a
// placeholder written by an older client. Every function here is total.
package sanitize

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
)

// Category selects the rule set applied to a field.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryName
	CategoryImage
)

var placeholderNamePrefixes = []string{
	"unknown",
	"unassigned",
	"default",
	"pending assignment",
	"未知",
	"待分配",
	"默认",
}

var placeholderNameTokens = map[string]struct{}{
	"artist":           {},
	"customer service": {},
	"service":          {},
	"n/a":              {},
	"null":             {},
	"undefined":        {},
	"画师":               {},
	"客服":               {},
}

var defaultAssets = map[string]struct{}{
	"/assets/default-avatar.png":         {},
	"/assets/default-service.png":        {},
	"/assets/default-product.png":        {},
	"/assets/images/default-avatar.png":  {},
	"/assets/images/default-product.png": {},
	"/images/default.png":                {},
	"/static/default.png":                {},
}

var placeholderImageMarkers = []string{
	"default-avatar",
	"default-service",
	"default_avatar",
	"default-product",
	"placeholder",
}

var ephemeralPrefixes = []string{
	"wxfile://",
	"http://tmp/",
	"https://tmp/",
	"http://usr/",
	"file://",
	"blob:",
}

var bundleLocalPrefixes = []string{
	"/assets/",
	"assets/",
	"./",
	"../",
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// IsMeaningfulName reports whether an artist or service name is a real name.
func IsMeaningfulName(v any) bool {
	s, ok := v.(string)
	if !ok {
		return IsMeaningful(v)
	}
	folded := fold(s)
	if folded == "" {
		return false
	}
	if _, hit := placeholderNameTokens[folded]; hit {
		return false
	}
	for _, prefix := range placeholderNamePrefixes {
		if strings.HasPrefix(folded, prefix) {
			return false
		}
	}
	return true
}

// IsMeaningfulImage reports whether an avatar or image reference points at a
// real asset rather than a default or placeholder. Ephemeral paths still
// count as meaningful here; see IsRenderInvalid.
func IsMeaningfulImage(v any) bool {
	s, ok := v.(string)
	if !ok {
		return IsMeaningful(v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, hit := defaultAssets[s]; hit {
		return false
	}
	lower := strings.ToLower(s)
	for _, marker := range placeholderImageMarkers {
		if strings.Contains(lower, marker) {
			return false
		}
	}
	return true
}

// IsMeaningful is the generic rule: nil, blank strings, empty collections and
// non-finite numbers are not meaningful.
func IsMeaningful(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
	case float64:
		return !math.IsNaN(t) && !math.IsInf(t, 0)
	case float32:
		return !math.IsNaN(float64(t)) && !math.IsInf(float64(t), 0)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case bool:
		return true
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// CategoryOf maps a record key to its rule set.
func CategoryOf(key string) Category {
	switch key {
	case "artistName", "serviceName", "nickName", "name":
		return CategoryName
	case "avatar", "avatarUrl", "image":
		return CategoryImage
	}
	if strings.HasSuffix(key, "Avatar") || strings.HasSuffix(key, "Image") {
		return CategoryImage
	}
	return CategoryGeneric
}

// IsMeaningfulField applies the rule set of the key's category.
func IsMeaningfulField(key string, v any) bool {
	switch CategoryOf(key) {
	case CategoryName:
		return IsMeaningfulName(v)
	case CategoryImage:
		return IsMeaningfulImage(v)
	}
	return IsMeaningful(v)
}

// IsEphemeral reports device-local temporary paths that never render once
// the uploading session is gone.
func IsEphemeral(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	for _, prefix := range ephemeralPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// IsRenderInvalid reports references that may pass IsMeaningfulImage yet
// cannot be shown to another user: ephemeral device paths and paths local to
// the app bundle.
func IsRenderInvalid(ref string) bool {
	if IsEphemeral(ref) {
		return true
	}
	s := strings.TrimSpace(ref)
	for _, prefix := range bundleLocalPrefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

// NeedsImage reports whether an image field should take a replacement value.
func NeedsImage(ref string) bool {
	return !IsMeaningfulImage(ref) || IsRenderInvalid(ref)
}

// IsPlainObject reports JSON objects (not arrays).
func IsPlainObject(v any) bool {
	switch v.(type) {
	case map[string]any:
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}
