package domain

import (
	"strconv"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02",
}

// Timestamp keeps a stored timestamp exactly as written so the output record
// round-trips, while still being parseable for status derivation.
type Timestamp struct {
	Raw any
}

// NewTimestamp wraps a raw stored value. Empty strings become the zero Timestamp.
func NewTimestamp(v any) Timestamp {
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return Timestamp{}
	}
	return Timestamp{Raw: v}
}

// IsZero reports whether no timestamp was stored.
func (t Timestamp) IsZero() bool {
	return t.Raw == nil
}

// Time parses the stored value. Numbers (and numeric strings) are epoch
// milliseconds; strings are tried against the known layouts in local time.
func (t Timestamp) Time() (time.Time, bool) {
	if t.Raw == nil {
		return time.Time{}, false
	}
	if f, ok := AsFloat(t.Raw); ok {
		return time.UnixMilli(int64(f)), true
	}
	s := strings.TrimSpace(AsString(t.Raw))
	if s == "" {
		return time.Time{}, false
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
