// Package merge folds the copies of an order that live in several stores
// into one record per id.
package merge

import (
	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/sanitize"
)

// PriorityFields always take the most recently loaded value, even a falsy one.
var PriorityFields = []string{
	domain.FieldStatus,
	domain.FieldRefundStatus,
	domain.FieldRefundCompletedAt,
	domain.FieldRefundHistory,
	domain.FieldCompletedAt,
	domain.FieldWasOverdue,
	domain.FieldOverdueDays,
}

var priority = func() map[string]struct{} {
	m := make(map[string]struct{}, len(PriorityFields))
	for _, f := range PriorityFields {
		m[f] = struct{}{}
	}
	return m
}()

// IsPriorityField reports whether key is resolved last-write-wins.
func IsPriorityField(key string) bool {
	_, ok := priority[key]
	return ok
}

// StoreRecords is one store's accepted records, in stored order.
type StoreRecords struct {
	Store   string
	Records []domain.Record
}

type Merger struct {
	versionField string
}

type Option func(*Merger)

// WithVersionField makes priority fields compare an explicit numeric version
// instead of relying on load order alone. A record carrying a lower version
// than the accumulator cannot overwrite priority fields. Records without a
// numeric version fall back to load order.
func WithVersionField(field string) Option {
	return func(m *Merger) {
		m.versionField = field
	}
}

func NewMerger(opts ...Option) *Merger {
	m := &Merger{}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge processes stores in the given order and returns exactly one record
// per id, in first-seen order. The result is stable only as long as the store
// order is.
func (m *Merger) Merge(stores []StoreRecords) []domain.Record {
	index := make(map[string]int)
	var out []domain.Record

	for _, store := range stores {
		for _, rec := range store.Records {
			id := IdentityOf(rec)
			if id == "" {
				continue
			}
			pos, seen := index[id]
			if !seen {
				index[id] = len(out)
				out = append(out, rec.Clone())
				continue
			}
			m.fold(out[pos], rec)
		}
	}
	return out
}

// Fold merges incoming into a copy of acc.
func (m *Merger) Fold(acc, incoming domain.Record) domain.Record {
	out := acc.Clone()
	m.fold(out, incoming)
	return out
}

func (m *Merger) fold(acc, incoming domain.Record) {
	applyPriority := true
	if m.versionField != "" {
		accVersion, accOK := domain.AsFloat(acc[m.versionField])
		inVersion, inOK := domain.AsFloat(incoming[m.versionField])
		if accOK && inOK {
			applyPriority = inVersion >= accVersion
			if inVersion > accVersion {
				acc[m.versionField] = incoming[m.versionField]
			}
		}
	}

	for key, value := range incoming {
		if key == domain.FieldID || (m.versionField != "" && key == m.versionField && acc.Has(key)) {
			continue
		}
		if IsPriorityField(key) {
			if applyPriority {
				acc[key] = value
			}
			continue
		}

		current, has := acc[key]
		currentOK := has && sanitize.IsMeaningfulField(key, current)
		incomingOK := sanitize.IsMeaningfulField(key, value)
		switch {
		case !currentOK && incomingOK:
			acc[key] = value
		case currentOK && incomingOK && sanitize.IsPlainObject(current) && sanitize.IsPlainObject(value):
			acc[key] = shallowMerge(current, value)
		}
	}
}

func shallowMerge(a, b any) map[string]any {
	left, _ := domain.AsRecord(a)
	right, _ := domain.AsRecord(b)
	out := make(map[string]any, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}
