package merge

import (
	"strings"

	"github.com/rl1809/order-reconciler/internal/core/domain"
)

type RejectReason string

const (
	RejectMalformed       RejectReason = "malformed"
	RejectMissingIdentity RejectReason = "missing_identity"
)

// Rejection records a raw element that never reached the merger.
type Rejection struct {
	Store  string       `json:"store"`
	Index  int          `json:"index"`
	Reason RejectReason `json:"reason"`
}

// DefaultIdentityKeys is used when Validate is given no keys.
var DefaultIdentityKeys = []string{domain.FieldID}

// Validate splits a raw store collection into records that carry an identity
// and rejections. When the identity comes from an alias key it is copied
// into "id" on a clone; the raw input is never modified.
func Validate(store string, raw []any, identityKeys []string) ([]domain.Record, []Rejection) {
	if len(identityKeys) == 0 {
		identityKeys = DefaultIdentityKeys
	}

	accepted := make([]domain.Record, 0, len(raw))
	var rejected []Rejection
	for i, elem := range raw {
		rec, ok := domain.AsRecord(elem)
		if !ok {
			rejected = append(rejected, Rejection{Store: store, Index: i, Reason: RejectMalformed})
			continue
		}

		key, id := identityOf(rec, identityKeys)
		if id == "" {
			rejected = append(rejected, Rejection{Store: store, Index: i, Reason: RejectMissingIdentity})
			continue
		}
		if key != domain.FieldID {
			rec = rec.Clone()
			rec[domain.FieldID] = id
		}
		accepted = append(accepted, rec)
	}
	return accepted, rejected
}

// IdentityOf returns the record's identity as a string, or "".
func IdentityOf(rec domain.Record) string {
	return strings.TrimSpace(rec.String(domain.FieldID))
}

func identityOf(rec domain.Record, keys []string) (string, string) {
	for _, key := range keys {
		if id := strings.TrimSpace(rec.String(key)); id != "" {
			return key, id
		}
	}
	return "", ""
}
