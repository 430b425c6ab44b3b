// Package diagnostics audits raw, pre-merge store contents: duplicate ids,
// count drift between status definitions, and per-status and per-artist
// breakdowns. It never changes data.
package diagnostics

import (
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/order-reconciler/internal/core/domain"
	"github.com/rl1809/order-reconciler/internal/core/merge"
)

const noStatus = "none"

// InclusivePending counts every order still waiting on someone, unpaid included.
var InclusivePending = statusSet(
	domain.OrderStatusUnpaid,
	domain.OrderStatusPaid,
	domain.OrderStatusProcessing,
	domain.OrderStatusWaitingConfirm,
	domain.OrderStatusNearDeadline,
	domain.OrderStatusOverdue,
)

// ExclusiveProcessing counts only orders the artist is working on.
var ExclusiveProcessing = statusSet(
	domain.OrderStatusPaid,
	domain.OrderStatusProcessing,
	domain.OrderStatusWaitingConfirm,
	domain.OrderStatusNearDeadline,
	domain.OrderStatusOverdue,
)

func statusSet(statuses ...domain.OrderStatus) map[domain.OrderStatus]struct{} {
	m := make(map[domain.OrderStatus]struct{}, len(statuses))
	for _, s := range statuses {
		m[s] = struct{}{}
	}
	return m
}

type Input struct {
	Stores   []merge.StoreRecords
	Artists  []domain.Artist
	Rejected []merge.Rejection
}

type Duplicate struct {
	ID     string   `json:"id"`
	Stores []string `json:"stores"`
}

type RecordRef struct {
	Store  string `json:"store"`
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Divergence struct {
	InclusiveCount int         `json:"inclusive_count"`
	ExclusiveCount int         `json:"exclusive_count"`
	Difference     int         `json:"difference"`
	OnlyInclusive  []RecordRef `json:"only_inclusive"`
	OnlyExclusive  []RecordRef `json:"only_exclusive"`
}

type ArtistRollup struct {
	ArtistID       string          `json:"artist_id"`
	Name           string          `json:"name"`
	OrderCount     int             `json:"order_count"`
	CompletedCount int             `json:"completed_count"`
	Revenue        decimal.Decimal `json:"revenue"`
}

type Report struct {
	ReportID        string         `json:"report_id,omitempty"`
	GeneratedAt     time.Time      `json:"generated_at"`
	TotalRecords    int            `json:"total_records"`
	DistinctOrders  int            `json:"distinct_orders"`
	Duplicates      []Duplicate    `json:"duplicates"`
	Divergence      Divergence     `json:"divergence"`
	StatusBreakdown map[string]int `json:"status_breakdown"`
	ArtistRollups   []ArtistRollup `json:"artist_rollups"`
	UnmatchedOrders int            `json:"unmatched_orders"`
	Rejected        map[string]int `json:"rejected"`
}

// Check builds the report. It is a pure function of its input.
func Check(in Input) Report {
	report := Report{
		Duplicates:      []Duplicate{},
		StatusBreakdown: map[string]int{},
		ArtistRollups:   []ArtistRollup{},
		Rejected:        map[string]int{},
		Divergence: Divergence{
			OnlyInclusive: []RecordRef{},
			OnlyExclusive: []RecordRef{},
		},
	}

	storesByID := make(map[string][]string)
	latest := make(map[string]domain.Record)
	var firstSeen []string

	for _, store := range in.Stores {
		for _, rec := range store.Records {
			id := merge.IdentityOf(rec)
			if id == "" {
				continue
			}
			report.TotalRecords++

			if _, seen := latest[id]; !seen {
				firstSeen = append(firstSeen, id)
			}
			latest[id] = rec
			if !contains(storesByID[id], store.Store) {
				storesByID[id] = append(storesByID[id], store.Store)
			}

			st := rec.String(domain.FieldStatus)
			key := st
			if key == "" {
				key = noStatus
			}
			report.StatusBreakdown[key]++

			ref := RecordRef{Store: store.Store, ID: id, Status: st}
			_, inclusive := InclusivePending[domain.OrderStatus(st)]
			_, exclusive := ExclusiveProcessing[domain.OrderStatus(st)]
			if inclusive {
				report.Divergence.InclusiveCount++
			}
			if exclusive {
				report.Divergence.ExclusiveCount++
			}
			switch {
			case inclusive && !exclusive:
				report.Divergence.OnlyInclusive = append(report.Divergence.OnlyInclusive, ref)
			case exclusive && !inclusive:
				report.Divergence.OnlyExclusive = append(report.Divergence.OnlyExclusive, ref)
			}
		}
	}
	report.Divergence.Difference = report.Divergence.InclusiveCount - report.Divergence.ExclusiveCount
	report.DistinctOrders = len(firstSeen)

	for _, id := range firstSeen {
		if stores := storesByID[id]; len(stores) > 1 {
			report.Duplicates = append(report.Duplicates, Duplicate{ID: id, Stores: stores})
		}
	}
	sort.SliceStable(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].ID < report.Duplicates[j].ID
	})

	report.ArtistRollups, report.UnmatchedOrders = rollup(in.Artists, firstSeen, latest)

	for _, r := range in.Rejected {
		report.Rejected[string(r.Reason)]++
	}
	return report
}

func rollup(artists []domain.Artist, ids []string, latest map[string]domain.Record) ([]ArtistRollup, int) {
	rollups := []ArtistRollup{}
	byKey := make(map[string]int)
	for _, a := range artists {
		if !a.Approved() {
			continue
		}
		if known(byKey, a.ID, a.UserID) {
			continue
		}
		pos := len(rollups)
		id := a.ID
		if id == "" {
			id = a.UserID
		}
		rollups = append(rollups, ArtistRollup{ArtistID: id, Name: a.Name, Revenue: decimal.Zero})
		for _, key := range []string{a.ID, a.UserID} {
			if key == "" {
				continue
			}
			if _, taken := byKey[key]; !taken {
				byKey[key] = pos
			}
		}
	}

	unmatched := 0
	for _, id := range ids {
		o := domain.OrderFromRecord(latest[id])
		pos, ok := byKey[o.ArtistID]
		if !ok || o.ArtistID == "" {
			unmatched++
			continue
		}
		r := &rollups[pos]
		r.OrderCount++
		if o.Status == domain.OrderStatusCompleted {
			r.CompletedCount++
			r.Revenue = r.Revenue.Add(o.Amount())
		}
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].OrderCount != rollups[j].OrderCount {
			return rollups[i].OrderCount > rollups[j].OrderCount
		}
		return rollups[i].ArtistID < rollups[j].ArtistID
	})
	return rollups, unmatched
}

// known reports whether any non-empty key already has a rollup row.
func known(byKey map[string]int, keys ...string) bool {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := byKey[key]; ok {
			return true
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Log writes the report summary. Duplicates and divergent records go to debug.
func (r Report) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("order diagnostics",
		"report_id", r.ReportID,
		"total_records", r.TotalRecords,
		"distinct_orders", r.DistinctOrders,
		"duplicates", len(r.Duplicates),
		"inclusive_pending", r.Divergence.InclusiveCount,
		"exclusive_processing", r.Divergence.ExclusiveCount,
		"difference", r.Divergence.Difference,
		"unmatched_orders", r.UnmatchedOrders,
	)
	for reason, n := range r.Rejected {
		logger.Warn("records rejected before merge", "reason", reason, "count", n)
	}
	for _, d := range r.Duplicates {
		logger.Debug("order present in several stores", "order_id", d.ID, "stores", d.Stores)
	}
	for _, ref := range r.Divergence.OnlyInclusive {
		logger.Debug("counted as pending but not processing", "order_id", ref.ID, "store", ref.Store, "status", ref.Status)
	}
}
