package merge

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/order-reconciler/internal/core/domain"
)

func stores(recs ...[]domain.Record) []StoreRecords {
	out := make([]StoreRecords, len(recs))
	for i, r := range recs {
		out[i] = StoreRecords{Store: fmt.Sprintf("store%d", i+1), Records: r}
	}
	return out
}

func TestMerge_FragmentsInEitherOrder(t *testing.T) {
	a := domain.Record{"id": "A1", "status": "completed"}
	b := domain.Record{"id": "A1", "artistName": "Maya"}

	for _, order := range [][]domain.Record{{a, b}, {b, a}} {
		merged := NewMerger().Merge(stores(order))
		require.Len(t, merged, 1)
		assert.Equal(t, "completed", merged[0]["status"])
		assert.Equal(t, "Maya", merged[0]["artistName"])
	}
}

func TestMerge_ScenarioA(t *testing.T) {
	merged := NewMerger().Merge(stores(
		[]domain.Record{{"id": "A1", "status": "unpaid", "artistName": "unknown"}},
		[]domain.Record{{"id": "A1", "status": "completed", "artistName": "Maya"}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, "completed", merged[0]["status"])
	assert.Equal(t, "Maya", merged[0]["artistName"])
}

func TestMerge_PriorityFieldsOverwriteWithFalsyValues(t *testing.T) {
	merged := NewMerger().Merge(stores(
		[]domain.Record{{"id": "o1", "status": "overdue", "wasOverdue": true, "overdueDays": json.Number("3"), "refundStatus": "requested"}},
		[]domain.Record{{"id": "o1", "wasOverdue": false, "overdueDays": json.Number("0"), "refundStatus": nil}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, "overdue", merged[0]["status"], "status absent in the later copy is kept")
	assert.Equal(t, false, merged[0]["wasOverdue"])
	assert.Equal(t, json.Number("0"), merged[0]["overdueDays"])
	assert.True(t, merged[0].Has("refundStatus"))
	assert.Nil(t, merged[0]["refundStatus"])
}

func TestMerge_NonPriorityFieldsKeepFirstMeaningful(t *testing.T) {
	merged := NewMerger().Merge(stores(
		[]domain.Record{{"id": "o1", "productName": "Portrait", "artistAvatar": "/assets/default-avatar.png", "remark": ""}},
		[]domain.Record{{"id": "o1", "productName": "Sketch", "artistAvatar": "https://cdn.example.com/a.png", "remark": "rush"}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, "Portrait", merged[0]["productName"])
	assert.Equal(t, "https://cdn.example.com/a.png", merged[0]["artistAvatar"])
	assert.Equal(t, "rush", merged[0]["remark"])
}

func TestMerge_ShallowMergesObjects(t *testing.T) {
	first := domain.Record{"id": "o1", "address": map[string]any{"city": "Hangzhou", "zip": "310000"}}
	second := domain.Record{"id": "o1", "address": map[string]any{"zip": "310001", "street": "West Lake Rd"}}

	merged := NewMerger().Merge(stores([]domain.Record{first}, []domain.Record{second}))

	require.Len(t, merged, 1)
	assert.Equal(t, map[string]any{"city": "Hangzhou", "zip": "310001", "street": "West Lake Rd"}, merged[0]["address"])
	assert.Equal(t, map[string]any{"city": "Hangzhou", "zip": "310000"}, first["address"], "inputs are not mutated")
}

func TestMerge_ArraysAreNotMerged(t *testing.T) {
	merged := NewMerger().Merge(stores(
		[]domain.Record{{"id": "o1", "items": []any{map[string]any{"productId": "p1"}}}},
		[]domain.Record{{"id": "o1", "items": []any{map[string]any{"productId": "p2"}}}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, []any{map[string]any{"productId": "p1"}}, merged[0]["items"])
}

func TestMerge_FirstSeenOrder(t *testing.T) {
	merged := NewMerger().Merge(stores(
		[]domain.Record{{"id": "b"}, {"id": "a"}},
		[]domain.Record{{"id": "c"}, {"id": "a"}},
	))

	ids := make([]string, 0, len(merged))
	for _, r := range merged {
		ids = append(ids, r.String("id"))
	}
	assert.Equal(t, []string{"b", "a", "c"}, ids)
}

func TestMerge_VersionFieldBlocksStaleStatus(t *testing.T) {
	m := NewMerger(WithVersionField("version"))
	merged := m.Merge(stores(
		[]domain.Record{{"id": "o1", "status": "completed", "version": json.Number("5")}},
		[]domain.Record{{"id": "o1", "status": "processing", "version": json.Number("3"), "artistName": "Maya"}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, "completed", merged[0]["status"])
	assert.Equal(t, json.Number("5"), merged[0]["version"])
	assert.Equal(t, "Maya", merged[0]["artistName"], "non-priority fields still fill in")
}

func TestMerge_VersionFieldAcceptsNewer(t *testing.T) {
	m := NewMerger(WithVersionField("version"))
	merged := m.Merge(stores(
		[]domain.Record{{"id": "o1", "status": "processing", "version": json.Number("1")}},
		[]domain.Record{{"id": "o1", "status": "completed", "version": json.Number("2")}},
	))

	require.Len(t, merged, 1)
	assert.Equal(t, "completed", merged[0]["status"])
	assert.Equal(t, json.Number("2"), merged[0]["version"])
}

func TestFold_DoesNotMutateAccumulator(t *testing.T) {
	acc := domain.Record{"id": "o1", "status": "paid"}
	out := NewMerger().Fold(acc, domain.Record{"id": "o1", "status": "completed"})

	assert.Equal(t, "paid", acc["status"])
	assert.Equal(t, "completed", out["status"])
}

func TestMerge_OneRecordPerIDAcrossStores(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("an id contributed by M stores yields one record", prop.ForAll(
		func(storeCount int, ids []string) bool {
			var input []StoreRecords
			distinct := map[string]struct{}{}
			for s := 0; s < storeCount; s++ {
				var recs []domain.Record
				for _, id := range ids {
					if id == "" {
						continue
					}
					distinct[id] = struct{}{}
					recs = append(recs, domain.Record{"id": id, "status": "paid", "store": s})
				}
				input = append(input, StoreRecords{Store: fmt.Sprint(s), Records: recs})
			}

			merged := NewMerger().Merge(input)
			if len(merged) != len(distinct) {
				return false
			}
			seen := map[string]bool{}
			for _, r := range merged {
				id := r.String("id")
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return true
		},
		gen.IntRange(1, 6),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
