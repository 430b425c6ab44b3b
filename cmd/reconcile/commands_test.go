package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/order-reconciler/internal/adapter/storage"
)

const snapshot = `{
	"orders": [
		{"id": "A1", "status": "unpaid", "artistName": "unknown"},
		{"id": "B1", "status": "unpaid", "artistId": "a1"},
		{"status": "paid"}
	],
	"pending_orders": [
		{"id": "A1", "status": "completed", "artistName": "Maya"},
		{"id": "B1", "status": "unpaid", "artistId": "a1"}
	],
	"artist_applications": [{"id": "a1", "name": "Kai", "status": "approved"}]
}`

// fileEnv writes a snapshot and a config pointing the file backend at it.
func fileEnv(t *testing.T, data string) (configPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(dataPath, []byte(data), 0o644))

	configPath = filepath.Join(dir, "config.yaml")
	cfg := "backend: file\nfile:\n  path: " + dataPath + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(cfg), 0o644))
	return configPath, dataPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	configPath, _ := fileEnv(t, snapshot)

	out, err := execute(t, "run", "--config", configPath)
	require.NoError(t, err)

	var orders []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 2)
	assert.Equal(t, "A1", orders[0]["id"])
	assert.Equal(t, "completed", orders[0]["status"])
	assert.Equal(t, "Maya", orders[0]["artistName"])
	assert.Equal(t, "Kai", orders[1]["artistName"])
}

func TestRunCommand_SaveIsIdempotent(t *testing.T) {
	configPath, dataPath := fileEnv(t, snapshot)

	first, err := execute(t, "run", "--config", configPath, "--save", "reconciled_orders")
	require.NoError(t, err)

	saved, err := storage.NewFileAdapter(dataPath).LoadCollection(context.Background(), "reconciled_orders")
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	// reconciling the saved output alone yields the same orders
	raw, err := json.Marshal(map[string]any{"orders": saved})
	require.NoError(t, err)
	againConfig, _ := fileEnv(t, string(raw))

	second, err := execute(t, "run", "--config", againConfig)
	require.NoError(t, err)
	assert.JSONEq(t, first, second)
}

func TestAuditCommand(t *testing.T) {
	configPath, _ := fileEnv(t, snapshot)

	out, err := execute(t, "audit", "--config", configPath)
	require.NoError(t, err)

	var report struct {
		ReportID   string           `json:"report_id"`
		Duplicates []map[string]any `json:"duplicates"`
		Divergence struct {
			Difference int `json:"difference"`
		} `json:"divergence"`
		Rejected map[string]int `json:"rejected"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.ReportID)
	assert.Len(t, report.Duplicates, 2)
	assert.Equal(t, 3, report.Divergence.Difference)
	assert.Equal(t, 1, report.Rejected["missing_identity"])
}

func TestSeedCommand(t *testing.T) {
	configPath, dataPath := fileEnv(t, `{}`)
	src := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(src, []byte(snapshot), 0o644))

	_, err := execute(t, "seed", "--config", configPath, "--from", src)
	require.NoError(t, err)

	orders, err := storage.NewFileAdapter(dataPath).LoadCollection(context.Background(), "orders")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestSeedCommand_Errors(t *testing.T) {
	configPath, _ := fileEnv(t, `{}`)

	_, err := execute(t, "seed", "--config", configPath)
	assert.ErrorContains(t, err, "--from is required")

	src := filepath.Join(t.TempDir(), "dump.json")
	require.NoError(t, os.WriteFile(src, []byte(snapshot), 0o644))
	_, err = execute(t, "seed", "--config", configPath, "--from", src, "--per-record")
	assert.ErrorContains(t, err, "mysql")
}

// Mock RecordWriter
type mockWriter struct {
	versions  map[string]int64
	conflicts int
	puts      []string
}

func (m *mockWriter) RecordVersion(ctx context.Context, store, id string) (int64, error) {
	return m.versions[store+"/"+id], nil
}

func (m *mockWriter) PutRecord(ctx context.Context, store, id string, payload json.RawMessage, expectedVersion int64) error {
	key := store + "/" + id
	if m.conflicts > 0 {
		m.conflicts--
		m.versions[key]++
		return storage.ErrOptimisticLock
	}
	if m.versions[key] != expectedVersion {
		return storage.ErrOptimisticLock
	}
	m.versions[key]++
	m.puts = append(m.puts, key)
	return nil
}

func TestPutRecords_RetriesOnConflict(t *testing.T) {
	w := &mockWriter{versions: map[string]int64{"orders/o1": 2}, conflicts: 1}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := putRecords(context.Background(), w, "orders", []any{
		map[string]any{"id": "o1"},
		map[string]any{"status": "paid"},
		map[string]any{"id": "o2"},
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders/o1", "orders/o2"}, w.puts)
	assert.Equal(t, int64(4), w.versions["orders/o1"])
}

func TestPutRecords_GivesUp(t *testing.T) {
	w := &mockWriter{versions: map[string]int64{}, conflicts: casRetries}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := putRecords(context.Background(), w, "orders", []any{map[string]any{"id": "o1"}}, logger)
	assert.ErrorIs(t, err, storage.ErrOptimisticLock)
}
