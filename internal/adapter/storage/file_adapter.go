package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileAdapter reads collections from a JSON snapshot of the form
// {"<collection>": [ ... ]}. Used for local runs and exported dumps.
type FileAdapter struct {
	path string
	mu   sync.RWMutex
}

func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

func (f *FileAdapter) LoadCollection(ctx context.Context, name string) ([]any, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snapshot, err := f.read()
	if err != nil {
		return nil, err
	}
	raw, ok := snapshot[name]
	if !ok {
		return []any{}, nil
	}
	return decodeCollection(name, raw)
}

// SaveCollection rewrites the snapshot with the collection replaced. The file
// is swapped in with a rename so readers never see a partial write.
func (f *FileAdapter) SaveCollection(ctx context.Context, name string, elems []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.read()
	if err != nil {
		return err
	}
	data, err := encodeCollection(elems)
	if err != nil {
		return err
	}
	snapshot[name] = data

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), f.path)
}

// Collections lists the collection names present in the snapshot.
func (f *FileAdapter) Collections() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	snapshot, err := f.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	return names, nil
}

func (f *FileAdapter) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	snapshot := map[string]json.RawMessage{}
	if len(data) == 0 {
		return snapshot, nil
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.path, err)
	}
	return snapshot, nil
}
