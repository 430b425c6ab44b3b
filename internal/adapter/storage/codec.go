package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeCollection parses a stored JSON array. Numbers stay json.Number so
// stored representations survive a round trip; null decodes as empty.
func decodeCollection(name string, data []byte) ([]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []any{}, nil
	}

	var v any
	if err := decodeJSON(data, &v); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	switch elems := v.(type) {
	case nil:
		return []any{}, nil
	case []any:
		return elems, nil
	default:
		return nil, fmt.Errorf("collection %s is not a JSON array", name)
	}
}

func encodeCollection(elems []any) ([]byte, error) {
	if elems == nil {
		elems = []any{}
	}
	return json.Marshal(elems)
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
