package storage

import (
	"encoding/json"
	"fmt"
)

// encodeVector serializes a vector as a JSON array of numbers.
func encodeVector(v []float32) ([]byte, error) {
	if v == nil {
		v = []float32{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}
	return data, nil
}

// decodeVector parses a stored JSON array. Corrupt values are reported, not evicted.
func decodeVector(key string, data []byte) ([]float32, error) {
	var v []float32
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode cached embedding %s: %w", key, err)
	}
	return v, nil
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
