// Package payload bridges the dynamic row shape used throughout VaultDB
// (untyped key -> value bags) with two wire formats: MessagePack for
// internal storage and the audit log, and JSON for human-entered shell
// input.
package payload

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a row (or any value) to MessagePack bytes.
func Encode(v any) ([]byte, error) {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("payload: encode: %w", err)
	}
	return data, nil
}

// Decode deserializes MessagePack bytes into a row. Integer values come
// back as int, whatever width MessagePack stored them in.
func Decode(data []byte) (map[string]any, error) {
	var row map[string]any
	if err := msgpack.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("payload: decode: %w", err)
	}
	for k, v := range row {
		switch rv := reflect.ValueOf(v); rv.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			row[k] = int(rv.Int())
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			row[k] = int(rv.Uint())
		}
	}
	return row, nil
}

// FromJSON parses a JSON object literal (as typed at a shell prompt) into
// a row.
func FromJSON(data []byte) (map[string]any, error) {
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("payload: parse JSON: %w", err)
	}
	return row, nil
}

// ToJSON renders a row as JSON, for the shell's human-readable output.
func ToJSON(row map[string]any) (string, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return "", fmt.Errorf("payload: render JSON: %w", err)
	}
	return string(data), nil
}
