package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// encodeJSON serializes v without HTML escaping and without the trailing
// newline json.Encoder adds.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false) // slot values hold prose; keep < > & readable
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// marshalStringList converts a needs or tags list to JSON TEXT.
// A nil list is stored as "[]".
func marshalStringList(list []string) string {
	if list == nil {
		return "[]"
	}
	data, err := encodeJSON(list)
	if err != nil {
		return "[]"
	}
	return data
}

// unmarshalStringList parses a needs or tags column.
// Malformed payloads read as an empty list rather than failing the row.
func unmarshalStringList(data string) []string {
	list := []string{}
	if data == "" {
		return list
	}
	if err := json.Unmarshal([]byte(data), &list); err != nil || list == nil {
		return []string{}
	}
	return list
}

// marshalSlotValues converts slot values to JSON TEXT.
// Nil or unserializable values are stored as an empty document.
func marshalSlotValues(values map[string]any) string {
	if values == nil {
		return "{}"
	}
	data, err := encodeJSON(values)
	if err != nil {
		return "{}"
	}
	return data
}

// unmarshalSlotValues parses a slot_values_json column.
// Anything that is not a JSON object reads as an empty document.
func unmarshalSlotValues(data string) map[string]any {
	var values map[string]any
	if err := json.Unmarshal([]byte(data), &values); err != nil || values == nil {
		return map[string]any{}
	}
	return values
}

// marshalSetting converts a setting value to JSON TEXT.
func marshalSetting(value any) (string, error) {
	data, err := encodeJSON(value)
	if err != nil {
		return "", fmt.Errorf("failed to serialize json: %w", err)
	}
	return data, nil
}

// unmarshalSetting parses a value_json column. Unlike drafts, a malformed
// setting is an error.
func unmarshalSetting(data string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("failed to parse setting json: %w", err)
	}
	return value, nil
}
