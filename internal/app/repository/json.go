package repository

import (
	"encoding/json"
	"fmt"
)

// ToJSON marshals a value for a JSON text column.
func ToJSON(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal json column: %w", err)
	}
	return string(b), nil
}

// FromJSON unmarshals a JSON column into dst. Empty columns are left as the
// zero value.
func FromJSON(data []byte, dst interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal json column: %w", err)
	}
	return nil
}
