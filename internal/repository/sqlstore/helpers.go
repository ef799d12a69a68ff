// Package sqlstore implements the repositories on database/sql with squirrel,
// for both the sqlite3 and postgres dialects.
package sqlstore

import (
	"encoding/json"
	"fmt"
)

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal column: %w", err)
	}
	return string(b), nil
}

func unmarshalJSON(s string, v any) error {
	if s == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		return fmt.Errorf("unmarshal column: %w", err)
	}
	return nil
}
