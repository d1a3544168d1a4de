package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonMap adapts a map[string]any to the database/sql.Scanner/Valuer pair
// sqlx needs to round-trip a JSONB column: a thin serialization adapter,
// not a concern warranting a third-party library of its own.
type jsonMap map[string]any

func (m jsonMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(m))
}

func (m *jsonMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonMap: unsupported scan type %T", src)
	}
	out := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("jsonMap: unmarshal: %w", err)
		}
	}
	*m = out
	return nil
}

// jsonStrings adapts a []string to the same Scanner/Valuer pair, used for
// the workflow_agents column.
type jsonStrings []string

func (s jsonStrings) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *jsonStrings) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("jsonStrings: unsupported scan type %T", src)
	}
	var out []string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("jsonStrings: unmarshal: %w", err)
		}
	}
	*s = out
	return nil
}
