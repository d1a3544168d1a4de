package bookmarks

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonStrings adapts a []string to the database/sql.Scanner/Valuer pair
// sqlx needs for a JSONB column, the same adapter shape as
// internal/store's jsonMap/jsonStrings.
type jsonStrings []string

func (s jsonStrings) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

func (s *jsonStrings) Scan(src any) error {
	raw, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("jsonStrings: %w", err)
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

// jsonObject adapts a map[string]any to the same pair, used for
// enrichment_data, categorization_data, and metadata columns.
type jsonObject map[string]any

func (m jsonObject) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]any(m))
}

func (m *jsonObject) Scan(src any) error {
	raw, err := scanBytes(src)
	if err != nil {
		return fmt.Errorf("jsonObject: %w", err)
	}
	out := make(map[string]any)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("jsonObject: unmarshal: %w", err)
		}
	}
	*m = out
	return nil
}

func scanBytes(src any) ([]byte, error) {
	if src == nil {
		return nil, nil
	}
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", src)
	}
}
