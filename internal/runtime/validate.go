package runtime

import (
	"fmt"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

// RequireFields checks that every required field in inputs is present and
// non-zero in taskContext, returning a wrapped a2a.ErrInvalidInput naming
// the first missing field. Concrete agents call this from Validate() to
// enforce their capability card's declared inputs without repeating the
// same loop in every agent package.
func RequireFields(taskContext map[string]any, inputs []a2a.InputField) error {
	for _, field := range inputs {
		if !field.Required {
			continue
		}
		value, ok := taskContext[field.Name]
		if !ok || isZero(value) {
			return fmt.Errorf("missing required field %q: %w", field.Name, a2a.ErrInvalidInput)
		}
	}
	return nil
}

func isZero(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	default:
		return false
	}
}
