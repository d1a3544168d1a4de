package runtime

import (
	"errors"
	"testing"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

func TestRequireFieldsPassesWhenAllPresent(t *testing.T) {
	inputs := []a2a.InputField{
		{Name: "bookmarkIds", Required: true},
		{Name: "userId", Required: true},
		{Name: "note", Required: false},
	}
	taskContext := map[string]any{
		"bookmarkIds": []string{"bm-1"},
		"userId":      "user-1",
	}
	if err := RequireFields(taskContext, inputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireFieldsFailsOnMissingRequiredField(t *testing.T) {
	inputs := []a2a.InputField{
		{Name: "bookmarkIds", Required: true},
		{Name: "userId", Required: true},
	}
	taskContext := map[string]any{
		"bookmarkIds": []string{"bm-1"},
	}
	err := RequireFields(taskContext, inputs)
	if !errors.Is(err, a2a.ErrInvalidInput) {
		t.Fatalf("expected a2a.ErrInvalidInput, got %v", err)
	}
}

func TestRequireFieldsTreatsEmptyValuesAsMissing(t *testing.T) {
	inputs := []a2a.InputField{
		{Name: "userId", Required: true},
		{Name: "bookmarkIds", Required: true},
	}
	taskContext := map[string]any{
		"userId":      "",
		"bookmarkIds": []string{},
	}
	if err := RequireFields(taskContext, inputs); err == nil {
		t.Fatal("expected error for empty required fields")
	}
}

func TestRequireFieldsIgnoresOptionalFields(t *testing.T) {
	inputs := []a2a.InputField{
		{Name: "userId", Required: true},
		{Name: "note", Required: false},
	}
	taskContext := map[string]any{
		"userId": "user-1",
	}
	if err := RequireFields(taskContext, inputs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
