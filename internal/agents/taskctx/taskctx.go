// Package taskctx extracts typed values out of a task's untyped
// map[string]any context, the shape every concrete agent receives from
// internal/runtime.RequireFields/a2a.Agent.Process. Decoding here is
// small and deliberate: context values round-trip through JSON once an
// artifact is persisted, so numbers arrive as float64 and nested
// structures as map[string]any/[]any regardless of what a caller
// originally set.
package taskctx

import "fmt"

// String returns the string value of key, or "" if absent or wrong type.
func String(ctx map[string]any, key string) string {
	v, ok := ctx[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Bool returns the bool value of key, or false if absent or wrong type.
func Bool(ctx map[string]any, key string) bool {
	v, _ := ctx[key].(bool)
	return v
}

// StringSlice returns the string-slice value of key, accepting both a
// native []string and a JSON-decoded []any of strings.
func StringSlice(ctx map[string]any, key string) []string {
	switch v := ctx[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Map returns the map[string]any value of key, or nil if absent or wrong
// type.
func Map(ctx map[string]any, key string) map[string]any {
	v, _ := ctx[key].(map[string]any)
	return v
}

// Stage is shorthand for Map(ctx, agentType), the declared output of a
// prior pipeline stage merged into context under its own agent_type key
// (see internal/taskmanager.Manager.finishStageSuccess).
func Stage(ctx map[string]any, agentType string) map[string]any {
	return Map(ctx, agentType)
}

// RequireString is like String but returns an error if the value is
// absent or empty, for inputs Validate already checked are required but
// Process still needs to decode defensively.
func RequireString(ctx map[string]any, key string) (string, error) {
	v := String(ctx, key)
	if v == "" {
		return "", fmt.Errorf("context key %q missing or empty", key)
	}
	return v, nil
}
