// Package runtime provides RequireFields, the shared input-validation
// helper every concrete agent's Validate method calls to check its
// capability card's declared required inputs are present in a task's
// context before Process runs.
package runtime
