package a2a

import "errors"

// Error taxonomy. Components wrap these with fmt.Errorf("...: %w")
// to attach context; callers type-switch or errors.Is against the sentinels.
var (
	// ErrInvalidInput marks a caller-fault validation failure: missing or
	// malformed task context. Never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransientExternal marks a per-item failure (DNS, connection
	// refused, timeout, rate-limit) that does not stop the task.
	ErrTransientExternal = errors.New("transient external error")

	// ErrPermanentExternal marks a per-item failure with no retry value
	// (HTTP 4xx, malformed payload).
	ErrPermanentExternal = errors.New("permanent external error")

	// ErrSharedResource marks a post-processing write failure (e.g. a
	// bookmark DB update) that is logged but does not fail the owning task.
	ErrSharedResource = errors.New("shared resource error")

	// ErrFatalInternal marks an unhandled agent failure; the task
	// transitions to failed.
	ErrFatalInternal = errors.New("fatal internal error")

	// ErrCancelled marks a task that ended via cooperative cancellation.
	ErrCancelled = errors.New("task cancelled")

	// ErrConflict signals a losing compare-and-set on a task transition;
	// the caller must re-read and retry.
	ErrConflict = errors.New("conflicting task transition")

	// ErrNotFound signals a missing task, artifact, or agent registration.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateArtifact signals an attempted put of an artifact whose
	// (task_id, agent_type, type) triple already exists.
	ErrDuplicateArtifact = errors.New("artifact already exists")

	// ErrAgentInactive signals a lookup of an agent_type that is registered
	// but not in active status.
	ErrAgentInactive = errors.New("agent inactive")

	// ErrAgentNotRegistered signals a lookup of an agent_type with no
	// registry entry at all.
	ErrAgentNotRegistered = errors.New("agent not registered")
)
