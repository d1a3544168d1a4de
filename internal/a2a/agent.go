package a2a

import "context"

// Result is an agent's tagged outcome for one Process call: either a
// completed stage with exactly one artifact, or a failed stage with an
// error. Agents return this value rather than raising exceptions as
// control flow.
type Result struct {
	Status       TaskStatus // TaskCompleted or TaskFailed
	ArtifactType string
	ArtifactData []byte
	MimeType     string
	Error        error
}

// Completed builds a successful Result carrying one artifact.
func Completed(artifactType string, data []byte, mimeType string) Result {
	return Result{Status: TaskCompleted, ArtifactType: artifactType, ArtifactData: data, MimeType: mimeType}
}

// Failed builds a failed Result.
func Failed(err error) Result {
	return Result{Status: TaskFailed, Error: err}
}

// ProgressReporter is passed into Process so an agent can emit progress
// without depending on the Task Manager directly: agents never hold a
// back-pointer to the manager, only this interface, passed in at dispatch
// time.
type ProgressReporter interface {
	// Report appends a progress message and updates the task's derived
	// progress percentage. detail is a human-readable status string.
	Report(ctx context.Context, percent int, detail string) error

	// Cancelled reports whether the owning task has received a
	// cancellation request. Agents must check this at every batch
	// boundary and progress checkpoint.
	Cancelled() bool
}

// Agent is the base contract every concrete worker implements.
type Agent interface {
	// Capabilities returns this agent's static Capability Card.
	Capabilities() CapabilityCard

	// Validate checks that context carries the inputs this agent's card
	// declares as required, with the right shapes. It returns a wrapped
	// ErrInvalidInput on failure.
	Validate(ctx context.Context, taskContext map[string]any) error

	// Process performs the agent's work for one task. Implementations must
	// report progress at least every N units of work, never mutate
	// artifacts they receive as input, and scope-acquire any external
	// resource with guaranteed release on every exit path including
	// cancellation.
	Process(ctx context.Context, task *Task, progress ProgressReporter) Result
}
