package taskmanager

import (
	"context"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/progress"
	"github.com/bookmarkhub/a2a/internal/store"
)

// taskProgressReporter is the a2a.ProgressReporter handed to an agent's
// Process call. It writes progress messages to the Message Log, fans them
// out through the Progress Stream Hub, and polls the Task Store's
// cancellation flag so the agent can check it at its own checkpoints.
type taskProgressReporter struct {
	ctx       context.Context
	taskID    string
	agentType string
	tasks     *store.TaskStore
	messages  *store.MessageLog
	hub       *progress.Hub
}

func (r *taskProgressReporter) Report(ctx context.Context, percent int, detail string) error {
	r.messages.Append(ctx, r.taskID, r.agentType, a2a.MessageProgress, detail, map[string]any{
		"progress": percent,
	})

	msg := &a2a.Message{
		TaskID:    r.taskID,
		AgentType: r.agentType,
		Type:      a2a.MessageProgress,
		Content:   detail,
		Metadata:  map[string]any{"progress": percent},
	}
	r.hub.PublishMessage(ctx, msg)
	return nil
}

func (r *taskProgressReporter) Cancelled() bool {
	cancelled, err := r.tasks.IsCancelled(r.ctx, r.taskID)
	if err != nil {
		return false
	}
	return cancelled
}
