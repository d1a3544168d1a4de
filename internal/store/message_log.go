package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

// MessageLog is the append-only progress/status/error stream per task.
// Append failures are logged but never fail the owning agent task;
// authoritative state always lives on the Task row.
type MessageLog struct {
	db     *DB
	logger *slog.Logger
}

// NewMessageLog returns a MessageLog backed by db. logger defaults to
// slog.Default() if nil.
func NewMessageLog(db *DB, logger *slog.Logger) *MessageLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &MessageLog{db: db, logger: logger}
}

// Append writes a message. Failures are logged, not returned, matching
// the "best-effort durable" contract: a broken Message Log must never
// take an otherwise-successful agent down with it.
func (l *MessageLog) Append(ctx context.Context, taskID, agentType string, msgType a2a.MessageType, content string, metadata map[string]any) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO messages (task_id, agent_type, type, content, metadata, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		taskID, agentType, string(msgType), content, jsonMap(metadata), time.Now())
	if err != nil {
		l.logger.ErrorContext(ctx, "failed to append message",
			"task_id", taskID, "agent_type", agentType, "type", msgType, "error", err)
	}
}

// Tail returns messages for a task with timestamp > since, ordered by
// append order. Used by the admin surface's message history endpoint.
func (l *MessageLog) Tail(ctx context.Context, taskID string, since time.Time) ([]*a2a.Message, error) {
	rows, err := l.db.QueryxContext(ctx, `
		SELECT id, task_id, agent_type, type, content, metadata, timestamp
		FROM messages WHERE task_id = $1 AND timestamp > $2 ORDER BY id ASC`,
		taskID, since)
	if err != nil {
		return nil, fmt.Errorf("tail messages for task %s: %w", taskID, err)
	}
	defer rows.Close()

	var messages []*a2a.Message
	for rows.Next() {
		var (
			m    a2a.Message
			meta jsonMap
			id   int64
		)
		if err := rows.Scan(&id, &m.TaskID, &m.AgentType, &m.Type, &m.Content, &meta, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("tail messages for task %s: %w", taskID, err)
		}
		m.ID = fmt.Sprintf("%d", id)
		m.Metadata = map[string]any(meta)
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
