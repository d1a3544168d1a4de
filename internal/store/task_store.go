package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

// TaskStore is the durable record of task lifecycle, workflow position, and
// context. All mutations are atomic; a losing concurrent
// transition sees a2a.ErrConflict and must re-read.
type TaskStore struct {
	db *DB
}

// NewTaskStore returns a TaskStore backed by db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// taskRow is the sqlx scan target; a2a.Task's Context/Metadata/WorkflowAgents
// fields aren't struct-tagged for db because they need the jsonMap/
// jsonStrings Scanner/Valuer adapters instead of a plain column mapping.
type taskRow struct {
	ID             string      `db:"id"`
	Type           string      `db:"type"`
	Status         string      `db:"status"`
	WorkflowType   string      `db:"workflow_type"`
	WorkflowAgents jsonStrings `db:"workflow_agents"`
	CurrentAgent   string      `db:"current_agent"`
	CurrentStep    int         `db:"current_step"`
	TotalSteps     int         `db:"total_steps"`
	Context        jsonMap     `db:"context"`
	Metadata       jsonMap     `db:"metadata"`
	UserID         string      `db:"user_id"`
	ErrorMessage   string      `db:"error_message"`
	Cancelled      bool        `db:"cancelled"`
	Created        time.Time   `db:"created"`
	Updated        time.Time   `db:"updated"`
}

func (r *taskRow) toTask() *a2a.Task {
	return &a2a.Task{
		ID:             r.ID,
		Type:           r.Type,
		Status:         a2a.TaskStatus(r.Status),
		WorkflowType:   r.WorkflowType,
		WorkflowAgents: []string(r.WorkflowAgents),
		CurrentAgent:   r.CurrentAgent,
		CurrentStep:    r.CurrentStep,
		TotalSteps:     r.TotalSteps,
		Context:        map[string]any(r.Context),
		Metadata:       map[string]any(r.Metadata),
		UserID:         r.UserID,
		ErrorMessage:   r.ErrorMessage,
		Cancelled:      r.Cancelled,
		Created:        r.Created,
		Updated:        r.Updated,
	}
}

// CreateTask inserts a new task in status pending, current_step 0,
// total_steps len(agents).
func (s *TaskStore) CreateTask(ctx context.Context, taskType, workflowType string, agents []string, userID string, taskContext, metadata map[string]any) (*a2a.Task, error) {
	now := time.Now()
	task := &a2a.Task{
		ID:             uuid.NewString(),
		Type:           taskType,
		Status:         a2a.TaskPending,
		WorkflowType:   workflowType,
		WorkflowAgents: agents,
		TotalSteps:     len(agents),
		Context:        taskContext,
		Metadata:       metadata,
		UserID:         userID,
		Created:        now,
		Updated:        now,
	}
	if task.Context == nil {
		task.Context = map[string]any{}
	}
	if task.Metadata == nil {
		task.Metadata = map[string]any{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, type, status, workflow_type, workflow_agents, current_agent,
			current_step, total_steps, context, metadata, user_id, error_message, cancelled, created, updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		task.ID, task.Type, string(task.Status), task.WorkflowType, jsonStrings(task.WorkflowAgents),
		task.CurrentAgent, task.CurrentStep, task.TotalSteps, jsonMap(task.Context), jsonMap(task.Metadata),
		task.UserID, task.ErrorMessage, task.Cancelled, task.Created, task.Updated,
	)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// Load fetches a task by id.
func (s *TaskStore) Load(ctx context.Context, taskID string) (*a2a.Task, error) {
	var row taskRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM tasks WHERE id = $1`, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load task %s: %w", taskID, a2a.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	return row.toTask(), nil
}

// List returns tasks matching filter, newest first.
func (s *TaskStore) List(ctx context.Context, filter a2a.TaskFilter) ([]*a2a.Task, error) {
	var (
		clauses []string
		args    []any
		idx     = 1
	)
	add := func(clause string, value any) {
		clauses = append(clauses, fmt.Sprintf(clause, idx))
		args = append(args, value)
		idx++
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.WorkflowType != "" {
		add("workflow_type = $%d", filter.WorkflowType)
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if !filter.Since.IsZero() {
		add("created >= $%d", filter.Since)
	}
	if !filter.Until.IsZero() {
		add("created <= $%d", filter.Until)
	}

	query := "SELECT * FROM tasks"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, filter.Offset)

	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	tasks := make([]*a2a.Task, len(rows))
	for i := range rows {
		tasks[i] = rows[i].toTask()
	}
	return tasks, nil
}

// Transition performs a compare-and-set status change, applying patch
// fields atomically with it. Only one concurrent caller wins; others get
// a2a.ErrConflict and must re-read via Load.
func (s *TaskStore) Transition(ctx context.Context, taskID string, from, to a2a.TaskStatus, patch TaskPatch) (*a2a.Task, error) {
	if !a2a.CanTransition(from, to) {
		return nil, fmt.Errorf("transition %s -> %s: %w", from, to, a2a.ErrInvalidInput)
	}

	set := []string{"status = $1", "updated = $2"}
	args := []any{string(to), time.Now()}
	idx := 3

	if patch.CurrentAgent != nil {
		set = append(set, fmt.Sprintf("current_agent = $%d", idx))
		args = append(args, *patch.CurrentAgent)
		idx++
	}
	if patch.CurrentStep != nil {
		set = append(set, fmt.Sprintf("current_step = $%d", idx))
		args = append(args, *patch.CurrentStep)
		idx++
	}
	if patch.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", idx))
		args = append(args, *patch.ErrorMessage)
		idx++
	}
	if patch.Cancelled != nil {
		set = append(set, fmt.Sprintf("cancelled = $%d", idx))
		args = append(args, *patch.Cancelled)
		idx++
	}

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND status = $%d`,
		strings.Join(set, ", "), idx, idx+1)
	args = append(args, taskID, string(from))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transition task %s: %w", taskID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("transition task %s: %w", taskID, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("transition task %s from %s: %w", taskID, from, a2a.ErrConflict)
	}

	return s.Load(ctx, taskID)
}

// TaskPatch carries the optional fields a Transition call may update
// alongside the status change itself.
type TaskPatch struct {
	CurrentAgent *string
	CurrentStep  *int
	ErrorMessage *string
	Cancelled    *bool
}

// AppendContext shallow-merges partial into the task's context column.
// Only valid while the task is pending or running; it is used to pass a
// prior stage's artifact fields into the next agent's input context.
func (s *TaskStore) AppendContext(ctx context.Context, taskID string, partial map[string]any) error {
	task, err := s.Load(ctx, taskID)
	if err != nil {
		return err
	}
	if task.Status != a2a.TaskPending && task.Status != a2a.TaskRunning {
		return fmt.Errorf("append_context on task %s in status %s: %w", taskID, task.Status, a2a.ErrInvalidInput)
	}

	merged := task.Context
	if merged == nil {
		merged = map[string]any{}
	}
	for k, v := range partial {
		merged[k] = v
	}

	_, err = s.db.ExecContext(ctx, `UPDATE tasks SET context = $1, updated = $2 WHERE id = $3`,
		jsonMap(merged), time.Now(), taskID)
	if err != nil {
		return fmt.Errorf("append_context task %s: %w", taskID, err)
	}
	return nil
}

// AdvanceStage updates current_agent and current_step in place while the
// task stays running. This is not a CanTransition edge: moving from one
// in-progress stage to the next is not a status change at all, only the
// genuine pending->running/running->terminal moves are.
func (s *TaskStore) AdvanceStage(ctx context.Context, taskID string, nextAgent string, nextStep int) (*a2a.Task, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET current_agent = $1, current_step = $2, updated = $3
		WHERE id = $4 AND status = $5`,
		nextAgent, nextStep, time.Now(), taskID, string(a2a.TaskRunning))
	if err != nil {
		return nil, fmt.Errorf("advance task %s: %w", taskID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("advance task %s: %w", taskID, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("advance task %s: %w", taskID, a2a.ErrConflict)
	}
	return s.Load(ctx, taskID)
}

// ResumeForReplay moves a failed task back to running without touching
// current_step or context, so dispatch resumes from the stage that never
// produced an artifact, reusing every prior stage's artifact as-is. This
// is the one deliberate exception to the normal state machine edges in
// a2a.CanTransition: replay is an operator-invoked recovery action, not a
// transition an agent or the ordinary dispatch loop can reach on its own.
func (s *TaskStore) ResumeForReplay(ctx context.Context, taskID string) (*a2a.Task, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = $1, error_message = '', cancelled = false, updated = $2
		WHERE id = $3 AND status = $4`,
		string(a2a.TaskRunning), time.Now(), taskID, string(a2a.TaskFailed))
	if err != nil {
		return nil, fmt.Errorf("resume task %s for replay: %w", taskID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resume task %s for replay: %w", taskID, err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("resume task %s for replay: %w", taskID, a2a.ErrConflict)
	}
	return s.Load(ctx, taskID)
}

// RequestCancel sets the cancellation flag read by the running agent's
// ProgressReporter at its next checkpoint. It does not itself transition
// status; the Task Manager performs the running->cancelled transition,
// either when the agent returns a failed result after seeing the flag or
// before it dispatches the next stage.
func (s *TaskStore) RequestCancel(ctx context.Context, taskID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE tasks SET cancelled = true, updated = $1 WHERE id = $2 AND status = $3`,
		time.Now(), taskID, string(a2a.TaskRunning))
	if err != nil {
		return fmt.Errorf("request cancel task %s: %w", taskID, err)
	}
	return nil
}

// IsCancelled reports the task's cancellation flag without loading every
// other field, for cheap polling from a ProgressReporter.
func (s *TaskStore) IsCancelled(ctx context.Context, taskID string) (bool, error) {
	var cancelled bool
	err := s.db.GetContext(ctx, &cancelled, `SELECT cancelled FROM tasks WHERE id = $1`, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("is cancelled %s: %w", taskID, a2a.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("is cancelled %s: %w", taskID, err)
	}
	return cancelled, nil
}
