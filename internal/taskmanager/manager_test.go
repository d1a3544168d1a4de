package taskmanager

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/progress"
	"github.com/bookmarkhub/a2a/internal/registry"
	"github.com/bookmarkhub/a2a/internal/store"
)

type stubAgent struct {
	card   a2a.CapabilityCard
	result a2a.Result
}

func (s *stubAgent) Capabilities() a2a.CapabilityCard { return s.card }
func (s *stubAgent) Validate(ctx context.Context, taskContext map[string]any) error { return nil }
func (s *stubAgent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	return s.result
}

func newTestManager(t *testing.T) (*Manager, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	tasks := store.NewTaskStore(db)
	artifacts := store.NewArtifactStore(db)
	messages := store.NewMessageLog(db, nil)
	reg := registry.New(time.Minute)
	hub := progress.New(func(ctx context.Context, taskID string) (*a2a.Task, error) {
		return tasks.Load(ctx, taskID)
	}, nil)

	workflows := map[string][]string{
		"quick_import": {a2a.AgentImport},
	}

	return New(tasks, artifacts, messages, reg, hub, workflows, nil, nil, nil), mock
}

func TestSubmitUnknownWorkflowFails(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.Submit(context.Background(), "bookmark_import", "no_such_workflow", nil, "user-1")
	require.Error(t, err)
}

// TestDispatchStageCompletesSingleAgentWorkflow drives one dispatchStage
// call across a one-agent workflow end to end: pending->running, the
// agent's artifact is persisted and merged into context, and the task
// reaches completed in the same call since there is no further stage.
func TestDispatchStageCompletesSingleAgentWorkflow(t *testing.T) {
	mgr, mock := newTestManager(t)

	agent := &stubAgent{
		card:   a2a.CapabilityCard{AgentType: a2a.AgentImport},
		result: a2a.Completed(a2a.ArtifactImportResult, []byte(`{"imported":3}`), "application/json"),
	}
	mgr.registry.Register(agent, agent.card)

	now := time.Now()
	taskCols := []string{"id", "type", "status", "workflow_type", "workflow_agents", "current_agent",
		"current_step", "total_steps", "context", "metadata", "user_id", "error_message", "cancelled", "created", "updated"}
	taskID := "11111111-1111-1111-1111-111111111111"

	pendingRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "pending", "quick_import", `["import"]`, "",
		0, 1, `{}`, `{}`, "user-1", "", false, now, now)
	runningRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "running", "quick_import", `["import"]`, "import",
		0, 1, `{}`, `{}`, "user-1", "", false, now, now)
	runningRowForMerge := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "running", "quick_import", `["import"]`, "import",
		0, 1, `{}`, `{}`, "user-1", "", false, now, now)
	completedRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "completed", "quick_import", `["import"]`, "import",
		1, 1, `{"import":{"imported":3}}`, `{}`, "user-1", "", false, now, now)

	// dispatchStage's initial Load.
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(pendingRow)
	// pending -> running transition: exec then reload.
	mock.ExpectExec(`UPDATE tasks SET`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(runningRow)
	// IsCancelled check.
	mock.ExpectQuery(`SELECT cancelled FROM tasks WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cancelled"}).AddRow(false))
	// Artifact write.
	mock.ExpectExec(`INSERT INTO artifacts`).WillReturnResult(sqlmock.NewResult(1, 1))
	// AppendContext: load then update.
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(runningRowForMerge)
	mock.ExpectExec(`UPDATE tasks SET context`).WillReturnResult(sqlmock.NewResult(1, 1))
	// running -> completed transition: exec then reload.
	mock.ExpectExec(`UPDATE tasks SET`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(completedRow)

	done, err := mgr.dispatchStage(context.Background(), taskID)
	require.NoError(t, err)
	require.True(t, done)
}

func TestDispatchStageFailsWhenAgentNotRegistered(t *testing.T) {
	mgr, mock := newTestManager(t)

	now := time.Now()
	taskCols := []string{"id", "type", "status", "workflow_type", "workflow_agents", "current_agent",
		"current_step", "total_steps", "context", "metadata", "user_id", "error_message", "cancelled", "created", "updated"}
	taskID := "22222222-2222-2222-2222-222222222222"

	pendingRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "pending", "quick_import", `["import"]`, "",
		0, 1, `{}`, `{}`, "user-1", "", false, now, now)
	runningRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "running", "quick_import", `["import"]`, "import",
		0, 1, `{}`, `{}`, "user-1", "", false, now, now)
	failedRow := sqlmock.NewRows(taskCols).AddRow(
		taskID, "bookmark_import", "failed", "quick_import", `["import"]`, "import",
		0, 1, `{}`, `{}`, "user-1", "dispatch import: agent not registered", false, now, now)

	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(pendingRow)
	mock.ExpectExec(`UPDATE tasks SET`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(runningRow)
	mock.ExpectQuery(`SELECT cancelled FROM tasks WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"cancelled"}).AddRow(false))
	// No agent registered for "import": dispatchStage transitions straight to failed.
	mock.ExpectExec(`UPDATE tasks SET`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT \* FROM tasks WHERE id = \$1`).WillReturnRows(failedRow)

	done, err := mgr.dispatchStage(context.Background(), taskID)
	require.NoError(t, err)
	require.True(t, done)
}
