package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
)

func newMockStore(t *testing.T) (*TaskStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	return NewTaskStore(db), mock
}

func TestCreateTaskInsertsPendingRow(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO tasks").WillReturnResult(sqlmock.NewResult(0, 1))

	task, err := store.CreateTask(context.Background(), "import_workflow", a2a.WorkflowTypeQuickImport,
		a2a.WorkflowQuickImport, "user-1", nil, nil)
	require.NoError(t, err)

	assert.Equal(t, a2a.TaskPending, task.Status)
	assert.Equal(t, 0, task.CurrentStep)
	assert.Equal(t, len(a2a.WorkflowQuickImport), task.TotalSteps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRejectsInvalidEdge(t *testing.T) {
	store, mock := newMockStore(t)

	_, err := store.Transition(context.Background(), "task-1", a2a.TaskPending, a2a.TaskCompleted, TaskPatch{})
	require.Error(t, err)
	assert.ErrorIs(t, err, a2a.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionReturnsConflictWhenNoRowsAffected(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("UPDATE tasks SET").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.Transition(context.Background(), "task-1", a2a.TaskPending, a2a.TaskRunning, TaskPatch{})
	require.Error(t, err)
	assert.ErrorIs(t, err, a2a.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}
