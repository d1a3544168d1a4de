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

func newMockArtifactStore(t *testing.T) (*ArtifactStore, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	return NewArtifactStore(db), mock
}

func TestPutArtifactSucceeds(t *testing.T) {
	store, mock := newMockArtifactStore(t)
	mock.ExpectExec("INSERT INTO artifacts").WillReturnResult(sqlmock.NewResult(0, 1))

	artifact, err := store.Put(context.Background(), "task-1", a2a.AgentImport, a2a.ArtifactImportResult,
		[]byte(`{"insertedCount":1}`), "")
	require.NoError(t, err)
	assert.Equal(t, "application/json", artifact.MimeType)
	assert.True(t, artifact.Verify())
	assert.NoError(t, mock.ExpectationsWereMet())
}
