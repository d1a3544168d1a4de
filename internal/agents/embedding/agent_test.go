package embedding

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/ai"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/embedstore"
	"github.com/bookmarkhub/a2a/internal/store"
)

type fakeReporter struct{}

func (f *fakeReporter) Report(ctx context.Context, percent int, detail string) error { return nil }
func (f *fakeReporter) Cancelled() bool                                             { return false }

func TestProcessEmbedsBookmarksLackingEmbedding(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()
	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	repo := bookmarks.NewRepository(db)

	cols := []string{"id", "user_id", "url", "title", "description", "status", "category_id",
		"ai_tags", "ai_summary", "enrichment_data", "categorization_data", "is_valid",
		"last_validated_at", "validation_errors", "metadata", "has_embedding", "created", "updated"}

	// WithoutEmbedding's GetByIDs call.
	mock.ExpectQuery(`SELECT \* FROM bookmarks WHERE user_id = \? AND id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("bm-1", "user-1", "https://golang.org", "Go", "", "imported", nil, "[]", "", "{}", "{}", nil, nil, "[]", "{}", false, time.Now(), time.Now()))

	// Process's own GetByIDs call for the filtered id set.
	mock.ExpectQuery(`SELECT \* FROM bookmarks WHERE user_id = \? AND id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("bm-1", "user-1", "https://golang.org", "Go", "", "imported", nil, "[]", "", "{}", "{}", nil, nil, "[]", "{}", false, time.Now(), time.Now()))

	mock.ExpectExec(`UPDATE bookmarks SET has_embedding`).WillReturnResult(sqlmock.NewResult(0, 1))

	vectorStore, err := embedstore.OpenInMemory()
	require.NoError(t, err)

	agent := New(repo, ai.NewMockEmbeddingClient(16), vectorStore, 10, 2, nil)
	task := &a2a.Task{Context: map[string]any{
		"userId":      "user-1",
		"bookmarkIds": []string{"bm-1"},
	}}

	result := agent.Process(context.Background(), task, &fakeReporter{})
	require.Equal(t, a2a.TaskCompleted, result.Status)

	var decoded embeddingResult
	require.NoError(t, json.Unmarshal(result.ArtifactData, &decoded))
	require.Equal(t, 1, decoded.EmbeddedCount)
	require.Equal(t, 16, decoded.VectorDimensions)
	require.Equal(t, 1, vectorStore.Count())
}
