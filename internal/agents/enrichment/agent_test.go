package enrichment

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
	"github.com/bookmarkhub/a2a/internal/ratelimit"
	"github.com/bookmarkhub/a2a/internal/store"
)

type fakeReporter struct{}

func (f *fakeReporter) Report(ctx context.Context, percent int, detail string) error { return nil }
func (f *fakeReporter) Cancelled() bool                                             { return false }

func TestProcessEnrichesAndBatchWrites(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()
	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	repo := bookmarks.NewRepository(db)

	cols := []string{"id", "user_id", "url", "title", "description", "status", "category_id",
		"ai_tags", "ai_summary", "enrichment_data", "categorization_data", "is_valid",
		"last_validated_at", "validation_errors", "metadata", "has_embedding", "created", "updated"}
	mock.ExpectQuery(`SELECT \* FROM bookmarks WHERE user_id = \? AND id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("bm-1", "user-1", "https://golang.org", "Go", "", "imported", nil, "[]", "", "{}", "{}", nil, nil, "[]", "{}", false, time.Now(), time.Now()))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookmarks SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mockClient := ai.NewMockCompletionClient()
	agent := New(repo, mockClient, ratelimit.New(6000), 2, nil)

	task := &a2a.Task{Context: map[string]any{
		"userId":      "user-1",
		"bookmarkIds": []string{"bm-1"},
	}}

	result := agent.Process(context.Background(), task, &fakeReporter{})
	require.Equal(t, a2a.TaskCompleted, result.Status)

	var decoded enrichmentResult
	require.NoError(t, json.Unmarshal(result.ArtifactData, &decoded))
	require.Equal(t, 1, decoded.EnrichedCount)
	require.Equal(t, 0, decoded.FailedCount)
	require.Equal(t, 1, mockClient.CallCount)
}

func TestSkipInvalidFiltersOutBookmarks(t *testing.T) {
	rows := []*bookmarks.Bookmark{{ID: "bm-1"}, {ID: "bm-2"}}
	stage := map[string]any{
		"validationResults": []any{
			map[string]any{"bookmarkId": "bm-1", "valid": true},
			map[string]any{"bookmarkId": "bm-2", "valid": false},
		},
	}
	filtered := skipInvalid(rows, stage)
	require.Len(t, filtered, 1)
	require.Equal(t, "bm-1", filtered[0].ID)
}
