package categorization

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/store"
)

type fakeReporter struct{}

func (f *fakeReporter) Report(ctx context.Context, percent int, detail string) error { return nil }
func (f *fakeReporter) Cancelled() bool                                             { return false }

func TestProcessAssignsCategoryFromAISuggestion(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mockDB.Close()
	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	repo := bookmarks.NewRepository(db)

	mock.ExpectBegin()
	for range 11 {
		mock.ExpectExec(`INSERT INTO bookmark_categories`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	bookmarkCols := []string{"id", "user_id", "url", "title", "description", "status", "category_id",
		"ai_tags", "ai_summary", "enrichment_data", "categorization_data", "is_valid",
		"last_validated_at", "validation_errors", "metadata", "has_embedding", "created", "updated"}
	mock.ExpectQuery(`SELECT \* FROM bookmarks WHERE user_id = \? AND id IN \(\?\)`).
		WillReturnRows(sqlmock.NewRows(bookmarkCols).
			AddRow("bm-1", "user-1", "https://golang.org", "Go", "", "imported", nil, "[]", "", "{}", "{}", nil, nil, "[]", "{}", false, time.Now(), time.Now()))

	categoryCols := []string{"id", "user_id", "name", "color", "is_default", "created"}
	mock.ExpectQuery(`SELECT \* FROM bookmark_categories WHERE user_id = \$1 ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(categoryCols).AddRow("cat-dev", "user-1", "Development", "#2563eb", true, time.Now()))

	ruleCols := []string{"id", "user_id", "rule_type", "pattern", "category_id", "created"}
	mock.ExpectQuery(`SELECT \* FROM category_rules WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(ruleCols))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookmarks SET category_id`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	agent := New(repo, nil)
	task := &a2a.Task{Context: map[string]any{
		"userId":      "user-1",
		"bookmarkIds": []string{"bm-1"},
		a2a.AgentEnrichment: map[string]any{
			"enrichmentResults": []any{
				map[string]any{"bookmarkId": "bm-1", "category": "Development"},
			},
		},
	}}

	result := agent.Process(context.Background(), task, &fakeReporter{})
	require.Equal(t, a2a.TaskCompleted, result.Status)

	var decoded categorizationResult
	require.NoError(t, json.Unmarshal(result.ArtifactData, &decoded))
	require.Equal(t, 1, decoded.CategorizedCount)
	require.Equal(t, "Development", decoded.CategorizationResults[0].CategoryName)
	require.GreaterOrEqual(t, decoded.CategorizationResults[0].Confidence, 0.5)
}

func TestParseContextRulesDecodesValidEntries(t *testing.T) {
	mapping := map[string]any{
		"rules": []any{
			map[string]any{"type": "url_pattern", "pattern": "github.com", "categoryName": "Development"},
			map[string]any{"type": "tag"}, // missing fields, skipped
		},
	}
	rules := parseContextRules(mapping)
	require.Len(t, rules, 1)
	require.Equal(t, "Development", rules[0].CategoryName)
}
