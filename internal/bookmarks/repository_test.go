package bookmarks

import (
	"context"
	"testing"

	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/store"
)

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	return NewRepository(db), mock
}

func TestInsertChunkSeparatesInsertedAndDuplicate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO bookmarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("bm-1", true))
	mock.ExpectQuery(`INSERT INTO bookmarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("bm-2", false))
	mock.ExpectCommit()

	result, err := repo.InsertChunk(context.Background(), "user-1", []NewBookmark{
		{URL: "https://a.example", Title: "A"},
		{URL: "https://b.example", Title: "B"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.InsertedCount)
	require.Equal(t, 1, result.DuplicateCount)
	require.Equal(t, []string{"bm-1"}, result.InsertedIDs)
	require.Equal(t, []string{"bm-2"}, result.DuplicateIDs)
}

func TestBatchUpdateValidationFlushesAllRowsInOneTransaction(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE bookmarks SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookmarks SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BatchUpdateValidation(context.Background(), []ValidationUpdate{
		{BookmarkID: "bm-1", IsValid: true, Metadata: map[string]any{"title": "Example"}},
		{BookmarkID: "bm-2", IsValid: false, Errors: []string{"TIMEOUT"}},
	})
	require.NoError(t, err)
}

func TestBatchUpdateValidationSkipsEmptyInput(t *testing.T) {
	repo, _ := newTestRepo(t)

	err := repo.BatchUpdateValidation(context.Background(), nil)
	require.NoError(t, err)
}

func TestEnsureDefaultCategoriesSeedsEleven(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	for range defaultTaxonomy {
		mock.ExpectExec(`INSERT INTO bookmark_categories`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	err := repo.EnsureDefaultCategories(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, defaultTaxonomy, 11)
}

func TestFindOrCreateCategoryReturnsExisting(t *testing.T) {
	repo, mock := newTestRepo(t)

	cols := []string{"id", "user_id", "name", "color", "is_default", "created"}
	mock.ExpectQuery(`SELECT \* FROM bookmark_categories WHERE user_id = \$1 AND name = \$2`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("cat-1", "user-1", "Development", "#2563eb", true, time.Now()))

	cat, err := repo.FindOrCreateCategory(context.Background(), "user-1", "Development")
	require.NoError(t, err)
	require.Equal(t, "cat-1", cat.ID)
}
