package importagent

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/store"
)

type fakeReporter struct {
	reports []string
}

func (f *fakeReporter) Report(ctx context.Context, percent int, detail string) error {
	f.reports = append(f.reports, detail)
	return nil
}
func (f *fakeReporter) Cancelled() bool { return false }

func newTestAgent(t *testing.T) (*Agent, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &store.DB{DB: sqlx.NewDb(mockDB, "sqlmock")}
	repo := bookmarks.NewRepository(db)
	return New(repo, 2, nil), mock
}

func writeHTMLFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bookmarks.html")
	content := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
	<DT><A HREF="https://a.example" ADD_DATE="1700000000">A Example</A>
	<DT><A HREF="https://b.example" ADD_DATE="1700000000">B Example</A>
	<DT><A HREF="about:blank">Skip me</A>
</DL><p>`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessInsertsParsedBookmarksAndReportsCompletion(t *testing.T) {
	agent, mock := newTestAgent(t)
	path := writeHTMLFixture(t)

	mock.ExpectExec(`INSERT INTO import_history`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO bookmarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("bm-1", true))
	mock.ExpectQuery(`INSERT INTO bookmarks`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inserted"}).AddRow("bm-2", true))
	mock.ExpectCommit()
	mock.ExpectExec(`UPDATE import_history SET`).WillReturnResult(sqlmock.NewResult(0, 1))

	task := &a2a.Task{
		Context: map[string]any{
			"filePath": path,
			"userId":   "user-1",
			"importId": "import-1",
		},
	}
	reporter := &fakeReporter{}

	result := agent.Process(context.Background(), task, reporter)
	require.Equal(t, a2a.TaskCompleted, result.Status)
	require.Equal(t, a2a.ArtifactImportResult, result.ArtifactType)

	var decoded importResult
	require.NoError(t, json.Unmarshal(result.ArtifactData, &decoded))
	require.Equal(t, 2, decoded.TotalBookmarks)
	require.Equal(t, 2, decoded.InsertedCount)
	require.Equal(t, 0, decoded.DuplicateCount)
	require.Contains(t, reporter.reports, "import complete")
}

func TestCapabilitiesDeclaresRequiredInputs(t *testing.T) {
	agent, _ := newTestAgent(t)
	card := agent.Capabilities()
	require.Equal(t, a2a.AgentImport, card.AgentType)
	require.Len(t, card.Inputs, 3)
}

func TestValidateFailsOnMissingFilePath(t *testing.T) {
	agent, _ := newTestAgent(t)
	err := agent.Validate(context.Background(), map[string]any{"userId": "u", "importId": "i"})
	require.ErrorIs(t, err, a2a.ErrInvalidInput)
}
