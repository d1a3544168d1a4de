package importagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/agents/taskctx"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/netscape"
	"github.com/bookmarkhub/a2a/internal/runtime"
)

// DefaultChunkSize is the number of bookmarks inserted per transaction.
const DefaultChunkSize = 100

// Agent is the Import Agent: it parses a bookmark export file and
// inserts bookmarks in chunked transactions, tracking the run in
// import_history.
type Agent struct {
	repo      *bookmarks.Repository
	chunkSize int
	logger    *slog.Logger
}

// New returns an Import Agent backed by repo. chunkSize <= 0 uses
// DefaultChunkSize. A nil logger falls back to slog.Default().
func New(repo *bookmarks.Repository, chunkSize int, logger *slog.Logger) *Agent {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{repo: repo, chunkSize: chunkSize, logger: logger}
}

func (a *Agent) Capabilities() a2a.CapabilityCard {
	return a2a.CapabilityCard{
		AgentType:   a2a.AgentImport,
		Description: "Parses a bookmark export file and inserts bookmarks in chunked transactions.",
		Inputs: []a2a.InputField{
			{Name: "filePath", Type: "string", Required: true, Description: "Path to the Netscape HTML or JSON bookmark export"},
			{Name: "userId", Type: "string", Required: true, Description: "Owning user id"},
			{Name: "importId", Type: "string", Required: true, Description: "Caller-assigned import session id"},
		},
		Outputs: a2a.OutputSpec{Type: a2a.ArtifactImportResult, Description: "Counts and ids of bookmarks inserted by this run"},
	}
}

func (a *Agent) Validate(ctx context.Context, taskContext map[string]any) error {
	return runtime.RequireFields(taskContext, a.Capabilities().Inputs)
}

type importResult struct {
	BookmarkIDs    []string `json:"bookmarkIds"`
	TotalBookmarks int      `json:"totalBookmarks"`
	InsertedCount  int      `json:"insertedCount"`
	DuplicateCount int      `json:"duplicateCount"`
	ImportID       string   `json:"importId"`
	DurationMs     int64    `json:"duration"`
}

func (a *Agent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	start := time.Now()
	filePath := taskctx.String(task.Context, "filePath")
	userID := taskctx.String(task.Context, "userId")
	importID := taskctx.String(task.Context, "importId")

	if err := a.repo.StartImport(ctx, importID, importID, userID, filePath); err != nil {
		return a2a.Failed(fmt.Errorf("start import history: %w", err))
	}

	rows, err := a.parseFile(filePath)
	if err != nil {
		return a2a.Failed(fmt.Errorf("parse %s: %w: %w", filePath, err, a2a.ErrPermanentExternal))
	}
	total := len(rows)

	if err := progress.Report(ctx, 10, fmt.Sprintf("parsed %d bookmarks", total)); err != nil {
		return a2a.Failed(err)
	}
	if err := progress.Report(ctx, 20, "starting insertion"); err != nil {
		return a2a.Failed(err)
	}

	chunks := chunkRows(rows, a.chunkSize)
	var bookmarkIDs []string
	var insertedCount, duplicateCount int

	for i, chunk := range chunks {
		if progress.Cancelled() {
			return a2a.Failed(a2a.ErrCancelled)
		}

		result, err := a.repo.InsertChunk(ctx, userID, chunk)
		if err != nil {
			// Chunk-level failure is isolated: log and advance past it
			// rather than failing the whole import.
			a.logger.ErrorContext(ctx, "import chunk failed", "import_id", importID, "chunk", i, "error", err)
			continue
		}
		bookmarkIDs = append(bookmarkIDs, result.InsertedIDs...)
		bookmarkIDs = append(bookmarkIDs, result.DuplicateIDs...)
		insertedCount += result.InsertedCount
		duplicateCount += result.DuplicateCount

		percent := 20 + ((i + 1) * 75 / len(chunks))
		if percent > 95 {
			percent = 95
		}
		if err := progress.Report(ctx, percent, fmt.Sprintf("inserted chunk %d/%d", i+1, len(chunks))); err != nil {
			return a2a.Failed(err)
		}
	}

	duration := time.Since(start)
	if err := a.repo.FinishImport(ctx, importID, total, insertedCount, duplicateCount, int(duration.Milliseconds())); err != nil {
		return a2a.Failed(fmt.Errorf("finish import history: %w: %w", err, a2a.ErrSharedResource))
	}

	payload, err := json.Marshal(importResult{
		BookmarkIDs:    bookmarkIDs,
		TotalBookmarks: total,
		InsertedCount:  insertedCount,
		DuplicateCount: duplicateCount,
		ImportID:       importID,
		DurationMs:     duration.Milliseconds(),
	})
	if err != nil {
		return a2a.Failed(fmt.Errorf("marshal import result: %w", err))
	}

	if err := progress.Report(ctx, 100, "import complete"); err != nil {
		return a2a.Failed(err)
	}

	return a2a.Completed(a2a.ArtifactImportResult, payload, "application/json")
}

// parseFile dispatches to the Netscape HTML or JSON parser based on file
// extension, falling back to HTML for unrecognized extensions since that
// is the more common export format.
func (a *Agent) parseFile(path string) ([]netscape.ParsedBookmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return netscape.ParseJSON(f)
	default:
		return netscape.ParseHTML(f)
	}
}

func chunkRows(rows []netscape.ParsedBookmark, size int) [][]bookmarks.NewBookmark {
	var chunks [][]bookmarks.NewBookmark
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		var chunk []bookmarks.NewBookmark
		for _, row := range rows[i:end] {
			chunk = append(chunk, bookmarks.NewBookmark{
				URL:         row.URL,
				Title:       row.Title,
				Description: row.Description,
				Tags:        row.Tags,
			})
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}
