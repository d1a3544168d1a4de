package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/agents/taskctx"
	"github.com/bookmarkhub/a2a/internal/ai"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/embedstore"
	"github.com/bookmarkhub/a2a/internal/runtime"
)

// DefaultBatchSize and DefaultParallelBatches are the default batch size
// and parallel-batch fan-out for embedding computation.
const (
	DefaultBatchSize       = 20
	DefaultParallelBatches = 5
)

// Agent is the Embedding Agent: it computes and stores a fixed-dimension
// vector per bookmark, skipping bookmarks that already have one unless
// regenerate is requested.
type Agent struct {
	repo           *bookmarks.Repository
	embedder       ai.EmbeddingClient
	store          *embedstore.Store
	batchSize      int
	parallelBatches int
	logger         *slog.Logger
}

// New returns an Embedding Agent. batchSize/parallelBatches <= 0 use the
// package defaults.
func New(repo *bookmarks.Repository, embedder ai.EmbeddingClient, store *embedstore.Store, batchSize, parallelBatches int, logger *slog.Logger) *Agent {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if parallelBatches <= 0 {
		parallelBatches = DefaultParallelBatches
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{repo: repo, embedder: embedder, store: store, batchSize: batchSize, parallelBatches: parallelBatches, logger: logger}
}

func (a *Agent) Capabilities() a2a.CapabilityCard {
	return a2a.CapabilityCard{
		AgentType:   a2a.AgentEmbedding,
		Description: "Computes and stores a fixed-dimension embedding vector per bookmark.",
		Inputs: []a2a.InputField{
			{Name: "bookmarkIds", Type: "[]string", Required: true, Description: "Bookmarks to embed"},
			{Name: "userId", Type: "string", Required: true, Description: "Owning user id"},
			{Name: "regenerate", Type: "bool", Required: false, Description: "Recompute embeddings even if one already exists"},
		},
		Outputs: a2a.OutputSpec{Type: a2a.ArtifactEmbeddingResult, Description: "Per-bookmark embedding outcomes"},
	}
}

func (a *Agent) Validate(ctx context.Context, taskContext map[string]any) error {
	return runtime.RequireFields(taskContext, []a2a.InputField{
		{Name: "bookmarkIds", Required: true},
		{Name: "userId", Required: true},
	})
}

type embeddingEntry struct {
	BookmarkID string `json:"bookmarkId"`
	Error      string `json:"error,omitempty"`
}

type embeddingResult struct {
	EmbeddedCount    int              `json:"embeddedCount"`
	FailedCount      int              `json:"failedCount"`
	EmbeddingResults []embeddingEntry `json:"embeddingResults"`
	VectorDimensions int              `json:"vectorDimensions"`
}

func (a *Agent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	userID := taskctx.String(task.Context, "userId")
	bookmarkIDs := taskctx.StringSlice(task.Context, "bookmarkIds")
	regenerate := taskctx.Bool(task.Context, "regenerate")

	targetIDs := bookmarkIDs
	if !regenerate {
		filtered, err := a.repo.WithoutEmbedding(ctx, userID, bookmarkIDs)
		if err != nil {
			return a2a.Failed(fmt.Errorf("filter embedded bookmarks: %w", err))
		}
		targetIDs = filtered
	}

	rows, err := a.repo.GetByIDs(ctx, userID, targetIDs)
	if err != nil {
		return a2a.Failed(fmt.Errorf("load bookmarks: %w", err))
	}

	if err := progress.Report(ctx, 10, fmt.Sprintf("embedding %d bookmarks", len(rows))); err != nil {
		return a2a.Failed(err)
	}

	batches := chunkBookmarks(rows, a.batchSize)

	var (
		mu        sync.Mutex
		entries   []embeddingEntry
		embedded  int
		failed    int
		doneCount int32
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.parallelBatches)

	for _, batch := range batches {
		batch := batch
		group.Go(func() error {
			for _, b := range batch {
				if progress.Cancelled() {
					return a2a.ErrCancelled
				}

				vector, err := a.embedder.Embed(groupCtx, textRepresentation(b))

				mu.Lock()
				if err != nil {
					failed++
					entries = append(entries, embeddingEntry{BookmarkID: b.ID, Error: err.Error()})
					a.logger.ErrorContext(groupCtx, "embedding call failed", "bookmark_id", b.ID, "error", err)
				} else if putErr := a.store.Put(groupCtx, b.ID, userID, vector, textRepresentation(b)); putErr != nil {
					failed++
					entries = append(entries, embeddingEntry{BookmarkID: b.ID, Error: putErr.Error()})
					a.logger.ErrorContext(groupCtx, "embedding store failed", "bookmark_id", b.ID, "error", putErr)
				} else {
					embedded++
					entries = append(entries, embeddingEntry{BookmarkID: b.ID})
					if markErr := a.repo.MarkEmbedded(groupCtx, []string{b.ID}); markErr != nil {
						a.logger.ErrorContext(groupCtx, "mark embedded failed", "bookmark_id", b.ID, "error", markErr)
					}
				}
				mu.Unlock()

				done := atomic.AddInt32(&doneCount, 1)
				percent := 10 + (int(done) * 85 / max1(len(rows)))
				if percent > 95 {
					percent = 95
				}
				_ = progress.Report(groupCtx, percent, fmt.Sprintf("embedded %d/%d", done, len(rows)))
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		if err == a2a.ErrCancelled {
			return a2a.Failed(a2a.ErrCancelled)
		}
		return a2a.Failed(err)
	}

	payload, err := json.Marshal(embeddingResult{
		EmbeddedCount:    embedded,
		FailedCount:      failed,
		EmbeddingResults: entries,
		VectorDimensions: a.embedder.Dimensions(),
	})
	if err != nil {
		return a2a.Failed(fmt.Errorf("marshal embedding result: %w", err))
	}

	if err := progress.Report(ctx, 100, "embedding complete"); err != nil {
		return a2a.Failed(err)
	}

	return a2a.Completed(a2a.ArtifactEmbeddingResult, payload, "application/json")
}

// textRepresentation concatenates a bookmark's URL, title, description,
// summary, and tags into the text fed to the embedding client.
func textRepresentation(b *bookmarks.Bookmark) string {
	parts := []string{b.URL, b.Title, b.Description, b.AISummary}
	parts = append(parts, b.AITags...)
	return strings.Join(parts, " ")
}

func chunkBookmarks(rows []*bookmarks.Bookmark, size int) [][]*bookmarks.Bookmark {
	var batches [][]*bookmarks.Bookmark
	for i := 0; i < len(rows); i += size {
		end := i + size
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[i:end])
	}
	return batches
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
