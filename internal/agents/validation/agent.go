package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/agents/taskctx"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/browserpool"
	"github.com/bookmarkhub/a2a/internal/runtime"
)

// DefaultConcurrency is the default number of bookmarks validated at
// once, enforced by the browser pool's own capacity rather than agent
// accounting.
const DefaultConcurrency = 3

// progressEvery is how often progress is reported, in processed items.
const progressEvery = 5

// Agent is the Validation Agent: it fetches each bookmark's URL through
// pool, classifies the outcome, and persists validation state. Bookmarks
// are dispatched concurrently up to the pool's own capacity; the pool's
// semaphore is what actually bounds in-flight fetches, not the agent.
type Agent struct {
	repo        *bookmarks.Repository
	pool        *browserpool.Pool
	concurrency int
	logger      *slog.Logger
}

// New returns a Validation Agent. A nil pool defaults to
// browserpool.New(DefaultConcurrency).
func New(repo *bookmarks.Repository, pool *browserpool.Pool, logger *slog.Logger) *Agent {
	if pool == nil {
		pool = browserpool.New(DefaultConcurrency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{repo: repo, pool: pool, concurrency: int(pool.Capacity()), logger: logger}
}

func (a *Agent) Capabilities() a2a.CapabilityCard {
	return a2a.CapabilityCard{
		AgentType:   a2a.AgentValidation,
		Description: "Validates bookmark URLs through a shared browser pool and records failure reasons.",
		Inputs: []a2a.InputField{
			{Name: "bookmarkIds", Type: "[]string", Required: true, Description: "Bookmarks to validate"},
			{Name: "userId", Type: "string", Required: true, Description: "Owning user id"},
		},
		Outputs: a2a.OutputSpec{Type: a2a.ArtifactValidationResult, Description: "Per-bookmark validation outcomes"},
	}
}

func (a *Agent) Validate(ctx context.Context, taskContext map[string]any) error {
	return runtime.RequireFields(taskContext, a.Capabilities().Inputs)
}

type validationEntry struct {
	BookmarkID string `json:"bookmarkId"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
}

type validationResult struct {
	ValidatedCount    int               `json:"validatedCount"`
	FailedCount       int               `json:"failedCount"`
	ValidationResults []validationEntry `json:"validationResults"`
}

func (a *Agent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	userID := taskctx.String(task.Context, "userId")
	bookmarkIDs := taskctx.StringSlice(task.Context, "bookmarkIds")

	bookmarksToValidate, err := a.repo.GetByIDs(ctx, userID, bookmarkIDs)
	if err != nil {
		return a2a.Failed(fmt.Errorf("load bookmarks: %w", err))
	}

	var (
		mu        sync.Mutex
		entries   []validationEntry
		updates   []bookmarks.ValidationUpdate
		done      int
		validated int
		failed    int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)

	for _, b := range bookmarksToValidate {
		b := b
		group.Go(func() error {
			if progress.Cancelled() {
				return a2a.ErrCancelled
			}

			outcome, err := a.pool.Validate(groupCtx, b.URL)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failed++
				entries = append(entries, validationEntry{BookmarkID: b.ID, Valid: false, Reason: string(browserpool.ReasonValidationError)})
				a.logger.ErrorContext(groupCtx, "validation fetch failed", "bookmark_id", b.ID, "error", err)
			} else {
				if outcome.Valid {
					validated++
				} else {
					failed++
				}
				entries = append(entries, validationEntry{BookmarkID: b.ID, Valid: outcome.Valid, Reason: string(outcome.Reason)})
				updates = append(updates, bookmarks.ValidationUpdate{
					BookmarkID: b.ID,
					IsValid:    outcome.Valid,
					Metadata:   metadataMap(outcome.Metadata),
					Errors:     errorsFor(outcome),
				})
			}

			done++
			if done%progressEvery == 0 {
				percent := 10 + (done * 85 / max(len(bookmarksToValidate), 1))
				if percent > 90 {
					percent = 90
				}
				_ = progress.Report(groupCtx, percent, fmt.Sprintf("validated %d/%d", done, len(bookmarksToValidate)))
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

	if err := a.repo.BatchUpdateValidation(ctx, updates); err != nil {
		// A shared-resource write failure is logged, not fatal: every
		// result was already computed regardless of whether it lands.
		a.logger.ErrorContext(ctx, "batch validation write failed", "error", err)
	}

	payload, err := json.Marshal(validationResult{
		ValidatedCount:    validated,
		FailedCount:       failed,
		ValidationResults: entries,
	})
	if err != nil {
		return a2a.Failed(fmt.Errorf("marshal validation result: %w", err))
	}

	if err := progress.Report(ctx, 100, "validation complete"); err != nil {
		return a2a.Failed(err)
	}

	return a2a.Completed(a2a.ArtifactValidationResult, payload, "application/json")
}

func metadataMap(m browserpool.Metadata) map[string]any {
	return map[string]any{
		"title":       m.Title,
		"description": m.Description,
		"keywords":    m.Keywords,
		"author":      m.Author,
		"ogImage":     m.OGImage,
		"favicon":     m.Favicon,
	}
}

func errorsFor(outcome browserpool.Result) []string {
	if outcome.Valid {
		return nil
	}
	return []string{string(outcome.Reason)}
}
