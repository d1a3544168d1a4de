package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/agents/taskctx"
	"github.com/bookmarkhub/a2a/internal/ai"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/ratelimit"
	"github.com/bookmarkhub/a2a/internal/runtime"
)

// DefaultConcurrency is the default number of bookmarks enriched in
// parallel.
const DefaultConcurrency = 5

const progressEvery = 5

// Agent is the Enrichment Agent: it asks a completion client for
// category/tags/summary/keywords per bookmark, rate-limited and bounded
// to a fixed concurrency, then flushes successful results in one batch.
type Agent struct {
	repo        *bookmarks.Repository
	completion  ai.CompletionClient
	limiter     *ratelimit.Limiter
	concurrency int
	logger      *slog.Logger
}

// New returns an Enrichment Agent. A nil limiter defaults to
// ratelimit.New(ratelimit.DefaultPerMinute).
func New(repo *bookmarks.Repository, completion ai.CompletionClient, limiter *ratelimit.Limiter, concurrency int, logger *slog.Logger) *Agent {
	if limiter == nil {
		limiter = ratelimit.New(ratelimit.DefaultPerMinute)
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{repo: repo, completion: completion, limiter: limiter, concurrency: concurrency, logger: logger}
}

func (a *Agent) Capabilities() a2a.CapabilityCard {
	return a2a.CapabilityCard{
		AgentType:   a2a.AgentEnrichment,
		Description: "Generates category, tags, summary, and keywords for bookmarks via an AI completion capability.",
		Inputs: []a2a.InputField{
			{Name: "bookmarkIds", Type: "[]string", Required: true, Description: "Bookmarks to enrich"},
			{Name: "userId", Type: "string", Required: true, Description: "Owning user id"},
		},
		Outputs: a2a.OutputSpec{Type: a2a.ArtifactEnrichmentResult, Description: "Per-bookmark enrichment outcomes"},
	}
}

func (a *Agent) Validate(ctx context.Context, taskContext map[string]any) error {
	return runtime.RequireFields(taskContext, a.Capabilities().Inputs)
}

type enrichmentEntry struct {
	BookmarkID string   `json:"bookmarkId"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Error      string   `json:"error,omitempty"`
}

type enrichmentResult struct {
	EnrichedCount     int               `json:"enrichedCount"`
	FailedCount       int               `json:"failedCount"`
	EnrichmentResults []enrichmentEntry `json:"enrichmentResults"`
}

func (a *Agent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	userID := taskctx.String(task.Context, "userId")
	bookmarkIDs := taskctx.StringSlice(task.Context, "bookmarkIds")

	rows, err := a.repo.GetByIDs(ctx, userID, bookmarkIDs)
	if err != nil {
		return a2a.Failed(fmt.Errorf("load bookmarks: %w", err))
	}
	rows = skipInvalid(rows, taskctx.Stage(task.Context, a2a.AgentValidation))

	var (
		mu       sync.Mutex
		entries  []enrichmentEntry
		updates  []bookmarks.EnrichmentUpdate
		done     int
		enriched int
		failed   int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.concurrency)

	for _, b := range rows {
		b := b
		group.Go(func() error {
			if progress.Cancelled() {
				return a2a.ErrCancelled
			}
			if err := a.limiter.Wait(groupCtx); err != nil {
				return nil
			}

			result, err := a.completion.Enrich(groupCtx, ai.EnrichmentRequest{
				URL:         b.URL,
				Title:       b.Title,
				Description: b.Description,
				Taxonomy:    a2a.DefaultCategoryTaxonomy,
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				failed++
				entries = append(entries, enrichmentEntry{BookmarkID: b.ID, Error: err.Error()})
				a.logger.ErrorContext(groupCtx, "enrichment call failed", "bookmark_id", b.ID, "error", err)
			} else {
				enriched++
				entries = append(entries, enrichmentEntry{
					BookmarkID: b.ID,
					Category:   result.Category,
					Tags:       result.Tags,
					Summary:    result.Summary,
					Keywords:   result.Keywords,
				})
				updates = append(updates, bookmarks.EnrichmentUpdate{
					BookmarkID: b.ID,
					Tags:       result.Tags,
					Summary:    result.Summary,
					Data: map[string]any{
						"category": result.Category,
						"keywords": result.Keywords,
					},
				})
			}

			done++
			if done%progressEvery == 0 {
				percent := 10 + (done * 80 / max1(len(rows)))
				if percent > 90 {
					percent = 90
				}
				_ = progress.Report(groupCtx, percent, fmt.Sprintf("enriched %d/%d", done, len(rows)))
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

	if err := a.repo.BatchUpdateEnrichment(ctx, updates); err != nil {
		// A shared-resource write failure is logged, not fatal: results
		// were already computed, mirroring validation's non-failing DB
		// write policy.
		a.logger.ErrorContext(ctx, "batch enrichment write failed", "error", err)
	}

	payload, err := json.Marshal(enrichmentResult{
		EnrichedCount:     enriched,
		FailedCount:       failed,
		EnrichmentResults: entries,
	})
	if err != nil {
		return a2a.Failed(fmt.Errorf("marshal enrichment result: %w", err))
	}

	if err := progress.Report(ctx, 100, "enrichment complete"); err != nil {
		return a2a.Failed(err)
	}

	return a2a.Completed(a2a.ArtifactEnrichmentResult, payload, "application/json")
}

// skipInvalid drops bookmarks the validation stage marked invalid, when a
// validation artifact was merged into context.
func skipInvalid(rows []*bookmarks.Bookmark, validationStage map[string]any) []*bookmarks.Bookmark {
	if validationStage == nil {
		return rows
	}
	rawResults, ok := validationStage["validationResults"].([]any)
	if !ok {
		return rows
	}
	invalid := make(map[string]bool)
	for _, raw := range rawResults {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if valid, _ := entry["valid"].(bool); !valid {
			if id, ok := entry["bookmarkId"].(string); ok {
				invalid[id] = true
			}
		}
	}
	if len(invalid) == 0 {
		return rows
	}
	var filtered []*bookmarks.Bookmark
	for _, b := range rows {
		if !invalid[b.ID] {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
