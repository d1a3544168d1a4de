package categorization

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bookmarkhub/a2a/internal/a2a"
	"github.com/bookmarkhub/a2a/internal/agents/taskctx"
	"github.com/bookmarkhub/a2a/internal/bookmarks"
	"github.com/bookmarkhub/a2a/internal/runtime"
	"github.com/bookmarkhub/a2a/internal/taxonomy"
)

// Agent is the Categorization Agent: it seeds a user's default category
// taxonomy on first use, scores each bookmark against the user's category
// list via internal/taxonomy, and writes back category assignments in
// one batch.
type Agent struct {
	repo   *bookmarks.Repository
	logger *slog.Logger
}

// New returns a Categorization Agent backed by repo.
func New(repo *bookmarks.Repository, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{repo: repo, logger: logger}
}

func (a *Agent) Capabilities() a2a.CapabilityCard {
	return a2a.CapabilityCard{
		AgentType:   a2a.AgentCategorization,
		Description: "Assigns bookmarks to categories using confidence-scored matching against the user's category list.",
		Inputs: []a2a.InputField{
			{Name: "bookmarkIds", Type: "[]string", Required: true, Description: "Bookmarks to categorize"},
			{Name: "userId", Type: "string", Required: true, Description: "Owning user id"},
		},
		Outputs: a2a.OutputSpec{Type: a2a.ArtifactCategorizationResult, Description: "Per-bookmark category assignments and confidence"},
	}
}

func (a *Agent) Validate(ctx context.Context, taskContext map[string]any) error {
	return runtime.RequireFields(taskContext, a.Capabilities().Inputs)
}

type categorizationEntry struct {
	BookmarkID   string  `json:"bookmarkId"`
	CategoryID   string  `json:"categoryId"`
	CategoryName string  `json:"categoryName"`
	Confidence   float64 `json:"confidence"`
	Reason       string  `json:"reason"`
}

type categorizationResult struct {
	CategorizedCount     int                    `json:"categorizedCount"`
	FailedCount          int                    `json:"failedCount"`
	CategorizationResults []categorizationEntry `json:"categorizationResults"`
	CategoryDistribution map[string]int         `json:"categoryDistribution"`
}

func (a *Agent) Process(ctx context.Context, task *a2a.Task, progress a2a.ProgressReporter) a2a.Result {
	userID := taskctx.String(task.Context, "userId")
	bookmarkIDs := taskctx.StringSlice(task.Context, "bookmarkIds")

	if err := a.repo.EnsureDefaultCategories(ctx, userID); err != nil {
		return a2a.Failed(fmt.Errorf("seed default categories: %w", err))
	}

	rows, err := a.repo.GetByIDs(ctx, userID, bookmarkIDs)
	if err != nil {
		return a2a.Failed(fmt.Errorf("load bookmarks: %w", err))
	}

	categories, err := a.repo.ListCategories(ctx, userID)
	if err != nil {
		return a2a.Failed(fmt.Errorf("list categories: %w", err))
	}
	categoryByName := make(map[string]*bookmarks.Category, len(categories))
	categoryNames := make([]string, 0, len(categories))
	for _, c := range categories {
		categoryByName[c.Name] = c
		categoryNames = append(categoryNames, c.Name)
	}

	storedRules, err := a.repo.ListCategoryRules(ctx, userID)
	if err != nil {
		return a2a.Failed(fmt.Errorf("list category rules: %w", err))
	}
	rules := toTaxonomyRules(storedRules, categoryByName)
	rules = append(rules, parseContextRules(taskctx.Map(task.Context, "categoryMapping"))...)

	aiCategoryByBookmark := aiCategoriesFromEnrichment(taskctx.Stage(task.Context, a2a.AgentEnrichment))

	var entries []categorizationEntry
	updates := make([]bookmarks.CategorizationUpdate, 0, len(rows))
	distribution := make(map[string]int)
	var categorized, failed int

	for i, b := range rows {
		if progress.Cancelled() {
			return a2a.Failed(a2a.ErrCancelled)
		}

		match := taxonomy.Categorize(taxonomy.Input{
			URL:           b.URL,
			Title:         b.Title,
			Tags:          b.AITags,
			AICategory:    aiCategoryByBookmark[b.ID],
			Rules:         rules,
			Categories:    categoryNames,
			KnownTaxonomy: a2a.DefaultCategoryTaxonomy,
		})

		category, ok := categoryByName[match.CategoryName]
		if !ok {
			category, err = a.repo.FindOrCreateCategory(ctx, userID, match.CategoryName)
			if err != nil {
				failed++
				a.logger.ErrorContext(ctx, "find-or-create category failed", "bookmark_id", b.ID, "error", err)
				continue
			}
			categoryByName[match.CategoryName] = category
			categoryNames = append(categoryNames, match.CategoryName)
		}

		entries = append(entries, categorizationEntry{
			BookmarkID:   b.ID,
			CategoryID:   category.ID,
			CategoryName: category.Name,
			Confidence:   match.Confidence,
			Reason:       match.Reason,
		})
		updates = append(updates, bookmarks.CategorizationUpdate{
			BookmarkID: b.ID,
			CategoryID: category.ID,
			Data:       map[string]any{"confidence": match.Confidence, "reason": match.Reason},
		})
		distribution[category.Name]++
		categorized++

		if (i+1)%5 == 0 {
			percent := 10 + ((i + 1) * 85 / max1(len(rows)))
			if percent > 95 {
				percent = 95
			}
			if err := progress.Report(ctx, percent, fmt.Sprintf("categorized %d/%d", i+1, len(rows))); err != nil {
				return a2a.Failed(err)
			}
		}
	}

	if err := a.repo.BatchUpdateCategorization(ctx, updates); err != nil {
		a.logger.ErrorContext(ctx, "batch categorization write failed", "error", err)
	}

	payload, err := json.Marshal(categorizationResult{
		CategorizedCount:      categorized,
		FailedCount:           failed,
		CategorizationResults: entries,
		CategoryDistribution:  distribution,
	})
	if err != nil {
		return a2a.Failed(fmt.Errorf("marshal categorization result: %w", err))
	}

	if err := progress.Report(ctx, 100, "categorization complete"); err != nil {
		return a2a.Failed(err)
	}

	return a2a.Completed(a2a.ArtifactCategorizationResult, payload, "application/json")
}

func toTaxonomyRules(stored []*bookmarks.CategoryRule, byName map[string]*bookmarks.Category) []taxonomy.Rule {
	nameByID := make(map[string]string, len(byName))
	for name, c := range byName {
		nameByID[c.ID] = name
	}
	rules := make([]taxonomy.Rule, 0, len(stored))
	for _, r := range stored {
		rules = append(rules, taxonomy.Rule{
			Type:         r.RuleType,
			Pattern:      r.Pattern,
			CategoryName: nameByID[r.CategoryID],
		})
	}
	return rules
}

// parseContextRules decodes the optional categoryMapping task input: a
// list of {type, pattern, categoryName} objects the caller passes for
// this run without having persisted them as category_rules rows.
func parseContextRules(mapping map[string]any) []taxonomy.Rule {
	if mapping == nil {
		return nil
	}
	raw, ok := mapping["rules"].([]any)
	if !ok {
		return nil
	}
	var rules []taxonomy.Rule
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ruleType, _ := entry["type"].(string)
		pattern, _ := entry["pattern"].(string)
		categoryName, _ := entry["categoryName"].(string)
		if ruleType == "" || pattern == "" || categoryName == "" {
			continue
		}
		rules = append(rules, taxonomy.Rule{Type: ruleType, Pattern: pattern, CategoryName: categoryName})
	}
	return rules
}

func aiCategoriesFromEnrichment(enrichmentStage map[string]any) map[string]string {
	out := make(map[string]string)
	if enrichmentStage == nil {
		return out
	}
	results, ok := enrichmentStage["enrichmentResults"].([]any)
	if !ok {
		return out
	}
	for _, raw := range results {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		bookmarkID, _ := entry["bookmarkId"].(string)
		category, _ := entry["category"].(string)
		if bookmarkID != "" && category != "" {
			out[bookmarkID] = category
		}
	}
	return out
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
