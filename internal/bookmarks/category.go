package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category is one row of bookmark_categories.
type Category struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	IsDefault bool      `db:"is_default"`
	Created   time.Time `db:"created"`
}

// CategoryRule is one row of category_rules: a user-defined
// URL-pattern-or-tag rule that short-circuits categorization confidence
// scoring.
type CategoryRule struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	RuleType   string    `db:"rule_type"` // "url_pattern" | "tag"
	Pattern    string    `db:"pattern"`
	CategoryID string    `db:"category_id"`
	Created    time.Time `db:"created"`
}

// defaultTaxonomy is the fixed 11-name set every user's category list is
// seeded with (spec Glossary: "Default category taxonomy"). Colors are
// deterministic so re-seeding never produces visibly different results.
var defaultTaxonomy = []struct {
	Name  string
	Color string
}{
	{"Development", "#2563eb"},
	{"AI/ML", "#7c3aed"},
	{"Technology", "#0891b2"},
	{"Business", "#059669"},
	{"Education", "#d97706"},
	{"News", "#dc2626"},
	{"Entertainment", "#db2777"},
	{"Reference", "#4338ca"},
	{"Tools", "#65a30d"},
	{"Personal", "#ea580c"},
	{"Other", "#6b7280"},
}

// OtherCategoryName is the reserved fallback category for low-confidence
// categorization results.
const OtherCategoryName = "Other"

// EnsureDefaultCategories seeds userID's full default taxonomy the first
// time it is invoked for that user. Each row uses ON CONFLICT DO NOTHING
// against the (user_id, name) unique index, making repeat calls a no-op
// instead of needing a separate "already seeded" check.
func (r *Repository) EnsureDefaultCategories(ctx context.Context, userID string) error {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("begin default category seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, cat := range defaultTaxonomy {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookmark_categories (id, user_id, name, color, is_default, created)
			VALUES ($1, $2, $3, $4, true, $5)
			ON CONFLICT (user_id, name) DO NOTHING`,
			uuid.NewString(), userID, cat.Name, cat.Color, now,
		)
		if err != nil {
			return fmt.Errorf("seed category %s for user %s: %w", cat.Name, userID, err)
		}
	}
	return tx.Commit()
}

// ListCategories returns userID's full category list.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]*Category, error) {
	var categories []*Category
	if err := r.db.SelectContext(ctx, &categories,
		`SELECT * FROM bookmark_categories WHERE user_id = $1 ORDER BY name`, userID); err != nil {
		return nil, fmt.Errorf("list categories for user %s: %w", userID, err)
	}
	return categories, nil
}

// ListCategoryRules returns userID's custom URL/tag categorization rules.
func (r *Repository) ListCategoryRules(ctx context.Context, userID string) ([]*CategoryRule, error) {
	var rules []*CategoryRule
	if err := r.db.SelectContext(ctx, &rules,
		`SELECT * FROM category_rules WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("list category rules for user %s: %w", userID, err)
	}
	return rules, nil
}

// FindOrCreateCategory returns userID's category named name, creating it
// (non-default, default color) if it doesn't exist yet. Used for AI
// taxonomy suggestions that fall outside the seeded default set (spec
// §4.6.4: "find-or-create that category").
func (r *Repository) FindOrCreateCategory(ctx context.Context, userID, name string) (*Category, error) {
	var existing Category
	err := r.db.GetContext(ctx, &existing,
		`SELECT * FROM bookmark_categories WHERE user_id = $1 AND name = $2`, userID, name)
	if err == nil {
		return &existing, nil
	}

	id := uuid.NewString()
	now := time.Now()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bookmark_categories (id, user_id, name, color, is_default, created)
		VALUES ($1, $2, $3, $4, false, $5)
		ON CONFLICT (user_id, name) DO NOTHING`,
		id, userID, name, defaultColorFor(name), now,
	)
	if err != nil {
		return nil, fmt.Errorf("create category %s for user %s: %w", name, userID, err)
	}

	if err := r.db.GetContext(ctx, &existing,
		`SELECT * FROM bookmark_categories WHERE user_id = $1 AND name = $2`, userID, name); err != nil {
		return nil, fmt.Errorf("load created category %s for user %s: %w", name, userID, err)
	}
	return &existing, nil
}

// defaultColorFor returns the deterministic color for a known taxonomy
// name, or a neutral gray for a user-coined category.
func defaultColorFor(name string) string {
	for _, cat := range defaultTaxonomy {
		if cat.Name == name {
			return cat.Color
		}
	}
	return "#9ca3af"
}
