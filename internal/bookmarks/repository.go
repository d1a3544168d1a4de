package bookmarks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bookmarkhub/a2a/internal/store"
)

// Repository persists bookmarks and their per-stage enrichment data.
type Repository struct {
	db *store.DB
}

// NewRepository returns a Repository backed by db.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// ChunkResult summarizes one InsertChunk call, the shape the Import Agent
// accumulates across all chunks into its artifact.
type ChunkResult struct {
	InsertedIDs   []string
	DuplicateIDs  []string
	InsertedCount int
	DuplicateCount int
}

// InsertChunk inserts rows for userID inside its own transaction: a
// (user_id, url) conflict updates the title instead of failing, and the
// existing row's id is returned in DuplicateIDs. A chunk failure rolls
// back only this chunk; the caller advances to the next one rather than
// aborting the whole import.
func (r *Repository) InsertChunk(ctx context.Context, userID string, rows []NewBookmark) (*ChunkResult, error) {
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert chunk: %w", err)
	}
	defer tx.Rollback()

	result := &ChunkResult{}
	now := time.Now()

	for _, row := range rows {
		id := uuid.NewString()
		var returnedID string
		var inserted bool
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO bookmarks (id, user_id, url, title, description, status, ai_tags, created, updated)
			VALUES ($1, $2, $3, $4, $5, 'imported', $6, $7, $7)
			ON CONFLICT (user_id, url) DO UPDATE SET title = EXCLUDED.title, updated = $7
			RETURNING id, (xmax = 0) AS inserted`,
			id, userID, row.URL, row.Title, row.Description, jsonStrings(row.Tags), now,
		).Scan(&returnedID, &inserted)
		if err != nil {
			return nil, fmt.Errorf("insert bookmark %s: %w", row.URL, err)
		}

		if inserted {
			result.InsertedIDs = append(result.InsertedIDs, returnedID)
			result.InsertedCount++
		} else {
			result.DuplicateIDs = append(result.DuplicateIDs, returnedID)
			result.DuplicateCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert chunk: %w", err)
	}
	return result, nil
}

// GetByIDs loads bookmarks scoped to userID, enforcing ownership at the
// query-filter level.
func (r *Repository) GetByIDs(ctx context.Context, userID string, ids []string) ([]*Bookmark, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM bookmarks WHERE user_id = ? AND id IN (?)`, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("build get-by-ids query: %w", err)
	}

	var rows []*Bookmark
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get bookmarks by ids: %w", err)
	}
	return rows, nil
}

// ValidationUpdate is one bookmark's outcome from the Validation Agent.
type ValidationUpdate struct {
	BookmarkID string
	IsValid    bool
	Metadata   map[string]any
	Errors     []string
}

// BatchUpdateValidation flushes every accumulated validation result in one
// transaction, after concurrent processing completes. A write failure is
// logged by the caller and must not fail the owning task: the agent has
// already computed every result regardless of whether the write lands.
func (r *Repository) BatchUpdateValidation(ctx context.Context, updates []ValidationUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("begin validation batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, u := range updates {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookmarks SET
				is_valid = $1,
				last_validated_at = $2,
				validation_errors = $3,
				metadata = metadata || $4::jsonb,
				status = CASE WHEN $1 THEN 'validated' ELSE status END,
				updated = $2
			WHERE id = $5`,
			u.IsValid, now, jsonStrings(u.Errors), jsonObject(u.Metadata), u.BookmarkID,
		)
		if err != nil {
			return fmt.Errorf("update validation for bookmark %s: %w", u.BookmarkID, err)
		}
	}
	return tx.Commit()
}

// EnrichmentUpdate is one bookmark's outcome from the Enrichment Agent.
type EnrichmentUpdate struct {
	BookmarkID string
	Tags       []string
	Summary    string
	Data       map[string]any
}

// BatchUpdateEnrichment flushes every accumulated enrichment result in one
// transaction, after concurrent processing completes.
func (r *Repository) BatchUpdateEnrichment(ctx context.Context, updates []EnrichmentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("begin enrichment batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, u := range updates {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookmarks SET
				ai_tags = $1, ai_summary = $2, enrichment_data = $3,
				status = 'enriched', updated = $4
			WHERE id = $5`,
			jsonStrings(u.Tags), u.Summary, jsonObject(u.Data), now, u.BookmarkID,
		)
		if err != nil {
			return fmt.Errorf("update enrichment for bookmark %s: %w", u.BookmarkID, err)
		}
	}
	return tx.Commit()
}

// CategorizationUpdate is one bookmark's outcome from the Categorization
// Agent.
type CategorizationUpdate struct {
	BookmarkID string
	CategoryID string
	Data       map[string]any
}

// BatchUpdateCategorization flushes categorization results in one
// transaction.
func (r *Repository) BatchUpdateCategorization(ctx context.Context, updates []CategorizationUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx)
	if err != nil {
		return fmt.Errorf("begin categorization batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, u := range updates {
		_, err := tx.ExecContext(ctx, `
			UPDATE bookmarks SET category_id = $1, categorization_data = $2, updated = $3
			WHERE id = $4`,
			u.CategoryID, jsonObject(u.Data), now, u.BookmarkID,
		)
		if err != nil {
			return fmt.Errorf("update categorization for bookmark %s: %w", u.BookmarkID, err)
		}
	}
	return tx.Commit()
}

// MarkEmbedded flags bookmarks as having a current embedding after the
// Embedding Agent successfully writes their vectors.
func (r *Repository) MarkEmbedded(ctx context.Context, bookmarkIDs []string) error {
	if len(bookmarkIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE bookmarks SET has_embedding = true, updated = ? WHERE id IN (?)`, time.Now(), bookmarkIDs)
	if err != nil {
		return fmt.Errorf("build mark-embedded query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("mark bookmarks embedded: %w", err)
	}
	return nil
}

// WithoutEmbedding filters ids down to bookmarks that currently lack an
// embedding, for the Embedding Agent's regenerate=false path.
func (r *Repository) WithoutEmbedding(ctx context.Context, userID string, ids []string) ([]string, error) {
	all, err := r.GetByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}
	var filtered []string
	for _, b := range all {
		if !b.HasEmbedding {
			filtered = append(filtered, b.ID)
		}
	}
	return filtered, nil
}
