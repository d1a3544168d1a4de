package bookmarks

import (
	"context"
	"fmt"
	"time"
)

// ImportHistory is one row of import_history, the session record the
// Import Agent updates as it processes a file.
type ImportHistory struct {
	ID              string    `db:"id"`
	ImportID        string    `db:"import_id"`
	UserID          string    `db:"user_id"`
	FilePath        string    `db:"file_path"`
	TotalBookmarks  int       `db:"total_bookmarks"`
	InsertedCount   int       `db:"inserted_count"`
	DuplicateCount  int       `db:"duplicate_count"`
	DurationMs      int       `db:"duration_ms"`
	Created         time.Time `db:"created"`
}

// StartImport records the beginning of an import session.
func (r *Repository) StartImport(ctx context.Context, id, importID, userID, filePath string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO import_history (id, user_id, file_path, total_bookmarks, inserted_count, duplicate_count, duration_ms, created)
		VALUES ($1, $2, $3, 0, 0, 0, 0, $4)`,
		id, userID, filePath, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("start import history %s: %w", importID, err)
	}
	return nil
}

// FinishImport records the final counts for an import session.
func (r *Repository) FinishImport(ctx context.Context, id string, total, inserted, duplicates, durationMs int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE import_history SET total_bookmarks = $1, inserted_count = $2, duplicate_count = $3, duration_ms = $4
		WHERE id = $5`,
		total, inserted, duplicates, durationMs, id,
	)
	if err != nil {
		return fmt.Errorf("finish import history %s: %w", id, err)
	}
	return nil
}
