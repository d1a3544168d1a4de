package bookmarks

import "time"

// Status is the monotone pipeline-stage flag on a bookmark (spec
// Glossary: "Bookmark status").
type Status string

const (
	StatusImported Status = "imported"
	StatusValidated Status = "validated"
	StatusEnriched  Status = "enriched"
	StatusFailed    Status = "failed"
	StatusArchived  Status = "archived"
)

// Bookmark is one row of the bookmarks table.
type Bookmark struct {
	ID                 string      `db:"id"`
	UserID             string      `db:"user_id"`
	URL                string      `db:"url"`
	Title              string      `db:"title"`
	Description        string      `db:"description"`
	Status             string      `db:"status"`
	CategoryID         *string     `db:"category_id"`
	AITags             jsonStrings `db:"ai_tags"`
	AISummary          string      `db:"ai_summary"`
	EnrichmentData     jsonObject  `db:"enrichment_data"`
	CategorizationData jsonObject  `db:"categorization_data"`
	IsValid            *bool       `db:"is_valid"`
	LastValidatedAt    *time.Time  `db:"last_validated_at"`
	ValidationErrors   jsonStrings `db:"validation_errors"`
	Metadata           jsonObject  `db:"metadata"`
	HasEmbedding       bool        `db:"has_embedding"`
	Created            time.Time   `db:"created"`
	Updated            time.Time   `db:"updated"`
}

// NewBookmark is the input shape for a single Import Agent insert.
type NewBookmark struct {
	URL         string
	Title       string
	Description string
	Tags        []string
}
