package ai

import "context"

// EnrichmentRequest carries the bookmark fields an enrichment call needs
// to produce a category, tags, summary, and keywords.
type EnrichmentRequest struct {
	URL         string
	Title       string
	Description string
	Taxonomy    []string // closed set of category names the result must pick from
}

// EnrichmentResult is the model's judgment about a single bookmark.
type EnrichmentResult struct {
	Category string
	Tags     []string
	Summary  string
	Keywords []string
}

// CompletionClient is the interface the Enrichment Agent uses to turn a
// bookmark's page content into structured metadata. Implementations must
// be safe for concurrent use: the agent calls Enrich from a worker pool.
type CompletionClient interface {
	Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error)
}

// EmbeddingClient is the interface the Embedding Agent uses to turn a
// bookmark's textual representation into a fixed-dimension vector.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
