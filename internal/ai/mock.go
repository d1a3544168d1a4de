package ai

import (
	"context"
	"fmt"
	"strings"
)

// MockCompletionClient is a mock CompletionClient for testing. It allows
// custom decision logic via EnrichFunc; with no func set it falls back to
// a simple heuristic so callers don't need to stub every test case.
type MockCompletionClient struct {
	EnrichFunc func(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error)

	CallCount int
	LastReq   EnrichmentRequest
}

// NewMockCompletionClient returns a MockCompletionClient using the default
// heuristic unless overridden by assigning EnrichFunc.
func NewMockCompletionClient() *MockCompletionClient {
	return &MockCompletionClient{}
}

func (m *MockCompletionClient) Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error) {
	m.CallCount++
	m.LastReq = req

	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, req)
	}

	category := "Other"
	if len(req.Taxonomy) > 0 {
		category = req.Taxonomy[0]
	}

	return &EnrichmentResult{
		Category: category,
		Tags:     []string{strings.ToLower(firstWord(req.Title))},
		Summary:  fmt.Sprintf("A page about %s.", req.Title),
		Keywords: []string{strings.ToLower(firstWord(req.Title))},
	}, nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return "page"
	}
	return fields[0]
}

// MockEmbeddingClient is a mock EmbeddingClient for testing. Embeddings are
// deterministic given the same text, so assertions can compare vectors
// without floating-point fuzziness from a real provider.
type MockEmbeddingClient struct {
	EmbedFunc func(ctx context.Context, text string) ([]float32, error)
	Dims      int

	CallCount int
	LastText  string
}

// NewMockEmbeddingClient returns a MockEmbeddingClient producing dims-wide
// deterministic vectors unless overridden by assigning EmbedFunc.
func NewMockEmbeddingClient(dims int) *MockEmbeddingClient {
	return &MockEmbeddingClient{Dims: dims}
}

func (m *MockEmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	m.CallCount++
	m.LastText = text

	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text)
	}
	return hashEmbed(text, m.Dims), nil
}

func (m *MockEmbeddingClient) Dimensions() int { return m.Dims }
