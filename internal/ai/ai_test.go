package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockCompletionClientDefaultHeuristic(t *testing.T) {
	client := NewMockCompletionClient()
	result, err := client.Enrich(context.Background(), EnrichmentRequest{
		URL:      "https://example.com/go-concurrency",
		Title:    "Go Concurrency Patterns",
		Taxonomy: []string{"Technology", "News"},
	})

	require.NoError(t, err)
	require.Equal(t, "Technology", result.Category)
	require.Equal(t, 1, client.CallCount)
	require.Equal(t, "Go Concurrency Patterns", client.LastReq.Title)
}

func TestMockCompletionClientCustomFunc(t *testing.T) {
	client := NewMockCompletionClient()
	client.EnrichFunc = func(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error) {
		return &EnrichmentResult{Category: "Development", Tags: []string{"go"}}, nil
	}

	result, err := client.Enrich(context.Background(), EnrichmentRequest{Title: "foo"})
	require.NoError(t, err)
	require.Equal(t, "Development", result.Category)
}

func TestMockEmbeddingClientDeterministic(t *testing.T) {
	client := NewMockEmbeddingClient(1536)

	v1, err := client.Embed(context.Background(), "golang concurrency patterns")
	require.NoError(t, err)
	v2, err := client.Embed(context.Background(), "golang concurrency patterns")
	require.NoError(t, err)

	require.Len(t, v1, 1536)
	require.Equal(t, v1, v2)
	require.Equal(t, 1536, client.Dimensions())
}

func TestLocalVectorClientDistinctTextsDiffer(t *testing.T) {
	client := NewLocalVectorClient(64)

	a, err := client.Embed(context.Background(), "bookmark about rust")
	require.NoError(t, err)
	b, err := client.Embed(context.Background(), "bookmark about cooking")
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.Len(t, a, 64)
}

func TestParseEnrichmentResponsePlainJSON(t *testing.T) {
	response := `{"category":"Technology","tags":["go","concurrency"],"summary":"A guide.","keywords":["go"]}`
	result, err := parseEnrichmentResponse(response)
	require.NoError(t, err)
	require.Equal(t, "Technology", result.Category)
	require.Equal(t, []string{"go", "concurrency"}, result.Tags)
}

func TestParseEnrichmentResponseFencedJSON(t *testing.T) {
	response := "Here you go:\n```json\n{\"category\":\"News\",\"tags\":[\"a\",\"b\",\"c\",\"d\",\"e\",\"f\"],\"summary\":\"s\",\"keywords\":[]}\n```"
	result, err := parseEnrichmentResponse(response)
	require.NoError(t, err)
	require.Equal(t, "News", result.Category)
	require.Len(t, result.Tags, 5)
}

func TestParseEnrichmentResponseInvalidJSON(t *testing.T) {
	_, err := parseEnrichmentResponse("not json at all")
	require.Error(t, err)
}
