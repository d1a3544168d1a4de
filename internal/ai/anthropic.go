package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkoukk/tiktoken-go"
)

// maxPromptTokens bounds the page content folded into an enrichment
// prompt; content beyond this is truncated before the call, keeping cost
// and latency predictable regardless of page size.
const maxPromptTokens = 4000

// AnthropicConfig configures an AnthropicClient.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicClient implements CompletionClient against the Anthropic
// Messages API.
type AnthropicClient struct {
	config  AnthropicConfig
	client  anthropic.Client
	encoder *tiktoken.Tiktoken
	logger  *slog.Logger
}

// NewAnthropicClient builds an AnthropicClient. A failure to load the
// tiktoken encoder is non-fatal: prompts are sent untruncated in that case.
func NewAnthropicClient(config AnthropicConfig, logger *slog.Logger) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken encoder unavailable, prompts will not be truncated", "error", err)
		encoder = nil
	}

	return &AnthropicClient{
		config:  config,
		client:  anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		encoder: encoder,
		logger:  logger,
	}
}

// Enrich asks the model for a category (constrained to req.Taxonomy),
// up to 5 tags, a short summary, and keywords.
func (c *AnthropicClient) Enrich(ctx context.Context, req EnrichmentRequest) (*EnrichmentResult, error) {
	prompt := c.buildPrompt(req)

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic enrich: %w", err)
	}

	var response string
	for _, block := range message.Content {
		if block.Text != "" {
			response = block.Text
			break
		}
	}
	if response == "" {
		return nil, fmt.Errorf("anthropic enrich: empty response")
	}

	result, err := parseEnrichmentResponse(response)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to parse enrichment response", "error", err, "response", response)
		return nil, fmt.Errorf("anthropic enrich: %w", err)
	}
	return result, nil
}

func (c *AnthropicClient) buildPrompt(req EnrichmentRequest) string {
	var b strings.Builder
	b.WriteString("You are enriching a bookmark with structured metadata.\n\n")
	b.WriteString(fmt.Sprintf("URL: %s\nTitle: %s\n", req.URL, req.Title))
	if req.Description != "" {
		b.WriteString(fmt.Sprintf("Description: %s\n", c.truncate(req.Description)))
	}
	if len(req.Taxonomy) > 0 {
		b.WriteString(fmt.Sprintf("\nPick the single best category from this exact list: %s\n", strings.Join(req.Taxonomy, ", ")))
	}
	b.WriteString("\nRespond with a JSON object only:\n")
	b.WriteString(`{"category": "...", "tags": ["up to 5"], "summary": "one or two sentences", "keywords": ["..."]}`)
	return b.String()
}

// truncate bounds text to maxPromptTokens using the cl100k_base encoding,
// falling back to the original text when no encoder loaded.
func (c *AnthropicClient) truncate(text string) string {
	if c.encoder == nil {
		return text
	}
	tokens := c.encoder.Encode(text, nil, nil)
	if len(tokens) <= maxPromptTokens {
		return text
	}
	return c.encoder.Decode(tokens[:maxPromptTokens])
}

// parseEnrichmentResponse extracts the JSON object from a model response,
// unwrapping a markdown code fence if present since models commonly wrap
// JSON answers in ```json ... ``` fences.
func parseEnrichmentResponse(response string) (*EnrichmentResult, error) {
	jsonStr := response
	if idx := strings.Index(jsonStr, "```"); idx != -1 {
		rest := jsonStr[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end != -1 {
			jsonStr = strings.TrimSpace(rest[:end])
		}
	}
	if start := strings.Index(jsonStr, "{"); start != -1 {
		if end := strings.LastIndex(jsonStr, "}"); end != -1 && end > start {
			jsonStr = jsonStr[start : end+1]
		}
	}

	var raw struct {
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Summary  string   `json:"summary"`
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, fmt.Errorf("parse enrichment json: %w", err)
	}

	if len(raw.Tags) > 5 {
		raw.Tags = raw.Tags[:5]
	}

	return &EnrichmentResult{
		Category: raw.Category,
		Tags:     raw.Tags,
		Summary:  raw.Summary,
		Keywords: raw.Keywords,
	}, nil
}
