// Package metadata derives document metadata (summary, category, tags) with
// an LLM at ingestion time. Category feeds the search facet dimensions.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
)

// DefaultMaxTokens is the maximum content length before truncation (in tokens).
const DefaultMaxTokens = 16000

// Categories a brand document can be filed under. The model picks one; an
// unknown answer falls back to "general".
var knownCategories = []string{
	"guidelines",
	"voice",
	"visual-identity",
	"product",
	"campaigns",
	"legal",
	"general",
}

// DocumentMetadata contains LLM-generated metadata for a document.
type DocumentMetadata struct {
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Generator produces metadata using GPT-4o.
type Generator struct {
	client    *openai.Client
	maxTokens int
}

// NewGenerator creates a metadata generator with the given OpenAI client.
// Optional maxTokens parameter sets truncation limit (defaults to
// DefaultMaxTokens).
func NewGenerator(client *openai.Client, maxTokens ...int) *Generator {
	max := DefaultMaxTokens
	if len(maxTokens) > 0 && maxTokens[0] > 0 {
		max = maxTokens[0]
	}
	return &Generator{
		client:    client,
		maxTokens: max,
	}
}

// GenerateMetadata analyzes document content and produces a summary, a facet
// category, and a tag list.
func (g *Generator) GenerateMetadata(ctx context.Context, path, content string) (*DocumentMetadata, error) {
	truncated := g.truncateContent(content)

	prompt := fmt.Sprintf(`Analyze this brand documentation and provide:
1. A concise summary (1-2 sentences) capturing the main topic and key points
2. A single category, one of: %s
3. A list of key brand concepts mentioned (colors, logos, typography, tone rules, product names)

Document path: %s

Document content:
%s

Respond in JSON format:
{"summary": "Brief description of what this document covers", "category": "guidelines", "tags": ["Tag1", "Tag2"]}`,
		strings.Join(knownCategories, ", "), path, truncated)

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4o,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	var metadata DocumentMetadata
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	metadata.Category = normalizeCategory(metadata.Category)

	return &metadata, nil
}

// normalizeCategory maps the model's answer onto the known category set.
func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	for _, known := range knownCategories {
		if category == known {
			return known
		}
	}
	return "general"
}

// truncateContent truncates content to fit within token limits.
// Uses rough estimate of 4 characters per token.
func (g *Generator) truncateContent(content string) string {
	maxChars := g.maxTokens * 4

	if len(content) <= maxChars {
		return content
	}

	log.Printf("Warning: Truncating content from %d to %d characters (estimated %d tokens)",
		len(content), maxChars, g.maxTokens)

	return content[:maxChars]
}
