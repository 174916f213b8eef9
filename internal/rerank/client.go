// Package rerank calls an external cross-encoder relevance service. The wire
// format follows the common rerank-API shape: the query and candidate texts
// go out, one relevance score per text comes back.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// DefaultModel is used when neither the request nor the client names one.
const DefaultModel = "rerank-v3.5"

// Client talks to a rerank service over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a rerank client. model may be empty, in which case
// DefaultModel applies. apiKey may be empty for unauthenticated services.
func NewClient(baseURL, apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type rerankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type rerankResponse struct {
	Results []struct {
		Index          int     `json:"index"`
		RelevanceScore float64 `json:"relevance_score"`
	} `json:"results"`
}

// Score sends the query and documents to the rerank service and returns one
// relevance score per document, in input order. Rate-limit and server errors
// retry with exponential backoff; anything else fails immediately.
func (c *Client) Score(ctx context.Context, query, model string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if model == "" {
		model = c.model
	}

	payload, err := json.Marshal(rerankRequest{
		Model:     model,
		Query:     query,
		Documents: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	var parsed rerankResponse
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/rerank", bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("rerank service returned %d", resp.StatusCode)
		default:
			return backoff.Permanent(fmt.Errorf("rerank service returned %d: %s", resp.StatusCode, body))
		}

		parsed = rerankResponse{}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("decode rerank response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("rerank request: %w", err)
	}

	scores := make([]float64, len(texts))
	seen := make([]bool, len(texts))
	for _, result := range parsed.Results {
		if result.Index < 0 || result.Index >= len(texts) {
			return nil, fmt.Errorf("rerank response index %d out of range", result.Index)
		}
		scores[result.Index] = result.RelevanceScore
		seen[result.Index] = true
	}
	for i, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("rerank response missing score for document %d", i)
		}
	}
	return scores, nil
}
