package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ContentPublisher/internal/domain"
	"ContentPublisher/internal/ports"
)

// Client talks to an external inference service for fact extraction and AI formatting.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.AIScorer = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ExtractFacts asks the service for structured facts found in the body.
func (c *Client) ExtractFacts(ctx context.Context, body string) ([]domain.StructuredFact, error) {
	var resp struct {
		Facts []domain.StructuredFact `json:"facts"`
	}

	if err := c.post(ctx, "/facts", map[string]any{"content": body}, &resp); err != nil {
		return nil, fmt.Errorf("extract facts: %w", err)
	}
	if resp.Facts == nil {
		resp.Facts = []domain.StructuredFact{}
	}

	return resp.Facts, nil
}

// GenerateAIFormat requests the AI-readable rendering of the body.
func (c *Client) GenerateAIFormat(ctx context.Context, body string) (string, error) {
	var resp struct {
		Format string `json:"format"`
	}

	if err := c.post(ctx, "/format", map[string]any{"content": body}, &resp); err != nil {
		return "", fmt.Errorf("generate ai format: %w", err)
	}

	return resp.Format, nil
}

// AnalyzeContent requests a readability analysis.
func (c *Client) AnalyzeContent(ctx context.Context, body string) (ports.AIReport, error) {
	var resp struct {
		ReadabilityScore float64 `json:"readabilityScore"`
	}

	if err := c.post(ctx, "/analyze", map[string]any{"content": body}, &resp); err != nil {
		return ports.AIReport{}, fmt.Errorf("analyze content: %w", err)
	}

	return ports.AIReport{ReadabilityScore: resp.ReadabilityScore}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return fmt.Errorf("unexpected status %s, close body: %v", resp.Status, closeErr)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		_ = resp.Body.Close()
		return fmt.Errorf("decode response: %w", err)
	}

	if err := resp.Body.Close(); err != nil {
		return fmt.Errorf("close response body: %w", err)
	}

	return nil
}
