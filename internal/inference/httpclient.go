package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implements Suggester against the classification endpoint of
// the summarization service.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

type classifyRequest struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
}

type classifyResponse struct {
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
}

// NewHTTPClient creates an inference client with a finite request timeout.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) Name() string {
	return "inference-http"
}

// Suggest asks the service for tags and a category fitting the bookmark.
func (c *HTTPClient) Suggest(ctx context.Context, url, title, summary string) (*Suggestion, error) {
	payload, err := json.Marshal(classifyRequest{URL: url, Title: title, Summary: summary})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/classify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Linkmark/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("inference service returned status %d", resp.StatusCode)
	}

	var result classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	suggestion := &Suggestion{Category: strings.TrimSpace(result.Category)}
	for _, tag := range result.Tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			suggestion.Tags = append(suggestion.Tags, tag)
		}
	}
	return suggestion, nil
}
