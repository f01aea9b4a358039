package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HTTPClient implements Client against the summarization service's HTTP API.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

type summarizeRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

// NewHTTPClient creates a summarization client. The timeout bounds every
// request and must be finite; a zero value falls back to 15 seconds.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *HTTPClient) Name() string {
	return "summarizer-http"
}

// Summarize requests a summary for the given URL.
func (c *HTTPClient) Summarize(ctx context.Context, url, title string) (string, error) {
	payload, err := json.Marshal(summarizeRequest{URL: url, Title: title})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/summarize"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Linkmark/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call summarization service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &UpstreamError{StatusCode: resp.StatusCode}
	}

	var result summarizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	summary := strings.TrimSpace(result.Summary)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}
