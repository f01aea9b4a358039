package summarize

import (
	"context"
	"errors"
	"fmt"
)

// Client defines the interface for summarization providers.
type Client interface {
	// Summarize produces a short summary for the page at url. The optional
	// title is passed along as a hint for the model.
	Summarize(ctx context.Context, url, title string) (string, error)
	Name() string
}

// UpstreamError reports a non-2xx response from the summarization service.
// The upstream response body is never carried here, so it cannot leak to
// end users.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("summarization service returned status %d", e.StatusCode)
}

// ErrEmptySummary is returned when the service responds successfully but
// with no usable content.
var ErrEmptySummary = errors.New("summarization service returned an empty summary")
