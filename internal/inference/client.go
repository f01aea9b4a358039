package inference

import "context"

// Suggestion carries best-effort tag and category proposals for a bookmark.
type Suggestion struct {
	Tags     []string
	Category string
}

// Suggester defines the interface for tag/category inference providers.
// Inference is an enrichment: callers must treat any failure as recoverable.
type Suggester interface {
	Suggest(ctx context.Context, url, title, summary string) (*Suggestion, error)
	Name() string
}
