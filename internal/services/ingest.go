// Package services holds the bookmark ingestion orchestrator.
//
// Ingestion turns a raw URL into a persisted, hydrated bookmark:
// validate -> summarize -> persist -> infer tags/category -> hydrate.
// Summarization and inference are enrichments whose failure degrades the
// result; a store write failure aborts the whole operation.
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/hydrate"
	"github.com/linkmarkhq/linkmark/internal/inference"
	"github.com/linkmarkhq/linkmark/internal/summarize"
)

// IngestState identifies the stage an ingestion request is in. Terminal
// states are StateDone and StateAborted.
type IngestState string

const (
	StateValidating  IngestState = "validating"
	StateSummarizing IngestState = "summarizing"
	StatePersisting  IngestState = "persisting"
	StateHydrating   IngestState = "hydrating"
	StateDone        IngestState = "done"
	StateAborted     IngestState = "aborted"
)

var (
	// ErrInvalidInput marks a caller error: empty or malformed URL,
	// missing user. Nothing is written to the store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistenceFailed marks a store write failure. The operation
	// aborts with no partial bookmark visible to readers.
	ErrPersistenceFailed = errors.New("persistence failed")
)

// Diagnostic records a recoverable failure absorbed during ingestion.
type Diagnostic struct {
	Stage   IngestState `json:"stage"`
	Message string      `json:"message"`
}

// IngestResult is the outcome of a successful ingestion. Diagnostics list
// the enrichment steps that failed; PartialHydration is set when the final
// hydration could not complete and Bookmark carries scalar fields only.
type IngestResult struct {
	Bookmark         *hydrate.Bookmark `json:"bookmark"`
	Diagnostics      []Diagnostic      `json:"diagnostics,omitempty"`
	PartialHydration bool              `json:"partialHydration,omitempty"`
}

// BookmarkStore is the subset of the bookmark repository ingestion needs.
type BookmarkStore interface {
	CreateBookmark(ctx context.Context, b *entities.Bookmark) error
	AddTag(ctx context.Context, bookmarkID, tagID string) error
	SetCategory(ctx context.Context, bookmarkID, categoryID string) error
}

// TaxonomyStore resolves suggested tag and category names to entities.
type TaxonomyStore interface {
	GetOrCreateTag(ctx context.Context, name, userID string) (*entities.Tag, error)
	GetCategoryByName(ctx context.Context, name, userID string) (*entities.Category, error)
}

// SummaryRetryEnqueuer schedules an asynchronous summarization retry for a
// bookmark whose inline summarization failed.
type SummaryRetryEnqueuer interface {
	EnqueueSummarize(ctx context.Context, bookmarkID string) error
}

// IngestService orchestrates the add-bookmark flow.
type IngestService struct {
	store      BookmarkStore
	taxonomy   TaxonomyStore
	resolver   hydrate.Resolver
	summarizer summarize.Client    // nil disables summarization
	suggester  inference.Suggester // nil disables tag/category inference
	retry      SummaryRetryEnqueuer
	policy     config.HydrationPolicy
}

// NewIngestService creates an ingestion orchestrator. summarizer, suggester
// and retry may be nil; the corresponding enrichment is then skipped.
func NewIngestService(
	store BookmarkStore,
	taxonomy TaxonomyStore,
	resolver hydrate.Resolver,
	summarizer summarize.Client,
	suggester inference.Suggester,
	policy config.HydrationPolicy,
) *IngestService {
	return &IngestService{
		store:      store,
		taxonomy:   taxonomy,
		resolver:   resolver,
		summarizer: summarizer,
		suggester:  suggester,
		policy:     policy,
	}
}

// SetRetryEnqueuer wires the async summarization retry queue. Optional.
func (s *IngestService) SetRetryEnqueuer(retry SummaryRetryEnqueuer) {
	s.retry = retry
}

// Ingest runs the full add-bookmark flow for a user. Two calls with the same
// URL create two distinct bookmarks; deduplication is the caller's concern.
func (s *IngestService) Ingest(ctx context.Context, userID, rawURL, titleHint string) (*IngestResult, error) {
	// Validating
	parsed, err := validateURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	title := strings.TrimSpace(titleHint)
	if title == "" {
		title = defaultTitle(parsed)
	}

	result := &IngestResult{}

	// Summarizing: failure here degrades the bookmark, it never aborts it.
	summary := ""
	summarizeFailed := false
	if s.summarizer != nil {
		summary, err = s.summarizer.Summarize(ctx, parsed.String(), title)
		if err != nil {
			summarizeFailed = true
			summary = ""
			log.Printf("Summarization failed for %s: %v", parsed.String(), err)
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StateSummarizing,
				Message: summarizeMessage(err),
			})
		}
	}

	// Persisting: shielded from caller cancellation so a disconnect cannot
	// leave a half-committed write behind.
	bookmark := &entities.Bookmark{
		UserID:  userID,
		URL:     parsed.String(),
		Title:   title,
		Summary: summary,
	}
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.CreateBookmark(persistCtx, bookmark); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	if summarizeFailed && s.retry != nil {
		if err := s.retry.EnqueueSummarize(persistCtx, bookmark.ID); err != nil {
			log.Printf("Failed to enqueue summary retry for %s: %v", bookmark.ID, err)
		}
	}

	// Tag/category inference: best-effort, after the base row is durable.
	if s.suggester != nil {
		s.applySuggestions(persistCtx, bookmark, result)
	}

	// Hydrating: a failure here is reported, never rolled back.
	hydrated, err := hydrate.Hydrate(ctx, bookmark, s.resolver, s.policy)
	if err != nil {
		result.Bookmark = hydrate.Scalars(bookmark)
		result.PartialHydration = true
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   StateHydrating,
			Message: err.Error(),
		})
		return result, nil
	}

	result.Bookmark = hydrated.Bookmark
	for _, d := range hydrated.Dangling {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   StateHydrating,
			Message: fmt.Sprintf("dangling %s reference: %s", d.Kind, d.ID),
		})
	}
	return result, nil
}

func (s *IngestService) applySuggestions(ctx context.Context, bookmark *entities.Bookmark, result *IngestResult) {
	suggestion, err := s.suggester.Suggest(ctx, bookmark.URL, bookmark.Title, bookmark.Summary)
	if err != nil {
		log.Printf("Tag inference failed for %s: %v", bookmark.ID, err)
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Stage:   StatePersisting,
			Message: "tag inference unavailable",
		})
		return
	}

	for _, name := range suggestion.Tags {
		tag, err := s.taxonomy.GetOrCreateTag(ctx, name, bookmark.UserID)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StatePersisting,
				Message: fmt.Sprintf("could not apply suggested tag %q", name),
			})
			continue
		}
		if err := s.store.AddTag(ctx, bookmark.ID, tag.ID); err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StatePersisting,
				Message: fmt.Sprintf("could not apply suggested tag %q", name),
			})
			continue
		}
		bookmark.TagIDs = append(bookmark.TagIDs, tag.ID)
	}

	if suggestion.Category != "" {
		// Suggested categories must already exist in the user's taxonomy;
		// inference never invents new ones.
		category, err := s.taxonomy.GetCategoryByName(ctx, suggestion.Category, bookmark.UserID)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StatePersisting,
				Message: fmt.Sprintf("suggested category %q does not exist", suggestion.Category),
			})
			return
		}
		if err := s.store.SetCategory(ctx, bookmark.ID, category.ID); err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				Stage:   StatePersisting,
				Message: fmt.Sprintf("could not apply suggested category %q", suggestion.Category),
			})
			return
		}
		bookmark.CategoryID = &category.ID
	}
}

func validateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed url: %v", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("url has no host")
	}
	return parsed, nil
}

func defaultTitle(u *url.URL) string {
	title := u.Host
	if u.Path != "" && u.Path != "/" {
		title += u.Path
	}
	return title
}

func summarizeMessage(err error) string {
	var upstream *summarize.UpstreamError
	if errors.As(err, &upstream) {
		return fmt.Sprintf("summarization unavailable (upstream status %d)", upstream.StatusCode)
	}
	if errors.Is(err, summarize.ErrEmptySummary) {
		return "summarization returned no content"
	}
	return "summarization unavailable"
}
