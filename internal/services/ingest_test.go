package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/inference"
)

type fakeStore struct {
	createCalls   int
	addTagCalls   int
	setCatCalls   int
	createErr     error
	created       []*entities.Bookmark
	taggedWith    []string
	categorizedAs string
}

func (f *fakeStore) CreateBookmark(ctx context.Context, b *entities.Bookmark) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = "bookmark-1"
	f.created = append(f.created, b)
	return nil
}

func (f *fakeStore) AddTag(ctx context.Context, bookmarkID, tagID string) error {
	f.addTagCalls++
	f.taggedWith = append(f.taggedWith, tagID)
	return nil
}

func (f *fakeStore) SetCategory(ctx context.Context, bookmarkID, categoryID string) error {
	f.setCatCalls++
	f.categorizedAs = categoryID
	return nil
}

type fakeTaxonomy struct {
	tags       map[string]string // name -> id
	categories map[string]string
}

func (f *fakeTaxonomy) GetOrCreateTag(ctx context.Context, name, userID string) (*entities.Tag, error) {
	id, ok := f.tags[name]
	if !ok {
		id = "tag-" + name
		if f.tags == nil {
			f.tags = map[string]string{}
		}
		f.tags[name] = id
	}
	return &entities.Tag{ID: id, Name: name, UserID: userID}, nil
}

func (f *fakeTaxonomy) GetCategoryByName(ctx context.Context, name, userID string) (*entities.Category, error) {
	id, ok := f.categories[name]
	if !ok {
		return nil, errors.New("category not found")
	}
	return &entities.Category{ID: id, Name: name, UserID: userID}, nil
}

type resolveAllResolver struct{}

func (resolveAllResolver) ResolveTags(ctx context.Context, ids []string) (map[string]entities.Tag, error) {
	out := map[string]entities.Tag{}
	for _, id := range ids {
		out[id] = entities.Tag{ID: id, Name: "name-" + id}
	}
	return out, nil
}

func (resolveAllResolver) ResolveCollections(ctx context.Context, ids []string) (map[string]entities.Collection, error) {
	out := map[string]entities.Collection{}
	for _, id := range ids {
		out[id] = entities.Collection{ID: id, Name: "name-" + id}
	}
	return out, nil
}

func (resolveAllResolver) ResolveCategories(ctx context.Context, ids []string) (map[string]entities.Category, error) {
	out := map[string]entities.Category{}
	for _, id := range ids {
		out[id] = entities.Category{ID: id, Name: "name-" + id}
	}
	return out, nil
}

type failingResolver struct{}

func (failingResolver) ResolveTags(ctx context.Context, ids []string) (map[string]entities.Tag, error) {
	return nil, errors.New("resolver down")
}

func (failingResolver) ResolveCollections(ctx context.Context, ids []string) (map[string]entities.Collection, error) {
	return nil, errors.New("resolver down")
}

func (failingResolver) ResolveCategories(ctx context.Context, ids []string) (map[string]entities.Category, error) {
	return nil, errors.New("resolver down")
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, url, title string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

func (f *fakeSummarizer) Name() string { return "fake" }

type fakeSuggester struct {
	suggestion *inference.Suggestion
	err        error
}

func (f *fakeSuggester) Suggest(ctx context.Context, url, title, summary string) (*inference.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestion, nil
}

func (f *fakeSuggester) Name() string { return "fake" }

type fakeEnqueuer struct {
	enqueued []string
}

func (f *fakeEnqueuer) EnqueueSummarize(ctx context.Context, bookmarkID string) error {
	f.enqueued = append(f.enqueued, bookmarkID)
	return nil
}

func TestIngest(t *testing.T) {
	t.Run("happy path persists and hydrates", func(t *testing.T) {
		store := &fakeStore{}
		summarizer := &fakeSummarizer{summary: "A short summary."}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, summarizer, nil, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com/post", "A post")
		require.NoError(t, err)

		assert.Equal(t, 1, store.createCalls)
		assert.Equal(t, 1, summarizer.calls)
		require.NotNil(t, result.Bookmark)
		assert.Equal(t, "bookmark-1", result.Bookmark.ID)
		assert.Equal(t, "A short summary.", result.Bookmark.Summary)
		assert.Equal(t, "A post", result.Bookmark.Title)
		assert.Equal(t, "u1", result.Bookmark.UserID)
		assert.Empty(t, result.Diagnostics)
		assert.False(t, result.PartialHydration)
	})

	t.Run("malformed url returns invalid input with no store write", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, nil, config.HydrationPolicyDrop)

		for _, raw := range []string{"", "   ", "ftp://example.com", "not a url at all", "https://"} {
			_, err := svc.Ingest(context.Background(), "u1", raw, "")
			assert.ErrorIs(t, err, ErrInvalidInput, "url %q", raw)
		}
		assert.Equal(t, 0, store.createCalls)
	})

	t.Run("missing user id returns invalid input", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, nil, config.HydrationPolicyDrop)

		_, err := svc.Ingest(context.Background(), "", "https://example.com", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Equal(t, 0, store.createCalls)
	})

	t.Run("summarizer failure still persists the bookmark", func(t *testing.T) {
		store := &fakeStore{}
		summarizer := &fakeSummarizer{err: errors.New("timeout")}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, summarizer, nil, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com/post", "A post")
		require.NoError(t, err)

		assert.Equal(t, 1, store.createCalls)
		assert.Equal(t, "", result.Bookmark.Summary)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, StateSummarizing, result.Diagnostics[0].Stage)
	})

	t.Run("summarizer failure enqueues an async retry", func(t *testing.T) {
		store := &fakeStore{}
		enqueuer := &fakeEnqueuer{}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, &fakeSummarizer{err: errors.New("boom")}, nil, config.HydrationPolicyDrop)
		svc.SetRetryEnqueuer(enqueuer)

		_, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"bookmark-1"}, enqueuer.enqueued)
	})

	t.Run("successful summarization enqueues nothing", func(t *testing.T) {
		enqueuer := &fakeEnqueuer{}
		svc := NewIngestService(&fakeStore{}, &fakeTaxonomy{}, resolveAllResolver{}, &fakeSummarizer{summary: "ok"}, nil, config.HydrationPolicyDrop)
		svc.SetRetryEnqueuer(enqueuer)

		_, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)
		assert.Empty(t, enqueuer.enqueued)
	})

	t.Run("store failure aborts with persistence error", func(t *testing.T) {
		store := &fakeStore{createErr: errors.New("disk full")}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, nil, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		assert.ErrorIs(t, err, ErrPersistenceFailed)
		assert.Nil(t, result)
		assert.Empty(t, store.created)
	})

	t.Run("empty title falls back to host and path", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, nil, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com/some/article", "  ")
		require.NoError(t, err)
		assert.Equal(t, "example.com/some/article", result.Bookmark.Title)
	})

	t.Run("suggested tags are created and attached", func(t *testing.T) {
		store := &fakeStore{}
		suggester := &fakeSuggester{suggestion: &inference.Suggestion{Tags: []string{"golang", "reading"}}}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, suggester, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)

		assert.Equal(t, 2, store.addTagCalls)
		assert.Len(t, result.Bookmark.Tags, 2)
		assert.Empty(t, result.Diagnostics)
	})

	t.Run("suggested category must already exist", func(t *testing.T) {
		store := &fakeStore{}
		taxonomy := &fakeTaxonomy{categories: map[string]string{"Tech": "cat-tech"}}
		suggester := &fakeSuggester{suggestion: &inference.Suggestion{Category: "Tech"}}
		svc := NewIngestService(store, taxonomy, resolveAllResolver{}, nil, suggester, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)
		assert.Equal(t, 1, store.setCatCalls)
		assert.Equal(t, "cat-tech", store.categorizedAs)
		require.Len(t, result.Bookmark.Categories, 1)
	})

	t.Run("unknown suggested category is reported, never invented", func(t *testing.T) {
		store := &fakeStore{}
		suggester := &fakeSuggester{suggestion: &inference.Suggestion{Category: "Made Up"}}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, suggester, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)
		assert.Equal(t, 0, store.setCatCalls)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, StatePersisting, result.Diagnostics[0].Stage)
	})

	t.Run("inference failure degrades, never aborts", func(t *testing.T) {
		store := &fakeStore{}
		suggester := &fakeSuggester{err: errors.New("model offline")}
		svc := NewIngestService(store, &fakeTaxonomy{}, resolveAllResolver{}, nil, suggester, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "")
		require.NoError(t, err)
		assert.Equal(t, 1, store.createCalls)
		require.Len(t, result.Diagnostics, 1)
	})

	t.Run("hydration failure returns scalars with partial flag", func(t *testing.T) {
		store := &fakeStore{}
		svc := NewIngestService(store, &fakeTaxonomy{}, failingResolver{}, nil, nil, config.HydrationPolicyDrop)

		result, err := svc.Ingest(context.Background(), "u1", "https://example.com", "A post")
		require.NoError(t, err)

		assert.True(t, result.PartialHydration)
		require.NotNil(t, result.Bookmark)
		assert.Equal(t, "bookmark-1", result.Bookmark.ID)
		assert.Empty(t, result.Bookmark.Tags)
		require.Len(t, result.Diagnostics, 1)
		assert.Equal(t, StateHydrating, result.Diagnostics[0].Stage)
	})
}
