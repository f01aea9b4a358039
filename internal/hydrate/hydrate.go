// Package hydrate builds the UI-consumable bookmark view model from the
// stored form.
//
// Hydration is a pure transformation: identifier sets are deduplicated,
// resolved through a batch resolver (one call per relationship kind), and
// rendered as nested entity objects in ascending-identifier order. What
// happens to an identifier that no longer resolves is governed by a single
// process-wide policy rather than per caller.
package hydrate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/entities"
)

// Resolver provides batch lookup of the entities a bookmark references.
// Identifiers with no matching entity are absent from the returned maps;
// a non-nil error means the store itself failed.
type Resolver interface {
	ResolveTags(ctx context.Context, ids []string) (map[string]entities.Tag, error)
	ResolveCollections(ctx context.Context, ids []string) (map[string]entities.Collection, error)
	ResolveCategories(ctx context.Context, ids []string) (map[string]entities.Category, error)
}

// Reference kinds reported in diagnostics and dangling errors.
const (
	KindTag        = "tag"
	KindCollection = "collection"
	KindCategory   = "category"
)

// EntityRef is a resolved tag or collection in the view model.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CategoryRef is a resolved category in the view model.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji,omitempty"`
}

// Bookmark is the hydrated view form. The JSON field names are the wire
// contract consumed by clients and must not change.
type Bookmark struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Tags        []EntityRef   `json:"tags"`
	Collections []EntityRef   `json:"collections"`
	Categories  []CategoryRef `json:"categories"`
	CreatedAt   time.Time     `json:"createdAt"`
	IsFav       bool          `json:"isFav"`
	UserID      string        `json:"userId"`
}

// Diagnostic records a reference that was dropped during hydration.
type Diagnostic struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// DanglingError is returned under the strict policy when a referenced
// entity no longer exists.
type DanglingError struct {
	Kind string
	ID   string
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("dangling %s reference: %s", e.Kind, e.ID)
}

// Result is a hydrated bookmark plus any dangling references dropped while
// building it.
type Result struct {
	Bookmark *Bookmark
	Dangling []Diagnostic
}

// Hydrate resolves the identifier sets of a stored bookmark into the view
// form. With config.HydrationPolicyDrop an unresolved identifier is omitted
// and recorded in Result.Dangling; with config.HydrationPolicyStrict the
// first unresolved identifier fails the hydration with a *DanglingError.
//
// Repeated calls against an unchanged store yield identical output.
func Hydrate(ctx context.Context, stored *entities.Bookmark, resolver Resolver, policy config.HydrationPolicy) (*Result, error) {
	tagIDs := dedupeSorted(stored.TagIDs)
	collectionIDs := dedupeSorted(stored.CollectionIDs)

	resolvedTags, err := resolver.ResolveTags(ctx, tagIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve tags: %w", err)
	}
	resolvedCollections, err := resolver.ResolveCollections(ctx, collectionIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve collections: %w", err)
	}

	var categoryIDs []string
	if stored.CategoryID != nil && *stored.CategoryID != "" {
		categoryIDs = []string{*stored.CategoryID}
	}
	resolvedCategories, err := resolver.ResolveCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve categories: %w", err)
	}

	result := &Result{Bookmark: Scalars(stored)}

	for _, id := range tagIDs {
		tag, ok := resolvedTags[id]
		if !ok {
			if policy == config.HydrationPolicyStrict {
				return nil, &DanglingError{Kind: KindTag, ID: id}
			}
			result.Dangling = append(result.Dangling, Diagnostic{Kind: KindTag, ID: id})
			continue
		}
		result.Bookmark.Tags = append(result.Bookmark.Tags, EntityRef{ID: tag.ID, Name: tag.Name})
	}

	for _, id := range collectionIDs {
		collection, ok := resolvedCollections[id]
		if !ok {
			if policy == config.HydrationPolicyStrict {
				return nil, &DanglingError{Kind: KindCollection, ID: id}
			}
			result.Dangling = append(result.Dangling, Diagnostic{Kind: KindCollection, ID: id})
			continue
		}
		result.Bookmark.Collections = append(result.Bookmark.Collections, EntityRef{ID: collection.ID, Name: collection.Name})
	}

	for _, id := range categoryIDs {
		category, ok := resolvedCategories[id]
		if !ok {
			if policy == config.HydrationPolicyStrict {
				return nil, &DanglingError{Kind: KindCategory, ID: id}
			}
			result.Dangling = append(result.Dangling, Diagnostic{Kind: KindCategory, ID: id})
			continue
		}
		result.Bookmark.Categories = append(result.Bookmark.Categories, CategoryRef{ID: category.ID, Name: category.Name, Emoji: category.Emoji})
	}

	return result, nil
}

// Scalars builds a view-form bookmark carrying only the scalar fields, with
// empty relationship lists. Used as the degraded response shape when
// hydration fails after the bookmark was already persisted.
func Scalars(stored *entities.Bookmark) *Bookmark {
	return &Bookmark{
		ID:          stored.ID,
		URL:         stored.URL,
		Title:       stored.Title,
		Summary:     stored.Summary,
		Tags:        []EntityRef{},
		Collections: []EntityRef{},
		Categories:  []CategoryRef{},
		CreatedAt:   stored.CreatedAt,
		IsFav:       stored.IsFav,
		UserID:      stored.UserID,
	}
}

// dedupeSorted removes duplicates and returns the identifiers in ascending
// order, which fixes the ordering of the hydrated lists.
func dedupeSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
