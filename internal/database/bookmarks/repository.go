// Package bookmarks provides database operations for bookmark management.
//
// Bookmarks are returned in their stored form: related tags, collections and
// the category are referenced by identifier only. Hydration into the view
// form happens in internal/hydrate.
package bookmarks

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
)

// Repository handles all bookmark database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new bookmarks repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Partial describes an update to the mutable bookmark fields. Nil pointers
// leave the field untouched. URL and creation timestamp are immutable and
// cannot be updated through this type.
type Partial struct {
	Title         *string
	Summary       *string
	IsFav         *bool
	CategoryID    *string
	ClearCategory bool
}

// CreateBookmark persists a bookmark and its tag/collection associations in
// a single transaction. Identifier sets are deduplicated before writing.
func (r *Repository) CreateBookmark(ctx context.Context, b *entities.Bookmark) error {
	b.TagIDs = dedupe(b.TagIDs)
	b.CollectionIDs = dedupe(b.CollectionIDs)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		for _, tagID := range b.TagIDs {
			if err := tx.Create(&entities.BookmarkTag{BookmarkID: b.ID, TagID: tagID}).Error; err != nil {
				return err
			}
		}
		for _, collectionID := range b.CollectionIDs {
			if err := tx.Create(&entities.BookmarkCollection{BookmarkID: b.ID, CollectionID: collectionID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBookmarkByID retrieves a bookmark in stored form, with its tag and
// collection identifier sets loaded from the association tables.
func (r *Repository) GetBookmarkByID(ctx context.Context, id string) (*entities.Bookmark, error) {
	var bookmark entities.Bookmark
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&bookmark).Error; err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, &bookmark); err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// ListBookmarksForUser returns a user's bookmarks in stored form with
// pagination, newest first.
func (r *Repository) ListBookmarksForUser(ctx context.Context, userID string, limit, offset int) ([]entities.Bookmark, int64, error) {
	var bookmarks []entities.Bookmark
	var total int64

	query := r.db.WithContext(ctx).Model(&entities.Bookmark{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Find(&bookmarks).Error; err != nil {
		return nil, 0, err
	}

	for i := range bookmarks {
		if err := r.loadAssociations(ctx, &bookmarks[i]); err != nil {
			return nil, 0, err
		}
	}
	return bookmarks, total, nil
}

// UpdateBookmarkFields applies a partial update to the mutable fields of a
// bookmark. Returns gorm.ErrRecordNotFound if the bookmark does not exist.
func (r *Repository) UpdateBookmarkFields(ctx context.Context, id string, partial Partial) error {
	updates := map[string]any{}
	if partial.Title != nil {
		updates["title"] = *partial.Title
	}
	if partial.Summary != nil {
		updates["summary"] = *partial.Summary
	}
	if partial.IsFav != nil {
		updates["is_fav"] = *partial.IsFav
	}
	if partial.ClearCategory {
		updates["category_id"] = nil
	} else if partial.CategoryID != nil {
		updates["category_id"] = *partial.CategoryID
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&entities.Bookmark{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetFavourite updates the favourite flag of a bookmark.
func (r *Repository) SetFavourite(ctx context.Context, id string, isFav bool) error {
	isFavCopy := isFav
	return r.UpdateBookmarkFields(ctx, id, Partial{IsFav: &isFavCopy})
}

// UpdateSummary replaces the summary of a bookmark.
func (r *Repository) UpdateSummary(ctx context.Context, id string, summary string) error {
	summaryCopy := summary
	return r.UpdateBookmarkFields(ctx, id, Partial{Summary: &summaryCopy})
}

// DeleteBookmark removes a bookmark and its association rows in a single
// transaction, so concurrent readers observe either the whole bookmark or
// nothing.
func (r *Repository) DeleteBookmark(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&entities.Bookmark{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("bookmark_id = ?", id).Delete(&entities.BookmarkTag{}).Error; err != nil {
			return err
		}
		return tx.Where("bookmark_id = ?", id).Delete(&entities.BookmarkCollection{}).Error
	})
}

// AddTag associates a tag with a bookmark. Adding an already-present tag is
// a no-op, preserving set semantics.
func (r *Repository) AddTag(ctx context.Context, bookmarkID, tagID string) error {
	if err := r.ensureExists(ctx, &entities.Bookmark{}, bookmarkID); err != nil {
		return err
	}
	if err := r.ensureExists(ctx, &entities.Tag{}, tagID); err != nil {
		return err
	}
	assoc := entities.BookmarkTag{BookmarkID: bookmarkID, TagID: tagID}
	return r.db.WithContext(ctx).
		Where("bookmark_id = ? AND tag_id = ?", bookmarkID, tagID).
		FirstOrCreate(&assoc).Error
}

// RemoveTag removes a tag association from a bookmark.
func (r *Repository) RemoveTag(ctx context.Context, bookmarkID, tagID string) error {
	return r.db.WithContext(ctx).
		Where("bookmark_id = ? AND tag_id = ?", bookmarkID, tagID).
		Delete(&entities.BookmarkTag{}).Error
}

// AddCollection associates a collection with a bookmark.
func (r *Repository) AddCollection(ctx context.Context, bookmarkID, collectionID string) error {
	if err := r.ensureExists(ctx, &entities.Bookmark{}, bookmarkID); err != nil {
		return err
	}
	if err := r.ensureExists(ctx, &entities.Collection{}, collectionID); err != nil {
		return err
	}
	assoc := entities.BookmarkCollection{BookmarkID: bookmarkID, CollectionID: collectionID}
	return r.db.WithContext(ctx).
		Where("bookmark_id = ? AND collection_id = ?", bookmarkID, collectionID).
		FirstOrCreate(&assoc).Error
}

// RemoveCollection removes a collection association from a bookmark.
func (r *Repository) RemoveCollection(ctx context.Context, bookmarkID, collectionID string) error {
	return r.db.WithContext(ctx).
		Where("bookmark_id = ? AND collection_id = ?", bookmarkID, collectionID).
		Delete(&entities.BookmarkCollection{}).Error
}

// SetCategory assigns the single category of a bookmark.
func (r *Repository) SetCategory(ctx context.Context, bookmarkID, categoryID string) error {
	if err := r.ensureExists(ctx, &entities.Category{}, categoryID); err != nil {
		return err
	}
	return r.UpdateBookmarkFields(ctx, bookmarkID, Partial{CategoryID: &categoryID})
}

// ClearCategory removes the category assignment of a bookmark.
func (r *Repository) ClearCategory(ctx context.Context, bookmarkID string) error {
	return r.UpdateBookmarkFields(ctx, bookmarkID, Partial{ClearCategory: true})
}

// ListMissingSummaries returns bookmarks whose summarization has not
// completed yet, oldest first. Used by the summary backfill.
func (r *Repository) ListMissingSummaries(ctx context.Context, limit int) ([]entities.Bookmark, error) {
	var bookmarks []entities.Bookmark
	query := r.db.WithContext(ctx).
		Where("summary = ?", "").
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&bookmarks).Error
	return bookmarks, err
}

func (r *Repository) loadAssociations(ctx context.Context, b *entities.Bookmark) error {
	tagIDs := []string{}
	err := r.db.WithContext(ctx).Model(&entities.BookmarkTag{}).
		Where("bookmark_id = ?", b.ID).
		Pluck("tag_id", &tagIDs).Error
	if err != nil {
		return err
	}

	collectionIDs := []string{}
	err = r.db.WithContext(ctx).Model(&entities.BookmarkCollection{}).
		Where("bookmark_id = ?", b.ID).
		Pluck("collection_id", &collectionIDs).Error
	if err != nil {
		return err
	}

	sort.Strings(tagIDs)
	sort.Strings(collectionIDs)
	b.TagIDs = tagIDs
	b.CollectionIDs = collectionIDs
	return nil
}

func (r *Repository) ensureExists(ctx context.Context, model any, id string) error {
	return r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(model).Error
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
