// Package taxonomy provides database operations for tags, collections and
// categories.
//
// The batch Resolve* methods implement the resolver contract used by
// internal/hydrate: one query per relationship kind, with absent identifiers
// simply missing from the returned map.
//
// # Interface Implementation
//
//	var _ hydrate.Resolver = (*Repository)(nil)
package taxonomy

import (
	"context"

	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
)

// Repository handles all taxonomy database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new taxonomy repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// --- Tags ---

// CreateTag creates a new tag.
func (r *Repository) CreateTag(ctx context.Context, name, userID string) (*entities.Tag, error) {
	tag := &entities.Tag{Name: name, UserID: userID}
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTag retrieves or creates a tag (case-insensitive).
func (r *Repository) GetOrCreateTag(ctx context.Context, name, userID string) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND user_id = ?", name, userID).
		First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		return r.CreateTag(ctx, name, userID)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetTagsForUser retrieves all tags for a user.
func (r *Repository) GetTagsForUser(ctx context.Context, userID string) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&tags).Error
	return tags, err
}

// GetTagByID retrieves a tag by ID.
func (r *Repository) GetTagByID(ctx context.Context, id string) (*entities.Tag, error) {
	var tag entities.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag deletes a tag and its bookmark associations.
func (r *Repository) DeleteTag(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&entities.BookmarkTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Tag{}).Error
	})
}

// DeleteOrphanTags removes all tags that no bookmark references.
func (r *Repository) DeleteOrphanTags(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM tags
		WHERE id NOT IN (SELECT tag_id FROM bookmark_tags)
	`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// --- Collections ---

// CreateCollection creates a new collection.
func (r *Repository) CreateCollection(ctx context.Context, name, userID string) (*entities.Collection, error) {
	collection := &entities.Collection{Name: name, UserID: userID}
	if err := r.db.WithContext(ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// GetCollectionsForUser retrieves all collections for a user.
func (r *Repository) GetCollectionsForUser(ctx context.Context, userID string) ([]entities.Collection, error) {
	var collections []entities.Collection
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&collections).Error
	return collections, err
}

// GetCollectionByID retrieves a collection by ID.
func (r *Repository) GetCollectionByID(ctx context.Context, id string) (*entities.Collection, error) {
	var collection entities.Collection
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&collection).Error; err != nil {
		return nil, err
	}
	return &collection, nil
}

// DeleteCollection deletes a collection and its bookmark associations.
func (r *Repository) DeleteCollection(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection_id = ?", id).Delete(&entities.BookmarkCollection{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Collection{}).Error
	})
}

// --- Categories ---

// CreateCategory creates a new category.
func (r *Repository) CreateCategory(ctx context.Context, name, emoji, userID string) (*entities.Category, error) {
	category := &entities.Category{Name: name, Emoji: emoji, UserID: userID}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// GetCategoriesForUser retrieves all categories for a user.
func (r *Repository) GetCategoriesForUser(ctx context.Context, userID string) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a category by ID.
func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*entities.Category, error) {
	var category entities.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// GetCategoryByName retrieves a category by name (case-insensitive).
func (r *Repository) GetCategoryByName(ctx context.Context, name, userID string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) AND user_id = ?", name, userID).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category and clears it from any bookmark that
// references it.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.Bookmark{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entities.Category{}).Error
	})
}

// --- Batch resolvers ---

// ResolveTags resolves a set of tag identifiers in one query. Identifiers
// with no matching tag are absent from the result.
func (r *Repository) ResolveTags(ctx context.Context, ids []string) (map[string]entities.Tag, error) {
	resolved := make(map[string]entities.Tag, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}
	var tags []entities.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	for _, tag := range tags {
		resolved[tag.ID] = tag
	}
	return resolved, nil
}

// ResolveCollections resolves a set of collection identifiers in one query.
func (r *Repository) ResolveCollections(ctx context.Context, ids []string) (map[string]entities.Collection, error) {
	resolved := make(map[string]entities.Collection, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}
	var collections []entities.Collection
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&collections).Error; err != nil {
		return nil, err
	}
	for _, collection := range collections {
		resolved[collection.ID] = collection
	}
	return resolved, nil
}

// ResolveCategories resolves a set of category identifiers in one query.
func (r *Repository) ResolveCategories(ctx context.Context, ids []string) (map[string]entities.Category, error) {
	resolved := make(map[string]entities.Category, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}
	var categories []entities.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	for _, category := range categories {
		resolved[category.ID] = category
	}
	return resolved, nil
}
