package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/database/bookmarks"
	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/hydrate"
	"github.com/linkmarkhq/linkmark/internal/services"
)

// BookmarkStore defines database operations for bookmark management.
type BookmarkStore interface {
	GetBookmarkByID(ctx context.Context, id string) (*entities.Bookmark, error)
	ListBookmarksForUser(ctx context.Context, userID string, limit, offset int) ([]entities.Bookmark, int64, error)
	UpdateBookmarkFields(ctx context.Context, id string, partial bookmarks.Partial) error
	SetFavourite(ctx context.Context, id string, isFav bool) error
	DeleteBookmark(ctx context.Context, id string) error
	AddTag(ctx context.Context, bookmarkID, tagID string) error
	RemoveTag(ctx context.Context, bookmarkID, tagID string) error
	AddCollection(ctx context.Context, bookmarkID, collectionID string) error
	RemoveCollection(ctx context.Context, bookmarkID, collectionID string) error
	SetCategory(ctx context.Context, bookmarkID, categoryID string) error
	ClearCategory(ctx context.Context, bookmarkID string) error
}

// BookmarkTagStore resolves tag names when attaching by name.
type BookmarkTagStore interface {
	GetOrCreateTag(ctx context.Context, name, userID string) (*entities.Tag, error)
}

type BookmarksController struct {
	store    BookmarkStore
	tagStore BookmarkTagStore
	resolver hydrate.Resolver
	ingest   *services.IngestService
	policy   config.HydrationPolicy
}

func NewBookmarksController(
	store BookmarkStore,
	tagStore BookmarkTagStore,
	resolver hydrate.Resolver,
	ingest *services.IngestService,
	policy config.HydrationPolicy,
) *BookmarksController {
	return &BookmarksController{
		store:    store,
		tagStore: tagStore,
		resolver: resolver,
		ingest:   ingest,
		policy:   policy,
	}
}

// CreateBookmark submits a URL for ingestion.
// POST /api/bookmarks
func (bc *BookmarksController) CreateBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req struct {
		URL   string `json:"url" binding:"required"`
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}

	result, err := bc.ingest.Ingest(c.Request.Context(), userID, req.URL, req.Title)
	if errors.Is(err, services.ErrInvalidInput) {
		respondBadRequest(c, "invalid url")
		return
	}
	if err != nil {
		respondInternalError(c, err, "ingest bookmark")
		return
	}

	respondCreated(c, result)
}

// GetBookmark returns one bookmark in hydrated form.
// GET /api/bookmarks/:id
func (bc *BookmarksController) GetBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	hydrated, ok := bc.loadHydrated(c, c.Param("id"), userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// ListBookmarks returns a user's bookmarks in hydrated form with pagination.
// GET /api/bookmarks
func (bc *BookmarksController) ListBookmarks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	limit, offset := parsePagination(c)

	stored, total, err := bc.store.ListBookmarksForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list bookmarks")
		return
	}

	hydrated := make([]*hydrate.Bookmark, 0, len(stored))
	for i := range stored {
		result, err := hydrate.Hydrate(c.Request.Context(), &stored[i], bc.resolver, bc.policy)
		if err != nil {
			respondInternalError(c, err, "hydrate bookmark")
			return
		}
		hydrated = append(hydrated, result.Bookmark)
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:   hydrated,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateBookmark applies a partial update to the mutable fields.
// PATCH /api/bookmarks/:id
func (bc *BookmarksController) UpdateBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	var req struct {
		Title      *string `json:"title"`
		Summary    *string `json:"summary"`
		IsFav      *bool   `json:"isFav"`
		CategoryID *string `json:"categoryId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "malformed request body")
		return
	}

	partial := bookmarks.Partial{
		Title:   req.Title,
		Summary: req.Summary,
		IsFav:   req.IsFav,
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			partial.ClearCategory = true
		} else {
			partial.CategoryID = req.CategoryID
		}
	}

	if err := bc.store.UpdateBookmarkFields(c.Request.Context(), id, partial); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "update bookmark")
		return
	}

	hydrated, ok := bc.loadHydrated(c, id, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// DeleteBookmark removes a bookmark and its associations.
// DELETE /api/bookmarks/:id
func (bc *BookmarksController) DeleteBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	if err := bc.store.DeleteBookmark(c.Request.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "bookmark")
			return
		}
		respondInternalError(c, err, "delete bookmark")
		return
	}
	respondSuccess(c, "bookmark deleted")
}

// AddFavourite marks a bookmark as favourite.
// POST /api/bookmarks/:id/favourite
func (bc *BookmarksController) AddFavourite(c *gin.Context) {
	bc.setFavourite(c, true)
}

// RemoveFavourite removes a bookmark from favourites.
// DELETE /api/bookmarks/:id/favourite
func (bc *BookmarksController) RemoveFavourite(c *gin.Context) {
	bc.setFavourite(c, false)
}

func (bc *BookmarksController) setFavourite(c *gin.Context, isFav bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	if err := bc.store.SetFavourite(c.Request.Context(), id, isFav); err != nil {
		respondInternalError(c, err, "set favourite")
		return
	}

	hydrated, ok := bc.loadHydrated(c, id, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// AddTagToBookmark attaches a tag by id or name.
// POST /api/bookmarks/:id/tags
func (bc *BookmarksController) AddTagToBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	var req struct {
		TagID   string `json:"tag_id"`
		TagName string `json:"tag_name"`
	}
	_ = c.ShouldBindJSON(&req)

	tagID := req.TagID
	if tagID == "" && req.TagName != "" {
		tag, err := bc.tagStore.GetOrCreateTag(c.Request.Context(), req.TagName, userID)
		if err != nil {
			respondInternalError(c, err, "get or create tag")
			return
		}
		tagID = tag.ID
	}
	if tagID == "" {
		respondBadRequest(c, "tag_id or tag_name required")
		return
	}

	if err := bc.store.AddTag(c.Request.Context(), id, tagID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "tag")
			return
		}
		respondInternalError(c, err, "add tag to bookmark")
		return
	}

	hydrated, ok := bc.loadHydrated(c, id, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// RemoveTagFromBookmark detaches a tag.
// DELETE /api/bookmarks/:id/tags/:tagId
func (bc *BookmarksController) RemoveTagFromBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	if err := bc.store.RemoveTag(c.Request.Context(), id, c.Param("tagId")); err != nil {
		respondInternalError(c, err, "remove tag from bookmark")
		return
	}
	respondSuccess(c, "tag removed")
}

// AddCollectionToBookmark attaches a collection.
// POST /api/bookmarks/:id/collections
func (bc *BookmarksController) AddCollectionToBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	var req struct {
		CollectionID string `json:"collection_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "collection_id is required")
		return
	}

	if err := bc.store.AddCollection(c.Request.Context(), id, req.CollectionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "collection")
			return
		}
		respondInternalError(c, err, "add collection to bookmark")
		return
	}

	hydrated, ok := bc.loadHydrated(c, id, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// RemoveCollectionFromBookmark detaches a collection.
// DELETE /api/bookmarks/:id/collections/:collectionId
func (bc *BookmarksController) RemoveCollectionFromBookmark(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	if err := bc.store.RemoveCollection(c.Request.Context(), id, c.Param("collectionId")); err != nil {
		respondInternalError(c, err, "remove collection from bookmark")
		return
	}
	respondSuccess(c, "collection removed")
}

// SetBookmarkCategory assigns the bookmark's single category.
// PUT /api/bookmarks/:id/category
func (bc *BookmarksController) SetBookmarkCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	var req struct {
		CategoryID string `json:"category_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "category_id is required")
		return
	}

	if err := bc.store.SetCategory(c.Request.Context(), id, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "category")
			return
		}
		respondInternalError(c, err, "set bookmark category")
		return
	}

	hydrated, ok := bc.loadHydrated(c, id, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, hydrated)
}

// ClearBookmarkCategory removes the bookmark's category assignment.
// DELETE /api/bookmarks/:id/category
func (bc *BookmarksController) ClearBookmarkCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, ok := bc.ownedBookmark(c, id, userID); !ok {
		return
	}

	if err := bc.store.ClearCategory(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "clear bookmark category")
		return
	}
	respondSuccess(c, "category cleared")
}

// ownedBookmark loads a bookmark and checks it belongs to the caller.
// Responds with 404 (not 403, to avoid leaking existence) when it does not.
func (bc *BookmarksController) ownedBookmark(c *gin.Context, id, userID string) (*entities.Bookmark, bool) {
	bookmark, err := bc.store.GetBookmarkByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "bookmark")
		return nil, false
	}
	if err != nil {
		respondInternalError(c, err, "load bookmark")
		return nil, false
	}
	if bookmark.UserID != userID {
		respondNotFound(c, "bookmark")
		return nil, false
	}
	return bookmark, true
}

func (bc *BookmarksController) loadHydrated(c *gin.Context, id, userID string) (*hydrate.Bookmark, bool) {
	bookmark, ok := bc.ownedBookmark(c, id, userID)
	if !ok {
		return nil, false
	}

	result, err := hydrate.Hydrate(c.Request.Context(), bookmark, bc.resolver, bc.policy)
	if err != nil {
		var dangling *hydrate.DanglingError
		if errors.As(err, &dangling) {
			respondInternalError(c, err, "hydrate bookmark (strict policy)")
			return nil, false
		}
		respondInternalError(c, err, "hydrate bookmark")
		return nil, false
	}
	return result.Bookmark, true
}
