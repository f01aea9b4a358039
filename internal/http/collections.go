package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
)

// CollectionStore defines database operations for collection management.
type CollectionStore interface {
	CreateCollection(ctx context.Context, name, userID string) (*entities.Collection, error)
	GetCollectionsForUser(ctx context.Context, userID string) ([]entities.Collection, error)
	GetCollectionByID(ctx context.Context, id string) (*entities.Collection, error)
	DeleteCollection(ctx context.Context, id string) error
}

type CollectionsController struct {
	store CollectionStore
}

func NewCollectionsController(store CollectionStore) *CollectionsController {
	return &CollectionsController{store: store}
}

// GetAllCollections returns all collections for the current user.
// GET /api/collections
func (cc *CollectionsController) GetAllCollections(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	collections, err := cc.store.GetCollectionsForUser(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "get all collections")
		return
	}
	c.JSON(http.StatusOK, collections)
}

// CreateCollection creates a new collection.
// POST /api/collections
func (cc *CollectionsController) CreateCollection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	collection, err := cc.store.CreateCollection(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondInternalError(c, err, "create collection")
		return
	}

	respondCreated(c, collection)
}

// DeleteCollection removes a collection and its bookmark associations.
// DELETE /api/collections/:id
func (cc *CollectionsController) DeleteCollection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	collection, err := cc.store.GetCollectionByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && collection.UserID != userID) {
		respondNotFound(c, "collection")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load collection")
		return
	}

	if err := cc.store.DeleteCollection(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "delete collection")
		return
	}
	respondSuccess(c, "collection deleted")
}
