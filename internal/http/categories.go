package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
)

// CategoryStore defines database operations for category management.
type CategoryStore interface {
	CreateCategory(ctx context.Context, name, emoji, userID string) (*entities.Category, error)
	GetCategoriesForUser(ctx context.Context, userID string) ([]entities.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*entities.Category, error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoriesController struct {
	store CategoryStore
}

func NewCategoriesController(store CategoryStore) *CategoriesController {
	return &CategoriesController{store: store}
}

// GetAllCategories returns all categories for the current user.
// GET /api/categories
func (cc *CategoriesController) GetAllCategories(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	categories, err := cc.store.GetCategoriesForUser(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "get all categories")
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CreateCategory creates a new category.
// POST /api/categories
func (cc *CategoriesController) CreateCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required"`
		Emoji string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	category, err := cc.store.CreateCategory(c.Request.Context(), req.Name, req.Emoji, userID)
	if err != nil {
		respondInternalError(c, err, "create category")
		return
	}

	respondCreated(c, category)
}

// DeleteCategory removes a category and clears it from bookmarks.
// DELETE /api/categories/:id
func (cc *CategoriesController) DeleteCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	category, err := cc.store.GetCategoryByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && category.UserID != userID) {
		respondNotFound(c, "category")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load category")
		return
	}

	if err := cc.store.DeleteCategory(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "delete category")
		return
	}
	respondSuccess(c, "category deleted")
}
