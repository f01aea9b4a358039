package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/linkmarkhq/linkmark/internal/entities"
	"github.com/linkmarkhq/linkmark/internal/tasks"
)

// TagStore defines database operations for tag management.
type TagStore interface {
	GetOrCreateTag(ctx context.Context, name, userID string) (*entities.Tag, error)
	GetTagsForUser(ctx context.Context, userID string) ([]entities.Tag, error)
	GetTagByID(ctx context.Context, id string) (*entities.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

type TagsController struct {
	store      TagStore
	taskClient *tasks.Client
}

func NewTagsController(store TagStore, taskClient *tasks.Client) *TagsController {
	return &TagsController{store: store, taskClient: taskClient}
}

// GetAllTags returns all tags for the current user.
// GET /api/tags
func (tc *TagsController) GetAllTags(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tags, err := tc.store.GetTagsForUser(c.Request.Context(), userID)
	if err != nil {
		respondInternalError(c, err, "get all tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// CreateTag creates a new tag (or returns the existing one by name).
// POST /api/tags
func (tc *TagsController) CreateTag(c *gin.Context) {
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

	tag, err := tc.store.GetOrCreateTag(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondInternalError(c, err, "create tag")
		return
	}

	respondCreated(c, tag)
}

// DeleteTag removes a tag and all its bookmark associations.
// DELETE /api/tags/:id
func (tc *TagsController) DeleteTag(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id := c.Param("id")

	tag, err := tc.store.GetTagByID(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && tag.UserID != userID) {
		respondNotFound(c, "tag")
		return
	}
	if err != nil {
		respondInternalError(c, err, "load tag")
		return
	}

	if err := tc.store.DeleteTag(c.Request.Context(), id); err != nil {
		respondInternalError(c, err, "delete tag")
		return
	}
	respondSuccess(c, "tag deleted")
}

// CleanupOrphanTags enqueues a cleanup of tags no bookmark references.
// POST /api/admin/tags/cleanup
func (tc *TagsController) CleanupOrphanTags(c *gin.Context) {
	if tc.taskClient == nil {
		respondBadRequest(c, "task queue is disabled")
		return
	}

	if _, err := tc.taskClient.Add(tasks.CleanupOrphanTagsTask{}).Ctx(c.Request.Context()).Save(); err != nil {
		respondInternalError(c, err, "enqueue tag cleanup")
		return
	}
	c.JSON(http.StatusAccepted, SuccessResponse{Message: "tag cleanup scheduled"})
}
