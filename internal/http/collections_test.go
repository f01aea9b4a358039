package http

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmarkhq/linkmark/internal/database"
	"github.com/linkmarkhq/linkmark/internal/database/taxonomy"
)

func setupCollectionsTest(t *testing.T) (*taxonomy.Repository, *gin.Engine, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_collections_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	repo := taxonomy.NewRepository(db.DB)
	collections := NewCollectionsController(repo)
	categories := NewCategoriesController(repo)

	router := gin.New()
	router.GET("/api/collections", collections.GetAllCollections)
	router.POST("/api/collections", collections.CreateCollection)
	router.DELETE("/api/collections/:id", collections.DeleteCollection)
	router.GET("/api/categories", categories.GetAllCategories)
	router.POST("/api/categories", categories.CreateCategory)
	router.DELETE("/api/categories/:id", categories.DeleteCategory)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return repo, router, cleanup
}

func TestCollectionsController(t *testing.T) {
	t.Run("create and list", func(t *testing.T) {
		_, router, cleanup := setupCollectionsTest(t)
		defer cleanup()

		w := doRequest(router, "POST", "/api/collections", "u1", gin.H{"name": "work"})
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(router, "GET", "/api/collections", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var collections []struct {
			Name string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &collections))
		require.Len(t, collections, 1)
		assert.Equal(t, "work", collections[0].Name)
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		_, router, cleanup := setupCollectionsTest(t)
		defer cleanup()

		w := doRequest(router, "POST", "/api/collections", "u1", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cannot delete another user's collection", func(t *testing.T) {
		repo, router, cleanup := setupCollectionsTest(t)
		defer cleanup()

		collection, err := repo.CreateCollection(context.Background(), "work", "owner")
		require.NoError(t, err)

		w := doRequest(router, "DELETE", "/api/collections/"+collection.ID, "intruder", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCategoriesController(t *testing.T) {
	t.Run("create carries the emoji through", func(t *testing.T) {
		_, router, cleanup := setupCollectionsTest(t)
		defer cleanup()

		w := doRequest(router, "POST", "/api/categories", "u1", gin.H{"name": "Tech", "emoji": "💻"})
		require.Equal(t, http.StatusCreated, w.Code)

		var category struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Emoji string `json:"emoji"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))
		assert.NotEmpty(t, category.ID)
		assert.Equal(t, "Tech", category.Name)
		assert.Equal(t, "💻", category.Emoji)
	})

	t.Run("delete removes the category", func(t *testing.T) {
		repo, router, cleanup := setupCollectionsTest(t)
		defer cleanup()

		category, err := repo.CreateCategory(context.Background(), "Tech", "", "u1")
		require.NoError(t, err)

		w := doRequest(router, "DELETE", "/api/categories/"+category.ID, "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		categories, err := repo.GetCategoriesForUser(context.Background(), "u1")
		require.NoError(t, err)
		assert.Empty(t, categories)
	})
}
