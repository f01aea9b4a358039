package http

import (
	"github.com/gin-gonic/gin"

	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/hydrate"
	"github.com/linkmarkhq/linkmark/internal/services"
	"github.com/linkmarkhq/linkmark/internal/tasks"
)

// RouterConfig carries every dependency the router needs. A single config
// struct keeps the constructor signature stable as controllers grow.
type RouterConfig struct {
	BookmarkStore    BookmarkStore
	TagStore         TagStore
	BookmarkTagStore BookmarkTagStore
	CollectionStore  CollectionStore
	CategoryStore    CategoryStore
	Resolver         hydrate.Resolver
	IngestService    *services.IngestService
	CheckoutClient   CheckoutCreator
	HealthDB         Pinger
	TaskClient       *tasks.Client
	HydrationPolicy  config.HydrationPolicy
	Version          string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.HealthDB, cfg.Version)
	bookmarksController := NewBookmarksController(
		cfg.BookmarkStore,
		cfg.BookmarkTagStore,
		cfg.Resolver,
		cfg.IngestService,
		cfg.HydrationPolicy,
	)
	tagsController := NewTagsController(cfg.TagStore, cfg.TaskClient)
	collectionsController := NewCollectionsController(cfg.CollectionStore)
	categoriesController := NewCategoriesController(cfg.CategoryStore)

	router.GET("/health", health.Health)

	router.POST("/api/bookmarks", bookmarksController.CreateBookmark)
	router.GET("/api/bookmarks", bookmarksController.ListBookmarks)
	router.GET("/api/bookmarks/:id", bookmarksController.GetBookmark)
	router.PATCH("/api/bookmarks/:id", bookmarksController.UpdateBookmark)
	router.DELETE("/api/bookmarks/:id", bookmarksController.DeleteBookmark)

	router.POST("/api/bookmarks/:id/favourite", bookmarksController.AddFavourite)
	router.DELETE("/api/bookmarks/:id/favourite", bookmarksController.RemoveFavourite)

	router.POST("/api/bookmarks/:id/tags", bookmarksController.AddTagToBookmark)
	router.DELETE("/api/bookmarks/:id/tags/:tagId", bookmarksController.RemoveTagFromBookmark)
	router.POST("/api/bookmarks/:id/collections", bookmarksController.AddCollectionToBookmark)
	router.DELETE("/api/bookmarks/:id/collections/:collectionId", bookmarksController.RemoveCollectionFromBookmark)
	router.PUT("/api/bookmarks/:id/category", bookmarksController.SetBookmarkCategory)
	router.DELETE("/api/bookmarks/:id/category", bookmarksController.ClearBookmarkCategory)

	router.GET("/api/tags", tagsController.GetAllTags)
	router.POST("/api/tags", tagsController.CreateTag)
	router.DELETE("/api/tags/:id", tagsController.DeleteTag)
	router.POST("/api/admin/tags/cleanup", tagsController.CleanupOrphanTags)

	router.GET("/api/collections", collectionsController.GetAllCollections)
	router.POST("/api/collections", collectionsController.CreateCollection)
	router.DELETE("/api/collections/:id", collectionsController.DeleteCollection)

	router.GET("/api/categories", categoriesController.GetAllCategories)
	router.POST("/api/categories", categoriesController.CreateCategory)
	router.DELETE("/api/categories/:id", categoriesController.DeleteCategory)

	if cfg.CheckoutClient != nil {
		checkoutController := NewCheckoutController(cfg.CheckoutClient)
		router.POST("/api/checkout", checkoutController.CreateCheckout)
	}

	return router
}
