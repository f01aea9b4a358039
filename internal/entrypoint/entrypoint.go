package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/linkmarkhq/linkmark/internal/checkout"
	"github.com/linkmarkhq/linkmark/internal/config"
	"github.com/linkmarkhq/linkmark/internal/database"
	"github.com/linkmarkhq/linkmark/internal/database/bookmarks"
	"github.com/linkmarkhq/linkmark/internal/database/taxonomy"
	http_controllers "github.com/linkmarkhq/linkmark/internal/http"
	"github.com/linkmarkhq/linkmark/internal/inference"
	"github.com/linkmarkhq/linkmark/internal/scheduler"
	"github.com/linkmarkhq/linkmark/internal/services"
	"github.com/linkmarkhq/linkmark/internal/summarize"
	"github.com/linkmarkhq/linkmark/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Linkmark v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookmarkRepo := bookmarks.NewRepository(db.DB)
	taxonomyRepo := taxonomy.NewRepository(db.DB)

	// Summarization client (enrichment, never a precondition)
	var summarizer summarize.Client
	if cfg.Summarizer.Enabled {
		summarizer = summarize.NewHTTPClient(cfg.Summarizer.BaseURL, cfg.Summarizer.Timeout)
	} else {
		log.Printf("WARNING: Summarization is disabled. Bookmarks will be created without summaries.")
	}

	// Tag/category inference client
	var suggester inference.Suggester
	if cfg.Inference.Enabled {
		suggester = inference.NewHTTPClient(cfg.Inference.BaseURL, cfg.Inference.Timeout)
	}

	ingestService := services.NewIngestService(
		bookmarkRepo,
		taxonomyRepo,
		taxonomyRepo,
		summarizer,
		suggester,
		cfg.Hydration.Policy,
	)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSummarizeBookmarkQueue(bookmarkRepo, summarizer),
			tasks.NewCleanupOrphanTagsQueue(taxonomyRepo),
		)

		ingestService.SetRetryEnqueuer(tasks.NewRetryEnqueuer(taskClient))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic maintenance: summary backfill + orphan tag cleanup
	var maintenance *scheduler.Scheduler
	if taskClient != nil {
		maintenance = scheduler.New(bookmarkRepo, taskClient, cfg.Scheduler)
		if err := maintenance.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// Checkout gateway; disabled when no API key is configured
	var checkoutClient http_controllers.CheckoutCreator
	if cfg.Checkout.APIKey != "" {
		checkoutClient = checkout.NewClient(cfg.Checkout.APIURL, cfg.Checkout.APIKey, cfg.Checkout.StoreID)
	} else {
		log.Printf("WARNING: Checkout API key is not set. Checkout endpoint will be disabled. Set 'CHECKOUT_API_KEY' environment variable to enable.")
	}

	routerCfg := http_controllers.RouterConfig{
		BookmarkStore:    bookmarkRepo,
		TagStore:         taxonomyRepo,
		BookmarkTagStore: taxonomyRepo,
		CollectionStore:  taxonomyRepo,
		CategoryStore:    taxonomyRepo,
		Resolver:         taxonomyRepo,
		IngestService:    ingestService,
		CheckoutClient:   checkoutClient,
		HealthDB:         db,
		TaskClient:       taskClient,
		HydrationPolicy:  cfg.Hydration.Policy,
		Version:          version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
