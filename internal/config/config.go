package config

import (
	"time"

	"github.com/spf13/viper"
)

// HydrationPolicy controls how a dangling entity reference is handled
// while building the hydrated bookmark view.
type HydrationPolicy string

const (
	// HydrationPolicyDrop omits the unresolved reference and records a
	// diagnostic (default).
	HydrationPolicyDrop HydrationPolicy = "drop"
	// HydrationPolicyStrict fails the whole hydration on the first
	// unresolved reference.
	HydrationPolicyStrict HydrationPolicy = "strict"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Summarizer
		Inference
		Hydration
		Checkout
		Tasks
		Scheduler
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Summarizer struct {
		Enabled bool
		BaseURL string
		Timeout time.Duration
	}
	Inference struct {
		Enabled bool
		BaseURL string
		Timeout time.Duration
	}
	Hydration struct {
		Policy HydrationPolicy
	}
	Checkout struct {
		APIURL  string
		APIKey  string
		StoreID string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Scheduler struct {
		SummaryBackfillEnabled  bool
		SummaryBackfillSchedule string // Cron format: "*/30 * * * *" = every 30 minutes
		TagCleanupEnabled       bool
		TagCleanupSchedule      string // Cron format: "0 4 * * *" = daily at 04:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Summarization service defaults
	v.SetDefault("summarizer_enabled", true)
	v.SetDefault("summarizer_base_url", DefaultSummarizerBaseURL)
	v.SetDefault("summarizer_timeout", "15s")

	// Tag/category inference defaults
	v.SetDefault("inference_enabled", true)
	v.SetDefault("inference_base_url", DefaultSummarizerBaseURL)
	v.SetDefault("inference_timeout", "10s")

	// Hydration defaults
	v.SetDefault("hydration_policy", string(HydrationPolicyDrop))

	// Checkout (Lemon Squeezy) defaults
	v.SetDefault("checkout_api_url", DefaultCheckoutAPIURL)
	v.SetDefault("checkout_api_key", "")
	v.SetDefault("checkout_store_id", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Scheduler defaults
	v.SetDefault("summary_backfill_enabled", true)
	v.SetDefault("summary_backfill_schedule", "*/30 * * * *")
	v.SetDefault("tag_cleanup_enabled", true)
	v.SetDefault("tag_cleanup_schedule", "0 4 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Summarizer: Summarizer{
			Enabled: v.GetBool("SUMMARIZER_ENABLED"),
			BaseURL: v.GetString("SUMMARIZER_BASE_URL"),
			Timeout: v.GetDuration("SUMMARIZER_TIMEOUT"),
		},
		Inference: Inference{
			Enabled: v.GetBool("INFERENCE_ENABLED"),
			BaseURL: v.GetString("INFERENCE_BASE_URL"),
			Timeout: v.GetDuration("INFERENCE_TIMEOUT"),
		},
		Hydration: Hydration{
			Policy: HydrationPolicy(v.GetString("HYDRATION_POLICY")),
		},
		Checkout: Checkout{
			APIURL:  v.GetString("CHECKOUT_API_URL"),
			APIKey:  v.GetString("CHECKOUT_API_KEY"),
			StoreID: v.GetString("CHECKOUT_STORE_ID"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Scheduler: Scheduler{
			SummaryBackfillEnabled:  v.GetBool("SUMMARY_BACKFILL_ENABLED"),
			SummaryBackfillSchedule: v.GetString("SUMMARY_BACKFILL_SCHEDULE"),
			TagCleanupEnabled:       v.GetBool("TAG_CLEANUP_ENABLED"),
			TagCleanupSchedule:      v.GetString("TAG_CLEANUP_SCHEDULE"),
		},
	}
}
