package config

// Default service locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./linkmark.db"

	// DefaultSummarizerBaseURL is the default address of the summarization service
	DefaultSummarizerBaseURL = "http://localhost:8891"

	// DefaultCheckoutAPIURL is the Lemon Squeezy API root
	DefaultCheckoutAPIURL = "https://api.lemonsqueezy.com/v1"
)
