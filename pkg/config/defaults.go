package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "lessondesk"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Conflict refresh loop period.
	DefaultRefreshInterval = 5 * time.Minute

	// Watched selections older than this are dropped on the next sweep;
	// abandoned expansions must not pin the watch set forever.
	DefaultSelectionTTL = 30 * time.Minute

	// Expansion search bound: maxTries = weeks * multiplier.
	DefaultExpansionTriesMultiplier = 4
	DefaultMaxRecurrenceWeeks       = 52

	// Availability window loaded for the booking desk view.
	DefaultVisibleWindowWeeks = 4

	DefaultPaginationLimit = 100
)
