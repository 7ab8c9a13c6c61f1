package constants

import "time"

const (
	PollIntervalDefault = 30 * time.Second
	PollIntervalMin     = 5 * time.Second
	FlagsCacheTTL       = 10 * time.Minute
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	// v7 queries cover the full rank range in one request.
	V7RangeFrom = 0
	V7RangeTo   = 50000

	PageFetchConcurrency = 8
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// Snapshots kept per leaderboard before pruning.
	SnapshotRetention = 100

	// avg_place differences at or below this do not count as a row change.
	AvgPlaceTolerance = 0.01
)
