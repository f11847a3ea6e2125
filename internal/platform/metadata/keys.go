package metadata

// --- SQLite Keys ---
// These keys are used for the 'key' column in the 'metadata' SQLite table.
const (
	// LastScanCompletedAtKey stores the RFC3339 timestamp of the last
	// leaver scan that ran to completion. Dry runs do not update it.
	LastScanCompletedAtKey = "last_scan_completed_at"

	// LastMetricsDayKey stores the day key (RFC3339, UTC midnight) of the
	// last successfully persisted role metrics snapshot.
	LastMetricsDayKey = "last_metrics_day"
)

// --- Redis Keys ---
// These keys are used for storing metadata in Redis.
const (
	// RedisLastScanSummaryKey is a Redis String holding the terminal summary
	// line of the most recent leaver scan, for cheap reads from the API.
	RedisLastScanSummaryKey = "meta:last_scan_summary"
)
