// Package common provides shared utilities for Sectorwatch
package common

import "time"

// Freshness TTLs for data components
const (
	// FreshnessSnapshot is the default maximum age of a sector snapshot
	// still servable without triggering a refresh.
	FreshnessSnapshot = 30 * time.Minute

	// FreshnessRegistry is how long a symbol registry load is trusted
	// before a resolution miss may trigger a re-listing.
	FreshnessRegistry = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
