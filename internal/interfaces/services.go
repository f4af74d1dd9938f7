package interfaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/jyang/sectorwatch/internal/models"
)

// ErrSymbolNotFound is returned by SymbolResolver when a display name cannot
// be mapped to a provider code. Callers treat it as "skip this symbol",
// never as fatal.
var ErrSymbolNotFound = errors.New("symbol not found")

// SymbolResolver maps human-readable stock names to provider codes.
type SymbolResolver interface {
	// Resolve returns the provider code for a display name, trying exact
	// lookup, name variants, and a registry refresh-and-retry before
	// giving up with ErrSymbolNotFound.
	Resolve(ctx context.Context, displayName string) (string, error)

	// RefreshRegistry replaces the symbol registry from the provider's
	// basic-info listings. Idempotent and safe to call concurrently.
	RefreshRegistry(ctx context.Context) error
}

// HistoryFetcher batch-fetches raw daily history and hands it to the store.
type HistoryFetcher interface {
	// FetchBatch fetches windowDays of history for every code and upserts
	// the rows. The result covers every input code with no omissions: true
	// means both the fetch and the store write succeeded. Per-code failures
	// never abort the batch.
	FetchBatch(ctx context.Context, tsCodes []string, windowDays int) map[string]bool
}

// Skip reasons reported by the metrics engine.
const (
	SkipNoLatestPrice = "no_latest_price"
	SkipNoHistory     = "no_history"
)

// SkipError signals that one symbol should be omitted from its sector for
// this aggregation pass. It is the per-symbol half of the pipeline's
// catch-log-continue discipline: skips are data, not failures.
type SkipError struct {
	TsCode string
	Reason string
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %s: %s", e.TsCode, e.Reason)
}

// MetricsEngine derives per-symbol summary statistics from stored bars.
type MetricsEngine interface {
	// Compute builds a StockMetric for one symbol over the given window.
	// Returns a *SkipError when the symbol lacks the data to qualify.
	Compute(ctx context.Context, name, tsCode, startDate, endDate string) (*models.StockMetric, error)
}

// SectorService is the freshness-aware read and refresh surface.
type SectorService interface {
	// GetComparison returns per-sector metrics, serving fresh snapshots
	// when every sector has one, refreshing otherwise, and degrading to
	// stale-or-empty data when the refresh itself fails. It never returns
	// an error to the presentation layer alongside an empty result: reads
	// degrade, they don't throw.
	GetComparison(ctx context.Context, forceRefresh bool) (*models.SectorComparison, error)

	// TriggerRefresh starts a detached background refresh. Returns false
	// (no-op) when one is already in progress.
	TriggerRefresh() bool

	// Status returns the advisory refresh state plus whether any cached
	// snapshot exists at all.
	Status(ctx context.Context) models.RefreshStatus
}
