package interfaces

import (
	"context"
	"time"

	"github.com/jyang/sectorwatch/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	SymbolRegistry() SymbolRegistryStore
	Bars() BarStore
	Snapshots() SnapshotStore

	// Lifecycle
	Close() error
}

// SymbolRegistryStore manages the symbol registry. The registry is owned by
// the store layer and replaced wholesale on each basic-info refresh.
type SymbolRegistryStore interface {
	// ReplaceAll atomically swaps the full registry contents.
	ReplaceAll(ctx context.Context, entries []models.SymbolInfo) error

	// GetByName returns the entry whose display name matches exactly,
	// or (nil, nil) when absent.
	GetByName(ctx context.Context, name string) (*models.SymbolInfo, error)

	// Search returns up to limit entries whose display name contains the
	// given fragment. Result order is implementation-defined.
	Search(ctx context.Context, nameFragment string, limit int) ([]models.SymbolInfo, error)

	// Count returns the number of registry entries.
	Count(ctx context.Context) (int, error)
}

// BarQuery configures a daily-bar range query.
type BarQuery struct {
	StartDate string // inclusive, models.TradeDateLayout; empty = unbounded
	EndDate   string // inclusive; empty = unbounded
	Limit     int    // 0 = no limit
	Ascending bool   // default is descending by trade date
}

// BarStore persists raw daily bars keyed by (ts_code, trade_date).
type BarStore interface {
	// UpsertBars writes a batch of bars. Existing (ts_code, trade_date)
	// rows are overwritten; the operation is idempotent so a failed call
	// is always safe to retry.
	UpsertBars(ctx context.Context, bars []models.DailyBar) error

	// QueryBars returns bars for one instrument ordered by trade date.
	// No matches yields an empty slice, never an error.
	QueryBars(ctx context.Context, tsCode string, q BarQuery) ([]models.DailyBar, error)
}

// SnapshotStore persists the append-only sector snapshot log.
type SnapshotStore interface {
	// SaveSnapshot appends one snapshot.
	SaveSnapshot(ctx context.Context, snap *models.SectorSnapshot) error

	// LatestSnapshot returns the most recent snapshot for a sector whose
	// age is within maxAge. maxAge <= 0 accepts any age. Returns
	// (nil, nil) when no qualifying snapshot exists.
	LatestSnapshot(ctx context.Context, sector string, maxAge time.Duration) (*models.SectorSnapshot, error)

	// HasSnapshot reports whether any snapshot exists for the sector,
	// regardless of age.
	HasSnapshot(ctx context.Context, sector string) (bool, error)
}
