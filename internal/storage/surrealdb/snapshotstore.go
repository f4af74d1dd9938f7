package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// SnapshotStore implements interfaces.SnapshotStore using SurrealDB.
// Snapshots form an append-only log; nothing here updates or deletes.
type SnapshotStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *surrealdb.DB, logger *common.Logger) *SnapshotStore {
	return &SnapshotStore{db: db, logger: logger}
}

func (s *SnapshotStore) SaveSnapshot(ctx context.Context, snap *models.SectorSnapshot) error {
	sql := "CREATE sector_snapshots CONTENT $snap"
	vars := map[string]any{"snap": snap}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]models.SectorSnapshot](ctx, s.db, sql, vars)
		if err == nil {
			s.logger.Debug().Str("sector", snap.Sector).Int("stocks", len(snap.Stocks)).Msg("Snapshot saved")
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("failed to save snapshot for %s after retries: %w", snap.Sector, lastErr)
}

// LatestSnapshot returns the newest snapshot for a sector, subject to the
// freshness window. The age check happens here in Go so the same clock
// rules apply as everywhere else.
func (s *SnapshotStore) LatestSnapshot(ctx context.Context, sector string, maxAge time.Duration) (*models.SectorSnapshot, error) {
	sql := "SELECT * FROM sector_snapshots WHERE sector = $sector ORDER BY fetched_at DESC LIMIT 1"
	vars := map[string]any{"sector": sector}

	results, err := surrealdb.Query[[]models.SectorSnapshot](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot for %s: %w", sector, err)
	}

	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}

	snap := (*results)[0].Result[0]
	if maxAge > 0 && !common.IsFresh(snap.FetchedAt, maxAge) {
		return nil, nil
	}
	return &snap, nil
}

func (s *SnapshotStore) HasSnapshot(ctx context.Context, sector string) (bool, error) {
	type countRow struct {
		Count int `json:"count"`
	}

	sql := "SELECT count() FROM sector_snapshots WHERE sector = $sector GROUP ALL"
	vars := map[string]any{"sector": sector}

	results, err := surrealdb.Query[[]countRow](ctx, s.db, sql, vars)
	if err != nil {
		return false, fmt.Errorf("failed to count snapshots for %s: %w", sector, err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		return (*results)[0].Result[0].Count > 0, nil
	}
	return false, nil
}

// Compile-time check
var _ interfaces.SnapshotStore = (*SnapshotStore)(nil)
