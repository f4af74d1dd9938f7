// Package sector aggregates per-stock metrics into sector snapshots and
// serves them through a freshness-aware cache.
package sector

import (
	"context"
	"errors"
	"time"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// Aggregator builds one sector snapshot per pass from already-fetched
// bar data.
type Aggregator struct {
	engine    interfaces.MetricsEngine
	snapshots interfaces.SnapshotStore
	logger    *common.Logger
	now       func() time.Time
}

// NewAggregator creates a new aggregator
func NewAggregator(engine interfaces.MetricsEngine, snapshots interfaces.SnapshotStore, logger *common.Logger) *Aggregator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Aggregator{
		engine:    engine,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Aggregate computes metrics for a sector's members and persists the
// resulting snapshot. Members drop out one by one, never as a group:
// unresolved names, fetch failures recorded in the batch map, and
// metric skips all just thin the snapshot. The input order of the
// surviving members is preserved. An empty snapshot is a valid result.
//
// codes maps display names to provider codes; names absent from it were
// unresolvable. fetched maps codes to their batch outcome; a code that
// is present and false is skipped, an absent code is still processed.
func (a *Aggregator) Aggregate(ctx context.Context, sector string, members []string, codes map[string]string, fetched map[string]bool, startDate, endDate string) *models.SectorSnapshot {
	stocks := make([]models.StockMetric, 0, len(members))

	for _, name := range members {
		code, ok := codes[name]
		if !ok {
			a.logger.Debug().Str("sector", sector).Str("name", name).Msg("Skipping member without resolved code")
			continue
		}

		if done, present := fetched[code]; present && !done {
			a.logger.Debug().Str("sector", sector).Str("ts_code", code).Msg("Skipping member with failed fetch")
			continue
		}

		metric, err := a.engine.Compute(ctx, name, code, startDate, endDate)
		if err != nil {
			var skip *interfaces.SkipError
			if errors.As(err, &skip) {
				a.logger.Debug().Str("sector", sector).Str("ts_code", code).Str("reason", skip.Reason).Msg("Skipping member")
			} else {
				a.logger.Warn().Err(err).Str("sector", sector).Str("ts_code", code).Msg("Metric computation failed")
			}
			continue
		}

		stocks = append(stocks, *metric)
	}

	score := models.SectorScore(stocks)
	for i := range stocks {
		stocks[i].SectorScore = score
	}

	snap := models.NewSectorSnapshot(sector, stocks, a.now())
	if err := a.snapshots.SaveSnapshot(ctx, snap); err != nil {
		// the in-memory snapshot still serves this pass
		a.logger.Warn().Err(err).Str("sector", sector).Msg("Snapshot save failed")
	}

	a.logger.Info().
		Str("sector", sector).
		Int("members", len(members)).
		Int("included", len(stocks)).
		Float64("score", score).
		Msg("Sector aggregated")

	return snap
}
