package surrealdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// BarStore implements interfaces.BarStore using SurrealDB.
type BarStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

// NewBarStore creates a new BarStore.
func NewBarStore(db *surrealdb.DB, logger *common.Logger) *BarStore {
	return &BarStore{db: db, logger: logger}
}

// barRecordID derives the record ID from the natural (ts_code, trade_date)
// key. SurrealDB record IDs cannot contain dots or colons, so both become
// underscores; the derivation is what makes re-fetches idempotent.
func barRecordID(bar *models.DailyBar) string {
	return strings.ReplaceAll(strings.ReplaceAll(bar.Key(), ".", "_"), ":", "_")
}

// UpsertBars writes bars one record at a time under their natural key.
// Re-running a fetch overwrites rather than duplicates.
func (s *BarStore) UpsertBars(ctx context.Context, bars []models.DailyBar) error {
	for i := range bars {
		bar := &bars[i]
		if bar.TsCode == "" || bar.TradeDate == "" {
			continue
		}

		sql := "UPSERT $rid CONTENT $bar"
		vars := map[string]any{
			"rid": surrealmodels.NewRecordID("daily_bars", barRecordID(bar)),
			"bar": bar,
		}

		var lastErr error
		saved := false
		for attempt := 1; attempt <= 3; attempt++ {
			_, err := surrealdb.Query[[]models.DailyBar](ctx, s.db, sql, vars)
			if err == nil {
				saved = true
				break
			}
			lastErr = err
		}
		if !saved {
			return fmt.Errorf("failed to upsert bar %s after retries: %w", bar.Key(), lastErr)
		}
	}

	s.logger.Debug().Int("bars", len(bars)).Msg("Bars upserted")
	return nil
}

func (s *BarStore) QueryBars(ctx context.Context, tsCode string, q interfaces.BarQuery) ([]models.DailyBar, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM daily_bars WHERE ts_code = $ts_code")
	vars := map[string]any{"ts_code": tsCode}

	if q.StartDate != "" {
		sb.WriteString(" AND trade_date >= $start_date")
		vars["start_date"] = q.StartDate
	}
	if q.EndDate != "" {
		sb.WriteString(" AND trade_date <= $end_date")
		vars["end_date"] = q.EndDate
	}

	if q.Ascending {
		sb.WriteString(" ORDER BY trade_date ASC")
	} else {
		sb.WriteString(" ORDER BY trade_date DESC")
	}

	if q.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.Limit)
	}

	results, err := surrealdb.Query[[]models.DailyBar](ctx, s.db, sb.String(), vars)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars for %s: %w", tsCode, err)
	}

	if results != nil && len(*results) > 0 && (*results)[0].Result != nil {
		return (*results)[0].Result, nil
	}
	return []models.DailyBar{}, nil
}

// Compile-time check
var _ interfaces.BarStore = (*BarStore)(nil)
