// Package interfaces defines service contracts for Sectorwatch
package interfaces

import (
	"context"

	"github.com/jyang/sectorwatch/internal/models"
)

// MarketDataClient is the upstream market-data provider. It is treated as
// unreliable: any call may return empty rows, error out, or return stale
// data, and callers must tolerate all three.
type MarketDataClient interface {
	// Daily retrieves daily bars for a mainland-listed instrument.
	// Dates use models.TradeDateLayout. An empty slice is not an error.
	Daily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error)

	// HKDaily retrieves daily bars for a Hong Kong instrument via the
	// HK-segment endpoint.
	HKDaily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error)

	// StockBasic lists basic info for all mainland-listed instruments.
	StockBasic(ctx context.Context) ([]models.SymbolInfo, error)

	// HKBasic lists basic info for all Hong Kong instruments.
	HKBasic(ctx context.Context) ([]models.SymbolInfo, error)
}
