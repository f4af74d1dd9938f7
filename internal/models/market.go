// Package models defines the core data structures for Sectorwatch
package models

import (
	"time"

	"github.com/google/uuid"
)

// Market segment identifiers. The upstream provider partitions instruments
// into mainland-listed (CN) and Hong Kong (HK) segments with separate
// endpoints and batch limits.
const (
	MarketCN = "CN"
	MarketHK = "HK"
)

// TradeDateLayout is the provider-native trade date format (e.g. "20240131").
const TradeDateLayout = "20060102"

// DisplayDateLayout is the date format surfaced to the presentation layer.
const DisplayDateLayout = "2006-01-02"

// SymbolInfo is one symbol registry entry, keyed by TsCode.
// The registry is replaced wholesale on each basic-info refresh, so stale
// entries for delisted instruments drop out automatically.
type SymbolInfo struct {
	TsCode      string    `json:"ts_code"`
	Symbol      string    `json:"symbol"`
	Name        string    `json:"name"`
	Area        string    `json:"area"`
	Industry    string    `json:"industry"`
	Market      string    `json:"market"`
	LastUpdated time.Time `json:"last_updated"`
}

// IsHK reports whether the symbol trades on the Hong Kong segment.
func (s *SymbolInfo) IsHK() bool {
	return s.Market == MarketHK
}

// IsHKCode reports whether a provider code belongs to the HK segment.
func IsHKCode(tsCode string) bool {
	return len(tsCode) > 3 && tsCode[len(tsCode)-3:] == ".HK"
}

// DailyBar is one raw daily OHLCV row. At most one bar exists per
// (TsCode, TradeDate); fetches for an existing pair overwrite all
// non-key fields.
type DailyBar struct {
	TsCode    string  `json:"ts_code"`
	TradeDate string  `json:"trade_date"` // TradeDateLayout
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	PreClose  float64 `json:"pre_close"`
	Change    float64 `json:"change"`
	PctChg    float64 `json:"pct_chg"`
	Vol       float64 `json:"vol"`
	Amount    float64 `json:"amount"`
}

// Key returns the natural record key for upserts.
func (b *DailyBar) Key() string {
	return b.TsCode + ":" + b.TradeDate
}

// StockMetric is the derived per-symbol summary for one aggregation pass.
// It is recomputed from stored bars every time a sector is aggregated and
// never persisted on its own. DrawdownPct is a pointer so a missing value
// serializes as an explicit null, never NaN or a sentinel.
type StockMetric struct {
	Name         string   `json:"name"`
	TsCode       string   `json:"code"`
	LatestPrice  float64  `json:"latest_price"`
	LatestVolume float64  `json:"latest_volume"`
	PeakPrice    float64  `json:"highest_price"`
	PeakDate     string   `json:"highest_date"` // DisplayDateLayout
	MaxVolume    float64  `json:"max_volume"`
	MaxPctChange float64  `json:"max_window_increase"`
	DrawdownPct  *float64 `json:"drop_percentage"`
	VolumeRatio  float64  `json:"volume_ratio"`
	SectorScore  float64  `json:"sector_score"`
}

// SectorSnapshot is one timestamped aggregation result for a sector.
// Snapshots form an append-only log; "latest" is the max FetchedAt.
type SectorSnapshot struct {
	ID        string        `json:"snapshot_id"`
	Sector    string        `json:"sector"`
	Stocks    []StockMetric `json:"stocks"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// NewSectorSnapshot builds a snapshot with a fresh ID and timestamp.
func NewSectorSnapshot(sector string, stocks []StockMetric, fetchedAt time.Time) *SectorSnapshot {
	if stocks == nil {
		stocks = []StockMetric{}
	}
	return &SectorSnapshot{
		ID:        uuid.NewString(),
		Sector:    sector,
		Stocks:    stocks,
		FetchedAt: fetchedAt,
	}
}

// SectorScore computes the dispersion score for a set of member metrics:
// the mean of abs(DrawdownPct) over members with a non-null drawdown,
// 0 when none qualify. Sectors whose stocks sit far from their window
// peaks score higher.
func SectorScore(stocks []StockMetric) float64 {
	var sum float64
	var n int
	for i := range stocks {
		if stocks[i].DrawdownPct == nil {
			continue
		}
		d := *stocks[i].DrawdownPct
		if d < 0 {
			d = -d
		}
		sum += d
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// SectorComparison is the full read-path result: per-sector metric lists,
// per-sector scores, a suggested display order (by score, descending), and
// the fetch timestamp of the snapshot each sector was served from.
type SectorComparison struct {
	Sectors       map[string][]StockMetric `json:"data"`
	Scores        map[string]float64       `json:"sector_scores"`
	SortedSectors []string                 `json:"sorted_sectors"`
	FetchedAt     map[string]time.Time     `json:"fetch_times"`
}

// RefreshState is the advisory lifecycle of the background refresh task.
type RefreshState string

const (
	RefreshIdle       RefreshState = "idle"
	RefreshInProgress RefreshState = "in_progress"
	RefreshComplete   RefreshState = "complete"
	RefreshError      RefreshState = "error"
)

// RefreshStatus is the advisory status surfaced to the presentation layer.
// It short-circuits duplicate refresh triggers; it never gates correctness.
type RefreshStatus struct {
	State         RefreshState `json:"state"`
	LastUpdate    *time.Time   `json:"last_update"`
	Error         string       `json:"error,omitempty"`
	HasCachedData bool         `json:"has_cached_data"`
}
