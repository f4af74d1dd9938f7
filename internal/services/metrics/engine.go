// Package metrics derives per-stock window statistics from stored bars.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// Engine computes window metrics for a single stock from the bar store.
type Engine struct {
	bars   interfaces.BarStore
	logger *common.Logger
	now    func() time.Time
}

// NewEngine creates a new metrics engine
func NewEngine(bars interfaces.BarStore, logger *common.Logger) *Engine {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Engine{
		bars:   bars,
		logger: logger,
		now:    time.Now,
	}
}

// Compute derives the metric row for one stock over [startDate, endDate].
// Missing data is signalled as a SkipError so callers can drop the stock
// without failing the sector.
func (e *Engine) Compute(ctx context.Context, name, tsCode, startDate, endDate string) (*models.StockMetric, error) {
	latest, err := e.bars.QueryBars(ctx, tsCode, interfaces.BarQuery{Limit: 1, Ascending: false})
	if err != nil {
		return nil, fmt.Errorf("latest bar query for %s: %w", tsCode, err)
	}
	if len(latest) == 0 {
		return nil, &interfaces.SkipError{TsCode: tsCode, Reason: interfaces.SkipNoLatestPrice}
	}
	latestBar := latest[0]

	window, err := e.bars.QueryBars(ctx, tsCode, interfaces.BarQuery{
		StartDate: startDate,
		EndDate:   endDate,
		Ascending: true,
	})
	if err != nil {
		return nil, fmt.Errorf("window query for %s: %w", tsCode, err)
	}
	if len(window) == 0 {
		return nil, &interfaces.SkipError{TsCode: tsCode, Reason: interfaces.SkipNoHistory}
	}

	peak := window[0]
	maxPctChange := window[0].PctChg
	maxVolume := window[0].Vol
	for _, bar := range window[1:] {
		if bar.High > peak.High {
			peak = bar
		}
		if bar.PctChg > maxPctChange {
			maxPctChange = bar.PctChg
		}
		if bar.Vol > maxVolume {
			maxVolume = bar.Vol
		}
	}

	metric := &models.StockMetric{
		Name:         name,
		TsCode:       tsCode,
		LatestPrice:  latestBar.Close,
		LatestVolume: latestBar.Vol,
		PeakPrice:    peak.High,
		PeakDate:     e.displayDate(peak.TradeDate),
		MaxVolume:    maxVolume,
		MaxPctChange: maxPctChange,
	}

	if maxVolume > 0 {
		metric.VolumeRatio = latestBar.Vol / maxVolume * 100
	}

	// signed: negative below the peak, positive only when a stale
	// window leaves the peak behind the latest close. Peak of zero
	// means no usable highs, so drawdown stays undefined.
	if peak.High > 0 {
		drawdown := (latestBar.Close - peak.High) / peak.High * 100
		metric.DrawdownPct = &drawdown
	}

	return metric, nil
}

// displayDate reformats a trade date for responses, clamping dates in
// the future to today. Providers occasionally return placeholder rows
// dated ahead of the clock.
func (e *Engine) displayDate(tradeDate string) string {
	parsed, err := time.Parse(models.TradeDateLayout, tradeDate)
	if err != nil {
		return tradeDate
	}
	now := e.now()
	if parsed.After(now) {
		return now.Format(models.DisplayDateLayout)
	}
	return parsed.Format(models.DisplayDateLayout)
}

// Ensure Engine implements MetricsEngine
var _ interfaces.MetricsEngine = (*Engine)(nil)
