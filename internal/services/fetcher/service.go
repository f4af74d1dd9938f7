// Package fetcher pulls daily bar history from the provider and
// persists it to the bar store.
package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

const (
	// provider batch ceilings per market; the HK dataset throttles
	// harder than the mainland one
	chunkSizeCN = 50
	chunkSizeHK = 30

	// concurrent fetches within a chunk
	maxWorkers = 4
)

// Service fetches bar history for batches of symbols.
type Service struct {
	client interfaces.MarketDataClient
	bars   interfaces.BarStore
	logger *common.Logger
	now    func() time.Time
}

// NewService creates a new fetcher service
func NewService(client interfaces.MarketDataClient, bars interfaces.BarStore, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client: client,
		bars:   bars,
		logger: logger,
		now:    time.Now,
	}
}

// chunk splits codes into provider-sized groups.
func chunk(codes []string, size int) [][]string {
	var chunks [][]string
	for size > 0 && len(codes) > 0 {
		if len(codes) <= size {
			chunks = append(chunks, codes)
			break
		}
		chunks = append(chunks, codes[:size])
		codes = codes[size:]
	}
	return chunks
}

// FetchBatch pulls windowDays of history for every code and stores it.
// The result maps each requested code to whether its fetch-and-store
// round trip succeeded; every requested code appears exactly once. A
// failed code never fails the batch.
func (s *Service) FetchBatch(ctx context.Context, tsCodes []string, windowDays int) map[string]bool {
	results := make(map[string]bool, len(tsCodes))
	var mu sync.Mutex

	var cn, hk []string
	seen := make(map[string]bool, len(tsCodes))
	for _, code := range tsCodes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		if models.IsHKCode(code) {
			hk = append(hk, code)
		} else {
			cn = append(cn, code)
		}
	}

	end := s.now()
	start := end.AddDate(0, 0, -windowDays)
	startDate := start.Format(models.TradeDateLayout)
	endDate := end.Format(models.TradeDateLayout)

	// chunks run one after another, codes within a chunk fan out
	runChunk := func(codes []string, fetch func(context.Context, string, string, string) ([]models.DailyBar, error)) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxWorkers)
		for _, code := range codes {
			code := code
			g.Go(func() error {
				ok := s.fetchOne(gctx, code, startDate, endDate, fetch)
				mu.Lock()
				results[code] = ok
				mu.Unlock()
				return nil
			})
		}
		g.Wait()
	}

	for _, group := range chunk(cn, chunkSizeCN) {
		runChunk(group, s.client.Daily)
	}
	for _, group := range chunk(hk, chunkSizeHK) {
		runChunk(group, s.client.HKDaily)
	}

	succeeded := 0
	for _, ok := range results {
		if ok {
			succeeded++
		}
	}
	s.logger.Info().
		Int("requested", len(results)).
		Int("succeeded", succeeded).
		Str("start", startDate).
		Str("end", endDate).
		Msg("History batch complete")

	return results
}

// fetchOne performs a single fetch-and-store round trip. No bars in
// the window counts as failure.
func (s *Service) fetchOne(ctx context.Context, code, startDate, endDate string, fetch func(context.Context, string, string, string) ([]models.DailyBar, error)) bool {
	bars, err := fetch(ctx, code, startDate, endDate)
	if err != nil {
		s.logger.Warn().Err(err).Str("ts_code", code).Msg("History fetch failed")
		return false
	}
	if len(bars) == 0 {
		s.logger.Warn().Str("ts_code", code).Msg("History fetch returned no bars")
		return false
	}

	if err := s.bars.UpsertBars(ctx, bars); err != nil {
		s.logger.Warn().Err(err).Str("ts_code", code).Msg("Bar upsert failed")
		return false
	}

	return true
}

// Ensure Service implements HistoryFetcher
var _ interfaces.HistoryFetcher = (*Service)(nil)
