package sector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// background refresh ceiling; one full pass over every sector's symbols
const refreshTimeout = 15 * time.Minute

// Service is the freshness-aware read and refresh surface over the
// snapshot log. Reads degrade through three tiers and never fail: serve
// fresh snapshots when every sector has one, otherwise run a full
// refresh, and fall back to stale-or-empty data when the refresh blows
// up entirely.
type Service struct {
	resolver   interfaces.SymbolResolver
	fetcher    interfaces.HistoryFetcher
	aggregator *Aggregator
	snapshots  interfaces.SnapshotStore
	sectors    map[string][]string
	windowDays int
	freshness  time.Duration
	logger     *common.Logger
	now        func() time.Time

	// advisory state only; it short-circuits duplicate triggers and
	// feeds the status endpoint, it never gates reads
	mu          sync.Mutex
	state       models.RefreshState
	lastSuccess *time.Time
	lastErr     string
}

// NewService creates a new sector service
func NewService(
	resolver interfaces.SymbolResolver,
	fetcher interfaces.HistoryFetcher,
	aggregator *Aggregator,
	snapshots interfaces.SnapshotStore,
	sectors map[string][]string,
	windowDays int,
	freshness time.Duration,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		resolver:   resolver,
		fetcher:    fetcher,
		aggregator: aggregator,
		snapshots:  snapshots,
		sectors:    sectors,
		windowDays: windowDays,
		freshness:  freshness,
		logger:     logger,
		now:        time.Now,
		state:      models.RefreshIdle,
	}
}

// GetComparison returns the cross-sector comparison. forceRefresh skips
// the fresh-cache tier outright.
func (s *Service) GetComparison(ctx context.Context, forceRefresh bool) (*models.SectorComparison, error) {
	if !forceRefresh {
		if comp := s.fromFreshCache(ctx); comp != nil {
			return comp, nil
		}
		s.logger.Info().Msg("Cache incomplete or expired, refreshing all sectors")
	} else {
		s.logger.Info().Msg("Forced refresh, bypassing cache")
	}

	comp, err := s.refreshAll(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Full refresh failed, serving degraded data")
		return s.degraded(ctx), nil
	}
	return comp, nil
}

// fromFreshCache serves the comparison only when every sector has a
// snapshot within the freshness window. Scores are recomputed from the
// stored members rather than trusted from the snapshot.
func (s *Service) fromFreshCache(ctx context.Context) *models.SectorComparison {
	snaps := make(map[string]*models.SectorSnapshot, len(s.sectors))
	for sector := range s.sectors {
		snap, err := s.snapshots.LatestSnapshot(ctx, sector, s.freshness)
		if err != nil {
			s.logger.Warn().Err(err).Str("sector", sector).Msg("Snapshot lookup failed")
			return nil
		}
		if snap == nil {
			s.logger.Debug().Str("sector", sector).Msg("No fresh snapshot")
			return nil
		}
		snaps[sector] = snap
	}

	s.logger.Info().Int("sectors", len(snaps)).Msg("Serving all sectors from cache")
	return s.buildComparison(snaps)
}

// refreshAll runs the strict refresh sequence: registry, resolve,
// fetch, aggregate. Individual failures at every step degrade the
// result instead of aborting it; only a panic escapes as an error.
func (s *Service) refreshAll(ctx context.Context) (comp *models.SectorComparison, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("refresh panicked: %v", r)
			s.setError(err)
		}
	}()

	s.setState(models.RefreshInProgress)

	// a failed registry refresh is survivable, resolution falls back to
	// whatever the registry already holds
	if err := s.resolver.RefreshRegistry(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Registry refresh failed, using existing registry")
	}

	codes := make(map[string]string)
	for _, members := range s.sectors {
		for _, name := range members {
			if _, done := codes[name]; done {
				continue
			}
			code, err := s.resolver.Resolve(ctx, name)
			if err != nil {
				if errors.Is(err, interfaces.ErrSymbolNotFound) {
					s.logger.Debug().Str("name", name).Msg("Symbol not found")
				} else {
					s.logger.Warn().Err(err).Str("name", name).Msg("Symbol resolution failed")
				}
				continue
			}
			codes[name] = code
		}
	}

	all := make([]string, 0, len(codes))
	for _, code := range codes {
		all = append(all, code)
	}
	fetched := s.fetcher.FetchBatch(ctx, all, s.windowDays)

	end := s.now()
	start := end.AddDate(0, 0, -s.windowDays)
	startDate := start.Format(models.TradeDateLayout)
	endDate := end.Format(models.TradeDateLayout)

	snaps := make(map[string]*models.SectorSnapshot, len(s.sectors))
	for sector, members := range s.sectors {
		snap := s.aggregateSector(ctx, sector, members, codes, fetched, startDate, endDate)
		if snap == nil {
			// sector pass blew up; serve its last known snapshot if any
			snap, _ = s.snapshots.LatestSnapshot(ctx, sector, 0)
		}
		if snap == nil {
			snap = models.NewSectorSnapshot(sector, nil, time.Time{})
		}
		snaps[sector] = snap
	}

	s.setSuccess()
	return s.buildComparison(snaps), nil
}

// aggregateSector isolates one sector's pass; a panic inside it costs
// that sector only.
func (s *Service) aggregateSector(ctx context.Context, sector string, members []string, codes map[string]string, fetched map[string]bool, startDate, endDate string) (snap *models.SectorSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("sector", sector).Any("panic", r).Msg("Sector aggregation panicked")
			snap = nil
		}
	}()
	return s.aggregator.Aggregate(ctx, sector, members, codes, fetched, startDate, endDate)
}

// degraded serves whatever snapshots exist at any age, with empty lists
// for sectors that have never been aggregated.
func (s *Service) degraded(ctx context.Context) *models.SectorComparison {
	snaps := make(map[string]*models.SectorSnapshot, len(s.sectors))
	for sector := range s.sectors {
		snap, err := s.snapshots.LatestSnapshot(ctx, sector, 0)
		if err != nil || snap == nil {
			snap = models.NewSectorSnapshot(sector, nil, time.Time{})
		}
		snaps[sector] = snap
	}
	return s.buildComparison(snaps)
}

// buildComparison assembles the response shape, recomputing every score
// from the members it actually carries and ordering sectors by score
// descending, name ascending on ties.
func (s *Service) buildComparison(snaps map[string]*models.SectorSnapshot) *models.SectorComparison {
	comp := &models.SectorComparison{
		Sectors:   make(map[string][]models.StockMetric, len(snaps)),
		Scores:    make(map[string]float64, len(snaps)),
		FetchedAt: make(map[string]time.Time, len(snaps)),
	}

	for sector, snap := range snaps {
		score := models.SectorScore(snap.Stocks)
		for i := range snap.Stocks {
			snap.Stocks[i].SectorScore = score
		}
		comp.Sectors[sector] = snap.Stocks
		comp.Scores[sector] = score
		comp.FetchedAt[sector] = snap.FetchedAt
		comp.SortedSectors = append(comp.SortedSectors, sector)
	}

	sort.Slice(comp.SortedSectors, func(i, j int) bool {
		a, b := comp.SortedSectors[i], comp.SortedSectors[j]
		if comp.Scores[a] != comp.Scores[b] {
			return comp.Scores[a] > comp.Scores[b]
		}
		return a < b
	})

	return comp
}

// TriggerRefresh starts a detached background refresh. Returns false
// without doing anything when one is already running.
func (s *Service) TriggerRefresh() bool {
	s.mu.Lock()
	if s.state == models.RefreshInProgress {
		s.mu.Unlock()
		return false
	}
	s.state = models.RefreshInProgress
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		s.logger.Info().Msg("Background refresh started")
		if _, err := s.refreshAll(ctx); err != nil {
			s.logger.Error().Err(err).Msg("Background refresh failed")
			return
		}
		s.logger.Info().Msg("Background refresh complete")
	}()

	return true
}

// Status reports the advisory refresh state plus whether any snapshot
// exists at all.
func (s *Service) Status(ctx context.Context) models.RefreshStatus {
	s.mu.Lock()
	status := models.RefreshStatus{
		State:      s.state,
		LastUpdate: s.lastSuccess,
		Error:      s.lastErr,
	}
	s.mu.Unlock()

	for sector := range s.sectors {
		has, err := s.snapshots.HasSnapshot(ctx, sector)
		if err == nil && has {
			status.HasCachedData = true
			break
		}
	}

	return status
}

func (s *Service) setState(state models.RefreshState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Service) setSuccess() {
	now := s.now()
	s.mu.Lock()
	s.state = models.RefreshComplete
	s.lastSuccess = &now
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Service) setError(err error) {
	s.mu.Lock()
	s.state = models.RefreshError
	s.lastErr = err.Error()
	s.mu.Unlock()
}

// Ensure Service implements SectorService
var _ interfaces.SectorService = (*Service)(nil)
