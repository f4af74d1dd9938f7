// Package resolver maps display names to provider symbol codes using
// a locally stored symbol registry.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

// Service resolves stock names against the symbol registry, refreshing
// the registry from the provider when a lookup misses.
type Service struct {
	client   interfaces.MarketDataClient
	registry interfaces.SymbolRegistryStore
	logger   *common.Logger
	group    singleflight.Group
}

// NewService creates a new resolver service
func NewService(client interfaces.MarketDataClient, registry interfaces.SymbolRegistryStore, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		client:   client,
		registry: registry,
		logger:   logger,
	}
}

// corporate suffixes stripped or appended when the exact name misses.
// Listed names drift between filings and colloquial usage (平安银行 vs
// 平安银行股份有限公司), so both directions are tried.
var stripSuffixes = []string{"集团", "股份", "有限公司", "公司"}
var appendSuffixes = []string{"集团", "股份"}

// hk share-class suffixes on dual-listed instruments (weighted voting
// rights and secondary listings).
var hkClassSuffixes = []string{"-W", "-SW"}

// nameVariants returns candidate spellings for a display name, the
// given name first, deduplicated in order.
func nameVariants(name string) []string {
	variants := []string{name}
	seen := map[string]bool{name: true}
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	for _, suffix := range stripSuffixes {
		if strings.HasSuffix(name, suffix) {
			add(strings.TrimSuffix(name, suffix))
		}
	}
	for _, suffix := range appendSuffixes {
		add(name + suffix)
	}
	for _, suffix := range hkClassSuffixes {
		if strings.HasSuffix(name, suffix) {
			add(strings.TrimSuffix(name, suffix))
		} else {
			add(name + suffix)
		}
	}

	return variants
}

// lookup tries every variant against the registry: exact match first,
// then a fuzzy search ranked exact > prefix > first hit.
func (s *Service) lookup(ctx context.Context, name string) (*models.SymbolInfo, error) {
	for _, variant := range nameVariants(name) {
		info, err := s.registry.GetByName(ctx, variant)
		if err != nil {
			return nil, fmt.Errorf("registry lookup for %s: %w", variant, err)
		}
		if info != nil {
			return info, nil
		}

		matches, err := s.registry.Search(ctx, variant, 10)
		if err != nil {
			return nil, fmt.Errorf("registry search for %s: %w", variant, err)
		}
		if len(matches) == 0 {
			continue
		}

		best := matches[0]
		for _, m := range matches {
			if m.Name == variant {
				best = m
				break
			}
			if strings.HasPrefix(m.Name, variant) && !strings.HasPrefix(best.Name, variant) {
				best = m
			}
		}
		return &best, nil
	}

	return nil, nil
}

// Resolve returns the provider code for a stock display name. A miss
// triggers one registry refresh before giving up.
func (s *Service) Resolve(ctx context.Context, name string) (string, error) {
	info, err := s.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if info != nil {
		return info.TsCode, nil
	}

	count, err := s.registry.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("registry count: %w", err)
	}

	s.logger.Info().Str("name", name).Int("registry_size", count).Msg("Symbol not in registry, refreshing")

	if err := s.RefreshRegistry(ctx); err != nil {
		return "", fmt.Errorf("registry refresh: %w", err)
	}

	info, err = s.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if info == nil {
		return "", fmt.Errorf("%w: %s", interfaces.ErrSymbolNotFound, name)
	}
	return info.TsCode, nil
}

// RefreshRegistry replaces the registry with a fresh listing pull.
// Concurrent callers share a single in-flight refresh.
func (s *Service) RefreshRegistry(ctx context.Context) error {
	_, err, _ := s.group.Do("registry", func() (any, error) {
		cn, err := s.client.StockBasic(ctx)
		if err != nil {
			return nil, fmt.Errorf("stock_basic: %w", err)
		}

		hk, err := s.client.HKBasic(ctx)
		if err != nil {
			return nil, fmt.Errorf("hk_basic: %w", err)
		}

		symbols := make([]models.SymbolInfo, 0, len(cn)+len(hk))
		symbols = append(symbols, cn...)
		symbols = append(symbols, hk...)

		if err := s.registry.ReplaceAll(ctx, symbols); err != nil {
			return nil, fmt.Errorf("registry replace: %w", err)
		}

		s.logger.Info().Int("cn", len(cn)).Int("hk", len(hk)).Msg("Symbol registry refreshed")
		return nil, nil
	})
	return err
}

// Ensure Service implements SymbolResolver
var _ interfaces.SymbolResolver = (*Service)(nil)
