package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
)

type mockClient struct {
	mu         sync.Mutex
	cnSymbols  []models.SymbolInfo
	hkSymbols  []models.SymbolInfo
	basicCalls int
	basicErr   error
}

func (m *mockClient) Daily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error) {
	return nil, nil
}

func (m *mockClient) HKDaily(ctx context.Context, tsCode, startDate, endDate string) ([]models.DailyBar, error) {
	return nil, nil
}

func (m *mockClient) StockBasic(ctx context.Context) ([]models.SymbolInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.basicCalls++
	if m.basicErr != nil {
		return nil, m.basicErr
	}
	return m.cnSymbols, nil
}

func (m *mockClient) HKBasic(ctx context.Context) ([]models.SymbolInfo, error) {
	return m.hkSymbols, nil
}

type mockRegistry struct {
	mu      sync.Mutex
	symbols []models.SymbolInfo
}

func (m *mockRegistry) ReplaceAll(ctx context.Context, symbols []models.SymbolInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = symbols
	return nil
}

func (m *mockRegistry) GetByName(ctx context.Context, name string) (*models.SymbolInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.symbols {
		if s.Name == name {
			info := s
			return &info, nil
		}
	}
	return nil, nil
}

func (m *mockRegistry) Search(ctx context.Context, nameFragment string, limit int) ([]models.SymbolInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matches []models.SymbolInfo
	for _, s := range m.symbols {
		if strings.Contains(s.Name, nameFragment) {
			matches = append(matches, s)
			if len(matches) >= limit {
				break
			}
		}
	}
	return matches, nil
}

func (m *mockRegistry) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.symbols), nil
}

func newService(registry *mockRegistry, client *mockClient) *Service {
	return NewService(client, registry, common.NewSilentLogger())
}

func TestResolveExactMatch(t *testing.T) {
	registry := &mockRegistry{symbols: []models.SymbolInfo{
		{TsCode: "000001.SZ", Name: "平安银行"},
	}}
	svc := newService(registry, &mockClient{})

	code, err := svc.Resolve(context.Background(), "平安银行")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "000001.SZ" {
		t.Errorf("expected 000001.SZ, got %s", code)
	}
}

func TestResolveStripsCorporateSuffix(t *testing.T) {
	registry := &mockRegistry{symbols: []models.SymbolInfo{
		{TsCode: "601318.SH", Name: "中国平安"},
	}}
	svc := newService(registry, &mockClient{})

	code, err := svc.Resolve(context.Background(), "中国平安集团")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "601318.SH" {
		t.Errorf("expected 601318.SH, got %s", code)
	}
}

func TestResolveAppendsSuffix(t *testing.T) {
	registry := &mockRegistry{symbols: []models.SymbolInfo{
		{TsCode: "600739.SH", Name: "辽宁成大股份"},
	}}
	svc := newService(registry, &mockClient{})

	code, err := svc.Resolve(context.Background(), "辽宁成大")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "600739.SH" {
		t.Errorf("expected 600739.SH, got %s", code)
	}
}

func TestResolveHKClassSuffix(t *testing.T) {
	registry := &mockRegistry{symbols: []models.SymbolInfo{
		{TsCode: "09988.HK", Name: "阿里巴巴-SW", Market: "HK"},
	}}
	svc := newService(registry, &mockClient{})

	code, err := svc.Resolve(context.Background(), "阿里巴巴")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "09988.HK" {
		t.Errorf("expected 09988.HK, got %s", code)
	}
}

func TestResolvePrefersExactOverPrefix(t *testing.T) {
	registry := &mockRegistry{symbols: []models.SymbolInfo{
		{TsCode: "000002.SZ", Name: "万科企业A"},
		{TsCode: "000001.SZ", Name: "万科A"},
	}}
	svc := newService(registry, &mockClient{})

	// No exact registry hit for the fragment, ranking picks the exact
	// search match over an earlier partial one.
	code, err := svc.Resolve(context.Background(), "万科A")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "000001.SZ" {
		t.Errorf("expected exact match 000001.SZ, got %s", code)
	}
}

func TestResolveMissTriggersRefresh(t *testing.T) {
	registry := &mockRegistry{}
	client := &mockClient{
		cnSymbols: []models.SymbolInfo{{TsCode: "600519.SH", Name: "贵州茅台"}},
	}
	svc := newService(registry, client)

	code, err := svc.Resolve(context.Background(), "贵州茅台")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if code != "600519.SH" {
		t.Errorf("expected 600519.SH, got %s", code)
	}
	if client.basicCalls != 1 {
		t.Errorf("expected 1 refresh pull, got %d", client.basicCalls)
	}
}

func TestResolveNotFoundAfterRefresh(t *testing.T) {
	registry := &mockRegistry{}
	svc := newService(registry, &mockClient{})

	_, err := svc.Resolve(context.Background(), "不存在的公司")
	if err == nil {
		t.Fatal("expected error for unknown name")
	}
	if !errors.Is(err, interfaces.ErrSymbolNotFound) {
		t.Errorf("expected ErrSymbolNotFound, got %v", err)
	}
}

func TestRefreshRegistryCombinesMarkets(t *testing.T) {
	registry := &mockRegistry{}
	client := &mockClient{
		cnSymbols: []models.SymbolInfo{{TsCode: "600519.SH", Name: "贵州茅台"}},
		hkSymbols: []models.SymbolInfo{{TsCode: "00700.HK", Name: "腾讯控股", Market: "HK"}},
	}
	svc := newService(registry, client)

	if err := svc.RefreshRegistry(context.Background()); err != nil {
		t.Fatalf("RefreshRegistry failed: %v", err)
	}

	count, _ := registry.Count(context.Background())
	if count != 2 {
		t.Errorf("expected 2 symbols, got %d", count)
	}
}

func TestRefreshRegistryPropagatesClientError(t *testing.T) {
	registry := &mockRegistry{}
	client := &mockClient{basicErr: errors.New("provider down")}
	svc := newService(registry, client)

	if err := svc.RefreshRegistry(context.Background()); err == nil {
		t.Fatal("expected error when provider fails")
	}
}

func TestConcurrentRefreshCollapses(t *testing.T) {
	registry := &mockRegistry{}
	client := &mockClient{
		cnSymbols: []models.SymbolInfo{{TsCode: "600519.SH", Name: "贵州茅台"}},
	}
	svc := newService(registry, client)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RefreshRegistry(context.Background())
		}()
	}
	wg.Wait()

	// Simultaneous callers share in-flight work, so the provider sees
	// far fewer pulls than callers.
	if client.basicCalls > 2 {
		t.Errorf("expected collapsed refreshes, got %d provider calls", client.basicCalls)
	}
}

func TestNameVariantsDeduplicated(t *testing.T) {
	variants := nameVariants("中国平安")
	seen := map[string]bool{}
	for _, v := range variants {
		if seen[v] {
			t.Errorf("duplicate variant %q", v)
		}
		seen[v] = true
	}
	if variants[0] != "中国平安" {
		t.Errorf("expected original name first, got %q", variants[0])
	}
}
