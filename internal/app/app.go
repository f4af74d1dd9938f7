// Package app wires configuration, storage, clients, and services into
// a runnable application core.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jyang/sectorwatch/internal/clients/tushare"
	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/services/fetcher"
	"github.com/jyang/sectorwatch/internal/services/metrics"
	"github.com/jyang/sectorwatch/internal/services/resolver"
	"github.com/jyang/sectorwatch/internal/services/sector"
	storage "github.com/jyang/sectorwatch/internal/storage/surrealdb"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/sectorwatch-server.
type App struct {
	Config      *common.Config
	Logger      *common.Logger
	Storage     interfaces.StorageManager
	Market      interfaces.MarketDataClient
	Resolver    interfaces.SymbolResolver
	Fetcher     interfaces.HistoryFetcher
	Sectors     interfaces.SectorService
	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, the provider client, and
// every pipeline service. configPath may be empty, in which case the
// default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	// Load version from .version file (fallback if ldflags not set)
	common.LoadVersionFromFile()

	binDir := getBinaryDir()

	// Resolve config: explicit path, SECTORWATCH_CONFIG, binary dir, dev fallback
	if configPath == "" {
		configPath = os.Getenv("SECTORWATCH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "sectorwatch.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/sectorwatch.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Clients.Tushare.Token == "" {
		logger.Warn().Msg("Tushare token not configured - provider calls will be rejected")
	}

	marketClient := tushare.NewClient(
		config.Clients.Tushare.Token,
		tushare.WithBaseURL(config.Clients.Tushare.BaseURL),
		tushare.WithRateLimit(config.Clients.Tushare.RateLimit),
		tushare.WithTimeout(config.Clients.Tushare.GetTimeout()),
		tushare.WithLogger(logger),
	)

	resolverSvc := resolver.NewService(marketClient, storageManager.SymbolRegistry(), logger)
	fetcherSvc := fetcher.NewService(marketClient, storageManager.Bars(), logger)
	metricsEngine := metrics.NewEngine(storageManager.Bars(), logger)
	aggregator := sector.NewAggregator(metricsEngine, storageManager.Snapshots(), logger)
	sectorSvc := sector.NewService(
		resolverSvc,
		fetcherSvc,
		aggregator,
		storageManager.Snapshots(),
		config.GetSectors(),
		config.Market.GetWindowDays(),
		config.Market.GetFreshness(),
		logger,
	)

	app := &App{
		Config:      config,
		Logger:      logger,
		Storage:     storageManager,
		Market:      marketClient,
		Resolver:    resolverSvc,
		Fetcher:     fetcherSvc,
		Sectors:     sectorSvc,
		StartupTime: time.Now(),
	}

	logger.Info().
		Int("sectors", len(config.GetSectors())).
		Int("window_days", config.Market.GetWindowDays()).
		Str("freshness", config.Market.GetFreshness().String()).
		Msg("Application initialized")

	return app, nil
}

// StartInitialRefresh warms the snapshot cache in the background so the
// first read doesn't pay for a full provider pass. The trigger is
// advisory; a refresh already in flight wins.
func (a *App) StartInitialRefresh() {
	if a.Sectors.TriggerRefresh() {
		a.Logger.Info().Msg("Initial data refresh started")
	}
}

// Close releases all resources.
func (a *App) Close() error {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
