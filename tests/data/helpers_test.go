package data

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jyang/sectorwatch/internal/common"
	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
	surrealdb "github.com/jyang/sectorwatch/internal/storage/surrealdb"
	tcommon "github.com/jyang/sectorwatch/tests/common"
)

// testManager creates a StorageManager connected to the shared SurrealDB
// container with a unique database per test for isolation.
func testManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	sc := tcommon.StartSurrealDB(t)

	cfg := &common.Config{
		Environment: "test",
		Storage: common.StorageConfig{
			Address:   sc.Address(),
			Namespace: "sectorwatch_data_test",
			Database:  fmt.Sprintf("d_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000),
			Username:  "root",
			Password:  "root",
		},
	}

	logger := common.NewSilentLogger()
	mgr, err := surrealdb.NewManager(logger, cfg)
	if err != nil {
		t.Fatalf("create storage manager: %v", err)
	}

	t.Cleanup(func() {
		mgr.Close()
	})

	return mgr
}

// testContext returns a background context.
func testContext() context.Context {
	return context.Background()
}

func symbolInfo(tsCode, name string) models.SymbolInfo {
	market := models.MarketCN
	if strings.HasSuffix(tsCode, ".HK") {
		market = models.MarketHK
	}
	return models.SymbolInfo{
		TsCode:   tsCode,
		Symbol:   strings.SplitN(tsCode, ".", 2)[0],
		Name:     name,
		Industry: "测试",
		Market:   market,
	}
}

func dailyBar(tsCode, tradeDate string, close float64) models.DailyBar {
	return models.DailyBar{
		TsCode:    tsCode,
		TradeDate: tradeDate,
		Open:      close - 1,
		High:      close + 2,
		Low:       close - 2,
		Close:     close,
		Vol:       10000,
		Amount:    close * 10000,
	}
}
