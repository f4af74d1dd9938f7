package data

import (
	"testing"

	"github.com/jyang/sectorwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryReplaceAndLookup(t *testing.T) {
	mgr := testManager(t)
	store := mgr.SymbolRegistry()
	ctx := testContext()

	entries := []models.SymbolInfo{
		symbolInfo("002475.SZ", "立讯精密"),
		symbolInfo("09618.HK", "京东集团-SW"),
		symbolInfo("00700.HK", "腾讯控股"),
	}
	require.NoError(t, store.ReplaceAll(ctx, entries))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	got, err := store.GetByName(ctx, "立讯精密")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "002475.SZ", got.TsCode)
	assert.Equal(t, models.MarketCN, got.Market)
	assert.False(t, got.LastUpdated.IsZero(), "ReplaceAll stamps LastUpdated")

	// Exact lookup only; a fragment misses
	miss, err := store.GetByName(ctx, "立讯")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestRegistryReplaceIsWholesale(t *testing.T) {
	mgr := testManager(t)
	store := mgr.SymbolRegistry()
	ctx := testContext()

	require.NoError(t, store.ReplaceAll(ctx, []models.SymbolInfo{
		symbolInfo("600519.SH", "贵州茅台"),
		symbolInfo("000001.SZ", "平安银行"),
	}))

	// Second generation drops 平安银行 and adds 宁德时代
	require.NoError(t, store.ReplaceAll(ctx, []models.SymbolInfo{
		symbolInfo("600519.SH", "贵州茅台"),
		symbolInfo("300750.SZ", "宁德时代"),
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	gone, err := store.GetByName(ctx, "平安银行")
	require.NoError(t, err)
	assert.Nil(t, gone, "entries from the previous generation must not survive")

	added, err := store.GetByName(ctx, "宁德时代")
	require.NoError(t, err)
	require.NotNil(t, added)
	assert.Equal(t, "300750.SZ", added.TsCode)
}

func TestRegistrySearch(t *testing.T) {
	mgr := testManager(t)
	store := mgr.SymbolRegistry()
	ctx := testContext()

	require.NoError(t, store.ReplaceAll(ctx, []models.SymbolInfo{
		symbolInfo("09618.HK", "京东集团-SW"),
		symbolInfo("06618.HK", "京东健康"),
		symbolInfo("00700.HK", "腾讯控股"),
	}))

	hits, err := store.Search(ctx, "京东", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Contains(t, h.Name, "京东")
	}

	limited, err := store.Search(ctx, "京东", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.Search(ctx, "不存在的名字", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
