package data

import (
	"testing"

	"github.com/jyang/sectorwatch/internal/interfaces"
	"github.com/jyang/sectorwatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertBarsIsIdempotent(t *testing.T) {
	mgr := testManager(t)
	store := mgr.Bars()
	ctx := testContext()

	bars := []models.DailyBar{
		dailyBar("002475.SZ", "20260310", 40.0),
		dailyBar("002475.SZ", "20260311", 41.0),
	}
	require.NoError(t, store.UpsertBars(ctx, bars))

	// Re-upserting the same (ts_code, trade_date) keys must not duplicate rows
	bars[1].Close = 43.5
	require.NoError(t, store.UpsertBars(ctx, bars))

	got, err := store.QueryBars(ctx, "002475.SZ", interfaces.BarQuery{Ascending: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "20260310", got[0].TradeDate)
	assert.Equal(t, 43.5, got[1].Close, "re-upsert overwrites the existing row")
}

func TestQueryBarsDateWindowAndOrder(t *testing.T) {
	mgr := testManager(t)
	store := mgr.Bars()
	ctx := testContext()

	require.NoError(t, store.UpsertBars(ctx, []models.DailyBar{
		dailyBar("00700.HK", "20260309", 400),
		dailyBar("00700.HK", "20260310", 410),
		dailyBar("00700.HK", "20260311", 405),
		dailyBar("00700.HK", "20260312", 420),
	}))

	windowed, err := store.QueryBars(ctx, "00700.HK", interfaces.BarQuery{
		StartDate: "20260310",
		EndDate:   "20260311",
		Ascending: true,
	})
	require.NoError(t, err)
	require.Len(t, windowed, 2)
	assert.Equal(t, "20260310", windowed[0].TradeDate)
	assert.Equal(t, "20260311", windowed[1].TradeDate)

	latest, err := store.QueryBars(ctx, "00700.HK", interfaces.BarQuery{
		Ascending: false,
		Limit:     1,
	})
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "20260312", latest[0].TradeDate)
	assert.Equal(t, 420.0, latest[0].Close)
}

func TestQueryBarsIsolatesInstruments(t *testing.T) {
	mgr := testManager(t)
	store := mgr.Bars()
	ctx := testContext()

	require.NoError(t, store.UpsertBars(ctx, []models.DailyBar{
		dailyBar("002475.SZ", "20260312", 40),
		dailyBar("300750.SZ", "20260312", 250),
	}))

	got, err := store.QueryBars(ctx, "002475.SZ", interfaces.BarQuery{Ascending: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "002475.SZ", got[0].TsCode)
}

func TestQueryBarsNoMatchReturnsEmptySlice(t *testing.T) {
	mgr := testManager(t)
	store := mgr.Bars()
	ctx := testContext()

	got, err := store.QueryBars(ctx, "999999.SZ", interfaces.BarQuery{Ascending: true})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
