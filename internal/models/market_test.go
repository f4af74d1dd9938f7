package models

import (
	"testing"
	"time"
)

func ptr(f float64) *float64 { return &f }

func TestIsHKCode(t *testing.T) {
	cases := []struct {
		code string
		want bool
	}{
		{"00700.HK", true},
		{"09618.HK", true},
		{"002475.SZ", false},
		{"600519.SH", false},
		{".HK", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsHKCode(tc.code); got != tc.want {
			t.Errorf("IsHKCode(%q) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestDailyBarKey(t *testing.T) {
	b := DailyBar{TsCode: "002475.SZ", TradeDate: "20260312"}
	if b.Key() != "002475.SZ:20260312" {
		t.Errorf("Key = %q", b.Key())
	}
}

func TestSectorScoreMeanOfAbsolutes(t *testing.T) {
	stocks := []StockMetric{
		{Name: "甲", DrawdownPct: ptr(-20)},
		{Name: "乙", DrawdownPct: ptr(-10)},
		{Name: "丙", DrawdownPct: nil}, // skipped, not counted as zero
	}
	if got := SectorScore(stocks); got != 15 {
		t.Errorf("SectorScore = %f, want 15", got)
	}
}

func TestSectorScoreNoQualifyingMembers(t *testing.T) {
	if got := SectorScore(nil); got != 0 {
		t.Errorf("SectorScore(nil) = %f, want 0", got)
	}
	if got := SectorScore([]StockMetric{{DrawdownPct: nil}}); got != 0 {
		t.Errorf("SectorScore all-nil = %f, want 0", got)
	}
}

func TestSectorScorePositiveDrawdownCounts(t *testing.T) {
	// A stale window can leave the latest close above the stored peak
	stocks := []StockMetric{{DrawdownPct: ptr(5)}, {DrawdownPct: ptr(-15)}}
	if got := SectorScore(stocks); got != 10 {
		t.Errorf("SectorScore = %f, want 10", got)
	}
}

func TestNewSectorSnapshotNormalizesNilStocks(t *testing.T) {
	snap := NewSectorSnapshot("空板块", nil, time.Now())
	if snap.Stocks == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(snap.Stocks) != 0 {
		t.Errorf("expected no stocks, got %d", len(snap.Stocks))
	}
	if snap.ID == "" {
		t.Error("expected a generated ID")
	}
}
