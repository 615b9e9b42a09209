package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nse-analyst/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleSnapshot(fetchedAt time.Time) *models.OptionChainSnapshot {
	return &models.OptionChainSnapshot{
		Symbol:          "NIFTY",
		ExpiryDate:      "26-Feb-2026",
		UnderlyingValue: 22030.5,
		Timestamp:       "10-Jan-2026 15:30:00",
		FetchedAt:       fetchedAt,
		Strikes: []models.StrikeRow{
			{
				StrikePrice: 22000,
				Put: &models.OptionQuote{
					StrikePrice:       22000,
					LastPrice:         150.25,
					Volume:            600,
					OpenInterest:      5000,
					ImpliedVolatility: 15.2,
				},
			},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(time.Now().UTC())
	if err := s.SaveSnapshot(ctx, snap); err != nil {
		t.Fatalf("SaveSnapshot returned error: %v", err)
	}

	got, err := s.GetLatestSnapshot(ctx, "NIFTY", "26-Feb-2026")
	if err != nil {
		t.Fatalf("GetLatestSnapshot returned error: %v", err)
	}

	if got.Symbol != snap.Symbol || got.ExpiryDate != snap.ExpiryDate {
		t.Errorf("identity = %s/%s, want %s/%s", got.Symbol, got.ExpiryDate, snap.Symbol, snap.ExpiryDate)
	}
	if got.UnderlyingValue != snap.UnderlyingValue {
		t.Errorf("UnderlyingValue = %v, want %v", got.UnderlyingValue, snap.UnderlyingValue)
	}
	if len(got.Strikes) != 1 {
		t.Fatalf("got %d strikes, want 1", len(got.Strikes))
	}
	put := got.Strikes[0].Put
	if put == nil || put.LastPrice != 150.25 || put.OpenInterest != 5000 {
		t.Errorf("put leg = %+v, want lastPrice 150.25, oi 5000", put)
	}
}

func TestGetLatestSnapshotPicksNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := sampleSnapshot(time.Now().UTC().Add(-time.Hour))
	older.UnderlyingValue = 21900
	newer := sampleSnapshot(time.Now().UTC())
	newer.UnderlyingValue = 22100

	for _, snap := range []*models.OptionChainSnapshot{older, newer} {
		if err := s.SaveSnapshot(ctx, snap); err != nil {
			t.Fatalf("SaveSnapshot returned error: %v", err)
		}
	}

	got, err := s.GetLatestSnapshot(ctx, "NIFTY", "26-Feb-2026")
	if err != nil {
		t.Fatalf("GetLatestSnapshot returned error: %v", err)
	}
	if got.UnderlyingValue != 22100 {
		t.Errorf("UnderlyingValue = %v, want the newer snapshot's 22100", got.UnderlyingValue)
	}
}

func TestGetLatestSnapshotMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetLatestSnapshot(context.Background(), "NIFTY", "26-Feb-2026"); err == nil {
		t.Error("expected error for missing snapshot, got nil")
	}
}

func TestAnalysisRoundTripWithFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rr := 0.67
	records := []*AnalysisRecord{
		{
			Symbol: "NIFTY", Expiry: "26-Feb-2026", Underlying: 22030,
			Capital: 100000, LotSize: 75, CandidateCount: 45, LiquidCount: 12,
			TopSpreads: []models.AnalyzedSpread{
				{
					SpreadCandidate: models.SpreadCandidate{
						LongPut:  models.SpreadLeg{Strike: 22200, Premium: 185.50},
						ShortPut: models.SpreadLeg{Strike: 22100, Premium: 125.75},
					},
					Metrics: models.SpreadMetrics{
						NetDebit: 4481.25, MaxProfit: 3018.75, MaxLoss: 4481.25,
						Breakeven: 22140.25, RiskReward: &rr, LiquidityPass: true,
					},
				},
			},
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		},
		{
			Symbol: "BANKNIFTY", Expiry: "26-Feb-2026", Underlying: 48000,
			Capital: 100000, LotSize: 30, CandidateCount: 20, LiquidCount: 5,
			TopSpreads: []models.AnalyzedSpread{},
			CreatedAt:  time.Now().UTC(),
		},
	}

	for _, rec := range records {
		if err := s.SaveAnalysis(ctx, rec); err != nil {
			t.Fatalf("SaveAnalysis returned error: %v", err)
		}
		if rec.ID == 0 {
			t.Error("SaveAnalysis did not backfill the record ID")
		}
	}

	all, err := s.GetAnalyses(ctx, AnalysisFilter{})
	if err != nil {
		t.Fatalf("GetAnalyses returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}
	// Newest first.
	if all[0].Symbol != "BANKNIFTY" {
		t.Errorf("first record = %s, want the newer BANKNIFTY run", all[0].Symbol)
	}

	nifty, err := s.GetAnalyses(ctx, AnalysisFilter{Symbol: "NIFTY"})
	if err != nil {
		t.Fatalf("GetAnalyses(symbol) returned error: %v", err)
	}
	if len(nifty) != 1 || nifty[0].Symbol != "NIFTY" {
		t.Fatalf("symbol filter returned %d records, want 1 NIFTY run", len(nifty))
	}

	// The stored spread survives the JSON round trip, pointer and all.
	spreads := nifty[0].TopSpreads
	if len(spreads) != 1 {
		t.Fatalf("got %d spreads, want 1", len(spreads))
	}
	if spreads[0].Metrics.RiskReward == nil || *spreads[0].Metrics.RiskReward != 0.67 {
		t.Errorf("RiskReward not preserved: %v", spreads[0].Metrics.RiskReward)
	}
	if spreads[0].LongPut.Strike != 22200 {
		t.Errorf("LongPut.Strike = %v, want 22200", spreads[0].LongPut.Strike)
	}

	limited, err := s.GetAnalyses(ctx, AnalysisFilter{Limit: 1})
	if err != nil {
		t.Fatalf("GetAnalyses(limit) returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit filter returned %d records, want 1", len(limited))
	}

	recent, err := s.GetAnalyses(ctx, AnalysisFilter{StartDate: time.Now().UTC().Add(-30 * time.Minute)})
	if err != nil {
		t.Fatalf("GetAnalyses(start) returned error: %v", err)
	}
	if len(recent) != 1 || recent[0].Symbol != "BANKNIFTY" {
		t.Errorf("date filter returned %v, want only the recent BANKNIFTY run", len(recent))
	}
}
