package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nse-analyst/internal/analysis"
	"nse-analyst/internal/nse"
)

const upstreamChainJSON = `{
  "records": {
    "expiryDates": ["29-Jan-2026"],
    "timestamp": "10-Jan-2026 15:30:00",
    "underlyingValue": 24950.0,
    "data": [
      {
        "strikePrice": 24800,
        "expiryDate": "29-Jan-2026",
        "PE": {"openInterest": 600, "totalTradedVolume": 120, "impliedVolatility": 15.2, "lastPrice": 35.0}
      },
      {
        "strikePrice": 24900,
        "expiryDate": "29-Jan-2026",
        "PE": {"openInterest": 500, "totalTradedVolume": 100, "impliedVolatility": 15.0, "lastPrice": 60.0}
      },
      {
        "strikePrice": 25000,
        "expiryDate": "29-Jan-2026",
        "PE": {"openInterest": 50, "totalTradedVolume": 10, "impliedVolatility": 14.5, "lastPrice": 95.0}
      }
    ]
  }
}`

// Exercises the whole pipeline against a mocked exchange: warm-up,
// expiry selection, snapshot fetch, candidate generation and liquidity
// filtering. The 25000 put trades thin (volume 10, OI 50), so every
// spread using it must be screened out while 24900/24800 survives.
func TestPipelineFiltersIlliquidLegs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/option-chain":
			w.Header().Add("Set-Cookie", "nsit=tok; Path=/")
			w.Write([]byte("<html></html>"))
		case "/api/option-chain-contract-info":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"expiryDates": ["29-Jan-2026"]}`))
		case "/api/option-chain-v3":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(upstreamChainJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	fetcher := nse.NewFetcher(nse.FetcherConfig{
		BaseURL:     server.URL,
		MaxAttempts: 3,
		SettleDelay: time.Second,
		Sleep:       func(time.Duration) {},
	}, zerolog.Nop())

	svc := NewService(fetcher, ServiceConfig{MonthsAhead: 0, WindowRadius: 5}, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	}

	snap, err := svc.GetOptionChain(context.Background(), "NIFTY")
	if err != nil {
		t.Fatalf("GetOptionChain returned error: %v", err)
	}
	if snap.ExpiryDate != "29-Jan-2026" {
		t.Fatalf("ExpiryDate = %q, want 29-Jan-2026", snap.ExpiryDate)
	}

	candidates := svc.BuildPutCandidates(snap, 75)
	if len(candidates) != 3 {
		t.Fatalf("got %d candidates from 3 put strikes, want 3", len(candidates))
	}

	analyzer := analysis.NewAnalyzer(analysis.DefaultAnalyzerConfig())
	analyzed, err := analyzer.Analyze(candidates, 100000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	for _, s := range analyzed {
		usesThin := s.LongPut.Strike == 25000 || s.ShortPut.Strike == 25000
		if s.Metrics.LiquidityPass == usesThin {
			t.Errorf("spread %v/%v: LiquidityPass = %v",
				s.LongPut.Strike, s.ShortPut.Strike, s.Metrics.LiquidityPass)
		}
	}

	liquid := analysis.FilterLiquid(analyzed)
	if len(liquid) != 1 {
		t.Fatalf("got %d liquid spreads, want exactly the 24900/24800 pair", len(liquid))
	}
	best := liquid[0]
	if best.LongPut.Strike != 24900 || best.ShortPut.Strike != 24800 {
		t.Fatalf("liquid pair = %v/%v, want 24900/24800", best.LongPut.Strike, best.ShortPut.Strike)
	}
	if best.Metrics.NetDebit != 1875 {
		t.Errorf("NetDebit = %.2f, want 1875.00", best.Metrics.NetDebit)
	}
	if best.Metrics.MaxProfit != 5625 {
		t.Errorf("MaxProfit = %.2f, want 5625.00", best.Metrics.MaxProfit)
	}
	if best.Metrics.Breakeven != 24875 {
		t.Errorf("Breakeven = %.2f, want 24875.00", best.Metrics.Breakeven)
	}
}
