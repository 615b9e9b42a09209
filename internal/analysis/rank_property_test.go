package analysis

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"nse-analyst/internal/models"
)

// candidateGen produces bear-put candidates with valid strike ordering
// and a mix of liquid and illiquid legs.
func candidateGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(20000, 26000), // short strike
		gen.Float64Range(50, 500),      // strike width
		gen.Float64Range(1, 400),       // long premium
		gen.Float64Range(1, 400),       // short premium
		gen.Int64Range(0, 1000),        // volume
		gen.Int64Range(0, 10000),       // open interest
	).Map(func(vals []interface{}) models.SpreadCandidate {
		short := vals[0].(float64)
		width := vals[1].(float64)
		vol := vals[4].(int64)
		oi := vals[5].(int64)
		return models.SpreadCandidate{
			LongPut: models.SpreadLeg{
				Strike:       short + width,
				Premium:      vals[2].(float64),
				Volume:       vol,
				OpenInterest: oi,
			},
			ShortPut: models.SpreadLeg{
				Strike:       short,
				Premium:      vals[3].(float64),
				Volume:       vol,
				OpenInterest: oi,
			},
		}
	})
}

// Property: spread economics are internally consistent for any valid
// candidate. MaxProfit + MaxLoss equals the strike width times the lot,
// breakeven sits below the long strike by the per-share debit, and the
// risk-reward ratio exists exactly when the pair is a net debit.
func TestProperty_SpreadMetricsConsistency(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	properties.Property("metrics are internally consistent", prop.ForAll(
		func(c models.SpreadCandidate) bool {
			results, err := analyzer.Analyze([]models.SpreadCandidate{c}, 100000)
			if err != nil {
				t.Logf("Analyze failed for %+v: %v", c, err)
				return false
			}
			m := results[0].Metrics

			// MaxProfit + MaxLoss == width * lot, up to rounding.
			lot := 75.0
			total := m.MaxProfit + m.MaxLoss
			want := m.StrikeWidth * lot
			if diff := total - want; diff > 0.02 || diff < -0.02 {
				t.Logf("MaxProfit+MaxLoss = %.2f, want %.2f", total, want)
				return false
			}

			// A meaningful debit puts the breakeven strictly below the
			// long strike. Tiny debits can round away, so only assert
			// when the per-share debit survives rounding.
			if m.NetDebit/lot > 0.01 && m.Breakeven >= c.LongPut.Strike {
				t.Logf("Breakeven %.2f not below long strike %.2f", m.Breakeven, c.LongPut.Strike)
				return false
			}

			// RiskReward defined exactly when MaxLoss > 0.
			if (m.MaxLoss > 0) != (m.RiskReward != nil) {
				t.Logf("RiskReward presence mismatch: maxLoss=%.2f rr=%v", m.MaxLoss, m.RiskReward)
				return false
			}
			return true
		},
		candidateGen(),
	))

	properties.TestingRun(t)
}

// Property: Rank is deterministic, preserves the multiset of spreads,
// and never places an illiquid spread ahead of a liquid one.
func TestProperty_RankOrdering(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	properties.Property("rank is deterministic and liquidity-first", prop.ForAll(
		func(candidates []models.SpreadCandidate) bool {
			analyzed, err := analyzer.Analyze(candidates, 100000)
			if err != nil {
				t.Logf("Analyze failed: %v", err)
				return false
			}

			first := Rank(analyzed)
			second := Rank(analyzed)
			if !reflect.DeepEqual(first, second) {
				t.Log("Rank is not deterministic")
				return false
			}
			if len(first) != len(analyzed) {
				t.Logf("Rank changed length: %d -> %d", len(analyzed), len(first))
				return false
			}

			// No illiquid spread before a liquid one.
			seenIlliquid := false
			for _, s := range first {
				if !s.Metrics.LiquidityPass {
					seenIlliquid = true
				} else if seenIlliquid {
					t.Log("liquid spread ranked after an illiquid one")
					return false
				}
			}

			// Within the liquid debit spreads, maxLoss is non-decreasing.
			prev := -1.0
			for _, s := range first {
				if !s.Metrics.LiquidityPass || s.Metrics.MaxLoss <= 0 {
					continue
				}
				if prev > 0 && s.Metrics.MaxLoss < prev {
					t.Logf("maxLoss not non-decreasing: %.2f after %.2f", s.Metrics.MaxLoss, prev)
					return false
				}
				prev = s.Metrics.MaxLoss
			}
			return true
		},
		gen.SliceOf(candidateGen()),
	))

	properties.TestingRun(t)
}

func TestTopLimitsResults(t *testing.T) {
	analyzer := NewAnalyzer(DefaultAnalyzerConfig())

	var candidates []models.SpreadCandidate
	for i := 0; i < 8; i++ {
		candidates = append(candidates, models.SpreadCandidate{
			LongPut:  liquidLeg(22200+float64(i)*50, 180+float64(i)),
			ShortPut: liquidLeg(22100, 120),
		})
	}

	analyzed, err := analyzer.Analyze(candidates, 100000)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if got := Top(analyzed, 3); len(got) != 3 {
		t.Errorf("Top(.., 3) returned %d, want 3", len(got))
	}
	if got := Top(analyzed, 100); len(got) != len(analyzed) {
		t.Errorf("Top(.., 100) returned %d, want %d", len(got), len(analyzed))
	}
}
