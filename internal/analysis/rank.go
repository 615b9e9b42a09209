package analysis

import (
	"sort"

	"nse-analyst/internal/models"
)

// Rank orders analyzed spreads by a fixed, deterministic policy:
//
//  1. liquidity-passing spreads before illiquid ones
//  2. net-credit pairs (maxLoss <= 0) before debit pairs
//  3. lower maxLoss first (cheaper risk)
//  4. higher riskReward first
//  5. higher long strike first (final tie-break, keeps order total)
//
// The input is not mutated; a sorted copy is returned.
func Rank(spreads []models.AnalyzedSpread) []models.AnalyzedSpread {
	ranked := make([]models.AnalyzedSpread, len(spreads))
	copy(ranked, spreads)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]

		if a.Metrics.LiquidityPass != b.Metrics.LiquidityPass {
			return a.Metrics.LiquidityPass
		}

		aCredit := a.Metrics.MaxLoss <= 0
		bCredit := b.Metrics.MaxLoss <= 0
		if aCredit != bCredit {
			return aCredit
		}

		if a.Metrics.MaxLoss != b.Metrics.MaxLoss {
			return a.Metrics.MaxLoss < b.Metrics.MaxLoss
		}

		ar := rankRatio(a.Metrics.RiskReward)
		br := rankRatio(b.Metrics.RiskReward)
		if ar != br {
			return ar > br
		}

		return a.LongPut.Strike > b.LongPut.Strike
	})

	return ranked
}

// rankRatio treats an undefined risk-reward as the worst possible for
// ordering among debit pairs. Credit pairs are already ahead by rule 2.
func rankRatio(rr *float64) float64 {
	if rr == nil {
		return -1
	}
	return *rr
}

// Top returns the first n ranked spreads (or fewer).
func Top(spreads []models.AnalyzedSpread, n int) []models.AnalyzedSpread {
	ranked := Rank(spreads)
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
