package models

// SpreadLeg describes one leg of a candidate spread.
// Gamma, Theta, ImpliedVol and LotSize are optional: nil means the
// value was not available upstream, which is different from zero.
type SpreadLeg struct {
	Strike       float64
	Premium      float64
	Delta        float64
	Gamma        *float64
	Theta        *float64
	Volume       int64
	OpenInterest int64
	ImpliedVol   *float64
	LotSize      *int
}

// SpreadCandidate is a (long, short) put pair submitted for analysis.
// A bear put spread buys the higher strike and sells the lower one,
// so LongPut.Strike must exceed ShortPut.Strike.
type SpreadCandidate struct {
	LongPut  SpreadLeg
	ShortPut SpreadLeg
}

// LotSize resolves the candidate's lot size, falling back to def when
// neither leg carries one.
func (c *SpreadCandidate) LotSize(def int) int {
	if c.LongPut.LotSize != nil {
		return *c.LongPut.LotSize
	}
	if c.ShortPut.LotSize != nil {
		return *c.ShortPut.LotSize
	}
	return def
}

// SpreadMetrics holds the computed economics of a bear put spread.
// RiskReward is nil when MaxLoss <= 0 (a net-credit pair), where the
// ratio is undefined.
type SpreadMetrics struct {
	NetDebit             float64
	StrikeWidth          float64
	MaxProfit            float64
	MaxLoss              float64
	Breakeven            float64
	RiskReward           *float64
	LiquidityPass        bool
	RiskPercentOfCapital float64
}

// AnalyzedSpread is a candidate annotated with its metrics.
type AnalyzedSpread struct {
	SpreadCandidate
	Metrics SpreadMetrics
}
