package analysis

import (
	"nse-analyst/internal/errors"
	"nse-analyst/internal/models"
	"nse-analyst/pkg/utils"
)

// Defaults for the analyzer. Lot size 75 is NIFTY's exchange-mandated
// lot; both are overridable via AnalyzerConfig.
const (
	DefaultLotSize = 75
	DefaultCapital = 100000.0

	MinVolume       = 50
	MinOpenInterest = 400
)

// AnalyzerConfig holds the tunable constants of the spread analyzer.
type AnalyzerConfig struct {
	DefaultLotSize  int
	MinVolume       int64
	MinOpenInterest int64
}

// DefaultAnalyzerConfig returns the observed production constants.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		DefaultLotSize:  DefaultLotSize,
		MinVolume:       MinVolume,
		MinOpenInterest: MinOpenInterest,
	}
}

// Analyzer computes bear-put-spread metrics. It is pure and stateless:
// every call returns fresh metric values and never mutates its input.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an analyzer with the given configuration,
// backfilling zero values from the defaults.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	if cfg.DefaultLotSize == 0 {
		cfg.DefaultLotSize = DefaultLotSize
	}
	if cfg.MinVolume == 0 {
		cfg.MinVolume = MinVolume
	}
	if cfg.MinOpenInterest == 0 {
		cfg.MinOpenInterest = MinOpenInterest
	}
	return &Analyzer{cfg: cfg}
}

// Analyze computes metrics for every candidate. capital <= 0 falls back
// to DefaultCapital. Candidates must satisfy longPut.strike >
// shortPut.strike; a violation fails the whole batch with
// InvalidInputError rather than producing nonsensical metrics.
func (a *Analyzer) Analyze(candidates []models.SpreadCandidate, capital float64) ([]models.AnalyzedSpread, error) {
	if capital <= 0 {
		capital = DefaultCapital
	}

	results := make([]models.AnalyzedSpread, 0, len(candidates))
	for i, c := range candidates {
		if c.LongPut.Strike <= c.ShortPut.Strike {
			return nil, errors.NewInvalidInputError(
				"candidates", i,
				"bear put spread requires longPut.strike > shortPut.strike")
		}

		lot := float64(c.LotSize(a.cfg.DefaultLotSize))

		netDebit := utils.Round2((c.LongPut.Premium - c.ShortPut.Premium) * lot)
		strikeWidth := c.LongPut.Strike - c.ShortPut.Strike
		maxProfit := utils.Round2(strikeWidth*lot - netDebit)
		maxLoss := netDebit
		breakeven := utils.Round2(c.LongPut.Strike - netDebit/lot)

		metrics := models.SpreadMetrics{
			NetDebit:             netDebit,
			StrikeWidth:          strikeWidth,
			MaxProfit:            maxProfit,
			MaxLoss:              maxLoss,
			Breakeven:            breakeven,
			LiquidityPass:        a.legLiquid(c.LongPut) && a.legLiquid(c.ShortPut),
			RiskPercentOfCapital: utils.Round2(maxLoss / capital * 100),
		}

		// Division is guarded explicitly: a net-credit pair has no
		// meaningful risk-reward ratio.
		if maxLoss > 0 {
			rr := utils.Round2(maxProfit / maxLoss)
			metrics.RiskReward = &rr
		}

		results = append(results, models.AnalyzedSpread{
			SpreadCandidate: c,
			Metrics:         metrics,
		})
	}
	return results, nil
}

// QuoteLiquid reports whether a chain quote passes the liquidity filter.
func (a *Analyzer) QuoteLiquid(q *models.OptionQuote) bool {
	return q != nil && q.Volume >= a.cfg.MinVolume && q.OpenInterest >= a.cfg.MinOpenInterest
}

func (a *Analyzer) legLiquid(leg models.SpreadLeg) bool {
	return leg.Volume >= a.cfg.MinVolume && leg.OpenInterest >= a.cfg.MinOpenInterest
}

// FilterLiquid returns only the spreads whose both legs pass the
// liquidity filter. Analyze never filters on its own; this is the
// explicit policy knob for callers that want it.
func FilterLiquid(spreads []models.AnalyzedSpread) []models.AnalyzedSpread {
	out := make([]models.AnalyzedSpread, 0, len(spreads))
	for _, s := range spreads {
		if s.Metrics.LiquidityPass {
			out = append(out, s)
		}
	}
	return out
}
