package agents

import (
	"context"
	"fmt"
	"strings"

	"nse-analyst/internal/models"
)

const advisorSystemPrompt = `You are a derivatives analyst for Indian index options.
You are given pre-computed bear put spread metrics. Explain the top candidates
in plain language: cost, maximum profit and loss, breakeven level and liquidity.
Do not recompute or alter any number. Do not invent spreads that are not listed.
Keep the answer under 250 words and note that this is not investment advice.`

// Advisor turns ranked spread metrics into a plain-language explanation.
type Advisor struct {
	llm LLMClient
}

// NewAdvisor creates an advisor backed by the given LLM client.
func NewAdvisor(llm LLMClient) *Advisor {
	return &Advisor{llm: llm}
}

// Explain summarizes the ranked spreads for the user. The spreads are
// expected to be pre-ranked; the advisor preserves their order.
func (a *Advisor) Explain(ctx context.Context, symbol, expiry string, underlying float64, spreads []models.AnalyzedSpread) (string, error) {
	if len(spreads) == 0 {
		return "", fmt.Errorf("no spreads to explain")
	}

	return a.llm.CompleteWithSystem(ctx, advisorSystemPrompt, buildSpreadDigest(symbol, expiry, underlying, spreads))
}

// buildSpreadDigest renders the spreads as a compact text table the
// model can quote from.
func buildSpreadDigest(symbol, expiry string, underlying float64, spreads []models.AnalyzedSpread) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s, spot %.2f, bear put spread candidates in rank order:\n", symbol, expiry, underlying)

	for i, s := range spreads {
		rr := "n/a"
		if s.Metrics.RiskReward != nil {
			rr = fmt.Sprintf("%.2f", *s.Metrics.RiskReward)
		}
		liquidity := "illiquid"
		if s.Metrics.LiquidityPass {
			liquidity = "liquid"
		}
		fmt.Fprintf(&b,
			"%d. buy %.0f put @ %.2f / sell %.0f put @ %.2f: debit %.2f, max profit %.2f, max loss %.2f, breakeven %.2f, risk-reward %s, %s\n",
			i+1,
			s.LongPut.Strike, s.LongPut.Premium,
			s.ShortPut.Strike, s.ShortPut.Premium,
			s.Metrics.NetDebit, s.Metrics.MaxProfit, s.Metrics.MaxLoss,
			s.Metrics.Breakeven, rr, liquidity)
	}
	return b.String()
}
