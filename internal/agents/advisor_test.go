package agents

import (
	"context"
	"strings"
	"testing"

	"nse-analyst/internal/models"
)

type fakeLLM struct {
	system string
	user   string
	reply  string
}

func (f *fakeLLM) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.system = systemPrompt
	f.user = userPrompt
	return f.reply, nil
}

func sampleSpreads() []models.AnalyzedSpread {
	rr := 0.67
	return []models.AnalyzedSpread{
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
		{
			SpreadCandidate: models.SpreadCandidate{
				LongPut:  models.SpreadLeg{Strike: 22300, Premium: 240.00},
				ShortPut: models.SpreadLeg{Strike: 22000, Premium: 110.00},
			},
			Metrics: models.SpreadMetrics{
				NetDebit: 9750, MaxProfit: 12750, MaxLoss: 9750,
				Breakeven: 22170, LiquidityPass: false,
			},
		},
	}
}

func TestExplainFeedsMetricsToModel(t *testing.T) {
	llm := &fakeLLM{reply: "explanation"}
	advisor := NewAdvisor(llm)

	got, err := advisor.Explain(context.Background(), "NIFTY", "26-Feb-2026", 22030.5, sampleSpreads())
	if err != nil {
		t.Fatalf("Explain returned error: %v", err)
	}
	if got != "explanation" {
		t.Errorf("Explain = %q, want the model's reply", got)
	}

	// The digest carries every number the model is allowed to quote.
	for _, want := range []string{
		"NIFTY 26-Feb-2026",
		"spot 22030.50",
		"buy 22200 put @ 185.50",
		"sell 22100 put @ 125.75",
		"debit 4481.25",
		"breakeven 22140.25",
		"risk-reward 0.67",
		"liquid",
	} {
		if !strings.Contains(llm.user, want) {
			t.Errorf("digest missing %q:\n%s", want, llm.user)
		}
	}

	// Rank order preserved in the digest.
	if strings.Index(llm.user, "22200") > strings.Index(llm.user, "22300") {
		t.Error("digest reordered the spreads")
	}

	// The second spread is flagged illiquid and its undefined ratio
	// rendered as n/a.
	if !strings.Contains(llm.user, "illiquid") {
		t.Error("digest does not flag the illiquid spread")
	}
	if !strings.Contains(llm.user, "risk-reward n/a") {
		t.Error("digest does not render the undefined ratio as n/a")
	}
	if !strings.Contains(llm.system, "not investment advice") {
		t.Error("system prompt missing the advice disclaimer")
	}
}

func TestExplainRejectsEmptyInput(t *testing.T) {
	advisor := NewAdvisor(&fakeLLM{})
	if _, err := advisor.Explain(context.Background(), "NIFTY", "26-Feb-2026", 22030, nil); err == nil {
		t.Error("expected error for empty spread list")
	}
}
