package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"nse-analyst/internal/analysis"
	"nse-analyst/internal/logging"
	"nse-analyst/internal/models"
	"nse-analyst/internal/store"
	"nse-analyst/pkg/utils"
)

func addSpreadCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSpreadsCmd(app))
	rootCmd.AddCommand(newAdviseCmd(app))
}

func newSpreadsCmd(app *App) *cobra.Command {
	var (
		capital float64
		lotSize int
		months  int
		topN    int
		all     bool
		csvPath string
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "spreads [symbol]",
		Short: "Analyze bear put spread opportunities",
		Long: `Fetches the option chain around the at-the-money strike and analyzes
every bear put spread pair: net debit, max profit, max loss, breakeven
and risk-reward, ranked best first. Pairs failing the liquidity filter
are hidden unless --all is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			if capital <= 0 {
				capital = app.Config.Analysis.DefaultCapital
			}
			if lotSize <= 0 {
				lotSize = app.Config.Analysis.DefaultLotSize
			}

			if !utils.IsMarketOpen() {
				output.Warning("Market is closed; quotes reflect the last session.")
			}

			svc := app.chainService(months)
			snap, err := svc.GetOptionChain(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch option chain: %v", err)
				return err
			}

			candidates := svc.BuildPutCandidates(snap, lotSize)
			analyzed, err := app.Analyzer.Analyze(candidates, capital)
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			liquid := analysis.FilterLiquid(analyzed)
			logging.LogAnalysis(app.Logger, snap.Symbol, len(analyzed), len(liquid), capital)
			ranked := analysis.Rank(analyzed)
			if !all {
				ranked = analysis.FilterLiquid(ranked)
			}
			top := analysis.Top(ranked, topN)

			if save {
				if err := app.saveRun(cmd, snap, capital, lotSize, len(analyzed), len(liquid), top); err != nil {
					output.Warning("Could not save analysis run: %v", err)
				}
			}

			if csvPath != "" {
				if err := writeSpreadsCSV(csvPath, snap, top); err != nil {
					return fmt.Errorf("writing CSV: %w", err)
				}
				output.Success("✓ Wrote %d spreads to %s", len(top), csvPath)
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":          snap.Symbol,
					"expiry":          snap.ExpiryDate,
					"underlying":      snap.UnderlyingValue,
					"capital":         capital,
					"lot_size":        lotSize,
					"candidate_count": len(analyzed),
					"liquid_count":    len(liquid),
					"spreads":         top,
				})
			}

			renderSpreads(output, snap, capital, lotSize, len(analyzed), len(liquid), top)
			return nil
		},
	}

	cmd.Flags().Float64Var(&capital, "capital", 0, "Capital for risk sizing (default from config)")
	cmd.Flags().IntVar(&lotSize, "lot", 0, "Contract lot size (default from config)")
	cmd.Flags().IntVar(&months, "months", -1, "Months ahead for expiry selection")
	cmd.Flags().IntVar(&topN, "top", 10, "Number of spreads to show")
	cmd.Flags().BoolVar(&all, "all", false, "Include spreads failing the liquidity filter")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the ranked spreads to a CSV file")
	cmd.Flags().BoolVar(&save, "save", false, "Save the run to the history store")

	return cmd
}

func renderSpreads(output *Output, snap *models.OptionChainSnapshot, capital float64, lotSize, total, liquid int, spreads []models.AnalyzedSpread) {
	color.Cyan("🐻 %s Bear Put Spreads — %s", snap.Symbol, snap.ExpiryDate)
	output.Printf("Spot: %s  Capital: %s  Lot: %d\n",
		utils.FormatIndianCurrency(snap.UnderlyingValue),
		utils.FormatIndianCurrency(capital), lotSize)
	output.Dim("%d pairs analyzed, %d liquid", total, liquid)
	output.Println()

	if len(spreads) == 0 {
		output.Warning("No spreads to show. Try --all to include illiquid pairs.")
		return
	}

	output.Bold("%3s %9s %9s %12s %12s %12s %10s %7s %6s %5s",
		"#", "LONG", "SHORT", "DEBIT", "MAX PROFIT", "MAX LOSS", "BREAKEVEN", "RISK%", "R:R", "LIQ")

	for i, s := range spreads {
		rr := "-"
		if s.Metrics.RiskReward != nil {
			rr = fmt.Sprintf("%.2f", *s.Metrics.RiskReward)
		}
		liq := output.Red("✗")
		if s.Metrics.LiquidityPass {
			liq = output.Green("✓")
		}
		output.Printf("%3d %9.2f %9.2f %12.2f %12.2f %12.2f %10.2f %6.2f%% %6s %5s\n",
			i+1, s.LongPut.Strike, s.ShortPut.Strike,
			s.Metrics.NetDebit, s.Metrics.MaxProfit, s.Metrics.MaxLoss,
			s.Metrics.Breakeven, s.Metrics.RiskPercentOfCapital, rr, liq)
	}

	output.Println()
	best := spreads[0]
	output.Info("Best: buy %.0f PE @ %.2f / sell %.0f PE @ %.2f → debit %s, breakeven %.2f",
		best.LongPut.Strike, best.LongPut.Premium,
		best.ShortPut.Strike, best.ShortPut.Premium,
		utils.FormatIndianCurrency(best.Metrics.NetDebit), best.Metrics.Breakeven)
}

// spreadCSVRow is the flat CSV projection of one analyzed spread.
type spreadCSVRow struct {
	Symbol      string  `csv:"symbol"`
	Expiry      string  `csv:"expiry"`
	LongStrike  float64 `csv:"long_strike"`
	LongPremium float64 `csv:"long_premium"`
	ShortStrike float64 `csv:"short_strike"`
	ShortPrem   float64 `csv:"short_premium"`
	NetDebit    float64 `csv:"net_debit"`
	MaxProfit   float64 `csv:"max_profit"`
	MaxLoss     float64 `csv:"max_loss"`
	Breakeven   float64 `csv:"breakeven"`
	RiskReward  string  `csv:"risk_reward"`
	Liquid      bool    `csv:"liquidity_pass"`
}

func writeSpreadsCSV(path string, snap *models.OptionChainSnapshot, spreads []models.AnalyzedSpread) error {
	rows := make([]spreadCSVRow, 0, len(spreads))
	for _, s := range spreads {
		row := spreadCSVRow{
			Symbol:      snap.Symbol,
			Expiry:      snap.ExpiryDate,
			LongStrike:  s.LongPut.Strike,
			LongPremium: s.LongPut.Premium,
			ShortStrike: s.ShortPut.Strike,
			ShortPrem:   s.ShortPut.Premium,
			NetDebit:    s.Metrics.NetDebit,
			MaxProfit:   s.Metrics.MaxProfit,
			MaxLoss:     s.Metrics.MaxLoss,
			Breakeven:   s.Metrics.Breakeven,
			Liquid:      s.Metrics.LiquidityPass,
		}
		if s.Metrics.RiskReward != nil {
			row.RiskReward = fmt.Sprintf("%.2f", *s.Metrics.RiskReward)
		}
		rows = append(rows, row)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

func (a *App) saveRun(cmd *cobra.Command, snap *models.OptionChainSnapshot, capital float64, lotSize, total, liquid int, top []models.AnalyzedSpread) error {
	dataStore, err := a.openStore()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := dataStore.SaveSnapshot(ctx, snap); err != nil {
		return err
	}
	return dataStore.SaveAnalysis(ctx, &store.AnalysisRecord{
		Symbol:         snap.Symbol,
		Expiry:         snap.ExpiryDate,
		Underlying:     snap.UnderlyingValue,
		Capital:        capital,
		LotSize:        lotSize,
		CandidateCount: total,
		LiquidCount:    liquid,
		TopSpreads:     top,
		CreatedAt:      time.Now(),
	})
}

func newAdviseCmd(app *App) *cobra.Command {
	var (
		capital float64
		months  int
		topN    int
	)

	cmd := &cobra.Command{
		Use:   "advise [symbol]",
		Short: "Get an AI explanation of the best spread opportunities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			advisor, err := app.advisor()
			if err != nil {
				return err
			}

			if capital <= 0 {
				capital = app.Config.Analysis.DefaultCapital
			}

			svc := app.chainService(months)
			snap, err := svc.GetOptionChain(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch option chain: %v", err)
				return err
			}

			candidates := svc.BuildPutCandidates(snap, app.Config.Analysis.DefaultLotSize)
			analyzed, err := app.Analyzer.Analyze(candidates, capital)
			if err != nil {
				return err
			}
			top := analysis.Top(analysis.FilterLiquid(analysis.Rank(analyzed)), topN)
			if len(top) == 0 {
				output.Warning("No liquid spreads found to advise on")
				return nil
			}

			output.Dim("Consulting advisor...")
			text, err := advisor.Explain(cmd.Context(), snap.Symbol, snap.ExpiryDate, snap.UnderlyingValue, top)
			if err != nil {
				output.Error("Advisor failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":  snap.Symbol,
					"expiry":  snap.ExpiryDate,
					"spreads": top,
					"advice":  text,
				})
			}

			output.Println()
			color.Cyan("💡 Advisor")
			output.Println()
			output.Println(text)
			return nil
		},
	}

	cmd.Flags().Float64Var(&capital, "capital", 0, "Capital for risk sizing (default from config)")
	cmd.Flags().IntVar(&months, "months", -1, "Months ahead for expiry selection")
	cmd.Flags().IntVar(&topN, "top", 3, "Number of spreads to explain")

	return cmd
}
