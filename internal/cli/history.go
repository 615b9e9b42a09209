package cli

import (
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nse-analyst/internal/store"
	"nse-analyst/pkg/utils"
)

func addHistoryCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newHistoryCmd(app))
}

func newHistoryCmd(app *App) *cobra.Command {
	var (
		symbol string
		expiry string
		days   int
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dataStore, err := app.openStore()
			if err != nil {
				return err
			}

			filter := store.AnalysisFilter{
				Symbol: symbol,
				Expiry: expiry,
				Limit:  limit,
			}
			if days > 0 {
				filter.StartDate = time.Now().AddDate(0, 0, -days)
			}

			records, err := dataStore.GetAnalyses(cmd.Context(), filter)
			if err != nil {
				output.Error("Failed to load history: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			if len(records) == 0 {
				output.Warning("No saved analysis runs. Use 'spreads --save' to record one.")
				return nil
			}

			color.Cyan("🗂  Analysis History")
			output.Println()
			output.Bold("%5s %-18s %-8s %-12s %10s %6s %7s %7s",
				"ID", "RUN AT", "SYMBOL", "EXPIRY", "SPOT", "LOT", "PAIRS", "LIQUID")
			for _, r := range records {
				output.Printf("%5d %-18s %-8s %-12s %10.2f %6d %7d %7d\n",
					r.ID, r.CreatedAt.Format("02-Jan-2006 15:04"),
					r.Symbol, r.Expiry, r.Underlying, r.LotSize,
					r.CandidateCount, r.LiquidCount)
			}

			output.Println()
			last := records[0]
			if len(last.TopSpreads) > 0 {
				best := last.TopSpreads[0]
				output.Dim("Latest best: %s %.0f/%.0f PE, debit %s",
					last.Symbol, best.LongPut.Strike, best.ShortPut.Strike,
					utils.FormatIndianCurrency(best.Metrics.NetDebit))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "Filter by symbol")
	cmd.Flags().StringVar(&expiry, "expiry", "", "Filter by expiry date")
	cmd.Flags().IntVar(&days, "days", 0, "Only runs from the last N days")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")

	return cmd
}
