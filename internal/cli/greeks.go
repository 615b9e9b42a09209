package cli

import (
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"nse-analyst/pkg/utils"
)

func formatGreek(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func newGreeksCmd(app *App) *cobra.Command {
	var months int

	cmd := &cobra.Command{
		Use:   "greeks [symbol]",
		Short: "Show put Greeks for the strikes around the money",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			svc := app.chainService(months)
			snap, err := svc.GetOptionChain(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch option chain: %v", err)
				return err
			}

			legs := svc.AnnotatedPutLegs(snap, app.Config.Analysis.DefaultLotSize)

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":     snap.Symbol,
					"expiry":     snap.ExpiryDate,
					"underlying": snap.UnderlyingValue,
					"puts":       legs,
				})
			}

			color.Cyan("Δ %s Put Greeks — %s", snap.Symbol, snap.ExpiryDate)
			output.Printf("Spot: %s\n\n", utils.FormatIndianCurrency(snap.UnderlyingValue))

			output.Bold("%9s %9s %7s %8s %9s %9s", "STRIKE", "LTP", "IV", "DELTA", "GAMMA", "THETA")
			for _, leg := range legs {
				iv, gamma, theta := "-", "-", "-"
				if leg.ImpliedVol != nil {
					iv = utils.FormatPercent(*leg.ImpliedVol)
				}
				if leg.Gamma != nil {
					gamma = formatGreek(*leg.Gamma, 6)
				}
				if leg.Theta != nil {
					theta = formatGreek(*leg.Theta, 2)
				}
				output.Printf("%9.2f %9.2f %7s %8.4f %9s %9s\n",
					leg.Strike, leg.Premium, iv, leg.Delta, gamma, theta)
			}

			output.Println()
			output.Dim("%d tradable puts; theta per calendar day", len(legs))
			return nil
		},
	}

	cmd.Flags().IntVar(&months, "months", -1, "Months ahead for expiry selection")
	return cmd
}
