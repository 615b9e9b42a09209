package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"nse-analyst/internal/models"
	"nse-analyst/pkg/utils"
)

func addChainCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newExpiriesCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newGreeksCmd(app))
	rootCmd.AddCommand(newMarketCmd(app))
}

func newExpiriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "expiries [symbol]",
		Short: "List option expiry dates for a symbol",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			dates, err := app.chainService(-1).ExpiryDates(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch expiries: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"symbol":   symbol,
					"expiries": dates,
				})
			}

			color.Cyan("📅 %s Expiry Dates", symbol)
			output.Println()
			for i, d := range dates {
				output.Printf("  %2d. %s\n", i+1, d)
			}
			output.Println()
			output.Dim("%d expiries listed", len(dates))
			return nil
		},
	}
}

func newChainCmd(app *App) *cobra.Command {
	var (
		expiry  string
		months  int
		side    string
		full    bool
		csvPath string
	)

	cmd := &cobra.Command{
		Use:   "chain [symbol]",
		Short: "Show the option chain around the at-the-money strike",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			side = strings.ToUpper(side)
			if side != "" && side != "CE" && side != "PE" {
				return fmt.Errorf("invalid --side %q: must be CE or PE", side)
			}

			svc := app.chainService(months)

			var snap *models.OptionChainSnapshot
			var err error
			switch {
			case expiry != "":
				snap, err = svc.Snapshot(cmd.Context(), symbol, expiry)
				if err == nil && !full {
					snap = svc.NarrowToWindow(snap, snap.UnderlyingValue)
				}
			case full:
				var dates []string
				dates, err = svc.ExpiryDates(cmd.Context(), symbol)
				if err == nil && len(dates) > 0 {
					snap, err = svc.Snapshot(cmd.Context(), symbol, dates[0])
				}
			default:
				snap, err = svc.GetOptionChain(cmd.Context(), symbol)
			}
			if err != nil {
				output.Error("Failed to fetch option chain: %v", err)
				return err
			}

			if csvPath != "" {
				if err := writeChainCSV(csvPath, snap); err != nil {
					return fmt.Errorf("writing CSV: %w", err)
				}
				output.Success("✓ Wrote %d strikes to %s", len(snap.Strikes), csvPath)
			}

			if output.IsJSON() {
				return output.JSON(snap)
			}

			renderChain(output, snap, side)
			return nil
		},
	}

	cmd.Flags().StringVar(&expiry, "expiry", "", "Expiry date (DD-MMM-YYYY), overrides month selection")
	cmd.Flags().IntVar(&months, "months", -1, "Months ahead for expiry selection")
	cmd.Flags().StringVar(&side, "side", "", "Show only one side: CE or PE")
	cmd.Flags().BoolVar(&full, "full", false, "Show all strikes, not just the ATM window")
	cmd.Flags().StringVar(&csvPath, "csv", "", "Write the chain to a CSV file")

	return cmd
}

// chainCSVRow is the flat CSV projection of one strike row.
type chainCSVRow struct {
	Symbol    string  `csv:"symbol"`
	Expiry    string  `csv:"expiry"`
	Strike    float64 `csv:"strike"`
	CallLTP   float64 `csv:"call_ltp"`
	CallVol   int64   `csv:"call_volume"`
	CallOI    int64   `csv:"call_oi"`
	CallIV    float64 `csv:"call_iv"`
	PutLTP    float64 `csv:"put_ltp"`
	PutVol    int64   `csv:"put_volume"`
	PutOI     int64   `csv:"put_oi"`
	PutIV     float64 `csv:"put_iv"`
}

func writeChainCSV(path string, snap *models.OptionChainSnapshot) error {
	rows := make([]chainCSVRow, 0, len(snap.Strikes))
	for _, sr := range snap.Strikes {
		row := chainCSVRow{Symbol: snap.Symbol, Expiry: snap.ExpiryDate, Strike: sr.StrikePrice}
		if sr.Call != nil {
			row.CallLTP = sr.Call.LastPrice
			row.CallVol = sr.Call.Volume
			row.CallOI = sr.Call.OpenInterest
			row.CallIV = sr.Call.ImpliedVolatility
		}
		if sr.Put != nil {
			row.PutLTP = sr.Put.LastPrice
			row.PutVol = sr.Put.Volume
			row.PutOI = sr.Put.OpenInterest
			row.PutIV = sr.Put.ImpliedVolatility
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

func renderChain(output *Output, snap *models.OptionChainSnapshot, side string) {
	color.Cyan("📊 %s Option Chain — %s", snap.Symbol, snap.ExpiryDate)
	output.Printf("Spot: %s", utils.FormatIndianCurrency(snap.UnderlyingValue))
	if snap.Timestamp != "" {
		output.Printf("  (as of %s)", snap.Timestamp)
	}
	output.Println()
	output.Println()

	showCalls := side == "" || side == "CE"
	showPuts := side == "" || side == "PE"

	var header strings.Builder
	if showCalls {
		header.WriteString(fmt.Sprintf("%10s %10s %8s %6s │ ", "CALL OI", "CALL VOL", "CALL LTP", "IV"))
	}
	header.WriteString(fmt.Sprintf("%9s", "STRIKE"))
	if showPuts {
		header.WriteString(fmt.Sprintf(" │ %8s %6s %10s %10s", "PUT LTP", "IV", "PUT VOL", "PUT OI"))
	}
	output.Bold("%s", header.String())

	for _, row := range snap.Strikes {
		var line strings.Builder
		if showCalls {
			line.WriteString(quoteCells(row.Call, true))
			line.WriteString(" │ ")
		}
		line.WriteString(fmt.Sprintf("%9.2f", row.StrikePrice))
		if showPuts {
			line.WriteString(" │ ")
			line.WriteString(quoteCells(row.Put, false))
		}
		output.Println(line.String())
	}

	output.Println()
	output.Dim("%d strikes shown", len(snap.Strikes))
}

// quoteCells formats one side of a strike row. Call side leads with
// OI/volume, put side leads with price, mirroring the NSE layout.
func quoteCells(q *models.OptionQuote, call bool) string {
	if q == nil {
		if call {
			return fmt.Sprintf("%10s %10s %8s %6s", "-", "-", "-", "-")
		}
		return fmt.Sprintf("%8s %6s %10s %10s", "-", "-", "-", "-")
	}
	if call {
		return fmt.Sprintf("%10d %10d %8.2f %6.2f", q.OpenInterest, q.Volume, q.LastPrice, q.ImpliedVolatility)
	}
	return fmt.Sprintf("%8.2f %6.2f %10d %10d", q.LastPrice, q.ImpliedVolatility, q.Volume, q.OpenInterest)
}

func newMarketCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "market [symbol]",
		Short: "Show current market status and underlying level",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			symbol := app.symbolArg(args)

			summary, err := app.chainService(-1).MarketSummary(cmd.Context(), symbol)
			if err != nil {
				output.Error("Failed to fetch market summary: %v", err)
				return err
			}
			status := utils.GetMarketStatus()

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{
					"status":  status,
					"summary": summary,
				})
			}

			color.Cyan("🏛  %s Market", summary.Symbol)
			output.Println()
			switch status {
			case models.MarketOpen:
				output.Success("  Status:          OPEN")
			case models.MarketPreOpen:
				output.Warning("  Status:          PRE-OPEN")
			default:
				output.Dim("  Status:          CLOSED")
			}
			output.Printf("  Spot:            %s\n", utils.FormatIndianCurrency(summary.UnderlyingValue))
			output.Printf("  Nearest Expiry:  %s\n", summary.NearestExpiry)
			output.Printf("  Expiries Listed: %d\n", summary.ExpiryCount)
			if summary.Timestamp != "" {
				output.Printf("  As Of:           %s\n", summary.Timestamp)
			}
			output.Printf("  Local Time:      %s\n", utils.NowIST().Format("02-Jan-2006 15:04:05 IST"))
			return nil
		},
	}
}

// symbolArg resolves the symbol from the positional argument, falling
// back to the configured default.
func (a *App) symbolArg(args []string) string {
	if len(args) > 0 {
		return strings.ToUpper(args[0])
	}
	return a.Config.Exchange.DefaultSymbol
}
