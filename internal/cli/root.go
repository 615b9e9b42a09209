package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nse-analyst/internal/agents"
	"nse-analyst/internal/analysis"
	"nse-analyst/internal/chain"
	"nse-analyst/internal/config"
	"nse-analyst/internal/logging"
	"nse-analyst/internal/nse"
	"nse-analyst/internal/store"
)

// Version information
const (
	Version   = "1.0.0"
	BuildDate = "2026-08-30"
)

// App holds the application dependencies shared by all commands.
type App struct {
	ConfigDir string
	Config    *config.Config
	Logger    zerolog.Logger
	Fetcher   *nse.Fetcher
	Analyzer  *analysis.Analyzer

	dataStore store.DataStore
}

// init loads configuration and constructs the shared dependencies.
// Commands annotated with skipConfig run without it.
func (a *App) init(cmd *cobra.Command) error {
	if cmd.Annotations["skipConfig"] == "true" {
		return nil
	}

	configDir, _ := cmd.Flags().GetString("config")
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}
	a.ConfigDir = configDir

	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	a.Config = cfg

	a.Logger = logging.NewLogger()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}

	a.Fetcher = nse.NewFetcher(nse.FetcherConfig{
		BaseURL:        cfg.Exchange.BaseURL,
		RequestTimeout: cfg.Exchange.RequestTimeout,
		MaxAttempts:    cfg.Exchange.MaxAttempts,
		SettleDelay:    cfg.Exchange.SettleDelay,
	}, a.Logger)

	a.Analyzer = analysis.NewAnalyzer(analysis.AnalyzerConfig{
		DefaultLotSize:  cfg.Analysis.DefaultLotSize,
		MinVolume:       cfg.Analysis.MinVolume,
		MinOpenInterest: cfg.Analysis.MinOpenInterest,
	})

	return nil
}

// chainService builds a chain service for the given expiry offset.
// monthsAhead < 0 means "use the configured default".
func (a *App) chainService(monthsAhead int) *chain.Service {
	if monthsAhead < 0 {
		monthsAhead = a.Config.Analysis.MonthsAhead
	}

	var ttl time.Duration
	if a.Config.Cache.Enabled {
		ttl = a.Config.Cache.TTL
	}

	return chain.NewService(a.Fetcher, chain.ServiceConfig{
		MonthsAhead:  monthsAhead,
		WindowRadius: a.Config.Analysis.WindowRadius,
		Policy:       chain.PolicyFallback,
		RiskFreeRate: a.Config.Analysis.RiskFreeRate,
		CacheTTL:     ttl,
	}, a.Logger)
}

// openStore opens the SQLite history store, creating it on first use.
func (a *App) openStore() (store.DataStore, error) {
	if a.dataStore != nil {
		return a.dataStore, nil
	}

	dbPath := filepath.Join(a.ConfigDir, "analyst.db")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	a.dataStore = s
	return s, nil
}

// advisor builds the LLM-backed advisor, or errors when no API key is
// configured.
func (a *App) advisor() (*agents.Advisor, error) {
	key := a.Config.Credentials.OpenAI.APIKey
	if key == "" {
		return nil, fmt.Errorf("no OpenAI API key configured; set it in credentials.toml or OPENAI_API_KEY")
	}
	llm := agents.NewOpenAIClient(key, a.Config.Credentials.OpenAI.Model)
	return agents.NewAdvisor(llm), nil
}

// Close releases resources held by the app.
func (a *App) Close() {
	if a.dataStore != nil {
		a.dataStore.Close()
		a.dataStore = nil
	}
}

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "analyst",
		Short: "NSE option-chain analysis for bear put spreads",
		Long: `analyst fetches live NIFTY option chains from the NSE and analyzes
bear put spread opportunities: net debit, max profit, max loss,
breakeven and liquidity, ranked for a given capital.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Config directory (default ~/.config/nse-analyst)")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	addChainCommands(rootCmd, app)
	addSpreadCommands(rootCmd, app)
	addHistoryCommands(rootCmd, app)

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{"skipConfig": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("analyst version %s (built %s)\n", Version, BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Show configuration directory path",
		Annotations: map[string]string{"skipConfig": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			configDir, _ := cmd.Flags().GetString("config")
			if configDir == "" {
				configDir = config.DefaultConfigDir()
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"config_dir": configDir})
			}
			output.Println(configDir)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			// init already ran Validate; reaching here means it passed.
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return configCmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Exchange")
	output.Printf("  Base URL:        %s\n", cfg.Exchange.BaseURL)
	output.Printf("  Default Symbol:  %s\n", cfg.Exchange.DefaultSymbol)
	output.Printf("  Timeout:         %s\n", cfg.Exchange.RequestTimeout)
	output.Printf("  Max Attempts:    %d\n", cfg.Exchange.MaxAttempts)
	output.Println()

	output.Bold("Analysis")
	output.Printf("  Lot Size:        %d\n", cfg.Analysis.DefaultLotSize)
	output.Printf("  Capital:         %.0f\n", cfg.Analysis.DefaultCapital)
	output.Printf("  Min Volume:      %d\n", cfg.Analysis.MinVolume)
	output.Printf("  Min OI:          %d\n", cfg.Analysis.MinOpenInterest)
	output.Printf("  Window Radius:   %d\n", cfg.Analysis.WindowRadius)
	output.Printf("  Months Ahead:    %d\n", cfg.Analysis.MonthsAhead)
	output.Printf("  Risk-free Rate:  %.2f%%\n", cfg.Analysis.RiskFreeRate*100)
	output.Println()

	output.Bold("Cache")
	output.Printf("  Enabled:         %v\n", cfg.Cache.Enabled)
	output.Printf("  TTL:             %s\n", cfg.Cache.TTL)
	output.Println()

	output.Bold("OpenAI")
	if cfg.Credentials.OpenAI.APIKey != "" {
		output.Printf("  API Key:         %s\n", maskKey(cfg.Credentials.OpenAI.APIKey))
	} else {
		output.Printf("  API Key:         (not set)\n")
	}
	output.Printf("  Model:           %s\n", cfg.Credentials.OpenAI.Model)
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
