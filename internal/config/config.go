// Package config provides configuration management for the analyst application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Exchange    ExchangeConfig  `mapstructure:"exchange"`
	Analysis    AnalysisConfig  `mapstructure:"analysis"`
	Cache       CacheConfig     `mapstructure:"cache"`
	UI          UIConfig        `mapstructure:"ui"`
	Credentials Credentials     `mapstructure:"-"` // Loaded separately
}

// ExchangeConfig holds the upstream NSE transport configuration.
type ExchangeConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	DefaultSymbol  string        `mapstructure:"default_symbol"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	SettleDelay    time.Duration `mapstructure:"settle_delay"`
}

// AnalysisConfig holds spread-analysis parameters.
type AnalysisConfig struct {
	DefaultLotSize  int     `mapstructure:"default_lot_size"`
	DefaultCapital  float64 `mapstructure:"default_capital"`
	MinVolume       int64   `mapstructure:"min_volume"`
	MinOpenInterest int64   `mapstructure:"min_open_interest"`
	WindowRadius    int     `mapstructure:"window_radius"`
	MonthsAhead     int     `mapstructure:"months_ahead"`
	RiskFreeRate    float64 `mapstructure:"risk_free_rate"`
}

// CacheConfig holds the snapshot cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
}

// Credentials holds API credentials.
type Credentials struct {
	OpenAI OpenAICredentials `mapstructure:"openai"`
}

// OpenAICredentials holds OpenAI API credentials for the advisor.
type OpenAICredentials struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/nse-analyst"
	}
	return filepath.Join(home, ".config", "nse-analyst")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target interface{}) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir)
		}
		return err
	}

	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createTemplateCredentials(configDir)
		}
		return err
	}

	return v.Unmarshal(creds)
}

func applyDefaults(cfg *Config) {
	if cfg.Exchange.BaseURL == "" {
		cfg.Exchange.BaseURL = "https://www.nseindia.com"
	}
	if cfg.Exchange.DefaultSymbol == "" {
		cfg.Exchange.DefaultSymbol = "NIFTY"
	}
	if cfg.Exchange.RequestTimeout == 0 {
		cfg.Exchange.RequestTimeout = 25 * time.Second
	}
	if cfg.Exchange.MaxAttempts == 0 {
		cfg.Exchange.MaxAttempts = 3
	}
	if cfg.Exchange.SettleDelay == 0 {
		cfg.Exchange.SettleDelay = time.Second
	}
	if cfg.Analysis.DefaultLotSize == 0 {
		cfg.Analysis.DefaultLotSize = 75
	}
	if cfg.Analysis.DefaultCapital == 0 {
		cfg.Analysis.DefaultCapital = 100000
	}
	if cfg.Analysis.MinVolume == 0 {
		cfg.Analysis.MinVolume = 50
	}
	if cfg.Analysis.MinOpenInterest == 0 {
		cfg.Analysis.MinOpenInterest = 400
	}
	if cfg.Analysis.WindowRadius == 0 {
		cfg.Analysis.WindowRadius = 5
	}
	if cfg.Analysis.RiskFreeRate == 0 {
		cfg.Analysis.RiskFreeRate = 0.07
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 2 * time.Minute
	}
	if cfg.Credentials.OpenAI.Model == "" {
		cfg.Credentials.OpenAI.Model = "gpt-4o-mini"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Credentials.OpenAI.APIKey = v
	}
	if v := os.Getenv("NSE_BASE_URL"); v != "" {
		cfg.Exchange.BaseURL = v
	}
	if v := os.Getenv("NSE_SYMBOL"); v != "" {
		cfg.Exchange.DefaultSymbol = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Exchange.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1")
	}
	if c.Exchange.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.Analysis.DefaultLotSize <= 0 {
		return fmt.Errorf("default_lot_size must be positive")
	}
	if c.Analysis.DefaultCapital <= 0 {
		return fmt.Errorf("default_capital must be positive")
	}
	if c.Analysis.MinVolume < 0 || c.Analysis.MinOpenInterest < 0 {
		return fmt.Errorf("liquidity thresholds must be non-negative")
	}
	if c.Analysis.WindowRadius < 0 {
		return fmt.Errorf("window_radius must be non-negative")
	}
	if c.Analysis.MonthsAhead < 0 || c.Analysis.MonthsAhead > 12 {
		return fmt.Errorf("months_ahead must be between 0 and 12")
	}
	return nil
}
