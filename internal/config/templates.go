package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# NSE Analyst Configuration

[exchange]
# Upstream exchange base URL
base_url = "https://www.nseindia.com"
# Default index symbol: NIFTY, BANKNIFTY, FINNIFTY
default_symbol = "NIFTY"
# Per-request timeout
request_timeout = "25s"
# Attempts per HTTP request (warm-up and data)
max_attempts = 3
# Pause after session warm-up before the data request
settle_delay = "1s"

[analysis]
# Exchange-mandated lot size (NIFTY)
default_lot_size = 75
# Capital used for risk-percent calculations (INR)
default_capital = 100000.0
# Liquidity filter: minimum traded volume per leg
min_volume = 50
# Liquidity filter: minimum open interest per leg
min_open_interest = 400
# Strikes on each side of ATM in the analysis window
window_radius = 5
# Calendar months ahead for target expiry (0 = current month)
months_ahead = 0
# Annualized risk-free rate for Greeks
risk_free_rate = 0.07

[cache]
# Cache fetched snapshots keyed by (symbol, expiry)
enabled = true
# Snapshot time-to-live
ttl = "2m"

[ui]
# Enable colored output
color_enabled = true
# Date format
date_format = "02-Jan-2006"
`

const credentialsTemplate = `# NSE Analyst Credentials
# This file contains sensitive data. Keep permissions restrictive (0600).

[openai]
# Optional: enables the 'advise' command
api_key = ""
model = "gpt-4o-mini"
`

// createTemplateConfig writes a template config.toml and returns an error
// prompting the user to review it.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

// createTemplateCredentials writes a template credentials.toml with
// restrictive permissions.
func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "credentials.toml")
	if err := os.WriteFile(path, []byte(credentialsTemplate), 0600); err != nil {
		return fmt.Errorf("writing credentials template: %w", err)
	}

	return nil
}
