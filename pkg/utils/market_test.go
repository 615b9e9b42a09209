package utils

import (
	"testing"
	"time"

	"nse-analyst/internal/models"
)

func TestMarketStatusAt(t *testing.T) {
	// 12-Jan-2026 is a Monday.
	day := func(hour, minute int) time.Time {
		return time.Date(2026, 1, 12, hour, minute, 0, 0, IndiaLocation)
	}

	tests := []struct {
		name string
		at   time.Time
		want models.MarketStatus
	}{
		{"before pre-open", day(8, 59), models.MarketClosed},
		{"pre-open start", day(9, 0), models.MarketPreOpen},
		{"pre-open end", day(9, 14), models.MarketPreOpen},
		{"open bell", day(9, 15), models.MarketOpen},
		{"midday", day(12, 30), models.MarketOpen},
		{"last minute", day(15, 29), models.MarketOpen},
		{"closing bell", day(15, 30), models.MarketClosed},
		{"evening", day(20, 0), models.MarketClosed},
		{"saturday midday", time.Date(2026, 1, 10, 12, 0, 0, 0, IndiaLocation), models.MarketClosed},
		{"sunday midday", time.Date(2026, 1, 11, 12, 0, 0, 0, IndiaLocation), models.MarketClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketStatusAt(tt.at); got != tt.want {
				t.Errorf("MarketStatusAt(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}
