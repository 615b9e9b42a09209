// Package models defines the core data types for option-chain analysis.
package models

import "time"

// OptionQuote holds one side (call or put) of a strike row.
type OptionQuote struct {
	StrikePrice       float64
	LastPrice         float64
	Change            float64
	PercentChange     float64
	Volume            int64
	OpenInterest      int64
	ImpliedVolatility float64 // percent
	Greeks            *OptionGreeks
}

// Valid reports whether the quote is tradable. NSE publishes rows with
// lastPrice = 0 for strikes that never traded; those are dead quotes.
func (q *OptionQuote) Valid() bool {
	return q != nil && q.LastPrice > 0
}

// StrikeRow pairs the call and put quotes at a single strike.
// Either side may be nil when the exchange has no contract for it.
type StrikeRow struct {
	StrikePrice float64
	Call        *OptionQuote
	Put         *OptionQuote
}

// OptionChainSnapshot is an immutable view of one symbol+expiry chain.
// Strikes are unique and sorted ascending.
type OptionChainSnapshot struct {
	Symbol          string
	ExpiryDate      string // DD-MMM-YYYY
	UnderlyingValue float64
	Timestamp       string // exchange-reported timestamp
	FetchedAt       time.Time
	Strikes         []StrikeRow
}

// StrikePrices returns the ascending strike values of the snapshot.
func (s *OptionChainSnapshot) StrikePrices() []float64 {
	prices := make([]float64, len(s.Strikes))
	for i, row := range s.Strikes {
		prices[i] = row.StrikePrice
	}
	return prices
}

// Row returns the strike row for the given strike, or nil if absent.
func (s *OptionChainSnapshot) Row(strike float64) *StrikeRow {
	for i := range s.Strikes {
		if s.Strikes[i].StrikePrice == strike {
			return &s.Strikes[i]
		}
	}
	return nil
}

// OptionGreeks represents Black-Scholes option Greeks.
type OptionGreeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}
