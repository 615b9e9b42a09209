package models

// MarketStatus represents the NSE market session state.
type MarketStatus string

const (
	MarketPreOpen MarketStatus = "PRE_OPEN"
	MarketOpen    MarketStatus = "OPEN"
	MarketClosed  MarketStatus = "CLOSED"
)

// MarketSummary is a lightweight view of the current market without a
// full option chain: spot level plus the nearest listed expiry.
type MarketSummary struct {
	Symbol          string
	UnderlyingValue float64
	NearestExpiry   string
	ExpiryCount     int
	Timestamp       string
}
