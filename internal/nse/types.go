package nse

// Query structs are encoded with go-querystring so endpoint URLs are
// built from typed values instead of string concatenation.

type contractInfoQuery struct {
	Symbol string `url:"symbol"`
}

type chainQuery struct {
	Type   string `url:"type"`
	Symbol string `url:"symbol"`
	Expiry string `url:"expiry"`
}

// --- NSE JSON response types ---

type contractInfoResponse struct {
	ExpiryDates []string `json:"expiryDates"`
}

type chainResponse struct {
	Records chainRecords `json:"records"`
}

type chainRecords struct {
	ExpiryDates     []string     `json:"expiryDates"`
	Data            []chainEntry `json:"data"`
	Timestamp       string       `json:"timestamp"`
	UnderlyingValue float64      `json:"underlyingValue"`
}

type chainEntry struct {
	StrikePrice float64   `json:"strikePrice"`
	ExpiryDate  string    `json:"expiryDate"`
	CE          *chainLeg `json:"CE"`
	PE          *chainLeg `json:"PE"`
}

type chainLeg struct {
	StrikePrice       float64 `json:"strikePrice"`
	ExpiryDate        string  `json:"expiryDate"`
	Underlying        string  `json:"underlying"`
	OpenInterest      int64   `json:"openInterest"`
	ChangeInOI        int64   `json:"changeinOpenInterest"`
	TotalTradedVolume int64   `json:"totalTradedVolume"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
	LastPrice         float64 `json:"lastPrice"`
	Change            float64 `json:"change"`
	PChange           float64 `json:"pChange"`
	BidQty            int64   `json:"bidQty"`
	BidPrice          float64 `json:"bidprice"`
	AskQty            int64   `json:"askQty"`
	AskPrice          float64 `json:"askPrice"`
	UnderlyingValue   float64 `json:"underlyingValue"`
}
