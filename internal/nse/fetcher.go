package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/rs/zerolog"

	"nse-analyst/internal/errors"
	"nse-analyst/internal/logging"
	"nse-analyst/internal/models"
	"nse-analyst/pkg/utils"
)

const (
	pathLanding      = "/"
	pathOptionChain  = "/option-chain"
	pathContractInfo = "/api/option-chain-contract-info"
	pathChainV3      = "/api/option-chain-v3"

	expiryDateFormat = "02-Jan-2006"
)

// FetcherConfig configures the option-chain fetcher.
type FetcherConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MaxAttempts    int
	// SettleDelay is the pause after session warm-up before the data
	// request, giving the anti-bot cookie state time to register
	// server-side. Heuristic, but skipping it raises failure rates.
	SettleDelay time.Duration
	// HTTPClient overrides the transport, mainly for tests. The client
	// must not carry a cookie jar: cookie state belongs to the Session.
	HTTPClient *http.Client
	// Sleep overrides backoff/settle sleeps in tests.
	Sleep func(time.Duration)
}

// Fetcher retrieves normalized option-chain data for a symbol+expiry,
// tolerating transient network and anti-bot failures. Every call creates
// its own fresh Session; sessions are never pooled, trading connection
// reuse for request isolation.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
	logger zerolog.Logger
}

// NewFetcher creates a fetcher with the given configuration.
func NewFetcher(cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.nseindia.com"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 25 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	return &Fetcher{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
}

// FetchExpiryDates returns the expiry dates listed for a symbol, sorted
// ascending by date with duplicates removed.
func (f *Fetcher) FetchExpiryDates(ctx context.Context, symbol string) ([]string, error) {
	logger := logging.WithSymbol(f.logger, symbol)

	session := NewSession()
	if err := f.warmUp(ctx, session, logger); err != nil {
		return nil, err
	}

	qs, _ := query.Values(contractInfoQuery{Symbol: symbol})
	url := f.cfg.BaseURL + pathContractInfo + "?" + qs.Encode()

	body, err := f.getJSON(ctx, session, url, logger)
	if err != nil {
		return nil, err
	}

	var resp contractInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewUpstreamError(url, "", string(body), err)
	}
	if resp.ExpiryDates == nil {
		return nil, errors.NewUpstreamError(url, "expiryDates", string(body), errors.ErrDataNotFound)
	}

	return sortExpiryDates(resp.ExpiryDates), nil
}

// FetchSnapshot returns the normalized option chain for symbol+expiry.
// Dead quotes (lastPrice = 0) are kept in the snapshot and flagged via
// Quote.Valid; dropping them is the caller's decision.
func (f *Fetcher) FetchSnapshot(ctx context.Context, symbol, expiry string) (*models.OptionChainSnapshot, error) {
	logger := logging.WithExpiry(logging.WithSymbol(f.logger, symbol), expiry)

	session := NewSession()
	if err := f.warmUp(ctx, session, logger); err != nil {
		return nil, err
	}

	qs, _ := query.Values(chainQuery{Type: "Indices", Symbol: symbol, Expiry: expiry})
	url := f.cfg.BaseURL + pathChainV3 + "?" + qs.Encode()

	body, err := f.getJSON(ctx, session, url, logger)
	if err != nil {
		return nil, err
	}

	var resp chainResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.NewUpstreamError(url, "", string(body), err)
	}
	if resp.Records.Data == nil {
		return nil, errors.NewUpstreamError(url, "records.data", string(body), errors.ErrDataNotFound)
	}
	if resp.Records.UnderlyingValue <= 0 {
		return nil, errors.NewUpstreamError(url, "records.underlyingValue", string(body), errors.ErrDataNotFound)
	}

	snapshot := buildSnapshot(symbol, expiry, &resp.Records)
	logging.LogSnapshot(logger, symbol, expiry, len(snapshot.Strikes), snapshot.UnderlyingValue)
	return snapshot, nil
}

// warmUp visits the landing and option-chain pages to acquire the
// anti-bot cookies, then pauses for the configured settle delay. The
// page bodies are drained but never parsed; a 2xx status is enough.
func (f *Fetcher) warmUp(ctx context.Context, session *Session, logger zerolog.Logger) error {
	for _, path := range []string{pathLanding, pathOptionChain} {
		if err := f.get(ctx, session, f.cfg.BaseURL+path, nil, logger); err != nil {
			return errors.Wrap(err, "session warm-up")
		}
	}

	if f.cfg.SettleDelay > 0 {
		f.sleep(f.cfg.SettleDelay)
	}
	return nil
}

// getJSON performs a data request and returns the decoded body.
func (f *Fetcher) getJSON(ctx context.Context, session *Session, url string, logger zerolog.Logger) ([]byte, error) {
	var body []byte
	err := f.get(ctx, session, url, &body, logger)
	return body, err
}

// get performs one HTTP GET with the session's identity, retried with
// exponential backoff and jitter. Only transport-level failures retry.
// When collect is nil the body is drained and discarded.
func (f *Fetcher) get(ctx context.Context, session *Session, url string, collect *[]byte, logger zerolog.Logger) error {
	retryCfg := utils.RetryConfig{
		MaxAttempts:   f.cfg.MaxAttempts,
		InitialDelay:  time.Second,
		MaxDelay:      30 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        time.Second,
		Retryable:     errors.IsRetryable,
		Sleep:         f.cfg.Sleep,
	}

	attempt := 0
	_, err := utils.RetryWithResult(ctx, retryCfg, func() (struct{}, error) {
		attempt++
		err := f.attempt(ctx, session, url, collect, attempt)
		logging.LogFetchAttempt(logger, url, attempt, err)
		return struct{}{}, err
	})
	return err
}

// attempt performs a single request: apply session identity, absorb
// Set-Cookie state, decompress, and optionally collect the body.
func (f *Fetcher) attempt(ctx context.Context, session *Session, url string, collect *[]byte, attempt int) error {
	reqCtx, cancel := context.WithTimeout(ctx, f.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return errors.NewInvalidInputError("url", url, err.Error())
	}
	session.Apply(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.NewTransportError(url, attempt, err)
	}
	defer resp.Body.Close()

	session.AbsorbResponse(resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Anti-bot rejections (401/403) and rate limits clear up with a
		// fresh attempt and accumulated cookies, so they count as
		// transport failures.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
		return errors.NewTransportError(url, attempt, fmt.Errorf("unexpected status %s", resp.Status))
	}

	decoded, err := decodeBody(resp)
	if err != nil {
		return errors.NewUpstreamError(url, "", "", errors.Wrap(err, "decoding body"))
	}
	defer decoded.Close()

	if collect == nil {
		_, err = io.Copy(io.Discard, decoded)
		if err != nil {
			return errors.NewTransportError(url, attempt, err)
		}
		return nil
	}

	data, err := io.ReadAll(decoded)
	if err != nil {
		return errors.NewTransportError(url, attempt, err)
	}
	*collect = data
	return nil
}

func (f *Fetcher) sleep(d time.Duration) {
	if f.cfg.Sleep != nil {
		f.cfg.Sleep(d)
		return
	}
	time.Sleep(d)
}

// buildSnapshot converts the NSE records into a normalized snapshot with
// unique, ascending strikes.
func buildSnapshot(symbol, expiry string, records *chainRecords) *models.OptionChainSnapshot {
	rows := make(map[float64]*models.StrikeRow, len(records.Data))
	for _, entry := range records.Data {
		row, ok := rows[entry.StrikePrice]
		if !ok {
			row = &models.StrikeRow{StrikePrice: entry.StrikePrice}
			rows[entry.StrikePrice] = row
		}
		if entry.CE != nil {
			row.Call = legToQuote(entry.StrikePrice, entry.CE)
		}
		if entry.PE != nil {
			row.Put = legToQuote(entry.StrikePrice, entry.PE)
		}
	}

	strikes := make([]models.StrikeRow, 0, len(rows))
	for _, row := range rows {
		strikes = append(strikes, *row)
	}
	sort.Slice(strikes, func(i, j int) bool {
		return strikes[i].StrikePrice < strikes[j].StrikePrice
	})

	return &models.OptionChainSnapshot{
		Symbol:          symbol,
		ExpiryDate:      expiry,
		UnderlyingValue: records.UnderlyingValue,
		Timestamp:       records.Timestamp,
		FetchedAt:       time.Now(),
		Strikes:         strikes,
	}
}

func legToQuote(strike float64, leg *chainLeg) *models.OptionQuote {
	return &models.OptionQuote{
		StrikePrice:       strike,
		LastPrice:         leg.LastPrice,
		Change:            leg.Change,
		PercentChange:     leg.PChange,
		Volume:            leg.TotalTradedVolume,
		OpenInterest:      leg.OpenInterest,
		ImpliedVolatility: leg.ImpliedVolatility,
	}
}

// sortExpiryDates removes duplicates and sorts DD-MMM-YYYY strings by
// their actual date. Unparseable entries sort last, preserving input
// order among themselves.
func sortExpiryDates(dates []string) []string {
	seen := make(map[string]struct{}, len(dates))
	unique := make([]string, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		ti, erri := time.Parse(expiryDateFormat, unique[i])
		tj, errj := time.Parse(expiryDateFormat, unique[j])
		if erri != nil || errj != nil {
			return erri == nil && errj != nil
		}
		return ti.Before(tj)
	})
	return unique
}
