package chain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"nse-analyst/internal/analysis"
	"nse-analyst/internal/errors"
	"nse-analyst/internal/logging"
	"nse-analyst/internal/models"
)

// Fetcher is the upstream dependency of the service. *nse.Fetcher
// implements it; tests substitute fakes.
type Fetcher interface {
	FetchExpiryDates(ctx context.Context, symbol string) ([]string, error)
	FetchSnapshot(ctx context.Context, symbol, expiry string) (*models.OptionChainSnapshot, error)
}

// ServiceConfig holds chain service parameters.
type ServiceConfig struct {
	MonthsAhead  int
	WindowRadius int
	Policy       ExpiryPolicy
	RiskFreeRate float64
	CacheTTL     time.Duration // 0 disables the cache
}

// Service is the single entry point the rest of the application calls
// for option-chain data: it selects an expiry, fetches the snapshot and
// narrows it to an ATM-centered window.
type Service struct {
	fetcher Fetcher
	cfg     ServiceConfig
	cache   *snapshotCache
	logger  zerolog.Logger
	now     func() time.Time
}

// NewService creates a chain service.
func NewService(fetcher Fetcher, cfg ServiceConfig, logger zerolog.Logger) *Service {
	if cfg.WindowRadius == 0 {
		cfg.WindowRadius = 5
	}
	if cfg.RiskFreeRate == 0 {
		cfg.RiskFreeRate = 0.07
	}

	s := &Service{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
	if cfg.CacheTTL > 0 {
		s.cache = newSnapshotCache(cfg.CacheTTL)
	}
	return s
}

// ExpiryDates returns the listed expiries for a symbol, ascending.
func (s *Service) ExpiryDates(ctx context.Context, symbol string) ([]string, error) {
	return s.fetcher.FetchExpiryDates(ctx, symbol)
}

// Snapshot returns the full chain for symbol+expiry, via the cache when
// one is configured.
func (s *Service) Snapshot(ctx context.Context, symbol, expiry string) (*models.OptionChainSnapshot, error) {
	if s.cache != nil {
		if snap, ok := s.cache.get(symbol, expiry); ok {
			s.logger.Debug().Str("symbol", symbol).Str("expiry", expiry).Msg("Snapshot served from cache")
			return snap, nil
		}
	}

	snap, err := s.fetcher.FetchSnapshot(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.put(symbol, expiry, snap)
	}
	return snap, nil
}

// GetOptionChain selects the target expiry for the symbol, fetches its
// snapshot and narrows it to the window around the ATM strike.
func (s *Service) GetOptionChain(ctx context.Context, symbol string) (*models.OptionChainSnapshot, error) {
	logger := logging.WithOperation(logging.WithSymbol(s.logger, symbol), "get_option_chain")

	expiries, err := s.fetcher.FetchExpiryDates(ctx, symbol)
	if err != nil {
		return nil, err
	}

	expiry, err := SelectTargetExpiry(expiries, s.cfg.MonthsAhead, s.now(), s.cfg.Policy)
	if err != nil {
		var nf *errors.NoExpiryFoundError
		if errors.As(err, &nf) {
			nf.Symbol = symbol
		}
		return nil, err
	}

	snap, err := s.Snapshot(ctx, symbol, expiry)
	if err != nil {
		return nil, err
	}

	narrowed := s.NarrowToWindow(snap, snap.UnderlyingValue)
	logger.Debug().
		Str("expiry", expiry).
		Int("strikes", len(narrowed.Strikes)).
		Float64("underlying", narrowed.UnderlyingValue).
		Msg("Option chain ready")
	return narrowed, nil
}

// NarrowToWindow returns a copy of the snapshot reduced to the strikes
// within the configured radius of the strike closest to target.
func (s *Service) NarrowToWindow(snap *models.OptionChainSnapshot, target float64) *models.OptionChainSnapshot {
	prices := snap.StrikePrices()
	center, ok := ClosestStrike(prices, target)
	if !ok {
		return snap
	}

	window := WindowAround(prices, center, s.cfg.WindowRadius)
	keep := make(map[float64]struct{}, len(window))
	for _, strike := range window {
		keep[strike] = struct{}{}
	}

	narrowed := *snap
	narrowed.Strikes = make([]models.StrikeRow, 0, len(window))
	for _, row := range snap.Strikes {
		if _, ok := keep[row.StrikePrice]; ok {
			narrowed.Strikes = append(narrowed.Strikes, row)
		}
	}
	return &narrowed
}

// MarketSummary returns the current underlying level and nearest expiry
// without exposing a full chain.
func (s *Service) MarketSummary(ctx context.Context, symbol string) (*models.MarketSummary, error) {
	expiries, err := s.fetcher.FetchExpiryDates(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(expiries) == 0 {
		return nil, errors.NewNoExpiryFoundError(symbol, nil)
	}

	snap, err := s.Snapshot(ctx, symbol, expiries[0])
	if err != nil {
		return nil, err
	}

	return &models.MarketSummary{
		Symbol:          symbol,
		UnderlyingValue: snap.UnderlyingValue,
		NearestExpiry:   expiries[0],
		ExpiryCount:     len(expiries),
		Timestamp:       snap.Timestamp,
	}, nil
}

// BuildPutCandidates enumerates every (long, short) put pair from the
// snapshot with longStrike > shortStrike and both quotes tradable.
// Greeks annotation is best-effort: legs keep a zero delta when the
// inputs do not support the closed form.
func (s *Service) BuildPutCandidates(snap *models.OptionChainSnapshot, lotSize int) []models.SpreadCandidate {
	legs := s.putLegs(snap, lotSize)

	var candidates []models.SpreadCandidate
	for i := range legs {
		for j := range legs {
			if legs[i].Strike > legs[j].Strike {
				candidates = append(candidates, models.SpreadCandidate{
					LongPut:  legs[i],
					ShortPut: legs[j],
				})
			}
		}
	}
	return candidates
}

// AnnotatedPutLegs returns the snapshot's tradable puts as spread legs
// with Greeks annotated where computable, ascending by strike.
func (s *Service) AnnotatedPutLegs(snap *models.OptionChainSnapshot, lotSize int) []models.SpreadLeg {
	return s.putLegs(snap, lotSize)
}

// putLegs converts the snapshot's tradable puts to spread legs with
// Greeks annotated where computable.
func (s *Service) putLegs(snap *models.OptionChainSnapshot, lotSize int) []models.SpreadLeg {
	tYears := s.yearsToExpiry(snap.ExpiryDate)

	var legs []models.SpreadLeg
	for _, row := range snap.Strikes {
		put := row.Put
		if !put.Valid() {
			continue
		}

		leg := models.SpreadLeg{
			Strike:       row.StrikePrice,
			Premium:      put.LastPrice,
			Volume:       put.Volume,
			OpenInterest: put.OpenInterest,
		}
		if lotSize > 0 {
			lot := lotSize
			leg.LotSize = &lot
		}
		if put.ImpliedVolatility > 0 {
			iv := put.ImpliedVolatility
			leg.ImpliedVol = &iv

			if greeks, ok := analysis.Greeks(analysis.OptionPut, snap.UnderlyingValue, row.StrikePrice, tYears, s.cfg.RiskFreeRate, iv/100); ok {
				leg.Delta = greeks.Delta
				gamma, theta := greeks.Gamma, greeks.Theta
				leg.Gamma = &gamma
				leg.Theta = &theta
			}
		}
		legs = append(legs, leg)
	}
	return legs
}

// yearsToExpiry converts the expiry date to time-to-expiry in years,
// clamped non-negative.
func (s *Service) yearsToExpiry(expiry string) float64 {
	t, err := ParseExpiryDate(expiry)
	if err != nil {
		return 0
	}
	// Contracts settle at 15:30 IST on expiry day.
	settle := time.Date(t.Year(), t.Month(), t.Day(), 15, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	hours := settle.Sub(s.now()).Hours()
	if hours <= 0 {
		return 0
	}
	return hours / (24 * 365)
}
