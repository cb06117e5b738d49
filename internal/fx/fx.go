// Package fx resolves the single authoritative exchange rate for a run.
//
// Resolution order: a manual override wins outright; otherwise the primary
// (scraped) source is attempted, then the fallback JSON source. When both
// fail the run must abort with domain.ErrRateUnavailable: a wrong or zero
// rate is the costliest possible error here, so there is no silent default.
package fx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/domain"
	"github.com/santif/monthly-close/internal/logger"
	"github.com/santif/monthly-close/internal/money"
)

// Collaborator failure contracts.
var (
	// ErrSourceUnavailable: the quote source could not be reached.
	ErrSourceUnavailable = errors.New("fx: source unavailable")
	// ErrParse: the source payload did not yield a valid positive rate.
	ErrParse = errors.New("fx: could not parse rate source")
)

// MarketPrices is the buy/sell quote pair for the informal ("blue") and
// official markets. Every source returns this same shape so callers stay
// source-agnostic.
type MarketPrices struct {
	BlueBuy      decimal.Decimal `json:"blue_buy"`
	BlueSell     decimal.Decimal `json:"blue_sell"`
	OfficialBuy  decimal.Decimal `json:"official_buy"`
	OfficialSell decimal.Decimal `json:"official_sell"`
}

func (p MarketPrices) validate() error {
	for _, v := range []decimal.Decimal{p.BlueBuy, p.BlueSell, p.OfficialBuy, p.OfficialSell} {
		if !v.IsPositive() {
			return fmt.Errorf("%w: non-positive price in %+v", ErrParse, p)
		}
	}
	return nil
}

func (p MarketPrices) asMap() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"blue_buy":      p.BlueBuy,
		"blue_sell":     p.BlueSell,
		"official_buy":  p.OfficialBuy,
		"official_sell": p.OfficialSell,
	}
}

// Source produces market prices from one quote provider.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (MarketPrices, error)
}

// PactedRate is the agreed rate: the mean of the four market prices,
// rounded half-up to the given precision.
func PactedRate(p MarketPrices, places int32) decimal.Decimal {
	sum := p.BlueBuy.Add(p.BlueSell).Add(p.OfficialBuy).Add(p.OfficialSell)
	return money.RoundHalfUp(sum.Div(decimal.NewFromInt(4)), places)
}

// Resolver produces exactly one RateQuote per run.
type Resolver struct {
	primary  Source
	fallback Source
	rounding int32
	now      func() time.Time
}

// NewResolver builds a resolver over a primary (scraped) source and an
// optional fallback source. rounding is the decimal precision of the
// pacted rate.
func NewResolver(primary, fallback Source, rounding int32) *Resolver {
	return &Resolver{primary: primary, fallback: fallback, rounding: rounding, now: time.Now}
}

// Resolve returns the run's RateQuote. A non-nil override short-circuits
// all sources and is tagged domain.RateOverride.
func (r *Resolver) Resolve(ctx context.Context, override *decimal.Decimal) (domain.RateQuote, error) {
	log := logger.FromContext(ctx)

	if override != nil {
		if !override.IsPositive() {
			return domain.RateQuote{}, fmt.Errorf("rate override must be positive, got %s: %w", override, domain.ErrRateUnavailable)
		}
		log.Info().Str("rate", override.String()).Msg("using manual rate override")
		return domain.RateQuote{
			Value:      *override,
			Source:     domain.RateOverride,
			ResolvedAt: r.now(),
		}, nil
	}

	prices, err := r.primary.Fetch(ctx)
	if err == nil {
		err = prices.validate()
	}
	if err == nil {
		return r.quote(prices, domain.RateScraped), nil
	}
	log.Warn().Err(err).Str("source", r.primary.Name()).Msg("primary rate source failed")

	if r.fallback == nil {
		return domain.RateQuote{}, fmt.Errorf("%s failed (%v): %w", r.primary.Name(), err, domain.ErrRateUnavailable)
	}

	fbPrices, fbErr := r.fallback.Fetch(ctx)
	if fbErr == nil {
		fbErr = fbPrices.validate()
	}
	if fbErr != nil {
		log.Error().Err(fbErr).Str("source", r.fallback.Name()).Msg("fallback rate source failed")
		return domain.RateQuote{}, fmt.Errorf("all sources failed, %s: %v; %s: %v: %w",
			r.primary.Name(), err, r.fallback.Name(), fbErr, domain.ErrRateUnavailable)
	}
	log.Info().Str("source", r.fallback.Name()).Msg("rate resolved from fallback source")
	return r.quote(fbPrices, domain.RateFallback), nil
}

func (r *Resolver) quote(prices MarketPrices, source domain.RateSource) domain.RateQuote {
	return domain.RateQuote{
		Value:      PactedRate(prices, r.rounding),
		Source:     source,
		ResolvedAt: r.now(),
		Prices:     prices.asMap(),
	}
}
