package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/santif/monthly-close/internal/domain"
)

// fakeSource is a hand-written Source stub.
type fakeSource struct {
	name   string
	prices MarketPrices
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(ctx context.Context) (MarketPrices, error) {
	f.calls++
	return f.prices, f.err
}

func pricesFromStrings(bb, bs, ob, os string) MarketPrices {
	return MarketPrices{
		BlueBuy:      decimal.RequireFromString(bb),
		BlueSell:     decimal.RequireFromString(bs),
		OfficialBuy:  decimal.RequireFromString(ob),
		OfficialSell: decimal.RequireFromString(os),
	}
}

func TestPactedRate(t *testing.T) {
	prices := pricesFromStrings("1200", "1250", "1000", "1050")
	// (1200+1250+1000+1050)/4 = 1125
	assert.Equal(t, "1125.00", PactedRate(prices, 2).StringFixed(2))

	odd := pricesFromStrings("1200.01", "1250", "1000", "1050")
	// mean = 1125.0025 -> 1125.00 at two places
	assert.Equal(t, "1125.00", PactedRate(odd, 2).StringFixed(2))
}

func TestResolveOverrideWinsWithoutFetching(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("must not be called")}
	r := NewResolver(primary, nil, 2)

	override := decimal.RequireFromString("1250.50")
	quote, err := r.Resolve(context.Background(), &override)

	require.NoError(t, err)
	assert.Equal(t, domain.RateOverride, quote.Source)
	assert.True(t, quote.Value.Equal(override))
	assert.Zero(t, primary.calls, "override must not touch the network")
}

func TestResolveRejectsNonPositiveOverride(t *testing.T) {
	r := NewResolver(&fakeSource{name: "primary"}, nil, 2)

	zero := decimal.Zero
	_, err := r.Resolve(context.Background(), &zero)

	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestResolvePrimarySource(t *testing.T) {
	primary := &fakeSource{name: "primary", prices: pricesFromStrings("1200", "1250", "1000", "1050")}
	fallback := &fakeSource{name: "fallback", err: errors.New("must not be called")}
	r := NewResolver(primary, fallback, 2)

	quote, err := r.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RateScraped, quote.Source)
	assert.Equal(t, "1125.00", quote.Value.StringFixed(2))
	assert.Zero(t, fallback.calls)
	assert.Len(t, quote.Prices, 4)
}

func TestResolveFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("connection refused")}
	fallback := &fakeSource{name: "fallback", prices: pricesFromStrings("1100", "1150", "900", "950")}
	r := NewResolver(primary, fallback, 2)

	quote, err := r.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RateFallback, quote.Source)
	assert.Equal(t, "1025.00", quote.Value.StringFixed(2))
}

func TestResolveFallsBackOnInvalidPrimaryPrices(t *testing.T) {
	// A parsed-but-zero price is as bad as an unreachable source.
	primary := &fakeSource{name: "primary", prices: MarketPrices{}}
	fallback := &fakeSource{name: "fallback", prices: pricesFromStrings("1100", "1150", "900", "950")}
	r := NewResolver(primary, fallback, 2)

	quote, err := r.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, domain.RateFallback, quote.Source)
}

func TestResolveAllSourcesFailed(t *testing.T) {
	primary := &fakeSource{name: "primary", err: errors.New("timeout")}
	fallback := &fakeSource{name: "fallback", err: errors.New("503")}
	r := NewResolver(primary, fallback, 2)

	_, err := r.Resolve(context.Background(), nil)

	require.ErrorIs(t, err, domain.ErrRateUnavailable)
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "fallback")
}

func TestResolverStampsResolutionTime(t *testing.T) {
	primary := &fakeSource{name: "primary", prices: pricesFromStrings("1", "1", "1", "1")}
	r := NewResolver(primary, nil, 2)
	fixed := time.Date(2026, time.February, 26, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	quote, err := r.Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, fixed, quote.ResolvedAt)
}
