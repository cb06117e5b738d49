package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultFallbackURL is the stable JSON fallback endpoint. No HTML
// parsing involved.
const DefaultFallbackURL = "https://api.bluelytics.com.ar/v2/latest"

type bluelyticsQuote struct {
	ValueBuy  float64 `json:"value_buy"`
	ValueSell float64 `json:"value_sell"`
}

type bluelyticsResponse struct {
	Blue    bluelyticsQuote `json:"blue"`
	Oficial bluelyticsQuote `json:"oficial"`
}

// APISource fetches market prices from the JSON fallback API.
type APISource struct {
	URL    string
	Client *http.Client
}

// NewAPISource builds the fallback source with a bounded timeout.
func NewAPISource(url string) *APISource {
	if url == "" {
		url = DefaultFallbackURL
	}
	return &APISource{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (a *APISource) Name() string { return "bluelytics" }

func (a *APISource) Fetch(ctx context.Context) (MarketPrices, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "monthly-close/1.0")

	resp, err := a.Client.Do(req)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return MarketPrices{}, fmt.Errorf("%w: status %d from %s", ErrSourceUnavailable, resp.StatusCode, a.URL)
	}

	var parsed bluelyticsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return MarketPrices{
		BlueBuy:      decimal.NewFromFloat(parsed.Blue.ValueBuy),
		BlueSell:     decimal.NewFromFloat(parsed.Blue.ValueSell),
		OfficialBuy:  decimal.NewFromFloat(parsed.Oficial.ValueBuy),
		OfficialSell: decimal.NewFromFloat(parsed.Oficial.ValueSell),
	}, nil
}
