package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quotePageFixture = `
<html><body>
<div class="tile">
  <a>Dólar Blue</a>
  <div class="compra"><div class="val">$1.200,00</div></div>
  <div class="venta"><div class="val">$1.250,00</div></div>
</div>
<div class="tile">
  <a>Dólar Oficial</a>
  <div class="compra"><div class="val">$1.000,50</div></div>
  <div class="venta"><div class="val">$1.050,50</div></div>
</div>
</body></html>`

func TestParseQuoteHTML(t *testing.T) {
	prices, err := ParseQuoteHTML(quotePageFixture)

	require.NoError(t, err)
	assert.Equal(t, "1200.00", prices.BlueBuy.StringFixed(2))
	assert.Equal(t, "1250.00", prices.BlueSell.StringFixed(2))
	assert.Equal(t, "1000.50", prices.OfficialBuy.StringFixed(2))
	assert.Equal(t, "1050.50", prices.OfficialSell.StringFixed(2))
}

func TestParseQuoteHTMLMissingSections(t *testing.T) {
	_, err := ParseQuoteHTML("<html><body>nothing here</body></html>")
	require.ErrorIs(t, err, ErrParse)
}

func TestParseQuoteHTMLInsufficientPrices(t *testing.T) {
	_, err := ParseQuoteHTML("Dólar Blue $1.200,00 Dólar Oficial $1.000,00 Dólar")
	require.ErrorIs(t, err, ErrParse)
}

func TestScraperFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(quotePageFixture))
	}))
	defer srv.Close()

	prices, err := NewScraper(srv.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1200.00", prices.BlueBuy.StringFixed(2))
}

func TestScraperFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewScraper(srv.URL).Fetch(context.Background())
	require.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAPISourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"blue":{"value_buy":1200,"value_sell":1250},"oficial":{"value_buy":1000,"value_sell":1050}}`))
	}))
	defer srv.Close()

	prices, err := NewAPISource(srv.URL).Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "1050.00", prices.OfficialSell.StringFixed(2))
}

func TestAPISourceBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	_, err := NewAPISource(srv.URL).Fetch(context.Background())
	require.ErrorIs(t, err, ErrParse)
}
