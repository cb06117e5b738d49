package fx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/santif/monthly-close/internal/money"
)

// DefaultScrapeURL is the primary quote page.
const DefaultScrapeURL = "https://dolarhoy.com/"

var (
	// Repeat counts are split because Go's regexp caps {m,n} at n=1000;
	// each concatenation matches the same 0..1500 / 0..2500 windows.
	blueSectionRe     = regexp.MustCompile(`(?is)d[oó]lar blue(.{0,1000}?.{0,500}?)d[oó]lar`)
	officialSectionRe = regexp.MustCompile(`(?is)d[oó]lar oficial(.{0,1000}?.{0,500}?)d[oó]lar`)
	// Relaxed variants for sections at the end of the page body.
	blueTailRe     = regexp.MustCompile(`(?is)d[oó]lar blue(.{0,1000}.{0,1000}.{0,500})`)
	officialTailRe = regexp.MustCompile(`(?is)d[oó]lar oficial(.{0,1000}.{0,1000}.{0,500})`)
	priceRe        = regexp.MustCompile(`\$\s*([0-9.,]+)`)
)

// ParseQuoteHTML extracts the blue and official buy/sell prices from the
// quote page HTML. It fails with ErrParse when either section or its two
// price points cannot be located.
func ParseQuoteHTML(html string) (MarketPrices, error) {
	blue := blueSectionRe.FindStringSubmatch(html)
	if blue == nil {
		blue = blueTailRe.FindStringSubmatch(html)
	}
	official := officialSectionRe.FindStringSubmatch(html)
	if official == nil {
		official = officialTailRe.FindStringSubmatch(html)
	}
	if blue == nil || official == nil {
		return MarketPrices{}, fmt.Errorf("%w: blue/official sections not found", ErrParse)
	}

	blueBuy, blueSell, err := extractPricePair(blue[1])
	if err != nil {
		return MarketPrices{}, err
	}
	officialBuy, officialSell, err := extractPricePair(official[1])
	if err != nil {
		return MarketPrices{}, err
	}
	return MarketPrices{
		BlueBuy:      blueBuy,
		BlueSell:     blueSell,
		OfficialBuy:  officialBuy,
		OfficialSell: officialSell,
	}, nil
}

func extractPricePair(section string) (buy, sell decimal.Decimal, err error) {
	matches := priceRe.FindAllStringSubmatch(section, 2)
	if len(matches) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: insufficient price points in section", ErrParse)
	}
	if buy, err = money.Parse(matches[0][1]); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if sell, err = money.Parse(matches[1][1]); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return buy, sell, nil
}

// Scraper fetches the quote page over HTTP and parses it.
type Scraper struct {
	URL    string
	Client *http.Client
}

// NewScraper builds the primary scraped source with a bounded timeout.
func NewScraper(url string) *Scraper {
	if url == "" {
		url = DefaultScrapeURL
	}
	return &Scraper{
		URL:    url,
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *Scraper) Name() string { return "dolarhoy" }

func (s *Scraper) Fetch(ctx context.Context) (MarketPrices, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return MarketPrices{}, fmt.Errorf("%w: status %d from %s", ErrSourceUnavailable, resp.StatusCode, s.URL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return ParseQuoteHTML(string(body))
}

// FileSource parses a local HTML fixture instead of hitting the network,
// for tests and offline runs.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "html-fixture" }

func (f *FileSource) Fetch(ctx context.Context) (MarketPrices, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return MarketPrices{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return ParseQuoteHTML(string(raw))
}
