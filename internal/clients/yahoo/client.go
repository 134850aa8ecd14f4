package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

const (
	quoteURL  = "https://query1.finance.yahoo.com/v7/finance/quote"
	chartURL  = "https://query1.finance.yahoo.com/v8/finance/chart/"
	searchURL = "https://query1.finance.yahoo.com/v1/finance/search"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Client is a Yahoo Finance API client
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "yahoo").Logger(),
	}
}

// quoteFields is the field set requested from the quote API. It covers
// everything the screening and scoring pipeline consumes.
const quoteFields = "symbol,regularMarketPrice,currentPrice,quoteType,sector,industry," +
	"beta,revenueGrowth,earningsGrowth,returnOnEquity,debtToEquity,targetMeanPrice," +
	"pegRatio,marketCap,totalDebt,totalAssets,longName,shortName,exchange"

// GetSnapshot fetches the descriptive and fundamental attributes for one
// ticker. Optional fields the provider omits stay nil on the snapshot; the
// caller decides the defaults.
func (c *Client) GetSnapshot(ticker string) (*domain.Snapshot, error) {
	info, err := c.getQuoteInfo(ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote info: %w", err)
	}

	return &domain.Snapshot{
		Ticker:          ticker,
		QuoteType:       getString(info, "quoteType", "EQUITY"),
		Sector:          getString(info, "sector", "Unknown"),
		Beta:            getFloat64(info, "beta"),
		RevenueGrowth:   getFloat64(info, "revenueGrowth"),
		EarningsGrowth:  getFloat64(info, "earningsGrowth"),
		ReturnOnEquity:  getFloat64(info, "returnOnEquity"),
		DebtToEquity:    getFloat64(info, "debtToEquity"),
		TargetMeanPrice: getFloat64(info, "targetMeanPrice"),
		PEGRatio:        getFloat64(info, "pegRatio"),
		MarketCap:       getFloat64(info, "marketCap"),
		TotalDebt:       getFloat64(info, "totalDebt"),
		TotalAssets:     getFloat64(info, "totalAssets"),
	}, nil
}

// GetDailyBars fetches daily OHLCV bars for one ticker.
//
// Supported periods: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max.
// A ticker unknown to the provider yields an empty series, not an error.
func (c *Client) GetDailyBars(ticker, period string) (domain.BarSeries, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	body, err := c.get(chartURL+url.PathEscape(ticker), params)
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		c.log.Warn().Str("ticker", ticker).Msg("No bar data returned")
		return domain.BarSeries{}, nil
	}

	chartData := result.Chart.Result[0]
	quote := chartData.Indicators.Quote[0]

	var bars domain.BarSeries
	for i, ts := range chartData.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			continue
		}
		// The provider fills halted days with all-zero rows
		if quote.Open[i] == 0 && quote.High[i] == 0 && quote.Low[i] == 0 && quote.Close[i] == 0 {
			continue
		}

		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}

		bars = append(bars, domain.Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	c.log.Debug().
		Str("ticker", ticker).
		Str("period", period).
		Int("count", len(bars)).
		Msg("Fetched daily bars")

	return bars, nil
}

// GetDailyBarsSince fetches daily bars from a start date to now
func (c *Client) GetDailyBarsSince(ticker string, since time.Time) (domain.BarSeries, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("period1", fmt.Sprintf("%d", since.Unix()))
	params.Add("period2", fmt.Sprintf("%d", time.Now().Unix()))

	body, err := c.get(chartURL+url.PathEscape(ticker), params)
	if err != nil {
		return nil, err
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 || len(result.Chart.Result[0].Indicators.Quote) == 0 {
		return domain.BarSeries{}, nil
	}

	chartData := result.Chart.Result[0]
	quote := chartData.Indicators.Quote[0]

	var bars domain.BarSeries
	for i, ts := range chartData.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		volume := int64(0)
		if i < len(quote.Volume) {
			volume = quote.Volume[i]
		}
		bars = append(bars, domain.Bar{
			Date:   time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Open:   quote.Open[i],
			High:   quote.High[i],
			Low:    quote.Low[i],
			Close:  quote.Close[i],
			Volume: volume,
		})
	}

	return bars, nil
}

// Search looks up tickers by free-text query
func (c *Client) Search(query string) ([]SearchMatch, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("quotesCount", "10")
	params.Add("newsCount", "0")
	params.Add("listsCount", "0")
	params.Add("enableFuzzyQuery", "false")

	body, err := c.get(searchURL, params)
	if err != nil {
		return nil, err
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	matches := make([]SearchMatch, 0, len(result.Quotes))
	for _, q := range result.Quotes {
		matches = append(matches, SearchMatch{
			Symbol:   q.Symbol,
			Name:     q.ShortName,
			Exchange: q.Exchange,
		})
	}

	return matches, nil
}

// get performs a GET request with browser-like headers and returns the body
func (c *Client) get(baseURL string, params url.Values) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// getQuoteInfo fetches the raw quote field map for one ticker
func (c *Client) getQuoteInfo(ticker string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", ticker)
	params.Add("fields", quoteFields)

	body, err := c.get(quoteURL, params)
	if err != nil {
		return nil, err
	}

	var result quoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for %s", ticker)
	}

	return result.QuoteResponse.Result[0], nil
}

// Helper functions to safely extract values from the quote field map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func getString(m map[string]interface{}, key string, defaultVal string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}
