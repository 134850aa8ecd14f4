package broker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client talks to the brokerage developer API. The credential flow is
// OAuth-style: the user logs in on the broker's portal, comes back with a
// request token, and the server exchanges it for an access token used on
// subsequent trade-book calls.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	client    *http.Client
	log       zerolog.Logger
}

// Trade is a single executed trade from the broker's trade book
type Trade struct {
	Ticker   string  `json:"ticker"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"` // YYYY-MM-DD
	Side     string  `json:"side"` // BUY or SELL
}

// NewClient creates a new broker client
func NewClient(baseURL, apiKey, apiSecret string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("client", "broker").Logger(),
	}
}

// Configured reports whether API credentials are present
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// LoginURL builds the URL the user is redirected to for broker login
func (c *Client) LoginURL(redirectURI string) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("broker API key not configured")
	}

	return fmt.Sprintf("%s/login?api_key=%s&redirect_url=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(redirectURI)), nil
}

// ExchangeToken exchanges a request token for an access token
func (c *Client) ExchangeToken(requestToken string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("broker credentials not configured")
	}

	body, err := json.Marshal(map[string]string{"apiSecret": c.apiSecret})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/access-token?api_key=%s&request_token=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(requestToken))

	resp, err := c.client.Post(reqURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("token exchange failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("broker returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"access_token"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}

	token := result.AccessToken
	if token == "" {
		token = result.Token
	}
	if token == "" {
		return "", fmt.Errorf("no access token in broker response")
	}

	return token, nil
}

// FetchTradeBook fetches the user's executed trades using an access token.
// Only BUY trades are returned; the ledger does not model broker sells.
func (c *Client) FetchTradeBook(accessToken string) ([]Trade, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/trades", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trade book fetch failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("broker returned status %d: %s", resp.StatusCode, string(raw))
	}

	var result struct {
		Trades []Trade `json:"trades"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to parse trade book: %w", err)
	}

	buys := make([]Trade, 0, len(result.Trades))
	for _, t := range result.Trades {
		if t.Side == "BUY" && t.Quantity > 0 {
			buys = append(buys, t)
		}
	}

	c.log.Info().Int("total", len(result.Trades)).Int("buys", len(buys)).Msg("Fetched trade book")
	return buys, nil
}
