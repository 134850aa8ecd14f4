package analyst

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

// MarketContext supplies the quote context embedded in the prompt
type MarketContext interface {
	Bars(ticker, period string) (domain.BarSeries, error)
	Snapshot(ticker string) (*domain.Snapshot, error)
}

// Thesis is the structured output of a reasoning run
type Thesis struct {
	Recommendation  string   `json:"recommendation"`
	Thesis          []string `json:"thesis"`
	RiskFactors     []string `json:"risk_factors"`
	ConfidenceScore int      `json:"confidence_score"`
}

// Service generates investment theses through an OpenAI-compatible
// reasoning endpoint
type Service struct {
	baseURL string
	apiKey  string
	model   string
	market  MarketContext
	http    *http.Client
	log     zerolog.Logger
}

// NewService creates an analyst service. An empty baseURL leaves the
// service unconfigured; Generate then returns an error instead of calling out.
func NewService(baseURL, apiKey string, market MarketContext, log zerolog.Logger) *Service {
	return &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   "default",
		market:  market,
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     log.With().Str("service", "analyst").Logger(),
	}
}

// Configured reports whether a reasoning endpoint is set
func (s *Service) Configured() bool {
	return s.baseURL != ""
}

// Generate builds a market-grounded prompt for the ticker and parses the
// reasoning response into a structured thesis
func (s *Service) Generate(ticker string) (*Thesis, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("reasoning service is not configured")
	}

	prompt, err := s.buildPrompt(ticker)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(prompt)
	if err != nil {
		return nil, err
	}

	thesis, err := parseThesis(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Unparseable reasoning response")
		return nil, err
	}
	return thesis, nil
}

func (s *Service) buildPrompt(ticker string) (string, error) {
	bars, err := s.market.Bars(ticker, "1mo")
	if err != nil {
		return "", fmt.Errorf("fetching price context for %s: %w", ticker, err)
	}

	ctx := map[string]interface{}{
		"symbol":        ticker,
		"current_price": bars.LatestClose(),
	}
	if snap, err := s.market.Snapshot(ticker); err == nil {
		ctx["sector"] = snap.Sector
		ctx["beta"] = snap.BetaOrDefault()
		if snap.MarketCap != nil {
			ctx["market_cap"] = *snap.MarketCap
		}
	}

	closes := make(map[string]float64, len(bars))
	for _, bar := range bars {
		closes[bar.Date.Format("2006-01-02")] = bar.Close
	}
	ctx["price_history"] = closes

	ctxJSON, err := json.Marshal(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are an equity research analyst covering the Indian and US markets.
Analyze the following asset: %s

Market data:
%s

Provide a structured investment thesis.
Output STRICT JSON with exactly these keys:
- recommendation: "Buy", "Sell", or "Hold"
- thesis: list of 3 bullet points
- risk_factors: list of risks
- confidence_score: integer 0-100`, ticker, ctxJSON), nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *Service) complete(prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reasoning request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("reasoning service returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding reasoning response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("reasoning service returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseThesis tolerates markdown code fences around the JSON payload
func parseThesis(raw string) (*Thesis, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var t Thesis
	if err := json.Unmarshal([]byte(cleaned), &t); err != nil {
		return nil, fmt.Errorf("parsing thesis JSON: %w", err)
	}
	if t.Recommendation == "" {
		return nil, fmt.Errorf("thesis missing recommendation")
	}
	return &t, nil
}
