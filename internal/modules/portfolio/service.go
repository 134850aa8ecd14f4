package portfolio

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/clients/broker"
	"github.com/areddy/alphaseeker/internal/domain"
)

// QuoteSource supplies recent bars for live pricing
type QuoteSource interface {
	Bars(ticker, period string) (domain.BarSeries, error)
}

// Service owns the holdings ledger: CRUD, live enrichment, broker sync and
// the valuation history
type Service struct {
	repo      *Repository
	quotes    QuoteSource
	valuation *ValuationEngine
	log       zerolog.Logger
}

// NewService creates a portfolio service
func NewService(repo *Repository, quotes QuoteSource, valuation *ValuationEngine, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		quotes:    quotes,
		valuation: valuation,
		log:       log.With().Str("service", "portfolio").Logger(),
	}
}

// Add records a manual holding
func (s *Service) Add(userEmail string, h domain.Holding) (domain.Holding, error) {
	return s.repo.Add(userEmail, h)
}

// Delete removes every holding of a ticker. Returns whether anything was
// removed.
func (s *Service) Delete(userEmail, ticker string) (bool, error) {
	n, err := s.repo.DeleteByTicker(userEmail, ticker)
	return n > 0, err
}

// Raw returns the plain holdings snapshot for a user
func (s *Service) Raw(userEmail string) ([]domain.Holding, error) {
	return s.repo.ForUser(userEmail)
}

// Holdings returns the user's holdings enriched with live prices and P/L.
// A ticker whose quote cannot be fetched falls back to its buy price.
func (s *Service) Holdings(userEmail string) ([]EnrichedHolding, error) {
	holdings, err := s.repo.ForUser(userEmail)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		if _, done := latest[h.Ticker]; done {
			continue
		}
		bars, err := s.quotes.Bars(h.Ticker, "5d")
		if err != nil || len(bars) == 0 {
			s.log.Warn().Err(err).Str("ticker", h.Ticker).Msg("Quote unavailable, using buy price")
			continue
		}
		latest[h.Ticker] = bars.LatestClose()
	}

	enriched := make([]EnrichedHolding, 0, len(holdings))
	for _, h := range holdings {
		current := h.BuyPrice
		if price, ok := latest[h.Ticker]; ok && price > 0 {
			current = price
		}

		total := current * h.Quantity
		invested := h.BuyPrice * h.Quantity
		plPct := 0.0
		if h.BuyPrice > 0 {
			plPct = (current - h.BuyPrice) / h.BuyPrice * 100
		}

		enriched = append(enriched, EnrichedHolding{
			Holding:      h,
			CurrentPrice: round2(current),
			TotalValue:   round2(total),
			PLAmount:     round2(total - invested),
			PLPercent:    round2(plPct),
		})
	}

	return enriched, nil
}

// History reconstructs the valuation series for a user's holdings
func (s *Service) History(userEmail string, window domain.Window) (domain.ValuationSeries, error) {
	holdings, err := s.repo.ForUser(userEmail)
	if err != nil {
		return domain.ValuationSeries{}, err
	}
	return s.valuation.History(holdings, window)
}

// SyncBroker replaces the user's broker-sourced holdings with a fresh trade
// batch, preserving manual entries
func (s *Service) SyncBroker(userEmail string, trades []broker.Trade) (int, error) {
	fresh := make([]domain.Holding, 0, len(trades))
	for _, t := range trades {
		buyDate, err := time.Parse(dateLayout, t.Date)
		if err != nil {
			s.log.Warn().Str("ticker", t.Ticker).Str("date", t.Date).Msg("Skipping trade with bad date")
			continue
		}
		fresh = append(fresh, domain.Holding{
			Ticker:   t.Ticker,
			Quantity: t.Quantity,
			BuyPrice: t.Price,
			BuyDate:  buyDate,
			Source:   domain.SourceBroker,
		})
	}

	added, err := s.repo.ReplaceBrokerHoldings(userEmail, fresh)
	if err != nil {
		return 0, fmt.Errorf("broker sync failed: %w", err)
	}

	s.log.Info().Str("user", userEmail).Int("added", added).Msg("Broker sync complete")
	return added, nil
}
