package market

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/areddy/alphaseeker/internal/domain"
)

// ErrNoMarketData signals that an entire batch fetch came back empty.
// This is the one condition a scan does not degrade through.
var ErrNoMarketData = errors.New("market data provider returned no data")

// Provider is the upstream market data source the store wraps
type Provider interface {
	GetDailyBars(ticker, period string) (domain.BarSeries, error)
	GetDailyBarsSince(ticker string, since time.Time) (domain.BarSeries, error)
	GetSnapshot(ticker string) (*domain.Snapshot, error)
}

// Store caches fetched bar series and snapshots for the duration of a run.
// Bar batches are fetched in parallel with a bounded worker pool; snapshot
// lookups go through a rate limiter because the provider throttles the
// per-ticker quote endpoint far more aggressively than the chart endpoint.
type Store struct {
	provider Provider
	cache    *gocache.Cache
	limiter  *rate.Limiter
	workers  int
	log      zerolog.Logger
}

const (
	cacheTTL      = 15 * time.Minute
	cleanupPeriod = 30 * time.Minute
	fetchWorkers  = 8
)

// NewStore creates a market series store around a provider
func NewStore(provider Provider, log zerolog.Logger) *Store {
	return &Store{
		provider: provider,
		cache:    gocache.New(cacheTTL, cleanupPeriod),
		limiter:  rate.NewLimiter(rate.Every(300*time.Millisecond), 1),
		workers:  fetchWorkers,
		log:      log.With().Str("service", "market").Logger(),
	}
}

// FetchBatch fetches daily bars for a whole ticker universe in parallel.
// Tickers the provider has no data for are simply absent from the result.
// Returns ErrNoMarketData only when every ticker came back empty.
func (s *Store) FetchBatch(tickers []string, period string) (map[string]domain.BarSeries, error) {
	if len(tickers) == 0 {
		return nil, ErrNoMarketData
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = make(map[string]domain.BarSeries, len(tickers))
		sem    = make(chan struct{}, s.workers)
	)

	for _, ticker := range tickers {
		wg.Add(1)
		sem <- struct{}{}
		go func(ticker string) {
			defer wg.Done()
			defer func() { <-sem }()

			bars, err := s.Bars(ticker, period)
			if err != nil {
				s.log.Debug().Err(err).Str("ticker", ticker).Msg("Bar fetch failed, skipping")
				return
			}
			if len(bars) == 0 {
				return
			}

			mu.Lock()
			result[ticker] = bars
			mu.Unlock()
		}(ticker)
	}
	wg.Wait()

	if len(result) == 0 {
		return nil, ErrNoMarketData
	}

	s.log.Info().
		Int("requested", len(tickers)).
		Int("fetched", len(result)).
		Str("period", period).
		Msg("Batch bar fetch complete")

	return result, nil
}

// Bars fetches daily bars for one ticker, cached per run
func (s *Store) Bars(ticker, period string) (domain.BarSeries, error) {
	key := fmt.Sprintf("bars:%s:%s", ticker, period)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(domain.BarSeries), nil
	}

	bars, err := s.provider.GetDailyBars(ticker, period)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, bars, gocache.DefaultExpiration)
	return bars, nil
}

// BarsSince fetches daily bars from a start date, cached per run
func (s *Store) BarsSince(ticker string, since time.Time) (domain.BarSeries, error) {
	key := fmt.Sprintf("bars:%s:since:%s", ticker, since.Format("2006-01-02"))
	if cached, ok := s.cache.Get(key); ok {
		return cached.(domain.BarSeries), nil
	}

	bars, err := s.provider.GetDailyBarsSince(ticker, since)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, bars, gocache.DefaultExpiration)
	return bars, nil
}

// Snapshot fetches descriptive attributes for one ticker through the rate
// limiter, cached per run. Failures return the error; callers degrade.
func (s *Store) Snapshot(ticker string) (*domain.Snapshot, error) {
	key := "snapshot:" + ticker
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*domain.Snapshot), nil
	}

	if err := s.limiter.Wait(context.Background()); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	snap, err := s.provider.GetSnapshot(ticker)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, snap, gocache.DefaultExpiration)
	return snap, nil
}

// Flush drops every cached entry
func (s *Store) Flush() {
	s.cache.Flush()
}
