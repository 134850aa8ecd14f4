package market

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areddy/alphaseeker/internal/domain"
)

type countingProvider struct {
	bars    map[string]domain.BarSeries
	snaps   map[string]*domain.Snapshot
	barHits int64
}

func (p *countingProvider) GetDailyBars(ticker, period string) (domain.BarSeries, error) {
	atomic.AddInt64(&p.barHits, 1)
	bars, ok := p.bars[ticker]
	if !ok {
		return nil, errors.New("unknown ticker")
	}
	return bars, nil
}

func (p *countingProvider) GetDailyBarsSince(ticker string, since time.Time) (domain.BarSeries, error) {
	return p.GetDailyBars(ticker, "")
}

func (p *countingProvider) GetSnapshot(ticker string) (*domain.Snapshot, error) {
	snap, ok := p.snaps[ticker]
	if !ok {
		return nil, errors.New("no snapshot")
	}
	return snap, nil
}

func someBars(n int) domain.BarSeries {
	bars := make(domain.BarSeries, n)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = domain.Bar{Date: start.AddDate(0, 0, i), Close: 100 + float64(i), Volume: 1000}
	}
	return bars
}

func TestFetchBatch_PartialFailureDegrades(t *testing.T) {
	provider := &countingProvider{bars: map[string]domain.BarSeries{
		"A": someBars(5),
		"B": someBars(5),
	}}
	store := NewStore(provider, zerolog.Nop())

	result, err := store.FetchBatch([]string{"A", "B", "MISSING"}, "6mo")
	require.NoError(t, err)

	assert.Len(t, result, 2)
	assert.Contains(t, result, "A")
	assert.Contains(t, result, "B")
	assert.NotContains(t, result, "MISSING")
}

func TestFetchBatch_TotalFailure(t *testing.T) {
	store := NewStore(&countingProvider{}, zerolog.Nop())

	_, err := store.FetchBatch([]string{"X", "Y"}, "6mo")
	assert.ErrorIs(t, err, ErrNoMarketData)
}

func TestFetchBatch_EmptyUniverse(t *testing.T) {
	store := NewStore(&countingProvider{bars: map[string]domain.BarSeries{"A": someBars(5)}}, zerolog.Nop())

	_, err := store.FetchBatch(nil, "6mo")
	assert.ErrorIs(t, err, ErrNoMarketData)
}

func TestBars_Cached(t *testing.T) {
	provider := &countingProvider{bars: map[string]domain.BarSeries{"A": someBars(5)}}
	store := NewStore(provider, zerolog.Nop())

	first, err := store.Bars("A", "6mo")
	require.NoError(t, err)
	second, err := store.Bars("A", "6mo")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&provider.barHits))

	store.Flush()
	_, err = store.Bars("A", "6mo")
	require.NoError(t, err)
	assert.Equal(t, int64(2), atomic.LoadInt64(&provider.barHits))
}

func TestSnapshot_ErrorPropagates(t *testing.T) {
	store := NewStore(&countingProvider{}, zerolog.Nop())

	_, err := store.Snapshot("NOPE")
	assert.Error(t, err)
}

func TestUniverse_TickersMergedAndDeduped(t *testing.T) {
	u := Universe{
		IndiaEquities: []string{"B.NS", "A.NS", "A.NS"},
		IndiaETFs:     []string{"GOLDBEES.NS"},
		USEquities:    []string{"AAPL"},
		USETFs:        []string{"VOO"},
	}

	in := u.Tickers(domain.RegionIndia)
	assert.Equal(t, []string{"A.NS", "B.NS", "GOLDBEES.NS"}, in)

	us := u.Tickers(domain.RegionUS)
	assert.Equal(t, []string{"AAPL", "VOO"}, us)
}

func TestUniverse_IsKnownFund(t *testing.T) {
	u := DefaultUniverse()

	assert.True(t, u.IsKnownFund("GOLDBEES.NS"))
	assert.True(t, u.IsKnownFund("SPY"))
	assert.False(t, u.IsKnownFund("RELIANCE.NS"))
}
