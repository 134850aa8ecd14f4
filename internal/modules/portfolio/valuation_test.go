package portfolio

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/areddy/alphaseeker/internal/domain"
)

type fakeBarSource struct {
	bars map[string]domain.BarSeries
	err  error
}

func (f *fakeBarSource) BarsSince(ticker string, since time.Time) (domain.BarSeries, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[ticker], nil
}

var valuationNow = time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)

func newTestEngine(src *fakeBarSource) *ValuationEngine {
	e := NewValuationEngine(src, zerolog.Nop())
	e.now = func() time.Time { return valuationNow }
	return e
}

func dailyBars(first time.Time, closes ...float64) domain.BarSeries {
	bars := make(domain.BarSeries, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Date: first.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return bars
}

func TestHistory_EmptyHoldings(t *testing.T) {
	engine := newTestEngine(&fakeBarSource{})

	series, err := engine.History(nil, domain.WindowAll)
	require.NoError(t, err)
	assert.Empty(t, series.Dates)
	assert.Empty(t, series.PortfolioValue)
	assert.Empty(t, series.InvestedValue)
	assert.NotNil(t, series.Dates)
}

func TestHistory_SingleHolding(t *testing.T) {
	buy := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"INFY.NS": dailyBars(buy, 100, 102, 101, 103, 105),
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{{Ticker: "INFY.NS", Quantity: 10, BuyPrice: 100, BuyDate: buy}}

	series, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	// Jun 6 through Jun 10 inclusive
	require.Len(t, series.Dates, 5)
	assert.Equal(t, "2025-06-06", series.Dates[0])
	assert.Equal(t, "2025-06-10", series.Dates[4])

	assert.Equal(t, []float64{1000, 1020, 1010, 1030, 1050}, series.PortfolioValue)
	assert.Equal(t, []float64{1000, 1000, 1000, 1000, 1000}, series.InvestedValue)
}

func TestHistory_ForwardFillsMissingDays(t *testing.T) {
	buy := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	// Bars only on Jun 6 and Jun 9; the weekend carries Friday's close
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"TCS.NS": {
			{Date: buy, Close: 50, Volume: 1000},
			{Date: buy.AddDate(0, 0, 3), Close: 60, Volume: 1000},
		},
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{{Ticker: "TCS.NS", Quantity: 2, BuyPrice: 50, BuyDate: buy}}

	series, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	assert.Equal(t, []float64{100, 100, 100, 120, 120}, series.PortfolioValue)
}

func TestHistory_InvestedStepsOnLaterBuy(t *testing.T) {
	first := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	second := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"A.NS": dailyBars(first, 10, 10, 10, 10, 10),
		"B.NS": dailyBars(first, 20, 20, 20, 20, 20),
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{
		{Ticker: "A.NS", Quantity: 1, BuyPrice: 10, BuyDate: first},
		{Ticker: "B.NS", Quantity: 1, BuyPrice: 20, BuyDate: second},
	}

	series, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	require.Len(t, series.InvestedValue, 5)
	assert.Equal(t, []float64{10, 10, 30, 30, 30}, series.InvestedValue)
	assert.Equal(t, []float64{10, 10, 30, 30, 30}, series.PortfolioValue)
}

func TestHistory_Idempotent(t *testing.T) {
	buy := time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC)
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"INFY.NS": dailyBars(buy, 100, 102, 101, 103, 105),
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{{Ticker: "INFY.NS", Quantity: 10, BuyPrice: 100, BuyDate: buy}}

	first, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)
	second, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHistory_BuyDateTodayYieldsSinglePoint(t *testing.T) {
	today := midnight(valuationNow)
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"NEW.NS": {{Date: today, Close: 200, Volume: 1000}},
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{{Ticker: "NEW.NS", Quantity: 1, BuyPrice: 200, BuyDate: today}}

	series, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	require.Len(t, series.Dates, 1)
	assert.Equal(t, "2025-06-10", series.Dates[0])
	assert.Equal(t, 200.0, series.PortfolioValue[0])
	assert.Equal(t, 200.0, series.InvestedValue[0])
}

func TestHistory_FetchFailureValuesAtZeroButCountsInvested(t *testing.T) {
	buy := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	engine := newTestEngine(&fakeBarSource{err: errors.New("provider down")})

	holdings := []domain.Holding{{Ticker: "GONE.NS", Quantity: 5, BuyPrice: 40, BuyDate: buy}}

	series, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)

	require.Len(t, series.Dates, 3)
	for i := range series.Dates {
		assert.Equal(t, 0.0, series.PortfolioValue[i])
		assert.Equal(t, 200.0, series.InvestedValue[i])
	}
}

func TestHistory_WindowTruncation(t *testing.T) {
	buy := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	closes := make([]float64, 161) // Jan 1 through Jun 10
	for i := range closes {
		closes[i] = 100
	}
	src := &fakeBarSource{bars: map[string]domain.BarSeries{
		"LONG.NS": dailyBars(buy, closes...),
	}}
	engine := newTestEngine(src)

	holdings := []domain.Holding{{Ticker: "LONG.NS", Quantity: 1, BuyPrice: 100, BuyDate: buy}}

	all, err := engine.History(holdings, domain.WindowAll)
	require.NoError(t, err)
	assert.Len(t, all.Dates, 161)

	oneMonth, err := engine.History(holdings, domain.Window1Month)
	require.NoError(t, err)
	require.Len(t, oneMonth.Dates, 31)
	assert.Equal(t, "2025-05-11", oneMonth.Dates[0])

	ytd, err := engine.History(holdings, domain.WindowYTD)
	require.NoError(t, err)
	// YTD start equals the buy date here, so nothing is cut
	assert.Len(t, ytd.Dates, 161)
	assert.Equal(t, "2025-01-01", ytd.Dates[0])
}
