package portfolio

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
)

// BarSource supplies price history for the valuation engine
type BarSource interface {
	BarsSince(ticker string, since time.Time) (domain.BarSeries, error)
}

// ValuationEngine reconstructs the daily history of a holdings set: a
// mark-to-market value series and an invested-capital series.
//
// Invested capital is a step function: each holding adds buyPrice*quantity
// from its buy date onward. Market value adds the forward-filled daily
// close times quantity over the same dates. Both are pure functions of the
// holdings snapshot and the price history, so requesting the same inputs
// twice yields identical output.
type ValuationEngine struct {
	bars BarSource
	log  zerolog.Logger
	now  func() time.Time
}

// NewValuationEngine creates a valuation engine
func NewValuationEngine(bars BarSource, log zerolog.Logger) *ValuationEngine {
	return &ValuationEngine{
		bars: bars,
		log:  log.With().Str("service", "valuation").Logger(),
		now:  time.Now,
	}
}

// History builds the valuation series for a holdings set over a display
// window. An empty holdings set yields empty arrays, not an error. A ticker
// whose price history cannot be fetched contributes zero market value but
// still counts toward invested capital.
func (e *ValuationEngine) History(holdings []domain.Holding, window domain.Window) (domain.ValuationSeries, error) {
	empty := domain.ValuationSeries{
		Dates:          []string{},
		PortfolioValue: []float64{},
		InvestedValue:  []float64{},
	}

	if len(holdings) == 0 {
		return empty, nil
	}

	earliest := holdings[0].BuyDate
	for _, h := range holdings[1:] {
		if h.BuyDate.Before(earliest) {
			earliest = h.BuyDate
		}
	}
	earliest = midnight(earliest)

	today := midnight(e.now())
	if earliest.After(today) {
		return empty, nil
	}

	// Continuous daily calendar; non-trading days get forward-filled prices
	var calendar []time.Time
	for d := earliest; !d.After(today); d = d.AddDate(0, 0, 1) {
		calendar = append(calendar, d)
	}

	prices := e.fetchFilledPrices(holdings, earliest, calendar)

	marketValues := make([]float64, len(calendar))
	investedValues := make([]float64, len(calendar))

	for _, h := range holdings {
		buyDate := midnight(h.BuyDate)
		series := prices[h.Ticker]
		for i, d := range calendar {
			if d.Before(buyDate) {
				continue
			}
			investedValues[i] += h.BuyPrice * h.Quantity
			if series != nil {
				marketValues[i] += series[i] * h.Quantity
			}
		}
	}

	// Truncate to the display window
	startIdx := 0
	if start := windowStart(window, today, earliest); start.After(earliest) {
		for i, d := range calendar {
			if !d.Before(start) {
				startIdx = i
				break
			}
		}
	}

	out := domain.ValuationSeries{
		Dates:          make([]string, 0, len(calendar)-startIdx),
		PortfolioValue: make([]float64, 0, len(calendar)-startIdx),
		InvestedValue:  make([]float64, 0, len(calendar)-startIdx),
	}
	for i := startIdx; i < len(calendar); i++ {
		out.Dates = append(out.Dates, calendar[i].Format(dateLayout))
		out.PortfolioValue = append(out.PortfolioValue, round2(marketValues[i]))
		out.InvestedValue = append(out.InvestedValue, round2(investedValues[i]))
	}

	return out, nil
}

// fetchFilledPrices fetches each distinct ticker's bars once and
// forward-fills the closes onto the calendar. Days before the first bar
// are zero.
func (e *ValuationEngine) fetchFilledPrices(holdings []domain.Holding, since time.Time, calendar []time.Time) map[string][]float64 {
	prices := make(map[string][]float64)

	for _, h := range holdings {
		if _, done := prices[h.Ticker]; done {
			continue
		}

		bars, err := e.bars.BarsSince(h.Ticker, since)
		if err != nil || len(bars) == 0 {
			e.log.Warn().Err(err).Str("ticker", h.Ticker).Msg("No price history, valuing at zero")
			prices[h.Ticker] = nil
			continue
		}

		byDate := make(map[time.Time]float64, len(bars))
		for _, b := range bars {
			byDate[midnight(b.Date)] = b.Close
		}

		filled := make([]float64, len(calendar))
		last := 0.0
		for i, d := range calendar {
			if close, ok := byDate[d]; ok {
				last = close
			}
			filled[i] = last
		}
		prices[h.Ticker] = filled
	}

	return prices
}

// windowStart computes the first date of a display window. "all" starts at
// the earliest buy date.
func windowStart(window domain.Window, today, earliest time.Time) time.Time {
	switch window {
	case domain.Window1Month:
		return today.AddDate(0, 0, -30)
	case domain.Window3Months:
		return today.AddDate(0, 0, -90)
	case domain.Window6Months:
		return today.AddDate(0, 0, -180)
	case domain.Window1Year:
		return today.AddDate(0, 0, -365)
	case domain.WindowYTD:
		return time.Date(today.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return earliest
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
