package screener

import (
	"github.com/areddy/alphaseeker/internal/config"
	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/pkg/formulas"
)

// TechnicalResult is the diagnostics bundle for a ticker that cleared every
// technical gate
type TechnicalResult struct {
	Price       float64
	RSI         float64
	VolumeShock float64
}

// TechnicalFilter applies the first screening stage: liquidity, volatility
// band, trend, relative strength, volume shock and momentum confirmation.
// Gates run in order and short-circuit on the first failure; a rejected
// ticker is simply excluded, there is no partial score.
type TechnicalFilter struct {
	cfg config.ScreenConfig
}

// NewTechnicalFilter creates a technical filter
func NewTechnicalFilter(cfg config.ScreenConfig) *TechnicalFilter {
	return &TechnicalFilter{cfg: cfg}
}

// Evaluate runs the technical gates for one ticker's bar series.
// Returns the diagnostics bundle and true on pass, nil and false on reject.
func (f *TechnicalFilter) Evaluate(bars domain.BarSeries, region domain.Region) (*TechnicalResult, bool) {
	if len(bars) < f.cfg.MinTradingDays {
		return nil, false
	}

	closes := bars.Closes()
	volumes := bars.Volumes()
	price := bars.LatestClose()

	// Gate 1: liquidity. Average 20-day turnover, USD-normalized.
	avgVol20 := formulas.TailMean(volumes, 20)
	if avgVol20 == nil {
		return nil, false
	}
	turnoverUSD := price * *avgVol20
	if region == domain.RegionIndia {
		turnoverUSD /= f.cfg.USDINRRate
	}
	if turnoverUSD < f.cfg.MinTurnoverUSD {
		return nil, false
	}

	// Gate 2: volatility band. Too quiet and too wild both reject.
	vol := formulas.MonthlyVolatility(closes, 30)
	if vol == nil || *vol < f.cfg.VolatilityMinPct || *vol > f.cfg.VolatilityMaxPct {
		return nil, false
	}

	// Gate 3: trend. Price above both moving averages.
	sma20 := formulas.SMA(closes, 20)
	sma50 := formulas.SMA(closes, 50)
	if sma20 == nil || sma50 == nil || price <= *sma20 || price <= *sma50 {
		return nil, false
	}

	// Gate 4: relative strength band
	rsi := formulas.RSI(closes, 14)
	if rsi == nil || *rsi < f.cfg.RSIMin || *rsi > f.cfg.RSIMax {
		return nil, false
	}

	// Gate 5: volume shock
	currentVol := volumes[len(volumes)-1]
	if *avgVol20 <= 0 || currentVol <= f.cfg.VolumeShockRatio**avgVol20 {
		return nil, false
	}

	// Gate 6: momentum confirmation
	hist := formulas.MACDHistogram(closes)
	if hist == nil || *hist <= 0 {
		return nil, false
	}

	return &TechnicalResult{
		Price:       price,
		RSI:         *rsi,
		VolumeShock: currentVol / *avgVol20,
	}, true
}
