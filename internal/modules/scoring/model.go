package scoring

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/pkg/formulas"
)

// Weights of the composite blend
const (
	weightFundamental = 0.40
	weightMomentum    = 0.30
	weightValuation   = 0.30

	// fund-type assets skip the growth/quality sub-scores
	etfFundamentalBase = 70.0

	// neutralScore is returned whenever an input is missing or a
	// computation cannot complete. The model never propagates errors.
	neutralScore = 50.0
)

// Result is a composite score with its sub-scores
type Result struct {
	Score      float64
	Components domain.ScoreComponents
}

// Model computes the 0-100 composite opportunity score shared by the
// screener and the rebalancer: momentum 30%, fundamentals 40%,
// valuation upside 30%. Each sub-score is clipped to [0,100] before
// blending.
type Model struct {
	log zerolog.Logger
}

// NewModel creates a scoring model
func NewModel(log zerolog.Logger) *Model {
	return &Model{log: log.With().Str("service", "scoring").Logger()}
}

// Score computes the composite score for one ticker from its bar series
// and snapshot. Missing data degrades to the neutral 50.0, never an error.
func (m *Model) Score(bars domain.BarSeries, snap *domain.Snapshot) Result {
	if len(bars) == 0 || snap == nil {
		return neutral()
	}

	closes := bars.Closes()

	momentum, ok := momentumScore(closes)
	if !ok {
		return neutral()
	}

	fundamental := fundamentalScore(snap)

	valuation, ok := valuationScore(bars.LatestClose(), snap)
	if !ok {
		return neutral()
	}

	return Result{
		Score: composite(momentum, fundamental, valuation),
		Components: domain.ScoreComponents{
			Momentum:    round2(momentum),
			Fundamental: round2(fundamental),
			Valuation:   round2(valuation),
		},
	}
}

// momentumScore blends RSI positioning (70%) with MACD direction (30%).
// RSI maps 50->0 and 70->100; the MACD contribution is binary.
func momentumScore(closes []float64) (float64, bool) {
	rsi := formulas.RSI(closes, 14)
	hist := formulas.MACDHistogram(closes)
	if rsi == nil || hist == nil {
		return 0, false
	}

	rsiScore := clip((*rsi - 50) * 5)
	macdScore := 0.0
	if *hist > 0 {
		macdScore = 100
	}

	return rsiScore*0.7 + macdScore*0.3, true
}

// fundamentalScore maps revenue growth and ROE to [0,100]. 20% revenue
// growth or 25% ROE saturate their halves. Fund-type assets get a fixed base.
func fundamentalScore(snap *domain.Snapshot) float64 {
	if snap.IsETF() {
		return etfFundamentalBase
	}

	revGrowth := 0.0
	if snap.RevenueGrowth != nil {
		revGrowth = *snap.RevenueGrowth
	}
	roe := 0.0
	if snap.ReturnOnEquity != nil {
		roe = *snap.ReturnOnEquity
	}

	revScore := clip(revGrowth * 500)
	roeScore := clip(roe * 400)

	return revScore*0.5 + roeScore*0.5
}

// valuationScore maps analyst target upside to [0,100] (20% upside
// saturates). Without a target it falls back to a PEG heuristic.
func valuationScore(price float64, snap *domain.Snapshot) (float64, bool) {
	if price <= 0 {
		return 0, false
	}

	upside := 0.0
	if snap.TargetMeanPrice != nil && *snap.TargetMeanPrice > 0 {
		upside = (*snap.TargetMeanPrice - price) / price
	} else {
		peg := 0.0
		if snap.PEGRatio != nil {
			peg = *snap.PEGRatio
		}
		switch {
		case peg > 0 && peg < 1.0:
			upside = 0.20
		case peg != 0 && peg < 1.5:
			upside = 0.10
		default:
			upside = 0.05
		}
	}

	return clip(upside * 500), true
}

// composite blends the three sub-scores with the model weights,
// rounded to 2 decimals
func composite(momentum, fundamental, valuation float64) float64 {
	return round2(fundamental*weightFundamental + momentum*weightMomentum + valuation*weightValuation)
}

func neutral() Result {
	return Result{Score: neutralScore}
}

// clip bounds a value to [0,100]
func clip(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

// round2 rounds to 2 decimal places
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
