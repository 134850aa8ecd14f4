package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/areddy/alphaseeker/internal/domain"
	"github.com/areddy/alphaseeker/pkg/logger"
)

func fp(v float64) *float64 { return &v }

func TestComposite_DeterministicBlend(t *testing.T) {
	// RSI=65 -> rsiScore 75; MACD hist positive -> 100
	momentum := 75*0.7 + 100*0.3 // 82.5

	snap := &domain.Snapshot{
		Ticker:         "TEST",
		QuoteType:      "EQUITY",
		RevenueGrowth:  fp(0.20),
		ReturnOnEquity: fp(0.20),
	}
	fundamental := fundamentalScore(snap)
	assert.Equal(t, 90.0, fundamental) // 0.5*100 + 0.5*80

	// 10% analyst upside maps to 50
	valuation, ok := valuationScore(100, &domain.Snapshot{TargetMeanPrice: fp(110)})
	assert.True(t, ok)
	assert.Equal(t, 50.0, valuation)

	assert.Equal(t, 75.75, composite(momentum, fundamental, valuation))
}

func TestFundamentalScore(t *testing.T) {
	tests := []struct {
		name     string
		snap     *domain.Snapshot
		expected float64
	}{
		{
			name:     "ETF gets fixed base",
			snap:     &domain.Snapshot{QuoteType: "ETF"},
			expected: 70,
		},
		{
			name:     "missing fields default to zero",
			snap:     &domain.Snapshot{QuoteType: "EQUITY"},
			expected: 0,
		},
		{
			name: "sub-scores clipped before blending",
			snap: &domain.Snapshot{
				QuoteType:      "EQUITY",
				RevenueGrowth:  fp(5.0), // would be 2500 unclipped
				ReturnOnEquity: fp(3.0), // would be 1200 unclipped
			},
			expected: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, fundamentalScore(tt.snap))
		})
	}
}

func TestValuationScore_PEGFallback(t *testing.T) {
	tests := []struct {
		name     string
		peg      *float64
		expected float64
	}{
		{"undervalued PEG assumes 20% upside", fp(0.8), 100},
		{"fair PEG assumes 10% upside", fp(1.2), 50},
		{"expensive PEG assumes 5% upside", fp(2.5), 25},
		{"missing PEG assumes 5% upside", nil, 25},
		{"negative PEG assumes 10% upside", fp(-0.5), 50},
		{"zero PEG assumes 5% upside", fp(0), 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, ok := valuationScore(100, &domain.Snapshot{PEGRatio: tt.peg})
			assert.True(t, ok)
			assert.Equal(t, tt.expected, score)
		})
	}
}

func TestScore_NeutralFallbacks(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	model := NewModel(log)

	t.Run("empty series", func(t *testing.T) {
		result := model.Score(domain.BarSeries{}, &domain.Snapshot{})
		assert.Equal(t, 50.0, result.Score)
	})

	t.Run("nil snapshot", func(t *testing.T) {
		bars := domain.BarSeries{{Close: 100}}
		result := model.Score(bars, nil)
		assert.Equal(t, 50.0, result.Score)
	})

	t.Run("series too short for indicators", func(t *testing.T) {
		bars := make(domain.BarSeries, 10)
		for i := range bars {
			bars[i].Close = 100
		}
		result := model.Score(bars, &domain.Snapshot{QuoteType: "EQUITY"})
		assert.Equal(t, 50.0, result.Score)
	})
}

func TestScore_BoundedOutput(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	model := NewModel(log)

	// A long rising series with extreme fundamentals must still land in [0,100]
	bars := make(domain.BarSeries, 120)
	price := 50.0
	for i := range bars {
		price *= 1.01
		bars[i].Close = price
		bars[i].Volume = 1_000_000
	}

	snap := &domain.Snapshot{
		QuoteType:       "EQUITY",
		RevenueGrowth:   fp(9.9),
		ReturnOnEquity:  fp(9.9),
		TargetMeanPrice: fp(price * 10),
	}

	result := model.Score(bars, snap)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
	for _, c := range []float64{result.Components.Momentum, result.Components.Fundamental, result.Components.Valuation} {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 100.0)
	}
}
