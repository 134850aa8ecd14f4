package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}))

	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.InDelta(t, 1.5811, StdDev([]float64{1, 2, 3, 4, 5}), 1e-4)
}

func TestReturns(t *testing.T) {
	assert.Empty(t, Returns([]float64{100}))

	rets := Returns([]float64{100, 110, 99})
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0], 1e-9)
	assert.InDelta(t, -0.10, rets[1], 1e-9)
}

func TestReturns_SkipsZeroPrice(t *testing.T) {
	rets := Returns([]float64{0, 100})
	require.Len(t, rets, 1)
	assert.Equal(t, 0.0, rets[0])
}

func TestMonthlyVolatility(t *testing.T) {
	// 31 closes give exactly 30 returns
	closes := make([]float64, 31)
	for i := range closes {
		closes[i] = 100 + float64(i%2) // alternating 100, 101
	}

	vol := MonthlyVolatility(closes, 30)
	require.NotNil(t, vol)
	assert.Greater(t, *vol, 0.0)

	// The scaling factor is sqrt(21)*100 over the raw return stddev
	rets := Returns(closes)
	want := StdDev(rets[len(rets)-30:]) * math.Sqrt(21) * 100
	assert.InDelta(t, want, *vol, 1e-9)
}

func TestMonthlyVolatility_InsufficientData(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 100
	}
	assert.Nil(t, MonthlyVolatility(closes, 30))
}

func TestTailMean(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6}

	m := TailMean(data, 3)
	require.NotNil(t, m)
	assert.Equal(t, 5.0, *m)

	assert.Nil(t, TailMean(data, 7))
	assert.Nil(t, TailMean(data, 0))
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	got := SMA(values, 5)
	require.NotNil(t, got)
	assert.Equal(t, 3.0, *got)

	last3 := SMA(values, 3)
	require.NotNil(t, last3)
	assert.Equal(t, 4.0, *last3)

	assert.Nil(t, SMA(values, 6))
	assert.Nil(t, SMA(values, 0))
}

func TestEMA(t *testing.T) {
	values := []float64{10, 10, 10, 10, 10}

	got := EMA(values, 3)
	require.NotNil(t, got)
	assert.InDelta(t, 10.0, *got, 1e-9)

	assert.Nil(t, EMA(values, 6))
}

func TestRSI_Bounds(t *testing.T) {
	assert.Nil(t, RSI([]float64{1, 2, 3}, 14))

	// Monotonic rise: no losses, RSI saturates at 100
	rising := make([]float64, 40)
	for i := range rising {
		rising[i] = 100 + float64(i)
	}
	rsi := RSI(rising, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 100, *rsi, 1e-6)

	// Monotonic fall pins it at 0
	falling := make([]float64, 40)
	for i := range falling {
		falling[i] = 100 - float64(i)
	}
	rsi = RSI(falling, 14)
	require.NotNil(t, rsi)
	assert.InDelta(t, 0, *rsi, 1e-6)
}

func TestMACDHistogram(t *testing.T) {
	assert.Nil(t, MACDHistogram(make([]float64, 30)))

	// Accelerating rise keeps the fast average above the slow one
	rising := make([]float64, 60)
	for i := range rising {
		rising[i] = 100 * math.Pow(1.01, float64(i))
	}
	hist := MACDHistogram(rising)
	require.NotNil(t, hist)
	assert.Greater(t, *hist, 0.0)
}
