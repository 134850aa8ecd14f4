package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Returns converts prices to percentage returns.
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// MonthlyVolatility calculates monthly-scaled volatility as a percentage:
// the standard deviation of the last `window` daily returns scaled by
// sqrt(21 trading days) * 100.
// Returns nil if there are not enough closes to fill the window.
func MonthlyVolatility(closes []float64, window int) *float64 {
	rets := Returns(closes)
	if len(rets) < window {
		return nil
	}

	recent := rets[len(rets)-window:]
	vol := StdDev(recent) * math.Sqrt(21) * 100
	return &vol
}

// TailMean calculates the mean of the last `n` values.
// Returns nil if there are fewer than `n` values.
func TailMean(data []float64, n int) *float64 {
	if n <= 0 || len(data) < n {
		return nil
	}

	m := Mean(data[len(data)-n:])
	return &m
}
