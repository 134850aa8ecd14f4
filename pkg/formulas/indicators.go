package formulas

import (
	"github.com/markcheno/go-talib"
)

// RSI calculates the Relative Strength Index over the given lookback.
//
// RSI Formula:
//   RSI = 100 - (100 / (1 + RS))
//   where RS = Average Gain / Average Loss over N periods
//
// Returns the latest RSI value (0-100) or nil if insufficient data.
func RSI(closes []float64, length int) *float64 {
	if len(closes) < length+1 {
		return nil
	}

	rsi := talib.Rsi(closes, length)
	if len(rsi) > 0 && !isNaN(rsi[len(rsi)-1]) {
		result := rsi[len(rsi)-1]
		return &result
	}

	return nil
}

// SMA calculates the simple moving average over the last `period` values.
// Returns nil if there are fewer than `period` values.
func SMA(values []float64, period int) *float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	sma := talib.Sma(values, period)
	if len(sma) > 0 && !isNaN(sma[len(sma)-1]) {
		result := sma[len(sma)-1]
		return &result
	}

	return nil
}

// EMA calculates the exponential moving average over the last `period`
// values. Returns nil if there are fewer than `period` values.
func EMA(values []float64, period int) *float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	ema := talib.Ema(values, period)
	if len(ema) > 0 && !isNaN(ema[len(ema)-1]) {
		result := ema[len(ema)-1]
		return &result
	}

	return nil
}

// MACDHistogram calculates the latest MACD histogram value using the
// standard (12, 26, 9) parameterization. Sign indicates momentum direction.
// Returns nil if insufficient data.
func MACDHistogram(closes []float64) *float64 {
	// MACD needs slow period + signal period of data to stabilize
	if len(closes) < 35 {
		return nil
	}

	_, _, hist := talib.Macd(closes, 12, 26, 9)
	if len(hist) > 0 && !isNaN(hist[len(hist)-1]) {
		result := hist[len(hist)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
