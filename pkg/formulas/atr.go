package formulas

import (
	"github.com/markcheno/go-talib"
)

// CalculateATR calculates the Average True Range
//
// ATR Formula:
//
//	TR  = max(High - Low, |High - PrevClose|, |Low - PrevClose|)
//	ATR = Wilder-smoothed average of TR over N periods
//
// Args:
//
//	highs, lows, closes: OHLC component arrays, equal length
//	length: ATR period (typically 14)
//
// Returns:
//
//	Current ATR value or nil if insufficient data
func CalculateATR(highs, lows, closes []float64, length int) *float64 {
	if len(highs) < length+1 || len(highs) != len(lows) || len(highs) != len(closes) {
		return nil
	}

	atr := talib.Atr(highs, lows, closes, length)

	if len(atr) > 0 && !isNaN(atr[len(atr)-1]) {
		result := atr[len(atr)-1]
		return &result
	}

	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
