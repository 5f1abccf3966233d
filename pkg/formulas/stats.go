package formulas

import (
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// TradingPeriodsPerYear is the annualization constant for daily series.
const TradingPeriodsPerYear = 252

// Sanitize removes values that are not finite numbers (NaN, +Inf, -Inf).
// An empty input is valid and yields an empty result.
func Sanitize(series []float64) []float64 {
	clean := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) < len(series) {
		log.Debug().
			Int("dropped", len(series)-len(clean)).
			Int("kept", len(clean)).
			Msg("Dropped non-finite values from return series")
	}
	return clean
}

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	data = Sanitize(data)
	if len(data) == 0 {
		log.Debug().Msg("Mean of empty series, returning 0")
		return 0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the population variance (divide by n) of a slice of float64 values
func Variance(data []float64) float64 {
	data = Sanitize(data)
	if len(data) == 0 {
		log.Debug().Msg("Variance of empty series, returning 0")
		return 0
	}
	return stat.PopVariance(data, nil)
}

// StdDev calculates the population standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	data = Sanitize(data)
	if len(data) == 0 {
		log.Debug().Msg("StdDev of empty series, returning 0")
		return 0
	}
	return stat.PopStdDev(data, nil)
}

// SanitizePairs drops index positions where either series holds a non-finite
// value, keeping the two series aligned.
func SanitizePairs(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsInf(x[i], 0) || math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// Covariance calculates the population covariance between two equal-length datasets.
// Mismatched or empty inputs yield 0.
func Covariance(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	xs, ys := SanitizePairs(x, y)
	if len(xs) == 0 {
		log.Debug().Msg("Covariance of fully non-finite series, returning 0")
		return 0
	}
	meanX := stat.Mean(xs, nil)
	meanY := stat.Mean(ys, nil)

	var sum float64
	for i := range xs {
		sum += (xs[i] - meanX) * (ys[i] - meanY)
	}
	return sum / float64(len(xs))
}

// Correlation calculates the Pearson correlation coefficient between two datasets.
// Returns 0 when either series has zero standard deviation.
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(y) == 0 || len(x) != len(y) {
		return 0
	}
	xs, ys := SanitizePairs(x, y)
	stdX := StdDev(xs)
	stdY := StdDev(ys)
	if stdX == 0 || stdY == 0 {
		return 0
	}
	return Covariance(xs, ys) / (stdX * stdY)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingPeriodsPerYear)
}

// AnnualizedReturn scales the mean daily return by 252 trading days
func AnnualizedReturn(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return Mean(dailyReturns) * TradingPeriodsPerYear
}

// CalculateReturns converts prices to percentage returns
// Returns[i] = (Price[i] - Price[i-1]) / Price[i-1]
func CalculateReturns(prices []float64) []float64 {
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
