package formulas

// DrawdownMetrics represents drawdown analysis over a compounded return curve
type DrawdownMetrics struct {
	MaxDrawdown     float64 `json:"max_drawdown"`     // Maximum drawdown (percent, e.g. 25 = 25% loss from peak)
	CurrentDrawdown float64 `json:"current_drawdown"` // Drawdown at the end of the series (percent)
	Duration        int     `json:"duration"`         // Periods between the peak that produced the max drawdown and its trough
}

// CalculateDrawdown walks the compounded cumulative-return curve of a daily
// return series, tracking the running peak.
//
// Drawdown Formula:
//
//	Value[t]    = Product(1 + r[i]) for i <= t
//	Drawdown[t] = (Peak - Value[t]) / Peak
//
// Returns max drawdown, current drawdown (both as percentages) and the
// duration of the maximum drawdown in periods. An empty series yields zeros.
func CalculateDrawdown(returns []float64) DrawdownMetrics {
	returns = Sanitize(returns)
	if len(returns) == 0 {
		return DrawdownMetrics{}
	}

	value := 1.0
	peak := 1.0
	peakIndex := 0

	var maxDrawdown float64
	maxDuration := 0
	current := 0.0

	for i, r := range returns {
		value *= 1 + r

		if value > peak {
			peak = value
			peakIndex = i
		}

		if peak > 0 {
			current = (peak - value) / peak
			if current > maxDrawdown {
				maxDrawdown = current
				maxDuration = i - peakIndex
			}
		}
	}

	return DrawdownMetrics{
		MaxDrawdown:     maxDrawdown * 100,
		CurrentDrawdown: current * 100,
		Duration:        maxDuration,
	}
}
