package risk

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/pkg/formulas"
)

// DefaultRiskFreeRate is the annualized risk-free rate used when the caller
// does not supply one.
const DefaultRiskFreeRate = 0.03

// Calculator computes the full risk-metrics record from return series.
// It holds no data of its own: every method is a pure function of its inputs,
// so a single Calculator is safe for concurrent use.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new risk metrics calculator
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("service", "risk").Logger(),
	}
}

// CalculateRiskMetrics builds the complete RiskMetrics record for a return
// series, optionally against a benchmark series of equal length.
//
// An empty or fully non-finite series produces a zero-valued record, never an
// error: data-quality problems degrade, they do not fail.
func (c *Calculator) CalculateRiskMetrics(returns, benchmarkReturns []float64, riskFreeRate float64) RiskMetrics {
	clean := formulas.Sanitize(returns)
	if len(clean) == 0 {
		c.log.Warn().Msg("Risk metrics requested for empty or fully invalid series, returning zero record")
		return RiskMetrics{}
	}

	annReturn := formulas.AnnualizedReturn(clean)
	volatility := formulas.AnnualizedVolatility(clean)
	downside := c.downsideVolatility(clean)

	beta := c.Beta(returns, benchmarkReturns)
	annBenchmark := formulas.AnnualizedReturn(benchmarkReturns)
	alpha := annReturn - (riskFreeRate + beta*(annBenchmark-riskFreeRate))

	dd := formulas.CalculateDrawdown(clean)

	m := RiskMetrics{
		Volatility:           volatility,
		DownsideVolatility:   downside,
		VaR95:                c.HistoricalVaR(clean, 0.95),
		VaR99:                c.HistoricalVaR(clean, 0.99),
		CVaR95:               c.ConditionalVaR(clean, 0.95),
		CVaR99:               c.ConditionalVaR(clean, 0.99),
		Beta:                 beta,
		Alpha:                alpha,
		BenchmarkCorrelation: formulas.Correlation(returns, benchmarkReturns),
		MaxDrawdown:          dd.MaxDrawdown,
		CurrentDrawdown:      dd.CurrentDrawdown,
		DrawdownDuration:     dd.Duration,
	}

	// Sharpe: total-volatility denominator
	if volatility > 0 {
		m.SharpeRatio = (annReturn - riskFreeRate) / volatility
	}

	// Sortino: downside-only denominator. No observed downside is an
	// intentional +Inf signal, not a division-by-zero bug.
	if downside > 0 {
		m.SortinoRatio = (annReturn - riskFreeRate) / downside
	} else {
		m.SortinoRatio = math.Inf(1)
	}

	// Calmar: max-drawdown denominator
	if dd.MaxDrawdown > 0 {
		m.CalmarRatio = annReturn / (dd.MaxDrawdown / 100)
	}

	m.InformationRatio = c.informationRatio(returns, benchmarkReturns)

	// Treynor: beta denominator
	if beta != 0 {
		m.TreynorRatio = (annReturn - riskFreeRate) / beta
	}

	return m
}

// HistoricalVaR computes Value-at-Risk by historical simulation: sort the
// returns ascending and take the value at index floor((1-confidence) × n).
// Reported as a positive percent-loss magnitude.
func (c *Calculator) HistoricalVaR(returns []float64, confidence float64) float64 {
	clean := formulas.Sanitize(returns)
	if len(clean) == 0 {
		return 0
	}

	sorted := make([]float64, len(clean))
	copy(sorted, clean)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return math.Abs(sorted[idx]) * 100
}

// ConditionalVaR computes expected shortfall: the average of all returns at or
// below the signed VaR threshold, as a positive percent-loss magnitude. An
// empty tail yields 0.
func (c *Calculator) ConditionalVaR(returns []float64, confidence float64) float64 {
	clean := formulas.Sanitize(returns)
	if len(clean) == 0 {
		return 0
	}

	sorted := make([]float64, len(clean))
	copy(sorted, clean)
	sort.Float64s(sorted)

	idx := int(math.Floor((1 - confidence) * float64(len(sorted))))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	threshold := sorted[idx]

	var sum float64
	count := 0
	for _, r := range clean {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return 0
	}

	return math.Abs(sum/float64(count)) * 100
}

// Beta measures sensitivity to a benchmark: covariance(asset, benchmark) /
// variance(benchmark). A missing benchmark or one with zero variance degrades
// to the neutral 0, it is not an error.
func (c *Calculator) Beta(assetReturns, benchmarkReturns []float64) float64 {
	if len(benchmarkReturns) == 0 || len(assetReturns) != len(benchmarkReturns) {
		return 0
	}

	benchVariance := formulas.Variance(benchmarkReturns)
	if benchVariance == 0 {
		return 0
	}

	return formulas.Covariance(assetReturns, benchmarkReturns) / benchVariance
}

// downsideVolatility is the annualized population std dev of only the
// negative returns. A series with no negative returns has zero downside.
func (c *Calculator) downsideVolatility(returns []float64) float64 {
	negatives := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) == 0 {
		return 0
	}
	return formulas.AnnualizedVolatility(negatives)
}

// informationRatio annualizes the mean per-period excess over the benchmark
// and divides by the annualized std dev of that excess series (tracking
// error). Length mismatch or zero tracking error degrades to 0.
func (c *Calculator) informationRatio(assetReturns, benchmarkReturns []float64) float64 {
	if len(benchmarkReturns) == 0 || len(assetReturns) != len(benchmarkReturns) {
		return 0
	}

	xs, ys := formulas.SanitizePairs(assetReturns, benchmarkReturns)
	if len(xs) == 0 {
		return 0
	}

	excess := make([]float64, len(xs))
	for i := range xs {
		excess[i] = xs[i] - ys[i]
	}

	trackingError := formulas.AnnualizedVolatility(excess)
	if trackingError == 0 {
		return 0
	}

	return formulas.AnnualizedReturn(excess) / trackingError
}
