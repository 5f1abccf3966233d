package sizing

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/pkg/formulas"
)

const (
	// KellyCap bounds the Kelly fraction: never bet more than a quarter-Kelly
	// portfolio share regardless of the estimated edge.
	KellyCap = 0.25

	// RiskBudget limits position size to 2% of portfolio value per unit of
	// daily return std dev.
	RiskBudget = 0.02

	// MaxDrawdownFraction caps the risk-adjusted size at 15% of portfolio value.
	MaxDrawdownFraction = 0.15

	atrPeriod = 14
)

// Default hyperparameters, filled in when the caller leaves a field zero.
const (
	DefaultPriorMean           = 0.0005
	DefaultPriorVariance       = 0.0001
	DefaultObservationVariance = 0.0004
	DefaultConfidenceLevel     = 0.95
	DefaultUpdateFrequency     = 20
)

// Sizer derives Kelly-bounded position sizing from a conjugate-normal
// posterior over the expected per-period return. Stateless: the posterior is
// recomputed from the supplied series on every call.
type Sizer struct {
	log zerolog.Logger
}

// NewSizer creates a new Bayesian position sizer
func NewSizer(log zerolog.Logger) *Sizer {
	return &Sizer{
		log: log.With().Str("service", "sizing").Logger(),
	}
}

// FillDefaults returns a copy of params with zero-valued fields replaced by
// the documented defaults.
func FillDefaults(params BayesianRiskParams) BayesianRiskParams {
	if params.PriorMean == 0 {
		params.PriorMean = DefaultPriorMean
	}
	if params.PriorVariance <= 0 {
		params.PriorVariance = DefaultPriorVariance
	}
	if params.ObservationVariance <= 0 {
		params.ObservationVariance = DefaultObservationVariance
	}
	if params.ConfidenceLevel <= 0 {
		params.ConfidenceLevel = DefaultConfidenceLevel
	}
	if params.UpdateFrequency <= 0 {
		params.UpdateFrequency = DefaultUpdateFrequency
	}
	return params
}

// CalculatePositionMetrics runs the conjugate-normal update over the observed
// returns and derives the Kelly-bounded sizing record.
//
//	precisionPosterior = 1/priorVar + n/obsVar
//	posteriorMean      = (priorMean/priorVar + n×observedMean/obsVar) / precisionPosterior
//
// With fixed priors the posterior variance shrinks monotonically as the
// observation count grows.
func (s *Sizer) CalculatePositionMetrics(returns []float64, portfolioValue float64, params BayesianRiskParams, fundamentals *FundamentalData) BayesianPositionMetrics {
	params = FillDefaults(params)

	clean := formulas.Sanitize(returns)
	observedMean := formulas.Mean(clean)
	observedVariance := formulas.Variance(clean)
	n := float64(len(clean))

	adjustedPrior := params.PriorMean
	if fundamentals != nil {
		if score, ok := fundamentalScore(fundamentals); ok {
			// Blend the annual fundamental score, converted to a daily rate,
			// into the prior: 70% original prior, 30% fundamentals.
			adjustedPrior = 0.7*params.PriorMean + 0.3*(score/formulas.TradingPeriodsPerYear)
		}
	}

	precisionPrior := 1 / params.PriorVariance
	precisionObservation := n / params.ObservationVariance
	precisionPosterior := precisionPrior + precisionObservation

	posteriorMean := (precisionPrior*adjustedPrior + precisionObservation*observedMean) / precisionPosterior
	posteriorVariance := 1 / precisionPosterior

	z := zScore(params.ConfidenceLevel)
	interval := ConfidenceInterval{
		Lower: posteriorMean - z*math.Sqrt(posteriorVariance),
		Upper: posteriorMean + z*math.Sqrt(posteriorVariance),
	}

	kelly := 0.0
	if observedVariance > 0 {
		kelly = posteriorMean / observedVariance
		if kelly < 0 {
			kelly = 0
		}
		if kelly > KellyCap {
			kelly = KellyCap
		}
	}

	optimalSize := 0.0
	if observedVariance > 0 {
		budgetSize := (RiskBudget * portfolioValue) / math.Sqrt(observedVariance)
		optimalSize = math.Min(kelly*portfolioValue, budgetSize)
	}

	maxDrawdownLimit := MaxDrawdownFraction * portfolioValue
	riskAdjusted := optimalSize * math.Max(0.5, params.ConfidenceLevel)
	if riskAdjusted > maxDrawdownLimit {
		riskAdjusted = maxDrawdownLimit
	}

	return BayesianPositionMetrics{
		OptimalSize:        optimalSize,
		KellyFraction:      kelly,
		BayesianAlpha:      posteriorMean * formulas.TradingPeriodsPerYear,
		PosteriorMean:      posteriorMean,
		PosteriorVariance:  posteriorVariance,
		ConfidenceInterval: interval,
		RiskAdjustedSize:   riskAdjusted,
		MaxDrawdownLimit:   maxDrawdownLimit,
	}
}

// DynamicStopLoss computes four independent stop candidates and recommends
// the maximum: the most conservative, tightest-to-price stop wins.
func (s *Sizer) DynamicStopLoss(highs, lows, closes []float64, entryPrice, currentPrice, posteriorVariance float64) StopLossRecommendation {
	atr := 0.0
	if v := formulas.CalculateATR(highs, lows, closes, atrPeriod); v != nil {
		atr = *v
	} else {
		s.log.Debug().Msg("Insufficient OHLC data for ATR, ATR-based stops degrade to raw prices")
	}

	dailyVol := formulas.StdDev(formulas.CalculateReturns(closes))

	rec := StopLossRecommendation{
		ATRInitialStop: entryPrice - 2*atr,
		TrailingStop:   currentPrice - 1.5*atr,
		VolatilityStop: currentPrice * (1 - 2*dailyVol),
		BayesianStop:   currentPrice * (1 - 2*math.Sqrt(math.Max(0, posteriorVariance))),
	}
	rec.Recommended = math.Max(math.Max(rec.ATRInitialStop, rec.TrailingStop), math.Max(rec.VolatilityStop, rec.BayesianStop))

	return rec
}

// MonitorPositions classifies each open position by posterior uncertainty.
// The ratio posteriorStd/posteriorMean maps to LOW/MEDIUM/HIGH/CRITICAL; a
// position sized above 1.2× the risk-adjusted recommendation is raised to
// HIGH regardless of its uncertainty class.
func (s *Sizer) MonitorPositions(positions []OpenPosition, portfolioValue float64, params BayesianRiskParams) []PositionAssessment {
	assessments := make([]PositionAssessment, 0, len(positions))

	for _, pos := range positions {
		metrics := s.CalculatePositionMetrics(pos.Returns, portfolioValue, params, nil)

		ratio := math.Inf(1)
		if metrics.PosteriorMean != 0 {
			ratio = math.Sqrt(metrics.PosteriorVariance) / math.Abs(metrics.PosteriorMean)
		}

		level := RiskLow
		switch {
		case ratio > 2:
			level = RiskCritical
		case ratio > 1.5:
			level = RiskHigh
		case ratio > 1:
			level = RiskMedium
		}

		oversized := pos.Size > 1.2*metrics.RiskAdjustedSize
		if oversized && (level == RiskLow || level == RiskMedium) {
			level = RiskHigh
		}

		assessments = append(assessments, PositionAssessment{
			Symbol:           pos.Symbol,
			Level:            level,
			UncertaintyRatio: ratio,
			ActualSize:       pos.Size,
			RecommendedSize:  metrics.RiskAdjustedSize,
			Oversized:        oversized,
		})
	}

	return assessments
}

// zScore is a fixed lookup for the three supported confidence levels.
// Any other value falls back to 1.96; this approximation is deliberate,
// not a stand-in for a full inverse normal CDF.
func zScore(confidenceLevel float64) float64 {
	switch confidenceLevel {
	case 0.90:
		return 1.28
	case 0.95:
		return 1.645
	case 0.99:
		return 2.33
	default:
		return 1.96
	}
}

// fundamentalScore converts valuation/profitability ratios into a bounded
// annualized return bias. Each available factor contributes a fixed bounded
// score; the result is the average across available factors. Returns ok=false
// when no factor is supplied.
func fundamentalScore(f *FundamentalData) (float64, bool) {
	var sum float64
	count := 0

	if f.PERatio != nil {
		switch {
		case *f.PERatio < 15:
			sum += 0.2
		case *f.PERatio > 50:
			sum -= 0.1
		}
		count++
	}
	if f.PBRatio != nil {
		switch {
		case *f.PBRatio < 1.5:
			sum += 0.15
		case *f.PBRatio > 8:
			sum -= 0.1
		}
		count++
	}
	if f.ROE != nil {
		switch {
		case *f.ROE > 20:
			sum += 0.2
		case *f.ROE < 5:
			sum -= 0.1
		}
		count++
	}
	if f.GrossMargin != nil {
		switch {
		case *f.GrossMargin > 40:
			sum += 0.15
		case *f.GrossMargin < 10:
			sum -= 0.05
		}
		count++
	}

	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
