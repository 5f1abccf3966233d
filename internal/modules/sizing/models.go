package sizing

import (
	"encoding/json"
	"math"
)

// BayesianRiskParams are the caller-supplied hyperparameters of the conjugate
// normal update. Zero-valued fields are filled with defaults at the call
// boundary; the engine never mutates the caller's copy.
type BayesianRiskParams struct {
	PriorMean           float64 `json:"prior_mean"`           // Expected daily return prior
	PriorVariance       float64 `json:"prior_variance"`       // Uncertainty of the prior
	ObservationVariance float64 `json:"observation_variance"` // Per-observation noise
	ConfidenceLevel     float64 `json:"confidence_level"`     // One of 0.90, 0.95, 0.99
	UpdateFrequency     int     `json:"update_frequency"`     // Observations between posterior refreshes
}

// FundamentalData optionally biases the prior mean. All fields are optional;
// absent factors simply do not participate in the score.
type FundamentalData struct {
	PERatio     *float64 `json:"pe_ratio"`
	PBRatio     *float64 `json:"pb_ratio"`
	ROE         *float64 `json:"roe"`          // Percent
	GrossMargin *float64 `json:"gross_margin"` // Percent
}

// ConfidenceInterval brackets the posterior mean.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// BayesianPositionMetrics is the position-sizing record.
// Invariant: KellyFraction ∈ [0, 0.25].
type BayesianPositionMetrics struct {
	OptimalSize        float64            `json:"optimal_size"`
	KellyFraction      float64            `json:"kelly_fraction"`
	BayesianAlpha      float64            `json:"bayesian_alpha"` // Annualized posterior expected return
	PosteriorMean      float64            `json:"posterior_mean"`
	PosteriorVariance  float64            `json:"posterior_variance"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	RiskAdjustedSize   float64            `json:"risk_adjusted_size"`
	MaxDrawdownLimit   float64            `json:"max_drawdown_limit"`
}

// StopLossRecommendation carries the four independent stop candidates and the
// recommended (maximum, i.e. tightest-to-price) one.
type StopLossRecommendation struct {
	ATRInitialStop float64 `json:"atr_initial_stop"` // entry − 2×ATR
	TrailingStop   float64 `json:"trailing_stop"`    // current − 1.5×ATR
	VolatilityStop float64 `json:"volatility_stop"`  // current × (1 − 2×dailyVol)
	BayesianStop   float64 `json:"bayesian_stop"`    // current × (1 − 2×√posteriorVar)
	Recommended    float64 `json:"recommended"`
}

// RiskLevel classifies an open position by posterior uncertainty.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// OpenPosition is a currently held position as supplied by the caller.
type OpenPosition struct {
	Symbol  string    `json:"symbol"`
	Size    float64   `json:"size"` // Current position value
	Returns []float64 `json:"returns"`
}

// PositionAssessment is the monitor's verdict for one open position.
type PositionAssessment struct {
	Symbol           string    `json:"symbol"`
	Level            RiskLevel `json:"level"`
	UncertaintyRatio float64   `json:"uncertainty_ratio"` // posteriorStd / posteriorMean
	ActualSize       float64   `json:"actual_size"`
	RecommendedSize  float64   `json:"recommended_size"`
	Oversized        bool      `json:"oversized"` // Actual size exceeds 1.2× recommendation
}

// MarshalJSON encodes an infinite uncertainty ratio (zero posterior mean) as
// null: JSON has no representation for +Inf.
func (p PositionAssessment) MarshalJSON() ([]byte, error) {
	type alias PositionAssessment
	aux := struct {
		alias
		UncertaintyRatio *float64 `json:"uncertainty_ratio"`
	}{alias: alias(p)}
	if !math.IsInf(p.UncertaintyRatio, 0) {
		aux.UncertaintyRatio = &p.UncertaintyRatio
	}
	return json.Marshal(aux)
}
