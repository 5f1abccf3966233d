package sizing

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSizer() *Sizer {
	return NewSizer(zerolog.Nop())
}

// alternating builds n returns oscillating around mean with ±spread.
func alternating(n int, mean, spread float64) []float64 {
	returns := make([]float64, n)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = mean + spread
		} else {
			returns[i] = mean - spread
		}
	}
	return returns
}

func TestFillDefaults(t *testing.T) {
	params := FillDefaults(BayesianRiskParams{})

	assert.Equal(t, DefaultPriorMean, params.PriorMean)
	assert.Equal(t, DefaultPriorVariance, params.PriorVariance)
	assert.Equal(t, DefaultObservationVariance, params.ObservationVariance)
	assert.Equal(t, DefaultConfidenceLevel, params.ConfidenceLevel)
	assert.Equal(t, DefaultUpdateFrequency, params.UpdateFrequency)

	// Caller-supplied values survive
	custom := FillDefaults(BayesianRiskParams{PriorMean: 0.001, ConfidenceLevel: 0.99})
	assert.Equal(t, 0.001, custom.PriorMean)
	assert.Equal(t, 0.99, custom.ConfidenceLevel)
}

func TestZScoreLookup(t *testing.T) {
	tests := []struct {
		confidence float64
		want       float64
	}{
		{0.90, 1.28},
		{0.95, 1.645},
		{0.99, 2.33},
		{0.85, 1.96}, // anything else falls back to 1.96
		{0.975, 1.96},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, zScore(tt.confidence), "confidence %v", tt.confidence)
	}
}

func TestKellyFractionBounds(t *testing.T) {
	sizer := testSizer()

	t.Run("strong edge clamps to quarter Kelly", func(t *testing.T) {
		m := sizer.CalculatePositionMetrics(alternating(100, 0.002, 0.001), 100_000, BayesianRiskParams{}, nil)
		assert.Equal(t, KellyCap, m.KellyFraction)
	})

	t.Run("negative edge floors at zero", func(t *testing.T) {
		m := sizer.CalculatePositionMetrics(alternating(100, -0.002, 0.001), 100_000, BayesianRiskParams{}, nil)
		assert.Zero(t, m.KellyFraction)
		assert.Zero(t, m.OptimalSize)
	})

	t.Run("zero variance yields zero Kelly", func(t *testing.T) {
		m := sizer.CalculatePositionMetrics([]float64{0.01, 0.01, 0.01}, 100_000, BayesianRiskParams{}, nil)
		assert.Zero(t, m.KellyFraction)
		assert.Zero(t, m.OptimalSize)
	})
}

func TestPosteriorVarianceShrinksWithObservations(t *testing.T) {
	sizer := testSizer()
	returns := alternating(200, 0.001, 0.002)

	prev := math.Inf(1)
	for _, n := range []int{10, 50, 100, 200} {
		m := sizer.CalculatePositionMetrics(returns[:n], 100_000, BayesianRiskParams{}, nil)
		assert.Less(t, m.PosteriorVariance, prev, "posterior variance must shrink monotonically, n=%d", n)
		prev = m.PosteriorVariance
	}
}

func TestConfidenceInterval(t *testing.T) {
	sizer := testSizer()

	m := sizer.CalculatePositionMetrics(alternating(100, 0.001, 0.002), 100_000, BayesianRiskParams{ConfidenceLevel: 0.99}, nil)

	halfWidth := 2.33 * math.Sqrt(m.PosteriorVariance)
	assert.InDelta(t, m.PosteriorMean-halfWidth, m.ConfidenceInterval.Lower, 1e-12)
	assert.InDelta(t, m.PosteriorMean+halfWidth, m.ConfidenceInterval.Upper, 1e-12)
}

func TestRiskAdjustedSizeCappedByDrawdownLimit(t *testing.T) {
	sizer := testSizer()
	portfolioValue := 100_000.0

	m := sizer.CalculatePositionMetrics(alternating(100, 0.004, 0.001), portfolioValue, BayesianRiskParams{}, nil)

	assert.InDelta(t, MaxDrawdownFraction*portfolioValue, m.MaxDrawdownLimit, 1e-9)
	assert.LessOrEqual(t, m.RiskAdjustedSize, m.MaxDrawdownLimit)
	// Strong stable edge: quarter-Kelly size hits the drawdown cap
	assert.InDelta(t, m.MaxDrawdownLimit, m.RiskAdjustedSize, 1e-9)
}

func TestFundamentalBiasShiftsPrior(t *testing.T) {
	sizer := testSizer()
	// Short history keeps the prior influential
	returns := alternating(10, 0.0, 0.002)

	cheap := 10.0
	strongROE := 25.0
	withFundamentals := sizer.CalculatePositionMetrics(returns, 100_000, BayesianRiskParams{},
		&FundamentalData{PERatio: &cheap, ROE: &strongROE})
	without := sizer.CalculatePositionMetrics(returns, 100_000, BayesianRiskParams{}, nil)

	assert.Greater(t, withFundamentals.PosteriorMean, without.PosteriorMean,
		"attractive fundamentals must bias the posterior upward")

	// Empty fundamentals object contributes nothing
	same := sizer.CalculatePositionMetrics(returns, 100_000, BayesianRiskParams{}, &FundamentalData{})
	assert.Equal(t, without.PosteriorMean, same.PosteriorMean)
}

func TestFundamentalScore(t *testing.T) {
	lowPE := 10.0
	highPE := 60.0
	weakROE := 2.0

	score, ok := fundamentalScore(&FundamentalData{PERatio: &lowPE})
	require.True(t, ok)
	assert.InDelta(t, 0.2, score, 1e-12)

	score, ok = fundamentalScore(&FundamentalData{PERatio: &highPE, ROE: &weakROE})
	require.True(t, ok)
	assert.InDelta(t, (-0.1-0.1)/2, score, 1e-12)

	_, ok = fundamentalScore(&FundamentalData{})
	assert.False(t, ok)
}

func TestDynamicStopLoss(t *testing.T) {
	sizer := testSizer()

	closes := make([]float64, 20)
	highs := make([]float64, 20)
	lows := make([]float64, 20)
	for i := range closes {
		closes[i] = 100 + float64(i)
		highs[i] = closes[i] + 1
		lows[i] = closes[i] - 1
	}

	rec := sizer.DynamicStopLoss(highs, lows, closes, 110, 119, 0.0001)

	want := math.Max(
		math.Max(rec.ATRInitialStop, rec.TrailingStop),
		math.Max(rec.VolatilityStop, rec.BayesianStop),
	)
	assert.Equal(t, want, rec.Recommended, "recommendation must be the tightest-to-price candidate")

	// Every candidate sits below the current price for a long position
	assert.Less(t, rec.TrailingStop, 119.0)
	assert.Less(t, rec.VolatilityStop, 119.0)
	assert.Less(t, rec.BayesianStop, 119.0)
}

func TestDynamicStopLossInsufficientHistory(t *testing.T) {
	sizer := testSizer()

	// Too short for ATR: ATR-based candidates degrade to the raw prices
	rec := sizer.DynamicStopLoss([]float64{101}, []float64{99}, []float64{100}, 100, 100, 0)
	assert.Equal(t, 100.0, rec.ATRInitialStop)
	assert.Equal(t, 100.0, rec.TrailingStop)
}

func TestMonitorPositions(t *testing.T) {
	sizer := testSizer()
	portfolioValue := 100_000.0

	stable := alternating(100, 0.004, 0.001)
	noisy := alternating(100, 0.0, 0.001)

	t.Run("classification by uncertainty ratio", func(t *testing.T) {
		assessments := sizer.MonitorPositions([]OpenPosition{
			{Symbol: "STABLE", Size: 10_000, Returns: stable},
			{Symbol: "NOISY", Size: 1_000, Returns: noisy},
		}, portfolioValue, BayesianRiskParams{})
		require.Len(t, assessments, 2)

		byName := map[string]PositionAssessment{}
		for _, a := range assessments {
			byName[a.Symbol] = a
		}

		assert.Equal(t, RiskLow, byName["STABLE"].Level)
		assert.Equal(t, RiskCritical, byName["NOISY"].Level)
	})

	t.Run("oversized position overrides to HIGH", func(t *testing.T) {
		assessments := sizer.MonitorPositions([]OpenPosition{
			{Symbol: "BIG", Size: 50_000, Returns: stable},
		}, portfolioValue, BayesianRiskParams{})
		require.Len(t, assessments, 1)

		assert.True(t, assessments[0].Oversized)
		assert.Equal(t, RiskHigh, assessments[0].Level)
	})
}
