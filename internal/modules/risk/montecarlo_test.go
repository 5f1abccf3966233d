package risk

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMonteCarloVaRReproducible(t *testing.T) {
	calc := testCalculator()
	returns := rampReturns()

	first := calc.MonteCarloVaR(returns, 0.95, 5000, rand.New(rand.NewSource(42)))
	second := calc.MonteCarloVaR(returns, 0.95, 5000, rand.New(rand.NewSource(42)))

	assert.Equal(t, first, second, "same seed must reproduce the same estimate")
}

func TestMonteCarloVaRMatchesNormalQuantile(t *testing.T) {
	calc := testCalculator()

	// Symmetric series with mean 0: the simulated 95% quantile should land
	// near 1.645 standard deviations
	returns := make([]float64, 500)
	for i := range returns {
		if i%2 == 0 {
			returns[i] = 0.01
		} else {
			returns[i] = -0.01
		}
	}
	stdDev := 0.01

	got := calc.MonteCarloVaR(returns, 0.95, 200_000, rand.New(rand.NewSource(7)))
	want := 1.645 * stdDev * 100

	assert.InDelta(t, want, got, 0.1, "Monte-Carlo estimate should approximate the normal quantile")
}

func TestMonteCarloVaRDegenerateInputs(t *testing.T) {
	calc := testCalculator()

	assert.Zero(t, calc.MonteCarloVaR(nil, 0.95, 1000, rand.New(rand.NewSource(1))))
	assert.Zero(t, calc.MonteCarloVaR([]float64{math.NaN()}, 0.95, 1000, rand.New(rand.NewSource(1))))
}

func TestBoxMullerMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	const n = 100_000
	var sum, sumSq float64
	for i := 0; i < n; i++ {
		z := boxMuller(rng)
		sum += z
		sumSq += z * z
	}

	mean := sum / n
	variance := sumSq/n - mean*mean

	assert.InDelta(t, 0, mean, 0.02)
	assert.InDelta(t, 1, variance, 0.02)
}
