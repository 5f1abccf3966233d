package risk

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/aristath/quantrisk/pkg/formulas"
)

// DefaultSimulations is the Monte-Carlo path count used when the caller does
// not request a specific number.
const DefaultSimulations = 10000

// MonteCarloVaR estimates Value-at-Risk by resampling: draw `simulations`
// returns from a normal distribution fitted to the sanitized series (population
// mean and std dev), then read the historical-simulation quantile off the
// simulated outcomes. Reported as a positive percent-loss magnitude.
//
// rng may be nil, in which case an unseeded time-based source is used.
// Deterministic callers (tests) inject a seeded *rand.Rand.
func (c *Calculator) MonteCarloVaR(returns []float64, confidence float64, simulations int, rng *rand.Rand) float64 {
	clean := formulas.Sanitize(returns)
	if len(clean) == 0 {
		c.log.Warn().Msg("Monte-Carlo VaR requested for empty or fully invalid series, returning 0")
		return 0
	}
	if simulations <= 0 {
		simulations = DefaultSimulations
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // simulation, not crypto
	}

	mean := formulas.Mean(clean)
	stdDev := formulas.StdDev(clean)

	simulated := make([]float64, simulations)
	for i := range simulated {
		simulated[i] = mean + stdDev*boxMuller(rng)
	}
	sort.Float64s(simulated)

	idx := int(math.Floor((1 - confidence) * float64(simulations)))
	if idx < 0 {
		idx = 0
	}
	if idx >= simulations {
		idx = simulations - 1
	}

	return math.Abs(simulated[idx]) * 100
}

// boxMuller draws one standard-normal variate via the Box–Muller transform.
func boxMuller(rng *rand.Rand) float64 {
	var u1 float64
	for u1 == 0 {
		u1 = rng.Float64()
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
