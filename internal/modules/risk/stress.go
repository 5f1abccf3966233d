package risk

import (
	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/pkg/formulas"
)

// StressTester applies named shock scenarios to a portfolio value or to each
// holding independently. Like the Calculator, it is stateless.
type StressTester struct {
	log zerolog.Logger
}

// NewStressTester creates a new stress test engine
func NewStressTester(log zerolog.Logger) *StressTester {
	return &StressTester{
		log: log.With().Str("service", "stress").Logger(),
	}
}

// PresetScenarios returns the fixed shock catalogue.
func PresetScenarios() []StressScenario {
	return []StressScenario{
		{Name: "Market Crash", Description: "Severe broad-market sell-off", ShockType: ShockPrice, Magnitude: 30},
		{Name: "Moderate Recession", Description: "Prolonged economic contraction", ShockType: ShockPrice, Magnitude: 15},
		{Name: "Volatility Spike", Description: "Sudden volatility regime change", ShockType: ShockVolatility, Magnitude: 50},
		{Name: "Black Swan", Description: "Extreme unforeseen market event", ShockType: ShockPrice, Magnitude: 40},
		{Name: "Financial Crisis", Description: "Systemic banking and credit crisis", ShockType: ShockPrice, Magnitude: 50},
		{Name: "Liquidity Crisis", Description: "Market-wide liquidity evaporation", ShockType: ShockVolatility, Magnitude: 200},
		{Name: "Regulatory Shock", Description: "Abrupt adverse regulatory change", ShockType: ShockPrice, Magnitude: 25},
	}
}

// Run applies each scenario to the aggregate portfolio value.
//
// Both price and volatility shocks use the proportional-loss approximation
// stressedValue = value × (1 − magnitude/100); a volatility increase is
// treated as a direct loss multiplier rather than a repriced VaR.
func (s *StressTester) Run(portfolioValue float64, scenarios []StressScenario) []StressTestResult {
	if len(scenarios) == 0 {
		scenarios = PresetScenarios()
	}

	results := make([]StressTestResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		results = append(results, applyShock(portfolioValue, scenario, scenario.Magnitude))
	}
	return results
}

// RunByHolding applies each scenario to every holding independently, shocking
// weight × portfolioValue. For volatility-type scenarios the shock magnitude
// is scaled by the holding's own annualized realized volatility, so volatile
// holdings absorb proportionally more of the shock.
func (s *StressTester) RunByHolding(portfolioValue float64, holdings []PortfolioHolding, scenarios []StressScenario) []HoldingStressResult {
	if len(scenarios) == 0 {
		scenarios = PresetScenarios()
	}

	results := make([]HoldingStressResult, 0, len(scenarios)*len(holdings))
	for _, scenario := range scenarios {
		for _, holding := range holdings {
			positionValue := holding.Weight * portfolioValue

			magnitude := scenario.Magnitude
			if scenario.ShockType == ShockVolatility && len(holding.Returns) > 0 {
				magnitude = scenario.Magnitude * formulas.AnnualizedVolatility(holding.Returns)
			}

			results = append(results, HoldingStressResult{
				Symbol: holding.Symbol,
				Result: applyShock(positionValue, scenario, magnitude),
			})
		}
	}
	return results
}

// applyShock computes one StressTestResult with the effective magnitude.
func applyShock(value float64, scenario StressScenario, magnitude float64) StressTestResult {
	stressed := value * (1 - magnitude/100)
	loss := value - stressed

	lossPercent := 0.0
	if value != 0 {
		lossPercent = loss / value * 100
	}

	return StressTestResult{
		Scenario:      scenario,
		OriginalValue: value,
		StressedValue: stressed,
		Loss:          loss,
		LossPercent:   lossPercent,
	}
}
