package risk

import (
	"encoding/json"
	"math"
)

// RiskMetrics is the full risk/performance record for a single return series.
// Computed fresh on every call, never mutated after creation.
type RiskMetrics struct {
	Volatility           float64 `json:"volatility"`             // Annualized volatility
	DownsideVolatility   float64 `json:"downside_volatility"`    // Annualized std dev of negative returns
	VaR95                float64 `json:"var_95"`                 // 95% historical VaR (percent loss)
	VaR99                float64 `json:"var_99"`                 // 99% historical VaR (percent loss)
	CVaR95               float64 `json:"cvar_95"`                // 95% conditional VaR (percent loss)
	CVaR99               float64 `json:"cvar_99"`                // 99% conditional VaR (percent loss)
	Beta                 float64 `json:"beta"`                   // Sensitivity to benchmark (0 without benchmark)
	Alpha                float64 `json:"alpha"`                  // CAPM residual (annualized)
	BenchmarkCorrelation float64 `json:"benchmark_correlation"`  // Pearson correlation to benchmark
	MaxDrawdown          float64 `json:"max_drawdown"`           // Percent
	CurrentDrawdown      float64 `json:"current_drawdown"`       // Percent
	DrawdownDuration     int     `json:"drawdown_duration"`      // Periods from peak to max-drawdown trough
	SharpeRatio          float64 `json:"sharpe_ratio"`
	SortinoRatio         float64 `json:"sortino_ratio"`          // +Inf when the series has no downside
	CalmarRatio          float64 `json:"calmar_ratio"`
	InformationRatio     float64 `json:"information_ratio"`
	TreynorRatio         float64 `json:"treynor_ratio"`
}

// MarshalJSON encodes an infinite Sortino ratio (no observed downside) as
// null: JSON has no representation for +Inf.
func (m RiskMetrics) MarshalJSON() ([]byte, error) {
	type alias RiskMetrics
	aux := struct {
		alias
		SortinoRatio *float64 `json:"sortino_ratio"`
	}{alias: alias(m)}
	if !math.IsInf(m.SortinoRatio, 0) {
		aux.SortinoRatio = &m.SortinoRatio
	}
	return json.Marshal(aux)
}

// CorrelationMatrix is a symmetric pairwise correlation grid over named series.
// Invariant: square, symmetric, diagonal 1 for any series with nonzero variance.
type CorrelationMatrix struct {
	Symbols []string    `json:"symbols"`
	Matrix  [][]float64 `json:"matrix"`
}

// RiskContribution attributes a share of portfolio volatility to one holding.
type RiskContribution struct {
	Symbol              string  `json:"symbol"`
	Weight              float64 `json:"weight"`
	Volatility          float64 `json:"volatility"`           // Holding's own annualized volatility
	Contribution        float64 `json:"contribution"`         // weight × beta × portfolio volatility
	ContributionPercent float64 `json:"contribution_percent"` // Contribution / portfolio volatility × 100
}

// ShockType classifies how a stress scenario perturbs a portfolio.
type ShockType string

const (
	ShockPrice       ShockType = "price"
	ShockVolatility  ShockType = "volatility"
	ShockCorrelation ShockType = "correlation"
)

// StressScenario is an immutable named shock definition.
type StressScenario struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ShockType   ShockType `json:"shock_type"`
	Magnitude   float64   `json:"magnitude"` // Percent
}

// StressTestResult is the outcome of one scenario applied to a portfolio value.
type StressTestResult struct {
	Scenario      StressScenario `json:"scenario"`
	OriginalValue float64        `json:"original_value"`
	StressedValue float64        `json:"stressed_value"`
	Loss          float64        `json:"loss"`
	LossPercent   float64        `json:"loss_percent"`
}

// PortfolioHolding is a single position as supplied by the portfolio collaborator.
// Weights are taken as-is; the engine does not require them to sum to 1.
type PortfolioHolding struct {
	Symbol  string    `json:"symbol"`
	Weight  float64   `json:"weight"`
	Returns []float64 `json:"returns"`
	Price   float64   `json:"price"`
}

// HoldingStressResult is the per-holding outcome of the advanced stress variant.
type HoldingStressResult struct {
	Symbol string           `json:"symbol"`
	Result StressTestResult `json:"result"`
}
