package risk

import (
	"sort"

	"github.com/aristath/quantrisk/pkg/formulas"
)

// CorrelationMatrix builds a symmetric pairwise Pearson correlation matrix
// across an arbitrary set of named return series. Symbols are sorted so the
// ordering is deterministic; the lower triangle reuses the already-computed
// upper-triangle entry instead of recomputing it.
func (c *Calculator) CorrelationMatrix(series map[string][]float64) CorrelationMatrix {
	symbols := make([]string, 0, len(series))
	for symbol := range series {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	n := len(symbols)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		matrix[i][i] = 1
		for j := 0; j < i; j++ {
			// Symmetry: (i, j) was already computed as (j, i)
			matrix[i][j] = matrix[j][i]
		}
		for j := i + 1; j < n; j++ {
			matrix[i][j] = formulas.Correlation(series[symbols[i]], series[symbols[j]])
		}
	}

	return CorrelationMatrix{Symbols: symbols, Matrix: matrix}
}

// RiskContributions attributes portfolio volatility to individual holdings.
// The weighted portfolio series is built index-aligned over the shortest
// supplied series; each holding's marginal contribution is
// weight × beta(holding, portfolio) × portfolio volatility.
// Results are sorted descending by contribution.
func (c *Calculator) RiskContributions(weights map[string]float64, returns map[string][]float64) []RiskContribution {
	portfolio := c.WeightedPortfolioReturns(weights, returns)
	portfolioVol := formulas.AnnualizedVolatility(portfolio)

	contributions := make([]RiskContribution, 0, len(weights))
	for symbol, weight := range weights {
		holdingReturns := returns[symbol]

		aligned := holdingReturns
		if len(aligned) > len(portfolio) {
			aligned = aligned[:len(portfolio)]
		}
		beta := c.Beta(aligned, portfolio[:len(aligned)])

		contribution := weight * beta * portfolioVol
		pct := 0.0
		if portfolioVol > 0 {
			pct = contribution / portfolioVol * 100
		}

		contributions = append(contributions, RiskContribution{
			Symbol:              symbol,
			Weight:              weight,
			Volatility:          formulas.AnnualizedVolatility(holdingReturns),
			Contribution:        contribution,
			ContributionPercent: pct,
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].Contribution > contributions[j].Contribution
	})

	return contributions
}

// WeightedPortfolioReturns combines the named series into one weighted series,
// truncated to the shortest series present in the weight set.
func (c *Calculator) WeightedPortfolioReturns(weights map[string]float64, returns map[string][]float64) []float64 {
	minLen := -1
	for symbol := range weights {
		series, ok := returns[symbol]
		if !ok {
			c.log.Debug().Str("symbol", symbol).Msg("Weighted holding has no return series, skipping")
			continue
		}
		if minLen < 0 || len(series) < minLen {
			minLen = len(series)
		}
	}
	if minLen <= 0 {
		return nil
	}

	portfolio := make([]float64, minLen)
	for symbol, weight := range weights {
		series, ok := returns[symbol]
		if !ok {
			continue
		}
		for i := 0; i < minLen; i++ {
			portfolio[i] += weight * series[i]
		}
	}
	return portfolio
}
