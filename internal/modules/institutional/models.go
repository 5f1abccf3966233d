package institutional

import (
	"github.com/aristath/quantrisk/internal/modules/risk"
)

// Holding is one position enriched with the liquidity and classification data
// the institutional roll-up needs. Supplied by the portfolio collaborator.
type Holding struct {
	Symbol         string    `json:"symbol"`
	Sector         string    `json:"sector"`
	Weight         float64   `json:"weight"`
	Returns        []float64 `json:"returns"`
	Value          float64   `json:"value"`            // Position value
	AvgDailyVolume float64   `json:"avg_daily_volume"` // ADV in portfolio currency
	BidAskSpread   float64   `json:"bid_ask_spread"`   // Fractional spread
}

// LiquidityRisk estimates how quickly the portfolio can be unwound.
type LiquidityRisk struct {
	AvgDailyVolume  float64 `json:"avg_daily_volume"`  // Weight-averaged ADV
	AvgBidAskSpread float64 `json:"avg_bid_ask_spread"`
	LiquidationDays float64 `json:"liquidation_days"` // Max over holdings at 20% of ADV per day
	ImpactCost      float64 `json:"impact_cost"`      // ≈ 2 × spread
}

// ConcentrationRisk measures how clustered the portfolio is.
type ConcentrationRisk struct {
	Top5Weight      float64            `json:"top_5_weight"`
	Top10Weight     float64            `json:"top_10_weight"`
	SectorWeights   map[string]float64 `json:"sector_weights"`
	HerfindahlIndex float64            `json:"herfindahl_index"` // Σ weight²
}

// OperationalRisk carries fixed heuristic constants. These are simplified
// placeholders for models that would need external data feeds.
type OperationalRisk struct {
	KeyPersonRisk      float64 `json:"key_person_risk"`
	SystemDowntimeRisk float64 `json:"system_downtime_risk"`
	ModelRisk          float64 `json:"model_risk"`
	ComplianceRisk     float64 `json:"compliance_risk"`
	DataQualityRisk    float64 `json:"data_quality_risk"`
	Composite          float64 `json:"composite"`
}

// ESGRisk carries fixed environmental/social/governance constants with their
// mean as composite.
type ESGRisk struct {
	Environmental float64 `json:"environmental"`
	Social        float64 `json:"social"`
	Governance    float64 `json:"governance"`
	Composite     float64 `json:"composite"`
}

// RegulatoryCapital holds the market-risk capital figures.
type RegulatoryCapital struct {
	VaRCapital        float64 `json:"var_capital"`        // max(VaR99×value, VaR95×value×3)
	StressedVaR       float64 `json:"stressed_var"`       // 1.5 × VaRCapital
	IncrementalRisk   float64 `json:"incremental_risk"`   // 8% of value
	ComprehensiveRisk float64 `json:"comprehensive_risk"` // max(VaRCapital, StressedVaR) + IncrementalRisk
}

// RiskMetrics wraps the core risk record with the institutional estimates.
// Core is a named field, not embedded: risk.RiskMetrics carries a custom
// MarshalJSON that would otherwise be promoted and hide the fields below.
type RiskMetrics struct {
	Core risk.RiskMetrics `json:"core"`

	Liquidity         LiquidityRisk     `json:"liquidity"`
	Concentration     ConcentrationRisk `json:"concentration"`
	Operational       OperationalRisk   `json:"operational"`
	CounterpartyRisk  float64           `json:"counterparty_risk"`
	ESG               ESGRisk           `json:"esg"`
	RegulatoryCapital RegulatoryCapital `json:"regulatory_capital"`
}
