package institutional

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/modules/risk"
)

// Fixed placeholder constants. Real operational/ESG/counterparty models need
// external data feeds; these stand-ins keep the roll-up shape stable.
const (
	keyPersonRisk      = 0.15
	systemDowntimeRisk = 0.10
	modelRisk          = 0.12
	complianceRisk     = 0.08
	dataQualityRisk    = 0.10

	environmentalRisk = 0.30
	socialRisk        = 0.25
	governanceRisk    = 0.20

	// averageRatingRiskFactor converts total exposure into counterparty risk,
	// assuming an investment-grade average counterparty rating.
	averageRatingRiskFactor = 0.02

	// liquidationVolumeShare caps daily liquidation at 20% of ADV.
	liquidationVolumeShare = 0.20
)

// Aggregator rolls the core risk metrics up with liquidity, concentration,
// operational, counterparty, ESG, and regulatory-capital estimates.
type Aggregator struct {
	calc *risk.Calculator
	log  zerolog.Logger
}

// NewAggregator creates a new institutional risk aggregator
func NewAggregator(calc *risk.Calculator, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		calc: calc,
		log:  log.With().Str("service", "institutional").Logger(),
	}
}

// CalculateInstitutionalRisk computes the full institutional record for a
// portfolio. The core RiskMetrics are those of the weighted portfolio series.
func (a *Aggregator) CalculateInstitutionalRisk(holdings []Holding, portfolioValue, riskFreeRate float64) RiskMetrics {
	weights := make(map[string]float64, len(holdings))
	returns := make(map[string][]float64, len(holdings))
	for _, h := range holdings {
		weights[h.Symbol] = h.Weight
		returns[h.Symbol] = h.Returns
	}

	portfolio := a.calc.WeightedPortfolioReturns(weights, returns)
	core := a.calc.CalculateRiskMetrics(portfolio, nil, riskFreeRate)

	var totalExposure float64
	for _, h := range holdings {
		totalExposure += h.Value
	}

	return RiskMetrics{
		Core:              core,
		Liquidity:         a.liquidityRisk(holdings),
		Concentration:     a.concentrationRisk(holdings),
		Operational:       operationalRisk(),
		CounterpartyRisk:  totalExposure * averageRatingRiskFactor,
		ESG:               esgRisk(),
		RegulatoryCapital: regulatoryCapital(core, portfolioValue),
	}
}

// liquidityRisk estimates unwind capacity: weight-averaged ADV and spread,
// and the worst-case liquidation horizon assuming no more than 20% of a
// holding's daily volume can be sold per day.
func (a *Aggregator) liquidityRisk(holdings []Holding) LiquidityRisk {
	var avgVolume, avgSpread, worstDays float64

	for _, h := range holdings {
		avgVolume += h.Weight * h.AvgDailyVolume
		avgSpread += h.Weight * h.BidAskSpread

		if h.AvgDailyVolume <= 0 {
			if h.Value > 0 {
				a.log.Debug().Str("symbol", h.Symbol).Msg("Holding has no ADV, excluded from liquidation horizon")
			}
			continue
		}
		days := math.Ceil(h.Value / (h.AvgDailyVolume * liquidationVolumeShare))
		if days > worstDays {
			worstDays = days
		}
	}

	return LiquidityRisk{
		AvgDailyVolume:  avgVolume,
		AvgBidAskSpread: avgSpread,
		LiquidationDays: worstDays,
		ImpactCost:      2 * avgSpread,
	}
}

// concentrationRisk computes top-5/top-10 weight sums, per-sector weights and
// the Herfindahl index.
func (a *Aggregator) concentrationRisk(holdings []Holding) ConcentrationRisk {
	weights := make([]float64, 0, len(holdings))
	sectors := make(map[string]float64)
	herfindahl := 0.0

	for _, h := range holdings {
		weights = append(weights, h.Weight)
		sectors[h.Sector] += h.Weight
		herfindahl += h.Weight * h.Weight
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(weights)))

	var top5, top10 float64
	for i, w := range weights {
		if i < 5 {
			top5 += w
		}
		if i < 10 {
			top10 += w
		} else {
			break
		}
	}

	return ConcentrationRisk{
		Top5Weight:      top5,
		Top10Weight:     top10,
		SectorWeights:   sectors,
		HerfindahlIndex: herfindahl,
	}
}

func operationalRisk() OperationalRisk {
	composite := (keyPersonRisk + systemDowntimeRisk + modelRisk + complianceRisk + dataQualityRisk) / 5
	return OperationalRisk{
		KeyPersonRisk:      keyPersonRisk,
		SystemDowntimeRisk: systemDowntimeRisk,
		ModelRisk:          modelRisk,
		ComplianceRisk:     complianceRisk,
		DataQualityRisk:    dataQualityRisk,
		Composite:          composite,
	}
}

func esgRisk() ESGRisk {
	return ESGRisk{
		Environmental: environmentalRisk,
		Social:        socialRisk,
		Governance:    governanceRisk,
		Composite:     (environmentalRisk + socialRisk + governanceRisk) / 3,
	}
}

// regulatoryCapital derives market-risk capital from the VaR figures.
// VaR percentages are converted to fractions of portfolio value.
func regulatoryCapital(core risk.RiskMetrics, portfolioValue float64) RegulatoryCapital {
	varCapital := math.Max(core.VaR99/100*portfolioValue, core.VaR95/100*portfolioValue*3)
	stressed := 1.5 * varCapital
	incremental := 0.08 * portfolioValue

	return RegulatoryCapital{
		VaRCapital:        varCapital,
		StressedVaR:       stressed,
		IncrementalRisk:   incremental,
		ComprehensiveRisk: math.Max(varCapital, stressed) + incremental,
	}
}
