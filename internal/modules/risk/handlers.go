package risk

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles risk-analytics HTTP requests
type Handler struct {
	calc         *Calculator
	stress       *StressTester
	riskFreeRate float64
	simulations  int
	log          zerolog.Logger
}

// NewHandler creates a new risk handler. riskFreeRate and simulations are the
// configured defaults used when a request omits them; non-positive values fall
// back to the engine defaults.
func NewHandler(calc *Calculator, stress *StressTester, riskFreeRate float64, simulations int, log zerolog.Logger) *Handler {
	if riskFreeRate <= 0 {
		riskFreeRate = DefaultRiskFreeRate
	}
	if simulations <= 0 {
		simulations = DefaultSimulations
	}
	return &Handler{
		calc:         calc,
		stress:       stress,
		riskFreeRate: riskFreeRate,
		simulations:  simulations,
		log:          log.With().Str("handler", "risk").Logger(),
	}
}

type metricsRequest struct {
	Returns          []float64 `json:"returns"`
	BenchmarkReturns []float64 `json:"benchmark_returns"`
	RiskFreeRate     *float64  `json:"risk_free_rate"`
}

// HandleMetrics computes the full RiskMetrics record for a return series
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.BenchmarkReturns) > 0 && len(req.BenchmarkReturns) != len(req.Returns) {
		h.writeError(w, http.StatusBadRequest, "Benchmark series must match returns length")
		return
	}

	riskFreeRate := h.riskFreeRate
	if req.RiskFreeRate != nil {
		riskFreeRate = *req.RiskFreeRate
	}

	h.writeJSON(w, http.StatusOK, h.calc.CalculateRiskMetrics(req.Returns, req.BenchmarkReturns, riskFreeRate))
}

type monteCarloRequest struct {
	Returns     []float64 `json:"returns"`
	Confidence  *float64  `json:"confidence"`
	Simulations int       `json:"simulations"`
}

// HandleMonteCarloVaR estimates VaR by parametric resampling
func (h *Handler) HandleMonteCarloVaR(w http.ResponseWriter, r *http.Request) {
	var req monteCarloRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	confidence := 0.95
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	if confidence <= 0 || confidence >= 1 {
		h.writeError(w, http.StatusBadRequest, "Confidence must be in (0, 1)")
		return
	}

	simulations := req.Simulations
	if simulations <= 0 {
		simulations = h.simulations
	}

	value := h.calc.MonteCarloVaR(req.Returns, confidence, simulations, nil)
	h.writeJSON(w, http.StatusOK, map[string]float64{
		"var":        value,
		"confidence": confidence,
	})
}

type correlationRequest struct {
	Series map[string][]float64 `json:"series"`
}

// HandleCorrelationMatrix builds the pairwise correlation matrix
func (h *Handler) HandleCorrelationMatrix(w http.ResponseWriter, r *http.Request) {
	var req correlationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.writeJSON(w, http.StatusOK, h.calc.CorrelationMatrix(req.Series))
}

type contributionsRequest struct {
	Weights map[string]float64   `json:"weights"`
	Returns map[string][]float64 `json:"returns"`
}

// HandleRiskContributions attributes portfolio volatility to holdings
func (h *Handler) HandleRiskContributions(w http.ResponseWriter, r *http.Request) {
	var req contributionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.writeJSON(w, http.StatusOK, h.calc.RiskContributions(req.Weights, req.Returns))
}

// HandleScenarios returns the preset stress catalogue
func (h *Handler) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, PresetScenarios())
}

type stressRequest struct {
	PortfolioValue float64            `json:"portfolio_value"`
	Holdings       []PortfolioHolding `json:"holdings"`
	Scenarios      []StressScenario   `json:"scenarios"`
}

// HandleStressTest applies scenarios to the aggregate portfolio value
func (h *Handler) HandleStressTest(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PortfolioValue <= 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio value must be positive")
		return
	}

	h.writeJSON(w, http.StatusOK, h.stress.Run(req.PortfolioValue, req.Scenarios))
}

// HandleStressTestByHolding applies scenarios per holding
func (h *Handler) HandleStressTestByHolding(w http.ResponseWriter, r *http.Request) {
	var req stressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PortfolioValue <= 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio value must be positive")
		return
	}
	if len(req.Holdings) == 0 {
		h.writeError(w, http.StatusBadRequest, "At least one holding is required")
		return
	}

	h.writeJSON(w, http.StatusOK, h.stress.RunByHolding(req.PortfolioValue, req.Holdings, req.Scenarios))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
