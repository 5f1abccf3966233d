package institutional

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/modules/risk"
)

// Handler handles institutional risk HTTP requests
type Handler struct {
	aggregator *Aggregator
	log        zerolog.Logger
}

// NewHandler creates a new institutional handler
func NewHandler(aggregator *Aggregator, log zerolog.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		log:        log.With().Str("handler", "institutional").Logger(),
	}
}

type metricsRequest struct {
	Holdings       []Holding `json:"holdings"`
	PortfolioValue float64   `json:"portfolio_value"`
	RiskFreeRate   *float64  `json:"risk_free_rate"`
}

// HandleMetrics computes the institutional risk roll-up
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
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

	riskFreeRate := risk.DefaultRiskFreeRate
	if req.RiskFreeRate != nil {
		riskFreeRate = *req.RiskFreeRate
	}

	h.writeJSON(w, http.StatusOK, h.aggregator.CalculateInstitutionalRisk(req.Holdings, req.PortfolioValue, riskFreeRate))
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
