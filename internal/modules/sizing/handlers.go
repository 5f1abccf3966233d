package sizing

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles position-sizing HTTP requests
type Handler struct {
	sizer *Sizer
	log   zerolog.Logger
}

// NewHandler creates a new sizing handler
func NewHandler(sizer *Sizer, log zerolog.Logger) *Handler {
	return &Handler{
		sizer: sizer,
		log:   log.With().Str("handler", "sizing").Logger(),
	}
}

type positionRequest struct {
	Returns        []float64          `json:"returns"`
	PortfolioValue float64            `json:"portfolio_value"`
	Params         BayesianRiskParams `json:"params"`
	Fundamentals   *FundamentalData   `json:"fundamentals"`
}

// HandlePositionMetrics derives the Kelly-bounded sizing record
func (h *Handler) HandlePositionMetrics(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PortfolioValue <= 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio value must be positive")
		return
	}

	h.writeJSON(w, http.StatusOK, h.sizer.CalculatePositionMetrics(req.Returns, req.PortfolioValue, req.Params, req.Fundamentals))
}

type stopLossRequest struct {
	Highs             []float64 `json:"highs"`
	Lows              []float64 `json:"lows"`
	Closes            []float64 `json:"closes"`
	EntryPrice        float64   `json:"entry_price"`
	CurrentPrice      float64   `json:"current_price"`
	PosteriorVariance float64   `json:"posterior_variance"`
}

// HandleStopLoss recommends the tightest of the four stop candidates
func (h *Handler) HandleStopLoss(w http.ResponseWriter, r *http.Request) {
	var req stopLossRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Highs) != len(req.Lows) || len(req.Highs) != len(req.Closes) {
		h.writeError(w, http.StatusBadRequest, "OHLC series must have equal lengths")
		return
	}
	if req.EntryPrice <= 0 || req.CurrentPrice <= 0 {
		h.writeError(w, http.StatusBadRequest, "Entry and current price must be positive")
		return
	}

	h.writeJSON(w, http.StatusOK, h.sizer.DynamicStopLoss(req.Highs, req.Lows, req.Closes, req.EntryPrice, req.CurrentPrice, req.PosteriorVariance))
}

type monitorRequest struct {
	Positions      []OpenPosition     `json:"positions"`
	PortfolioValue float64            `json:"portfolio_value"`
	Params         BayesianRiskParams `json:"params"`
}

// HandleMonitor classifies open positions by posterior uncertainty
func (h *Handler) HandleMonitor(w http.ResponseWriter, r *http.Request) {
	var req monitorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PortfolioValue <= 0 {
		h.writeError(w, http.StatusBadRequest, "Portfolio value must be positive")
		return
	}

	h.writeJSON(w, http.StatusOK, h.sizer.MonitorPositions(req.Positions, req.PortfolioValue, req.Params))
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
