package risk

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *Handler {
	return NewHandler(NewCalculator(zerolog.Nop()), NewStressTester(zerolog.Nop()), DefaultRiskFreeRate, DefaultSimulations, zerolog.Nop())
}

func TestHandleMetrics(t *testing.T) {
	handler := testHandler()

	body := `{"returns": [0.01, -0.02, 0.03, -0.01], "risk_free_rate": 0.02}`
	req := httptest.NewRequest("POST", "/api/risk/metrics", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleMetrics(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&m))
	assert.Greater(t, m["volatility"].(float64), 0.0)
	// Two distinct negative returns: Sortino is a finite number
	require.Contains(t, m, "sortino_ratio")
	assert.NotNil(t, m["sortino_ratio"])
}

func TestHandleMetricsSortinoNull(t *testing.T) {
	handler := testHandler()

	// All returns non-negative: the +Inf Sortino serializes as null
	body := `{"returns": [0.01, 0.02, 0.0, 0.03]}`
	req := httptest.NewRequest("POST", "/api/risk/metrics", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleMetrics(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var m map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&m))
	assert.Nil(t, m["sortino_ratio"])
}

func TestHandleMetricsBenchmarkLengthMismatch(t *testing.T) {
	handler := testHandler()

	body := `{"returns": [0.01, 0.02], "benchmark_returns": [0.01]}`
	req := httptest.NewRequest("POST", "/api/risk/metrics", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleMetrics(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMetricsInvalidBody(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest("POST", "/api/risk/metrics", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	handler.HandleMetrics(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleScenarios(t *testing.T) {
	handler := testHandler()

	req := httptest.NewRequest("GET", "/api/risk/stress/scenarios", nil)
	w := httptest.NewRecorder()
	handler.HandleScenarios(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var scenarios []StressScenario
	require.NoError(t, json.NewDecoder(w.Body).Decode(&scenarios))
	assert.Len(t, scenarios, 7)
	assert.Equal(t, "Market Crash", scenarios[0].Name)
}

func TestHandleStressTest(t *testing.T) {
	handler := testHandler()

	body := `{"portfolio_value": 1000000}`
	req := httptest.NewRequest("POST", "/api/risk/stress", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleStressTest(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var results []StressTestResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&results))
	require.Len(t, results, 7)
	assert.InDelta(t, 300_000, results[0].Loss, 1e-6)
}

func TestHandleStressTestRejectsNonPositiveValue(t *testing.T) {
	handler := testHandler()

	body := `{"portfolio_value": 0}`
	req := httptest.NewRequest("POST", "/api/risk/stress", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleStressTest(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCorrelationMatrix(t *testing.T) {
	handler := testHandler()

	body := `{"series": {"A": [0.01, -0.02, 0.03], "B": [0.02, -0.01, 0.02]}}`
	req := httptest.NewRequest("POST", "/api/risk/correlation", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.HandleCorrelationMatrix(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var matrix CorrelationMatrix
	require.NoError(t, json.NewDecoder(w.Body).Decode(&matrix))
	assert.Equal(t, []string{"A", "B"}, matrix.Symbols)
	assert.InDelta(t, 1.0, matrix.Matrix[0][0], 1e-9)
}
