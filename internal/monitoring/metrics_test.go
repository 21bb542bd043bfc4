package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-momentum-backtest/internal/backtest"
	"github.com/ducminhle1904/crypto-momentum-backtest/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *validation.EvaluationReport {
	run := func(name string, ret float64) validation.RunResult {
		return validation.RunResult{
			Name: name,
			Results: &backtest.BacktestResults{
				TotalReturnNet: ret,
				SharpeNet:      1.5,
				MaxDrawdownNet: -0.2,
				TradeCount:     7,
				Days:           30,
			},
		}
	}
	return &validation.EvaluationReport{
		Strategy:      "Momentum(10)+Volatility(10)",
		StrategyTrain: run("Strategy Train", 0.1),
		StrategyTest:  run("Strategy Test", 0.05),
		BaselineTrain: run("Buy & Hold Train", 0.2),
		BaselineTest:  run("Buy & Hold Test", -0.1),
		StrategyFull:  run("Strategy Full", 0.15),
		BaselineFull:  run("Buy & Hold Full", 0.08),
		Regimes: validation.RegimeBreakdown{
			Bull: validation.RegimeMetrics{Regime: "BULL", Days: 20, TotalReturn: 0.3},
			Bear: validation.RegimeMetrics{Regime: "BEAR", Days: 10, TotalReturn: -0.1},
		},
	}
}

// TestRecorder_RecordReport tests that every run and regime sets its gauges
func TestRecorder_RecordReport(t *testing.T) {
	r := NewRecorder("BTCUSDT")
	report := testReport()
	r.RecordReport(report)

	assert.Equal(t, 6, testutil.CollectAndCount(r.totalReturnNet))
	assert.Equal(t, 2, testutil.CollectAndCount(r.regimeDays))
	assert.InDelta(t, 0.05, testutil.ToFloat64(r.totalReturnNet.WithLabelValues("BTCUSDT", report.Strategy, "Strategy Test")), 1e-12)
	assert.InDelta(t, 7, testutil.ToFloat64(r.tradeCount.WithLabelValues("BTCUSDT", report.Strategy, "Strategy Full")), 1e-12)
	assert.InDelta(t, 20, testutil.ToFloat64(r.regimeDays.WithLabelValues("BTCUSDT", report.Strategy, "BULL")), 1e-12)
	assert.InDelta(t, 1, testutil.ToFloat64(r.evaluationsTotal), 1e-12)
}

// TestRecorder_SkipsMissingRuns tests that runs without results export nothing
func TestRecorder_SkipsMissingRuns(t *testing.T) {
	r := NewRecorder("ETHUSDT")
	report := testReport()
	report.BaselineFull.Results = nil
	r.RecordReport(report)

	assert.Equal(t, 5, testutil.CollectAndCount(r.sharpeNet))
}

// TestRecorder_Errors tests error counting and duration observation
func TestRecorder_Errors(t *testing.T) {
	r := NewRecorder("BTCUSDT")
	r.RecordError("VALIDATION")
	r.RecordError("VALIDATION")
	r.ObserveDuration(150 * time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.errorsTotal.WithLabelValues("VALIDATION")), 1e-12)
	assert.Equal(t, 1, testutil.CollectAndCount(r.evaluationDuration))
}

// TestRecorder_WriteTextfile tests the textfile export
func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder("BTCUSDT")
	r.RecordReport(testReport())

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "momentum_backtest_total_return_net")
	assert.Contains(t, content, `run="Strategy Test"`)
	assert.Contains(t, content, `regime="BEAR"`)
}

// TestRecorder_Handler tests the HTTP metrics endpoint
func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder("BTCUSDT")
	r.RecordReport(testReport())

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "momentum_backtest_sharpe_net"))
}

// TestHealthChecker tests the status transitions
func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker()
	assert.Equal(t, "starting", h.Status().Status)

	h.MarkEvaluated("Buy & Hold")
	assert.Equal(t, "healthy", h.Status().Status)
	assert.Equal(t, "Buy & Hold", h.Status().Strategy)

	h.MarkFailed(errors.New("boom"))
	status := h.Status()
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, "boom", status.Error)
}

// TestServeMux tests that /health and /metrics are mounted
func TestServeMux(t *testing.T) {
	h := NewHealthChecker()
	h.MarkEvaluated("Buy & Hold")
	mux := NewServeMux(NewRecorder("BTCUSDT"), h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
