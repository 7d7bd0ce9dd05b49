package observability

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/odnalezione/odnalezione-backend/internal/platform/envutil"
)

type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	llmRequests   *CounterVec
	llmLatency    *HistogramVec
	llmTokens     *CounterVec
	importRuns    *CounterVec
	importLatency *HistogramVec
	importRecords *CounterVec
	reviewActions *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

// Init builds the process-wide metrics set. It returns nil when metrics are
// disabled; every Metrics method is a no-op on nil.
func Init(enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
	})
	return instance
}

// New returns an independent metrics set.
func New() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("odn_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"odn_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 180},
		),
		apiInflight: NewGauge("odn_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("odn_llm_requests_total", "Model calls by model/stage/status.", []string{"model", "stage", "status"}),
		llmLatency: NewHistogramVec(
			"odn_llm_request_duration_seconds",
			"Model call latency in seconds by model/stage.",
			[]string{"model", "stage"},
			[]float64{0.5, 1, 2, 5, 10, 20, 40, 90, 180},
		),
		llmTokens:     NewCounterVec("odn_llm_tokens_total", "Model tokens by model/direction.", []string{"model", "direction"}),
		importRuns:    NewCounterVec("odn_import_runs_total", "Import requests by action/status.", []string{"action", "status"}),
		importLatency: NewHistogramVec("odn_import_duration_seconds", "Import request latency by action.", []string{"action"}, []float64{1, 5, 15, 30, 60, 120, 300, 600}),
		importRecords: NewCounterVec("odn_import_records_total", "Records produced by action.", []string{"action"}),
		reviewActions: NewCounterVec("odn_review_actions_total", "Review actions by type/status.", []string{"type", "status"}),
	}
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) collectors() []collector {
	return []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.importRuns, m.importLatency, m.importRecords,
		m.reviewActions,
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.Inc(method, route, code)
	m.apiLatency.Observe(dur.Seconds(), method, route, code)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

// ObserveLLMRequest records one model call. stage is "normalize" or "validate".
func (m *Metrics) ObserveLLMRequest(model, stage, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	model = orUnknown(model)
	stage = orUnknown(stage)
	m.llmRequests.Inc(model, stage, orUnknown(status))
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, stage)
	}
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) ObserveImport(action string, err error, records int, dur time.Duration) {
	if m == nil {
		return
	}
	action = orUnknown(action)
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.importRuns.Inc(action, status)
	m.importLatency.Observe(dur.Seconds(), action)
	if records > 0 {
		m.importRecords.Add(float64(records), action)
	}
}

func (m *Metrics) IncReviewAction(actionType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.reviewActions.Inc(orUnknown(actionType), status)
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}
