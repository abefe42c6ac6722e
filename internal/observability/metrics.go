package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ModelCollector bundles Prometheus metrics for the evaluation engine and
// its HTTP surface.
type ModelCollector struct {
	gatherer prometheus.Gatherer

	Evaluations         *prometheus.CounterVec
	EvaluationDurations *prometheus.HistogramVec
	HTTPRequests        *prometheus.CounterVec

	BaseEBITDA       prometheus.Gauge
	ActiveFeedstocks prometheus.Gauge
}

// NewModelCollector registers the model metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewModelCollector(reg prometheus.Registerer) (*ModelCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	evaluations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "model_evaluations_total",
		Help: "Total number of model runs, labeled by operation and outcome.",
	}, []string{"operation", "outcome"}), "model_evaluations_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "model_evaluation_duration_seconds",
		Help:    "Model run latency in seconds.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}, []string{"operation"}), "model_evaluation_duration_seconds")
	if err != nil {
		return nil, err
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	ebitda, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "model_last_base_ebitda",
		Help: "Base-case EBITDA of the most recent successful evaluation.",
	}), "model_last_base_ebitda")
	if err != nil {
		return nil, err
	}
	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "model_last_active_feedstocks",
		Help: "Active feedstock count of the most recent successful evaluation.",
	}), "model_last_active_feedstocks")
	if err != nil {
		return nil, err
	}

	return &ModelCollector{
		gatherer:            gatherer,
		Evaluations:         evaluations,
		EvaluationDurations: durations,
		HTTPRequests:        requests,
		BaseEBITDA:          ebitda,
		ActiveFeedstocks:    active,
	}, nil
}

// ObserveEvaluation records one model run.
func (c *ModelCollector) ObserveEvaluation(operation, outcome string, took time.Duration) {
	if c == nil {
		return
	}
	c.Evaluations.WithLabelValues(operation, outcome).Inc()
	c.EvaluationDurations.WithLabelValues(operation).Observe(took.Seconds())
}

// SetBaseCase publishes the headline figures of the latest evaluation.
func (c *ModelCollector) SetBaseCase(ebitda float64, activeFeedstocks int) {
	if c == nil {
		return
	}
	c.BaseEBITDA.Set(ebitda)
	c.ActiveFeedstocks.Set(float64(activeFeedstocks))
}

// GinMiddleware counts requests by matched route.
func (c *ModelCollector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if c == nil {
			return
		}
		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		c.HTTPRequests.WithLabelValues(ctx.Request.Method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ModelCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
