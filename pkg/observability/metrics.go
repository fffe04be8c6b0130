package observability

import (
	"context"
	"net/http"
	"strconv"

	"github.com/aretw0/parlance/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parlance"

// Metrics holds the collectors fed by the engine hooks.
type Metrics struct {
	StateVisits    *prometheus.CounterVec
	ModelCalls     *prometheus.CounterVec
	ModelDuration  *prometheus.HistogramVec
	ActionCalls    *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	Transitions    *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A *prometheus.Registry also serves as the gatherer for Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StateVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_visits_total",
			Help:      "Total number of iterations started per state.",
		}, []string{"state"}),
		ModelCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_calls_total",
			Help:      "Model invocations, labeled by whether the fallback decision was used.",
		}, []string{"model", "fallback"}),
		ModelDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_duration_seconds",
			Help:      "Duration of model invocations.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"model"}),
		ActionCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_dispatches_total",
			Help:      "Action dispatches by action and routing outcome.",
		}, []string{"action", "route"}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Duration of action dispatches.",
		}, []string{"action"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Transition decisions by source state and outcome.",
		}, []string{"from", "accepted"}),
	}
	reg.MustRegister(m.StateVisits, m.ModelCalls, m.ModelDuration, m.ActionCalls, m.ActionDuration, m.Transitions)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateEnter: func(_ context.Context, e *domain.StateEvent) {
			m.StateVisits.WithLabelValues(e.State).Inc()
		},
		OnModelCall: func(_ context.Context, e *domain.ModelEvent) {
			m.ModelCalls.WithLabelValues(e.Model, strconv.FormatBool(e.Fallback)).Inc()
			m.ModelDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
		},
		OnActionDispatch: func(_ context.Context, e *domain.ActionEvent) {
			m.ActionCalls.WithLabelValues(e.Action, e.Route).Inc()
			m.ActionDuration.WithLabelValues(e.Action).Observe(e.Duration.Seconds())
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.From, strconv.FormatBool(e.Accepted)).Inc()
		},
	}
}

// Handler serves the registered metrics. It falls back to the default
// gatherer when the registerer is not a gatherer.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
