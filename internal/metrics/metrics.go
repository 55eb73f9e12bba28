// Package metrics exports Prometheus counters for the events published on the
// event bus.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
)

const namespace = "gqlvalid"

// Metrics owns a registry and the collectors fed by bus events.
type Metrics struct {
	registry *prometheus.Registry

	validations        *prometheus.CounterVec
	validationDuration *prometheus.HistogramVec
	violations         *prometheus.CounterVec
	operations         *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	httpRequests       *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutation_validations_total",
			Help:      "Mutation fields that went through argument validation, by outcome.",
		}, []string{"field", "outcome"}),
		validationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mutation_validation_duration_seconds",
			Help:      "Time spent running argument validators.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}, []string{"field"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutation_validation_violations_total",
			Help:      "Failing argument paths reported by validators.",
		}, []string{"field"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graphql_operations_total",
			Help:      "Executed GraphQL operations.",
		}, []string{"type", "status"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graphql_operation_duration_seconds",
			Help:      "GraphQL operation execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by status code.",
		}, []string{"code"}),
	}
	m.registry.MustRegister(
		m.validations,
		m.validationDuration,
		m.violations,
		m.operations,
		m.operationDuration,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Subscribe feeds the collectors from b and returns a function removing the
// subscriptions.
func (m *Metrics) Subscribe(b *eventbus.Bus) (unsubscribe func()) {
	offs := []func(){
		eventbus.On(b, func(ctx context.Context, e events.MutationValidated) { m.ObserveValidation(e) }),
		eventbus.On(b, func(ctx context.Context, e events.GraphQLFinish) { m.ObserveOperation(e) }),
		eventbus.On(b, func(ctx context.Context, e events.HTTPFinish) {
			m.httpRequests.WithLabelValues(strconv.Itoa(e.Status)).Inc()
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func (m *Metrics) ObserveValidation(e events.MutationValidated) {
	m.validations.WithLabelValues(e.Field, string(e.Outcome)).Inc()
	switch e.Outcome {
	case events.ValidationPassed, events.ValidationInvalid:
		m.validationDuration.WithLabelValues(e.Field).Observe(e.Duration.Seconds())
	}
	if e.Violations > 0 {
		m.violations.WithLabelValues(e.Field).Add(float64(e.Violations))
	}
}

func (m *Metrics) ObserveOperation(e events.GraphQLFinish) {
	status := "ok"
	if len(e.Errors) > 0 {
		status = "error"
	}
	m.operations.WithLabelValues(e.OperationType, status).Inc()
	m.operationDuration.WithLabelValues(e.OperationType).Observe(e.Duration.Seconds())
}
