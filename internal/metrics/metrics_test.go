package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
)

func TestSubscribe_CountsValidationOutcomes(t *testing.T) {
	bus := eventbus.New()
	m := New()
	off := m.Subscribe(bus)

	ctx := context.Background()
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationPassed, Duration: time.Millisecond})
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationInvalid, Violations: 2})
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationInvalid, Violations: 1})
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.toggle", Outcome: events.ValidationSkipped})

	require.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("Mutation.addUser", "passed")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("Mutation.addUser", "invalid")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("Mutation.toggle", "skipped")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.violations.WithLabelValues("Mutation.addUser")))
	require.Equal(t, 1, testutil.CollectAndCount(m.validationDuration))

	off()
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationPassed})
	require.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("Mutation.addUser", "passed")))
}

func TestSubscribe_CountsOperationsAndRequests(t *testing.T) {
	bus := eventbus.New()
	m := New()
	m.Subscribe(bus)

	ctx := context.Background()
	eventbus.Emit(ctx, bus, events.GraphQLFinish{OperationType: "mutation"})
	eventbus.Emit(ctx, bus, events.GraphQLFinish{OperationType: "mutation", Errors: []error{errors.New("boom")}})
	eventbus.Emit(ctx, bus, events.HTTPFinish{Status: http.StatusOK})

	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mutation", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("mutation", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("200")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveValidation(events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationMisconfigured})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.Contains(body, `gqlvalid_mutation_validations_total{field="Mutation.addUser",outcome="misconfigured"} 1`), body)
}
