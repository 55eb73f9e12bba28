package otel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
	reqid "github.com/hanpama/gqlvalid/internal/reqid"
)

func TestRegister_SpansAndValidationEvents(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	bus := eventbus.New()
	off := Register(bus, tp.Tracer(tracerName))
	defer off()

	ctx, _ := reqid.NewContext(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/graphql", nil)

	eventbus.Emit(ctx, bus, events.HTTPStart{Request: req})
	eventbus.Emit(ctx, bus, events.GraphQLStart{OperationName: "AddUser", OperationType: "mutation"})
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.addUser", Outcome: events.ValidationInvalid, Violations: 2})
	eventbus.Emit(ctx, bus, events.MutationValidated{Field: "Mutation.broken", Outcome: events.ValidationMisconfigured, Err: errors.New("no schema")})
	eventbus.Emit(ctx, bus, events.GraphQLFinish{OperationName: "AddUser", OperationType: "mutation"})
	eventbus.Emit(ctx, bus, events.HTTPFinish{Request: req, Status: http.StatusOK})

	spans := rec.Ended()
	require.Len(t, spans, 2)
	op, httpSpan := spans[0], spans[1]
	require.Equal(t, "graphql.operation", op.Name())
	require.Equal(t, "http.request", httpSpan.Name())
	require.Equal(t, httpSpan.SpanContext().SpanID(), op.Parent().SpanID())

	var outcomes []string
	for _, ev := range op.Events() {
		if ev.Name != "mutation.validation" {
			continue
		}
		for _, a := range ev.Attributes {
			if a.Key == "validation.outcome" {
				outcomes = append(outcomes, a.Value.AsString())
			}
		}
	}
	require.Equal(t, []string{"invalid", "misconfigured"}, outcomes)
	require.Equal(t, codes.Error, op.Status().Code)
}

func TestSetup_NoEndpoint(t *testing.T) {
	shutdown, err := Setup("", "gqlvalid")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
