// Package logging builds the process logger and logs bus events with it.
package logging

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
	reqid "github.com/hanpama/gqlvalid/internal/reqid"
)

// New returns a JSON production logger, or a console logger when development
// is set. level is a zap level name such as "debug" or "warn".
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Subscribe logs GraphQL operations and rejected or broken mutation
// validations published on b.
func Subscribe(b *eventbus.Bus, logger *zap.Logger) (unsubscribe func()) {
	offs := []func(){
		eventbus.On(b, func(ctx context.Context, e events.GraphQLFinish) {
			fields := append(requestFields(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Duration("duration", e.Duration),
				zap.Int("errors", len(e.Errors)))
			logger.Debug("graphql operation", fields...)
		}),
		eventbus.On(b, func(ctx context.Context, e events.MutationValidated) {
			fields := append(requestFields(ctx), zap.String("field", e.Field))
			switch e.Outcome {
			case events.ValidationInvalid:
				logger.Info("mutation arguments rejected", append(fields, zap.Int("violations", e.Violations))...)
			case events.ValidationMisconfigured:
				logger.Error("mutation validation misconfigured", append(fields, zap.Error(e.Err))...)
			case events.ValidationFailed:
				logger.Warn("mutation validation failed", append(fields, zap.Error(e.Err))...)
			}
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func requestFields(ctx context.Context) []zap.Field {
	if id, ok := reqid.FromContext(ctx); ok {
		return []zap.Field{zap.String("request_id", id)}
	}
	return nil
}
