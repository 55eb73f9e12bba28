package validation

import (
	"context"
	"time"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
	executor "github.com/hanpama/gqlvalid/internal/executor"
	schema "github.com/hanpama/gqlvalid/internal/schema"
)

// Middleware validates mutation arguments before the mutation resolver runs.
// It is read-only after New and safe for concurrent use.
type Middleware struct {
	options Options
	table   TableSource
	source  ConfigSource
	logger  *zap.Logger
	bus     *eventbus.Bus
}

type Option func(*Middleware)

// WithOptions sets the middleware-wide options, layered between the defaults
// and each field's own options.
func WithOptions(o Options) Option { return func(m *Middleware) { m.options = o } }

// WithFieldConfig registers cfg for the mutation field name without touching
// the schema. A Config in the field's extension bag takes precedence.
func WithFieldConfig(field string, cfg Config) Option {
	return func(m *Middleware) { m.table[field] = cfg }
}

// WithConfigSource replaces the default lookup (extension bag, then the
// WithFieldConfig table).
func WithConfigSource(src ConfigSource) Option { return func(m *Middleware) { m.source = src } }

func WithLogger(l *zap.Logger) Option { return func(m *Middleware) { m.logger = l } }

// WithEventBus publishes outcomes to b instead of the global bus.
func WithEventBus(b *eventbus.Bus) Option { return func(m *Middleware) { m.bus = b } }

func New(opts ...Option) *Middleware {
	m := &Middleware{table: TableSource{}, logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	if m.source == nil {
		m.source = ChainSource{ExtensionSource{}, m.table}
	}
	return m
}

// Apply wraps rt so that every mutation field of sch goes through a new
// Middleware built from opts.
func Apply(rt executor.Runtime, sch *schema.Schema, opts ...Option) (executor.Runtime, error) {
	return executor.ApplyMiddleware(rt, sch, New(opts...))
}

// Mutation implements executor.MutationMiddleware.
func (m *Middleware) Mutation(ctx context.Context, root any, args map[string]any, info *executor.ResolveInfo, next executor.FieldResolver) (any, error) {
	ev := events.MutationValidated{Field: qualifiedName(info)}
	v, err := m.intercept(ctx, root, args, info, next, &ev)
	m.report(ctx, ev)
	return v, err
}

func (m *Middleware) intercept(ctx context.Context, root any, args map[string]any, info *executor.ResolveInfo, next executor.FieldResolver, ev *events.MutationValidated) (any, error) {
	ev.Outcome = events.ValidationSkipped
	if info == nil || info.Schema == nil {
		return next(ctx, root, args, info)
	}
	mutationType := info.Schema.GetMutationType()
	if mutationType == nil {
		return next(ctx, root, args, info)
	}
	cfg, ok := m.source.Lookup(mutationType, mutationType.GetField(info.FieldName))
	if !ok {
		return next(ctx, root, args, info)
	}

	if !cfg.Schema.IsSet() {
		return m.misconfigured(ev, configErrorf(ev.Field, "validation schema is not set"))
	}

	var fieldOpts Options
	if cfg.Options != nil {
		fieldOpts = *cfg.Options
	}
	opts := MergeOptions(DefaultOptions(), m.options, fieldOpts)
	customBuilder := m.options.ErrorPayloadBuilder != nil || fieldOpts.ErrorPayloadBuilder != nil

	inv := Invocation{Root: root, Args: args, Info: info}
	sch, err := cfg.Schema.resolve(ctx, inv)
	if err != nil {
		ev.Outcome, ev.Err = events.ValidationFailed, err
		return nil, err
	}
	if sch == nil {
		return m.misconfigured(ev, configErrorf(ev.Field, "schema function returned no schema"))
	}

	start := time.Now()
	out, err := sch.Validate(ctx, args, opts.validateOptions())
	ev.Duration = time.Since(start)

	if err == nil {
		ev.Outcome = events.ValidationPassed
		effective := args
		if opts.transformArgs() && out != nil {
			effective = out
		}
		return next(ctx, root, effective, info)
	}

	verr, ok := AsValidationError(err)
	if !ok {
		ev.Outcome, ev.Err = events.ValidationFailed, err
		return nil, err
	}
	ev.Outcome, ev.Violations = events.ValidationInvalid, countPaths(verr)

	payload, err := opts.ErrorPayloadBuilder(ctx, verr, inv)
	if err != nil {
		ev.Outcome, ev.Err = events.ValidationFailed, err
		return nil, err
	}
	if customBuilder {
		return payload, nil
	}

	shorthand, cerr := checkPayloadType(ev.Field, info)
	if cerr != nil {
		return m.misconfigured(ev, cerr)
	}
	if shorthand {
		return map[string]any{"error": verr.Message}, nil
	}
	return payload, nil
}

// checkPayloadType verifies that the field's return type can hold the default
// payload. It reports whether the error field is a plain String.
func checkPayloadType(field string, info *executor.ResolveInfo) (bool, *ConfigError) {
	ret := info.ReturnType
	if schema.IsNonNull(ret) {
		ret = ret.Unwrap()
	}
	var payloadType *schema.Type
	if ret != nil && ret.Kind == schema.TypeRefKindNamed {
		payloadType = info.Schema.Types[ret.Named]
	}
	if !payloadType.IsObject() {
		return false, configErrorf(field, "only object return types are supported, got %s", ret.String())
	}

	errField := payloadType.GetField("error")
	if errField == nil {
		return false, configErrorf(field, "payload type %s must declare an error field to use the default error payload builder", payloadType.Name)
	}
	t := errField.Type
	if t.Kind == schema.TypeRefKindNamed {
		if t.Named == "String" {
			return true, nil
		}
		if et := info.Schema.Types[t.Named]; et.IsObject() && et.Name == MutationValidationErrorTypeName {
			return false, nil
		}
	}
	return false, configErrorf(field, "error field of %s must be String or %s, got %s", payloadType.Name, MutationValidationErrorTypeName, t.String())
}

func (m *Middleware) misconfigured(ev *events.MutationValidated, err *ConfigError) (any, error) {
	ev.Outcome, ev.Err = events.ValidationMisconfigured, err
	return nil, err
}

func (m *Middleware) report(ctx context.Context, ev events.MutationValidated) {
	switch ev.Outcome {
	case events.ValidationInvalid:
		m.logger.Debug("mutation arguments rejected",
			zap.String("field", ev.Field),
			zap.Int("violations", ev.Violations))
	case events.ValidationMisconfigured:
		m.logger.Error("mutation validation misconfigured",
			zap.String("field", ev.Field),
			zap.Error(ev.Err))
	case events.ValidationFailed:
		m.logger.Warn("mutation validation failed",
			zap.String("field", ev.Field),
			zap.Error(ev.Err))
	}
	bus := m.bus
	if bus == nil {
		bus = eventbus.Current()
	}
	eventbus.Emit(ctx, bus, ev)
}

func qualifiedName(info *executor.ResolveInfo) string {
	if info == nil {
		return ""
	}
	if info.ParentType != nil {
		return info.ParentType.Name + "." + info.FieldName
	}
	return info.FieldName
}

func countPaths(verr *ValidationError) int {
	seen := make(map[string]struct{}, len(verr.Inner))
	for _, inner := range verr.Inner {
		if inner != nil {
			seen[inner.Path] = struct{}{}
		}
	}
	return len(seen)
}
