package validation

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/gqlvalid/internal/eventbus"
	events "github.com/hanpama/gqlvalid/internal/events"
	executor "github.com/hanpama/gqlvalid/internal/executor"
	schema "github.com/hanpama/gqlvalid/internal/schema"
)

const testSDL = `
type User {
  id: Int!
  firstName: String!
}

type AddUserPayload {
  error: String
  user: User
}

type AddUserObjectPayload {
  error: MutationValidationError
  user: User
}

type NoErrorPayload {
  user: User
}

type WrongErrorPayload {
  error: User
}

type StrictErrorPayload {
  error: String!
  user: User
}

type Query {
  hello: String
}

type Mutation {
  addUser(firstName: String!): AddUserPayload!
  addUserObject(firstName: String!): AddUserObjectPayload!
  noError(firstName: String!): NoErrorPayload!
  wrongError(firstName: String!): WrongErrorPayload
  strictError(firstName: String!): StrictErrorPayload
  toggle(firstName: String!): Boolean
}
`

func newTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(testSDL, PayloadSDL)
	require.NoError(t, err)
	return sch
}

func infoFor(sch *schema.Schema, field string) *executor.ResolveInfo {
	mt := sch.GetMutationType()
	f := mt.GetField(field)
	return &executor.ResolveInfo{Schema: sch, ParentType: mt, FieldName: field, Field: f, ReturnType: f.Type}
}

type recorder struct {
	calls int
	args  map[string]any
}

func (r *recorder) next(_ context.Context, _ any, args map[string]any, _ *executor.ResolveInfo) (any, error) {
	r.calls++
	r.args = args
	return "resolved", nil
}

func failWith(err error) Schema {
	return SchemaFunc(func(context.Context, map[string]any, ValidateOptions) (map[string]any, error) {
		return nil, err
	})
}

// trimSchema trims every string argument and rejects empty results.
func trimSchema() Schema {
	return SchemaFunc(func(_ context.Context, args map[string]any, _ ValidateOptions) (map[string]any, error) {
		out := make(map[string]any, len(args))
		verr := &ValidationError{}
		for k, v := range args {
			if s, ok := v.(string); ok {
				v = strings.TrimSpace(s)
				if v == "" {
					verr.Inner = append(verr.Inner, &ValidationError{Path: k, Message: k + " is required"})
				}
			}
			out[k] = v
		}
		if len(verr.Inner) > 0 {
			verr.Message = verr.Inner[0].Message
			return nil, verr
		}
		return out, nil
	})
}

var twoFailures = &ValidationError{
	Message: "2 errors occurred",
	Inner: []*ValidationError{
		{Path: "firstName", Message: "firstName must be at least 1 characters"},
		{Path: "age", Message: "age must be 18 or greater"},
	},
}

func TestMutation_WithoutConfigCallsResolver(t *testing.T) {
	sch := newTestSchema(t)
	rec := &recorder{}
	args := map[string]any{"firstName": "  Ada "}

	got, err := New().Mutation(context.Background(), nil, args, infoFor(sch, "addUser"), rec.next)

	require.NoError(t, err)
	require.Equal(t, "resolved", got)
	require.Equal(t, 1, rec.calls)
	require.Equal(t, args, rec.args)
}

func TestMutation_WithoutMutationTypeCallsResolver(t *testing.T) {
	sch := newTestSchema(t)
	info := infoFor(sch, "addUser")
	sch.MutationType = ""
	rec := &recorder{}

	got, err := New().Mutation(context.Background(), nil, nil, info, rec.next)
	require.NoError(t, err)
	require.Equal(t, "resolved", got)
}

func TestMutation_MissingSchemaIsConfigError(t *testing.T) {
	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUser"), Config{})
	rec := &recorder{}

	_, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), rec.next)

	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, "Mutation.addUser", cerr.Field)
	require.Equal(t, map[string]any{"code": MisconfiguredCode, "field": "Mutation.addUser"}, cerr.Extensions())
	require.Zero(t, rec.calls)
}

func TestMutation_StringErrorShorthand(t *testing.T) {
	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUser"), Config{Schema: Static(failWith(twoFailures))})
	rec := &recorder{}

	got, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), rec.next)

	require.NoError(t, err)
	require.Equal(t, map[string]any{"error": "2 errors occurred"}, got)
	require.Zero(t, rec.calls)
}

func TestMutation_StructuredErrorPayload(t *testing.T) {
	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUserObject"), Config{Schema: Static(failWith(twoFailures))})

	got, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUserObject"), (&recorder{}).next)
	require.NoError(t, err)

	want := map[string]any{"error": MutationValidationError{
		Message: "2 errors occurred",
		Details: []FieldValidationError{
			{Field: "firstName", Errors: []string{"firstName must be at least 1 characters"}},
			{Field: "age", Errors: []string{"age must be 18 or greater"}},
		},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestMutation_IdempotentErrorPayload(t *testing.T) {
	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUserObject"), Config{Schema: Static(failWith(twoFailures))})
	mw := New()
	args := map[string]any{"firstName": ""}

	first, err := mw.Mutation(context.Background(), nil, args, infoFor(sch, "addUserObject"), (&recorder{}).next)
	require.NoError(t, err)
	second, err := mw.Mutation(context.Background(), nil, args, infoFor(sch, "addUserObject"), (&recorder{}).next)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("payload changed between calls (-first +second):\n%s", diff)
	}
	require.Equal(t, map[string]any{"firstName": ""}, args)
}

func TestMutation_PayloadTypeChecks(t *testing.T) {
	cases := []struct {
		field  string
		reason string
	}{
		{field: "noError", reason: "payload type NoErrorPayload must declare an error field"},
		{field: "wrongError", reason: "error field of WrongErrorPayload must be String or MutationValidationError, got User"},
		{field: "strictError", reason: "error field of StrictErrorPayload must be String or MutationValidationError, got String!"},
		{field: "toggle", reason: "only object return types are supported, got Boolean"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			sch := newTestSchema(t)
			Attach(sch.GetMutationType().GetField(tc.field), Config{Schema: Static(failWith(twoFailures))})

			got, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, tc.field), (&recorder{}).next)

			require.Nil(t, got)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			require.Equal(t, "Mutation."+tc.field, cerr.Field)
			require.Contains(t, cerr.Reason, tc.reason)
		})
	}
}

func TestMutation_CustomBuilderSkipsPayloadChecks(t *testing.T) {
	custom := func(_ context.Context, verr *ValidationError, inv Invocation) (any, error) {
		return map[string]any{"errors": []string{verr.Message, inv.Info.FieldName}}, nil
	}
	want := map[string]any{"errors": []string{"2 errors occurred", "noError"}}

	t.Run("global", func(t *testing.T) {
		sch := newTestSchema(t)
		Attach(sch.GetMutationType().GetField("noError"), Config{Schema: Static(failWith(twoFailures))})
		mw := New(WithOptions(Options{ErrorPayloadBuilder: custom}))

		got, err := mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "noError"), (&recorder{}).next)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("field", func(t *testing.T) {
		sch := newTestSchema(t)
		Attach(sch.GetMutationType().GetField("noError"), Config{
			Schema:  Static(failWith(twoFailures)),
			Options: &Options{ErrorPayloadBuilder: custom},
		})

		got, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "noError"), (&recorder{}).next)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}

func TestMutation_TransformArgs(t *testing.T) {
	args := map[string]any{"firstName": "  Ada  "}

	t.Run("enabled by default", func(t *testing.T) {
		sch := newTestSchema(t)
		Attach(sch.GetMutationType().GetField("addUser"), Config{Schema: Static(trimSchema())})
		rec := &recorder{}

		_, err := New().Mutation(context.Background(), nil, args, infoFor(sch, "addUser"), rec.next)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"firstName": "Ada"}, rec.args)
		require.Equal(t, "  Ada  ", args["firstName"], "input arguments are not mutated")
	})

	t.Run("disabled", func(t *testing.T) {
		sch := newTestSchema(t)
		Attach(sch.GetMutationType().GetField("addUser"), Config{
			Schema:  Static(trimSchema()),
			Options: &Options{ShouldTransformArgs: Bool(false)},
		})
		rec := &recorder{}

		_, err := New().Mutation(context.Background(), nil, args, infoFor(sch, "addUser"), rec.next)
		require.NoError(t, err)
		require.Equal(t, args, rec.args)
	})
}

func TestMutation_FieldOptionsOverrideGlobal(t *testing.T) {
	sch := newTestSchema(t)
	var seen ValidateOptions
	capture := SchemaFunc(func(_ context.Context, args map[string]any, opts ValidateOptions) (map[string]any, error) {
		seen = opts
		return map[string]any{"firstName": "from validator"}, nil
	})
	Attach(sch.GetMutationType().GetField("addUser"), Config{
		Schema:  Static(capture),
		Options: &Options{ShouldTransformArgs: Bool(false)},
	})
	mw := New(WithOptions(Options{
		ShouldTransformArgs: Bool(true),
		ValidateOptions:     &ValidateOptions{AbortEarly: true},
	}))
	rec := &recorder{}
	args := map[string]any{"firstName": "raw"}

	_, err := mw.Mutation(context.Background(), nil, args, infoFor(sch, "addUser"), rec.next)
	require.NoError(t, err)
	require.Equal(t, ValidateOptions{AbortEarly: true}, seen, "global keys without a field override still apply")
	require.Equal(t, args, rec.args, "field-level ShouldTransformArgs wins")
}

func TestMutation_LazySchema(t *testing.T) {
	sch := newTestSchema(t)
	var gotInv Invocation
	Attach(sch.GetMutationType().GetField("addUser"), Config{
		Schema: Lazy(func(_ context.Context, inv Invocation) (Schema, error) {
			gotInv = inv
			return trimSchema(), nil
		}),
	})
	info := infoFor(sch, "addUser")
	rec := &recorder{}

	_, err := New().Mutation(context.Background(), "root", map[string]any{"firstName": " x "}, info, rec.next)
	require.NoError(t, err)
	require.Equal(t, "root", gotInv.Root)
	require.Same(t, info, gotInv.Info)
	require.Equal(t, map[string]any{"firstName": "x"}, rec.args)
}

func TestMutation_LazySchemaErrorPropagates(t *testing.T) {
	sch := newTestSchema(t)
	boom := errors.New("schema lookup failed")
	Attach(sch.GetMutationType().GetField("addUser"), Config{
		Schema: Lazy(func(context.Context, Invocation) (Schema, error) { return nil, boom }),
	})

	_, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), (&recorder{}).next)
	require.Same(t, boom, err)
}

func TestMutation_UnrecognizedValidatorErrorIsReturnedUnchanged(t *testing.T) {
	sch := newTestSchema(t)
	boom := errors.New("validator crashed")
	Attach(sch.GetMutationType().GetField("addUser"), Config{Schema: Static(failWith(boom))})
	rec := &recorder{}

	_, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), rec.next)
	require.Same(t, boom, err)
	require.Zero(t, rec.calls)
}

func TestMutation_WrappedValidationErrorIsRecognized(t *testing.T) {
	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUser"), Config{
		Schema: Static(failWith(errors.Wrap(twoFailures, "validate"))),
	})

	got, err := New().Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), (&recorder{}).next)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"error": "2 errors occurred"}, got)
}

func TestMutation_ConfigSources(t *testing.T) {
	fromTable := Config{Schema: Static(failWith(&ValidationError{Message: "from table"}))}
	fromBag := Config{Schema: Static(failWith(&ValidationError{Message: "from extensions"}))}

	t.Run("side table", func(t *testing.T) {
		sch := newTestSchema(t)
		mw := New(WithFieldConfig("addUser", fromTable))
		got, err := mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), (&recorder{}).next)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"error": "from table"}, got)
	})

	t.Run("extension bag first", func(t *testing.T) {
		sch := newTestSchema(t)
		sch.GetMutationType().GetField("addUser").SetExtension(ExtensionKey, &fromBag)
		mw := New(WithFieldConfig("addUser", fromTable))
		got, err := mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), (&recorder{}).next)
		require.NoError(t, err)
		require.Equal(t, map[string]any{"error": "from extensions"}, got)
	})

	t.Run("custom source", func(t *testing.T) {
		sch := newTestSchema(t)
		mw := New(WithConfigSource(ExtensionSource{Key: "rules"}), WithFieldConfig("addUser", fromTable))
		rec := &recorder{}
		_, err := mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), rec.next)
		require.NoError(t, err)
		require.Equal(t, 1, rec.calls)
	})
}

func TestMutation_PublishesOutcome(t *testing.T) {
	bus := eventbus.New()
	var got []events.MutationValidated
	eventbus.On(bus, func(_ context.Context, e events.MutationValidated) { got = append(got, e) })

	sch := newTestSchema(t)
	Attach(sch.GetMutationType().GetField("addUserObject"), Config{Schema: Static(failWith(twoFailures))})
	Attach(sch.GetMutationType().GetField("noError"), Config{Schema: Static(failWith(twoFailures))})
	mw := New(WithEventBus(bus))

	_, _ = mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUser"), (&recorder{}).next)
	_, _ = mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "addUserObject"), (&recorder{}).next)
	_, _ = mw.Mutation(context.Background(), nil, map[string]any{}, infoFor(sch, "noError"), (&recorder{}).next)

	require.Len(t, got, 3)
	require.Equal(t, events.ValidationSkipped, got[0].Outcome)
	require.Equal(t, events.ValidationInvalid, got[1].Outcome)
	require.Equal(t, "Mutation.addUserObject", got[1].Field)
	require.Equal(t, 2, got[1].Violations)
	require.Equal(t, events.ValidationMisconfigured, got[2].Outcome)
	require.Error(t, got[2].Err)
}

func TestApply_RejectsFactory(t *testing.T) {
	sch := newTestSchema(t)
	_, err := executor.ApplyMiddleware(executor.NewMockRuntime(nil), sch, New)
	require.ErrorIs(t, err, executor.ErrMiddlewareFactory)

	rt, err := Apply(executor.NewMockRuntime(nil), sch)
	require.NoError(t, err)
	require.NotNil(t, rt)
}
