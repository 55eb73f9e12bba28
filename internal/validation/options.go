package validation

import (
	"context"

	executor "github.com/hanpama/gqlvalid/internal/executor"
)

// Invocation is the per-call data handed to lazy schemas and payload builders.
type Invocation struct {
	Root any
	Args map[string]any
	Info *executor.ResolveInfo
}

// ErrorPayloadBuilder maps a validation failure to the mutation's result value.
type ErrorPayloadBuilder func(ctx context.Context, verr *ValidationError, inv Invocation) (any, error)

// ValidateOptions are forwarded verbatim to Schema.Validate.
type ValidateOptions struct {
	// AbortEarly stops at the first failing rule instead of collecting all.
	AbortEarly bool
	// StripUnknown drops arguments the schema has no rules for.
	StripUnknown bool
}

// Options configure the interceptor. A nil field is unset at that layer and
// falls through to the layer below.
type Options struct {
	ErrorPayloadBuilder ErrorPayloadBuilder
	// ShouldTransformArgs passes the validator's output to the resolver
	// instead of the raw arguments.
	ShouldTransformArgs *bool
	ValidateOptions     *ValidateOptions
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// DefaultOptions returns the bottom layer of every merge.
func DefaultOptions() Options {
	return Options{
		ErrorPayloadBuilder: DefaultErrorPayloadBuilder,
		ShouldTransformArgs: Bool(true),
		ValidateOptions:     &ValidateOptions{AbortEarly: false},
	}
}

// MergeOptions combines layers from lowest to highest precedence. Each set
// field of a later layer replaces the earlier value; ValidateOptions is
// replaced whole, never merged field by field.
func MergeOptions(layers ...Options) Options {
	var out Options
	for _, l := range layers {
		if l.ErrorPayloadBuilder != nil {
			out.ErrorPayloadBuilder = l.ErrorPayloadBuilder
		}
		if l.ShouldTransformArgs != nil {
			out.ShouldTransformArgs = l.ShouldTransformArgs
		}
		if l.ValidateOptions != nil {
			out.ValidateOptions = l.ValidateOptions
		}
	}
	return out
}

func (o Options) transformArgs() bool {
	return o.ShouldTransformArgs == nil || *o.ShouldTransformArgs
}

func (o Options) validateOptions() ValidateOptions {
	if o.ValidateOptions == nil {
		return ValidateOptions{}
	}
	return *o.ValidateOptions
}
