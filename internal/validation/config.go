package validation

import (
	"context"

	schema "github.com/hanpama/gqlvalid/internal/schema"
)

// Schema validates mutation arguments and returns their transformed values.
// A nil map means the arguments are used as given. On invalid input it returns
// an error carrying a *ValidationError; any other error is passed through
// unchanged.
type Schema interface {
	Validate(ctx context.Context, args map[string]any, opts ValidateOptions) (map[string]any, error)
}

// SchemaFunc adapts a function to Schema.
type SchemaFunc func(ctx context.Context, args map[string]any, opts ValidateOptions) (map[string]any, error)

func (f SchemaFunc) Validate(ctx context.Context, args map[string]any, opts ValidateOptions) (map[string]any, error) {
	return f(ctx, args, opts)
}

// SchemaSource is either a fixed Schema or a function choosing one per call.
// The zero value is unset.
type SchemaSource struct {
	static Schema
	lazy   func(ctx context.Context, inv Invocation) (Schema, error)
}

// Static uses s for every invocation.
func Static(s Schema) SchemaSource { return SchemaSource{static: s} }

// Lazy calls fn on every invocation to obtain the schema.
func Lazy(fn func(ctx context.Context, inv Invocation) (Schema, error)) SchemaSource {
	return SchemaSource{lazy: fn}
}

// IsSet reports whether a schema or schema function was provided.
func (s SchemaSource) IsSet() bool { return s.static != nil || s.lazy != nil }

func (s SchemaSource) resolve(ctx context.Context, inv Invocation) (Schema, error) {
	if s.lazy != nil {
		return s.lazy(ctx, inv)
	}
	return s.static, nil
}

// Config is the validation declaration of one mutation field.
type Config struct {
	Schema SchemaSource
	// Options override the middleware-wide options for this field.
	Options *Options
}

// ExtensionKey is the field extension under which Config is stored.
const ExtensionKey = "validation"

// Attach stores cfg in the extension bag of f.
func Attach(f *schema.Field, cfg Config) *schema.Field {
	return f.SetExtension(ExtensionKey, cfg)
}

// ConfigSource finds the Config of a field of parent.
type ConfigSource interface {
	Lookup(parent *schema.Type, field *schema.Field) (Config, bool)
}

// ExtensionSource reads Config (or *Config) from the field's extension bag.
type ExtensionSource struct {
	// Key defaults to ExtensionKey.
	Key string
}

func (s ExtensionSource) Lookup(_ *schema.Type, field *schema.Field) (Config, bool) {
	key := s.Key
	if key == "" {
		key = ExtensionKey
	}
	v, ok := field.Extension(key)
	if !ok {
		return Config{}, false
	}
	switch cfg := v.(type) {
	case Config:
		return cfg, true
	case *Config:
		if cfg == nil {
			return Config{}, false
		}
		return *cfg, true
	}
	return Config{}, false
}

// TableSource holds configs registered by field name outside the schema.
type TableSource map[string]Config

func (s TableSource) Lookup(_ *schema.Type, field *schema.Field) (Config, bool) {
	if field == nil {
		return Config{}, false
	}
	cfg, ok := s[field.Name]
	return cfg, ok
}

// ChainSource returns the first match in order.
type ChainSource []ConfigSource

func (s ChainSource) Lookup(parent *schema.Type, field *schema.Field) (Config, bool) {
	for _, src := range s {
		if cfg, ok := src.Lookup(parent, field); ok {
			return cfg, true
		}
	}
	return Config{}, false
}
