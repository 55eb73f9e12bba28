package validation

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError is the failure tree a Schema reports for invalid arguments.
// Inner holds per-path failures; each may nest further.
type ValidationError struct {
	Message string
	// Path names the offending argument, e.g. "input.firstName". Empty at
	// the root of the tree.
	Path  string
	Inner []*ValidationError
}

func (e *ValidationError) Error() string { return e.Message }

// AsValidationError reports whether err carries a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// MisconfiguredCode is the GraphQL error extension code of a ConfigError.
const MisconfiguredCode = "VALIDATION_MISCONFIGURED"

// ConfigError reports a schema author mistake detected while resolving a
// mutation, such as a missing validation schema or an unsupported payload
// type. It is never turned into a validation payload.
type ConfigError struct {
	// Field is the qualified mutation field, e.g. "Mutation.addUser".
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("validation misconfigured on %s: %s", e.Field, e.Reason)
}

// Extensions exposes the error code to GraphQL responses.
func (e *ConfigError) Extensions() map[string]any {
	return map[string]any{"code": MisconfiguredCode, "field": e.Field}
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
