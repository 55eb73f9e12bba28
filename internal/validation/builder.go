package validation

import "context"

// BuildMutationValidationError groups the immediate inner failures of verr by
// path. Paths keep the order of their first failure and messages keep
// encounter order.
func BuildMutationValidationError(verr *ValidationError) MutationValidationError {
	out := MutationValidationError{Message: verr.Message, Details: []FieldValidationError{}}
	index := make(map[string]int)
	for _, inner := range verr.Inner {
		if inner == nil {
			continue
		}
		i, ok := index[inner.Path]
		if !ok {
			i = len(out.Details)
			index[inner.Path] = i
			out.Details = append(out.Details, FieldValidationError{Field: inner.Path, Errors: []string{}})
		}
		out.Details[i].Errors = append(out.Details[i].Errors, inner.Message)
	}
	return out
}

// DefaultErrorPayloadBuilder returns {"error": MutationValidationError}.
func DefaultErrorPayloadBuilder(_ context.Context, verr *ValidationError, _ Invocation) (any, error) {
	return map[string]any{"error": BuildMutationValidationError(verr)}, nil
}
