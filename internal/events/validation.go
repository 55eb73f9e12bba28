package events

import "time"

// ValidationOutcome classifies how an intercepted mutation field ended.
type ValidationOutcome string

const (
	// ValidationSkipped means the field has no validation configured.
	ValidationSkipped ValidationOutcome = "skipped"
	// ValidationPassed means arguments were valid and the resolver ran.
	ValidationPassed ValidationOutcome = "passed"
	// ValidationInvalid means the error payload was returned as the result.
	ValidationInvalid ValidationOutcome = "invalid"
	// ValidationMisconfigured means a configuration error was raised.
	ValidationMisconfigured ValidationOutcome = "misconfigured"
	// ValidationFailed means the validator failed for another reason.
	ValidationFailed ValidationOutcome = "failed"
)

// MutationValidated is emitted after the validation step of a mutation field.
type MutationValidated struct {
	// Field is the qualified field name, e.g. "Mutation.addUser".
	Field   string
	Outcome ValidationOutcome
	// Violations counts the failing argument paths for invalid outcomes.
	Violations int
	Err        error
	Duration   time.Duration
}
