// Package validation intercepts mutation resolution to validate arguments
// before the resolver runs.
//
// A mutation field opts in by carrying a Config, either in its extension bag
// (Attach) or registered with WithFieldConfig. Valid arguments, optionally
// replaced by the validator's output, are passed on to the resolver. Invalid
// arguments never reach it: the failure is turned into the field's result by
// the error payload builder, so clients receive it as ordinary data. With the
// default builder the payload type must declare an error field that is either
// String or MutationValidationError.
//
// Mistakes in the schema or configuration surface as *ConfigError and are
// never reported as validation failures.
package validation
