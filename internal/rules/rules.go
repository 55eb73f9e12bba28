// Package rules validates mutation arguments with go-playground/validator.
//
// A Schema is an ordered list of argument rules. Each rule addresses one
// argument by a dotted path ("input.firstName"), may transform the value
// (trim, lowercase, default) and checks the result against validator tags:
//
//	rules.New(
//		rules.Arg("firstName").Trim().Rules("min=1"),
//		rules.Arg("age").Rules("gte=18,lte=100"),
//	)
//
// Transformed values are returned from Validate, never written back to the
// caller's arguments.
package rules

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns the validator used when no other is supplied.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterAlias("not_empty", "required")
	return validate
}

// Rule checks the argument at one path.
type Rule struct {
	path       string
	transforms []func(any) any
	def        any
	hasDefault bool
	tags       string
}

// Arg starts a rule for the argument at path.
func Arg(path string) *Rule { return &Rule{path: path} }

// Trim removes leading and trailing white space from string values.
func (r *Rule) Trim() *Rule {
	r.transforms = append(r.transforms, mapString(strings.TrimSpace))
	return r
}

// Lower lowercases string values.
func (r *Rule) Lower() *Rule {
	r.transforms = append(r.transforms, mapString(strings.ToLower))
	return r
}

// Default substitutes v when the argument is absent or null.
func (r *Rule) Default(v any) *Rule {
	r.def, r.hasDefault = v, true
	return r
}

// Rules sets the validator tags, e.g. "required,min=1".
func (r *Rule) Rules(tags string) *Rule {
	r.tags = tags
	return r
}

func (r *Rule) Path() string { return r.path }

// required reports whether a null value must still be checked.
func (r *Rule) required() bool {
	for _, tag := range strings.Split(r.tags, ",") {
		if strings.HasPrefix(tag, "required") || tag == "not_empty" {
			return true
		}
	}
	return false
}

func (r *Rule) apply(v any) any {
	for _, t := range r.transforms {
		v = t(v)
	}
	return v
}

func mapString(fn func(string) string) func(any) any {
	return func(v any) any {
		if s, ok := v.(string); ok {
			return fn(s)
		}
		return v
	}
}
