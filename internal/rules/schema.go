package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/hanpama/gqlvalid/internal/validation"
)

// Schema is an ordered set of argument rules. It implements validation.Schema.
type Schema struct {
	validate *validator.Validate
	rules    []*Rule
}

var _ validation.Schema = (*Schema)(nil)

var defaultValidator = NewValidator()

// New returns a Schema checking rules in order.
func New(rules ...*Rule) *Schema {
	return &Schema{validate: defaultValidator, rules: rules}
}

// WithValidator makes s use v, for custom tags registered on it.
func (s *Schema) WithValidator(v *validator.Validate) *Schema {
	s.validate = v
	return s
}

// Validate applies every rule in order to a copy of args. Failures are
// collected per rule unless opts.AbortEarly is set, and reported as a
// *validation.ValidationError whose Inner entries carry the argument path.
func (s *Schema) Validate(ctx context.Context, args map[string]any, opts validation.ValidateOptions) (map[string]any, error) {
	out := copyMap(args)
	var failures []*validation.ValidationError

	for _, r := range s.rules {
		v, ok := lookup(out, r.path)
		if (!ok || v == nil) && r.hasDefault {
			v, ok = r.def, true
		}
		if ok && v != nil {
			v = r.apply(v)
		}
		if ok {
			assign(out, r.path, v)
		}
		if r.tags == "" || (v == nil && !r.required()) {
			continue
		}

		err := s.validate.VarCtx(ctx, v, r.tags)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, errors.Wrapf(err, "validate %s", r.path)
		}
		for _, fe := range fieldErrs {
			failures = append(failures, &validation.ValidationError{
				Path:    r.path,
				Message: msgForFieldError(r.path, fe),
			})
			if opts.AbortEarly {
				break
			}
		}
		if opts.AbortEarly {
			break
		}
	}

	if len(failures) > 0 {
		msg := failures[0].Message
		if len(failures) > 1 {
			msg = fmt.Sprintf("%d errors occurred", len(failures))
		}
		return nil, &validation.ValidationError{Message: msg, Inner: failures}
	}

	if opts.StripUnknown {
		strip(out, s.knownPaths())
	}
	return out, nil
}

type pathTree map[string]pathTree

func (s *Schema) knownPaths() pathTree {
	root := pathTree{}
	for _, r := range s.rules {
		node := root
		for _, seg := range strings.Split(r.path, ".") {
			next, ok := node[seg]
			if !ok {
				next = pathTree{}
				node[seg] = next
			}
			node = next
		}
	}
	return root
}
