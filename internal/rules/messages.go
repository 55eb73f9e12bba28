package rules

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// msgForFieldError renders the message of a failed tag for the argument path.
func msgForFieldError(path string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "not_empty":
		return fmt.Sprintf("%s is a required field", path)
	case "min", "gte":
		switch kindClass(fe.Kind()) {
		case "string":
			return fmt.Sprintf("%s must be at least %s characters", path, fe.Param())
		case "list":
			return fmt.Sprintf("%s must have at least %s items", path, fe.Param())
		}
		return fmt.Sprintf("%s must be greater than or equal to %s", path, fe.Param())
	case "max", "lte":
		switch kindClass(fe.Kind()) {
		case "string":
			return fmt.Sprintf("%s must be at most %s characters", path, fe.Param())
		case "list":
			return fmt.Sprintf("%s must have at most %s items", path, fe.Param())
		}
		return fmt.Sprintf("%s must be less than or equal to %s", path, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", path, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", path, fe.Param())
	case "len":
		if kindClass(fe.Kind()) == "string" {
			return fmt.Sprintf("%s must be exactly %s characters", path, fe.Param())
		}
		return fmt.Sprintf("%s must have exactly %s items", path, fe.Param())
	case "oneof":
		params := strings.Join(strings.Fields(fe.Param()), ", ")
		return fmt.Sprintf("%s must be one of the following values: %s", path, params)
	case "email":
		return fmt.Sprintf("%s must be a valid email", path)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", path)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", path)
	case "alphanum":
		return fmt.Sprintf("%s must contain only letters and digits", path)
	default:
		return fmt.Sprintf("%s is invalid", path)
	}
}

func kindClass(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array, reflect.Map:
		return "list"
	}
	return "number"
}
