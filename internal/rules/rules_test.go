package rules

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/gqlvalid/internal/validation"
)

func addUserSchema() *Schema {
	return New(
		Arg("firstName").Trim().Rules("min=1"),
		Arg("lastName").Trim(),
		Arg("age").Rules("gte=18,lte=100"),
	)
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	args := map[string]any{"firstName": "  ", "lastName": "", "age": 10}

	out, err := addUserSchema().Validate(context.Background(), args, validation.ValidateOptions{})
	require.Nil(t, out)

	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	want := &validation.ValidationError{
		Message: "2 errors occurred",
		Inner: []*validation.ValidationError{
			{Path: "firstName", Message: "firstName must be at least 1 characters"},
			{Path: "age", Message: "age must be greater than or equal to 18"},
		},
	}
	if diff := cmp.Diff(want, verr); diff != "" {
		t.Fatalf("validation error mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_AbortEarly(t *testing.T) {
	args := map[string]any{"firstName": "", "age": 10}

	_, err := addUserSchema().Validate(context.Background(), args, validation.ValidateOptions{AbortEarly: true})

	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, "firstName must be at least 1 characters", verr.Message)
	require.Len(t, verr.Inner, 1)
}

func TestValidate_ReturnsTransformedCopy(t *testing.T) {
	args := map[string]any{
		"firstName": "  Jon ",
		"lastName":  " Doe",
		"age":       18,
		"input":     map[string]any{"email": " JON@EXAMPLE.COM "},
	}
	s := New(
		Arg("firstName").Trim().Rules("min=1"),
		Arg("lastName").Trim(),
		Arg("age").Rules("gte=18,lte=100"),
		Arg("input.email").Trim().Lower().Rules("required,email"),
		Arg("input.role").Default("MEMBER").Rules("oneof=MEMBER ADMIN"),
	)

	out, err := s.Validate(context.Background(), args, validation.ValidateOptions{})
	require.NoError(t, err)

	want := map[string]any{
		"firstName": "Jon",
		"lastName":  "Doe",
		"age":       18,
		"input":     map[string]any{"email": "jon@example.com", "role": "MEMBER"},
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "  Jon ", args["firstName"])
	require.Equal(t, map[string]any{"email": " JON@EXAMPLE.COM "}, args["input"])
}

func TestValidate_OptionalAndRequired(t *testing.T) {
	s := New(
		Arg("nickname").Rules("min=3"),
		Arg("email").Rules("required,email"),
	)

	_, err := s.Validate(context.Background(), map[string]any{}, validation.ValidateOptions{})
	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, []*validation.ValidationError{{Path: "email", Message: "email is a required field"}}, verr.Inner)
	require.Equal(t, "email is a required field", verr.Message)
}

func TestValidate_StripUnknown(t *testing.T) {
	s := New(
		Arg("name").Rules("required"),
		Arg("input.email").Rules("email"),
	)
	args := map[string]any{
		"name":  "x",
		"extra": true,
		"input": map[string]any{"email": "a@b.co", "debug": 1},
	}

	out, err := s.Validate(context.Background(), args, validation.ValidateOptions{StripUnknown: true})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"name": "x", "input": map[string]any{"email": "a@b.co"}}, out)

	out, err = s.Validate(context.Background(), args, validation.ValidateOptions{})
	require.NoError(t, err)
	require.Equal(t, args, out)
}

func TestValidate_CustomValidator(t *testing.T) {
	v := NewValidator()
	require.NoError(t, v.RegisterValidation("even", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%2 == 0
	}))
	s := New(Arg("count").Rules("even")).WithValidator(v)

	_, err := s.Validate(context.Background(), map[string]any{"count": 3}, validation.ValidateOptions{})
	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	require.Equal(t, "count is invalid", verr.Message)

	_, err = s.Validate(context.Background(), map[string]any{"count": 4}, validation.ValidateOptions{})
	require.NoError(t, err)
}

func TestMsgForFieldError(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		value any
		tags  string
		want  string
	}{
		{value: "", tags: "not_empty", want: "name is a required field"},
		{value: "ab", tags: "max=1", want: "name must be at most 1 characters"},
		{value: 5, tags: "lt=3", want: "name must be less than 3"},
		{value: "x", tags: "oneof=a b", want: "name must be one of the following values: a, b"},
		{value: []any{1}, tags: "min=2", want: "name must have at least 2 items"},
		{value: "nope", tags: "email", want: "name must be a valid email"},
	}
	for _, tc := range cases {
		err := v.Var(tc.value, tc.tags)
		var fieldErrs validator.ValidationErrors
		require.ErrorAs(t, err, &fieldErrs, tc.tags)
		require.Equal(t, tc.want, msgForFieldError("name", fieldErrs[0]))
	}
}
