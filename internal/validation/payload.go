package validation

import schema "github.com/hanpama/gqlvalid/internal/schema"

const (
	FieldValidationErrorTypeName    = "FieldValidationError"
	MutationValidationErrorTypeName = "MutationValidationError"
)

// FieldValidationError lists every message reported for one argument path.
type FieldValidationError struct {
	Field  string   `json:"field"`
	Errors []string `json:"errors"`
}

// MutationValidationError is the structured payload of the default builder.
// Details is empty, never nil, when the failure has no per-path entries.
type MutationValidationError struct {
	Message string                 `json:"message"`
	Details []FieldValidationError `json:"details"`
}

// SDL definitions of the payload types, for schemas assembled from text.
const (
	FieldValidationErrorSDL = `type FieldValidationError {
  field: String!
  errors: [String!]!
}
`
	MutationValidationErrorSDL = `type MutationValidationError {
  message: String!
  details: [FieldValidationError!]!
}
`
	PayloadSDL = FieldValidationErrorSDL + "\n" + MutationValidationErrorSDL
)

// FieldValidationErrorType returns a fresh descriptor of FieldValidationError.
func FieldValidationErrorType() *schema.Type {
	return schema.NewType(FieldValidationErrorTypeName, schema.TypeKindObject, "").
		AddField(schema.NewField("field", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("errors", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("String"))))))
}

// MutationValidationErrorType returns a fresh descriptor of MutationValidationError.
func MutationValidationErrorType() *schema.Type {
	return schema.NewType(MutationValidationErrorTypeName, schema.TypeKindObject, "").
		AddField(schema.NewField("message", "", schema.NonNullType(schema.NamedType("String")))).
		AddField(schema.NewField("details", "", schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(FieldValidationErrorTypeName))))))
}

// RegisterPayloadTypes adds both payload types to sch.
func RegisterPayloadTypes(sch *schema.Schema) *schema.Schema {
	return sch.AddType(FieldValidationErrorType()).AddType(MutationValidationErrorType())
}
