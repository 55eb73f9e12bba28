package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const usersSDL = `
type User {
  id: Int!
  firstName: String!
  friends: [User!] @async
}

type AddUserPayload {
  error: String
  user: User
}

input AddUserInput {
  firstName: String!
  tags: [String!] = ["new"]
}

type Query {
  user(id: Int!): User
}

type Mutation {
  addUser(input: AddUserInput!, notify: Boolean = true, retries: Int = 3): AddUserPayload!
  removeUser(id: Int!): Boolean @deprecated(reason: "use archiveUser")
}
`

func TestBuildFromSDL_RootTypesAndAsync(t *testing.T) {
	sch, err := BuildFromSDL(usersSDL)
	require.NoError(t, err)

	require.Equal(t, "Query", sch.QueryType)
	require.Equal(t, "Mutation", sch.MutationType)
	require.Empty(t, sch.SubscriptionType)

	mutation := sch.GetMutationType()
	require.NotNil(t, mutation)
	require.True(t, mutation.IsObject())

	addUser := mutation.GetField("addUser")
	require.NotNil(t, addUser)
	require.True(t, addUser.Async, "root fields are resolver-backed")

	user := sch.Types["User"]
	require.False(t, user.GetField("firstName").Async)
	require.True(t, user.GetField("friends").Async)
	require.Nil(t, user.GetField("missing"))

	// introspection fields injected by the parser are not part of the model
	require.Nil(t, sch.GetQueryType().GetField("__schema"))
}

func TestBuildFromSDL_TypeRefsAndDefaults(t *testing.T) {
	sch, err := BuildFromSDL(usersSDL)
	require.NoError(t, err)

	addUser := sch.GetMutationType().GetField("addUser")
	if diff := cmp.Diff(NonNullType(NamedType("AddUserPayload")), addUser.Type); diff != "" {
		t.Fatalf("return type mismatch (-want +got):\n%s", diff)
	}

	gotDefaults := map[string]any{}
	for _, arg := range addUser.Arguments {
		gotDefaults[arg.Name] = arg.DefaultValue
	}
	wantDefaults := map[string]any{"input": nil, "notify": true, "retries": 3}
	if diff := cmp.Diff(wantDefaults, gotDefaults); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}

	input := sch.Types["AddUserInput"]
	require.Equal(t, TypeKindInputObject, input.Kind)
	require.Equal(t, []any{"new"}, input.InputFields[1].DefaultValue)

	remove := sch.GetMutationType().GetField("removeUser")
	require.True(t, remove.IsDeprecated)
	require.Equal(t, "use archiveUser", remove.DeprecationReason)
}

func TestBuildFromSDL_MultipleFragments(t *testing.T) {
	sch, err := BuildFromSDL(
		`type Query { ping: String }`,
		`type Mutation { save(name: String!): SavePayload! }`,
		`type SavePayload { error: String }`,
	)
	require.NoError(t, err)
	require.NotNil(t, sch.Types["SavePayload"])
	require.Equal(t, "Mutation", sch.MutationType)
}

func TestBuildFromSDL_InvalidSchema(t *testing.T) {
	_, err := BuildFromSDL(`type Query { user: Missing }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "load schema")
}

func TestFieldExtensions(t *testing.T) {
	f := NewField("addUser", "", NamedType("String"))
	_, ok := f.Extension("validation")
	require.False(t, ok)

	f.SetExtension("validation", "cfg")
	v, ok := f.Extension("validation")
	require.True(t, ok)
	require.Equal(t, "cfg", v)

	var nilField *Field
	_, ok = nilField.Extension("validation")
	require.False(t, ok)
}

func TestRenderTypes(t *testing.T) {
	errType := NewType("FieldError", TypeKindObject, "").
		AddField(NewField("field", "", NonNullType(NamedType("String")))).
		AddField(NewField("errors", "", NonNullType(ListType(NonNullType(NamedType("String"))))))

	want := "type FieldError {\n  field: String!\n  errors: [String!]!\n}\n"
	if diff := cmp.Diff(want, RenderTypes(errType)); diff != "" {
		t.Fatalf("SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestRender_SkipsBuiltins(t *testing.T) {
	sch := NewSchema("")
	sch.SetQueryType("Query")
	sch.AddType(NewType("Query", TypeKindObject, "").
		AddField(NewField("hello", "", NamedType("String"))))

	want := "type Query {\n  hello: String\n}\n"
	require.Equal(t, want, Render(sch))
}
