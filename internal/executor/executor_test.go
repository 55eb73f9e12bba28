package executor

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	schema "github.com/hanpama/gqlvalid/internal/schema"
)

const directorySDL = `
type Query {
  viewer: User
  search(term: String!, limit: Int = 10): [Node!]!
}

interface Node { id: ID! }

type User implements Node {
  id: ID!
  firstName: String
  lastName: String
  bio: String @async
}

type Team implements Node {
  id: ID!
  name: String
}
`

func newDirectorySchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(directorySDL)
	require.NoError(t, err)
	return sch
}

// prop reads a key of a map source.
func prop(key string) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(map[string]any)[key], nil
	}
}

var ada = map[string]any{"__typename": "User", "id": "u1", "firstName": "Ada", "lastName": "Lovelace", "bio": "analyst"}

func newDirectoryRuntime() *MockRuntime {
	rt := NewMockRuntime(map[string]MockResolver{
		"Query.viewer":   NewMockValueResolver(ada),
		"Query.search":   NewMockValueResolver([]any{ada, map[string]any{"__typename": "Team", "id": "t1", "name": "Engines"}}),
		"User.id":        prop("id"),
		"User.firstName": prop("firstName"),
		"User.lastName":  prop("lastName"),
		"User.bio":       prop("bio"),
		"Team.id":        prop("id"),
		"Team.name":      prop("name"),
	})
	SetTypeResolver(rt, func(value any) (string, error) {
		return value.(map[string]any)["__typename"].(string), nil
	})
	return rt
}

func TestExecute_BatchesAsyncFieldsPerDepth(t *testing.T) {
	rt := newDirectoryRuntime()
	res := NewExecutor(rt, newDirectorySchema(t)).
		ExecuteRequest(context.Background(), mustParseQuery(t, "{ viewer { id bio } other: viewer { bio } }"), "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"viewer": map[string]any{"id": "u1", "bio": "analyst"},
			"other":  map[string]any{"bio": "analyst"},
		},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, res); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []Call{
		{Kind: "async", ObjectType: "Query", Field: "viewer", Source: nil, Args: map[string]any{}, BatchID: 1},
		{Kind: "async", ObjectType: "Query", Field: "viewer", Source: nil, Args: map[string]any{}, BatchID: 1},
		{Kind: "sync", ObjectType: "User", Field: "id", Source: ada, Args: map[string]any{}, BatchID: 0},
		{Kind: "async", ObjectType: "User", Field: "bio", Source: ada, Args: map[string]any{}, BatchID: 2},
		{Kind: "async", ObjectType: "User", Field: "bio", Source: ada, Args: map[string]any{}, BatchID: 2},
	}
	if diff := cmp.Diff(wantCalls, rt.GetCalls()); diff != "" {
		t.Fatalf("Runtime calls mismatch (-want +got):\n%s", diff)
	}
}

func TestExecute_FragmentsAndDirectives(t *testing.T) {
	rt := newDirectoryRuntime()
	doc := mustParseQuery(t, `
query Viewer($withBio: Boolean!) {
  viewer {
    ...names
    lastName @skip(if: true)
    bio @include(if: $withBio)
  }
}
fragment names on User { firstName lastName }`)

	res := NewExecutor(rt, newDirectorySchema(t)).
		ExecuteRequest(context.Background(), doc, "", map[string]any{"withBio": false}, nil)

	require.Empty(t, res.Errors)
	require.Equal(t, map[string]any{"viewer": map[string]any{"firstName": "Ada", "lastName": "Lovelace"}}, res.Data)

	var fields []string
	for _, c := range rt.GetCalls() {
		fields = append(fields, c.ObjectType+"."+c.Field)
	}
	require.Equal(t, []string{"Query.viewer", "User.firstName", "User.lastName"}, fields)
}

func TestExecute_AbstractTypesAndArgumentDefaults(t *testing.T) {
	rt := newDirectoryRuntime()
	doc := mustParseQuery(t, `{ search(term: "a") { id ... on User { firstName } ... on Team { name } } }`)

	res := NewExecutor(rt, newDirectorySchema(t)).ExecuteRequest(context.Background(), doc, "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{"search": []any{
			map[string]any{"id": "u1", "firstName": "Ada"},
			map[string]any{"id": "t1", "name": "Engines"},
		}},
		Errors: []GraphQLError{},
	}
	if diff := cmp.Diff(wantRes, res); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, map[string]any{"term": "a", "limit": 10}, rt.GetCalls()[0].Args)
}

func TestExecute_OperationSelectionAndVariables(t *testing.T) {
	sch := newDirectorySchema(t)
	doc := mustParseQuery(t, `
query Viewer { viewer { firstName } }
query Search($term: String!) { search(term: $term) { id } }`)

	tests := []struct {
		name      string
		operation string
		vars      map[string]any
		want      *ExecutionResult
	}{
		{
			name:      "named operation",
			operation: "Viewer",
			want:      &ExecutionResult{Data: map[string]any{"viewer": map[string]any{"firstName": "Ada"}}, Errors: []GraphQLError{}},
		},
		{
			name:      "unknown operation",
			operation: "Missing",
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:      "ambiguous without name",
			operation: "",
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}},
		},
		{
			name:      "missing required variable",
			operation: "Search",
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: "variable $term of required type String! was not provided"}}},
		},
		{
			name:      "null for non-null variable",
			operation: "Search",
			vars:      map[string]any{"term": nil},
			want:      &ExecutionResult{Errors: []GraphQLError{{Message: "variable $term of type String! cannot be null"}}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := NewExecutor(newDirectoryRuntime(), sch).ExecuteRequest(context.Background(), doc, tc.operation, tc.vars, nil)
			if diff := cmp.Diff(tc.want, res); diff != "" {
				t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecute_PartialFailure(t *testing.T) {
	rt := newDirectoryRuntime()
	rt.SetResolver("Query", "viewer", NewMockErrorResolver(errors.New("session expired")))

	res := NewExecutor(rt, newDirectorySchema(t)).
		ExecuteRequest(context.Background(), mustParseQuery(t, `{ viewer { id } search(term: "e") { id } }`), "", nil, nil)

	wantRes := &ExecutionResult{
		Data: map[string]any{
			"viewer": nil,
			"search": []any{map[string]any{"id": "u1"}, map[string]any{"id": "t1"}},
		},
		Errors: []GraphQLError{{Message: "session expired", Path: Path{"viewer"}}},
	}
	if diff := cmp.Diff(wantRes, res); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}
