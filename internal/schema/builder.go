package schema

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/hanpama/gqlvalid/internal/language"
)

// asyncDirective marks a non-root field as resolver-backed. It is declared for
// validation by gqlparser and stripped from the built schema.
const asyncDirective = "async"

var hostDirectives = language.NamedSource("host-directives.graphql", `
directive @async on FIELD_DEFINITION
`)

// BuildFromSDL parses and validates the given SDL fragments as one schema.
//
// Fields of the root operation types and fields annotated with @async are
// marked Async; every other field is a projection of its parent value.
func BuildFromSDL(sdl ...string) (*Schema, error) {
	sources := make([]*language.Source, 0, len(sdl)+1)
	sources = append(sources, hostDirectives)
	for i, s := range sdl {
		sources = append(sources, language.NamedSource("schema-"+strconv.Itoa(i)+".graphql", s))
	}
	doc, err := gqlparser.LoadSchema(sources...)
	if err != nil {
		return nil, errors.Wrap(err, "load schema")
	}
	return BuildFromAST(doc), nil
}

// BuildFromAST converts a validated gqlparser schema into a Schema.
func BuildFromAST(doc *ast.Schema) *Schema {
	s := NewSchema(doc.Description)
	roots := map[string]bool{}
	if doc.Query != nil {
		s.SetQueryType(doc.Query.Name)
		roots[doc.Query.Name] = true
	}
	if doc.Mutation != nil {
		s.SetMutationType(doc.Mutation.Name)
		roots[doc.Mutation.Name] = true
	}
	if doc.Subscription != nil {
		s.SetSubscriptionType(doc.Subscription.Name)
		roots[doc.Subscription.Name] = true
	}

	for _, def := range doc.Types {
		if def.BuiltIn {
			continue
		}
		switch def.Kind {
		case ast.Object:
			s.AddType(buildObject(def, roots[def.Name]))
		case ast.Interface:
			s.AddType(buildInterface(def))
		case ast.Union:
			s.AddType(buildUnion(def))
		case ast.Enum:
			s.AddType(buildEnum(def))
		case ast.InputObject:
			s.AddType(buildInput(def))
		case ast.Scalar:
			s.AddType(NewType(def.Name, TypeKindScalar, def.Description))
		}
	}
	for name, dir := range doc.Directives {
		if dir.Position != nil && dir.Position.Src != nil && (dir.Position.Src.BuiltIn || dir.Position.Src == hostDirectives) {
			continue
		}
		if name == asyncDirective {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	return s
}

func buildObject(def *ast.Definition, root bool) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		if isIntrospectionField(fd.Name) {
			continue
		}
		f := buildField(fd)
		f.SetAsync(root || fd.Directives.ForName(asyncDirective) != nil)
		t.AddField(f)
	}
	return t
}

func buildInterface(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInterface, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fd := range def.Fields {
		if isIntrospectionField(fd.Name) {
			continue
		}
		f := buildField(fd)
		f.SetAsync(fd.Directives.ForName(asyncDirective) != nil)
		t.AddField(f)
	}
	return t
}

func buildField(fd *ast.FieldDefinition) *Field {
	f := NewField(fd.Name, fd.Description, buildTypeRef(fd.Type))
	if reason, ok := deprecation(fd.Directives); ok {
		f.Deprecate(reason)
	}
	for _, arg := range fd.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(defaultValue(arg.DefaultValue))
		if reason, ok := deprecation(arg.Directives); ok {
			in.Deprecate(reason)
		}
		f.AddArgument(in)
	}
	return f
}

func buildUnion(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	return t
}

func buildEnum(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		ev := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			ev.Deprecate(reason)
		}
		t.AddEnumValue(ev)
	}
	return t
}

func buildInput(def *ast.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, fd := range def.Fields {
		in := NewInputValue(fd.Name, fd.Description, buildTypeRef(fd.Type)).
			SetDefault(defaultValue(fd.DefaultValue))
		if reason, ok := deprecation(fd.Directives); ok {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t
}

func buildDirective(dir *ast.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(defaultValue(arg.DefaultValue)))
	}
	return d
}

func buildTypeRef(t *ast.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (string, bool) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return "", false
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "", true
}

// defaultValue converts a literal default into the Go values the executor
// produces for coerced input (int, float64, string, bool, []any, map[string]any).
func defaultValue(v *ast.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case ast.IntValue:
		i, _ := strconv.Atoi(v.Raw)
		return i
	case ast.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return v.Raw
	case ast.BooleanValue:
		return v.Raw == "true"
	case ast.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = defaultValue(c.Value)
		}
		return out
	case ast.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			out[c.Name] = defaultValue(c.Value)
		}
		return out
	}
	return nil
}

func isIntrospectionField(name string) bool {
	return len(name) > 1 && name[0] == '_' && name[1] == '_'
}
