// Package localrt is an executor.Runtime backed by Go functions registered
// per field. Fields without a resolver are read from the parent value.
package localrt

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	executor "github.com/hanpama/gqlvalid/internal/executor"
)

// ResolverFunc resolves one field for one parent value.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeResolverFunc names the concrete object type of an abstract value.
type TypeResolverFunc func(ctx context.Context, value any) (string, error)

type fieldKey struct {
	objectType string
	field      string
}

// Runtime implements executor.Runtime.
//   - Resolvers are looked up by (objectType, field). Without one, the field
//     is projected from the source value; a nil source is an error.
//   - BatchResolveAsync groups tasks by (objectType, field) and runs groups in
//     parallel. Tasks of one group run in task order. Resolvers must be safe
//     for concurrent use.
//   - Results preserve input ordering; partial success is supported.
type Runtime struct {
	mu            sync.RWMutex
	resolvers     map[fieldKey]ResolverFunc
	typeResolvers map[string]TypeResolverFunc
}

var _ executor.Runtime = (*Runtime)(nil)

func New() *Runtime {
	return &Runtime{
		resolvers:     make(map[fieldKey]ResolverFunc),
		typeResolvers: make(map[string]TypeResolverFunc),
	}
}

// Register sets the resolver of objectType.field, replacing any previous one.
func (r *Runtime) Register(objectType, field string, fn ResolverFunc) *Runtime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolvers[fieldKey{objectType, field}] = fn
	return r
}

// RegisterTypeResolver sets how values of an interface or union are typed.
func (r *Runtime) RegisterTypeResolver(abstractType string, fn TypeResolverFunc) *Runtime {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typeResolvers[abstractType] = fn
	return r
}

func (r *Runtime) resolver(objectType, field string) ResolverFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolvers[fieldKey{objectType, field}]
}

func (r *Runtime) resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if fn := r.resolver(objectType, field); fn != nil {
		return fn(ctx, source, args)
	}
	if source == nil {
		return nil, errors.Errorf("no resolver registered for %s.%s", objectType, field)
	}
	return project(source, field)
}

func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return r.resolve(ctx, objectType, field, source, args)
}

func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	groups := [][]int{}
	idxByKey := map[fieldKey]int{}
	for i, t := range tasks {
		k := fieldKey{t.ObjectType, t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi] = append(groups[gi], i)
		} else {
			idxByKey[k] = len(groups)
			groups = append(groups, []int{i})
		}
	}
	run := func(idxs []int) {
		for _, i := range idxs {
			t := tasks[i]
			v, err := r.resolve(ctx, t.ObjectType, t.Field, t.Source, t.Args)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
		}
	}

	if len(groups) == 1 {
		run(groups[0])
		return results
	}
	var wg sync.WaitGroup
	wg.Add(len(groups))
	for _, g := range groups {
		go func(idxs []int) {
			defer wg.Done()
			run(idxs)
		}(g)
	}
	wg.Wait()
	return results
}

// TypeNamer lets values report their own GraphQL object type.
type TypeNamer interface {
	GraphQLTypeName() string
}

// ResolveType uses, in order: a registered type resolver, TypeNamer, and a
// "__typename" key of a map value.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	r.mu.RLock()
	fn := r.typeResolvers[abstractType]
	r.mu.RUnlock()
	if fn != nil {
		return fn(ctx, value)
	}
	switch v := value.(type) {
	case TypeNamer:
		return v.GraphQLTypeName(), nil
	case map[string]any:
		if name, ok := v["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", errors.Errorf("cannot resolve concrete type of %s from %T", abstractType, value)
}

func (r *Runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (r *Runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

// SerializeLeafValue passes JSON-safe values through, base64-encodes byte
// slices and renders fmt.Stringer values (typically enums) by name.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int32, int64, float32, float64:
		return v, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return v, nil
	}
}
