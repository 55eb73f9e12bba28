package executor

import (
	"context"
	"reflect"
	"sort"

	"github.com/pkg/errors"

	schema "github.com/hanpama/gqlvalid/internal/schema"
)

// ResolveInfo describes the field a middleware is wrapping.
type ResolveInfo struct {
	Schema     *schema.Schema
	ParentType *schema.Type
	FieldName  string
	// Field is nil when the parent type does not define FieldName.
	Field      *schema.Field
	ReturnType *schema.TypeRef
}

// FieldResolver resolves one field instance. root is the parent value (the
// operation's root value for root fields).
type FieldResolver func(ctx context.Context, root any, args map[string]any, info *ResolveInfo) (any, error)

// FieldMiddleware wraps field resolution. Calling next continues the chain;
// returning without calling it short-circuits the field with the returned value.
type FieldMiddleware func(ctx context.Context, root any, args map[string]any, info *ResolveInfo, next FieldResolver) (any, error)

// TypeMiddleware applies a FieldMiddleware to every field of the named types.
type TypeMiddleware map[string]FieldMiddleware

// MutationMiddleware is bound to the fields of the schema's mutation root type.
type MutationMiddleware interface {
	Mutation(ctx context.Context, root any, args map[string]any, info *ResolveInfo, next FieldResolver) (any, error)
}

// ErrMiddlewareFactory is returned by ApplyMiddleware for a function value
// that is not itself a middleware, typically a constructor passed uncalled.
var ErrMiddlewareFactory = errors.New("middleware factory passed where a middleware instance was expected")

type chainEntry struct {
	// typeName is empty for middleware applied to every type.
	typeName string
	mw       FieldMiddleware
}

// ApplyMiddleware returns a Runtime that routes field resolution through the
// given middleware before reaching rt. Accepted values are FieldMiddleware (or
// a func with the same signature), TypeMiddleware and MutationMiddleware.
// The first middleware is the outermost.
func ApplyMiddleware(rt Runtime, sch *schema.Schema, middlewares ...any) (Runtime, error) {
	if rt == nil {
		return nil, errors.New("apply middleware: runtime is nil")
	}
	if sch == nil {
		return nil, errors.New("apply middleware: schema is nil")
	}

	var chain []chainEntry
	for i, m := range middlewares {
		switch mw := m.(type) {
		case nil:
			return nil, errors.Errorf("apply middleware: middleware #%d is nil", i)
		case FieldMiddleware:
			chain = append(chain, chainEntry{mw: mw})
		case func(context.Context, any, map[string]any, *ResolveInfo, FieldResolver) (any, error):
			chain = append(chain, chainEntry{mw: mw})
		case TypeMiddleware:
			names := make([]string, 0, len(mw))
			for name := range mw {
				if sch.Types[name] == nil {
					return nil, errors.Errorf("apply middleware: type %q is not defined in the schema", name)
				}
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				chain = append(chain, chainEntry{typeName: name, mw: mw[name]})
			}
		case MutationMiddleware:
			if sch.MutationType == "" {
				continue
			}
			chain = append(chain, chainEntry{typeName: sch.MutationType, mw: mw.Mutation})
		default:
			if reflect.ValueOf(m).Kind() == reflect.Func {
				return nil, errors.Wrapf(ErrMiddlewareFactory, "apply middleware: middleware #%d is %T", i, m)
			}
			return nil, errors.Errorf("apply middleware: unsupported middleware %T", m)
		}
	}

	if len(chain) == 0 {
		return rt, nil
	}
	return &middlewareRuntime{Runtime: rt, schema: sch, chain: chain}, nil
}

// middlewareRuntime decorates a Runtime with field middleware. Abstract type
// resolution and leaf serialization pass through to the base runtime.
type middlewareRuntime struct {
	Runtime
	schema *schema.Schema
	chain  []chainEntry
}

func (r *middlewareRuntime) middlewareFor(objectType string) []FieldMiddleware {
	var out []FieldMiddleware
	for _, e := range r.chain {
		if e.typeName == "" || e.typeName == objectType {
			out = append(out, e.mw)
		}
	}
	return out
}

func (r *middlewareRuntime) info(objectType, field string) *ResolveInfo {
	parent := r.schema.Types[objectType]
	fd := parent.GetField(field)
	info := &ResolveInfo{
		Schema:     r.schema,
		ParentType: parent,
		FieldName:  field,
		Field:      fd,
	}
	if fd != nil {
		info.ReturnType = fd.Type
	}
	return info
}

func (r *middlewareRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	mws := r.middlewareFor(objectType)
	if len(mws) == 0 {
		return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
	}
	terminal := func(ctx context.Context, root any, args map[string]any, _ *ResolveInfo) (any, error) {
		return r.Runtime.ResolveSync(ctx, objectType, field, root, args)
	}
	return compose(mws, terminal)(ctx, source, args, r.info(objectType, field))
}

// BatchResolveAsync resolves wrapped tasks one at a time, in task order, so
// each gets its own chain. Remaining tasks go to the base runtime as one batch.
func (r *middlewareRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	results := make([]AsyncResolveResult, len(tasks))
	var plain []AsyncResolveTask
	var plainIdx []int

	for i, task := range tasks {
		mws := r.middlewareFor(task.ObjectType)
		if len(mws) == 0 {
			plain = append(plain, task)
			plainIdx = append(plainIdx, i)
			continue
		}
		task := task
		terminal := func(ctx context.Context, root any, args map[string]any, _ *ResolveInfo) (any, error) {
			single := r.Runtime.BatchResolveAsync(ctx, []AsyncResolveTask{{
				ObjectType: task.ObjectType,
				Field:      task.Field,
				Source:     root,
				Args:       args,
			}})
			if len(single) != 1 {
				return nil, errors.Errorf("runtime returned %d results for 1 task", len(single))
			}
			return single[0].Value, single[0].Error
		}
		v, err := compose(mws, terminal)(ctx, task.Source, task.Args, r.info(task.ObjectType, task.Field))
		results[i] = AsyncResolveResult{Value: v, Error: err}
	}

	if len(plain) > 0 {
		out := r.Runtime.BatchResolveAsync(ctx, plain)
		for j, idx := range plainIdx {
			if j < len(out) {
				results[idx] = out[j]
			} else {
				results[idx] = AsyncResolveResult{Error: errors.New("runtime returned fewer results than tasks")}
			}
		}
	}
	return results
}

func compose(mws []FieldMiddleware, terminal FieldResolver) FieldResolver {
	next := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		mw, inner := mws[i], next
		next = func(ctx context.Context, root any, args map[string]any, info *ResolveInfo) (any, error) {
			return mw(ctx, root, args, info, inner)
		}
	}
	return next
}
