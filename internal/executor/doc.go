// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with explicit runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work, abstract-type resolution, and leaf serialization.
//
// # Execution Model
//
// Fields are classified by schema.Field.Async. Synchronous fields are resolved
// immediately through Runtime.ResolveSync and expanded without adding depth.
// Asynchronous fields met while expanding a depth are queued and resolved with
// a single Runtime.BatchResolveAsync call once the depth is drained. For a
// result graph with asynchronous depth d, BatchResolveAsync is called d times.
//
// Values are completed per GraphQL rules: Non-Null violations propagate null
// to the nearest nullable ancestor and drop any queued tasks below it; list
// elements get index-aware paths; leaf values go through
// Runtime.SerializeLeafValue; abstract values through Runtime.ResolveType.
// Errors are accumulated as located errors and execution continues, so batch
// results succeed or fail independently.
//
// # Mutations
//
// Root fields of a mutation run one after another. Each root field, including
// every asynchronous depth below it, is completed before the next root field
// is resolved.
//
// # Middleware
//
// ApplyMiddleware decorates a Runtime so that field resolution passes through
// a chain of FieldMiddleware. Middleware can be scoped to every field, to
// named types (TypeMiddleware), or to the mutation root type
// (MutationMiddleware). Each wrapped field receives a ResolveInfo describing
// its parent type, definition and return type.
//
// Errors that implement Extensions() map[string]any keep those extensions in
// the located GraphQL error.
package executor
