// Package executor runs a parsed, validated DSL program against persistent
// state: it resolves `@binding` symbol references through a per-program
// context, dispatches each verb call to a registered implementation, and
// accumulates the typed results.
package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/types"
)

// ResultKind tags the shape of a verb's return value.
type ResultKind int

const (
	// Empty indicates the verb produced no bindable value.
	Empty ResultKind = iota
	// Record indicates a single-value result, typically bound via :as.
	Record
	// RecordSet indicates a multi-row result (e.g. a search).
	RecordSet
)

// ExecutionResult is the typed outcome of one verb call.
type ExecutionResult struct {
	Kind  ResultKind
	Value any   // valid when Kind == Record
	Set   []any // valid when Kind == RecordSet
}

// EmptyResult is the zero-value result for verbs with nothing to bind.
func EmptyResult() ExecutionResult { return ExecutionResult{Kind: Empty} }

// RecordResult wraps a single bindable value.
func RecordResult(v any) ExecutionResult { return ExecutionResult{Kind: Record, Value: v} }

// RecordSetResult wraps a multi-row result.
func RecordSetResult(vs []any) ExecutionResult { return ExecutionResult{Kind: RecordSet, Set: vs} }

// ExecutionContext carries the `@binding -> value` table accumulated across
// a program's verb calls, so that a later call can reference an earlier
// call's result by symbol.
type ExecutionContext struct {
	bindings map[string]any
}

// NewExecutionContext returns an empty context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{bindings: map[string]any{}}
}

// Bind records value under name, overwriting any prior binding.
func (c *ExecutionContext) Bind(name string, value any) {
	c.bindings[name] = value
}

// Resolve looks up a previously bound value.
func (c *ExecutionContext) Resolve(name string) (any, bool) {
	v, ok := c.bindings[name]
	return v, ok
}

// ResolveString resolves name to a string, the common case for entity and
// link identifiers passed between verb calls.
func (c *ExecutionContext) ResolveString(name string) (string, bool) {
	v, ok := c.bindings[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// StringArg resolves a form argument that may be either a literal string or
// an `@binding` symbol reference into context. Symbol references that fail
// to resolve return ok=false.
func StringArg(f dsl.Form, key string, ctx *ExecutionContext) (string, bool) {
	v, present := f.Pairs[key]
	if !present {
		return "", false
	}
	if ident, isIdent := v.(dsl.VIdentifier); isIdent {
		return ctx.ResolveString(string(ident))
	}
	return f.StringArg(key)
}

// Verb is one executable `{domain, verb}` implementation.
type Verb interface {
	Domain() string
	Verb() string
	// Rationale explains why this verb exists as a distinct executable
	// operation, surfaced in diagnostics and documentation, mirroring the
	// rationale() every custom operation in the source system declares.
	Rationale() string
	Execute(ctx context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error)
}

// Registry indexes Verb implementations by "domain.verb".
type Registry struct {
	verbs map[string]Verb
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{verbs: map[string]Verb{}}
}

// Register adds v under its declared domain.verb key, panicking on a
// duplicate registration (a programming error, never a runtime condition).
func (r *Registry) Register(v Verb) {
	key := v.Domain() + "." + v.Verb()
	if _, exists := r.verbs[key]; exists {
		panic(fmt.Sprintf("executor: duplicate verb registration %q", key))
	}
	r.verbs[key] = v
}

// Lookup returns the verb registered for "domain.verb", if any.
func (r *Registry) Lookup(domainVerb string) (Verb, bool) {
	v, ok := r.verbs[domainVerb]
	return v, ok
}

// Len reports how many verbs are registered.
func (r *Registry) Len() int { return len(r.verbs) }

// ProgramSource resolves a previously published DSL snapshot by FQN, the
// lookup the workflow engine needs when a blocker requires re-running a
// remediation program it published earlier rather than one freshly
// authored. *store.Store satisfies this directly.
type ProgramSource interface {
	SnapshotByFQN(fqn string) (*types.Snapshot, bool)
}

// Executor runs a Program form-by-form against a Registry, short-circuiting
// on the first verb error per the impure-pass propagation policy.
type Executor struct {
	registry *Registry
	programs ProgramSource
}

// New returns an Executor bound to registry, with no program-retrieval
// source. LookupProgram/LookupSnapshot fail until WithProgramSource is
// called.
func New(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// WithProgramSource attaches source as this executor's published-program
// lookup path and returns the executor, for constructor-style chaining.
func (e *Executor) WithProgramSource(source ProgramSource) *Executor {
	e.programs = source
	return e
}

// LookupSnapshot re-fetches the Active snapshot published under fqn, e.g.
// the DSL program a prior template expansion published to resolve a
// recurring workflow blocker.
func (e *Executor) LookupSnapshot(fqn string) (*types.Snapshot, bool) {
	if e.programs == nil {
		return nil, false
	}
	return e.programs.SnapshotByFQN(fqn)
}

// LookupProgram re-fetches the DSL snapshot published under fqn and parses
// its source text back into a runnable Program, so the workflow engine can
// re-execute a previously published remediation program against the
// subject's current state rather than requiring the caller re-author it.
func (e *Executor) LookupProgram(fqn string) (*dsl.Program, error) {
	snap, ok := e.LookupSnapshot(fqn)
	if !ok {
		return nil, fmt.Errorf("no published DSL program found for %q", fqn)
	}
	source, ok := snap.Definition["source"].(string)
	if !ok || source == "" {
		return nil, fmt.Errorf("snapshot %q has no DSL source text to re-run", fqn)
	}
	prog, err := dsl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("re-parsing published program %q: %w", fqn, err)
	}
	return prog, nil
}

// FormResult pairs an executed form with its result, for callers that need
// the full per-form trace rather than just the final binding table.
type FormResult struct {
	Form   dsl.Form
	Result ExecutionResult
}

// ExecuteProgram runs every form in prog in order against a fresh execution
// context, short-circuiting and returning the error on the first verb that
// fails. Bindings made by earlier forms are visible to later ones via
// `:as @name` / `@name` symbol references.
func (e *Executor) ExecuteProgram(ctx context.Context, prog *dsl.Program) ([]FormResult, *ExecutionContext, error) {
	ectx := NewExecutionContext()
	results := make([]FormResult, 0, len(prog.Forms))
	for _, form := range prog.Forms {
		res, err := e.ExecuteForm(ctx, form, ectx)
		if err != nil {
			return results, ectx, fmt.Errorf("executing %s: %w", form.Verb, err)
		}
		results = append(results, FormResult{Form: form, Result: res})
	}
	return results, ectx, nil
}

// ExecuteForm dispatches a single verb call, binding its primary result into
// ectx under form.As when present.
func (e *Executor) ExecuteForm(ctx context.Context, form dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	v, ok := e.registry.Lookup(form.Verb)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("no verb registered for %q", form.Verb)
	}
	res, err := v.Execute(ctx, form, ectx)
	if err != nil {
		return ExecutionResult{}, err
	}
	if form.As != "" && res.Kind == Record {
		ectx.Bind(form.As, res.Value)
	}
	return res, nil
}
