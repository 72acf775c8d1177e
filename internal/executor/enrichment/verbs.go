package enrichment

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/executor"
	"github.com/sem-os/semcore/internal/store"
)

// EnrichVerb implements gleif.enrich: resolves an entity against the
// external source by identifier, name, or name-prefix fallback, then
// upserts it into the store. Grounded on the source system's
// GleifEnrichOp, which ensures idempotent entity creation by routing the
// fetched record back through the same ensure-* upsert path a direct DSL
// call would use.
type EnrichVerb struct {
	Resolver *Resolver
	Store    *store.Store
}

func (EnrichVerb) Domain() string { return "gleif" }
func (EnrichVerb) Verb() string   { return "enrich" }
func (EnrichVerb) Rationale() string {
	return "Requires an external registry call to fetch and persist corporate identifier data"
}

func (v EnrichVerb) Execute(ctx context.Context, call dsl.Form, ectx *executor.ExecutionContext) (executor.ExecutionResult, error) {
	identifier, _ := executor.StringArg(call, "identifier", ectx)
	name, _ := executor.StringArg(call, "name", ectx)
	if identifier == "" && name == "" {
		return executor.ExecutionResult{}, fmt.Errorf("gleif.enrich: either identifier or name is required")
	}

	rec, found, err := v.Resolver.Resolve(ctx, identifier, name, "")
	if err != nil {
		return executor.ExecutionResult{}, fmt.Errorf("gleif.enrich: %w", err)
	}
	if !found {
		// Absence is an expected outcome, not an error: return an empty
		// record field rather than failing the call.
		return executor.RecordResult(map[string]any{
			"identifier": identifier,
			"name":       name,
			"found":      false,
		}), nil
	}

	entityID := rec.Identifier
	if entityID == "" {
		entityID = rec.Name
	}
	e := v.Store.EnsureEntity(entityID, "LIMITED_COMPANY", map[string]any{
		"name":         rec.Name,
		"jurisdiction": rec.Jurisdiction,
		"identifier":   rec.Identifier,
	})

	return executor.RecordResult(map[string]any{
		"entity_id":    e.EntityID,
		"identifier":   rec.Identifier,
		"name":         rec.Name,
		"jurisdiction": rec.Jurisdiction,
		"found":        true,
	}), nil
}

// SearchVerb implements gleif.search: a read-only name-prefix search
// against the external source, returning candidate records without
// persisting them.
type SearchVerb struct {
	Source Source
}

func (SearchVerb) Domain() string    { return "gleif" }
func (SearchVerb) Verb() string      { return "search" }
func (SearchVerb) Rationale() string { return "Requires an external registry search call" }

func (v SearchVerb) Execute(ctx context.Context, call dsl.Form, ectx *executor.ExecutionContext) (executor.ExecutionResult, error) {
	name, ok := executor.StringArg(call, "name", ectx)
	if !ok {
		return executor.ExecutionResult{}, fmt.Errorf("gleif.search: name is required")
	}
	limit := 20
	if n, ok := call.NumericArg("limit"); ok {
		limit = int(n)
	}

	candidates, err := v.Source.ByNamePrefix(ctx, name, limit)
	if err != nil {
		return executor.ExecutionResult{}, fmt.Errorf("gleif.search: %w", err)
	}
	out := make([]any, len(candidates))
	for i, c := range candidates {
		out[i] = map[string]any{
			"identifier":   c.Identifier,
			"name":         c.Name,
			"jurisdiction": c.Jurisdiction,
			"category":     c.Category,
		}
	}
	return executor.RecordSetResult(out), nil
}

// Register wires the enrichment verb family into reg.
func Register(reg *executor.Registry, resolver *Resolver, source Source, st *store.Store) {
	reg.Register(EnrichVerb{Resolver: resolver, Store: st})
	reg.Register(SearchVerb{Source: source})
}
