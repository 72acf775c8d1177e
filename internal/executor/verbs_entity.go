package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/store"
)

func mapArgToProps(f dsl.Form, key string) map[string]any {
	m, ok := f.MapArg(key)
	if !ok {
		return nil
	}
	props := make(map[string]any, len(m))
	for k, v := range m {
		props[k] = valueToAny(v)
	}
	return props
}

// valueToAny lowers a dsl.Value into a plain Go value for storage.
func valueToAny(v dsl.Value) any {
	switch val := v.(type) {
	case dsl.VString:
		return string(val)
	case dsl.VInteger:
		return int64(val)
	case dsl.VDouble:
		return float64(val)
	case dsl.VBoolean:
		return bool(val)
	case dsl.VIdentifier:
		return string(val)
	case dsl.VLiteral:
		return string(val)
	case dsl.VList:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = valueToAny(e)
		}
		return out
	case dsl.VMap:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = valueToAny(e)
		}
		return out
	default:
		return nil
	}
}

// EntityRegisterVerb implements entity.register: declares an entity by its
// caller-supplied id. Unlike the ensure-* family this is not idempotent in
// the upsert sense documented by §4.8, but the underlying store still
// converges on a single row per id, so repeated registration is harmless.
type EntityRegisterVerb struct {
	Store *store.Store
}

func (EntityRegisterVerb) Domain() string { return "entity" }
func (EntityRegisterVerb) Verb() string   { return "register" }
func (EntityRegisterVerb) Rationale() string {
	return "Declares a new entity row under a caller-supplied id"
}

func (v EntityRegisterVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	entityID, ok := StringArg(call, "entity-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("entity.register: missing entity-id")
	}
	entityType, _ := StringArg(call, "entity-type", ectx)
	props := mapArgToProps(call, "props")

	e := v.Store.EnsureEntity(entityID, entityType, props)
	return RecordResult(e.EntityID), nil
}

// EntityEnsureLimitedCompanyVerb implements entity.ensure-limited-company:
// an idempotent upsert keyed by entity-id (or, absent one, by name), used
// by enrichment flows that must not create duplicate companies across
// repeated runs.
type EntityEnsureLimitedCompanyVerb struct {
	Store *store.Store
}

func (EntityEnsureLimitedCompanyVerb) Domain() string { return "entity" }
func (EntityEnsureLimitedCompanyVerb) Verb() string   { return "ensure-limited-company" }
func (EntityEnsureLimitedCompanyVerb) Rationale() string {
	return "Idempotent upsert of a limited-company entity, deduplicated so repeated enrichment runs never create duplicates"
}

func (v EntityEnsureLimitedCompanyVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	name, ok := StringArg(call, "name", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("entity.ensure-limited-company: missing name")
	}
	entityID, hasID := StringArg(call, "entity-id", ectx)
	if !hasID {
		entityID = name
	}
	props := map[string]any{"name": name}
	if jurisdiction, ok := StringArg(call, "jurisdiction", ectx); ok {
		props["jurisdiction"] = jurisdiction
	}
	if lei, ok := StringArg(call, "lei", ectx); ok {
		props["lei"] = lei
	}

	e := v.Store.EnsureEntity(entityID, "LIMITED_COMPANY", props)
	return RecordResult(e.EntityID), nil
}

// EntityLinkVerb implements entity.link: records an ownership/control
// relationship between two entities. Repeated calls with the same
// (from, to, relationship-type) — or the same explicit link-id — refresh
// the relationship's props rather than creating a second edge.
type EntityLinkVerb struct {
	Store *store.Store
}

func (EntityLinkVerb) Domain() string { return "entity" }
func (EntityLinkVerb) Verb() string   { return "link" }
func (EntityLinkVerb) Rationale() string {
	return "Records an ownership or control relationship between two entities"
}

func (v EntityLinkVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	fromEntity, ok := StringArg(call, "from-entity", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("entity.link: missing from-entity")
	}
	toEntity, ok := StringArg(call, "to-entity", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("entity.link: missing to-entity")
	}
	relType, ok := StringArg(call, "relationship-type", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("entity.link: missing relationship-type")
	}
	linkID, _ := StringArg(call, "link-id", ectx)
	props := mapArgToProps(call, "relationship-props")

	l := v.Store.EnsureLink(linkID, fromEntity, toEntity, relType, props)
	return RecordResult(l.LinkID), nil
}
