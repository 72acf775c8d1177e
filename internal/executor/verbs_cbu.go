package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/store"
)

// CBUEnsureVerb implements cbu.ensure: idempotent upsert of a Client
// Business Unit, deduplicated by name.
type CBUEnsureVerb struct {
	Store *store.Store
}

func (CBUEnsureVerb) Domain() string    { return "cbu" }
func (CBUEnsureVerb) Verb() string      { return "ensure" }
func (CBUEnsureVerb) Rationale() string { return "Idempotent upsert of a CBU, deduplicated by name" }

func (v CBUEnsureVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	name, ok := StringArg(call, "name", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("cbu.ensure: missing name")
	}
	jurisdiction, _ := StringArg(call, "jurisdiction", ectx)
	clientType, _ := StringArg(call, "client-type", ectx)

	c := v.Store.EnsureCBU(name, jurisdiction, clientType)
	return RecordResult(c.CBUID), nil
}

// CBUAssignRoleVerb implements cbu.assign-role: idempotent role assignment
// of an entity within a CBU. A repeat call with the same (cbu, entity,
// role) triple is a no-op success, per §4.8.
type CBUAssignRoleVerb struct {
	Store *store.Store
}

func (CBUAssignRoleVerb) Domain() string { return "cbu" }
func (CBUAssignRoleVerb) Verb() string   { return "assign-role" }
func (CBUAssignRoleVerb) Rationale() string {
	return "Idempotently assigns an entity to a role within a CBU"
}

func (v CBUAssignRoleVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	cbuID, ok := StringArg(call, "cbu-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("cbu.assign-role: missing cbu-id")
	}
	entityID, ok := StringArg(call, "entity-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("cbu.assign-role: missing entity-id")
	}
	role, ok := StringArg(call, "role", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("cbu.assign-role: missing role")
	}

	c, err := v.Store.AssignRole(cbuID, entityID, role)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("cbu.assign-role: %w", err)
	}
	return RecordResult(c.CBUID), nil
}
