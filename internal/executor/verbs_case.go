package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/store"
)

// CaseCreateVerb implements case.create: a declarative, first-writer-wins
// registration, distinct from the idempotent ensure-* family — a repeated
// call returns the original case rather than updating it.
type CaseCreateVerb struct {
	Store *store.Store
}

func (CaseCreateVerb) Domain() string    { return "case" }
func (CaseCreateVerb) Verb() string      { return "create" }
func (CaseCreateVerb) Rationale() string { return "First-writer-wins declaration of a new case" }

func (v CaseCreateVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	caseID, ok := StringArg(call, "case-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("case.create: missing case-id")
	}
	caseType, _ := StringArg(call, "case-type", ectx)

	c := v.Store.CreateCase(caseID, caseType)
	return RecordResult(c.CaseID), nil
}

// CaseUpdateVerb implements case.update: appends a note to an existing
// case's append-only history. Legacy kyc.add_finding calls are rewritten to
// this verb by the normalizer before execution ever sees them.
type CaseUpdateVerb struct {
	Store *store.Store
}

func (CaseUpdateVerb) Domain() string    { return "case" }
func (CaseUpdateVerb) Verb() string      { return "update" }
func (CaseUpdateVerb) Rationale() string { return "Appends a note to a case's audit trail" }

func (v CaseUpdateVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	caseID, ok := StringArg(call, "case-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("case.update: missing case-id")
	}
	notes, ok := StringArg(call, "notes", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("case.update: missing notes")
	}

	c, found := v.Store.AppendCaseNote(caseID, notes)
	if !found {
		return ExecutionResult{}, fmt.Errorf("case.update: case %q not found", caseID)
	}
	return RecordResult(c.CaseID), nil
}
