package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/derivation"
	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/types"
)

// DerivationRecomputeVerb implements derivation.recompute: the
// executor-side counterpart to the derivation_expression publish gate. It
// evaluates a DerivationSpec's expression against a caller-supplied input
// map rather than a registry-resolved one, so a workflow can recompute a
// derived attribute inline without round-tripping through the registry.
type DerivationRecomputeVerb struct {
	Evaluator *derivation.Evaluator
}

func (DerivationRecomputeVerb) Domain() string { return "derivation" }
func (DerivationRecomputeVerb) Verb() string   { return "recompute" }
func (DerivationRecomputeVerb) Rationale() string {
	return "Recomputes a derivation's output by evaluating its CEL expression against current input values"
}

func (v DerivationRecomputeVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	fqn, ok := StringArg(call, "fqn", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("derivation.recompute: missing fqn")
	}
	expression, ok := StringArg(call, "expression", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("derivation.recompute: missing expression")
	}
	inputsMap, ok := call.MapArg("inputs")
	if !ok {
		return ExecutionResult{}, fmt.Errorf("derivation.recompute: missing inputs")
	}

	spec := types.DerivationSpec{
		FQN:           fqn,
		Expression:    expression,
		EvidenceGrade: types.EvidenceProhibited,
	}
	inputs := make(map[string]any, len(inputsMap))
	for role, val := range inputsMap {
		spec.Inputs = append(spec.Inputs, types.DerivationInput{Role: role, Required: true})
		inputs[role] = valueToAny(val)
	}
	if nullSemantics, ok := StringArg(call, "null-semantics", ectx); ok {
		spec.NullSemantics = nullSemantics
	}

	result, err := v.Evaluator.Evaluate(spec, inputs)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("derivation.recompute: %w", err)
	}
	return RecordResult(result), nil
}
