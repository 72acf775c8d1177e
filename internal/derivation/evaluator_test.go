package derivation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sem-os/semcore/internal/types"
)

func spec(expr, nullSemantics string, required bool) types.DerivationSpec {
	return types.DerivationSpec{
		FQN:        "test.derivation.sum",
		Expression: expr,
		Inputs: []types.DerivationInput{
			{AttributeFQN: "in.a", Role: "a", Required: required},
			{AttributeFQN: "in.b", Role: "b", Required: required},
		},
		NullSemantics: nullSemantics,
	}
}

func TestEvaluate_ArithmeticExpression(t *testing.T) {
	e := NewEvaluator()
	out, err := e.Evaluate(spec("a + b", "", true), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	require.Equal(t, 5.0, out)
}

func TestEvaluate_CachesCompiledProgramAcrossCalls(t *testing.T) {
	e := NewEvaluator()
	s := spec("a + b", "", true)

	_, err := e.Evaluate(s, map[string]any{"a": 1.0, "b": 1.0})
	require.NoError(t, err)
	require.Len(t, e.programs, 1)

	_, err = e.Evaluate(s, map[string]any{"a": 10.0, "b": 10.0})
	require.NoError(t, err)
	require.Len(t, e.programs, 1, "second call with the same spec must reuse the cached program")
}

func TestEvaluate_NullPropagateReturnsNilOnMissingInput(t *testing.T) {
	e := NewEvaluator()
	out, err := e.Evaluate(spec("a + b", NullPropagate, true), map[string]any{"a": 1.0})
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestEvaluate_NullFailErrorsOnMissingInput(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate(spec("a + b", NullFail, true), map[string]any{"a": 1.0})
	require.Error(t, err)
}

func TestEvaluate_NullZeroFillsMissingInput(t *testing.T) {
	e := NewEvaluator()
	out, err := e.Evaluate(spec("a + b", NullZero, true), map[string]any{"a": 5.0})
	require.NoError(t, err)
	require.Equal(t, 5.0, out)
}

func TestEvaluate_OptionalInputMissingDoesNotFailRegardlessOfNullSemantics(t *testing.T) {
	e := NewEvaluator()
	_, err := e.Evaluate(spec("a", NullFail, false), map[string]any{"a": 1.0})
	require.NoError(t, err)
}

func TestCompile_RejectsUnresolvedVariable(t *testing.T) {
	e := NewEvaluator()
	err := e.Compile(spec("a + c", "", true))
	require.Error(t, err)
}

func TestCompile_AcceptsWellFormedExpression(t *testing.T) {
	e := NewEvaluator()
	require.NoError(t, e.Compile(spec("a + b", "", true)))
}
