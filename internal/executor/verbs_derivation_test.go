package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerivationRecompute_EvaluatesExpressionAgainstInputs(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `(derivation.recompute :fqn "deriv.total" :expression "a + b"
  :inputs {:a 2 :b 3} :as @total)`)

	_, ectx, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	total, ok := ectx.Resolve("total")
	require.True(t, ok)
	require.Equal(t, int64(5), total)
}

func TestDerivationRecompute_MalformedExpressionFails(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `(derivation.recompute :fqn "deriv.bad" :expression "a +" :inputs {:a 1})`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
}

func TestDerivationRecompute_MissingInputsFails(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `(derivation.recompute :fqn "deriv.total" :expression "a + b")`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
}
