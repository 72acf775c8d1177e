package enrichment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/executor"
	"github.com/sem-os/semcore/internal/store"
)

func newTestExecutor(t *testing.T, records ...Record) (*executor.Executor, *store.Store, *stubSource) {
	t.Helper()
	st := store.New()
	src := newStubSource(records...)
	resolver, err := NewResolver(src, 16, 100, 10)
	require.NoError(t, err)

	reg := executor.NewRegistry()
	Register(reg, resolver, src, st)
	return executor.New(reg), st, src
}

func mustParse(t *testing.T, src string) *dsl.Program {
	t.Helper()
	prog, err := dsl.Parse(src)
	require.NoError(t, err)
	return prog
}

func TestEnrichVerb_PersistsResolvedEntity(t *testing.T) {
	exec, st, _ := newTestExecutor(t, Record{Identifier: "LEI1", Name: "Acme GmbH", Jurisdiction: "DE"})
	prog := mustParse(t, `(gleif.enrich :identifier "LEI1" :as @entity)`)

	_, ectx, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	entityID, ok := ectx.Resolve("entity")
	require.True(t, ok)
	result := entityID.(map[string]any)
	require.Equal(t, true, result["found"])

	_, found := st.GetEntity("LEI1")
	require.True(t, found)
}

func TestEnrichVerb_UnknownIdentifierReturnsNotErrors(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	prog := mustParse(t, `(gleif.enrich :identifier "NOPE")`)

	results, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)
	require.Len(t, results, 1)
	result := results[0].Result.Value.(map[string]any)
	require.Equal(t, false, result["found"])
}

func TestEnrichVerb_MissingIdentifierAndNameFails(t *testing.T) {
	exec, _, _ := newTestExecutor(t)
	prog := mustParse(t, `(gleif.enrich :jurisdiction "DE")`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
}

func TestSearchVerb_ReturnsRecordSet(t *testing.T) {
	exec, _, _ := newTestExecutor(t,
		Record{Identifier: "LEI1", Name: "Acme GmbH"},
		Record{Identifier: "LEI2", Name: "Acme Global Investors"},
	)
	prog := mustParse(t, `(gleif.search :name "Acme" :limit 10)`)

	results, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)
	require.Equal(t, executor.RecordSet, results[0].Result.Kind)
	require.Len(t, results[0].Result.Set, 2)
}
