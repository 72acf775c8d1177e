package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/store"
)

func newTestExecutor() (*Executor, *store.Store) {
	st := store.New()
	reg := NewRegistry()
	RegisterCoreVerbs(reg, st)
	return New(reg).WithProgramSource(st), st
}

func mustParse(t *testing.T, src string) *dsl.Program {
	t.Helper()
	prog, err := dsl.Parse(src)
	require.NoError(t, err)
	return prog
}

func TestExecuteProgram_EntityRegisterAndLink(t *testing.T) {
	exec, st := newTestExecutor()
	prog := mustParse(t, `
(entity.register :entity-id "e-1" :entity-type "ORGANIZATION" :as @parent)
(entity.register :entity-id "e-2" :entity-type "ORGANIZATION" :as @child)
(entity.link :from-entity "e-1" :to-entity "e-2" :relationship-type "OWNERSHIP"
  :relationship-props {:ownership-percentage 60} :as @link)
`)

	results, ectx, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)
	require.Len(t, results, 3)

	parent, ok := ectx.ResolveString("parent")
	require.True(t, ok)
	require.Equal(t, "e-1", parent)

	l, ok := st.GetLink(results[2].Result.Value.(string))
	require.True(t, ok)
	require.Equal(t, int64(60), l.Props["ownership-percentage"])
}

func TestExecuteProgram_BindingFeedsLaterCall(t *testing.T) {
	exec, st := newTestExecutor()
	prog := mustParse(t, `
(cbu.ensure :name "Acme Master Fund" :jurisdiction "LU" :client-type "FUND" :as @cbu)
(entity.register :entity-id "e-1" :entity-type "ORGANIZATION" :as @owner)
(cbu.assign-role :cbu-id @cbu :entity-id @owner :role "ASSET_OWNER")
`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	cbu, ok := st.GetCBU("Acme Master Fund")
	require.True(t, ok)
	require.Len(t, cbu.Roles, 1)
	require.Equal(t, "e-1", cbu.Roles[0].EntityID)
}

func TestExecuteProgram_CaseCreateThenAppendOnlyUpdate(t *testing.T) {
	exec, st := newTestExecutor()
	prog := mustParse(t, `
(case.create :case-id "case-1" :case-type "KYC_REVIEW")
(case.update :case-id "case-1" :notes "note-001: opened")
(case.update :case-id "case-1" :notes "note-002: docs received")
`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	c, ok := st.GetCase("case-1")
	require.True(t, ok)
	require.Equal(t, []string{"note-001: opened", "note-002: docs received"}, c.Notes)
}

func TestExecuteProgram_UnknownVerbFails(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `(nonexistent.verb :x "y")`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
}

func TestExecuteProgram_StopsOnFirstError(t *testing.T) {
	exec, st := newTestExecutor()
	prog := mustParse(t, `
(case.update :case-id "does-not-exist" :notes "note-001: x")
(case.create :case-id "case-2" :case-type "KYC_REVIEW")
`)

	results, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
	require.Len(t, results, 0)

	_, found := st.GetCase("case-2")
	require.False(t, found, "later forms must not execute once an earlier form fails")
}

func TestEntityEnsureLimitedCompany_IdempotentByDerivedID(t *testing.T) {
	exec, st := newTestExecutor()
	prog := mustParse(t, `
(entity.ensure-limited-company :name "Acme GmbH" :jurisdiction "DE" :lei "LEI123" :as @e1)
(entity.ensure-limited-company :name "Acme GmbH" :jurisdiction "DE" :lei "LEI123" :as @e2)
`)

	_, ectx, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	e1, _ := ectx.ResolveString("e1")
	e2, _ := ectx.ResolveString("e2")
	require.Equal(t, e1, e2)

	entities := 0
	if _, ok := st.GetEntity("Acme GmbH"); ok {
		entities++
	}
	require.Equal(t, 1, entities)
}
