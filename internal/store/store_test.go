package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sem-os/semcore/internal/types"
)

func TestEnsureEntity_IdempotentUpsert(t *testing.T) {
	s := New()

	e1 := s.EnsureEntity("e-1", "ORGANIZATION", map[string]any{"name": "Acme"})
	e2 := s.EnsureEntity("e-1", "ORGANIZATION", map[string]any{"jurisdiction": "US"})

	require.Same(t, e1, e2)
	require.Equal(t, "Acme", e2.Props["name"])
	require.Equal(t, "US", e2.Props["jurisdiction"])

	got, ok := s.GetEntity("e-1")
	require.True(t, ok)
	require.Equal(t, e2, got)
}

func TestEnsureLink_UpsertsByNaturalKeyWhenNoLinkID(t *testing.T) {
	s := New()

	l1 := s.EnsureLink("", "e-1", "e-2", "OWNERSHIP", map[string]any{"pct": 30})
	l2 := s.EnsureLink("", "e-1", "e-2", "OWNERSHIP", map[string]any{"pct": 45})

	require.Same(t, l1, l2)
	require.Equal(t, 45, l2.Props["pct"])
}

func TestEnsureLink_UpsertsByExplicitLinkID(t *testing.T) {
	s := New()

	l1 := s.EnsureLink("link-1", "e-1", "e-2", "OWNERSHIP", map[string]any{"pct": 10})
	l2 := s.EnsureLink("link-1", "e-9", "e-9", "CONTROL", map[string]any{"pct": 20})

	require.Same(t, l1, l2)
	require.Equal(t, 20, l2.Props["pct"])
}

func TestEnsureDocument_IdempotentUpsert(t *testing.T) {
	s := New()

	d1 := s.EnsureDocument("doc-1", "PASSPORT", "")
	d2 := s.EnsureDocument("doc-1", "", "sha256:abc")

	require.Same(t, d1, d2)
	require.Equal(t, "PASSPORT", d2.DocumentType)
	require.Equal(t, "sha256:abc", d2.FileHash)
}

func TestCreateCase_FirstWriterWins(t *testing.T) {
	s := New()

	c1 := s.CreateCase("case-1", "KYC_REVIEW")
	c2 := s.CreateCase("case-1", "UBO_REVIEW")

	require.Same(t, c1, c2)
	require.Equal(t, "KYC_REVIEW", c2.CaseType)
}

func TestAppendCaseNote_AppendOnly(t *testing.T) {
	s := New()
	s.CreateCase("case-1", "KYC_REVIEW")

	c, ok := s.AppendCaseNote("case-1", "first note")
	require.True(t, ok)
	c, ok = s.AppendCaseNote("case-1", "second note")
	require.True(t, ok)

	require.Equal(t, []string{"first note", "second note"}, c.Notes)
}

func TestAppendCaseNote_UnknownCaseReturnsFalse(t *testing.T) {
	s := New()
	_, ok := s.AppendCaseNote("does-not-exist", "note")
	require.False(t, ok)
}

func TestLinksFrom_ReturnsOnlyOutgoingLinks(t *testing.T) {
	s := New()
	s.EnsureLink("l1", "e-1", "e-2", "OWNERSHIP", nil)
	s.EnsureLink("l2", "e-1", "e-3", "OWNERSHIP", nil)
	s.EnsureLink("l3", "e-2", "e-1", "CONTROL", nil)

	out := s.LinksFrom("e-1")
	require.Len(t, out, 2)
}

func TestSnapshots_LatestReflectsMostRecentAppend(t *testing.T) {
	s := New()
	objID := types.NewID()

	_, ok := s.LatestSnapshot("verb_contract", objID)
	require.False(t, ok)

	first := &types.Snapshot{ObjectType: "verb_contract", ObjectID: objID, VersionMajor: 1}
	second := &types.Snapshot{ObjectType: "verb_contract", ObjectID: objID, VersionMajor: 2}

	s.AppendSnapshot(first)
	s.AppendSnapshot(second)

	latest, ok := s.LatestSnapshot("verb_contract", objID)
	require.True(t, ok)
	require.Equal(t, 2, latest.VersionMajor)

	chain := s.SnapshotChain("verb_contract", objID)
	require.Len(t, chain, 2)
	require.Equal(t, 1, chain[0].VersionMajor)
	require.Equal(t, 2, chain[1].VersionMajor)
}

func TestEnsureCBU_IdempotentByName(t *testing.T) {
	s := New()

	c1 := s.EnsureCBU("Acme Master Fund", "LU", "FUND")
	c2 := s.EnsureCBU("Acme Master Fund", "", "")

	require.Same(t, c1, c2)
	require.Equal(t, "LU", c2.Jurisdiction)
	require.Equal(t, "FUND", c2.ClientType)
}

func TestAssignRole_IdempotentAssignment(t *testing.T) {
	s := New()
	c := s.EnsureCBU("Acme Master Fund", "LU", "FUND")

	_, err := s.AssignRole(c.CBUID, "entity-1", "ASSET_OWNER")
	require.NoError(t, err)
	_, err = s.AssignRole(c.CBUID, "entity-1", "ASSET_OWNER")
	require.NoError(t, err)

	got, ok := s.GetCBU(c.CBUID)
	require.True(t, ok)
	require.Len(t, got.Roles, 1)
}

func TestAssignRole_UnknownCBUReturnsError(t *testing.T) {
	s := New()
	_, err := s.AssignRole("does-not-exist", "entity-1", "ASSET_OWNER")
	require.ErrorIs(t, err, ErrCBUNotFound)
}

func TestSnapshotByFQN_FindsActiveHeadAcrossChains(t *testing.T) {
	s := New()
	objID := types.NewID()

	draft := &types.Snapshot{
		ObjectType: "dsl_program", ObjectID: objID, VersionMajor: 1,
		Status:     types.SnapshotDraft,
		Definition: map[string]any{"fqn": "remediation.missing-ubo", "source": "(entity.link ...)"},
	}
	s.AppendSnapshot(draft)

	_, ok := s.SnapshotByFQN("remediation.missing-ubo")
	require.False(t, ok)

	active := &types.Snapshot{
		ObjectType: "dsl_program", ObjectID: objID, VersionMajor: 2,
		Status:     types.SnapshotActive,
		Definition: map[string]any{"fqn": "remediation.missing-ubo", "source": "(entity.link :as @l)"},
	}
	s.AppendSnapshot(active)

	found, ok := s.SnapshotByFQN("remediation.missing-ubo")
	require.True(t, ok)
	require.Same(t, active, found)

	_, ok = s.SnapshotByFQN("no-such-fqn")
	require.False(t, ok)
}

func TestActiveSnapshots_ReturnsOnlyActiveChainHeads(t *testing.T) {
	s := New()

	retired := &types.Snapshot{ObjectType: "attribute", ObjectID: types.NewID(), Status: types.SnapshotRetired,
		Definition: map[string]any{"fqn": "attr.one"}}
	active := &types.Snapshot{ObjectType: "attribute", ObjectID: types.NewID(), Status: types.SnapshotActive,
		Definition: map[string]any{"fqn": "attr.two"}}
	s.AppendSnapshot(retired)
	s.AppendSnapshot(active)

	out := s.ActiveSnapshots()
	require.Len(t, out, 1)
	require.Equal(t, "attr.two", out[0].FQN())
}

func TestEnsureEntity_ConcurrentCallsConverge(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.EnsureEntity("e-race", "ORGANIZATION", map[string]any{"seen": n})
		}(i)
	}
	wg.Wait()

	got, ok := s.GetEntity("e-race")
	require.True(t, ok)
	require.NotNil(t, got.Props["seen"])
}
