package gates

import (
	"testing"

	"github.com/sem-os/semcore/internal/derivation"
	"github.com/sem-os/semcore/internal/types"
	"github.com/stretchr/testify/require"
)

func approvedBy(name string) *string { return &name }

// S5: two simple-gate failures (proof_rule + security_label) on one meta.
func TestS5_SimpleGateTwoFailures(t *testing.T) {
	meta := types.SnapshotMeta{
		GovernanceTier: types.TierOperational,
		TrustClass:     types.TrustProof,
		SecurityLabel: types.SecurityLabel{
			PII:            true,
			Classification: types.ClassificationPublic,
		},
		ApprovedBy: nil,
	}

	result := EvaluatePublishGates(meta, nil)
	require.Len(t, result.Failures(), 2)
	require.True(t, func() bool {
		for _, f := range result.Failures() {
			if f.GateName == "proof_rule" {
				return true
			}
		}
		return false
	}())
	require.True(t, func() bool {
		for _, f := range result.Failures() {
			if f.GateName == "security_label" {
				return true
			}
		}
		return false
	}())
	require.False(t, result.AllPassed())
}

// S6: a two-node derivation cycle reports exactly one failure naming both FQNs.
func TestS6_DerivationCycle(t *testing.T) {
	d1 := types.DerivationSpec{FQN: "deriv.a", OutputAttributeFQN: "out.a", Inputs: []types.DerivationInput{{AttributeFQN: "out.b"}}}
	d2 := types.DerivationSpec{FQN: "deriv.b", OutputAttributeFQN: "out.b", Inputs: []types.DerivationInput{{AttributeFQN: "out.a"}}}

	failures := CheckDerivationCycle([]types.DerivationSpec{d1, d2})
	require.Len(t, failures, 1)
	require.Contains(t, failures[0].Message, "deriv.a")
	require.Contains(t, failures[0].Message, "deriv.b")
}

func TestDerivationCycle_Acyclic(t *testing.T) {
	d1 := types.DerivationSpec{FQN: "deriv.a", OutputAttributeFQN: "out.a", Inputs: []types.DerivationInput{{AttributeFQN: "raw.x"}}}
	d2 := types.DerivationSpec{FQN: "deriv.b", OutputAttributeFQN: "out.b", Inputs: []types.DerivationInput{{AttributeFQN: "out.a"}}}

	failures := CheckDerivationCycle([]types.DerivationSpec{d1, d2})
	require.Empty(t, failures)
}

// Property 1: proof rule iff not (Proof and Operational).
func TestProperty1_ProofRule(t *testing.T) {
	cases := []struct {
		tier  types.GovernanceTier
		trust types.TrustClass
		want  bool
	}{
		{types.TierOperational, types.TrustProof, false},
		{types.TierOperational, types.TrustConvenience, true},
		{types.TierGoverned, types.TrustProof, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CheckProofRule(c.tier, c.trust).Passed)
	}
}

// Property 2: security label iff not (pii and classification in {Public, Internal}).
func TestProperty2_SecurityLabel(t *testing.T) {
	cases := []struct {
		label types.SecurityLabel
		want  bool
	}{
		{types.SecurityLabel{PII: true, Classification: types.ClassificationPublic}, false},
		{types.SecurityLabel{PII: true, Classification: types.ClassificationInternal}, false},
		{types.SecurityLabel{PII: true, Classification: types.ClassificationConfidential}, true},
		{types.SecurityLabel{PII: false, Classification: types.ClassificationPublic}, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CheckSecurityLabel(c.label).Passed)
	}
}

// Property 3: governed approval iff tier != Governed or approved_by is some.
func TestProperty3_GovernedApproval(t *testing.T) {
	withApproval := types.SnapshotMeta{GovernanceTier: types.TierGoverned, ApprovedBy: approvedBy("alice")}
	require.True(t, CheckGovernedApproval(withApproval).Passed)

	withoutApproval := types.SnapshotMeta{GovernanceTier: types.TierGoverned, ApprovedBy: nil}
	require.False(t, CheckGovernedApproval(withoutApproval).Passed)

	operational := types.SnapshotMeta{GovernanceTier: types.TierOperational, ApprovedBy: nil}
	require.True(t, CheckGovernedApproval(operational).Passed)
}

// Property 4: simple monotonicity iff predecessor is none or new version >= predecessor version.
func TestProperty4_VersionMonotonicity(t *testing.T) {
	pred := types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 2}}

	require.True(t, CheckVersionMonotonicity(types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 2}}, &pred).Passed)
	require.True(t, CheckVersionMonotonicity(types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 3}}, &pred).Passed)
	require.False(t, CheckVersionMonotonicity(types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 1}}, &pred).Passed)
	require.True(t, CheckVersionMonotonicity(types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 0}}, nil).Passed)
}

// The open-question discrepancy: simple gate accepts equality, G6 requires
// strict inequality — both must be independently surfaced.
func TestSimpleVsG6_DiscrepancyIsPreserved(t *testing.T) {
	predSnap := &types.Snapshot{ObjectID: types.NewID(), VersionMajor: 1, VersionMinor: 2, Status: types.SnapshotActive}
	newSnap := &types.Snapshot{ObjectID: predSnap.ObjectID, VersionMajor: 1, VersionMinor: 2, Status: types.SnapshotDraft, Definition: map[string]any{}, SecurityLabel: types.SecurityLabel{Classification: types.ClassificationInternal}}

	predMeta := types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 2}}
	newMeta := types.SnapshotMeta{Version: types.Version{Major: 1, Minor: 2}}

	simple := EvaluatePublishGates(newMeta, &predMeta)
	require.True(t, simple.AllPassed(), "simple gate accepts equal versions")

	extended := EvaluateExtendedGates(newSnap, ExtendedContext{Predecessor: predSnap})
	require.True(t, HasErrors(extended), "G6 rejects equal versions")
}

func TestDerivationEvidenceGrade(t *testing.T) {
	spec := types.DerivationSpec{FQN: "deriv.x", EvidenceGrade: types.EvidenceAllowedWithConstraint}
	f, failed := CheckDerivationEvidenceGrade(spec, types.TierOperational)
	require.True(t, failed)
	require.Contains(t, f.Message, "deriv.x")

	_, failed = CheckDerivationEvidenceGrade(spec, types.TierGoverned)
	require.False(t, failed)
}

func TestDerivationExpression(t *testing.T) {
	eval := derivation.NewEvaluator()

	wellFormed := types.DerivationSpec{
		FQN:        "deriv.sum",
		Expression: "a + b",
		Inputs: []types.DerivationInput{
			{AttributeFQN: "in.a", Role: "a", Required: true},
			{AttributeFQN: "in.b", Role: "b", Required: true},
		},
	}
	_, failed := CheckDerivationExpression(wellFormed, eval)
	require.False(t, failed)

	malformed := types.DerivationSpec{
		FQN:        "deriv.bad",
		Expression: "a +",
		Inputs:     []types.DerivationInput{{AttributeFQN: "in.a", Role: "a", Required: true}},
	}
	f, failed := CheckDerivationExpression(malformed, eval)
	require.True(t, failed)
	require.Equal(t, "derivation_expression", f.GateName)
	require.Contains(t, f.Message, "deriv.bad")
}

func TestEvidenceProofRule(t *testing.T) {
	_, failed := CheckEvidenceProofRule(types.TierOperational, types.TrustProof)
	require.True(t, failed)

	_, failed = CheckEvidenceProofRule(types.TierGoverned, types.TrustProof)
	require.False(t, failed)
}

func TestUnifiedResult_ShouldBlock(t *testing.T) {
	meta := types.SnapshotMeta{GovernanceTier: types.TierOperational, TrustClass: types.TrustConvenience, SecurityLabel: types.SecurityLabel{Classification: types.ClassificationInternal}}
	snap := &types.Snapshot{ObjectID: types.NewID(), GovernanceTier: types.TierGoverned, Definition: map[string]any{"fqn": "x"}, SecurityLabel: types.SecurityLabel{Classification: types.ClassificationInternal}}

	u := EvaluateAllPublishGates(meta, nil, snap, ExtendedContext{}, types.GateModeEnforce)
	require.True(t, u.ShouldBlock(), "governed object with no taxonomy membership should block under Enforce")

	u2 := EvaluateAllPublishGates(meta, nil, snap, ExtendedContext{}, types.GateModeReportOnly)
	require.False(t, u2.ShouldBlock(), "ReportOnly never blocks on extended errors")
}
