// Package gates implements the two layered publish-gate pipelines: simple
// gates (always-enforce, I1-I4) and extended gates (severity- and mode-aware,
// T3/T5/G1/G2/G4-G8 plus the derivation-graph gates).
package gates

import (
	"fmt"

	"github.com/sem-os/semcore/internal/types"
)

// Result is the outcome of a single simple gate check.
type Result struct {
	GateName string
	Passed   bool
	Reason   string
}

func pass(name string) Result {
	return Result{GateName: name, Passed: true}
}

func fail(name, reason string) Result {
	return Result{GateName: name, Passed: false, Reason: reason}
}

// String renders a failed result the way the unified failure report does:
// "[gate_name] reason". Passed results render empty.
func (r Result) String() string {
	if r.Passed {
		return ""
	}
	return fmt.Sprintf("[%s] %s", r.GateName, r.Reason)
}

// PublishGateResult aggregates the four simple gate checks run on every
// publish.
type PublishGateResult struct {
	Results []Result
}

// AllPassed reports whether every simple gate passed.
func (p PublishGateResult) AllPassed() bool {
	for _, r := range p.Results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns only the failed results.
func (p PublishGateResult) Failures() []Result {
	var out []Result
	for _, r := range p.Results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// FailureMessages renders each failure as "[gate_name] reason".
func (p PublishGateResult) FailureMessages() []string {
	var out []string
	for _, r := range p.Failures() {
		out = append(out, r.String())
	}
	return out
}

// CheckProofRule enforces I1: an Operational-tier snapshot cannot carry
// TrustClass=Proof.
func CheckProofRule(tier types.GovernanceTier, trust types.TrustClass) Result {
	if tier == types.TierOperational && trust == types.TrustProof {
		return fail("proof_rule", "Operational-tier objects cannot carry TrustClass=Proof")
	}
	return pass("proof_rule")
}

// CheckSecurityLabel enforces I2: PII data may not be labeled Public or
// Internal.
func CheckSecurityLabel(label types.SecurityLabel) Result {
	if label.PII && (label.Classification == types.ClassificationPublic || label.Classification == types.ClassificationInternal) {
		return fail("security_label", "PII-bearing objects must be classified Confidential or Restricted")
	}
	return pass("security_label")
}

// CheckGovernedApproval enforces I3: Governed-tier objects require an
// approver at publish time.
func CheckGovernedApproval(meta types.SnapshotMeta) Result {
	if meta.GovernanceTier == types.TierGoverned && (meta.ApprovedBy == nil || *meta.ApprovedBy == "") {
		return fail("governed_approval", "Governed-tier objects require approved_by at publish time")
	}
	return pass("governed_approval")
}

// CheckVersionMonotonicity enforces the weak form of I4: a new version must
// be greater than or equal to its predecessor's. A nil predecessor always
// passes.
func CheckVersionMonotonicity(meta types.SnapshotMeta, predecessor *types.SnapshotMeta) Result {
	if predecessor == nil {
		return pass("version_monotonicity")
	}
	if meta.Version.Less(predecessor.Version) {
		return fail("version_monotonicity", fmt.Sprintf(
			"new version %d.%d is less than predecessor version %d.%d",
			meta.Version.Major, meta.Version.Minor,
			predecessor.Version.Major, predecessor.Version.Minor,
		))
	}
	return pass("version_monotonicity")
}

// EvaluatePublishGates runs the four simple gates in their fixed order.
func EvaluatePublishGates(meta types.SnapshotMeta, predecessor *types.SnapshotMeta) PublishGateResult {
	return PublishGateResult{Results: []Result{
		CheckProofRule(meta.GovernanceTier, meta.TrustClass),
		CheckSecurityLabel(meta.SecurityLabel),
		CheckGovernedApproval(meta),
		CheckVersionMonotonicity(meta, predecessor),
	}}
}
