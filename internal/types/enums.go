package types

// GovernanceTier distinguishes lightly-governed operational objects from
// fully-governed ones (I1, I3, I6, G1, G2, G4).
type GovernanceTier string

const (
	TierOperational GovernanceTier = "operational"
	TierGoverned    GovernanceTier = "governed"
)

// TrustClass ranks how much downstream decisions may rely on a value.
type TrustClass string

const (
	TrustConvenience     TrustClass = "convenience"
	TrustDecisionSupport TrustClass = "decision_support"
	TrustProof           TrustClass = "proof"
)

// Classification is a data-sensitivity label (I2).
type Classification string

const (
	ClassificationPublic       Classification = "public"
	ClassificationInternal     Classification = "internal"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

// rank orders classifications for the "≥ Confidential" comparison in I2.
var classificationRank = map[Classification]int{
	ClassificationPublic:       0,
	ClassificationInternal:     1,
	ClassificationConfidential: 2,
	ClassificationRestricted:   3,
}

// AtLeast reports whether c is at least as restrictive as other.
func (c Classification) AtLeast(other Classification) bool {
	return classificationRank[c] >= classificationRank[other]
}

// ChangeType describes the semantic weight of a new snapshot relative to its
// predecessor.
type ChangeType string

const (
	ChangeCreated    ChangeType = "created"
	ChangeMinor      ChangeType = "minor"
	ChangeBreaking   ChangeType = "breaking"
	ChangeDeprecated ChangeType = "deprecated"
)

// SnapshotStatus is the lifecycle state of a registry snapshot.
type SnapshotStatus string

const (
	SnapshotDraft      SnapshotStatus = "draft"
	SnapshotActive     SnapshotStatus = "active"
	SnapshotSuperseded SnapshotStatus = "superseded"
	SnapshotRetired    SnapshotStatus = "retired"
)

// EvidenceGrade constrains how a derivation's inputs may be used as audit
// evidence (I6, I7).
type EvidenceGrade string

const (
	EvidenceProhibited            EvidenceGrade = "prohibited"
	EvidenceAllowedWithConstraint EvidenceGrade = "allowed_with_constraints"
)

// GateMode controls whether an extended gate's Error-severity failures block
// a publish or are merely reported.
type GateMode string

const (
	GateModeEnforce    GateMode = "enforce"
	GateModeReportOnly GateMode = "report_only"
)

// GateSeverity is the severity of an extended gate failure.
type GateSeverity string

const (
	SeverityWarning GateSeverity = "warning"
	SeverityError   GateSeverity = "error"
)
