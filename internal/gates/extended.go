package gates

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sem-os/semcore/internal/derivation"
	"github.com/sem-os/semcore/internal/types"
)

// Failure is an extended-gate finding: richer than a simple Result, carrying
// severity, the object it concerns, and an optional remediation hint.
type Failure struct {
	GateName        string
	Severity        types.GateSeverity
	ObjectType      string
	ObjectFQN       string
	SnapshotID      *types.ID
	Message         string
	RemediationHint string
}

func errorFailure(gateName, objectType, message string) Failure {
	return Failure{GateName: gateName, Severity: types.SeverityError, ObjectType: objectType, Message: message}
}

func warningFailure(gateName, objectType, message string) Failure {
	return Failure{GateName: gateName, Severity: types.SeverityWarning, ObjectType: objectType, Message: message}
}

// WithFQN chains an object FQN onto a failure.
func (f Failure) WithFQN(fqn string) Failure {
	f.ObjectFQN = fqn
	return f
}

// WithSnapshotID chains a snapshot id onto a failure.
func (f Failure) WithSnapshotID(id types.ID) Failure {
	f.SnapshotID = &id
	return f
}

// WithHint chains a remediation hint onto a failure.
func (f Failure) WithHint(hint string) Failure {
	f.RemediationHint = hint
	return f
}

// ExtendedContext supplies the cross-cutting state extended gates need beyond
// the candidate snapshot itself. Zero-value fields mean "no information
// available" and cause the corresponding gate to pass rather than panic.
type ExtendedContext struct {
	Predecessor     *types.Snapshot
	Memberships     map[string][]string // object_fqn -> taxonomy fqns it belongs to
	KnownVerbFQNs   map[string]struct{}
	KnownAttrFQNs   map[string]struct{}
	RegulatoryLinks map[string][]string // object_fqn -> regulatory reference ids
	ReviewCadence   map[string]time.Duration
	LastReviewed    map[string]time.Time
	Now             *time.Time
}

func (c ExtendedContext) now() time.Time {
	if c.Now != nil {
		return *c.Now
	}
	return time.Now()
}

// EvaluateExtendedGates runs T3, T5, G1, G2, G4, G5, G6, G7, and (for
// VerbContract objects) G8 against snapshot.
func EvaluateExtendedGates(snapshot *types.Snapshot, ctx ExtendedContext) []Failure {
	var out []Failure
	if f, ok := checkSecurityLabelPresence(snapshot); ok {
		out = append(out, f)
	}
	if f, ok := checkSnapshotIntegrity(snapshot, ctx.Predecessor); ok {
		out = append(out, f)
	}
	if f, ok := checkTaxonomyMembership(snapshot, ctx.Memberships); ok {
		out = append(out, f)
	}
	if f, ok := checkStewardship(snapshot); ok {
		out = append(out, f)
	}
	if f, ok := checkRegulatoryLinkage(snapshot, ctx.RegulatoryLinks); ok {
		out = append(out, f)
	}
	if f, ok := checkReviewCycleCompliance(snapshot, ctx); ok {
		out = append(out, f)
	}
	if f, ok := checkVersionConsistency(snapshot, ctx.Predecessor); ok {
		out = append(out, f)
	}
	if f, ok := checkContinuationCompleteness(snapshot); ok {
		out = append(out, f)
	}
	if snapshot.ObjectType == "VerbContract" {
		if f, ok := checkMacroExpansionIntegrity(snapshot, ctx.KnownVerbFQNs); ok {
			out = append(out, f)
		}
	}
	return out
}

// T3 security_label_presence: the label must be populated for governed and
// operational objects alike.
func checkSecurityLabelPresence(s *types.Snapshot) (Failure, bool) {
	if s.SecurityLabel.Classification == "" {
		return errorFailure("security_label_presence", s.ObjectType,
			"snapshot has no security classification").WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// T5 snapshot_integrity: predecessor linkage must be internally consistent.
func checkSnapshotIntegrity(s *types.Snapshot, predecessor *types.Snapshot) (Failure, bool) {
	if predecessor == nil {
		return Failure{}, false
	}
	if predecessor.ObjectID != s.ObjectID {
		return errorFailure("snapshot_integrity", s.ObjectType,
			"predecessor object_id does not match new snapshot's object_id").WithFQN(s.FQN()), true
	}
	if predecessor.Status != types.SnapshotActive && predecessor.Status != types.SnapshotSuperseded {
		return errorFailure("snapshot_integrity", s.ObjectType,
			fmt.Sprintf("predecessor status %q is not Active or Superseded", predecessor.Status)).WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G1 taxonomy_membership: Governed-tier objects must belong to at least one
// taxonomy.
func checkTaxonomyMembership(s *types.Snapshot, memberships map[string][]string) (Failure, bool) {
	if s.GovernanceTier != types.TierGoverned {
		return Failure{}, false
	}
	if len(memberships[s.FQN()]) == 0 {
		return errorFailure("taxonomy_membership", s.ObjectType,
			"Governed-tier object does not belong to any taxonomy").WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G2 stewardship: Governed-tier objects must have a human steward, not a
// system scanner, as their creator.
func checkStewardship(s *types.Snapshot) (Failure, bool) {
	if s.GovernanceTier != types.TierGoverned {
		return Failure{}, false
	}
	if s.CreatedBy == "" || strings.HasSuffix(s.CreatedBy, "-scanner") || strings.HasPrefix(s.CreatedBy, "system:") {
		return errorFailure("stewardship", s.ObjectType,
			"Governed-tier object has no human steward").WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G4 regulatory_linkage: Governed objects with TrustClass=Proof must link to
// at least one regulatory reference.
func checkRegulatoryLinkage(s *types.Snapshot, links map[string][]string) (Failure, bool) {
	if s.GovernanceTier != types.TierGoverned || s.TrustClass != types.TrustProof {
		return Failure{}, false
	}
	if len(links[s.FQN()]) == 0 {
		return errorFailure("regulatory_linkage", s.ObjectType,
			"Governed Proof-class object has no regulatory reference").WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G5 review_cycle_compliance: when a review cadence is declared for this
// object, the time since its last review must not exceed it.
func checkReviewCycleCompliance(s *types.Snapshot, ctx ExtendedContext) (Failure, bool) {
	cadence, hasCadence := ctx.ReviewCadence[s.FQN()]
	if !hasCadence {
		return Failure{}, false
	}
	lastReviewed, ok := ctx.LastReviewed[s.FQN()]
	if !ok {
		return warningFailure("review_cycle_compliance", s.ObjectType,
			"object has a review cadence but no recorded review date").WithFQN(s.FQN()), true
	}
	if ctx.now().Sub(lastReviewed) > cadence {
		return warningFailure("review_cycle_compliance", s.ObjectType,
			fmt.Sprintf("object was last reviewed %s ago, exceeding its %s cadence", ctx.now().Sub(lastReviewed), cadence)).
			WithFQN(s.FQN()).WithHint("Schedule a review."), true
	}
	return Failure{}, false
}

// G6 version_consistency: the strict form of I4.
func checkVersionConsistency(s *types.Snapshot, predecessor *types.Snapshot) (Failure, bool) {
	if predecessor == nil {
		return Failure{}, false
	}
	if s.Version().Compare(predecessor.Version()) <= 0 {
		return errorFailure("version_consistency", s.ObjectType,
			fmt.Sprintf("new version %d.%d must be strictly greater than predecessor version %d.%d",
				s.VersionMajor, s.VersionMinor, predecessor.VersionMajor, predecessor.VersionMinor)).WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G7 continuation_completeness: Breaking changes require a rationale (I8).
func checkContinuationCompleteness(s *types.Snapshot) (Failure, bool) {
	if s.ChangeType == types.ChangeBreaking && strings.TrimSpace(s.ChangeRationale) == "" {
		return errorFailure("continuation_completeness", s.ObjectType,
			"Breaking change requires a non-empty change_rationale").WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// G8 macro_expansion_integrity: a VerbContract definition referencing other
// verbs by FQN must resolve every reference against known_verb_fqns.
func checkMacroExpansionIntegrity(s *types.Snapshot, knownVerbFQNs map[string]struct{}) (Failure, bool) {
	raw, ok := s.Definition["references_verbs"]
	if !ok {
		return Failure{}, false
	}
	refs, ok := raw.([]string)
	if !ok {
		if anyRefs, isSlice := raw.([]any); isSlice {
			refs = make([]string, 0, len(anyRefs))
			for _, r := range anyRefs {
				if str, ok := r.(string); ok {
					refs = append(refs, str)
				}
			}
		}
	}
	var unresolved []string
	for _, ref := range refs {
		if _, known := knownVerbFQNs[ref]; !known {
			unresolved = append(unresolved, ref)
		}
	}
	if len(unresolved) > 0 {
		return errorFailure("macro_expansion_integrity", s.ObjectType,
			fmt.Sprintf("references unknown verb(s): %s", strings.Join(unresolved, ", "))).WithFQN(s.FQN()), true
	}
	return Failure{}, false
}

// CheckEvidenceProofRule enforces I7: evidence referencing a Proof-class
// attribute must itself be Governed.
func CheckEvidenceProofRule(evidenceTier types.GovernanceTier, referencedAttributeTrust types.TrustClass) (Failure, bool) {
	if referencedAttributeTrust == types.TrustProof && evidenceTier != types.TierGoverned {
		return errorFailure("evidence_proof_rule", "Evidence",
			"evidence referencing a Proof-class attribute must itself be Governed-tier"), true
	}
	return Failure{}, false
}

// CheckDerivationEvidenceGrade enforces I6: Operational-tier derivations must
// have evidence_grade = Prohibited.
func CheckDerivationEvidenceGrade(spec types.DerivationSpec, tier types.GovernanceTier) (Failure, bool) {
	if tier == types.TierOperational && spec.EvidenceGrade != types.EvidenceProhibited {
		return errorFailure("derivation_evidence_grade", "DerivationSpec",
			fmt.Sprintf("Operational-tier derivation %q must have evidence_grade=prohibited", spec.FQN)).
			WithFQN(spec.FQN), true
	}
	return Failure{}, false
}

// CheckDerivationExpression compiles spec.Expression against a CEL
// environment declaring one variable per input role and reports a failure
// if it fails to parse or type-check. This catches a malformed formula at
// publish time rather than on first executor-side recomputation.
func CheckDerivationExpression(spec types.DerivationSpec, eval *derivation.Evaluator) (Failure, bool) {
	if err := eval.Compile(spec); err != nil {
		return errorFailure("derivation_expression", "DerivationSpec", err.Error()).
			WithFQN(spec.FQN).
			WithHint("Fix the expression syntax or its input variable references."), true
	}
	return Failure{}, false
}

// CheckDerivationTypeCompatibility verifies the output FQN and every input
// FQN resolve against the known attribute set.
func CheckDerivationTypeCompatibility(spec types.DerivationSpec, knownAttributeFQNs map[string]struct{}) []Failure {
	var out []Failure
	if _, ok := knownAttributeFQNs[spec.OutputAttributeFQN]; !ok {
		out = append(out, errorFailure("derivation_type_compatibility", "DerivationSpec",
			fmt.Sprintf("output attribute %q is not a known attribute", spec.OutputAttributeFQN)).
			WithFQN(spec.FQN).
			WithHint("Publish the output attribute definition first."))
	}
	for _, in := range spec.Inputs {
		if _, ok := knownAttributeFQNs[in.AttributeFQN]; !ok {
			out = append(out, errorFailure("derivation_type_compatibility", "DerivationSpec",
				fmt.Sprintf("input attribute %q is not a known attribute", in.AttributeFQN)).
				WithFQN(spec.FQN).
				WithHint("Publish the input attribute definition first."))
		}
	}
	return out
}

// CheckDerivationCycle runs Kahn's algorithm over the input->output
// derivation graph (I5) and reports exactly one failure naming every FQN on
// a cycle, if any exists.
func CheckDerivationCycle(specs []types.DerivationSpec) []Failure {
	outputToSpec := make(map[string]types.DerivationSpec, len(specs))
	adj := make(map[string][]string) // output -> inputs
	allNodes := make(map[string]struct{})

	for _, s := range specs {
		outputToSpec[s.OutputAttributeFQN] = s
		adj[s.OutputAttributeFQN] = s.InputFQNs()
		allNodes[s.OutputAttributeFQN] = struct{}{}
		for _, in := range s.InputFQNs() {
			allNodes[in] = struct{}{}
		}
	}

	inDegree := make(map[string]int, len(allNodes))
	for n := range allNodes {
		inDegree[n] = 0
	}
	for output, inputs := range adj {
		inDegree[output] = len(inputs)
	}

	reverseAdj := make(map[string][]string) // input -> outputs that depend on it
	for output, inputs := range adj {
		for _, in := range inputs {
			reverseAdj[in] = append(reverseAdj[in], output)
		}
	}

	var queue []string
	for n := range allNodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	visited := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		visited++
		for _, dependent := range reverseAdj[cur] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if visited >= len(allNodes) {
		return nil
	}

	var cycleFQNs []string
	for n, deg := range inDegree {
		if deg > 0 {
			if spec, ok := outputToSpec[n]; ok {
				cycleFQNs = append(cycleFQNs, spec.FQN)
			}
		}
	}
	sort.Strings(cycleFQNs)
	return []Failure{
		errorFailure("derivation_cycle", "DerivationSpec",
			fmt.Sprintf("Cycle detected in derivation graph involving: %s", strings.Join(cycleFQNs, ", "))),
	}
}

// ShouldBlockExtended reports whether failures should block a publish under
// mode: true iff at least one Error-severity failure is present and mode is
// Enforce.
func ShouldBlockExtended(failures []Failure, mode types.GateMode) bool {
	if mode != types.GateModeEnforce {
		return false
	}
	for _, f := range failures {
		if f.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// HasErrors reports whether any failure is Error-severity, regardless of mode.
func HasErrors(failures []Failure) bool {
	for _, f := range failures {
		if f.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any failure is Warning-severity.
func HasWarnings(failures []Failure) bool {
	for _, f := range failures {
		if f.Severity == types.SeverityWarning {
			return true
		}
	}
	return false
}

// FailureReport renders failures as one "[ERROR|WARN] gate_name (fqn): message"
// line per failure, or "All gates passed." if empty.
func FailureReport(failures []Failure) string {
	if len(failures) == 0 {
		return "All gates passed."
	}
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		sev := "WARN"
		if f.Severity == types.SeverityError {
			sev = "ERROR"
		}
		fqn := f.ObjectFQN
		if fqn == "" {
			fqn = "unknown"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s (%s): %s", sev, f.GateName, fqn, f.Message))
	}
	return strings.Join(lines, "\n")
}

// gateFailureJSON mirrors the wire schema.
type gateFailureJSON struct {
	GateName        string  `json:"gate_name"`
	Severity        string  `json:"severity"`
	ObjectType      string  `json:"object_type"`
	ObjectFQN       *string `json:"object_fqn,omitempty"`
	SnapshotID      *string `json:"snapshot_id,omitempty"`
	Message         string  `json:"message"`
	RemediationHint *string `json:"remediation_hint,omitempty"`
}

type extendedResultJSON struct {
	Mode         string            `json:"mode"`
	Blocked      bool              `json:"blocked"`
	ErrorCount   int               `json:"error_count"`
	WarningCount int               `json:"warning_count"`
	Failures     []gateFailureJSON `json:"failures"`
}

// ToJSON renders failures/mode as the §6 wire schema.
func ToJSON(failures []Failure, mode types.GateMode) ([]byte, error) {
	out := extendedResultJSON{
		Mode:    string(mode),
		Blocked: ShouldBlockExtended(failures, mode),
	}
	for _, f := range failures {
		fj := gateFailureJSON{
			GateName:   f.GateName,
			Severity:   string(f.Severity),
			ObjectType: f.ObjectType,
			Message:    f.Message,
		}
		if f.ObjectFQN != "" {
			fqn := f.ObjectFQN
			fj.ObjectFQN = &fqn
		}
		if f.SnapshotID != nil {
			id := f.SnapshotID.String()
			fj.SnapshotID = &id
		}
		if f.RemediationHint != "" {
			hint := f.RemediationHint
			fj.RemediationHint = &hint
		}
		if f.Severity == types.SeverityError {
			out.ErrorCount++
		} else {
			out.WarningCount++
		}
		out.Failures = append(out.Failures, fj)
	}
	return json.Marshal(out)
}
