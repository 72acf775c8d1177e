package gates

import (
	"fmt"

	"github.com/sem-os/semcore/internal/types"
)

// UnifiedResult combines the simple and extended gate pipelines for a single
// publish attempt.
type UnifiedResult struct {
	Simple   PublishGateResult
	Extended []Failure
	Mode     types.GateMode
}

// EvaluateAllPublishGates runs both pipelines against a candidate snapshot.
func EvaluateAllPublishGates(meta types.SnapshotMeta, predecessorMeta *types.SnapshotMeta, snapshot *types.Snapshot, ctx ExtendedContext, mode types.GateMode) UnifiedResult {
	return UnifiedResult{
		Simple:   EvaluatePublishGates(meta, predecessorMeta),
		Extended: EvaluateExtendedGates(snapshot, ctx),
		Mode:     mode,
	}
}

// ShouldBlock is the unified blocking rule: any simple failure blocks
// unconditionally; an extended Error failure blocks only under Enforce mode.
func (u UnifiedResult) ShouldBlock() bool {
	return !u.Simple.AllPassed() || ShouldBlockExtended(u.Extended, u.Mode)
}

// ErrorCount counts Error-severity extended failures (simple gates have no
// severity tiering — they always block on failure).
func (u UnifiedResult) ErrorCount() int {
	n := 0
	for _, f := range u.Extended {
		if f.Severity == types.SeverityError {
			n++
		}
	}
	return n
}

// WarningCount counts Warning-severity extended failures.
func (u UnifiedResult) WarningCount() int {
	n := 0
	for _, f := range u.Extended {
		if f.Severity == types.SeverityWarning {
			n++
		}
	}
	return n
}

// AllFailureMessages renders every simple failure plus every extended Error
// failure, in that order.
func (u UnifiedResult) AllFailureMessages() []string {
	msgs := u.Simple.FailureMessages()
	for _, f := range u.Extended {
		if f.Severity != types.SeverityError {
			continue
		}
		fqn := f.ObjectFQN
		if fqn == "" {
			fqn = "unknown"
		}
		msgs = append(msgs, fmt.Sprintf("[%s] (%s) %s", f.GateName, fqn, f.Message))
	}
	return msgs
}
