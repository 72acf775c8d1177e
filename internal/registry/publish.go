// Package registry is the publish-pipeline glue named by the flow line in
// C7: parse/lint having already happened upstream, Publish takes a
// candidate snapshot, runs the simple and extended gate pipelines against
// it, and — if the unified result doesn't block — persists it and returns
// the stored snapshot. Everything it calls (gates, store) is independently
// tested; this package is the thin sequencing step cmd/semcored's
// registry.publish tool drives.
package registry

import (
	"fmt"
	"time"

	"github.com/sem-os/semcore/internal/gates"
	"github.com/sem-os/semcore/internal/store"
	"github.com/sem-os/semcore/internal/types"
)

// ReviewPolicy supplies the per-FQN review cadence and last-reviewed time
// the review_cycle_compliance gate needs. A nil ReviewPolicy disables that
// gate (no cadence configured means nothing is ever overdue).
type ReviewPolicy interface {
	Cadence(fqn string) (time.Duration, bool)
	LastReviewed(fqn string) (time.Time, bool)
}

// Registry runs the publish pipeline against a backing store.
type Registry struct {
	store  *store.Store
	mode   types.GateMode
	policy ReviewPolicy
}

// New returns a Registry publishing against st under mode, optionally
// consulting policy for review-cadence compliance.
func New(st *store.Store, mode types.GateMode, policy ReviewPolicy) *Registry {
	return &Registry{store: st, mode: mode, policy: policy}
}

// Request is a candidate snapshot awaiting the gate pipeline. It carries no
// ObjectID: Publish takes it from any existing snapshot chain sharing FQN
// (allocating a fresh one otherwise), so that republishing an existing definition
// versions the same object rather than forking a new one.
type Request struct {
	ObjectType      string
	FQN             string
	Definition      map[string]any
	VersionMajor    int
	VersionMinor    int
	GovernanceTier  types.GovernanceTier
	TrustClass      types.TrustClass
	SecurityLabel   types.SecurityLabel
	ChangeType      types.ChangeType
	ChangeRationale string
	CreatedBy       string
	ApprovedBy      *string
}

// Publish runs the unified gate pipeline against req and, if it doesn't
// block, appends the resulting snapshot to the store. The UnifiedResult is
// always returned so a caller can inspect warnings even on success, or every
// failure reason on block.
func (r *Registry) Publish(req Request) (*types.Snapshot, gates.UnifiedResult, error) {
	if req.Definition == nil {
		req.Definition = map[string]any{}
	}
	req.Definition["fqn"] = req.FQN

	predecessor, hasPredecessor := r.store.SnapshotByFQN(req.FQN)

	objectID := types.NewID()
	var predecessorMeta *types.SnapshotMeta
	var predecessorID *types.ID
	if hasPredecessor {
		objectID = predecessor.ObjectID
		predecessorID = &predecessor.SnapshotID
		meta := snapshotMeta(predecessor)
		predecessorMeta = &meta
	}

	snap := &types.Snapshot{
		SnapshotID:      types.NewID(),
		ObjectType:      req.ObjectType,
		ObjectID:        objectID,
		VersionMajor:    req.VersionMajor,
		VersionMinor:    req.VersionMinor,
		PredecessorID:   predecessorID,
		GovernanceTier:  req.GovernanceTier,
		TrustClass:      req.TrustClass,
		SecurityLabel:   req.SecurityLabel,
		ChangeType:      req.ChangeType,
		ChangeRationale: req.ChangeRationale,
		CreatedBy:       req.CreatedBy,
		ApprovedBy:      req.ApprovedBy,
		CreatedAt:       time.Now(),
		EffectiveFrom:   time.Now(),
		Status:          types.SnapshotActive,
		Definition:      req.Definition,
	}

	meta := snapshotMeta(snap)
	ctx := gates.ExtendedContext{Predecessor: predecessor}
	if r.policy != nil {
		if cadence, ok := r.policy.Cadence(req.FQN); ok {
			ctx.ReviewCadence = map[string]time.Duration{req.FQN: cadence}
		}
		if reviewed, ok := r.policy.LastReviewed(req.FQN); ok {
			ctx.LastReviewed = map[string]time.Time{req.FQN: reviewed}
		}
	}

	result := gates.EvaluateAllPublishGates(meta, predecessorMeta, snap, ctx, r.mode)
	if result.ShouldBlock() {
		return nil, result, fmt.Errorf("publish blocked for %q: %v", req.FQN, result.AllFailureMessages())
	}

	if hasPredecessor {
		supersede(predecessor)
	}
	r.store.AppendSnapshot(snap)
	return snap, result, nil
}

// supersede marks a predecessor snapshot Superseded in place. AppendSnapshot
// never mutates history, so the caller must flip this before the new head
// is appended.
func supersede(snap *types.Snapshot) {
	snap.Status = types.SnapshotSuperseded
}

func snapshotMeta(snap *types.Snapshot) types.SnapshotMeta {
	return types.SnapshotMeta{
		ObjectID:       snap.ObjectID,
		GovernanceTier: snap.GovernanceTier,
		TrustClass:     snap.TrustClass,
		SecurityLabel:  snap.SecurityLabel,
		ApprovedBy:     snap.ApprovedBy,
		Version:        snap.Version(),
	}
}
