package store

import "github.com/sem-os/semcore/internal/types"

func snapshotKey(objectType string, objectID types.ID) string {
	return objectType + ":" + objectID.String()
}

// LatestSnapshot returns the newest snapshot on record for (objectType,
// objectID), used as the predecessor input to the publish gate engine.
func (s *Store) LatestSnapshot(objectType string, objectID types.ID) (*types.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chain := s.snapshots[snapshotKey(objectType, objectID)]
	if len(chain) == 0 {
		return nil, false
	}
	return chain[len(chain)-1], true
}

// AppendSnapshot records snap as the new head of its object's snapshot
// chain. The caller is responsible for having already run the publish gates
// against the predecessor returned by LatestSnapshot.
func (s *Store) AppendSnapshot(snap *types.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := snapshotKey(snap.ObjectType, snap.ObjectID)
	s.snapshots[key] = append(s.snapshots[key], snap)
}

// SnapshotChain returns the full recorded history for (objectType,
// objectID), oldest first.
func (s *Store) SnapshotChain(objectType string, objectID types.ID) []*types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*types.Snapshot{}, s.snapshots[snapshotKey(objectType, objectID)]...)
}

// SnapshotByFQN returns the Active head of whichever snapshot chain carries
// the given FQN in its definition, the lookup the executor's program
// retrieval path needs to re-fetch a previously published DSL snapshot by
// name rather than by (objectType, objectID). Superseded and retired
// snapshots are not candidates: re-running a remediation program should
// always pick up the currently governing definition.
func (s *Store) SnapshotByFQN(fqn string) (*types.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, chain := range s.snapshots {
		if len(chain) == 0 {
			continue
		}
		head := chain[len(chain)-1]
		if head.Status == types.SnapshotActive && head.FQN() == fqn {
			return head, true
		}
	}
	return nil, false
}

// ActiveSnapshots returns the current head of every object's snapshot chain
// whose status is Active, the population a periodic review-cycle sweep
// needs to re-check against G5 compliance.
func (s *Store) ActiveSnapshots() []*types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*types.Snapshot
	for _, chain := range s.snapshots {
		if len(chain) == 0 {
			continue
		}
		head := chain[len(chain)-1]
		if head.Status == types.SnapshotActive {
			out = append(out, head)
		}
	}
	return out
}
