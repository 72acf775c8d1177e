package workflow

import (
	"fmt"
	"sync"

	"github.com/sem-os/semcore/internal/types"
)

// subjectKey identifies the one allowed instance for a (workflow, subject)
// pair.
type subjectKey struct {
	workflowID  string
	subjectType string
	subjectID   string
}

// Store persists workflow instances. The in-memory implementation below
// serializes per-instance mutation with a lock acquired inside the store, so
// two concurrent Transition calls on the same instance never interleave —
// the loser observes the post-transition state, per the runtime's ordering
// guarantees.
type Store interface {
	// FindBySubject returns the existing instance for the triple, if any.
	FindBySubject(workflowID, subjectType, subjectID string) (*Instance, bool)
	// Get returns the instance by id.
	Get(instanceID types.ID) (*Instance, bool)
	// Create inserts a brand-new instance; the caller has already verified
	// no instance exists for its subject triple.
	Create(inst *Instance) error
	// WithLock runs fn while holding the per-instance lock for instanceID,
	// passing the current instance value; fn's returned instance (if any)
	// replaces the stored one.
	WithLock(instanceID types.ID, fn func(*Instance) (*Instance, error)) error
}

// MemoryStore is an in-memory Store, safe for concurrent use.
type MemoryStore struct {
	mu         sync.Mutex
	bySubject  map[subjectKey]types.ID
	byID       map[types.ID]*Instance
	instanceMu map[types.ID]*sync.Mutex
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		bySubject:  map[subjectKey]types.ID{},
		byID:       map[types.ID]*Instance{},
		instanceMu: map[types.ID]*sync.Mutex{},
	}
}

func (s *MemoryStore) FindBySubject(workflowID, subjectType, subjectID string) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.bySubject[subjectKey{workflowID, subjectType, subjectID}]
	if !ok {
		return nil, false
	}
	return s.byID[id], true
}

func (s *MemoryStore) Get(instanceID types.ID) (*Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.byID[instanceID]
	return inst, ok
}

func (s *MemoryStore) Create(inst *Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := subjectKey{inst.WorkflowID, inst.SubjectType, inst.SubjectID}
	if _, exists := s.bySubject[key]; exists {
		return fmt.Errorf("create: %w", ErrDuplicateInstance)
	}
	s.bySubject[key] = inst.InstanceID
	s.byID[inst.InstanceID] = inst
	s.instanceMu[inst.InstanceID] = &sync.Mutex{}
	return nil
}

func (s *MemoryStore) lockFor(instanceID types.ID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.instanceMu[instanceID]
	if !ok {
		lock = &sync.Mutex{}
		s.instanceMu[instanceID] = lock
	}
	return lock
}

func (s *MemoryStore) WithLock(instanceID types.ID, fn func(*Instance) (*Instance, error)) error {
	lock := s.lockFor(instanceID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	inst, ok := s.byID[instanceID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstance, instanceID)
	}

	updated, err := fn(inst)
	if err != nil {
		return err
	}
	if updated != nil {
		s.mu.Lock()
		s.byID[instanceID] = updated
		s.mu.Unlock()
	}
	return nil
}
