package workflow

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sem-os/semcore/internal/types"
)

// BlockerFunc computes the state-specific blockers preventing an instance
// from progressing, given the current auto-transition context (e.g.
// missing role, pending screening, incomplete ownership chain).
type BlockerFunc func(inst *Instance, context map[string]any) []Blocker

// Engine loads workflow definitions once at startup and drives instances
// against them. Definitions are read-only after construction; only the
// Store is mutable.
type Engine struct {
	definitions  map[string]*Definition
	store        Store
	blockerFuncs map[string]BlockerFunc
	logger       *slog.Logger
}

// NewEngine returns an Engine over the given definitions and store.
// Definitions must already be Validate()-clean; NewEngine does not
// re-validate them.
func NewEngine(definitions map[string]*Definition, store Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		definitions:  definitions,
		store:        store,
		blockerFuncs: map[string]BlockerFunc{},
		logger:       logger,
	}
}

// RegisterBlockerFunc installs the state-blocker predicate used by
// GetStatus for instances of workflowID.
func (e *Engine) RegisterBlockerFunc(workflowID string, fn BlockerFunc) {
	e.blockerFuncs[workflowID] = fn
}

func (e *Engine) definition(workflowID string) (*Definition, error) {
	def, ok := e.definitions[workflowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkflow, workflowID)
	}
	return def, nil
}

// StartWorkflow creates exactly one instance per (workflowID, subjectType,
// subjectID); a second call for the same triple returns ErrDuplicateInstance.
func (e *Engine) StartWorkflow(workflowID, subjectType, subjectID, createdBy string) (*Instance, error) {
	def, err := e.definition(workflowID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	inst := &Instance{
		InstanceID:   types.NewID(),
		WorkflowID:   workflowID,
		SubjectType:  subjectType,
		SubjectID:    subjectID,
		CurrentState: def.InitialState,
		CreatedAt:    now,
		UpdatedAt:    now,
		CreatedBy:    createdBy,
		History: []AuditEvent{{
			Action:   ActionCreated,
			Actor:    createdBy,
			NewState: def.InitialState,
			At:       now,
		}},
	}

	if err := e.store.Create(inst); err != nil {
		return nil, err
	}
	e.logger.Info("workflow instance created", "workflow_id", workflowID, "subject_type", subjectType, "subject_id", subjectID, "instance_id", inst.InstanceID.String())
	return inst, nil
}

// FindOrStart is the idempotent alias: it returns the existing instance for
// the subject triple if one exists, otherwise creates it. Calling it N times
// always returns the same instance_id with an unchanged history.
func (e *Engine) FindOrStart(workflowID, subjectType, subjectID, createdBy string) (*Instance, error) {
	if existing, ok := e.store.FindBySubject(workflowID, subjectType, subjectID); ok {
		return existing, nil
	}
	inst, err := e.StartWorkflow(workflowID, subjectType, subjectID, createdBy)
	if err != nil {
		if existing, ok := e.store.FindBySubject(workflowID, subjectType, subjectID); ok {
			// Lost the create race to a concurrent FindOrStart; the winner's
			// instance is just as valid a result.
			return existing, nil
		}
		return nil, err
	}
	return inst, nil
}

// TryAdvance evaluates the current state's auto-transition guards against
// context. If exactly one is satisfied, it performs the transition and
// audits it. If several are satisfied, the definition's declaration order
// tie-breaks. If none are, the instance is returned unchanged.
func (e *Engine) TryAdvance(instanceID types.ID, context map[string]any) (*Instance, error) {
	var result *Instance
	err := e.store.WithLock(instanceID, func(inst *Instance) (*Instance, error) {
		def, err := e.definition(inst.WorkflowID)
		if err != nil {
			return nil, err
		}

		var target string
		for _, edge := range def.Edges[inst.CurrentState] {
			if edge.Guard.Satisfied(context) {
				target = edge.To
				break
			}
		}
		if target == "" {
			result = inst
			return nil, nil
		}

		now := time.Now()
		updated := *inst
		updated.CurrentState = target
		updated.UpdatedAt = now
		updated.History = append(append([]AuditEvent{}, inst.History...), AuditEvent{
			Action:        ActionTransition,
			PreviousState: inst.CurrentState,
			NewState:      target,
			At:            now,
			Details:       map[string]any{"auto": true},
		})
		result = &updated
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transition performs a manual transition. toState must be listed among the
// current state's outgoing edges (I9); guards are not consulted for manual
// transitions.
func (e *Engine) Transition(instanceID types.ID, toState, actor, reason string) (*Instance, error) {
	var result *Instance
	err := e.store.WithLock(instanceID, func(inst *Instance) (*Instance, error) {
		def, err := e.definition(inst.WorkflowID)
		if err != nil {
			return nil, err
		}

		allowed := false
		for _, s := range def.OutgoingStates(inst.CurrentState) {
			if s == toState {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: cannot transition %q from %q to %q", ErrInvalidTransition, inst.WorkflowID, inst.CurrentState, toState)
		}

		now := time.Now()
		updated := *inst
		previous := inst.CurrentState
		updated.CurrentState = toState
		updated.UpdatedAt = now
		updated.History = append(append([]AuditEvent{}, inst.History...), AuditEvent{
			Action:        ActionTransition,
			Actor:         actor,
			PreviousState: previous,
			NewState:      toState,
			Reason:        reason,
			At:            now,
		})
		result = &updated
		return &updated, nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("workflow transition", "instance_id", instanceID.String(), "to_state", toState, "actor", actor)
	return result, nil
}

// GetStatus returns the current state, any state-specific blockers, and the
// full audit history for an instance.
func (e *Engine) GetStatus(instanceID types.ID, context map[string]any) (*Status, error) {
	inst, ok := e.store.Get(instanceID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownInstance, instanceID)
	}

	var blockers []Blocker
	if fn, ok := e.blockerFuncs[inst.WorkflowID]; ok {
		blockers = fn(inst, context)
	}

	return &Status{
		InstanceID:   inst.InstanceID,
		WorkflowID:   inst.WorkflowID,
		SubjectType:  inst.SubjectType,
		SubjectID:    inst.SubjectID,
		CurrentState: inst.CurrentState,
		Blockers:     blockers,
		History:      inst.History,
	}, nil
}
