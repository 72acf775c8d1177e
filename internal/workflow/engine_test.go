package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kycOnboardingDefinition() *Definition {
	return &Definition{
		ID:           "kyc_onboarding",
		InitialState: "intake",
		States:       []string{"intake", "screening", "approved", "rejected"},
		Edges: map[string][]Edge{
			"intake":    {{To: "screening"}},
			"screening": {{To: "approved", Guard: Guard{Flag: "screening_passed", Op: OpTruthy}}, {To: "rejected", Guard: Guard{Flag: "screening_failed", Op: OpTruthy}}},
		},
	}
}

func newTestEngine() *Engine {
	defs := map[string]*Definition{"kyc_onboarding": kycOnboardingDefinition()}
	return NewEngine(defs, NewMemoryStore(), nil)
}

// S7: find_or_start called twice returns the same instance_id with history
// length unchanged (exactly one Created entry).
func TestS7_FindOrStartIdempotent(t *testing.T) {
	e := newTestEngine()

	first, err := e.FindOrStart("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)
	require.Len(t, first.History, 1)
	require.Equal(t, ActionCreated, first.History[0].Action)

	second, err := e.FindOrStart("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)
	require.Equal(t, first.InstanceID, second.InstanceID)
	require.Len(t, second.History, 1)
}

func TestStartWorkflow_DuplicateRejected(t *testing.T) {
	e := newTestEngine()
	_, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)

	_, err = e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.ErrorIs(t, err, ErrDuplicateInstance)
}

func TestTryAdvance_NoSatisfiedGuardLeavesHistoryUnchanged(t *testing.T) {
	e := newTestEngine()
	inst, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)

	_, err = e.Transition(inst.InstanceID, "screening", "", "")
	require.NoError(t, err)

	before, ok := e.store.(*MemoryStore).Get(inst.InstanceID)
	require.True(t, ok)
	historyLen := len(before.History)

	advanced, err := e.TryAdvance(inst.InstanceID, map[string]any{})
	require.NoError(t, err)
	require.Equal(t, "screening", advanced.CurrentState)
	require.Len(t, advanced.History, historyLen)
}

func TestTryAdvance_SatisfiedGuardTransitions(t *testing.T) {
	e := newTestEngine()
	inst, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)
	_, err = e.Transition(inst.InstanceID, "screening", "", "")
	require.NoError(t, err)

	advanced, err := e.TryAdvance(inst.InstanceID, map[string]any{"screening_passed": true})
	require.NoError(t, err)
	require.Equal(t, "approved", advanced.CurrentState)
}

func TestTryAdvance_TieBreaksOnDeclarationOrder(t *testing.T) {
	e := newTestEngine()
	inst, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)
	_, err = e.Transition(inst.InstanceID, "screening", "", "")
	require.NoError(t, err)

	advanced, err := e.TryAdvance(inst.InstanceID, map[string]any{"screening_passed": true, "screening_failed": true})
	require.NoError(t, err)
	require.Equal(t, "approved", advanced.CurrentState, "first declared edge wins the tie")
}

// I9: a manual transition to a state not listed among current outgoing
// edges is rejected.
func TestTransition_RejectsUnlistedTarget(t *testing.T) {
	e := newTestEngine()
	inst, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)

	_, err = e.Transition(inst.InstanceID, "approved", "", "")
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetStatus_ReportsBlockersFromRegisteredFunc(t *testing.T) {
	e := newTestEngine()
	e.RegisterBlockerFunc("kyc_onboarding", func(inst *Instance, ctx map[string]any) []Blocker {
		if inst.CurrentState == "screening" {
			return []Blocker{{Kind: "pending_screening"}}
		}
		return nil
	})

	inst, err := e.StartWorkflow("kyc_onboarding", "cbu", "X", "")
	require.NoError(t, err)
	_, err = e.Transition(inst.InstanceID, "screening", "", "")
	require.NoError(t, err)

	status, err := e.GetStatus(inst.InstanceID, nil)
	require.NoError(t, err)
	require.Len(t, status.Blockers, 1)
	require.Equal(t, "pending_screening", status.Blockers[0].Kind)
}
