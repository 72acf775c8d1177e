package lint

import (
	"testing"

	"github.com/sem-os/semcore/internal/contracts"
	"github.com/sem-os/semcore/internal/types"
	"github.com/stretchr/testify/require"
)

func newRegistryWithContract(taskType string, writes ...string) *contracts.Registry {
	reg := contracts.New()
	writeSet := make(map[types.Flag]struct{}, len(writes))
	for _, w := range writes {
		writeSet[types.Flag(w)] = struct{}{}
	}
	reg.Register(&types.VerbContract{
		TaskType:    taskType,
		WritesFlags: writeSet,
	})
	return reg
}

func findDiag(diags []Diagnostic, rule Rule, level Level) *Diagnostic {
	for i := range diags {
		if diags[i].Rule == rule && diags[i].Level == level {
			return &diags[i]
		}
	}
	return nil
}

// S1: L1 Error — a condition flag with no upstream writer and no known-input
// registration must be an Error.
func TestLintS1_L1ErrorMissingProvenance(t *testing.T) {
	reg := newRegistryWithContract("do_work", "other_flag")

	dto := &WorkflowGraphDTO{
		Nodes: []Node{
			{ID: "start", Kind: NodeStart},
			{ID: "taskA", Kind: NodeServiceTask, TaskType: "do_work"},
			{ID: "xor", Kind: NodeExclusiveGateway},
			{ID: "end", Kind: NodeEnd},
		},
		Edges: []Edge{
			{From: "start", To: "taskA"},
			{From: "taskA", To: "xor"},
			{From: "xor", To: "end", Condition: &FlagCondition{Flag: "unknown_flag", Op: "eq", Value: true}},
		},
	}

	diags := Lint(dto, reg)
	d := findDiag(diags, RuleL1FlagProvenance, LevelError)
	require.NotNil(t, d, "expected an L1 error diagnostic")
	require.Contains(t, d.Message, "unknown_flag")
}

// S2: L1 Warning — a condition flag that is a known workflow input (but still
// unwritten upstream) must warn, not error.
func TestLintS2_L1WarningKnownInput(t *testing.T) {
	reg := contracts.New()
	reg.Register(&types.VerbContract{TaskType: "do_work", WritesFlags: map[types.Flag]struct{}{}})
	reg.RegisterKnownInput("orch_high_risk")

	dto := &WorkflowGraphDTO{
		Nodes: []Node{
			{ID: "start", Kind: NodeStart},
			{ID: "taskA", Kind: NodeServiceTask, TaskType: "do_work"},
			{ID: "xor", Kind: NodeExclusiveGateway},
			{ID: "end", Kind: NodeEnd},
		},
		Edges: []Edge{
			{From: "start", To: "taskA"},
			{From: "taskA", To: "xor"},
			{From: "xor", To: "end", Condition: &FlagCondition{Flag: "orch_high_risk", Op: "eq", Value: true}},
		},
	}

	diags := Lint(dto, reg)
	require.NotNil(t, findDiag(diags, RuleL1FlagProvenance, LevelWarning))
	require.Nil(t, findDiag(diags, RuleL1FlagProvenance, LevelError))
}

// S3: L2 catch-all — a task contract declaring may_raise_errors={"*"} must
// accept any on_error code without a diagnostic.
func TestLintS3_L2CatchAll(t *testing.T) {
	reg := contracts.New()
	reg.Register(&types.VerbContract{
		TaskType:       "do_work",
		WritesFlags:    map[types.Flag]struct{}{},
		MayRaiseErrors: map[types.ErrorCode]struct{}{types.AnyErrorCode: {}},
	})

	dto := &WorkflowGraphDTO{
		Nodes: []Node{
			{ID: "do_work", Kind: NodeServiceTask, TaskType: "do_work"},
			{ID: "escalation", Kind: NodeServiceTask, TaskType: "escalation"},
		},
		Edges: []Edge{
			{From: "do_work", To: "escalation", OnError: &ErrorEdge{ErrorCode: "ANY_CODE_AT_ALL"}},
		},
	}

	diags := Lint(dto, reg)
	for _, d := range diags {
		require.NotEqual(t, RuleL2ErrorCodeValidity, d.Rule)
	}
}

// S4: race-arm provenance — conditions downstream of a race-wait's arm must
// resolve through the base node id via dot-notation.
func TestLintS4_RaceArmProvenance(t *testing.T) {
	reg := newRegistryWithContract("do_work", "work_done")

	dto := &WorkflowGraphDTO{
		Nodes: []Node{
			{ID: "start", Kind: NodeStart},
			{ID: "taskA", Kind: NodeServiceTask, TaskType: "do_work"},
			{ID: "race", Kind: NodeRaceWait, Arms: []RaceArm{
				{ArmID: "timer_arm", Kind: ArmTimer, TimerMS: 1000},
				{ArmID: "msg_arm", Kind: ArmMessage, MessageName: "m"},
			}},
			{ID: "xor", Kind: NodeExclusiveGateway},
			{ID: "branch_a", Kind: NodeEnd},
		},
		Edges: []Edge{
			{From: "start", To: "taskA"},
			{From: "taskA", To: "race"},
			{From: "race.timer_arm", To: "xor"},
			{From: "xor", To: "branch_a", Condition: &FlagCondition{Flag: "work_done", Op: "eq", Value: true}},
		},
	}

	diags := Lint(dto, reg)
	require.Nil(t, findDiag(diags, RuleL1FlagProvenance, LevelError))
	require.Nil(t, findDiag(diags, RuleL1FlagProvenance, LevelWarning))
}

func TestLintDeterministicOrder(t *testing.T) {
	reg := newRegistryWithContract("do_work", "other_flag")
	dto := &WorkflowGraphDTO{
		Nodes: []Node{
			{ID: "taskA", Kind: NodeServiceTask, TaskType: "do_work"},
			{ID: "taskB", Kind: NodeServiceTask, TaskType: "unregistered_type"},
			{ID: "xor", Kind: NodeExclusiveGateway},
		},
		Edges: []Edge{
			{From: "taskA", To: "xor"},
			{From: "xor", To: "taskB", Condition: &FlagCondition{Flag: "missing", Op: "eq", Value: 1}},
		},
	}

	first := Lint(dto, reg)
	second := Lint(dto, reg)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, first[i], second[i])
	}
	// L1 then L4 in fixed order.
	require.Equal(t, RuleL1FlagProvenance, first[0].Rule)
}
