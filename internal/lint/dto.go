// Package lint implements the L1-L5 static authoring lints over a workflow
// graph DTO, checked against a contract registry before a DSL program's
// workflow is allowed to publish.
package lint

import "strings"

// NodeKind tags the variant of a graph node.
type NodeKind string

const (
	NodeStart           NodeKind = "start"
	NodeEnd             NodeKind = "end"
	NodeServiceTask      NodeKind = "service_task"
	NodeExclusiveGateway NodeKind = "exclusive_gateway"
	NodeMessageWait      NodeKind = "message_wait"
	NodeHumanWait        NodeKind = "human_wait"
	NodeRaceWait         NodeKind = "race_wait"
)

// RaceArmKind tags the variant of a race-wait arm.
type RaceArmKind string

const (
	ArmTimer   RaceArmKind = "timer"
	ArmMessage RaceArmKind = "message"
)

// RaceArm is one branch of a RaceWait node.
type RaceArm struct {
	ArmID string      `json:"arm_id"`
	Kind  RaceArmKind `json:"kind"`

	// Timer fields.
	TimerMS         int64 `json:"ms,omitempty"`
	TimerInterrupt  bool  `json:"interrupting,omitempty"`

	// Message fields.
	MessageName     string `json:"name,omitempty"`
	CorrKeySource   string `json:"corr_key_source,omitempty"`
}

// Node is a tagged union over the node kinds named in the workflow graph DTO.
// Only the fields relevant to Kind are populated.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`

	// End
	Terminate bool `json:"terminate,omitempty"`

	// ServiceTask
	TaskType string `json:"task_type,omitempty"`
	BPMNID   string `json:"bpmn_id,omitempty"`

	// MessageWait / HumanWait
	WaitName      string `json:"name,omitempty"`
	CorrKeySource string `json:"corr_key_source,omitempty"`

	// RaceWait
	Arms []RaceArm `json:"arms,omitempty"`
}

// FlagCondition is an edge guard: a flag compared against a value.
type FlagCondition struct {
	Flag  string `json:"flag"`
	Op    string `json:"op"`
	Value any    `json:"value"`
}

// ErrorEdge describes an on_error branch off a service task.
type ErrorEdge struct {
	ErrorCode string `json:"error_code"`
	Retries   int    `json:"retries"`
}

// Edge connects two nodes, optionally guarded by a FlagCondition and
// optionally an error-escalation edge.
//
// Race-arm convention: From may be "<node>.<arm_id>"; BaseFrom strips the
// arm suffix to resolve the underlying node.
type Edge struct {
	From      string         `json:"from"`
	To        string         `json:"to"`
	Condition *FlagCondition `json:"condition,omitempty"`
	IsDefault bool           `json:"is_default,omitempty"`
	OnError   *ErrorEdge     `json:"on_error,omitempty"`
}

// BaseFrom returns the substring of From before the first '.', resolving the
// race-arm dot-notation convention to the underlying node id.
func (e Edge) BaseFrom() string {
	return splitFirstDot(e.From)
}

func splitFirstDot(s string) string {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// WorkflowGraphDTO is the complete linting input: a workflow authored as a
// graph of service tasks, gateways, and waits.
type WorkflowGraphDTO struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
