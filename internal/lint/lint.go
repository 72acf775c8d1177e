package lint

import (
	"fmt"
	"sort"

	"github.com/sem-os/semcore/internal/contracts"
	"github.com/sem-os/semcore/internal/types"
)

// Level is the severity of a LintDiagnostic.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Rule identifies which of L1-L5 produced a diagnostic.
type Rule string

const (
	RuleL1FlagProvenance     Rule = "L1"
	RuleL2ErrorCodeValidity  Rule = "L2"
	RuleL3CorrelationProv    Rule = "L3"
	RuleL4MissingContract    Rule = "L4"
	RuleL5UnusedWrites       Rule = "L5"
)

// Diagnostic is one lint finding.
type Diagnostic struct {
	Rule    Rule
	Level   Level
	Message string
	NodeID  string // empty when the diagnostic is not anchored to a node (L5)
}

func (d Diagnostic) String() string {
	if d.NodeID == "" {
		return fmt.Sprintf("[%s:%s] %s", d.Rule, d.Level, d.Message)
	}
	return fmt.Sprintf("[%s:%s] %s (node: %s)", d.Rule, d.Level, d.Message, d.NodeID)
}

// index precomputes the lookups every lint rule needs so each rule is a
// single deterministic pass rather than repeated graph walks.
type index struct {
	dto               *WorkflowGraphDTO
	registry          *contracts.Registry
	nodeByID          map[string]*Node
	incoming          map[string][]*Edge
	allConditionFlags map[string]struct{}
}

func buildIndex(dto *WorkflowGraphDTO, registry *contracts.Registry) *index {
	ix := &index{
		dto:               dto,
		registry:          registry,
		nodeByID:          make(map[string]*Node, len(dto.Nodes)),
		incoming:          make(map[string][]*Edge),
		allConditionFlags: make(map[string]struct{}),
	}
	for i := range dto.Nodes {
		n := &dto.Nodes[i]
		ix.nodeByID[n.ID] = n
	}
	for i := range dto.Edges {
		e := &dto.Edges[i]
		ix.incoming[e.To] = append(ix.incoming[e.To], e)
		if e.Condition != nil {
			ix.allConditionFlags[e.Condition.Flag] = struct{}{}
		}
	}
	return ix
}

// upstreamFlags performs a backward BFS from targetNodeID over incoming
// edges, resolving race-arm dot-notation on each predecessor, and unions the
// writes_flags of every ServiceTask predecessor that has a registered
// contract.
func (ix *index) upstreamFlags(targetNodeID string) map[string]struct{} {
	result := make(map[string]struct{})
	visited := map[string]struct{}{targetNodeID: {}}
	queue := []string{targetNodeID}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range ix.incoming[cur] {
			predID := e.BaseFrom()
			if _, seen := visited[predID]; seen {
				continue
			}
			visited[predID] = struct{}{}
			queue = append(queue, predID)

			pred, ok := ix.nodeByID[predID]
			if !ok || pred.Kind != NodeServiceTask {
				continue
			}
			contract := ix.registry.Get(pred.TaskType)
			if contract == nil {
				continue
			}
			for flag := range contract.WritesFlags {
				result[string(flag)] = struct{}{}
			}
		}
	}
	return result
}

// upstreamCorrelations is analogous to upstreamFlags but unions
// produces_correlation.key_source values.
func (ix *index) upstreamCorrelations(targetNodeID string) map[string]struct{} {
	result := make(map[string]struct{})
	visited := map[string]struct{}{targetNodeID: {}}
	queue := []string{targetNodeID}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range ix.incoming[cur] {
			predID := e.BaseFrom()
			if _, seen := visited[predID]; seen {
				continue
			}
			visited[predID] = struct{}{}
			queue = append(queue, predID)

			pred, ok := ix.nodeByID[predID]
			if !ok || pred.Kind != NodeServiceTask {
				continue
			}
			contract := ix.registry.Get(pred.TaskType)
			if contract == nil {
				continue
			}
			for _, c := range contract.ProducesCorrelation {
				result[c.KeySource] = struct{}{}
			}
		}
	}
	return result
}

// Lint runs L1 through L5, in that fixed order, against dto using registry as
// the oracle for task contracts and known workflow inputs.
func Lint(dto *WorkflowGraphDTO, registry *contracts.Registry) []Diagnostic {
	ix := buildIndex(dto, registry)

	var diags []Diagnostic
	diags = append(diags, lintL1FlagProvenance(ix)...)
	diags = append(diags, lintL2ErrorCodes(ix)...)
	diags = append(diags, lintL3Correlation(ix)...)
	diags = append(diags, lintL4MissingContract(ix)...)
	diags = append(diags, lintL5UnusedWrites(ix)...)
	return diags
}

// HasErrors reports whether diags contains any Error-level diagnostic —
// the condition under which compilation must be blocked.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}

func lintL1FlagProvenance(ix *index) []Diagnostic {
	var diags []Diagnostic
	for i := range ix.dto.Edges {
		e := &ix.dto.Edges[i]
		if e.Condition == nil {
			continue
		}
		flag := e.Condition.Flag
		upstream := ix.upstreamFlags(e.BaseFrom())
		if _, ok := upstream[flag]; ok {
			continue
		}

		level := LevelError
		qualifier := ""
		if ix.registry.IsKnownInput(types.Flag(flag)) {
			level = LevelWarning
			qualifier = " (known workflow input)"
		}
		diags = append(diags, Diagnostic{
			Rule:  RuleL1FlagProvenance,
			Level: level,
			Message: fmt.Sprintf(
				"Flag '%s' in condition on edge %s→%s is not written by any upstream task%s",
				flag, e.From, e.To, qualifier,
			),
			NodeID: e.From,
		})
	}
	return diags
}

func lintL2ErrorCodes(ix *index) []Diagnostic {
	var diags []Diagnostic
	for i := range ix.dto.Edges {
		e := &ix.dto.Edges[i]
		if e.OnError == nil {
			continue
		}
		srcID := e.BaseFrom()
		src, ok := ix.nodeByID[srcID]
		if !ok || src.Kind != NodeServiceTask {
			continue
		}
		contract := ix.registry.Get(src.TaskType)
		if contract == nil {
			// L4 reports missing-contract tasks; L2 stays silent here.
			continue
		}
		if !contract.RaisesError(types.ErrorCode(e.OnError.ErrorCode)) {
			diags = append(diags, Diagnostic{
				Rule:  RuleL2ErrorCodeValidity,
				Level: LevelError,
				Message: fmt.Sprintf(
					"Error code '%s' on edge %s→%s is not declared in task '%s' contract",
					e.OnError.ErrorCode, e.From, e.To, src.TaskType,
				),
				NodeID: e.From,
			})
		}
	}
	return diags
}

func lintL3Correlation(ix *index) []Diagnostic {
	var diags []Diagnostic
	for i := range ix.dto.Nodes {
		n := &ix.dto.Nodes[i]
		if n.Kind != NodeMessageWait && n.Kind != NodeHumanWait {
			continue
		}
		if n.CorrKeySource == "" || n.CorrKeySource == "instance_id" {
			continue
		}
		upstream := ix.upstreamCorrelations(n.ID)
		if _, ok := upstream[n.CorrKeySource]; ok {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:  RuleL3CorrelationProv,
			Level: LevelWarning,
			Message: fmt.Sprintf(
				"Correlation key '%s' on wait '%s' is not produced by any upstream task",
				n.CorrKeySource, n.ID,
			),
			NodeID: n.ID,
		})
	}
	return diags
}

func lintL4MissingContract(ix *index) []Diagnostic {
	var diags []Diagnostic
	for i := range ix.dto.Nodes {
		n := &ix.dto.Nodes[i]
		if n.Kind != NodeServiceTask {
			continue
		}
		if ix.registry.Has(n.TaskType) {
			continue
		}
		diags = append(diags, Diagnostic{
			Rule:    RuleL4MissingContract,
			Level:   LevelWarning,
			Message: fmt.Sprintf("Service task '%s' has task_type '%s' with no registered contract", n.ID, n.TaskType),
			NodeID:  n.ID,
		})
	}
	return diags
}

func lintL5UnusedWrites(ix *index) []Diagnostic {
	var diags []Diagnostic
	ix.registry.Iter(func(taskType string, contract *types.VerbContract) {
		flags := make([]string, 0, len(contract.WritesFlags))
		for flag := range contract.WritesFlags {
			flags = append(flags, string(flag))
		}
		sort.Strings(flags)
		for _, flag := range flags {
			if _, used := ix.allConditionFlags[flag]; used {
				continue
			}
			diags = append(diags, Diagnostic{
				Rule:  RuleL5UnusedWrites,
				Level: LevelWarning,
				Message: fmt.Sprintf(
					"Task '%s' writes flag '%s' that no edge condition reads",
					taskType, flag,
				),
			})
		}
	})
	return diags
}
