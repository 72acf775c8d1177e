package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sem-os/semcore/internal/contracts"
	"github.com/sem-os/semcore/internal/executor"
	"github.com/sem-os/semcore/internal/lint"
	"github.com/sem-os/semcore/internal/mcp"
	"github.com/sem-os/semcore/internal/registry"
	"github.com/sem-os/semcore/internal/store"
	"github.com/sem-os/semcore/internal/templates"
	"github.com/sem-os/semcore/internal/types"
	"github.com/sem-os/semcore/internal/validator"
	"github.com/sem-os/semcore/internal/workflow"
)

// deps holds every wired component a tool handler may need. Handlers below
// are thin adapters: all real logic lives in the packages they call.
type deps struct {
	store        *store.Store
	exec         *executor.Executor
	registry     *registry.Registry
	engine       *workflow.Engine
	templates    *templates.Registry
	contracts    *contracts.Registry
	reviewPolicy *reviewPolicy
}

func registerTools(reg *mcp.Registry, d *deps) {
	reg.Register(&registryPublishTool{d: d})
	reg.Register(&registryLintTool{d: d})
	reg.Register(&dslValidateTool{d: d})
	reg.Register(&workflowFindOrStartTool{d: d})
	reg.Register(&workflowTryAdvanceTool{d: d})
	reg.Register(&workflowTransitionTool{d: d})
	reg.Register(&workflowStatusTool{d: d})
	reg.Register(&templateExpandTool{d: d})
}

// --- registry.publish ---

type registryPublishTool struct{ d *deps }

func (t *registryPublishTool) Name() string { return "registry.publish" }
func (t *registryPublishTool) Description() string {
	return "Runs the gate pipeline against a candidate snapshot and, if it doesn't block, publishes it as the new Active head of its FQN's chain"
}
func (t *registryPublishTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["object_type", "fqn", "definition", "version_major"],
		"properties": {
			"object_type": {"type": "string"},
			"fqn": {"type": "string"},
			"definition": {"type": "object"},
			"version_major": {"type": "integer"},
			"version_minor": {"type": "integer"},
			"governance_tier": {"type": "string", "enum": ["operational", "governed"]},
			"trust_class": {"type": "string", "enum": ["convenience", "decision_support", "proof"]},
			"security_label": {"type": "object"},
			"change_type": {"type": "string", "enum": ["created", "minor", "breaking", "deprecated"]},
			"change_rationale": {"type": "string"},
			"created_by": {"type": "string"},
			"approved_by": {"type": "string"}
		}
	}`)
}

type publishParams struct {
	ObjectType      string               `json:"object_type"`
	FQN             string               `json:"fqn"`
	Definition      map[string]any       `json:"definition"`
	VersionMajor    int                  `json:"version_major"`
	VersionMinor    int                  `json:"version_minor"`
	GovernanceTier  types.GovernanceTier `json:"governance_tier"`
	TrustClass      types.TrustClass     `json:"trust_class"`
	SecurityLabel   types.SecurityLabel  `json:"security_label"`
	ChangeType      types.ChangeType     `json:"change_type"`
	ChangeRationale string               `json:"change_rationale"`
	CreatedBy       string               `json:"created_by"`
	ApprovedBy      *string              `json:"approved_by"`
}

func (t *registryPublishTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p publishParams
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	snap, result, err := t.d.registry.Publish(registry.Request{
		ObjectType:      p.ObjectType,
		FQN:             p.FQN,
		Definition:      p.Definition,
		VersionMajor:    p.VersionMajor,
		VersionMinor:    p.VersionMinor,
		GovernanceTier:  p.GovernanceTier,
		TrustClass:      p.TrustClass,
		SecurityLabel:   p.SecurityLabel,
		ChangeType:      p.ChangeType,
		ChangeRationale: p.ChangeRationale,
		CreatedBy:       p.CreatedBy,
		ApprovedBy:      p.ApprovedBy,
	})
	if err != nil {
		return mcp.JSONResult(map[string]any{
			"blocked":  true,
			"failures": result.AllFailureMessages(),
			"warnings": result.WarningCount(),
		})
	}

	return mcp.JSONResult(map[string]any{
		"blocked":  false,
		"snapshot": snap,
		"warnings": result.WarningCount(),
	})
}

// --- registry.lint ---

type registryLintTool struct{ d *deps }

func (t *registryLintTool) Name() string { return "registry.lint" }
func (t *registryLintTool) Description() string {
	return "Runs the L1-L5 static lint rules against a workflow graph DTO without publishing"
}
func (t *registryLintTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["nodes", "edges"],
		"properties": {
			"nodes": {"type": "array"},
			"edges": {"type": "array"}
		}
	}`)
}

func (t *registryLintTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var dto lint.WorkflowGraphDTO
	if err := json.Unmarshal(params, &dto); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	diagnostics := lint.Lint(&dto, t.d.contracts)
	return mcp.JSONResult(map[string]any{"diagnostics": diagnostics})
}

// --- dsl.validate ---

type dslValidateTool struct{ d *deps }

func (t *dslValidateTool) Name() string { return "dsl.validate" }
func (t *dslValidateTool) Description() string {
	return "Parses, normalizes, and semantically validates DSL source: required fields and references to entities, documents, cases, and links declared in the program"
}
func (t *dslValidateTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["source"],
		"properties": {
			"source": {"type": "string"}
		}
	}`)
}

func (t *dslValidateTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		Source string `json:"source"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	prog, normDiags, result, err := validator.ParseNormalizeAndValidate(p.Source, nil)
	if err != nil {
		return mcp.JSONResult(map[string]any{"valid": false, "parse_error": err.Error()})
	}

	return mcp.JSONResult(map[string]any{
		"valid":                result.IsValid,
		"forms":                len(prog.Forms),
		"normalize_diagnostics": normDiags,
		"errors":               result.Errors,
		"warnings":             result.Warnings,
		"suggestions":          result.Suggestions,
	})
}

// --- workflow.find_or_start ---

type workflowFindOrStartTool struct{ d *deps }

func (t *workflowFindOrStartTool) Name() string { return "workflow.find_or_start" }
func (t *workflowFindOrStartTool) Description() string {
	return "Finds the existing workflow instance for (workflow_id, subject_type, subject_id), starting a new one if none exists"
}
func (t *workflowFindOrStartTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["workflow_id", "subject_type", "subject_id", "created_by"],
		"properties": {
			"workflow_id": {"type": "string"},
			"subject_type": {"type": "string"},
			"subject_id": {"type": "string"},
			"created_by": {"type": "string"}
		}
	}`)
}

func (t *workflowFindOrStartTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		WorkflowID  string `json:"workflow_id"`
		SubjectType string `json:"subject_type"`
		SubjectID   string `json:"subject_id"`
		CreatedBy   string `json:"created_by"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	inst, err := t.d.engine.FindOrStart(p.WorkflowID, p.SubjectType, p.SubjectID, p.CreatedBy)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(inst)
}

// --- workflow.try_advance ---

type workflowTryAdvanceTool struct{ d *deps }

func (t *workflowTryAdvanceTool) Name() string { return "workflow.try_advance" }
func (t *workflowTryAdvanceTool) Description() string {
	return "Attempts to advance a workflow instance past its current state, evaluating the state's auto-transition guards against the given context"
}
func (t *workflowTryAdvanceTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["instance_id"],
		"properties": {
			"instance_id": {"type": "string"},
			"context": {"type": "object"}
		}
	}`)
}

func (t *workflowTryAdvanceTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		InstanceID types.ID       `json:"instance_id"`
		Context    map[string]any `json:"context"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	inst, err := t.d.engine.TryAdvance(p.InstanceID, p.Context)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(inst)
}

// --- workflow.transition ---

type workflowTransitionTool struct{ d *deps }

func (t *workflowTransitionTool) Name() string { return "workflow.transition" }
func (t *workflowTransitionTool) Description() string {
	return "Forces an explicit state transition on a workflow instance"
}
func (t *workflowTransitionTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["instance_id", "to_state", "actor"],
		"properties": {
			"instance_id": {"type": "string"},
			"to_state": {"type": "string"},
			"actor": {"type": "string"},
			"reason": {"type": "string"}
		}
	}`)
}

func (t *workflowTransitionTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		InstanceID types.ID `json:"instance_id"`
		ToState    string   `json:"to_state"`
		Actor      string   `json:"actor"`
		Reason     string   `json:"reason"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	inst, err := t.d.engine.Transition(p.InstanceID, p.ToState, p.Actor, p.Reason)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(inst)
}

// --- workflow.status ---

type workflowStatusTool struct{ d *deps }

func (t *workflowStatusTool) Name() string { return "workflow.status" }
func (t *workflowStatusTool) Description() string {
	return "Returns the current state, blockers, and audit history of a workflow instance"
}
func (t *workflowStatusTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["instance_id"],
		"properties": {
			"instance_id": {"type": "string"},
			"context": {"type": "object"}
		}
	}`)
}

func (t *workflowStatusTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		InstanceID types.ID       `json:"instance_id"`
		Context    map[string]any `json:"context"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	status, err := t.d.engine.GetStatus(p.InstanceID, p.Context)
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(status)
}

// --- template.expand ---

type templateExpandTool struct{ d *deps }

func (t *templateExpandTool) Name() string { return "template.expand" }
func (t *templateExpandTool) Description() string {
	return "Expands a parametric DSL template by id, resolving parameters from explicit args, then context, then default"
}
func (t *templateExpandTool) InputSchema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"required": ["template_id"],
		"properties": {
			"template_id": {"type": "string"},
			"args": {"type": "object"},
			"current_cbu": {"type": "string"},
			"current_case": {"type": "string"}
		}
	}`)
}

func (t *templateExpandTool) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		TemplateID  string         `json:"template_id"`
		Args        map[string]any `json:"args"`
		CurrentCBU  string         `json:"current_cbu"`
		CurrentCase string         `json:"current_case"`
	}
	if err := json.Unmarshal(params, &p); err != nil {
		return mcp.ErrorResult(fmt.Sprintf("invalid params: %v", err)), nil
	}

	tmpl, ok := t.d.templates.Get(p.TemplateID)
	if !ok {
		return mcp.ErrorResult(fmt.Sprintf("no template registered for id %q", p.TemplateID)), nil
	}

	expansion, err := templates.Expand(tmpl, p.Args, templates.ExpansionContext{
		CurrentCBU:  p.CurrentCBU,
		CurrentCase: p.CurrentCase,
	})
	if err != nil {
		return mcp.ErrorResult(err.Error()), nil
	}
	return mcp.JSONResult(expansion)
}
