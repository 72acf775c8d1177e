package content

import "github.com/sem-os/semcore/internal/mcp"

// --- semcore://entity-model resource ---

// EntityModelResource exposes the registry's object model as a reference
// resource, so a connected LLM can orient itself without having read
// SPEC_FULL.md directly.
type EntityModelResource struct{}

func (r *EntityModelResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "semcore://entity-model",
		Name:        "Registry Entity Model",
		Description: "Reference of the snapshot-governed object types, their relationships, and the gate/lint tiers that apply to each",
		MimeType:    "text/markdown",
	}
}

func (r *EntityModelResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "semcore://entity-model", MimeType: "text/markdown", Text: entityModelContent},
		},
	}, nil
}

// --- semcore://gates resource ---

// GatesResource exposes the publish-gate reference as a resource.
type GatesResource struct{}

func (r *GatesResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "semcore://gates",
		Name:        "Publish Gates",
		Description: "Reference of the simple and extended publish gates, their enforcement mode, and what makes each one fail",
		MimeType:    "text/markdown",
	}
}

func (r *GatesResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "semcore://gates", MimeType: "text/markdown", Text: gatesContent},
		},
	}, nil
}

// --- semcore://tool-reference resource ---

// ToolReferenceResource exposes a quick-reference card for the MCP tool
// surface cmd/semcored serves.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "semcore://tool-reference",
		Name:        "Registry Tool Reference",
		Description: "Quick-reference card for the registry.*, dsl.*, workflow.*, and template.* MCP tools",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{URI: "semcore://tool-reference", MimeType: "text/markdown", Text: toolReferenceContent},
		},
	}, nil
}

// --- Static content ---

const entityModelContent = `# Registry Entity Model

## Snapshot

Every governed object (attribute, derivation spec, DSL program, workflow
definition) is versioned as an append-only chain of snapshots sharing one
ObjectID. Only one snapshot per chain is Active at a time; publishing a new
version marks the predecessor Superseded rather than deleting it.

- **Fields**: ObjectType, ObjectID, SnapshotID, VersionMajor/Minor,
  PredecessorID, GovernanceTier (operational/governed), TrustClass
  (convenience/decision_support/proof), SecurityLabel, ChangeType
  (created/minor/breaking/deprecated), ChangeRationale, CreatedBy,
  ApprovedBy, Status (draft/active/superseded/retired), Definition.
- **Governed tier** snapshots require ApprovedBy before they can publish
  (governed_approval). **Breaking** changes require a non-empty ChangeRationale.

## CBU, Entity, Attribute

A CBU (Client Business Unit) aggregates entities, attributes, documents,
and workflow instances for one onboarding subject. Entities link to each
other (OWNERSHIP, CONTROL, REPRESENTATION edges); attribute values attach
to an entity or CBU and carry a provenance (asserted, derived, enriched).

## DerivationSpec

A named CEL expression computing one attribute from others' resolved
values. Gated on evidence grade, expression validity, type compatibility
between inputs/output, and absence of derivation cycles.

## Workflow instance

A per-subject state-machine occurrence, unique per
(workflow_id, subject_type, subject_id), advanced via
workflow.try_advance/workflow.transition and blocked by named predicates
(e.g. incomplete ownership, missing evidence).

## DSL program

A parsed sequence of verb forms (` + "`domain.name`" + `, e.g.
` + "`entity.register`" + `, ` + "`entity.link`" + `) executed against the
store. Published programs are retrievable by FQN for workflow blockers to
re-run.
`

const gatesContent = `# Publish Gates Reference

## Overview

Every publish runs two independent gate pipelines. A failed simple gate
blocks the publish in either mode. An Error from an extended gate blocks
in Enforce mode; in ReportOnly mode extended Errors are reported but do
not block. Warnings never block.

## Simple gates

| Gate | Checks |
|------|--------|
| proof_rule | Operational-tier snapshots do not carry TrustClass proof |
| security_label | PII snapshots are not labeled public or internal |
| governed_approval | Governed-tier snapshots have ApprovedBy set |
| version_monotonicity | New version >= predecessor (equality allowed) |

## Extended gates

| Gate | Checks |
|------|--------|
| T3 security_label_presence | security classification is set |
| T5 snapshot_integrity | predecessor shares the ObjectID and is Active or Superseded |
| G1 taxonomy_membership | Governed-tier objects belong to at least one taxonomy |
| G2 stewardship | Governed-tier objects have a human steward |
| G4 regulatory_linkage | Governed Proof-class objects link to a regulatory reference |
| G5 review_cycle_compliance | snapshot hasn't exceeded its review cadence (Warning) |
| G6 version_consistency | new version strictly greater than predecessor |
| G7 continuation_completeness | Breaking changes carry a ChangeRationale |
| G8 macro_expansion_integrity | verbs a VerbContract definition references are known |

The simple and extended version-monotonicity gates are intentionally not
unified: a same-version republish can pass the simple gate while still
failing G6's strict inequality, and the unified result surfaces both.

## Derivation gates (unit-level; publish does not run them)

| Gate | Checks |
|------|--------|
| derivation_evidence_grade | Operational-tier derivations have evidence_grade prohibited |
| derivation_expression | CEL expression parses and type-checks |
| derivation_type_compatibility | Output and input attribute FQNs are known attributes |
| derivation_cycle | No attribute derives from itself transitively |
`

const toolReferenceContent = `# Registry Tool Quick Reference

## registry.publish
Runs the gate pipeline against a candidate snapshot and, if it doesn't
block, persists it as the new Active head of its FQN's chain.
- **Required**: object_type, fqn, definition, version_major
- **Optional**: version_minor, governance_tier, trust_class,
  security_label, change_type, change_rationale, created_by, approved_by
- **Returns**: blocked=false, the stored snapshot, and the extended-gate
  warning count on success; blocked=true, every failure message, and the
  warning count on block

## registry.lint
Runs the L1-L5 lint rules against a workflow graph DTO, using the loaded
contract registry, without publishing.
- **Required**: nodes, edges
- **Returns**: diagnostics, each with rule, level, message, and node id

## dsl.validate
Parses and normalizes DSL source, then checks each form's required fields
and its references to entities, documents, cases, and links declared in
the same program. Verb contracts are not consulted.
- **Required**: source
- **Returns**: valid, the form count, normalize diagnostics, errors,
  warnings, and suggestions; or valid=false with a parse_error

## workflow.find_or_start
Finds the existing workflow instance for (workflow_id, subject_type,
subject_id) or starts a new one.
- **Required**: workflow_id, subject_type, subject_id, created_by
- **Returns**: the instance

## workflow.try_advance
Evaluates the current state's auto-transition guards against the given
context and takes the first satisfied edge in declaration order.
- **Required**: instance_id
- **Optional**: context
- **Returns**: the instance, unchanged when no guard is satisfied

## workflow.transition
Forces an explicit state transition on a workflow instance; the target
must be one of the current state's outgoing states.
- **Required**: instance_id, to_state, actor
- **Optional**: reason

## workflow.status
Returns the current state, blockers, and history of a workflow instance.
- **Required**: instance_id
- **Optional**: context

## template.expand
Expands a parametric DSL template by id, resolving parameters from
explicit args, context, then default, in that order.
- **Required**: template_id
- **Optional**: args, current_cbu, current_case
- **Returns**: the expanded DSL source, the filled parameters, and the
  template's outputs; any unresolved required parameter is listed under
  the missing parameters, and the DSL is then empty
`
