// Package content provides MCP prompts and resources for the registry
// server: reference material and guided workflows for whatever client is
// driving the MCP tool surface.
package content

import "github.com/sem-os/semcore/internal/mcp"

// --- author-remediation prompt ---

// AuthorRemediationPrompt guides a caller through writing and publishing a
// DSL remediation program for a workflow blocker.
type AuthorRemediationPrompt struct{}

func (p *AuthorRemediationPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "author-remediation",
		Description: "Guide for writing a DSL program that remediates a workflow blocker, validating it, and publishing it for re-use",
		Arguments: []mcp.PromptArgument{
			{Name: "blocker", Description: "Name of the blocker this program should resolve (e.g. \"incomplete-ownership\")", Required: false},
		},
	}
}

func (p *AuthorRemediationPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide for authoring a remediation DSL program",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(authorRemediationGuide)},
		},
	}, nil
}

const authorRemediationGuide = `# Author a Remediation Program

You are helping a user write a DSL program that resolves a workflow
blocker — for example re-registering an entity, adding a missing
ownership link, or attaching evidence for a document.

## Step 1: Identify the blocker

Call workflow.status on the stuck instance to see which blocker is
unsatisfied and what it expects.

## Step 2: Check for an existing program

Templates expand by template id (template.expand), and a program published under
the same FQN before can be re-run rather than re-authored — check
semcore://tool-reference for the registry.publish/dsl.validate shapes
before writing new DSL source from scratch.

## Step 3: Write the DSL forms

Each form is ` + "`domain.name :key value ...`" + `, e.g.:

` + "```" + `
(entity.link :from-entity @parent :to-entity @child
  :relationship-type "OWNERSHIP" :relationship-props {:ownership-percentage 60.0})
` + "```" + `

Bind a form's result to a variable with ` + "`:as @name`" + ` for later forms to
reference.

## Step 4: Validate, then publish

Run dsl.validate against the source first — it checks each form's
required fields and its references to entities, documents, cases, and
links declared in the same program, without touching the store. Once clean, publish
it under a stable FQN (e.g. ` + "`remediation.missing-ubo`" + `) via
registry.publish so the workflow engine can find and re-run it next time
this blocker recurs.
`

// --- onboard-entity prompt ---

// OnboardEntityPrompt guides a caller through registering a new entity
// under a CBU and starting its onboarding workflow.
type OnboardEntityPrompt struct{}

func (p *OnboardEntityPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "onboard-entity",
		Description: "Guide for registering a new entity, attaching its required attributes and documents, and starting its onboarding workflow",
		Arguments: []mcp.PromptArgument{
			{Name: "entity_type", Description: "ORGANIZATION or INDIVIDUAL", Required: false},
		},
	}
}

func (p *OnboardEntityPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "Guide for onboarding a new entity",
		Messages: []mcp.PromptMessage{
			{Role: "user", Content: mcp.TextContent(onboardEntityGuide)},
		},
	}, nil
}

const onboardEntityGuide = `# Onboard a New Entity

## Step 1: Register the entity

Use entity.register with entity-id, entity-type (ORGANIZATION or
INDIVIDUAL), and any known attributes. Check semcore://entity-model first
if you're unsure what attribute provenance (asserted/derived/enriched)
applies.

## Step 2: Link ownership and control edges

For an ORGANIZATION, use entity.link to record OWNERSHIP and CONTROL
edges to its owners and controllers. The ubo package walks these edges to
compute effective beneficial ownership across multi-hop chains — get the
percentages right, since the incomplete-ownership workflow blocker checks
that an entity's direct ownership percentages sum to more than 0 and at
most 100.

## Step 3: Catalog and use documents

document.catalog records a document's hash and type; document.use and
evidence.of-link record which entity link or attribute value a document
backs. A workflow blocker checking for missing evidence is looking for
exactly this usage record.

## Step 4: Start the onboarding workflow

Call workflow.find_or_start with the CBU as subject. From there,
workflow.try_advance moves the instance on when a transition guard is
satisfied, and workflow.status reports which blockers (if any) prevent
moving to the next state; author-remediation covers what to do when one does.
`
