// Package templates implements the registry of parametric DSL snippets used
// to remediate workflow blockers, and the expander that fills them in.
package templates

// ParamSource names where a parameter's value may come from, in resolution
// priority order: explicit args first, then the expansion context, then the
// template's own default.
type ParamSource string

const (
	SourceArg     ParamSource = "arg"
	SourceContext ParamSource = "context"
	SourceDefault ParamSource = "default"
)

// ParamSpec describes one declared template parameter.
type ParamSpec struct {
	Name       string
	Required   bool
	Source     ParamSource
	Default    any
	Validation string
	EnumValues []string
}

// WorkflowContext narrows which workflows/states/blockers a template applies
// to, used to surface relevant templates for a given blocker.
type WorkflowContext struct {
	ApplicableWorkflows []string
	ApplicableStates    []string
	ResolvesBlockers    []string
}

// Template is one parametric DSL snippet.
type Template struct {
	TemplateID       string
	Version          string
	Metadata         map[string]any
	Tags             []string
	WorkflowContext  WorkflowContext
	Params           []ParamSpec
	Body             string
	Outputs          []string
	RelatedTemplates []string
}

// AppliesToBlocker reports whether t is declared as resolving the named
// blocker kind.
func (t *Template) AppliesToBlocker(kind string) bool {
	for _, b := range t.WorkflowContext.ResolvesBlockers {
		if b == kind {
			return true
		}
	}
	return false
}
