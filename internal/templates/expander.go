package templates

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/sem-os/semcore/internal/dsl"
)

// ExpansionContext carries ambient subject state an expansion may pull
// parameter values from when the caller didn't supply them explicitly.
type ExpansionContext struct {
	CurrentCBU  string
	CurrentCase string
	Values      map[string]any
}

func (c ExpansionContext) lookup(name string) (any, bool) {
	switch name {
	case "current_cbu":
		if c.CurrentCBU != "" {
			return c.CurrentCBU, true
		}
		return nil, false
	case "current_case":
		if c.CurrentCase != "" {
			return c.CurrentCase, true
		}
		return nil, false
	}
	if c.Values == nil {
		return nil, false
	}
	v, ok := c.Values[name]
	return v, ok
}

// Expansion is the result of filling in a template against explicit args and
// a context.
type Expansion struct {
	DSL           string
	FilledParams  map[string]any
	MissingParams []string
	Outputs       []string
}

// Expand resolves t's declared parameters — explicit args first, then ctx,
// then the parameter's own default — and renders t.Body against the
// resolved values. Unresolved required parameters are reported in
// MissingParams rather than returned as an error: per Testable Property 10,
// whenever MissingParams is empty the returned DSL is guaranteed to parse.
func Expand(t *Template, args map[string]any, ctx ExpansionContext) (*Expansion, error) {
	filled := map[string]any{}
	var missing []string

	for _, p := range t.Params {
		val, ok := resolveParam(p, args, ctx)
		if !ok {
			if p.Required {
				missing = append(missing, p.Name)
				continue
			}
			val = p.Default
		}
		filled[p.Name] = val
	}

	out := &Expansion{
		FilledParams:  filled,
		MissingParams: missing,
		Outputs:       t.Outputs,
	}

	if len(missing) > 0 {
		return out, nil
	}

	rendered, err := renderBody(t, filled)
	if err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", t.TemplateID, err)
	}
	out.DSL = rendered

	if _, err := dsl.Parse(rendered); err != nil {
		return nil, fmt.Errorf("template %s produced unparseable DSL: %w", t.TemplateID, err)
	}

	return out, nil
}

func resolveParam(p ParamSpec, args map[string]any, ctx ExpansionContext) (any, bool) {
	if v, ok := args[p.Name]; ok {
		return v, true
	}
	if v, ok := ctx.lookup(p.Name); ok {
		return v, true
	}
	if p.Default != nil {
		return p.Default, true
	}
	return nil, false
}

func renderBody(t *Template, filled map[string]any) (string, error) {
	tmpl, err := template.New(t.TemplateID).Parse(t.Body)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, filled); err != nil {
		return "", err
	}
	return buf.String(), nil
}
