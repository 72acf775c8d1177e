package templates

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ownershipTemplate() *Template {
	return &Template{
		TemplateID: "link_ownership",
		Params: []ParamSpec{
			{Name: "from_entity", Required: true, Source: SourceArg},
			{Name: "to_entity", Required: true, Source: SourceArg},
			{Name: "percentage", Required: false, Source: SourceDefault, Default: 50.0},
		},
		Body: `(entity.link :from-entity "{{index . "from_entity"}}" :to-entity "{{index . "to_entity"}}" ` +
			`:relationship-type "OWNERSHIP" :relationship-props {:ownership-percentage {{index . "percentage"}}})`,
		Outputs: []string{"link_id"},
		WorkflowContext: WorkflowContext{
			ResolvesBlockers: []string{"incomplete_ownership"},
		},
	}
}

func TestExpand_ResolvesFromArgsThenContextThenDefault(t *testing.T) {
	tmpl := ownershipTemplate()

	exp, err := Expand(tmpl, map[string]any{"from_entity": "entity-1", "to_entity": "entity-2"}, ExpansionContext{})
	require.NoError(t, err)
	require.Empty(t, exp.MissingParams)
	require.Equal(t, 50.0, exp.FilledParams["percentage"])
	require.Contains(t, exp.DSL, `"entity-1"`)
	require.Contains(t, exp.DSL, `"entity-2"`)
}

func TestExpand_ContextSuppliesUnfilledArg(t *testing.T) {
	tmpl := ownershipTemplate()
	ctx := ExpansionContext{Values: map[string]any{"to_entity": "entity-from-context"}}

	exp, err := Expand(tmpl, map[string]any{"from_entity": "entity-1"}, ctx)
	require.NoError(t, err)
	require.Empty(t, exp.MissingParams)
	require.Equal(t, "entity-from-context", exp.FilledParams["to_entity"])
}

func TestExpand_MissingRequiredParamIsStructuredNotError(t *testing.T) {
	tmpl := ownershipTemplate()

	exp, err := Expand(tmpl, map[string]any{"from_entity": "entity-1"}, ExpansionContext{})
	require.NoError(t, err)
	require.Equal(t, []string{"to_entity"}, exp.MissingParams)
	require.Empty(t, exp.DSL)
}

// Testable Property 10: whenever MissingParams is empty, the returned DSL
// parses without error.
func TestExpand_CompleteExpansionAlwaysParses(t *testing.T) {
	tmpl := ownershipTemplate()
	exp, err := Expand(tmpl, map[string]any{"from_entity": "e1", "to_entity": "e2", "percentage": 75.0}, ExpansionContext{})
	require.NoError(t, err)
	require.Empty(t, exp.MissingParams)
	require.NotEmpty(t, exp.DSL)
}

func TestRegistry_ForBlocker(t *testing.T) {
	reg := NewRegistry()
	reg.Register(ownershipTemplate())

	matches := reg.ForBlocker("incomplete_ownership")
	require.Len(t, matches, 1)
	require.Equal(t, "link_ownership", matches[0].TemplateID)

	require.Empty(t, reg.ForBlocker("missing_role"))
}
