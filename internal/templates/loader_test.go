package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDir_MissingDirIsNotError(t *testing.T) {
	reg := NewRegistry()
	err := LoadDir(filepath.Join(t.TempDir(), "missing"), reg, nil)
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())
}

func TestLoadDir_ParsesTemplateFile(t *testing.T) {
	dir := t.TempDir()
	content := `
template: link_ownership
version: "1.0.0"
tags: [ownership, ubo]
workflow_context:
  applicable_workflows: [kyc_onboarding]
  resolves_blockers: [incomplete_ownership]
params:
  - name: from_entity
    required: true
    source: arg
  - name: percentage
    required: false
    source: default
    default: 50.0
body: |
  (entity.link :from-entity "{{index . "from_entity"}}" :relationship-type "OWNERSHIP")
outputs: [link_id]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "link_ownership.yaml"), []byte(content), 0o644))

	reg := NewRegistry()
	require.NoError(t, LoadDir(dir, reg, nil))

	tmpl, ok := reg.Get("link_ownership")
	require.True(t, ok)
	require.Equal(t, "1.0.0", tmpl.Version)
	require.True(t, tmpl.AppliesToBlocker("incomplete_ownership"))
	require.Len(t, tmpl.Params, 2)
}
