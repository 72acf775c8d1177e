package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentCatalogAndUse_RecordsEvidenceUsage(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `
(document.catalog :document-id "doc-1" :document-type "PASSPORT" :as @doc)
(document.use :document-id "doc-1" :usage-type "EVIDENCE"
  :used-by-process "KYC_VERIFICATION" :evidence.of-link "link-1" :as @usage)
`)

	_, ectx, err := exec.ExecuteProgram(context.Background(), prog)
	require.NoError(t, err)

	usage, ok := ectx.Resolve("usage")
	require.True(t, ok)
	result := usage.(map[string]any)
	require.Equal(t, "EVIDENCE", result["usage_type"])
	require.Equal(t, "link-1", result["evidence_of_link"])
}

func TestDocumentUse_FailsWhenDocumentNotCataloged(t *testing.T) {
	exec, _ := newTestExecutor()
	prog := mustParse(t, `(document.use :document-id "doc-unknown" :usage-type "GENERAL")`)

	_, _, err := exec.ExecuteProgram(context.Background(), prog)
	require.Error(t, err)
}
