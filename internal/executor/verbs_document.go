package executor

import (
	"context"
	"fmt"

	"github.com/sem-os/semcore/internal/domain/document"
	"github.com/sem-os/semcore/internal/dsl"
	"github.com/sem-os/semcore/internal/store"
)

// DocumentCatalogVerb implements document.catalog: registers a document by
// id, idempotent the same way entity.register is.
type DocumentCatalogVerb struct {
	Store *store.Store
}

func (DocumentCatalogVerb) Domain() string    { return "document" }
func (DocumentCatalogVerb) Verb() string      { return "catalog" }
func (DocumentCatalogVerb) Rationale() string { return "Registers a document row by caller-supplied id" }

func (v DocumentCatalogVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	documentID, ok := StringArg(call, "document-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("document.catalog: missing document-id")
	}
	documentType, _ := StringArg(call, "document-type", ectx)
	fileHash, _ := StringArg(call, "file-hash", ectx)

	d := v.Store.EnsureDocument(documentID, documentType, fileHash)
	return RecordResult(d.DocumentID), nil
}

// DocumentUseVerb implements document.use: records how a cataloged document
// is being used (e.g. as EVIDENCE for an ownership link) via the document
// service's usage history. It never fails on an unresolved evidence link —
// that is a validator-time warning, not an executor-time error — only on a
// document that was never cataloged in the first place.
type DocumentUseVerb struct {
	Documents *document.Service
}

func (DocumentUseVerb) Domain() string    { return "document" }
func (DocumentUseVerb) Verb() string      { return "use" }
func (DocumentUseVerb) Rationale() string { return "Records a document's usage against a case or link" }

func (v DocumentUseVerb) Execute(_ context.Context, call dsl.Form, ectx *ExecutionContext) (ExecutionResult, error) {
	documentID, ok := StringArg(call, "document-id", ectx)
	if !ok {
		return ExecutionResult{}, fmt.Errorf("document.use: missing document-id")
	}
	usageType, ok := StringArg(call, "usage-type", ectx)
	if !ok {
		usageType = "GENERAL"
	}
	cbuID, _ := StringArg(call, "cbu-id", ectx)
	usedByProcess, _ := StringArg(call, "used-by-process", ectx)
	businessPurpose, _ := StringArg(call, "business-purpose", ectx)
	evidenceOfLink, _ := StringArg(call, "evidence.of-link", ectx)

	usage, err := v.Documents.RecordUsage(documentID, usageType, cbuID, usedByProcess, businessPurpose, evidenceOfLink)
	if err != nil {
		return ExecutionResult{}, fmt.Errorf("document.use: %w", err)
	}

	result := map[string]any{
		"document_id": usage.DocumentID,
		"usage_type":  usage.UsageType,
	}
	if usage.EvidenceOfLink != "" {
		result["evidence_of_link"] = usage.EvidenceOfLink
	}
	return RecordResult(result), nil
}
