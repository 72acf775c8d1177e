// Package validator implements the two-pass semantic validator for a parsed
// DSL program: a first pass registers entities, documents, and cases so
// later forms can be checked against what has actually been declared, then a
// second pass validates each form's fields and cross-references.
package validator

import (
	"fmt"
	"strings"

	"github.com/sem-os/semcore/internal/dsl"
)

// ValidationError is a blocking problem found in a program.
type ValidationError struct {
	Code        string
	Message     string
	FormIndex   int
	Suggestions []string
}

// ValidationWarning is a non-blocking problem found in a program.
type ValidationWarning struct {
	Code      string
	Message   string
	FormIndex int
	AutoFix   string
}

// Result is the outcome of validating a whole program.
type Result struct {
	IsValid     bool
	Errors      []ValidationError
	Warnings    []ValidationWarning
	Suggestions []string
}

type linkInfo struct {
	fromEntity       string
	toEntity         string
	relationshipType string
}

type caseInfo struct {
	caseType string
	notes    []string
}

// Validator accumulates registry state across a single program's forms. It
// is not safe for concurrent use and is not meant to be reused across
// unrelated programs.
type Validator struct {
	entityRegistry   map[string]struct{}
	documentRegistry map[string]struct{}
	linkRegistry     map[string]linkInfo
	caseRegistry     map[string]*caseInfo
}

// New returns an empty Validator ready to validate one program.
func New() *Validator {
	return &Validator{
		entityRegistry:   map[string]struct{}{},
		documentRegistry: map[string]struct{}{},
		linkRegistry:     map[string]linkInfo{},
		caseRegistry:     map[string]*caseInfo{},
	}
}

// ValidateProgram runs the full two-pass validation over prog.
func (v *Validator) ValidateProgram(prog *dsl.Program) Result {
	var result Result

	v.registerDefinitions(prog)

	for i, form := range prog.Forms {
		v.validateVerbForm(form, i, &result)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) registerDefinitions(prog *dsl.Program) {
	for _, form := range prog.Forms {
		switch form.Verb {
		case "entity.register":
			if id, ok := form.StringArg("entity-id"); ok {
				v.entityRegistry[id] = struct{}{}
			}
		case "document.catalog":
			if id, ok := form.StringArg("document-id"); ok {
				v.documentRegistry[id] = struct{}{}
			}
		case "case.create":
			if id, ok := form.StringArg("case-id"); ok {
				ct, _ := form.StringArg("case-type")
				v.caseRegistry[id] = &caseInfo{caseType: ct}
			}
		}
	}
}

func (v *Validator) validateVerbForm(form dsl.Form, index int, result *Result) {
	switch form.Verb {
	case "entity.link":
		v.validateEntityLink(form, index, result)
	case "case.update":
		v.validateCaseUpdateNotes(form, index, result)
	case "document.use":
		v.validateDocumentUseEvidence(form, index, result)
	case "case.create":
		v.validateCaseCreate(form, index, result)
	case "entity.register":
		v.validateEntityRegister(form, index, result)
	case "document.catalog":
		v.validateDocumentCatalog(form, index, result)
	default:
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:      "UNKNOWN_VERB",
			Message:   fmt.Sprintf("unknown verb: %s", form.Verb),
			FormIndex: index,
		})
	}
}

func (v *Validator) validateEntityLink(form dsl.Form, index int, result *Result) {
	fromEntity, ok := form.StringArg("from-entity")
	if !ok {
		result.Errors = append(result.Errors, missingField("from-entity", index))
		return
	}
	toEntity, ok := form.StringArg("to-entity")
	if !ok {
		result.Errors = append(result.Errors, missingField("to-entity", index))
		return
	}
	relType, ok := form.StringArg("relationship-type")
	if !ok {
		result.Errors = append(result.Errors, missingField("relationship-type", index))
		return
	}

	if _, ok := v.entityRegistry[fromEntity]; !ok {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:      "ENTITY_NOT_FOUND",
			Message:   fmt.Sprintf("from-entity %q not found in registry", fromEntity),
			FormIndex: index,
		})
	}
	if _, ok := v.entityRegistry[toEntity]; !ok {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:      "ENTITY_NOT_FOUND",
			Message:   fmt.Sprintf("to-entity %q not found in registry", toEntity),
			FormIndex: index,
		})
	}

	// A link-id makes this an update to an existing link; without one, a
	// natural key (from->to-type) tracks first registration.
	key, isUpdate := form.StringArg("link-id")
	if !isUpdate {
		key = fmt.Sprintf("%s->%s-%s", fromEntity, toEntity, relType)
	}

	if existing, seen := v.linkRegistry[key]; seen {
		if existing.fromEntity != fromEntity || existing.toEntity != toEntity || existing.relationshipType != relType {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:      "LINK_UPDATE_INCONSISTENCY",
				Message:   fmt.Sprintf("link update %q changes core attributes from original definition", key),
				FormIndex: index,
			})
		}
	} else {
		v.linkRegistry[key] = linkInfo{fromEntity: fromEntity, toEntity: toEntity, relationshipType: relType}
	}

	if props, ok := form.MapArg("relationship-props"); ok {
		v.validateRelationshipProps(props, relType, index, result)
	}
}

func (v *Validator) validateRelationshipProps(props dsl.VMap, relType string, index int, result *Result) {
	switch relType {
	case "OWNERSHIP":
		pctVal, hasPct := props["ownership-percentage"]
		if !hasPct {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:      "MISSING_OWNERSHIP_PERCENTAGE",
				Message:   "OWNERSHIP relationship missing ownership-percentage",
				FormIndex: index,
				AutoFix:   "Add :ownership-percentage to relationship-props",
			})
			return
		}
		pct, ok := numericValue(pctVal)
		if !ok {
			return
		}
		if pct < 0.0 || pct > 100.0 {
			result.Errors = append(result.Errors, ValidationError{
				Code:        "INVALID_OWNERSHIP_PERCENTAGE",
				Message:     fmt.Sprintf("ownership percentage %v is out of range (0-100)", pct),
				FormIndex:   index,
				Suggestions: []string{"Use a percentage between 0.0 and 100.0"},
			})
		}
	case "GENERAL_PARTNER", "CONTROL":
		if _, ok := props["verification-status"]; !ok {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Consider adding verification-status to %s relationship", relType))
		}
	default:
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:      "UNKNOWN_RELATIONSHIP_TYPE",
			Message:   fmt.Sprintf("unknown relationship type: %s", relType),
			FormIndex: index,
		})
	}
}

func (v *Validator) validateCaseUpdateNotes(form dsl.Form, index int, result *Result) {
	caseID, ok := form.StringArg("case-id")
	if !ok {
		result.Errors = append(result.Errors, missingField("case-id", index))
		return
	}

	ci, found := v.caseRegistry[caseID]
	if !found {
		result.Errors = append(result.Errors, ValidationError{
			Code:        "CASE_NOT_FOUND",
			Message:     fmt.Sprintf("case %q not found", caseID),
			FormIndex:   index,
			Suggestions: []string{"Ensure case is created before updating"},
		})
		return
	}

	notes, ok := form.StringArg("notes")
	if !ok {
		result.Errors = append(result.Errors, ValidationError{
			Code:        "MISSING_NOTES_FIELD",
			Message:     "case.update must have notes field",
			FormIndex:   index,
			Suggestions: []string{"Add :notes field with note content"},
		})
		return
	}

	// Append-only: every update grows the case's note history, never
	// rewrites it.
	ci.notes = append(ci.notes, notes)

	if idx := strings.Index(notes, ":"); idx >= 0 {
		noteID := strings.TrimSpace(notes[:idx])
		if noteID == "" {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:      "EMPTY_NOTE_ID",
				Message:   "note ID is empty in note format",
				FormIndex: index,
				AutoFix:   "Use format 'note-001: Note content'",
			})
		}
	}
}

var validUsageProcesses = []string{"UBO_ANALYSIS", "KYC_VERIFICATION", "COMPLIANCE_CHECK", "GENERAL"}

func (v *Validator) validateDocumentUseEvidence(form dsl.Form, index int, result *Result) {
	documentID, ok := form.StringArg("document-id")
	if !ok {
		result.Errors = append(result.Errors, missingField("document-id", index))
		return
	}
	if _, found := v.documentRegistry[documentID]; !found {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Code:      "DOCUMENT_NOT_FOUND",
			Message:   fmt.Sprintf("document %q not found in registry", documentID),
			FormIndex: index,
		})
	}

	usageType, ok := form.StringArg("usage-type")
	if !ok {
		usageType = "GENERAL"
	}

	if usageType == "EVIDENCE" {
		if linkRef, ok := form.StringArg("evidence.of-link"); ok {
			if _, found := v.linkRegistry[linkRef]; !found {
				result.Warnings = append(result.Warnings, ValidationWarning{
					Code:      "EVIDENCE_LINK_NOT_FOUND",
					Message:   fmt.Sprintf("evidence links to unknown link-id %q", linkRef),
					FormIndex: index,
				})
			}
		} else {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:      "MISSING_EVIDENCE_LINK",
				Message:   "EVIDENCE usage-type should specify evidence.of-link",
				FormIndex: index,
				AutoFix:   "Add :evidence.of-link field",
			})
		}
	}

	if process, ok := form.StringArg("used-by-process"); ok {
		if !contains(validUsageProcesses, process) {
			result.Suggestions = append(result.Suggestions,
				fmt.Sprintf("Consider using a standard process name: %s", strings.Join(validUsageProcesses, ", ")))
		}
	}
}

var validCaseTypes = []string{"KYC_CASE", "UBO_CASE", "COMPLIANCE_CASE", "GENERAL_CASE"}

func (v *Validator) validateCaseCreate(form dsl.Form, index int, result *Result) {
	if _, ok := form.StringArg("case-id"); !ok {
		result.Errors = append(result.Errors, missingField("case-id", index))
		return
	}
	if caseType, ok := form.StringArg("case-type"); ok && !contains(validCaseTypes, caseType) {
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("Consider using a standard case type: %s", strings.Join(validCaseTypes, ", ")))
	}
	if _, ok := form.Pairs["assigned-to"]; ok {
		result.Suggestions = append(result.Suggestions, "Consider validating assigned-to against user directory")
	}
}

func (v *Validator) validateEntityRegister(form dsl.Form, index int, result *Result) {
	if _, ok := form.StringArg("entity-id"); !ok {
		result.Errors = append(result.Errors, missingField("entity-id", index))
		return
	}
	if _, ok := form.StringArg("entity-type"); !ok {
		result.Errors = append(result.Errors, missingField("entity-type", index))
		return
	}
	if props, ok := form.MapArg("props"); ok {
		if _, hasLegalName := props["legal-name"]; !hasLegalName {
			result.Suggestions = append(result.Suggestions, "Consider adding legal-name to entity props")
		}
	}
}

func (v *Validator) validateDocumentCatalog(form dsl.Form, index int, result *Result) {
	if _, ok := form.StringArg("document-id"); !ok {
		result.Errors = append(result.Errors, missingField("document-id", index))
		return
	}
	if _, ok := form.StringArg("document-type"); !ok {
		result.Errors = append(result.Errors, missingField("document-type", index))
		return
	}
	if fileHash, ok := form.StringArg("file-hash"); ok {
		if !strings.HasPrefix(fileHash, "sha256:") && !strings.HasPrefix(fileHash, "md5:") {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Code:      "INVALID_HASH_FORMAT",
				Message:   "file-hash should include hash algorithm prefix (e.g., 'sha256:')",
				FormIndex: index,
				AutoFix:   "Use format 'sha256:abcd1234...'",
			})
		}
	}
}

func missingField(field string, index int) ValidationError {
	return ValidationError{
		Code:        "MISSING_REQUIRED_FIELD",
		Message:     fmt.Sprintf("missing required field: %s", field),
		FormIndex:   index,
		Suggestions: []string{fmt.Sprintf("Add :%s to this form", field)},
	}
}

func numericValue(v dsl.Value) (float64, bool) {
	switch val := v.(type) {
	case dsl.VDouble:
		return float64(val), true
	case dsl.VInteger:
		return float64(val), true
	}
	return 0, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
