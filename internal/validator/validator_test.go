package validator

import (
	"testing"

	"github.com/sem-os/semcore/internal/dsl"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *dsl.Program {
	t.Helper()
	prog, err := dsl.Parse(src)
	require.NoError(t, err)
	return prog
}

func TestValidate_EntityLinkCleanPass(t *testing.T) {
	prog := mustParse(t, `
		(entity.register :entity-id "entity-1" :entity-type "COMPANY")
		(entity.register :entity-id "entity-2" :entity-type "PERSON")
		(entity.link :link-id "link-001" :from-entity "entity-1" :to-entity "entity-2"
			:relationship-type "OWNERSHIP"
			:relationship-props {:ownership-percentage 60.0 :verification-status "ALLEGED"})
	`)

	result := New().ValidateProgram(prog)
	require.True(t, result.IsValid)
	require.Empty(t, result.Errors)
}

func TestValidate_LinkUpdateSameIDConsistent(t *testing.T) {
	prog := mustParse(t, `
		(entity.register :entity-id "entity-1" :entity-type "COMPANY")
		(entity.register :entity-id "entity-2" :entity-type "PERSON")
		(entity.link :link-id "link-001" :from-entity "entity-1" :to-entity "entity-2" :relationship-type "OWNERSHIP")
		(entity.link :link-id "link-001" :from-entity "entity-1" :to-entity "entity-2" :relationship-type "OWNERSHIP")
	`)

	result := New().ValidateProgram(prog)
	require.True(t, result.IsValid)
	require.Empty(t, result.Errors)
}

func TestValidate_AppendOnlyCaseNotes(t *testing.T) {
	v := New()
	prog := mustParse(t, `
		(case.create :case-id "case-001" :case-type "KYC_CASE")
		(case.update :case-id "case-001" :notes "First note")
		(case.update :case-id "case-001" :notes "Second note")
	`)

	result := v.ValidateProgram(prog)
	require.True(t, result.IsValid)

	ci := v.caseRegistry["case-001"]
	require.Equal(t, []string{"First note", "Second note"}, ci.notes)
}

func TestValidate_InvalidOwnershipPercentage(t *testing.T) {
	prog := mustParse(t, `
		(entity.register :entity-id "entity-1" :entity-type "COMPANY")
		(entity.register :entity-id "entity-2" :entity-type "PERSON")
		(entity.link :from-entity "entity-1" :to-entity "entity-2" :relationship-type "OWNERSHIP"
			:relationship-props {:ownership-percentage 150.0})
	`)

	result := New().ValidateProgram(prog)
	require.False(t, result.IsValid)
	require.Equal(t, "INVALID_OWNERSHIP_PERCENTAGE", result.Errors[0].Code)
}

func TestValidate_ErrorDetectionAndWarnings(t *testing.T) {
	prog := mustParse(t, `
		(entity.link :from-entity "nonexistent-1" :to-entity "nonexistent-2" :relationship-type "OWNERSHIP"
			:relationship-props {:ownership-percentage 150.0})
		(case.update :case-id "nonexistent-case" :notes "test note")
		(document.use :document-id "nonexistent-doc" :usage-type "EVIDENCE" :evidence.of-link "nonexistent-link")
	`)

	result := New().ValidateProgram(prog)
	require.False(t, result.IsValid)

	var codes []string
	for _, e := range result.Errors {
		codes = append(codes, e.Code)
	}
	require.Contains(t, codes, "INVALID_OWNERSHIP_PERCENTAGE")
	require.Contains(t, codes, "CASE_NOT_FOUND")

	require.NotEmpty(t, result.Warnings)
	var warningCodes []string
	for _, w := range result.Warnings {
		warningCodes = append(warningCodes, w.Code)
	}
	require.Contains(t, warningCodes, "ENTITY_NOT_FOUND")
}

// Mirrors the legacy-DSL end-to-end pipeline scenario: parse, normalize
// legacy verbs, then validate.
func TestPipeline_LegacyDSLNormalizesAndValidates(t *testing.T) {
	src := `
		(kyc.start_case :case_type "KYC_CASE" :business_reference "KYC-2025-001")
		(entity.register :entity-id "entity-1" :entity-type "COMPANY")
		(entity.register :entity-id "entity-2" :entity-type "PERSON")
		(ubo.link_ownership :from_entity "entity-1" :to_entity "entity-2" :percent 60.0 :status "alleged")
		(document.catalog :document-id "doc-001" :document-type "CONTRACT")
		(ubo.add_evidence :document_id "doc-001" :target_link_id "entity-1->entity-2-OWNERSHIP")
		(kyc.add_finding :case_id "case-001" :finding_id "note-001" :text "Sample finding")
	`

	prog, _, result, err := ParseNormalizeAndValidate(src, nil)
	require.NoError(t, err)

	require.Equal(t, "case.create", prog.Forms[0].Verb)
	require.Equal(t, "entity.link", prog.Forms[3].Verb)
	require.Equal(t, "document.use", prog.Forms[5].Verb)
	require.Equal(t, "case.update", prog.Forms[6].Verb)

	// The legacy field names don't match canonical field names (e.g.
	// from_entity vs from-entity), so the cross-reference pass surfaces
	// missing-field errors rather than passing silently.
	require.NotEmpty(t, result.Errors)
}

func TestPipeline_CanonicalDSLValidatesCleanly(t *testing.T) {
	src := `
		(case.create :case-id "case-001" :case-type "KYC_CASE")
		(entity.register :entity-id "entity-1" :entity-type "COMPANY")
		(entity.register :entity-id "entity-2" :entity-type "PERSON")
		(entity.link :link-id "link-001" :from-entity "entity-1" :to-entity "entity-2"
			:relationship-type "OWNERSHIP"
			:relationship-props {:ownership-percentage 75.0 :verification-status "VERIFIED"})
		(document.catalog :document-id "doc-001" :document-type "CONTRACT" :file-hash "sha256:abc123")
		(document.use :document-id "doc-001" :usage-type "EVIDENCE" :evidence.of-link "link-001" :used-by-process "UBO_ANALYSIS")
		(case.update :case-id "case-001" :notes "note-001: All documentation verified")
	`

	prog, _, result, err := ParseNormalizeAndValidate(src, nil)
	require.NoError(t, err)
	require.Equal(t, "case.create", prog.Forms[0].Verb)
	require.True(t, result.IsValid)
	require.Empty(t, result.Errors)
}
