package dsl

// legacyVerbRewrites maps legacy verb spellings to their canonical dotted
// kebab-case names. Argument pairs are preserved as-is: only the verb name
// changes.
var legacyVerbRewrites = map[string]string{
	"kyc.start_case":     "case.create",
	"ubo.link_ownership": "entity.link",
	"ubo.add_evidence":   "document.use",
	"kyc.add_finding":    "case.update",
}

// NormalizeDiagnostic records a non-fatal observation made while normalizing
// a program, such as an unrecognized verb.
type NormalizeDiagnostic struct {
	Message string
	Verb    string
}

// Normalize rewrites legacy verb names to their canonical form in place and
// returns diagnostics for verbs it does not recognize at all (those pass
// through unchanged). Normalization is idempotent: normalizing an
// already-canonical program is a fixed point, since canonical verb names
// never appear as keys of legacyVerbRewrites.
func Normalize(prog *Program, knownVerbs map[string]struct{}) []NormalizeDiagnostic {
	var diags []NormalizeDiagnostic
	for i := range prog.Forms {
		f := &prog.Forms[i]
		if canonical, ok := legacyVerbRewrites[f.Verb]; ok {
			f.Verb = canonical
			continue
		}
		if knownVerbs != nil {
			if _, known := knownVerbs[f.Verb]; !known {
				diags = append(diags, NormalizeDiagnostic{
					Message: "unrecognized verb passed through unchanged",
					Verb:    f.Verb,
				})
			}
		}
	}
	return diags
}
