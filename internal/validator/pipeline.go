package validator

import "github.com/sem-os/semcore/internal/dsl"

// ParseNormalizeAndValidate runs the full authoring pipeline over src: parse
// the surface text, rewrite legacy verbs to their canonical names, then
// validate the resulting program. knownVerbs, when non-nil, is passed
// through to Normalize for unrecognized-verb diagnostics.
func ParseNormalizeAndValidate(src string, knownVerbs map[string]struct{}) (*dsl.Program, []dsl.NormalizeDiagnostic, Result, error) {
	prog, err := dsl.Parse(src)
	if err != nil {
		return nil, nil, Result{}, err
	}

	normDiags := dsl.Normalize(prog, knownVerbs)

	result := New().ValidateProgram(prog)
	return prog, normDiags, result, nil
}
