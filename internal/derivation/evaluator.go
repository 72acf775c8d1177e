// Package derivation compiles and evaluates DerivationSpec.expression with
// CEL: one variable per declared input (named by its role), compiled once
// and cached per expression, evaluated against resolved input values both at
// publish time (a gate sanity-checks the expression compiles and type-checks
// against its declared inputs) and at executor time (recomputing the output
// attribute from current input values).
package derivation

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/sem-os/semcore/internal/types"
)

// NullSemantics values a DerivationSpec.null_semantics field may hold.
const (
	NullPropagate = "propagate" // a missing required input yields a nil result
	NullFail      = "fail"      // a missing required input is an evaluation error
	NullZero      = "zero-fill" // a missing required input is substituted with its zero value
)

// Evaluator compiles DerivationSpec expressions against CEL environments
// built from their declared inputs, and caches the compiled program per
// expression so repeated recomputation (the executor path) doesn't re-parse
// and re-check the same formula on every call.
type Evaluator struct {
	mu       sync.Mutex
	programs map[string]cel.Program
}

// NewEvaluator returns a ready-to-use Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{programs: map[string]cel.Program{}}
}

// Compile validates that spec.Expression parses and type-checks against an
// environment with one cel.DynType variable per declared input role. It
// never evaluates the expression; it is the publish-time sanity check a
// derivation gate runs before a DerivationSpec is allowed into the registry.
func (e *Evaluator) Compile(spec types.DerivationSpec) error {
	env, err := buildEnv(spec)
	if err != nil {
		return fmt.Errorf("building CEL environment for %s: %w", spec.FQN, err)
	}
	_, issues := env.Compile(spec.Expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compiling expression for %s: %w", spec.FQN, issues.Err())
	}
	return nil
}

// Evaluate resolves spec.Expression against inputs, a map from each
// declared input's role to its current resolved value. Missing required
// inputs are handled per spec.NullSemantics rather than left to CEL's
// no-such-attribute error. The cached program for spec.FQN is reused across
// calls; it is invalidated implicitly by keying on FQN+expression, so a
// republished derivation with a changed expression recompiles.
func (e *Evaluator) Evaluate(spec types.DerivationSpec, inputs map[string]any) (any, error) {
	resolved := make(map[string]any, len(spec.Inputs))
	for _, in := range spec.Inputs {
		v, ok := inputs[in.Role]
		if !ok || v == nil {
			if !in.Required {
				resolved[in.Role] = nil
				continue
			}
			switch spec.NullSemantics {
			case NullZero:
				resolved[in.Role] = 0.0
			case NullFail:
				return nil, fmt.Errorf("derivation %s: required input %q (%s) is missing", spec.FQN, in.Role, in.AttributeFQN)
			default: // NullPropagate and unset
				return nil, nil
			}
			continue
		}
		resolved[in.Role] = v
	}

	program, err := e.programFor(spec)
	if err != nil {
		return nil, err
	}

	out, _, err := program.Eval(resolved)
	if err != nil {
		return nil, fmt.Errorf("evaluating derivation %s: %w", spec.FQN, err)
	}
	return out.Value(), nil
}

func (e *Evaluator) programFor(spec types.DerivationSpec) (cel.Program, error) {
	cacheKey := spec.FQN + "\x00" + spec.Expression

	e.mu.Lock()
	defer e.mu.Unlock()

	if prog, ok := e.programs[cacheKey]; ok {
		return prog, nil
	}

	env, err := buildEnv(spec)
	if err != nil {
		return nil, fmt.Errorf("building CEL environment for %s: %w", spec.FQN, err)
	}
	ast, issues := env.Compile(spec.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compiling expression for %s: %w", spec.FQN, issues.Err())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("building program for %s: %w", spec.FQN, err)
	}
	e.programs[cacheKey] = prog
	return prog, nil
}

func buildEnv(spec types.DerivationSpec) (*cel.Env, error) {
	opts := make([]cel.EnvOption, 0, len(spec.Inputs))
	for _, in := range spec.Inputs {
		opts = append(opts, cel.Variable(in.Role, cel.DynType))
	}
	return cel.NewEnv(opts...)
}
