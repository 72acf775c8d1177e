// Package contracts owns the set of VerbContracts keyed by task_type and the
// set of flags the surrounding orchestrator supplies as workflow inputs.
// The registry is pure data: it is built once from configuration and shared
// read-only thereafter (§5 "Shared resources").
package contracts

import "github.com/sem-os/semcore/internal/types"

// Registry is the oracle consulted by every lint rule and by publish-time
// gates that need to resolve a task_type to its contract.
type Registry struct {
	contracts         map[string]*types.VerbContract
	knownWorkflowInputs map[types.Flag]struct{}
	order             []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		contracts:           make(map[string]*types.VerbContract),
		knownWorkflowInputs: make(map[types.Flag]struct{}),
	}
}

// Register stores contract under its TaskType. Last write wins, matching
// a registry built once from config where a later file may legitimately
// override an earlier one.
func (r *Registry) Register(contract *types.VerbContract) {
	if _, exists := r.contracts[contract.TaskType]; !exists {
		r.order = append(r.order, contract.TaskType)
	}
	r.contracts[contract.TaskType] = contract
}

// RegisterKnownInput marks flag as supplied by the orchestrator rather than
// written by any task.
func (r *Registry) RegisterKnownInput(flag types.Flag) {
	r.knownWorkflowInputs[flag] = struct{}{}
}

// Get returns the contract for taskType, or nil if none is registered.
func (r *Registry) Get(taskType string) *types.VerbContract {
	return r.contracts[taskType]
}

// Has reports whether taskType has a registered contract.
func (r *Registry) Has(taskType string) bool {
	_, ok := r.contracts[taskType]
	return ok
}

// IsKnownInput reports whether flag is a known workflow input.
func (r *Registry) IsKnownInput(flag types.Flag) bool {
	_, ok := r.knownWorkflowInputs[flag]
	return ok
}

// Iter calls fn for every registered contract in registration order, giving
// lint rules (L5) and gates a deterministic iteration order.
func (r *Registry) Iter(fn func(taskType string, contract *types.VerbContract)) {
	for _, taskType := range r.order {
		fn(taskType, r.contracts[taskType])
	}
}

// Len returns the number of registered contracts.
func (r *Registry) Len() int {
	return len(r.contracts)
}
