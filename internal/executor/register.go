package executor

import (
	"github.com/sem-os/semcore/internal/derivation"
	"github.com/sem-os/semcore/internal/domain/document"
	"github.com/sem-os/semcore/internal/store"
)

// RegisterCoreVerbs wires the executor's built-in verb family — entity,
// document, case, cbu, and derivation operations — into reg against st. The
// returned *document.Service is the usage/evidence history backing
// document.use; callers that need to query evidence linkage directly (such
// as cmd/semcored's kyc_onboarding blocker predicate) hold onto it rather
// than re-deriving it.
// Callers that need the GLEIF-style enrichment family additionally call
// enrichment.Register (internal/executor/enrichment).
func RegisterCoreVerbs(reg *Registry, st *store.Store) *document.Service {
	docs := document.NewService(st)

	reg.Register(EntityRegisterVerb{Store: st})
	reg.Register(EntityEnsureLimitedCompanyVerb{Store: st})
	reg.Register(EntityLinkVerb{Store: st})
	reg.Register(DocumentCatalogVerb{Store: st})
	reg.Register(DocumentUseVerb{Documents: docs})
	reg.Register(CaseCreateVerb{Store: st})
	reg.Register(CaseUpdateVerb{Store: st})
	reg.Register(CBUEnsureVerb{Store: st})
	reg.Register(CBUAssignRoleVerb{Store: st})
	reg.Register(DerivationRecomputeVerb{Evaluator: derivation.NewEvaluator()})

	return docs
}
