// Command semcored runs the registry and workflow runtime as an MCP server:
// it loads configuration, seeds the lexicon/contracts/templates/workflow
// registries from disk, wires the store and executor, and serves the
// registry.*, dsl.*, workflow.*, and template.* tool surface over stdio or
// Streamable HTTP.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sem-os/semcore/internal/config"
	"github.com/sem-os/semcore/internal/contracts"
	"github.com/sem-os/semcore/internal/domain/document"
	"github.com/sem-os/semcore/internal/domain/ubo"
	"github.com/sem-os/semcore/internal/executor"
	"github.com/sem-os/semcore/internal/executor/enrichment"
	"github.com/sem-os/semcore/internal/lexicon"
	"github.com/sem-os/semcore/internal/mcp"
	"github.com/sem-os/semcore/internal/registry"
	"github.com/sem-os/semcore/internal/scheduler"
	"github.com/sem-os/semcore/internal/store"
	"github.com/sem-os/semcore/internal/templates"
	"github.com/sem-os/semcore/internal/types"
	"github.com/sem-os/semcore/internal/workflow"

	"github.com/sem-os/semcore/internal/content"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	configPath := os.Getenv("SEMCORE_CONFIG")
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded", "transport", cfg.Transport.Mode, "gates_mode", cfg.Gates.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("semcored exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	lex, err := lexicon.NewCompiler(filepath.Dir(cfg.Registry.LexiconDir), logger).Build()
	if err != nil {
		return fmt.Errorf("compiling lexicon: %w", err)
	}
	logger.Info("lexicon compiled", "verb_concepts", len(lex.VerbMeta), "entity_types", len(lex.EntityTypes))

	contractReg := contracts.New()
	if err := contracts.LoadFile(contractReg, filepath.Join(filepath.Dir(cfg.Registry.LexiconDir), "contracts", "contracts.yaml"), logger); err != nil {
		return fmt.Errorf("loading contracts: %w", err)
	}
	if cfg.Registry.KnownInputsFile != "" {
		if err := contracts.LoadKnownInputsFile(contractReg, cfg.Registry.KnownInputsFile, logger); err != nil {
			return fmt.Errorf("loading known workflow inputs: %w", err)
		}
	}

	templateReg := templates.NewRegistry()
	if err := templates.LoadDir(cfg.Registry.TemplatesDir, templateReg, logger); err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	logger.Info("templates loaded", "count", templateReg.Len())

	workflowDefs, err := workflow.LoadDefinitionsDir(cfg.Registry.WorkflowsDir, logger)
	if err != nil {
		return fmt.Errorf("loading workflow definitions: %w", err)
	}
	logger.Info("workflow definitions loaded", "count", len(workflowDefs))

	st := store.New()
	execReg := executor.NewRegistry()
	docs := executor.RegisterCoreVerbs(execReg, st)

	if cfg.Enrichment.SourceURL != "" {
		source := enrichment.NewHTTPSource(cfg.Enrichment.SourceURL, cfg.Enrichment.Token)
		resolver, err := enrichment.NewResolver(
			source, cfg.Enrichment.CacheSize, cfg.Enrichment.RatePerSecond, cfg.Enrichment.Burst,
		)
		if err != nil {
			return fmt.Errorf("building enrichment resolver: %w", err)
		}
		enrichment.Register(execReg, resolver, source, st)
		logger.Info("enrichment chain wired", "source_url", cfg.Enrichment.SourceURL)
	}

	exec := executor.New(execReg).WithProgramSource(st)

	wfEngine := workflow.NewEngine(workflowDefs, workflow.NewMemoryStore(), logger)
	wfEngine.RegisterBlockerFunc("kyc_onboarding", kycOnboardingBlockers(st, docs))

	policy := newReviewPolicy()
	reg := registry.New(st, types.GateMode(cfg.Gates.Mode), policy)

	sweep := scheduler.NewReviewCycleSweep(logger, st, policy.cadence, policy.reviewed)
	if err := sweep.Schedule(cfg.Gates.ReviewCycleCron); err != nil {
		return fmt.Errorf("scheduling review cycle sweep: %w", err)
	}
	sweep.Start()
	defer sweep.Stop()

	mcpRegistry := mcp.NewRegistry()
	registerTools(mcpRegistry, &deps{
		store:        st,
		exec:         exec,
		registry:     reg,
		engine:       wfEngine,
		templates:    templateReg,
		contracts:    contractReg,
		reviewPolicy: policy,
	})
	mcpRegistry.RegisterPrompt(&content.AuthorRemediationPrompt{})
	mcpRegistry.RegisterPrompt(&content.OnboardEntityPrompt{})
	mcpRegistry.RegisterResource(&content.EntityModelResource{})
	mcpRegistry.RegisterResource(&content.GatesResource{})
	mcpRegistry.RegisterResource(&content.ToolReferenceResource{})

	info := mcp.ServerInfo{Name: cfg.Server.Name, Version: cfg.Server.Version}
	server := mcp.NewServer(mcpRegistry, info, logger)

	switch cfg.Transport.Mode {
	case "stdio":
		return server.Run(ctx)
	case "http":
		httpServer := mcp.NewHTTPServer(server, cfg.Transport.CORSOrigins, logger)
		addr := cfg.Transport.Host + ":" + cfg.Transport.Port
		srv := &http.Server{Addr: addr, Handler: httpServer.Handler()}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.ListenAndServe() }()
		logger.Info("listening", "addr", addr)

		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		}
	default:
		return fmt.Errorf("unsupported transport mode %q", cfg.Transport.Mode)
	}
}

// kycOnboardingBlockers is the kyc_onboarding workflow's state-specific
// blocker predicate (SPEC_FULL.md §4.6's "incomplete ownership" example):
// for every entity holding a role under the instance's CBU, it walks the
// ownership graph via internal/domain/ubo and reports an
// incomplete_ownership blocker for any entity whose direct owners aren't
// fully recorded, then checks each recorded OWNERSHIP link against docs'
// usage history and reports a missing_evidence blocker for any link with no
// document recorded against it.
func kycOnboardingBlockers(st *store.Store, docs *document.Service) workflow.BlockerFunc {
	return func(inst *workflow.Instance, _ map[string]any) []workflow.Blocker {
		if inst.SubjectType != "cbu" {
			return nil
		}
		cbu, ok := st.GetCBU(inst.SubjectID)
		if !ok {
			return nil
		}

		var blockers []workflow.Blocker
		for _, role := range cbu.Roles {
			if !ubo.IsOwnershipComplete(st, role.EntityID) {
				blockers = append(blockers, workflow.Blocker{
					Kind:    "incomplete_ownership",
					Context: map[string]any{"entity_id": role.EntityID, "role": role.Role},
				})
			}

			for _, link := range st.LinksTo(role.EntityID) {
				if link.RelationshipType != "OWNERSHIP" {
					continue
				}
				if len(docs.EvidenceDocuments(link.LinkID)) == 0 {
					blockers = append(blockers, workflow.Blocker{
						Kind:    "missing_evidence",
						Context: map[string]any{"entity_id": role.EntityID, "link_id": link.LinkID},
					})
				}
			}
		}
		return blockers
	}
}

// reviewPolicy is the in-memory registry.ReviewPolicy backing both
// registry.Publish's G5 check and the scheduler's periodic sweep, sharing
// the same cadence/reviewed maps so a publish-time review and a sweep-time
// review agree on what counts as overdue.
type reviewPolicy struct {
	cadence  map[string]time.Duration
	reviewed map[string]time.Time
}

func newReviewPolicy() *reviewPolicy {
	return &reviewPolicy{cadence: map[string]time.Duration{}, reviewed: map[string]time.Time{}}
}

func (p *reviewPolicy) Cadence(fqn string) (time.Duration, bool) {
	d, ok := p.cadence[fqn]
	return d, ok
}

func (p *reviewPolicy) LastReviewed(fqn string) (time.Time, bool) {
	t, ok := p.reviewed[fqn]
	return t, ok
}
