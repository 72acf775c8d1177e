// Package store implements the persistent state the executor mutates:
// entities, documents, cases, ownership links, and published snapshots. The
// in-memory implementation here stands in for a transactional backing store
// — every mutation method takes the full read-modify-write lock for the
// call's duration, mirroring "operations against the store execute in
// program order" within a single verb call.
package store

import (
	"context"
	"sync"

	"github.com/sem-os/semcore/internal/types"
)

// contextKey is an unexported type for context keys in this package,
// following the same actor-in-context convention used to carry request
// identity through verb execution.
type contextKey struct{}

var actorKey = contextKey{}

// WithActor returns a context carrying the identity of whoever is driving
// the current verb execution, for audit attribution.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom extracts the actor identity from ctx, or "" if none was set.
func ActorFrom(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey).(string); ok {
		return v
	}
	return ""
}

// Entity is a registered party: a company, person, fund, or other
// onboarding subject.
type Entity struct {
	EntityID   string
	EntityType string
	Props      map[string]any
}

// Document is a cataloged piece of evidence.
type Document struct {
	DocumentID   string
	DocumentType string
	FileHash     string
}

// Link is an ownership or control relationship between two entities.
type Link struct {
	LinkID           string
	FromEntity       string
	ToEntity         string
	RelationshipType string
	Props            map[string]any
}

// Case is a KYC/UBO/compliance case under investigation.
type Case struct {
	CaseID   string
	CaseType string
	Notes    []string
}

// Store holds all entity/document/case/link/snapshot state for one
// deployment. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	entities  map[string]*Entity
	documents map[string]*Document
	links     map[string]*Link
	cases     map[string]*Case
	cbus      map[string]*CBU
	snapshots map[string][]*types.Snapshot // keyed by object_type + ":" + object_id, newest last
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		entities:  map[string]*Entity{},
		documents: map[string]*Document{},
		links:     map[string]*Link{},
		cases:     map[string]*Case{},
		cbus:      map[string]*CBU{},
		snapshots: map[string][]*types.Snapshot{},
	}
}
