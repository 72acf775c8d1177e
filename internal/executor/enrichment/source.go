// Package enrichment implements the GLEIF-style external-enrichment verb
// family: corporate-identifier lookups that consult an external registry,
// cache results, rate-limit the external call, and fall back through
// progressively looser search strategies before giving up with an empty
// (not erroring) result.
package enrichment

import "context"

// Record is a discovered corporate entity, the common shape returned by
// every lookup strategy regardless of how it was found.
type Record struct {
	Identifier   string
	Name         string
	Jurisdiction string
	Category     string
	ParentID     string
}

// Source is the external registry a Resolver consults. Production code backs
// it with an HTTP client against the real corporate-identifier registry;
// tests substitute an in-memory stub.
type Source interface {
	// ByIdentifier looks up a record by its exact external identifier
	// (e.g. an LEI). ok is false, with a nil error, when nothing matches.
	ByIdentifier(ctx context.Context, identifier string) (rec Record, ok bool, err error)
	// ByName looks up a record by exact legal name.
	ByName(ctx context.Context, name string) (rec Record, ok bool, err error)
	// ByNamePrefix searches for records whose name starts with prefix,
	// the loosest of the three strategies.
	ByNamePrefix(ctx context.Context, prefix string, limit int) ([]Record, error)
}
