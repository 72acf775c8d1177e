package enrichment

import (
	"context"
	"strings"
)

// stubSource is an in-memory Source for tests, grounded on the three
// lookup strategies gleif_ops.rs exercises against the real registry.
type stubSource struct {
	byIdentifier map[string]Record
	byName       map[string]Record
	all          []Record
	calls        int
}

func newStubSource(records ...Record) *stubSource {
	s := &stubSource{byIdentifier: map[string]Record{}, byName: map[string]Record{}}
	for _, r := range records {
		s.byIdentifier[r.Identifier] = r
		s.byName[r.Name] = r
		s.all = append(s.all, r)
	}
	return s
}

func (s *stubSource) ByIdentifier(_ context.Context, identifier string) (Record, bool, error) {
	s.calls++
	rec, ok := s.byIdentifier[identifier]
	return rec, ok, nil
}

func (s *stubSource) ByName(_ context.Context, name string) (Record, bool, error) {
	s.calls++
	rec, ok := s.byName[name]
	return rec, ok, nil
}

func (s *stubSource) ByNamePrefix(_ context.Context, prefix string, limit int) ([]Record, error) {
	s.calls++
	var out []Record
	for _, r := range s.all {
		if strings.HasPrefix(strings.ToLower(r.Name), strings.ToLower(prefix)) {
			out = append(out, r)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}
