package store

// EnsureEntity upserts an entity by its natural id: repeated calls with the
// same id succeed and converge on the latest props, never creating a
// duplicate row. This is the idempotent semantics entity.register and
// entity.ensure-* verbs require.
func (s *Store) EnsureEntity(entityID, entityType string, props map[string]any) *Entity {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entities[entityID]
	if !exists {
		e = &Entity{EntityID: entityID, EntityType: entityType, Props: map[string]any{}}
		s.entities[entityID] = e
	}
	if entityType != "" {
		e.EntityType = entityType
	}
	for k, v := range props {
		e.Props[k] = v
	}
	return e
}

// GetEntity returns the entity registered under id, if any.
func (s *Store) GetEntity(entityID string) (*Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[entityID]
	return e, ok
}

// EnsureLink upserts a link by linkID (or, when linkID is empty, by the
// natural key from->to-relationshipType), matching entity.link's update
// semantics: a repeat call with the same key refreshes Props in place
// rather than creating a second row.
func (s *Store) EnsureLink(linkID, fromEntity, toEntity, relationshipType string, props map[string]any) *Link {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := linkID
	if key == "" {
		key = fromEntity + "->" + toEntity + "-" + relationshipType
	}

	l, exists := s.links[key]
	if !exists {
		l = &Link{LinkID: key, FromEntity: fromEntity, ToEntity: toEntity, RelationshipType: relationshipType, Props: map[string]any{}}
		s.links[key] = l
	}
	for k, v := range props {
		l.Props[k] = v
	}
	return l
}

// GetLink returns the link registered under id, if any.
func (s *Store) GetLink(linkID string) (*Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.links[linkID]
	return l, ok
}

// LinksFrom returns every link whose FromEntity is entityID.
func (s *Store) LinksFrom(entityID string) []*Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Link
	for _, l := range s.links {
		if l.FromEntity == entityID {
			out = append(out, l)
		}
	}
	return out
}

// LinksTo returns every link whose ToEntity is entityID. For OWNERSHIP
// links (from-entity owns to-entity) this is the set of entityID's direct
// owners, the first step in walking an ownership chain toward its ultimate
// beneficial owners.
func (s *Store) LinksTo(entityID string) []*Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Link
	for _, l := range s.links {
		if l.ToEntity == entityID {
			out = append(out, l)
		}
	}
	return out
}
