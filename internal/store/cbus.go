package store

// RoleAssignment binds an entity to a named role within a CBU (e.g.
// ASSET_OWNER, INVESTMENT_MANAGER, ULTIMATE_CLIENT).
type RoleAssignment struct {
	EntityID string
	Role     string
}

// CBU is a Client Business Unit: the top-level subject aggregating
// entities, roles, documents, and workflows for an onboarding.
type CBU struct {
	CBUID        string
	Name         string
	Jurisdiction string
	ClientType   string
	Roles        []RoleAssignment
}

// EnsureCBU upserts a CBU, deduplicated by name: a repeated call with the
// same name returns the existing row rather than creating a second one,
// matching cbu.ensure's idempotent-by-name contract.
func (s *Store) EnsureCBU(name, jurisdiction, clientType string) *CBU {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cbus {
		if c.Name == name {
			if jurisdiction != "" {
				c.Jurisdiction = jurisdiction
			}
			if clientType != "" {
				c.ClientType = clientType
			}
			return c
		}
	}
	c := &CBU{CBUID: name, Name: name, Jurisdiction: jurisdiction, ClientType: clientType}
	s.cbus[c.CBUID] = c
	return c
}

// GetCBU returns the CBU registered under id, if any.
func (s *Store) GetCBU(cbuID string) (*CBU, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cbus[cbuID]
	return c, ok
}

// AssignRole idempotently assigns entityID to role within cbuID: a repeat
// call with the same (entityID, role) pair is a no-op success rather than
// a duplicate assignment, matching cbu.assign-role's documented semantics.
func (s *Store) AssignRole(cbuID, entityID, role string) (*CBU, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cbus[cbuID]
	if !ok {
		return nil, ErrCBUNotFound
	}
	for _, r := range c.Roles {
		if r.EntityID == entityID && r.Role == role {
			return c, nil
		}
	}
	c.Roles = append(c.Roles, RoleAssignment{EntityID: entityID, Role: role})
	return c, nil
}
