// Package document tracks how a cataloged document is used across a case's
// lifecycle: which workflow stage consumed it, what purpose it served, and
// whether it stands as evidence for a particular entity link or attribute.
// Grounded on original_source/rust/src/services/document_service.rs's
// document_usage and document_relationships tables, narrowed to the subset
// SPEC_FULL.md's evidence-of-link supplement actually needs — usage history
// and an evidence lookup, not the full ISO-asset-type/investment-mandate
// CRUD surface the Rust service also carries for the trading-profile side
// of that system.
package document

import (
	"fmt"
	"sync"
	"time"

	"github.com/sem-os/semcore/internal/store"
)

// Usage is one record of a cataloged document being consumed for a purpose.
type Usage struct {
	DocumentID      string
	UsageType       string // e.g. "EVIDENCE", "GENERAL"
	CBUID           string
	UsedByProcess   string
	BusinessPurpose string
	EvidenceOfLink  string // non-empty when this usage backs an entity.link
	RecordedAt      time.Time
}

// Service records document usage against the document catalog held in st.
// It keeps its own append-only usage history rather than storing it on
// store.Document directly, mirroring the Rust service's separate
// document_usage table.
type Service struct {
	mu    sync.RWMutex
	store *store.Store
	usage map[string][]*Usage // document_id -> usage history, oldest first
}

// NewService returns a Service backed by st.
func NewService(st *store.Store) *Service {
	return &Service{store: st, usage: map[string][]*Usage{}}
}

// RecordUsage appends a usage record for documentID, failing if the
// document has not been cataloged first (document.catalog must run before
// document.use, matching the executor's own check).
func (s *Service) RecordUsage(documentID, usageType, cbuID, usedByProcess, businessPurpose, evidenceOfLink string) (*Usage, error) {
	if _, found := s.store.GetDocument(documentID); !found {
		return nil, fmt.Errorf("document %q is not cataloged", documentID)
	}

	u := &Usage{
		DocumentID:      documentID,
		UsageType:       usageType,
		CBUID:           cbuID,
		UsedByProcess:   usedByProcess,
		BusinessPurpose: businessPurpose,
		EvidenceOfLink:  evidenceOfLink,
		RecordedAt:      time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage[documentID] = append(s.usage[documentID], u)
	return u, nil
}

// History returns documentID's usage records, oldest first.
func (s *Service) History(documentID string) []*Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Usage(nil), s.usage[documentID]...)
}

// IsEvidenceFor reports whether any recorded usage of documentID names
// linkID as the entity.link it backs. cmd/semcored's kyc_onboarding blocker
// predicate consults this (via EvidenceDocuments) to decide whether an
// OWNERSHIP link's evidence requirement is actually satisfied, rather than
// merely asserted.
func (s *Service) IsEvidenceFor(documentID, linkID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.usage[documentID] {
		if u.EvidenceOfLink == linkID {
			return true
		}
	}
	return false
}

// EvidenceDocuments returns every document id recorded as evidence for
// linkID, across all cataloged documents.
func (s *Service) EvidenceDocuments(linkID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for documentID, records := range s.usage {
		for _, u := range records {
			if u.EvidenceOfLink == linkID {
				out = append(out, documentID)
				break
			}
		}
	}
	return out
}
