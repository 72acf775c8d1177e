// Package ubo computes beneficial-ownership chains over the entity.link
// OWNERSHIP graph: it walks from a subject entity up through its owners,
// compounding percentages across multi-hop chains, and reports which
// terminal owners clear a reporting threshold.
package ubo

import (
	"sort"

	"github.com/sem-os/semcore/internal/store"
)

// DefaultThresholdPercent is the beneficial-ownership reporting threshold
// used when a caller doesn't specify one (25%, the common FATF/FinCEN UBO
// cutoff the source domain handler defaults to).
const DefaultThresholdPercent = 25.0

// defaultMaxDepth bounds the upward walk so a malformed or cyclic
// ownership graph cannot loop forever.
const defaultMaxDepth = 10

// Owner is a terminal or intermediate beneficial owner discovered while
// walking the ownership graph, with its compounded effective percentage of
// the subject entity.
type Owner struct {
	EntityID            string
	EffectivePercentage float64
	Depth               int
	Path                []string // subject -> ... -> this owner, entity ids
}

// EffectiveOwnership walks every OWNERSHIP-typed link upward from subject,
// compounding percentages along each path (multiplying hop percentages,
// summing across distinct paths that reach the same ultimate owner), and
// returns the effective percentage attributed to every entity reached.
// Entities with no further incoming OWNERSHIP links are terminal owners.
func EffectiveOwnership(st *store.Store, subjectEntityID string, maxDepth int) map[string]*Owner {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	acc := map[string]*Owner{}
	walk(st, subjectEntityID, 1.0, 1, maxDepth, []string{subjectEntityID}, acc)
	return acc
}

func walk(st *store.Store, entityID string, weight float64, depth, maxDepth int, path []string, acc map[string]*Owner) {
	if depth > maxDepth {
		return
	}
	owners := st.LinksTo(entityID)
	var ownershipLinks []*store.Link
	for _, l := range owners {
		if l.RelationshipType == "OWNERSHIP" {
			ownershipLinks = append(ownershipLinks, l)
		}
	}

	for _, l := range ownershipLinks {
		pct := ownershipPercentage(l)
		if pct <= 0 {
			continue
		}
		hopWeight := weight * (pct / 100.0)
		nextPath := append(append([]string{}, path...), l.FromEntity)

		if o, exists := acc[l.FromEntity]; exists {
			o.EffectivePercentage += hopWeight * 100.0
			if depth < o.Depth {
				o.Depth = depth
				o.Path = nextPath
			}
		} else {
			acc[l.FromEntity] = &Owner{
				EntityID:            l.FromEntity,
				EffectivePercentage: hopWeight * 100.0,
				Depth:               depth,
				Path:                nextPath,
			}
		}

		walk(st, l.FromEntity, hopWeight, depth+1, maxDepth, nextPath, acc)
	}
}

func ownershipPercentage(l *store.Link) float64 {
	v, ok := l.Props["ownership-percentage"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// IdentifyUBOs returns every owner in the effective-ownership graph whose
// compounded percentage meets or exceeds thresholdPercent, sorted by
// descending percentage then entity id for deterministic output.
func IdentifyUBOs(st *store.Store, subjectEntityID string, thresholdPercent float64, maxDepth int) []*Owner {
	if thresholdPercent <= 0 {
		thresholdPercent = DefaultThresholdPercent
	}
	acc := EffectiveOwnership(st, subjectEntityID, maxDepth)

	out := make([]*Owner, 0, len(acc))
	for _, o := range acc {
		if o.EffectivePercentage >= thresholdPercent {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EffectivePercentage != out[j].EffectivePercentage {
			return out[i].EffectivePercentage > out[j].EffectivePercentage
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out
}

// IsOwnershipComplete reports whether subjectEntityID has at least one
// direct OWNERSHIP link and the direct ownership percentages (a link with no
// recorded percentage counts as 0) sum to more than 0 and at most 100 — the
// "incomplete ownership" workflow blocker condition.
func IsOwnershipComplete(st *store.Store, subjectEntityID string) bool {
	links := st.LinksTo(subjectEntityID)
	total := 0.0
	count := 0
	for _, l := range links {
		if l.RelationshipType != "OWNERSHIP" {
			continue
		}
		count++
		total += ownershipPercentage(l)
	}
	if count == 0 {
		return false
	}
	return total > 0 && total <= 100.0001
}
