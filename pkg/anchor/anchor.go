// Package anchor injects synthetic gravity-anchor nodes for shared
// attributes into a built graph.
//
// An anchor represents one attribute value (a tag, or a person identity) and
// links to every node whose record carries that value. Anchors act as
// gravitational grouping points in the layout: they exert no repulsion and
// are pinned at a deterministic seeded position, so the same attribute value
// always starts at the same relative spot across rebuilds.
//
// The enhancer is unaware of throttling policy; the Throttle type in this
// package decides disabling separately.
package anchor

import (
	"context"
	"maps"
	"slices"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/observability"
	"github.com/matzehuels/starmap/pkg/record"
)

// NameLookup resolves a person identity to a display name. It is injected
// rather than global so the enhancer stays testable in isolation.
type NameLookup interface {
	DisplayName(identity string) string
}

// identityLookup is the fallback NameLookup that echoes the identity.
type identityLookup struct{}

func (identityLookup) DisplayName(identity string) string { return identity }

// RoleFilter selects which person roles contribute to person anchors.
type RoleFilter struct {
	SignedBy   bool // record authorship
	Referenced bool // person mentions in record attributes
}

// Result is the outcome of one enhancer pass: the anchors added, their ids,
// and the count the throttle evaluates.
type Result struct {
	Kind  graph.AnchorKind
	Infos []graph.AnchorInfo
	IDs   []string
}

// Count returns the number of distinct anchors in the result.
func (r *Result) Count() int { return len(r.IDs) }

// Enhancer injects anchor nodes into graphs. The zero value is not usable;
// construct with NewEnhancer.
type Enhancer struct {
	viewport graph.Viewport
	lookup   NameLookup
}

// NewEnhancer creates an enhancer placing anchors inside the given viewport.
// If lookup is nil, person identities are used as display names directly.
func NewEnhancer(vp graph.Viewport, lookup NameLookup) *Enhancer {
	if lookup == nil {
		lookup = identityLookup{}
	}
	return &Enhancer{viewport: vp, lookup: lookup}
}

// EnhanceTags adds one tag anchor per distinct value of the given attribute
// key, linked to every contributing node. Values are processed in sorted
// order so node insertion order is deterministic.
func (e *Enhancer) EnhanceTags(g *graph.Graph, recs []record.Record, key string) *Result {
	contributors := make(map[string][]string)
	for _, r := range recs {
		if _, ok := g.Node(r.ID); !ok {
			continue
		}
		for _, value := range r.Attrs.Values(key) {
			contributors[value] = appendUnique(contributors[value], r.ID)
		}
	}

	result := &Result{Kind: graph.AnchorTag}
	for _, value := range slices.Sorted(maps.Keys(contributors)) {
		id := graph.TagAnchorID(key, value)
		e.addAnchor(g, id, graph.AnchorTag, value, value, "", contributors[value], result)
	}

	observability.Build().OnAnchorPass(context.Background(), string(graph.AnchorTag), result.Count())
	return result
}

// EnhancePersons adds one person anchor per identity contributing under the
// enabled roles. Links carry a connection type distinguishing authorship
// ("signed-by") from mention ("referenced"); when an identity contributes
// through both, authorship wins for that node's link.
func (e *Enhancer) EnhancePersons(g *graph.Graph, recs []record.Record, roles RoleFilter) *Result {
	contributors := make(map[string][]string)
	connType := make(map[string]map[string]graph.ConnType) // identity -> nodeID -> type

	note := func(identity, nodeID string, ct graph.ConnType) {
		contributors[identity] = appendUnique(contributors[identity], nodeID)
		if connType[identity] == nil {
			connType[identity] = make(map[string]graph.ConnType)
		}
		if connType[identity][nodeID] != graph.ConnSignedBy {
			connType[identity][nodeID] = ct
		}
	}

	for _, r := range recs {
		if _, ok := g.Node(r.ID); !ok {
			continue
		}
		if roles.SignedBy && r.Author != "" {
			note(r.Author, r.ID, graph.ConnSignedBy)
		}
		if roles.Referenced {
			for _, identity := range r.Attrs.Values("mention") {
				note(identity, r.ID, graph.ConnReferenced)
			}
		}
	}

	result := &Result{Kind: graph.AnchorPerson}
	for _, identity := range slices.Sorted(maps.Keys(contributors)) {
		id := graph.PersonAnchorID(identity)
		label := e.lookup.DisplayName(identity)
		e.addAnchorTyped(g, id, graph.AnchorPerson, identity, label, contributors[identity], connType[identity], result)
	}

	observability.Build().OnAnchorPass(context.Background(), string(graph.AnchorPerson), result.Count())
	return result
}

// addAnchor creates the anchor node at its seeded placement, pins it, and
// links every contributor with the given connection type.
func (e *Enhancer) addAnchor(g *graph.Graph, id string, kind graph.AnchorKind, value, label string, ct graph.ConnType, nodeIDs []string, result *Result) {
	typed := make(map[string]graph.ConnType, len(nodeIDs))
	for _, nid := range nodeIDs {
		typed[nid] = ct
	}
	e.addAnchorTyped(g, id, kind, value, label, nodeIDs, typed, result)
}

func (e *Enhancer) addAnchorTyped(g *graph.Graph, id string, kind graph.AnchorKind, value, label string, nodeIDs []string, typed map[string]graph.ConnType, result *Result) {
	if _, exists := g.Node(id); !exists {
		n := &graph.Node{
			ID:         id,
			Kind:       "anchor",
			Level:      graph.AnchorLevel,
			IsAnchor:   true,
			AnchorKind: kind,
			Title:      label,
		}
		x, y := seededPosition(id, e.viewport)
		n.Pin(x, y)
		g.AddNode(n)
	}

	for _, nid := range nodeIDs {
		if !g.HasLink(id, nid) {
			g.AddLink(graph.Link{Source: id, Target: nid, ConnType: typed[nid]})
		}
	}

	result.IDs = append(result.IDs, id)
	result.Infos = append(result.Infos, graph.AnchorInfo{
		Kind:           kind,
		Value:          value,
		Label:          label,
		ConnectedCount: len(nodeIDs),
		Color:          colorFor(id),
	})
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}
