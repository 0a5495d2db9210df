package build

import (
	"context"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/observability"
	"github.com/matzehuels/starmap/pkg/record"
)

// Sequential builds a linear hub→chain topology from the batch.
//
// From each root hub, its ordered references become a chain of nodes: the hub
// links to the first child, and consecutive children link to each other with
// IsSequential set. When a child is itself a hub and depth+1 < maxDepth, the
// walk recurses into the child's own references.
//
// Levels follow first-claim-wins semantics: a record reachable from multiple
// hubs at different depths keeps the depth of its first encounter during the
// deterministic left-to-right, depth-first walk of root hubs in input order.
//
// Cycles (hub A references hub B, B references A) are handled by a per-branch
// "currently building" set threaded through the recursion: a repeat becomes a
// plain link without further expansion. A hub already descended into as a
// nested child is not re-descended, so no duplicate chains appear.
func Sequential(ix *record.Index, maxDepth int) (*graph.Graph, Stats) {
	b := &seqBuilder{
		g:         graph.New(),
		ix:        ix,
		maxDepth:  maxDepth,
		descended: make(map[string]bool),
	}

	for _, root := range ix.RootHubs() {
		b.ensure(root, 0)
		b.walk(root, 0, map[string]bool{root.ID: true})
	}

	// Hubs unreachable from any root (reference cycles with no entry point)
	// still get their chains, walked in input order.
	for _, hub := range ix.Hubs() {
		if _, ok := b.g.Node(hub.ID); !ok {
			b.ensure(hub, 0)
			b.walk(hub, 0, map[string]bool{hub.ID: true})
		}
	}

	// Leftover records become isolated nodes, keeping the completeness
	// guarantee: every record id appears exactly once.
	for _, r := range ix.Records() {
		if _, ok := b.g.Node(r.ID); !ok {
			b.ensure(r, 0)
		}
	}

	return b.g, b.stats
}

type seqBuilder struct {
	g        *graph.Graph
	ix       *record.Index
	maxDepth int
	stats    Stats

	// descended marks hubs already expanded as nested children in this
	// build, so a second parent links to them without re-descending.
	descended map[string]bool
}

// ensure adds the record's node at the given level if it doesn't exist yet.
// An existing node keeps its level (first claim wins).
func (b *seqBuilder) ensure(r record.Record, level int) {
	if _, ok := b.g.Node(r.ID); ok {
		return
	}
	b.g.AddNode(newNode(r, level))
}

// walk extends the chain for one hub at the given depth. building is the
// per-branch set of hub ids on the current recursion path.
func (b *seqBuilder) walk(hub record.Record, depth int, building map[string]bool) {
	b.descended[hub.ID] = true

	prev := ""
	for _, ref := range hub.References {
		child, ok := b.ix.Resolve(ref.TargetID)
		if !ok {
			b.stats.SkippedRefs++
			observability.Build().OnSkippedReference(context.Background(), hub.ID, ref.TargetID)
			continue
		}

		b.ensure(child, depth+1)

		if prev == "" {
			b.link(hub.ID, child.ID, graph.ConnHierarchy)
		} else {
			b.link(prev, child.ID, "")
		}
		prev = child.ID

		if child.IsHub() && depth+1 < b.maxDepth && !building[child.ID] && !b.descended[child.ID] {
			building[child.ID] = true
			b.walk(child, depth+1, building)
			delete(building, child.ID)
		}
	}
}

func (b *seqBuilder) link(from, to string, conn graph.ConnType) {
	if b.g.HasLink(from, to) {
		return
	}
	b.g.AddLink(graph.Link{Source: from, Target: to, IsSequential: true, ConnType: conn})
}
