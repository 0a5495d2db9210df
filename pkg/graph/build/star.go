package build

import (
	"context"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/observability"
	"github.com/matzehuels/starmap/pkg/record"
)

// Star builds a hub-and-spoke topology from the batch.
//
// Every hub record becomes a center node, and every record it directly
// references becomes a spoke linked to that center. A second pass adds
// inter-star links: center A links to center B whenever A's spokes include B
// and B is itself a center. Records that are neither hubs nor referenced by
// any hub become degenerate single-node stars, so every record id appears in
// the output exactly once.
func Star(ix *record.Index) (*graph.Graph, Stats) {
	g := graph.New()
	var stats Stats

	hubs := ix.Hubs()

	// Centers first so a hub referenced as a spoke keeps level 0.
	for _, hub := range hubs {
		if _, ok := g.Node(hub.ID); !ok {
			g.AddNode(newNode(hub, 0))
		}
	}

	// Spoke pass: link each center to its resolvable references. Links to
	// fellow centers are deferred to the inter-star pass below.
	for _, hub := range hubs {
		for _, ref := range hub.References {
			spoke, ok := ix.Resolve(ref.TargetID)
			if !ok {
				stats.SkippedRefs++
				observability.Build().OnSkippedReference(context.Background(), hub.ID, ref.TargetID)
				continue
			}
			if _, exists := g.Node(spoke.ID); !exists {
				g.AddNode(newNode(spoke, 1))
			}
			if spoke.IsHub() {
				continue
			}
			if !g.HasLink(hub.ID, spoke.ID) {
				g.AddLink(graph.Link{Source: hub.ID, Target: spoke.ID, ConnType: graph.ConnHierarchy})
			}
		}
	}

	// Inter-star pass: center→center links for hub references.
	for _, hub := range hubs {
		for _, ref := range hub.References {
			spoke, ok := ix.Resolve(ref.TargetID)
			if !ok || !spoke.IsHub() {
				continue
			}
			if !g.HasLink(hub.ID, spoke.ID) {
				g.AddLink(graph.Link{Source: hub.ID, Target: spoke.ID, ConnType: graph.ConnHierarchy})
			}
		}
	}

	// Degenerate single-node stars for everything left over.
	for _, r := range ix.Records() {
		if _, ok := g.Node(r.ID); !ok {
			g.AddNode(newNode(r, 0))
		}
	}

	return g, stats
}
