// Package build constructs node-link graphs from indexed record batches.
//
// Two topologies are supported:
//
//   - Sequential: each root hub becomes the head of a linear chain following
//     its ordered references, recursing into nested hubs up to a depth limit.
//   - Star: each hub becomes the center of a hub-and-spoke star, with
//     inter-star links between centers and degenerate single-node stars for
//     unreferenced records.
//
// Both builders guarantee completeness: every record id in the batch appears
// as exactly one node in the output graph. References whose target is absent
// from the batch are skipped and counted, never fatal.
package build

import (
	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/record"
)

// Stats carries diagnostics from one build pass.
type Stats struct {
	// SkippedRefs counts references whose target record was absent from
	// the batch.
	SkippedRefs int
}

// newNode creates the simulation node for a record at the given hierarchy
// level. Position stays at the zero value here; pkg/session assigns starting
// coordinates after the build.
func newNode(r record.Record, level int) *graph.Node {
	return &graph.Node{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Level:       level,
		IsContainer: r.IsHub(),
		Title:       nodeTitle(r),
	}
}

// nodeTitle picks a display title: the first "title" attribute value if
// present, otherwise the record id.
func nodeTitle(r record.Record) string {
	if vals := r.Attrs.Values("title"); len(vals) > 0 {
		return vals[0]
	}
	return r.ID
}
