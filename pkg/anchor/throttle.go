package anchor

import (
	"context"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/observability"
)

// DefaultCeiling is the anchor count above which a kind is auto-disabled.
const DefaultCeiling = 20

// Throttle bounds simulation cost by disabling an anchor kind when its count
// exceeds a ceiling. Manual per-anchor disabling is tracked via an explicit
// id set and survives auto-throttle state changes.
//
// Throttle keeps state across rebuilds; use one instance per visualization
// session.
type Throttle struct {
	Ceiling int

	autoDisabled   map[graph.AnchorKind]bool
	manualDisabled map[string]bool
}

// NewThrottle creates a throttle with the given ceiling.
// A ceiling of 0 uses DefaultCeiling.
func NewThrottle(ceiling int) *Throttle {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Throttle{
		Ceiling:        ceiling,
		autoDisabled:   make(map[graph.AnchorKind]bool),
		manualDisabled: make(map[string]bool),
	}
}

// Evaluate updates auto-throttle state after an enhancer pass and reports
// whether the kind is now auto-disabled.
//
// Count above the ceiling trips the throttle (if not already tripped) and
// raises the notice; count at or below the ceiling clears the auto flag
// without re-enabling anchors the user explicitly disabled.
func (t *Throttle) Evaluate(kind graph.AnchorKind, count int) bool {
	ctx := context.Background()
	switch {
	case count > t.Ceiling && !t.autoDisabled[kind]:
		t.autoDisabled[kind] = true
		observability.Throttle().OnThrottleTripped(ctx, string(kind), count, t.Ceiling)
	case count <= t.Ceiling && t.autoDisabled[kind]:
		t.autoDisabled[kind] = false
		observability.Throttle().OnThrottleCleared(ctx, string(kind), count, t.Ceiling)
	}
	return t.autoDisabled[kind]
}

// AutoDisabled reports whether the kind is currently auto-disabled.
func (t *Throttle) AutoDisabled(kind graph.AnchorKind) bool {
	return t.autoDisabled[kind]
}

// Disable marks a single anchor id as user-disabled.
func (t *Throttle) Disable(id string) { t.manualDisabled[id] = true }

// Enable clears the user-disabled mark for an anchor id.
func (t *Throttle) Enable(id string) { delete(t.manualDisabled, id) }

// Disabled reports whether the anchor id is user-disabled.
func (t *Throttle) Disabled(id string) bool { return t.manualDisabled[id] }

// Apply filters disabled anchors out of the graph before a layout pass:
// anchors of auto-disabled kinds and individually disabled ids are removed
// along with their incident links. Non-anchor nodes always pass through.
func (t *Throttle) Apply(g *graph.Graph) *graph.Graph {
	return g.Filter(func(n *graph.Node) bool {
		if !n.IsAnchor {
			return !t.manualDisabled[n.ID]
		}
		if t.autoDisabled[n.AnchorKind] {
			return false
		}
		return !t.manualDisabled[n.ID]
	})
}
