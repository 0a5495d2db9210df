// Package session carries visualization state across graph rebuilds.
//
// A Session owns the PositionCache that keeps persisting nodes from jumping
// when the graph is rebuilt wholesale: coordinates and velocities of
// non-anchor nodes are snapshotted before the old graph is discarded and
// re-applied to matching ids in the new graph. Anchor nodes are excluded -
// they always receive their deterministic seeded placement from pkg/anchor.
//
// The cache persists for the lifetime of the session and is cleared on
// session reset.
package session

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/matzehuels/starmap/pkg/graph"
)

// fallbackMargin keeps randomized fallback positions away from the viewport
// edges (and the coordinate origin, avoiding pile-ups).
const fallbackMargin = 0.1

// Snapshot is the cached simulation state of one node.
type Snapshot struct {
	X, Y   float64
	VX, VY float64
}

// Session identifies one visualization session and owns its position cache.
type Session struct {
	ID    string
	cache *PositionCache
	rng   *rand.Rand
}

// New creates a session with a fresh id and empty cache.
func New() *Session {
	return &Session{
		ID:    uuid.NewString(),
		cache: NewPositionCache(),
		rng:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// Positions returns the session's position cache.
func (s *Session) Positions() *PositionCache { return s.cache }

// Reset clears the position cache and assigns a new session id.
func (s *Session) Reset() {
	s.ID = uuid.NewString()
	s.cache.Clear()
}

// CarryOver performs the rebuild boundary step in one call: snapshot the old
// graph, then apply cached positions to the new one. Either graph may be nil.
func (s *Session) CarryOver(old, next *graph.Graph, vp graph.Viewport) {
	if old != nil {
		s.cache.Capture(old)
	}
	if next != nil {
		s.cache.Apply(next, vp, s.rng)
	}
}

// PositionCache maps node ids to their last simulated state.
type PositionCache struct {
	entries map[string]Snapshot
}

// NewPositionCache creates an empty cache.
func NewPositionCache() *PositionCache {
	return &PositionCache{entries: make(map[string]Snapshot)}
}

// Capture snapshots (x, y, vx, vy) for every non-anchor node in the graph,
// replacing earlier entries for the same ids.
func (c *PositionCache) Capture(g *graph.Graph) {
	for _, n := range g.Nodes() {
		if n.IsAnchor {
			continue
		}
		c.entries[n.ID] = Snapshot{X: n.X, Y: n.Y, VX: n.VX, VY: n.VY}
	}
}

// Apply restores cached state to matching non-anchor nodes in a freshly
// built graph. Ids without a cache entry receive a position randomized
// within the viewport (never the origin). Anchor nodes are left untouched.
func (c *PositionCache) Apply(g *graph.Graph, vp graph.Viewport, rng *rand.Rand) {
	for _, n := range g.Nodes() {
		if n.IsAnchor {
			continue
		}
		if snap, ok := c.entries[n.ID]; ok {
			n.X, n.Y = snap.X, snap.Y
			n.VX, n.VY = snap.VX, snap.VY
			continue
		}
		n.X = vp.Width * (fallbackMargin + rng.Float64()*(1-2*fallbackMargin))
		n.Y = vp.Height * (fallbackMargin + rng.Float64()*(1-2*fallbackMargin))
		n.VX, n.VY = 0, 0
	}
}

// Lookup returns the cached snapshot for a node id.
func (c *PositionCache) Lookup(id string) (Snapshot, bool) {
	snap, ok := c.entries[id]
	return snap, ok
}

// Len returns the number of cached entries.
func (c *PositionCache) Len() int { return len(c.entries) }

// Clear discards all cached entries.
func (c *PositionCache) Clear() {
	c.entries = make(map[string]Snapshot)
}
