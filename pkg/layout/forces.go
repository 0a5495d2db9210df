package layout

import (
	"math"

	"github.com/matzehuels/starmap/pkg/graph"
)

// Force is one pure force contribution: given a node and the tick context it
// returns a velocity delta. Contributions from all forces are summed before
// the single velocity update, so evaluation order never matters.
type Force func(n *graph.Node, ctx *Context) (dvx, dvy float64)

// Context carries the per-tick state shared by all forces. It is rebuilt
// whenever the engine is handed a new graph.
type Context struct {
	Graph    *graph.Graph
	Config   Config
	Viewport graph.Viewport
	Alpha    float64
	StarMode bool

	// Precomputed views over the graph.
	nodes     []*graph.Node
	neighbors map[string][]*graph.Node // connected non-anchor neighbors
	anchors   map[string][]*graph.Node // connected anchor nodes
	incident  map[string][]spring      // resolved springs per node
	owner     map[string]*graph.Node   // star mode: spoke -> owning center
}

// spring is one resolved link endpoint pair with its rest length.
type spring struct {
	other *graph.Node
	rest  float64
}

// newContext resolves adjacency once per graph so per-tick force evaluation
// stays allocation-free.
func newContext(g *graph.Graph, cfg Config, vp graph.Viewport, starMode bool) *Context {
	ctx := &Context{
		Graph:     g,
		Config:    cfg,
		Viewport:  vp,
		StarMode:  starMode,
		nodes:     g.Nodes(),
		neighbors: make(map[string][]*graph.Node),
		anchors:   make(map[string][]*graph.Node),
		incident:  make(map[string][]spring),
		owner:     make(map[string]*graph.Node),
	}

	for _, l := range g.Links() {
		src, okS := g.Node(l.Source)
		dst, okT := g.Node(l.Target)
		if !okS || !okT {
			continue
		}

		for _, pair := range [2][2]*graph.Node{{src, dst}, {dst, src}} {
			n, m := pair[0], pair[1]
			if m.IsAnchor {
				ctx.anchors[n.ID] = append(ctx.anchors[n.ID], m)
				continue
			}
			if !n.IsAnchor {
				ctx.neighbors[n.ID] = append(ctx.neighbors[n.ID], m)
				ctx.incident[n.ID] = append(ctx.incident[n.ID], spring{other: m, rest: restLength(cfg, n, m)})
			}
			// A spoke's owning center is the first linked container.
			if starMode && !n.IsContainer && !n.IsAnchor && m.IsContainer {
				if _, claimed := ctx.owner[n.ID]; !claimed {
					ctx.owner[n.ID] = m
				}
			}
		}
	}

	return ctx
}

// restLength picks the spring rest length from the link's role:
// short for center–spoke, long for center–center, default otherwise.
func restLength(cfg Config, a, b *graph.Node) float64 {
	switch {
	case a.IsContainer && b.IsContainer:
		return cfg.HubDistance
	case a.IsContainer || b.IsContainer:
		return cfg.SpokeDistance
	default:
		return cfg.LinkDistance
	}
}

// Forces returns the force list for the configured mode, in a fixed order.
// Order is documentation only - contributions are summed.
func Forces(starMode bool) []Force {
	forces := []Force{
		Repulsion,
		LinkSpring,
		CenterGravity,
		Cohesion,
		AnchorGravity,
	}
	if starMode {
		forces = append(forces, RadialContainment)
	}
	return forces
}

// Repulsion pushes every node pair apart, scaled by the counterpart's role:
// centers repel more strongly than leaves, anchors exert none. Coincident
// nodes contribute zero rather than dividing by zero.
func Repulsion(n *graph.Node, ctx *Context) (float64, float64) {
	if n.IsAnchor {
		return 0, 0
	}
	var dvx, dvy float64
	for _, m := range ctx.nodes {
		if m == n || m.IsAnchor {
			continue
		}
		dx, dy := n.X-m.X, n.Y-m.Y
		distSq := dx*dx + dy*dy
		if distSq == 0 {
			continue // divergence guard
		}
		strength := ctx.Config.Repulsion
		if m.IsContainer {
			strength *= ctx.Config.ContainerFactor
		}
		f := strength * ctx.Alpha / distSq
		dvx += dx * f
		dvy += dy * f
	}
	return dvx, dvy
}

// LinkSpring pulls linked nodes toward their role-dependent rest length.
// Anchor links are handled by AnchorGravity, not here.
func LinkSpring(n *graph.Node, ctx *Context) (float64, float64) {
	var dvx, dvy float64
	for _, s := range ctx.incident[n.ID] {
		dx, dy := s.other.X-n.X, s.other.Y-n.Y
		dist := math.Hypot(dx, dy)
		if dist == 0 {
			continue
		}
		f := ctx.Config.LinkStrength * (dist - s.rest) * ctx.Alpha / dist
		dvx += dx * f
		dvy += dy * f
	}
	return dvx, dvy
}

// CenterGravity pulls every node toward the visual center with a magnitude
// proportional to log(distance), so outliers are reined in without runaway
// correction near the center.
func CenterGravity(n *graph.Node, ctx *Context) (float64, float64) {
	dx, dy := ctx.Viewport.CenterX()-n.X, ctx.Viewport.CenterY()-n.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0, 0
	}
	f := ctx.Config.CenterGravity * math.Log1p(dist) * ctx.Alpha / dist
	return dx * f, dy * f
}

// Cohesion pulls a node toward the centroid of its directly connected
// non-anchor neighbors, producing readable clusters.
func Cohesion(n *graph.Node, ctx *Context) (float64, float64) {
	neighbors := ctx.neighbors[n.ID]
	if len(neighbors) == 0 {
		return 0, 0
	}
	var cx, cy float64
	for _, m := range neighbors {
		cx += m.X
		cy += m.Y
	}
	cx /= float64(len(neighbors))
	cy /= float64(len(neighbors))
	return (cx - n.X) * ctx.Config.Cohesion * ctx.Alpha, (cy - n.Y) * ctx.Config.Cohesion * ctx.Alpha
}

// AnchorGravity applies a mild pull toward every connected anchor,
// normalized by the node's anchor count so heavily tagged nodes aren't
// overwhelmed.
func AnchorGravity(n *graph.Node, ctx *Context) (float64, float64) {
	anchors := ctx.anchors[n.ID]
	if len(anchors) == 0 {
		return 0, 0
	}
	strength := ctx.Config.AnchorGravity * ctx.Alpha / float64(len(anchors))
	var dvx, dvy float64
	for _, a := range anchors {
		dx, dy := a.X-n.X, a.Y-n.Y
		if dx == 0 && dy == 0 {
			continue
		}
		dvx += dx * strength
		dvy += dy * strength
	}
	return dvx, dvy
}

// RadialContainment (star mode only) pulls a spoke toward a fixed target
// distance from its owning center.
func RadialContainment(n *graph.Node, ctx *Context) (float64, float64) {
	center, ok := ctx.owner[n.ID]
	if !ok {
		return 0, 0
	}
	dx, dy := n.X-center.X, n.Y-center.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return 0, 0
	}
	f := ctx.Config.RadialStrength * (ctx.Config.RadialDistance - dist) * ctx.Alpha / dist
	return dx * f, dy * f
}
