package layout

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/observability"
)

// State is the engine lifecycle state.
type State int

// Engine states. The engine never "completes": Cooled layouts are reheated
// periodically and on rebuild or drag.
const (
	Idle State = iota
	Running
	Cooled
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Cooled:
		return "cooled"
	default:
		return "idle"
	}
}

// Engine is the iterative force solver. It is driven cooperatively: the
// consumer calls Tick once per frame on its own execution context; nothing
// runs in the background. Not safe for concurrent use.
type Engine struct {
	cfg    Config
	logger *log.Logger

	g      *graph.Graph
	ctx    *Context
	forces []Force

	state      State
	alpha      float64
	tick       int
	cooledOnce bool
	onCooled   func()

	// scratch buffers reused across ticks
	dvx, dvy []float64
}

// NewEngine creates an engine with the given physics config.
// If logger is nil, log.Default() is used.
func NewEngine(cfg Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Start hands the engine a freshly built graph and reheats to full alpha.
// Any previous graph is dropped; the caller must not tick the old graph's
// engine afterwards. starMode enables the radial containment force.
func (e *Engine) Start(g *graph.Graph, vp graph.Viewport, starMode bool) {
	e.g = g
	e.ctx = newContext(g, e.cfg, vp, starMode)
	e.forces = Forces(starMode)
	e.alpha = 1.0
	e.tick = 0
	e.state = Running
	e.cooledOnce = false
	e.dvx = make([]float64, len(e.ctx.nodes))
	e.dvy = make([]float64, len(e.ctx.nodes))

	e.logger.Debug("simulation started",
		"nodes", g.NodeCount(),
		"links", g.LinkCount(),
		"star_mode", starMode)
}

// Stop idles the engine. Call before discarding a superseded graph so two
// simulations never run against stale node arrays.
func (e *Engine) Stop() {
	e.state = Idle
	e.g = nil
	e.ctx = nil
}

// OnCooled registers a one-time callback fired when alpha first crosses the
// floor, typically used by the caller for a single re-centering action.
func (e *Engine) OnCooled(fn func()) { e.onCooled = fn }

// State returns the current lifecycle state.
func (e *Engine) State() State { return e.state }

// Alpha returns the current simulation energy.
func (e *Engine) Alpha() float64 { return e.alpha }

// TickCount returns the number of ticks since the last Start.
func (e *Engine) TickCount() int { return e.tick }

// Reheat bumps alpha back up and resumes cooling, used after drag or
// filter changes that don't rebuild the graph.
func (e *Engine) Reheat() {
	if e.state == Idle {
		return
	}
	if e.alpha < e.cfg.AlphaReheat {
		e.alpha = e.cfg.AlphaReheat
	}
	e.state = Running
}

// Tick advances the simulation by one step: all force contributions are
// summed per node, then a single velocity update integrates positions.
// Pinned nodes are excluded from integration but still influence neighbors.
func (e *Engine) Tick() {
	if e.state == Idle || e.g == nil || e.g.IsEmpty() {
		return
	}

	e.tick++
	e.ctx.Alpha = e.alpha
	nodes := e.ctx.nodes

	for i, n := range nodes {
		e.dvx[i], e.dvy[i] = 0, 0
		if n.Pinned() {
			continue
		}
		for _, force := range e.forces {
			dx, dy := force(n, e.ctx)
			e.dvx[i] += dx
			e.dvy[i] += dy
		}
	}

	friction := 1 - e.cfg.VelocityDecay
	for i, n := range nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX = (n.VX + e.dvx[i]) * friction
		n.VY = (n.VY + e.dvy[i]) * friction
		n.X += n.VX
		n.Y += n.VY
	}

	e.cool()
	observability.Simulation().OnTick(context.Background(), e.tick, e.alpha)
}

// cool advances the alpha schedule: exponential decay to the floor, a
// one-time cooled callback at the first floor crossing, and a periodic
// reheat so pinned anchors can't freeze an unconverged layout forever.
func (e *Engine) cool() {
	if e.state == Running {
		e.alpha *= 1 - e.cfg.AlphaDecay
		if e.alpha <= e.cfg.AlphaMin {
			e.alpha = e.cfg.AlphaMin
			e.state = Cooled
			observability.Simulation().OnCooled(context.Background(), e.tick)
			if !e.cooledOnce {
				e.cooledOnce = true
				if e.onCooled != nil {
					e.onCooled()
				}
			}
			e.logger.Debug("simulation cooled", "tick", e.tick)
		}
		return
	}

	if e.state == Cooled && e.tick%e.cfg.ReheatInterval == 0 {
		e.alpha = e.cfg.AlphaReheat
		e.state = Running
		observability.Simulation().OnReheat(context.Background(), e.tick, e.alpha)
		e.logger.Debug("simulation reheated", "tick", e.tick, "alpha", e.alpha)
	}
}

// =============================================================================
// Drag Support
// =============================================================================

// DragStart pins the node at (x, y) for the duration of a drag and reheats
// the simulation so neighbors react.
func (e *Engine) DragStart(id string, x, y float64) {
	if e.g == nil {
		return
	}
	if n, ok := e.g.Node(id); ok {
		n.Pin(x, y)
		e.Reheat()
	}
}

// DragMove updates a dragged node's pinned position.
func (e *Engine) DragMove(id string, x, y float64) {
	if e.g == nil {
		return
	}
	if n, ok := e.g.Node(id); ok && n.Pinned() {
		n.Pin(x, y)
	}
}

// DragEnd releases the node on pointer-up. Containers and anchors stay
// pinned deliberately.
func (e *Engine) DragEnd(id string) {
	if e.g == nil {
		return
	}
	if n, ok := e.g.Node(id); ok && !n.IsContainer && !n.IsAnchor {
		n.Unpin()
	}
}
