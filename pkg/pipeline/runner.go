package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starmap/pkg/anchor"
	"github.com/matzehuels/starmap/pkg/errors"
	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/graph/build"
	"github.com/matzehuels/starmap/pkg/layout"
	"github.com/matzehuels/starmap/pkg/observability"
	"github.com/matzehuels/starmap/pkg/record"
	"github.com/matzehuels/starmap/pkg/session"
)

// Runner owns the living pieces of one visualization: the force engine, the
// position session, and the anchor throttle. It rebuilds the graph whenever
// records or options change while keeping node positions continuous.
//
// A Runner is single-consumer: Rebuild and the returned Engine must be
// driven from the same execution context.
type Runner struct {
	Logger *log.Logger

	engine   *layout.Engine
	sess     *session.Session
	throttle *anchor.Throttle

	// graph currently driven by the engine, kept as the carry-over source
	// and as the fallback when a rebuild produces nothing.
	current *graph.Graph

	// anchor ids disabled via Options.DisabledIDs on the last rebuild.
	// Tracked separately so dropping an id from the options re-enables it
	// without touching disables made directly on the throttle.
	optDisabled map[string]bool
}

// NewRunner creates a runner with an idle engine and a fresh session.
// If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Logger:   logger,
		engine:   layout.NewEngine(layout.DefaultConfig(), logger),
		sess:     session.New(),
		throttle: anchor.NewThrottle(0),
	}
}

// Engine returns the force engine driving the current graph. Rebuild
// replaces the engine, so callers must re-fetch it after every rebuild
// rather than holding a reference.
func (r *Runner) Engine() *layout.Engine { return r.engine }

// Session returns the position session.
func (r *Runner) Session() *session.Session { return r.sess }

// Throttle returns the anchor throttle.
func (r *Runner) Throttle() *anchor.Throttle { return r.throttle }

// Graph returns the graph currently driven by the engine, or nil before the
// first successful rebuild.
func (r *Runner) Graph() *graph.Graph { return r.current }

// Rebuild runs the full index → build → enhance → simulate cycle.
//
// On success the engine is restarted on the new graph with positions carried
// over from the previous one. If the record set produces an empty graph the
// previous graph keeps running and an EmptyGraph error is returned.
func (r *Runner) Rebuild(ctx context.Context, records []record.Record, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	start := time.Now()
	observability.Build().OnBuildStart(ctx, opts.Topology, len(records))

	result, err := r.rebuild(ctx, records, opts)

	var nodes, links int
	if result != nil {
		nodes, links = result.Stats.NodeCount, result.Stats.LinkCount
	}
	observability.Build().OnBuildComplete(ctx, opts.Topology, nodes, links, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	result.Stats.BuildTime = time.Since(start)
	logger.Info("rebuilt graph",
		"topology", opts.Topology,
		"nodes", result.Stats.NodeCount,
		"links", result.Stats.LinkCount,
		"skipped_refs", result.Stats.SkippedRefs,
		"duration", result.Stats.BuildTime)
	return result, nil
}

func (r *Runner) rebuild(ctx context.Context, records []record.Record, opts Options) (*Result, error) {
	ix := record.NewIndex(records)

	var (
		g     *graph.Graph
		stats build.Stats
	)
	if opts.IsStar() {
		g, stats = build.Star(ix)
	} else {
		g, stats = build.Sequential(ix, opts.MaxDepth)
	}

	if g.IsEmpty() {
		return nil, errors.New(errors.ErrCodeEmptyGraph,
			"no records produced any nodes (topology %s)", opts.Topology)
	}

	result := &Result{
		Stats: Stats{
			RecordCount: len(records),
			SkippedRefs: stats.SkippedRefs,
		},
	}

	// Anchor enhancement operates on the raw graph; throttling then filters
	// whole kinds back out if a pass produced too many.
	if opts.AnchorCeiling > 0 {
		r.throttle.Ceiling = opts.AnchorCeiling
	}
	listed := make(map[string]bool, len(opts.DisabledIDs))
	for _, id := range opts.DisabledIDs {
		listed[id] = true
		r.throttle.Disable(id)
	}
	for id := range r.optDisabled {
		if !listed[id] {
			r.throttle.Enable(id)
		}
	}
	r.optDisabled = listed

	enhancer := anchor.NewEnhancer(opts.Viewport(), opts.Lookup)
	if opts.AnchorKey != "" {
		result.TagAnchors = enhancer.EnhanceTags(g, ix.Records(), opts.AnchorKey)
		r.throttle.Evaluate(graph.AnchorTag, result.TagAnchors.Count())
	}
	if opts.ShowPersons {
		result.PersonAnchors = enhancer.EnhancePersons(g, ix.Records(), opts.PersonRoles)
		r.throttle.Evaluate(graph.AnchorPerson, result.PersonAnchors.Count())
	}
	g = r.throttle.Apply(g)
	for _, kind := range []graph.AnchorKind{graph.AnchorTag, graph.AnchorPerson} {
		if r.throttle.AutoDisabled(kind) {
			result.AutoDisabled = append(result.AutoDisabled, kind)
		}
	}

	// Position continuity: surviving nodes resume where they were, new ones
	// start at a randomized viewport position.
	r.sess.CarryOver(r.current, g, opts.Viewport())

	// The superseded engine must go idle before its graph is discarded;
	// a collaborator still holding it would otherwise keep mutating the
	// stale node arrays.
	r.engine.Stop()
	r.engine = layout.NewEngine(opts.physics(), opts.Logger)
	r.engine.Start(g, opts.Viewport(), opts.IsStar())
	r.current = g
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.LinkCount = g.LinkCount()
	return result, nil
}

// Reset discards the session and throttle state, as if the runner were
// freshly created. The engine goes idle until the next Rebuild.
func (r *Runner) Reset() {
	r.sess.Reset()
	r.throttle = anchor.NewThrottle(r.throttle.Ceiling)
	r.optDisabled = nil
	r.engine.Stop()
	r.current = nil
}
