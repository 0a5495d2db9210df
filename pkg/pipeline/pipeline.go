// Package pipeline assembles the core record → graph → simulation flow
// for Starmap.
//
// This package orchestrates the complete build → enhance → layout cycle that
// can be driven by CLI, TUI, and server components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// A rebuild runs in four stages:
//
//  1. Index: Fold the record set into an indexed lookup structure
//  2. Build: Construct the node-link graph for the selected topology
//  3. Enhance: Attach tag and person anchors, subject to throttling
//  4. Simulate: Carry positions over from the previous graph and restart
//     the force engine
//
// # Usage
//
// Create a Runner and rebuild whenever the record set or options change:
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Topology:  pipeline.TopologySequential,
//	    AnchorKey: "tag",
//	}
//	result, err := runner.Rebuild(ctx, records, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for running {
//	    runner.Engine().Tick()
//	}
//
// # Concurrency
//
// The Runner is single-consumer: all methods must be called from the same
// execution context that ticks the engine. Cross-context coordination is
// the caller's responsibility.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starmap/pkg/anchor"
	"github.com/matzehuels/starmap/pkg/errors"
	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, TUI, and Server
// =============================================================================

const (
	// DefaultMaxDepth bounds hub recursion in the sequential topology. Deeply
	// nested collections flatten onto their parent's row beyond this depth.
	DefaultMaxDepth = 4

	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0
)

// Topology constants for graph construction.
const (
	TopologySequential = "sequential"
	TopologyStar       = "star"
)

// ValidTopologies is the set of supported graph topologies.
var ValidTopologies = map[string]bool{
	TopologySequential: true,
	TopologyStar:       true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a rebuild.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Build options
	Topology string  `json:"topology,omitempty"`
	MaxDepth int     `json:"max_depth,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`

	// Anchor options. AnchorKey selects the record attribute grouped into
	// tag anchors; empty disables tag anchors.
	AnchorKey     string            `json:"anchor_key,omitempty"`
	ShowPersons   bool              `json:"show_persons,omitempty"`
	PersonRoles   anchor.RoleFilter `json:"person_roles,omitempty"`
	AnchorCeiling int               `json:"anchor_ceiling,omitempty"`
	DisabledIDs   []string          `json:"disabled_ids,omitempty"`

	// Physics overrides the default force constants when non-nil.
	Physics *layout.Config `json:"physics,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger       `json:"-"`
	Lookup anchor.NameLookup `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Viewport returns the layout viewport from the configured dimensions.
func (o *Options) Viewport() graph.Viewport {
	return graph.Viewport{Width: o.Width, Height: o.Height}
}

// IsStar returns true if the star topology is selected.
func (o *Options) IsStar() bool {
	return o.Topology == TopologyStar
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Topology == "" {
		o.Topology = TopologySequential
	}
	if !ValidTopologies[o.Topology] {
		return errors.New(errors.ErrCodeInvalidTopology,
			"invalid topology: %q (must be one of: sequential, star)", o.Topology)
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidDepth, "max_depth must be non-negative, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidViewport,
			"viewport dimensions must be non-negative, got %gx%g", o.Width, o.Height)
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Physics != nil {
		if err := o.Physics.Validate(); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// physics returns the effective force configuration.
func (o *Options) physics() layout.Config {
	if o.Physics != nil {
		return *o.Physics
	}
	return layout.DefaultConfig()
}

// =============================================================================
// Result
// =============================================================================

// Result contains the outputs of a rebuild.
type Result struct {
	// Graph is the built and enhanced graph, post throttling. The engine
	// mutates its node positions on every tick.
	Graph *graph.Graph

	// TagAnchors and PersonAnchors describe the anchors produced by the
	// enhancement pass, before throttling.
	TagAnchors    *anchor.Result
	PersonAnchors *anchor.Result

	// AutoDisabled lists anchor kinds suppressed by the throttle.
	AutoDisabled []graph.AnchorKind

	// Stats contains build statistics.
	Stats Stats
}

// Stats contains rebuild statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	LinkCount   int
	SkippedRefs int
	BuildTime   time.Duration
}
