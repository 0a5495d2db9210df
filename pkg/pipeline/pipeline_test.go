package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/starmap/pkg/anchor"
	"github.com/matzehuels/starmap/pkg/errors"
	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/layout"
	"github.com/matzehuels/starmap/pkg/record"
)

func testRecords() []record.Record {
	return []record.Record{
		{
			ID:   "root",
			Kind: record.KindIndex,
			References: []record.Reference{
				{TargetID: "a"},
				{TargetID: "b"},
			},
		},
		{ID: "a", Kind: record.KindContent, Author: "ada"},
		{ID: "b", Kind: record.KindContent, Author: "ada",
			Attrs: record.Attributes{"tag": {"physics"}}},
	}
}

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() = %v, want nil", err)
	}
	if opts.Topology != TopologySequential {
		t.Errorf("Topology = %q, want %q", opts.Topology, TopologySequential)
	}
	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", opts.MaxDepth, DefaultMaxDepth)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("viewport = %gx%g, want %gx%g", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Logger == nil {
		t.Errorf("Logger not defaulted")
	}
}

func TestOptions_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"bad topology", Options{Topology: "ring"}, errors.ErrCodeInvalidTopology},
		{"negative depth", Options{MaxDepth: -1}, errors.ErrCodeInvalidDepth},
		{"negative viewport", Options{Width: -10}, errors.ErrCodeInvalidViewport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatalf("ValidateAndSetDefaults() = nil, want error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestOptions_ValidateIdempotent(t *testing.T) {
	opts := Options{MaxDepth: 7}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d after revalidation, want 7", opts.MaxDepth)
	}
}

func TestOptions_InvalidPhysics(t *testing.T) {
	bad := layout.DefaultConfig()
	bad.AlphaDecay = 2
	opts := Options{Physics: &bad}
	if err := opts.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
	}
}

func TestRunner_RebuildSequential(t *testing.T) {
	r := NewRunner(nil)
	result, err := r.Rebuild(context.Background(), testRecords(), Options{})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	if got := result.Stats.NodeCount; got != 3 {
		t.Errorf("NodeCount = %d, want 3", got)
	}
	if result.Graph != r.Graph() {
		t.Errorf("result graph and runner graph differ")
	}
	if got := r.Engine().State(); got != layout.Running {
		t.Errorf("engine state = %v, want %v", got, layout.Running)
	}
}

func TestRunner_RebuildStar(t *testing.T) {
	r := NewRunner(nil)
	result, err := r.Rebuild(context.Background(), testRecords(), Options{Topology: TopologyStar})
	if err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	root, ok := result.Graph.Node("root")
	if !ok {
		t.Fatalf("star graph missing center node")
	}
	if root.Level != 0 || !root.IsContainer {
		t.Errorf("center node level=%d container=%v, want 0/true", root.Level, root.IsContainer)
	}
}

func TestRunner_EmptyRecordsKeepsPreviousGraph(t *testing.T) {
	r := NewRunner(nil)
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{}); err != nil {
		t.Fatal(err)
	}
	previous := r.Graph()

	_, err := r.Rebuild(context.Background(), nil, Options{})
	if !errors.Is(err, errors.ErrCodeEmptyGraph) {
		t.Fatalf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeEmptyGraph)
	}
	if r.Graph() != previous {
		t.Errorf("previous graph was discarded on empty rebuild")
	}
	if got := r.Engine().State(); got != layout.Running {
		t.Errorf("engine state = %v, want %v after failed rebuild", got, layout.Running)
	}
}

func TestRunner_PositionContinuity(t *testing.T) {
	r := NewRunner(nil)
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{}); err != nil {
		t.Fatal(err)
	}

	a, _ := r.Graph().Node("a")
	a.X, a.Y = 123, 456

	result, err := r.Rebuild(context.Background(), testRecords(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	a2, _ := result.Graph.Node("a")
	if a2.X != 123 || a2.Y != 456 {
		t.Errorf("node a at (%v,%v) after rebuild, want (123,456)", a2.X, a2.Y)
	}
}

func TestRunner_TagAnchors(t *testing.T) {
	r := NewRunner(nil)
	result, err := r.Rebuild(context.Background(), testRecords(), Options{AnchorKey: "tag"})
	if err != nil {
		t.Fatal(err)
	}
	if result.TagAnchors == nil || result.TagAnchors.Count() != 1 {
		t.Fatalf("TagAnchors = %+v, want one anchor", result.TagAnchors)
	}
	if _, ok := result.Graph.Node(graph.TagAnchorID("tag", "physics")); !ok {
		t.Errorf("graph missing tag anchor node")
	}
}

func TestRunner_ThrottleTripsOnTagFlood(t *testing.T) {
	recs := []record.Record{{ID: "root", Kind: record.KindIndex}}
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("c%d", i)
		recs[0].References = append(recs[0].References, record.Reference{TargetID: id})
		recs = append(recs, record.Record{
			ID: id, Kind: record.KindContent,
			Attrs: record.Attributes{"tag": {fmt.Sprintf("t%d", i)}},
		})
	}

	r := NewRunner(nil)
	result, err := r.Rebuild(context.Background(), recs, Options{AnchorKey: "tag"})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.AutoDisabled) != 1 || result.AutoDisabled[0] != graph.AnchorTag {
		t.Fatalf("AutoDisabled = %v, want [%v]", result.AutoDisabled, graph.AnchorTag)
	}
	for _, n := range result.Graph.Nodes() {
		if n.IsAnchor {
			t.Errorf("throttled graph still contains anchor %s", n.ID)
		}
	}
	// Raising the ceiling on the next rebuild clears the trip.
	result, err = r.Rebuild(context.Background(), recs, Options{AnchorKey: "tag", AnchorCeiling: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.AutoDisabled) != 0 {
		t.Errorf("AutoDisabled = %v after ceiling raise, want empty", result.AutoDisabled)
	}
}

func TestRunner_PersonAnchors(t *testing.T) {
	r := NewRunner(nil)
	opts := Options{ShowPersons: true, PersonRoles: anchor.RoleFilter{SignedBy: true, Referenced: true}}
	result, err := r.Rebuild(context.Background(), testRecords(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if result.PersonAnchors == nil || result.PersonAnchors.Count() != 1 {
		t.Fatalf("PersonAnchors = %+v, want one anchor for ada", result.PersonAnchors)
	}
	if _, ok := result.Graph.Node(graph.PersonAnchorID("ada")); !ok {
		t.Errorf("graph missing person anchor node")
	}
}

func TestRunner_RebuildStopsSupersededEngine(t *testing.T) {
	r := NewRunner(nil)
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{}); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	held := r.Engine()
	stale, _ := r.Graph().Node("a")
	x, y := stale.X, stale.Y

	if _, err := r.Rebuild(context.Background(), testRecords(), Options{}); err != nil {
		t.Fatalf("second Rebuild() error = %v", err)
	}

	if got := held.State(); got != layout.Idle {
		t.Errorf("superseded engine state = %v, want %v", got, layout.Idle)
	}
	held.Tick()
	if stale.X != x || stale.Y != y {
		t.Errorf("superseded engine moved discarded node: (%v,%v) -> (%v,%v)", x, y, stale.X, stale.Y)
	}
	if got := r.Engine().State(); got != layout.Running {
		t.Errorf("replacement engine state = %v, want %v", got, layout.Running)
	}
}

func TestRunner_DroppedDisabledIDReEnables(t *testing.T) {
	anchorID := graph.TagAnchorID("tag", "physics")
	r := NewRunner(nil)

	opts := Options{AnchorKey: "tag", DisabledIDs: []string{anchorID}}
	if _, err := r.Rebuild(context.Background(), testRecords(), opts); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if _, ok := r.Graph().Node(anchorID); ok {
		t.Fatalf("disabled anchor %s present in graph", anchorID)
	}

	// Dropping the id from the options re-enables the anchor.
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{AnchorKey: "tag"}); err != nil {
		t.Fatalf("second Rebuild() error = %v", err)
	}
	if _, ok := r.Graph().Node(anchorID); !ok {
		t.Errorf("anchor %s still filtered after removal from DisabledIDs", anchorID)
	}

	// Disables made directly on the throttle are not touched by the sync.
	r.Throttle().Disable(anchorID)
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{AnchorKey: "tag"}); err != nil {
		t.Fatalf("third Rebuild() error = %v", err)
	}
	if _, ok := r.Graph().Node(anchorID); ok {
		t.Errorf("throttle-disabled anchor %s reappeared", anchorID)
	}
}

func TestRunner_Reset(t *testing.T) {
	r := NewRunner(nil)
	if _, err := r.Rebuild(context.Background(), testRecords(), Options{}); err != nil {
		t.Fatal(err)
	}
	r.Reset()
	if r.Graph() != nil {
		t.Errorf("Graph() != nil after Reset")
	}
	if got := r.Engine().State(); got != layout.Idle {
		t.Errorf("engine state = %v after Reset, want %v", got, layout.Idle)
	}
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	for i := 0; i < 10; i++ {
		d.Trigger()
	}
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callback fired %d times, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var calls atomic.Int32
	d := NewDebouncer(20*time.Millisecond, func() { calls.Add(1) })

	d.Trigger()
	d.Stop()
	time.Sleep(100 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callback fired %d times after Stop, want 0", got)
	}
}
