package layout

import (
	"math"
	"testing"

	"github.com/matzehuels/starmap/pkg/graph"
)

var testViewport = graph.Viewport{Width: 800, Height: 600}

func TestRepulsion_CoincidentNodesContributeZero(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "a", X: 100, Y: 100})
	g.AddNode(&graph.Node{ID: "b", X: 100, Y: 100})
	ctx := newContext(g, DefaultConfig(), testViewport, false)
	ctx.Alpha = 1

	n, _ := g.Node("a")
	dvx, dvy := Repulsion(n, ctx)

	if math.IsNaN(dvx) || math.IsNaN(dvy) {
		t.Fatalf("Repulsion produced NaN for coincident nodes")
	}
	if dvx != 0 || dvy != 0 {
		t.Errorf("Repulsion = (%v,%v), want (0,0) for coincident nodes", dvx, dvy)
	}
}

func TestRepulsion_AnchorsExertAndReceiveNone(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "a", X: 0, Y: 0})
	g.AddNode(&graph.Node{ID: "anchor:tag:x", IsAnchor: true, X: 10, Y: 0})
	ctx := newContext(g, DefaultConfig(), testViewport, false)
	ctx.Alpha = 1

	n, _ := g.Node("a")
	if dvx, dvy := Repulsion(n, ctx); dvx != 0 || dvy != 0 {
		t.Errorf("anchor exerted repulsion: (%v,%v)", dvx, dvy)
	}

	a, _ := g.Node("anchor:tag:x")
	if dvx, dvy := Repulsion(a, ctx); dvx != 0 || dvy != 0 {
		t.Errorf("anchor received repulsion: (%v,%v)", dvx, dvy)
	}
}

func TestRepulsion_ContainersRepelMoreStrongly(t *testing.T) {
	cfg := DefaultConfig()

	// Node at origin, counterpart to the right. Compare plain vs container.
	strength := func(container bool) float64 {
		g := graph.New()
		g.AddNode(&graph.Node{ID: "n", X: 0, Y: 0})
		g.AddNode(&graph.Node{ID: "m", X: 50, Y: 0, IsContainer: container})
		ctx := newContext(g, cfg, testViewport, false)
		ctx.Alpha = 1
		n, _ := g.Node("n")
		dvx, _ := Repulsion(n, ctx)
		return math.Abs(dvx)
	}

	plain, boosted := strength(false), strength(true)
	if boosted <= plain {
		t.Errorf("container repulsion %v not stronger than plain %v", boosted, plain)
	}
	if got, want := boosted/plain, cfg.ContainerFactor; math.Abs(got-want) > 1e-9 {
		t.Errorf("container boost = %v, want %v", got, want)
	}
}

func TestLinkSpring_RestLengthByRole(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name       string
		aContainer bool
		bContainer bool
		want       float64
	}{
		{"center-spoke", true, false, cfg.SpokeDistance},
		{"center-center", true, true, cfg.HubDistance},
		{"default", false, false, cfg.LinkDistance},
	}
	for _, tt := range tests {
		a := &graph.Node{ID: "a", IsContainer: tt.aContainer}
		b := &graph.Node{ID: "b", IsContainer: tt.bContainer}
		if got := restLength(cfg, a, b); got != tt.want {
			t.Errorf("%s: restLength = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLinkSpring_PullsTowardRestLength(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "a", X: 0, Y: 0})
	g.AddNode(&graph.Node{ID: "b", X: 200, Y: 0})
	g.AddLink(graph.Link{Source: "a", Target: "b"})
	ctx := newContext(g, DefaultConfig(), testViewport, false)
	ctx.Alpha = 1

	// Distance 200 exceeds the default rest length 60: a is pulled right.
	n, _ := g.Node("a")
	dvx, _ := LinkSpring(n, ctx)
	if dvx <= 0 {
		t.Errorf("LinkSpring dvx = %v, want positive pull toward b", dvx)
	}
}

func TestCenterGravity_LogBounded(t *testing.T) {
	cfg := DefaultConfig()
	g := graph.New()
	g.AddNode(&graph.Node{ID: "near", X: testViewport.CenterX() + 10, Y: testViewport.CenterY()})
	g.AddNode(&graph.Node{ID: "far", X: testViewport.CenterX() + 10000, Y: testViewport.CenterY()})
	ctx := newContext(g, cfg, testViewport, false)
	ctx.Alpha = 1

	near, _ := g.Node("near")
	far, _ := g.Node("far")
	nearDvx, _ := CenterGravity(near, ctx)
	farDvx, _ := CenterGravity(far, ctx)

	if nearDvx >= 0 || farDvx >= 0 {
		t.Fatalf("gravity should pull left: near=%v far=%v", nearDvx, farDvx)
	}
	// Log growth: 1000x the distance must not mean anywhere near 1000x the pull.
	if math.Abs(farDvx) > math.Abs(nearDvx)*10 {
		t.Errorf("gravity grows too fast: near=%v far=%v", nearDvx, farDvx)
	}

	// A node exactly at the center contributes zero, not NaN.
	g2 := graph.New()
	g2.AddNode(&graph.Node{ID: "c", X: testViewport.CenterX(), Y: testViewport.CenterY()})
	ctx2 := newContext(g2, cfg, testViewport, false)
	ctx2.Alpha = 1
	c, _ := g2.Node("c")
	if dvx, dvy := CenterGravity(c, ctx2); dvx != 0 || dvy != 0 || math.IsNaN(dvx) {
		t.Errorf("CenterGravity at center = (%v,%v), want (0,0)", dvx, dvy)
	}
}

func TestCohesion_PullsTowardNeighborCentroid(t *testing.T) {
	g := graph.New()
	g.AddNode(&graph.Node{ID: "n", X: 0, Y: 0})
	g.AddNode(&graph.Node{ID: "m1", X: 100, Y: 0})
	g.AddNode(&graph.Node{ID: "m2", X: 100, Y: 100})
	g.AddNode(&graph.Node{ID: "anchor:tag:x", IsAnchor: true, X: -500, Y: -500})
	g.AddLink(graph.Link{Source: "n", Target: "m1"})
	g.AddLink(graph.Link{Source: "n", Target: "m2"})
	g.AddLink(graph.Link{Source: "anchor:tag:x", Target: "n"})
	ctx := newContext(g, DefaultConfig(), testViewport, false)
	ctx.Alpha = 1

	n, _ := g.Node("n")
	dvx, dvy := Cohesion(n, ctx)

	// Centroid of non-anchor neighbors is (100, 50): pull is up-right, and
	// the anchor at (-500,-500) must not drag the centroid.
	if dvx <= 0 || dvy <= 0 {
		t.Errorf("Cohesion = (%v,%v), want positive pull toward (100,50)", dvx, dvy)
	}
}

func TestAnchorGravity_NormalizedByAnchorCount(t *testing.T) {
	build := func(anchorCount int) (float64, float64) {
		g := graph.New()
		g.AddNode(&graph.Node{ID: "n", X: 0, Y: 0})
		for i := 0; i < anchorCount; i++ {
			id := string(rune('a' + i))
			g.AddNode(&graph.Node{ID: "anchor:tag:" + id, IsAnchor: true, X: 100, Y: 0})
			g.AddLink(graph.Link{Source: "anchor:tag:" + id, Target: "n"})
		}
		ctx := newContext(g, DefaultConfig(), testViewport, false)
		ctx.Alpha = 1
		n, _ := g.Node("n")
		return AnchorGravity(n, ctx)
	}

	one, _ := build(1)
	four, _ := build(4)

	// Four coincident anchors normalized by count pull the same as one.
	if math.Abs(one-four) > 1e-9 {
		t.Errorf("anchor gravity not normalized: one=%v four=%v", one, four)
	}
}

func TestRadialContainment_OnlyInStarMode(t *testing.T) {
	cfg := DefaultConfig()
	g := graph.New()
	g.AddNode(&graph.Node{ID: "hub", IsContainer: true, X: 0, Y: 0})
	g.AddNode(&graph.Node{ID: "spoke", X: 10, Y: 0})
	g.AddLink(graph.Link{Source: "hub", Target: "spoke"})

	ctx := newContext(g, cfg, testViewport, true)
	ctx.Alpha = 1
	spoke, _ := g.Node("spoke")

	// Spoke at distance 10 with target 80: pushed outward.
	dvx, _ := RadialContainment(spoke, ctx)
	if dvx <= 0 {
		t.Errorf("RadialContainment dvx = %v, want outward push", dvx)
	}

	// Force list excludes the radial force outside star mode.
	if got, want := len(Forces(false))+1, len(Forces(true)); got != want {
		t.Errorf("Forces(true) should have exactly one more force than Forces(false)")
	}
}
