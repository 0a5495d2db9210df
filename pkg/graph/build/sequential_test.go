package build

import (
	"fmt"
	"testing"

	"github.com/matzehuels/starmap/pkg/record"
)

func TestSequential_ChainWithNestedHub(t *testing.T) {
	// Hub R references [C1, C2] in order; C1 is itself a hub referencing [C1a].
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1", "C2")},
		{ID: "C1", Kind: record.KindIndex, References: refs("C1a")},
		{ID: "C2", Kind: record.KindContent},
		{ID: "C1a", Kind: record.KindContent},
	})

	g, stats := Sequential(ix, 2)

	if stats.SkippedRefs != 0 {
		t.Errorf("SkippedRefs = %d, want 0", stats.SkippedRefs)
	}
	wantLinks := [][2]string{{"R", "C1"}, {"C1", "C2"}, {"C1", "C1a"}}
	if g.LinkCount() != len(wantLinks) {
		t.Errorf("LinkCount() = %d, want %d", g.LinkCount(), len(wantLinks))
	}
	for _, w := range wantLinks {
		if !g.HasLink(w[0], w[1]) {
			t.Errorf("missing link %s→%s", w[0], w[1])
		}
	}

	wantLevels := map[string]int{"R": 0, "C1": 1, "C2": 1, "C1a": 2}
	for id, level := range wantLevels {
		n, ok := g.Node(id)
		if !ok {
			t.Fatalf("node %s missing", id)
		}
		if n.Level != level {
			t.Errorf("Node(%s).Level = %d, want %d", id, n.Level, level)
		}
	}
}

func TestSequential_DepthBound(t *testing.T) {
	// A deep tower of nested hubs: h0 → h1 → h2 → ... Each level is one hub
	// referencing the next.
	var recs []record.Record
	for i := 0; i < 10; i++ {
		r := record.Record{ID: fmt.Sprintf("h%d", i), Kind: record.KindIndex}
		if i < 9 {
			r.References = refs(fmt.Sprintf("h%d", i+1))
		}
		recs = append(recs, r)
	}
	ix := record.NewIndex(recs)

	const maxDepth = 3
	g, _ := Sequential(ix, maxDepth)

	for _, n := range g.Nodes() {
		if n.Level > maxDepth {
			t.Errorf("Node(%s).Level = %d, exceeds maxDepth %d", n.ID, n.Level, maxDepth)
		}
	}
}

func TestSequential_CyclicHubsDoNotRecurseForever(t *testing.T) {
	// Hub A references hub B, B references A. No root hubs exist; both are
	// referenced. The build must terminate and link them once each way.
	ix := record.NewIndex([]record.Record{
		{ID: "A", Kind: record.KindIndex, References: refs("B")},
		{ID: "B", Kind: record.KindIndex, References: refs("A")},
	})

	g, _ := Sequential(ix, 5)

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if !g.HasLink("A", "B") {
		t.Errorf("missing link between A and B")
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestSequential_FirstEncounterWinsLevel(t *testing.T) {
	// C is reachable from R1 at depth 1 and from nested hub H at depth 2.
	// R1 is walked first, so C keeps level 1.
	ix := record.NewIndex([]record.Record{
		{ID: "R1", Kind: record.KindIndex, References: refs("C", "H")},
		{ID: "H", Kind: record.KindIndex, References: refs("C")},
		{ID: "C", Kind: record.KindContent},
	})

	g, _ := Sequential(ix, 3)

	n, _ := g.Node("C")
	if n.Level != 1 {
		t.Errorf("Node(C).Level = %d, want 1 (first encounter wins)", n.Level)
	}
}

func TestSequential_SkipsUnresolvableReferences(t *testing.T) {
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("ghost", "C1")},
		{ID: "C1", Kind: record.KindContent},
	})

	g, stats := Sequential(ix, 2)

	if stats.SkippedRefs != 1 {
		t.Errorf("SkippedRefs = %d, want 1", stats.SkippedRefs)
	}
	// C1 is the first resolvable child, so the hub links to it.
	if !g.HasLink("R", "C1") {
		t.Errorf("missing link R→C1 after skipping ghost")
	}
}

func TestSequential_Completeness(t *testing.T) {
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1")},
		{ID: "C1", Kind: record.KindContent},
		{ID: "orphan", Kind: record.KindContent},
		{ID: "lonelyhub", Kind: record.KindIndex},
	})

	g, _ := Sequential(ix, 2)

	if g.NodeCount() != ix.Len() {
		t.Errorf("NodeCount() = %d, want %d (every record exactly once)", g.NodeCount(), ix.Len())
	}
	for _, r := range ix.Records() {
		if _, ok := g.Node(r.ID); !ok {
			t.Errorf("record %s missing from graph", r.ID)
		}
	}
}

func TestSequential_NestedHubNotReDescended(t *testing.T) {
	// Both R1 and R2 reference hub H. H is expanded once; the second parent
	// links to it without duplicating its chain.
	ix := record.NewIndex([]record.Record{
		{ID: "R1", Kind: record.KindIndex, References: refs("H")},
		{ID: "R2", Kind: record.KindIndex, References: refs("H")},
		{ID: "H", Kind: record.KindIndex, References: refs("C")},
		{ID: "C", Kind: record.KindContent},
	})

	g, _ := Sequential(ix, 3)

	// Exactly one H→C link despite two parents of H.
	count := 0
	for _, l := range g.Links() {
		if (l.Source == "H" && l.Target == "C") || (l.Source == "C" && l.Target == "H") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("H→C link count = %d, want 1", count)
	}
}

func refs(ids ...string) []record.Reference {
	out := make([]record.Reference, len(ids))
	for i, id := range ids {
		out[i] = record.Reference{TargetID: id}
	}
	return out
}
