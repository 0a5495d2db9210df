package build

import (
	"testing"

	"github.com/matzehuels/starmap/pkg/record"
)

func TestStar_HubWithSpokesAndIsolate(t *testing.T) {
	// Hub R references content C1, C2; unrelated content C3.
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1", "C2")},
		{ID: "C1", Kind: record.KindContent},
		{ID: "C2", Kind: record.KindContent},
		{ID: "C3", Kind: record.KindContent},
	})

	g, _ := Star(ix)

	if g.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", g.NodeCount())
	}
	if g.LinkCount() != 2 {
		t.Errorf("LinkCount() = %d, want 2", g.LinkCount())
	}
	if !g.HasLink("R", "C1") || !g.HasLink("R", "C2") {
		t.Errorf("missing spoke links R→C1 / R→C2")
	}
	if g.Degree("C3") != 0 {
		t.Errorf("Degree(C3) = %d, want 0 (isolated single-node star)", g.Degree("C3"))
	}
}

func TestStar_InterStarLinks(t *testing.T) {
	// Hub A references hub B; B references content C.
	ix := record.NewIndex([]record.Record{
		{ID: "A", Kind: record.KindIndex, References: refs("B")},
		{ID: "B", Kind: record.KindIndex, References: refs("C")},
		{ID: "C", Kind: record.KindContent},
	})

	g, _ := Star(ix)

	if !g.HasLink("A", "B") {
		t.Errorf("missing inter-star link A→B")
	}
	if !g.HasLink("B", "C") {
		t.Errorf("missing spoke link B→C")
	}

	// A hub spoke keeps its center level.
	b, _ := g.Node("B")
	if b.Level != 0 {
		t.Errorf("Node(B).Level = %d, want 0 (centers stay level 0)", b.Level)
	}
}

func TestStar_Completeness(t *testing.T) {
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1", "ghost")},
		{ID: "C1", Kind: record.KindContent},
		{ID: "floating", Kind: record.KindContent},
	})

	g, stats := Star(ix)

	if g.NodeCount() != ix.Len() {
		t.Errorf("NodeCount() = %d, want %d", g.NodeCount(), ix.Len())
	}
	if stats.SkippedRefs != 1 {
		t.Errorf("SkippedRefs = %d, want 1", stats.SkippedRefs)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestStar_DuplicateReferencesLinkOnce(t *testing.T) {
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1", "C1")},
		{ID: "C1", Kind: record.KindContent},
	})

	g, _ := Star(ix)

	if g.LinkCount() != 1 {
		t.Errorf("LinkCount() = %d, want 1", g.LinkCount())
	}
}

func TestStar_ContainerFlags(t *testing.T) {
	ix := record.NewIndex([]record.Record{
		{ID: "R", Kind: record.KindIndex, References: refs("C1")},
		{ID: "C1", Kind: record.KindContent},
	})

	g, _ := Star(ix)

	r, _ := g.Node("R")
	if !r.IsContainer {
		t.Errorf("Node(R).IsContainer = false, want true")
	}
	c, _ := g.Node("C1")
	if c.IsContainer {
		t.Errorf("Node(C1).IsContainer = true, want false")
	}
}
