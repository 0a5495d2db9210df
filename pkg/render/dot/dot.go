// Package dot exports layout snapshots as Graphviz DOT and SVG.
//
// The simulation owns node positions; this package only serializes them.
// With Options.Positions set, nodes carry pos attributes in points so
// "neato -n" reproduces the simulated layout exactly. Without it, plain
// dot computes its own hierarchical arrangement, useful for topology
// debugging independent of the physics.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/starmap/pkg/graph"
)

// Options configures DOT export.
type Options struct {
	// Positions emits simulated coordinates as pos attributes.
	Positions bool

	// Detailed includes level and kind in node labels.
	// When false, only the node title is shown.
	Detailed bool
}

// ToDOT converts a graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Anchor nodes are rendered as dashed ellipses and container nodes with a
// grey fill to distinguish the three node roles at a glance.
func ToDOT(g *graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph starmap {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label, opts.Positions)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range g.Links() {
		style := ""
		if !l.IsSequential {
			style = " [style=dotted, arrowhead=none]"
		}
		fmt.Fprintf(&buf, "  %q -> %q%s;\n", l.Source, l.Target, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *graph.Node, detailed bool) string {
	label := n.Title
	if label == "" {
		label = n.ID
	}
	if !detailed {
		return label
	}
	parts := []string{fmt.Sprintf("level: %d", n.Level)}
	if n.Kind != "" {
		parts = append(parts, fmt.Sprintf("kind: %s", n.Kind))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n *graph.Node, label string, positions bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.IsAnchor:
		attrs = append(attrs, "shape=ellipse", "style=\"dashed,filled\"", "fillcolor=lightyellow")
	case n.IsContainer:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	if positions {
		// Graphviz y grows upward, the simulation's grows downward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", n.X, -n.Y))
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the svg element so the image scales to its
// container instead of using Graphviz's absolute point sizes.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
