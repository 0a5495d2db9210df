package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/layout"
	"github.com/matzehuels/starmap/pkg/pipeline"
	"github.com/matzehuels/starmap/pkg/record"
	"github.com/matzehuels/starmap/pkg/render/dot"
)

// Output format constants.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// validFormats is the set of supported build output formats.
var validFormats = map[string]bool{
	formatJSON: true,
	formatDOT:  true,
	formatSVG:  true,
}

// settleTickBudget bounds the headless settle loop. With default cooling the
// simulation reaches the floor in roughly 300 ticks; the budget leaves room
// for slower custom schedules without spinning forever.
const settleTickBudget = 5000

// buildCommand creates the build command for one-shot graph construction.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		flags  buildFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "build [records.json]",
		Short: "Build a graph from a record batch and settle the layout",
		Long: `Build a graph from a record batch and settle the layout.

The build command reads a JSON array of records, constructs the node-link
graph for the selected topology, runs the force simulation headlessly until
it cools, and writes the settled graph with final node positions.

Output formats:
  json  settled graph as JSON (default)
  dot   Graphviz DOT with position attributes
  svg   rendered SVG via Graphviz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBuild(cmd.Context(), args[0], flags, output, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "output format: json (default), dot, svg")

	return cmd
}

// runBuild constructs the graph, settles it, and writes output.
func (c *CLI) runBuild(ctx context.Context, input string, flags buildFlags, output, format string) error {
	if !validFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot, svg)", format)
	}

	recs, err := record.ReadRecordsFile(input)
	if err != nil {
		return fmt.Errorf("load records %s: %w", input, err)
	}

	opts, err := flags.options(c.Logger)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(c.Logger)
	result, err := runner.Rebuild(ctx, recs, opts)
	if err != nil {
		return fmt.Errorf("build graph: %w", err)
	}

	prog := newProgress(c.Logger)
	engine := runner.Engine()
	ticks := settle(ctx, engine)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Settled %d nodes in %d ticks", result.Stats.NodeCount, ticks))

	outputPath := output
	if outputPath == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		outputPath = base + ".graph." + format
	}

	if err := writeOutput(result.Graph, outputPath, format); err != nil {
		return err
	}

	printSuccess("Build complete")
	printFile(outputPath)
	printStats(result.Stats.NodeCount, result.Stats.LinkCount, result.Stats.SkippedRefs)
	for _, kind := range result.AutoDisabled {
		printWarning("%s anchors auto-disabled (over ceiling)", kind)
	}
	if format == formatJSON {
		printNextStep("Watch it live", appName+" view "+input)
	}

	return nil
}

// settle ticks the engine until it first cools, returning the tick count.
func settle(ctx context.Context, engine *layout.Engine) int {
	cooled := false
	engine.OnCooled(func() { cooled = true })
	for !cooled && engine.TickCount() < settleTickBudget && ctx.Err() == nil {
		engine.Tick()
	}
	return engine.TickCount()
}

// writeOutput serializes the settled graph in the requested format.
func writeOutput(g *graph.Graph, path, format string) error {
	switch format {
	case formatJSON:
		if err := graph.WriteGraphFile(g, path); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
	case formatDOT:
		out := dot.ToDOT(g, dot.Options{Positions: true})
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
	case formatSVG:
		svg, err := dot.RenderSVG(dot.ToDOT(g, dot.Options{}))
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		if err := os.WriteFile(path, svg, 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
	}
	return nil
}
