// Package cli implements the starmap command-line interface.
//
// This package provides commands for building node-link graphs from record
// batches, watching the force simulation live in the terminal, and serving
// graph state over HTTP. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Build a graph from records and settle the layout headlessly
//   - view: Watch the simulation live in a terminal UI
//   - serve: Expose graph state and position updates over HTTP
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starmap/pkg/anchor"
	"github.com/matzehuels/starmap/pkg/buildinfo"
	"github.com/matzehuels/starmap/pkg/layout"
	"github.com/matzehuels/starmap/pkg/pipeline"
)

// appName is the application name used for display.
const appName = "starmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Starmap visualizes record collections as living node-link maps",
		Long:         `Starmap builds node-link graphs from record collections and arranges them with a continuously running force simulation, making hub structure and shared topics visible at a glance.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Options Helpers
// =============================================================================

// buildFlags holds the graph construction flags shared by build, view, and
// serve.
type buildFlags struct {
	topology    string
	maxDepth    int
	width       float64
	height      float64
	anchorKey   string
	persons     bool
	mentions    bool
	ceiling     int
	physicsPath string
}

// register adds the shared flags to a command.
func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.topology, "topology", "t", pipeline.TopologySequential, "graph topology: sequential (default), star")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", pipeline.DefaultMaxDepth, "maximum hub nesting depth (sequential)")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().StringVar(&f.anchorKey, "anchors", "", "attribute key grouped into tag anchors (empty: none)")
	cmd.Flags().BoolVar(&f.persons, "persons", false, "add person anchors for record authors")
	cmd.Flags().BoolVar(&f.mentions, "mentions", false, "include person mentions alongside authorship")
	cmd.Flags().IntVar(&f.ceiling, "anchor-ceiling", 0, "auto-disable anchor kinds above this count (0: default)")
	cmd.Flags().StringVar(&f.physicsPath, "physics", "", "TOML file overriding force constants")
}

// options converts the flags into pipeline options.
func (f *buildFlags) options(logger *log.Logger) (pipeline.Options, error) {
	opts := pipeline.Options{
		Topology:      f.topology,
		MaxDepth:      f.maxDepth,
		Width:         f.width,
		Height:        f.height,
		AnchorKey:     f.anchorKey,
		ShowPersons:   f.persons || f.mentions,
		PersonRoles:   anchor.RoleFilter{SignedBy: f.persons, Referenced: f.mentions},
		AnchorCeiling: f.ceiling,
		Logger:        logger,
	}
	if f.physicsPath != "" {
		cfg, err := layout.LoadConfig(f.physicsPath)
		if err != nil {
			return opts, err
		}
		opts.Physics = &cfg
	}
	return opts, nil
}
