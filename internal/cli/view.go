package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/pipeline"
	"github.com/matzehuels/starmap/pkg/record"
)

// frameInterval paces the simulation at roughly 30 frames per second.
const frameInterval = 33 * time.Millisecond

// viewCommand creates the view command for the live terminal UI.
func (c *CLI) viewCommand() *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "view [records.json]",
		Short: "Watch the force simulation live in the terminal",
		Long: `Watch the force simulation live in the terminal.

The view command builds the graph and renders the running simulation as a
scatter map in the terminal, one frame per engine tick batch.

Keys:
  q  quit
  r  reheat the simulation
  s  toggle sequential/star topology (rebuilds the graph)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	return cmd
}

// runView builds the initial graph and hands control to bubbletea.
func (c *CLI) runView(ctx context.Context, input string, flags buildFlags) error {
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

	m := newViewModel(runner, result, recs, opts)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// =============================================================================
// ViewModel - Live Simulation TUI
// =============================================================================

// Node glyph styles.
var (
	styleContainer = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleContent   = lipgloss.NewStyle().Foreground(colorWhite)
	styleAnchor    = lipgloss.NewStyle().Foreground(colorYellow)
)

// tickMsg drives one batch of simulation steps.
type tickMsg time.Time

// viewModel is the bubbletea model for the live simulation view.
type viewModel struct {
	runner *pipeline.Runner
	result *pipeline.Result
	recs   []record.Record
	opts   pipeline.Options

	// terminal size
	width  int
	height int

	err error
}

func newViewModel(runner *pipeline.Runner, result *pipeline.Result, recs []record.Record, opts pipeline.Options) viewModel {
	return viewModel{
		runner: runner,
		result: result,
		recs:   recs,
		opts:   opts,
		width:  80,
		height: 24,
	}
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m viewModel) Init() tea.Cmd {
	return frameTick()
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.runner.Engine().Reheat()
		case "s":
			return m.toggleTopology(), nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case tickMsg:
		m.runner.Engine().Tick()
		return m, frameTick()
	}
	return m, nil
}

// toggleTopology rebuilds the graph with the other topology. Node positions
// carry over, so the map morphs instead of jumping.
func (m viewModel) toggleTopology() viewModel {
	opts := m.opts
	if opts.IsStar() {
		opts.Topology = pipeline.TopologySequential
	} else {
		opts.Topology = pipeline.TopologyStar
	}

	result, err := m.runner.Rebuild(context.Background(), m.recs, opts)
	if err != nil {
		m.err = err
		return m
	}
	m.opts = opts
	m.result = result
	m.err = nil
	return m
}

func (m viewModel) View() string {
	var b strings.Builder

	engine := m.runner.Engine()
	b.WriteString(StyleTitle.Render("starmap"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · alpha %.3f · %s · tick %d",
		m.opts.Topology, engine.Alpha(), engine.State(), engine.TickCount())))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit  r reheat  s topology"))
	b.WriteString("\n")

	mapHeight := m.height - 4
	if mapHeight < 5 {
		mapHeight = 5
	}
	b.WriteString(m.renderMap(m.width, mapHeight))

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.err.Error()))
	}
	return b.String()
}

// renderMap projects simulation coordinates onto a terminal cell grid.
func (m viewModel) renderMap(cols, rows int) string {
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
		for j := range grid[i] {
			grid[i][j] = " "
		}
	}

	vp := m.opts.Viewport()
	for _, n := range m.result.Graph.Nodes() {
		col := int(n.X / vp.Width * float64(cols-1))
		row := int(n.Y / vp.Height * float64(rows-1))
		if col < 0 || col >= cols || row < 0 || row >= rows {
			continue
		}
		grid[row][col] = glyph(n)
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString(strings.Join(row, ""))
		b.WriteString("\n")
	}
	return b.String()
}

// glyph picks the character and style for a node role.
func glyph(n *graph.Node) string {
	switch {
	case n.IsAnchor:
		return styleAnchor.Render("◆")
	case n.IsContainer:
		return styleContainer.Render("●")
	default:
		return styleContent.Render("○")
	}
}
