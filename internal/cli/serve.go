package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/starmap/pkg/graph"
	"github.com/matzehuels/starmap/pkg/pipeline"
	"github.com/matzehuels/starmap/pkg/record"
)

// serveTickInterval paces the server-side simulation loop.
const serveTickInterval = 33 * time.Millisecond

// serveCommand creates the serve command exposing graph state over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags buildFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve [records.json]",
		Short: "Serve graph state and live positions over HTTP",
		Long: `Serve graph state and live positions over HTTP.

The serve command builds the graph, keeps the force simulation running, and
exposes it to rendering frontends:

  GET  /healthz        liveness probe
  GET  /api/graph      current graph with positions as JSON
  GET  /api/anchors    anchor legend entries as JSON
  GET  /api/positions  live position stream (server-sent events)
  POST /api/reheat     bump the simulation back to full energy`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], flags, addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

// runServe builds the graph and blocks serving HTTP until ctx is canceled.
func (c *CLI) runServe(ctx context.Context, input string, flags buildFlags, addr string) error {
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

	srv := newGraphServer(runner, result, c.Logger)
	go srv.tickLoop(ctx)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	c.Logger.Info("serving", "addr", addr, "nodes", result.Stats.NodeCount)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// =============================================================================
// GraphServer - HTTP Surface
// =============================================================================

// graphServer owns the simulation loop and serializes access to it. The
// engine is single-consumer, so every engine touch happens under mu.
type graphServer struct {
	mu     sync.Mutex
	runner *pipeline.Runner
	result *pipeline.Result
	logger *log.Logger
}

func newGraphServer(runner *pipeline.Runner, result *pipeline.Result, logger *log.Logger) *graphServer {
	return &graphServer{runner: runner, result: result, logger: logger}
}

// tickLoop advances the simulation at a fixed rate until ctx is canceled.
func (s *graphServer) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(serveTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.runner.Engine().Tick()
			s.mu.Unlock()
		}
	}
}

// routes builds the chi router.
func (s *graphServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/anchors", s.handleAnchors)
		r.Get("/positions", s.handlePositions)
		r.Post("/reheat", s.handleReheat)
	})
	return r
}

func (s *graphServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGraph returns the full graph with current positions.
func (s *graphServer) handleGraph(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	data, err := graph.MarshalGraph(s.result.Graph)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

// handleAnchors returns the legend entries for both anchor kinds.
func (s *graphServer) handleAnchors(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	var infos []graph.AnchorInfo
	if s.result.TagAnchors != nil {
		infos = append(infos, s.result.TagAnchors.Infos...)
	}
	if s.result.PersonAnchors != nil {
		infos = append(infos, s.result.PersonAnchors.Infos...)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, infos)
}

// positionFrame is one SSE payload: where every node sits right now.
type positionFrame struct {
	Tick      int            `json:"tick"`
	Alpha     float64        `json:"alpha"`
	State     string         `json:"state"`
	Positions []nodePosition `json:"positions"`
}

type nodePosition struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// handlePositions streams position frames as server-sent events until the
// client disconnects.
func (s *graphServer) handlePositions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(serveTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			frame := s.snapshot()
			data, err := json.Marshal(frame)
			if err != nil {
				s.logger.Error("encode frame", "err", err)
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// snapshot captures the current frame under the simulation lock.
func (s *graphServer) snapshot() positionFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	engine := s.runner.Engine()
	frame := positionFrame{
		Tick:  engine.TickCount(),
		Alpha: engine.Alpha(),
		State: engine.State().String(),
	}
	for _, n := range s.result.Graph.Nodes() {
		frame.Positions = append(frame.Positions, nodePosition{ID: n.ID, X: n.X, Y: n.Y})
	}
	return frame
}

// handleReheat bumps the simulation back to full energy.
func (s *graphServer) handleReheat(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.runner.Engine().Reheat()
	alpha := s.runner.Engine().Alpha()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]float64{"alpha": alpha})
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
