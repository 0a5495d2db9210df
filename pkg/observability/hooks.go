// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about graph rebuilds, simulation ticks, and throttling.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    observability.SetSimulationHooks(&mySimHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(ctx, topology, recordCount)
//	// ... build graph ...
//	observability.Build().OnBuildComplete(ctx, topology, nodeCount, linkCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from graph construction.
type BuildHooks interface {
	// Rebuild events
	OnBuildStart(ctx context.Context, topology string, recordCount int)
	OnBuildComplete(ctx context.Context, topology string, nodeCount, linkCount int, duration time.Duration, err error)

	// Anchor enhancement events
	OnAnchorPass(ctx context.Context, anchorKind string, anchorCount int)

	// OnSkippedReference records a reference whose target record was absent.
	OnSkippedReference(ctx context.Context, sourceID, targetID string)
}

// =============================================================================
// Simulation Hooks
// =============================================================================

// SimulationHooks receives events from the force simulation.
type SimulationHooks interface {
	// OnTick records one simulation step with the current alpha.
	OnTick(ctx context.Context, tick int, alpha float64)

	// OnCooled records the first time alpha crosses the cooling floor.
	OnCooled(ctx context.Context, tick int)

	// OnReheat records a periodic alpha bump after cooling.
	OnReheat(ctx context.Context, tick int, alpha float64)
}

// =============================================================================
// Throttle Hooks
// =============================================================================

// ThrottleHooks receives events from the anchor auto-throttle.
type ThrottleHooks interface {
	// OnThrottleTripped records an anchor kind exceeding the ceiling.
	OnThrottleTripped(ctx context.Context, anchorKind string, count, ceiling int)

	// OnThrottleCleared records the count dropping back under the ceiling.
	OnThrottleCleared(ctx context.Context, anchorKind string, count, ceiling int)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(context.Context, string, int) {}
func (NoopBuildHooks) OnBuildComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopBuildHooks) OnAnchorPass(context.Context, string, int)          {}
func (NoopBuildHooks) OnSkippedReference(context.Context, string, string) {}

// NoopSimulationHooks is a no-op implementation of SimulationHooks.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnTick(context.Context, int, float64)   {}
func (NoopSimulationHooks) OnCooled(context.Context, int)          {}
func (NoopSimulationHooks) OnReheat(context.Context, int, float64) {}

// NoopThrottleHooks is a no-op implementation of ThrottleHooks.
type NoopThrottleHooks struct{}

func (NoopThrottleHooks) OnThrottleTripped(context.Context, string, int, int) {}
func (NoopThrottleHooks) OnThrottleCleared(context.Context, string, int, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks    BuildHooks      = NoopBuildHooks{}
	simHooks      SimulationHooks = NoopSimulationHooks{}
	throttleHooks ThrottleHooks   = NoopThrottleHooks{}
	hooksMu       sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any rebuild.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetSimulationHooks registers custom simulation hooks.
// This should be called once at application startup before the engine starts.
func SetSimulationHooks(h SimulationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		simHooks = h
	}
}

// SetThrottleHooks registers custom throttle hooks.
// This should be called once at application startup.
func SetThrottleHooks(h ThrottleHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		throttleHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return simHooks
}

// Throttle returns the registered throttle hooks.
func Throttle() ThrottleHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return throttleHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	simHooks = NoopSimulationHooks{}
	throttleHooks = NoopThrottleHooks{}
}
