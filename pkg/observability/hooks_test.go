package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Build hooks
	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "star", 100)
	b.OnBuildComplete(ctx, "star", 100, 99, time.Second, nil)
	b.OnAnchorPass(ctx, "tag", 12)
	b.OnSkippedReference(ctx, "hub-1", "missing")

	// Simulation hooks
	s := NoopSimulationHooks{}
	s.OnTick(ctx, 1, 1.0)
	s.OnCooled(ctx, 300)
	s.OnReheat(ctx, 600, 0.1)

	// Throttle hooks
	th := NoopThrottleHooks{}
	th.OnThrottleTripped(ctx, "tag", 21, 20)
	th.OnThrottleCleared(ctx, "tag", 19, 20)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Simulation().(NoopSimulationHooks); !ok {
		t.Error("Simulation() should return NoopSimulationHooks by default")
	}
	if _, ok := Throttle().(NoopThrottleHooks); !ok {
		t.Error("Throttle() should return NoopThrottleHooks by default")
	}

	// Set custom hooks
	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customSim := &testSimulationHooks{}
	SetSimulationHooks(customSim)
	if Simulation() != customSim {
		t.Error("SetSimulationHooks should set custom hooks")
	}

	customThrottle := &testThrottleHooks{}
	SetThrottleHooks(customThrottle)
	if Throttle() != customThrottle {
		t.Error("SetThrottleHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)
	SetBuildHooks(nil)
	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}

	Reset()
}

// testBuildHooks records build events for assertions.
type testBuildHooks struct {
	starts  int
	skipped int
}

func (h *testBuildHooks) OnBuildStart(context.Context, string, int) { h.starts++ }
func (h *testBuildHooks) OnBuildComplete(context.Context, string, int, int, time.Duration, error) {
}
func (h *testBuildHooks) OnAnchorPass(context.Context, string, int)          {}
func (h *testBuildHooks) OnSkippedReference(context.Context, string, string) { h.skipped++ }

type testSimulationHooks struct{ ticks int }

func (h *testSimulationHooks) OnTick(context.Context, int, float64)   { h.ticks++ }
func (h *testSimulationHooks) OnCooled(context.Context, int)          {}
func (h *testSimulationHooks) OnReheat(context.Context, int, float64) {}

type testThrottleHooks struct{ tripped int }

func (h *testThrottleHooks) OnThrottleTripped(context.Context, string, int, int) { h.tripped++ }
func (h *testThrottleHooks) OnThrottleCleared(context.Context, string, int, int) {}
