package pipeline

import (
	"sync"
	"time"
)

// DefaultDebounce is the window within which rebuild requests coalesce.
// Record edits often arrive in bursts; one rebuild at the end is enough.
const DefaultDebounce = 100 * time.Millisecond

// Debouncer coalesces bursts of rebuild triggers into a single callback
// fired after the burst goes quiet. Safe for concurrent use.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
}

// NewDebouncer creates a debouncer invoking fn once per quiet burst.
// A delay of 0 uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay == 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger requests a rebuild. Repeated triggers within the delay window
// restart the timer, so the callback fires once after the last trigger.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fn)
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
