package watcher

import (
	"sort"
	"sync"
	"time"
)

// DefaultWindow is the quiet period used when no window is configured.
const DefaultWindow = 100 * time.Millisecond

// Debouncer coalesces bursts of notifications into settlements.
type Debouncer struct {
	window    time.Duration
	onSettled func(changed []string)

	mu      sync.Mutex
	timer   *time.Timer
	changed map[string]struct{}
	running bool
	rerun   bool
	stopped bool
}

// NewDebouncer returns a Debouncer that calls onSettled once the
// notifications have been quiet for window. The callback receives the sorted
// names passed to Notify since the previous settlement.
func NewDebouncer(window time.Duration, onSettled func(changed []string)) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Debouncer{
		window:    window,
		onSettled: onSettled,
		changed:   make(map[string]struct{}),
	}
}

// Notify records a raw change notification and restarts the quiet window.
// An empty name schedules a settlement without recording a file.
func (d *Debouncer) Notify(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if name != "" {
		d.changed[name] = struct{}{}
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

// Stop cancels any pending settlement. A settlement already running is
// allowed to finish but no further one is started.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	if d.running {
		d.rerun = true
		d.mu.Unlock()
		return
	}
	d.running = true
	changed := d.drainLocked()
	d.mu.Unlock()

	for {
		d.onSettled(changed)

		d.mu.Lock()
		if !d.rerun || d.stopped {
			d.running = false
			d.rerun = false
			d.mu.Unlock()
			return
		}
		d.rerun = false
		changed = d.drainLocked()
		d.mu.Unlock()
	}
}

func (d *Debouncer) drainLocked() []string {
	names := make([]string, 0, len(d.changed))
	for name := range d.changed {
		names = append(names, name)
	}
	sort.Strings(names)
	d.changed = make(map[string]struct{})
	return names
}
