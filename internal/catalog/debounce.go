package catalog

import (
	"sync"
	"time"
)

// DefaultDebounce is how long the filter must stay unchanged before it applies
const DefaultDebounce = 300 * time.Millisecond

// Handle is a pending scheduled callback
type Handle interface {
	// Cancel stops the callback if it has not started yet
	Cancel() bool
}

// Scheduler runs fn once after delay
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Handle
}

// TimerScheduler schedules callbacks on runtime timers
type TimerScheduler struct{}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Cancel() bool {
	return h.t.Stop()
}

// Schedule implements Scheduler
func (TimerScheduler) Schedule(delay time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(delay, fn)}
}

// Debouncer delays a callback until triggers stop arriving for the delay.
// Each Trigger supersedes the previous one; only the last scheduled callback
// runs.
type Debouncer struct {
	scheduler Scheduler
	delay     time.Duration

	mu      sync.Mutex
	pending Handle
	gen     uint64
}

// NewDebouncer creates a debouncer. A nil scheduler uses runtime timers.
func NewDebouncer(scheduler Scheduler, delay time.Duration) *Debouncer {
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	return &Debouncer{
		scheduler: scheduler,
		delay:     delay,
	}
}

// Trigger cancels any pending callback and schedules fn
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
	}
	d.gen++
	gen := d.gen
	d.pending = d.scheduler.Schedule(d.delay, func() {
		d.mu.Lock()
		// a timer may fire after it was superseded but before Cancel ran
		if gen != d.gen {
			d.mu.Unlock()
			return
		}
		d.pending = nil
		d.mu.Unlock()
		fn()
	})
}

// Cancel drops any pending callback
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending != nil {
		d.pending.Cancel()
		d.pending = nil
	}
	d.gen++
}

// Pending reports whether a callback is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
