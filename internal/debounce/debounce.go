// Package debounce は最後の呼び出しから一定時間後に 1 回だけ関数を実行します。
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay matches the editor's re-check delay after a keystroke.
const DefaultDelay = 500 * time.Millisecond

// Timer runs the most recently triggered function once the delay has passed
// without another Trigger.
type Timer struct {
	mu    sync.Mutex
	delay time.Duration
	t     *time.Timer
	gen   uint64
}

func New(delay time.Duration) *Timer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Timer{delay: delay}
}

func (d *Timer) Delay() time.Duration { return d.delay }

// Trigger cancels any pending call and schedules fn.
func (d *Timer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.t != nil {
		d.t.Stop()
	}
	d.gen++
	gen := d.gen
	d.t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.t = nil
		}
		d.mu.Unlock()
		// a newer Trigger may have won the race with this callback
		if current {
			fn()
		}
	})
}

// Stop cancels the pending call. It reports whether one was pending.
func (d *Timer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.t == nil {
		return false
	}
	d.t.Stop()
	d.t = nil
	return true
}
