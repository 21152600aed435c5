// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync"
	"time"
)

// Frames is a manual frame scheduler with a simulated clock. Callbacks
// requested during a step fire on the next step, like animation frames.
type Frames struct {
	mu      sync.Mutex
	now     time.Time
	nextID  int
	pending map[int]func(time.Time)
	order   []int
}

func NewFrames() *Frames {
	return &Frames{
		now:     time.Unix(1_700_000_000, 0),
		pending: make(map[int]func(time.Time)),
	}
}

// Request implements frame.Scheduler.
func (f *Frames) Request(cb func(now time.Time)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	f.pending[id] = cb
	f.order = append(f.order, id)

	return func() {
		f.mu.Lock()
		delete(f.pending, id)
		f.mu.Unlock()
	}
}

// Now returns the simulated time.
func (f *Frames) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Pending reports how many callbacks wait for the next step.
func (f *Frames) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Step advances the clock by d and fires the callbacks that were pending.
func (f *Frames) Step(d time.Duration) int {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	order := f.order
	f.order = nil
	var due []func(time.Time)
	for _, id := range order {
		if cb, ok := f.pending[id]; ok {
			due = append(due, cb)
			delete(f.pending, id)
		}
	}
	f.mu.Unlock()

	for _, cb := range due {
		cb(now)
	}
	return len(due)
}

// Run steps n times by d.
func (f *Frames) Run(n int, d time.Duration) {
	for range n {
		f.Step(d)
	}
}
