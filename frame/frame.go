// SPDX-License-Identifier: EPL-2.0

// Package frame drives per-frame callbacks at animation-frame cadence.
package frame

import (
	"sync"
	"time"
)

// DefaultRate is the frame rate used when none is given.
const DefaultRate = 60

// Scheduler runs cb once on the next frame. The returned function cancels
// the request if it has not fired yet.
type Scheduler interface {
	Request(cb func(now time.Time)) (cancel func())
}

// Ticker is a Scheduler backed by a wall clock ticker. The ticking goroutine
// starts on the first request and runs until Stop.
type Ticker struct {
	interval time.Duration

	mu      sync.Mutex
	nextID  int
	pending map[int]func(time.Time)
	order   []int
	started bool
	stopped bool
	done    chan struct{}
}

func NewTicker(fps int) *Ticker {
	if fps <= 0 {
		fps = DefaultRate
	}
	return &Ticker{
		interval: time.Second / time.Duration(fps),
		pending:  make(map[int]func(time.Time)),
		done:     make(chan struct{}),
	}
}

func (t *Ticker) Request(cb func(now time.Time)) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return func() {}
	}
	if !t.started {
		t.started = true
		go t.loop()
	}

	t.nextID++
	id := t.nextID
	t.pending[id] = cb
	t.order = append(t.order, id)

	return func() {
		t.mu.Lock()
		delete(t.pending, id)
		t.mu.Unlock()
	}
}

// Stop ends the ticking goroutine. Pending callbacks never fire.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped {
		return
	}
	t.stopped = true
	t.pending = make(map[int]func(time.Time))
	t.order = nil
	close(t.done)
}

func (t *Ticker) loop() {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	for {
		select {
		case <-t.done:
			return
		case now := <-tick.C:
			t.fire(now)
		}
	}
}

func (t *Ticker) fire(now time.Time) {
	t.mu.Lock()
	order := t.order
	t.order = nil
	due := make([]func(time.Time), 0, len(order))
	for _, id := range order {
		if cb, ok := t.pending[id]; ok {
			due = append(due, cb)
			delete(t.pending, id)
		}
	}
	t.mu.Unlock()

	for _, cb := range due {
		cb(now)
	}
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(cb func(now time.Time)) (cancel func())

func (f SchedulerFunc) Request(cb func(now time.Time)) func() { return f(cb) }

// Wrap returns a Scheduler whose callbacks run through around, which
// typically takes a lock before calling the frame callback.
func Wrap(s Scheduler, around func(fn func())) Scheduler {
	return SchedulerFunc(func(cb func(now time.Time)) func() {
		return s.Request(func(now time.Time) {
			around(func() { cb(now) })
		})
	})
}
