// SPDX-License-Identifier: EPL-2.0

package events

import "sync"

// Queue buffers events until Flush. The facade emits through a Queue while
// it holds its lock and flushes after releasing it, so handlers can call
// back into the facade.
type Queue struct {
	mu      sync.Mutex
	pending []Event
	out     Emitter
}

func NewQueue(out Emitter) *Queue {
	return &Queue{out: out}
}

func (q *Queue) Emit(e Event) {
	q.mu.Lock()
	q.pending = append(q.pending, e)
	q.mu.Unlock()
}

// Flush delivers queued events in order, including any queued by the
// handlers themselves while flushing.
func (q *Queue) Flush() {
	for {
		q.mu.Lock()
		batch := q.pending
		q.pending = nil
		q.mu.Unlock()

		if len(batch) == 0 {
			return
		}
		for _, e := range batch {
			q.out.Emit(e)
		}
	}
}

// Len reports how many events wait for Flush.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
