// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultGrace is how long an unreferenced decoder survives before eviction.
const DefaultGrace = time.Second

// DefaultPool is the process-wide pool.
var DefaultPool = NewPool(DefaultGrace, zerolog.Nop())

type entry struct {
	url   string
	dec   *Decoder
	refs  int
	timer *time.Timer
	gen   int
}

// Pool keeps at most one Decoder per URL. Handles are reference counted;
// when the last handle is destroyed the decoder waits out a grace period
// and is evicted unless it is opened again first. Only one decoder can be
// waiting at any time.
type Pool struct {
	grace time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	entries map[string]*entry
	pending *entry
}

func NewPool(grace time.Duration, log zerolog.Logger) *Pool {
	return &Pool{
		grace:   grace,
		log:     log,
		entries: make(map[string]*entry),
	}
}

// Open returns a handle to the decoder for url, creating it with opts if
// needed. The options of the first opener win.
func (p *Pool) Open(url string, opts Options) *Handle {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending != nil && p.pending.url != url {
		p.evict(p.pending, "superseded")
	}

	e, ok := p.entries[url]
	if ok {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
			e.gen++
			if p.pending == e {
				p.pending = nil
			}
			p.log.Debug().Str("url", url).Msg("decoder renewed")
		}
		e.refs++
		return &Handle{pool: p, e: e}
	}

	e = &entry{url: url, dec: New(url, opts), refs: 1}
	p.entries[url] = e
	p.log.Debug().Str("url", url).Str("backend", string(e.dec.Backend())).Msg("decoder opened")

	return &Handle{pool: p, e: e}
}

// Len is the number of live decoders, waiting ones included.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// Pending is the URL of the decoder waiting out its grace period, or "".
func (p *Pool) Pending() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return ""
	}
	return p.pending.url
}

func (p *Pool) release(e *entry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e.refs--
	if e.refs > 0 || p.entries[e.url] != e {
		return
	}

	if p.grace <= 0 {
		p.evict(e, "released")
		return
	}

	if p.pending != nil && p.pending != e {
		p.evict(p.pending, "replaced")
	}
	p.pending = e
	e.gen++
	gen := e.gen
	e.timer = time.AfterFunc(p.grace, func() { p.expire(e, gen) })
}

func (p *Pool) expire(e *entry, gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// renewed or already evicted while the timer was firing
	if e.gen != gen || e.refs > 0 || p.entries[e.url] != e {
		return
	}
	p.evict(e, "grace elapsed")
}

// evict must be called with mu held.
func (p *Pool) evict(e *entry, reason string) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	if p.pending == e {
		p.pending = nil
	}
	if p.entries[e.url] == e {
		delete(p.entries, e.url)
	}
	e.dec.release()
	p.log.Debug().Str("url", e.url).Str("reason", reason).Msg("decoder evicted")
}

// Handle is one consumer's reference to a pooled Decoder.
type Handle struct {
	pool *Pool
	e    *entry
	once sync.Once
}

func (h *Handle) Decoder() *Decoder { return h.e.dec }

// Destroy gives the reference back. Repeated calls do nothing.
func (h *Handle) Destroy() {
	h.once.Do(func() { h.pool.release(h.e) })
}
