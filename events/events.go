// SPDX-License-Identifier: EPL-2.0

package events

import (
	"sort"
	"sync"
)

// Name identifies an event kind.
type Name string

// Host-facing events.
const (
	Load             Name = "load"
	Loading          Name = "loading"
	Decode           Name = "decode"
	Play             Name = "play"
	Pause            Name = "pause"
	Playing          Name = "playing"
	Seek             Name = "seek"
	PlayEnd          Name = "playend"
	Zoom             Name = "zoom"
	Muted            Name = "muted"
	VolumeChange     Name = "volumeChange"
	RateChanged      Name = "rateChanged"
	Scroll           Name = "scroll"
	Resize           Name = "resize"
	RegionCreated    Name = "regionCreated"
	RegionUpdated    Name = "regionUpdated"
	RegionUpdatedEnd Name = "regionUpdatedEnd"
	RegionSelected   Name = "regionSelected"
	RegionRemoved    Name = "regionRemoved"
	Error            Name = "error"
)

// Draw fires on every visualizer frame, dry or not.
const Draw Name = "draw"

// Event is a single notification. Value carries the numeric payload (time,
// zoom level, volume, rate or scroll offset) and Flag the boolean one.
// Subject points at the component the event is about, such as a region.
type Event struct {
	Name    Name
	Value   float64
	Flag    bool
	Subject any
}

// Handler receives events.
type Handler func(Event)

// Emitter is what components publish through.
type Emitter interface {
	Emit(Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(Event) {})

// Bus delivers events synchronously to subscribed handlers in the order
// they subscribed.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Name]map[int]Handler
	any      map[int]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[Name]map[int]Handler),
		any:      make(map[int]Handler),
	}
}

// On subscribes h to name and returns a function that unsubscribes it.
func (b *Bus) On(name Name, h Handler) (off func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[name] == nil {
		b.handlers[name] = make(map[int]Handler)
	}
	b.handlers[name][id] = h

	return func() {
		b.mu.Lock()
		delete(b.handlers[name], id)
		b.mu.Unlock()
	}
}

// Once subscribes h for a single delivery.
func (b *Bus) Once(name Name, h Handler) (off func()) {
	var (
		once sync.Once
		stop func()
	)
	stop = b.On(name, func(e Event) {
		once.Do(func() {
			stop()
			h(e)
		})
	})
	return stop
}

// OnAny subscribes h to every event.
func (b *Bus) OnAny(h Handler) (off func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.any[id] = h

	return func() {
		b.mu.Lock()
		delete(b.any, id)
		b.mu.Unlock()
	}
}

// Emit calls the handlers of e.Name. Handlers run without the bus lock
// held so they may subscribe or emit in turn.
func (b *Bus) Emit(e Event) {
	b.mu.Lock()
	due := collect(b.handlers[e.Name], b.any)
	b.mu.Unlock()

	for _, h := range due {
		h(e)
	}
}

// Clear drops every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers = make(map[Name]map[int]Handler)
	b.any = make(map[int]Handler)
}

func collect(sets ...map[int]Handler) []Handler {
	type entry struct {
		id int
		h  Handler
	}
	var all []entry
	for _, set := range sets {
		for id, h := range set {
			all = append(all, entry{id, h})
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].id < all[j].id })

	out := make([]Handler, len(all))
	for i, e := range all {
		out[i] = e.h
	}
	return out
}
