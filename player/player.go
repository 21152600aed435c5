// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math"
	"time"

	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/frame"
	"github.com/ik5/audwave/utils"
	"github.com/rs/zerolog"
)

// DefaultSeekStep is the skip distance in seconds.
const DefaultSeekStep = 5.0

type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Range is a time span in seconds.
type Range struct {
	Start, End float64
}

// Selection supplies the selected time ranges playback loops over.
type Selection interface {
	SelectedRanges() []Range
}

// Media is the attached audio as far as the clock is concerned.
type Media interface {
	Duration() float64
	SetVolume(v float64)
	SetMuted(m bool)
	SetRate(r float64)
}

type Options struct {
	Scheduler frame.Scheduler
	Emitter   events.Emitter
	Selection Selection
	SeekStep  float64
	Logger    zerolog.Logger
}

// Player owns the playback clock. It is not safe for concurrent use; the
// scheduler's callbacks must be serialized with the other calls.
type Player struct {
	sched    frame.Scheduler
	emit     events.Emitter
	sel      Selection
	seekStep float64
	log      zerolog.Logger

	media   Media
	backend Backend

	state     State
	ended     bool
	destroyed bool
	current   float64

	loop        *Range
	loopFromSel bool
	to          float64
	hasTo       bool
	lastTick    time.Time
	resync      bool
	cancelFrame func()

	volume float64
	muted  bool
	rate   float64
}

func New(opts Options) *Player {
	if opts.Emitter == nil {
		opts.Emitter = events.Discard
	}
	if opts.Scheduler == nil {
		opts.Scheduler = frame.NewTicker(frame.DefaultRate)
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = DefaultSeekStep
	}
	return &Player{
		sched:    opts.Scheduler,
		emit:     opts.Emitter,
		sel:      opts.Selection,
		seekStep: opts.SeekStep,
		log:      opts.Logger,
		volume:   1,
		rate:     1,
	}
}

// Attach connects the player to m through backend and rewinds the clock.
func (p *Player) Attach(m Media, backend Backend) {
	if p.destroyed {
		return
	}
	p.detach()

	p.media = m
	p.backend = backend
	p.current = 0
	p.ended = false
	p.state = Stopped

	m.SetVolume(p.volume)
	m.SetMuted(p.muted)
	m.SetRate(p.rate)
	backend.SetVolume(p.volume)
	backend.SetMuted(p.muted)
	backend.SetRate(p.rate)
}

func (p *Player) detach() {
	p.stopWatch()
	if p.backend != nil && p.backend.CanPause() {
		p.backend.DisconnectSource()
	}
	p.media = nil
	p.backend = nil
	p.loop = nil
	p.hasTo = false
	p.state = Stopped
}

func (p *Player) SetSelection(s Selection) { p.sel = s }

func (p *Player) ready() bool {
	return !p.destroyed && p.media != nil && p.backend != nil
}

// Play starts from the current time.
func (p *Player) Play() {
	p.play(0, 0, false, false)
}

// PlayRange plays from from and pauses at to. A to not after from means no end.
func (p *Player) PlayRange(from, to float64) {
	p.play(from, to, true, to > from)
}

func (p *Player) play(from, to float64, hasFrom, hasTo bool) {
	if !p.ready() || p.state == Playing {
		return
	}

	duration := p.Duration()
	if p.ended {
		p.ended = false
		start := 0.0
		if hasFrom {
			start = from
		}
		p.seek(start)
	}

	p.loop, p.loopFromSel, p.hasTo = nil, false, false
	if r, ok := p.selectedRange(); ok {
		p.loop = &r
		p.loopFromSel = true
		if p.current < r.Start || p.current >= r.End {
			p.current = r.Start
		}
	} else {
		if hasFrom {
			p.current = utils.Clamp(from, 0, duration)
		}
		if hasTo {
			p.to = utils.Clamp(to, 0, duration)
			p.hasTo = true
		}
	}

	p.backend.ConnectSource(p.current)
	if err := p.backend.PlayAudio(); err != nil {
		p.log.Error().Err(err).Msg("starting audio")
		p.backend.DisconnectSource()
		return
	}

	p.state = Playing
	p.resync = true
	p.watch()
	p.emit.Emit(events.Event{Name: events.Play, Value: p.current})
}

// selectedRange spans every selected range, clamped to the duration.
func (p *Player) selectedRange() (Range, bool) {
	if p.sel == nil {
		return Range{}, false
	}
	ranges := p.sel.SelectedRanges()
	if len(ranges) == 0 {
		return Range{}, false
	}

	out := Range{Start: math.Inf(1), End: math.Inf(-1)}
	for _, r := range ranges {
		out.Start = min(out.Start, r.Start)
		out.End = max(out.End, r.End)
	}
	d := p.Duration()
	out.Start = utils.Clamp(out.Start, 0, d)
	out.End = utils.Clamp(out.End, 0, d)
	if out.End <= out.Start {
		return Range{}, false
	}
	return out, true
}

func (p *Player) watch() {
	p.cancelFrame = p.sched.Request(p.tick)
}

func (p *Player) stopWatch() {
	if p.cancelFrame != nil {
		p.cancelFrame()
		p.cancelFrame = nil
	}
}

// tick advances the clock by the wall time since the previous frame.
func (p *Player) tick(now time.Time) {
	p.cancelFrame = nil
	if !p.ready() || p.state != Playing {
		return
	}

	// the first frame is when audio actually starts; align the source to
	// the clock and measure from here
	if p.resync {
		p.resync = false
		p.lastTick = now
		p.backend.UpdateCurrentSourceTime(p.current)
		p.emit.Emit(events.Event{Name: events.Playing, Value: p.current})
		p.watch()
		return
	}

	elapsed := now.Sub(p.lastTick).Seconds() * p.rate
	p.lastTick = now
	next := p.current + elapsed

	if p.loopFromSel {
		if r, ok := p.selectedRange(); ok {
			p.loop = &r
		} else {
			p.loop, p.loopFromSel = nil, false
		}
	}

	if p.loop != nil && next >= p.loop.End {
		p.current = p.loop.Start
		p.restart()
		p.emit.Emit(events.Event{Name: events.Playing, Value: p.current})
		p.watch()
		return
	}

	if p.hasTo && next >= p.to {
		p.current = p.to
		p.emit.Emit(events.Event{Name: events.Playing, Value: p.current})
		p.Pause()
		return
	}

	duration := p.Duration()
	if next >= duration {
		p.current = duration
		p.emit.Emit(events.Event{Name: events.Playing, Value: p.current})
		p.halt()
		p.state = Paused
		p.ended = true
		p.emit.Emit(events.Event{Name: events.PlayEnd, Value: p.current})
		return
	}

	p.current = next
	p.emit.Emit(events.Event{Name: events.Playing, Value: p.current})
	p.watch()
}

// restart reconnects the source at the current time and keeps playing.
func (p *Player) restart() {
	p.backend.DisconnectSource()
	p.backend.ConnectSource(p.current)
	if err := p.backend.PlayAudio(); err != nil {
		p.log.Error().Err(err).Float64("time", p.current).Msg("restarting audio")
	}
}

// halt stops the frame loop and the audio and forgets the play range.
func (p *Player) halt() {
	p.stopWatch()
	if p.backend.CanPause() {
		p.backend.DisconnectSource()
	}
	p.loop, p.loopFromSel, p.hasTo = nil, false, false
}

func (p *Player) Pause() {
	if !p.ready() || p.state != Playing {
		return
	}
	p.halt()
	p.state = Paused
	p.emit.Emit(events.Event{Name: events.Pause, Value: p.current})
	p.emit.Emit(events.Event{Name: events.Seek, Value: p.current})
}

// Stop rewinds to 0. Unlike Pause it reports no seek.
func (p *Player) Stop() {
	if !p.ready() || p.state == Stopped {
		return
	}
	p.halt()
	p.state = Stopped
	p.ended = false
	p.current = 0
	p.emit.Emit(events.Event{Name: events.Pause, Value: 0})
}

// Seek clamps t to [0, duration]. While playing the source is reconnected
// at t and playback continues.
func (p *Player) Seek(t float64) {
	if !p.ready() {
		return
	}
	p.seek(t)
	p.emit.Emit(events.Event{Name: events.Seek, Value: p.current})
}

func (p *Player) seek(t float64) {
	p.current = utils.Clamp(t, 0, p.Duration())
	p.ended = false
	if p.hasTo && p.current >= p.to {
		p.hasTo = false
	}
	if p.state == Playing {
		p.restart()
	}
}

func (p *Player) SkipForward(step float64) {
	if step <= 0 {
		step = p.seekStep
	}
	p.Seek(p.current + step)
}

func (p *Player) SkipBackward(step float64) {
	if step <= 0 {
		step = p.seekStep
	}
	p.Seek(p.current - step)
}

// SetRate ignores rates that are not positive.
func (p *Player) SetRate(r float64) {
	if p.destroyed || r <= 0 {
		return
	}
	p.rate = r
	if p.ready() {
		p.media.SetRate(r)
		p.backend.SetRate(r)
	}
	p.emit.Emit(events.Event{Name: events.RateChanged, Value: r})
}

// SetVolume clamps v to [0, 1].
func (p *Player) SetVolume(v float64) {
	if p.destroyed {
		return
	}
	p.volume = utils.Clamp(v, 0, 1)
	if p.ready() {
		p.media.SetVolume(p.volume)
		p.backend.SetVolume(p.volume)
	}
	p.emit.Emit(events.Event{Name: events.VolumeChange, Value: p.volume})
}

func (p *Player) SetMuted(m bool) {
	if p.destroyed {
		return
	}
	p.muted = m
	if p.ready() {
		p.media.SetMuted(m)
		p.backend.SetMuted(m)
	}
	p.emit.Emit(events.Event{Name: events.Muted, Flag: m})
}

// Destroy detaches the audio. Every later call is a no-op.
func (p *Player) Destroy() {
	if p.destroyed {
		return
	}
	p.detach()
	p.destroyed = true
}

func (p *Player) Duration() float64 {
	if p.media == nil {
		return 0
	}
	return p.media.Duration()
}

func (p *Player) CurrentTime() float64 { return p.current }
func (p *Player) State() State         { return p.state }
func (p *Player) Playing() bool        { return p.state == Playing }
func (p *Player) Ended() bool          { return p.ended }
func (p *Player) Destroyed() bool      { return p.destroyed }
func (p *Player) Attached() bool       { return p.ready() }
func (p *Player) Rate() float64        { return p.rate }
func (p *Player) Volume() float64      { return p.volume }
func (p *Player) Muted() bool          { return p.muted }

// Loop returns the active loop range.
func (p *Player) Loop() (Range, bool) {
	if p.loop == nil {
		return Range{}, false
	}
	return *p.loop, true
}
