// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"

	"github.com/ik5/audwave/audio"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// maxEmptyReads bounds how many (0, nil) reads a native source may return
// in a row before the decode fails.
const maxEmptyReads = 100

// state is the resumable position of the chunk loop.
type state struct {
	next      int
	cancelled bool
	done      bool
}

// Decoder turns one encoded file into per-channel float chunks. Chunk i is
// always written before chunk i+1 and never rewritten.
type Decoder struct {
	url  string
	opts Options
	log  zerolog.Logger

	flight singleflight.Group
	life   context.Context
	stop   context.CancelFunc

	mu         sync.Mutex
	sampleRate int
	channels   int
	frames     int64 // expected frames per channel, 0 when unknown
	written    int64 // frames per channel held in chunks
	chunks     [][][]float32
	st         state
	version    uint64
	released   bool
	waiters    int

	nextID    int
	listeners map[int]func(chunk, total int)
}

func New(url string, opts Options) *Decoder {
	if opts.Backend == "" {
		opts.Backend = BackendStream
	}
	life, stop := context.WithCancel(context.Background())
	return &Decoder{
		url:       url,
		opts:      opts,
		log:       opts.Logger.With().Str("url", url).Logger(),
		life:      life,
		stop:      stop,
		listeners: make(map[int]func(int, int)),
	}
}

// Decode produces every remaining chunk of data. Only one decode runs at a
// time and every caller waits on it. The run belongs to the decoder, so it
// keeps going while any caller still waits; it stops once the last one
// leaves, on Cancel or on release. Decode returns nil when ctx ended or the
// decode was cancelled. Calling Decode on a fully decoded file returns at
// once without reporting progress.
func (d *Decoder) Decode(ctx context.Context, data []byte) error {
	for {
		if ctx.Err() != nil || d.Decoded() {
			return nil
		}

		d.mu.Lock()
		if d.released {
			d.mu.Unlock()
			return nil
		}
		d.st.cancelled = false
		d.waiters++
		d.mu.Unlock()

		ch := d.flight.DoChan("decode", func() (any, error) {
			return nil, d.run(d.life, data)
		})

		select {
		case res := <-ch:
			d.mu.Lock()
			d.waiters--
			cancelled := d.st.cancelled
			d.mu.Unlock()

			if res.Err != nil {
				return res.Err
			}
			if cancelled {
				return nil
			}
			// the run was abandoned by callers that left before this one joined
		case <-ctx.Done():
			d.mu.Lock()
			d.waiters--
			d.mu.Unlock()
			return nil
		}
	}
}

// Cancel stops the running decode at the next chunk boundary, where the
// native source is closed. A later Decode resumes after the last written chunk.
func (d *Decoder) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.st.done {
		d.st.cancelled = true
	}
}

// OnProgress registers fn to run after every written chunk. total is 0
// while the length of the file is unknown.
func (d *Decoder) OnProgress(fn func(chunk, total int)) (off func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.listeners[id] = fn

	return func() {
		d.mu.Lock()
		delete(d.listeners, id)
		d.mu.Unlock()
	}
}

func (d *Decoder) run(ctx context.Context, data []byte) error {
	d.mu.Lock()
	if d.released || d.st.done {
		d.mu.Unlock()
		return nil
	}
	skip := d.written
	d.mu.Unlock()

	src, err := d.open(data)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.Close(); err != nil {
			d.log.Debug().Err(err).Msg("closing native source")
		}
	}()

	if skip > 0 {
		if err := discard(src, skip); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("resuming %s: %w", d.url, err)
		}
		d.log.Debug().Int64("frames", skip).Msg("resumed after cancelled decode")
	}

	window := d.windowFrames()
	for {
		if ctx.Err() != nil {
			d.log.Debug().Msg("decoder released")
			return nil
		}

		chunk, n, eof, err := readWindow(src, window, d.hint())
		if err != nil {
			return fmt.Errorf("decoding %s: %w", d.url, err)
		}

		d.mu.Lock()
		if d.st.cancelled || d.released || d.waiters == 0 {
			next := d.st.next
			d.mu.Unlock()
			d.log.Debug().Int("chunk", next).Msg("decode stopped")
			return nil
		}
		idx := d.st.next
		if n > 0 {
			d.chunks = append(d.chunks, chunk)
			d.written += n
			d.st.next++
			d.version++
		}
		if eof {
			d.st.done = true
			d.frames = d.written
		}
		total := d.totalChunks()
		done := d.st.done
		due := make([]func(int, int), 0, len(d.listeners))
		for _, fn := range d.listeners {
			due = append(due, fn)
		}
		d.mu.Unlock()

		if n > 0 {
			d.log.Debug().Int("chunk", idx).Int("total", total).Msg("chunk decoded")
			for _, fn := range due {
				fn(idx, total)
			}
		}
		if done {
			return nil
		}

		runtime.Gosched()
	}
}

// open builds the native source and the conversion stages the backend needs.
func (d *Decoder) open(data []byte) (audio.Source, error) {
	if d.opts.Registry == nil {
		return nil, ErrNoRegistry
	}
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	dec, format, err := d.opts.Registry.Lookup(data[:min(len(data), audio.SniffLen)])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.url, err)
	}

	native, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening %s as %s: %w", d.url, format, err)
	}

	src := native
	switch d.opts.Backend {
	case BackendStream:
	case BackendContext:
		if d.opts.SampleRate <= 0 {
			_ = native.Close()
			return nil, ErrNoSampleRate
		}
		if native.SampleRate() != d.opts.SampleRate {
			src = audio.NewResampler(src, d.opts.SampleRate)
		}
	default:
		_ = native.Close()
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, d.opts.Backend)
	}

	if d.opts.Mono && src.Channels() > 1 {
		src = audio.NewMonoMixer(src)
	}

	d.mu.Lock()
	d.sampleRate = src.SampleRate()
	d.channels = src.Channels()
	if !d.st.done {
		d.frames = audio.Frames(src)
	}
	d.mu.Unlock()

	d.log.Debug().
		Str("format", format).
		Str("backend", string(d.opts.Backend)).
		Int("rate", src.SampleRate()).
		Int("channels", src.Channels()).
		Msg("native source opened")

	return src, nil
}

// windowFrames is the chunk length in frames; 0 means unbounded.
func (d *Decoder) windowFrames() int64 {
	if d.opts.Backend == BackendContext {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.opts.window() * float64(d.sampleRate))
}

// hint is the expected number of frames still to come, or 0.
func (d *Decoder) hint() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frames == 0 {
		return 0
	}
	return max(d.frames-d.written, 0)
}

// totalChunks must be called with mu held.
func (d *Decoder) totalChunks() int {
	if d.frames == 0 {
		return 0
	}
	if d.opts.Backend == BackendContext {
		return 1
	}
	window := d.opts.window() * float64(d.sampleRate)
	return int(math.Ceil(float64(d.frames) / window))
}

// readWindow reads up to window frames (all when window is 0) and
// deinterleaves them.
func readWindow(src audio.Source, window, hint int64) ([][]float32, int64, bool, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, 0, true, nil
	}

	capHint := hint
	if window > 0 && (capHint == 0 || capHint > window) {
		capHint = window
	}
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, 0, capHint)
	}

	bufFrames := max(src.BufSize()/channels, 256)
	buf := make([]float32, bufFrames*channels)

	var (
		frames int64
		empty  int
	)
	for window == 0 || frames < window {
		want := bufFrames
		if window > 0 {
			want = int(min(int64(bufFrames), window-frames))
		}

		n, err := src.ReadSamples(buf[:want*channels])
		got := n / channels
		for i := range got {
			for c := range channels {
				out[c] = append(out[c], buf[i*channels+c])
			}
		}
		frames += int64(got)

		if errors.Is(err, io.EOF) {
			return out, frames, true, nil
		}
		if err != nil {
			return nil, 0, false, fmt.Errorf("%w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, 0, false, ErrNoProgress
			}
			continue
		}
		empty = 0
	}

	return out, frames, false, nil
}

func discard(src audio.Source, frames int64) error {
	channels := src.Channels()
	buf := make([]float32, 4096*channels)
	empty := 0
	for frames > 0 {
		want := int(min(frames, 4096))
		n, err := src.ReadSamples(buf[:want*channels])
		frames -= int64(n / channels)
		if err != nil {
			return fmt.Errorf("%w", err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return ErrNoProgress
			}
		}
	}
	return nil
}

// release drops the chunks and stops any decode for good.
func (d *Decoder) release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.released = true
	d.st.cancelled = true
	d.stop()
	d.chunks = nil
	d.listeners = make(map[int]func(int, int))
	d.version++
}

func (d *Decoder) URL() string      { return d.url }
func (d *Decoder) Backend() Backend { return d.opts.Backend }

func (d *Decoder) SampleRate() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sampleRate
}

func (d *Decoder) Channels() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels
}

// Frames is the length per channel; before the end of a decode it is the
// length the native decoder announced, or 0.
func (d *Decoder) Frames() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frames == 0 {
		return d.written
	}
	return d.frames
}

// Duration in seconds.
func (d *Decoder) Duration() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sampleRate == 0 {
		return 0
	}
	n := d.frames
	if n == 0 {
		n = d.written
	}
	return float64(n) / float64(d.sampleRate)
}

// Chunks returns the written chunks as [chunk][channel]samples. The sample
// slices are shared and must not be modified.
func (d *Decoder) Chunks() [][][]float32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][][]float32, len(d.chunks))
	copy(out, d.chunks)
	return out
}

func (d *Decoder) ChunkCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chunks)
}

// Decoded reports whether every chunk has been written.
func (d *Decoder) Decoded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.st.done && !d.released
}

// Version changes whenever the sample data changes.
func (d *Decoder) Version() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.version
}
