// SPDX-License-Identifier: EPL-2.0

package channeldata

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
)

// Source is the decoded sample data ChannelData reads from.
type Source interface {
	// Chunks returns [chunk][channel]samples.
	Chunks() [][][]float32
	Channels() int
	SampleRate() int
	// Version changes whenever the sample data changes.
	Version() uint64
}

type Options struct {
	Denoise bool

	// Enabled lists the source channels to produce, in order. Empty means all.
	Enabled []int

	// Worker defaults to Inline.
	Worker Worker
	Logger zerolog.Logger
}

type cacheKey struct {
	version uint64
	denoise bool
	enabled string
}

// ChannelData holds the processed per-channel buffers of a Source. The
// buffers stay valid until the next Recalc that changes them; the ones it
// replaces are reused by the Recalc after that.
type ChannelData struct {
	src Source
	log zerolog.Logger

	mu      sync.Mutex
	opts    Options
	key     cacheKey
	valid   bool
	out     [][]float32
	owned   []bool
	indexes []int
	spare   [][]float32
}

func New(src Source, opts Options) *ChannelData {
	if opts.Worker == nil {
		opts.Worker = Inline()
	}
	return &ChannelData{
		src:  src,
		opts: opts,
		log:  opts.Logger,
	}
}

func (c *ChannelData) SetDenoise(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Denoise = on
}

func (c *ChannelData) SetEnabled(channels []int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Enabled = slices.Clone(channels)
}

func (c *ChannelData) enabled(total int) []int {
	if len(c.opts.Enabled) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	out := make([]int, 0, len(c.opts.Enabled))
	for _, ch := range c.opts.Enabled {
		if ch >= 0 && ch < total {
			out = append(out, ch)
		}
	}
	return out
}

// Recalc rebuilds the buffers if the source data or the settings changed
// since the last run. A run superseded by ctx or by new source data keeps
// the previous buffers and returns nil.
func (c *ChannelData) Recalc(ctx context.Context) error {
	c.mu.Lock()
	indexes := c.enabled(c.src.Channels())
	key := cacheKey{
		version: c.src.Version(),
		denoise: c.opts.Denoise,
		enabled: fmtIndexes(indexes),
	}
	if c.valid && key == c.key {
		c.mu.Unlock()
		return nil
	}
	chunks := c.src.Chunks()
	rate := c.src.SampleRate()
	spare := c.spare
	c.spare = nil
	worker := c.opts.Worker
	c.mu.Unlock()

	out := make([][]float32, len(indexes))
	owned := make([]bool, len(indexes))
	err := worker.Run(ctx, len(indexes), func(_ context.Context, i int) error {
		var dst []float32
		if i < len(spare) {
			dst = spare[i]
		}
		out[i], owned[i] = process(chunks, indexes[i], rate, key.denoise, dst)
		return nil
	})

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.log.Debug().Msg("channel recalc superseded")
		return nil
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.src.Version() != key.version {
		c.log.Debug().Msg("source changed during channel recalc")
		return nil
	}

	c.spare = c.spare[:0]
	for i, buf := range c.out {
		if c.owned[i] {
			c.spare = append(c.spare, buf)
		}
	}
	c.out, c.owned, c.indexes = out, owned, indexes
	c.key, c.valid = key, true

	return nil
}

// process returns the buffer for one channel and whether it owns it.
func process(chunks [][][]float32, ch, rate int, denoise bool, dst []float32) ([]float32, bool) {
	if len(chunks) == 1 {
		res := Smooth(chunks[0][ch], rate, denoise, dst)
		return res, denoise
	}

	total := 0
	for _, chunk := range chunks {
		total += len(chunk[ch])
	}
	if cap(dst) < total {
		dst = make([]float32, total)
	}
	dst = dst[:total]

	off := 0
	for _, chunk := range chunks {
		samples := chunk[ch]
		part := dst[off : off+len(samples)]
		if denoise {
			Smooth(samples, rate, true, part)
		} else {
			copy(part, samples)
		}
		off += len(samples)
	}
	return dst, true
}

func fmtIndexes(indexes []int) string {
	b := make([]byte, 0, len(indexes)*3)
	for _, i := range indexes {
		b = strconv.AppendInt(b, int64(i), 10)
		b = append(b, ',')
	}
	return string(b)
}

// Channels is the number of processed channels.
func (c *ChannelData) Channels() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.out)
}

// Channel returns the i-th processed channel, or nil.
func (c *ChannelData) Channel(i int) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.out) {
		return nil
	}
	return c.out[i]
}

// Index maps a processed channel back to its source channel.
func (c *ChannelData) Index(i int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.indexes) {
		return -1
	}
	return c.indexes[i]
}

// Len is the number of samples per channel.
func (c *ChannelData) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.out) == 0 {
		return 0
	}
	return len(c.out[0])
}
