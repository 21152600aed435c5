// SPDX-License-Identifier: EPL-2.0

package decoder

import (
	"context"
	"testing"
	"time"

	"github.com/ik5/audwave/internal/audiotest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gotest.tools/assert"
)

func TestPool_SharesDecoderPerURL(t *testing.T) {
	t.Parallel()

	p := NewPool(time.Minute, zerolog.Nop())
	a := p.Open("a", Options{Registry: wavRegistry()})
	b := p.Open("a", Options{Registry: wavRegistry(), Mono: true})
	c := p.Open("c", Options{Registry: wavRegistry()})

	assert.Equal(t, a.Decoder(), b.Decoder())
	assert.Assert(t, a.Decoder() != c.Decoder())
	assert.Equal(t, p.Len(), 2)

	// first opener's options win
	assert.Equal(t, b.Decoder().opts.Mono, false)
}

func TestPool_RenewWithinGrace(t *testing.T) {
	t.Parallel()

	p := NewPool(time.Minute, zerolog.Nop())
	h := p.Open("a", Options{Registry: wavRegistry()})
	dec := h.Decoder()
	require.NoError(t, dec.Decode(context.Background(), audiotest.SineWAV(8000, 1, 0.5)))
	chunks := dec.Chunks()

	h.Destroy()
	require.Equal(t, "a", p.Pending())

	h2 := p.Open("a", Options{Registry: wavRegistry()})
	require.Same(t, dec, h2.Decoder())
	require.Empty(t, p.Pending())
	require.True(t, h2.Decoder().Decoded())
	require.Equal(t, chunks, h2.Decoder().Chunks())
}

func TestPool_EvictAfterGrace(t *testing.T) {
	t.Parallel()

	p := NewPool(10*time.Millisecond, zerolog.Nop())
	h := p.Open("a", Options{Registry: wavRegistry()})
	dec := h.Decoder()
	require.NoError(t, dec.Decode(context.Background(), audiotest.SineWAV(8000, 1, 0.5)))

	h.Destroy()
	require.Eventually(t, func() bool { return p.Len() == 0 }, time.Second, time.Millisecond)
	require.False(t, dec.Decoded())

	h2 := p.Open("a", Options{Registry: wavRegistry()})
	require.NotSame(t, dec, h2.Decoder())
	require.False(t, h2.Decoder().Decoded())
}

func TestPool_OpenOtherURLEvictsPending(t *testing.T) {
	t.Parallel()

	p := NewPool(time.Minute, zerolog.Nop())
	p.Open("a", Options{}).Destroy()
	require.Equal(t, "a", p.Pending())

	p.Open("b", Options{})
	require.Empty(t, p.Pending())
	require.Equal(t, 1, p.Len())
}

func TestPool_SinglePending(t *testing.T) {
	t.Parallel()

	p := NewPool(time.Minute, zerolog.Nop())
	a := p.Open("a", Options{})
	b := p.Open("b", Options{})

	a.Destroy()
	require.Equal(t, "a", p.Pending())
	b.Destroy()
	require.Equal(t, "b", p.Pending())
	require.Equal(t, 1, p.Len())
}

func TestPool_DestroyIsPerHandle(t *testing.T) {
	t.Parallel()

	p := NewPool(time.Minute, zerolog.Nop())
	a := p.Open("a", Options{})
	b := p.Open("a", Options{})

	a.Destroy()
	a.Destroy()
	require.Empty(t, p.Pending(), "a second Destroy on one handle released another handle's reference")

	b.Destroy()
	require.Equal(t, "a", p.Pending())
}

func TestPool_ZeroGrace(t *testing.T) {
	t.Parallel()

	p := NewPool(0, zerolog.Nop())
	p.Open("a", Options{}).Destroy()
	require.Zero(t, p.Len())
}
