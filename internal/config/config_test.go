// SPDX-License-Identifier: EPL-2.0

package config

import (
	"testing"
	"time"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/decoder"
	"github.com/rs/zerolog"
	"gotest.tools/assert"
)

func TestLoad_Defaults(t *testing.T) {
	c := Load()
	def := audwave.DefaultOptions()

	assert.Equal(t, c.Width, def.Width)
	assert.Equal(t, c.Backend, string(decoder.BackendStream))
	assert.Equal(t, c.PoolGrace, decoder.DefaultGrace)
	assert.Equal(t, c.LogLevel, "info")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("AUDWAVE_WIDTH", "1200")
	t.Setenv("AUDWAVE_ZOOM", "2.5")
	t.Setenv("AUDWAVE_DENOISE", "true")
	t.Setenv("AUDWAVE_BUFFER", "250ms")
	t.Setenv("AUDWAVE_BACKEND", "webaudio")
	t.Setenv("AUDWAVE_HEIGHT", "tall")

	c := Load()
	assert.Equal(t, c.Width, 1200)
	assert.Equal(t, c.Zoom, 2.5)
	assert.Assert(t, c.Denoise)
	assert.Equal(t, c.Buffer, 250*time.Millisecond)
	assert.Equal(t, c.Height, audwave.DefaultOptions().Height, "unparsable values fall back")

	opts := c.Options("a.wav", zerolog.Nop())
	assert.Equal(t, opts.Src, "a.wav")
	assert.Equal(t, opts.Backend, decoder.BackendContext)
	assert.Assert(t, opts.Experimental.Denoise)
	assert.Assert(t, opts.Pool != nil)
}

func TestOptions_UnknownBackend(t *testing.T) {
	t.Setenv("AUDWAVE_BACKEND", "gstreamer")

	opts := Load().Options("", zerolog.Nop())
	assert.Equal(t, opts.Backend, decoder.BackendStream)
}

func TestVars(t *testing.T) {
	t.Setenv("AUDWAVE_RATE", "1.25")

	v := Load().Vars()
	assert.Equal(t, v["rate"], "1.25")
	assert.Equal(t, v["buffer"], "100ms")
}
