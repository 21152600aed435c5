// SPDX-License-Identifier: EPL-2.0

// Package config reads the AUDWAVE_* environment the commands start from.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/decoder"
	"github.com/rs/zerolog"
)

// Config holds the runtime configuration. Command flags override it.
type Config struct {
	// Rendering
	Width   int
	Height  int
	Zoom    float64
	MaxZoom float64
	Padding int
	FPS     int

	// Decoding
	Backend           string
	WindowSeconds     float64
	SplitChannels     bool
	Denoise           bool
	BackgroundCompute bool
	PoolGrace         time.Duration

	// Playback
	Volume       float64
	Rate         float64
	SeekStep     float64
	AutoCenter   bool
	ZoomToCursor bool
	SampleRate   int           // speaker output rate
	Buffer       time.Duration // speaker buffer length

	// Logging
	LogLevel  string
	LogPretty bool
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	def := audwave.DefaultOptions()
	return Config{
		Width:   envInt("AUDWAVE_WIDTH", def.Width),
		Height:  envInt("AUDWAVE_HEIGHT", def.Height),
		Zoom:    envFloat("AUDWAVE_ZOOM", def.Zoom),
		MaxZoom: envFloat("AUDWAVE_MAX_ZOOM", def.MaxZoom),
		Padding: envInt("AUDWAVE_PADDING", def.Padding),
		FPS:     envInt("AUDWAVE_FPS", def.FPS),

		Backend:           envStr("AUDWAVE_BACKEND", string(def.Backend)),
		WindowSeconds:     envFloat("AUDWAVE_WINDOW_SECONDS", def.WindowSeconds),
		SplitChannels:     envBool("AUDWAVE_SPLIT_CHANNELS", def.SplitChannels),
		Denoise:           envBool("AUDWAVE_DENOISE", false),
		BackgroundCompute: envBool("AUDWAVE_BACKGROUND_COMPUTE", false),
		PoolGrace:         envDuration("AUDWAVE_POOL_GRACE", decoder.DefaultGrace),

		Volume:       envFloat("AUDWAVE_VOLUME", def.Volume),
		Rate:         envFloat("AUDWAVE_RATE", def.Rate),
		SeekStep:     envFloat("AUDWAVE_SEEK_STEP", def.SeekStep),
		AutoCenter:   envBool("AUDWAVE_AUTO_CENTER", def.AutoCenter),
		ZoomToCursor: envBool("AUDWAVE_ZOOM_TO_CURSOR", def.ZoomToCursor),
		SampleRate:   envInt("AUDWAVE_SAMPLE_RATE", 44100),
		Buffer:       envDuration("AUDWAVE_BUFFER", 100*time.Millisecond),

		LogLevel:  envStr("AUDWAVE_LOG_LEVEL", "info"),
		LogPretty: envBool("AUDWAVE_LOG_PRETTY", true),
	}
}

// Options builds Waveform options for src. An unknown backend falls back
// to the stream backend.
func (c Config) Options(src string, log zerolog.Logger) audwave.Options {
	backend, err := decoder.ParseBackend(c.Backend)
	if err != nil {
		log.Warn().Err(err).Msg("using the stream backend")
		backend = decoder.BackendStream
	}

	opts := audwave.DefaultOptions()
	opts.Src = src
	opts.Width = c.Width
	opts.Height = c.Height
	opts.Zoom = c.Zoom
	opts.MaxZoom = c.MaxZoom
	opts.Padding = c.Padding
	opts.FPS = c.FPS
	opts.Backend = backend
	opts.WindowSeconds = c.WindowSeconds
	opts.SplitChannels = c.SplitChannels
	opts.Experimental = audwave.Experimental{
		Denoise:           c.Denoise,
		BackgroundCompute: c.BackgroundCompute,
	}
	opts.Volume = c.Volume
	opts.Rate = c.Rate
	opts.SeekStep = c.SeekStep
	opts.AutoCenter = c.AutoCenter
	opts.ZoomToCursor = c.ZoomToCursor
	opts.Pool = decoder.NewPool(c.PoolGrace, log)
	opts.Logger = log
	return opts
}

// Vars exposes the values as flag defaults.
func (c Config) Vars() map[string]string {
	return map[string]string{
		"width":      strconv.Itoa(c.Width),
		"height":     strconv.Itoa(c.Height),
		"zoom":       strconv.FormatFloat(c.Zoom, 'g', -1, 64),
		"backend":    c.Backend,
		"volume":     strconv.FormatFloat(c.Volume, 'g', -1, 64),
		"rate":       strconv.FormatFloat(c.Rate, 'g', -1, 64),
		"samplerate": strconv.Itoa(c.SampleRate),
		"buffer":     c.Buffer.String(),
		"log_level":  c.LogLevel,
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
