// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/decoder"
)

type RenderCmd struct {
	Src     string  `arg:"" help:"File path or URL."`
	Out     string  `short:"o" default:"waveform.png" type:"path" help:"PNG to write."`
	Width   int     `default:"${width}" help:"Image width."`
	Height  int     `default:"${height}" help:"Image height."`
	Zoom    float64 `default:"${zoom}" help:"Zoom level."`
	Center  float64 `help:"Second to center the view on when zoomed."`
	Split   bool    `help:"Draw one band per channel."`
	Denoise bool    `help:"Smooth samples before drawing."`
	Regions string  `type:"existingfile" help:"Region file (.json or .cbor) to overlay."`
}

func (c *RenderCmd) Run(g *Globals) error {
	opts := g.cfg.Options(c.Src, g.log)
	opts.Width, opts.Height = c.Width, c.Height
	opts.SplitChannels = c.Split || opts.SplitChannels
	opts.Experimental.Denoise = c.Denoise || opts.Experimental.Denoise
	opts.ZoomToCursor = false
	// no speaker here, so there is no output context to decode for
	opts.Backend = decoder.BackendStream

	if c.Regions != "" {
		recs, err := readRegions(c.Regions)
		if err != nil {
			return err
		}
		opts.Regions = recs
	}

	w, err := load(g, opts)
	if err != nil {
		return err
	}
	defer w.Destroy()

	w.SetZoom(c.Zoom)
	if c.Center > 0 {
		w.Seek(c.Center)
		w.SetScroll(scrollFor(w, c.Center))
	}

	f, err := os.Create(c.Out)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer f.Close()

	if err := png.Encode(f, w.Render()); err != nil {
		return fmt.Errorf("writing %s: %w", c.Out, err)
	}
	g.log.Info().Str("out", c.Out).Float64("duration", w.Duration()).Msg("rendered")
	return nil
}

// scrollFor is the scroll fraction that centers t.
func scrollFor(w *audwave.Waveform, t float64) float64 {
	d, z := w.Duration(), w.Zoom()
	if d <= 0 || z <= 1 {
		return 0
	}
	return (t/d - 0.5/z) / (1 - 1/z)
}

// load builds a Waveform and loads it with progress bars.
func load(g *Globals, opts audwave.Options) (*audwave.Waveform, error) {
	w, err := audwave.New(opts)
	if err != nil {
		return nil, err
	}

	lp := newLoadProgress(w, g.Quiet)
	ok := w.Load(g.ctx)
	lp.done(ok)

	if !ok {
		err := w.Err()
		w.Destroy()
		if err == nil {
			err = g.ctx.Err()
		}
		if err == nil {
			err = audwave.ErrNotLoaded
		}
		return nil, fmt.Errorf("loading %s: %w", opts.Src, err)
	}
	return w, nil
}
