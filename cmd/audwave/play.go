// SPDX-License-Identifier: EPL-2.0

package main

import (
	"fmt"
	"time"

	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/player/speakersink"
)

type PlayCmd struct {
	Src        string        `arg:"" help:"File path or URL."`
	From       float64       `help:"Start second."`
	To         float64       `help:"Stop second; 0 plays to the end."`
	Rate       float64       `default:"${rate}" help:"Playback rate."`
	Volume     float64       `default:"${volume}" help:"Volume between 0 and 1."`
	Backend    string        `default:"${backend}" enum:"ffmpeg,webaudio" help:"Decoder backend."`
	SampleRate int           `default:"${samplerate}" help:"Speaker rate."`
	Buffer     time.Duration `default:"${buffer}" help:"Speaker buffer."`
	Regions    string        `type:"existingfile" help:"Region file (.json or .cbor)."`
	Loop       string        `help:"Region id to loop over; needs --regions."`
}

func (c *PlayCmd) Run(g *Globals) error {
	sink, err := speakersink.New(c.SampleRate, c.Buffer)
	if err != nil {
		return err
	}

	g.cfg.Backend = c.Backend
	opts := g.cfg.Options(c.Src, g.log)
	opts.Sink = sink
	opts.Rate = c.Rate
	opts.Volume = c.Volume
	if c.Regions != "" {
		if opts.Regions, err = readRegions(c.Regions); err != nil {
			return err
		}
	}

	w, err := load(g, opts)
	if err != nil {
		return err
	}
	defer w.Destroy()

	if c.Loop != "" {
		if err := w.SelectRegion(c.Loop, false); err != nil {
			return fmt.Errorf("loop: %w", err)
		}
	}

	pp := newPlayProgress(w.Duration(), g.Quiet)
	stopped := make(chan struct{}, 1)
	finish := func(events.Event) {
		select {
		case stopped <- struct{}{}:
		default:
		}
	}
	w.On(events.Playing, func(e events.Event) { pp.at(e.Value) })
	w.On(events.PlayEnd, finish)
	w.On(events.Pause, finish)

	switch {
	case c.Loop != "":
		w.Play()
	case c.To > c.From:
		w.PlayRange(c.From, c.To)
	default:
		w.Seek(c.From)
		w.Play()
	}

	select {
	case <-stopped:
	case <-g.ctx.Done():
		w.Stop()
	}
	pp.done()
	return nil
}
