// SPDX-License-Identifier: EPL-2.0

package main

import (
	"io"
	"os"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/events"
	"github.com/ik5/audwave/loader"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// loadProgress shows fetch and decode bars while a Waveform loads.
type loadProgress struct {
	p      *mpb.Progress
	fetch  *mpb.Bar
	decode *mpb.Bar
	offs   []func()
}

func newLoadProgress(w *audwave.Waveform, quiet bool) *loadProgress {
	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	p := mpb.New(mpb.WithWidth(48), mpb.WithOutput(out))

	lp := &loadProgress{
		p: p,
		fetch: p.AddBar(0,
			mpb.PrependDecorators(
				decor.Name("fetch  "),
				decor.CountersKibiByte("% .1f / % .1f"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		),
		decode: p.AddBar(0,
			mpb.PrependDecorators(
				decor.Name("decode "),
				decor.CountersNoUnit("%d / %d chunks"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		),
	}

	lp.offs = append(lp.offs,
		w.On(events.Loading, func(e events.Event) {
			prog, ok := e.Subject.(loader.Progress)
			if !ok {
				return
			}
			if prog.Total > 0 {
				lp.fetch.SetTotal(prog.Total, false)
			}
			lp.fetch.SetCurrent(prog.Loaded)
		}),
		w.On(events.Decode, func(e events.Event) {
			total, _ := e.Subject.(int)
			if total > 0 {
				lp.decode.SetTotal(int64(total), false)
			}
			lp.decode.SetCurrent(int64(e.Value) + 1)
		}),
	)
	return lp
}

// done completes the bars, or drops them when the load failed.
func (lp *loadProgress) done(ok bool) {
	for _, off := range lp.offs {
		off()
	}
	for _, b := range []*mpb.Bar{lp.fetch, lp.decode} {
		if ok {
			b.SetTotal(-1, true)
		} else {
			b.Abort(false)
		}
	}
	lp.p.Wait()
}

// playProgress follows the playback clock.
type playProgress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

func newPlayProgress(duration float64, quiet bool) *playProgress {
	var out io.Writer = os.Stderr
	if quiet {
		out = io.Discard
	}
	p := mpb.New(mpb.WithWidth(48), mpb.WithOutput(out))
	bar := p.AddBar(int64(duration*1000),
		mpb.PrependDecorators(decor.Name("play   ")),
		mpb.AppendDecorators(decor.Percentage()),
	)
	return &playProgress{p: p, bar: bar}
}

func (pp *playProgress) at(seconds float64) {
	pp.bar.SetCurrent(int64(seconds * 1000))
}

func (pp *playProgress) done() {
	pp.bar.SetTotal(-1, true)
	pp.p.Wait()
}
