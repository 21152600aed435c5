// SPDX-License-Identifier: EPL-2.0

package audwave

import "github.com/ik5/audwave/regions"

// Modifiers are the keys held during a press.
type Modifiers = regions.Modifiers

// PointerDown routes a press at surface coordinates. The playhead gets the
// first chance, then the regions; anything else becomes click-to-seek on
// release.
func (w *Waveform) PointerDown(x, y float64, mods Modifiers) {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return
	}

	w.cursor.Move(x, y)
	switch {
	case w.playhead.PointerDown(x):
		w.press = pressPlayhead
	case w.regions.PointerDown(x, y, mods):
		w.press = pressRegions
	default:
		w.press = pressSeek
	}
	w.vis.RequestDraw(true)
}

func (w *Waveform) PointerMove(x, y float64) {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return
	}

	w.cursor.Move(x, y)
	switch w.press {
	case pressPlayhead:
		w.playhead.PointerMove(x)
	case pressRegions:
		w.regions.PointerMove(x, y)
	default:
		w.regions.PointerMove(x, y)
		w.playhead.PointerMove(x)
	}
	w.vis.RequestDraw(true)
}

func (w *Waveform) PointerUp(x, y float64) {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return
	}

	w.cursor.Move(x, y)
	p := w.press
	w.press = pressNone
	switch p {
	case pressPlayhead:
		w.playhead.PointerUp(x)
	case pressRegions:
		if !w.regions.PointerUp(x, y) && !w.cursor.SeekLocked() {
			w.player.Seek(w.vis.XToTime(x))
		}
	case pressSeek:
		if !w.cursor.SeekLocked() {
			w.player.Seek(w.vis.XToTime(x))
		}
	}
	w.vis.RequestDraw(true)
}

// PointerLeave hides the hover line.
func (w *Waveform) PointerLeave() {
	w.mu.Lock()
	defer w.unlock()
	if w.destroyed {
		return
	}
	w.cursor.Leave()
	w.vis.RequestDraw(true)
}
