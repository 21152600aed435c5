// SPDX-License-Identifier: EPL-2.0

// Package audwave is a headless audio waveform engine.
//
// A Waveform fetches a file, decodes it in fixed-length chunks through a
// shared decoder pool, draws a zoomable waveform onto layered RGBA images
// and keeps a playback clock in step with an audio sink. Users draw, drag
// and resize time regions with the pointer; a selected region loops
// playback.
//
//	opts := audwave.DefaultOptions()
//	opts.Src = "speech.mp3"
//	w, err := audwave.New(opts)
//	if err != nil {
//		return err
//	}
//	defer w.Destroy()
//
//	w.On(events.Load, func(e events.Event) { fmt.Println("duration", e.Value) })
//	if !w.Load(ctx) {
//		return w.Err()
//	}
//	png.Encode(out, w.Render())
//
// # Formats
//
// DefaultRegistry decodes WAV, AIFF, MP3, Ogg Vorbis and Ogg Opus. The
// decode pipeline itself lives in the audio subpackage and can be used on
// its own:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	samples, rate, _ := audwave.ResampleToMono16(src, 8000, 4096)
//
// # Threading
//
// Every Waveform method takes one lock, and so do the frame callbacks that
// advance the clock and draw. Events raised meanwhile are queued and
// delivered after the lock is released, in order.
package audwave
