// SPDX-License-Identifier: EPL-2.0

package audwave

import "github.com/gopxl/beep"

// silentSink accepts streams and never pulls them. Playback then runs on
// the clock alone, which is what a headless Waveform without a Sink gets.
type silentSink struct{}

const silentRate = beep.SampleRate(44100)

func (silentSink) SampleRate() beep.SampleRate { return silentRate }
func (silentSink) Play(beep.Streamer)          {}
func (silentSink) Clear()                      {}
func (silentSink) Lock()                       {}
func (silentSink) Unlock()                     {}
