// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats/aiff"
	"github.com/ik5/audwave/formats/mp3"
	"github.com/ik5/audwave/formats/opus"
	"github.com/ik5/audwave/formats/vorbis"
	"github.com/ik5/audwave/formats/wav"
)

// DefaultRegistry returns a registry holding every bundled format decoder,
// keyed by the names audio.Sniff returns.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(audio.FormatWAV, wav.Decoder{})
	reg.Register(audio.FormatAIFF, aiff.Decoder{})
	reg.Register(audio.FormatMP3, mp3.Decoder{})
	reg.Register(audio.FormatVorbis, vorbis.Decoder{})
	reg.Register(audio.FormatOpus, opus.Decoder{})
	return reg
}
