// SPDX-License-Identifier: EPL-2.0

// Package audio holds the native decoder contract the waveform engine
// builds on.
//
// # Source Interface
//
// Every format decoder produces a Source that yields interleaved float32
// samples in [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources that know their length also implement Lengther. The decoder
// package uses it to split a file into fixed-duration chunks before any
// sample is read; when it is missing the chunk count is discovered while
// decoding.
//
// # Format Detection
//
// Sniff looks at the first SniffLen bytes of a file and returns one of the
// Format keys. A Registry maps those keys to decoders:
//
//	reg := audio.NewRegistry()
//	reg.Register(audio.FormatWAV, wav.Decoder{})
//	dec, format, err := reg.Lookup(header)
//
// # Pipeline Stages
//
// Resampler converts a Source to another sample rate with cubic
// interpolation and MonoMixer averages all channels into one. The
// decoder chains them when a file has to match an output context rate or
// when channels are not split for rendering.
//
// Reading follows the io.Reader convention: io.EOF marks the end of the
// stream and may come together with the last samples.
package audio
