// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files.
//
// # Decoding
//
// Canonical files (44-byte header, 16-bit integer PCM, "data" right after
// "fmt ") are parsed directly and streamed without buffering, so they work
// on any io.Reader. Other layouts, such as a LIST chunk before the data or
// 8/24/32-bit samples, are handed to github.com/go-audio/wav, which needs an
// io.ReadSeeker:
//
//	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
//
// Both paths report their length through audio.Lengther.
//
// # Writing
//
// WriteWAV16 writes mono 16-bit PCM, which is what region export produces.
package wav
