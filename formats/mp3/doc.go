// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files.
// Output is always stereo float32 in [-1.0, 1.0] at the file's sample rate;
// mono files are duplicated on both channels by go-mp3.
//
// The length in frames is available only when the input is an io.Seeker,
// because go-mp3 scans all frame headers to compute it. The media loader
// always passes a bytes.Reader, so decoded files get an exact chunk count.
package mp3
