// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis. Samples come out
// interleaved as float32 in [-1.0, 1.0] with the file's channel count and
// rate. Give it a seekable reader when the length matters.
package vorbis
