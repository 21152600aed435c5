// SPDX-License-Identifier: EPL-2.0

// Package channeldata derives the per-channel buffers the waveform is drawn
// from, optionally smoothing them, on the caller's goroutine or in the
// background.
package channeldata
