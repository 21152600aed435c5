// SPDX-License-Identifier: EPL-2.0

// Package player keeps the playback clock. A Player drives one of two
// backends: an ElementBackend around a self-clocked MediaElement, or a
// GraphBackend that rebuilds a beep graph on every connect. Both play into
// a Sink; speakersink provides the system speaker.
package player
