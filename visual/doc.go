// SPDX-License-Identifier: EPL-2.0

// Package visual renders a waveform onto stacked image layers.
//
// The background and waveform layers are offscreen: they are only repainted
// by full draws, which happen when the data, zoom, scroll or size change.
// The regions and controls layers are live and are repainted on every
// frame, so moving overlays like the playhead never cost a waveform pass.
package visual
