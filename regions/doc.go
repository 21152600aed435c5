// SPDX-License-Identifier: EPL-2.0

// Package regions models time ranges over the waveform that users draw,
// drag and resize with the pointer, and that the host adds and removes.
//
// A Regions value owns its regions and is the only record of which are
// selected or hovered. Removal always notifies the host before the region
// is torn down.
package regions
