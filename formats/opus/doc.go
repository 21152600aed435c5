// SPDX-License-Identifier: EPL-2.0

// Package opus decodes Ogg Opus recordings.
//
// Pages are demuxed with pion's oggreader and each page payload is handed
// to libopus (gopkg.in/hraban/opus.v2) as a single packet, matching files
// produced by pion's oggwriter. Output is float32 at 48kHz with the
// header's pre-skip removed. The length is not known up front.
package opus
