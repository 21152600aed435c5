// SPDX-License-Identifier: EPL-2.0

package audio

import "bytes"

// Format keys understood by Sniff and used as Registry keys.
const (
	FormatWAV    = "wav"
	FormatAIFF   = "aiff"
	FormatVorbis = "ogg"
	FormatOpus   = "opus"
	FormatMP3    = "mp3"
)

// SniffLen is the number of leading bytes Sniff needs to tell every format apart.
const SniffLen = 64

// Sniff detects the container format from the first bytes of a file.
// It returns "" when the format is not recognised.
func Sniff(header []byte) string {
	switch {
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return FormatWAV
	case len(header) >= 12 && bytes.Equal(header[:4], []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return FormatAIFF
	case len(header) >= 4 && bytes.Equal(header[:4], []byte("OggS")):
		// the first page carries the codec identification header
		if bytes.Contains(header, []byte("OpusHead")) {
			return FormatOpus
		}
		if bytes.Contains(header, []byte("\x01vorbis")) {
			return FormatVorbis
		}
		return ""
	case len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")):
		return FormatMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return FormatMP3
	}
	return ""
}
