// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// WAV builds a canonical 44-byte-header PCM16 WAV file from interleaved samples.
func WAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	dataSize := uint32(len(samples) * 2)
	blockAlign := uint16(channels * 2)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate)*uint32(blockAlign))
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	_ = binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// SineWAV builds a WAV of the given duration holding a 440Hz tone at half scale.
func SineWAV(sampleRate, channels int, seconds float64) []byte {
	frames := int(float64(sampleRate) * seconds)
	samples := make([]int16, frames*channels)
	for i := range frames {
		v := int16(16384 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
		for c := range channels {
			samples[i*channels+c] = v
		}
	}
	return WAV(sampleRate, channels, samples)
}
