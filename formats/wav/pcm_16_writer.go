// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	return WritePCM16(w, sampleRate, 1, samples)
}

// WritePCM16 writes interleaved 16-bit PCM with a canonical 44-byte header.
func WritePCM16(w io.Writer, sampleRate, channels int, samples []int16) error {
	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	header := make([]byte, canonicalHeaderLen)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate)*uint32(blockAlign))
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	bw := bufio.NewWriterSize(w, 8192)
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	var b [2]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint16(b[:], uint16(s))
		if _, err := bw.Write(b[:]); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
