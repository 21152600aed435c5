// SPDX-License-Identifier: EPL-2.0

package channeldata

import "math"

// WindowSeconds is the length of the averaging window.
const WindowSeconds = 0.01

// Smooth replaces every window of floor(sampleRate*WindowSeconds) samples
// with its mean. When denoise is false it returns samples itself, not a
// copy. dst is reused when it is large enough.
func Smooth(samples []float32, sampleRate int, denoise bool, dst []float32) []float32 {
	if !denoise {
		return samples
	}

	if cap(dst) < len(samples) {
		dst = make([]float32, len(samples))
	}
	dst = dst[:len(samples)]

	w := max(int(math.Floor(float64(sampleRate)*WindowSeconds)), 1)
	for start := 0; start < len(samples); start += w {
		end := min(start+w, len(samples))

		var sum float64
		for _, v := range samples[start:end] {
			sum += float64(v)
		}
		mean := float32(sum / float64(end-start))
		for i := start; i < end; i++ {
			dst[i] = mean
		}
	}

	return dst
}
