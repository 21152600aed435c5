// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a normalized sample to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	// 32767 for positive max to avoid overflow
	return int16(Clamp(x, -1, 1) * 32767.0)
}
