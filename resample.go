// SPDX-License-Identifier: EPL-2.0

package audwave

import (
	"fmt"
	"io"

	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/utils"
)

// ResampleToMono16 runs src through the resample and mono stages and collects
// the result as 16-bit PCM at targetRate. It closes nothing; the caller owns src.
//
//	src, _ := wav.Decoder{}.Decode(file)
//	pcm, rate, err := audwave.ResampleToMono16(src, 8000, 4096)
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if bufferSize <= 0 {
		return nil, targetRate, audio.ErrInvalidDstSize
	}

	mono := audio.NewMonoMixer(audio.NewResampler(src, targetRate))
	rate := mono.SampleRate()

	capHint := int(mono.Frames())
	if capHint == 0 {
		capHint = rate * 2
	}
	pcm16 := make([]int16, 0, capHint)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rate, fmt.Errorf("%w", err)
		}
	}

	return pcm16, rate, nil
}

// SamplesToMono16 converts already decoded samples of one channel.
func SamplesToMono16(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, x := range samples {
		out[i] = utils.Float32ToInt16(x)
	}
	return out
}
