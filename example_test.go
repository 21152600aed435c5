// SPDX-License-Identifier: EPL-2.0

package audwave_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/formats/wav"
	"github.com/ik5/audwave/regions"
)

// ExampleResampleToMono16 decodes a WAV and brings it down to 8 kHz mono.
func ExampleResampleToMono16() {
	samples := make([]int16, 44100) // one second at 44.1 kHz
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	wavData := new(bytes.Buffer)
	if err := wav.WriteWAV16(wavData, 44100, samples); err != nil {
		fmt.Println(err)
		return
	}

	src, err := wav.Decoder{}.Decode(wavData)
	if err != nil {
		fmt.Println(err)
		return
	}

	pcm16, rate, err := audwave.ResampleToMono16(src, 8000, 4096)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%d samples at %d Hz\n", len(pcm16), rate)
	// Output: 8000 samples at 8000 Hz
}

func ExampleDefaultRegistry() {
	fmt.Println(audwave.DefaultRegistry().Formats())
	// Output: [aiff mp3 ogg opus wav]
}

// ExampleWaveform loads a file with one region and renders it.
func ExampleWaveform() {
	dir, err := os.MkdirTemp("", "audwave")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "tone.wav")
	wavData := new(bytes.Buffer)
	_ = wav.WriteWAV16(wavData, 8000, make([]int16, 16000))
	if err := os.WriteFile(path, wavData.Bytes(), 0o600); err != nil {
		fmt.Println(err)
		return
	}

	opts := audwave.DefaultOptions()
	opts.Src = path
	opts.Regions = []regions.Record{{ID: "intro", Start: 0, End: 0.5}}

	w, err := audwave.New(opts)
	if err != nil {
		fmt.Println(err)
		return
	}
	defer w.Destroy()

	if !w.Load(context.Background()) {
		fmt.Println(w.Err())
		return
	}
	img := w.Render()
	fmt.Printf("%.1fs, %d region, %dx%d\n", w.Duration(), len(w.Regions()), img.Bounds().Dx(), img.Bounds().Dy())
	// Output: 2.0s, 1 region, 800x96
}
