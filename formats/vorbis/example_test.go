// SPDX-License-Identifier: EPL-2.0

package vorbis_test

import (
	"fmt"
	"log"
	"os"

	"github.com/ik5/audwave"
	"github.com/ik5/audwave/audio"
	"github.com/ik5/audwave/formats/vorbis"
	"github.com/ik5/audwave/formats/wav"
)

// ExampleDecoder converts an Ogg Vorbis file to 8 kHz mono WAV. Frames is
// only known up front because *os.File can seek to the last page.
func ExampleDecoder() {
	in, err := os.Open("input.ogg")
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	src, err := vorbis.Decoder{}.Decode(in)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()
	fmt.Printf("%d Hz, %d channels, %d frames\n", src.SampleRate(), src.Channels(), audio.Frames(src))

	pcm, rate, err := audwave.ResampleToMono16(src, 8000, 4096)
	if err != nil {
		log.Fatal(err)
	}

	out, err := os.Create("output.wav")
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()
	if err := wav.WriteWAV16(out, rate, pcm); err != nil {
		log.Fatal(err)
	}
}
