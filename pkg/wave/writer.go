// Package wave writes rendered audio buffers to WAV files.
package wave

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrFormat reports an unsupported output format.
var ErrFormat = errors.New("wave: unsupported format")

const (
	formatPCM   = 1
	formatFloat = 3
)

// WriteFile writes channels-by-samples float32 audio as a WAV file. 16 and
// 24 bit write integer PCM with clipping at full scale; 32 bit writes
// IEEE float samples unclipped.
func WriteFile(path string, audio [][]float32, sampleRate, bitDepth int) error {
	if len(audio) == 0 {
		return fmt.Errorf("%w: no channels", ErrFormat)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, audio, sampleRate, bitDepth); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write encodes audio to w. w must be seekable; the WAV header is
// patched with final sizes when the encoder closes.
func Write(w io.WriteSeeker, audio [][]float32, sampleRate, bitDepth int) error {
	switch bitDepth {
	case 16, 24:
		return writePCM(w, audio, sampleRate, bitDepth)
	case 32:
		return writeFloat(w, audio, sampleRate)
	default:
		return fmt.Errorf("%w: bit depth %d", ErrFormat, bitDepth)
	}
}

func writePCM(w io.WriteSeeker, audio [][]float32, sampleRate, bitDepth int) error {
	channels := len(audio)
	frames := len(audio[0])
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)

	scale := float64(int(1) << (bitDepth - 1))
	max := int(scale) - 1
	min := -int(scale)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, frames*channels),
		SourceBitDepth: bitDepth,
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			s := int(float64(audio[ch][i]) * scale)
			if s > max {
				s = max
			} else if s < min {
				s = min
			}
			buf.Data[i*channels+ch] = s
		}
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

func writeFloat(w io.WriteSeeker, audio [][]float32, sampleRate int) error {
	channels := len(audio)
	frames := len(audio[0])
	enc := wav.NewEncoder(w, sampleRate, 32, channels, formatFloat)

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			if err := enc.WriteFrame(audio[ch][i]); err != nil {
				return fmt.Errorf("writing samples: %w", err)
			}
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}
