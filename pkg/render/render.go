package render

import (
	"fmt"

	"github.com/midihost/midihost/pkg/processor"
	"github.com/midihost/midihost/pkg/wave"
)

// RenderAll runs a renderer to completion and returns the
// latency-compensated audio.
func RenderAll(r *Renderer) ([][]float32, error) {
	out := processor.NewBuffer(r.Channels(), 0)
	for {
		block, err := r.RenderBlock()
		if err != nil {
			return nil, err
		}
		if block == nil {
			break
		}
		for ch := range out {
			out[ch] = append(out[ch], block[ch]...)
		}
	}
	return CompensateLatency(out, r.proc.LatencySamples(), r.RequestedSamples()), nil
}

// Render is the one-call form: build a renderer, run it, compensate
// latency.
func Render(proc processor.Processor, song *Song, opts Options) ([][]float32, error) {
	r, err := NewRenderer(proc, song, opts)
	if err != nil {
		return nil, err
	}
	return RenderAll(r)
}

// RenderToFile renders to completion and writes a WAV file. bitDepth
// must be 16, 24, or 32 (32 writes float samples).
func RenderToFile(proc processor.Processor, song *Song, opts Options, path string, bitDepth int) error {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("%w: bit depth %d (want 16, 24, or 32)", ErrConfig, bitDepth)
	}
	audio, err := Render(proc, song, opts)
	if err != nil {
		return err
	}
	return wave.WriteFile(path, audio, int(proc.SampleRate()), bitDepth)
}
