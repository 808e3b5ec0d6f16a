package render

// CompensateLatency drops the first latency samples of audio and trims
// the result to requested samples. The engine pads every render by the
// processor's reported latency, so applying this exactly once restores
// sample alignment with the MIDI timeline.
func CompensateLatency(audio [][]float32, latency, requested int) [][]float32 {
	if latency <= 0 && Frames(audio) <= requested {
		return audio
	}
	out := make([][]float32, len(audio))
	for ch := range audio {
		trimmed := audio[ch]
		if latency > 0 {
			if latency >= len(trimmed) {
				trimmed = nil
			} else {
				trimmed = trimmed[latency:]
			}
		}
		if len(trimmed) > requested {
			trimmed = trimmed[:requested]
		}
		out[ch] = trimmed
	}
	return out
}

// Frames returns the per-channel sample count of a buffer.
func Frames(audio [][]float32) int {
	if len(audio) == 0 {
		return 0
	}
	return len(audio[0])
}
