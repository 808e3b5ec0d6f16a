package processor

// NewBuffer allocates a channels-by-frames block of silence.
func NewBuffer(channels, frames int) [][]float32 {
	buf := make([][]float32, channels)
	for ch := range buf {
		buf[ch] = make([]float32, frames)
	}
	return buf
}

// Zero clears every channel of a buffer. Processors read the full input
// channel count regardless of how much real input exists, so the engine
// zero-fills before copying any external samples in.
func Zero(buf [][]float32) {
	for ch := range buf {
		for i := range buf[ch] {
			buf[ch][i] = 0
		}
	}
}

// CopyRegion copies frames [start, start+n) of src into the first n frames
// of dst, channel by channel. Channels missing from src stay untouched.
func CopyRegion(dst, src [][]float32, start, n int) {
	channels := len(dst)
	if len(src) < channels {
		channels = len(src)
	}
	for ch := 0; ch < channels; ch++ {
		copy(dst[ch][:n], src[ch][start:start+n])
	}
}

// Frames returns the per-channel length of a buffer, 0 when empty.
func Frames(buf [][]float32) int {
	if len(buf) == 0 {
		return 0
	}
	return len(buf[0])
}
