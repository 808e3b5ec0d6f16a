// Package tempo converts musical tick time to wall time using a map of
// tempo segments extracted from a standard MIDI file.
package tempo

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultMicrosPerQuarter is the tempo assumed when a file declares none
// at tick 0 (500000 microseconds per quarter note, 120 BPM).
const DefaultMicrosPerQuarter = 500000.0

// Segment is a tempo in effect from Tick until the next segment.
type Segment struct {
	Tick             uint32
	MicrosPerQuarter float64
}

// BPM returns the segment tempo in beats per minute.
func (s Segment) BPM() float64 {
	return 60_000_000.0 / s.MicrosPerQuarter
}

// Map is an immutable, ascending-by-tick tempo table with a defined
// tempo at tick 0.
type Map struct {
	segments []Segment
}

// NewMap builds a map from segments. Segments are sorted by tick; if none
// starts at tick 0 a default-tempo segment is prepended so every tick
// before the first explicit tempo change resolves unambiguously.
func NewMap(segments []Segment) Map {
	sorted := make([]Segment, len(segments))
	copy(sorted, segments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tick < sorted[j].Tick
	})

	if len(sorted) == 0 || sorted[0].Tick != 0 {
		sorted = append([]Segment{{Tick: 0, MicrosPerQuarter: DefaultMicrosPerQuarter}}, sorted...)
	}
	return Map{segments: sorted}
}

// FromSMF extracts tempo meta events from every track of a MIDI file.
func FromSMF(s *smf.SMF) Map {
	var segments []Segment
	for _, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			var bpm float64
			if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				segments = append(segments, Segment{
					Tick:             tick,
					MicrosPerQuarter: 60_000_000.0 / bpm,
				})
			}
		}
	}
	return NewMap(segments)
}

// Segments returns a copy of the tempo table.
func (m Map) Segments() []Segment {
	out := make([]Segment, len(m.segments))
	copy(out, m.segments)
	return out
}

// TickToSeconds converts an absolute tick to elapsed seconds by piecewise
// integration of the step tempo function. O(segments) per call; segment
// counts are small relative to event counts.
func (m Map) TickToSeconds(tick uint32, ticksPerQuarter uint16) float64 {
	tpq := float64(ticksPerQuarter)
	seconds := 0.0
	prevTick := uint32(0)
	prevTempo := DefaultMicrosPerQuarter
	if len(m.segments) > 0 {
		prevTempo = m.segments[0].MicrosPerQuarter
	}

	for _, seg := range m.segments {
		if seg.Tick >= tick {
			break
		}
		deltaTicks := float64(seg.Tick - prevTick)
		seconds += deltaTicks / tpq * (prevTempo / 1_000_000.0)
		prevTick = seg.Tick
		prevTempo = seg.MicrosPerQuarter
	}

	deltaTicks := float64(tick - prevTick)
	seconds += deltaTicks / tpq * (prevTempo / 1_000_000.0)
	return seconds
}

// SecondsToSamples converts seconds to a sample index at the given rate,
// truncating toward zero. Distinct times may land on the same sample;
// that is expected, not an error.
func SecondsToSamples(seconds, sampleRate float64) int {
	return int(seconds * sampleRate)
}
