// Package render schedules MIDI performance data and parameter
// automation into per-block work dispatched to an audio processor,
// offline or in controllable steps.
package render

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/midihost/midihost/pkg/midi"
	"github.com/midihost/midihost/pkg/tempo"
)

// Song is an immutable pairing of a MIDI file with its derived tempo map
// and collected playable events. Building it never touches a processor;
// one Song can back any number of renders.
type Song struct {
	tempoMap        tempo.Map
	events          []midi.TrackEvent
	ticksPerQuarter uint16
}

// LoadSong reads and prepares a standard MIDI file from disk.
func LoadSong(path string) (*Song, error) {
	s, err := smf.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSource, err)
	}
	return NewSong(s)
}

// NewSong prepares an already-parsed MIDI file. Only metric (tick-based)
// time division is supported; SMPTE division has no tempo-relative ticks
// to map.
func NewSong(s *smf.SMF) (*Song, error) {
	metric, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("%w: SMPTE time division is not supported", ErrBadSource)
	}
	return &Song{
		tempoMap:        tempo.FromSMF(s),
		events:          midi.CollectEvents(s),
		ticksPerQuarter: metric.Resolution(),
	}, nil
}

// TempoMap returns the song's tempo table.
func (s *Song) TempoMap() tempo.Map {
	return s.tempoMap
}

// TicksPerQuarter returns the file's metric resolution.
func (s *Song) TicksPerQuarter() uint16 {
	return s.ticksPerQuarter
}

// NumEvents returns the count of playable events.
func (s *Song) NumEvents() int {
	return len(s.events)
}

// DurationSeconds returns the time of the last playable event.
func (s *Song) DurationSeconds() float64 {
	if len(s.events) == 0 {
		return 0
	}
	last := s.events[len(s.events)-1]
	return s.tempoMap.TickToSeconds(last.Tick, s.ticksPerQuarter)
}

// SampleEvents converts every playable event to its sample position at
// the given rate, preserving tick order.
func (s *Song) SampleEvents(sampleRate float64) []midi.Event {
	out := make([]midi.Event, 0, len(s.events))
	for _, te := range s.events {
		seconds := s.tempoMap.TickToSeconds(te.Tick, s.ticksPerQuarter)
		out = append(out, te.At(tempo.SecondsToSamples(seconds, sampleRate)))
	}
	return out
}
