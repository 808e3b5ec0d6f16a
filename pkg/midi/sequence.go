package midi

import "sort"

// Sequence is an ordered list of events scanned by a monotonically
// advancing cursor. It is built once per render and owned by a single
// render pass; it performs no locking.
type Sequence struct {
	events []Event
	cursor int
}

// NewSequence creates a sequence from events, stable-sorting them by
// sample offset. The input slice is copied; ties keep their relative order.
func NewSequence(events []Event) *Sequence {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})
	return &Sequence{events: sorted}
}

// Len returns the total number of events.
func (s *Sequence) Len() int {
	return len(s.events)
}

// LastOffset returns the sample offset of the final event, or 0 for an
// empty sequence.
func (s *Sequence) LastOffset() int {
	if len(s.events) == 0 {
		return 0
	}
	return s.events[len(s.events)-1].Offset
}

// All returns a copy of every event in offset order.
func (s *Sequence) All() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// SliceAt consumes every unread event positioned before start+length and
// returns it with a block-local offset clamped into [0, length-1]. The
// clamp keeps boundary-rounded events inside the block. length must be
// positive; callers guard zero-length terminal blocks before slicing.
func (s *Sequence) SliceAt(start, length int) []Event {
	var out []Event
	end := start + length
	for s.cursor < len(s.events) {
		ev := s.events[s.cursor]
		if ev.Offset >= end {
			break
		}
		local := ev.Offset - start
		if local < 0 {
			local = 0
		}
		if local > length-1 {
			local = length - 1
		}
		out = append(out, ev.WithOffset(local))
		s.cursor++
	}
	return out
}

// Remaining returns how many events the cursor has not yet consumed.
func (s *Sequence) Remaining() int {
	return len(s.events) - s.cursor
}

// Rewind resets the cursor to the first event.
func (s *Sequence) Rewind() {
	s.cursor = 0
}
