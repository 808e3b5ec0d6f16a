package automation

// Sequence scans an offset-sorted change list with a monotonically
// advancing cursor, mirroring the MIDI event sequence the engine slices
// alongside it. Owned by a single render pass; no locking.
type Sequence struct {
	changes []Change
	cursor  int
}

// NewSequence creates a sequence from changes, stable-sorting by offset.
func NewSequence(changes []Change) *Sequence {
	sorted := make([]Change, len(changes))
	copy(sorted, changes)
	sortChanges(sorted)
	return &Sequence{changes: sorted}
}

// Len returns the total number of changes.
func (s *Sequence) Len() int {
	return len(s.changes)
}

// All returns a copy of every change in offset order.
func (s *Sequence) All() []Change {
	out := make([]Change, len(s.changes))
	copy(out, s.changes)
	return out
}

// SliceAt consumes every unread change positioned before start+length,
// returning block-local copies with offsets clamped into [0, length-1].
func (s *Sequence) SliceAt(start, length int) []Change {
	var out []Change
	end := start + length
	for s.cursor < len(s.changes) {
		c := s.changes[s.cursor]
		if c.Offset >= end {
			break
		}
		local := c.Offset - start
		if local < 0 {
			local = 0
		}
		if local > length-1 {
			local = length - 1
		}
		c.Offset = local
		out = append(out, c)
		s.cursor++
	}
	return out
}

// Rewind resets the cursor to the first change.
func (s *Sequence) Rewind() {
	s.cursor = 0
}
