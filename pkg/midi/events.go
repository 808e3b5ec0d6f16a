// Package midi provides the sample-positioned MIDI event form consumed by
// audio processors, and ordered event sequences for block slicing.
package midi

import "fmt"

// Status byte high nibbles for channel voice messages.
const (
	StatusNoteOff       byte = 0x80
	StatusNoteOn        byte = 0x90
	StatusPolyPressure  byte = 0xA0
	StatusControlChange byte = 0xB0
	StatusProgramChange byte = 0xC0
	StatusChannelPress  byte = 0xD0
	StatusPitchBend     byte = 0xE0
)

// Common controller numbers.
const (
	CCModWheel    byte = 1
	CCVolume      byte = 7
	CCPan         byte = 10
	CCExpression  byte = 11
	CCSustain     byte = 64
	CCAllSoundOff byte = 120
	CCAllNotesOff byte = 123
)

// Event is a channel voice message positioned at an absolute sample offset.
// Status carries both the message type (high nibble) and channel (low nibble).
type Event struct {
	Offset int
	Status byte
	Data1  byte
	Data2  byte
}

// NoteOn creates a note-on event.
func NoteOn(offset int, channel, note, velocity byte) Event {
	return Event{Offset: offset, Status: StatusNoteOn | channel&0x0F, Data1: note, Data2: velocity}
}

// NoteOff creates a note-off event.
func NoteOff(offset int, channel, note, velocity byte) Event {
	return Event{Offset: offset, Status: StatusNoteOff | channel&0x0F, Data1: note, Data2: velocity}
}

// ControlChange creates a control change event.
func ControlChange(offset int, channel, controller, value byte) Event {
	return Event{Offset: offset, Status: StatusControlChange | channel&0x0F, Data1: controller, Data2: value}
}

// ProgramChange creates a program change event.
func ProgramChange(offset int, channel, program byte) Event {
	return Event{Offset: offset, Status: StatusProgramChange | channel&0x0F, Data1: program}
}

// PitchBend creates a pitch bend event from a 14-bit value (0-16383, 8192 center).
func PitchBend(offset int, channel byte, value uint16) Event {
	return Event{
		Offset: offset,
		Status: StatusPitchBend | channel&0x0F,
		Data1:  byte(value & 0x7F),
		Data2:  byte(value >> 7 & 0x7F),
	}
}

// Type returns the message type (status high nibble).
func (e Event) Type() byte {
	return e.Status & 0xF0
}

// Channel returns the MIDI channel (0-15).
func (e Event) Channel() byte {
	return e.Status & 0x0F
}

// BendValue reassembles the 14-bit pitch bend value.
func (e Event) BendValue() uint16 {
	return uint16(e.Data1) | uint16(e.Data2)<<7
}

// WithOffset returns a copy of the event at a different sample offset.
func (e Event) WithOffset(offset int) Event {
	e.Offset = offset
	return e
}

func (e Event) String() string {
	switch e.Type() {
	case StatusNoteOn:
		return fmt.Sprintf("NoteOn{ch:%d, note:%d, vel:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case StatusNoteOff:
		return fmt.Sprintf("NoteOff{ch:%d, note:%d, vel:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case StatusControlChange:
		return fmt.Sprintf("CC{ch:%d, ctrl:%d, val:%d, offset:%d}", e.Channel(), e.Data1, e.Data2, e.Offset)
	case StatusProgramChange:
		return fmt.Sprintf("ProgramChange{ch:%d, prog:%d, offset:%d}", e.Channel(), e.Data1, e.Offset)
	case StatusPitchBend:
		return fmt.Sprintf("PitchBend{ch:%d, val:%d, offset:%d}", e.Channel(), e.BendValue(), e.Offset)
	default:
		return fmt.Sprintf("Event{status:0x%02X, d1:%d, d2:%d, offset:%d}", e.Status, e.Data1, e.Data2, e.Offset)
	}
}
