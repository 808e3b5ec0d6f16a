package midi

import "testing"

func TestEventConstructors(t *testing.T) {
	tests := []struct {
		name   string
		event  Event
		status byte
		data1  byte
		data2  byte
	}{
		{"note on ch0", NoteOn(0, 0, 60, 100), 0x90, 60, 100},
		{"note on ch9", NoteOn(0, 9, 36, 127), 0x99, 36, 127},
		{"note off", NoteOff(0, 1, 60, 0), 0x81, 60, 0},
		{"control change", ControlChange(0, 2, CCSustain, 127), 0xB2, 64, 127},
		{"program change", ProgramChange(0, 3, 40), 0xC3, 40, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Status != tt.status {
				t.Errorf("Status = 0x%02X, want 0x%02X", tt.event.Status, tt.status)
			}
			if tt.event.Data1 != tt.data1 {
				t.Errorf("Data1 = %d, want %d", tt.event.Data1, tt.data1)
			}
			if tt.event.Data2 != tt.data2 {
				t.Errorf("Data2 = %d, want %d", tt.event.Data2, tt.data2)
			}
		})
	}
}

func TestPitchBendSplit(t *testing.T) {
	tests := []uint16{0, 8192, 16383, 4096}
	for _, value := range tests {
		e := PitchBend(0, 0, value)
		if e.Data1 > 0x7F || e.Data2 > 0x7F {
			t.Errorf("PitchBend(%d) produced data bytes above 0x7F: %d %d", value, e.Data1, e.Data2)
		}
		if got := e.BendValue(); got != value {
			t.Errorf("BendValue() = %d, want %d", got, value)
		}
	}
}

func TestTypeAndChannel(t *testing.T) {
	e := NoteOn(100, 5, 60, 90)
	if e.Type() != StatusNoteOn {
		t.Errorf("Type() = 0x%02X, want 0x90", e.Type())
	}
	if e.Channel() != 5 {
		t.Errorf("Channel() = %d, want 5", e.Channel())
	}
}

func TestChannelMasked(t *testing.T) {
	// Channel above 15 must not leak into the type nibble.
	e := NoteOn(0, 0xFF, 60, 90)
	if e.Type() != StatusNoteOn {
		t.Errorf("Type() = 0x%02X, want 0x90", e.Type())
	}
	if e.Channel() != 15 {
		t.Errorf("Channel() = %d, want 15", e.Channel())
	}
}
