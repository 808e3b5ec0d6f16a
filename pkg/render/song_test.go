package render

import (
	"errors"
	"path/filepath"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// twoNoteSMF builds a one-track file at 480 ticks per quarter, 120 BPM:
// a note on at tick 0 released at tick 480 (half a second).
func twoNoteSMF() *smf.SMF {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, gomidi.NoteOn(0, 60, 100))
	tr.Add(480, gomidi.NoteOff(0, 60))
	tr.Close(0)
	s.Add(tr)
	return s
}

func TestNewSong(t *testing.T) {
	song, err := NewSong(twoNoteSMF())
	if err != nil {
		t.Fatalf("NewSong: %v", err)
	}
	if song.NumEvents() != 2 {
		t.Errorf("NumEvents = %d, want 2", song.NumEvents())
	}
	if got := song.TicksPerQuarter(); got != 480 {
		t.Errorf("TicksPerQuarter = %d, want 480", got)
	}
	if got := song.DurationSeconds(); got != 0.5 {
		t.Errorf("DurationSeconds = %g, want 0.5", got)
	}
}

func TestNewSongRejectsSMPTE(t *testing.T) {
	s := smf.New()
	s.TimeFormat = smf.SMPTE25(40)

	_, err := NewSong(s)
	if !errors.Is(err, ErrBadSource) {
		t.Fatalf("err = %v, want ErrBadSource", err)
	}
}

func TestSampleEvents(t *testing.T) {
	song, err := NewSong(twoNoteSMF())
	if err != nil {
		t.Fatal(err)
	}
	events := song.SampleEvents(48000)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Offset != 0 {
		t.Errorf("first event at sample %d, want 0", events[0].Offset)
	}
	if events[1].Offset != 24000 {
		t.Errorf("second event at sample %d, want 24000", events[1].Offset)
	}
}

func TestLoadSongRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := twoNoteSMF().WriteFile(path); err != nil {
		t.Fatalf("writing SMF: %v", err)
	}

	song, err := LoadSong(path)
	if err != nil {
		t.Fatalf("LoadSong: %v", err)
	}
	if song.NumEvents() != 2 {
		t.Errorf("NumEvents = %d, want 2", song.NumEvents())
	}
}

func TestLoadSongMissingFile(t *testing.T) {
	_, err := LoadSong(filepath.Join(t.TempDir(), "absent.mid"))
	if !errors.Is(err, ErrBadSource) {
		t.Fatalf("err = %v, want ErrBadSource", err)
	}
}
