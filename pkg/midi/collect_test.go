package midi

import (
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func makeTwoTrackFile(t *testing.T) *smf.SMF {
	t.Helper()

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)

	var tempoTrack smf.Track
	tempoTrack.Add(0, smf.MetaTempo(120))
	tempoTrack.Close(0)
	if err := sm.Add(tempoTrack); err != nil {
		t.Fatalf("adding tempo track: %v", err)
	}

	var melody smf.Track
	melody.Add(0, gomidi.NoteOn(0, 60, 100))
	melody.Add(480, gomidi.NoteOff(0, 60))
	melody.Add(0, gomidi.ControlChange(0, 64, 127))
	melody.Close(0)
	if err := sm.Add(melody); err != nil {
		t.Fatalf("adding melody track: %v", err)
	}

	var bass smf.Track
	bass.Add(240, gomidi.NoteOn(1, 36, 90))
	bass.Add(240, gomidi.NoteOff(1, 36))
	bass.Close(0)
	if err := sm.Add(bass); err != nil {
		t.Fatalf("adding bass track: %v", err)
	}

	return sm
}

func TestCollectEventsFiltersAndSorts(t *testing.T) {
	events := CollectEvents(makeTwoTrackFile(t))

	// Tempo meta must not appear; the five playable events must.
	if len(events) != 5 {
		t.Fatalf("collected %d events, want 5", len(events))
	}

	for i := 1; i < len(events); i++ {
		if events[i].Tick < events[i-1].Tick {
			t.Fatalf("events not sorted by tick: %+v", events)
		}
	}

	first := events[0]
	if first.Tick != 0 || first.Status != 0x90 || first.Data1 != 60 {
		t.Errorf("first event = %+v, want note-on C4 at tick 0", first)
	}

	last := events[len(events)-1]
	if last.Tick != 480 {
		t.Errorf("last event tick = %d, want 480", last.Tick)
	}
}

func TestCollectEventsStableAcrossTracks(t *testing.T) {
	events := CollectEvents(makeTwoTrackFile(t))

	// Tick 480 holds the melody note-off/sustain and the bass note-off.
	// Track order must be preserved: melody events before bass events.
	var at480 []TrackEvent
	for _, ev := range events {
		if ev.Tick == 480 {
			at480 = append(at480, ev)
		}
	}
	if len(at480) != 3 {
		t.Fatalf("got %d events at tick 480, want 3", len(at480))
	}
	if at480[0].Status&0x0F != 0 || at480[1].Status&0x0F != 0 {
		t.Errorf("melody (channel 0) events should precede bass on tie: %+v", at480)
	}
	if at480[2].Status&0x0F != 1 {
		t.Errorf("bass (channel 1) event should be last on tie: %+v", at480)
	}
}

func TestTrackEventAt(t *testing.T) {
	te := TrackEvent{Tick: 480, Status: 0x91, Data1: 60, Data2: 100}
	ev := te.At(24000)
	if ev.Offset != 24000 || ev.Status != 0x91 || ev.Data1 != 60 || ev.Data2 != 100 {
		t.Errorf("At(24000) = %+v", ev)
	}
}

func TestCollectEventsPitchBend(t *testing.T) {
	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(480)

	var track smf.Track
	track.Add(0, gomidi.Pitchbend(2, 4000))
	track.Close(0)
	if err := sm.Add(track); err != nil {
		t.Fatalf("adding track: %v", err)
	}

	events := CollectEvents(sm)
	if len(events) != 1 {
		t.Fatalf("collected %d events, want 1", len(events))
	}
	ev := events[0].At(0)
	if ev.Type() != StatusPitchBend || ev.Channel() != 2 {
		t.Errorf("event = %+v, want pitch bend on channel 2", ev)
	}
	// gomidi takes a relative bend; 4000 above the 8192 center.
	if got := ev.BendValue(); got != 8192+4000 {
		t.Errorf("BendValue() = %d, want %d", got, 8192+4000)
	}
}
