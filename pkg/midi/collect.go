package midi

import (
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// TrackEvent is a playable event still positioned in musical ticks. The
// status/data bytes are already in wire form; only the time axis remains
// to be converted.
type TrackEvent struct {
	Tick   uint32
	Status byte
	Data1  byte
	Data2  byte
}

// At converts the track event to its sample-positioned form.
func (te TrackEvent) At(offset int) Event {
	return Event{Offset: offset, Status: te.Status, Data1: te.Data1, Data2: te.Data2}
}

// CollectEvents gathers the playable events (note on/off, control change,
// program change, pitch bend) from every track of a MIDI file, stable-sorted
// by tick so per-track order survives ties. Meta events carry no performance
// data and are dropped; tempo metas are consumed separately by the tempo map.
func CollectEvents(s *smf.SMF) []TrackEvent {
	var events []TrackEvent

	for _, track := range s.Tracks {
		var tick uint32
		for _, ev := range track {
			tick += ev.Delta
			if te, ok := decodeMessage(ev.Message); ok {
				te.Tick = tick
				events = append(events, te)
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Tick < events[j].Tick
	})
	return events
}

func decodeMessage(msg smf.Message) (TrackEvent, bool) {
	var (
		channel, key, velocity byte
		controller, value      byte
		program                byte
		relative               int16
		absolute               uint16
	)

	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		return TrackEvent{Status: StatusNoteOn | channel&0x0F, Data1: key, Data2: velocity}, true
	case msg.GetNoteOff(&channel, &key, &velocity):
		return TrackEvent{Status: StatusNoteOff | channel&0x0F, Data1: key, Data2: velocity}, true
	case msg.GetControlChange(&channel, &controller, &value):
		return TrackEvent{Status: StatusControlChange | channel&0x0F, Data1: controller, Data2: value}, true
	case msg.GetProgramChange(&channel, &program):
		return TrackEvent{Status: StatusProgramChange | channel&0x0F, Data1: program}, true
	case msg.GetPitchBend(&channel, &relative, &absolute):
		return TrackEvent{
			Status: StatusPitchBend | channel&0x0F,
			Data1:  byte(absolute & 0x7F),
			Data2:  byte(absolute >> 7 & 0x7F),
		}, true
	default:
		// Meta and system messages are not performance data.
		return TrackEvent{}, false
	}
}
