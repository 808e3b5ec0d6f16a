// Package hosttest provides a recording fake processor shared by the
// render, automation, and chain tests.
package hosttest

import (
	"errors"
	"fmt"

	"github.com/midihost/midihost/pkg/automation"
	"github.com/midihost/midihost/pkg/midi"
	"github.com/midihost/midihost/pkg/param"
)

// Call records one process invocation: which entry point ran, where in
// absolute sample time the block started, and what it was handed.
type Call struct {
	Kind    string // "process", "midi", "automation", "sidechain"
	Start   int
	Frames  int
	Input   [][]float32
	Events  []midi.Event
	Changes []automation.Change
}

// FakeProcessor implements the processor contract, records every call,
// and writes a deterministic ramp (absolute sample index) into its
// output so tests can verify latency trimming and block boundaries.
type FakeProcessor struct {
	Rate        float64
	InChannels  int
	OutChannels int
	Latency     int
	Tail        float64
	Params      *param.Registry

	Calls    []Call
	Resets   int
	MIDIOut  []midi.Event
	FailKind string // entry point kind that fails, "" for none

	processed int
}

// New creates a stereo 48 kHz fake with a Gain parameter whose text
// values parse as "<number>%".
func New() *FakeProcessor {
	gain := param.New(0, "Gain", 0, 1, 0.5)
	gain.SetFormatter(
		func(plain float64) string { return fmt.Sprintf("%.0f%%", plain*100) },
		func(s string) (float64, error) {
			var pct float64
			if _, err := fmt.Sscanf(s, "%f%%", &pct); err != nil {
				return 0, errors.New("cannot parse")
			}
			return pct / 100.0, nil
		},
	)

	return &FakeProcessor{
		Rate:        48000,
		InChannels:  2,
		OutChannels: 2,
		Params:      param.NewRegistry().Add(gain, param.New(1, "Mix", 0, 1, 1)),
	}
}

func (f *FakeProcessor) SampleRate() float64    { return f.Rate }
func (f *FakeProcessor) NumInputChannels() int  { return f.InChannels }
func (f *FakeProcessor) NumOutputChannels() int { return f.OutChannels }
func (f *FakeProcessor) LatencySamples() int    { return f.Latency }
func (f *FakeProcessor) TailSeconds() float64   { return f.Tail }

func (f *FakeProcessor) NumParams() int { return f.Params.Count() }

func (f *FakeProcessor) ParamName(index int) string {
	p := f.Params.GetByIndex(index)
	if p == nil {
		return ""
	}
	return p.Name
}

func (f *FakeProcessor) TextToValue(index int, text string) (float64, error) {
	p := f.Params.GetByIndex(index)
	if p == nil {
		return 0, fmt.Errorf("parameter index %d out of range", index)
	}
	return p.ParseValue(text)
}

func (f *FakeProcessor) SetParam(index int, value float64) error {
	p := f.Params.GetByIndex(index)
	if p == nil {
		return fmt.Errorf("parameter index %d out of range", index)
	}
	p.SetValue(value)
	return nil
}

func (f *FakeProcessor) record(kind string, in [][]float32, frames int, events []midi.Event, changes []automation.Change) error {
	inCopy := make([][]float32, len(in))
	for ch := range in {
		inCopy[ch] = append([]float32(nil), in[ch]...)
	}
	f.Calls = append(f.Calls, Call{
		Kind:    kind,
		Start:   f.processed,
		Frames:  frames,
		Input:   inCopy,
		Events:  append([]midi.Event(nil), events...),
		Changes: append([]automation.Change(nil), changes...),
	})
	f.processed += frames
	if f.FailKind == kind {
		return fmt.Errorf("fake failure in %s", kind)
	}
	return nil
}

func (f *FakeProcessor) fill(out [][]float32) {
	base := f.processed
	for ch := range out {
		for i := range out[ch] {
			out[ch][i] = float32(base + i)
		}
	}
}

func (f *FakeProcessor) Process(in, out [][]float32) error {
	f.fill(out)
	return f.record("process", in, frames(out), nil, nil)
}

func (f *FakeProcessor) ProcessMIDI(in, out [][]float32, events []midi.Event) ([]midi.Event, error) {
	f.fill(out)
	if err := f.record("midi", in, frames(out), events, nil); err != nil {
		return nil, err
	}
	return f.MIDIOut, nil
}

func (f *FakeProcessor) ProcessAutomation(in, out [][]float32, events []midi.Event, changes []automation.Change) ([]midi.Event, error) {
	f.fill(out)
	for _, c := range changes {
		if err := f.SetParam(c.Param, c.Value); err != nil {
			return nil, err
		}
	}
	if err := f.record("automation", in, frames(out), events, changes); err != nil {
		return nil, err
	}
	return f.MIDIOut, nil
}

func (f *FakeProcessor) ProcessSidechain(in, out, sidechain [][]float32) error {
	f.fill(out)
	return f.record("sidechain", in, frames(out), nil, nil)
}

func (f *FakeProcessor) Reset() error {
	f.Resets++
	f.processed = 0
	return nil
}

// CallKinds returns the entry point of every recorded call, in order.
func (f *FakeProcessor) CallKinds() []string {
	kinds := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		kinds[i] = c.Kind
	}
	return kinds
}

// AbsoluteEvents maps every recorded MIDI event back to its absolute
// sample position.
func (f *FakeProcessor) AbsoluteEvents() []midi.Event {
	var out []midi.Event
	for _, call := range f.Calls {
		for _, ev := range call.Events {
			out = append(out, ev.WithOffset(call.Start+ev.Offset))
		}
	}
	return out
}

func frames(out [][]float32) int {
	if len(out) == 0 {
		return 0
	}
	return len(out[0])
}
