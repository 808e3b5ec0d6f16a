// Package processor defines the contract the render engine drives, plus a
// chain that sequences several processors behind the same contract.
package processor

import (
	"github.com/midihost/midihost/pkg/automation"
	"github.com/midihost/midihost/pkg/midi"
)

// Processor is the narrow surface the render engine requires of an audio
// processing unit. Buffers handed to a process call are owned by the caller
// for the duration of that call only and must not be retained. All calls
// are synchronous; the engine assumes exclusive single-threaded access.
type Processor interface {
	// SampleRate returns the rate the processor was prepared for.
	SampleRate() float64
	// NumInputChannels returns the main input channel count.
	NumInputChannels() int
	// NumOutputChannels returns the main output channel count.
	NumOutputChannels() int
	// LatencySamples reports the internal pipeline delay.
	LatencySamples() int
	// TailSeconds reports how long output continues after input stops.
	TailSeconds() float64

	// NumParams returns the number of automatable parameters.
	NumParams() int
	// ParamName returns the display name of a parameter, or "" when the
	// index is out of range.
	ParamName(index int) string
	// TextToValue converts a textual parameter value to its normalized
	// form. A value the processor cannot parse is an error.
	TextToValue(index int, text string) (float64, error)
	// SetParam sets a parameter to a normalized value.
	SetParam(index int, value float64) error

	// Process renders one block of plain audio.
	Process(in, out [][]float32) error
	// ProcessMIDI renders one block with MIDI input; returned events are
	// the processor's MIDI output for the block, block-local offsets.
	ProcessMIDI(in, out [][]float32, events []midi.Event) ([]midi.Event, error)
	// ProcessAutomation renders one block with MIDI and parameter changes
	// at block-local offsets (set at the given sample and hold).
	ProcessAutomation(in, out [][]float32, events []midi.Event, changes []automation.Change) ([]midi.Event, error)
	// ProcessSidechain renders one block with a secondary audio input.
	ProcessSidechain(in, out, sidechain [][]float32) error

	// Reset clears internal processing state (voices, delay lines).
	Reset() error
}
