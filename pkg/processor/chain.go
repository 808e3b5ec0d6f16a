package processor

import (
	"fmt"

	"github.com/midihost/midihost/pkg/automation"
	"github.com/midihost/midihost/pkg/midi"
)

// Chain sequences several processors behind the single-processor
// contract: the first stage's output feeds the second stage's input, and
// so on. MIDI and automation are delivered to the first stage (the
// instrument position); its MIDI output is the chain's MIDI output.
// Latency is the sum of stage latencies, tail the maximum of stage tails.
// Callers of the render engine never need to know a chain is involved.
type Chain struct {
	stages []Processor

	// paramStage[i] maps flattened parameter index i to its stage.
	paramStage []int
	paramLocal []int

	// Intermediate per-stage buffers, grown on demand.
	scratch [][][]float32
}

// NewChain builds a chain from stages in processing order. All stages
// must share one sample rate; adjacent channel counts must line up.
func NewChain(stages ...Processor) (*Chain, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: chain needs at least one stage", ErrBadConfig)
	}

	rate := stages[0].SampleRate()
	for i, s := range stages[1:] {
		if s.SampleRate() != rate {
			return nil, fmt.Errorf("%w: stage %d runs at %g Hz, stage 0 at %g Hz",
				ErrBadConfig, i+1, s.SampleRate(), rate)
		}
	}
	for i := 0; i < len(stages)-1; i++ {
		if stages[i].NumOutputChannels() != stages[i+1].NumInputChannels() {
			return nil, fmt.Errorf("%w: stage %d outputs %d channels but stage %d expects %d",
				ErrBadConfig, i, stages[i].NumOutputChannels(), i+1, stages[i+1].NumInputChannels())
		}
	}

	c := &Chain{stages: stages}
	for stage, s := range stages {
		for local := 0; local < s.NumParams(); local++ {
			c.paramStage = append(c.paramStage, stage)
			c.paramLocal = append(c.paramLocal, local)
		}
	}
	c.scratch = make([][][]float32, len(stages)-1)
	return c, nil
}

// SampleRate returns the shared stage sample rate.
func (c *Chain) SampleRate() float64 {
	return c.stages[0].SampleRate()
}

// NumInputChannels returns the first stage's input channel count.
func (c *Chain) NumInputChannels() int {
	return c.stages[0].NumInputChannels()
}

// NumOutputChannels returns the last stage's output channel count.
func (c *Chain) NumOutputChannels() int {
	return c.stages[len(c.stages)-1].NumOutputChannels()
}

// LatencySamples returns the sum of all stage latencies.
func (c *Chain) LatencySamples() int {
	total := 0
	for _, s := range c.stages {
		total += s.LatencySamples()
	}
	return total
}

// TailSeconds returns the longest stage tail.
func (c *Chain) TailSeconds() float64 {
	max := 0.0
	for _, s := range c.stages {
		if t := s.TailSeconds(); t > max {
			max = t
		}
	}
	return max
}

// NumParams returns the stage parameter counts summed.
func (c *Chain) NumParams() int {
	return len(c.paramStage)
}

// ParamName returns the flattened parameter's name.
func (c *Chain) ParamName(index int) string {
	if index < 0 || index >= len(c.paramStage) {
		return ""
	}
	return c.stages[c.paramStage[index]].ParamName(c.paramLocal[index])
}

// TextToValue routes text parsing to the owning stage.
func (c *Chain) TextToValue(index int, text string) (float64, error) {
	if index < 0 || index >= len(c.paramStage) {
		return 0, fmt.Errorf("%w: parameter index %d", ErrBadConfig, index)
	}
	return c.stages[c.paramStage[index]].TextToValue(c.paramLocal[index], text)
}

// SetParam routes a parameter set to the owning stage.
func (c *Chain) SetParam(index int, value float64) error {
	if index < 0 || index >= len(c.paramStage) {
		return fmt.Errorf("%w: parameter index %d", ErrBadConfig, index)
	}
	return c.stages[c.paramStage[index]].SetParam(c.paramLocal[index], value)
}

// stageBuffer returns the intermediate buffer feeding stage i+1, sized
// for frames.
func (c *Chain) stageBuffer(i, frames int) [][]float32 {
	channels := c.stages[i].NumOutputChannels()
	buf := c.scratch[i]
	if len(buf) != channels || Frames(buf) < frames {
		buf = NewBuffer(channels, frames)
		c.scratch[i] = buf
	}
	buf = buf[:channels]
	for ch := range buf {
		buf[ch] = buf[ch][:frames]
	}
	Zero(buf)
	return buf
}

// run drives every stage, letting first process the head stage into the
// first intermediate buffer.
func (c *Chain) run(in, out [][]float32, first func(stageIn, stageOut [][]float32) error) error {
	frames := Frames(out)

	stageIn := in
	for i := range c.stages {
		stageOut := out
		if i < len(c.stages)-1 {
			stageOut = c.stageBuffer(i, frames)
		}

		var err error
		if i == 0 {
			err = first(stageIn, stageOut)
		} else {
			err = c.stages[i].Process(stageIn, stageOut)
		}
		if err != nil {
			return fmt.Errorf("chain stage %d: %w", i, err)
		}
		stageIn = stageOut
	}
	return nil
}

// Process renders one block of plain audio through every stage.
func (c *Chain) Process(in, out [][]float32) error {
	return c.run(in, out, func(stageIn, stageOut [][]float32) error {
		return c.stages[0].Process(stageIn, stageOut)
	})
}

// ProcessMIDI delivers MIDI to the first stage and chains the audio on.
func (c *Chain) ProcessMIDI(in, out [][]float32, events []midi.Event) ([]midi.Event, error) {
	var midiOut []midi.Event
	err := c.run(in, out, func(stageIn, stageOut [][]float32) error {
		var err error
		midiOut, err = c.stages[0].ProcessMIDI(stageIn, stageOut, events)
		return err
	})
	if err != nil {
		return nil, err
	}
	return midiOut, nil
}

// ProcessAutomation delivers MIDI and the first stage's share of the
// parameter changes to the head; changes owned by later stages are
// applied as plain parameter sets before the block runs.
func (c *Chain) ProcessAutomation(in, out [][]float32, events []midi.Event, changes []automation.Change) ([]midi.Event, error) {
	var headChanges []automation.Change
	for _, change := range changes {
		if change.Param < 0 || change.Param >= len(c.paramStage) {
			return nil, fmt.Errorf("%w: automation for parameter index %d", ErrBadConfig, change.Param)
		}
		if c.paramStage[change.Param] == 0 {
			local := change
			local.Param = c.paramLocal[change.Param]
			headChanges = append(headChanges, local)
			continue
		}
		if err := c.SetParam(change.Param, change.Value); err != nil {
			return nil, err
		}
	}

	var midiOut []midi.Event
	err := c.run(in, out, func(stageIn, stageOut [][]float32) error {
		var err error
		midiOut, err = c.stages[0].ProcessAutomation(stageIn, stageOut, events, headChanges)
		return err
	})
	if err != nil {
		return nil, err
	}
	return midiOut, nil
}

// ProcessSidechain delivers the sidechain to the first stage.
func (c *Chain) ProcessSidechain(in, out, sidechain [][]float32) error {
	return c.run(in, out, func(stageIn, stageOut [][]float32) error {
		return c.stages[0].ProcessSidechain(stageIn, stageOut, sidechain)
	})
}

// Reset clears every stage.
func (c *Chain) Reset() error {
	for i, s := range c.stages {
		if err := s.Reset(); err != nil {
			return fmt.Errorf("chain stage %d: %w", i, err)
		}
	}
	return nil
}
