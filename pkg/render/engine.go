package render

import (
	"fmt"

	"github.com/midihost/midihost/pkg/automation"
	"github.com/midihost/midihost/pkg/debug"
	"github.com/midihost/midihost/pkg/midi"
	"github.com/midihost/midihost/pkg/processor"
)

const (
	// DefaultBlockSize is the block size used when options leave it zero.
	DefaultBlockSize = 512

	// DefaultTailSeconds is the fallback tail when a processor reports a
	// tail outside the sane range. Known approximation: a processor
	// legitimately reporting exactly 0 also gets the fallback; in
	// practice that heuristic is what keeps synth tails audible.
	DefaultTailSeconds = 2.0

	// MaxTailSeconds is the sanity cap on processor-reported tails.
	MaxTailSeconds = 30.0
)

// Options configures one render. The zero value renders a MIDI-driven
// pass at the default block size with the processor's own tail.
type Options struct {
	// BlockSize is the fixed per-call sample count. 0 means
	// DefaultBlockSize.
	BlockSize int

	// TailSeconds overrides the tail appended after the last MIDI
	// event. nil applies the processor-tail heuristic; an explicit 0
	// renders no tail. Ignored when Input drives the length.
	TailSeconds *float64

	// Input is the main audio input (channels by samples). When set, its
	// length drives the render length and MIDI tail handling is skipped.
	Input [][]float32

	// InputSampleRate declares the rate of Input. When nonzero it must
	// match the processor's rate.
	InputSampleRate float64

	// Sidechain is a secondary audio input routed to the processor's
	// sidechain-aware entry point.
	Sidechain [][]float32

	// Automation is the resolved, sample-sorted parameter change list.
	Automation []automation.Change

	// Logger receives warnings and plan tracing. nil uses the package
	// default logger.
	Logger *debug.Logger
}

// Tail returns a pointer for Options.TailSeconds.
func Tail(seconds float64) *float64 {
	return &seconds
}

// plan is the ephemeral per-render schedule: fixed length, sorted event
// and change sequences. Built once per render invocation and discarded
// with it.
type plan struct {
	blockSize    int
	requested    int // caller-visible length
	totalSamples int // requested plus latency padding
	midiSeconds  float64
	events       *midi.Sequence
	changes      *automation.Sequence
}

// Renderer drives a processor block by block. It is stateful so a caller
// can interleave rendering with progress checks or cancellation between
// blocks; Stream wraps it for one-shot consumption.
type Renderer struct {
	proc   processor.Processor
	opts   Options
	plan   plan
	logger *debug.Logger

	inChannels  int
	outChannels int
	inBuf       [][]float32
	sideBuf     [][]float32

	currentSample int
	midiOut       []midi.Event
}

// NewRenderer builds the render plan and validates configuration. song
// may be nil for a purely audio-driven render; Options.Input may be nil
// for a MIDI-driven one (e.g. a synth with no audio input).
func NewRenderer(proc processor.Processor, song *Song, opts Options) (*Renderer, error) {
	if opts.BlockSize < 0 {
		return nil, fmt.Errorf("%w: block size %d", ErrConfig, opts.BlockSize)
	}
	if opts.BlockSize == 0 {
		opts.BlockSize = DefaultBlockSize
	}
	if opts.InputSampleRate != 0 && opts.InputSampleRate != proc.SampleRate() {
		return nil, fmt.Errorf("%w: input sample rate %g Hz does not match processor rate %g Hz",
			ErrConfig, opts.InputSampleRate, proc.SampleRate())
	}
	if song == nil && opts.Input == nil {
		return nil, fmt.Errorf("%w: neither MIDI source nor audio input drives the render length", ErrConfig)
	}

	logger := opts.Logger
	if logger == nil {
		logger = debug.Default()
	}

	r := &Renderer{
		proc:        proc,
		opts:        opts,
		logger:      logger,
		inChannels:  proc.NumInputChannels(),
		outChannels: proc.NumOutputChannels(),
	}
	r.plan = buildPlan(proc, song, opts)
	logger.Debug("render plan: %d samples in blocks of %d, %d events, %d changes, latency %d",
		r.plan.totalSamples, r.plan.blockSize, r.plan.events.Len(), r.plan.changes.Len(), proc.LatencySamples())
	r.inBuf = processor.NewBuffer(r.inChannels, opts.BlockSize)
	if opts.Sidechain != nil {
		r.sideBuf = processor.NewBuffer(len(opts.Sidechain), opts.BlockSize)
	}
	return r, nil
}

// buildPlan fixes the render length and sequences before the first
// block. Lengths: audio input drives when present; otherwise the last
// MIDI event plus the tail. Latency padding is always appended so the
// compensator can trim it.
func buildPlan(proc processor.Processor, song *Song, opts Options) plan {
	sampleRate := proc.SampleRate()

	p := plan{
		blockSize: opts.BlockSize,
		changes:   automation.NewSequence(opts.Automation),
	}

	var events []midi.Event
	if song != nil {
		events = song.SampleEvents(sampleRate)
		p.midiSeconds = song.DurationSeconds()
	}
	p.events = midi.NewSequence(events)

	if opts.Input != nil {
		p.requested = processor.Frames(opts.Input)
	} else {
		tail := tailSeconds(proc, opts.TailSeconds)
		p.requested = int((p.midiSeconds + tail) * sampleRate)
	}

	p.totalSamples = p.requested
	if latency := proc.LatencySamples(); latency > 0 {
		p.totalSamples += latency
	}
	return p
}

// tailSeconds applies the tail heuristic: an explicit override wins;
// otherwise the processor's reported tail, clamped to the sane range
// (0, MaxTailSeconds], with DefaultTailSeconds outside it.
func tailSeconds(proc processor.Processor, override *float64) float64 {
	if override != nil {
		return *override
	}
	tail := proc.TailSeconds()
	if tail <= 0 || tail > MaxTailSeconds {
		return DefaultTailSeconds
	}
	return tail
}

// TotalSamples returns the number of samples the renderer will produce,
// including latency padding.
func (r *Renderer) TotalSamples() int {
	return r.plan.totalSamples
}

// RequestedSamples returns the caller-visible render length, excluding
// latency padding.
func (r *Renderer) RequestedSamples() int {
	return r.plan.requested
}

// DurationSeconds returns the caller-visible length in seconds.
func (r *Renderer) DurationSeconds() float64 {
	return float64(r.plan.requested) / r.proc.SampleRate()
}

// MIDIDurationSeconds returns the musical content length, excluding tail.
func (r *Renderer) MIDIDurationSeconds() float64 {
	return r.plan.midiSeconds
}

// CurrentSample returns the next sample position to be rendered.
func (r *Renderer) CurrentSample() int {
	return r.currentSample
}

// Channels returns the output channel count of every rendered block.
func (r *Renderer) Channels() int {
	return r.outChannels
}

// Progress returns rendering progress in [0, 1].
func (r *Renderer) Progress() float64 {
	if r.plan.totalSamples == 0 {
		return 1.0
	}
	p := float64(r.currentSample) / float64(r.plan.totalSamples)
	if p > 1 {
		p = 1
	}
	return p
}

// IsFinished reports whether every block has been rendered.
func (r *Renderer) IsFinished() bool {
	return r.currentSample >= r.plan.totalSamples
}

// OutputEvents returns the MIDI events the processor emitted so far,
// mapped to absolute sample positions.
func (r *Renderer) OutputEvents() []midi.Event {
	out := make([]midi.Event, len(r.midiOut))
	copy(out, r.midiOut)
	return out
}

// Reset rewinds the cursors to sample zero and clears the processor's
// internal state. The plan is kept; rebuilding it is never needed for a
// replay of the same inputs.
func (r *Renderer) Reset() error {
	r.currentSample = 0
	r.midiOut = nil
	r.plan.events.Rewind()
	r.plan.changes.Rewind()
	return r.proc.Reset()
}

// RenderBlock renders the next block and returns it as a freshly
// allocated channels-by-n buffer, with n at most the configured block size (the
// final block may be shorter). It returns (nil, nil) once rendering is
// finished. A processor failure aborts the render; blocks already
// returned remain valid.
func (r *Renderer) RenderBlock() ([][]float32, error) {
	remaining := r.plan.totalSamples - r.currentSample
	if remaining <= 0 {
		return nil, nil
	}

	n := r.plan.blockSize
	if remaining < n {
		n = remaining
	}

	events := r.plan.events.SliceAt(r.currentSample, n)
	changes := r.plan.changes.SliceAt(r.currentSample, n)

	in := r.sliceInput(n)
	out := processor.NewBuffer(r.outChannels, n)

	var (
		blockOut []midi.Event
		err      error
	)
	switch {
	case r.opts.Sidechain != nil:
		// Sidechain path has no per-sample automation slot; apply the
		// block's changes as set-and-hold before processing.
		for _, c := range changes {
			if perr := r.proc.SetParam(c.Param, c.Value); perr != nil {
				return nil, fmt.Errorf("applying automation at sample %d: %w", r.currentSample, perr)
			}
		}
		err = r.proc.ProcessSidechain(in, out, r.sliceSidechain(n))
	case r.plan.changes.Len() > 0:
		// Automation anywhere in the render keeps every block on the
		// automation path so the processor's ramping stays consistent.
		blockOut, err = r.proc.ProcessAutomation(in, out, events, changes)
	case r.plan.events.Len() > 0:
		blockOut, err = r.proc.ProcessMIDI(in, out, events)
	default:
		err = r.proc.Process(in, out)
	}
	if err != nil {
		return nil, fmt.Errorf("processing block at sample %d: %w", r.currentSample, err)
	}

	for _, ev := range blockOut {
		r.midiOut = append(r.midiOut, ev.WithOffset(r.currentSample+ev.Offset))
	}

	r.currentSample += n
	return out, nil
}

// sliceInput prepares the shared input buffer for one block: zero-filled
// first, then any external input samples copied over it.
func (r *Renderer) sliceInput(n int) [][]float32 {
	in := r.inBuf
	for ch := range in {
		in[ch] = in[ch][:n]
	}
	processor.Zero(in)

	if r.opts.Input != nil {
		avail := processor.Frames(r.opts.Input) - r.currentSample
		if avail > n {
			avail = n
		}
		if avail > 0 {
			processor.CopyRegion(in, r.opts.Input, r.currentSample, avail)
		}
	}
	return in
}

// sliceSidechain prepares the sidechain block; samples past the supplied
// sidechain length are silence.
func (r *Renderer) sliceSidechain(n int) [][]float32 {
	side := r.sideBuf
	for ch := range side {
		side[ch] = side[ch][:n]
	}
	processor.Zero(side)

	avail := processor.Frames(r.opts.Sidechain) - r.currentSample
	if avail > n {
		avail = n
	}
	if avail > 0 {
		processor.CopyRegion(side, r.opts.Sidechain, r.currentSample, avail)
	}
	return side
}
