package processor

import (
	"testing"

	"github.com/midihost/midihost/internal/hosttest"
	"github.com/midihost/midihost/pkg/automation"
	"github.com/midihost/midihost/pkg/midi"
)

func newStage(latency int, tail float64) *hosttest.FakeProcessor {
	p := hosttest.New()
	p.Latency = latency
	p.Tail = tail
	return p
}

func TestNewChainValidation(t *testing.T) {
	if _, err := NewChain(); err == nil {
		t.Error("empty chain should fail")
	}

	a := newStage(0, 0)
	b := newStage(0, 0)
	b.Rate = 44100
	if _, err := NewChain(a, b); err == nil {
		t.Error("mismatched sample rates should fail")
	}

	c := newStage(0, 0)
	d := newStage(0, 0)
	d.InChannels = 4
	if _, err := NewChain(c, d); err == nil {
		t.Error("mismatched channel counts should fail")
	}
}

func TestChainLatencyAndTail(t *testing.T) {
	chain, err := NewChain(newStage(64, 0.5), newStage(128, 2.0), newStage(0, 1.0))
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	if got := chain.LatencySamples(); got != 192 {
		t.Errorf("LatencySamples() = %d, want 192 (sum)", got)
	}
	if got := chain.TailSeconds(); got != 2.0 {
		t.Errorf("TailSeconds() = %v, want 2.0 (max)", got)
	}
}

func TestChainParamFlattening(t *testing.T) {
	a := newStage(0, 0)
	b := newStage(0, 0)
	chain, err := NewChain(a, b)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	// Each fake carries Gain and Mix; flattened count is 4 and index 2
	// is the second stage's Gain.
	if got := chain.NumParams(); got != 4 {
		t.Fatalf("NumParams() = %d, want 4", got)
	}
	if got := chain.ParamName(2); got != "Gain" {
		t.Errorf("ParamName(2) = %q, want Gain", got)
	}
	if got := chain.ParamName(99); got != "" {
		t.Errorf("ParamName(99) = %q, want empty", got)
	}

	if err := chain.SetParam(2, 0.9); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if got := b.Params.GetByIndex(0).GetValue(); got != 0.9 {
		t.Errorf("stage 1 Gain = %v, want 0.9", got)
	}

	v, err := chain.TextToValue(2, "40%")
	if err != nil {
		t.Fatalf("TextToValue: %v", err)
	}
	if v != 0.4 {
		t.Errorf("TextToValue(2, \"40%%\") = %v, want 0.4", v)
	}
}

func TestChainMIDIGoesToHeadOnly(t *testing.T) {
	head := newStage(0, 0)
	tail := newStage(0, 0)
	chain, err := NewChain(head, tail)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	in := NewBuffer(2, 64)
	out := NewBuffer(2, 64)
	events := []midi.Event{midi.NoteOn(0, 0, 60, 100)}

	if _, err := chain.ProcessMIDI(in, out, events); err != nil {
		t.Fatalf("ProcessMIDI: %v", err)
	}

	if len(head.Calls) != 1 || head.Calls[0].Kind != "midi" || len(head.Calls[0].Events) != 1 {
		t.Errorf("head calls = %+v, want one midi call with the event", head.Calls)
	}
	if len(tail.Calls) != 1 || tail.Calls[0].Kind != "process" {
		t.Errorf("tail calls = %+v, want one plain process call", tail.Calls)
	}
}

func TestChainAutomationRouting(t *testing.T) {
	head := newStage(0, 0)
	tail := newStage(0, 0)
	chain, err := NewChain(head, tail)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	in := NewBuffer(2, 64)
	out := NewBuffer(2, 64)
	changes := []automation.Change{
		{Offset: 0, Param: 0, Value: 0.25}, // head Gain
		{Offset: 0, Param: 3, Value: 0.75}, // tail Mix
	}

	if _, err := chain.ProcessAutomation(in, out, nil, changes); err != nil {
		t.Fatalf("ProcessAutomation: %v", err)
	}

	if len(head.Calls) != 1 || head.Calls[0].Kind != "automation" {
		t.Fatalf("head calls = %+v", head.Calls)
	}
	headChanges := head.Calls[0].Changes
	if len(headChanges) != 1 || headChanges[0].Param != 0 || headChanges[0].Value != 0.25 {
		t.Errorf("head changes = %v, want only its own Gain change", headChanges)
	}
	if got := tail.Params.GetByIndex(1).GetValue(); got != 0.75 {
		t.Errorf("tail Mix = %v, want 0.75 via static set", got)
	}
}

func TestChainProcessRuns(t *testing.T) {
	head := newStage(0, 0)
	last := newStage(0, 0)
	chain, err := NewChain(head, last)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	in := NewBuffer(2, 32)
	out := NewBuffer(2, 32)
	if err := chain.Process(in, out); err != nil {
		t.Fatalf("Process: %v", err)
	}
	// The last stage wrote its ramp into the chain output.
	if out[0][5] != 5 {
		t.Errorf("out[0][5] = %v, want 5", out[0][5])
	}
}

func TestChainReset(t *testing.T) {
	head := newStage(0, 0)
	last := newStage(0, 0)
	chain, _ := NewChain(head, last)
	if err := chain.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if head.Resets != 1 || last.Resets != 1 {
		t.Errorf("resets = %d, %d; want 1, 1", head.Resets, last.Resets)
	}
}

func TestBufferHelpers(t *testing.T) {
	buf := NewBuffer(2, 8)
	if len(buf) != 2 || Frames(buf) != 8 {
		t.Fatalf("NewBuffer shape = %dx%d", len(buf), Frames(buf))
	}

	src := NewBuffer(2, 16)
	for i := range src[0] {
		src[0][i] = float32(i)
		src[1][i] = float32(i) * 2
	}
	CopyRegion(buf, src, 4, 8)
	if buf[0][0] != 4 || buf[1][7] != 22 {
		t.Errorf("CopyRegion: buf[0][0]=%v buf[1][7]=%v, want 4 and 22", buf[0][0], buf[1][7])
	}

	Zero(buf)
	for ch := range buf {
		for i := range buf[ch] {
			if buf[ch][i] != 0 {
				t.Fatal("Zero left non-zero samples")
			}
		}
	}

	if Frames(nil) != 0 {
		t.Error("Frames(nil) should be 0")
	}
}
