package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/midihost/midihost/internal/hosttest"
)

func TestCompensateLatency(t *testing.T) {
	// The fake writes the absolute sample index, so after dropping the
	// first L samples position i must hold value i+L.
	fake := hosttest.New()
	fake.Latency = 64
	r, err := NewRenderer(fake, mustSong(t), Options{TailSeconds: Tail(0)})
	if err != nil {
		t.Fatal(err)
	}
	if got := r.TotalSamples(); got != 24064 {
		t.Fatalf("TotalSamples = %d, want 24064", got)
	}

	audio, err := RenderAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if got := Frames(audio); got != 24000 {
		t.Fatalf("compensated length = %d, want 24000", got)
	}
	for _, i := range []int{0, 1, 511, 512, 23999} {
		if got, want := audio[0][i], float32(i+64); got != want {
			t.Fatalf("sample %d = %g, want %g", i, got, want)
		}
	}
}

func TestCompensateLatencyEdgeCases(t *testing.T) {
	buf := [][]float32{{0, 1, 2, 3}}

	if got := CompensateLatency(buf, 0, 4); Frames(got) != 4 {
		t.Errorf("no-op compensation changed length to %d", Frames(got))
	}
	if got := CompensateLatency(buf, 10, 4); Frames(got) != 0 {
		t.Errorf("latency past end left %d samples", Frames(got))
	}
	got := CompensateLatency(buf, 1, 2)
	if Frames(got) != 2 || got[0][0] != 1 || got[0][1] != 2 {
		t.Errorf("trim = %v, want [1 2]", got[0])
	}
}

func TestStreamMatchesRenderAll(t *testing.T) {
	run := func() [][]float32 {
		fake := hosttest.New()
		fake.Latency = 32
		r, err := NewRenderer(fake, mustSong(t), Options{TailSeconds: Tail(0.25)})
		if err != nil {
			t.Fatal(err)
		}
		var out [][]float32
		s := NewStream(r)
		for block := s.Next(); block != nil; block = s.Next() {
			if out == nil {
				out = make([][]float32, len(block))
			}
			for ch := range block {
				out[ch] = append(out[ch], block[ch]...)
			}
		}
		if s.Err() != nil {
			t.Fatal(s.Err())
		}
		return CompensateLatency(out, 32, r.RequestedSamples())
	}

	a, b := run(), run()
	if Frames(a) != Frames(b) {
		t.Fatalf("stream lengths differ: %d vs %d", Frames(a), Frames(b))
	}
	for ch := range a {
		for i := range a[ch] {
			if a[ch][i] != b[ch][i] {
				t.Fatalf("streams differ at channel %d sample %d", ch, i)
			}
		}
	}
}

func TestStreamReportsFailure(t *testing.T) {
	fake := hosttest.New()
	fake.FailKind = "midi"
	r, err := NewRenderer(fake, mustSong(t), Options{TailSeconds: Tail(0)})
	if err != nil {
		t.Fatal(err)
	}
	s := NewStream(r)
	if block := s.Next(); block != nil {
		t.Fatal("expected nil block on failure")
	}
	if s.Err() == nil {
		t.Fatal("expected stream error")
	}
	// The failure is sticky.
	if block := s.Next(); block != nil {
		t.Fatal("stream kept producing after failure")
	}
}

func TestRenderToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render.wav")
	fake := hosttest.New()
	err := RenderToFile(fake, mustSong(t), Options{TailSeconds: Tail(0)}, path, 24)
	if err != nil {
		t.Fatalf("RenderToFile: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	dec.ReadInfo()
	if dec.Err() != nil {
		t.Fatalf("reading header: %v", dec.Err())
	}
	if dec.NumChans != 2 {
		t.Errorf("channels = %d, want 2", dec.NumChans)
	}
	if dec.SampleRate != 48000 {
		t.Errorf("sample rate = %d, want 48000", dec.SampleRate)
	}
	if dec.BitDepth != 24 {
		t.Errorf("bit depth = %d, want 24", dec.BitDepth)
	}
}

func TestRenderToFileBadBitDepth(t *testing.T) {
	fake := hosttest.New()
	err := RenderToFile(fake, mustSong(t), Options{TailSeconds: Tail(0)},
		filepath.Join(t.TempDir(), "render.wav"), 12)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
