package audio

import (
	"errors"
	"math"
	"testing"

	"github.com/example/go-tekken/internal/testutil"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name        string
		samples     int
		chunkLength float64
		wantLen     int
	}{
		{name: "shorter than window", samples: 100, wantLen: 400},
		{name: "exactly a window", samples: 400, wantLen: 400},
		{name: "longer than window untouched", samples: 1000, wantLen: 1000},
		{name: "rounds up to chunk multiple", samples: 9000, chunkLength: 0.5, wantLen: 16000},
		{name: "exact chunk multiple untouched", samples: 16000, chunkLength: 0.5, wantLen: 16000},
		{name: "empty with chunking", samples: 0, chunkLength: 0.5, wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ChunkLengthSeconds = tt.chunkLength
			got := Pad(make([]float32, tt.samples), cfg)
			if len(got) != tt.wantLen {
				t.Errorf("len(Pad) = %d; want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestPadAppendsZeros(t *testing.T) {
	in := []float32{1, 2, 3}
	out := Pad(in, validConfig())
	for i, v := range in {
		if out[i] != v {
			t.Fatalf("out[%d] = %g; want %g", i, out[i], v)
		}
	}
	for i := len(in); i < len(out); i++ {
		if out[i] != 0 {
			t.Fatalf("out[%d] = %g; want 0", i, out[i])
		}
	}
}

func TestFrameCount(t *testing.T) {
	cfg := validConfig()

	tests := []struct {
		samples int
		want    int
	}{
		{samples: 400, want: 1},
		{samples: 401, want: 2},
		{samples: 560, want: 2},
		{samples: 561, want: 3},
		{samples: 100, want: 1},
		{samples: 16000, want: 99},
	}

	for _, tt := range tests {
		if got := FrameCount(tt.samples, cfg); got != tt.want {
			t.Errorf("FrameCount(%d) = %d; want %d", tt.samples, got, tt.want)
		}
	}
}

func TestNewFramerRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Spectrogram.HopLength = 0
	if _, err := NewFramer(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("NewFramer error = %v; want ErrInvalidConfig", err)
	}
}

func TestFrameSilence(t *testing.T) {
	framer, err := NewFramer(validConfig())
	if err != nil {
		t.Fatalf("NewFramer: %v", err)
	}

	features, processed, err := framer.Frame(New(testutil.Silence(16000), 16000, "wav"))
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	if len(features) != 99 {
		t.Fatalf("frames = %d; want 99", len(features))
	}
	if len(processed) != 16000 {
		t.Errorf("processed samples = %d; want 16000", len(processed))
	}

	// Silence hits the log floor in every cell.
	want := math.Log10(1e-10)
	for f, row := range features {
		if len(row) != 80 {
			t.Fatalf("frame %d has %d mel bins; want 80", f, len(row))
		}
		for m, v := range row {
			if math.Abs(v-want) > 1e-12 {
				t.Fatalf("features[%d][%d] = %g; want %g", f, m, v, want)
			}
		}
	}
}

func TestFrameToneHasEnergy(t *testing.T) {
	framer, err := NewFramer(validConfig())
	if err != nil {
		t.Fatalf("NewFramer: %v", err)
	}

	features, _, err := framer.Frame(New(testutil.Sine(440, 16000, 1), 16000, "wav"))
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}

	floor := math.Log10(1e-10)
	var above bool
	for _, row := range features {
		for _, v := range row {
			if v > floor+1 {
				above = true
			}
		}
	}
	if !above {
		t.Error("a 440 Hz tone produced no mel energy above the log floor")
	}
}

func TestFrameResamplesInput(t *testing.T) {
	framer, err := NewFramer(validConfig())
	if err != nil {
		t.Fatalf("NewFramer: %v", err)
	}

	// One second at 8 kHz becomes one second at 16 kHz.
	_, processed, err := framer.Frame(New(testutil.Silence(8000), 8000, "wav"))
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(processed) != 16000 {
		t.Errorf("processed samples = %d; want 16000", len(processed))
	}
}

func TestFrameRejectsInvalidSampleRate(t *testing.T) {
	framer, err := NewFramer(validConfig())
	if err != nil {
		t.Fatalf("NewFramer: %v", err)
	}

	for _, rate := range []int{0, -16000} {
		if _, _, err := framer.Frame(New(testutil.Silence(100), rate, "wav")); !errors.Is(err, ErrInvalidSampleRate) {
			t.Errorf("Frame with rate %d: error = %v; want ErrInvalidSampleRate", rate, err)
		}
	}
}

func TestFrameEmptyAudio(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkLengthSeconds = 0.5

	framer, err := NewFramer(cfg)
	if err != nil {
		t.Fatalf("NewFramer: %v", err)
	}

	// With chunking enabled an empty waveform pads to zero chunks.
	if _, _, err := framer.Frame(New(nil, 16000, "wav")); !errors.Is(err, ErrEmptyAudio) {
		t.Fatalf("Frame error = %v; want ErrEmptyAudio", err)
	}
}
