package audio

import (
	"encoding/base64"
	"errors"
	"math"
	"testing"

	"github.com/example/go-tekken/internal/testutil"
)

func TestDuration(t *testing.T) {
	a := New(make([]float32, 8000), 16000, "wav")
	if got := a.Duration(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Duration() = %g; want 0.5", got)
	}

	if got := New(nil, 0, "").Duration(); got != 0 {
		t.Errorf("Duration() with zero rate = %g; want 0", got)
	}
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	samples := testutil.Sine(440, 16000, 0.1)

	data, err := EncodeWAV(New(samples, 16000, "wav"))
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	got, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}

	if got.SamplingRate != 16000 {
		t.Errorf("SamplingRate = %d; want 16000", got.SamplingRate)
	}
	if len(got.Samples) != len(samples) {
		t.Fatalf("len(Samples) = %d; want %d", len(got.Samples), len(samples))
	}

	// 16-bit quantization introduces error up to ~1/32768.
	const tolerance = 1.0 / 32768.0 * 2
	for i := range samples {
		if math.Abs(float64(got.Samples[i]-samples[i])) > tolerance {
			t.Fatalf("sample %d = %g; want %g within 16-bit tolerance", i, got.Samples[i], samples[i])
		}
	}
}

func TestEncodeWAVInvalidRate(t *testing.T) {
	if _, err := EncodeWAV(New(nil, 0, "wav")); err == nil {
		t.Fatal("EncodeWAV with zero sample rate succeeded; want error")
	}
}

func TestFromBase64(t *testing.T) {
	data, err := EncodeWAV(New(make([]float32, 400), 16000, "wav"))
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	got, err := FromBase64(base64.StdEncoding.EncodeToString(data))
	if err != nil {
		t.Fatalf("FromBase64: %v", err)
	}
	if got.SamplingRate != 16000 || len(got.Samples) != 400 {
		t.Errorf("got rate %d, %d samples; want 16000, 400", got.SamplingRate, len(got.Samples))
	}

	if _, err := FromBase64("!!not base64!!"); err == nil {
		t.Error("FromBase64 on invalid input succeeded; want error")
	}
}

func TestFromBytesRejectsZeroSampleRate(t *testing.T) {
	data, err := EncodeWAV(New(make([]float32, 400), 16000, "wav"))
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	// Zero out the sample-rate field of the fmt chunk (bytes 24..27 of a
	// canonical RIFF header).
	for i := 24; i < 28; i++ {
		data[i] = 0
	}

	if _, err := FromBytes(data); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("FromBytes error = %v; want ErrInvalidSampleRate", err)
	}
}

func TestFromBytesRejectsGarbage(t *testing.T) {
	if _, err := FromBytes(nil); err == nil {
		t.Error("FromBytes(nil) succeeded; want error")
	}
	if _, err := FromBytes([]byte("definitely not a wav file")); err == nil {
		t.Error("FromBytes on garbage succeeded; want error")
	}
}

func TestMixdown(t *testing.T) {
	// Interleaved stereo: L=1, R=0 averages to 0.5.
	stereo := []float32{1, 0, 1, 0, 1, 0}
	mono := mixdown(stereo, 2)
	if len(mono) != 3 {
		t.Fatalf("len = %d; want 3", len(mono))
	}
	for i, v := range mono {
		if v != 0.5 {
			t.Errorf("mono[%d] = %g; want 0.5", i, v)
		}
	}
}
