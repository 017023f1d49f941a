package audio

import (
	"errors"
	"math"
	"testing"
)

func TestHertzMelRoundTrip(t *testing.T) {
	for _, freq := range []float64{0, 60, 200, 999, 1000, 4000, 8000} {
		mel := HertzToMel(freq)
		back := MelToHertz(mel)
		if math.Abs(back-freq) > 1e-6 {
			t.Errorf("round trip %g Hz -> %g mel -> %g Hz", freq, mel, back)
		}
	}
}

func TestHertzToMelBreakpoint(t *testing.T) {
	// Linear below 1 kHz: 1000 Hz maps exactly onto the breakpoint.
	if got := HertzToMel(1000); math.Abs(got-15.0) > 1e-12 {
		t.Errorf("HertzToMel(1000) = %g; want 15", got)
	}
	if got := HertzToMel(200); math.Abs(got-3.0) > 1e-12 {
		t.Errorf("HertzToMel(200) = %g; want 3", got)
	}
	// Logarithmic above: 6400 Hz is one log-step of 27 mels past the break.
	if got := HertzToMel(6400); math.Abs(got-42.0) > 1e-9 {
		t.Errorf("HertzToMel(6400) = %g; want 42", got)
	}
}

func TestMelFilterBankShape(t *testing.T) {
	bank, err := MelFilterBank(201, 80, 0, 8000, 16000)
	if err != nil {
		t.Fatalf("MelFilterBank: %v", err)
	}
	if len(bank) != 201 {
		t.Fatalf("bank has %d frequency rows; want 201", len(bank))
	}
	for f, row := range bank {
		if len(row) != 80 {
			t.Fatalf("row %d has %d mel columns; want 80", f, len(row))
		}
	}
}

func TestMelFilterBankWeightsNonNegative(t *testing.T) {
	bank, err := MelFilterBank(201, 80, 0, 8000, 16000)
	if err != nil {
		t.Fatalf("MelFilterBank: %v", err)
	}
	for f, row := range bank {
		for m, v := range row {
			if v < 0 {
				t.Fatalf("bank[%d][%d] = %g; want >= 0", f, m, v)
			}
		}
	}
}

func TestMelFilterBankEveryBandHasWeight(t *testing.T) {
	bank, err := MelFilterBank(201, 80, 0, 8000, 16000)
	if err != nil {
		t.Fatalf("MelFilterBank: %v", err)
	}
	for m := 0; m < 80; m++ {
		var sum float64
		for f := range bank {
			sum += bank[f][m]
		}
		if sum <= 0 {
			t.Errorf("mel band %d has no weight", m)
		}
	}
}

func TestMelFilterBankErrors(t *testing.T) {
	if _, err := MelFilterBank(1, 80, 0, 8000, 16000); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("too few frequency bins: err = %v; want ErrInvalidConfig", err)
	}
	if _, err := MelFilterBank(201, 80, 8000, 100, 16000); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("min > max: err = %v; want ErrInvalidConfig", err)
	}
}
