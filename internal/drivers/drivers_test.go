package drivers

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWaveforms(t *testing.T) {
	keys, err := NewKeyframes([]Key{{Time: 2, Value: 10}, {Time: 0, Value: 0}, {Time: 3, Value: -5}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		driver Driver
		t      float64
		want   float64
	}{
		{"constant", Constant{Level: 4}, 100, 4},
		{"ramp before", Ramp{From: 0, To: 30, Start: 1, End: 4}, 0, 0},
		{"ramp middle", Ramp{From: 0, To: 30, Start: 1, End: 4}, 2, 10},
		{"ramp after", Ramp{From: 0, To: 30, Start: 1, End: 4}, 9, 30},
		{"instant ramp", Ramp{From: 0, To: 30, Start: 1, End: 1}, 1.5, 30},
		{"sine before start", Sine{Amplitude: 2, Offset: 1, Period: 4, Start: 1}, 0.5, 1},
		{"sine quarter", Sine{Amplitude: 2, Offset: 1, Period: 4, Start: 1}, 2, 3},
		{"sine after end", Sine{Amplitude: 2, Offset: 1, Period: 4, Start: 1, End: 3}, 3.5, 1},
		{"step low", Step{Low: -1, High: 5, Start: 2}, 1.9, -1},
		{"step high", Step{Low: -1, High: 5, Start: 2}, 2, 5},
		{"step released", Step{Low: -1, High: 5, Start: 2, End: 3}, 3, -1},
		{"keys before", keys, -1, 0},
		{"keys between", keys, 1, 5},
		{"keys on key", keys, 2, 10},
		{"keys second span", keys, 2.5, 2.5},
		{"keys after", keys, 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.driver.Value(tt.t); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Value(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	d, err := New(Spec{Parameter: "ParamAngleX", Waveform: "ramp", Offset: -10, Amplitude: 20, Start: 0, End: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := d.Value(1); got != 0 {
		t.Errorf("expected ramp midpoint 0, got %v", got)
	}

	if _, err := New(Spec{Waveform: "square"}); !errors.Is(err, ErrUnknownWaveform) {
		t.Errorf("expected ErrUnknownWaveform, got %v", err)
	}
	if _, err := New(Spec{Waveform: "sine"}); err == nil {
		t.Error("expected error for zero period")
	}
	if _, err := New(Spec{Waveform: "keyframes"}); err == nil {
		t.Error("expected error for empty keyframes")
	}
}

func TestBind(t *testing.T) {
	bs, err := Bind([]Spec{
		{Parameter: "a", Waveform: "constant", Offset: 1},
		{Parameter: "b", Waveform: "step", Amplitude: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) != 2 || bs[0].Parameter != "a" || bs[1].Driver.Value(0) != 2 {
		t.Errorf("unexpected bindings %+v", bs)
	}

	if _, err := Bind([]Spec{{Waveform: "constant"}}); err == nil {
		t.Error("expected error for missing parameter")
	}
}

func TestNames(t *testing.T) {
	want := []string{"constant", "follow", "keyframes", "ramp", "sine", "step"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
