// Package drivers produces time-varying values for driving parameters.
package drivers

import (
	"errors"
	"fmt"
	"sort"
)

type Driver interface {
	Value(t float64) float64
}

var ErrUnknownWaveform = errors.New("drivers: unknown waveform")

type Key struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Spec describes a driver bound to one parameter.
type Spec struct {
	Parameter string  `yaml:"parameter"`
	Waveform  string  `yaml:"waveform"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
	Offset    float64 `yaml:"offset,omitempty"`
	Period    float64 `yaml:"period,omitempty"`
	Phase     float64 `yaml:"phase,omitempty"`
	Start     float64 `yaml:"start,omitempty"`
	End       float64 `yaml:"end,omitempty"`
	Keys      []Key   `yaml:"keys,omitempty"`

	// Target is the driver a follow waveform trails.
	Target *Spec `yaml:"target,omitempty"`
}

// Clone copies s, including its keys and target.
func (s Spec) Clone() Spec {
	s.Keys = append([]Key(nil), s.Keys...)
	if s.Target != nil {
		target := s.Target.Clone()
		s.Target = &target
	}
	return s
}

// Binding pairs a parameter id with its driver.
type Binding struct {
	Parameter string
	Driver    Driver
}

var waveforms = map[string]func(Spec) (Driver, error){
	"constant": func(s Spec) (Driver, error) { return Constant{Level: s.Offset}, nil },
	"ramp": func(s Spec) (Driver, error) {
		return Ramp{From: s.Offset, To: s.Offset + s.Amplitude, Start: s.Start, End: s.End}, nil
	},
	"sine": func(s Spec) (Driver, error) {
		if s.Period <= 0 {
			return nil, fmt.Errorf("sine period must be positive, got %g", s.Period)
		}
		return Sine{Amplitude: s.Amplitude, Offset: s.Offset, Period: s.Period, Phase: s.Phase, Start: s.Start, End: s.End}, nil
	},
	"step": func(s Spec) (Driver, error) {
		return Step{Low: s.Offset, High: s.Offset + s.Amplitude, Start: s.Start, End: s.End}, nil
	},
	"keyframes": func(s Spec) (Driver, error) { return NewKeyframes(s.Keys) },
}

// follow builds its target through New, so it joins the table at init.
func init() {
	waveforms["follow"] = func(s Spec) (Driver, error) {
		if s.Target == nil {
			return nil, errors.New("follow needs a target")
		}
		target, err := New(*s.Target)
		if err != nil {
			return nil, err
		}
		return NewFollow(target, s.Amplitude), nil
	}
}

// New builds the driver named by spec.Waveform.
func New(spec Spec) (Driver, error) {
	fn, ok := waveforms[spec.Waveform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWaveform, spec.Waveform)
	}
	d, err := fn(spec)
	if err != nil {
		return nil, fmt.Errorf("driver %s: %w", spec.Parameter, err)
	}
	return d, nil
}

// Bind builds a driver for every spec.
func Bind(specs []Spec) ([]Binding, error) {
	out := make([]Binding, 0, len(specs))
	for _, s := range specs {
		if s.Parameter == "" {
			return nil, fmt.Errorf("driver %q has no parameter", s.Waveform)
		}
		d, err := New(s)
		if err != nil {
			return nil, err
		}
		out = append(out, Binding{Parameter: s.Parameter, Driver: d})
	}
	return out, nil
}

// Names lists the known waveforms.
func Names() []string {
	names := make([]string, 0, len(waveforms))
	for name := range waveforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// active reports whether t falls in [start, end). end <= start means no end.
func active(t, start, end float64) bool {
	if t < start {
		return false
	}
	return end <= start || t < end
}
