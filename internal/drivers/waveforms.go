package drivers

import (
	"errors"
	"math"
	"sort"
)

type Constant struct {
	Level float64
}

func (c Constant) Value(float64) float64 { return c.Level }

// Ramp moves linearly from From to To over [Start, End] and holds outside.
type Ramp struct {
	From, To   float64
	Start, End float64
}

func (r Ramp) Value(t float64) float64 {
	if t <= r.Start {
		return r.From
	}
	if t >= r.End {
		return r.To
	}
	return r.From + (r.To-r.From)*(t-r.Start)/(r.End-r.Start)
}

// Sine oscillates around Offset while active and rests at Offset otherwise.
type Sine struct {
	Amplitude float64
	Offset    float64
	Period    float64
	Phase     float64
	Start     float64
	End       float64
}

func (s Sine) Value(t float64) float64 {
	if !active(t, s.Start, s.End) {
		return s.Offset
	}
	return s.Offset + s.Amplitude*math.Sin(2*math.Pi*(t-s.Start)/s.Period+s.Phase)
}

// Step is High while active and Low otherwise.
type Step struct {
	Low, High  float64
	Start, End float64
}

func (s Step) Value(t float64) float64 {
	if active(t, s.Start, s.End) {
		return s.High
	}
	return s.Low
}

// Keyframes interpolates linearly between keys and holds the end values.
type Keyframes struct {
	keys []Key
}

func NewKeyframes(keys []Key) (*Keyframes, error) {
	if len(keys) == 0 {
		return nil, errors.New("keyframes need at least one key")
	}
	sorted := append([]Key(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return &Keyframes{keys: sorted}, nil
}

func (k *Keyframes) Value(t float64) float64 {
	keys := k.keys
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}

	i := sort.Search(len(keys), func(i int) bool { return keys[i].Time > t })
	a, b := keys[i-1], keys[i]
	if b.Time == a.Time {
		return b.Value
	}
	return a.Value + (b.Value-a.Value)*(t-a.Time)/(b.Time-a.Time)
}
