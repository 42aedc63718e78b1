package metrics

import "math"

// Saturation is the share of frames spent at either bound of a range.
type Saturation struct {
	min, max  float64
	tolerance float64
	hits      int
	samples   int
}

func NewSaturation(min, max float64) *Saturation {
	return &Saturation{
		min:       min,
		max:       max,
		tolerance: 1e-9 * math.Max(1, max-min),
	}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(t, v float64) {
	s.samples++
	if v <= s.min+s.tolerance || v >= s.max-s.tolerance {
		s.hits++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.hits = 0
	s.samples = 0
}
