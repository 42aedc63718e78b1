package metrics

import "math"

// Settle is the last time the frame-to-frame change exceeded threshold,
// that is, how long the value took to come to rest.
type Settle struct {
	threshold float64
	last      float64
	settledAt float64
	seen      bool
}

func NewSettle(threshold float64) *Settle {
	return &Settle{threshold: threshold}
}

func (s *Settle) Name() string { return "settle" }

func (s *Settle) Observe(t, v float64) {
	if s.seen && math.Abs(v-s.last) > s.threshold {
		s.settledAt = t
	}
	s.last = v
	s.seen = true
}

func (s *Settle) Value() float64 { return s.settledAt }

func (s *Settle) Reset() {
	s.last = 0
	s.settledAt = 0
	s.seen = false
}
