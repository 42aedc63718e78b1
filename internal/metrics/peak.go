package metrics

import "math"

// Peak is the largest |value| seen.
type Peak struct {
	peak float64
}

func NewPeak() *Peak { return &Peak{} }

func (p *Peak) Name() string { return "peak" }

func (p *Peak) Observe(t, v float64) {
	p.peak = math.Max(p.peak, math.Abs(v))
}

func (p *Peak) Value() float64 { return p.peak }
func (p *Peak) Reset()         { p.peak = 0 }
