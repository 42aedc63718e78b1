package metrics

import "math"

// Jitter is the mean absolute change between consecutive frames.
type Jitter struct {
	last    float64
	total   float64
	samples int
}

func NewJitter() *Jitter { return &Jitter{} }

func (j *Jitter) Name() string { return "jitter" }

func (j *Jitter) Observe(t, v float64) {
	if j.samples > 0 {
		j.total += math.Abs(v - j.last)
	}
	j.last = v
	j.samples++
}

func (j *Jitter) Value() float64 {
	if j.samples < 2 {
		return 0
	}
	return j.total / float64(j.samples-1)
}

func (j *Jitter) Reset() {
	j.last = 0
	j.total = 0
	j.samples = 0
}
