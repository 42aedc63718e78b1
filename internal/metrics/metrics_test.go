package metrics

import (
	"math"
	"testing"
)

type metric interface {
	Name() string
	Observe(t, v float64)
	Value() float64
	Reset()
}

func feed(m metric, values ...float64) {
	for i, v := range values {
		m.Observe(float64(i)*0.1, v)
	}
}

func TestMetrics(t *testing.T) {
	tests := []struct {
		name   string
		metric metric
		values []float64
		want   float64
	}{
		{"peak", NewPeak(), []float64{0.1, -0.7, 0.3}, 0.7},
		{"peak empty", NewPeak(), nil, 0},
		{"jitter", NewJitter(), []float64{0, 1, 0, 2}, 4.0 / 3},
		{"jitter single", NewJitter(), []float64{5}, 0},
		{"settle", NewSettle(0.05), []float64{0, 0.5, 0.2, 0.21, 0.2, 0.2}, 0.2},
		{"settle never moves", NewSettle(0.05), []float64{1, 1, 1}, 0},
		{"saturation", NewSaturation(-1, 1), []float64{-1, 0, 1, 0.5}, 0.5},
		{"saturation empty", NewSaturation(-1, 1), nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed(tt.metric, tt.values...)
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s = %v, want %v", tt.metric.Name(), got, tt.want)
			}
		})
	}
}

func TestReset(t *testing.T) {
	for _, m := range []metric{NewPeak(), NewJitter(), NewSettle(0.01), NewSaturation(0, 1)} {
		feed(m, 0, 1, 0, 1)
		m.Reset()
		if m.Value() != 0 {
			t.Errorf("%s not reset: %v", m.Name(), m.Value())
		}
	}
}
