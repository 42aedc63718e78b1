package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/sway/internal/physics"
)

// Sample holds the tracked parameter values of one frame.
type Sample []float64

func (s Sample) Clone() Sample {
	c := make(Sample, len(s))
	copy(c, s)
	return c
}

func (s Sample) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Host is the model a run drives. Parameters are restored to their saved
// state at the start of every frame, then drivers write and save them.
type Host interface {
	physics.Model
	ParameterValueByID(id string) float64
	SetParameterValueByID(id string, value float64)
	AddParameterValueByID(id string, value, weight float64)
	SaveParameters()
	LoadParameters()
}

type Engine interface {
	Stabilize(m physics.Model) error
	Evaluate(m physics.Model, dt float64) error
	Stats() physics.Stats
}

type Metric interface {
	Name() string
	Observe(t, v float64)
	Value() float64
	Reset()
}

type Frame struct {
	Index int
	Time  float64
	Dt    float64
}

type Observer interface {
	OnFrame(f Frame, s Sample)
}

type Config struct {
	FrameRate       float64
	Duration        float64
	Stabilize       bool
	Track           []string
	ValidateSamples bool
}

func (c Config) Dt() float64 { return 1 / c.FrameRate }

// Frames is the number of frames after the initial sample.
func (c Config) Frames() int {
	return int(math.Round(c.Duration * c.FrameRate))
}

type Result struct {
	Times   []float64
	Columns []string
	Samples []Sample
	Metrics map[string]float64
	Frames  int
	Ticks   int
	Errors  []error
}

// Series returns the values of one tracked column, or nil.
func (r *Result) Series(column string) []float64 {
	for c, name := range r.Columns {
		if name != column {
			continue
		}
		out := make([]float64, len(r.Samples))
		for i, s := range r.Samples {
			out[i] = s[c]
		}
		return out
	}
	return nil
}

// MetricKey names the result entry of a metric bound to a column.
func MetricKey(column, metric string) string {
	return column + "." + metric
}

type SimError struct {
	Time    float64
	Frame   int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4f): %s", e.Frame, e.Time, e.Message)
}
