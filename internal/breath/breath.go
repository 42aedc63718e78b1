// Package breath drives idle parameters with slow sine waves.
package breath

import "math"

type Target interface {
	AddParameterValueByID(id string, value, weight float64)
}

// Parameter is one breathing wave: offset + peak*sin(2πt/cycle), added to
// the parameter with the given weight.
type Parameter struct {
	ID     string  `yaml:"id"`
	Offset float64 `yaml:"offset"`
	Peak   float64 `yaml:"peak"`
	Cycle  float64 `yaml:"cycle"`
	Weight float64 `yaml:"weight"`
}

// Value is the wave at time t. A non-positive cycle leaves only the offset.
func (p Parameter) Value(t float64) float64 {
	if p.Cycle <= 0 {
		return p.Offset
	}
	return p.Offset + p.Peak*math.Sin(t*2*math.Pi/p.Cycle)
}

type Breath struct {
	params []Parameter
	time   float64
}

func New(params ...Parameter) *Breath {
	return &Breath{params: params}
}

// Defaults returns the usual head and body sway set.
func Defaults() []Parameter {
	return []Parameter{
		{ID: "ParamAngleX", Offset: 0, Peak: 15, Cycle: 6.5345, Weight: 0.5},
		{ID: "ParamAngleY", Offset: 0, Peak: 8, Cycle: 3.5345, Weight: 0.5},
		{ID: "ParamAngleZ", Offset: 0, Peak: 10, Cycle: 5.5345, Weight: 0.5},
		{ID: "ParamBodyAngleX", Offset: 0, Peak: 4, Cycle: 15.5345, Weight: 0.5},
		{ID: "ParamBreath", Offset: 0.5, Peak: 0.5, Cycle: 3.2345, Weight: 0.5},
	}
}

func (b *Breath) SetParameters(params []Parameter) { b.params = params }
func (b *Breath) Parameters() []Parameter          { return b.params }
func (b *Breath) Time() float64                    { return b.time }

// Update advances the clock by dt and adds every wave into m.
func (b *Breath) Update(m Target, dt float64) {
	b.time += dt
	for _, p := range b.params {
		m.AddParameterValueByID(p.ID, p.Value(b.time), p.Weight)
	}
}

func (b *Breath) Reset() { b.time = 0 }
