package dynamo

import "math"

type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Div(s float64) Vec2   { return Vec2{v.X / s, v.Y / s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

func (v Vec2) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// Normalize returns the unit vector of v. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return Vec2{v.X / l, v.Y / l}
}

func (v Vec2) IsValid() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func DegreesToRadian(deg float64) float64 {
	return deg / 180.0 * math.Pi
}

func RadianToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DirectionToRadian returns the signed angle from one direction to another,
// wrapped into [-π, π].
func DirectionToRadian(from, to Vec2) float64 {
	q1 := math.Atan2(to.Y, to.X)
	q2 := math.Atan2(from.Y, from.X)

	ret := q1 - q2
	for ret < -math.Pi {
		ret += math.Pi * 2
	}
	for ret > math.Pi {
		ret -= math.Pi * 2
	}
	return ret
}

// RadianToDirection converts an angle into a direction measured from +Y,
// so zero points straight up the chain.
func RadianToDirection(rad float64) Vec2 {
	return Vec2{X: math.Sin(rad), Y: math.Cos(rad)}
}

// Parameters holds a host model's parallel parameter buffers. The slices
// alias the model; writes to Values change the model.
type Parameters struct {
	Values  []float64
	Minimum []float64
	Maximum []float64
	Default []float64
}
