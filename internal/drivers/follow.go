package drivers

import "math"

const (
	followFrameRate = 30.0
	followEpsilon   = 0.01

	// followMaxSpeed is the per-second speed limit in target units; twice
	// the mean speed of a full head turn.
	followMaxSpeed = 40.0 / 10.0
	// followRampTime is the time to reach full speed from rest.
	followRampTime = 0.15
)

// TargetPoint moves a point toward a target with bounded speed and
// acceleration, easing in and slowing down before it arrives. Coordinates
// are nominally in [-1, 1].
type TargetPoint struct {
	targetX, targetY float64
	x, y             float64
	vx, vy           float64
	lastTime         float64
	userTime         float64
}

// Set moves the target.
func (p *TargetPoint) Set(x, y float64) {
	p.targetX, p.targetY = x, y
}

func (p *TargetPoint) X() float64 { return p.x }
func (p *TargetPoint) Y() float64 { return p.y }

// Reset puts the point at rest at the origin.
func (p *TargetPoint) Reset() { *p = TargetPoint{} }

// Update advances the point by dt seconds. The first call only starts the
// clock.
func (p *TargetPoint) Update(dt float64) {
	p.userTime += dt

	maxV := followMaxSpeed / followFrameRate
	if p.lastTime == 0 {
		p.lastTime = p.userTime
		return
	}

	weight := (p.userTime - p.lastTime) * followFrameRate
	p.lastTime = p.userTime

	maxA := weight * maxV / (followRampTime * followFrameRate)

	dx := p.targetX - p.x
	dy := p.targetY - p.y
	if math.Abs(dx) <= followEpsilon && math.Abs(dy) <= followEpsilon {
		return
	}

	d := math.Sqrt(dx*dx + dy*dy)
	ax := maxV*dx/d - p.vx
	ay := maxV*dy/d - p.vy

	if a := math.Sqrt(ax*ax + ay*ay); a > maxA {
		ax *= maxA / a
		ay *= maxA / a
	}
	p.vx += ax
	p.vy += ay

	// Highest speed that can still stop within d at maxA.
	stopV := 0.5 * (math.Sqrt(maxA*maxA+16*maxA*d-8*maxA*d) - maxA)
	if cur := math.Sqrt(p.vx*p.vx + p.vy*p.vy); cur > stopV {
		p.vx *= stopV / cur
		p.vy *= stopV / cur
	}

	p.x += p.vx
	p.y += p.vy
}

// Follow trails another driver through a TargetPoint. Target values are
// divided by Scale before they reach the point and the point is multiplied
// back, so Scale is the value treated as a full turn.
//
// Follow keeps state between calls and expects t to increase; an earlier t
// restarts it from rest.
type Follow struct {
	Target Driver
	Scale  float64

	point TargetPoint
	last  float64
	begun bool
}

func NewFollow(target Driver, scale float64) *Follow {
	if scale == 0 {
		scale = 1
	}
	return &Follow{Target: target, Scale: scale}
}

func (f *Follow) Value(t float64) float64 {
	if !f.begun || t < f.last {
		f.point.Reset()
		f.last = t
		f.begun = true
	}
	f.point.Set(f.Target.Value(t)/f.Scale, 0)
	if dt := t - f.last; dt > 0 {
		f.point.Update(dt)
	}
	f.last = t
	return f.point.X() * f.Scale
}
