package physics

import (
	"math"

	"github.com/san-kum/sway/internal/dynamo"
)

const (
	// AirResistance divides the gravity rotation applied to each link per
	// tick, so chains lag behind a turning anchor.
	AirResistance = 5.0

	// MaximumWeight is the weight that fully applies an input or output.
	MaximumWeight = 100.0

	// MovementThreshold scales the position normalization maximum into the
	// |x| below which a particle snaps to x = 0.
	MovementThreshold = 0.001

	// MaxDeltaTime bounds the unprocessed time carried between evaluations.
	MaxDeltaTime = 5.0

	// referenceRate anchors particle delay to a 30 fps tick.
	referenceRate = 30.0
)

// restGravity is the initial gravity reference, pointing up the chain.
var restGravity = dynamo.Vec2{X: 0, Y: 1}

// InitializeChain puts a chain into its rest pose: particle 0 at the
// origin and every following particle Radius further along +Y.
func InitializeChain(strand []Particle) {
	if len(strand) == 0 {
		return
	}

	strand[0].InitialPosition = dynamo.Vec2{}
	strand[0].Position = strand[0].InitialPosition
	strand[0].LastPosition = strand[0].InitialPosition
	strand[0].LastGravity = restGravity
	strand[0].Velocity = dynamo.Vec2{}
	strand[0].Force = dynamo.Vec2{}

	for i := 1; i < len(strand); i++ {
		radius := dynamo.Vec2{Y: strand[i].Radius}
		strand[i].InitialPosition = strand[i-1].InitialPosition.Add(radius)
		strand[i].Position = strand[i].InitialPosition
		strand[i].LastPosition = strand[i].InitialPosition
		strand[i].LastGravity = restGravity
		strand[i].Velocity = dynamo.Vec2{}
		strand[i].Force = dynamo.Vec2{}
	}
}

func currentGravity(totalAngle float64) dynamo.Vec2 {
	return dynamo.RadianToDirection(dynamo.DegreesToRadian(totalAngle)).Normalize()
}

// UpdateParticles advances a chain by one physics tick.
//
// Particle 0 moves to totalTranslation. Every other particle is rotated
// with the change in gravity, pushed by its velocity and force, then pulled
// back to exactly Radius from its predecessor.
func UpdateParticles(strand []Particle, totalTranslation dynamo.Vec2, totalAngle float64,
	wind dynamo.Vec2, threshold, dt, airResistance float64) {
	if len(strand) == 0 {
		return
	}

	strand[0].Position = totalTranslation
	gravity := currentGravity(totalAngle)

	for i := 1; i < len(strand); i++ {
		p := &strand[i]
		prev := &strand[i-1]

		p.Force = gravity.Scale(p.Acceleration).Add(wind)
		p.LastPosition = p.Position

		delay := p.Delay * dt * referenceRate

		direction := p.Position.Sub(prev.Position)
		radian := dynamo.DirectionToRadian(p.LastGravity, gravity) / airResistance

		// y uses the already rotated x.
		direction.X = math.Cos(radian)*direction.X - direction.Y*math.Sin(radian)
		direction.Y = math.Sin(radian)*direction.X + direction.Y*math.Cos(radian)

		p.Position = prev.Position.Add(direction)

		velocity := p.Velocity.Scale(delay)
		force := p.Force.Scale(delay).Scale(delay)
		p.Position = p.Position.Add(velocity).Add(force)

		newDirection := p.Position.Sub(prev.Position).Normalize()
		p.Position = prev.Position.Add(newDirection.Scale(p.Radius))

		if math.Abs(p.Position.X) < threshold {
			p.Position.X = 0
		}

		if delay != 0 {
			p.Velocity = p.Position.Sub(p.LastPosition).Div(delay).Scale(p.Mobility)
		}

		p.Force = dynamo.Vec2{}
		p.LastGravity = gravity
	}
}

// UpdateParticlesForStabilization settles a chain straight onto its force
// direction with zero velocity. Used once to compute a resting pose.
func UpdateParticlesForStabilization(strand []Particle, totalTranslation dynamo.Vec2, totalAngle float64,
	wind dynamo.Vec2, threshold float64) {
	if len(strand) == 0 {
		return
	}

	strand[0].Position = totalTranslation
	gravity := currentGravity(totalAngle)

	for i := 1; i < len(strand); i++ {
		p := &strand[i]

		p.Force = gravity.Scale(p.Acceleration).Add(wind)
		p.LastPosition = p.Position
		p.Velocity = dynamo.Vec2{}

		force := p.Force.Normalize().Scale(p.Radius)
		p.Position = strand[i-1].Position.Add(force)

		if math.Abs(p.Position.X) < threshold {
			p.Position.X = 0
		}

		p.Force = dynamo.Vec2{}
		p.LastGravity = gravity
	}
}
