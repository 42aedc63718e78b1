// Package dynamo provides the primitives shared by the rig simulation:
//
//   - [Vec2]: 2D vector value type used for particle positions and forces
//   - [DegreesToRadian], [DirectionToRadian], [RadianToDirection]: angle helpers
//   - sentinel errors such as [ErrInvalidRig] and [ErrNotLoaded]
//
// Vec2 methods never mutate the receiver; every operation returns a new value.
//
//	a := dynamo.Vec2{X: 0, Y: 1}
//	b := a.Scale(2).Add(dynamo.Vec2{X: 1})
package dynamo
