// Package physics simulates secondary motion for rigged 2D models.
//
// A rig is a set of sub-rigs. Each sub-rig reads weighted driving
// parameters from the host model, moves a chain of particles anchored at
// its first vertex, and writes corrective parameters back:
//
//	eng, err := physics.New(data, physics.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	_ = eng.Stabilize(model)
//	for frame := range frames {
//	    _ = eng.Evaluate(model, frame.Delta)
//	}
//
// Physics advances in fixed ticks of 1/Fps independent of the render rate.
// The model always receives outputs interpolated between the two latest
// ticks.
package physics
