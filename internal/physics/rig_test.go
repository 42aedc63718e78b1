package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sway/internal/dynamo"
	"github.com/san-kum/sway/internal/model"
	"github.com/san-kum/sway/internal/physics"
)

const tick = 1.0 / 30

var unit = physics.Normalization{Minimum: -10, Maximum: 10}

type chain struct {
	inputs  []physics.Input
	outputs []physics.Output
}

func input(id string, typ physics.Source) physics.Input {
	return physics.Input{Source: physics.Parameter{ID: id}, Weight: 100, Type: typ}
}

func output(id string, typ physics.Source, vertex int, scale, weight float64) physics.Output {
	return physics.Output{
		Destination: physics.Parameter{ID: id},
		VertexIndex: vertex,
		AngleScale:  scale,
		Weight:      weight,
		Type:        typ,
	}
}

// handRig lays out one anchor plus one link of radius 10 per chain.
func handRig(chains ...chain) *physics.Rig {
	rig := &physics.Rig{Fps: 30, Gravity: dynamo.Vec2{Y: -1}, SubRigCount: len(chains)}
	for _, c := range chains {
		rig.Settings = append(rig.Settings, physics.SubRig{
			InputCount:            len(c.inputs),
			OutputCount:           len(c.outputs),
			ParticleCount:         2,
			BaseInputIndex:        len(rig.Inputs),
			BaseOutputIndex:       len(rig.Outputs),
			BaseParticleIndex:     len(rig.Particles),
			NormalizationPosition: unit,
			NormalizationAngle:    unit,
		})
		rig.Inputs = append(rig.Inputs, c.inputs...)
		rig.Outputs = append(rig.Outputs, c.outputs...)
		rig.Particles = append(rig.Particles,
			physics.Particle{Mobility: 1, Delay: 1, Acceleration: 1},
			physics.Particle{Mobility: 0.9, Delay: 0.9, Acceleration: 1.5, Radius: 10},
		)
	}
	return rig
}

func swingRig(angleScale float64) *physics.Rig {
	return handRig(chain{
		inputs:  []physics.Input{input("ParamAngleZ", physics.SourceAngle)},
		outputs: []physics.Output{output("ParamSwing", physics.SourceAngle, 1, angleScale, 100)},
	})
}

func addParameters(m *model.Model, lo, hi, def float64, ids ...string) {
	for _, id := range ids {
		_, err := m.AddParameter(id, lo, hi, def)
		Expect(err).NotTo(HaveOccurred())
	}
}

func loadHand(rig *physics.Rig) *physics.Engine {
	e := physics.NewEngine()
	Expect(e.Load(rig)).To(Succeed())
	return e
}

var _ = Describe("Load", func() {
	It("binds the per-type behavior of a hand-built rig", func() {
		e := loadHand(swingRig(1))
		Expect(e.State()).To(Equal(physics.StateLoaded))
		Expect(e.Rig().Names).To(Equal([]string{""}))

		m := pendulumModel()
		m.SetParameterValueByID("ParamAngleZ", 60)
		run(e, m, 30)
		Expect(m.ParameterValueByID("ParamSwing")).NotTo(BeZero())
	})

	It("looks parameter indices up again for the next model", func() {
		rig := swingRig(1)
		rig.Inputs[0].SourceParameterIndex = 1
		rig.Outputs[0].DestinationParameterIndex = 0
		e := loadHand(rig)

		m := pendulumModel()
		m.SetParameterValueByID("ParamAngleZ", 60)
		run(e, m, 30)
		Expect(m.ParameterValueByID("ParamAngleZ")).To(Equal(60.0))
		Expect(m.ParameterValueByID("ParamSwing")).NotTo(BeZero())
	})

	DescribeTable("rejects a rig it cannot simulate",
		func(breakRig func(*physics.Rig), want error) {
			rig := swingRig(1)
			breakRig(rig)

			e := loadHand(swingRig(1))
			Expect(e.Load(rig)).To(MatchError(want))
			Expect(e.Loaded()).To(BeFalse())
			Expect(e.State()).To(Equal(physics.StateUnloaded))
			Expect(e.Evaluate(pendulumModel(), frame)).To(MatchError(dynamo.ErrNotLoaded))
		},
		Entry("no settings", func(r *physics.Rig) { r.Settings = nil }, dynamo.ErrInvalidRig),
		Entry("count mismatch", func(r *physics.Rig) { r.SubRigCount = 2 }, dynamo.ErrInvalidRig),
		Entry("particles past the array", func(r *physics.Rig) { r.Settings[0].ParticleCount = 3 }, dynamo.ErrInvalidRig),
		Entry("no particles", func(r *physics.Rig) { r.Settings[0].ParticleCount = 0 }, dynamo.ErrInvalidRig),
		Entry("inputs past the array", func(r *physics.Rig) { r.Settings[0].BaseInputIndex = 1 }, dynamo.ErrInvalidRig),
		Entry("negative output base", func(r *physics.Rig) { r.Settings[0].BaseOutputIndex = -1 }, dynamo.ErrInvalidRig),
		Entry("unknown input type", func(r *physics.Rig) { r.Inputs[0].Type = physics.Source(7) }, dynamo.ErrUnknownType),
		Entry("unknown output type", func(r *physics.Rig) { r.Outputs[0].Type = physics.Source(7) }, dynamo.ErrInvalidRig),
	)

	It("rejects a nil rig", func() {
		Expect(physics.NewEngine().Load(nil)).To(MatchError(dynamo.ErrInvalidRig))
	})
})

var _ = Describe("Rig wiring", func() {
	Describe("output vertices outside the chain", func() {
		It("are skipped by every pass", func() {
			e := loadHand(handRig(chain{
				inputs: []physics.Input{input("ParamAngleZ", physics.SourceAngle)},
				outputs: []physics.Output{
					output("ParamA", physics.SourceAngle, 1, 1, 100),
					output("ParamB", physics.SourceAngle, 0, 1, 100),
					output("ParamC", physics.SourceAngle, 2, 1, 100),
				},
			}))
			m := model.New()
			addParameters(m, -90, 90, 0, "ParamAngleZ")
			addParameters(m, -10, 10, 0, "ParamA")
			addParameters(m, -10, 10, 0.5, "ParamB")
			addParameters(m, -10, 10, 0.25, "ParamC")

			m.SetParameterValueByID("ParamAngleZ", 60)
			Expect(e.Stabilize(m)).To(Succeed())
			m.SetParameterValueByID("ParamAngleZ", -60)
			run(e, m, 30)
			Expect(e.Interpolate(m, 1)).To(Succeed())

			Expect(m.ParameterValueByID("ParamA")).NotTo(BeZero())
			Expect(m.ParameterValueByID("ParamB")).To(Equal(0.5))
			Expect(m.ParameterValueByID("ParamC")).To(Equal(0.25))

			prev, cur := e.Snapshots()
			Expect(cur[0][1:]).To(Equal([]float64{0, 0}))
			Expect(prev[0][1:]).To(Equal([]float64{0, 0}))
		})
	})

	Describe("outputs sharing a destination", func() {
		var m *model.Model

		build := func(scales ...float64) *physics.Engine {
			c := chain{inputs: []physics.Input{input("ParamAngleZ", physics.SourceAngle)}}
			for _, s := range scales {
				c.outputs = append(c.outputs, output("ParamD", physics.SourceAngle, 1, s, 50))
			}
			return loadHand(handRig(c))
		}

		BeforeEach(func() {
			m = model.New()
			addParameters(m, -90, 90, 0, "ParamAngleZ")
			addParameters(m, -100, 100, 0.4, "ParamD")
			m.SetParameterValueByID("ParamAngleZ", 60)
		})

		It("blend into each other in declaration order", func() {
			e := build(1, 3)
			Expect(e.Stabilize(m)).To(Succeed())

			_, cur := e.Snapshots()
			v := cur[0][0]
			Expect(v).NotTo(BeZero())
			Expect(cur[0][1]).To(Equal(v))

			// 0.5*(0.5*d + 0.5*v) + 0.5*3v
			Expect(m.ParameterValueByID("ParamD")).To(BeNumerically("~", 0.25*0.4+1.75*v, 1e-12))

			m.SetParameterValueByID("ParamD", 0.4)
			Expect(e.Interpolate(m, 1)).To(Succeed())
			Expect(m.ParameterValueByID("ParamD")).To(BeNumerically("~", 0.25*0.4+1.75*v, 1e-12))
		})

		It("give a different value when declared the other way round", func() {
			e := build(3, 1)
			Expect(e.Stabilize(m)).To(Succeed())

			_, cur := e.Snapshots()
			v := cur[0][0]
			Expect(m.ParameterValueByID("ParamD")).To(BeNumerically("~", 0.25*0.4+1.25*v, 1e-12))
		})
	})

	Describe("chaining between sub-rigs", func() {
		var m *model.Model

		upstream := chain{
			inputs:  []physics.Input{input("ParamAngleZ", physics.SourceAngle)},
			outputs: []physics.Output{output("ParamMid", physics.SourceAngle, 1, 100, 100)},
		}
		downstream := chain{
			inputs:  []physics.Input{input("ParamMid", physics.SourceAngle)},
			outputs: []physics.Output{output("ParamEnd", physics.SourceAngle, 1, 1, 100)},
		}

		BeforeEach(func() {
			m = model.New()
			addParameters(m, -90, 90, 0, "ParamAngleZ")
			addParameters(m, -0.1, 0.1, 0, "ParamMid")
			addParameters(m, -10, 10, 0, "ParamEnd")
			m.SetParameterValueByID("ParamAngleZ", 60)
		})

		It("feeds an earlier output to a later input within the tick", func() {
			e := loadHand(handRig(upstream, downstream))
			Expect(e.Evaluate(m, tick)).To(Succeed())
			Expect(e.Stats().Ticks).To(Equal(1))

			link := e.Rig().Chain(1)[1].Position
			Expect(math.Abs(link.X)).To(BeNumerically(">", 0))
			_, cur := e.Snapshots()
			Expect(cur[1][0]).NotTo(BeZero())
		})

		It("leaves an earlier sub-rig blind to a later output in the same tick", func() {
			e := loadHand(handRig(downstream, upstream))
			Expect(e.Evaluate(m, tick)).To(Succeed())
			Expect(e.Stats().Ticks).To(Equal(1))

			Expect(e.Rig().Chain(0)[1].Position).To(Equal(dynamo.Vec2{X: 0, Y: 10}))
			_, cur := e.Snapshots()
			Expect(cur[0][0]).To(BeZero())
			Expect(cur[1][0]).NotTo(BeZero())
		})
	})

	Describe("translation inputs and outputs", func() {
		var (
			e   *physics.Engine
			m   *model.Model
			rig *physics.Rig
		)

		BeforeEach(func() {
			rig = handRig(chain{
				inputs: []physics.Input{
					input("ParamMoveX", physics.SourceX),
					input("ParamMoveY", physics.SourceY),
				},
				outputs: []physics.Output{
					output("ParamOutX", physics.SourceX, 1, 5, 100),
					output("ParamOutY", physics.SourceY, 1, 5, 100),
				},
			})
			m = model.New()
			addParameters(m, -10, 10, 0, "ParamMoveX", "ParamMoveY")
			addParameters(m, -1, 1, 0.7, "ParamOutX", "ParamOutY")
			m.SetParameterValueByID("ParamMoveX", 10)
			m.SetParameterValueByID("ParamMoveY", 5)
		})

		It("moves the anchor and reads the link offset", func() {
			e = loadHand(rig)
			Expect(e.Evaluate(m, tick)).To(Succeed())

			links := e.Rig().Chain(0)
			Expect(links[0].Position).To(Equal(dynamo.Vec2{X: -10, Y: -5}))

			_, cur := e.Snapshots()
			offset := links[1].Position.Sub(links[0].Position)
			Expect(cur[0][0]).To(BeNumerically("~", offset.X, 1e-12))
			Expect(cur[0][1]).To(BeNumerically("~", offset.Y, 1e-12))
			Expect(cur[0][0]).NotTo(BeZero())
			Expect(cur[0][1]).NotTo(BeZero())
		})

		It("writes zero when the translation scale is zero", func() {
			e = loadHand(rig)
			run(e, m, 10)

			Expect(m.ParameterValueByID("ParamOutX")).To(BeZero())
			Expect(m.ParameterValueByID("ParamOutY")).To(BeZero())
		})

		It("scales by the translation scale, not the angle scale", func() {
			rig.Outputs[0].TranslationScale = dynamo.Vec2{X: 0.01, Y: 100}
			rig.Outputs[1].TranslationScale = dynamo.Vec2{X: 100, Y: 0.01}
			e = loadHand(rig)
			run(e, m, 10)
			Expect(e.Interpolate(m, 1)).To(Succeed())

			_, cur := e.Snapshots()
			Expect(m.ParameterValueByID("ParamOutX")).To(BeNumerically("~", cur[0][0]*0.01, 1e-12))
			Expect(m.ParameterValueByID("ParamOutY")).To(BeNumerically("~", cur[0][1]*0.01, 1e-12))
		})
	})

	Describe("a single swinging link driven from 0 to 90 degrees", func() {
		It("settles on the angle scale times its resting angle without blowing up", func() {
			const angleScale = 2.0

			ref := loadHand(swingRig(angleScale))
			rm := pendulumModel()
			rm.SetParameterValueByID("ParamAngleZ", 90)
			Expect(ref.Stabilize(rm)).To(Succeed())
			rest := rm.ParameterValueByID("ParamSwing")
			Expect(rest).To(BeNumerically("~", angleScale*dynamo.DegreesToRadian(10), 1e-9))

			e := loadHand(swingRig(angleScale))
			m := pendulumModel()
			peak := 0.0
			var tail []float64
			for i := 0; i < 180+240; i++ {
				m.SetParameterValueByID("ParamAngleZ", 90*math.Min(float64(i+1)/180, 1))
				Expect(e.Evaluate(m, frame)).To(Succeed())

				v := m.ParameterValueByID("ParamSwing")
				Expect(math.IsNaN(v)).To(BeFalse())
				peak = math.Max(peak, math.Abs(v))
				if i >= 180+240-30 {
					tail = append(tail, v)
				}
			}

			Expect(peak).To(BeNumerically("<", angleScale*math.Pi))
			final := tail[len(tail)-1]
			Expect(final).To(BeNumerically("~", rest, 0.02))
			for _, v := range tail {
				Expect(v).To(BeNumerically("~", final, 1e-3))
			}
		})
	})
})
