package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/san-kum/sway/internal/dynamo"
	"github.com/san-kum/sway/internal/model"
	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/rigs"
)

const frame = 1.0 / 60

type strictModel struct{ *model.Model }

func (s strictModel) ParameterIndex(id string) int {
	if i, ok := s.Lookup(id); ok {
		return i
	}
	return -1
}

func loadRig(name string, opts ...physics.EngineOption) *physics.Engine {
	data, err := rigs.Get(name)
	Expect(err).NotTo(HaveOccurred())
	e, err := physics.New(data, opts...)
	Expect(err).NotTo(HaveOccurred())
	return e
}

func pendulumModel() *model.Model {
	m := model.New()
	_, err := m.AddParameter("ParamAngleZ", -90, 90, 0)
	Expect(err).NotTo(HaveOccurred())
	_, err = m.AddParameter("ParamSwing", -10, 10, 0)
	Expect(err).NotTo(HaveOccurred())
	return m
}

func run(e *physics.Engine, m *model.Model, frames int) {
	for i := 0; i < frames; i++ {
		Expect(e.Evaluate(m, frame)).To(Succeed())
	}
}

var _ = Describe("Engine", func() {
	var (
		eng *physics.Engine
		m   *model.Model
	)

	BeforeEach(func() {
		eng = loadRig("pendulum", physics.WithLogger(zaptest.NewLogger(GinkgoT())))
		m = pendulumModel()
	})

	Describe("loading", func() {
		It("starts loaded with gravity y cleared", func() {
			Expect(eng.State()).To(Equal(physics.StateLoaded))
			Expect(eng.Rig().Gravity.Y).To(BeZero())
			Expect(eng.SubRigNames()).To(Equal([]string{"Pendulum"}))
		})

		It("stays unloaded after a rejected rig", func() {
			err := eng.Parse([]byte(`{"PhysicsSettings": []}`))
			Expect(err).To(MatchError(dynamo.ErrInvalidRig))
			Expect(eng.Loaded()).To(BeFalse())
			Expect(eng.State()).To(Equal(physics.StateUnloaded))
		})

		It("returns to unloaded on release", func() {
			eng.Release()
			Expect(eng.Loaded()).To(BeFalse())
			Expect(eng.Evaluate(m, frame)).To(MatchError(dynamo.ErrNotLoaded))
		})
	})

	Describe("an unloaded engine", func() {
		It("refuses every operation and leaves the model alone", func() {
			empty := physics.NewEngine()
			m.SetParameterValueByID("ParamSwing", 3)

			Expect(empty.Evaluate(m, frame)).To(MatchError(dynamo.ErrNotLoaded))
			Expect(empty.Stabilize(m)).To(MatchError(dynamo.ErrNotLoaded))
			Expect(empty.Interpolate(m, 0.5)).To(MatchError(dynamo.ErrNotLoaded))
			Expect(m.ParameterValueByID("ParamSwing")).To(Equal(3.0))
		})
	})

	Describe("Evaluate", func() {
		It("changes nothing for a zero or negative delta", func() {
			m.SetParameterValueByID("ParamAngleZ", 45)
			run(eng, m, 7)

			values := append([]float64(nil), m.Parameters().Values...)
			prev, cur := eng.Snapshots()
			stats := eng.Stats()
			chain := append([]physics.Particle(nil), eng.Rig().Chain(0)...)

			Expect(eng.Evaluate(m, 0)).To(Succeed())
			Expect(eng.Evaluate(m, -1)).To(Succeed())

			Expect(m.Parameters().Values).To(Equal(values))
			p2, c2 := eng.Snapshots()
			Expect(p2).To(Equal(prev))
			Expect(c2).To(Equal(cur))
			Expect(eng.Stats()).To(Equal(stats))
			Expect(eng.Rig().Chain(0)).To(Equal(chain))
		})

		It("ticks at the rig rate regardless of frame rate", func() {
			run(eng, m, 60)
			Expect(eng.Stats().Ticks).To(BeNumerically("~", 30, 1))
			Expect(eng.State()).To(Equal(physics.StateRunning))
		})

		It("drops a backlog above the ceiling", func() {
			Expect(eng.Evaluate(m, physics.MaxDeltaTime+0.5)).To(Succeed())
			Expect(eng.Stats().Ticks).To(BeZero())
			Expect(eng.Stats().Remain).To(BeZero())
		})

		It("bounds the work of a single call", func() {
			Expect(eng.Evaluate(m, physics.MaxDeltaTime-0.1)).To(Succeed())
			Expect(eng.Stats().Ticks).To(BeNumerically("<=", int(physics.MaxDeltaTime*eng.Rig().Fps)))
			Expect(eng.Stats().Remain).To(BeNumerically("<", 1/eng.Rig().Fps))
		})

		It("settles the swing opposite the driving tilt", func() {
			for i := 0; i < 180; i++ {
				m.SetParameterValueByID("ParamAngleZ", 90*float64(i+1)/180)
				Expect(eng.Evaluate(m, frame)).To(Succeed())
			}
			run(eng, m, 240)

			Expect(m.ParameterValueByID("ParamSwing")).To(BeNumerically("~", dynamo.DegreesToRadian(10), 0.01))
			Expect(m.ParameterValueByID("ParamAngleZ")).To(Equal(90.0))
		})

		It("keeps every output inside its range", func() {
			heavy := loadRig("hair")
			hm := model.New()
			for _, id := range []string{"ParamAngleX", "ParamAngleZ", "ParamBodyAngleX"} {
				_, err := hm.AddParameter(id, -30, 30, 0)
				Expect(err).NotTo(HaveOccurred())
			}
			for _, id := range []string{"ParamHairFront", "ParamHairBack", "ParamHairBackTip"} {
				_, err := hm.AddParameter(id, -0.2, 0.2, 0)
				Expect(err).NotTo(HaveOccurred())
			}

			for i := 0; i < 600; i++ {
				v := 30 * math.Sin(float64(i)*0.2)
				hm.SetParameterValueByID("ParamAngleX", v)
				hm.SetParameterValueByID("ParamAngleZ", -v)
				Expect(heavy.Evaluate(hm, frame)).To(Succeed())

				for _, id := range []string{"ParamHairFront", "ParamHairBack", "ParamHairBackTip"} {
					Expect(hm.ParameterValueByID(id)).To(And(
						BeNumerically(">=", -0.2), BeNumerically("<=", 0.2)))
				}
			}

			var widened bool
			for _, o := range heavy.Stats().Outputs {
				if o.Below < -0.2 || o.Above > 0.2 {
					widened = true
				}
			}
			Expect(widened).To(BeTrue())
		})
	})

	Describe("Interpolate", func() {
		BeforeEach(func() {
			m.SetParameterValueByID("ParamAngleZ", 60)
			run(eng, m, 13)
		})

		It("reproduces the previous snapshot at 0", func() {
			prev, _ := eng.Snapshots()
			Expect(eng.Interpolate(m, 0)).To(Succeed())
			Expect(m.ParameterValueByID("ParamSwing")).To(Equal(prev[0][0]))
		})

		It("reproduces the current snapshot at 1", func() {
			_, cur := eng.Snapshots()
			Expect(eng.Interpolate(m, 1)).To(Succeed())
			Expect(m.ParameterValueByID("ParamSwing")).To(Equal(cur[0][0]))
		})
	})

	Describe("Stabilize", func() {
		It("puts the chain at its resting pose at once", func() {
			m.SetParameterValueByID("ParamAngleZ", 90)
			Expect(eng.Stabilize(m)).To(Succeed())

			Expect(eng.State()).To(Equal(physics.StateStabilized))
			Expect(m.ParameterValueByID("ParamSwing")).To(BeNumerically("~", dynamo.DegreesToRadian(10), 1e-9))

			prev, cur := eng.Snapshots()
			Expect(prev).To(Equal(cur))
		})

		It("leaves a stabilized chain still", func() {
			m.SetParameterValueByID("ParamAngleZ", 90)
			Expect(eng.Stabilize(m)).To(Succeed())
			settled := m.ParameterValueByID("ParamSwing")

			run(eng, m, 30)
			Expect(m.ParameterValueByID("ParamSwing")).To(BeNumerically("~", settled, 1e-3))
		})
	})

	Describe("options", func() {
		It("defaults to downward gravity and no wind", func() {
			Expect(eng.Options()).To(Equal(physics.Options{
				Gravity: dynamo.Vec2{X: 0, Y: -1},
			}))
		})

		It("pushes the chain with wind", func() {
			eng.SetOptions(physics.Options{Gravity: dynamo.Vec2{Y: -1}, Wind: dynamo.Vec2{X: 1}})
			run(eng, m, 120)
			Expect(m.ParameterValueByID("ParamSwing")).NotTo(BeNumerically("~", 0, 1e-3))
		})
	})

	Describe("parameters the model cannot provide", func() {
		It("warns once and skips them", func() {
			core, logs := observer.New(zap.WarnLevel)
			e := loadRig("pendulum", physics.WithLogger(zap.New(core)))

			sm := strictModel{model.New()}
			_, err := sm.AddParameter("ParamAngleZ", -90, 90, 45)
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 10; i++ {
				Expect(e.Evaluate(sm, frame)).To(Succeed())
			}
			Expect(sm.ParameterCount()).To(Equal(1))

			missing := logs.FilterMessage("parameter not found")
			Expect(missing.Len()).To(Equal(1))
			Expect(missing.All()[0].ContextMap()).To(HaveKeyWithValue("id", "ParamSwing"))
		})

		It("adds them when the model creates ids on lookup", func() {
			open := model.New()
			Expect(eng.Evaluate(open, frame)).To(Succeed())
			Expect(open.ParameterCount()).To(Equal(2))
		})
	})
})
