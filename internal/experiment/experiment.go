package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/sway/internal/breath"
	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/drivers"
	"github.com/san-kum/sway/internal/dynamo"
	"github.com/san-kum/sway/internal/model"
	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/rigs"
	"github.com/san-kum/sway/internal/sim"
)

// Experiment is a configured rig, host model and simulator ready to run.
type Experiment struct {
	cfg       *config.Config
	engine    *physics.Engine
	model     *model.Model
	simulator *sim.Simulator
	logger    *zap.Logger
}

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

// New loads the rig and wires everything cfg describes. Metrics named in
// metricNames are attached to every tracked column.
func New(cfg *config.Config, registry *Registry, metricNames []string, opts ...Option) (*Experiment, error) {
	e := &Experiment{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	data, err := rigs.Read(cfg.Rig)
	if err != nil {
		return nil, err
	}
	e.engine, err = physics.New(data,
		physics.WithLogger(e.logger.Named("physics")),
		physics.WithOptions(physics.Options{
			Gravity: dynamo.Vec2{X: cfg.Gravity.X, Y: cfg.Gravity.Y},
			Wind:    dynamo.Vec2{X: cfg.Wind.X, Y: cfg.Wind.Y},
		}))
	if err != nil {
		return nil, fmt.Errorf("load rig %s: %w", cfg.Rig, err)
	}
	if cfg.FpsOverride > 0 {
		e.engine.Rig().Fps = cfg.FpsOverride
	}

	e.model = model.New()
	for _, p := range cfg.Parameters {
		if _, err := e.model.AddParameter(p.ID, p.Min, p.Max, p.Default); err != nil {
			return nil, err
		}
	}

	e.simulator = sim.New(e.engine, e.model)
	e.simulator.SetLogger(e.logger.Named("sim"))

	bindings, err := drivers.Bind(cfg.Drivers)
	if err != nil {
		return nil, err
	}
	for _, b := range bindings {
		e.simulator.AddDriver(b)
	}
	if len(cfg.Breath) > 0 {
		e.simulator.SetBreath(breath.New(cfg.Breath...))
	}

	for _, id := range cfg.Track {
		for _, name := range metricNames {
			m, err := registry.Metric(name, e.columnRange(id))
			if err != nil {
				return nil, err
			}
			e.simulator.AddMetric(id, m)
		}
	}

	e.logger.Info("experiment ready",
		zap.String("rig", cfg.Rig),
		zap.Int("parameters", e.model.ParameterCount()),
		zap.Int("drivers", len(bindings)),
		zap.Strings("sub_rigs", e.engine.SubRigNames()))
	return e, nil
}

func (e *Experiment) columnRange(id string) Range {
	if p, ok := e.cfg.Parameter(id); ok {
		return Range{Min: p.Min, Max: p.Max}
	}
	return Range{Min: -model.Unbounded, Max: model.Unbounded}
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		FrameRate:       e.cfg.FrameRate,
		Duration:        e.cfg.Duration,
		Stabilize:       e.cfg.Stabilize,
		Track:           append([]string(nil), e.cfg.Track...),
		ValidateSamples: true,
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.SimConfig())
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
func (e *Experiment) Engine() *physics.Engine   { return e.engine }
func (e *Experiment) Model() *model.Model       { return e.model }
func (e *Experiment) Config() *config.Config    { return e.cfg }
