package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/sway/internal/breath"
	"github.com/san-kum/sway/internal/drivers"
)

// ErrNotStarted is returned by Step before Start has bound a run.
var ErrNotStarted = errors.New("sim: run not started")

type boundMetric struct {
	column int
	name   string
	metric Metric
}

// Simulator runs a render loop: drivers, breathing and physics once per
// frame, then records the tracked parameters.
type Simulator struct {
	engine    Engine
	model     Host
	drivers   []drivers.Binding
	breath    *breath.Breath
	metrics   []boundMetric
	pending   []pendingMetric
	observers []Observer
	logger    *zap.Logger

	// track is the column list bound by the last start.
	track   []string
	started bool
}

type pendingMetric struct {
	column string
	metric Metric
}

func New(engine Engine, model Host) *Simulator {
	return &Simulator{
		engine:    engine,
		model:     model,
		observers: make([]Observer, 0),
		logger:    zap.NewNop(),
	}
}

func (s *Simulator) AddDriver(b drivers.Binding) { s.drivers = append(s.drivers, b) }
func (s *Simulator) SetBreath(b *breath.Breath)  { s.breath = b }
func (s *Simulator) AddObserver(o Observer)      { s.observers = append(s.observers, o) }

// AddMetric observes the tracked column with m.
func (s *Simulator) AddMetric(column string, m Metric) {
	s.pending = append(s.pending, pendingMetric{column: column, metric: m})
}

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.FrameRate <= 0 {
		return fmt.Errorf("frame rate must be positive, got %f", cfg.FrameRate)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func (s *Simulator) bindMetrics(track []string) error {
	s.metrics = s.metrics[:0]
	for _, p := range s.pending {
		col := -1
		for i, id := range track {
			if id == p.column {
				col = i
				break
			}
		}
		if col < 0 {
			return fmt.Errorf("metric %s: %s is not tracked", p.metric.Name(), p.column)
		}
		p.metric.Reset()
		s.metrics = append(s.metrics, boundMetric{column: col, name: MetricKey(p.column, p.metric.Name()), metric: p.metric})
	}
	return nil
}

func (s *Simulator) drive(t float64) {
	s.model.LoadParameters()
	for _, b := range s.drivers {
		s.model.SetParameterValueByID(b.Parameter, b.Driver.Value(t))
	}
	s.model.SaveParameters()
}

func (s *Simulator) start(cfg Config) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	if err := s.bindMetrics(cfg.Track); err != nil {
		return err
	}
	s.track = append([]string(nil), cfg.Track...)
	s.started = true
	if s.breath != nil {
		s.breath.Reset()
	}

	s.model.SaveParameters()
	s.drive(0)
	if cfg.Stabilize {
		if err := s.engine.Stabilize(s.model); err != nil {
			return fmt.Errorf("stabilize: %w", err)
		}
	}
	return nil
}

func (s *Simulator) step(t, dt float64) error {
	s.drive(t)
	if s.breath != nil {
		s.breath.Update(s.model, dt)
	}
	return s.engine.Evaluate(s.model, dt)
}

func (s *Simulator) sample(track []string) Sample {
	out := make(Sample, len(track))
	for i, id := range track {
		out[i] = s.model.ParameterValueByID(id)
	}
	return out
}

func (s *Simulator) record(result *Result, f Frame, x Sample) {
	for _, m := range s.metrics {
		m.metric.Observe(f.Time, x[m.column])
	}
	for _, obs := range s.observers {
		obs.OnFrame(f, x)
	}
	result.Times = append(result.Times, f.Time)
	result.Samples = append(result.Samples, x)
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.start(cfg); err != nil {
		return nil, err
	}

	frames := cfg.Frames()
	dt := cfg.Dt()
	startTicks := s.engine.Stats().Ticks

	result := &Result{
		Times:   make([]float64, 0, frames+1),
		Columns: append([]string(nil), cfg.Track...),
		Samples: make([]Sample, 0, frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	s.logger.Debug("run started",
		zap.Int("frames", frames),
		zap.Float64("frame_rate", cfg.FrameRate),
		zap.Strings("track", cfg.Track))

	s.record(result, Frame{Index: 0, Time: 0, Dt: dt}, s.sample(cfg.Track))

	for i := 1; i <= frames; i++ {
		select {
		case <-ctx.Done():
			result.Ticks = s.engine.Stats().Ticks - startTicks
			return result, ctx.Err()
		default:
		}

		t := float64(i) * dt
		if err := s.step(t, dt); err != nil {
			return result, fmt.Errorf("frame %d: %w", i, err)
		}

		x := s.sample(cfg.Track)
		if cfg.ValidateSamples && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Frame: i, Message: "invalid sample (NaN/Inf)"})
			break
		}

		s.record(result, Frame{Index: i, Time: t, Dt: dt}, x)
		result.Frames++
	}

	result.Ticks = s.engine.Stats().Ticks - startTicks
	for _, m := range s.metrics {
		result.Metrics[m.name] = m.metric.Value()
	}

	s.logger.Debug("run finished", zap.Int("frames", result.Frames), zap.Int("ticks", result.Ticks))
	return result, nil
}

// RunWithCallback runs until the duration elapses or callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame, Sample) bool) error {
	if err := s.start(cfg); err != nil {
		return err
	}

	dt := cfg.Dt()
	frames := cfg.Frames()

	if !callback(Frame{Index: 0, Time: 0, Dt: dt}, s.sample(cfg.Track)) {
		return nil
	}

	for i := 1; i <= frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * dt
		if err := s.step(t, dt); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}

		x := s.sample(cfg.Track)
		if cfg.ValidateSamples && !x.IsValid() {
			return SimError{Time: t, Frame: i, Message: "invalid sample (NaN/Inf)"}
		}
		if !callback(Frame{Index: i, Time: t, Dt: dt}, x) {
			return nil
		}
	}
	return nil
}

// Start prepares a frame-by-frame run driven through Step. The tracked
// columns of cfg are sampled by every later Step and Read.
func (s *Simulator) Start(cfg Config) error {
	return s.start(cfg)
}

// Step advances the frame ending at f.Time and samples the tracked
// parameters. Bound metrics and observers see the sample.
func (s *Simulator) Step(f Frame) (Sample, error) {
	if !s.started {
		return nil, ErrNotStarted
	}
	if err := s.step(f.Time, f.Dt); err != nil {
		return nil, fmt.Errorf("frame %d: %w", f.Index, err)
	}
	x := s.sample(s.track)
	for _, m := range s.metrics {
		m.metric.Observe(f.Time, x[m.column])
	}
	for _, obs := range s.observers {
		obs.OnFrame(f, x)
	}
	return x, nil
}

// Read samples the tracked parameters without advancing.
func (s *Simulator) Read() Sample {
	return s.sample(s.track)
}
