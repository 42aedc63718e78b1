package physics

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/sway/internal/dynamo"
)

// Model is the host model the engine reads driving parameters from and
// writes corrective values into.
type Model interface {
	ParameterCount() int
	// ParameterIndex resolves an id to a stable index, or a negative value
	// when the model cannot provide one.
	ParameterIndex(id string) int
	Parameters() dynamo.Parameters
}

// Options are the evaluate-time forces.
type Options struct {
	// Gravity is the parent direction, reversed, of angle outputs that read
	// the first dynamic particle.
	Gravity dynamo.Vec2
	// Wind is added to every particle's force each tick.
	Wind dynamo.Vec2
}

func DefaultOptions() Options {
	return Options{
		Gravity: dynamo.Vec2{X: 0, Y: -1},
		Wind:    dynamo.Vec2{X: 0, Y: 0},
	}
}

type State int

const (
	StateUnloaded State = iota
	StateLoaded
	StateStabilized
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateStabilized:
		return "stabilized"
	case StateRunning:
		return "running"
	}
	return "unknown"
}

// Engine simulates every sub-rig of a loaded rig against a host model.
// It is not safe for concurrent use.
type Engine struct {
	rig     *Rig
	state   State
	options Options
	logger  *zap.Logger

	// Per sub-rig output snapshots bracketing the current render frame.
	currentOutputs  [][]float64
	previousOutputs [][]float64

	remain float64
	ticks  int

	parameterCaches      []float64
	parameterInputCaches []float64
}

type EngineOption func(*Engine)

func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithOptions(o Options) EngineOption {
	return func(e *Engine) { e.options = o }
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		options: DefaultOptions(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// New creates an engine and loads the rig in data.
func New(data []byte, opts ...EngineOption) (*Engine, error) {
	e := NewEngine(opts...)
	if err := e.Parse(data); err != nil {
		return nil, err
	}
	return e, nil
}

// Parse loads a physics3.json rig, replacing any rig already loaded. On
// failure the engine is left unloaded.
func (e *Engine) Parse(data []byte) error {
	e.Release()

	doc, err := DecodeDocument(data)
	if err != nil {
		e.logger.Warn("rig rejected", zap.Error(err))
		return err
	}
	rig, err := BuildRig(doc)
	if err != nil {
		e.logger.Warn("rig rejected", zap.Error(err))
		return err
	}

	return e.Load(rig)
}

// Load installs an already built rig and puts every chain at rest. A rig
// whose sub-rig slices overrun its arrays, or whose inputs or outputs carry
// an unknown type, is rejected and the engine is left unloaded.
func (e *Engine) Load(rig *Rig) error {
	e.Release()

	if rig == nil {
		return rigError(-1, "Rig", errors.New("nil rig"))
	}
	if err := rig.prepare(); err != nil {
		e.logger.Warn("rig rejected", zap.Error(err))
		return err
	}

	e.rig = rig
	e.currentOutputs = make([][]float64, rig.SubRigCount)
	e.previousOutputs = make([][]float64, rig.SubRigCount)
	for i := range rig.Settings {
		e.currentOutputs[i] = make([]float64, rig.Settings[i].OutputCount)
		e.previousOutputs[i] = make([]float64, rig.Settings[i].OutputCount)
	}

	e.Initialize()
	rig.Gravity.Y = 0
	e.state = StateLoaded

	e.logger.Info("rig loaded",
		zap.Int("sub_rigs", rig.SubRigCount),
		zap.Int("inputs", len(rig.Inputs)),
		zap.Int("outputs", len(rig.Outputs)),
		zap.Int("particles", len(rig.Particles)),
		zap.Float64("fps", rig.Fps),
	)
	return nil
}

// Initialize returns every chain to its rest pose.
func (e *Engine) Initialize() {
	if e.rig == nil {
		return
	}
	for i := range e.rig.Settings {
		InitializeChain(e.rig.particles(&e.rig.Settings[i]))
	}
}

// Release drops the rig and all per-rig state.
func (e *Engine) Release() {
	e.rig = nil
	e.state = StateUnloaded
	e.currentOutputs = nil
	e.previousOutputs = nil
	e.remain = 0
	e.ticks = 0
	e.parameterCaches = nil
	e.parameterInputCaches = nil
}

func (e *Engine) Rig() *Rig        { return e.rig }
func (e *Engine) State() State     { return e.state }
func (e *Engine) Loaded() bool     { return e.rig != nil }
func (e *Engine) Options() Options { return e.options }

func (e *Engine) SetOptions(o Options) { e.options = o }

// SubRigNames returns the dictionary name of each sub-rig.
func (e *Engine) SubRigNames() []string {
	if e.rig == nil {
		return nil
	}
	return append([]string(nil), e.rig.Names...)
}

// Snapshots returns copies of the previous and current output snapshots.
func (e *Engine) Snapshots() (previous, current [][]float64) {
	previous = make([][]float64, len(e.previousOutputs))
	current = make([][]float64, len(e.currentOutputs))
	for i := range e.previousOutputs {
		previous[i] = append([]float64(nil), e.previousOutputs[i]...)
		current[i] = append([]float64(nil), e.currentOutputs[i]...)
	}
	return previous, current
}

func (e *Engine) lookup(m Model, id string) int {
	idx := m.ParameterIndex(id)
	if idx < 0 {
		e.logger.Warn("parameter not found", zap.String("id", id))
		return missingParameter
	}
	return idx
}

// resolve caches parameter indices that have not been looked up yet.
func (e *Engine) resolve(m Model) {
	for i := range e.rig.Inputs {
		in := &e.rig.Inputs[i]
		if in.SourceParameterIndex == unresolved {
			in.SourceParameterIndex = e.lookup(m, in.Source.ID)
		}
	}
	for i := range e.rig.Outputs {
		out := &e.rig.Outputs[i]
		if out.DestinationParameterIndex == unresolved {
			out.DestinationParameterIndex = e.lookup(m, out.Destination.ID)
		}
	}
}

func usable(idx, n int) bool {
	return idx >= 0 && idx < n
}

// growCache extends buf to n entries, keeping existing entries and filling
// new ones from fill.
func growCache(buf []float64, n int, fill []float64) []float64 {
	if len(buf) >= n {
		return buf
	}
	grown := make([]float64, n)
	copy(grown, buf)
	for j := len(buf); j < n; j++ {
		grown[j] = fill[j]
	}
	return grown
}

func (e *Engine) ensureCaches(values []float64) {
	e.parameterCaches = growCache(e.parameterCaches, len(values), values)
	e.parameterInputCaches = growCache(e.parameterInputCaches, len(values), values)
}

// parameters resolves pending indices and returns the model buffers, trimmed
// to the shortest of them.
func (e *Engine) parameters(m Model) dynamo.Parameters {
	e.resolve(m)
	p := m.Parameters()
	n := min(m.ParameterCount(), len(p.Values), len(p.Minimum), len(p.Maximum), len(p.Default))
	return dynamo.Parameters{
		Values:  p.Values[:n],
		Minimum: p.Minimum[:n],
		Maximum: p.Maximum[:n],
		Default: p.Default[:n],
	}
}

// gather sums a sub-rig's inputs read from values and rotates the
// translation by the negated total angle.
func (e *Engine) gather(setting *SubRig, values []float64, p dynamo.Parameters) aggregate {
	var agg aggregate
	for _, in := range e.rig.inputs(setting) {
		idx := in.SourceParameterIndex
		if !usable(idx, len(values)) {
			continue
		}
		in.accumulate(&agg, values[idx], p.Minimum[idx], p.Maximum[idx], p.Default[idx],
			setting.NormalizationPosition, setting.NormalizationAngle, in.Reflect, in.Weight/MaximumWeight)
	}

	rad := dynamo.DegreesToRadian(-agg.Angle)
	// y uses the already rotated x.
	agg.Translation.X = agg.Translation.X*math.Cos(rad) - agg.Translation.Y*math.Sin(rad)
	agg.Translation.Y = agg.Translation.X*math.Sin(rad) + agg.Translation.Y*math.Cos(rad)
	return agg
}

// extract reads output i of a sub-rig from its chain. ok is false when the
// output is skipped.
func (e *Engine) extract(particles []Particle, out *Output) (float64, bool) {
	vi := out.VertexIndex
	if vi < 1 || vi >= len(particles) {
		return 0, false
	}
	translation := particles[vi].Position.Sub(particles[vi-1].Position)
	return out.value(translation, particles, vi, out.Reflect, e.options.Gravity), true
}

// Stabilize settles every chain onto its resting pose for the model's
// current parameters and writes the result straight into the model.
func (e *Engine) Stabilize(m Model) error {
	if e.rig == nil {
		return dynamo.ErrNotLoaded
	}

	p := e.parameters(m)
	e.ensureCaches(p.Values)
	for j := range p.Values {
		e.parameterCaches[j] = p.Values[j]
		e.parameterInputCaches[j] = p.Values[j]
	}

	for s := range e.rig.Settings {
		setting := &e.rig.Settings[s]
		particles := e.rig.particles(setting)
		outputs := e.rig.outputs(setting)

		agg := e.gather(setting, p.Values, p)
		UpdateParticlesForStabilization(particles, agg.Translation, agg.Angle, e.options.Wind,
			MovementThreshold*setting.NormalizationPosition.Maximum)

		for i := range outputs {
			out := &outputs[i]
			value, ok := e.extract(particles, out)
			if !ok {
				continue
			}
			e.currentOutputs[s][i] = value
			e.previousOutputs[s][i] = value

			idx := out.DestinationParameterIndex
			if !usable(idx, len(p.Values)) {
				continue
			}
			v := out.Denormalize(value, p.Minimum[idx], p.Maximum[idx], p.Values[idx])
			p.Values[idx] = v
			e.parameterCaches[idx] = v
		}
	}

	e.state = StateStabilized
	return nil
}

// Evaluate advances the simulation by dt seconds of render time.
//
// Physics runs in fixed ticks of 1/Fps (or dt when the rig has no Fps); the
// leftover time carries to the next call. The model receives the blend of
// the two latest snapshots at the leftover fraction of a tick.
func (e *Engine) Evaluate(m Model, dt float64) error {
	if e.rig == nil {
		return dynamo.ErrNotLoaded
	}
	if dt <= 0 {
		return nil
	}

	p := e.parameters(m)

	e.remain += dt
	if e.remain > MaxDeltaTime {
		e.remain = 0
	}

	e.ensureCaches(p.Values)

	tick := dt
	if e.rig.Fps > 0 {
		tick = 1 / e.rig.Fps
	}

	for e.remain >= tick {
		for s := range e.currentOutputs {
			copy(e.previousOutputs[s], e.currentOutputs[s])
		}

		// parameterCaches also carries output values between sub-rigs, so
		// the interpolated input is kept apart in parameterInputCaches.
		inputWeight := tick / e.remain
		for j := range p.Values {
			e.parameterCaches[j] = e.parameterInputCaches[j]*(1-inputWeight) + p.Values[j]*inputWeight
			e.parameterInputCaches[j] = e.parameterCaches[j]
		}

		for s := range e.rig.Settings {
			e.step(s, p, tick)
		}

		e.remain -= tick
		e.ticks++
	}

	e.state = StateRunning
	return e.Interpolate(m, e.remain/tick)
}

func (e *Engine) step(s int, p dynamo.Parameters, tick float64) {
	setting := &e.rig.Settings[s]
	particles := e.rig.particles(setting)
	outputs := e.rig.outputs(setting)

	agg := e.gather(setting, e.parameterCaches, p)
	UpdateParticles(particles, agg.Translation, agg.Angle, e.options.Wind,
		MovementThreshold*setting.NormalizationPosition.Maximum, tick, AirResistance)

	for i := range outputs {
		out := &outputs[i]
		value, ok := e.extract(particles, out)
		if !ok {
			continue
		}
		e.currentOutputs[s][i] = value

		idx := out.DestinationParameterIndex
		if !usable(idx, len(p.Values)) {
			continue
		}
		e.parameterCaches[idx] = out.Denormalize(value, p.Minimum[idx], p.Maximum[idx], e.parameterCaches[idx])
	}
}

// Interpolate writes prev*(1-weight) + current*weight of every output into
// the model.
func (e *Engine) Interpolate(m Model, weight float64) error {
	if e.rig == nil {
		return dynamo.ErrNotLoaded
	}

	p := e.parameters(m)
	for s := range e.rig.Settings {
		setting := &e.rig.Settings[s]
		outputs := e.rig.outputs(setting)
		for i := range outputs {
			out := &outputs[i]
			idx := out.DestinationParameterIndex
			if !usable(idx, len(p.Values)) {
				continue
			}
			if out.VertexIndex < 1 || out.VertexIndex >= setting.ParticleCount {
				continue
			}
			value := e.previousOutputs[s][i]*(1-weight) + e.currentOutputs[s][i]*weight
			p.Values[idx] = out.Denormalize(value, p.Minimum[idx], p.Maximum[idx], p.Values[idx])
		}
	}
	return nil
}

type OutputStat struct {
	Destination string
	Type        Source
	Below       float64
	Above       float64
}

// Stats is a diagnostic view of the engine.
type Stats struct {
	State   State
	Ticks   int
	Remain  float64
	Outputs []OutputStat
}

func (e *Engine) Stats() Stats {
	st := Stats{State: e.state, Ticks: e.ticks, Remain: e.remain}
	if e.rig == nil {
		return st
	}
	st.Outputs = make([]OutputStat, len(e.rig.Outputs))
	for i, out := range e.rig.Outputs {
		st.Outputs[i] = OutputStat{
			Destination: out.Destination.ID,
			Type:        out.Type,
			Below:       out.ValueBelowMinimum,
			Above:       out.ValueExceededMaximum,
		}
	}
	return st
}
