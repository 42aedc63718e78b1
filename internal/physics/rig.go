package physics

import (
	"errors"
	"fmt"

	"github.com/san-kum/sway/internal/dynamo"
)

// TargetType selects what an input reads from or an output writes to.
// Parameters are the only target the engine knows.
type TargetType int

const (
	TargetParameter TargetType = iota
)

// Source is the physics type tag of an input or output.
type Source int

const (
	SourceX Source = iota
	SourceY
	SourceAngle
)

const (
	tagX     = "X"
	tagY     = "Y"
	tagAngle = "Angle"
)

func ParseSource(tag string) (Source, error) {
	switch tag {
	case tagX:
		return SourceX, nil
	case tagY:
		return SourceY, nil
	case tagAngle:
		return SourceAngle, nil
	}
	return 0, fmt.Errorf("%w: %q", dynamo.ErrUnknownType, tag)
}

func (s Source) String() string {
	switch s {
	case SourceX:
		return tagX
	case SourceY:
		return tagY
	case SourceAngle:
		return tagAngle
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// Index states for lazily resolved parameter indices.
const (
	unresolved       = -1
	missingParameter = -2
)

type Parameter struct {
	ID         string
	TargetType TargetType
}

type Normalization struct {
	Minimum float64
	Maximum float64
	Default float64
}

type Particle struct {
	InitialPosition dynamo.Vec2
	Mobility        float64
	Delay           float64
	Acceleration    float64
	Radius          float64
	Position        dynamo.Vec2
	LastPosition    dynamo.Vec2
	LastGravity     dynamo.Vec2
	Force           dynamo.Vec2
	Velocity        dynamo.Vec2
}

// SubRig describes one chain as slices into the rig's shared arrays.
type SubRig struct {
	InputCount        int
	OutputCount       int
	ParticleCount     int
	BaseInputIndex    int
	BaseOutputIndex   int
	BaseParticleIndex int

	NormalizationPosition Normalization
	NormalizationAngle    Normalization
}

// aggregate is the per sub-rig sum of all weighted, normalized inputs.
type aggregate struct {
	Translation dynamo.Vec2
	Angle       float64
}

type accumulateFunc func(agg *aggregate, value, paramMin, paramMax, paramDefault float64,
	position, angle Normalization, inverted bool, weight float64)

type valueFunc func(translation dynamo.Vec2, particles []Particle, particleIndex int,
	inverted bool, parentGravity dynamo.Vec2) float64

type scaleFunc func(translationScale dynamo.Vec2, angleScale float64) float64

type Input struct {
	Source               Parameter
	SourceParameterIndex int
	Weight               float64
	Type                 Source
	Reflect              bool

	accumulate accumulateFunc
}

type Output struct {
	Destination               Parameter
	DestinationParameterIndex int
	VertexIndex               int
	TranslationScale          dynamo.Vec2
	AngleScale                float64
	Weight                    float64
	Type                      Source
	Reflect                   bool

	// Extremes seen before clamping. Diagnostic only.
	ValueBelowMinimum    float64
	ValueExceededMaximum float64

	value valueFunc
	scale scaleFunc
}

// Rig is the flattened, loaded description of every sub-rig.
type Rig struct {
	Gravity     dynamo.Vec2
	Wind        dynamo.Vec2
	Fps         float64
	SubRigCount int

	Settings  []SubRig
	Inputs    []Input
	Outputs   []Output
	Particles []Particle

	// Names holds the dictionary name of each sub-rig, "" when absent.
	Names []string
}

func (r *Rig) inputs(s *SubRig) []Input {
	return r.Inputs[s.BaseInputIndex : s.BaseInputIndex+s.InputCount]
}

func (r *Rig) outputs(s *SubRig) []Output {
	return r.Outputs[s.BaseOutputIndex : s.BaseOutputIndex+s.OutputCount]
}

func (r *Rig) particles(s *SubRig) []Particle {
	return r.Particles[s.BaseParticleIndex : s.BaseParticleIndex+s.ParticleCount]
}

// Chain returns the particles of sub-rig i. The slice aliases the rig.
func (r *Rig) Chain(i int) []Particle {
	return r.particles(&r.Settings[i])
}

var accumulators = map[Source]accumulateFunc{
	SourceX:     accumulateTranslationX,
	SourceY:     accumulateTranslationY,
	SourceAngle: accumulateAngle,
}

type extractor struct {
	value valueFunc
	scale scaleFunc
}

var extractors = map[Source]extractor{
	SourceX:     {outputTranslationX, scaleTranslationX},
	SourceY:     {outputTranslationY, scaleTranslationY},
	SourceAngle: {outputAngle, scaleAngle},
}

func newInput(id string, typ Source, weight float64, reflect bool) Input {
	return Input{
		Source:               Parameter{ID: id, TargetType: TargetParameter},
		SourceParameterIndex: unresolved,
		Weight:               weight,
		Type:                 typ,
		Reflect:              reflect,
		accumulate:           accumulators[typ],
	}
}

func newOutput(id string, typ Source, vertexIndex int, angleScale, weight float64, reflect bool) Output {
	return Output{
		Destination:               Parameter{ID: id, TargetType: TargetParameter},
		DestinationParameterIndex: unresolved,
		VertexIndex:               vertexIndex,
		AngleScale:                angleScale,
		Weight:                    weight,
		Type:                      typ,
		Reflect:                   reflect,
		value:                     extractors[typ].value,
		scale:                     extractors[typ].scale,
	}
}

func (in *Input) bind() error {
	fn, ok := accumulators[in.Type]
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownType, in.Type)
	}
	in.accumulate = fn
	return nil
}

func (out *Output) bind() error {
	ex, ok := extractors[out.Type]
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownType, out.Type)
	}
	out.value, out.scale = ex.value, ex.scale
	return nil
}

// within reports whether [base, base+count) lies inside an array of n.
func within(base, count, n int) bool {
	return base >= 0 && count >= 0 && base+count <= n
}

// prepare checks that every sub-rig slice lies inside the shared arrays,
// binds the per-type funcs of every input and output from its Type and marks
// every parameter index for lookup against the next model.
func (r *Rig) prepare() error {
	if len(r.Settings) == 0 {
		return rigError(-1, "Settings", errors.New("no settings"))
	}
	if r.SubRigCount != len(r.Settings) {
		return rigError(-1, "SubRigCount", fmt.Errorf("declared %d, found %d", r.SubRigCount, len(r.Settings)))
	}

	for i, s := range r.Settings {
		switch {
		case s.ParticleCount < 1:
			return rigError(i, "ParticleCount", errors.New("at least one particle required"))
		case !within(s.BaseInputIndex, s.InputCount, len(r.Inputs)):
			return rigError(i, "Inputs", fmt.Errorf("[%d,+%d) outside %d inputs", s.BaseInputIndex, s.InputCount, len(r.Inputs)))
		case !within(s.BaseOutputIndex, s.OutputCount, len(r.Outputs)):
			return rigError(i, "Outputs", fmt.Errorf("[%d,+%d) outside %d outputs", s.BaseOutputIndex, s.OutputCount, len(r.Outputs)))
		case !within(s.BaseParticleIndex, s.ParticleCount, len(r.Particles)):
			return rigError(i, "Particles", fmt.Errorf("[%d,+%d) outside %d particles", s.BaseParticleIndex, s.ParticleCount, len(r.Particles)))
		}
	}

	for i := range r.Inputs {
		if err := r.Inputs[i].bind(); err != nil {
			return rigError(-1, fmt.Sprintf("Inputs[%d].Type", i), err)
		}
		r.Inputs[i].SourceParameterIndex = unresolved
	}
	for i := range r.Outputs {
		if err := r.Outputs[i].bind(); err != nil {
			return rigError(-1, fmt.Sprintf("Outputs[%d].Type", i), err)
		}
		r.Outputs[i].DestinationParameterIndex = unresolved
	}

	for len(r.Names) < r.SubRigCount {
		r.Names = append(r.Names, "")
	}
	return nil
}

func accumulateTranslationX(agg *aggregate, value, paramMin, paramMax, paramDefault float64,
	position, _ Normalization, inverted bool, weight float64) {
	agg.Translation.X += Normalize(value, paramMin, paramMax, paramDefault,
		position.Minimum, position.Maximum, position.Default, inverted) * weight
}

func accumulateTranslationY(agg *aggregate, value, paramMin, paramMax, paramDefault float64,
	position, _ Normalization, inverted bool, weight float64) {
	agg.Translation.Y += Normalize(value, paramMin, paramMax, paramDefault,
		position.Minimum, position.Maximum, position.Default, inverted) * weight
}

func accumulateAngle(agg *aggregate, value, paramMin, paramMax, paramDefault float64,
	_, angle Normalization, inverted bool, weight float64) {
	agg.Angle += Normalize(value, paramMin, paramMax, paramDefault,
		angle.Minimum, angle.Maximum, angle.Default, inverted) * weight
}

func outputTranslationX(translation dynamo.Vec2, _ []Particle, _ int, inverted bool, _ dynamo.Vec2) float64 {
	v := translation.X
	if inverted {
		v *= -1
	}
	return v
}

func outputTranslationY(translation dynamo.Vec2, _ []Particle, _ int, inverted bool, _ dynamo.Vec2) float64 {
	v := translation.Y
	if inverted {
		v *= -1
	}
	return v
}

// outputAngle measures the link angle against its parent link, or against
// the reversed option gravity for the first dynamic particle.
func outputAngle(translation dynamo.Vec2, particles []Particle, particleIndex int, inverted bool, parentGravity dynamo.Vec2) float64 {
	if particleIndex >= 2 {
		parentGravity = particles[particleIndex-1].Position.Sub(particles[particleIndex-2].Position)
	} else {
		parentGravity = parentGravity.Scale(-1)
	}

	v := dynamo.DirectionToRadian(parentGravity, translation)
	if inverted {
		v *= -1
	}
	return v
}

func scaleTranslationX(translationScale dynamo.Vec2, _ float64) float64 { return translationScale.X }
func scaleTranslationY(translationScale dynamo.Vec2, _ float64) float64 { return translationScale.Y }
func scaleAngle(_ dynamo.Vec2, angleScale float64) float64              { return angleScale }
