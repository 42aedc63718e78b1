package physics

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/san-kum/sway/internal/dynamo"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Document mirrors the physics3.json layout.
type Document struct {
	Version         int               `json:"Version"`
	Meta            DocumentMeta      `json:"Meta"`
	PhysicsSettings []DocumentSetting `json:"PhysicsSettings"`
}

type DocumentMeta struct {
	PhysicsSettingCount *int                `json:"PhysicsSettingCount,omitempty"`
	TotalInputCount     *int                `json:"TotalInputCount,omitempty"`
	TotalOutputCount    *int                `json:"TotalOutputCount,omitempty"`
	VertexCount         *int                `json:"VertexCount,omitempty"`
	Fps                 float64             `json:"Fps,omitempty"`
	EffectiveForces     DocumentForces      `json:"EffectiveForces"`
	PhysicsDictionary   []DocumentNameEntry `json:"PhysicsDictionary,omitempty"`
}

type DocumentForces struct {
	Gravity DocumentVec2 `json:"Gravity"`
	Wind    DocumentVec2 `json:"Wind"`
}

type DocumentVec2 struct {
	X float64 `json:"X"`
	Y float64 `json:"Y"`
}

type DocumentNameEntry struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type DocumentSetting struct {
	ID            string                 `json:"Id"`
	Input         []DocumentInput        `json:"Input"`
	Output        []DocumentOutput       `json:"Output"`
	Vertices      []DocumentVertex       `json:"Vertices"`
	Normalization DocumentNormalizations `json:"Normalization"`
}

type DocumentTarget struct {
	Target string `json:"Target"`
	ID     string `json:"Id"`
}

type DocumentInput struct {
	Source  DocumentTarget `json:"Source"`
	Weight  float64        `json:"Weight"`
	Type    string         `json:"Type"`
	Reflect bool           `json:"Reflect"`
}

type DocumentOutput struct {
	Destination DocumentTarget `json:"Destination"`
	VertexIndex int            `json:"VertexIndex"`
	Scale       float64        `json:"Scale"`
	Weight      float64        `json:"Weight"`
	Type        string         `json:"Type"`
	Reflect     bool           `json:"Reflect"`
}

type DocumentVertex struct {
	Position     DocumentVec2 `json:"Position"`
	Mobility     float64      `json:"Mobility"`
	Delay        float64      `json:"Delay"`
	Acceleration float64      `json:"Acceleration"`
	Radius       float64      `json:"Radius"`
}

type DocumentNormalizations struct {
	Position DocumentRange `json:"Position"`
	Angle    DocumentRange `json:"Angle"`
}

// DocumentRange converts directly into Normalization; keep the field order.
type DocumentRange struct {
	Minimum float64 `json:"Minimum"`
	Maximum float64 `json:"Maximum"`
	Default float64 `json:"Default"`
}

// DecodeDocument parses physics3.json bytes without validating them.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidRig, err)
	}
	return &doc, nil
}

func rigError(setting int, field string, err error) error {
	if !errors.Is(err, dynamo.ErrInvalidRig) {
		err = fmt.Errorf("%w: %w", dynamo.ErrInvalidRig, err)
	}
	return &dynamo.RigError{Setting: setting, Field: field, Wrapped: err}
}

func checkCount(field string, declared *int, actual int) error {
	if declared != nil && *declared != actual {
		return rigError(-1, "Meta."+field, fmt.Errorf("declared %d, found %d", *declared, actual))
	}
	return nil
}

// BuildRig validates a decoded document and flattens it into a Rig.
// Particles are left in their file positions; the engine initializes them.
func BuildRig(doc *Document) (*Rig, error) {
	if len(doc.PhysicsSettings) == 0 {
		return nil, rigError(-1, "PhysicsSettings", errors.New("no settings"))
	}

	var totalInputs, totalOutputs, totalVertices int
	for _, s := range doc.PhysicsSettings {
		totalInputs += len(s.Input)
		totalOutputs += len(s.Output)
		totalVertices += len(s.Vertices)
	}

	meta := doc.Meta
	if err := checkCount("PhysicsSettingCount", meta.PhysicsSettingCount, len(doc.PhysicsSettings)); err != nil {
		return nil, err
	}
	if err := checkCount("TotalInputCount", meta.TotalInputCount, totalInputs); err != nil {
		return nil, err
	}
	if err := checkCount("TotalOutputCount", meta.TotalOutputCount, totalOutputs); err != nil {
		return nil, err
	}
	if err := checkCount("VertexCount", meta.VertexCount, totalVertices); err != nil {
		return nil, err
	}

	rig := &Rig{
		Gravity:     dynamo.Vec2{X: meta.EffectiveForces.Gravity.X, Y: meta.EffectiveForces.Gravity.Y},
		Wind:        dynamo.Vec2{X: meta.EffectiveForces.Wind.X, Y: meta.EffectiveForces.Wind.Y},
		Fps:         meta.Fps,
		SubRigCount: len(doc.PhysicsSettings),
		Settings:    make([]SubRig, len(doc.PhysicsSettings)),
		Inputs:      make([]Input, 0, totalInputs),
		Outputs:     make([]Output, 0, totalOutputs),
		Particles:   make([]Particle, 0, totalVertices),
		Names:       make([]string, len(doc.PhysicsSettings)),
	}

	names := make(map[string]string, len(meta.PhysicsDictionary))
	for _, entry := range meta.PhysicsDictionary {
		names[entry.ID] = entry.Name
	}

	for i, s := range doc.PhysicsSettings {
		if len(s.Vertices) == 0 {
			return nil, rigError(i, "Vertices", errors.New("at least one vertex required"))
		}

		setting := &rig.Settings[i]
		setting.NormalizationPosition = Normalization(s.Normalization.Position)
		setting.NormalizationAngle = Normalization(s.Normalization.Angle)
		rig.Names[i] = names[s.ID]

		setting.InputCount = len(s.Input)
		setting.BaseInputIndex = len(rig.Inputs)
		for j, in := range s.Input {
			typ, err := ParseSource(in.Type)
			if err != nil {
				return nil, rigError(i, fmt.Sprintf("Input[%d].Type", j), err)
			}
			if in.Source.ID == "" {
				return nil, rigError(i, fmt.Sprintf("Input[%d].Source.Id", j), errors.New("missing parameter id"))
			}
			rig.Inputs = append(rig.Inputs, newInput(in.Source.ID, typ, in.Weight, in.Reflect))
		}

		setting.OutputCount = len(s.Output)
		setting.BaseOutputIndex = len(rig.Outputs)
		for j, out := range s.Output {
			typ, err := ParseSource(out.Type)
			if err != nil {
				return nil, rigError(i, fmt.Sprintf("Output[%d].Type", j), err)
			}
			if out.Destination.ID == "" {
				return nil, rigError(i, fmt.Sprintf("Output[%d].Destination.Id", j), errors.New("missing parameter id"))
			}
			rig.Outputs = append(rig.Outputs,
				newOutput(out.Destination.ID, typ, out.VertexIndex, out.Scale, out.Weight, out.Reflect))
		}

		setting.ParticleCount = len(s.Vertices)
		setting.BaseParticleIndex = len(rig.Particles)
		for _, v := range s.Vertices {
			rig.Particles = append(rig.Particles, Particle{
				Mobility:     v.Mobility,
				Delay:        v.Delay,
				Acceleration: v.Acceleration,
				Radius:       v.Radius,
				Position:     dynamo.Vec2{X: v.Position.X, Y: v.Position.Y},
			})
		}
	}

	return rig, nil
}
