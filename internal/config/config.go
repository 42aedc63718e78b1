package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/sway/internal/breath"
	"github.com/san-kum/sway/internal/drivers"
)

const (
	DefaultRig       = "builtin:hair"
	DefaultFrameRate = 60.0
	DefaultDuration  = 10.0
	DefaultLogLevel  = "info"
)

type Config struct {
	Rig         string             `yaml:"rig"`
	FrameRate   float64            `yaml:"frame_rate"`
	Duration    float64            `yaml:"duration"`
	Stabilize   bool               `yaml:"stabilize"`
	FpsOverride float64            `yaml:"fps_override,omitempty"`
	Gravity     Vec2               `yaml:"gravity"`
	Wind        Vec2               `yaml:"wind"`
	Parameters  []ParameterConfig  `yaml:"parameters"`
	Drivers     []drivers.Spec     `yaml:"drivers,omitempty"`
	Breath      []breath.Parameter `yaml:"breath,omitempty"`
	Track       []string           `yaml:"track,omitempty"`
	Logging     LoggingConfig      `yaml:"logging"`
}

type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// ParameterConfig declares a parameter on the host model.
type ParameterConfig struct {
	ID      string  `yaml:"id"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// standardParameters covers the driving and output parameters of the
// builtin rigs.
func standardParameters() []ParameterConfig {
	return []ParameterConfig{
		{ID: "ParamAngleX", Min: -30, Max: 30},
		{ID: "ParamAngleY", Min: -30, Max: 30},
		{ID: "ParamAngleZ", Min: -30, Max: 30},
		{ID: "ParamBodyAngleX", Min: -10, Max: 10},
		{ID: "ParamBreath", Min: 0, Max: 1},
		{ID: "ParamHairFront", Min: -1, Max: 1},
		{ID: "ParamHairBack", Min: -1, Max: 1},
		{ID: "ParamHairBackTip", Min: -1, Max: 1},
		{ID: "ParamSwing", Min: -1, Max: 1},
	}
}

func DefaultConfig() *Config {
	return &Config{
		Rig:        DefaultRig,
		FrameRate:  DefaultFrameRate,
		Duration:   DefaultDuration,
		Stabilize:  true,
		Gravity:    Vec2{X: 0, Y: -1},
		Parameters: standardParameters(),
		Drivers: []drivers.Spec{
			{Parameter: "ParamAngleX", Waveform: "sine", Amplitude: 30, Period: 2},
		},
		Track:   []string{"ParamAngleX", "ParamHairFront", "ParamHairBack"},
		Logging: LoggingConfig{Level: DefaultLogLevel},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the runner depends on.
func (c *Config) Validate() error {
	if c.Rig == "" {
		return fmt.Errorf("rig must be set")
	}
	if c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %g", c.FrameRate)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.FpsOverride < 0 {
		return fmt.Errorf("fps_override must not be negative, got %g", c.FpsOverride)
	}
	seen := make(map[string]bool, len(c.Parameters))
	for _, p := range c.Parameters {
		if p.ID == "" {
			return fmt.Errorf("parameter without id")
		}
		if seen[p.ID] {
			return fmt.Errorf("parameter %s declared twice", p.ID)
		}
		if p.Min > p.Max {
			return fmt.Errorf("parameter %s: min %g above max %g", p.ID, p.Min, p.Max)
		}
		seen[p.ID] = true
	}
	return nil
}

// Parameter returns the declaration of id, if any.
func (c *Config) Parameter(id string) (ParameterConfig, bool) {
	for _, p := range c.Parameters {
		if p.ID == id {
			return p, true
		}
	}
	return ParameterConfig{}, false
}

// Clone returns a deep copy, so presets can be customized safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Parameters = append([]ParameterConfig(nil), c.Parameters...)
	out.Drivers = make([]drivers.Spec, len(c.Drivers))
	for i, d := range c.Drivers {
		out.Drivers[i] = d.Clone()
	}
	out.Breath = append([]breath.Parameter(nil), c.Breath...)
	out.Track = append([]string(nil), c.Track...)
	return &out
}
