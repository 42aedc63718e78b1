package config

import (
	"sort"

	"github.com/san-kum/sway/internal/breath"
	"github.com/san-kum/sway/internal/drivers"
)

func preset(rig string, duration float64, specs []drivers.Spec, track ...string) *Config {
	cfg := DefaultConfig()
	cfg.Rig = rig
	cfg.Duration = duration
	cfg.Drivers = specs
	cfg.Track = track
	return cfg
}

var Presets = map[string]map[string]*Config{
	"hair": {
		"shake": preset("builtin:hair", 10, []drivers.Spec{
			{Parameter: "ParamAngleX", Waveform: "sine", Amplitude: 30, Period: 1.5},
		}, "ParamAngleX", "ParamHairFront", "ParamHairBack", "ParamHairBackTip"),
		"nod": preset("builtin:hair", 8, []drivers.Spec{
			{Parameter: "ParamAngleZ", Waveform: "sine", Amplitude: 20, Period: 2, Start: 1},
		}, "ParamAngleZ", "ParamHairFront", "ParamHairBack"),
		"turn": preset("builtin:hair", 6, []drivers.Spec{
			{Parameter: "ParamAngleX", Waveform: "step", Amplitude: 30, Start: 1, End: 3},
		}, "ParamAngleX", "ParamHairFront", "ParamHairBack"),
		"look": preset("builtin:hair", 8, []drivers.Spec{
			{Parameter: "ParamAngleX", Waveform: "follow", Amplitude: 30,
				Target: &drivers.Spec{Waveform: "step", Amplitude: 30, Start: 1, End: 4}},
		}, "ParamAngleX", "ParamHairFront", "ParamHairBack"),
		"idle": func() *Config {
			cfg := preset("builtin:hair", 20, nil, "ParamAngleX", "ParamBreath", "ParamHairFront", "ParamHairBack")
			cfg.Breath = breath.Defaults()
			return cfg
		}(),
	},
	"pendulum": {
		"tilt": preset("builtin:pendulum", 6, []drivers.Spec{
			{Parameter: "ParamAngleZ", Waveform: "ramp", Amplitude: 30, Start: 0.5, End: 1.5},
		}, "ParamAngleZ", "ParamSwing"),
		"swing": preset("builtin:pendulum", 10, []drivers.Spec{
			{Parameter: "ParamAngleZ", Waveform: "sine", Amplitude: 25, Period: 3},
		}, "ParamAngleZ", "ParamSwing"),
		"release": preset("builtin:pendulum", 8, []drivers.Spec{
			{Parameter: "ParamAngleZ", Waveform: "keyframes", Keys: []drivers.Key{
				{Time: 0, Value: 0}, {Time: 0.5, Value: 30}, {Time: 1, Value: 0},
			}},
		}, "ParamAngleZ", "ParamSwing"),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(rig, name string) *Config {
	rigPresets, ok := Presets[rig]
	if !ok {
		return nil
	}
	cfg, ok := rigPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(rig string) []string {
	rigPresets, ok := Presets[rig]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rigPresets))
	for name := range rigPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetRigs lists the rigs that have presets.
func PresetRigs() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
