package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/sim"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if diff := cmp.Diff([]string{"jitter", "peak", "saturation", "settle"}, r.ListMetrics()); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
	for _, name := range r.DefaultMetrics() {
		m, err := r.Metric(name, Range{Min: -1, Max: 1})
		if err != nil {
			t.Fatalf("metric %s: %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("metric %s reports name %s", name, m.Name())
		}
	}
	if _, err := r.Metric("entropy", Range{}); err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestExperimentRun(t *testing.T) {
	cfg := config.GetPreset("pendulum", "tilt")
	cfg.Duration = 2

	exp, err := New(cfg, NewRegistry(), []string{"peak", "saturation"}, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(result.Samples) != 121 {
		t.Errorf("expected 121 samples, got %d", len(result.Samples))
	}
	if diff := cmp.Diff(cfg.Track, result.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got := result.Metrics[sim.MetricKey("ParamAngleZ", "peak")]; got != 30 {
		t.Errorf("expected driver peak 30, got %v", got)
	}
	if got := result.Metrics[sim.MetricKey("ParamSwing", "peak")]; got <= 0 {
		t.Errorf("expected the swing to move, got %v", got)
	}
	if len(exp.Engine().SubRigNames()) != 1 {
		t.Errorf("unexpected sub-rigs %v", exp.Engine().SubRigNames())
	}
}

func TestExperimentFpsOverride(t *testing.T) {
	cfg := config.GetPreset("pendulum", "swing")
	cfg.Duration = 1
	cfg.FpsOverride = 120

	exp, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Ticks < 119 || result.Ticks > 121 {
		t.Errorf("expected about 120 ticks, got %d", result.Ticks)
	}
}

func TestExperimentSetupErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		metrics []string
	}{
		{"invalid config", func(c *config.Config) { c.FrameRate = 0 }, nil},
		{"unknown rig", func(c *config.Config) { c.Rig = "builtin:octopus" }, nil},
		{"bad driver", func(c *config.Config) { c.Drivers[0].Waveform = "square" }, nil},
		{"unknown metric", func(c *config.Config) {}, []string{"entropy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := New(cfg, NewRegistry(), tt.metrics); err == nil {
				t.Error("expected setup error")
			}
		})
	}
}

func TestExperimentIdleBreath(t *testing.T) {
	cfg := config.GetPreset("hair", "idle")
	cfg.Duration = 1

	exp, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	breathing := result.Series("ParamBreath")
	if breathing[len(breathing)-1] == 0 {
		t.Error("expected breathing to move ParamBreath")
	}
}

func TestExperimentLookFollowsTarget(t *testing.T) {
	cfg := config.GetPreset("hair", "look")
	cfg.Duration = 3

	exp, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	angle := result.Series("ParamAngleX")
	for i := 1; i < len(angle); i++ {
		if step := math.Abs(angle[i] - angle[i-1]); step > 4+1e-9 {
			t.Fatalf("head snapped by %v at frame %d", step, i)
		}
	}
	if final := angle[len(angle)-1]; math.Abs(final-30) > 1 {
		t.Errorf("expected the head turned to 30, got %v", final)
	}
}
