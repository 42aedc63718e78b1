package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/experiment"
	"github.com/san-kum/sway/internal/rigs"
	"github.com/san-kum/sway/internal/sim"
)

// Scenario defines a scripted sequence of runs
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is a single run in a scenario. It starts from the config file when
// one is named, else from the preset, else from the defaults, then applies
// its own overrides.
type Step struct {
	Rig         string       `yaml:"rig"`
	Preset      string       `yaml:"preset,omitempty"`
	Config      string       `yaml:"config,omitempty"`
	Duration    float64      `yaml:"duration,omitempty"`
	FpsOverride float64      `yaml:"fps_override,omitempty"`
	Gravity     *config.Vec2 `yaml:"gravity,omitempty"`
	Wind        *config.Vec2 `yaml:"wind,omitempty"`
	Track       []string     `yaml:"track,omitempty"`
	SaveAs      string       `yaml:"save_as,omitempty"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}

	return &scenario, nil
}

// Resolve builds the config this step runs.
func (s Step) Resolve() (*config.Config, error) {
	source, name := rigs.Resolve(s.Rig)

	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		cfg = config.GetPreset(name, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for rig %s", s.Preset, s.Rig)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Rig != "" {
		cfg.Rig = source
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.FpsOverride > 0 {
		cfg.FpsOverride = s.FpsOverride
	}
	if s.Gravity != nil {
		cfg.Gravity = *s.Gravity
	}
	if s.Wind != nil {
		cfg.Wind = *s.Wind
	}
	if len(s.Track) > 0 {
		cfg.Track = s.Track
	}
	return cfg, nil
}

// Label names the step in logs and saved runs.
func (s Step) Label(i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

type StepResult struct {
	Label  string
	Config *config.Config
	Result *sim.Result
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry,
	metricNames []string, log *zap.Logger) ([]StepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		label := step.Label(i)
		log.Info("scenario step", zap.Int("step", i+1), zap.Int("of", len(scenario.Steps)), zap.String("label", label))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry, metricNames, experiment.WithLogger(log))
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Label: label, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig perturbs the forces of a base scenario at random
type MonteCarloConfig struct {
	Base *config.Config
	// Half widths of the uniform perturbation added to each component.
	Wind    float64
	Gravity float64
	Trials  int
	Seed    int64
	// Metric is the result key scored per trial, e.g. "ParamHairBack.peak".
	Metric string
}

type MonteCarloResult struct {
	Trial   int
	Gravity config.Vec2
	Wind    config.Vec2
	Score   float64
	Valid   bool // no NaN/Inf samples
}

// RunMonteCarlo executes multiple trials with random force perturbations
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry, log *zap.Logger) ([]MonteCarloResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	results := make([]MonteCarloResult, 0, cfg.Trials)
	metricName := ""
	if cfg.Metric != "" {
		column, name, ok := cutMetric(cfg.Metric)
		if !ok || !slices.Contains(cfg.Base.Track, column) {
			return nil, fmt.Errorf("metric %s: column is not tracked", cfg.Metric)
		}
		metricName = name
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	jitter := func(width float64) float64 {
		return (rng.Float64() - 0.5) * 2 * width
	}

	for trial := 0; trial < cfg.Trials; trial++ {
		trialCfg := cfg.Base.Clone()
		trialCfg.Gravity.X += jitter(cfg.Gravity)
		trialCfg.Gravity.Y += jitter(cfg.Gravity)
		trialCfg.Wind.X += jitter(cfg.Wind)
		trialCfg.Wind.Y += jitter(cfg.Wind)

		var names []string
		if metricName != "" {
			names = []string{metricName}
		}
		exp, err := experiment.New(trialCfg, registry, names)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			Trial:   trial,
			Gravity: trialCfg.Gravity,
			Wind:    trialCfg.Wind,
			Score:   result.Metrics[cfg.Metric],
			Valid:   len(result.Errors) == 0,
		})

		if (trial+1)%10 == 0 {
			log.Info("monte carlo progress", zap.Int("done", trial+1), zap.Int("trials", cfg.Trials))
		}
	}

	return results, nil
}

// cutMetric splits "column.metric" at the last dot.
func cutMetric(key string) (column, metric string, ok bool) {
	i := strings.LastIndex(key, ".")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}

type MonteCarloSummary struct {
	Trials  int
	Invalid int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// MonteCarloStats computes summary statistics over the valid trials
func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	s := MonteCarloSummary{Trials: len(results), Min: math.Inf(1), Max: math.Inf(-1)}
	var sum, sq float64
	n := 0
	for _, r := range results {
		if !r.Valid {
			s.Invalid++
			continue
		}
		n++
		sum += r.Score
		sq += r.Score * r.Score
		s.Min = math.Min(s.Min, r.Score)
		s.Max = math.Max(s.Max, r.Score)
	}
	if n == 0 {
		s.Min, s.Max = 0, 0
		return s
	}
	s.Mean = sum / float64(n)
	if v := sq/float64(n) - s.Mean*s.Mean; v > 0 {
		s.StdDev = math.Sqrt(v)
	}
	return s
}
