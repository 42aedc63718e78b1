package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/experiment"
)

var (
	ErrUnknownKnob   = errors.New("optim: unknown knob")
	ErrMissingMetric = errors.New("optim: metric not in result")
)

// Knob applies one swept value to a scenario.
type Knob func(cfg *config.Config, v float64)

var knobs = map[string]Knob{
	"fps":        func(c *config.Config, v float64) { c.FpsOverride = v },
	"frame_rate": func(c *config.Config, v float64) { c.FrameRate = v },
	"gravity.x":  func(c *config.Config, v float64) { c.Gravity.X = v },
	"gravity.y":  func(c *config.Config, v float64) { c.Gravity.Y = v },
	"wind.x":     func(c *config.Config, v float64) { c.Wind.X = v },
	"wind.y":     func(c *config.Config, v float64) { c.Wind.Y = v },
}

func Knobs() []string {
	names := make([]string, 0, len(knobs))
	for name := range knobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Axis is one swept knob and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=v1,v2,..." or "name=min:max:n".
func ParseAxis(s string) (Axis, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || spec == "" {
		return Axis{}, fmt.Errorf("axis %q: want name=values", s)
	}
	if _, ok := knobs[name]; !ok {
		return Axis{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownKnob, name, Knobs())
	}

	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Axis{}, fmt.Errorf("axis %q: %w", s, err)
		}
		return Axis{Name: name, Values: Linspace(lo, hi, n)}, nil
	}

	var values []float64
	for _, f := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("axis %q: %w", s, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Point is one evaluated combination.
type Point struct {
	Values map[string]float64
	Score  float64
}

// Builder turns a scenario into a runnable experiment.
type Builder func(cfg *config.Config) (*experiment.Experiment, error)

type GridSearch struct {
	axes []Axis
}

func NewGridSearch(axes ...Axis) (*GridSearch, error) {
	for _, a := range axes {
		if _, ok := knobs[a.Name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKnob, a.Name)
		}
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("axis %s has no values", a.Name)
		}
	}
	return &GridSearch{axes: axes}, nil
}

// Size is the number of combinations Search will run.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search runs every combination on a clone of base and returns the one
// with the lowest metric, plus every point in visit order. metric is a
// result key such as "ParamHairFront.jitter".
func (g *GridSearch) Search(ctx context.Context, base *config.Config, build Builder, metric string) (Point, []Point, error) {
	best := Point{Score: math.Inf(1)}
	points := make([]Point, 0, g.Size())

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, build, metric, &best, &points)
	return best, points, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	build Builder,
	metric string,
	best *Point,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.axes) {
		cfg := base.Clone()
		for name, v := range current {
			knobs[name](cfg, v)
		}

		exp, err := build(cfg)
		if err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metric]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingMetric, metric)
		}

		p := Point{Values: make(map[string]float64, len(current)), Score: val}
		for k, v := range current {
			p.Values[k] = v
		}
		*points = append(*points, p)
		if val < best.Score {
			*best = p
		}
		return nil
	}

	axis := g.axes[depth]
	for _, val := range axis.Values {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[axis.Name] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, build, metric, best, points); err != nil {
			return err
		}
	}
	return nil
}
