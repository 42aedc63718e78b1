package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/sway/internal/metrics"
	"github.com/san-kum/sway/internal/sim"
)

// Range is the declared range of a tracked parameter.
type Range struct {
	Min, Max float64
}

// DefaultSettleThreshold is the per-frame change below which a value counts
// as settled.
const DefaultSettleThreshold = 1e-4

type Registry struct {
	metrics map[string]func(Range) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(Range) sim.Metric),
	}

	r.metrics["peak"] = func(Range) sim.Metric { return metrics.NewPeak() }
	r.metrics["jitter"] = func(Range) sim.Metric { return metrics.NewJitter() }
	r.metrics["settle"] = func(Range) sim.Metric { return metrics.NewSettle(DefaultSettleThreshold) }
	r.metrics["saturation"] = func(rg Range) sim.Metric { return metrics.NewSaturation(rg.Min, rg.Max) }

	return r
}

func (r *Registry) Metric(name string, rg Range) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(rg), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics names the metrics a plain run reports.
func (r *Registry) DefaultMetrics() []string {
	return []string{"peak", "jitter", "settle", "saturation"}
}
