package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/sway/internal/analysis"
	"github.com/san-kum/sway/internal/automation"
	"github.com/san-kum/sway/internal/config"
	"github.com/san-kum/sway/internal/experiment"
	"github.com/san-kum/sway/internal/export"
	"github.com/san-kum/sway/internal/logger"
	"github.com/san-kum/sway/internal/optim"
	"github.com/san-kum/sway/internal/physics"
	"github.com/san-kum/sway/internal/rigs"
	"github.com/san-kum/sway/internal/sim"
	"github.com/san-kum/sway/internal/storage"
	"github.com/san-kum/sway/internal/tui"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	dataDir  string
	logLevel string
	logFile  string

	configFile  string
	preset      string
	duration    float64
	frameRate   float64
	fpsOverride float64
	stabilize   bool
	gravityX    float64
	gravityY    float64
	windX       float64
	windY       float64
	track       []string
	metricNames []string
	saveConfig  string
	live        bool

	column  string
	output  string
	svgPath string

	axes       []string
	metric     string
	trials     int
	seed       int64
	windJitter float64
	gravJitter float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sway",
		Short: "secondary motion physics lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logLevel, logFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the live view of the default rig
			return runLive(cmd, nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sway", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "rotating log file")

	runCmd := &cobra.Command{
		Use:   "run [rig]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().StringSliceVar(&metricNames, "metrics", experiment.NewRegistry().DefaultMetrics(), "metrics per tracked parameter")
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this path")
	runCmd.Flags().BoolVar(&live, "live", false, "draw the rig while running, in real time")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot tracked parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "plot only this parameter")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run and trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export tracked parameters as an SVG chart",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&column, "column", "", "parameter to plot the spectrum of")

	inspectCmd := &cobra.Command{
		Use:   "inspect [rig]",
		Short: "show the structure of a rig",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectRig,
	}
	inspectCmd.Flags().StringVar(&svgPath, "svg", "", "also write the rest pose as SVG")

	liveCmd := &cobra.Command{
		Use:   "live [rig]",
		Short: "interactive live view",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	benchCmd := &cobra.Command{
		Use:   "bench [rig]",
		Short: "benchmark the physics engine",
		Args:  cobra.ExactArgs(1),
		RunE:  benchRig,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [rig] [fps] [fps] ...",
		Short: "compare physics tick rates on the same scenario",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareRates,
	}
	addScenarioFlags(compareCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [rig]",
		Short: "grid search force and rate settings for the lowest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepRig,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "axis", nil, "swept knob, name=v1,v2 or name=min:max:n (repeatable)")
	sweepCmd.Flags().StringVar(&metric, "metric", "", "result key to minimize, e.g. ParamHairFront.jitter")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a scenario file and save the runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringSliceVar(&metricNames, "metrics", experiment.NewRegistry().DefaultMetrics(), "metrics per tracked parameter")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [rig]",
		Short: "score random force perturbations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addScenarioFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	monteCarloCmd.Flags().Float64Var(&windJitter, "wind-jitter", 0.5, "half width of the wind perturbation")
	monteCarloCmd.Flags().Float64Var(&gravJitter, "gravity-jitter", 0.1, "half width of the gravity perturbation")
	monteCarloCmd.Flags().StringVar(&metric, "metric", "", "result key to score, e.g. ParamHairBack.peak")

	presetsCmd := &cobra.Command{
		Use:   "presets [rig]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.PresetRigs()
			if len(args) > 0 {
				_, name := rigs.Resolve(args[0])
				names = []string{name}
			}
			for _, rig := range names {
				presets := config.ListPresets(rig)
				if len(presets) == 0 {
					fmt.Printf("no presets for rig: %s\n", rig)
					continue
				}
				fmt.Printf("presets for %s:\n", rig)
				for _, p := range presets {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rigsCmd := &cobra.Command{
		Use:   "rigs",
		Short: "list builtin rigs",
		RunE:  listRigs,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd,
		inspectCmd, liveCmd, benchCmd, compareCmd, sweepCmd, scenarioCmd, monteCarloCmd, presetsCmd, rigsCmd)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	cmd.Flags().Float64Var(&frameRate, "frame-rate", config.DefaultFrameRate, "render frames per second")
	cmd.Flags().Float64Var(&fpsOverride, "fps", 0, "override the rig's physics tick rate")
	cmd.Flags().BoolVar(&stabilize, "stabilize", true, "settle the rig before the first frame")
	cmd.Flags().Float64Var(&gravityX, "gravity-x", 0, "gravity x")
	cmd.Flags().Float64Var(&gravityY, "gravity-y", -1, "gravity y")
	cmd.Flags().Float64Var(&windX, "wind-x", 0, "wind x")
	cmd.Flags().Float64Var(&windY, "wind-y", 0, "wind y")
	cmd.Flags().StringSliceVar(&track, "track", nil, "parameter ids to record")
}

// resolveConfig layers defaults, the preset, the config file and finally
// any flag the user changed.
func resolveConfig(cmd *cobra.Command, args []string, presetName string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	rigArg := cfg.Rig
	if len(args) > 0 {
		rigArg = args[0]
	}
	source, name := rigs.Resolve(rigArg)

	if presetName != "" {
		p := config.GetPreset(name, presetName)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", presetName, config.ListPresets(name))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if len(args) > 0 {
		cfg.Rig = source
	}

	flags := cmd.Flags()
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("frame-rate") {
		cfg.FrameRate = frameRate
	}
	if flags.Changed("fps") {
		cfg.FpsOverride = fpsOverride
	}
	if flags.Changed("stabilize") {
		cfg.Stabilize = stabilize
	}
	if flags.Changed("gravity-x") {
		cfg.Gravity.X = gravityX
	}
	if flags.Changed("gravity-y") {
		cfg.Gravity.Y = gravityY
	}
	if flags.Changed("wind-x") {
		cfg.Wind.X = windX
	}
	if flags.Changed("wind-y") {
		cfg.Wind.Y = windY
	}
	if flags.Changed("track") {
		cfg.Track = track
	}

	if err := initLogging(cmd, cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// initLogging re-initializes the logger from the config file's logging
// block, unless the matching flags were given.
func initLogging(cmd *cobra.Command, lc config.LoggingConfig) error {
	level, file := logLevel, logFile
	if !cmd.Flags().Changed("log-level") && lc.Level != "" {
		level = lc.Level
	}
	if !cmd.Flags().Changed("log-file") && lc.File != "" {
		file = lc.File
	}
	if level == logLevel && file == logFile {
		return nil
	}
	return logger.Init(level, file)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args, preset)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), metricNames, experiment.WithLogger(logger.Named("experiment")))
	if err != nil {
		return err
	}

	if live {
		r := tui.NewLiveRenderer(cfg.Rig, exp.Engine().Rig(), cfg.Track, 30)
		r.SetRealtime(true)
		exp.Simulator().AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	fmt.Printf("running %s...\n", cfg.Rig)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Rig:       cfg.Rig,
		Preset:    preset,
		FrameRate: cfg.FrameRate,
		Duration:  cfg.Duration,
		Stabilize: cfg.Stabilize,
		Gravity:   storage.Vec2{X: cfg.Gravity.X, Y: cfg.Gravity.Y},
		Wind:      storage.Vec2{X: cfg.Wind.X, Y: cfg.Wind.Y},
		SubRigs:   exp.Engine().SubRigNames(),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	logger.Info("run saved", zap.String("id", runID), zap.Duration("elapsed", elapsed))

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.Frames)
	fmt.Printf("physics ticks: %d\n", result.Ticks)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	if len(result.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		keys := make([]string, 0, len(result.Metrics))
		for k := range result.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %.6f\n", k, result.Metrics[k])
		}
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tRIG\tPRESET\tTIME\tDURATION\tFRAMES\tTICKS")

	for _, run := range runs {
		p := run.Preset
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%d\t%d\n",
			run.ID,
			run.Rig,
			p,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Frames,
			run.Ticks,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Trace, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(trace.Samples) == 0 {
		return nil, nil, fmt.Errorf("no data in run %s", runID)
	}
	return meta, trace, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("rig: %s\n", meta.Rig)
	fmt.Printf("samples: %d\n\n", len(trace.Samples))

	columns := trace.Columns
	if column != "" {
		columns = []string{column}
	}

	for _, c := range columns {
		data := trace.Series(c)
		if data == nil {
			return fmt.Errorf("run %s did not track %s", meta.ID, c)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(c),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, trace)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, trace)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}
	svg := export.TraceToSVG(trace, 800, 300)
	if output == "" {
		fmt.Println(svg)
		return nil
	}
	return os.WriteFile(output, []byte(svg), 0644)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, trace, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("rig: %s\n\n", meta.Rig)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tMIN\tMAX\tMEAN\tRMS\tDOMINANT\tPERIOD\tOVERSHOOT")
	for _, c := range trace.Columns {
		data := trace.Series(c)
		s, err := analysis.Summarize(data, meta.FrameRate)
		if err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		period := "-"
		if s.Dominant > 0 {
			period = fmt.Sprintf("%.3fs", 1/s.Dominant)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.3fhz\t%s\t%.3f\n",
			c, s.Min, s.Max, s.Mean, s.RMS, s.Dominant, period, analysis.Overshoot(data))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	target := column
	if target == "" {
		target = trace.Columns[len(trace.Columns)-1]
	}
	data := trace.Series(target)
	if data == nil {
		return fmt.Errorf("run %s did not track %s", meta.ID, target)
	}

	freqs, mag := analysis.Spectrum(data, meta.FrameRate)
	if len(mag) < 2 {
		return nil
	}
	// low end of the spectrum, where secondary motion lives
	n := len(mag) / 4
	if n < 2 {
		n = len(mag)
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(mag[:n],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s), 0-%.1f hz", target, freqs[n-1])),
	))

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	rigArg := config.DefaultRig
	if len(args) > 0 {
		rigArg = args[0]
	}
	source, name := rigs.Resolve(rigArg)

	presets := config.ListPresets(name)
	if configFile != "" || len(presets) == 0 {
		presets = []string{"default"}
	}

	build := func(p string) (*experiment.Experiment, error) {
		if p == "default" {
			p = ""
		}
		cfg, err := resolveConfig(cmd, []string{source}, p)
		if err != nil {
			return nil, err
		}
		return experiment.New(cfg, experiment.NewRegistry(), nil, experiment.WithLogger(logger.Named("experiment")))
	}

	return tui.RunInteractive(source, presets, build)
}

func inspectRig(cmd *cobra.Command, args []string) error {
	source, _ := rigs.Resolve(args[0])
	data, err := rigs.Read(source)
	if err != nil {
		return err
	}
	eng, err := physics.New(data, physics.WithLogger(logger.Named("physics")))
	if err != nil {
		return err
	}
	fmt.Print(renderRig(source, eng))

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.RigToSVG(eng.Rig(), 240)), 0644); err != nil {
			return err
		}
		fmt.Printf("rest pose written to %s\n", svgPath)
	}
	return nil
}

func benchRig(cmd *cobra.Command, args []string) error {
	source, _ := rigs.Resolve(args[0])

	durations := []float64{10, 60}
	rates := []float64{30, 60, 120}

	fmt.Printf("benchmarking %s\n\n", source)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tFRAME RATE\tFRAMES\tTICKS\tTIME\tFRAMES/SEC")

	for _, dur := range durations {
		for _, rate := range rates {
			cfg := config.DefaultConfig()
			cfg.Rig = source
			cfg.Duration = dur
			cfg.FrameRate = rate

			exp, err := experiment.New(cfg, experiment.NewRegistry(), nil)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.0fs\t%.0f\t%d\t%d\t%v\t%.0f\n",
				dur, rate, result.Frames, result.Ticks, elapsed, float64(result.Frames)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func compareRates(cmd *cobra.Command, args []string) error {
	fpsArgs := args[1:]

	base, err := resolveConfig(cmd, args[:1], preset)
	if err != nil {
		return err
	}
	if len(base.Track) == 0 {
		return fmt.Errorf("nothing tracked")
	}
	probe := base.Track[len(base.Track)-1]

	fmt.Printf("comparing tick rates for %s (%s, %.1fs)\n\n", base.Rig, probe, base.Duration)
	fmt.Printf("%-8s  %-12s  %-12s  %-8s  %-10s\n", "fps", "final", "peak", "ticks", "time_ms")
	fmt.Println(strings.Repeat("-", 58))

	for _, arg := range fpsArgs {
		fps, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			fmt.Printf("%-8s  error: %v\n", arg, err)
			continue
		}

		cfg := base.Clone()
		cfg.FpsOverride = fps

		exp, err := experiment.New(cfg, experiment.NewRegistry(), []string{"peak"})
		if err != nil {
			fmt.Printf("%-8s  error: %v\n", arg, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-8s  error: %v\n", arg, err)
			continue
		}

		series := result.Series(probe)
		final := 0.0
		if len(series) > 0 {
			final = series[len(series)-1]
		}
		fmt.Printf("%-8s  %12.6f  %12.6f  %8d  %10.2f\n", arg, final,
			result.Metrics[sim.MetricKey(probe, "peak")], result.Ticks, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func listRigs(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUB-RIGS\tPARTICLES\tFPS\tPRESETS")
	for _, name := range rigs.Names() {
		data, err := rigs.Get(name)
		if err != nil {
			return err
		}
		eng, err := physics.New(data)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		rig := eng.Rig()
		fmt.Fprintf(w, "%s\t%d\t%d\t%.0f\t%s\n", name, rig.SubRigCount, len(rig.Particles), rig.Fps,
			strings.Join(config.ListPresets(name), ","))
	}
	return w.Flush()
}

func defaultMetricKey(cfg *config.Config, name string) string {
	if len(cfg.Track) == 0 {
		return ""
	}
	return sim.MetricKey(cfg.Track[len(cfg.Track)-1], name)
}

func sweepRig(cmd *cobra.Command, args []string) error {
	if len(axes) == 0 {
		return fmt.Errorf("at least one --axis is required (knobs: %v)", optim.Knobs())
	}
	base, err := resolveConfig(cmd, args, preset)
	if err != nil {
		return err
	}

	parsed := make([]optim.Axis, 0, len(axes))
	for _, a := range axes {
		axis, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		parsed = append(parsed, axis)
	}
	g, err := optim.NewGridSearch(parsed...)
	if err != nil {
		return err
	}

	key := metric
	if key == "" {
		key = defaultMetricKey(base, "jitter")
	}

	fmt.Printf("sweeping %d combinations of %s for the lowest %s\n\n", g.Size(), base.Rig, key)
	registry := experiment.NewRegistry()
	build := func(cfg *config.Config) (*experiment.Experiment, error) {
		return experiment.New(cfg, registry, registry.ListMetrics())
	}

	best, points, err := g.Search(context.Background(), base, build, key)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(parsed)+1)
	for _, a := range parsed {
		header = append(header, strings.ToUpper(a.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, "SCORE"), "\t"))
	for _, p := range points {
		row := make([]string, 0, len(parsed)+1)
		for _, a := range parsed {
			row = append(row, strconv.FormatFloat(p.Values[a.Name], 'g', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(append(row, strconv.FormatFloat(p.Score, 'f', 6, 64)), "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest: %v  %s=%.6f\n", best.Values, key, best.Score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("%s\n", scenario.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(context.Background(), scenario, experiment.NewRegistry(),
		metricNames, logger.Named("automation"))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRIG\tRUN ID\tFRAMES\tTICKS")
	for _, r := range results {
		meta := storage.RunMetadata{
			Rig:       r.Config.Rig,
			Preset:    r.Label,
			FrameRate: r.Config.FrameRate,
			Duration:  r.Config.Duration,
			Stabilize: r.Config.Stabilize,
			Gravity:   storage.Vec2{X: r.Config.Gravity.X, Y: r.Config.Gravity.Y},
			Wind:      storage.Vec2{X: r.Config.Wind.X, Y: r.Config.Wind.Y},
		}
		runID, err := st.Save(meta, r.Result)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", r.Label, r.Config.Rig, runID, r.Result.Frames, r.Result.Ticks)
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args, preset)
	if err != nil {
		return err
	}

	key := metric
	if key == "" {
		key = defaultMetricKey(base, "peak")
	}

	mc := &automation.MonteCarloConfig{
		Base:    base,
		Wind:    windJitter,
		Gravity: gravJitter,
		Trials:  trials,
		Seed:    seed,
		Metric:  key,
	}
	results, err := automation.RunMonteCarlo(context.Background(), mc, experiment.NewRegistry(), logger.Named("automation"))
	if err != nil {
		return err
	}

	s := automation.MonteCarloStats(results)
	fmt.Printf("monte carlo: %s, %d trials, %s\n\n", base.Rig, s.Trials, key)
	fmt.Printf("  mean:    %.6f\n", s.Mean)
	fmt.Printf("  stddev:  %.6f\n", s.StdDev)
	fmt.Printf("  min:     %.6f\n", s.Min)
	fmt.Printf("  max:     %.6f\n", s.Max)
	fmt.Printf("  invalid: %d\n", s.Invalid)
	return nil
}
