package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"motorlab/internal/analysis"
	"motorlab/internal/config"
	"motorlab/internal/control"
	"motorlab/internal/experiment"
	"motorlab/internal/export"
	"motorlab/internal/metrics"
	"motorlab/internal/optim"
	"motorlab/internal/sim"
	"motorlab/internal/storage"
	"motorlab/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt         float64
	horizon    float64
	integrator string
	controller string
	kp         float64
	ki         float64
	kd         float64
	refType    string
	amplitude  float64
	frequency  float64
	loadTorque float64

	plotPath        string
	plotControlPath string
	outPath         string

	kpRange string
	kiRange string
	kdRange string
	tuneFor string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "motorlab",
		Short: "dc motor speed control lab: classical pid vs fuzzy-adaptive pid",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".motorlab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run one closed-loop simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run classical and fuzzy controllers side by side",
		RunE:  runComparison,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().StringVar(&plotPath, "plot", "", "write a PNG step-response comparison")
	compareCmd.Flags().StringVar(&plotControlPath, "plot-control", "", "write a PNG of the control signals")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search pid gains",
		RunE:  runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&kpRange, "kp-range", "10:100:10", "kp grid as lo:hi:steps")
	tuneCmd.Flags().StringVar(&kiRange, "ki-range", "20:200:10", "ki grid as lo:hi:steps")
	tuneCmd.Flags().StringVar(&kdRange, "kd-range", "0:1:3", "kd grid as lo:hi:steps")
	tuneCmd.Flags().StringVar(&tuneFor, "objective", "itae", "objective: itae or settling")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "ascii plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	renderCmd := &cobra.Command{
		Use:   "render [run_id]...",
		Short: "render stored runs to a PNG",
		Args:  cobra.MinimumNArgs(1),
		RunE:  renderRuns,
	}
	renderCmd.Flags().StringVar(&outPath, "out", "response.png", "output file")
	renderCmd.Flags().StringVar(&plotControlPath, "plot-control", "", "also write a PNG of the control signals")

	saveConfigCmd := &cobra.Command{
		Use:   "save-config [path]",
		Short: "write the resolved configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE:  saveConfig,
	}
	addRunFlags(saveConfigCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the tracking error",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run series to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run series and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (default <run_id>.json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets()
			sort.Strings(names)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCONTROLLER\tKP\tKI\tKD\tREFERENCE")
			for _, name := range names {
				p := config.Presets[name]
				fmt.Fprintf(w, "%s\t%s\t%.0f\t%.0f\t%.2f\t%s\n",
					name, p.Controller, p.Gains.Kp, p.Gains.Ki, p.Gains.Kd, p.Reference.Type)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, tuneCmd, liveCmd, listCmd, plotCmd,
		renderCmd, analyzeCmd, exportCSVCmd, exportJSONCmd, saveConfigCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&horizon, "time", config.DefaultHorizon, "horizon")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator: euler or rk4")
	cmd.Flags().StringVar(&controller, "controller", "pid", "controller: pid or fuzzy")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	cmd.Flags().StringVar(&refType, "ref", "step", "reference: step, ramp or sine")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 1.0, "reference amplitude [rad/s]")
	cmd.Flags().Float64Var(&frequency, "frequency", 0.25, "sine reference frequency [Hz]")
	cmd.Flags().Float64Var(&loadTorque, "load", 0.0, "constant load torque [N·m]")
}

// resolveConfig layers configuration: preset, then config file, then any
// flag the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Horizon = horizon
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("kp") {
		cfg.Gains.Kp = kp
	}
	if flags.Changed("ki") {
		cfg.Gains.Ki = ki
	}
	if flags.Changed("kd") {
		cfg.Gains.Kd = kd
	}
	if flags.Changed("ref") {
		cfg.Reference.Type = refType
	}
	if flags.Changed("amplitude") {
		cfg.Reference.Amplitude = amplitude
	}
	if flags.Changed("frequency") {
		cfg.Reference.Frequency = frequency
	}
	if flags.Changed("load") {
		cfg.Plant.LoadTorque = loadTorque
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	setup, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("running %s controller, %s reference...\n", cfg.Controller, cfg.Reference.Type)
	start := time.Now()

	ctrl := setup.Controller()
	loop := sim.NewLoop(setup.Plant(), setup.Integrator(), ctrl, setup.Reference)
	for _, m := range experiment.DefaultMetrics() {
		loop.AddMetric(m)
	}

	rec, err := loop.Run(context.Background(), sim.State{0, 0}, setup.SimConfig)
	var fault *sim.Fault
	if err != nil && !errors.As(err, &fault) {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg.Controller, cfg.Integrator, cfg.Reference.Type, cfg.Dt, cfg.Horizon, rec)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", rec.Len())
	if fault != nil {
		fmt.Printf("DIVERGED at t=%.3fs: %v\n", fault.Time, fault.Wrapped)
	}
	if fp, ok := ctrl.(*control.FuzzyPID); ok && fp.CoverageGaps() > 0 {
		fmt.Printf("rule coverage gaps: %d\n", fp.CoverageGaps())
	}

	if len(rec.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		names := make([]string, 0, len(rec.Metrics))
		for name := range rec.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %.6f\n", name, rec.Metrics[name])
		}
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROLLER\tRISE\tSETTLE\tOVERSHOOT\tSSE")
	printStepRow(w, cfg.Controller, metrics.Evaluate(rec, setup.Target, metrics.Options{}))
	return w.Flush()
}

func runComparison(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	comp, setup, err := experiment.BuildComparison(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("comparing pid vs fuzzy over %.1fs (%s reference)\n\n", cfg.Horizon, cfg.Reference.Type)
	records, err := comp.Run(context.Background(), sim.State{0, 0}, setup.SimConfig)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONTROLLER\tRISE\tSETTLE\tOVERSHOOT\tSSE")
	named := make(map[string]*sim.Record, len(records))
	for i, rec := range records {
		name := comp.Candidates[i].Name
		named[name] = rec
		printStepRow(w, name, metrics.Evaluate(rec, setup.Target, metrics.Options{}))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if plotPath != "" {
		if err := export.PlotResponse(plotPath, "step response", named); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", plotPath)
	}
	if plotControlPath != "" {
		if err := export.PlotControl(plotControlPath, "control signal", named); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotControlPath)
	}
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	kpVals, err := parseRange(kpRange)
	if err != nil {
		return fmt.Errorf("kp-range: %w", err)
	}
	kiVals, err := parseRange(kiRange)
	if err != nil {
		return fmt.Errorf("ki-range: %w", err)
	}
	kdVals, err := parseRange(kdRange)
	if err != nil {
		return fmt.Errorf("kd-range: %w", err)
	}

	total := len(kpVals) * len(kiVals) * len(kdVals)
	fmt.Printf("searching %d gain combinations (%s objective)...\n", total, tuneFor)
	start := time.Now()

	gs := optim.NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kpVals, kiVals, kdVals})
	best, score, err := gs.Search(context.Background(), func(params map[string]float64) (float64, error) {
		trial := *cfg
		trial.Gains = config.GainsConfig{Kp: params["kp"], Ki: params["ki"], Kd: params["kd"]}
		setup, err := experiment.Build(&trial)
		if err != nil {
			return 0, err
		}
		rec, err := setup.Loop().Run(context.Background(), sim.State{0, 0}, setup.SimConfig)
		if err != nil {
			return 0, err
		}
		sm := metrics.Evaluate(rec, setup.Target, metrics.Options{})
		if tuneFor == "settling" {
			if !sm.SettlingDefined {
				return 0, fmt.Errorf("did not settle")
			}
			return sm.SettlingTime, nil
		}
		return rec.Metrics["itae"], nil
	})
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no gain combination completed a run")
	}

	fmt.Printf("done in %v\n\n", time.Since(start))
	fmt.Printf("best: kp=%.3f ki=%.3f kd=%.3f (%s=%.6f)\n",
		best["kp"], best["ki"], best["kd"], tuneFor, score)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	setup, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("motorlab: %s controller", cfg.Controller)
	m := viz.NewModel(title, setup.Plant(), setup.Integrator(), setup.Controller(),
		setup.Reference, []float64{0, 0}, cfg.Dt)

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tINTEG\tREF\tHORIZON\tDT\tDIVERGED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1fs\t%.4fs\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.Integrator,
			run.Reference,
			run.Horizon,
			run.Dt,
			run.Diverged,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rec, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("controller: %s\n", meta.Controller)
	fmt.Printf("samples: %d\n\n", rec.Len())

	graph := asciigraph.PlotMany(
		[][]float64{rec.References, rec.Outputs},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("reference / speed [rad/s]"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(rec.Controls,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption("control [V]"),
	)
	fmt.Println(graph)
	return nil
}

func renderRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	named := make(map[string]*sim.Record, len(args))
	for _, runID := range args {
		rec, err := st.LoadSeries(runID)
		if err != nil {
			return err
		}
		named[runID] = rec
	}
	if err := export.PlotResponse(outPath, "step response", named); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	if plotControlPath != "" {
		if err := export.PlotControl(plotControlPath, "control signal", named); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotControlPath)
	}
	return nil
}

func saveConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if _, err := experiment.Build(cfg); err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rec, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("controller: %s\n\n", meta.Controller)

	sp := analysis.ErrorSpectrum(rec, meta.Dt)
	if len(sp.Magnitudes) < 2 {
		return fmt.Errorf("series too short for analysis")
	}

	plotData := sp.Magnitudes[:len(sp.Magnitudes)/4+1]
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("error power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := sp.DominantFrequency()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	rec, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	if err := w.Write([]string{"time", "reference", "output", "control", "error"}); err != nil {
		return err
	}
	for i := 0; i < rec.Len(); i++ {
		row := []string{
			strconv.FormatFloat(rec.Times[i], 'f', 6, 64),
			strconv.FormatFloat(rec.References[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Outputs[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Controls[i], 'f', 6, 64),
			strconv.FormatFloat(rec.Errors[i], 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rec, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	rec.Metrics = meta.Metrics

	target := 0.0
	if rec.Len() > 0 {
		target = rec.References[rec.Len()-1]
	}

	path := outPath
	if path == "" {
		path = runID + ".json"
	}
	if err := export.WriteJSON(path, runID, rec, target); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func printStepRow(w *tabwriter.Writer, name string, m metrics.StepMetrics) {
	if m.Diverged {
		fmt.Fprintf(w, "%s\tDIVERGED\t-\t-\t-\n", name)
		return
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		name,
		fmtSeconds(m.RiseTime, m.RiseDefined),
		fmtSeconds(m.SettlingTime, m.SettlingDefined),
		fmtPercent(m.OvershootPct, m.OvershootDefined),
		fmtValue(m.SteadyStateError, m.SteadyStateDefined),
	)
}

func fmtSeconds(v float64, defined bool) string {
	if !defined {
		return "-"
	}
	return fmt.Sprintf("%.3fs", v)
}

func fmtPercent(v float64, defined bool) string {
	if !defined {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v)
}

func fmtValue(v float64, defined bool) string {
	if !defined {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

// parseRange expands "lo:hi:steps" into evenly spaced values, inclusive of
// both endpoints.
func parseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("want lo:hi:steps, got %q", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, err
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, err
	}
	if n < 1 || hi < lo {
		return nil, fmt.Errorf("invalid range %q", s)
	}
	if n == 1 {
		return []float64{lo}, nil
	}
	vals := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + float64(i)*step
	}
	return vals, nil
}
