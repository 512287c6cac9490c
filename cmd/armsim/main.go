package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/nmpc-lab/armsim/internal/analysis"
	"github.com/nmpc-lab/armsim/internal/config"
	"github.com/nmpc-lab/armsim/internal/control"
	"github.com/nmpc-lab/armsim/internal/dynamo"
	"github.com/nmpc-lab/armsim/internal/experiment"
	"github.com/nmpc-lab/armsim/internal/nmpc"
	"github.com/nmpc-lab/armsim/internal/optim"
	"github.com/nmpc-lab/armsim/internal/plotting"
	"github.com/nmpc-lab/armsim/internal/storage"
	"github.com/nmpc-lab/armsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string

	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string

	q1, q2   float64
	dq1, dq2 float64
	theta    float64
	omega    float64

	targetQ1 float64
	targetQ2 float64

	kp, ki, kd float64

	horizon     int
	mpcStep     float64
	stateWeight float64
	inputWeight float64
	torqueLimit float64

	xAxis, yAxis int
	pngDir       string

	tuneParams string
	tuneValues string
	tuneMetric string

	ensembleRuns int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "armsim",
		Short: "manipulator simulation and predictive control lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a closed-loop simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	runCmd.Flags().IntVar(&ensembleRuns, "ensemble", 1, "number of seeded ensemble members to run in parallel")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run with live terminal visualization",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addSimFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngDir, "png", "", "write PNG plots into this directory instead")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 2, "state index for y-axis")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark a model across step sizes",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	compareCmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	compareCmd.Flags().Float64Var(&q1, "q1", -1.2, "initial first joint angle")
	compareCmd.Flags().Float64Var(&q2, "q2", 0.5, "initial second joint angle")

	tuneCmd := &cobra.Command{
		Use:   "tune [model]",
		Short: "grid search controller parameters",
		Args:  cobra.ExactArgs(1),
		RunE:  tuneController,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneParams, "params", "kp,kd", "comma separated parameter names")
	tuneCmd.Flags().StringVar(&tuneValues, "values", "10,40,80;1,5,10", "semicolon separated value lists, one per parameter")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, phaseCmd, analyzeCmd,
		benchCmd, compareCmd, tuneCmd, presetsCmd, exportCmd, exportCSVCmd, exportJSONCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.01, "timestep")
	cmd.Flags().Float64Var(&duration, "time", 10.0, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4, rk45)")
	cmd.Flags().StringVar(&controller, "controller", "none", "controller (none, pid, lqr, nmpc)")
	cmd.Flags().Float64Var(&q1, "q1", -1.2, "initial first joint angle")
	cmd.Flags().Float64Var(&q2, "q2", 0.5, "initial second joint angle")
	cmd.Flags().Float64Var(&dq1, "dq1", 0.0, "initial first joint velocity")
	cmd.Flags().Float64Var(&dq2, "dq2", 0.0, "initial second joint velocity")
	cmd.Flags().Float64Var(&theta, "theta", 0.5, "initial angle (pendulum)")
	cmd.Flags().Float64Var(&omega, "omega", 0.0, "initial angular velocity (pendulum)")
	cmd.Flags().Float64Var(&targetQ1, "target-q1", 0.5, "target first joint angle")
	cmd.Flags().Float64Var(&targetQ2, "target-q2", -0.3, "target second joint angle")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().IntVar(&horizon, "horizon", config.DefaultHorizon, "nmpc horizon length")
	cmd.Flags().Float64Var(&mpcStep, "mpc-step", config.DefaultMPCStep, "nmpc control interval")
	cmd.Flags().Float64Var(&stateWeight, "state-weight", 10.0, "nmpc state weight")
	cmd.Flags().Float64Var(&inputWeight, "input-weight", 0.01, "nmpc input weight")
	cmd.Flags().Float64Var(&torqueLimit, "torque-limit", 40.0, "nmpc torque rate bound")
}

// buildConfig merges preset, config file and flags into one
// configuration. Flags that were set explicitly win.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		*cfg = *loaded
		cfg.Model = model
	}

	flags := cmd.Flags()
	setIf := func(name string, apply func()) {
		if flags.Changed(name) || (preset == "" && configFile == "") {
			apply()
		}
	}

	setIf("dt", func() { cfg.Dt = dt })
	setIf("time", func() { cfg.Duration = duration })
	setIf("integrator", func() { cfg.Integrator = integrator })
	setIf("controller", func() { cfg.Controller = controller })
	setIf("q1", func() { cfg.InitState.Q1 = q1 })
	setIf("q2", func() { cfg.InitState.Q2 = q2 })
	setIf("dq1", func() { cfg.InitState.DQ1 = dq1 })
	setIf("dq2", func() { cfg.InitState.DQ2 = dq2 })
	setIf("theta", func() { cfg.InitState.Theta = theta })
	setIf("omega", func() { cfg.InitState.Omega = omega })
	setIf("target-q1", func() { cfg.Target.Q1 = targetQ1 })
	setIf("target-q2", func() { cfg.Target.Q2 = targetQ2 })
	setIf("kp", func() { cfg.ControllerParams.Kp = kp })
	setIf("ki", func() { cfg.ControllerParams.Ki = ki })
	setIf("kd", func() { cfg.ControllerParams.Kd = kd })
	setIf("horizon", func() { cfg.MPC.Horizon = horizon })
	setIf("mpc-step", func() { cfg.MPC.StepSize = mpcStep })
	setIf("state-weight", func() { cfg.MPC.StateWeight = stateWeight })
	setIf("input-weight", func() { cfg.MPC.InputWeight = inputWeight })
	setIf("torque-limit", func() {
		cfg.MPC.UMin = -torqueLimit
		cfg.MPC.UMax = torqueLimit
	})
	if flags.Changed("seed") {
		cfg.Seed = seed
	}

	if cfg.MPC.Horizon == 0 {
		cfg.MPC = config.DefaultConfig().MPC
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	if ensembleRuns > 1 {
		return runEnsemble(exp, cfg, st)
	}

	fmt.Printf("running %s with %s controller...\n", cfg.Model, cfg.Controller)
	start := time.Now()

	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", len(result.States))

	if mpcCtrl, ok := controllerOf(exp).(*nmpc.Controller); ok {
		stats := mpcCtrl.Stats()
		fmt.Printf("solves: %d (%d failed), final cost %.4f\n", stats.Solves, stats.Failures, stats.LastCost)
	}

	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runEnsemble(exp *experiment.Experiment, cfg *config.Config, st *storage.Store) error {
	fmt.Printf("running %s ensemble: %d members, seeds %d..%d\n",
		cfg.Model, ensembleRuns, cfg.Seed, cfg.Seed+int64(ensembleRuns)-1)
	start := time.Now()

	results, err := exp.RunEnsemble(context.Background(), ensembleRuns)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n", time.Since(start))

	runID, err := st.Save(cfg, results[0])
	if err != nil {
		return err
	}
	fmt.Printf("run id (first member): %s\n", runID)

	fmt.Println("\nmetric spread across members:")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "metric\tmin\tmean\tmax")

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lo, hi, sum := math.Inf(1), math.Inf(-1), 0.0
		for _, r := range results {
			v := r.Metrics[name]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			sum += v
		}
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%.6f\n", name, lo, sum/float64(len(results)), hi)
	}
	return w.Flush()
}

// controllerOf digs the controller back out of a set-up experiment for
// post-run reporting.
func controllerOf(exp *experiment.Experiment) dynamo.Controller {
	if sim := exp.Simulator(); sim != nil {
		return sim.Controller()
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	dyn, err := registry.GetModel(cfg.Model)
	if err != nil {
		return err
	}
	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return err
	}
	ctrl, err := registry.GetController(cfg.Controller, dyn, cfg)
	if err != nil {
		return err
	}

	m := viz.NewModel(dyn, integ, ctrl, cfg.GetInitState(), cfg.GetTargetState(), cfg.Dt, cfg.Model)
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

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCTRL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID, run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration, run.Dt, run.Integrator, run.Controller)
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
	states, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	if pngDir != "" {
		if err := os.MkdirAll(pngDir, 0755); err != nil {
			return err
		}
		result := resultFrom(states, times, meta.Metrics)
		if err := plotting.SaveRunPlots(pngDir, result); err != nil {
			return err
		}
		fmt.Printf("wrote plots to %s\n", pngDir)
		return nil
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))

	captions := trajectoryCaptions(meta.Model, len(states[0]))
	for varIdx := 0; varIdx < len(states[0]); varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][varIdx]
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(captions[varIdx]),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func trajectoryCaptions(model string, n int) []string {
	if model == "twolink" && n == 6 {
		return []string{
			"q1 (first joint angle)",
			"q2 (second joint angle)",
			"dq1 (first joint velocity)",
			"dq2 (second joint velocity)",
			"tau1 (held torque)",
			"tau2 (held torque)",
		}
	}
	if model == "pendulum" && n == 2 {
		return []string{"theta (angle)", "omega (angular velocity)"}
	}
	captions := make([]string, n)
	for i := range captions {
		captions[i] = fmt.Sprintf("x%d vs time", i)
	}
	return captions
}

func resultFrom(states [][]float64, times []float64, metrics map[string]float64) *dynamo.Result {
	result := &dynamo.Result{
		States:  make([]dynamo.State, len(states)),
		Times:   times,
		Metrics: metrics,
	}
	for i, s := range states {
		result.States[i] = s
	}
	return result
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	result := resultFrom(states, nil, nil)
	portrait := analysis.PortraitFromStates(result.States, xAxis, yAxis)

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 70, 20))

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 || len(states[0]) == 0 {
		return fmt.Errorf("no data")
	}

	fmt.Printf("frequency analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	data := make([]float64, len(states))
	for i := range states {
		data[i] = states[i][0]
	}

	ps := analysis.PowerSpectrum(data)
	plotData := ps[:len(ps)/4]

	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (first joint)"),
	)
	fmt.Println(graph)
	fmt.Println()

	freq := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	traj := make([]dynamo.State, len(states))
	for i, row := range states {
		traj[i] = dynamo.State(row)
	}

	target := make(dynamo.State, len(states[0]))
	target[0] = meta.TargetQ1
	idx := []int{0}
	if meta.Model == "twolink" && len(target) > 1 {
		target[1] = meta.TargetQ2
		idx = []int{0, 1}
	}

	const settleTol = 0.05
	if ts := analysis.SettlingTime(traj, times, target, idx, settleTol); ts >= 0 {
		fmt.Printf("settling time (joints within %.2f rad): %.3f s\n", settleTol, ts)
	} else {
		fmt.Printf("joints never settle within %.2f rad\n", settleTol)
	}

	lambda, err := closedLoopExponent(meta, traj[0])
	if err != nil {
		return err
	}
	fmt.Printf("largest lyapunov exponent: %+.4f /s\n", lambda)

	return nil
}

// closedLoopExponent replays the stored run's closed loop from its
// initial state to estimate the contraction rate. Controller gains not
// recorded in the metadata fall back to the defaults.
func closedLoopExponent(meta *storage.RunMetadata, x0 dynamo.State) (float64, error) {
	cfg := config.DefaultConfig()
	cfg.Model = meta.Model
	cfg.Integrator = meta.Integrator
	cfg.Controller = meta.Controller
	if cfg.Controller == "" {
		cfg.Controller = "none"
	}
	cfg.Dt = meta.Dt
	cfg.Duration = meta.Duration
	cfg.Target.Q1 = meta.TargetQ1
	cfg.Target.Q2 = meta.TargetQ2

	reg := experiment.NewRegistry()
	dyn, err := reg.GetModel(cfg.Model)
	if err != nil {
		return 0, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return 0, err
	}
	ctrl, err := reg.GetController(cfg.Controller, dyn, cfg)
	if err != nil {
		return 0, err
	}

	return analysis.LyapunovExponent(dyn, integ, ctrl, x0, cfg.Dt, cfg.Duration, 1e-8), nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.001, 0.01, 0.1}

	fmt.Printf("benchmarking %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := config.DefaultConfig()
			cfg.Model = model
			cfg.Dt = step
			cfg.Duration = dur
			cfg.Controller = "none"

			exp := experiment.New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			steps := len(result.States)
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, steps, elapsed, float64(steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	model := args[0]
	names := args[1:]

	registry := experiment.NewRegistry()
	dyn, err := registry.GetModel(model)
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Model = model
	cfg.InitState.Q1 = q1
	cfg.InitState.Q2 = q2
	cfg.InitState.Theta = q1
	initState := dynamo.State(cfg.GetInitState())

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", model, dt, duration)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s\n", "integrator", "final_q1", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 54))

	for _, name := range names {
		integ, err := registry.GetIntegrator(name)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		s := dynamo.New(dyn, integ, control.NewNone(dyn.ControlDim()))
		runCfg := dynamo.DefaultConfig()
		runCfg.Dt = dt
		runCfg.Duration = duration
		runCfg.Adaptive = name == "rk45"

		start := time.Now()
		result, err := s.Run(context.Background(), initState.Clone(), runCfg)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		finalQ1 := 0.0
		if final := result.Final(); len(final) > 0 {
			finalQ1 = final[0]
		}
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f\n",
			name, finalQ1, result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func tuneController(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if cfg.Controller == "none" {
		return fmt.Errorf("pick a controller to tune with --controller")
	}

	names := strings.Split(tuneParams, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	valueLists := strings.Split(tuneValues, ";")
	if len(names) != len(valueLists) {
		return fmt.Errorf("%d parameters but %d value lists", len(names), len(valueLists))
	}

	ranges := make([][]float64, len(valueLists))
	for i, list := range valueLists {
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return fmt.Errorf("bad value %q: %w", raw, err)
			}
			ranges[i] = append(ranges[i], v)
		}
	}

	total := 1
	for _, r := range ranges {
		total *= len(r)
	}
	fmt.Printf("tuning %s over %d grid points (metric: %s)...\n", cfg.Controller, total, tuneMetric)

	gs := optim.NewGridSearch(names, ranges)
	start := time.Now()
	best, bestVal, err := gs.Search(context.Background(), cfg, tuneMetric)
	if err != nil {
		return err
	}
	if best == nil {
		return fmt.Errorf("no grid point produced metric %q", tuneMetric)
	}

	fmt.Printf("done in %v\n\nbest %s: %.6f\n", time.Since(start), tuneMetric, bestVal)
	for _, name := range names {
		fmt.Printf("  %s = %g\n", name, best[name])
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
	st := storage.New(dataDir)
	states, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	cfg.Model = meta.Model
	cfg.Integrator = meta.Integrator
	cfg.Controller = meta.Controller
	cfg.Dt = meta.Dt
	cfg.Duration = meta.Duration

	return storage.ExportJSONStdout(cfg, resultFrom(states, times, meta.Metrics))
}
