package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"entroflow/internal/config"
	"entroflow/internal/driver"
	"entroflow/internal/hydro"
	"entroflow/internal/integrators"
	"entroflow/internal/network"
	"entroflow/internal/storage"
	"entroflow/internal/sweep"
	"entroflow/internal/viz"
	"entroflow/internal/zone"
)

var (
	dataDir string

	t9         float64
	rho        float64
	rho1       float64
	tau        float64
	delta      float64
	rootFactor float64

	startTime float64
	dtime     float64
	tend      float64
	steps     int

	integrator      string
	t9Guess         bool
	observe         bool
	sdotView        string
	outputEveryDump bool

	configFile string
	preset     string

	// Sweep axes (comma-separated values)
	sweepTaus   string
	sweepDeltas string
	sweepRho1s  string
	parallel    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "entroflow",
		Short: "expanding fluid element trajectories coupled to a reaction network",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".entroflow", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a trajectory",
		RunE:  runTrajectory,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a trajectory with live visualization",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a parameter grid",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepTaus, "taus", "0.1", "tau values (comma-separated)")
	sweepCmd.Flags().StringVar(&sweepDeltas, "deltas", "0.1", "delta values (comma-separated)")
	sweepCmd.Flags().StringVar(&sweepRho1s, "rho1s", "9e7", "rho_1 values (comma-separated)")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 4, "trajectories in flight")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportCSVCmd, liveCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&t9, "t9", config.DefaultT9, "initial temperature (10^9 K)")
	cmd.Flags().Float64Var(&rho, "rho", config.DefaultRho, "initial density rho_0 (g/cc)")
	cmd.Flags().Float64Var(&rho1, "rho1", config.DefaultRho1, "decaying density component rho_1 (g/cc)")
	cmd.Flags().Float64Var(&tau, "tau", config.DefaultTau, "expansion timescale (s)")
	cmd.Flags().Float64Var(&delta, "delta", config.DefaultDelta, "cutoff time (s)")
	cmd.Flags().Float64Var(&rootFactor, "root-factor", config.DefaultRootFactor, "temperature solve bracket factor")
	cmd.Flags().Float64Var(&startTime, "time", 0.0, "start time (s)")
	cmd.Flags().Float64Var(&dtime, "dtime", config.DefaultDtime, "initial trial step (s)")
	cmd.Flags().Float64Var(&tend, "tend", config.DefaultTEnd, "end time (s)")
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "snapshot every Nth committed step")
	cmd.Flags().StringVar(&integrator, "integrator", "adams-bashforth", "integrator (euler, rk4, rk45, adams-bashforth)")
	cmd.Flags().BoolVar(&t9Guess, "t9-guess", true, "extrapolate the temperature between commits")
	cmd.Flags().BoolVar(&observe, "observe", false, "print per-evaluation diagnostics")
	cmd.Flags().StringVar(&sdotView, "sdot-view", "", "restrict entropy generation to a species list")
	cmd.Flags().BoolVar(&outputEveryDump, "output-every-dump", false, "flush the snapshot file at every dump")
}

// assembleConfig resolves the run configuration with flags taking
// precedence over the config file, which takes precedence over the preset.
func assembleConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("t9") {
		cfg.T9 = t9
	}
	if flags.Changed("rho") {
		cfg.Rho = rho
	}
	if flags.Changed("rho1") {
		cfg.Rho1 = rho1
	}
	if flags.Changed("tau") {
		cfg.Tau = tau
	}
	if flags.Changed("delta") {
		cfg.Delta = delta
	}
	if flags.Changed("root-factor") {
		cfg.RootFactor = rootFactor
	}
	if flags.Changed("time") {
		cfg.Time = startTime
	}
	if flags.Changed("dtime") {
		cfg.Dtime = dtime
	}
	if flags.Changed("tend") {
		cfg.TEnd = tend
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("t9-guess") {
		cfg.T9Guess = t9Guess
	}
	if flags.Changed("observe") {
		cfg.Observe = observe
	}
	if flags.Changed("sdot-view") {
		cfg.SdotView = sdotView
	}
	if flags.Changed("output-every-dump") {
		cfg.OutputEveryDump = outputEveryDump
	}
	return cfg, nil
}

func buildIntegrator(name string) (integrators.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	case "adams-bashforth", "":
		return integrators.NewAdamsBashforth(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

// setup builds a wired zone and driver for one run of cfg.
func setup(cfg *config.Config) (*driver.Driver, *zone.Zone, error) {
	p, err := cfg.Params()
	if err != nil {
		return nil, nil, err
	}

	z := zone.New(network.NewAnalytic())
	driver.Wire(z, p)
	if cfg.Observe {
		driver.WireObserver(z, os.Stdout)
	}

	integ, err := buildIntegrator(cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}

	d, err := driver.New(p, hydro.DefaultLimits(), z, integ, driver.Config{
		Time:            cfg.Time,
		Dtime:           cfg.Dtime,
		TEnd:            cfg.TEnd,
		DumpSteps:       cfg.Steps,
		T9Guess:         cfg.T9Guess,
		Observe:         cfg.Observe,
		OutputEveryDump: cfg.OutputEveryDump,
		SdotView:        cfg.SdotView,
	})
	if err != nil {
		return nil, nil, err
	}

	d.AddMetric(driver.NewPeakT9(z))
	d.AddMetric(driver.NewEntropyGain())
	d.AddMetric(driver.NewMinDt(z))
	return d, z, nil
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, err := assembleConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Begin("run")
	if err != nil {
		return err
	}

	d, _, err := setup(cfg)
	if err != nil {
		return err
	}
	d.SetSink(st)

	fmt.Println("running trajectory...")
	start := time.Now()

	result, err := d.Run(context.Background())
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		T9: cfg.T9, Rho: cfg.Rho, Rho1: cfg.Rho1,
		Tau: cfg.Tau, Delta: cfg.Delta,
		Dtime: cfg.Dtime, TEnd: cfg.TEnd,
		Integrator: cfg.Integrator,
	}
	if err := st.Finish(meta, result); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("snapshots: %d\n", result.Snapshots)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6e\n", name, val)
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

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Time", "T9", "Rho", "Tau", "Delta", "TEnd", "Steps", "Integ"})
	for _, run := range runs {
		table.Append([]string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%.3g", run.T9),
			fmt.Sprintf("%.3g", run.Rho),
			fmt.Sprintf("%.3g", run.Tau),
			fmt.Sprintf("%.3g", run.Delta),
			fmt.Sprintf("%.3g", run.TEnd),
			strconv.Itoa(run.Steps),
			run.Integrator,
		})
	}
	table.Render()
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(states))

	captions := []string{
		"scale factor",
		"scale rate",
		"entropy per nucleon (kB)",
		"T9",
		"rho (g/cc)",
	}
	for col, caption := range captions {
		data := make([]float64, len(states))
		for i := range states {
			if col < len(states[i]) {
				data[i] = states[i][col]
			}
		}
		fmt.Println(viz.PlotSeries(data, caption, 80, 10))
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

// loadResult rebuilds a driver result from a stored run.
func loadResult(st *storage.Store, runID string) (*storage.RunMetadata, *driver.Result, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &driver.Result{
		Times:      times,
		StepsTaken: meta.Steps,
		Snapshots:  meta.Snapshots,
		Metrics:    meta.Metrics,
	}
	for _, row := range states {
		if len(row) < 5 {
			return nil, nil, fmt.Errorf("malformed state row in run %s", runID)
		}
		result.States = append(result.States, hydro.State{row[0], row[1], row[2]})
		result.T9s = append(result.T9s, row[3])
		result.Rhos = append(result.Rhos, row[4])
	}
	return meta, result, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta.Integrator, meta.Dtime, meta.TEnd, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, result, err := loadResult(st, args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, result)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := assembleConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Observe = false // the view replaces text output

	d, _, err := setup(cfg)
	if err != nil {
		return err
	}

	obs := viz.NewChannelObserver(256)
	d.AddObserver(obs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := d.Run(ctx)
		done <- err
	}()

	m := viz.NewModel(obs.Steps(), done, cancel)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		return err
	}
	return nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := assembleConfig(cmd)
	if err != nil {
		return err
	}

	taus, err := parseFloats(sweepTaus)
	if err != nil {
		return err
	}
	deltas, err := parseFloats(sweepDeltas)
	if err != nil {
		return err
	}
	rho1s, err := parseFloats(sweepRho1s)
	if err != nil {
		return err
	}

	grid := sweep.Grid{Taus: taus, Deltas: deltas, Rho1s: rho1s}
	fmt.Printf("sweeping %d points...\n", len(grid.Points()))
	start := time.Now()

	outcomes, err := sweep.Run(context.Background(), grid, parallel, func(ctx context.Context, pt sweep.Point) (map[string]float64, error) {
		cfg := *base
		cfg.Tau = pt.Tau
		cfg.Delta = pt.Delta
		cfg.Rho1 = pt.Rho1
		cfg.Observe = false

		d, _, err := setup(&cfg)
		if err != nil {
			return nil, err
		}
		result, err := d.Run(ctx)
		if err != nil {
			return nil, err
		}
		return result.Metrics, nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Tau", "Delta", "Rho1", "Peak T9", "Entropy Gain", "Min Dt", "Status"})
	for _, o := range outcomes {
		status := "ok"
		if o.Err != nil {
			status = o.Err.Error()
		}
		table.Append([]string{
			fmt.Sprintf("%.3g", o.Point.Tau),
			fmt.Sprintf("%.3g", o.Point.Delta),
			fmt.Sprintf("%.3g", o.Point.Rho1),
			fmt.Sprintf("%.4e", o.Metrics["peak_t9"]),
			fmt.Sprintf("%.4e", o.Metrics["entropy_gain"]),
			fmt.Sprintf("%.4e", o.Metrics["min_dt"]),
			status,
		})
	}
	table.Render()
	return nil
}
