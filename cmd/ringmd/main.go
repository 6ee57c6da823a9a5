package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/ringmd/internal/config"
	"github.com/san-kum/ringmd/internal/observable"
	"github.com/san-kum/ringmd/internal/output"
	"github.com/san-kum/ringmd/internal/sim"
	"github.com/san-kum/ringmd/internal/tui"
)

var (
	dataDir     string
	verbose     bool
	replicas    int
	atoms       int
	beta        float64
	gamma       float64
	dt          float64
	steps       int
	outputEvery int
	seed        uint64
	runs        int
	configFile  string
	preset      string
	xyzPath     string
	csvPath     string
	noSave      bool
	plain       bool
	frameRate   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ringmd",
		Short: "ring-polymer molecular dynamics in the terminal",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			lvl := slog.LevelInfo
			if verbose {
				lvl = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".ringmd", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [potential]",
		Short: "run a trajectory and store the results",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrajectory,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "independent trajectories to average")
	runCmd.Flags().StringVar(&xyzPath, "xyz", "", "write the trajectory to this XYZ file")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "write per-frame observables to this CSV file")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip the data directory")

	liveCmd := &cobra.Command{
		Use:   "live [potential]",
		Short: "run a trajectory with the interactive monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().BoolVar(&plain, "plain", false, "draw with the plain ANSI renderer instead of the monitor")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for the plain renderer")

	presetsCmd := &cobra.Command{
		Use:   "presets [potential]",
		Short: "list available presets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := config.ListPresets(args[0])
			if len(names) == 0 {
				fmt.Printf("no presets for potential: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range names {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energies of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, plotCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&replicas, "replicas", 0, "ring replicas (beads)")
	cmd.Flags().IntVar(&atoms, "atoms", 0, "atoms per replica")
	cmd.Flags().Float64Var(&beta, "beta", 0, "inverse temperature")
	cmd.Flags().Float64Var(&gamma, "gamma", -1, "thermostat friction (0 disables)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	cmd.Flags().IntVar(&outputEvery, "output-every", 0, "steps between frames")
	cmd.Flags().Uint64Var(&seed, "seed", uint64(time.Now().UnixNano()), "thermostat seed")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves preset, config file and flag overrides, in that
// order of increasing precedence.
func buildConfig(args []string) (*config.Config, string, error) {
	pot := "harmonic"
	if len(args) > 0 {
		pot = args[0]
	}
	cfg := config.DefaultConfig()
	cfg.Potential = pot
	if preset != "" {
		p := config.GetPreset(pot, preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(pot))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
		pot = cfg.Potential
	}
	if replicas > 0 {
		cfg.Replicas = replicas
	}
	if atoms > 0 {
		cfg.Atoms = atoms
	}
	if beta > 0 {
		cfg.Beta = beta
	}
	if gamma >= 0 {
		cfg.Gamma = gamma
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if steps > 0 {
		cfg.Steps = steps
	}
	if outputEvery > 0 {
		cfg.OutputEvery = outputEvery
	}
	cfg.Seed = seed
	name := pot
	if preset != "" {
		name = pot + "-" + preset
	}
	return cfg, name, nil
}

func buildObservables(cfg *config.Config, simCfg sim.Config) []sim.Observable {
	phys, _ := cfg.BuildPotential()
	return []sim.Observable{
		observable.PrimitiveEnergy{Beta: simCfg.Beta, Replicas: simCfg.Replicas, Atoms: simCfg.Atoms},
		observable.VirialEnergy{Beta: simCfg.Beta, Replicas: simCfg.Replicas, Atoms: simCfg.Atoms, Phys: phys},
		observable.Temperature{Replicas: simCfg.Replicas, Atoms: simCfg.Atoms, Groups: simCfg.Groups},
		observable.SpringEnergy{},
	}
}

func runTrajectory(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(args)
	if err != nil {
		return err
	}
	phys, err := cfg.BuildPotential()
	if err != nil {
		return err
	}
	simCfg, err := cfg.BuildSim()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if runs > 1 {
		return runEnsemble(ctx, cfg, simCfg, name)
	}

	runner, err := sim.New(simCfg, phys, slog.Default())
	if err != nil {
		return err
	}
	for _, o := range buildObservables(cfg, simCfg) {
		runner.AddObservable(o)
	}

	var flushers []interface{ Flush() error }
	if xyzPath != "" {
		f, err := os.Create(xyzPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w := output.NewXYZWriter(f, simCfg.Groups)
		runner.AddSink(w)
		flushers = append(flushers, w)
	}
	if csvPath != "" {
		f, err := os.Create(csvPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w := output.NewObservableWriter(f)
		runner.AddSink(w)
		flushers = append(flushers, w)
	}

	start := time.Now()
	res, err := runner.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return err
	}
	for _, fl := range flushers {
		if err := fl.Flush(); err != nil {
			return err
		}
	}
	printSummary(name, res, time.Since(start))

	if !noSave {
		store := output.NewStore(dataDir)
		if err := store.Init(); err != nil {
			return err
		}
		id, err := store.Save(name, simCfg, res)
		if err != nil {
			return err
		}
		fmt.Printf("\nsaved as %s\n", id)
	}
	return nil
}

func runEnsemble(ctx context.Context, cfg *config.Config, simCfg sim.Config, name string) error {
	phys, err := cfg.BuildPotential()
	if err != nil {
		return err
	}
	ens := sim.NewEnsemble(simCfg, phys, runs, slog.Default())
	for _, o := range buildObservables(cfg, simCfg) {
		ens.AddObservable(o)
	}

	start := time.Now()
	results, stats, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d runs x %d steps in %s\n", name, len(results), simCfg.Steps, time.Since(start).Round(time.Millisecond))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "observable\tmean\tstderr\tsamples")
	for name, st := range stats {
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\t%d\n", name, st.Mean, st.StdErr, st.N)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := buildConfig(args)
	if err != nil {
		return err
	}
	phys, err := cfg.BuildPotential()
	if err != nil {
		return err
	}
	simCfg, err := cfg.BuildSim()
	if err != nil {
		return err
	}
	runner, err := sim.New(simCfg, phys, slog.New(slog.DiscardHandler))
	if err != nil {
		return err
	}
	for _, o := range buildObservables(cfg, simCfg) {
		runner.AddObservable(o)
	}

	if plain {
		lr := tui.NewLiveRenderer(name, frameRate)
		runner.AddSink(lr)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		lr.Start()
		defer lr.Stop()
		_, err := runner.Run(ctx)
		if err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}

	mon := tui.NewMonitor(name, simCfg.Steps)
	runner.AddSink(mon)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_, err := runner.Run(ctx)
		mon.Done(err)
	}()
	return mon.Run()
}

func listRuns(cmd *cobra.Command, args []string) error {
	store := output.NewStore(dataDir)
	metas, err := store.List()
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "id\twhen\treplicas\tatoms\tbeta\tsteps")
	for _, m := range metas {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%g\t%d\n",
			m.ID, m.Timestamp.Format("2006-01-02 15:04"), m.Replicas, m.Atoms, m.Beta, m.Steps)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := output.NewStore(dataDir)
	energies, err := store.LoadEnergies(args[0])
	if err != nil {
		return err
	}
	total := make([]float64, len(energies))
	spring := make([]float64, len(energies))
	for i, e := range energies {
		total[i] = e.Kinetic + e.Potential + e.Spring
		spring[i] = e.Spring
	}
	if plot := output.Trace(total, "total energy"); plot != "" {
		fmt.Println(plot)
		fmt.Println()
	}
	if plot := output.Trace(spring, "spring energy"); plot != "" {
		fmt.Println(plot)
	}
	return nil
}

func printSummary(name string, res *sim.Result, elapsed time.Duration) {
	fmt.Printf("%s: %d steps in %s\n", name, res.Steps, elapsed.Round(time.Millisecond))
	if res.Poisoned {
		fmt.Println("warning: a writer faulted during the run; results may be partial")
	}
	if len(res.Energies) > 0 {
		last := res.Energies[len(res.Energies)-1]
		fmt.Printf("final energies: K=%.4f V=%.4f S=%.4f\n", last.Kinetic, last.Potential, last.Spring)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "observable\tmean\tlast")
	for _, name := range []string{"energy_primitive", "energy_virial", "temperature", "energy_spring"} {
		series := res.Series[name]
		if len(series) == 0 {
			continue
		}
		mean := 0.0
		for _, v := range series {
			mean += v
		}
		mean /= float64(len(series))
		fmt.Fprintf(w, "%s\t%.6f\t%.6f\n", name, mean, series[len(series)-1])
	}
	w.Flush()

	if plot := output.Trace(res.Series["energy_virial"], "virial energy estimator"); plot != "" {
		fmt.Println()
		fmt.Println(plot)
	}
}
