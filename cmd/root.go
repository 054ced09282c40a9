package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lottery-sim/lottery-sim/sim"
	"github.com/lottery-sim/lottery-sim/sim/runner"
	"github.com/lottery-sim/lottery-sim/sim/trace"
	"github.com/lottery-sim/lottery-sim/sim/workload"
)

var (
	// CLI flags for the run command
	workloadPath string  // YAML or CSV workload file
	seed         int64   // Master seed; overrides the workload's seed when set
	quantum      int     // Max consecutive cycles before a redraw
	ticketMode   string  // "automatic" or "manual"
	pool         int     // Fixed global ticket pool; 0 = direct mode
	randomCount  int     // Extra randomly generated processes
	maxCycles    int     // Stop with a warning after this many cycles
	speed        float64 // Cycles per second; 0 = as fast as possible
	ioBlockEvery int     // Force an I/O block after every N-th cycle
	explain      bool    // Print an explanation of every draw and the finishing order
	historyOut   string  // JSON-lines history export path
	logLevel     string  // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "lottery-sim",
	Short: "Lottery scheduling CPU simulator",
}

// runCmd loads a workload, runs it to completion and prints the report
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a lottery scheduling simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		spec, err := loadWorkload(workloadPath)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		applyWorkloadFlags(spec, cmd.Flags())
		cfg := resolveConfig(spec, cmd.Flags())

		runID := uuid.NewString()
		s, err := newSimulation(spec, cfg, runID)
		if err != nil {
			logrus.Fatalf("Failed to set up simulation: %v", err)
		}
		logrus.Infof("Run %s: seed=%d quantum=%d tickets=%s pool=%d processes=%d",
			runID, spec.Seed, cfg.Quantum, cfg.TicketMode, cfg.Pool, len(s.Ready()))

		opts := runner.Options{Speed: cfg.Speed, MaxCycles: maxCycles, IOBlockEvery: ioBlockEvery}
		if cfg.Speed > 0 {
			opts.OnCycle = func(c trace.CycleRecord) {
				fmt.Fprintln(os.Stderr, liveLine(c))
			}
		}
		r, err := runner.New(s, opts)
		if err != nil {
			logrus.Fatalf("Invalid run options: %v", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		n, err := r.Run(ctx)
		switch {
		case err == nil:
		case errors.Is(err, sim.ErrCycleLimit):
			logrus.Warnf("%v; reporting partial results", err)
		case errors.Is(err, context.Canceled):
			logrus.Warnf("Interrupted after %d cycles; reporting partial results", n)
		default:
			logrus.Fatalf("Simulation failed: %v", err)
		}

		r.Do(func(s *sim.Simulator) {
			printReport(os.Stdout, s, explain)
			if historyOut != "" {
				if err := writeHistory(historyOut, runID, s.History()); err != nil {
					logrus.Errorf("Failed to write history: %v", err)
				}
			}
		})
		logrus.Info("Simulation complete.")
	},
}

func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// loadWorkload reads a .csv process list or a YAML workload spec. An empty
// path yields an empty spec for --random to fill.
func loadWorkload(path string) (*workload.Spec, error) {
	if path == "" {
		return &workload.Spec{}, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return workload.LoadCSV(path)
	}
	return workload.LoadSpec(path)
}

// applyWorkloadFlags folds --seed and --random into spec. The flag seed wins
// when set explicitly or when the workload carries none.
func applyWorkloadFlags(spec *workload.Spec, flags *pflag.FlagSet) {
	if flags.Changed("seed") || spec.Seed == 0 {
		spec.Seed = seed
	}
	if flags.Changed("random") {
		if spec.Random == nil {
			spec.Random = &workload.RandomSpec{}
		}
		spec.Random.Count = randomCount
	}
}

// resolveConfig starts from the workload's config and applies explicitly set
// flags. Runs are unpaced unless the workload or --speed asks otherwise.
func resolveConfig(spec *workload.Spec, flags *pflag.FlagSet) sim.Config {
	cfg := spec.SimConfig()
	if spec.Config == nil || spec.Config.Speed == 0 {
		cfg.Speed = 0
	}
	if flags.Changed("quantum") {
		cfg.Quantum = quantum
	}
	if flags.Changed("ticket-mode") {
		cfg.TicketMode = sim.TicketMode(ticketMode)
	}
	if flags.Changed("pool") {
		cfg.Pool = pool
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	return cfg
}

// newSimulation builds a simulator for cfg and admits spec's processes. The
// workload and the lottery draw from separate RNG subsystems of spec.Seed.
func newSimulation(spec *workload.Spec, cfg sim.Config, runID string) (*sim.Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	procs, err := spec.Resolve(cfg, rng.ForSubsystem(sim.SubsystemWorkload))
	if err != nil {
		return nil, err
	}
	s, err := sim.NewSimulator(cfg, rng.ForSubsystem(sim.SubsystemLottery),
		trace.TraceConfig{Level: trace.TraceLevelDraws, RunID: runID})
	if err != nil {
		return nil, err
	}
	if err := workload.Apply(s, procs); err != nil {
		return nil, err
	}
	return s, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&workloadPath, "workload", "", "Workload file (YAML spec, or CSV rows of id,burst,priority[,server,tickets])")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Master seed for draws and random processes")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Scheduler configs
	runCmd.Flags().IntVar(&quantum, "quantum", 2, "Max consecutive cycles before a new lottery")
	runCmd.Flags().StringVar(&ticketMode, "ticket-mode", string(sim.TicketsAutomatic), "Ticket mode (automatic, manual)")
	runCmd.Flags().IntVar(&pool, "pool", 0, "Fixed global ticket pool; 0 draws over the summed tickets")
	runCmd.Flags().IntVar(&randomCount, "random", 0, "Number of randomly generated processes to add")

	// Run control
	runCmd.Flags().IntVar(&maxCycles, "max-cycles", 10000, "Stop after this many cycles (0 = no limit)")
	runCmd.Flags().Float64Var(&speed, "speed", 0, "Cycles per second (0 = as fast as possible)")
	runCmd.Flags().IntVar(&ioBlockEvery, "io-block-every", 0, "Force an I/O block after every N-th cycle (0 = never)")

	// Output
	runCmd.Flags().BoolVar(&explain, "explain", false, "Explain every draw and the finishing order")
	runCmd.Flags().StringVar(&historyOut, "history-out", "", "Write the per-cycle history as JSON lines to this path")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}
