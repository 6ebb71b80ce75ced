package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xsbench/xsbench-go/sim"
	"github.com/xsbench/xsbench-go/sim/results"
)

var (
	// CLI flags for problem dimensions
	threads    int    // Worker goroutines
	size       string // Problem size preset
	isotopes   int    // Number of nuclides
	gridpoints int    // Gridpoints per nuclide
	lookups    int    // Total cross-section lookups
	gridType   string // Energy grid representation
	hashBins   int    // Buckets of the hash grid
	particles  int    // Particle histories (history method)
	method     string // Simulation method
	kernel     int    // Event-based kernel variant
	precision  string // Floating-point precision
	seed       uint64 // Starting seed of the lookup streams

	// CLI flags for data placement and I/O
	binaryMode string // Build, load or save simulation data
	binaryFile string // Path of the simulation data file
	replicas   int    // Copies of simulation data
	pinThreads bool   // Bind workers to CPUs
	configPath string // YAML or INI run configuration
	jsonPath   string // Write the report as JSON
	resultsDB  string // Append the report to an SQLite run history
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "xsbench",
	Short: "Monte Carlo neutron transport cross-section lookup benchmark",
}

// runCmd runs the benchmark using parameters from CLI flags and an
// optional config file
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cross-section lookup benchmark",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		in, p, err := resolveInputs(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		out := outputs{json: jsonPath, db: resultsDB}
		if p == sim.PrecisionSingle {
			_, err = runBenchmark[float32](in, p, out, os.Stdout)
		} else {
			_, err = runBenchmark[float64](in, p, out, os.Stdout)
		}
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Benchmark complete.")
	},
}

// resolveInputs layers defaults, the config file and explicitly set flags,
// in that order, then applies size presets and validates the result.
func resolveInputs(cmd *cobra.Command) (sim.Inputs, sim.Precision, error) {
	in := sim.DefaultInputs()
	p := sim.PrecisionDouble
	var explicit sim.Explicit

	if configPath != "" {
		rf, err := sim.LoadRunFile(configPath)
		if err != nil {
			return in, p, err
		}
		if err := rf.ApplyTo(&in); err != nil {
			return in, p, err
		}
		if rf.Precision != "" {
			p = sim.Precision(rf.Precision)
		}
		explicit = rf.Explicit()
		logrus.Infof("Loaded run config from %s", configPath)
	}

	flags := cmd.Flags()
	var err error
	if flags.Changed("threads") {
		in.NThreads = threads
	}
	if flags.Changed("size") {
		if in.Size, err = sim.NormalizeSize(size); err != nil {
			return in, p, err
		}
	}
	if flags.Changed("isotopes") {
		in.NIsotopes = isotopes
		explicit.Isotopes = true
	}
	if flags.Changed("gridpoints") {
		in.NGridpoints = gridpoints
		explicit.Gridpoints = true
	}
	if flags.Changed("lookups") {
		in.Lookups = lookups
		explicit.Lookups = true
	}
	if flags.Changed("grid-type") {
		if in.GridType, err = sim.ParseGridType(gridType); err != nil {
			return in, p, err
		}
	}
	if flags.Changed("hash-bins") {
		in.HashBins = hashBins
	}
	if flags.Changed("particles") {
		in.Particles = particles
	}
	if flags.Changed("method") {
		if in.SimulationMethod, err = sim.ParseSimulationMethod(method); err != nil {
			return in, p, err
		}
	}
	if flags.Changed("kernel") {
		in.KernelID = sim.KernelID(kernel)
	}
	if flags.Changed("precision") {
		if p, err = sim.ParsePrecision(precision); err != nil {
			return in, p, err
		}
	}
	if flags.Changed("seed") {
		in.Seed = seed
	}
	if flags.Changed("binary") {
		if in.BinaryMode, err = sim.ParseBinaryMode(binaryMode); err != nil {
			return in, p, err
		}
	}
	if flags.Changed("binary-file") {
		in.BinaryFile = binaryFile
	}
	if flags.Changed("replicas") {
		in.Replicas = replicas
	}
	if flags.Changed("pin-threads") {
		in.PinThreads = pinThreads
	}

	in.Resolve(explicit)
	return in, p, in.Validate()
}

// outputs lists the optional report sinks besides the console.
type outputs struct {
	json string
	db   string
}

// runBenchmark builds or loads the simulation data, runs every lookup and
// reports the result.
func runBenchmark[T sim.Float](in sim.Inputs, p sim.Precision, out outputs, w io.Writer) (results.Report, error) {
	memBytes, err := sim.EstimateMemUsage(in, p.Bytes())
	if err != nil {
		return results.Report{}, err
	}
	checkHost(memBytes, in.NThreads)
	results.PrintInputs(w, in, p, memBytes)

	initStart := time.Now()
	var sd *sim.SimulationData[T]
	if in.BinaryMode == sim.BinaryRead {
		logrus.Infof("Reading simulation data from %s", in.BinaryFile)
		sd, err = sim.LoadFile[T](in.BinaryFile, in)
	} else {
		logrus.Infof("Generating simulation data (%d nuclides x %d gridpoints, %s grid)",
			in.NIsotopes, in.NGridpoints, in.GridType)
		sd, err = sim.NewSimulationData[T](in)
	}
	if err != nil {
		return results.Report{}, err
	}
	logrus.Infof("Initialization complete in %.3f seconds", time.Since(initStart).Seconds())

	if in.BinaryMode == sim.BinaryWrite {
		if err := sim.SaveFile(in.BinaryFile, sd); err != nil {
			return results.Report{}, err
		}
		logrus.Infof("Simulation data written to %s", in.BinaryFile)
	}

	logrus.Infof("Running %s-based simulation with %d threads", in.SimulationMethod, in.NThreads)
	started := time.Now()
	res, err := sim.Run(in, sd)
	if err != nil {
		return results.Report{}, err
	}
	elapsed := time.Since(started)
	logrus.Infof("Simulation complete: %s", res)

	report := results.NewReport(in, p, res, started, elapsed, memBytes)
	report.Print(w)
	if err := saveReport(report, out); err != nil {
		return report, err
	}
	return report, nil
}

func saveReport(report results.Report, out outputs) error {
	if out.json != "" {
		f, err := os.Create(out.json)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		if err := report.WriteJSON(f); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing report file: %w", err)
		}
		logrus.Infof("Report written to %s", out.json)
	}
	if out.db != "" {
		store, err := results.OpenStore(out.db)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.Record(report)
		if err != nil {
			return err
		}
		logrus.Infof("Run %d recorded in %s", id, out.db)
	}
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags binds the run flags of c to the package flag variables.
func registerRunFlags(c *cobra.Command) {
	def := sim.DefaultInputs()
	f := c.Flags()

	f.IntVarP(&threads, "threads", "t", def.NThreads, "Number of worker goroutines")
	f.StringVarP(&size, "size", "s", def.Size, "Problem size (small, large, XL, XXL)")
	f.IntVarP(&isotopes, "isotopes", "n", def.NIsotopes, "Number of nuclides")
	f.IntVarP(&gridpoints, "gridpoints", "g", def.NGridpoints, "Gridpoints per nuclide")
	f.IntVarP(&lookups, "lookups", "l", def.Lookups, "Total cross-section lookups (history default: 34 per particle)")
	f.StringVarP(&gridType, "grid-type", "G", def.GridType.String(), "Energy grid (unionized, nuclide, hash)")
	f.IntVarP(&hashBins, "hash-bins", "H", def.HashBins, "Number of hash grid bins")
	f.IntVarP(&particles, "particles", "p", def.Particles, "Particle histories for the history method")
	f.StringVarP(&method, "method", "m", def.SimulationMethod.String(), "Simulation method (history, event)")
	f.IntVarP(&kernel, "kernel", "k", int(def.KernelID), "Event kernel (0 baseline, 1 sorted batches)")
	f.StringVar(&precision, "precision", string(sim.PrecisionDouble), "Floating-point precision (double, single)")
	f.Uint64Var(&seed, "seed", def.Seed, "Starting seed of the lookup streams")

	f.StringVarP(&binaryMode, "binary", "b", def.BinaryMode.String(), "Simulation data file mode (none, read, write)")
	f.StringVar(&binaryFile, "binary-file", def.BinaryFile, "Simulation data file")
	f.IntVar(&replicas, "replicas", def.Replicas, "Copies of simulation data shared round-robin by workers")
	f.BoolVar(&pinThreads, "pin-threads", false, "Bind each worker to one CPU")
	f.StringVar(&configPath, "config", "", "Run configuration file (.yaml, .ini)")
	f.StringVar(&jsonPath, "json", "", "Write the report as JSON to this file")
	f.StringVar(&resultsDB, "results-db", "", "Append the report to this SQLite run history")
	f.StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
