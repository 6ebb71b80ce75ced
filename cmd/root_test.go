package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xsbench/xsbench-go/sim"
	"github.com/xsbench/xsbench-go/sim/results"
)

// newTestCmd returns a command with freshly registered run flags parsed
// from args.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "run"}
	registerRunFlags(c)
	require.NoError(t, c.ParseFlags(args))
	return c
}

func TestResolveInputs_Defaults(t *testing.T) {
	in, p, err := resolveInputs(newTestCmd(t))
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultInputs(), in)
	assert.Equal(t, sim.PrecisionDouble, p)
}

func TestResolveInputs_Flags(t *testing.T) {
	in, p, err := resolveInputs(newTestCmd(t,
		"-t", "3", "-s", "small", "-g", "500", "-G", "hash", "-H", "64",
		"-m", "history", "-p", "20", "--precision", "single", "--seed", "9",
		"-b", "write", "--binary-file", "x.dat", "--replicas", "2", "--pin-threads"))
	require.NoError(t, err)

	assert.Equal(t, 3, in.NThreads)
	assert.Equal(t, sim.DefaultIsotopesSmall, in.NIsotopes)
	assert.Equal(t, 500, in.NGridpoints)
	assert.Equal(t, sim.GridHash, in.GridType)
	assert.Equal(t, 64, in.HashBins)
	assert.Equal(t, sim.HistoryBased, in.SimulationMethod)
	assert.Equal(t, 20*sim.DefaultLookupsPerHist, in.Lookups)
	assert.Equal(t, uint64(9), in.Seed)
	assert.Equal(t, sim.BinaryWrite, in.BinaryMode)
	assert.Equal(t, "x.dat", in.BinaryFile)
	assert.Equal(t, 2, in.Replicas)
	assert.True(t, in.PinThreads)
	assert.Equal(t, sim.PrecisionSingle, p)
}

func TestResolveInputs_FlagsOverrideConfigFile(t *testing.T) {
	// GIVEN a config file setting threads, grid type and lookups
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("threads: 2\ngrid_type: nuclide\nlookups: 777\nprecision: single\n"), 0644))

	// WHEN the command line also sets threads
	in, p, err := resolveInputs(newTestCmd(t, "--config", path, "-t", "5"))
	require.NoError(t, err)

	// THEN the flag wins and the remaining file values apply
	assert.Equal(t, 5, in.NThreads)
	assert.Equal(t, sim.GridNuclide, in.GridType)
	assert.Equal(t, 777, in.Lookups)
	assert.Equal(t, sim.PrecisionSingle, p)
}

func TestResolveInputs_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"bad grid type", []string{"-G", "octree"}, "grid_type"},
		{"bad method", []string{"-m", "batch"}, "simulation_method"},
		{"bad size", []string{"-s", "huge"}, "size"},
		{"bad precision", []string{"--precision", "half"}, "precision"},
		{"bad binary mode", []string{"-b", "append"}, "binary_mode"},
		{"batched history", []string{"-m", "history", "-k", "1"}, "kernel_id"},
		{"zero threads", []string{"-t", "0"}, "nthreads"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := resolveInputs(newTestCmd(t, tt.args...))
			var cfgErr *sim.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestResolveInputs_MissingConfigFile(t *testing.T) {
	_, _, err := resolveInputs(newTestCmd(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func smallRun() sim.Inputs {
	in := sim.DefaultInputs()
	in.NThreads = 2
	in.NIsotopes = 10
	in.NGridpoints = 100
	in.Lookups = 1000
	return in
}

func TestRunBenchmark_WritesReports(t *testing.T) {
	// GIVEN a small problem and both report sinks
	dir := t.TempDir()
	out := outputs{json: filepath.Join(dir, "report.json"), db: filepath.Join(dir, "runs.db")}
	var console bytes.Buffer

	// WHEN the benchmark runs
	report, err := runBenchmark[float64](smallRun(), sim.PrecisionDouble, out, &console)
	require.NoError(t, err)

	// THEN the console, JSON file and run history all carry the checksum
	assert.Equal(t, uint64(2815), report.Verification)
	assert.Contains(t, console.String(), "INPUT SUMMARY")
	assert.Contains(t, console.String(), "Verification checksum: 2815")

	data, err := os.ReadFile(out.json)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"verification":2815`)

	store, err := results.OpenStore(out.db)
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, report.Verification, runs[0].Verification)
}

func TestRunBenchmark_BinaryWriteThenRead(t *testing.T) {
	// GIVEN a run that writes its simulation data
	in := smallRun()
	in.GridType = sim.GridHash
	in.HashBins = 32
	in.BinaryMode = sim.BinaryWrite
	in.BinaryFile = filepath.Join(t.TempDir(), sim.DefaultBinaryFile)
	var console bytes.Buffer
	written, err := runBenchmark[float32](in, sim.PrecisionSingle, outputs{}, &console)
	require.NoError(t, err)

	// WHEN a second run reads it back
	in.BinaryMode = sim.BinaryRead
	read, err := runBenchmark[float32](in, sim.PrecisionSingle, outputs{}, &console)
	require.NoError(t, err)

	// THEN both runs verify identically
	assert.Equal(t, written.Verification, read.Verification)
	assert.Equal(t, uint64(2818), read.Verification)
}

func TestRunBenchmark_ReadMissingFile(t *testing.T) {
	in := smallRun()
	in.BinaryMode = sim.BinaryRead
	in.BinaryFile = filepath.Join(t.TempDir(), "absent.dat")
	var console bytes.Buffer
	_, err := runBenchmark[float64](in, sim.PrecisionDouble, outputs{}, &console)
	assert.Error(t, err)
}
