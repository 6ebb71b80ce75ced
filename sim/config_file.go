package sim

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/gcfg.v1"
	"gopkg.in/yaml.v3"
)

// RunFile is the on-disk form of a run configuration. Zero values mean
// "keep the default"; command-line flags override file values.
//
// YAML files use the yaml keys below. INI files (.ini, .gcfg) put the same
// settings in a [run] section with dashed names, e.g. grid-type = hash.
type RunFile struct {
	Threads    int    `yaml:"threads" gcfg:"threads"`
	Size       string `yaml:"size" gcfg:"size"`
	Isotopes   int    `yaml:"isotopes" gcfg:"isotopes"`
	Gridpoints int    `yaml:"gridpoints" gcfg:"gridpoints"`
	Lookups    int    `yaml:"lookups" gcfg:"lookups"`
	GridType   string `yaml:"grid_type" gcfg:"grid-type"`
	HashBins   int    `yaml:"hash_bins" gcfg:"hash-bins"`
	Particles  int    `yaml:"particles" gcfg:"particles"`
	Method     string `yaml:"method" gcfg:"method"`
	BinaryMode string `yaml:"binary_mode" gcfg:"binary-mode"`
	BinaryFile string `yaml:"binary_file" gcfg:"binary-file"`
	Kernel     int    `yaml:"kernel" gcfg:"kernel"`
	Precision  string `yaml:"precision" gcfg:"precision"`
	Seed       uint64 `yaml:"seed" gcfg:"seed"`
	Replicas   int    `yaml:"replicas" gcfg:"replicas"`
	PinThreads bool   `yaml:"pin_threads" gcfg:"pin-threads"`
}

type iniRunFile struct {
	Run RunFile
}

// LoadRunFile reads a YAML or INI run configuration, chosen by extension.
// YAML parsing is strict: unrecognized keys (typos) are rejected.
func LoadRunFile(path string) (*RunFile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		var ini iniRunFile
		if err := gcfg.ReadFileInto(&ini, path); err != nil {
			return nil, fmt.Errorf("parsing run config: %w", err)
		}
		return &ini.Run, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var rf RunFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&rf); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &rf, nil
}

// ApplyTo copies every non-zero setting into in.
func (rf *RunFile) ApplyTo(in *Inputs) error {
	if rf.Threads != 0 {
		in.NThreads = rf.Threads
	}
	if rf.Size != "" {
		size, err := NormalizeSize(rf.Size)
		if err != nil {
			return err
		}
		in.Size = size
	}
	if rf.Isotopes != 0 {
		in.NIsotopes = rf.Isotopes
	}
	if rf.Gridpoints != 0 {
		in.NGridpoints = rf.Gridpoints
	}
	if rf.Lookups != 0 {
		in.Lookups = rf.Lookups
	}
	if rf.GridType != "" {
		g, err := ParseGridType(rf.GridType)
		if err != nil {
			return err
		}
		in.GridType = g
	}
	if rf.HashBins != 0 {
		in.HashBins = rf.HashBins
	}
	if rf.Particles != 0 {
		in.Particles = rf.Particles
	}
	if rf.Method != "" {
		m, err := ParseSimulationMethod(rf.Method)
		if err != nil {
			return err
		}
		in.SimulationMethod = m
	}
	if rf.BinaryMode != "" {
		b, err := ParseBinaryMode(rf.BinaryMode)
		if err != nil {
			return err
		}
		in.BinaryMode = b
	}
	if rf.BinaryFile != "" {
		in.BinaryFile = rf.BinaryFile
	}
	if rf.Kernel != 0 {
		in.KernelID = KernelID(rf.Kernel)
	}
	if rf.Seed != 0 {
		in.Seed = rf.Seed
	}
	if rf.Replicas != 0 {
		in.Replicas = rf.Replicas
	}
	if rf.PinThreads {
		in.PinThreads = true
	}
	if rf.Precision != "" {
		if _, err := ParsePrecision(rf.Precision); err != nil {
			return err
		}
	}
	return nil
}

// Explicit reports which dimensions the file sets.
func (rf *RunFile) Explicit() Explicit {
	return Explicit{
		Isotopes:   rf.Isotopes != 0,
		Gridpoints: rf.Gridpoints != 0,
		Lookups:    rf.Lookups != 0,
	}
}
