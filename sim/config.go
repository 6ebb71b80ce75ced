package sim

import (
	"fmt"
	"runtime"
	"strings"
)

// GridType selects the energy-grid representation used by lookups.
type GridType int

const (
	GridUnionized GridType = 0
	GridNuclide   GridType = 1
	GridHash      GridType = 2
)

// SimulationMethod selects how lookups are organized into work units.
type SimulationMethod int

const (
	HistoryBased SimulationMethod = 1
	EventBased   SimulationMethod = 2
)

// BinaryMode selects whether SimulationData is built, loaded or saved.
type BinaryMode int

const (
	BinaryNone  BinaryMode = 0
	BinaryRead  BinaryMode = 1
	BinaryWrite BinaryMode = 2
)

// KernelID selects the event-based kernel variant.
type KernelID int

const (
	KernelBaseline KernelID = 0 // one unit per lookup, RNG order
	KernelBatched  KernelID = 1 // pre-sampled, sorted by material and energy
)

// Problem size presets.
const (
	SizeSmall = "small"
	SizeLarge = "large"
	SizeXL    = "XL"
	SizeXXL   = "XXL"
)

// Default problem dimensions.
const (
	DefaultIsotopesLarge  = 355
	DefaultIsotopesSmall  = 68
	DefaultGridpoints     = 11303
	DefaultGridpointsXL   = 238847
	DefaultHashBins       = 10000
	DefaultEventLookups   = 17_000_000
	DefaultParticles      = 500_000
	DefaultLookupsPerHist = 34
	DefaultBinaryFile     = "XS_data.dat"
)

var (
	gridTypeNames = map[GridType]string{
		GridUnionized: "unionized", GridNuclide: "nuclide", GridHash: "hash",
	}
	methodNames = map[SimulationMethod]string{
		HistoryBased: "history", EventBased: "event",
	}
	binaryModeNames = map[BinaryMode]string{
		BinaryNone: "none", BinaryRead: "read", BinaryWrite: "write",
	}
	validSizes = map[string]string{
		"small": SizeSmall, "large": SizeLarge, "xl": SizeXL, "xxl": SizeXXL,
	}
)

func (g GridType) String() string {
	if name, ok := gridTypeNames[g]; ok {
		return name
	}
	return fmt.Sprintf("GridType(%d)", int(g))
}

func (m SimulationMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("SimulationMethod(%d)", int(m))
}

func (b BinaryMode) String() string {
	if name, ok := binaryModeNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BinaryMode(%d)", int(b))
}

// ParseGridType accepts "unionized", "nuclide" or "hash" in any case.
func ParseGridType(s string) (GridType, error) {
	for g, name := range gridTypeNames {
		if strings.EqualFold(s, name) {
			return g, nil
		}
	}
	return 0, configErrorf("grid_type", "unknown grid type %q; valid: unionized, nuclide, hash", s)
}

// ParseSimulationMethod accepts "history"/"history_based" or "event"/"event_based".
func ParseSimulationMethod(s string) (SimulationMethod, error) {
	s = strings.TrimSuffix(strings.ToLower(s), "_based")
	for m, name := range methodNames {
		if s == name {
			return m, nil
		}
	}
	return 0, configErrorf("simulation_method", "unknown simulation method %q; valid: history, event", s)
}

// ParseBinaryMode accepts "none", "read" or "write" in any case.
func ParseBinaryMode(s string) (BinaryMode, error) {
	for b, name := range binaryModeNames {
		if strings.EqualFold(s, name) {
			return b, nil
		}
	}
	return 0, configErrorf("binary_mode", "unknown binary mode %q; valid: none, read, write", s)
}

// NormalizeSize maps a case-insensitive size name to its preset name.
func NormalizeSize(s string) (string, error) {
	if name, ok := validSizes[strings.ToLower(s)]; ok {
		return name, nil
	}
	return "", configErrorf("size", "unknown problem size %q; valid: small, large, XL, XXL", s)
}

// Inputs is the complete configuration of one benchmark run. It is passed
// explicitly to every phase; there is no global configuration state.
type Inputs struct {
	NThreads         int
	NIsotopes        int
	NGridpoints      int
	Lookups          int // total lookups for both methods
	Size             string
	GridType         GridType
	HashBins         int
	Particles        int
	SimulationMethod SimulationMethod
	BinaryMode       BinaryMode
	BinaryFile       string
	KernelID         KernelID
	Seed             uint64 // starting seed of the lookup streams
	Replicas         int    // 0 or 1 = single shared copy
	PinThreads       bool
}

// DefaultInputs returns the large event-based problem on all logical CPUs.
func DefaultInputs() Inputs {
	return Inputs{
		NThreads:         runtime.NumCPU(),
		NIsotopes:        DefaultIsotopesLarge,
		NGridpoints:      DefaultGridpoints,
		Lookups:          DefaultEventLookups,
		Size:             SizeLarge,
		GridType:         GridUnionized,
		HashBins:         DefaultHashBins,
		Particles:        DefaultParticles,
		SimulationMethod: EventBased,
		BinaryMode:       BinaryNone,
		BinaryFile:       DefaultBinaryFile,
		KernelID:         KernelBaseline,
		Seed:             StartingSeed,
	}
}

// Explicit records which dimensions the user set, so Resolve leaves them
// alone.
type Explicit struct {
	Isotopes   bool
	Gridpoints bool
	Lookups    bool
}

// Resolve applies the size preset to every dimension not set explicitly.
// History-based runs without an explicit lookup count default to
// DefaultLookupsPerHist lookups per particle.
func (in *Inputs) Resolve(set Explicit) {
	switch in.Size {
	case SizeSmall:
		if !set.Isotopes {
			in.NIsotopes = DefaultIsotopesSmall
		}
	case SizeXL:
		if !set.Gridpoints {
			in.NGridpoints = DefaultGridpointsXL
		}
	case SizeXXL:
		if !set.Gridpoints {
			in.NGridpoints = DefaultGridpointsXL * 21 / 10
		}
	}
	if in.SimulationMethod == HistoryBased && !set.Lookups {
		in.Lookups = in.Particles * DefaultLookupsPerHist
	}
}

// Validate checks every field and every cross-field combination. A nil
// result guarantees NewSimulationData and Run will not reject in.
func (in *Inputs) Validate() error {
	if in.NThreads < 1 {
		return configErrorf("nthreads", "must be at least 1, got %d", in.NThreads)
	}
	if in.NIsotopes < 1 {
		return configErrorf("n_isotopes", "must be at least 1, got %d", in.NIsotopes)
	}
	if in.NGridpoints < 2 {
		return configErrorf("n_gridpoints", "must be at least 2, got %d", in.NGridpoints)
	}
	if in.Lookups < 1 {
		return configErrorf("lookups", "must be at least 1, got %d", in.Lookups)
	}
	if _, ok := gridTypeNames[in.GridType]; !ok {
		return configErrorf("grid_type", "unsupported value %d", int(in.GridType))
	}
	if in.GridType == GridHash && in.HashBins < 1 {
		return configErrorf("hash_bins", "hash grid needs at least 1 bin, got %d", in.HashBins)
	}
	if _, ok := methodNames[in.SimulationMethod]; !ok {
		return configErrorf("simulation_method", "unsupported value %d", int(in.SimulationMethod))
	}
	if in.SimulationMethod == HistoryBased && in.Particles < 1 {
		return configErrorf("particles", "history-based runs need at least 1 particle, got %d", in.Particles)
	}
	switch in.KernelID {
	case KernelBaseline:
	case KernelBatched:
		if in.SimulationMethod != EventBased {
			return configErrorf("kernel_id", "kernel %d is only available for event-based runs", in.KernelID)
		}
	default:
		return configErrorf("kernel_id", "no kernel %d; valid: 0, 1", in.KernelID)
	}
	if _, ok := binaryModeNames[in.BinaryMode]; !ok {
		return configErrorf("binary_mode", "unsupported value %d", int(in.BinaryMode))
	}
	if in.BinaryMode != BinaryNone && in.BinaryFile == "" {
		return configErrorf("binary_file", "binary mode %s needs a file path", in.BinaryMode)
	}
	if in.Replicas < 0 {
		return configErrorf("replicas", "must be non-negative, got %d", in.Replicas)
	}
	return nil
}
