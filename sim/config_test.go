package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallInputs() Inputs {
	in := DefaultInputs()
	in.NThreads = 4
	in.NIsotopes = 10
	in.NGridpoints = 100
	in.Lookups = 1000
	in.Particles = 37
	return in
}

func TestDefaultInputs_AreValid(t *testing.T) {
	in := DefaultInputs()
	require.NoError(t, in.Validate())
	assert.Equal(t, DefaultIsotopesLarge, in.NIsotopes)
	assert.Equal(t, DefaultGridpoints, in.NGridpoints)
	assert.Equal(t, StartingSeed, in.Seed)
	assert.Equal(t, EventBased, in.SimulationMethod)
}

func TestInputs_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Inputs)
		field  string
	}{
		{"zero threads", func(in *Inputs) { in.NThreads = 0 }, "nthreads"},
		{"zero isotopes", func(in *Inputs) { in.NIsotopes = 0 }, "n_isotopes"},
		{"one gridpoint", func(in *Inputs) { in.NGridpoints = 1 }, "n_gridpoints"},
		{"zero lookups", func(in *Inputs) { in.Lookups = 0 }, "lookups"},
		{"unknown grid type", func(in *Inputs) { in.GridType = 7 }, "grid_type"},
		{"hash without bins", func(in *Inputs) { in.GridType = GridHash; in.HashBins = 0 }, "hash_bins"},
		{"unknown method", func(in *Inputs) { in.SimulationMethod = 0 }, "simulation_method"},
		{"history without particles", func(in *Inputs) { in.SimulationMethod = HistoryBased; in.Particles = 0 }, "particles"},
		{"batched history", func(in *Inputs) { in.SimulationMethod = HistoryBased; in.KernelID = KernelBatched }, "kernel_id"},
		{"unknown kernel", func(in *Inputs) { in.KernelID = 5 }, "kernel_id"},
		{"unknown binary mode", func(in *Inputs) { in.BinaryMode = 3 }, "binary_mode"},
		{"binary without file", func(in *Inputs) { in.BinaryMode = BinaryWrite; in.BinaryFile = "" }, "binary_file"},
		{"negative replicas", func(in *Inputs) { in.Replicas = -1 }, "replicas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := smallInputs()
			tt.mutate(&in)

			err := in.Validate()

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestInputs_Validate_AcceptsBatchedEvent(t *testing.T) {
	in := smallInputs()
	in.KernelID = KernelBatched
	assert.NoError(t, in.Validate())
}

func TestInputs_Resolve(t *testing.T) {
	tests := []struct {
		name           string
		size           string
		method         SimulationMethod
		set            Explicit
		wantIsotopes   int
		wantGridpoints int
		wantLookups    int
	}{
		{"large keeps defaults", SizeLarge, EventBased, Explicit{}, DefaultIsotopesLarge, DefaultGridpoints, DefaultEventLookups},
		{"small preset", SizeSmall, EventBased, Explicit{}, DefaultIsotopesSmall, DefaultGridpoints, DefaultEventLookups},
		{"small with explicit isotopes", SizeSmall, EventBased, Explicit{Isotopes: true}, DefaultIsotopesLarge, DefaultGridpoints, DefaultEventLookups},
		{"XL preset", SizeXL, EventBased, Explicit{}, DefaultIsotopesLarge, DefaultGridpointsXL, DefaultEventLookups},
		{"XXL preset", SizeXXL, EventBased, Explicit{}, DefaultIsotopesLarge, 501578, DefaultEventLookups},
		{"XL with explicit gridpoints", SizeXL, EventBased, Explicit{Gridpoints: true}, DefaultIsotopesLarge, DefaultGridpoints, DefaultEventLookups},
		{"history default lookups", SizeLarge, HistoryBased, Explicit{}, DefaultIsotopesLarge, DefaultGridpoints, DefaultParticles * DefaultLookupsPerHist},
		{"history explicit lookups", SizeLarge, HistoryBased, Explicit{Lookups: true}, DefaultIsotopesLarge, DefaultGridpoints, DefaultEventLookups},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DefaultInputs()
			in.Size = tt.size
			in.SimulationMethod = tt.method

			in.Resolve(tt.set)

			assert.Equal(t, tt.wantIsotopes, in.NIsotopes)
			assert.Equal(t, tt.wantGridpoints, in.NGridpoints)
			assert.Equal(t, tt.wantLookups, in.Lookups)
		})
	}
}

func TestParseEnums(t *testing.T) {
	g, err := ParseGridType("HASH")
	require.NoError(t, err)
	assert.Equal(t, GridHash, g)

	m, err := ParseSimulationMethod("history_based")
	require.NoError(t, err)
	assert.Equal(t, HistoryBased, m)

	b, err := ParseBinaryMode("Write")
	require.NoError(t, err)
	assert.Equal(t, BinaryWrite, b)

	size, err := NormalizeSize("xxl")
	require.NoError(t, err)
	assert.Equal(t, SizeXXL, size)

	for _, bad := range []func() error{
		func() error { _, err := ParseGridType("octree"); return err },
		func() error { _, err := ParseSimulationMethod("batch"); return err },
		func() error { _, err := ParseBinaryMode("append"); return err },
		func() error { _, err := NormalizeSize("huge"); return err },
	} {
		var cfgErr *ConfigurationError
		assert.True(t, errors.As(bad(), &cfgErr))
	}
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "unionized", GridUnionized.String())
	assert.Equal(t, "event", EventBased.String())
	assert.Equal(t, "read", BinaryRead.String())
	assert.Equal(t, "GridType(9)", GridType(9).String())
}
