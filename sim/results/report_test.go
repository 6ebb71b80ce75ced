package results

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugawarayuuta/sonnet"

	"github.com/xsbench/xsbench-go/sim"
)

func TestFancyInt(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{17000000, "17,000,000"},
		{123456, "123,456"},
		{-1234567, "-1,234,567"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FancyInt(tc.in), "FancyInt(%d)", tc.in)
	}
}

func testReport() Report {
	in := sim.DefaultInputs()
	in.NThreads = 4
	in.Lookups = 1000
	in.GridType = sim.GridHash
	res := sim.Result{Verification: 2981, Evaluations: 1000}
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return NewReport(in, sim.PrecisionDouble, res, started, 2*time.Second, 3<<20)
}

func TestNewReport_DerivesRate(t *testing.T) {
	r := testReport()

	assert.Equal(t, "hash", r.GridType)
	assert.Equal(t, sim.DefaultHashBins, r.HashBins)
	assert.Equal(t, 0, r.Particles, "event-based runs omit particles")
	assert.Equal(t, uint64(3), r.MemoryMB)
	assert.InDelta(t, 500.0, r.LookupsPerSec, 1e-9)
}

func TestReport_Print_ShowsVerification(t *testing.T) {
	var buf bytes.Buffer
	testReport().Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "RESULTS")
	assert.Contains(t, out, "Verification checksum: 2981")
	assert.Contains(t, out, "Lookups:     1,000")
}

func TestPrintInputs_HashGrid(t *testing.T) {
	in := sim.DefaultInputs()
	in.GridType = sim.GridHash
	var buf bytes.Buffer
	PrintInputs(&buf, in, sim.PrecisionSingle, 0)

	out := buf.String()
	assert.Contains(t, out, "INPUT SUMMARY")
	assert.Contains(t, out, "Hash bins:                    10,000")
	assert.NotContains(t, out, "Unionized gridpoints")
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), width)
	}
}

func TestPrintInputs_UnionizedGridLabelledAsBound(t *testing.T) {
	// GIVEN a unionized run, whose deduplicated length is unknown before generation
	in := sim.DefaultInputs()
	var buf bytes.Buffer

	// WHEN the input summary is printed
	PrintInputs(&buf, in, sim.PrecisionDouble, 0)

	// THEN the union size is shown as the pre-deduplication upper bound
	assert.Contains(t, buf.String(), "Unionized gridpoints (max):   4,012,565")
}

func TestReport_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testReport().WriteJSON(&buf))

	var got map[string]any
	require.NoError(t, sonnet.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, float64(2981), got["verification"])
	assert.Equal(t, "event", got["method"])
	assert.NotContains(t, got, "particles")
}
