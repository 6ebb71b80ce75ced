// Package results formats and persists the outcome of a benchmark run.
package results

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"github.com/xsbench/xsbench-go/sim"
)

// Version is reported in the banner and stored with every run.
const Version = "20"

const width = 79

// Report is the per-run summary: the inputs that shaped the run, its
// verification checksum, and its timing.
type Report struct {
	Version       string    `json:"version"`
	StartedAt     time.Time `json:"started_at"`
	Threads       int       `json:"threads"`
	Size          string    `json:"size"`
	Isotopes      int       `json:"isotopes"`
	Gridpoints    int       `json:"gridpoints"`
	GridType      string    `json:"grid_type"`
	HashBins      int       `json:"hash_bins,omitempty"`
	Method        string    `json:"method"`
	Particles     int       `json:"particles,omitempty"`
	Lookups       int       `json:"lookups"`
	Kernel        int       `json:"kernel"`
	Precision     string    `json:"precision"`
	Seed          uint64    `json:"seed"`
	MemoryMB      uint64    `json:"memory_mb"`
	Verification  uint64    `json:"verification"`
	Evaluations   uint64    `json:"evaluations"`
	RuntimeSec    float64   `json:"runtime_seconds"`
	LookupsPerSec float64   `json:"lookups_per_second"`
}

// NewReport builds a Report for a finished run.
func NewReport(in sim.Inputs, p sim.Precision, res sim.Result, started time.Time, elapsed time.Duration, memBytes uint64) Report {
	r := Report{
		Version:      Version,
		StartedAt:    started.UTC(),
		Threads:      in.NThreads,
		Size:         in.Size,
		Isotopes:     in.NIsotopes,
		Gridpoints:   in.NGridpoints,
		GridType:     in.GridType.String(),
		Method:       in.SimulationMethod.String(),
		Lookups:      in.Lookups,
		Kernel:       int(in.KernelID),
		Precision:    string(p),
		Seed:         in.Seed,
		MemoryMB:     sim.MegaBytes(memBytes),
		Verification: res.Verification,
		Evaluations:  res.Evaluations,
		RuntimeSec:   elapsed.Seconds(),
	}
	if in.GridType == sim.GridHash {
		r.HashBins = in.HashBins
	}
	if in.SimulationMethod == sim.HistoryBased {
		r.Particles = in.Particles
	}
	if r.RuntimeSec > 0 {
		r.LookupsPerSec = float64(res.Evaluations) / r.RuntimeSec
	}
	return r
}

// PrintInputs writes the banner and input summary shown before a run.
func PrintInputs(w io.Writer, in sim.Inputs, p sim.Precision, memBytes uint64) {
	border(w)
	center(w, "XSBench")
	center(w, "Monte Carlo neutron transport cross-section lookup benchmark")
	center(w, "Version: "+Version)
	border(w)
	center(w, "INPUT SUMMARY")
	border(w)
	fmt.Fprintf(w, "Simulation method:            %s\n", methodLabel(in.SimulationMethod))
	fmt.Fprintf(w, "Grid type:                    %s\n", in.GridType)
	fmt.Fprintf(w, "Materials:                    %d\n", sim.NumMaterials)
	fmt.Fprintf(w, "H-M benchmark size:           %s\n", in.Size)
	fmt.Fprintf(w, "Precision:                    %s\n", p)
	fmt.Fprintf(w, "Threads:                      %d\n", in.NThreads)
	fmt.Fprintf(w, "Total nuclides:               %d\n", in.NIsotopes)
	fmt.Fprintf(w, "Gridpoints (per nuclide):     %s\n", FancyInt(int64(in.NGridpoints)))
	if in.GridType == sim.GridHash {
		fmt.Fprintf(w, "Hash bins:                    %s\n", FancyInt(int64(in.HashBins)))
	}
	if in.GridType == sim.GridUnionized {
		fmt.Fprintf(w, "Unionized gridpoints (max):   %s\n", FancyInt(int64(in.NIsotopes)*int64(in.NGridpoints)))
	}
	if in.SimulationMethod == sim.HistoryBased {
		fmt.Fprintf(w, "Particle histories:           %s\n", FancyInt(int64(in.Particles)))
	}
	fmt.Fprintf(w, "XS lookups:                   %s\n", FancyInt(int64(in.Lookups)))
	fmt.Fprintf(w, "Kernel:                       %d\n", in.KernelID)
	fmt.Fprintf(w, "Est. memory usage (MB):       %s\n", FancyInt(int64(sim.MegaBytes(memBytes))))
	border(w)
}

// Print writes the results section.
func (r Report) Print(w io.Writer) {
	border(w)
	center(w, "RESULTS")
	border(w)
	fmt.Fprintf(w, "Threads:     %d\n", r.Threads)
	fmt.Fprintf(w, "Runtime:     %.3f seconds\n", r.RuntimeSec)
	fmt.Fprintf(w, "Lookups:     %s\n", FancyInt(int64(r.Evaluations)))
	fmt.Fprintf(w, "Lookups/s:   %s\n", FancyInt(int64(r.LookupsPerSec)))
	fmt.Fprintf(w, "Verification checksum: %d\n", r.Verification)
	border(w)
}

// WriteJSON writes r as a single JSON document.
func (r Report) WriteJSON(w io.Writer) error {
	data, err := sonnet.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// FancyInt formats n with comma thousands separators.
func FancyInt(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	b.WriteString(sign)
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func methodLabel(m sim.SimulationMethod) string {
	if m == sim.HistoryBased {
		return "History"
	}
	return "Event"
}

func border(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", width))
}

func center(w io.Writer, s string) {
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	fmt.Fprintln(w, strings.Repeat(" ", pad)+s)
}
