package sim

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

const (
	defaultChunkSize = 100
	defaultBatchSize = 128
)

// Result is the outcome of one simulation run.
type Result struct {
	Verification uint64 // sum of MaxChannel()+1 over every lookup
	Evaluations  uint64 // macroscopic lookups performed
}

// RunOption tunes how a run divides its work. Options never change Result.
type RunOption func(*runSettings)

type runSettings struct {
	chunk int
	batch int
}

// WithChunkSize sets how many lookups (or histories) a worker claims at once.
func WithChunkSize(n int) RunOption {
	return func(s *runSettings) { s.chunk = n }
}

// WithBatchSize sets the group size of the batched event kernel.
func WithBatchSize(n int) RunOption {
	return func(s *runSettings) { s.batch = n }
}

// Run executes the lookups described by in against sd using the default
// placement for in.Replicas.
func Run[T Float](in Inputs, sd *SimulationData[T], opts ...RunOption) (Result, error) {
	return RunWithPlacement(in, sd, NewPlacement[T](in.Replicas), opts...)
}

// RunWithPlacement executes the lookups described by in, with workers
// reading sd through p. Configuration problems are reported before any
// lookup runs; once started, a run always completes.
func RunWithPlacement[T Float](in Inputs, sd *SimulationData[T], p Placement[T], opts ...RunOption) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	if err := sd.matches(in); err != nil {
		return Result{}, err
	}
	settings := runSettings{chunk: defaultChunkSize, batch: defaultBatchSize}
	for _, opt := range opts {
		opt(&settings)
	}

	pool := workerPool{threads: in.NThreads, pin: in.PinThreads}
	data := p.Replicate(sd)

	var t tally
	switch {
	case in.SimulationMethod == HistoryBased:
		t = runHistoryBased(in, data, pool, settings)
	case in.KernelID == KernelBatched:
		t = runEventBatched(in, data, pool, settings)
	default:
		t = runEventBased(in, data, pool, settings)
	}
	return Result{Verification: t.verification, Evaluations: t.evaluations}, nil
}

// matches reports whether sd was built (or loaded) for in's dimensions.
func (sd *SimulationData[T]) matches(in Inputs) error {
	switch {
	case sd.NIsotopes != in.NIsotopes:
		return configErrorf("n_isotopes", "data has %d isotopes, inputs request %d", sd.NIsotopes, in.NIsotopes)
	case sd.NGridpoints != in.NGridpoints:
		return configErrorf("n_gridpoints", "data has %d gridpoints, inputs request %d", sd.NGridpoints, in.NGridpoints)
	case sd.GridType != in.GridType:
		return configErrorf("grid_type", "data has a %s grid, inputs request %s", sd.GridType, in.GridType)
	case sd.GridType == GridHash && sd.Hash.Bins != in.HashBins:
		return configErrorf("hash_bins", "data has %d bins, inputs request %d", sd.Hash.Bins, in.HashBins)
	}
	return nil
}

// lookupSeed returns the stream of global lookup i. Each lookup consumes
// two draws (energy, material), so streams never overlap.
func lookupSeed(start uint64, i int) uint64 {
	return FastForward(start, 2*uint64(i))
}

// runEventBased treats every lookup as an independent unit.
func runEventBased[T Float](in Inputs, data Replica[T], pool workerPool, s runSettings) tally {
	return pool.run(in.Lookups, s.chunk, func(w, lo, hi int) tally {
		sd := data.Read(w)
		var t tally
		for i := lo; i < hi; i++ {
			seed := lookupSeed(in.Seed, i)
			energy := NextRandom[T](&seed)
			mat := PickMaterial(&seed)
			fold(&t, sd.MacroXS(energy, &sd.Materials[mat]))
		}
		return t
	})
}

// runEventBatched draws every sample up front, orders the samples by
// material and then energy so neighbouring lookups touch neighbouring grid
// data, and evaluates them in fixed-size batches.
func runEventBatched[T Float](in Inputs, data Replica[T], pool workerPool, s runSettings) tally {
	samples := DrawSamples[T](in.Seed, in.Lookups, pool.threads)
	samples.Sort(pool.threads)
	logrus.Debugf("batched kernel: %d samples sorted, batch size %d", samples.Len(), s.batch)

	return pool.run(samples.Len(), s.batch, func(w, lo, hi int) tally {
		sd := data.Read(w)
		var t tally
		for i := lo; i < hi; i++ {
			fold(&t, sd.MacroXS(samples.Energy[i], &sd.Materials[samples.Material[i]]))
		}
		return t
	})
}

// historySpan returns the first global lookup index and the lookup count
// of history p when lookups are spread as evenly as possible.
func historySpan(lookups, particles, p int) (start, n int) {
	per, extra := lookups/particles, lookups%particles
	n = per
	if p < extra {
		n++
	}
	return p*per + min(p, extra), n
}

// historyDrawsPerLookup is the stream budget of one history lookup. A
// lookup consumes two draws plus at most NumChannels skips.
const historyDrawsPerLookup = 10

// historySeed returns the starting state of history p. Histories are
// spaced by historyDrawsPerLookup draws per lookup of the longest history,
// so no history's stream reaches the next one's start.
func historySeed(start uint64, lookups, particles, p int) uint64 {
	longest := (lookups + particles - 1) / particles
	return FastForward(start, uint64(p)*uint64(historyDrawsPerLookup*longest))
}

// runHistoryBased follows each particle through a chain of lookups drawn
// sequentially from one stream.
func runHistoryBased[T Float](in Inputs, data Replica[T], pool workerPool, s runSettings) tally {
	return pool.run(in.Particles, s.chunk, func(w, lo, hi int) tally {
		sd := data.Read(w)
		var t tally
		for p := lo; p < hi; p++ {
			_, n := historySpan(in.Lookups, in.Particles, p)
			seed := historySeed(in.Seed, in.Lookups, in.Particles, p)
			part, _ := followHistory(sd, seed, n)
			t.add(part)
		}
		return t
	})
}

// followHistory evaluates n lookups from seed. Between lookups the stream
// skips one draw for each channel above 1.0. It also returns the number of
// draws consumed.
func followHistory[T Float](sd *SimulationData[T], seed uint64, n int) (tally, uint64) {
	var t tally
	var draws, skip uint64
	for range n {
		if skip > 0 {
			seed = FastForward(seed, skip)
			draws += skip
		}
		energy := NextRandom[T](&seed)
		mat := PickMaterial(&seed)
		draws += 2

		xs := sd.MacroXS(energy, &sd.Materials[mat])
		fold(&t, xs)
		skip = 0
		for _, v := range xs {
			if v > 1 {
				skip++
			}
		}
	}
	return t, draws
}

// LookupSamples holds pre-drawn lookup inputs for the batched kernel.
type LookupSamples[T Float] struct {
	Energy   []T
	Material []int32
}

// DrawSamples draws the energy and material of lookups [0, n) from the
// same per-lookup streams the baseline kernel uses.
func DrawSamples[T Float](start uint64, n, nThreads int) *LookupSamples[T] {
	s := &LookupSamples[T]{Energy: make([]T, n), Material: make([]int32, n)}
	workerPool{threads: nThreads}.run(n, defaultChunkSize, func(_, lo, hi int) tally {
		for i := lo; i < hi; i++ {
			seed := lookupSeed(start, i)
			s.Energy[i] = NextRandom[T](&seed)
			s.Material[i] = int32(PickMaterial(&seed))
		}
		return tally{}
	})
	return s
}

// Len returns the number of samples.
func (s *LookupSamples[T]) Len() int { return len(s.Energy) }

// Sort groups samples by material with a counting sort, then sorts each
// material's energies in parallel.
func (s *LookupSamples[T]) Sort(nThreads int) {
	var offsets [NumMaterials + 1]int
	for _, m := range s.Material {
		offsets[m+1]++
	}
	for m := 1; m <= NumMaterials; m++ {
		offsets[m] += offsets[m-1]
	}

	energy := make([]T, len(s.Energy))
	material := make([]int32, len(s.Material))
	next := offsets
	for i, m := range s.Material {
		energy[next[m]] = s.Energy[i]
		material[next[m]] = m
		next[m]++
	}
	forEach(nThreads, NumMaterials, func(m int) {
		slices.Sort(energy[offsets[m]:offsets[m+1]])
	})
	s.Energy, s.Material = energy, material
}

// String summarizes r for logs.
func (r Result) String() string {
	return fmt.Sprintf("verification=%d evaluations=%d", r.Verification, r.Evaluations)
}
