package sim

import (
	"cmp"
	"slices"

	"github.com/sirupsen/logrus"
)

// NuclideGridPoint is one energy point of a nuclide's cross-section table.
type NuclideGridPoint[T Float] struct {
	Energy       T
	TotalXS      T
	ElasticXS    T
	AbsorptionXS T
	FissionXS    T
	NuFissionXS  T
}

// UnionizedGrid is the sorted, deduplicated union of every nuclide energy.
// Index[k*n_isotopes+j] is the bracket of Energy[k] in nuclide j's grid.
type UnionizedGrid[T Float] struct {
	Energy []T
	Index  []int32
}

// HashGrid divides [0, 1) into Bins equal buckets. Index[e*n_isotopes+j] is
// the bracket of the bucket's lower edge in nuclide j's grid.
type HashGrid struct {
	Bins  int
	Index []int32
}

// SimulationData holds every table a lookup reads. It is built once before
// the simulation and is read-only while workers run.
type SimulationData[T Float] struct {
	NIsotopes   int
	NGridpoints int
	GridType    GridType

	// NuclideGrid stores all nuclides back to back, each sorted by energy.
	NuclideGrid []NuclideGridPoint[T]
	Unionized   *UnionizedGrid[T] // GridUnionized only
	Hash        *HashGrid         // GridHash only

	Materials  []Material[T]
	MaxNumNucs int
}

// Nuclide returns nuclide j's grid.
func (sd *SimulationData[T]) Nuclide(j int) []NuclideGridPoint[T] {
	start := j * sd.NGridpoints
	return sd.NuclideGrid[start : start+sd.NGridpoints : start+sd.NGridpoints]
}

// NewSimulationData synthesizes nuclide data, the outer grid selected by
// in.GridType, and the material tables. Construction work is spread over
// in.NThreads goroutines; the result does not depend on the thread count.
func NewSimulationData[T Float](in Inputs) (*SimulationData[T], error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := EstimateMemUsage(in, sizeOf[T]()); err != nil {
		return nil, err
	}

	sd := &SimulationData[T]{
		NIsotopes:   in.NIsotopes,
		NGridpoints: in.NGridpoints,
		GridType:    in.GridType,
	}
	sd.NuclideGrid = generateNuclideGrids[T](in.NIsotopes, in.NGridpoints, in.NThreads)

	switch in.GridType {
	case GridUnionized:
		sd.Unionized = buildUnionizedGrid(sd, in.NThreads)
		logrus.Debugf("unionized grid: %d energies, %d index entries",
			len(sd.Unionized.Energy), len(sd.Unionized.Index))
	case GridHash:
		sd.Hash = buildHashGrid(sd, in.HashBins, in.NThreads)
		logrus.Debugf("hash grid: %d bins, %d index entries", sd.Hash.Bins, len(sd.Hash.Index))
	}

	sd.Materials, sd.MaxNumNucs = loadMaterials[T](in.NIsotopes)
	return sd, nil
}

// generateNuclideGrids draws six values per point (energy then the five
// channels) from one stream seeded with gridSeed. Nuclide j starts its
// draws at offset 6*j*n_gridpoints, which lets nuclides fill in parallel
// while staying identical to a single sequential pass.
func generateNuclideGrids[T Float](nIsotopes, nGridpoints, nThreads int) []NuclideGridPoint[T] {
	grid := make([]NuclideGridPoint[T], nIsotopes*nGridpoints)
	forEach(nThreads, nIsotopes, func(j int) {
		seed := FastForward(gridSeed, uint64(6*j*nGridpoints))
		points := grid[j*nGridpoints : (j+1)*nGridpoints]
		for i := range points {
			p := &points[i]
			p.Energy = NextRandom[T](&seed)
			p.TotalXS = NextRandom[T](&seed)
			p.ElasticXS = NextRandom[T](&seed)
			p.AbsorptionXS = NextRandom[T](&seed)
			p.FissionXS = NextRandom[T](&seed)
			p.NuFissionXS = NextRandom[T](&seed)
		}
		slices.SortFunc(points, func(a, b NuclideGridPoint[T]) int {
			return cmp.Compare(a.Energy, b.Energy)
		})
	})
	return grid
}

// buildUnionizedGrid merges all nuclide energies and precomputes, for every
// union slot, each nuclide's bracket. Each nuclide column is filled by a
// monotone walk, so a column is non-decreasing in union energy.
func buildUnionizedGrid[T Float](sd *SimulationData[T], nThreads int) *UnionizedGrid[T] {
	energies := make([]T, len(sd.NuclideGrid))
	for i := range sd.NuclideGrid {
		energies[i] = sd.NuclideGrid[i].Energy
	}
	slices.Sort(energies)
	energies = slices.Clip(slices.Compact(energies))

	nIso := sd.NIsotopes
	last := sd.NGridpoints - 2
	index := make([]int32, len(energies)*nIso)
	forEach(nThreads, nIso, func(j int) {
		grid := sd.Nuclide(j)
		low := 0
		for k, e := range energies {
			for low < last && e >= grid[low+1].Energy {
				low++
			}
			index[k*nIso+j] = int32(low)
		}
	})
	return &UnionizedGrid[T]{Energy: energies, Index: index}
}

// buildHashGrid searches every nuclide once per bucket edge.
func buildHashGrid[T Float](sd *SimulationData[T], bins, nThreads int) *HashGrid {
	nIso := sd.NIsotopes
	du := 1 / T(bins)
	index := make([]int32, bins*nIso)
	forEach(nThreads, bins, func(e int) {
		energy := T(e) * du
		for j := 0; j < nIso; j++ {
			index[e*nIso+j] = int32(GridSearchNuclide(sd.Nuclide(j), energy, 0, sd.NGridpoints-1))
		}
	})
	return &HashGrid{Bins: bins, Index: index}
}

// hashBin returns the bucket whose edges, computed exactly as when the grid was
// built, enclose energy.
func hashBin[T Float](bins int, energy T) int {
	du := 1 / T(bins)
	bin := min(max(int(energy/du), 0), bins-1)
	for bin > 0 && energy < T(bin)*du {
		bin--
	}
	for bin < bins-1 && energy >= T(bin+1)*du {
		bin++
	}
	return bin
}
