package sim

import "slices"

// Material is a mixture of nuclides with per-nuclide concentrations.
type Material[T Float] struct {
	Nuclides       []int
	Concentrations []T
}

const (
	fuelNuclidesSmall = 34
	fuelNuclidesLarge = 321
)

// fuelBase lists the fuel nuclides shared by every problem size. The large
// problem appends ids 68, 69, ... until the fuel holds 321 nuclides.
var fuelBase = []int{
	58, 59, 60, 61, 40, 42, 43, 44, 45, 46, 1, 2, 3, 7,
	8, 9, 10, 29, 57, 47, 48, 0, 62, 15, 33, 34, 52, 53,
	54, 55, 56, 18, 23, 41,
}

var (
	cladding = []int{63, 64, 65, 66, 67}
	water    = []int{24, 41, 4, 5}
	rpv      = []int{
		19, 20, 21, 22, 35, 36, 37, 38, 39, 25, 27, 28, 29,
		30, 31, 32, 26, 49, 50, 51, 11, 12, 13, 14, 6, 16,
		17,
	}
	structure = []int{
		24, 41, 4, 5, 19, 20, 21, 22, 35, 36, 37, 38, 39, 25,
		49, 50, 51, 11, 12, 13, 14,
	}
	assemblyEnd = []int{24, 41, 4, 5, 63, 64, 65, 66, 67}
)

// materialNuclides returns the nuclide ids of every material for a
// problem with nIsotopes nuclides. Ids beyond the problem are folded back
// with a modulus so that reduced problems stay in range.
func materialNuclides(nIsotopes int) [NumMaterials][]int {
	fuel := slices.Clone(fuelBase)
	if nIsotopes != DefaultIsotopesSmall {
		for i := 0; len(fuel) < fuelNuclidesLarge; i++ {
			fuel = append(fuel, DefaultIsotopesSmall+i)
		}
	}
	mats := [NumMaterials][]int{
		fuel,
		cladding,
		water,     // cold borated water
		water,     // hot borated water
		rpv,       // reactor pressure vessel
		structure, // lower radial reflector
		structure, // top reflector
		structure, // bottom plate
		structure, // bottom nozzle
		structure, // top nozzle
		assemblyEnd,
		assemblyEnd,
	}
	for m := range mats {
		ids := make([]int, len(mats[m]))
		for i, id := range mats[m] {
			ids[i] = id % nIsotopes
		}
		mats[m] = ids
	}
	return mats
}

// loadMaterials builds the 12 materials and returns the widest nuclide
// count. Concentrations are drawn material by material from one stream.
func loadMaterials[T Float](nIsotopes int) ([]Material[T], int) {
	ids := materialNuclides(nIsotopes)
	mats := make([]Material[T], NumMaterials)
	seed := concentrationSeed
	maxNucs := 0
	for m := range mats {
		concs := make([]T, len(ids[m]))
		for i := range concs {
			concs[i] = NextRandom[T](&seed)
		}
		mats[m] = Material[T]{Nuclides: ids[m], Concentrations: concs}
		maxNucs = max(maxNucs, len(ids[m]))
	}
	return mats, maxNucs
}

// Scaled returns a copy of m with every concentration multiplied by k.
func (m Material[T]) Scaled(k T) Material[T] {
	concs := make([]T, len(m.Concentrations))
	for i, c := range m.Concentrations {
		concs[i] = c * k
	}
	return Material[T]{Nuclides: slices.Clone(m.Nuclides), Concentrations: concs}
}

// Clone returns a deep copy of m.
func (m Material[T]) Clone() Material[T] {
	return Material[T]{
		Nuclides:       slices.Clone(m.Nuclides),
		Concentrations: slices.Clone(m.Concentrations),
	}
}
