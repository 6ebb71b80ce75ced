package sim

import "math"

// LCG parameters. The modulus is 2^63, so reduction is a mask of the low
// 63 bits of the 64-bit wrapped product.
const (
	lcgMultiplier uint64 = 2806196910506780709
	lcgIncrement  uint64 = 1
	lcgModulus    uint64 = 1 << 63
	lcgMask              = lcgModulus - 1

	// StartingSeed is the default origin of every lookup stream.
	StartingSeed uint64 = 1070

	// gridSeed seeds the synthetic nuclide data.
	gridSeed uint64 = 42
	// concentrationSeed seeds material concentrations.
	concentrationSeed = StartingSeed * 7919
)

// Step advances an LCG state by one draw.
func Step(seed uint64) uint64 {
	return (lcgMultiplier*seed + lcgIncrement) & lcgMask
}

// NextRandom advances *seed and returns the new state mapped to [0, 1).
func NextRandom[T Float](seed *uint64) T {
	*seed = Step(*seed)
	return unitInterval[T](*seed)
}

func unitInterval[T Float](state uint64) T {
	v := T(float64(state) / float64(lcgModulus))
	if v >= 1 {
		// rounding of states just below 2^63 can reach 1.0
		return belowOne[T]()
	}
	return v
}

func belowOne[T Float]() T {
	if sizeOf[T]() == 4 {
		return T(math.Nextafter32(1, 0))
	}
	return T(math.Nextafter(1, 0))
}

// FastForward returns the state reached after n calls to Step from seed,
// in O(log n). The affine map x -> a*x + c is squared once per bit of n.
func FastForward(seed, n uint64) uint64 {
	a, c := lcgMultiplier, lcgIncrement
	aNew, cNew := uint64(1), uint64(0)
	n &= lcgMask
	for n > 0 {
		if n&1 == 1 {
			aNew *= a
			cNew = cNew*a + c
		}
		c *= a + 1
		a *= a
		n >>= 1
	}
	return (aNew*seed + cNew) & lcgMask
}

// NumMaterials is the number of materials in the reactor model.
const NumMaterials = 12

// materialDistribution is the volume fraction of each material.
var materialDistribution = [NumMaterials]float64{
	0.140, // fuel
	0.052, // cladding
	0.275, // cold, borated water
	0.134, // hot, borated water
	0.154, // RPV
	0.064, // lower, radial reflector
	0.066, // upper reflector / top plate
	0.055, // bottom plate
	0.008, // bottom nozzle
	0.015, // top nozzle
	0.025, // top of fuel assemblies
	0.013, // bottom of fuel assemblies
}

// materialEdges[i] is the sum of materialDistribution[1..i], added from i
// down to 1. Fuel has no edge of its own and takes the remainder.
var materialEdges = func() [NumMaterials]float64 {
	var edges [NumMaterials]float64
	for i := range edges {
		running := 0.0
		for j := i; j > 0; j-- {
			running += materialDistribution[j]
		}
		edges[i] = running
	}
	return edges
}()

// PickMaterial draws one value from *seed and maps it to a material id.
func PickMaterial(seed *uint64) int {
	roll := NextRandom[float64](seed)
	for i, edge := range materialEdges {
		if roll < edge {
			return i
		}
	}
	return 0
}
