package sim

import (
	"math"
	"math/bits"
	"unsafe"
)

// maxIndexValue is the largest grid index an int32 index table can hold.
const maxIndexValue = math.MaxInt32

// EstimateMemUsage returns the bytes SimulationData needs for in with
// floating-point values of fpBytes bytes: the nuclide grid plus the outer
// grid of the selected representation. Sizes that cannot be represented
// yield an *AllocationError.
func EstimateMemUsage(in Inputs, fpBytes int) (uint64, error) {
	if in.NGridpoints > maxIndexValue {
		return 0, &AllocationError{What: "index grid", Reason: "n_gridpoints exceeds the int32 index range"}
	}

	points, err := mulSize("nuclide grid", uint64(in.NIsotopes), uint64(in.NGridpoints))
	if err != nil {
		return 0, err
	}
	gridBytes, err := mulSize("nuclide grid", points, 6*uint64(fpBytes))
	if err != nil {
		return 0, err
	}
	total := gridBytes

	var outer uint64
	switch in.GridType {
	case GridUnionized:
		energyBytes, err := mulSize("unionized energy grid", points, uint64(fpBytes))
		if err != nil {
			return 0, err
		}
		entries, err := mulSize("unionized index grid", points, uint64(in.NIsotopes))
		if err != nil {
			return 0, err
		}
		indexBytes, err := mulSize("unionized index grid", entries, uint64(unsafe.Sizeof(int32(0))))
		if err != nil {
			return 0, err
		}
		outer, err = addSize("unionized grid", energyBytes, indexBytes)
		if err != nil {
			return 0, err
		}
	case GridHash:
		entries, err := mulSize("hash grid", uint64(in.HashBins), uint64(in.NIsotopes))
		if err != nil {
			return 0, err
		}
		outer, err = mulSize("hash grid", entries, uint64(unsafe.Sizeof(int32(0))))
		if err != nil {
			return 0, err
		}
	}
	total, err = addSize("simulation data", total, outer)
	if err != nil {
		return 0, err
	}
	if total > math.MaxInt {
		return 0, &AllocationError{What: "simulation data", Reason: "size exceeds the address space"}
	}
	return total, nil
}

func mulSize(what string, a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 || lo > math.MaxInt {
		return 0, &AllocationError{What: what, Reason: "size overflows"}
	}
	return lo, nil
}

func addSize(what string, a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 || sum > math.MaxInt {
		return 0, &AllocationError{What: what, Reason: "size overflows"}
	}
	return sum, nil
}

// MegaBytes converts a byte count to whole MiB, rounding up.
func MegaBytes(n uint64) uint64 {
	return (n + 1<<20 - 1) >> 20
}
