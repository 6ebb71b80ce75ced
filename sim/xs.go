package sim

// Cross-section channels of an XSVector.
const (
	ChannelTotal = iota
	ChannelElastic
	ChannelAbsorption
	ChannelFission
	ChannelNuFission
	NumChannels
)

// XSVector holds one value per cross-section channel.
type XSVector[T Float] [NumChannels]T

// MaxChannel returns the index of the largest channel; the first wins ties.
func (v XSVector[T]) MaxChannel() int {
	best := 0
	for c := 1; c < NumChannels; c++ {
		if v[c] > v[best] {
			best = c
		}
	}
	return best
}

// Interpolate evaluates all channels at energy between two adjacent grid
// points. The fraction is clamped to [0, 1], so energies outside the
// bracket take the nearer endpoint.
func Interpolate[T Float](low, high *NuclideGridPoint[T], energy T) XSVector[T] {
	var f T
	if de := high.Energy - low.Energy; de > 0 {
		f = (energy - low.Energy) / de
		f = min(max(f, 0), 1)
	}
	// T(...) rounds each product so no fused multiply-add is emitted.
	return XSVector[T]{
		low.TotalXS + T(f*(high.TotalXS-low.TotalXS)),
		low.ElasticXS + T(f*(high.ElasticXS-low.ElasticXS)),
		low.AbsorptionXS + T(f*(high.AbsorptionXS-low.AbsorptionXS)),
		low.FissionXS + T(f*(high.FissionXS-low.FissionXS)),
		low.NuFissionXS + T(f*(high.NuFissionXS-low.NuFissionXS)),
	}
}

// OuterIndex locates energy in the outer grid: a unionized slot, a hash
// bucket, or -1 when lookups search nuclide grids directly.
func (sd *SimulationData[T]) OuterIndex(energy T) int {
	switch sd.GridType {
	case GridUnionized:
		return GridSearch(sd.Unionized.Energy, energy)
	case GridHash:
		return hashBin(sd.Hash.Bins, energy)
	default:
		return -1
	}
}

// bracket returns the lower grid index of energy in nuclide nuc's grid
// using the representation's strategy. outer comes from OuterIndex.
func (sd *SimulationData[T]) bracket(grid []NuclideGridPoint[T], energy T, nuc, outer int) int {
	n := sd.NGridpoints
	switch sd.GridType {
	case GridUnionized:
		return int(sd.Unionized.Index[outer*sd.NIsotopes+nuc])
	case GridHash:
		index := sd.Hash.Index
		low := int(index[outer*sd.NIsotopes+nuc])
		high := n - 1
		if outer < sd.Hash.Bins-1 {
			high = min(int(index[(outer+1)*sd.NIsotopes+nuc])+1, n-1)
		}
		return GridSearchNuclide(grid, energy, low, high)
	default:
		return GridSearchNuclide(grid, energy, 0, n-1)
	}
}

// MicroXS evaluates nuclide nuc at energy. outer must be OuterIndex(energy).
func (sd *SimulationData[T]) MicroXS(energy T, nuc, outer int) XSVector[T] {
	grid := sd.Nuclide(nuc)
	i := sd.bracket(grid, energy, nuc, outer)
	return Interpolate(&grid[i], &grid[i+1], energy)
}

// MacroXS sums the micro cross sections of m's nuclides weighted by their
// concentrations, in nuclide order.
func (sd *SimulationData[T]) MacroXS(energy T, m *Material[T]) XSVector[T] {
	var macro XSVector[T]
	outer := sd.OuterIndex(energy)
	for j, nuc := range m.Nuclides {
		conc := m.Concentrations[j]
		micro := sd.MicroXS(energy, nuc, outer)
		for c := range macro {
			macro[c] += T(micro[c] * conc)
		}
	}
	return macro
}
