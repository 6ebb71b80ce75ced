// Package sim provides the cross-section lookup kernel of the XSBench proxy
// benchmark: synthetic nuclide grids, the search structures built over them,
// micro/macro cross-section evaluation, and the parallel drivers that run
// many lookups and fold them into a single verification value.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - rng.go: LCG stream, O(log n) fast-forward, material sampling
//   - grid.go: SimulationData construction (nuclide, unionized, hash grids)
//   - xs.go: micro and macro cross-section evaluation
//   - simulation.go: event-based and history-based drivers
//
// # Precision
//
// Every data structure is generic over Float (float32 or float64). The CLI
// picks one instantiation for the whole run; grid data, interpolation and
// accumulation all use it.
//
// # Reproducibility
//
// No RNG instance is shared. Lookup i derives its stream by fast-forwarding
// the starting seed by 2*i, so the verification value is identical for any
// worker count, scheduling order, grid representation or kernel variant.
//
// # Extension Points
//
//   - Placement: how workers see SimulationData (single copy or replicas)
//   - RunOption: per-run tuning of chunk and batch sizes
package sim
