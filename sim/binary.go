package sim

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

const binaryVersion = 1

var binaryMagic = [4]byte{'X', 'S', 'B', 'D'}

// binaryHeader follows the endianness flag at the start of a data file.
type binaryHeader struct {
	Magic        [4]byte
	Version      uint32
	FPBytes      uint32
	GridType     int32
	NIsotopes    int64
	NGridpoints  int64
	HashBins     int64
	UnionizedLen int64
	NumMaterials int64
}

// endianness converts an endianness flag to a byte order. The flag values
// are byte-symmetric, so the flag itself can be read in either order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case 0:
		return binary.LittleEndian, nil
	case -1:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("unrecognized endianness flag %d", flag)
}

// WriteBinary serializes sd to w, followed by a SHA3-256 digest of every
// preceding byte.
func WriteBinary[T Float](w io.Writer, sd *SimulationData[T]) error {
	bw := bufio.NewWriter(w)
	digest := sha3.New256()
	out := io.MultiWriter(bw, digest)
	order := binary.LittleEndian

	hd := binaryHeader{
		Magic:        binaryMagic,
		Version:      binaryVersion,
		FPBytes:      uint32(sizeOf[T]()),
		GridType:     int32(sd.GridType),
		NIsotopes:    int64(sd.NIsotopes),
		NGridpoints:  int64(sd.NGridpoints),
		NumMaterials: int64(len(sd.Materials)),
	}
	if sd.Unionized != nil {
		hd.UnionizedLen = int64(len(sd.Unionized.Energy))
	}
	if sd.Hash != nil {
		hd.HashBins = int64(sd.Hash.Bins)
	}

	fields := []any{int32(0), &hd, sd.NuclideGrid}
	if sd.Unionized != nil {
		fields = append(fields, sd.Unionized.Energy, sd.Unionized.Index)
	}
	if sd.Hash != nil {
		fields = append(fields, sd.Hash.Index)
	}
	for _, m := range sd.Materials {
		ids := make([]int32, len(m.Nuclides))
		for i, id := range m.Nuclides {
			ids[i] = int32(id)
		}
		fields = append(fields, int32(len(ids)), ids, m.Concentrations)
	}
	for _, f := range fields {
		if err := binary.Write(out, order, f); err != nil {
			return fmt.Errorf("writing simulation data: %w", err)
		}
	}
	if _, err := bw.Write(digest.Sum(nil)); err != nil {
		return fmt.Errorf("writing simulation data digest: %w", err)
	}
	return bw.Flush()
}

// ReadBinary deserializes SimulationData written by WriteBinary. The file
// must describe exactly the problem in; a mismatch is a
// *ConfigurationError and a bad digest or truncated file is an error.
func ReadBinary[T Float](r io.Reader, in Inputs) (*SimulationData[T], error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := EstimateMemUsage(in, sizeOf[T]()); err != nil {
		return nil, err
	}
	digest := sha3.New256()
	br := bufio.NewReader(r)
	src := io.TeeReader(br, digest)

	var flag int32
	if err := binary.Read(src, binary.LittleEndian, &flag); err != nil {
		return nil, fmt.Errorf("reading endianness flag: %w", err)
	}
	order, err := endianness(flag)
	if err != nil {
		return nil, err
	}
	var hd binaryHeader
	if err := binary.Read(src, order, &hd); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := hd.check(in, sizeOf[T]()); err != nil {
		return nil, err
	}

	sd := &SimulationData[T]{
		NIsotopes:   in.NIsotopes,
		NGridpoints: in.NGridpoints,
		GridType:    in.GridType,
		NuclideGrid: make([]NuclideGridPoint[T], in.NIsotopes*in.NGridpoints),
	}
	fields := []any{sd.NuclideGrid}
	switch in.GridType {
	case GridUnionized:
		if hd.UnionizedLen < 2 || hd.UnionizedLen > int64(len(sd.NuclideGrid)) {
			return nil, fmt.Errorf("unionized grid length %d out of range", hd.UnionizedLen)
		}
		n := int(hd.UnionizedLen)
		sd.Unionized = &UnionizedGrid[T]{Energy: make([]T, n), Index: make([]int32, n*in.NIsotopes)}
		fields = append(fields, sd.Unionized.Energy, sd.Unionized.Index)
	case GridHash:
		sd.Hash = &HashGrid{Bins: in.HashBins, Index: make([]int32, in.HashBins*in.NIsotopes)}
		fields = append(fields, sd.Hash.Index)
	}
	for _, f := range fields {
		if err := binary.Read(src, order, f); err != nil {
			return nil, fmt.Errorf("reading grid data: %w", err)
		}
	}

	sd.Materials = make([]Material[T], hd.NumMaterials)
	for m := range sd.Materials {
		var count int32
		if err := binary.Read(src, order, &count); err != nil {
			return nil, fmt.Errorf("reading material %d: %w", m, err)
		}
		if count < 0 || int(count) > len(sd.NuclideGrid) {
			return nil, fmt.Errorf("material %d has invalid nuclide count %d", m, count)
		}
		ids := make([]int32, count)
		concs := make([]T, count)
		if err := binary.Read(src, order, ids); err != nil {
			return nil, fmt.Errorf("reading material %d nuclides: %w", m, err)
		}
		if err := binary.Read(src, order, concs); err != nil {
			return nil, fmt.Errorf("reading material %d concentrations: %w", m, err)
		}
		nucs := make([]int, count)
		for i, id := range ids {
			if id < 0 || int(id) >= in.NIsotopes {
				return nil, fmt.Errorf("material %d references nuclide %d of %d", m, id, in.NIsotopes)
			}
			nucs[i] = int(id)
		}
		sd.Materials[m] = Material[T]{Nuclides: nucs, Concentrations: concs}
		sd.MaxNumNucs = max(sd.MaxNumNucs, int(count))
	}

	want := digest.Sum(nil)
	got := make([]byte, len(want))
	if _, err := io.ReadFull(br, got); err != nil {
		return nil, fmt.Errorf("reading digest: %w", err)
	}
	if !bytes.Equal(got, want) {
		return nil, fmt.Errorf("simulation data digest mismatch: file is corrupt")
	}
	if err := sd.checkTables(); err != nil {
		return nil, fmt.Errorf("invalid simulation data: %w", err)
	}
	return sd, nil
}

// checkTables verifies the ordering and index bounds that lookups rely on.
func (sd *SimulationData[T]) checkTables() error {
	for j := range sd.NIsotopes {
		grid := sd.Nuclide(j)
		for i := 1; i < len(grid); i++ {
			if grid[i].Energy < grid[i-1].Energy {
				return fmt.Errorf("nuclide %d energies not sorted at point %d", j, i)
			}
		}
	}
	last := int32(sd.NGridpoints - 2)
	checkIndex := func(name string, index []int32) error {
		for k, v := range index {
			if v < 0 || v > last {
				return fmt.Errorf("%s index %d holds bracket %d outside [0, %d]", name, k, v, last)
			}
		}
		return nil
	}
	if u := sd.Unionized; u != nil {
		for k := 1; k < len(u.Energy); k++ {
			if u.Energy[k] <= u.Energy[k-1] {
				return fmt.Errorf("unionized energies not strictly ascending at %d", k)
			}
		}
		if err := checkIndex("unionized", u.Index); err != nil {
			return err
		}
	}
	if sd.Hash != nil {
		return checkIndex("hash", sd.Hash.Index)
	}
	return nil
}

func (hd *binaryHeader) check(in Inputs, fpBytes int) error {
	switch {
	case hd.Magic != binaryMagic:
		return fmt.Errorf("not a simulation data file (magic %q)", hd.Magic[:])
	case hd.Version != binaryVersion:
		return fmt.Errorf("unsupported simulation data version %d", hd.Version)
	case int(hd.FPBytes) != fpBytes:
		return configErrorf("precision", "file holds %d-byte values, run uses %d-byte values", hd.FPBytes, fpBytes)
	case GridType(hd.GridType) != in.GridType:
		return configErrorf("grid_type", "file holds a %s grid, inputs request %s", GridType(hd.GridType), in.GridType)
	case hd.NIsotopes != int64(in.NIsotopes):
		return configErrorf("n_isotopes", "file holds %d isotopes, inputs request %d", hd.NIsotopes, in.NIsotopes)
	case hd.NGridpoints != int64(in.NGridpoints):
		return configErrorf("n_gridpoints", "file holds %d gridpoints, inputs request %d", hd.NGridpoints, in.NGridpoints)
	case in.GridType == GridHash && hd.HashBins != int64(in.HashBins):
		return configErrorf("hash_bins", "file holds %d bins, inputs request %d", hd.HashBins, in.HashBins)
	case hd.NumMaterials != NumMaterials:
		return fmt.Errorf("file holds %d materials, want %d", hd.NumMaterials, NumMaterials)
	}
	return nil
}

// SaveFile writes sd to path.
func SaveFile[T Float](path string, sd *SimulationData[T]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating simulation data file: %w", err)
	}
	if err := WriteBinary(f, sd); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads SimulationData for in from path.
func LoadFile[T Float](path string, in Inputs) (*SimulationData[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening simulation data file: %w", err)
	}
	defer f.Close()
	return ReadBinary[T](f, in)
}
