package sim

import "unsafe"

// Float is the floating-point precision used for grid data, interpolation
// and accumulation. One instantiation is used consistently for a run.
type Float interface {
	~float32 | ~float64
}

// Precision names the instantiation selected on the command line.
type Precision string

const (
	PrecisionDouble Precision = "double"
	PrecisionSingle Precision = "single"
)

// IsValidPrecision reports whether name is a recognized precision.
func IsValidPrecision(name string) bool {
	return name == string(PrecisionDouble) || name == string(PrecisionSingle)
}

// ParsePrecision accepts "double" or "single".
func ParsePrecision(s string) (Precision, error) {
	if !IsValidPrecision(s) {
		return "", configErrorf("precision", "unknown precision %q; valid: double, single", s)
	}
	return Precision(s), nil
}

// Bytes returns the width of one floating-point value for p.
func (p Precision) Bytes() int {
	if p == PrecisionSingle {
		return 4
	}
	return 8
}

// sizeOf returns the width of T in bytes.
func sizeOf[T Float]() int {
	var z T
	return int(unsafe.Sizeof(z))
}
