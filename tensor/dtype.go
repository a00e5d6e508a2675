package tensor

// DType tags the element type of a tensor. Storage is always []float32;
// the tag records what the values represent (for example token IDs).
type DType uint8

const (
	F32 DType = iota
	I32
)

// String returns the short name of the dtype.
func (d DType) String() string {
	switch d {
	case F32:
		return "f32"
	case I32:
		return "i32"
	default:
		return "unknown"
	}
}
