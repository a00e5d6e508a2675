package tensor

import (
	"strconv"
	"strings"
)

// Shape represents the dimensions of a tensor. The slice is private so a
// Shape can be passed around by value without aliasing.
type Shape struct {
	dims []int
}

// NewShape creates a new Shape from dimensions.
func NewShape(dims ...int) Shape {
	d := make([]int, len(dims))
	copy(d, dims)
	return Shape{dims: d}
}

// Dims returns a copy of the dimensions.
func (s Shape) Dims() []int {
	d := make([]int, len(s.dims))
	copy(d, s.dims)
	return d
}

// NDim returns the number of dimensions.
func (s Shape) NDim() int {
	return len(s.dims)
}

// Numel returns the total number of elements. A zero-rank shape holds nothing.
func (s Shape) Numel() int {
	if len(s.dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range s.dims {
		n *= d
	}
	return n
}

// At returns the size at the given dimension. Negative dims count from the end.
func (s Shape) At(dim int) int {
	if dim < 0 {
		dim = len(s.dims) + dim
	}
	if dim < 0 || dim >= len(s.dims) {
		return 0
	}
	return s.dims[dim]
}

// Strides returns row-major strides.
func (s Shape) Strides() []int {
	if len(s.dims) == 0 {
		return nil
	}
	strides := make([]int, len(s.dims))
	strides[len(s.dims)-1] = 1
	for i := len(s.dims) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s.dims[i+1]
	}
	return strides
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s.dims) != len(other.dims) {
		return false
	}
	for i := range s.dims {
		if s.dims[i] != other.dims[i] {
			return false
		}
	}
	return true
}

// WithLast returns a copy of s whose last dimension is replaced by last.
func (s Shape) WithLast(last int) Shape {
	d := s.Dims()
	if len(d) == 0 {
		return NewShape(last)
	}
	d[len(d)-1] = last
	return Shape{dims: d}
}

// Leading returns the product of every dimension except the last one.
func (s Shape) Leading() int {
	n := 1
	for i := 0; i < len(s.dims)-1; i++ {
		n *= s.dims[i]
	}
	return n
}

// String formats the shape as "[d0, d1, ...]".
func (s Shape) String() string {
	parts := make([]string, len(s.dims))
	for i, d := range s.dims {
		parts[i] = strconv.Itoa(d)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
