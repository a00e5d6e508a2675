// Package tensor provides the dense float32 container that layers pass
// between each other.
package tensor

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// Tensor stores multi-dimensional data in a contiguous row-major slice.
// Operations allocate a new tensor unless documented otherwise.
type Tensor struct {
	data  []float32
	shape Shape
	dtype DType
}

// New creates a zero-filled tensor with the given shape and dtype.
func New(shape Shape, dtype DType) *Tensor {
	return &Tensor{
		data:  make([]float32, shape.Numel()),
		shape: shape,
		dtype: dtype,
	}
}

// Zeros creates a zero-filled F32 tensor.
func Zeros(shape Shape) *Tensor {
	return New(shape, F32)
}

// Ones creates a ones-filled F32 tensor.
func Ones(shape Shape) *Tensor {
	t := New(shape, F32)
	for i := range t.data {
		t.data[i] = 1
	}
	return t
}

// FromSlice copies data into a new F32 tensor of the given shape.
func FromSlice(data []float32, shape Shape) *Tensor {
	if len(data) != shape.Numel() {
		panic(fmt.Sprintf("data length %d != shape numel %d", len(data), shape.Numel()))
	}
	d := make([]float32, len(data))
	copy(d, data)
	return &Tensor{data: d, shape: shape, dtype: F32}
}

// Vector is shorthand for a rank-1 tensor holding values.
func Vector(values ...float32) *Tensor {
	return FromSlice(values, NewShape(len(values)))
}

// RandnWithStd fills a new F32 tensor with N(0, std²) samples.
func RandnWithStd(shape Shape, std float32) *Tensor {
	t := New(shape, F32)
	for i := range t.data {
		t.data[i] = float32(rand.NormFloat64()) * std
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's dtype.
func (t *Tensor) DType() DType {
	return t.dtype
}

// Data returns a copy of the underlying data.
func (t *Tensor) Data() []float32 {
	d := make([]float32, len(t.data))
	copy(d, t.data)
	return d
}

// DataPtr returns the backing slice. Writes are visible to every view.
func (t *Tensor) DataPtr() []float32 {
	return t.data
}

func (t *Tensor) offset(indices []int) int {
	if len(indices) != t.shape.NDim() {
		panic(fmt.Sprintf("expected %d indices, got %d", t.shape.NDim(), len(indices)))
	}
	idx := 0
	strides := t.shape.Strides()
	for i, index := range indices {
		if index < 0 || index >= t.shape.At(i) {
			panic(fmt.Sprintf("index %d out of bounds for dim %d with size %d", index, i, t.shape.At(i)))
		}
		idx += index * strides[i]
	}
	return idx
}

// At returns the value at the given indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.offset(indices)]
}

// Set stores value at the given indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.offset(indices)] = value
}

// Clone creates a deep copy of the tensor, keeping its dtype.
func (t *Tensor) Clone() *Tensor {
	c := FromSlice(t.data, t.shape)
	c.dtype = t.dtype
	return c
}

// Reshape returns a view with a new shape over the same data.
func (t *Tensor) Reshape(newShape Shape) *Tensor {
	if t.shape.Numel() != newShape.Numel() {
		panic(fmt.Sprintf("cannot reshape %v to %v: different numel", t.shape, newShape))
	}
	return &Tensor{data: t.data, shape: newShape, dtype: t.dtype}
}

func (t *Tensor) mustMatch(other *Tensor) {
	if !t.shape.Equal(other.shape) {
		panic(fmt.Sprintf("shape mismatch: %v vs %v", t.shape, other.shape))
	}
}

// Map applies f to every element.
func (t *Tensor) Map(f func(float32) float32) *Tensor {
	r := New(t.shape, t.dtype)
	for i, x := range t.data {
		r.data[i] = f(x)
	}
	return r
}

// Zip combines two same-shaped tensors element-wise with f.
func (t *Tensor) Zip(other *Tensor, f func(a, b float32) float32) *Tensor {
	t.mustMatch(other)
	r := New(t.shape, t.dtype)
	for i := range r.data {
		r.data[i] = f(t.data[i], other.data[i])
	}
	return r
}

// Add performs element-wise addition.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return t.Zip(other, func(a, b float32) float32 { return a + b })
}

// Mul performs element-wise multiplication.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return t.Zip(other, func(a, b float32) float32 { return a * b })
}

// Scale multiplies by a scalar.
func (t *Tensor) Scale(s float32) *Tensor {
	return t.Map(func(x float32) float32 { return x * s })
}

// AddScalar adds a scalar to every element.
func (t *Tensor) AddScalar(s float32) *Tensor {
	return t.Map(func(x float32) float32 { return x + s })
}

// ReLU applies max(0, x).
func (t *Tensor) ReLU() *Tensor {
	return t.Map(func(x float32) float32 {
		if x > 0 {
			return x
		}
		return 0
	})
}

// Sigmoid applies 1 / (1 + exp(-x)).
func (t *Tensor) Sigmoid() *Tensor {
	return t.Map(sigmoid)
}

// SiLU applies x * sigmoid(x).
func (t *Tensor) SiLU() *Tensor {
	return t.Map(func(x float32) float32 { return x * sigmoid(x) })
}

func sigmoid(x float32) float32 {
	return float32(1 / (1 + math.Exp(float64(-x))))
}

// Softmax applies softmax along the last dimension.
func (t *Tensor) Softmax() *Tensor {
	if t.shape.NDim() < 1 {
		panic("softmax requires at least 1 dimension")
	}

	result := New(t.shape, t.dtype)
	lastDim := t.shape.At(-1)
	for v := 0; v < t.shape.Leading(); v++ {
		src := t.data[v*lastDim : (v+1)*lastDim]
		dst := result.data[v*lastDim : (v+1)*lastDim]

		// Subtract the row max for numerical stability
		maxVal := src[0]
		for _, x := range src[1:] {
			if x > maxVal {
				maxVal = x
			}
		}
		sum := float32(0)
		for i, x := range src {
			dst[i] = float32(math.Exp(float64(x - maxVal)))
			sum += dst[i]
		}
		for i := range dst {
			dst[i] /= sum
		}
	}
	return result
}

// Matmul multiplies [M, K] x [K, N] -> [M, N], or the batched
// [B, M, K] x [B, K, N] -> [B, M, N].
func Matmul(a, b *Tensor) *Tensor {
	if a.shape.NDim() < 2 || b.shape.NDim() < 2 {
		panic("matmul requires at least 2D tensors")
	}

	m, k := a.shape.At(-2), a.shape.At(-1)
	bk, n := b.shape.At(-2), b.shape.At(-1)
	if k != bk {
		panic(fmt.Sprintf("matmul dimension mismatch: %d vs %d", k, bk))
	}

	var batch int
	var out Shape
	switch {
	case a.shape.NDim() == 2 && b.shape.NDim() == 2:
		batch, out = 1, NewShape(m, n)
	case a.shape.NDim() == 3 && b.shape.NDim() == 3 && a.shape.At(0) == b.shape.At(0):
		batch, out = a.shape.At(0), NewShape(a.shape.At(0), m, n)
	default:
		panic(fmt.Sprintf("unsupported matmul shapes %v x %v", a.shape, b.shape))
	}

	result := New(out, a.dtype)
	for p := 0; p < batch; p++ {
		ad := a.data[p*m*k : (p+1)*m*k]
		bd := b.data[p*k*n : (p+1)*k*n]
		cd := result.data[p*m*n : (p+1)*m*n]
		// i-k-j order keeps the inner loop on contiguous rows of b and c
		for i := 0; i < m; i++ {
			for kk := 0; kk < k; kk++ {
				av := ad[i*k+kk]
				if av == 0 {
					continue
				}
				row := bd[kk*n : (kk+1)*n]
				for j, bv := range row {
					cd[i*n+j] += av * bv
				}
			}
		}
	}
	return result
}

// Transpose swaps the last two dimensions.
func (t *Tensor) Transpose() *Tensor {
	if t.shape.NDim() < 2 {
		panic("transpose requires at least 2D tensor")
	}

	dims := t.shape.Dims()
	dims[len(dims)-1], dims[len(dims)-2] = dims[len(dims)-2], dims[len(dims)-1]
	result := New(NewShape(dims...), t.dtype)

	rows, cols := t.shape.At(-2), t.shape.At(-1)
	for p := 0; p < t.shape.Numel()/(rows*cols); p++ {
		off := p * rows * cols
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				result.data[off+j*rows+i] = t.data[off+i*cols+j]
			}
		}
	}
	return result
}

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	sum := float32(0)
	for _, v := range t.data {
		sum += v
	}
	return sum
}

// AllClose reports whether both tensors share a shape and every pair of
// elements differs by at most tol.
func (t *Tensor) AllClose(other *Tensor, tol float32) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if d := t.data[i] - other.data[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}

// String renders shape and values, e.g. "Tensor[2, 2](1, 2, 3, 4)".
func (t *Tensor) String() string {
	parts := make([]string, len(t.data))
	for i, v := range t.data {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return "Tensor" + t.shape.String() + "(" + strings.Join(parts, ", ") + ")"
}
