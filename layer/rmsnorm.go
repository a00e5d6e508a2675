package layer

import (
	"fmt"
	"math"

	"github.com/fumi-engineer/sequential/tensor"
)

// RMSNorm implements Root Mean Square Layer Normalization.
//
//	y = x / sqrt(mean(x²) + eps) * weight
type RMSNorm struct {
	weight *tensor.Tensor
	eps    float32
	dim    int

	// Cached for backward
	lastInput *tensor.Tensor
	lastRMS   []float32
}

// NewRMSNorm creates a new RMSNorm layer with unit weights.
func NewRMSNorm(dim int, eps float32) *RMSNorm {
	return &RMSNorm{
		weight: tensor.Ones(tensor.NewShape(dim)),
		eps:    eps,
		dim:    dim,
	}
}

// Forward applies RMS normalization.
// Input: [..., dim]
// Output: [..., dim]
func (r *RMSNorm) Forward(input *tensor.Tensor) *tensor.Tensor {
	if input.Shape().At(-1) != r.dim {
		panic(fmt.Sprintf("rmsnorm: expected last dim %d, got input %v", r.dim, input.Shape()))
	}
	r.lastInput = input.Clone()

	vectors := input.Shape().Leading()
	r.lastRMS = make([]float32, vectors)
	output := tensor.New(input.Shape(), tensor.F32)
	in, out, w := input.DataPtr(), output.DataPtr(), r.weight.DataPtr()

	for v := 0; v < vectors; v++ {
		x := in[v*r.dim : (v+1)*r.dim]
		sumSq := float32(0)
		for _, xi := range x {
			sumSq += xi * xi
		}
		rms := float32(math.Sqrt(float64(sumSq/float32(r.dim) + r.eps)))
		r.lastRMS[v] = rms

		y := out[v*r.dim : (v+1)*r.dim]
		for i, xi := range x {
			y[i] = xi / rms * w[i]
		}
	}

	return output
}

// Backward computes the input gradient of RMSNorm.
func (r *RMSNorm) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if r.lastInput == nil {
		panic("backward called before forward")
	}

	gradInput := tensor.New(gradOutput.Shape(), tensor.F32)
	g, gi := gradOutput.DataPtr(), gradInput.DataPtr()
	in, w := r.lastInput.DataPtr(), r.weight.DataPtr()
	n := float32(r.dim)

	for v := range r.lastRMS {
		off := v * r.dim
		rms := r.lastRMS[v]
		rms3 := rms * rms * rms

		dot := float32(0)
		for i := 0; i < r.dim; i++ {
			dot += g[off+i] * w[i] * in[off+i]
		}
		for i := 0; i < r.dim; i++ {
			gi[off+i] = g[off+i]*w[i]/rms - in[off+i]*dot/(n*rms3)
		}
	}

	return gradInput
}

// Parameters returns the layer's weight.
func (r *RMSNorm) Parameters() []*tensor.Tensor {
	return []*tensor.Tensor{r.weight}
}

func (r *RMSNorm) Name() string {
	return fmt.Sprintf("RMSNorm(%d)", r.dim)
}
