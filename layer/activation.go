package layer

import (
	"github.com/fumi-engineer/sequential/tensor"
)

// ReLU applies max(0, x) element-wise.
type ReLU struct {
	lastInput *tensor.Tensor
}

// NewReLU creates a ReLU activation.
func NewReLU() *ReLU { return &ReLU{} }

func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	r.lastInput = input
	return input.ReLU()
}

func (r *ReLU) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if r.lastInput == nil {
		panic("backward called before forward")
	}
	return gradOutput.Zip(r.lastInput, func(g, x float32) float32 {
		if x > 0 {
			return g
		}
		return 0
	})
}

func (r *ReLU) Parameters() []*tensor.Tensor { return nil }

func (r *ReLU) Name() string { return "ReLU" }

// SiLU applies x * sigmoid(x) element-wise.
type SiLU struct {
	lastInput *tensor.Tensor
}

// NewSiLU creates a SiLU activation.
func NewSiLU() *SiLU { return &SiLU{} }

func (s *SiLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	s.lastInput = input
	return input.SiLU()
}

func (s *SiLU) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if s.lastInput == nil {
		panic("backward called before forward")
	}
	d := s.lastInput.Sigmoid().Zip(s.lastInput, func(sig, x float32) float32 {
		return sig * (1 + x*(1-sig))
	})
	return gradOutput.Mul(d)
}

func (s *SiLU) Parameters() []*tensor.Tensor { return nil }

func (s *SiLU) Name() string { return "SiLU" }

// Softmax normalizes the last dimension into a probability distribution.
type Softmax struct {
	lastOutput *tensor.Tensor
}

// NewSoftmax creates a softmax over the last dimension.
func NewSoftmax() *Softmax { return &Softmax{} }

func (s *Softmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	s.lastOutput = input.Softmax()
	return s.lastOutput
}

// Backward applies the softmax Jacobian row by row:
// dx_i = y_i * (g_i - sum_j g_j y_j).
func (s *Softmax) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if s.lastOutput == nil {
		panic("backward called before forward")
	}
	n := s.lastOutput.Shape().At(-1)
	gradInput := tensor.New(gradOutput.Shape(), tensor.F32)
	g, y, dx := gradOutput.DataPtr(), s.lastOutput.DataPtr(), gradInput.DataPtr()

	for v := 0; v < s.lastOutput.Shape().Leading(); v++ {
		off := v * n
		dot := float32(0)
		for i := 0; i < n; i++ {
			dot += g[off+i] * y[off+i]
		}
		for i := 0; i < n; i++ {
			dx[off+i] = y[off+i] * (g[off+i] - dot)
		}
	}
	return gradInput
}

func (s *Softmax) Parameters() []*tensor.Tensor { return nil }

func (s *Softmax) Name() string { return "Softmax" }
