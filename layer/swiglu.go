package layer

import (
	"fmt"

	"github.com/fumi-engineer/sequential/tensor"
)

// SwiGLU implements the gated feed-forward network.
//
//	SwiGLU(x) = (SiLU(xW_gate) * xW_up) @ W_down
type SwiGLU struct {
	wGate *Linear // [hiddenDim -> ffnDim]
	wUp   *Linear // [hiddenDim -> ffnDim]
	wDown *Linear // [ffnDim -> hiddenDim]

	hiddenDim int
	ffnDim    int

	// Cached for backward
	lastGatePre *tensor.Tensor
	lastGate    *tensor.Tensor
	lastUp      *tensor.Tensor
}

// NewSwiGLU creates a new SwiGLU layer.
func NewSwiGLU(hiddenDim, ffnDim int) *SwiGLU {
	return &SwiGLU{
		wGate:     NewLinear(hiddenDim, ffnDim, false),
		wUp:       NewLinear(hiddenDim, ffnDim, false),
		wDown:     NewLinear(ffnDim, hiddenDim, false),
		hiddenDim: hiddenDim,
		ffnDim:    ffnDim,
	}
}

// Forward performs SwiGLU forward pass.
// Input: [..., hiddenDim]
// Output: [..., hiddenDim]
func (s *SwiGLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	s.lastGatePre = s.wGate.Forward(input)
	s.lastGate = s.lastGatePre.SiLU()
	s.lastUp = s.wUp.Forward(input)

	return s.wDown.Forward(s.lastGate.Mul(s.lastUp))
}

// Backward computes the input gradient, differentiating through SiLU:
// d/dz SiLU(z) = sigmoid(z) * (1 + z * (1 - sigmoid(z))).
func (s *SwiGLU) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if s.lastGatePre == nil {
		panic("backward called before forward")
	}
	gradHidden := s.wDown.Backward(gradOutput)

	gradUp := gradHidden.Mul(s.lastGate)
	dSiLU := s.lastGatePre.Sigmoid().Zip(s.lastGatePre, func(sig, z float32) float32 {
		return sig * (1 + z*(1-sig))
	})
	gradGatePre := gradHidden.Mul(s.lastUp).Mul(dSiLU)

	return s.wGate.Backward(gradGatePre).Add(s.wUp.Backward(gradUp))
}

// Parameters returns gate, up and down projection weights.
func (s *SwiGLU) Parameters() []*tensor.Tensor {
	params := make([]*tensor.Tensor, 0, 3)
	params = append(params, s.wGate.Parameters()...)
	params = append(params, s.wUp.Parameters()...)
	return append(params, s.wDown.Parameters()...)
}

func (s *SwiGLU) Name() string {
	return fmt.Sprintf("SwiGLU(%d, ffn=%d)", s.hiddenDim, s.ffnDim)
}
