package layer

import (
	"fmt"

	"github.com/fumi-engineer/sequential/tensor"
)

// Scale multiplies every element by a constant factor.
type Scale struct {
	factor float32
}

// NewScale creates a layer computing x * factor.
func NewScale(factor float32) *Scale { return &Scale{factor: factor} }

func (s *Scale) Forward(input *tensor.Tensor) *tensor.Tensor { return input.Scale(s.factor) }

func (s *Scale) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	return gradOutput.Scale(s.factor)
}

func (s *Scale) Parameters() []*tensor.Tensor { return nil }

func (s *Scale) Name() string { return fmt.Sprintf("Scale(%g)", s.factor) }

// Shift adds a constant offset to every element.
type Shift struct {
	offset float32
}

// NewShift creates a layer computing x + offset.
func NewShift(offset float32) *Shift { return &Shift{offset: offset} }

func (s *Shift) Forward(input *tensor.Tensor) *tensor.Tensor { return input.AddScalar(s.offset) }

// Backward passes the gradient through; a constant offset has unit slope.
func (s *Shift) Backward(gradOutput *tensor.Tensor) *tensor.Tensor { return gradOutput }

func (s *Shift) Parameters() []*tensor.Tensor { return nil }

func (s *Shift) Name() string { return fmt.Sprintf("Shift(%g)", s.offset) }
