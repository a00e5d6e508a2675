package layer

import (
	"github.com/fumi-engineer/sequential/tensor"
)

// Func adapts plain functions to the Layer interface. A nil backward passes
// gradients through unchanged.
type Func struct {
	name     string
	forward  func(*tensor.Tensor) *tensor.Tensor
	backward func(*tensor.Tensor) *tensor.Tensor
}

// NewFunc wraps forward (and optionally backward) under a display name.
func NewFunc(name string, forward, backward func(*tensor.Tensor) *tensor.Tensor) *Func {
	if forward == nil {
		panic("func layer: nil forward")
	}
	return &Func{name: name, forward: forward, backward: backward}
}

func (f *Func) Forward(input *tensor.Tensor) *tensor.Tensor { return f.forward(input) }

func (f *Func) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if f.backward == nil {
		return gradOutput
	}
	return f.backward(gradOutput)
}

func (f *Func) Parameters() []*tensor.Tensor { return nil }

func (f *Func) Name() string { return f.name }
