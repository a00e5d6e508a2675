// Package layer provides the Layer contract, the operator that chains two
// layers into one, and a small set of leaf layers to chain.
package layer

import (
	"fmt"

	"github.com/fumi-engineer/sequential/tensor"
)

// Layer is the interface for all neural network layers.
type Layer interface {
	// Forward performs forward pass.
	Forward(input *tensor.Tensor) *tensor.Tensor
	// Backward performs backward pass.
	Backward(gradOutput *tensor.Tensor) *tensor.Tensor
	// Parameters returns the layer's trainable parameters.
	Parameters() []*tensor.Tensor
}

// Named is implemented by layers that describe themselves for printing.
type Named interface {
	Name() string
}

// NameOf returns l's display name, falling back to its Go type.
func NameOf(l Layer) string {
	if n, ok := l.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", l)
}

// ParamCount returns the number of scalar parameters held by l.
func ParamCount(l Layer) int {
	n := 0
	for _, p := range l.Parameters() {
		n += p.Shape().Numel()
	}
	return n
}
