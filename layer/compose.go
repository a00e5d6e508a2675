package layer

import (
	"github.com/fumi-engineer/sequential/tensor"
)

// Compose chains f and g: the result forwards through f then g, and
// backwards through g then f.
//
//	Compose(f, g).Forward(x) == g.Forward(f.Forward(x))
func Compose(f, g Layer) Layer {
	if f == nil || g == nil {
		panic("compose: nil layer operand")
	}
	return &composed{first: f, second: g}
}

type composed struct {
	first, second Layer
}

func (c *composed) Forward(input *tensor.Tensor) *tensor.Tensor {
	return c.second.Forward(c.first.Forward(input))
}

func (c *composed) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	return c.first.Backward(c.second.Backward(gradOutput))
}

// Parameters returns f's parameters followed by g's.
func (c *composed) Parameters() []*tensor.Tensor {
	fp, gp := c.first.Parameters(), c.second.Parameters()
	params := make([]*tensor.Tensor, 0, len(fp)+len(gp))
	params = append(params, fp...)
	return append(params, gp...)
}

func (c *composed) Name() string {
	return NameOf(c.first) + " >> " + NameOf(c.second)
}

// Identity returns a layer that passes tensors through unchanged in both
// directions and holds no parameters.
func Identity() Layer {
	return identity{}
}

type identity struct{}

func (identity) Forward(input *tensor.Tensor) *tensor.Tensor { return input }

func (identity) Backward(gradOutput *tensor.Tensor) *tensor.Tensor { return gradOutput }

func (identity) Parameters() []*tensor.Tensor { return nil }

func (identity) Name() string { return "Identity" }
