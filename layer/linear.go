package layer

import (
	"fmt"
	"math"

	"github.com/fumi-engineer/sequential/tensor"
)

// Linear implements a fully connected layer.
type Linear struct {
	weight  *tensor.Tensor // [outFeatures, inFeatures]
	bias    *tensor.Tensor // [outFeatures] or nil
	inFeat  int
	outFeat int

	// Cached for backward
	lastInputShape tensor.Shape
	hasInput       bool
}

// NewLinear creates a linear layer with Kaiming-initialized weights and a
// zero bias when useBias is set.
func NewLinear(inFeatures, outFeatures int, useBias bool) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("linear: features must be positive, got %d -> %d", inFeatures, outFeatures))
	}
	std := float32(math.Sqrt(2.0 / float64(inFeatures)))
	l := &Linear{
		weight:  tensor.RandnWithStd(tensor.NewShape(outFeatures, inFeatures), std),
		inFeat:  inFeatures,
		outFeat: outFeatures,
	}
	if useBias {
		l.bias = tensor.Zeros(tensor.NewShape(outFeatures))
	}
	return l
}

// NewLinearFrom creates a linear layer with the given weight [out, in] and
// optional bias [out]. The tensors are used as-is, not copied.
func NewLinearFrom(weight, bias *tensor.Tensor) *Linear {
	if weight.Shape().NDim() != 2 {
		panic(fmt.Sprintf("linear: weight must be 2D, got %v", weight.Shape()))
	}
	out, in := weight.Shape().At(0), weight.Shape().At(1)
	if bias != nil && !bias.Shape().Equal(tensor.NewShape(out)) {
		panic(fmt.Sprintf("linear: bias shape %v does not match %d outputs", bias.Shape(), out))
	}
	return &Linear{weight: weight, bias: bias, inFeat: in, outFeat: out}
}

// Forward computes y = xW^T + b.
// Input: [..., inFeatures]
// Output: [..., outFeatures]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if shape.At(-1) != l.inFeat {
		panic(fmt.Sprintf("linear: expected last dim %d, got input %v", l.inFeat, shape))
	}
	l.lastInputShape, l.hasInput = shape, true

	rows := shape.Leading()
	flat := input.Reshape(tensor.NewShape(rows, l.inFeat))
	output := tensor.Matmul(flat, l.weight.Transpose())

	if l.bias != nil {
		out, b := output.DataPtr(), l.bias.DataPtr()
		for r := 0; r < rows; r++ {
			row := out[r*l.outFeat : (r+1)*l.outFeat]
			for i := range row {
				row[i] += b[i]
			}
		}
	}

	return output.Reshape(shape.WithLast(l.outFeat))
}

// Backward returns gradInput = gradOutput @ W.
func (l *Linear) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	if !l.hasInput {
		panic("backward called before forward")
	}
	rows := gradOutput.Shape().Leading()
	flat := gradOutput.Reshape(tensor.NewShape(rows, l.outFeat))
	return tensor.Matmul(flat, l.weight).Reshape(l.lastInputShape)
}

// Parameters returns weight and, when present, bias.
func (l *Linear) Parameters() []*tensor.Tensor {
	if l.bias != nil {
		return []*tensor.Tensor{l.weight, l.bias}
	}
	return []*tensor.Tensor{l.weight}
}

// Name describes the projection, e.g. "Linear(4->8)".
func (l *Linear) Name() string {
	return fmt.Sprintf("Linear(%d->%d)", l.inFeat, l.outFeat)
}

// InFeatures returns input features.
func (l *Linear) InFeatures() int {
	return l.inFeat
}

// OutFeatures returns output features.
func (l *Linear) OutFeatures() int {
	return l.outFeat
}
