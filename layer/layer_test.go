package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumi-engineer/sequential/tensor"
)

// Compose runs its left operand first: (x*2)+10 differs from (x+10)*2.
func TestComposeOrder(t *testing.T) {
	double, addTen := NewScale(2), NewShift(10)
	x := tensor.Vector(1)

	assert.Equal(t, float32(12), Compose(double, addTen).Forward(x).At(0))
	assert.Equal(t, float32(22), Compose(addTen, double).Forward(x).At(0))
}

// Backward through a composition visits operands in reverse order.
func TestComposeBackwardReverses(t *testing.T) {
	var calls []string
	trace := func(name string) *Func {
		fwd := func(x *tensor.Tensor) *tensor.Tensor {
			calls = append(calls, name+".fwd")
			return x
		}
		bwd := func(g *tensor.Tensor) *tensor.Tensor {
			calls = append(calls, name+".bwd")
			return g
		}
		return NewFunc(name, fwd, bwd)
	}
	c := Compose(Compose(trace("a"), trace("b")), trace("c"))

	c.Forward(tensor.Vector(1))
	c.Backward(tensor.Vector(1))

	assert.Equal(t, []string{"a.fwd", "b.fwd", "c.fwd", "c.bwd", "b.bwd", "a.bwd"}, calls)
}

func TestComposeParametersAndName(t *testing.T) {
	l1 := NewLinear(2, 3, true)
	l2 := NewLinear(3, 1, false)
	c := Compose(l1, l2)

	params := c.Parameters()
	require.Len(t, params, 3)
	assert.Same(t, l1.Parameters()[0], params[0])
	assert.Same(t, l1.Parameters()[1], params[1])
	assert.Same(t, l2.Parameters()[0], params[2])
	assert.Equal(t, 2*3+3+3, ParamCount(c))
	assert.Equal(t, "Linear(2->3) >> Linear(3->1)", NameOf(c))
}

func TestComposeNilPanics(t *testing.T) {
	assert.Panics(t, func() { Compose(nil, Identity()) })
	assert.Panics(t, func() { Compose(Identity(), nil) })
}

// Identity is a left and right unit for Compose.
func TestIdentityIsUnit(t *testing.T) {
	x := tensor.Vector(3, -4)
	f := NewScale(3)

	assert.Same(t, x, Identity().Forward(x))
	assert.Same(t, x, Identity().Backward(x))
	assert.Empty(t, Identity().Parameters())
	assert.Equal(t, f.Forward(x).Data(), Compose(Identity(), f).Forward(x).Data())
	assert.Equal(t, f.Forward(x).Data(), Compose(f, Identity()).Forward(x).Data())
}

// Known-weight check of y = x @ W^T + b on batched input.
func TestLinearForwardKnownWeights(t *testing.T) {
	w := tensor.FromSlice([]float32{
		1, 0,
		0, 1,
		1, 1,
	}, tensor.NewShape(3, 2))
	b := tensor.Vector(0, 0, 10)
	l := NewLinearFrom(w, b)

	out := l.Forward(tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.NewShape(2, 2)))

	require.True(t, out.Shape().Equal(tensor.NewShape(2, 3)))
	assert.Equal(t, []float32{1, 2, 13, 3, 4, 17}, out.Data())

	grad := l.Backward(tensor.Ones(tensor.NewShape(2, 3)))
	assert.Equal(t, []float32{2, 2, 2, 2}, grad.Data())
}

func TestLinearRankOneAndMisuse(t *testing.T) {
	l := NewLinear(4, 2, false)

	out := l.Forward(tensor.Vector(1, 2, 3, 4))
	assert.True(t, out.Shape().Equal(tensor.NewShape(2)))

	assert.Panics(t, func() { l.Forward(tensor.Vector(1, 2)) })
	assert.Panics(t, func() { NewLinear(4, 2, false).Backward(tensor.Vector(1, 1)) })
	assert.Panics(t, func() { NewLinear(0, 2, false) })
	assert.Panics(t, func() { NewLinearFrom(tensor.Vector(1), nil) })
}

func TestRMSNormUnitRMS(t *testing.T) {
	n := NewRMSNorm(4, 0)
	out := n.Forward(tensor.FromSlice([]float32{2, 2, 2, 2, 1, -1, 1, -1}, tensor.NewShape(2, 4)))

	assert.InDeltaSlice(t, []float32{1, 1, 1, 1, 1, -1, 1, -1}, out.Data(), 1e-6)
	assert.Equal(t, "RMSNorm(4)", n.Name())
}

func TestEmbeddingLookup(t *testing.T) {
	e := NewEmbedding(5, 3)
	ids := tensor.FromSlice([]float32{4, 0}, tensor.NewShape(1, 2))

	out := e.Forward(ids)
	require.True(t, out.Shape().Equal(tensor.NewShape(1, 2, 3)))
	row4 := e.Parameters()[0].Data()[12:15]
	assert.Equal(t, row4, out.Data()[:3])

	grad := e.Backward(tensor.Ones(out.Shape()))
	assert.True(t, grad.Shape().Equal(ids.Shape()))
	assert.Panics(t, func() { e.Forward(tensor.Vector(5)) })
}

func TestActivationsForward(t *testing.T) {
	x := tensor.Vector(-2, 0, 3)

	assert.Equal(t, []float32{0, 0, 3}, NewReLU().Forward(x).Data())
	assert.InDelta(t, 0, NewSiLU().Forward(x).At(1), 1e-6)
	assert.InDelta(t, 1, NewSoftmax().Forward(x).Sum(), 1e-5)
}

// Finite-difference check of every analytic backward pass against
// L(x) = sum(Forward(x) * r).
func TestBackwardMatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		name  string
		layer Layer
		dim   int
	}{
		{"relu", NewReLU(), 4},
		{"silu", NewSiLU(), 4},
		{"softmax", NewSoftmax(), 4},
		{"rmsnorm", NewRMSNorm(4, 1e-6), 4},
		{"linear", NewLinear(4, 3, true), 4},
		{"swiglu", NewSwiGLU(4, 6), 4},
		{"scale", NewScale(-1.5), 4},
		{"shift", NewShift(7), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x := tensor.FromSlice([]float32{0.3, -0.7, 1.1, 0.45}, tensor.NewShape(1, tc.dim))
			out := tc.layer.Forward(x)
			r := tensor.RandnWithStd(out.Shape(), 1)
			analytic := tc.layer.Backward(r).Data()

			loss := func(in *tensor.Tensor) float64 {
				return float64(tc.layer.Forward(in).Mul(r).Sum())
			}
			const h = 1e-2
			for i := 0; i < tc.dim; i++ {
				plus, minus := x.Clone(), x.Clone()
				plus.DataPtr()[i] += h
				minus.DataPtr()[i] -= h
				numeric := (loss(plus) - loss(minus)) / (2 * h)
				assert.InDelta(t, numeric, analytic[i], 2e-2, "d/dx[%d]", i)
			}
		})
	}
}

func TestFuncLayer(t *testing.T) {
	neg := NewFunc("neg", func(x *tensor.Tensor) *tensor.Tensor { return x.Scale(-1) }, nil)
	g := tensor.Vector(5)

	assert.Equal(t, float32(-2), neg.Forward(tensor.Vector(2)).At(0))
	assert.Same(t, g, neg.Backward(g))
	assert.Equal(t, "neg", NameOf(neg))
	assert.Panics(t, func() { NewFunc("bad", nil, nil) })
}

type bareLayer struct{}

func (bareLayer) Forward(x *tensor.Tensor) *tensor.Tensor { return x }

func (bareLayer) Backward(g *tensor.Tensor) *tensor.Tensor { return g }

func (bareLayer) Parameters() []*tensor.Tensor { return nil }

// Layers without a Name method print as their Go type.
func TestNameOfFallsBackToType(t *testing.T) {
	assert.Equal(t, "layer.bareLayer", NameOf(bareLayer{}))
}
