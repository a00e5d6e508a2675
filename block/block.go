// Package block wraps a layer with a display name and a metadata record so
// tooling can inspect how a model was put together.
package block

import (
	"github.com/fumi-engineer/sequential/layer"
	"github.com/fumi-engineer/sequential/tensor"
)

// Record holds the construction arguments of a block.
type Record map[string]any

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

// Block is a named, metadata-tagged layer. It forwards, backwards and
// reports parameters exactly like the layer it wraps.
type Block struct {
	fn     layer.Layer
	name   string
	record Record
	id     string
}

// New wraps fn under name with the given record. The record is stored as
// given and must not be mutated afterwards.
func New(fn layer.Layer, name string, rec Record) *Block {
	if fn == nil {
		panic("block: nil layer")
	}
	return &Block{fn: fn, name: name, record: rec}
}

func (b *Block) Forward(input *tensor.Tensor) *tensor.Tensor {
	return b.fn.Forward(input)
}

func (b *Block) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	return b.fn.Backward(gradOutput)
}

func (b *Block) Parameters() []*tensor.Tensor {
	return b.fn.Parameters()
}

// Name returns the display name given at construction.
func (b *Block) Name() string {
	return b.name
}

// Record returns the construction record.
func (b *Block) Record() Record {
	return b.record
}

// ID returns the id assigned by a Registry, or "" when unregistered.
func (b *Block) ID() string {
	return b.id
}

// Unwrap returns the wrapped layer.
func (b *Block) Unwrap() layer.Layer {
	return b.fn
}
