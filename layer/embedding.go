package layer

import (
	"fmt"
	"math"

	"github.com/fumi-engineer/sequential/tensor"
)

// Embedding implements token embedding lookup.
type Embedding struct {
	weight    *tensor.Tensor
	vocabSize int
	embedDim  int
}

// NewEmbedding creates an embedding table initialized with N(0, 1/embedDim).
func NewEmbedding(vocabSize, embedDim int) *Embedding {
	std := float32(1.0 / math.Sqrt(float64(embedDim)))
	return &Embedding{
		weight:    tensor.RandnWithStd(tensor.NewShape(vocabSize, embedDim), std),
		vocabSize: vocabSize,
		embedDim:  embedDim,
	}
}

// Forward looks up one row per token ID.
// Input: [...] token IDs stored as float32
// Output: [..., embed_dim]
func (e *Embedding) Forward(input *tensor.Tensor) *tensor.Tensor {
	ids := input.DataPtr()
	dims := append(input.Shape().Dims(), e.embedDim)
	output := tensor.New(tensor.NewShape(dims...), tensor.F32)
	out, w := output.DataPtr(), e.weight.DataPtr()

	for i, raw := range ids {
		id := int(raw)
		if id < 0 || id >= e.vocabSize {
			panic(fmt.Sprintf("embedding: token ID %d out of range [0, %d)", id, e.vocabSize))
		}
		copy(out[i*e.embedDim:(i+1)*e.embedDim], w[id*e.embedDim:(id+1)*e.embedDim])
	}

	return output
}

// Backward returns a zero gradient shaped like the token IDs; discrete
// inputs carry no gradient.
func (e *Embedding) Backward(gradOutput *tensor.Tensor) *tensor.Tensor {
	dims := gradOutput.Shape().Dims()
	return tensor.New(tensor.NewShape(dims[:len(dims)-1]...), tensor.F32)
}

// Parameters returns the embedding weight.
func (e *Embedding) Parameters() []*tensor.Tensor {
	return []*tensor.Tensor{e.weight}
}

func (e *Embedding) Name() string {
	return fmt.Sprintf("Embedding(%d, %d)", e.vocabSize, e.embedDim)
}

// VocabSize returns the vocabulary size.
func (e *Embedding) VocabSize() int {
	return e.vocabSize
}

// EmbedDim returns the embedding dimension.
func (e *Embedding) EmbedDim() int {
	return e.embedDim
}
