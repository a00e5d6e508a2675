package model

import (
	"fmt"

	nn "github.com/fumi-engineer/sequential"
	"github.com/fumi-engineer/sequential/layer"
)

// NewActivation returns a fresh activation layer by name. The empty name
// means no activation and yields a nil layer.
func NewActivation(name string) (layer.Layer, error) {
	switch name {
	case "":
		return nil, nil
	case "relu":
		return layer.NewReLU(), nil
	case "silu":
		return layer.NewSiLU(), nil
	default:
		return nil, fmt.Errorf("%w: unknown activation %q", ErrInvalidConfig, name)
	}
}

// MLPSpec lays out a multi-layer perceptron. Each hidden stage is its own
// nested group:
//
//	[[Linear, RMSNorm?, act?] x len(HiddenDims), Linear]
func MLPSpec(cfg Config) (nn.Group, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	spec := make(nn.Group, 0, len(cfg.HiddenDims)+1)
	prev := cfg.InputDim
	for _, h := range cfg.HiddenDims {
		stage := nn.Layers(layer.NewLinear(prev, h, cfg.Bias))
		if cfg.Norm {
			stage = append(stage, nn.Leaf{Layer: layer.NewRMSNorm(h, cfg.NormEps)})
		}
		act, _ := NewActivation(cfg.Activation)
		if act != nil {
			stage = append(stage, nn.Leaf{Layer: act})
		}
		spec = append(spec, stage)
		prev = h
	}
	return append(spec, nn.Leaf{Layer: layer.NewLinear(prev, cfg.OutputDim, cfg.Bias)}), nil
}

// MLP builds a multi-layer perceptron through c. A nil composer registers
// nothing.
// Input: [..., InputDim]
// Output: [..., OutputDim]
func MLP(cfg Config, c *nn.Composer) (layer.Layer, error) {
	spec, err := MLPSpec(cfg)
	if err != nil {
		return nil, err
	}
	return composer(c).Sequential(spec)
}

// TokenClassifier builds a per-token classifier:
//
//	Embedding -> RMSNorm -> SwiGLU -> Linear -> Softmax
//
// The model width is HiddenDims[0].
// Input: [batch, seq_len] token IDs
// Output: [batch, seq_len, OutputDim] class probabilities
func TokenClassifier(cfg Config, c *nn.Composer) (layer.Layer, error) {
	if len(cfg.HiddenDims) == 0 || cfg.HiddenDims[0] <= 0 {
		return nil, fmt.Errorf("%w: token classifier needs a positive hidden dim", ErrInvalidConfig)
	}
	if cfg.VocabSize <= 0 || cfg.FFNDim <= 0 || cfg.OutputDim <= 0 {
		return nil, fmt.Errorf("%w: vocab %d, ffn %d, outputs %d",
			ErrInvalidConfig, cfg.VocabSize, cfg.FFNDim, cfg.OutputDim)
	}

	d := cfg.HiddenDims[0]
	return composer(c).Sequential(nn.Layers(
		layer.NewEmbedding(cfg.VocabSize, d),
		layer.NewRMSNorm(d, cfg.NormEps),
		layer.NewSwiGLU(d, cfg.FFNDim),
		layer.NewLinear(d, cfg.OutputDim, cfg.Bias),
		layer.NewSoftmax(),
	))
}

func composer(c *nn.Composer) *nn.Composer {
	if c == nil {
		return nn.NewComposer()
	}
	return c
}
