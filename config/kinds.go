package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"

	"github.com/fumi-engineer/sequential/layer"
)

// kindFunc decodes one layer block body and builds the layer it describes.
type kindFunc func(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error)

var kinds = map[string]kindFunc{
	"linear":    buildLinear,
	"rmsnorm":   buildRMSNorm,
	"swiglu":    buildSwiGLU,
	"embedding": buildEmbedding,
	"scale":     buildScale,
	"shift":     buildShift,
	"relu":      bare(func() layer.Layer { return layer.NewReLU() }),
	"silu":      bare(func() layer.Layer { return layer.NewSiLU() }),
	"softmax":   bare(func() layer.Layer { return layer.NewSoftmax() }),
	"identity":  bare(layer.Identity),
}

type linearArgs struct {
	In   int   `hcl:"in"`
	Out  int   `hcl:"out"`
	Bias *bool `hcl:"bias,optional"`
}

type rmsNormArgs struct {
	Dim int      `hcl:"dim"`
	Eps *float64 `hcl:"eps,optional"`
}

type swiGLUArgs struct {
	Dim int `hcl:"dim"`
	FFN int `hcl:"ffn"`
}

type embeddingArgs struct {
	Vocab int `hcl:"vocab"`
	Dim   int `hcl:"dim"`
}

type scaleArgs struct {
	Factor float64 `hcl:"factor"`
}

type shiftArgs struct {
	Offset float64 `hcl:"offset"`
}

type noArgs struct{}

func decodeArgs(body hcl.Body, eval *hcl.EvalContext, args any) error {
	if diags := gohcl.DecodeBody(body, eval, args); diags.HasErrors() {
		return diags
	}
	return nil
}

func positive(fields map[string]int) error {
	for name, v := range fields {
		if v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidLayer, name, v)
		}
	}
	return nil
}

func buildLinear(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args linearArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	if err := positive(map[string]int{"in": args.In, "out": args.Out}); err != nil {
		return nil, err
	}
	bias := true
	if args.Bias != nil {
		bias = *args.Bias
	}
	return layer.NewLinear(args.In, args.Out, bias), nil
}

func buildRMSNorm(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args rmsNormArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	if err := positive(map[string]int{"dim": args.Dim}); err != nil {
		return nil, err
	}
	eps := float32(1e-6)
	if args.Eps != nil {
		eps = float32(*args.Eps)
	}
	return layer.NewRMSNorm(args.Dim, eps), nil
}

func buildSwiGLU(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args swiGLUArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	if err := positive(map[string]int{"dim": args.Dim, "ffn": args.FFN}); err != nil {
		return nil, err
	}
	return layer.NewSwiGLU(args.Dim, args.FFN), nil
}

func buildEmbedding(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args embeddingArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	if err := positive(map[string]int{"vocab": args.Vocab, "dim": args.Dim}); err != nil {
		return nil, err
	}
	return layer.NewEmbedding(args.Vocab, args.Dim), nil
}

func buildScale(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args scaleArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	return layer.NewScale(float32(args.Factor)), nil
}

func buildShift(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
	var args shiftArgs
	if err := decodeArgs(body, eval, &args); err != nil {
		return nil, err
	}
	return layer.NewShift(float32(args.Offset)), nil
}

// bare adapts a constructor for a layer that takes no arguments. Any
// attribute in the block is an error.
func bare(newLayer func() layer.Layer) kindFunc {
	return func(body hcl.Body, eval *hcl.EvalContext) (layer.Layer, error) {
		if err := decodeArgs(body, eval, &noArgs{}); err != nil {
			return nil, err
		}
		return newLayer(), nil
	}
}
