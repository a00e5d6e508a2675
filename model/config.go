// Package model provides prebuilt sequential models.
package model

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid model config")

// Config holds the model configuration.
type Config struct {
	InputDim   int     // Input features of the MLP (8)
	HiddenDims []int   // Width of each hidden stage ([16, 16])
	OutputDim  int     // Output features or classes (4)
	Activation string  // Hidden activation: "relu", "silu" or "" for none
	Norm       bool    // RMSNorm after each hidden projection
	Bias       bool    // Bias on every Linear
	NormEps    float32 // RMSNorm epsilon (1e-6)
	VocabSize  int     // Token vocabulary of TokenClassifier (100)
	FFNDim     int     // SwiGLU intermediate dimension of TokenClassifier (32)
}

// Tiny returns a tiny model configuration for testing.
func Tiny() Config {
	return Config{
		InputDim:   8,
		HiddenDims: []int{16, 16},
		OutputDim:  4,
		Activation: "relu",
		Bias:       true,
		NormEps:    1e-6,
		VocabSize:  100,
		FFNDim:     32,
	}
}

// Small returns a wider, normalized configuration.
func Small() Config {
	return Config{
		InputDim:   64,
		HiddenDims: []int{256, 256, 256},
		OutputDim:  10,
		Activation: "silu",
		Norm:       true,
		Bias:       true,
		NormEps:    1e-6,
		VocabSize:  1000,
		FFNDim:     1024,
	}
}

// Validate reports the first field that cannot produce a model.
func (c Config) Validate() error {
	if c.InputDim <= 0 {
		return fmt.Errorf("%w: input dim %d", ErrInvalidConfig, c.InputDim)
	}
	if c.OutputDim <= 0 {
		return fmt.Errorf("%w: output dim %d", ErrInvalidConfig, c.OutputDim)
	}
	for i, h := range c.HiddenDims {
		if h <= 0 {
			return fmt.Errorf("%w: hidden dim %d at stage %d", ErrInvalidConfig, h, i)
		}
	}
	if _, err := NewActivation(c.Activation); err != nil {
		return err
	}
	return nil
}

// TotalParams counts the parameters MLP(c) allocates.
func (c Config) TotalParams() int {
	total, prev := 0, c.InputDim
	for _, h := range c.HiddenDims {
		total += c.linearParams(prev, h)
		if c.Norm {
			total += h
		}
		prev = h
	}
	return total + c.linearParams(prev, c.OutputDim)
}

// TokenClassifierParams counts the parameters TokenClassifier(c) allocates.
func (c Config) TokenClassifierParams() int {
	d := c.HiddenDims[0]
	embedding := c.VocabSize * d
	norm := d
	swiglu := d * c.FFNDim * 3 // gate, up, down
	return embedding + norm + swiglu + c.linearParams(d, c.OutputDim)
}

func (c Config) linearParams(in, out int) int {
	if c.Bias {
		return in*out + out
	}
	return in * out
}
