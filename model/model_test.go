package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nn "github.com/fumi-engineer/sequential"
	"github.com/fumi-engineer/sequential/block"
	"github.com/fumi-engineer/sequential/layer"
	"github.com/fumi-engineer/sequential/tensor"
)

func TestConfigPresetsValidate(t *testing.T) {
	require.NoError(t, Tiny().Validate())
	require.NoError(t, Small().Validate())
}

func TestConfigValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"input":      func(c *Config) { c.InputDim = 0 },
		"output":     func(c *Config) { c.OutputDim = -1 },
		"hidden":     func(c *Config) { c.HiddenDims = []int{4, 0} },
		"activation": func(c *Config) { c.Activation = "tanh" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Tiny()
			mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			_, err := MLP(cfg, nil)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

// End-to-end: the MLP maps [batch, in] to [batch, out] and owns exactly the
// parameters the config predicts.
func TestMLPForwardShapeAndParams(t *testing.T) {
	for _, cfg := range []Config{Tiny(), Small()} {
		m, err := MLP(cfg, nil)
		require.NoError(t, err)

		x := tensor.RandnWithStd(tensor.NewShape(3, cfg.InputDim), 1)
		out := m.Forward(x)

		assert.True(t, out.Shape().Equal(tensor.NewShape(3, cfg.OutputDim)), "got %v", out.Shape())
		assert.Equal(t, cfg.TotalParams(), layer.ParamCount(m))
		assert.True(t, m.Backward(tensor.Ones(out.Shape())).Shape().Equal(x.Shape()))
	}
}

// Each hidden stage is its own nested group, so a registry sees one block
// per stage plus the outer model.
func TestMLPNestedStages(t *testing.T) {
	reg := block.NewRegistry()
	cfg := Tiny()

	m, err := MLP(cfg, nn.NewComposer(nn.WithRegistry(reg)))
	require.NoError(t, err)

	assert.Equal(t, len(cfg.HiddenDims)+1, reg.Len())
	spec, ok := nn.LayersOf(m)
	require.True(t, ok)
	require.Len(t, spec, len(cfg.HiddenDims)+1)
	assert.IsType(t, nn.Group{}, spec[0])
	assert.IsType(t, nn.Leaf{}, spec[len(spec)-1])

	summary := nn.Summary(m)
	assert.True(t, strings.HasPrefix(summary, "Sequential [Sequential_2]"))
	assert.Equal(t, 2, strings.Count(summary, "ReLU"))
}

func TestMLPWithoutActivationOrHidden(t *testing.T) {
	cfg := Config{InputDim: 3, OutputDim: 2}

	m, err := MLP(cfg, nil)
	require.NoError(t, err)

	spec, _ := nn.LayersOf(m)
	require.Len(t, spec, 1)
	assert.Equal(t, 3*2, layer.ParamCount(m))
}

func TestTokenClassifier(t *testing.T) {
	cfg := Tiny()

	m, err := TokenClassifier(cfg, nil)
	require.NoError(t, err)

	ids := tensor.FromSlice([]float32{1, 5, 99, 0, 42, 7}, tensor.NewShape(2, 3))
	probs := m.Forward(ids)

	require.True(t, probs.Shape().Equal(tensor.NewShape(2, 3, cfg.OutputDim)))
	data := probs.Data()
	for row := 0; row < 6; row++ {
		sum := float32(0)
		for _, p := range data[row*cfg.OutputDim : (row+1)*cfg.OutputDim] {
			sum += p
		}
		assert.InDelta(t, 1, sum, 1e-5)
	}
	assert.Equal(t, cfg.TokenClassifierParams(), layer.ParamCount(m))
}

func TestTokenClassifierRejects(t *testing.T) {
	cfg := Tiny()
	cfg.HiddenDims = nil
	_, err := TokenClassifier(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cfg = Tiny()
	cfg.VocabSize = 0
	_, err = TokenClassifier(cfg, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
