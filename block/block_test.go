package block

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumi-engineer/sequential/layer"
	"github.com/fumi-engineer/sequential/tensor"
)

// A block changes nothing about the forward, backward or parameter view of
// the layer it wraps.
func TestBlockDelegates(t *testing.T) {
	inner := layer.NewLinear(3, 2, true)
	rec := Record{"layers": []string{"a", "b"}}
	b := New(inner, "Dense", rec)
	x := tensor.FromSlice([]float32{1, 2, 3}, tensor.NewShape(1, 3))

	assert.Equal(t, inner.Forward(x).Data(), b.Forward(x).Data())
	assert.Equal(t, inner.Backward(tensor.Ones(tensor.NewShape(1, 2))).Data(),
		b.Backward(tensor.Ones(tensor.NewShape(1, 2))).Data())
	assert.Equal(t, inner.Parameters(), b.Parameters())
	assert.Equal(t, "Dense", b.Name())
	assert.Equal(t, "Dense", layer.NameOf(b))
	assert.Same(t, inner, b.Unwrap())
	assert.Empty(t, b.ID())

	got, ok := b.Record().Get("layers")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, got)
	_, ok = b.Record().Get("missing")
	assert.False(t, ok)
}

func TestNewNilPanics(t *testing.T) {
	assert.Panics(t, func() { New(nil, "x", nil) })
}

func TestRegistryAssignsUniqueIDs(t *testing.T) {
	r := NewRegistry()
	a := New(layer.Identity(), "Sequential", nil)
	b := New(layer.Identity(), "Sequential", nil)
	c := New(layer.Identity(), "Dense", nil)

	for _, blk := range []*Block{a, b, c} {
		_, err := r.Register(blk)
		require.NoError(t, err)
	}

	assert.Equal(t, "Sequential", a.ID())
	assert.Equal(t, "Sequential_1", b.ID())
	assert.Equal(t, "Dense", c.ID())
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []*Block{a, b, c}, r.Blocks())

	found, ok := r.Lookup("Sequential_1")
	require.True(t, ok)
	assert.Same(t, b, found)
	_, ok = r.Lookup("Sequential_2")
	assert.False(t, ok)
}

// A block literally named like a generated id does not get clobbered.
func TestRegistrySkipsTakenIDs(t *testing.T) {
	r := NewRegistry()
	manual := New(layer.Identity(), "Sequential_1", nil)
	first := New(layer.Identity(), "Sequential", nil)
	second := New(layer.Identity(), "Sequential", nil)

	for _, blk := range []*Block{manual, first, second} {
		_, err := r.Register(blk)
		require.NoError(t, err)
	}

	assert.Equal(t, "Sequential_1", manual.ID())
	assert.Equal(t, "Sequential", first.ID())
	assert.Equal(t, "Sequential_2", second.ID())
}

func TestRegistryRejectsDoubleRegistration(t *testing.T) {
	r := NewRegistry()
	b := New(layer.Identity(), "Sequential", nil)

	_, err := r.Register(b)
	require.NoError(t, err)
	_, err = r.Register(b)
	require.ErrorIs(t, err, ErrAlreadyRegistered)

	_, err = NewRegistry().Register(b)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

// Separate registries never share state, and Reset starts numbering over.
func TestRegistryIsolationAndReset(t *testing.T) {
	r1, r2 := NewRegistry(), NewRegistry()
	_, err := r1.Register(New(layer.Identity(), "Sequential", nil))
	require.NoError(t, err)

	assert.Equal(t, 1, r1.Len())
	assert.Equal(t, 0, r2.Len())

	r1.Reset()
	assert.Equal(t, 0, r1.Len())
	assert.Empty(t, r1.Blocks())

	fresh := New(layer.Identity(), "Sequential", nil)
	_, err = r1.Register(fresh)
	require.NoError(t, err)
	assert.Equal(t, "Sequential", fresh.ID())
}

func TestRegistryConcurrentRegister(t *testing.T) {
	r := NewRegistry()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Register(New(layer.Identity(), "Sequential", nil))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, n, r.Len())
	seen := make(map[string]bool, n)
	for _, b := range r.Blocks() {
		assert.False(t, seen[b.ID()], "duplicate id %s", b.ID())
		seen[b.ID()] = true
	}
	for i := 1; i < n; i++ {
		assert.True(t, seen[fmt.Sprintf("Sequential_%d", i)])
	}
}

func TestRegistryLogsAtVerbosityOne(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, prefix+" "+args)
	}, funcr.Options{Verbosity: 1})

	r := NewRegistry(WithLogger(log))
	_, err := r.Register(New(layer.Identity(), "Sequential", nil))
	require.NoError(t, err)

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "registry")
	assert.Contains(t, lines[0], `"id"="Sequential"`)
}
