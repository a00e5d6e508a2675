// SPDX-License-Identifier: CC-BY-NC-4.0
// Copyright (c) 2025-2026 fumi-engineer

// Package nn composes layers into sequential models.
//
//	model, err := nn.Sequential(nn.Group{
//		nn.Leaf{Layer: layer.NewLinear(4, 8, true)},
//		nn.Leaf{Layer: layer.NewReLU()},
//		nn.Layers(layer.NewLinear(8, 3, true), layer.NewSoftmax()),
//	})
//
// A Group folds its elements left to right with layer.Compose, seeded with
// layer.Identity, and wraps the result in a block named "Sequential" whose
// record keeps the Group it was built from. Nested groups compose first.
package nn

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/fumi-engineer/sequential/block"
	"github.com/fumi-engineer/sequential/layer"
)

// SequentialName is the display name of every block Sequential produces.
const SequentialName = "Sequential"

// LayersKey is the record key holding the Group a block was built from.
const LayersKey = "layers"

var (
	ErrNilSpec  = errors.New("nil spec")
	ErrNilLayer = errors.New("nil layer")
)

// Composer builds sequential models, optionally registering every block it
// produces in a registry.
type Composer struct {
	registry *block.Registry
	log      logr.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithRegistry registers each produced block in r.
func WithRegistry(r *block.Registry) Option {
	return func(c *Composer) {
		c.registry = r
	}
}

// WithLogger sets the composer's logger.
func WithLogger(log logr.Logger) Option {
	return func(c *Composer) {
		c.log = log
	}
}

// NewComposer creates a Composer. Without options it registers nothing and
// logs nothing.
func NewComposer(opts ...Option) *Composer {
	c := &Composer{log: logr.Discard()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithName("composer")
	return c
}

// Registry returns the registry blocks are recorded in, or nil.
func (c *Composer) Registry() *block.Registry {
	return c.registry
}

// Sequential composes spec. A Leaf is returned as its layer, unwrapped. A
// Group becomes a "Sequential" block equivalent to applying its elements in
// order; an empty Group behaves as the identity. The whole spec is checked
// before anything is built or registered.
func (c *Composer) Sequential(spec Spec) (layer.Layer, error) {
	if err := validate(spec, LayersKey); err != nil {
		return nil, err
	}
	return c.compose(spec, LayersKey)
}

func validate(spec Spec, path string) error {
	switch s := spec.(type) {
	case Leaf:
		if s.Layer == nil {
			return fmt.Errorf("%w at %s", ErrNilLayer, path)
		}
	case Group:
		for i, elem := range s {
			if err := validate(elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w at %s", ErrNilSpec, path)
	}
	return nil
}

func (c *Composer) compose(spec Spec, path string) (layer.Layer, error) {
	g, ok := spec.(Group)
	if !ok {
		return spec.(Leaf).Layer, nil
	}

	fn := layer.Identity()
	for i, elem := range g {
		next, err := c.compose(elem, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		fn = layer.Compose(fn, next)
	}

	b := block.New(fn, SequentialName, block.Record{LayersKey: g})
	if c.registry != nil {
		if _, err := c.registry.Register(b); err != nil {
			return nil, fmt.Errorf("registering %s: %w", path, err)
		}
	}
	c.log.V(2).Info("Composed sequence", "path", path, "id", b.ID(), "layers", len(g))

	return b, nil
}

// Sequential composes spec without registering anything.
func Sequential(spec Spec) (layer.Layer, error) {
	return NewComposer().Sequential(spec)
}

// MustSequential is like Sequential but panics on error.
func MustSequential(spec Spec) layer.Layer {
	l, err := Sequential(spec)
	if err != nil {
		panic(err)
	}
	return l
}

// LayersOf returns the Group a Sequential block was built from.
func LayersOf(l layer.Layer) (Group, bool) {
	b, ok := l.(*block.Block)
	if !ok || b.Name() != SequentialName {
		return nil, false
	}
	v, ok := b.Record().Get(LayersKey)
	if !ok {
		return nil, false
	}
	g, ok := v.(Group)
	return g, ok
}
