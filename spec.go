// SPDX-License-Identifier: CC-BY-NC-4.0
// Copyright (c) 2025-2026 fumi-engineer

package nn

import "github.com/fumi-engineer/sequential/layer"

// Spec describes what Sequential composes: a single layer (Leaf) or an
// ordered, possibly nested, list of specs (Group).
type Spec interface {
	isSpec()
}

// Leaf is a single layer.
type Leaf struct {
	Layer layer.Layer
}

// Group is an ordered sequence of specs. Element order is application order.
type Group []Spec

func (Leaf) isSpec() {}

func (Group) isSpec() {}

// Layers builds a flat Group with one Leaf per layer.
func Layers(ls ...layer.Layer) Group {
	g := make(Group, len(ls))
	for i, l := range ls {
		g[i] = Leaf{Layer: l}
	}
	return g
}
