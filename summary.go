// SPDX-License-Identifier: CC-BY-NC-4.0
// Copyright (c) 2025-2026 fumi-engineer

package nn

import (
	"fmt"
	"strings"

	"github.com/fumi-engineer/sequential/block"
	"github.com/fumi-engineer/sequential/layer"
)

// Summary renders the structure of l as an indented tree, one layer per
// line with its parameter count. Sequential blocks expand into the Group
// they were built from; any other layer prints as a single line.
//
//	Sequential [Sequential] (49 params)
//	  Linear(4->8) (40 params)
//	  ReLU
//	  Sequential (9 params)
//	    Linear(8->1) (9 params)
//	    Shift(2)
func Summary(l layer.Layer) string {
	var sb strings.Builder
	writeLayer(&sb, l, 0)
	return sb.String()
}

func writeLayer(sb *strings.Builder, l layer.Layer, depth int) {
	g, ok := LayersOf(l)
	if !ok {
		writeLine(sb, depth, layer.NameOf(l), layer.ParamCount(l))
		return
	}
	heading := SequentialName
	if id := l.(*block.Block).ID(); id != "" {
		heading += " [" + id + "]"
	}
	writeLine(sb, depth, heading, layer.ParamCount(l))
	for _, elem := range g {
		writeSpec(sb, elem, depth+1)
	}
}

// Nested groups in a record are specs, not built layers, so they are
// walked directly.
func writeSpec(sb *strings.Builder, spec Spec, depth int) {
	switch s := spec.(type) {
	case Leaf:
		writeLayer(sb, s.Layer, depth)
	case Group:
		writeLine(sb, depth, SequentialName, specParams(s))
		for _, elem := range s {
			writeSpec(sb, elem, depth+1)
		}
	}
}

func specParams(spec Spec) int {
	switch s := spec.(type) {
	case Leaf:
		return layer.ParamCount(s.Layer)
	case Group:
		n := 0
		for _, elem := range s {
			n += specParams(elem)
		}
		return n
	}
	return 0
}

func writeLine(sb *strings.Builder, depth int, name string, params int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(name)
	if params > 0 {
		fmt.Fprintf(sb, " (%d params)", params)
	}
	sb.WriteByte('\n')
}
