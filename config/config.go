// Package config loads sequential model descriptions from HCL files.
//
//	variable "hidden" {
//	  default = 16
//	}
//
//	model "mlp" {
//	  layer "linear" {
//	    in  = 4
//	    out = var.hidden
//	  }
//	  layer "relu" {}
//	  layer "sequential" {
//	    layer "linear" {
//	      in  = var.hidden
//	      out = 3
//	    }
//	    layer "softmax" {}
//	  }
//	}
//
// Every model block is a Group; a "sequential" layer block is a nested Group
// whose children keep file order.
package config

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-logr/logr"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	nn "github.com/fumi-engineer/sequential"
	"github.com/fumi-engineer/sequential/layer"
)

var (
	ErrUnknownModel    = errors.New("unknown model")
	ErrUnknownKind     = errors.New("unknown layer kind")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrMissingVariable = errors.New("variable has no value")
	ErrDuplicate       = errors.New("duplicate definition")
	ErrInvalidLayer    = errors.New("invalid layer")
)

// SequentialKind is the layer kind that nests a Group.
const SequentialKind = "sequential"

type fileSchema struct {
	Variables []*variableBlock `hcl:"variable,block"`
	Models    []*modelBlock    `hcl:"model,block"`
}

type variableBlock struct {
	Name        string     `hcl:"name,label"`
	Default     *cty.Value `hcl:"default,optional"`
	Description string     `hcl:"description,optional"`
}

type modelBlock struct {
	Name string   `hcl:"name,label"`
	Body hcl.Body `hcl:",remain"`
}

type layerList struct {
	Layers []*layerBlock `hcl:"layer,block"`
}

type layerBlock struct {
	Kind string   `hcl:"kind,label"`
	Body hcl.Body `hcl:",remain"`
}

// File is a decoded model description. Layers are built on each call to
// Spec or Build, so two builds of one model never share parameters.
type File struct {
	Filename string

	models map[string]*modelBlock
	order  []string
	eval   *hcl.EvalContext
	log    logr.Logger
}

// Load parses and decodes the HCL file at path. vars override variable
// defaults and must name declared variables. The logger is taken from ctx.
func Load(ctx context.Context, path string, vars map[string]cty.Value) (*File, error) {
	logr.FromContextOrDiscard(ctx).V(1).Info("Loading model file", "path", path)
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decode(ctx, f, path, vars)
}

// Parse is like Load but reads src; filename is used in diagnostics.
func Parse(ctx context.Context, src []byte, filename string, vars map[string]cty.Value) (*File, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decode(ctx, f, filename, vars)
}

func decode(ctx context.Context, f *hcl.File, filename string, vars map[string]cty.Value) (*File, error) {
	log := logr.FromContextOrDiscard(ctx).WithName("config")

	var schema fileSchema
	if diags := gohcl.DecodeBody(f.Body, nil, &schema); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	values, err := resolveVariables(schema.Variables, vars)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	out := &File{
		Filename: filename,
		models:   make(map[string]*modelBlock, len(schema.Models)),
		eval: &hcl.EvalContext{
			Variables: map[string]cty.Value{"var": cty.ObjectVal(values)},
		},
		log: log,
	}
	for _, m := range schema.Models {
		if _, ok := out.models[m.Name]; ok {
			return nil, fmt.Errorf("%s: %w: model %q", filename, ErrDuplicate, m.Name)
		}
		out.models[m.Name] = m
		out.order = append(out.order, m.Name)
	}

	log.V(1).Info("Decoded model file", "path", filename, "models", len(out.order), "variables", len(values))
	return out, nil
}

func resolveVariables(decls []*variableBlock, overrides map[string]cty.Value) (map[string]cty.Value, error) {
	values := make(map[string]cty.Value, len(decls))
	declared := make(map[string]bool, len(decls))
	for _, v := range decls {
		if declared[v.Name] {
			return nil, fmt.Errorf("%w: variable %q", ErrDuplicate, v.Name)
		}
		declared[v.Name] = true
		if v.Default != nil {
			values[v.Name] = *v.Default
		}
	}

	for name, val := range overrides {
		if !declared[name] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		values[name] = val
	}

	for _, v := range decls {
		if _, ok := values[v.Name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingVariable, v.Name)
		}
	}
	return values, nil
}

// Models returns the model names in file order.
func (f *File) Models() []string {
	return append([]string(nil), f.order...)
}

// Spec builds fresh layers for the named model and returns its Group.
func (f *File) Spec(name string) (nn.Spec, error) {
	m, ok := f.models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	g, err := f.group(m.Body, "model."+name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Filename, err)
	}
	return g, nil
}

// Build composes the named model through c. A nil composer registers
// nothing.
func (f *File) Build(name string, c *nn.Composer) (layer.Layer, error) {
	spec, err := f.Spec(name)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = nn.NewComposer()
	}
	return c.Sequential(spec)
}

func (f *File) group(body hcl.Body, path string) (nn.Group, error) {
	var list layerList
	if diags := gohcl.DecodeBody(body, f.eval, &list); diags.HasErrors() {
		return nil, fmt.Errorf("%s: %w", path, diags)
	}

	g := make(nn.Group, 0, len(list.Layers))
	for i, blk := range list.Layers {
		elemPath := fmt.Sprintf("%s.layer[%d]", path, i)
		if blk.Kind == SequentialKind {
			inner, err := f.group(blk.Body, elemPath)
			if err != nil {
				return nil, err
			}
			g = append(g, inner)
			continue
		}

		build, ok := kinds[blk.Kind]
		if !ok {
			return nil, fmt.Errorf("%s: %w: %q (known: %v)", elemPath, ErrUnknownKind, blk.Kind, Kinds())
		}
		l, err := build(blk.Body, f.eval)
		if err != nil {
			return nil, fmt.Errorf("%s (%s): %w", elemPath, blk.Kind, err)
		}
		f.log.V(2).Info("Built layer", "path", elemPath, "layer", layer.NameOf(l))
		g = append(g, nn.Leaf{Layer: l})
	}
	return g, nil
}

// Kinds returns every layer kind a file may use, sorted.
func Kinds() []string {
	names := make([]string, 0, len(kinds)+1)
	for k := range kinds {
		names = append(names, k)
	}
	names = append(names, SequentialKind)
	sort.Strings(names)
	return names
}
