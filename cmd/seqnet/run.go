package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-logr/logr"
	"github.com/olekukonko/tablewriter"

	nn "github.com/fumi-engineer/sequential"
	"github.com/fumi-engineer/sequential/block"
	"github.com/fumi-engineer/sequential/config"
	"github.com/fumi-engineer/sequential/layer"
	"github.com/fumi-engineer/sequential/tensor"
)

var errNoModel = errors.New("no model to build")

type options struct {
	file  string
	model string
	vars  config.Vars
	input string
	shape string
	kinds bool
}

func parseFlags(args []string, out io.Writer) (options, error) {
	opts := options{vars: config.Vars{}}

	fs := flag.NewFlagSet("seqnet", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = usage(fs, out)
	fs.StringVar(&opts.file, "file", "", "HCL model description file")
	fs.StringVar(&opts.model, "model", "", "model to build (default: first model in the file)")
	fs.Var(opts.vars, "var", "variable override name=value (repeatable)")
	fs.StringVar(&opts.input, "input", "", "comma separated input values for one forward pass")
	fs.StringVar(&opts.shape, "shape", "", "comma separated input shape (default: one dimension)")
	fs.BoolVar(&opts.kinds, "kinds", false, "list the layer kinds a file may use and exit")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.file == "" && !opts.kinds {
		return opts, errors.New("-file is required")
	}
	return opts, nil
}

func run(ctx context.Context, out io.Writer, opts options) error {
	if opts.kinds {
		fmt.Fprintln(out, strings.Join(config.Kinds(), "\n"))
		return nil
	}

	log := logr.FromContextOrDiscard(ctx)

	file, err := config.Load(ctx, opts.file, opts.vars)
	if err != nil {
		return err
	}
	name := opts.model
	if name == "" {
		models := file.Models()
		if len(models) == 0 {
			return fmt.Errorf("%w: %s defines no models", errNoModel, opts.file)
		}
		name = models[0]
	}

	reg := block.NewRegistry(block.WithLogger(log))
	m, err := file.Build(name, nn.NewComposer(nn.WithRegistry(reg), nn.WithLogger(log)))
	if err != nil {
		return err
	}
	log.Info("Built model", "model", name, "blocks", reg.Len(), "params", layer.ParamCount(m))

	fmt.Fprint(out, nn.Summary(m))
	fmt.Fprintln(out)
	writeRegistry(out, reg)

	if opts.input == "" {
		return nil
	}
	x, err := parseInput(opts.input, opts.shape)
	if err != nil {
		return err
	}
	y, err := forward(m, x)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, y)
	return nil
}

func writeRegistry(out io.Writer, reg *block.Registry) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Name", "Layers", "Params"})
	for _, b := range reg.Blocks() {
		n := 0
		if g, ok := nn.LayersOf(b); ok {
			n = len(g)
		}
		table.Append([]string{b.ID(), b.Name(), strconv.Itoa(n), strconv.Itoa(layer.ParamCount(b))})
	}
	table.Render()
}

func parseInput(values, shape string) (*tensor.Tensor, error) {
	data, err := parseList(values, func(s string) (float32, error) {
		v, err := strconv.ParseFloat(s, 32)
		return float32(v), err
	})
	if err != nil {
		return nil, fmt.Errorf("-input: %w", err)
	}

	dims := []int{len(data)}
	if shape != "" {
		dims, err = parseList(shape, strconv.Atoi)
		if err != nil {
			return nil, fmt.Errorf("-shape: %w", err)
		}
		for _, d := range dims {
			if d <= 0 {
				return nil, fmt.Errorf("-shape: dimension %d must be positive", d)
			}
		}
	}
	s := tensor.NewShape(dims...)
	if s.Numel() != len(data) {
		return nil, fmt.Errorf("-shape %v holds %d values, -input has %d", s, s.Numel(), len(data))
	}
	return tensor.FromSlice(data, s), nil
}

func parseList[T any](list string, parse func(string) (T, error)) ([]T, error) {
	fields := strings.Split(list, ",")
	out := make([]T, 0, len(fields))
	for _, f := range fields {
		v, err := parse(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// forward reports a layer's shape panic as an error.
func forward(m layer.Layer, x *tensor.Tensor) (y *tensor.Tensor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("forward pass: %v", r)
		}
	}()
	return m.Forward(x), nil
}
