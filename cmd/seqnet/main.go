// Command seqnet builds a sequential model from an HCL description, prints
// its structure and optionally runs one forward pass.
//
//	seqnet -file models.hcl -model mlp -var hidden=32 -input 1,2,3,4 -shape 1,4
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/trebent/envparser"
	"github.com/trebent/zerologr"
)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := envparser.Parse(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zerologr.Set(zerologr.New(&zerologr.Opts{
		Console: logToConsole.Value(),
		Caller:  true,
		V:       logVerbosity.Value(),
	}).WithName("seqnet"))

	ctx := logr.NewContext(context.Background(), zerologr.WithName("run"))
	if err := run(ctx, os.Stdout, opts); err != nil {
		zerologr.Error(err, "Failed to build model", "file", opts.file)
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet, out io.Writer) func() {
	return func() {
		fmt.Fprintf(out, "Usage of %s:\n", fs.Name())
		fs.PrintDefaults()
		fmt.Fprint(out, "\n")
		fmt.Fprint(out, envparser.Help())
	}
}
