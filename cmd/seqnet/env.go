//nolint:gochecknoglobals
package main

import (
	"fmt"

	"github.com/trebent/envparser"
)

var (
	logToConsole = envparser.Register(&envparser.Opts[bool]{
		Name: "SEQNET_LOG_CONSOLE",
		Desc: "Set to log to console instead of JSON.",
	})
	logVerbosity = envparser.Register(&envparser.Opts[int]{
		Name: "SEQNET_LOG_VERBOSITY",
		Desc: "Set the log verbosity. 1 logs block registration, 2 logs every composed sequence.",
		Validate: func(v int) error {
			if v < 0 {
				return fmt.Errorf("must be greater than or equal to 0: %d", v)
			}
			return nil
		},
	})
)
