package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rill-labs/rill/cli/commands"
)

// exitCoder is implemented by errors that carry a process exit code.
type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var coder exitCoder
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}
