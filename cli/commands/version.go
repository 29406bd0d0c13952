package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags:
//
//	go build -ldflags "-X github.com/rill-labs/rill/cli/commands.Version=v1.0.0"
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "rill %s\n", Version)
			if a.verbose {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", GitCommit)
				fmt.Fprintf(a.stdout, "  built:   %s\n", BuildDate)
				fmt.Fprintf(a.stdout, "  go:      %s\n", runtime.Version())
				fmt.Fprintf(a.stdout, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
			}
		},
	}
}
