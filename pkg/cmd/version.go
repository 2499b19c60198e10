package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time with -ldflags "-X github.com/evstack/zerog-da/pkg/cmd.Version=..."
	Version = ""
	// GitSHA is set at build time.
	GitSHA = ""
)

// NewVersionCmd creates a command printing the build version.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			version := Version
			if version == "" {
				if info, ok := debug.ReadBuildInfo(); ok {
					version = info.Main.Version
				}
			}
			if version == "" {
				version = "(devel)"
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "zgda version: %s\n", version)
			if GitSHA != "" {
				fmt.Fprintf(out, "git sha:      %s\n", GitSHA)
			}
			fmt.Fprintf(out, "go version:   %s\n", runtime.Version())
			return nil
		},
	}
}
