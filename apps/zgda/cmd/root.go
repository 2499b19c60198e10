package cmd

import (
	"github.com/spf13/cobra"

	zgcmd "github.com/evstack/zerog-da/pkg/cmd"
	"github.com/evstack/zerog-da/pkg/config"
)

const (
	// AppName is the name of the application, the name of the command, and the name of the home directory.
	AppName = "zgda"
)

// NewRootCmd builds the zgda command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   AppName,
		Short: "Publish blobs to a 0G disperser and verify their reference keys",
		Long: `zgda talks to a 0G data availability disperser over gRPC.
publish waits until a blob is confirmed and prints its reference key,
verify reports whether a reference key is verified, pending or rejected,
and retrieve downloads the blob behind a key.`,
	}

	config.AddGlobalFlags(rootCmd, AppName)

	rootCmd.AddCommand(
		zgcmd.NewInitCmd(),
		zgcmd.NewPublishCmd(nil),
		zgcmd.NewVerifyCmd(nil),
		zgcmd.NewRetrieveCmd(nil),
		zgcmd.NewVersionCmd(),
	)

	return rootCmd
}
