package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/pkg/config"
)

const flagFile = "file"

// NewPublishCmd creates a command that publishes a blob and prints its
// reference key. open may be nil to use OpenBlobStore.
func NewPublishCmd(open BlobStoreFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "publish [data]",
		Short:        "Publish a blob and print its reference key",
		Long:         "Publish the given argument, or the contents of --file (use - for stdin), and wait until the disperser confirms it.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := readBlobInput(cmd, args)
			if err != nil {
				return err
			}

			return runWithBlobStore(cmd, open, func(ctx context.Context, store da.BlobStore, _ config.Config, logger zerolog.Logger) error {
				key, err := store.Publish(ctx, blob)
				if err != nil {
					return fmt.Errorf("failed to publish blob: %w", err)
				}
				logger.Debug().Int("size", len(blob)).Msg("blob published")
				_, err = fmt.Fprintln(cmd.OutOrStdout(), key)
				return err
			})
		},
	}

	cmd.Flags().String(flagFile, "", "read the blob from this file (- for stdin)")
	config.AddFlags(cmd)

	return cmd
}

func readBlobInput(cmd *cobra.Command, args []string) (da.Blob, error) {
	path, err := cmd.Flags().GetString(flagFile)
	if err != nil {
		return nil, err
	}

	switch {
	case path != "" && len(args) > 0:
		return nil, errors.New("pass the blob either as an argument or with --file, not both")
	case len(args) > 0:
		return da.Blob(args[0]), nil
	case path == "-":
		return io.ReadAll(cmd.InOrStdin())
	case path != "":
		bz, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read blob file: %w", err)
		}
		return bz, nil
	default:
		return nil, errors.New("no blob given, pass it as an argument or with --file")
	}
}
