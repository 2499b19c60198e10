package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/pkg/config"
)

const flagOutput = "output"

// NewRetrieveCmd creates a command that downloads the blob behind a reference
// key. open may be nil to use OpenBlobStore.
func NewRetrieveCmd(open BlobStoreFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "retrieve <key>",
		Short:        "Download a confirmed blob",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputPath, err := cmd.Flags().GetString(flagOutput)
			if err != nil {
				return err
			}

			return runWithBlobStore(cmd, open, func(ctx context.Context, store da.BlobStore, _ config.Config, logger zerolog.Logger) error {
				blob, err := store.Retrieve(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to retrieve blob: %w", err)
				}

				if outputPath == "" {
					_, err = cmd.OutOrStdout().Write(blob)
					return err
				}
				if err := os.WriteFile(outputPath, blob, 0o600); err != nil {
					return fmt.Errorf("failed to write blob: %w", err)
				}
				logger.Info().Str("path", outputPath).Int("size", len(blob)).Msg("blob written")
				return nil
			})
		},
	}

	cmd.Flags().StringP(flagOutput, "o", "", "write the blob to this file instead of stdout")
	config.AddFlags(cmd)

	return cmd
}
