package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/da"
	"github.com/evstack/zerog-da/pkg/config"
)

const flagWait = "wait"

// NewVerifyCmd creates a command that prints the verification status of a
// reference key. open may be nil to use OpenBlobStore.
func NewVerifyCmd(open BlobStoreFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "verify <key>",
		Short:        "Print whether a reference key is verified, pending or rejected",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			wait, err := cmd.Flags().GetBool(flagWait)
			if err != nil {
				return err
			}

			return runWithBlobStore(cmd, open, func(ctx context.Context, store da.BlobStore, cfg config.Config, logger zerolog.Logger) error {
				outcome, err := verifyKey(ctx, store, args[0], wait, cfg.DA.StatusRetryDelay, logger)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), outcome.String())
				return err
			})
		},
	}

	cmd.Flags().Bool(flagWait, false, "keep polling while the blob is pending")
	config.AddFlags(cmd)

	return cmd
}

// verifyKey runs one verification, or keeps running them every interval while
// the result is pending when wait is set.
func verifyKey(ctx context.Context, store da.BlobStore, key string, wait bool, interval time.Duration, logger zerolog.Logger) (da.VerificationStatus, error) {
	for {
		outcome, err := store.Verify(ctx, key)
		if err != nil {
			return da.StatusRejected, fmt.Errorf("failed to verify key: %w", err)
		}
		if !wait || outcome != da.StatusPending {
			return outcome, nil
		}

		logger.Debug().Dur("interval", interval).Msg("blob pending, polling again")
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return da.StatusPending, ctx.Err()
		case <-timer.C:
		}
	}
}
