package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evstack/zerog-da/pkg/config"
)

const flagForce = "force"

// NewInitCmd creates a command that writes the configuration built from the
// defaults and the given flags to the home directory.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Initialize zgda config",
		Long:         fmt.Sprintf("This command writes a new %s file in the home directory.", config.ConfigName),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, err := cmd.Flags().GetBool(flagForce)
			if err != nil {
				return err
			}

			// we use load in order to parse all the flags
			cfg, err := config.Load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("error validating config: %w", err)
			}

			if _, err := os.Stat(cfg.ConfigPath()); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", cfg.ConfigPath())
			}

			if err := cfg.SaveAsYaml(); err != nil {
				return fmt.Errorf("error writing %s file: %w", config.ConfigName, err)
			}

			cmd.Printf("Successfully initialized config file at %s\n", cfg.ConfigPath())
			return nil
		},
	}

	cmd.Flags().Bool(flagForce, false, "overwrite an existing config file")
	config.AddFlags(cmd)

	return cmd
}
