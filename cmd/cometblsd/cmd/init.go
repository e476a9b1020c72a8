package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const flagOverwrite = "overwrite"

// newInitCmd returns a command that writes config.toml and creates the data directory.
func newInitCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the cometblsd home directory",
		Long: `Write config.toml to the home directory and create the data directory. Flags and
COMETBLSD_ environment variables override the defaults written to the file. The verifying key
file must exist and decode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			overwrite, err := cmd.Flags().GetBool(flagOverwrite)
			if err != nil {
				return err
			}

			home := v.GetString(FlagHome)
			configFile := ConfigFile(home)
			if _, err := os.Stat(configFile); err == nil && !overwrite {
				return fmt.Errorf("config file %s already exists; use --%s to replace it", configFile, flagOverwrite)
			}

			cfg, err := readConfig(v)
			if err != nil {
				return err
			}

			if _, err := cfg.LoadVerifyingKey(); err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.DBDir(), 0o755); err != nil {
				return err
			}

			if err := writeConfig(cfg); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", configFile)
			return err
		},
	}

	cmd.Flags().Bool(flagOverwrite, false, "overwrite an existing config file")
	return cmd
}
