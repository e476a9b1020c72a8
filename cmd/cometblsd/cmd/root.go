package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/client/cli"
)

// NewRootCmd creates a new root command for cometblsd. Client commands run against a host
// database opened from the configuration in the home directory.
func NewRootCmd() *cobra.Command {
	v := newViper()

	rootCmd := &cobra.Command{
		Use:           "cometblsd",
		Short:         "Host CometBLS light clients in a local database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Flags())
		},
	}

	defaults := DefaultConfig()
	rootCmd.PersistentFlags().String(FlagHome, defaults.Home, "directory for config and data")
	rootCmd.PersistentFlags().String(FlagChainID, defaults.ChainID, "chain id of the host")
	rootCmd.PersistentFlags().String(FlagVKPath, defaults.VKPath, "verifying key file, relative to the home directory unless absolute")
	rootCmd.PersistentFlags().StringSlice(FlagAllowedClients, defaults.AllowedClients, "client types that may be created and used")
	rootCmd.PersistentFlags().String(FlagLogLevel, defaults.LogLevel, "log level")
	rootCmd.PersistentFlags().String(FlagLogFormat, defaults.LogFormat, "log format (plain|json)")

	hostCmds := append(cli.GetTxCmd(), cli.GetStatusCmd(), cli.GetQueryCmd())
	for _, cmd := range hostCmds {
		withHost(v, cmd)
	}

	rootCmd.AddCommand(newInitCmd(v))
	rootCmd.AddCommand(hostCmds...)

	return rootCmd
}

// withHost opens the host database around every runnable command in the tree rooted at cmd.
func withHost(v *viper.Viper, cmd *cobra.Command) {
	for _, child := range cmd.Commands() {
		withHost(v, child)
	}

	runE := cmd.RunE
	if runE == nil {
		return
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
		cfg, err := readConfig(v)
		if err != nil {
			return err
		}

		logger, err := cfg.NewLogger(cmd.ErrOrStderr())
		if err != nil {
			return err
		}

		host, err := OpenHost(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := host.Close(); err == nil {
				err = closeErr
			}
		}()

		cli.SetCmdHost(cmd, host)
		return runE(cmd, args)
	}
}
