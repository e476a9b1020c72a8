package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/keeper"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

const (
	// FlagOutput selects the encoding of command output.
	FlagOutput = "output"

	FlagDelayTimePeriod  = "delay-time-period"
	FlagDelayBlockPeriod = "delay-block-period"
)

// Host is the environment client commands execute against.
type Host interface {
	// Keeper returns the client keeper bound to the host store.
	Keeper() *keeper.Keeper
	// Execute runs fn as a new host block. Writes made through ctx are persisted only
	// when fn returns nil.
	Execute(fn func(ctx coretypes.Context) error) error
	// Query runs fn against the latest committed host state. Writes are discarded.
	Query(fn func(ctx coretypes.Context) error) error
}

type hostContextKey struct{}

// SetCmdHost stores the host on the command context so subcommands can retrieve it
// with GetCmdHost.
func SetCmdHost(cmd *cobra.Command, host Host) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, hostContextKey{}, host))
}

// GetCmdHost returns the host set by SetCmdHost.
func GetCmdHost(cmd *cobra.Command) (Host, error) {
	if ctx := cmd.Context(); ctx != nil {
		if host, ok := ctx.Value(hostContextKey{}).(Host); ok {
			return host, nil
		}
	}
	return nil, errors.New("host is not initialized")
}

// GetTxCmd returns the commands that execute a host block against the client keeper.
func GetTxCmd() []*cobra.Command {
	return []*cobra.Command{
		newCreateClientCmd(),
		newUpdateClientCmd(),
		newSubmitMisbehaviourCmd(),
		newVerifyMembershipCmd(),
		newVerifyNonMembershipCmd(),
	}
}

// GetQueryCmd returns the cli query commands for the client submodule.
func GetQueryCmd() *cobra.Command {
	queryCmd := &cobra.Command{
		Use:                        "query",
		Aliases:                    []string{"q"},
		Short:                      "IBC client query subcommands",
		SuggestionsMinimumDistance: 2,
	}

	queryCmd.AddCommand(
		GetCmdQueryClientState(),
		GetCmdQueryConsensusState(),
		GetCmdQueryClientStatus(),
	)

	return queryCmd
}

// GetStatusCmd returns the top level status command.
func GetStatusCmd() *cobra.Command {
	cmd := GetCmdQueryClientStatus()
	cmd.Short = "Query client status"
	return cmd
}
