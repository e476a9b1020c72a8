package cli

import (
	"errors"

	"github.com/spf13/cobra"

	errorsmod "cosmossdk.io/errors"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
)

const flagLatestHeight = "latest-height"

// GetCmdQueryClientState defines the command to query the state of a client with
// a given id.
func GetCmdQueryClientState() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "client-state [client-id]",
		Short:   "Query a client state",
		Long:    "Query stored client state",
		Example: "cometblsd query client-state 12-cometbls-0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			var out clientStateOutput
			if err := host.Query(func(ctx coretypes.Context) error {
				bz, found := host.Keeper().GetClientState(ctx, clientID)
				if !found {
					return errorsmod.Wrapf(types.ErrStoreNotInitialized, "client (%s) not found", clientID)
				}

				var clientState cometbls.ClientState
				if err := clientState.Unmarshal(bz); err != nil {
					return err
				}

				out = newClientStateOutput(clientID, clientState, host.Keeper().GetClientStatus(ctx, clientID))
				return nil
			}); err != nil {
				return err
			}

			return printOutput(cmd, out)
		},
	}

	addOutputFlag(cmd)
	return cmd
}

// GetCmdQueryConsensusState defines the command to query the consensus state of
// the chain as given by the client at a given height.
func GetCmdQueryConsensusState() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consensus-state [client-id] [height]",
		Short: "Query the consensus state of a client at a given height",
		Long: `Query the consensus state for a particular light client at a given height.
If the '--latest-height' flag is passed, the query will be made at the client's latest height`,
		Example: "cometblsd query consensus-state 12-cometbls-0 1-101",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			queryLatestHeight, err := cmd.Flags().GetBool(flagLatestHeight)
			if err != nil {
				return err
			}

			var height exported.Height
			if !queryLatestHeight {
				if len(args) != 2 {
					return errors.New("must include a second 'height' argument when '--latest-height' flag is not provided")
				}

				height, err = types.ParseHeight(args[1])
				if err != nil {
					return err
				}
			}

			var out consensusStateOutput
			if err := host.Query(func(ctx coretypes.Context) error {
				if queryLatestHeight {
					height = host.Keeper().GetClientLatestHeight(ctx, clientID)
					if height.IsZero() {
						return errorsmod.Wrapf(types.ErrStoreNotInitialized, "client (%s) not found", clientID)
					}
				}

				bz, found := host.Keeper().GetClientConsensusState(ctx, clientID, height)
				if !found {
					return errorsmod.Wrapf(types.ErrConsensusStateNotFound, "client (%s) at height %s", clientID, height)
				}

				var consensusState cometbls.ConsensusState
				if err := consensusState.Unmarshal(bz); err != nil {
					return err
				}

				out = newConsensusStateOutput(height, consensusState)
				return nil
			}); err != nil {
				return err
			}

			return printOutput(cmd, out)
		},
	}

	cmd.Flags().Bool(flagLatestHeight, false, "return latest stored consensus state")
	addOutputFlag(cmd)
	return cmd
}

// GetCmdQueryClientStatus defines the command to query the status of a client with a given id
func GetCmdQueryClientStatus() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status [client-id]",
		Short:   "Query client status",
		Long:    "Query client activity status. Any client without an 'Active' status is considered inactive",
		Example: "cometblsd query status 12-cometbls-0",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			var status exported.Status
			if err := host.Query(func(ctx coretypes.Context) error {
				status = host.Keeper().GetClientStatus(ctx, clientID)
				return nil
			}); err != nil {
				return err
			}

			return printOutput(cmd, map[string]string{
				"client_id": clientID,
				"status":    status.String(),
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}
