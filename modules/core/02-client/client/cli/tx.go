package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

const FlagClientType = "client-type"

// newCreateClientCmd defines the command to create a new IBC light client.
func newCreateClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-client [path/to/client_state] [path/to/consensus_state]",
		Short: "create new IBC client",
		Long: `create a new IBC client with the specified client state and consensus state.
Files with a .yaml or .yml extension are read as YAML, any other file must hold the protobuf encoding.
	- ClientState YAML example:
		chain_id: union-devnet-1
		trusting_period: 336h
		unbonding_period: 504h
		max_clock_drift: 10s
		latest_height: 1-100
	- ConsensusState YAML example:
		timestamp: "2024-01-02T15:04:05Z"
		root: 5A3C...
		next_validators_hash: 8E1F...`,
		Example: "cometblsd create-client client_state.yaml consensus_state.yaml",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}

			clientType, err := cmd.Flags().GetString(FlagClientType)
			if err != nil {
				return err
			}

			clientState, err := readClientState(args[0])
			if err != nil {
				return err
			}

			consensusState, err := readConsensusState(args[1])
			if err != nil {
				return err
			}

			var clientID string
			if err := host.Execute(func(ctx coretypes.Context) error {
				clientID, err = host.Keeper().CreateClient(ctx, clientType, clientState, consensusState)
				return err
			}); err != nil {
				return err
			}

			return printOutput(cmd, map[string]string{"client_id": clientID})
		},
	}

	cmd.Flags().String(FlagClientType, exported.CometBLS, "light client type")
	addOutputFlag(cmd)
	return cmd
}

// newUpdateClientCmd defines the command to update an IBC client.
func newUpdateClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update-client [client-id] [path/to/header]",
		Short:   "update existing client with a header",
		Long:    "update existing client with a protobuf encoded header. A header conflicting with a stored consensus state freezes the client.",
		Example: "cometblsd update-client 12-cometbls-0 header.bin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			header, err := readHeader(args[1])
			if err != nil {
				return err
			}

			var heights []exported.Height
			if err := host.Execute(func(ctx coretypes.Context) error {
				heights, err = host.Keeper().UpdateClient(ctx, clientID, header)
				return err
			}); err != nil {
				return err
			}

			consensusHeights := make([]string, len(heights))
			for i, height := range heights {
				consensusHeights[i] = height.String()
			}

			return printOutput(cmd, map[string]interface{}{
				"client_id":         clientID,
				"consensus_heights": consensusHeights,
				"frozen":            len(heights) == 0,
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

// newSubmitMisbehaviourCmd defines the command to submit a misbehaviour to prevent
// future updates.
func newSubmitMisbehaviourCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "submit-misbehaviour [client-id] [path/to/misbehaviour]",
		Short:   "submit a client misbehaviour",
		Long:    "submit a protobuf encoded client misbehaviour to freeze the client and prevent future updates",
		Example: "cometblsd submit-misbehaviour 12-cometbls-0 misbehaviour.bin",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			misbehaviour, err := readMisbehaviour(args[1])
			if err != nil {
				return err
			}

			if err := host.Execute(func(ctx coretypes.Context) error {
				return host.Keeper().SubmitMisbehaviour(ctx, clientID, misbehaviour)
			}); err != nil {
				return err
			}

			return printOutput(cmd, map[string]string{
				"client_id":     clientID,
				"frozen_height": misbehaviour.FrozenHeight().String(),
			})
		},
	}

	addOutputFlag(cmd)
	return cmd
}

// newVerifyMembershipCmd defines the command to verify a value stored on the counterparty chain.
func newVerifyMembershipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-membership [client-id] [proof-height] [path/to/proof] [value-hex] [store-key] [key]",
		Short: "verify that a value is stored under a key path on the counterparty chain",
		Long: `verify a protobuf encoded merkle proof that the hex encoded value is stored under the key
of the counterparty store at the given height. The key may itself be a path, for example
clients/07-tendermint-0/clientState`,
		Example: "cometblsd verify-membership 12-cometbls-0 1-101 proof.bin 6f70656e ibc channel-0",
		Args:    cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			height, err := types.ParseHeight(args[1])
			if err != nil {
				return err
			}

			proof, err := readProof(args[2])
			if err != nil {
				return err
			}

			value, err := hex.DecodeString(args[3])
			if err != nil {
				return fmt.Errorf("invalid value: %w", err)
			}

			delayTimePeriod, delayBlockPeriod, err := delayPeriods(cmd)
			if err != nil {
				return err
			}

			path, err := merklePath(args[4], args[5])
			if err != nil {
				return err
			}

			if err := host.Query(func(ctx coretypes.Context) error {
				return host.Keeper().VerifyMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path, value)
			}); err != nil {
				return err
			}

			return printOutput(cmd, map[string]string{
				"client_id": clientID,
				"height":    height.String(),
				"path":      path.String(),
				"verified":  "membership",
			})
		},
	}

	addDelayFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

// newVerifyNonMembershipCmd defines the command to verify the absence of a key on the counterparty chain.
func newVerifyNonMembershipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "verify-non-membership [client-id] [proof-height] [path/to/proof] [store-key] [key]",
		Short:   "verify that nothing is stored under a key path on the counterparty chain",
		Long:    "verify a protobuf encoded merkle proof that the key is absent from the counterparty store at the given height",
		Example: "cometblsd verify-non-membership 12-cometbls-0 1-101 proof.bin ibc channel-1",
		Args:    cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			host, err := GetCmdHost(cmd)
			if err != nil {
				return err
			}
			clientID := args[0]

			height, err := types.ParseHeight(args[1])
			if err != nil {
				return err
			}

			proof, err := readProof(args[2])
			if err != nil {
				return err
			}

			delayTimePeriod, delayBlockPeriod, err := delayPeriods(cmd)
			if err != nil {
				return err
			}

			path, err := merklePath(args[3], args[4])
			if err != nil {
				return err
			}

			if err := host.Query(func(ctx coretypes.Context) error {
				return host.Keeper().VerifyNonMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path)
			}); err != nil {
				return err
			}

			return printOutput(cmd, map[string]string{
				"client_id": clientID,
				"height":    height.String(),
				"path":      path.String(),
				"verified":  "non-membership",
			})
		},
	}

	addDelayFlags(cmd)
	addOutputFlag(cmd)
	return cmd
}

func addDelayFlags(cmd *cobra.Command) {
	cmd.Flags().Duration(FlagDelayTimePeriod, 0, "time that must pass on the host after the proof height was processed")
	cmd.Flags().Uint64(FlagDelayBlockPeriod, 0, "host blocks that must pass after the proof height was processed")
}

func delayPeriods(cmd *cobra.Command) (uint64, uint64, error) {
	delayTimePeriod, err := cmd.Flags().GetDuration(FlagDelayTimePeriod)
	if err != nil {
		return 0, 0, err
	}
	if delayTimePeriod < 0 {
		return 0, 0, fmt.Errorf("%s cannot be negative", FlagDelayTimePeriod)
	}

	delayBlockPeriod, err := cmd.Flags().GetUint64(FlagDelayBlockPeriod)
	if err != nil {
		return 0, 0, err
	}

	return uint64(delayTimePeriod.Nanoseconds()), delayBlockPeriod, nil
}
