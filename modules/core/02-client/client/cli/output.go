package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
)

const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

type clientStateOutput struct {
	ClientID        string `json:"client_id" yaml:"client_id"`
	ChainID         string `json:"chain_id" yaml:"chain_id"`
	TrustingPeriod  string `json:"trusting_period" yaml:"trusting_period"`
	UnbondingPeriod string `json:"unbonding_period" yaml:"unbonding_period"`
	MaxClockDrift   string `json:"max_clock_drift" yaml:"max_clock_drift"`
	FrozenHeight    string `json:"frozen_height" yaml:"frozen_height"`
	LatestHeight    string `json:"latest_height" yaml:"latest_height"`
	Status          string `json:"status" yaml:"status"`
}

type consensusStateOutput struct {
	Height             string `json:"height" yaml:"height"`
	Timestamp          string `json:"timestamp" yaml:"timestamp"`
	Root               string `json:"root" yaml:"root"`
	NextValidatorsHash string `json:"next_validators_hash" yaml:"next_validators_hash"`
}

func newClientStateOutput(clientID string, clientState cometbls.ClientState, status exported.Status) clientStateOutput {
	return clientStateOutput{
		ClientID:        clientID,
		ChainID:         clientState.ChainId,
		TrustingPeriod:  clientState.TrustingPeriod.String(),
		UnbondingPeriod: clientState.UnbondingPeriod.String(),
		MaxClockDrift:   clientState.MaxClockDrift.String(),
		FrozenHeight:    clientState.FrozenHeight.String(),
		LatestHeight:    clientState.LatestHeight.String(),
		Status:          status.String(),
	}
}

func newConsensusStateOutput(height exported.Height, consensusState cometbls.ConsensusState) consensusStateOutput {
	return consensusStateOutput{
		Height:             height.String(),
		Timestamp:          consensusState.Timestamp.Format(time.RFC3339Nano),
		Root:               fmt.Sprintf("%X", consensusState.Root.GetHash()),
		NextValidatorsHash: consensusState.NextValidatorsHash.String(),
	}
}

// printOutput writes v to the command output in the format selected by the output flag.
func printOutput(cmd *cobra.Command, v interface{}) error {
	format, err := cmd.Flags().GetString(FlagOutput)
	if err != nil {
		return err
	}

	var out []byte
	switch format {
	case OutputFormatText:
		out, err = yaml.Marshal(v)
	case OutputFormatJSON:
		out, err = json.Marshal(v)
		out = append(out, '\n')
	default:
		return fmt.Errorf("unsupported output format %q, expected %s or %s", format, OutputFormatText, OutputFormatJSON)
	}
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(FlagOutput, "o", OutputFormatText, "Output format (text|json)")
}
