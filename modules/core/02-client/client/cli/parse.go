package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	host "github.com/cometbls/ibc-lightclient/modules/core/24-host"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
)

// clientStateFile is the YAML form of a cometbls client state. Durations accept Go
// duration strings or nanoseconds.
type clientStateFile struct {
	ChainID         string      `yaml:"chain_id"`
	TrustingPeriod  interface{} `yaml:"trusting_period"`
	UnbondingPeriod interface{} `yaml:"unbonding_period"`
	MaxClockDrift   interface{} `yaml:"max_clock_drift"`
	LatestHeight    string      `yaml:"latest_height"`
}

// consensusStateFile is the YAML form of a cometbls consensus state. The timestamp accepts
// RFC 3339 strings or unix seconds, hashes are hex encoded.
type consensusStateFile struct {
	Timestamp          interface{} `yaml:"timestamp"`
	Root               string      `yaml:"root"`
	NextValidatorsHash string      `yaml:"next_validators_hash"`
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// readClientState returns the encoded client state stored at path. YAML files are converted,
// any other file is expected to hold the protobuf encoding.
func readClientState(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client state file: %w", err)
	}

	if !isYAML(path) {
		var clientState cometbls.ClientState
		if err := clientState.Unmarshal(contents); err != nil {
			return nil, fmt.Errorf("error unmarshalling client state file: %w", err)
		}
		return contents, nil
	}

	var in clientStateFile
	if err := yaml.UnmarshalStrict(contents, &in); err != nil {
		return nil, fmt.Errorf("error unmarshalling client state file: %w", err)
	}

	trustingPeriod, err := cast.ToDurationE(in.TrustingPeriod)
	if err != nil {
		return nil, fmt.Errorf("invalid trusting period: %w", err)
	}
	unbondingPeriod, err := cast.ToDurationE(in.UnbondingPeriod)
	if err != nil {
		return nil, fmt.Errorf("invalid unbonding period: %w", err)
	}
	maxClockDrift, err := cast.ToDurationE(in.MaxClockDrift)
	if err != nil {
		return nil, fmt.Errorf("invalid max clock drift: %w", err)
	}
	latestHeight, err := types.ParseHeight(in.LatestHeight)
	if err != nil {
		return nil, err
	}

	clientState := cometbls.NewClientState(
		in.ChainID, trustingPeriod, unbondingPeriod, maxClockDrift, latestHeight, commitmenttypes.GetSDKSpecs(),
	)
	return clientState.Marshal()
}

// readConsensusState returns the encoded consensus state stored at path, converting YAML files.
func readConsensusState(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read consensus state file: %w", err)
	}

	if !isYAML(path) {
		var consensusState cometbls.ConsensusState
		if err := consensusState.Unmarshal(contents); err != nil {
			return nil, fmt.Errorf("error unmarshalling consensus state file: %w", err)
		}
		return contents, nil
	}

	var in consensusStateFile
	if err := yaml.UnmarshalStrict(contents, &in); err != nil {
		return nil, fmt.Errorf("error unmarshalling consensus state file: %w", err)
	}

	timestamp, err := cast.ToTimeE(in.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp: %w", err)
	}
	root, err := hex.DecodeString(in.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root: %w", err)
	}
	nextValsHash, err := hex.DecodeString(in.NextValidatorsHash)
	if err != nil {
		return nil, fmt.Errorf("invalid next validators hash: %w", err)
	}

	consensusState := cometbls.NewConsensusState(timestamp, commitmenttypes.NewMerkleRoot(root), nextValsHash)
	return consensusState.Marshal(), nil
}

func readHeader(path string) (*cometbls.Header, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read header file: %w", err)
	}

	var header cometbls.Header
	if err := header.Unmarshal(contents); err != nil {
		return nil, fmt.Errorf("error unmarshalling header file: %w", err)
	}
	return &header, nil
}

func readMisbehaviour(path string) (*cometbls.Misbehaviour, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read misbehaviour file: %w", err)
	}

	var misbehaviour cometbls.Misbehaviour
	if err := misbehaviour.Unmarshal(contents); err != nil {
		return nil, fmt.Errorf("error unmarshalling misbehaviour file: %w", err)
	}
	return &misbehaviour, nil
}

// readProof returns the encoded merkle proof stored at path.
func readProof(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof file: %w", err)
	}

	var proof commitmenttypes.MerkleProof
	if err := proof.Unmarshal(contents); err != nil {
		return nil, fmt.Errorf("error unmarshalling proof file: %w", err)
	}
	return contents, nil
}

// merklePath prefixes key with the counterparty store key it is committed under.
func merklePath(storeKey, key string) (commitmenttypes.MerklePath, error) {
	if err := host.PathValidator(storeKey + "/" + key); err != nil {
		return commitmenttypes.MerklePath{}, err
	}

	return commitmenttypes.ApplyPrefix(commitmenttypes.NewMerklePrefix([]byte(storeKey)), []byte(key))
}
