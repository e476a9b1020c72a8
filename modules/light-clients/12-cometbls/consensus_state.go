package cometbls

import (
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/cometbft/cometbft/crypto/tmhash"
	cmtbytes "github.com/cometbft/cometbft/libs/bytes"
	cmttypes "github.com/cometbft/cometbft/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

// ConsensusState defines the consensus state of the counterparty chain at a given height.
type ConsensusState struct {
	// Timestamp of the header the state was derived from.
	Timestamp time.Time
	// Root is the application state root committed in the header.
	Root               commitmenttypes.MerkleRoot
	NextValidatorsHash cmtbytes.HexBytes
}

// NewConsensusState creates a new ConsensusState instance.
func NewConsensusState(
	timestamp time.Time, root commitmenttypes.MerkleRoot, nextValsHash cmtbytes.HexBytes,
) *ConsensusState {
	return &ConsensusState{
		Timestamp:          timestamp.UTC(),
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// ClientType returns CometBLS
func (ConsensusState) ClientType() string {
	return exported.CometBLS
}

// GetRoot returns the commitment Root for the specific
func (cs ConsensusState) GetRoot() exported.Root {
	return cs.Root
}

// GetTimestamp returns block time in nanoseconds of the header that created consensus state
func (cs ConsensusState) GetTimestamp() uint64 {
	return uint64(cs.Timestamp.UnixNano())
}

// ValidateBasic defines a basic validation for the cometbls consensus state.
func (cs ConsensusState) ValidateBasic() error {
	if cs.Root.Empty() {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "root cannot be empty")
	}
	if len(cs.Root.GetHash()) != tmhash.Size {
		return errorsmod.Wrapf(clienttypes.ErrInvalidConsensus, "root must be %d bytes, got %d", tmhash.Size, len(cs.Root.GetHash()))
	}
	if err := cmttypes.ValidateHash(cs.NextValidatorsHash); err != nil {
		return errorsmod.Wrap(err, "next validators hash is invalid")
	}
	if len(cs.NextValidatorsHash) == 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "next validators hash cannot be empty")
	}
	if cs.Timestamp.Unix() <= 0 {
		return errorsmod.Wrap(clienttypes.ErrInvalidConsensus, "timestamp must be a positive Unix time")
	}
	return nil
}

// Optimized returns the reduced consensus state kept for membership verification.
func (cs ConsensusState) Optimized() *OptimizedConsensusState {
	return &OptimizedConsensusState{
		Timestamp: cs.Timestamp,
		Root:      cs.Root,
	}
}

// OptimizedConsensusState is the part of a ConsensusState needed to verify state proofs
// and answer timestamp queries. It is derived data: the full ConsensusState stored at the
// same height is authoritative.
type OptimizedConsensusState struct {
	Timestamp time.Time
	Root      commitmenttypes.MerkleRoot
}

// GetRoot returns the commitment root.
func (ocs OptimizedConsensusState) GetRoot() exported.Root {
	return ocs.Root
}

// GetTimestamp returns the timestamp in nanoseconds.
func (ocs OptimizedConsensusState) GetTimestamp() uint64 {
	return uint64(ocs.Timestamp.UnixNano())
}
