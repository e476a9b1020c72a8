package cometbls

import (
	"crypto/sha256"
	"time"

	"github.com/cometbft/cometbft/libs/protoio"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	cmttypes "github.com/cometbft/cometbft/types"
)

// CanonicalVoteBytes returns the bytes a validator signs when precommitting to blockID.
// The encoding is the length-delimited protobuf CanonicalVote used by CometBFT, so a
// proof generated over real validator signatures verifies against it bit for bit.
func CanonicalVoteBytes(chainID string, height int64, round int32, blockID cmtproto.BlockID, timestamp time.Time) ([]byte, error) {
	vote := cmtproto.CanonicalVote{
		Type:      cmtproto.PrecommitType,
		Height:    height,
		Round:     int64(round),
		BlockID:   cmttypes.CanonicalizeBlockID(blockID),
		Timestamp: timestamp,
		ChainID:   chainID,
	}

	return protoio.MarshalDelimited(&vote)
}

// ValidatorSetCommitment binds the trusted and the new validator set of a header into the
// single commitment the aggregate signature proof is generated against.
func ValidatorSetCommitment(trustedValidatorsHash, validatorsHash []byte) []byte {
	h := sha256.New()
	h.Write(trustedValidatorsHash)
	h.Write(validatorsHash)
	return h.Sum(nil)
}
