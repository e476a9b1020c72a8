package cometbls

import (
	"bytes"
	"time"

	errorsmod "cosmossdk.io/errors"

	"github.com/cometbft/cometbft/crypto/tmhash"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	cmttypes "github.com/cometbft/cometbft/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

var _ exported.ClientMessage = (*Header)(nil)

// Header defines the cometbls client consensus Header.
// It encapsulates all the information necessary to update from a trusted consensus state.
// The commit carried by SignedHeader has no signatures: ZeroKnowledgeProof attests that
// more than two thirds of ValidatorSet signed the canonical precommit vote for the block.
//
// TrustedHeight is the height of a stored ConsensusState on the client that will be used
// to verify the new untrusted header. TrustedValidators must hash to the
// NextValidatorsHash of that ConsensusState.
type Header struct {
	SignedHeader       *cmtproto.SignedHeader
	ValidatorSet       *cmtproto.ValidatorSet
	TrustedHeight      clienttypes.Height
	TrustedValidators  *cmtproto.ValidatorSet
	ZeroKnowledgeProof []byte
}

// ConsensusState returns the updated consensus state associated with the header
func (h Header) ConsensusState() *ConsensusState {
	return &ConsensusState{
		Timestamp:          h.GetTime(),
		Root:               commitmenttypes.NewMerkleRoot(h.SignedHeader.Header.AppHash),
		NextValidatorsHash: h.SignedHeader.Header.NextValidatorsHash,
	}
}

// ClientType defines that the Header is a cometbls consensus algorithm
func (Header) ClientType() string {
	return exported.CometBLS
}

// GetHeight returns the current height. It returns 0 if the header is nil.
// NOTE: the header.Header is checked to be non nil in ValidateBasic.
func (h Header) GetHeight() clienttypes.Height {
	if h.SignedHeader == nil || h.SignedHeader.Header == nil {
		return clienttypes.ZeroHeight()
	}
	revision := clienttypes.ParseChainID(h.SignedHeader.Header.ChainID)
	return clienttypes.NewHeight(revision, uint64(h.SignedHeader.Header.Height))
}

// GetTime returns the current block timestamp. It returns a zero time if
// the header is nil.
// NOTE: the header.Header is checked to be non nil in ValidateBasic.
func (h Header) GetTime() time.Time {
	if h.SignedHeader == nil || h.SignedHeader.Header == nil {
		return time.Time{}
	}
	return h.SignedHeader.Header.Time.UTC()
}

// GetChainID returns the chain id of the signed header.
func (h Header) GetChainID() string {
	if h.SignedHeader == nil || h.SignedHeader.Header == nil {
		return ""
	}
	return h.SignedHeader.Header.ChainID
}

// CanonicalVote returns the precommit vote the zero-knowledge proof must attest.
func (h Header) CanonicalVote() ([]byte, error) {
	commit := h.SignedHeader.Commit
	return CanonicalVoteBytes(h.GetChainID(), h.SignedHeader.Header.Height, commit.Round, commit.BlockID, h.GetTime())
}

// ValidateBasic checks that the commit binds the header, that the validator set
// matches the header and that the trusted fields and proof are present.
func (h Header) ValidateBasic() error {
	if h.SignedHeader == nil {
		return errorsmod.Wrap(ErrInvalidHeader, "cometbls signed header cannot be nil")
	}
	if h.SignedHeader.Header == nil {
		return errorsmod.Wrap(ErrInvalidHeader, "cometbls header cannot be nil")
	}
	if h.SignedHeader.Commit == nil {
		return errorsmod.Wrap(ErrInvalidHeader, "cometbls commit cannot be nil")
	}

	// the header height is derived from the chain id revision
	if _, err := clienttypes.ParseRevisionNumber(h.SignedHeader.Header.ChainID); err != nil {
		return errorsmod.Wrap(ErrInvalidHeader, err.Error())
	}

	cmtHeader, err := cmttypes.HeaderFromProto(h.SignedHeader.Header)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidHeader, err.Error())
	}
	if err := cmtHeader.ValidateBasic(); err != nil {
		return errorsmod.Wrap(ErrInvalidHeader, err.Error())
	}

	commit := h.SignedHeader.Commit
	if commit.Height != cmtHeader.Height {
		return errorsmod.Wrapf(ErrInvalidHeader, "commit height (%d) does not match header height (%d)", commit.Height, cmtHeader.Height)
	}
	if commit.Round < 0 {
		return errorsmod.Wrapf(ErrInvalidHeader, "negative commit round %d", commit.Round)
	}

	blockID, err := cmttypes.BlockIDFromProto(&commit.BlockID)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidHeader, err.Error())
	}
	if err := blockID.ValidateBasic(); err != nil {
		return errorsmod.Wrap(ErrInvalidHeader, err.Error())
	}
	if !bytes.Equal(blockID.Hash, cmtHeader.Hash()) {
		return errorsmod.Wrapf(ErrInvalidHeader, "commit signs block %X, header is block %X", blockID.Hash, cmtHeader.Hash())
	}

	if len(cmtHeader.AppHash) != tmhash.Size {
		return errorsmod.Wrapf(ErrInvalidHeader, "app hash must be %d bytes, got %d", tmhash.Size, len(cmtHeader.AppHash))
	}

	// TrustedHeight is less than Header for updates and misbehaviour
	if h.TrustedHeight.GTE(h.GetHeight()) {
		return errorsmod.Wrapf(ErrHeightRegression, "trusted height (%s) must be less than header height (%s)",
			h.TrustedHeight, h.GetHeight())
	}
	if h.TrustedHeight.RevisionNumber != h.GetHeight().RevisionNumber {
		return errorsmod.Wrapf(ErrHeightRegression, "trusted height revision (%d) must equal header revision (%d)",
			h.TrustedHeight.RevisionNumber, h.GetHeight().RevisionNumber)
	}

	if h.ValidatorSet == nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, "validator set is nil")
	}
	cmtValset, err := cmttypes.ValidatorSetFromProto(h.ValidatorSet)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, err.Error())
	}
	if !bytes.Equal(h.SignedHeader.Header.ValidatorsHash, cmtValset.Hash()) {
		return errorsmod.Wrapf(ErrInvalidValidatorSet, "validator set does not match hash, expected %X, got %X", h.SignedHeader.Header.ValidatorsHash, cmtValset.Hash())
	}

	if h.TrustedValidators == nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, "trusted validator set is nil")
	}

	if len(h.ZeroKnowledgeProof) == 0 {
		return errorsmod.Wrap(ErrInvalidHeader, "zero-knowledge proof cannot be empty")
	}

	return nil
}
