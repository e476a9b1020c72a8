package cometbls

import (
	"bytes"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"

	cmttypes "github.com/cometbft/cometbft/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

// VerifyClientMessage checks if the clientMessage is of type Header or Misbehaviour and verifies the message
func (cs *ClientState) VerifyClientMessage(
	ctx coretypes.Context, clientStore storetypes.KVStore, vk zkp.VerifyingKey,
	clientMsg exported.ClientMessage,
) error {
	switch msg := clientMsg.(type) {
	case *Header:
		return cs.verifyHeader(ctx, clientStore, vk, msg)
	case *Misbehaviour:
		return cs.verifyMisbehaviour(ctx, clientStore, vk, msg)
	default:
		return clienttypes.ErrInvalidClientType
	}
}

// verifyHeader returns an error if:
// - the client is frozen
// - the header is malformed or does not advance past its trusted height
// - no consensus state is stored at the header's trusted height
// - the trusted consensus state has expired or the header time is beyond the clock drift
// - the trusted validators do not match the trusted consensus state
// - the zero-knowledge proof does not attest the header's canonical vote
func (cs *ClientState) verifyHeader(
	ctx coretypes.Context, clientStore storetypes.KVStore, vk zkp.VerifyingKey,
	header *Header,
) error {
	if !cs.FrozenHeight.IsZero() {
		return errorsmod.Wrapf(clienttypes.ErrClientFrozen, "client frozen at height %s", cs.FrozenHeight)
	}

	if err := header.ValidateBasic(); err != nil {
		return err
	}

	if header.GetChainID() != cs.ChainId {
		return errorsmod.Wrapf(ErrInvalidHeader, "header chain id (%s) does not match client chain id (%s)", header.GetChainID(), cs.ChainId)
	}

	// the trusted height must reference a stored consensus state
	consState, found := GetConsensusState(clientStore, header.TrustedHeight)
	if !found {
		return errorsmod.Wrapf(ErrUnknownTrustedHeight, "could not get trusted consensus state from clientStore for Header at TrustedHeight: %s", header.TrustedHeight)
	}

	return cs.verifyHeaderAgainstTrusted(ctx, vk, consState, header)
}

// verifyHeaderAgainstTrusted runs the time, validator set and proof checks of a basic-validated
// header against the consensus state stored at its trusted height.
func (cs *ClientState) verifyHeaderAgainstTrusted(
	ctx coretypes.Context, vk zkp.VerifyingKey,
	trustedConsState *ConsensusState, header *Header,
) error {
	now := ctx.BlockTime()

	if cs.IsExpired(trustedConsState.Timestamp, now) {
		return errorsmod.Wrapf(
			clienttypes.ErrExpiredTrustingPeriod,
			"trusted consensus state at %s (timestamp %s) expired, trusting period %s, now %s",
			header.TrustedHeight, trustedConsState.Timestamp, cs.TrustingPeriod, now,
		)
	}

	headerTime := header.GetTime()
	if headerTime.After(now.Add(cs.MaxClockDrift)) {
		return errorsmod.Wrapf(
			ErrClockDriftExceeded,
			"header time %s is after now %s plus max clock drift %s", headerTime, now, cs.MaxClockDrift,
		)
	}
	if !headerTime.After(trustedConsState.Timestamp) {
		return errorsmod.Wrapf(
			ErrInvalidHeader,
			"header time %s must be after trusted consensus state time %s", headerTime, trustedConsState.Timestamp,
		)
	}

	trustedValset, err := cmttypes.ValidatorSetFromProto(header.TrustedValidators)
	if err != nil {
		return errorsmod.Wrap(ErrInvalidValidatorSet, err.Error())
	}

	// assert that trustedVals is NextValidators of last trusted header
	// to do this, we check that trustedVals.Hash() == consState.NextValidatorsHash
	trustedValsHash := trustedValset.Hash()
	if !bytes.Equal(trustedConsState.NextValidatorsHash, trustedValsHash) {
		return errorsmod.Wrapf(
			ErrValidatorSetMismatch,
			"trusted validators %X, does not hash to latest trusted validators. Expected: %X, got: %X",
			header.TrustedValidators, trustedConsState.NextValidatorsHash, trustedValsHash,
		)
	}

	// an adjacent header must be produced by the validator set the trusted header committed to
	validatorsHash := header.SignedHeader.Header.ValidatorsHash
	if header.GetHeight().EQ(header.TrustedHeight.Increment()) && !bytes.Equal(validatorsHash, trustedConsState.NextValidatorsHash) {
		return errorsmod.Wrapf(
			ErrValidatorSetMismatch,
			"adjacent header validators hash %X does not match trusted next validators hash %X",
			validatorsHash, trustedConsState.NextValidatorsHash,
		)
	}

	vote, err := header.CanonicalVote()
	if err != nil {
		return errorsmod.Wrapf(ErrInvalidHeader, "failed to canonicalize vote: %v", err)
	}

	commitment := ValidatorSetCommitment(trustedValsHash, validatorsHash)
	if err := vk.Verify(commitment, vote, header.ZeroKnowledgeProof); err != nil {
		return errorsmod.Wrapf(err, "failed to verify header at height %s", header.GetHeight())
	}

	return nil
}

// UpdateState may be used to either create a consensus state for:
// - a future height greater than the latest client state height
// - a past height that was skipped during bisection
// If we are updating to a past height, a consensus state is created for that height to be persisted in client store
// If we are updating to a future height, the consensus state is created and the client state is updated to reflect
// the new latest height
// A list containing the updated consensus height is returned.
// UpdateState must only be used to update within a single revision, thus header revision number and trusted height's revision
// number must be the same. To update to a new revision, use a separate upgrade path
// Consensus states are never pruned.
func (cs ClientState) UpdateState(ctx coretypes.Context, clientStore storetypes.KVStore, clientMsg exported.ClientMessage) []exported.Height {
	header, ok := clientMsg.(*Header)
	if !ok {
		panic(fmt.Errorf("expected type %T, got %T", &Header{}, clientMsg))
	}

	height := header.GetHeight()

	// check for duplicate update
	if _, found := GetConsensusState(clientStore, height); found {
		// perform no-op
		return []exported.Height{height}
	}

	if height.GT(cs.LatestHeight) {
		cs.LatestHeight = height
	}

	setConsensusState(clientStore, header.ConsensusState(), height)
	setConsensusMetadata(ctx, clientStore, height)
	setClientState(clientStore, &cs)

	return []exported.Height{height}
}

// UpdateStateOnMisbehaviour updates state upon misbehaviour, freezing the ClientState. This method should only be called when misbehaviour is detected
// as it does not perform any misbehaviour checks.
func (cs ClientState) UpdateStateOnMisbehaviour(_ coretypes.Context, clientStore storetypes.KVStore, clientMsg exported.ClientMessage) {
	switch msg := clientMsg.(type) {
	case *Header:
		cs.FrozenHeight = msg.GetHeight()
	case *Misbehaviour:
		cs.FrozenHeight = msg.FrozenHeight()
	default:
		panic(fmt.Errorf("expected type %T or %T, got %T", &Header{}, &Misbehaviour{}, clientMsg))
	}

	setClientState(clientStore, &cs)
}
