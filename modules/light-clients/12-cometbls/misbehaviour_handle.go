package cometbls

import (
	"bytes"

	errorsmod "cosmossdk.io/errors"
	storetypes "cosmossdk.io/store/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

// CheckForMisbehaviour detects duplicate height misbehaviour and BFT time violation misbehaviour
// in a submitted Header message and verifies the correctness of a submitted Misbehaviour ClientMessage
func (ClientState) CheckForMisbehaviour(_ coretypes.Context, clientStore storetypes.KVStore, msg exported.ClientMessage) bool {
	switch msg := msg.(type) {
	case *Header:
		headerHeight := msg.GetHeight()
		consState := msg.ConsensusState()

		// Check if the Client store already has a consensus state for the header's height
		// If the consensus state exists, and it matches the header then we return early
		// since header has already been submitted in a previous UpdateClient.
		if existingConsState, found := GetConsensusState(clientStore, headerHeight); found {
			// This header has already been submitted and the necessary state is already stored
			// in client store, thus we can return early without further validation.
			if bytes.Equal(existingConsState.Marshal(), consState.Marshal()) {
				return false
			}

			// A consensus state already exists for this height, but it does not match the provided header.
			// The assumption is that Header has already been validated. Thus we can return true as misbehaviour is present
			return true
		}

		// Check that consensus state timestamps are monotonic
		prevCons, prevOk := GetPreviousConsensusState(clientStore, headerHeight)
		nextCons, nextOk := GetNextConsensusState(clientStore, headerHeight)
		// if previous consensus state exists, check consensus state time is greater than previous consensus state time
		// if previous consensus state is not before current consensus state return true
		if prevOk && !prevCons.Timestamp.Before(consState.Timestamp) {
			return true
		}
		// if next consensus state exists, check consensus state time is less than next consensus state time
		// if next consensus state is not after current consensus state return true
		if nextOk && !nextCons.Timestamp.After(consState.Timestamp) {
			return true
		}
	case *Misbehaviour:
		// if heights are equal check that this is valid misbehaviour of a fork
		// otherwise if heights are unequal check that this is valid misbehavior of BFT time violation
		if msg.Header1.GetHeight().EQ(msg.Header2.GetHeight()) {
			blockID1 := msg.Header1.SignedHeader.Commit.BlockID
			blockID2 := msg.Header2.SignedHeader.Commit.BlockID

			// Ensure that Commit Hashes are different
			if !bytes.Equal(blockID1.Hash, blockID2.Hash) {
				return true
			}
		} else if !msg.Header1.GetTime().After(msg.Header2.GetTime()) {
			// Header1 is at greater height than Header2, therefore Header1 time must be less than or equal to
			// Header2 time in order to be valid misbehaviour (violation of monotonic time).
			return true
		}
	}

	return false
}

// verifyMisbehaviour determines whether or not two conflicting
// headers at the same height would have convinced the light client.
//
// NOTE: consensusState1 is the trusted consensus state that corresponds to the TrustedHeight
// of misbehaviour.Header1
// Similarly, consensusState2 is the trusted consensus state that corresponds
// to misbehaviour.Header2
// Misbehaviour sets frozen height to the lower of the two conflicting heights
func (cs *ClientState) verifyMisbehaviour(ctx coretypes.Context, clientStore storetypes.KVStore, vk zkp.VerifyingKey, misbehaviour *Misbehaviour) error {
	if !cs.FrozenHeight.IsZero() {
		return errorsmod.Wrapf(clienttypes.ErrClientFrozen, "client frozen at height %s", cs.FrozenHeight)
	}

	if err := misbehaviour.ValidateBasic(); err != nil {
		return err
	}

	if misbehaviour.Header1.GetChainID() != cs.ChainId {
		return errorsmod.Wrapf(clienttypes.ErrInvalidMisbehaviour, "misbehaviour chain id (%s) does not match client chain id (%s)", misbehaviour.Header1.GetChainID(), cs.ChainId)
	}

	// Regardless of the type of misbehaviour, ensure that both headers are valid and would have been accepted by light-client

	// Retrieve trusted consensus states for each Header in misbehaviour
	consensusState1, found := GetConsensusState(clientStore, misbehaviour.Header1.TrustedHeight)
	if !found {
		return errorsmod.Wrapf(ErrUnknownTrustedHeight, "could not get trusted consensus state from clientStore for Header1 at TrustedHeight: %s", misbehaviour.Header1.TrustedHeight)
	}

	consensusState2, found := GetConsensusState(clientStore, misbehaviour.Header2.TrustedHeight)
	if !found {
		return errorsmod.Wrapf(ErrUnknownTrustedHeight, "could not get trusted consensus state from clientStore for Header2 at TrustedHeight: %s", misbehaviour.Header2.TrustedHeight)
	}

	// Check the validity of the two conflicting headers against their respective
	// trusted consensus states
	// NOTE: header height ordering is checked in misbehaviour.ValidateBasic.
	if err := cs.verifyHeaderAgainstTrusted(ctx, vk, consensusState1, misbehaviour.Header1); err != nil {
		return errorsmod.Wrap(err, "verifying Header1 in Misbehaviour failed")
	}
	if err := cs.verifyHeaderAgainstTrusted(ctx, vk, consensusState2, misbehaviour.Header2); err != nil {
		return errorsmod.Wrap(err, "verifying Header2 in Misbehaviour failed")
	}

	return nil
}
