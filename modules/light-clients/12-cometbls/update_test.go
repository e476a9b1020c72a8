package cometbls_test

import (
	"time"

	"github.com/cometbft/cometbft/crypto/tmhash"
	cmttypes "github.com/cometbft/cometbft/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
	ibctesting "github.com/cometbls/ibc-lightclient/testing"
)

func (s *CometBLSTestSuite) TestVerifyHeader() {
	var (
		header        *cometbls.Header
		trustedHeight clienttypes.Height
	)

	// a block of the counterparty chain built from its committed state
	headerAt := func(height int64, timestamp time.Time, vals, nextVals *cmttypes.ValidatorSet) *cometbls.Header {
		trusted := s.chain.Block(int64(trustedHeight.RevisionHeight))
		return s.chain.CreateClientHeader(height, trustedHeight, timestamp, tmhash.Sum([]byte("app_hash")), vals, nextVals, trusted.NextVals)
	}

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"success: adjacent header",
			func() {},
			nil,
		},
		{
			"success: non-adjacent header",
			func() {
				s.coordinator.CommitNBlocks(s.chain, 3)
				header = s.chain.ConstructUpdateHeader(trustedHeight)
			},
			nil,
		},
		{
			"success: non-adjacent header signed by a rotated validator set",
			func() {
				newVals, _ := ibctesting.GenerateValidatorSet(s.T(), 5)
				last := s.chain.LastBlock
				header = headerAt(last.Height+2, s.coordinator.CurrentTime, newVals, newVals)
			},
			nil,
		},
		{
			"success: header time within the clock drift",
			func() {
				last := s.chain.LastBlock
				header = headerAt(last.Height, s.coordinator.CurrentTime.Add(ibctesting.MaxClockDrift), last.Vals, last.NextVals)
			},
			nil,
		},
		{
			"client is frozen",
			func() {
				s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, header)
			},
			clienttypes.ErrClientFrozen,
		},
		{
			"header fails basic validation",
			func() {
				header.ZeroKnowledgeProof = nil
			},
			cometbls.ErrInvalidHeader,
		},
		{
			"header does not advance past its trusted height",
			func() {
				header.TrustedHeight = header.GetHeight()
			},
			cometbls.ErrHeightRegression,
		},
		{
			"header chain id does not match client chain id",
			func() {
				chainID := s.chain.ChainID
				s.chain.ChainID = "otherchain-1"
				defer func() { s.chain.ChainID = chainID }()

				header = s.chain.ConstructUpdateHeader(trustedHeight)
			},
			cometbls.ErrInvalidHeader,
		},
		{
			"trusted height has no consensus state",
			func() {
				trustedHeight = clienttypes.NewHeight(trustedHeight.RevisionNumber, trustedHeight.RevisionHeight-1)
				header = s.chain.ConstructUpdateHeader(trustedHeight)
			},
			cometbls.ErrUnknownTrustedHeight,
		},
		{
			"trusted consensus state is outside the trusting period",
			func() {
				s.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
				s.coordinator.CommitBlock(s.chain)
				header = s.chain.ConstructUpdateHeader(trustedHeight)
			},
			clienttypes.ErrExpiredTrustingPeriod,
		},
		{
			"header time is beyond the clock drift",
			func() {
				last := s.chain.LastBlock
				header = headerAt(last.Height, s.coordinator.CurrentTime.Add(ibctesting.MaxClockDrift+time.Second), last.Vals, last.NextVals)
			},
			cometbls.ErrClockDriftExceeded,
		},
		{
			"header time is not after the trusted consensus state time",
			func() {
				last := s.chain.LastBlock
				trusted := s.chain.Block(int64(trustedHeight.RevisionHeight))
				header = headerAt(last.Height, trusted.Time, last.Vals, last.NextVals)
			},
			cometbls.ErrInvalidHeader,
		},
		{
			"trusted validators do not match the trusted consensus state",
			func() {
				altVals, _ := ibctesting.GenerateValidatorSet(s.T(), 4)
				last := s.chain.LastBlock
				header = s.chain.CreateClientHeader(last.Height, trustedHeight, last.Time, last.AppHash, last.Vals, last.NextVals, altVals)
			},
			cometbls.ErrValidatorSetMismatch,
		},
		{
			"adjacent header signed by a validator set the trusted header did not commit to",
			func() {
				altVals, _ := ibctesting.GenerateValidatorSet(s.T(), 4)
				last := s.chain.LastBlock
				header = headerAt(last.Height, last.Time, altVals, altVals)
			},
			cometbls.ErrValidatorSetMismatch,
		},
		{
			"proof generated under a different verifying key",
			func() {
				other, err := ibctesting.NewMockProver()
				s.Require().NoError(err)

				vote, err := header.CanonicalVote()
				s.Require().NoError(err)

				header.ZeroKnowledgeProof, err = other.Prove(ibctesting.ValidatorSetCommitment(s.T(), header), vote)
				s.Require().NoError(err)
			},
			zkp.ErrInvalidProof,
		},
		{
			"proof generated for a different block",
			func() {
				s.coordinator.CommitBlock(s.chain)
				other := s.chain.ConstructUpdateHeader(trustedHeight)
				header.ZeroKnowledgeProof = other.ZeroKnowledgeProof
			},
			zkp.ErrInvalidPublicInput,
		},
		{
			"proof is truncated",
			func() {
				header.ZeroKnowledgeProof = header.ZeroKnowledgeProof[:zkp.ProofSize-1]
			},
			zkp.ErrMalformedProof,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			trustedHeight = s.host.GetClientState(s.clientID).LatestHeight
			s.coordinator.CommitBlock(s.chain)
			header = s.chain.ConstructUpdateHeader(trustedHeight)

			tc.malleate()

			err := s.module().VerifyClientMessage(s.ctx(), s.clientID, header)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *CometBLSTestSuite) TestUpdateClientRevisionOverflow() {
	trustedHeight := s.host.GetClientState(s.clientID).LatestHeight
	s.coordinator.CommitBlock(s.chain)
	header := s.chain.ConstructUpdateHeader(trustedHeight)

	// rebind the commit to the edited header so only the chain id is wrong
	header.SignedHeader.Header.ChainID = "testchain-99999999999999999999"
	cmtHeader, err := cmttypes.HeaderFromProto(header.SignedHeader.Header)
	s.Require().NoError(err)
	header.SignedHeader.Commit.BlockID.Hash = cmtHeader.Hash()

	s.Require().NotPanics(func() {
		_, err = s.host.UpdateClient(s.clientID, header)
	})
	s.Require().ErrorIs(err, cometbls.ErrInvalidHeader)
	s.Require().Equal(trustedHeight, s.host.GetClientState(s.clientID).LatestHeight)
}

func (s *CometBLSTestSuite) TestVerifyClientMessageUnknownClient() {
	header := s.chain.ConstructUpdateHeader(s.chain.Height(1))
	err := s.module().VerifyClientMessage(s.ctx(), "12-cometbls-100", header)
	s.Require().ErrorIs(err, clienttypes.ErrStoreNotInitialized)
}

func (s *CometBLSTestSuite) TestUpdateState() {
	initialHeight := s.host.GetClientState(s.clientID).LatestHeight

	s.coordinator.CommitNBlocks(s.chain, 2)
	skipped := s.chain.HeaderAt(s.chain.LastBlock.Height-1, initialHeight)
	latest := s.chain.ConstructUpdateHeader(initialHeight)

	s.Run("update to a new latest height", func() {
		ctx := s.ctx()
		s.Require().NoError(s.module().VerifyClientMessage(ctx, s.clientID, latest))
		heights := s.module().UpdateState(ctx, s.clientID, latest)

		s.Require().Equal([]exported.Height{latest.GetHeight()}, heights)
		s.Require().Equal(latest.GetHeight(), s.host.GetClientState(s.clientID).LatestHeight)

		consState, found := s.host.GetConsensusState(s.clientID, latest.GetHeight())
		s.Require().True(found)
		s.Require().Equal(latest.ConsensusState(), consState)

		processedTime, found := cometbls.GetProcessedTime(s.clientStore(), latest.GetHeight())
		s.Require().True(found)
		s.Require().Equal(uint64(ctx.BlockTime().UnixNano()), processedTime)

		processedHeight, found := cometbls.GetProcessedHeight(s.clientStore(), latest.GetHeight())
		s.Require().True(found)
		s.Require().Equal(clienttypes.GetSelfHeight(ctx), processedHeight)

		s.Require().NotNil(cometbls.GetIterationKey(s.clientStore(), latest.GetHeight()))
	})

	s.Run("update to a skipped height keeps the latest height", func() {
		s.Require().NoError(s.module().VerifyClientMessage(s.ctx(), s.clientID, skipped))
		s.Require().False(s.module().CheckForMisbehaviour(s.ctx(), s.clientID, skipped))

		heights := s.module().UpdateState(s.ctx(), s.clientID, skipped)
		s.Require().Equal([]exported.Height{skipped.GetHeight()}, heights)
		s.Require().Equal(latest.GetHeight(), s.host.GetClientState(s.clientID).LatestHeight)

		_, found := s.host.GetConsensusState(s.clientID, skipped.GetHeight())
		s.Require().True(found)
	})

	s.Run("duplicate update is a no-op", func() {
		prevClientState := s.host.GetClientState(s.clientID)
		prevConsState, found := s.host.GetConsensusState(s.clientID, latest.GetHeight())
		s.Require().True(found)
		prevProcessedTime, _ := cometbls.GetProcessedTime(s.clientStore(), latest.GetHeight())

		s.coordinator.IncrementTime()
		s.Require().False(s.module().CheckForMisbehaviour(s.ctx(), s.clientID, latest))
		heights := s.module().UpdateState(s.ctx(), s.clientID, latest)

		s.Require().Equal([]exported.Height{latest.GetHeight()}, heights)
		s.Require().Equal(prevClientState, s.host.GetClientState(s.clientID))

		consState, found := s.host.GetConsensusState(s.clientID, latest.GetHeight())
		s.Require().True(found)
		s.Require().Equal(prevConsState, consState)

		processedTime, _ := cometbls.GetProcessedTime(s.clientStore(), latest.GetHeight())
		s.Require().Equal(prevProcessedTime, processedTime)
	})
}

func (s *CometBLSTestSuite) TestUpdateStateIsMonotonic() {
	trustedHeight := s.host.GetClientState(s.clientID).LatestHeight

	var headers []*cometbls.Header
	for i := 0; i < 4; i++ {
		s.coordinator.CommitBlock(s.chain)
		headers = append(headers, s.chain.ConstructUpdateHeader(trustedHeight))
	}

	// apply out of order, the latest height only ever grows
	for _, i := range []int{1, 3, 0, 2} {
		header := headers[i]
		prevLatest := s.host.GetClientState(s.clientID).LatestHeight

		s.Require().NoError(s.module().VerifyClientMessage(s.ctx(), s.clientID, header))
		s.Require().False(s.module().CheckForMisbehaviour(s.ctx(), s.clientID, header))
		s.module().UpdateState(s.ctx(), s.clientID, header)

		latest := s.host.GetClientState(s.clientID).LatestHeight
		s.Require().True(latest.GTE(prevLatest))
		s.Require().True(latest.GTE(header.GetHeight()))
	}

	s.Require().Equal(headers[3].GetHeight(), s.host.GetClientState(s.clientID).LatestHeight)
}

func (s *CometBLSTestSuite) TestUpdateStateOnMisbehaviour() {
	s.coordinator.CommitBlock(s.chain)
	header := s.chain.ConstructUpdateHeader(s.host.GetClientState(s.clientID).LatestHeight)

	s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, header)

	clientState := s.host.GetClientState(s.clientID)
	s.Require().Equal(header.GetHeight(), clientState.FrozenHeight)
	s.Require().Equal(exported.Frozen, s.module().Status(s.ctx(), s.clientID))
}
