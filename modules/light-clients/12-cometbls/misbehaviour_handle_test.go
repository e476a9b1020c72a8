package cometbls_test

import (
	"time"

	"github.com/cometbft/cometbft/crypto/tmhash"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	host "github.com/cometbls/ibc-lightclient/modules/core/24-host"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

// forkHeader returns a header for the committed block at height with a different app hash
// and the given time, signed by the same validators.
func (s *CometBLSTestSuite) forkHeader(height int64, trustedHeight clienttypes.Height, timestamp time.Time) *cometbls.Header {
	block := s.chain.Block(height)
	trusted := s.chain.Block(int64(trustedHeight.RevisionHeight))
	return s.chain.CreateClientHeader(height, trustedHeight, timestamp, tmhash.Sum([]byte("fork")), block.Vals, block.NextVals, trusted.NextVals)
}

func (s *CometBLSTestSuite) TestCheckForMisbehaviourHeader() {
	var (
		trustedHeight clienttypes.Height
		header        *cometbls.Header
	)

	// update stores the header's consensus state on the client
	update := func(h *cometbls.Header) {
		s.Require().NoError(s.module().VerifyClientMessage(s.ctx(), s.clientID, h))
		s.module().UpdateState(s.ctx(), s.clientID, h)
	}

	testCases := []struct {
		name     string
		malleate func()
		expFound bool
	}{
		{
			"no consensus state at the header height",
			func() {},
			false,
		},
		{
			"identical consensus state already stored",
			func() {
				update(header)
			},
			false,
		},
		{
			"different consensus state stored at the header height",
			func() {
				update(header)
				header = s.forkHeader(s.chain.LastBlock.Height, trustedHeight, s.chain.LastBlock.Time)
			},
			true,
		},
		{
			"header time is not after the previous consensus state",
			func() {
				update(header)
				prevTime := s.chain.LastBlock.Time

				s.coordinator.CommitBlock(s.chain)
				header = s.forkHeader(s.chain.LastBlock.Height, trustedHeight, prevTime)
			},
			true,
		},
		{
			"header time is not before the next consensus state",
			func() {
				s.coordinator.CommitNBlocks(s.chain, 2)
				update(s.chain.ConstructUpdateHeader(trustedHeight))
				nextTime := s.chain.LastBlock.Time

				header = s.forkHeader(s.chain.LastBlock.Height-2, trustedHeight, nextTime)
			},
			true,
		},
		{
			"header fits between the previous and next consensus states",
			func() {
				s.coordinator.CommitNBlocks(s.chain, 2)
				update(s.chain.ConstructUpdateHeader(trustedHeight))
			},
			false,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			trustedHeight = s.host.GetClientState(s.clientID).LatestHeight
			s.coordinator.CommitBlock(s.chain)
			header = s.chain.ConstructUpdateHeader(trustedHeight)

			tc.malleate()

			found := s.module().CheckForMisbehaviour(s.ctx(), s.clientID, header)
			s.Require().Equal(tc.expFound, found)
		})
	}
}

func (s *CometBLSTestSuite) TestCheckForMisbehaviourMisbehaviour() {
	trustedHeight := s.host.GetClientState(s.clientID).LatestHeight
	s.coordinator.CommitNBlocks(s.chain, 2)

	lower := s.chain.HeaderAt(s.chain.LastBlock.Height-1, trustedHeight)
	upper := s.chain.ConstructUpdateHeader(trustedHeight)

	testCases := []struct {
		name         string
		misbehaviour *cometbls.Misbehaviour
		expFound     bool
	}{
		{
			"fork: same height, different blocks",
			cometbls.NewMisbehaviour(s.clientID, s.forkHeader(upper.SignedHeader.Header.Height, trustedHeight, upper.GetTime()), upper),
			true,
		},
		{
			"same height, same block",
			cometbls.NewMisbehaviour(s.clientID, upper, upper),
			false,
		},
		{
			"time violation: higher header is not later",
			cometbls.NewMisbehaviour(s.clientID, s.forkHeader(upper.SignedHeader.Header.Height, trustedHeight, lower.GetTime()), lower),
			true,
		},
		{
			"valid sequence of headers",
			cometbls.NewMisbehaviour(s.clientID, upper, lower),
			false,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			found := s.module().CheckForMisbehaviour(s.ctx(), s.clientID, tc.misbehaviour)
			s.Require().Equal(tc.expFound, found)
		})
	}
}

func (s *CometBLSTestSuite) TestVerifyMisbehaviour() {
	var (
		trustedHeight clienttypes.Height
		misbehaviour  *cometbls.Misbehaviour
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"valid fork",
			func() {},
			nil,
		},
		{
			"valid time violation",
			func() {
				s.coordinator.CommitBlock(s.chain)
				lower := misbehaviour.Header2
				misbehaviour.Header1 = s.forkHeader(s.chain.LastBlock.Height, trustedHeight, lower.GetTime())
			},
			nil,
		},
		{
			"client is frozen",
			func() {
				s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, misbehaviour)
			},
			clienttypes.ErrClientFrozen,
		},
		{
			"Header1 is nil",
			func() {
				misbehaviour.Header1 = nil
			},
			cometbls.ErrInvalidHeader,
		},
		{
			"Header1 height is lower than Header2 height",
			func() {
				s.coordinator.CommitBlock(s.chain)
				misbehaviour.Header1 = s.chain.ConstructUpdateHeader(trustedHeight)
				misbehaviour.Header1, misbehaviour.Header2 = misbehaviour.Header2, misbehaviour.Header1
			},
			clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"Header2 fails basic validation",
			func() {
				misbehaviour.Header2.ZeroKnowledgeProof = nil
			},
			clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"invalid client identifier",
			func() {
				misbehaviour.ClientId = "x"
			},
			host.ErrInvalidID,
		},
		{
			"headers are for a different chain",
			func() {
				chainID := s.chain.ChainID
				s.chain.ChainID = "otherchain-1"
				defer func() { s.chain.ChainID = chainID }()

				misbehaviour.Header1 = s.forkHeader(s.chain.LastBlock.Height, trustedHeight, s.chain.LastBlock.Time)
				misbehaviour.Header2 = s.chain.ConstructUpdateHeader(trustedHeight)
			},
			clienttypes.ErrInvalidMisbehaviour,
		},
		{
			"trusted height of Header1 has no consensus state",
			func() {
				previous := clienttypes.NewHeight(trustedHeight.RevisionNumber, trustedHeight.RevisionHeight-1)
				misbehaviour.Header1 = s.forkHeader(s.chain.LastBlock.Height, previous, s.chain.LastBlock.Time)
			},
			cometbls.ErrUnknownTrustedHeight,
		},
		{
			"Header1 proof does not verify",
			func() {
				misbehaviour.Header1.ZeroKnowledgeProof = misbehaviour.Header2.ZeroKnowledgeProof
			},
			zkp.ErrInvalidPublicInput,
		},
		{
			"Header2 time is beyond the clock drift",
			func() {
				last := s.chain.LastBlock
				trusted := s.chain.Block(int64(trustedHeight.RevisionHeight))
				misbehaviour.Header2 = s.chain.CreateClientHeader(
					last.Height, trustedHeight, s.coordinator.CurrentTime.Add(time.Hour), last.AppHash,
					last.Vals, last.NextVals, trusted.NextVals,
				)
			},
			cometbls.ErrClockDriftExceeded,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			trustedHeight = s.host.GetClientState(s.clientID).LatestHeight
			s.coordinator.CommitBlock(s.chain)

			genuine := s.chain.ConstructUpdateHeader(trustedHeight)
			fork := s.forkHeader(s.chain.LastBlock.Height, trustedHeight, s.chain.LastBlock.Time)
			misbehaviour = cometbls.NewMisbehaviour(s.clientID, fork, genuine)

			tc.malleate()

			err := s.module().VerifyClientMessage(s.ctx(), s.clientID, misbehaviour)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().True(s.module().CheckForMisbehaviour(s.ctx(), s.clientID, misbehaviour))
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *CometBLSTestSuite) TestUpdateStateOnMisbehaviourFreezesAtLowerHeight() {
	trustedHeight := s.host.GetClientState(s.clientID).LatestHeight
	s.coordinator.CommitNBlocks(s.chain, 2)

	lower := s.chain.HeaderAt(s.chain.LastBlock.Height-1, trustedHeight)
	upper := s.forkHeader(s.chain.LastBlock.Height, trustedHeight, lower.GetTime())
	misbehaviour := cometbls.NewMisbehaviour(s.clientID, upper, lower)

	s.Require().NoError(s.module().VerifyClientMessage(s.ctx(), s.clientID, misbehaviour))
	s.Require().True(s.module().CheckForMisbehaviour(s.ctx(), s.clientID, misbehaviour))
	s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, misbehaviour)

	s.Require().Equal(lower.GetHeight(), s.host.GetClientState(s.clientID).FrozenHeight)
	s.Require().Equal(exported.Frozen, s.module().Status(s.ctx(), s.clientID))

	// a frozen client rejects further headers
	err := s.module().VerifyClientMessage(s.ctx(), s.clientID, upper)
	s.Require().ErrorIs(err, clienttypes.ErrClientFrozen)
}
