package keeper_test

import (
	"time"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
	ibctesting "github.com/cometbls/ibc-lightclient/testing"
)

func (suite *KeeperTestSuite) TestCreateClient() {
	var (
		clientType     string
		clientState    []byte
		consensusState []byte
	)

	testCases := []struct {
		msg      string
		malleate func()
		expErr   error
	}{
		{
			"success",
			func() {},
			nil,
		},
		{
			"failure: client type not in the allowlist",
			func() {
				clientType = "07-tendermint"
			},
			types.ErrInvalidClientType,
		},
		{
			"failure: client state is invalid",
			func() {
				cs := suite.chain.ClientState()
				cs.ChainId = ""
				var err error
				clientState, err = cs.Marshal()
				suite.Require().NoError(err)
			},
			cometbls.ErrInvalidChainID,
		},
		{
			"failure: client is expired on creation",
			func() {
				suite.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
			},
			types.ErrClientNotActive,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.msg, func() {
			suite.SetupTest()

			clientType = exported.CometBLS
			clientState = suite.chain.ClientStateBytes()
			consensusState = suite.chain.ConsensusStateBytes()

			tc.malleate()

			clientID, err := suite.keeper.CreateClient(suite.ctx(), clientType, clientState, consensusState)

			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal("12-cometbls-0", clientID)
				suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				suite.Require().Equal(suite.chain.LatestHeight(), suite.keeper.GetClientLatestHeight(suite.ctx(), clientID))

				_, found := suite.keeper.GetClientConsensusState(suite.ctx(), clientID, suite.chain.LatestHeight())
				suite.Require().True(found)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
				suite.Require().Empty(clientID)

				// nothing is written on failure
				suite.Require().Equal(uint64(0), suite.keeper.GetNextClientSequence(suite.ctx()))
				_, found := suite.keeper.GetClientState(suite.ctx(), "12-cometbls-0")
				suite.Require().False(found)
			}
		})
	}
}

func (suite *KeeperTestSuite) TestCreateClientExists() {
	clientID := suite.host.CreateClient(suite.chain)

	// rewind the sequence so the next identifier collides with the stored client
	suite.keeper.SetNextClientSequence(suite.ctx(), 0)

	_, err := suite.keeper.CreateClient(suite.ctx(), exported.CometBLS, suite.chain.ClientStateBytes(), suite.chain.ConsensusStateBytes())
	suite.Require().ErrorIs(err, types.ErrClientExists)
	suite.Require().Equal(uint64(0), suite.keeper.GetNextClientSequence(suite.ctx()))

	_, found := suite.keeper.GetClientState(suite.ctx(), clientID)
	suite.Require().True(found)
}

func (suite *KeeperTestSuite) TestUpdateClient() {
	var (
		clientID  string
		clientMsg exported.ClientMessage
	)

	testCases := []struct {
		name      string
		malleate  func()
		expFrozen bool
		expErr    error
	}{
		{
			"valid update",
			func() {},
			false,
			nil,
		},
		{
			"valid duplicate update is a no-op",
			func() {
				_, err := suite.host.UpdateClient(clientID, clientMsg.(*cometbls.Header))
				suite.Require().NoError(err)
			},
			false,
			nil,
		},
		{
			"conflicting header freezes the client",
			func() {
				header := clientMsg.(*cometbls.Header)
				_, err := suite.host.UpdateClient(clientID, header)
				suite.Require().NoError(err)

				clientMsg = suite.forkHeader(header)
			},
			true,
			nil,
		},
		{
			"valid misbehaviour freezes the client",
			func() {
				header := clientMsg.(*cometbls.Header)
				clientMsg = cometbls.NewMisbehaviour(clientID, suite.forkHeader(header), header)
			},
			true,
			nil,
		},
		{
			"misbehaviour without a conflict",
			func() {
				header := clientMsg.(*cometbls.Header)
				clientMsg = cometbls.NewMisbehaviour(clientID, header, header)
			},
			false,
			types.ErrNoConflictDetected,
		},
		{
			"client is frozen",
			func() {
				header := clientMsg.(*cometbls.Header)
				suite.host.Module.UpdateStateOnMisbehaviour(suite.ctx(), clientID, header)
			},
			true,
			types.ErrClientFrozen,
		},
		{
			"client is expired",
			func() {
				suite.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
			},
			false,
			types.ErrExpiredTrustingPeriod,
		},
		{
			"client does not exist",
			func() {
				clientID = "12-cometbls-100"
			},
			false,
			types.ErrStoreNotInitialized,
		},
		{
			"header fails verification",
			func() {
				header := clientMsg.(*cometbls.Header)
				header.ZeroKnowledgeProof = append([]byte{}, header.ZeroKnowledgeProof...)
				header.ZeroKnowledgeProof[len(header.ZeroKnowledgeProof)-1] ^= 0x01
			},
			false,
			zkp.ErrInvalidPublicInput,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()

			clientID = suite.host.CreateClient(suite.chain)
			trustedHeight := suite.keeper.GetClientLatestHeight(suite.ctx(), clientID)

			suite.coordinator.CommitBlock(suite.chain)
			clientMsg = suite.chain.ConstructUpdateHeader(trustedHeight)

			tc.malleate()

			prevLatest := suite.keeper.GetClientLatestHeight(suite.ctx(), clientID)
			heights, err := suite.keeper.UpdateClient(suite.ctx(), clientID, clientMsg)

			if tc.expErr == nil {
				suite.Require().NoError(err)

				if tc.expFrozen {
					suite.Require().Empty(heights)
					suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				} else {
					header := clientMsg.(*cometbls.Header)
					suite.Require().Equal([]exported.Height{header.GetHeight()}, heights)
					suite.Require().Equal(header.GetHeight(), suite.keeper.GetClientLatestHeight(suite.ctx(), clientID))
					suite.Require().Equal(exported.Active, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				}
			} else {
				suite.Require().Error(err)
				suite.Require().Nil(heights)
				suite.Require().Equal(prevLatest, suite.keeper.GetClientLatestHeight(suite.ctx(), clientID))

				if tc.expFrozen {
					suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				} else if clientID != "12-cometbls-100" {
					suite.Require().NotEqual(exported.Frozen, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				}
			}
		})
	}
}

func (suite *KeeperTestSuite) TestSubmitMisbehaviour() {
	var (
		clientID     string
		misbehaviour *cometbls.Misbehaviour
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
				lower := misbehaviour.Header2
				suite.coordinator.CommitBlock(suite.chain)
				upper := suite.chain.ConstructUpdateHeader(lower.TrustedHeight)
				misbehaviour.Header1 = suite.retimedHeader(upper, lower.GetTime())
			},
			nil,
		},
		{
			"headers do not conflict",
			func() {
				misbehaviour.Header1 = misbehaviour.Header2
			},
			types.ErrNoConflictDetected,
		},
		{
			"misbehaviour is for another client",
			func() {
				misbehaviour.ClientId = "12-cometbls-7"
			},
			types.ErrInvalidMisbehaviour,
		},
		{
			"client is already frozen",
			func() {
				suite.Require().NoError(suite.keeper.SubmitMisbehaviour(suite.ctx(), clientID, misbehaviour))
			},
			types.ErrClientFrozen,
		},
		{
			"conflicting header has an invalid proof",
			func() {
				misbehaviour.Header1.ZeroKnowledgeProof = misbehaviour.Header2.ZeroKnowledgeProof
			},
			zkp.ErrInvalidPublicInput,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.SetupTest()

			clientID = suite.host.CreateClient(suite.chain)
			trustedHeight := suite.keeper.GetClientLatestHeight(suite.ctx(), clientID)

			suite.coordinator.CommitBlock(suite.chain)
			header := suite.chain.ConstructUpdateHeader(trustedHeight)
			misbehaviour = cometbls.NewMisbehaviour(clientID, suite.forkHeader(header), header)

			tc.malleate()

			err := suite.keeper.SubmitMisbehaviour(suite.ctx(), clientID, misbehaviour)

			if tc.expErr == nil {
				suite.Require().NoError(err)
				suite.Require().Equal(exported.Frozen, suite.keeper.GetClientStatus(suite.ctx(), clientID))
				suite.Require().Equal(misbehaviour.FrozenHeight(), suite.host.GetClientState(clientID).FrozenHeight)
			} else {
				suite.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

// TestLightClientLifecycle initializes a client at (1,100), updates it to (1,101) and checks
// that only proofs against the latest root verify.
func (suite *KeeperTestSuite) TestLightClientLifecycle() {
	var (
		key   = []byte("channel-0")
		value = []byte("open")
	)

	chain := ibctesting.NewTestChainAtHeight(suite.coordinator, ibctesting.DefaultChainID, 100,
		ibctesting.GenesisEntry{StoreKey: ibctesting.StoreKeyIBC, Key: key, Value: value},
	)
	host := ibctesting.NewHost(suite.coordinator, chain.Prover.VerifyingKey())
	k := host.Keeper
	path := ibctesting.MerklePath(ibctesting.StoreKeyIBC, key)

	// initialize at (1,100) with root R0
	clientID := host.CreateClient(chain)
	suite.Require().Equal(types.NewHeight(1, 100), k.GetClientLatestHeight(host.GetContext(), clientID))
	staleProof, staleHeight := chain.QueryProof(ibctesting.StoreKeyIBC, key)
	r0 := chain.LastBlock.AppHash

	// (1,101) carries root R1
	chain.Set(ibctesting.StoreKeyBank, []byte("balances/alice"), []byte("100stake"))
	suite.coordinator.CommitBlock(chain)
	r1 := chain.LastBlock.AppHash
	suite.Require().NotEqual(r0, r1)

	header := chain.ConstructUpdateHeader(types.NewHeight(1, 100))
	heights, err := host.UpdateClient(clientID, header)
	suite.Require().NoError(err)
	suite.Require().Equal([]exported.Height{types.NewHeight(1, 101)}, heights)
	suite.Require().Equal(types.NewHeight(1, 101), k.GetClientLatestHeight(host.GetContext(), clientID))

	// resubmitting the same header changes nothing
	heights, err = host.UpdateClient(clientID, header)
	suite.Require().NoError(err)
	suite.Require().Equal([]exported.Height{types.NewHeight(1, 101)}, heights)
	suite.Require().Equal(exported.Active, k.GetClientStatus(host.GetContext(), clientID))

	proof, proofHeight := chain.QueryProof(ibctesting.StoreKeyIBC, key)
	suite.Require().Equal(types.NewHeight(1, 101), proofHeight)
	err = k.VerifyMembership(host.GetContext(), clientID, proofHeight, 0, 0, proof, path, value)
	suite.Require().NoError(err)

	// a proof against R0 does not verify against R1
	err = k.VerifyMembership(host.GetContext(), clientID, proofHeight, 0, 0, staleProof, path, value)
	suite.Require().ErrorIs(err, commitmenttypes.ErrInvalidProof)

	// it still verifies at the height it was generated for
	err = k.VerifyMembership(host.GetContext(), clientID, staleHeight, 0, 0, staleProof, path, value)
	suite.Require().NoError(err)

	absent := []byte("channel-1")
	nonMembershipProof, _ := chain.QueryProof(ibctesting.StoreKeyIBC, absent)
	err = k.VerifyNonMembership(host.GetContext(), clientID, proofHeight, 0, 0, nonMembershipProof, ibctesting.MerklePath(ibctesting.StoreKeyIBC, absent))
	suite.Require().NoError(err)

	// equivocation at (1,101) freezes the client
	fork := chain.CreateClientHeader(101, types.NewHeight(1, 100), header.GetTime(), r0,
		chain.Block(101).Vals, chain.Block(101).NextVals, chain.Block(100).NextVals)
	heights, err = host.UpdateClient(clientID, fork)
	suite.Require().NoError(err)
	suite.Require().Empty(heights)
	suite.Require().Equal(exported.Frozen, k.GetClientStatus(host.GetContext(), clientID))

	err = k.VerifyMembership(host.GetContext(), clientID, proofHeight, 0, 0, proof, path, value)
	suite.Require().ErrorIs(err, types.ErrClientFrozen)

	suite.coordinator.CommitBlock(chain)
	_, err = host.UpdateClient(clientID, chain.ConstructUpdateHeader(types.NewHeight(1, 101)))
	suite.Require().ErrorIs(err, types.ErrClientFrozen)
}

func (suite *KeeperTestSuite) TestVerifyMembershipUnknownClient() {
	proof, proofHeight := suite.chain.QueryProof(ibctesting.StoreKeyIBC, []byte("channel-0"))
	path := ibctesting.MerklePath(ibctesting.StoreKeyIBC, []byte("channel-0"))

	err := suite.keeper.VerifyMembership(suite.ctx(), "12-cometbls-100", proofHeight, 0, 0, proof, path, []byte("value"))
	suite.Require().ErrorIs(err, types.ErrStoreNotInitialized)

	err = suite.keeper.VerifyNonMembership(suite.ctx(), "12-cometbls-100", proofHeight, 0, 0, proof, path)
	suite.Require().ErrorIs(err, types.ErrStoreNotInitialized)
}

// forkHeader returns a header at the same height as header committing to a different app hash.
func (suite *KeeperTestSuite) forkHeader(header *cometbls.Header) *cometbls.Header {
	height := header.SignedHeader.Header.Height
	block := suite.chain.Block(height)
	trusted := suite.chain.Block(int64(header.TrustedHeight.RevisionHeight))

	return suite.chain.CreateClientHeader(
		height, header.TrustedHeight, header.GetTime(), []byte("01234567890123456789012345678901"),
		block.Vals, block.NextVals, trusted.NextVals,
	)
}

// retimedHeader returns a header for the same block contents as header with a different time.
func (suite *KeeperTestSuite) retimedHeader(header *cometbls.Header, timestamp time.Time) *cometbls.Header {
	height := header.SignedHeader.Header.Height
	block := suite.chain.Block(height)
	trusted := suite.chain.Block(int64(header.TrustedHeight.RevisionHeight))

	return suite.chain.CreateClientHeader(height, header.TrustedHeight, timestamp, block.AppHash, block.Vals, block.NextVals, trusted.NextVals)
}
