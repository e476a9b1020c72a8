package cometbls_test

import (
	"time"

	ics23 "github.com/cosmos/ics23/go"
	"google.golang.org/protobuf/encoding/protowire"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	ibcerrors "github.com/cometbls/ibc-lightclient/modules/core/errors"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	ibctesting "github.com/cometbls/ibc-lightclient/testing"
)

const (
	chainID        = "union-devnet-1"
	trustingPeriod = time.Hour * 24 * 7 * 2
	ubdPeriod      = time.Hour * 24 * 7 * 3
	maxClockDrift  = time.Second * 10
)

var height = clienttypes.NewHeight(1, 4)

func (s *CometBLSTestSuite) TestClientStateValidate() {
	testCases := []struct {
		name        string
		clientState *cometbls.ClientState
		expErr      error
	}{
		{
			name:        "valid client",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      nil,
		},
		{
			name:        "valid client with revision 0 chain id",
			clientState: cometbls.NewClientState("devnet", trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(0, 4), commitmenttypes.GetSDKSpecs()),
			expErr:      nil,
		},
		{
			name:        "invalid chainID",
			clientState: cometbls.NewClientState("  ", trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidChainID,
		},
		{
			// NOTE: chainID validation is limited to the cometbft max chain id length
			name:        "invalid chainID - chainID is too long",
			clientState: cometbls.NewClientState("union-devnet-"+string(make([]byte, 50))+"-1", trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidChainID,
		},
		{
			name:        "invalid chainID - revision overflows uint64",
			clientState: cometbls.NewClientState("testchain-99999999999999999999", trustingPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidChainID,
		},
		{
			name:        "invalid zero trusting period",
			clientState: cometbls.NewClientState(chainID, 0, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidTrustingPeriod,
		},
		{
			name:        "invalid negative trusting period",
			clientState: cometbls.NewClientState(chainID, -1, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidTrustingPeriod,
		},
		{
			name:        "invalid zero unbonding period",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, 0, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidUnbondingPeriod,
		},
		{
			name:        "invalid zero max clock drift",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, 0, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidMaxClockDrift,
		},
		{
			name:        "invalid revision number",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(2, 1), commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidHeaderHeight,
		},
		{
			name:        "invalid revision height",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, maxClockDrift, clienttypes.NewHeight(1, 0), commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidHeaderHeight,
		},
		{
			name:        "trusting period not less than unbonding period",
			clientState: cometbls.NewClientState(chainID, ubdPeriod, ubdPeriod, maxClockDrift, height, commitmenttypes.GetSDKSpecs()),
			expErr:      cometbls.ErrInvalidTrustingPeriod,
		},
		{
			name:        "proof specs are empty",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, maxClockDrift, height, nil),
			expErr:      cometbls.ErrInvalidProofSpecs,
		},
		{
			name:        "proof specs contain nil",
			clientState: cometbls.NewClientState(chainID, trustingPeriod, ubdPeriod, maxClockDrift, height, []*ics23.ProofSpec{ics23.IavlSpec, nil}),
			expErr:      cometbls.ErrInvalidProofSpecs,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.clientState.Validate()

			if tc.expErr == nil {
				s.Require().NoError(err, tc.name)
			} else {
				s.Require().ErrorIs(err, tc.expErr, tc.name)
			}
		})
	}
}

func (s *CometBLSTestSuite) TestIsExpired() {
	clientState := s.chain.ClientState()
	latest := s.coordinator.CurrentTime

	s.Require().False(clientState.IsExpired(latest, latest))
	s.Require().False(clientState.IsExpired(latest, latest.Add(clientState.TrustingPeriod)))
	s.Require().True(clientState.IsExpired(latest, latest.Add(clientState.TrustingPeriod+time.Nanosecond)))
}

func (s *CometBLSTestSuite) TestStatus() {
	testCases := []struct {
		name      string
		malleate  func()
		expStatus exported.Status
	}{
		{"client is active", func() {}, exported.Active},
		{"client is frozen", func() {
			s.coordinator.CommitBlock(s.chain)
			header := s.chain.ConstructUpdateHeader(s.host.GetClientState(s.clientID).LatestHeight)
			s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, header)
		}, exported.Frozen},
		{"client status is expired", func() {
			s.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
		}, exported.Expired},
		{"frozen takes precedence over expired", func() {
			s.coordinator.CommitBlock(s.chain)
			header := s.chain.ConstructUpdateHeader(s.host.GetClientState(s.clientID).LatestHeight)
			s.module().UpdateStateOnMisbehaviour(s.ctx(), s.clientID, header)
			s.coordinator.IncrementTimeBy(ibctesting.TrustingPeriod)
		}, exported.Frozen},
		{"client state not found", func() {
			s.clientID = "12-cometbls-100"
		}, exported.Unknown},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			tc.malleate()

			s.Require().Equal(tc.expStatus, s.module().Status(s.ctx(), s.clientID))
		})
	}
}

func (s *CometBLSTestSuite) TestInitialize() {
	var (
		clientStateBz    []byte
		consensusStateBz []byte
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{"valid", func() {}, nil},
		{"client state fails to decode", func() {
			clientStateBz = []byte("invalid")
		}, ibcerrors.ErrDecode},
		{"client state fails validation", func() {
			clientState := s.chain.ClientState()
			clientState.TrustingPeriod = clientState.UnbondingPeriod
			var err error
			clientStateBz, err = clientState.Marshal()
			s.Require().NoError(err)
		}, cometbls.ErrInvalidTrustingPeriod},
		{"client state is frozen", func() {
			clientState := s.chain.ClientState()
			clientState.FrozenHeight = clienttypes.NewHeight(1, 1)
			var err error
			clientStateBz, err = clientState.Marshal()
			s.Require().NoError(err)
		}, clienttypes.ErrInvalidClient},
		{"consensus state fails to decode", func() {
			consensusStateBz = []byte("invalid")
		}, ibcerrors.ErrDecode},
		{"consensus state fails validation", func() {
			consState := s.chain.ConsensusState()
			consState.Root = commitmenttypes.NewMerkleRoot(nil)
			consensusStateBz = consState.Marshal()
		}, clienttypes.ErrInvalidConsensus},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			clientStateBz = s.chain.ClientStateBytes()
			consensusStateBz = s.chain.ConsensusStateBytes()

			tc.malleate()

			clientID := clienttypes.FormatClientIdentifier(exported.CometBLS, 50)
			err := s.module().Initialize(s.ctx(), clientID, clientStateBz, consensusStateBz)

			if tc.expErr == nil {
				s.Require().NoError(err)
				s.Require().Equal(exported.Active, s.module().Status(s.ctx(), clientID))
				s.Require().Equal(s.chain.LatestHeight(), s.module().LatestHeight(s.ctx(), clientID))
			} else {
				s.Require().ErrorIs(err, tc.expErr)
				s.Require().Equal(exported.Unknown, s.module().Status(s.ctx(), clientID))
			}
		})
	}
}

func (s *CometBLSTestSuite) TestUnmarshalWrongWireType() {
	bytesField := func(num protowire.Number) []byte {
		bz := protowire.AppendTag(nil, num, protowire.BytesType)
		return protowire.AppendBytes(bz, []byte{0x08, 0x01})
	}
	varintField := func(num protowire.Number) []byte {
		bz := protowire.AppendTag(nil, num, protowire.VarintType)
		return protowire.AppendVarint(bz, 1)
	}

	for _, num := range []protowire.Number{2, 3, 4} {
		var clientState cometbls.ClientState
		err := clientState.Unmarshal(bytesField(num))
		s.Require().ErrorIs(err, ibcerrors.ErrDecode, "client state field %d", num)
	}
	for _, num := range []protowire.Number{1, 5, 6, 7} {
		var clientState cometbls.ClientState
		err := clientState.Unmarshal(varintField(num))
		s.Require().ErrorIs(err, ibcerrors.ErrDecode, "client state field %d", num)
	}

	var consState cometbls.ConsensusState
	s.Require().ErrorIs(consState.Unmarshal(bytesField(1)), ibcerrors.ErrDecode)
	s.Require().ErrorIs(consState.Unmarshal(varintField(2)), ibcerrors.ErrDecode)
	s.Require().ErrorIs(consState.Unmarshal(varintField(3)), ibcerrors.ErrDecode)

	var optimized cometbls.OptimizedConsensusState
	s.Require().ErrorIs(optimized.Unmarshal(bytesField(1)), ibcerrors.ErrDecode)
	s.Require().ErrorIs(optimized.Unmarshal(varintField(2)), ibcerrors.ErrDecode)

	// well formed encodings still round trip
	clientStateBz := s.chain.ClientStateBytes()
	var clientState cometbls.ClientState
	s.Require().NoError(clientState.Unmarshal(clientStateBz))
	s.Require().NoError(consState.Unmarshal(s.chain.ConsensusStateBytes()))
}

func (s *CometBLSTestSuite) TestTimestampAtHeight() {
	latest := s.host.GetClientState(s.clientID).LatestHeight

	timestamp, err := s.module().TimestampAtHeight(s.ctx(), s.clientID, latest)
	s.Require().NoError(err)
	s.Require().Equal(uint64(s.chain.Block(int64(latest.RevisionHeight)).Time.UnixNano()), timestamp)

	_, err = s.module().TimestampAtHeight(s.ctx(), s.clientID, latest.Increment())
	s.Require().ErrorIs(err, clienttypes.ErrConsensusStateNotFound)

	_, err = s.module().TimestampAtHeight(s.ctx(), "12-cometbls-100", latest)
	s.Require().ErrorIs(err, clienttypes.ErrStoreNotInitialized)

	s.Require().Equal(clienttypes.ZeroHeight(), s.module().LatestHeight(s.ctx(), "12-cometbls-100"))
}

func (s *CometBLSTestSuite) TestVerifyMembership() {
	var (
		key, value       []byte
		proof            []byte
		proofHeight      exported.Height
		path             exported.Path
		delayTimePeriod  uint64
		delayBlockPeriod uint64
	)

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"successful verification",
			func() {},
			nil,
		},
		{
			"successful verification in another store",
			func() {
				s.chain.Set(ibctesting.StoreKeyBank, []byte("balances/alice"), []byte("100stake"))
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)

				value = []byte("100stake")
				path = ibctesting.MerklePath(ibctesting.StoreKeyBank, []byte("balances/alice"))
				proof, proofHeight = s.chain.QueryProof(ibctesting.StoreKeyBank, []byte("balances/alice"))
			},
			nil,
		},
		{
			"successful verification at a height before the latest",
			func() {
				s.chain.Set(ibctesting.StoreKeyIBC, key, []byte("updated"))
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)
			},
			nil,
		},
		{
			"successful verification with delay periods",
			func() {
				delayTimePeriod = uint64(time.Hour.Nanoseconds())
				delayBlockPeriod = 2

				s.coordinator.IncrementTimeBy(time.Hour)
				s.host.NextBlock()
				s.host.NextBlock()
			},
			nil,
		},
		{
			"delay time period has not passed",
			func() {
				delayTimePeriod = uint64(time.Hour.Nanoseconds())
			},
			cometbls.ErrDelayPeriodNotPassed,
		},
		{
			"delay block period has not passed",
			func() {
				delayBlockPeriod = 10
			},
			cometbls.ErrDelayPeriodNotPassed,
		},
		{
			"value does not match",
			func() {
				value = []byte("invalid value")
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"proof is for a different key",
			func() {
				path = ibctesting.MerklePath(ibctesting.StoreKeyIBC, []byte("channel-1"))
			},
			commitmenttypes.ErrKeyMismatch,
		},
		{
			"proof was generated against a stale root",
			func() {
				s.chain.Set(ibctesting.StoreKeyBank, []byte("balances/alice"), []byte("100stake"))
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)

				proofHeight = s.chain.LatestHeight()
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"proof height is greater than the client latest height",
			func() {
				proofHeight = s.host.GetClientState(s.clientID).LatestHeight.Increment()
			},
			ibcerrors.ErrInvalidHeight,
		},
		{
			"no consensus state at the proof height",
			func() {
				proofHeight = clienttypes.NewHeight(1, 1)
			},
			clienttypes.ErrConsensusStateNotFound,
		},
		{
			"proof is malformed",
			func() {
				proof = []byte("invalid proof")
			},
			commitmenttypes.ErrMalformedProof,
		},
		{
			"proof is empty",
			func() {
				proof = nil
			},
			commitmenttypes.ErrMalformedProof,
		},
		{
			"path is not a merkle path",
			func() {
				path = commitmenttypes.NewMerklePrefix([]byte(ibctesting.StoreKeyIBC))
			},
			ibcerrors.ErrInvalidType,
		},
		{
			"client does not exist",
			func() {
				s.clientID = "12-cometbls-100"
			},
			clienttypes.ErrStoreNotInitialized,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			key = []byte("channel-0")
			value = []byte("channel value")
			delayTimePeriod, delayBlockPeriod = 0, 0

			s.chain.Set(ibctesting.StoreKeyIBC, key, value)
			s.coordinator.CommitBlock(s.chain)
			s.host.UpdateClientToLatest(s.clientID, s.chain)

			path = ibctesting.MerklePath(ibctesting.StoreKeyIBC, key)
			proof, proofHeight = s.chain.QueryProof(ibctesting.StoreKeyIBC, key)

			tc.malleate()

			err := s.module().VerifyMembership(s.ctx(), s.clientID, proofHeight, delayTimePeriod, delayBlockPeriod, proof, path, value)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}

func (s *CometBLSTestSuite) TestVerifyNonMembership() {
	var (
		proof       []byte
		proofHeight exported.Height
		path        exported.Path
	)

	absentKey := []byte("channel-7")

	testCases := []struct {
		name     string
		malleate func()
		expErr   error
	}{
		{
			"successful verification",
			func() {},
			nil,
		},
		{
			"key was deleted",
			func() {
				s.chain.Set(ibctesting.StoreKeyIBC, absentKey, []byte("value"))
				s.coordinator.CommitBlock(s.chain)
				s.chain.Delete(ibctesting.StoreKeyIBC, absentKey)
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)

				proof, proofHeight = s.chain.QueryProof(ibctesting.StoreKeyIBC, absentKey)
			},
			nil,
		},
		{
			"key exists",
			func() {
				s.chain.Set(ibctesting.StoreKeyIBC, absentKey, []byte("value"))
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)

				proof, proofHeight = s.chain.QueryProof(ibctesting.StoreKeyIBC, absentKey)
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"proof is for a different key",
			func() {
				path = ibctesting.MerklePath(ibctesting.StoreKeyIBC, []byte("channel-8"))
			},
			commitmenttypes.ErrKeyMismatch,
		},
		{
			"proof was generated against a stale root",
			func() {
				s.chain.Set(ibctesting.StoreKeyBank, []byte("balances/alice"), []byte("100stake"))
				s.coordinator.CommitBlock(s.chain)
				s.host.UpdateClientToLatest(s.clientID, s.chain)

				proofHeight = s.chain.LatestHeight()
			},
			commitmenttypes.ErrInvalidProof,
		},
		{
			"proof height is greater than the client latest height",
			func() {
				proofHeight = s.host.GetClientState(s.clientID).LatestHeight.Increment()
			},
			ibcerrors.ErrInvalidHeight,
		},
		{
			"proof is malformed",
			func() {
				proof = []byte("invalid proof")
			},
			commitmenttypes.ErrMalformedProof,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()

			s.chain.Set(ibctesting.StoreKeyIBC, []byte("channel-0"), []byte("channel value"))
			s.coordinator.CommitBlock(s.chain)
			s.host.UpdateClientToLatest(s.clientID, s.chain)

			path = ibctesting.MerklePath(ibctesting.StoreKeyIBC, absentKey)
			proof, proofHeight = s.chain.QueryProof(ibctesting.StoreKeyIBC, absentKey)

			tc.malleate()

			err := s.module().VerifyNonMembership(s.ctx(), s.clientID, proofHeight, 0, 0, proof, path)

			if tc.expErr == nil {
				s.Require().NoError(err)
			} else {
				s.Require().ErrorIs(err, tc.expErr)
			}
		})
	}
}
