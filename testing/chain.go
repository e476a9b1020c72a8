package ibctesting

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dbm "github.com/cosmos/cosmos-db"

	"cosmossdk.io/log"
	"cosmossdk.io/store/metrics"
	"cosmossdk.io/store/rootmulti"
	storetypes "cosmossdk.io/store/types"

	"github.com/cometbft/cometbft/crypto/tmhash"
	cmtprotoversion "github.com/cometbft/cometbft/proto/tendermint/version"
	cmttypes "github.com/cometbft/cometbft/types"
	cmtversion "github.com/cometbft/cometbft/version"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
)

// CommitRound is the consensus round every TestChain block is committed in.
const CommitRound = 1

// BlockInfo records what a committed TestChain block exposes to a light client.
type BlockInfo struct {
	Height   int64
	Time     time.Time
	AppHash  []byte
	Vals     *cmttypes.ValidatorSet
	NextVals *cmttypes.ValidatorSet
}

// TestChain is a testing struct that simulates the counterparty chain tracked by a cometbls
// client. Application state lives in a multistore of IAVL trees, so the app hash committed in
// every block is a real root that ICS23 proofs can be queried against.
type TestChain struct {
	TB          testing.TB
	Coordinator *Coordinator
	ChainID     string
	Prover      *MockProver

	// Vals signs the next block; NextVals signs the block after it.
	Vals     *cmttypes.ValidatorSet
	NextVals *cmttypes.ValidatorSet
	Signers  map[string]cmttypes.PrivValidator

	// LastBlock is the most recently committed block.
	LastBlock BlockInfo

	store     *rootmulti.Store
	storeKeys map[string]*storetypes.KVStoreKey
	blocks    map[int64]BlockInfo
}

// GenesisEntry is a key/value pair written to an application store before the first block.
type GenesisEntry struct {
	StoreKey string
	Key      []byte
	Value    []byte
}

// NewTestChain initializes a new TestChain with four equally weighted validators, a fresh
// prover and an application committed at height 1.
func NewTestChain(coord *Coordinator, chainID string) *TestChain {
	return NewTestChainAtHeight(coord, chainID, 1)
}

// NewTestChainAtHeight initializes a new TestChain whose first committed block has the given
// height and contains the genesis entries.
func NewTestChainAtHeight(coord *Coordinator, chainID string, initialHeight int64, genesis ...GenesisEntry) *TestChain {
	tb := coord.TB
	tb.Helper()

	vals, signers := GenerateValidatorSet(tb, 4)

	prover, err := NewMockProver()
	require.NoError(tb, err)

	db := dbm.NewMemDB()
	store := rootmulti.NewStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())

	storeKeys := make(map[string]*storetypes.KVStoreKey)
	for _, name := range []string{StoreKeyIBC, StoreKeyBank} {
		storeKeys[name] = storetypes.NewKVStoreKey(name)
		store.MountStoreWithDB(storeKeys[name], storetypes.StoreTypeIAVL, nil)
	}
	require.NoError(tb, store.LoadLatestVersion())
	require.NoError(tb, store.SetInitialVersion(initialHeight))

	chain := &TestChain{
		TB:          tb,
		Coordinator: coord,
		ChainID:     chainID,
		Prover:      prover,
		Vals:        vals,
		NextVals:    vals,
		Signers:     signers,
		store:       store,
		storeKeys:   storeKeys,
		blocks:      make(map[int64]BlockInfo),
	}

	for _, entry := range genesis {
		chain.Set(entry.StoreKey, entry.Key, entry.Value)
	}
	coord.CommitBlock(chain)

	return chain
}

// GenerateValidatorSet creates n validators of power 1 backed by mock private validators.
func GenerateValidatorSet(tb testing.TB, n int) (*cmttypes.ValidatorSet, map[string]cmttypes.PrivValidator) {
	tb.Helper()

	validators := make([]*cmttypes.Validator, 0, n)
	signers := make(map[string]cmttypes.PrivValidator, n)
	for i := 0; i < n; i++ {
		privVal := cmttypes.NewMockPV()
		pubKey, err := privVal.GetPubKey()
		require.NoError(tb, err)

		validators = append(validators, cmttypes.NewValidator(pubKey, 1))
		signers[pubKey.Address().String()] = privVal
	}

	return cmttypes.NewValidatorSet(validators), signers
}

// Set writes a key/value pair into one of the application stores. It becomes provable once
// the next block is committed.
func (chain *TestChain) Set(storeKey string, key, value []byte) {
	chain.kvStore(storeKey).Set(key, value)
}

// Delete removes a key from one of the application stores.
func (chain *TestChain) Delete(storeKey string, key []byte) {
	chain.kvStore(storeKey).Delete(key)
}

func (chain *TestChain) kvStore(storeKey string) storetypes.KVStore {
	key, ok := chain.storeKeys[storeKey]
	require.True(chain.TB, ok, "store %s is not mounted", storeKey)
	return chain.store.GetKVStore(key)
}

// NextBlock commits the pending application state as a new block at the coordinator's
// current time. The validator set rotates to NextVals.
func (chain *TestChain) NextBlock() {
	commitID := chain.store.Commit()

	block := BlockInfo{
		Height:   commitID.Version,
		Time:     chain.Coordinator.CurrentTime,
		AppHash:  commitID.Hash,
		Vals:     chain.Vals,
		NextVals: chain.NextVals,
	}
	chain.blocks[block.Height] = block
	chain.LastBlock = block

	chain.Vals = chain.NextVals
}

// LatestHeight returns the client height of the last committed block.
func (chain *TestChain) LatestHeight() clienttypes.Height {
	return chain.Height(chain.LastBlock.Height)
}

// Height returns the client height of the given block height on this chain.
func (chain *TestChain) Height(blockHeight int64) clienttypes.Height {
	return clienttypes.NewHeight(clienttypes.ParseChainID(chain.ChainID), uint64(blockHeight))
}

// Block returns the committed block at the given height.
func (chain *TestChain) Block(height int64) BlockInfo {
	block, ok := chain.blocks[height]
	require.True(chain.TB, ok, "no block committed at height %d", height)
	return block
}

// ClientState returns a cometbls client state tracking this chain at its latest height.
func (chain *TestChain) ClientState() *cometbls.ClientState {
	cfg := NewCometBLSConfig()
	return cometbls.NewClientState(
		chain.ChainID, cfg.TrustingPeriod, cfg.UnbondingPeriod, cfg.MaxClockDrift,
		chain.LatestHeight(), commitmenttypes.GetSDKSpecs(),
	)
}

// ConsensusState returns the consensus state of the last committed block.
func (chain *TestChain) ConsensusState() *cometbls.ConsensusState {
	return chain.ConsensusStateAt(chain.LastBlock.Height)
}

// ConsensusStateAt returns the consensus state of the block committed at the given height.
func (chain *TestChain) ConsensusStateAt(height int64) *cometbls.ConsensusState {
	block := chain.Block(height)
	return cometbls.NewConsensusState(block.Time, commitmenttypes.NewMerkleRoot(block.AppHash), block.NextVals.Hash())
}

// ClientStateBytes returns the encoded client state.
func (chain *TestChain) ClientStateBytes() []byte {
	bz, err := chain.ClientState().Marshal()
	require.NoError(chain.TB, err)
	return bz
}

// ConsensusStateBytes returns the encoded consensus state of the last committed block.
func (chain *TestChain) ConsensusStateBytes() []byte {
	return chain.ConsensusState().Marshal()
}

// ConstructUpdateHeader returns a header for the last committed block that is verified
// against the consensus state stored at trustedHeight.
func (chain *TestChain) ConstructUpdateHeader(trustedHeight clienttypes.Height) *cometbls.Header {
	return chain.HeaderAt(chain.LastBlock.Height, trustedHeight)
}

// HeaderAt returns a header for the committed block at blockHeight, trusting trustedHeight.
func (chain *TestChain) HeaderAt(blockHeight int64, trustedHeight clienttypes.Height) *cometbls.Header {
	block := chain.Block(blockHeight)
	trusted := chain.Block(int64(trustedHeight.RevisionHeight))

	return chain.CreateClientHeader(block.Height, trustedHeight, block.Time, block.AppHash, block.Vals, block.NextVals, trusted.NextVals)
}

// CreateClientHeader creates a cometbls header for an arbitrary block of this chain along
// with a proof over its canonical precommit vote. It does not need to correspond to a
// committed block, which makes it suitable for constructing conflicting headers.
func (chain *TestChain) CreateClientHeader(
	blockHeight int64, trustedHeight clienttypes.Height, timestamp time.Time, appHash []byte,
	cmtValSet, nextVals, cmtTrustedVals *cmttypes.ValidatorSet,
) *cometbls.Header {
	require.NotNil(chain.TB, cmtValSet)
	require.NotNil(chain.TB, nextVals)
	require.NotNil(chain.TB, cmtTrustedVals)

	cmtHeader := cmttypes.Header{
		Version:            cmtprotoversion.Consensus{Block: cmtversion.BlockProtocol, App: 2},
		ChainID:            chain.ChainID,
		Height:             blockHeight,
		Time:               timestamp.UTC(),
		LastBlockID:        MakeBlockID(make([]byte, tmhash.Size), 10_000, make([]byte, tmhash.Size)),
		LastCommitHash:     tmhash.Sum([]byte("last_commit_hash")),
		DataHash:           tmhash.Sum([]byte("data_hash")),
		ValidatorsHash:     cmtValSet.Hash(),
		NextValidatorsHash: nextVals.Hash(),
		ConsensusHash:      tmhash.Sum([]byte("consensus_hash")),
		AppHash:            appHash,
		LastResultsHash:    tmhash.Sum([]byte("last_results_hash")),
		EvidenceHash:       cmttypes.EvidenceList{}.Hash(),
		ProposerAddress:    cmtValSet.Proposer.Address,
	}

	blockID := MakeBlockID(cmtHeader.Hash(), 3, tmhash.Sum([]byte("part_set")))

	signedHeader := &cmttypes.SignedHeader{
		Header: &cmtHeader,
		Commit: &cmttypes.Commit{
			Height:  blockHeight,
			Round:   CommitRound,
			BlockID: blockID,
		},
	}

	header := &cometbls.Header{
		SignedHeader:  signedHeader.ToProto(),
		TrustedHeight: trustedHeight,
	}

	var err error
	header.ValidatorSet, err = cmtValSet.ToProto()
	require.NoError(chain.TB, err)
	header.TrustedValidators, err = cmtTrustedVals.ToProto()
	require.NoError(chain.TB, err)

	header.ZeroKnowledgeProof = chain.Prove(header)

	return header
}

// Prove generates a proof for the header's canonical vote and validator sets as they are
// currently set on the header.
func (chain *TestChain) Prove(header *cometbls.Header) []byte {
	vote, err := header.CanonicalVote()
	require.NoError(chain.TB, err)

	proof, err := chain.Prover.Prove(ValidatorSetCommitment(chain.TB, header), vote)
	require.NoError(chain.TB, err)

	return proof
}

// ValidatorSetCommitment computes the commitment a header's proof is bound to.
func ValidatorSetCommitment(tb testing.TB, header *cometbls.Header) []byte {
	tb.Helper()

	trustedVals, err := cmttypes.ValidatorSetFromProto(header.TrustedValidators)
	require.NoError(tb, err)
	vals, err := cmttypes.ValidatorSetFromProto(header.ValidatorSet)
	require.NoError(tb, err)

	return cometbls.ValidatorSetCommitment(trustedVals.Hash(), vals.Hash())
}

// QueryProof returns the encoded ICS23 proof for key in the given store at the latest
// committed height, together with that height. Absent keys yield a non-existence proof.
func (chain *TestChain) QueryProof(storeKey string, key []byte) ([]byte, clienttypes.Height) {
	return chain.QueryProofAtHeight(storeKey, key, chain.LastBlock.Height)
}

// QueryProofAtHeight returns the encoded ICS23 proof for key in the given store against the
// app hash committed at height.
func (chain *TestChain) QueryProofAtHeight(storeKey string, key []byte, height int64) ([]byte, clienttypes.Height) {
	res, err := chain.store.Query(&storetypes.RequestQuery{
		Path:   fmt.Sprintf("/%s/key", storeKey),
		Height: height,
		Data:   key,
		Prove:  true,
	})
	require.NoError(chain.TB, err)

	merkleProof, err := commitmenttypes.ConvertProofs(res.ProofOps)
	require.NoError(chain.TB, err)

	proof, err := merkleProof.Marshal()
	require.NoError(chain.TB, err)

	return proof, chain.Height(height)
}

// MerklePath returns the path of key within the given application store.
func MerklePath(storeKey string, key []byte) commitmenttypes.MerklePath {
	return commitmenttypes.NewMerklePath([]byte(storeKey), key)
}

// MakeBlockID copied unimported test functions from cmttypes to use them here
func MakeBlockID(hash []byte, partSetSize uint32, partSetHash []byte) cmttypes.BlockID {
	return cmttypes.BlockID{
		Hash: hash,
		PartSetHeader: cmttypes.PartSetHeader{
			Total: partSetSize,
			Hash:  partSetHash,
		},
	}
}
