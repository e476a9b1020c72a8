package ibctesting

import (
	"github.com/stretchr/testify/require"

	dbm "github.com/cosmos/cosmos-db"

	"cosmossdk.io/log"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"

	clientkeeper "github.com/cometbls/ibc-lightclient/modules/core/02-client/keeper"
	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

// Host is the chain executing cometbls light clients. It owns the client keeper and the
// store it writes to, and reads its block time from the coordinator.
type Host struct {
	Coordinator *Coordinator
	ChainID     string
	Keeper      *clientkeeper.Keeper
	Module      *cometbls.LightClientModule

	store       *dbadapter.Store
	blockHeight int64
}

// NewHost creates a host whose cometbls route verifies proofs with the given key.
func NewHost(coord *Coordinator, vk zkp.VerifyingKey) *Host {
	keeper := clientkeeper.NewKeeper([]byte(exported.ModuleName), clienttypes.DefaultParams())
	module := cometbls.NewLightClientModule(vk)
	keeper.AddRoute(exported.CometBLS, module)

	return &Host{
		Coordinator: coord,
		ChainID:     HostChainID,
		Keeper:      keeper,
		Module:      module,
		store:       &dbadapter.Store{DB: dbm.NewMemDB()},
		blockHeight: 1,
	}
}

// GetContext returns the context of the host's current block.
func (host *Host) GetContext() coretypes.Context {
	return coretypes.NewContext(host.store, host.ChainID, host.blockHeight, host.Coordinator.CurrentTime, log.NewNopLogger())
}

// NextBlock advances the host's block height.
func (host *Host) NextBlock() {
	host.blockHeight++
}

// CreateClient creates a cometbls client tracking the latest block of the counterparty chain.
func (host *Host) CreateClient(chain *TestChain) string {
	tb := host.Coordinator.TB
	tb.Helper()

	clientID, err := host.Keeper.CreateClient(host.GetContext(), exported.CometBLS, chain.ClientStateBytes(), chain.ConsensusStateBytes())
	require.NoError(tb, err)

	host.NextBlock()
	return clientID
}

// UpdateClient submits the header to the client at the host's current block.
func (host *Host) UpdateClient(clientID string, header *cometbls.Header) ([]exported.Height, error) {
	heights, err := host.Keeper.UpdateClient(host.GetContext(), clientID, header)
	host.NextBlock()
	return heights, err
}

// UpdateClientToLatest updates the client with a header for the chain's last committed block,
// trusting the client's latest height.
func (host *Host) UpdateClientToLatest(clientID string, chain *TestChain) {
	tb := host.Coordinator.TB
	tb.Helper()

	trustedHeight := host.Keeper.GetClientLatestHeight(host.GetContext(), clientID)
	_, err := host.UpdateClient(clientID, chain.ConstructUpdateHeader(trustedHeight))
	require.NoError(tb, err)
}

// ClientStore returns the isolated store of the given client.
func (host *Host) ClientStore(clientID string) storetypes.KVStore {
	return host.Keeper.ClientStore(host.GetContext(), clientID)
}

// GetClientState returns the decoded client state of the given client.
func (host *Host) GetClientState(clientID string) *cometbls.ClientState {
	tb := host.Coordinator.TB
	tb.Helper()

	bz, found := host.Keeper.GetClientState(host.GetContext(), clientID)
	require.True(tb, found, "client %s not found", clientID)

	var clientState cometbls.ClientState
	require.NoError(tb, clientState.Unmarshal(bz))
	return &clientState
}

// GetConsensusState returns the decoded consensus state of the given client at height.
func (host *Host) GetConsensusState(clientID string, height exported.Height) (*cometbls.ConsensusState, bool) {
	return cometbls.GetConsensusState(host.ClientStore(clientID), height)
}
