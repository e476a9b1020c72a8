package keeper

import (
	"encoding/binary"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	host "github.com/cometbls/ibc-lightclient/modules/core/24-host"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

// Keeper represents a type that grants read and write permissions to any client
// state information
type Keeper struct {
	storeProvider types.StoreProvider
	router        *types.Router
	params        types.Params
}

// NewKeeper creates a new client Keeper instance. Client state lives under storePrefix in the
// host store of the executing context. It panics if params are invalid.
func NewKeeper(storePrefix []byte, params types.Params) *Keeper {
	if err := params.Validate(); err != nil {
		panic(fmt.Errorf("invalid client params: %w", err))
	}

	storeProvider := types.NewStoreProvider(storePrefix)
	return &Keeper{
		storeProvider: storeProvider,
		router:        types.NewRouter(storeProvider),
		params:        params,
	}
}

// AddRoute adds a new route to the underlying router.
func (k *Keeper) AddRoute(clientType string, module exported.LightClientModule) {
	k.router.AddRoute(clientType, module)
}

// Logger returns a module-specific logger.
func (Keeper) Logger(ctx coretypes.Context) log.Logger {
	return ctx.Logger().With("module", "x/"+exported.ModuleName+"/"+types.SubModuleName)
}

// Route returns the light client module for the given client identifier.
func (k *Keeper) Route(clientID string) (exported.LightClientModule, error) {
	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil {
		return nil, errorsmod.Wrapf(err, "unable to parse client identifier %s", clientID)
	}

	if !k.params.IsAllowedClient(clientType) {
		return nil, errorsmod.Wrapf(
			types.ErrInvalidClientType,
			"client (%s) type %s is not in the allowed client list", clientID, clientType,
		)
	}

	clientModule, found := k.router.GetRoute(clientType)
	if !found {
		return nil, errorsmod.Wrap(types.ErrRouteNotFound, clientID)
	}

	return clientModule, nil
}

// GenerateClientIdentifier returns the next client identifier.
func (k *Keeper) GenerateClientIdentifier(ctx coretypes.Context, clientType string) string {
	nextClientSeq := k.GetNextClientSequence(ctx)
	clientID := types.FormatClientIdentifier(clientType, nextClientSeq)

	nextClientSeq++
	k.SetNextClientSequence(ctx, nextClientSeq)
	return clientID
}

// GetNextClientSequence gets the next client sequence from the store.
func (k *Keeper) GetNextClientSequence(ctx coretypes.Context) uint64 {
	bz := k.storeProvider.ModuleStore(ctx).Get([]byte(types.KeyNextClientSequence))
	if len(bz) == 0 {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

// SetNextClientSequence sets the next client sequence to the store.
func (k *Keeper) SetNextClientSequence(ctx coretypes.Context, sequence uint64) {
	bz := binary.BigEndian.AppendUint64(nil, sequence)
	k.storeProvider.ModuleStore(ctx).Set([]byte(types.KeyNextClientSequence), bz)
}

// GetParams returns the client parameters.
func (k *Keeper) GetParams() types.Params {
	return k.params
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate
// namespace without being able to read/write other client's data
func (k *Keeper) ClientStore(ctx coretypes.Context, clientID string) storetypes.KVStore {
	return k.storeProvider.ClientStore(ctx, clientID)
}

// GetClientState gets the encoded client state of a particular client.
func (k *Keeper) GetClientState(ctx coretypes.Context, clientID string) ([]byte, bool) {
	bz := k.ClientStore(ctx, clientID).Get(host.ClientStateKey())
	if len(bz) == 0 {
		return nil, false
	}
	return bz, true
}

// GetClientConsensusState gets the encoded consensus state stored by a client at the given height.
func (k *Keeper) GetClientConsensusState(ctx coretypes.Context, clientID string, height exported.Height) ([]byte, bool) {
	bz := k.ClientStore(ctx, clientID).Get(host.ConsensusStateKey(height))
	if len(bz) == 0 {
		return nil, false
	}
	return bz, true
}

// GetClientStatus returns the status for a client state given a client identifier. If the client type is not in the allowed
// clients param field, Unauthorized is returned, otherwise the client state status is returned from the light client module.
func (k *Keeper) GetClientStatus(ctx coretypes.Context, clientID string) exported.Status {
	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil {
		return exported.Unauthorized
	}

	if !k.params.IsAllowedClient(clientType) {
		return exported.Unauthorized
	}

	clientModule, found := k.router.GetRoute(clientType)
	if !found {
		return exported.Unauthorized
	}

	return clientModule.Status(ctx, clientID)
}

// GetClientLatestHeight returns the latest height of a client state for a given client identifier. If the client type is not in the allowed
// clients param field, a zero value height is returned, otherwise the client state latest height is returned.
func (k *Keeper) GetClientLatestHeight(ctx coretypes.Context, clientID string) types.Height {
	clientModule, err := k.Route(clientID)
	if err != nil {
		return types.ZeroHeight()
	}

	latestHeight := clientModule.LatestHeight(ctx, clientID)
	height, ok := latestHeight.(types.Height)
	if !ok {
		panic(fmt.Errorf("cannot convert %T to %T", latestHeight, types.Height{}))
	}
	return height
}

// GetClientTimestampAtHeight returns the timestamp in nanoseconds of the consensus state at the given height.
func (k *Keeper) GetClientTimestampAtHeight(ctx coretypes.Context, clientID string, height exported.Height) (uint64, error) {
	clientModule, err := k.Route(clientID)
	if err != nil {
		return 0, err
	}

	return clientModule.TimestampAtHeight(ctx, clientID, height)
}

// statusError maps a client status other than Active to the error returned to callers
// that require an active client.
func statusError(clientID string, status exported.Status) error {
	switch status {
	case exported.Active:
		return nil
	case exported.Frozen:
		return errorsmod.Wrapf(types.ErrClientFrozen, "client (%s) is frozen", clientID)
	case exported.Expired:
		return errorsmod.Wrapf(types.ErrExpiredTrustingPeriod, "client (%s) is expired", clientID)
	case exported.Unknown:
		return errorsmod.Wrapf(types.ErrStoreNotInitialized, "client (%s) not found", clientID)
	default:
		return errorsmod.Wrapf(types.ErrClientNotActive, "client (%s) status is %s", clientID, status)
	}
}
