package types

import (
	"fmt"

	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"

	host "github.com/cometbls/ibc-lightclient/modules/core/24-host"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

var _ exported.ClientStoreProvider = (*StoreProvider)(nil)

// StoreProvider encapsulates the IBC core store key prefix and hands out isolated
// per-client stores carved from the host store of the executing context.
type StoreProvider struct {
	storePrefix []byte
}

// NewStoreProvider creates and returns a new StoreProvider. Every store it returns
// is nested under storePrefix inside the host store.
func NewStoreProvider(storePrefix []byte) StoreProvider {
	return StoreProvider{
		storePrefix: storePrefix,
	}
}

// ClientStore returns isolated prefix store for each client so they can read/write in separate namespaces.
func (s StoreProvider) ClientStore(ctx coretypes.Context, clientID string) storetypes.KVStore {
	clientPrefix := []byte(fmt.Sprintf("%s/%s/", host.KeyClientStorePrefix, clientID))
	return prefix.NewStore(s.ModuleStore(ctx), clientPrefix)
}

// ModuleStore returns the store holding all client data, including the client stores.
func (s StoreProvider) ModuleStore(ctx coretypes.Context) storetypes.KVStore {
	if len(s.storePrefix) == 0 {
		return ctx.KVStore()
	}
	return prefix.NewStore(ctx.KVStore(), s.storePrefix)
}
