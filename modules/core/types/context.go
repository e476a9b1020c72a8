package types

import (
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store/cachekv"
	storetypes "cosmossdk.io/store/types"
)

// Context is the host execution environment handed to every core IBC call. It is an
// immutable value; the With* methods return a modified copy.
type Context struct {
	store       storetypes.KVStore
	chainID     string
	blockHeight int64
	blockTime   time.Time
	logger      log.Logger
}

// NewContext returns a Context executing against the given host store at the given host block.
func NewContext(store storetypes.KVStore, chainID string, blockHeight int64, blockTime time.Time, logger log.Logger) Context {
	if logger == nil {
		logger = log.NewNopLogger()
	}

	return Context{
		store:       store,
		chainID:     chainID,
		blockHeight: blockHeight,
		blockTime:   blockTime.UTC(),
		logger:      logger,
	}
}

// KVStore returns the host store core IBC reads from and writes to.
func (c Context) KVStore() storetypes.KVStore { return c.store }

// ChainID returns the chain identifier of the host chain.
func (c Context) ChainID() string { return c.chainID }

// BlockHeight returns the height of the host block being executed.
func (c Context) BlockHeight() int64 { return c.blockHeight }

// BlockTime returns the timestamp of the host block being executed.
func (c Context) BlockTime() time.Time { return c.blockTime }

// Logger returns the host logger.
func (c Context) Logger() log.Logger { return c.logger }

// WithKVStore returns a Context with an updated store.
func (c Context) WithKVStore(store storetypes.KVStore) Context {
	c.store = store
	return c
}

// WithBlockHeight returns a Context with an updated host block height.
func (c Context) WithBlockHeight(height int64) Context {
	c.blockHeight = height
	return c
}

// WithBlockTime returns a Context with an updated host block timestamp.
func (c Context) WithBlockTime(t time.Time) Context {
	c.blockTime = t.UTC()
	return c
}

// CacheContext returns a new Context whose store is a cache branch of the current one,
// and a function which writes the branch back to the parent store.
// Writes made through the returned Context are discarded unless writeCache is called.
func (c Context) CacheContext() (cc Context, writeCache func()) {
	cacheStore := cachekv.NewStore(c.store)
	cc = c.WithKVStore(cacheStore)

	return cc, cacheStore.Write
}
