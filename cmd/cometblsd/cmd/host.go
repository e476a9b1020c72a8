package cmd

import (
	"encoding/binary"
	"fmt"
	"time"

	dbm "github.com/cosmos/cosmos-db"

	"cosmossdk.io/log"
	"cosmossdk.io/store/dbadapter"
	storetypes "cosmossdk.io/store/types"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/client/cli"
	clientkeeper "github.com/cometbls/ibc-lightclient/modules/core/02-client/keeper"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
	cometbls "github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls"
	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

var _ cli.Host = (*Host)(nil)

var (
	// KeyBlockHeight and KeyBlockTime record the last host block. They live outside the
	// ibc prefix so light clients cannot reach them.
	KeyBlockHeight = []byte("host/blockHeight")
	KeyBlockTime   = []byte("host/blockTime")
)

// Host executes client keeper calls against a local database. Every mutating command is
// executed as one host block whose time is the wall clock. A block is written with one synced
// batch, and only when the command succeeds.
type Host struct {
	db      dbm.DB
	store   *dbadapter.Store
	keeper  *clientkeeper.Keeper
	chainID string
	logger  log.Logger

	now func() time.Time
}

// NewHost returns a Host persisting to db. Light clients of type 12-cometbls verify proofs
// with vk.
func NewHost(db dbm.DB, cfg Config, vk zkp.VerifyingKey, logger log.Logger) *Host {
	keeper := clientkeeper.NewKeeper([]byte(exported.ModuleName), cfg.Params())
	keeper.AddRoute(exported.CometBLS, cometbls.NewLightClientModule(vk))

	return &Host{
		db:      db,
		store:   &dbadapter.Store{DB: db},
		keeper:  keeper,
		chainID: cfg.ChainID,
		logger:  logger,
		now:     time.Now,
	}
}

// OpenHost opens the goleveldb database under the configured home directory.
func OpenHost(cfg Config, logger log.Logger) (*Host, error) {
	vk, err := cfg.LoadVerifyingKey()
	if err != nil {
		return nil, err
	}

	db, err := dbm.NewDB(dbName, dbm.GoLevelDBBackend, cfg.DBDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open host database: %w", err)
	}

	return NewHost(db, cfg, vk, logger), nil
}

// Keeper implements cli.Host.
func (h *Host) Keeper() *clientkeeper.Keeper {
	return h.keeper
}

// Execute implements cli.Host.
func (h *Host) Execute(fn func(ctx coretypes.Context) error) error {
	height, lastTime := h.LastBlock()

	blockTime := h.now().UTC()
	if !blockTime.After(lastTime) {
		blockTime = lastTime.Add(time.Nanosecond)
	}

	batch := h.db.NewBatch()
	defer batch.Close()

	ctx := coretypes.NewContext(batchStore{Store: h.store, batch: batch}, h.chainID, height+1, blockTime, h.logger)
	cacheCtx, writeCache := ctx.CacheContext()
	if err := fn(cacheCtx); err != nil {
		return err
	}

	setBlock(cacheCtx.KVStore(), height+1, blockTime)
	writeCache()

	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("failed to commit host block %d: %w", height+1, err)
	}

	h.logger.Debug("committed host block", "height", height+1, "time", blockTime)
	return nil
}

// Query implements cli.Host.
func (h *Host) Query(fn func(ctx coretypes.Context) error) error {
	height, lastTime := h.LastBlock()

	blockTime := h.now().UTC()
	if blockTime.Before(lastTime) {
		blockTime = lastTime
	}

	ctx := coretypes.NewContext(h.store, h.chainID, height, blockTime, h.logger)
	cacheCtx, _ := ctx.CacheContext()
	return fn(cacheCtx)
}

// LastBlock returns the height and time of the last committed host block. Both are zero
// before the first block.
func (h *Host) LastBlock() (int64, time.Time) {
	var (
		height    int64
		blockTime time.Time
	)

	if bz := h.store.Get(KeyBlockHeight); len(bz) == 8 {
		height = int64(binary.BigEndian.Uint64(bz))
	}
	if bz := h.store.Get(KeyBlockTime); len(bz) == 8 {
		blockTime = time.Unix(0, int64(binary.BigEndian.Uint64(bz))).UTC()
	}
	return height, blockTime
}

// Close closes the underlying database.
func (h *Host) Close() error {
	return h.db.Close()
}

// batchStore reads from the host database and stages writes in batch, so a host block reaches
// the database in a single write.
type batchStore struct {
	*dbadapter.Store
	batch dbm.Batch
}

func (s batchStore) Set(key, value []byte) {
	storetypes.AssertValidKey(key)
	storetypes.AssertValidValue(value)
	if err := s.batch.Set(key, value); err != nil {
		panic(err)
	}
}

func (s batchStore) Delete(key []byte) {
	storetypes.AssertValidKey(key)
	if err := s.batch.Delete(key); err != nil {
		panic(err)
	}
}

func setBlock(store storetypes.KVStore, height int64, blockTime time.Time) {
	store.Set(KeyBlockHeight, binary.BigEndian.AppendUint64(nil, uint64(height)))
	store.Set(KeyBlockTime, binary.BigEndian.AppendUint64(nil, uint64(blockTime.UnixNano())))
}
