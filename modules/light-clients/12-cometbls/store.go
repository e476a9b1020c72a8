package cometbls

import (
	"encoding/binary"
	"fmt"

	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"

	clienttypes "github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	host "github.com/cometbls/ibc-lightclient/modules/core/24-host"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

// ModuleName is the name and error codespace of the cometbls light client.
const ModuleName = exported.CometBLS

/*
This file contains the logic for storing and iterating over the consensus states
and their metadata. Every accepted height has four records in the client store:

  - consensusStates/{height}: the full consensus state
  - consensusStates/{height}/optimized: the reduced state read by proof verification
  - consensusStates/{height}/processedTime and /processedHeight: the host moment the height was accepted
  - iterateConsensusStates{bigEndianHeight}: the consensus state key, for ordered iteration

Consensus states are never pruned.
*/

const (
	// KeyIterateConsensusStatePrefix is the prefix of the ordered consensus state index.
	KeyIterateConsensusStatePrefix = "iterateConsensusStates"
)

var (
	// KeyProcessedTime is appended to consensus state key to store the processed time
	KeyProcessedTime = []byte("/processedTime")
	// KeyProcessedHeight is appended to consensus state key to store the processed height
	KeyProcessedHeight = []byte("/processedHeight")
	// KeyOptimizedConsensusState is appended to consensus state key to store the optimized consensus state
	KeyOptimizedConsensusState = []byte("/optimized")
)

// setClientState stores the client state
func setClientState(clientStore storetypes.KVStore, clientState *ClientState) {
	key := host.ClientStateKey()
	val, err := clientState.Marshal()
	if err != nil {
		panic(fmt.Errorf("failed to marshal client state: %w", err))
	}
	clientStore.Set(key, val)
}

// getClientState retrieves the client state from the client prefixed store.
// If the client state does not exist in the store, false is returned.
func getClientState(clientStore storetypes.KVStore) (*ClientState, bool) {
	bz := clientStore.Get(host.ClientStateKey())
	if len(bz) == 0 {
		return nil, false
	}

	var clientState ClientState
	if err := clientState.Unmarshal(bz); err != nil {
		panic(fmt.Errorf("failed to unmarshal client state: %w", err))
	}
	return &clientState, true
}

// setConsensusState stores the consensus state at the given height together with its
// optimized form.
func setConsensusState(clientStore storetypes.KVStore, consensusState *ConsensusState, height exported.Height) {
	clientStore.Set(host.ConsensusStateKey(height), consensusState.Marshal())
	clientStore.Set(OptimizedConsensusStateKey(height), consensusState.Optimized().Marshal())
}

// GetConsensusState retrieves the consensus state from the client prefixed store.
// If the ConsensusState does not exist in state for the provided height a nil value and false boolean flag is returned
func GetConsensusState(store storetypes.KVStore, height exported.Height) (*ConsensusState, bool) {
	return getConsensusStateByKey(store, host.ConsensusStateKey(height))
}

// GetOptimizedConsensusState retrieves the optimized consensus state at the given height.
// When the optimized record is missing it is rebuilt from the full consensus state.
func GetOptimizedConsensusState(store storetypes.KVStore, height exported.Height) (*OptimizedConsensusState, bool) {
	bz := store.Get(OptimizedConsensusStateKey(height))
	if len(bz) == 0 {
		consensusState, found := GetConsensusState(store, height)
		if !found {
			return nil, false
		}
		return consensusState.Optimized(), true
	}

	var optimized OptimizedConsensusState
	if err := optimized.Unmarshal(bz); err != nil {
		panic(fmt.Errorf("failed to unmarshal optimized consensus state: %w", err))
	}
	return &optimized, true
}

// OptimizedConsensusStateKey returns the key under which the optimized consensus state is stored.
func OptimizedConsensusStateKey(height exported.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyOptimizedConsensusState...)
}

// setConsensusMetadata sets context time as processed time and set context height as processed height
// as this is internal cometbls light client logic.
// client state and consensus state will be set by client keeper
// set iteration key to provide ability for efficient ordered iteration of consensus states.
func setConsensusMetadata(ctx coretypes.Context, clientStore storetypes.KVStore, height exported.Height) {
	setConsensusMetadataWithValues(clientStore, height, clienttypes.GetSelfHeight(ctx), uint64(ctx.BlockTime().UnixNano()))
}

// setConsensusMetadataWithValues sets the consensus metadata with the provided values
func setConsensusMetadataWithValues(
	clientStore storetypes.KVStore, height,
	processedHeight exported.Height,
	processedTime uint64,
) {
	SetProcessedTime(clientStore, height, processedTime)
	SetProcessedHeight(clientStore, height, processedHeight)
	SetIterationKey(clientStore, height)
}

// SetProcessedTime stores the time at which a header was processed and the corresponding consensus state was created.
// This is useful when validating whether a packet has reached the time specified delay period in the cometbls client's
// verification functions
func SetProcessedTime(clientStore storetypes.KVStore, height exported.Height, timeNs uint64) {
	key := ProcessedTimeKey(height)
	val := binary.BigEndian.AppendUint64(nil, timeNs)
	clientStore.Set(key, val)
}

// GetProcessedTime gets the time (in nanoseconds) at which this chain received and processed a cometbls header.
// This is used to validate that a received packet has passed the time delay period.
func GetProcessedTime(clientStore storetypes.KVStore, height exported.Height) (uint64, bool) {
	key := ProcessedTimeKey(height)
	bz := clientStore.Get(key)
	if len(bz) != 8 {
		return 0, false
	}
	return binary.BigEndian.Uint64(bz), true
}

// ProcessedTimeKey returns the key under which the processed time will be stored in the client store.
func ProcessedTimeKey(height exported.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedTime...)
}

// SetProcessedHeight stores the height at which a header was processed and the corresponding consensus state was created.
// This is useful when validating whether a packet has reached the specified block delay period in the cometbls client's
// verification functions
func SetProcessedHeight(clientStore storetypes.KVStore, consHeight, processedHeight exported.Height) {
	key := ProcessedHeightKey(consHeight)
	val := []byte(processedHeight.String())
	clientStore.Set(key, val)
}

// GetProcessedHeight gets the height at which this chain received and processed a cometbls header.
// This is used to validate that a received packet has passed the block delay period.
func GetProcessedHeight(clientStore storetypes.KVStore, height exported.Height) (exported.Height, bool) {
	key := ProcessedHeightKey(height)
	bz := clientStore.Get(key)
	if len(bz) == 0 {
		return nil, false
	}
	processedHeight, err := clienttypes.ParseHeight(string(bz))
	if err != nil {
		return nil, false
	}
	return processedHeight, true
}

// ProcessedHeightKey returns the key under which the processed height will be stored in the client store.
func ProcessedHeightKey(height exported.Height) []byte {
	return append(host.ConsensusStateKey(height), KeyProcessedHeight...)
}

// SetIterationKey stores the consensus state key under a key that is more efficient for ordered iteration
func SetIterationKey(clientStore storetypes.KVStore, height exported.Height) {
	key := IterationKey(height)
	val := host.ConsensusStateKey(height)
	clientStore.Set(key, val)
}

// GetIterationKey returns the consensus state key stored under the efficient iteration key.
// NOTE: This function is currently only used for testing purposes
func GetIterationKey(clientStore storetypes.KVStore, height exported.Height) []byte {
	key := IterationKey(height)
	return clientStore.Get(key)
}

// IterationKey returns the key under which the consensus state key will be stored.
// The iteration key is a BigEndian representation of the consensus state key to support efficient iteration.
func IterationKey(height exported.Height) []byte {
	heightBytes := bigEndianHeightBytes(height)
	return append([]byte(KeyIterateConsensusStatePrefix), heightBytes...)
}

// GetNextConsensusState returns the lowest consensus state that is larger than the given height.
// The Iterator returns a storetypes.Iterator which iterates from start (inclusive) to end (exclusive).
// Iteration starts at the height directly after the given one, so the first entry is the next consensus state.
func GetNextConsensusState(clientStore storetypes.KVStore, height exported.Height) (*ConsensusState, bool) {
	iterateStore := prefix.NewStore(clientStore, []byte(KeyIterateConsensusStatePrefix))
	iterator := iterateStore.Iterator(bigEndianHeightBytes(height.Increment()), nil)
	defer iterator.Close()
	if !iterator.Valid() {
		return nil, false
	}

	csKey := iterator.Value()

	return getConsensusStateByKey(clientStore, csKey)
}

// GetPreviousConsensusState returns the highest consensus state that is lower than the given height.
// The Iterator returns a storetypes.Iterator which iterates from the end (exclusive) to start (inclusive).
// Thus to get previous consensus state we call iterator.Value() immediately.
func GetPreviousConsensusState(clientStore storetypes.KVStore, height exported.Height) (*ConsensusState, bool) {
	iterateStore := prefix.NewStore(clientStore, []byte(KeyIterateConsensusStatePrefix))
	iterator := iterateStore.ReverseIterator(nil, bigEndianHeightBytes(height))
	defer iterator.Close()

	if !iterator.Valid() {
		return nil, false
	}

	csKey := iterator.Value()

	return getConsensusStateByKey(clientStore, csKey)
}

// getConsensusStateByKey is a helper for the consensus state getters.
func getConsensusStateByKey(clientStore storetypes.KVStore, key []byte) (*ConsensusState, bool) {
	bz := clientStore.Get(key)
	if len(bz) == 0 {
		return nil, false
	}

	var consensusState ConsensusState
	if err := consensusState.Unmarshal(bz); err != nil {
		panic(fmt.Errorf("failed to unmarshal consensus state: %w", err))
	}
	return &consensusState, true
}

func bigEndianHeightBytes(height exported.Height) []byte {
	heightBytes := make([]byte, 16)
	binary.BigEndian.PutUint64(heightBytes, height.GetRevisionNumber())
	binary.BigEndian.PutUint64(heightBytes[8:], height.GetRevisionHeight())
	return heightBytes
}
