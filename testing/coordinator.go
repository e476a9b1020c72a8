package ibctesting

import (
	"testing"
	"time"
)

var globalStartTime = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

// Coordinator is a testing struct which holds the clock shared by a counterparty
// TestChain and the Host running its light client.
type Coordinator struct {
	TB          testing.TB
	CurrentTime time.Time
}

// NewCoordinator returns a coordinator whose clock starts at a fixed time.
func NewCoordinator(tb testing.TB) *Coordinator {
	tb.Helper()
	return &Coordinator{
		TB:          tb,
		CurrentTime: globalStartTime,
	}
}

// IncrementTime iterates the coordinator's clock by one TimeIncrement.
func (coord *Coordinator) IncrementTime() {
	coord.IncrementTimeBy(TimeIncrement)
}

// IncrementTimeBy iterates the coordinator's clock by the given duration.
func (coord *Coordinator) IncrementTimeBy(increment time.Duration) {
	coord.CurrentTime = coord.CurrentTime.Add(increment).UTC()
}

// CommitBlock commits a block on each provided chain and then increments the global time.
func (coord *Coordinator) CommitBlock(chains ...*TestChain) {
	for _, chain := range chains {
		chain.NextBlock()
	}
	coord.IncrementTime()
}

// CommitNBlocks commits n blocks to state and updates the block height by 1 for each commit.
func (coord *Coordinator) CommitNBlocks(chain *TestChain, n uint64) {
	for i := uint64(0); i < n; i++ {
		coord.CommitBlock(chain)
	}
}
