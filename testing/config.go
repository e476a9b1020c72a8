package ibctesting

import (
	"time"

	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

const (
	// StoreKeyIBC and StoreKeyBank are the stores mounted in a TestChain application.
	StoreKeyIBC  = "ibc"
	StoreKeyBank = "bank"

	// DefaultChainID is the chain id used by NewTestChain. Its revision number is 1.
	DefaultChainID = "testchain-1"
	// HostChainID is the chain id of the host executing the light client.
	HostChainID = "hostchain-0"

	// Default params constants used to create a CometBLS client
	TrustingPeriod  time.Duration = time.Hour * 24 * 7 * 2
	UnbondingPeriod time.Duration = time.Hour * 24 * 7 * 3
	MaxClockDrift   time.Duration = time.Second * 10

	// TimeIncrement is how far the coordinator clock advances per committed block.
	TimeIncrement = time.Second * 5
)

// CometBLSConfig holds the parameters of a CometBLS client created by the testing package.
type CometBLSConfig struct {
	TrustingPeriod  time.Duration
	UnbondingPeriod time.Duration
	MaxClockDrift   time.Duration
}

// NewCometBLSConfig returns the default client configuration.
func NewCometBLSConfig() *CometBLSConfig {
	return &CometBLSConfig{
		TrustingPeriod:  TrustingPeriod,
		UnbondingPeriod: UnbondingPeriod,
		MaxClockDrift:   MaxClockDrift,
	}
}

// GetClientType returns the client type the config creates.
func (*CometBLSConfig) GetClientType() string {
	return exported.CometBLS
}
