package types

import (
	"fmt"
	"strings"

	"github.com/cometbls/ibc-lightclient/internal/collections"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

// DefaultAllowedClients are the default clients for the AllowedClients parameter.
var DefaultAllowedClients = []string{exported.CometBLS}

// Params defines the set of IBC light client parameters.
type Params struct {
	// AllowedClients defines the list of allowed client state types which can be created
	// and interacted with. If a client type is removed from the allowed clients list, usage
	// of this client will be disabled until it is added again to the list.
	AllowedClients []string `json:"allowed_clients" yaml:"allowed_clients"`
}

// NewParams creates a new parameter configuration for the ibc client module
func NewParams(allowedClients ...string) Params {
	return Params{
		AllowedClients: allowedClients,
	}
}

// DefaultParams is the default parameter configuration for the ibc-client module.
func DefaultParams() Params {
	return NewParams(DefaultAllowedClients...)
}

// Validate all ibc-client module parameters
func (p Params) Validate() error {
	return validateClients(p.AllowedClients)
}

// IsAllowedClient checks if the given client type is registered on the allowlist.
func (p Params) IsAllowedClient(clientType string) bool {
	return collections.Contains(clientType, p.AllowedClients)
}

// validateClients checks that the given clients are not blank and not repeated.
func validateClients(clients []string) error {
	for i, clientType := range clients {
		if strings.TrimSpace(clientType) == "" {
			return fmt.Errorf("client type %d cannot be blank", i)
		}
	}

	if dup, found := collections.FirstDuplicate(clients); found {
		return fmt.Errorf("duplicate client type: %s", dup)
	}

	return nil
}
