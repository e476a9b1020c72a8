package types

import (
	"fmt"
	"strings"

	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

// Router is a map from client type to the LightClientModule implementing it.
type Router struct {
	routes        map[string]exported.LightClientModule
	storeProvider exported.ClientStoreProvider
}

// NewRouter returns an empty Router whose modules receive client stores from storeProvider.
func NewRouter(storeProvider exported.ClientStoreProvider) *Router {
	return &Router{
		routes:        make(map[string]exported.LightClientModule),
		storeProvider: storeProvider,
	}
}

// AddRoute adds LightClientModule for a given client type. It returns the Router
// so AddRoute calls can be linked. It will panic if the route is already registered.
func (rtr *Router) AddRoute(clientType string, module exported.LightClientModule) *Router {
	if strings.TrimSpace(clientType) == "" {
		panic(fmt.Errorf("failed to add route: client type cannot be blank"))
	}

	if rtr.HasRoute(clientType) {
		panic(fmt.Errorf("route %s has already been registered", clientType))
	}

	rtr.routes[clientType] = module

	module.RegisterStoreProvider(rtr.storeProvider)
	return rtr
}

// HasRoute returns true if the Router has a module registered or false otherwise.
func (rtr *Router) HasRoute(clientType string) bool {
	_, ok := rtr.routes[clientType]
	return ok
}

// GetRoute returns a LightClientModule for a given client type.
func (rtr *Router) GetRoute(clientType string) (exported.LightClientModule, bool) {
	module, ok := rtr.routes[clientType]
	return module, ok
}
