/*
Package keeper implements the ICS 02 - Client Semantics specification
(https://github.com/cosmos/ibc/tree/master/spec/core/ics-002-client-semantics) on top of a
host store. It creates light clients, routes client messages to the light client module
registered for the client type and tracks client status. All writes of a call are
discarded when the call fails.
*/
package keeper
