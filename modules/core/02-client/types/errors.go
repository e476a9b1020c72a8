package types

import (
	errorsmod "cosmossdk.io/errors"
)

// IBC client sentinel errors
var (
	ErrClientExists           = errorsmod.Register(SubModuleName, 2, "light client already exists")
	ErrInvalidClient          = errorsmod.Register(SubModuleName, 3, "light client is invalid")
	ErrStoreNotInitialized    = errorsmod.Register(SubModuleName, 4, "light client store not initialized")
	ErrClientFrozen           = errorsmod.Register(SubModuleName, 5, "light client is frozen due to misbehaviour")
	ErrConsensusStateNotFound = errorsmod.Register(SubModuleName, 7, "consensus state not found")
	ErrInvalidConsensus       = errorsmod.Register(SubModuleName, 8, "invalid consensus state")
	ErrInvalidClientType      = errorsmod.Register(SubModuleName, 10, "invalid client type")
	ErrInvalidHeader          = errorsmod.Register(SubModuleName, 12, "invalid client header")
	ErrInvalidMisbehaviour    = errorsmod.Register(SubModuleName, 13, "invalid light client misbehaviour")
	ErrNoConflictDetected     = errorsmod.Register(SubModuleName, 14, "misbehaviour evidence does not show a conflict")
	ErrExpiredTrustingPeriod  = errorsmod.Register(SubModuleName, 15, "time since trusted consensus state has passed the trusting period")
	ErrClientNotActive        = errorsmod.Register(SubModuleName, 16, "client state is not active")
	ErrRouteNotFound          = errorsmod.Register(SubModuleName, 17, "light client module route not found")
	ErrInvalidHeight          = errorsmod.Register(SubModuleName, 18, "invalid height")
)
