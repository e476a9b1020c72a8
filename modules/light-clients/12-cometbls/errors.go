package cometbls

import (
	errorsmod "cosmossdk.io/errors"
)

// IBC cometbls client sentinel errors
var (
	ErrInvalidChainID          = errorsmod.Register(ModuleName, 2, "invalid chain-id")
	ErrInvalidTrustingPeriod   = errorsmod.Register(ModuleName, 3, "invalid trusting period")
	ErrInvalidUnbondingPeriod  = errorsmod.Register(ModuleName, 4, "invalid unbonding period")
	ErrInvalidHeaderHeight     = errorsmod.Register(ModuleName, 5, "invalid header height")
	ErrInvalidHeader           = errorsmod.Register(ModuleName, 6, "invalid header")
	ErrInvalidMaxClockDrift    = errorsmod.Register(ModuleName, 7, "invalid max clock drift")
	ErrProcessedTimeNotFound   = errorsmod.Register(ModuleName, 8, "processed time not found")
	ErrProcessedHeightNotFound = errorsmod.Register(ModuleName, 9, "processed height not found")
	ErrDelayPeriodNotPassed    = errorsmod.Register(ModuleName, 10, "packet-specified delay period has not been reached")
	ErrInvalidProofSpecs       = errorsmod.Register(ModuleName, 11, "invalid proof specs")
	ErrInvalidValidatorSet     = errorsmod.Register(ModuleName, 12, "invalid validator set")
	ErrClockDriftExceeded      = errorsmod.Register(ModuleName, 13, "header timestamp is beyond the allowed clock drift")
	ErrHeightRegression        = errorsmod.Register(ModuleName, 14, "header height is not greater than the trusted height")
	ErrUnknownTrustedHeight    = errorsmod.Register(ModuleName, 15, "no consensus state stored at trusted height")
	ErrValidatorSetMismatch    = errorsmod.Register(ModuleName, 16, "validator set does not match the trusted consensus state")
)
