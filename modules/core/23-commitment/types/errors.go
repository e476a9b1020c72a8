package types

import (
	errorsmod "cosmossdk.io/errors"
)

// SubModuleName is the error codespace
const SubModuleName string = "commitment"

// IBC connection sentinel errors
var (
	ErrInvalidProof   = errorsmod.Register(SubModuleName, 2, "invalid proof")
	ErrInvalidPrefix  = errorsmod.Register(SubModuleName, 3, "invalid prefix")
	ErrMalformedProof = errorsmod.Register(SubModuleName, 4, "malformed merkle proof")
	ErrKeyMismatch    = errorsmod.Register(SubModuleName, 5, "proof key does not match requested path")
)
