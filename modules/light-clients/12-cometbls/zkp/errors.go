package zkp

import (
	errorsmod "cosmossdk.io/errors"
)

// ModuleName is the error codespace of the zero-knowledge proof verifier.
const ModuleName = "cometbls-zkp"

var (
	ErrMalformedProof      = errorsmod.Register(ModuleName, 2, "malformed zero-knowledge proof")
	ErrInvalidProof        = errorsmod.Register(ModuleName, 3, "invalid zero-knowledge proof")
	ErrInvalidPublicInput  = errorsmod.Register(ModuleName, 4, "public inputs do not match the proof")
	ErrInvalidVerifyingKey = errorsmod.Register(ModuleName, 5, "invalid verifying key")
)
