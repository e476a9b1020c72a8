package errors

import (
	errorsmod "cosmossdk.io/errors"

	"github.com/cometbls/ibc-lightclient/modules/core/exported"
)

const codespace = exported.ModuleName

var (
	// ErrInvalidHeight defines an error for an invalid height
	ErrInvalidHeight = errorsmod.Register(codespace, 9, "invalid height")

	// ErrInvalidChainID defines an error when the chain-id is invalid.
	ErrInvalidChainID = errorsmod.Register(codespace, 11, "invalid chain-id")

	// ErrInvalidType defines an error an invalid type.
	ErrInvalidType = errorsmod.Register(codespace, 12, "invalid type")

	// ErrDecode defines an error when stored or submitted bytes cannot be decoded.
	ErrDecode = errorsmod.Register(codespace, 17, "failed to decode")
)
