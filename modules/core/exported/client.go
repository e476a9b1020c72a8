package exported

import (
	storetypes "cosmossdk.io/store/types"

	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

// Status represents the status of a client
type Status string

const (
	// ModuleName is the name of the IBC core module.
	ModuleName = "ibc"

	// TypeClientMisbehaviour is the shared evidence misbehaviour type
	TypeClientMisbehaviour string = "client_misbehaviour"

	// CometBLS is used to indicate that the client uses CometBFT consensus with
	// a zero-knowledge proof standing in for the commit signatures.
	CometBLS string = "12-cometbls"

	// Active is a status type of a client. An active client is allowed to be used.
	Active Status = "Active"

	// Frozen is a status type of a client. A frozen client is not allowed to be used.
	Frozen Status = "Frozen"

	// Expired is a status type of a client. An expired client is not allowed to be used.
	Expired Status = "Expired"

	// Unknown indicates there was an error in determining the status of a client.
	Unknown Status = "Unknown"

	// Unauthorized indicates that the client type is not registered as an allowed client type.
	Unauthorized Status = "Unauthorized"
)

// ClientStoreProvider supplies isolated prefix stores to light client modules.
type ClientStoreProvider interface {
	ClientStore(ctx coretypes.Context, clientID string) storetypes.KVStore
}

// LightClientModule is the capability set every light client kind implements.
// Core IBC dispatches to an implementation through the router, keyed by client type.
type LightClientModule interface {
	// RegisterStoreProvider is called by core IBC when a LightClientModule is added to the router.
	// It allows the LightClientModule to set a ClientStoreProvider which supplies isolated prefix client stores
	// to IBC light client instances.
	RegisterStoreProvider(storeProvider ClientStoreProvider)

	// Initialize is called upon client creation, it allows the client to perform validation on the initial consensus state and set the
	// client state, consensus state and any client-specific metadata necessary for correct light client operation in the provided client store.
	Initialize(ctx coretypes.Context, clientID string, clientState, consensusState []byte) error

	// VerifyClientMessage must verify a ClientMessage. A ClientMessage could be a Header or Misbehaviour.
	// Calls to CheckForMisbehaviour, UpdateState, and UpdateStateOnMisbehaviour will assume that the
	// content of the ClientMessage has been verified and can be trusted. An error should be returned
	// if the ClientMessage fails to verify.
	VerifyClientMessage(ctx coretypes.Context, clientID string, clientMsg ClientMessage) error

	// CheckForMisbehaviour checks for evidence of a misbehaviour in Header or Misbehaviour type. It assumes the ClientMessage
	// has already been verified.
	CheckForMisbehaviour(ctx coretypes.Context, clientID string, clientMsg ClientMessage) bool

	// UpdateStateOnMisbehaviour should perform appropriate state changes on a client state given that misbehaviour has been detected and verified
	UpdateStateOnMisbehaviour(ctx coretypes.Context, clientID string, clientMsg ClientMessage)

	// UpdateState updates and stores as necessary any associated information for an IBC client, such as the ClientState and corresponding ConsensusState.
	// Upon successful update, a list of consensus heights is returned. It assumes the ClientMessage has already been verified.
	UpdateState(ctx coretypes.Context, clientID string, clientMsg ClientMessage) []Height

	// VerifyMembership is a generic proof verification method which verifies a proof of the existence of a value at a given CommitmentPath at the specified height.
	VerifyMembership(
		ctx coretypes.Context,
		clientID string,
		height Height,
		delayTimePeriod uint64,
		delayBlockPeriod uint64,
		proof []byte,
		path Path,
		value []byte,
	) error

	// VerifyNonMembership is a generic proof verification method which verifies the absence of a given CommitmentPath at a specified height.
	VerifyNonMembership(
		ctx coretypes.Context,
		clientID string,
		height Height,
		delayTimePeriod uint64,
		delayBlockPeriod uint64,
		proof []byte,
		path Path,
	) error

	// Status must return the status of the client. Only Active clients are allowed to process packets.
	Status(ctx coretypes.Context, clientID string) Status

	// LatestHeight returns the latest height of the client. If no client is present for the provided client identifier a zero value height may be returned.
	LatestHeight(ctx coretypes.Context, clientID string) Height

	// TimestampAtHeight must return the timestamp for the consensus state associated with the provided height.
	TimestampAtHeight(ctx coretypes.Context, clientID string, height Height) (uint64, error)
}

// ClientMessage is an interface used to update an IBC client.
// The update may be done by a single header or by misbehaviour evidence.
type ClientMessage interface {
	ClientType() string
	ValidateBasic() error
}

// Misbehaviour is a ClientMessage carrying evidence of conflicting headers for a client.
type Misbehaviour interface {
	ClientMessage
	GetClientID() string
}

// Height is a wrapper interface over clienttypes.Height
// all clients must use the concrete implementation in types
type Height interface {
	IsZero() bool
	LT(Height) bool
	LTE(Height) bool
	EQ(Height) bool
	GT(Height) bool
	GTE(Height) bool
	GetRevisionNumber() uint64
	GetRevisionHeight() uint64
	Increment() Height
	Decrement() (Height, bool)
	String() string
}

// String returns the string representation of a client status.
func (s Status) String() string {
	return string(s)
}
