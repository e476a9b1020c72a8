package keeper

import (
	metrics "github.com/hashicorp/go-metrics"

	errorsmod "cosmossdk.io/errors"

	"github.com/cometbls/ibc-lightclient/modules/core/02-client/types"
	"github.com/cometbls/ibc-lightclient/modules/core/exported"
	ibcmetrics "github.com/cometbls/ibc-lightclient/modules/core/metrics"
	coretypes "github.com/cometbls/ibc-lightclient/modules/core/types"
)

// CreateClient generates a new client identifier and isolated prefix store for the provided client state.
// The client state is responsible for setting any client-specific data in the store via the Initialize method.
// This includes the client state, initial consensus state and any associated metadata.
// Nothing is written unless the client is created successfully.
func (k *Keeper) CreateClient(
	ctx coretypes.Context, clientType string, clientState []byte, consensusState []byte,
) (string, error) {
	if !k.params.IsAllowedClient(clientType) {
		return "", errorsmod.Wrapf(
			types.ErrInvalidClientType,
			"client state type %s is not registered in the allowlist", clientType,
		)
	}

	cacheCtx, writeFn := ctx.CacheContext()

	clientID := k.GenerateClientIdentifier(cacheCtx, clientType)
	if _, found := k.GetClientState(cacheCtx, clientID); found {
		return "", errorsmod.Wrapf(types.ErrClientExists, "cannot create client with ID %s", clientID)
	}

	clientModule, err := k.Route(clientID)
	if err != nil {
		return "", err
	}

	if err := clientModule.Initialize(cacheCtx, clientID, clientState, consensusState); err != nil {
		return "", err
	}

	if status := k.GetClientStatus(cacheCtx, clientID); status != exported.Active {
		return "", errorsmod.Wrapf(types.ErrClientNotActive, "cannot create client (%s) with status %s", clientID, status)
	}

	writeFn()

	k.Logger(ctx).Info("client created at height", "client-id", clientID, "height", clientModule.LatestHeight(ctx, clientID).String())

	defer metrics.IncrCounterWithLabels(
		[]string{exported.ModuleName, types.SubModuleName, "create"},
		1,
		[]metrics.Label{{Name: ibcmetrics.LabelClientType, Value: clientType}},
	)

	return clientID, nil
}

// UpdateClient verifies the client message and either freezes the client, when the message
// is evidence of misbehaviour, or stores the consensus states it carries. It returns the
// consensus heights written; a frozen client yields no heights.
// Nothing is written when an error is returned.
func (k *Keeper) UpdateClient(ctx coretypes.Context, clientID string, clientMsg exported.ClientMessage) ([]exported.Height, error) {
	if err := statusError(clientID, k.GetClientStatus(ctx, clientID)); err != nil {
		return nil, errorsmod.Wrap(err, "cannot update client")
	}

	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil {
		return nil, errorsmod.Wrapf(types.ErrStoreNotInitialized, "clientID (%s)", clientID)
	}

	clientModule, err := k.Route(clientID)
	if err != nil {
		return nil, err
	}

	cacheCtx, writeFn := ctx.CacheContext()

	if err := clientModule.VerifyClientMessage(cacheCtx, clientID, clientMsg); err != nil {
		return nil, err
	}

	foundMisbehaviour := clientModule.CheckForMisbehaviour(cacheCtx, clientID, clientMsg)
	if foundMisbehaviour {
		clientModule.UpdateStateOnMisbehaviour(cacheCtx, clientID, clientMsg)
		writeFn()

		k.Logger(ctx).Info("client frozen due to misbehaviour", "client-id", clientID)

		defer metrics.IncrCounterWithLabels(
			[]string{exported.ModuleName, types.SubModuleName, "misbehaviour"},
			1,
			[]metrics.Label{
				{Name: ibcmetrics.LabelClientType, Value: clientType},
				{Name: ibcmetrics.LabelClientID, Value: clientID},
				{Name: ibcmetrics.LabelMsgType, Value: "update"},
			},
		)

		return []exported.Height{}, nil
	}

	if _, ok := clientMsg.(exported.Misbehaviour); ok {
		return nil, errorsmod.Wrapf(types.ErrNoConflictDetected, "misbehaviour submitted for client (%s) does not prove a conflict", clientID)
	}

	consensusHeights := clientModule.UpdateState(cacheCtx, clientID, clientMsg)
	writeFn()

	k.Logger(ctx).Info("client state updated", "client-id", clientID, "heights", consensusHeights)

	defer metrics.IncrCounterWithLabels(
		[]string{exported.ModuleName, types.SubModuleName, "update"},
		1,
		[]metrics.Label{
			{Name: ibcmetrics.LabelClientType, Value: clientType},
			{Name: ibcmetrics.LabelClientID, Value: clientID},
			{Name: ibcmetrics.LabelUpdateType, Value: "msg"},
		},
	)

	return consensusHeights, nil
}

// SubmitMisbehaviour verifies the submitted evidence and freezes the client. An error is returned
// when the evidence is invalid or does not prove a conflict.
func (k *Keeper) SubmitMisbehaviour(ctx coretypes.Context, clientID string, misbehaviour exported.ClientMessage) error {
	if err := statusError(clientID, k.GetClientStatus(ctx, clientID)); err != nil {
		return errorsmod.Wrap(err, "cannot process misbehaviour")
	}

	if m, ok := misbehaviour.(exported.Misbehaviour); ok && m.GetClientID() != clientID {
		return errorsmod.Wrapf(types.ErrInvalidMisbehaviour, "misbehaviour client ID (%s) does not match client (%s)", m.GetClientID(), clientID)
	}

	clientType, _, err := types.ParseClientIdentifier(clientID)
	if err != nil {
		return errorsmod.Wrapf(types.ErrStoreNotInitialized, "clientID (%s)", clientID)
	}

	clientModule, err := k.Route(clientID)
	if err != nil {
		return err
	}

	cacheCtx, writeFn := ctx.CacheContext()

	if err := clientModule.VerifyClientMessage(cacheCtx, clientID, misbehaviour); err != nil {
		return err
	}

	if !clientModule.CheckForMisbehaviour(cacheCtx, clientID, misbehaviour) {
		return errorsmod.Wrapf(types.ErrNoConflictDetected, "client (%s)", clientID)
	}

	clientModule.UpdateStateOnMisbehaviour(cacheCtx, clientID, misbehaviour)
	writeFn()

	k.Logger(ctx).Info("client frozen due to misbehaviour", "client-id", clientID)

	defer metrics.IncrCounterWithLabels(
		[]string{exported.ModuleName, types.SubModuleName, "misbehaviour"},
		1,
		[]metrics.Label{
			{Name: ibcmetrics.LabelClientType, Value: clientType},
			{Name: ibcmetrics.LabelClientID, Value: clientID},
			{Name: ibcmetrics.LabelMsgType, Value: "submit"},
		},
	)

	return nil
}

// VerifyMembership retrieves the light client module for the clientID and verifies the proof of the existence of a key-value pair at a specified height.
func (k *Keeper) VerifyMembership(ctx coretypes.Context, clientID string, height exported.Height, delayTimePeriod uint64, delayBlockPeriod uint64, proof []byte, path exported.Path, value []byte) error {
	clientModule, err := k.Route(clientID)
	if err != nil {
		return err
	}

	if err := statusError(clientID, k.GetClientStatus(ctx, clientID)); err != nil {
		return errorsmod.Wrap(err, "cannot verify membership")
	}

	return clientModule.VerifyMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path, value)
}

// VerifyNonMembership retrieves the light client module for the clientID and verifies the absence of a given key at a specified height.
func (k *Keeper) VerifyNonMembership(ctx coretypes.Context, clientID string, height exported.Height, delayTimePeriod uint64, delayBlockPeriod uint64, proof []byte, path exported.Path) error {
	clientModule, err := k.Route(clientID)
	if err != nil {
		return err
	}

	if err := statusError(clientID, k.GetClientStatus(ctx, clientID)); err != nil {
		return errorsmod.Wrap(err, "cannot verify non-membership")
	}

	return clientModule.VerifyNonMembership(ctx, clientID, height, delayTimePeriod, delayBlockPeriod, proof, path)
}
