package cometbls

import (
	"time"

	ics23 "github.com/cosmos/ics23/go"
	"google.golang.org/protobuf/encoding/protowire"

	errorsmod "cosmossdk.io/errors"

	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"

	"github.com/cometbls/ibc-lightclient/internal/wire"
	commitmenttypes "github.com/cometbls/ibc-lightclient/modules/core/23-commitment/types"
	ibcerrors "github.com/cometbls/ibc-lightclient/modules/core/errors"
)

// The records below are encoded in protobuf wire format. Field numbers:
//
//	ClientState:             1 chain_id, 2 trusting_period, 3 unbonding_period, 4 max_clock_drift,
//	                         5 frozen_height, 6 latest_height, 7 proof_specs (repeated)
//	ConsensusState:          1 timestamp, 2 root, 3 next_validators_hash
//	OptimizedConsensusState: 1 timestamp, 2 root
//	Header:                  1 signed_header, 2 validator_set, 3 trusted_height, 4 trusted_validators,
//	                         5 zero_knowledge_proof
//	Misbehaviour:            1 client_id, 2 header_1, 3 header_2
//
// Durations and timestamps are nanoseconds.

// Marshal encodes the client state.
func (cs ClientState) Marshal() ([]byte, error) {
	var bz []byte
	bz = wire.AppendString(bz, 1, cs.ChainId)
	bz = wire.AppendVarint(bz, 2, uint64(cs.TrustingPeriod))
	bz = wire.AppendVarint(bz, 3, uint64(cs.UnbondingPeriod))
	bz = wire.AppendVarint(bz, 4, uint64(cs.MaxClockDrift))
	bz = wire.AppendMessage(bz, 5, cs.FrozenHeight.Marshal())
	bz = wire.AppendMessage(bz, 6, cs.LatestHeight.Marshal())
	for i, spec := range cs.ProofSpecs {
		specBz, err := spec.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidType, "failed to marshal proof spec at index %d: %v", i, err)
		}
		bz = wire.AppendMessage(bz, 7, specBz)
	}
	return bz, nil
}

// Unmarshal decodes a client state encoded by Marshal.
func (cs *ClientState) Unmarshal(bz []byte) error {
	*cs = ClientState{}
	err := wire.RangeFields(bz, func(f wire.Field) error {
		switch {
		case f.Num >= 2 && f.Num <= 4:
			if err := f.ExpectType(protowire.VarintType); err != nil {
				return err
			}
		case f.Num >= 1 && f.Num <= 7:
			if err := f.ExpectType(protowire.BytesType); err != nil {
				return err
			}
		}

		switch f.Num {
		case 1:
			cs.ChainId = string(f.Bytes)
		case 2:
			cs.TrustingPeriod = time.Duration(f.Varint)
		case 3:
			cs.UnbondingPeriod = time.Duration(f.Varint)
		case 4:
			cs.MaxClockDrift = time.Duration(f.Varint)
		case 5:
			return cs.FrozenHeight.Unmarshal(f.Bytes)
		case 6:
			return cs.LatestHeight.Unmarshal(f.Bytes)
		case 7:
			var spec ics23.ProofSpec
			if err := spec.Unmarshal(f.Bytes); err != nil {
				return err
			}
			cs.ProofSpecs = append(cs.ProofSpecs, &spec)
		}
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrDecode, "failed to unmarshal client state: %v", err)
	}
	return nil
}

// Marshal encodes the consensus state.
func (cs ConsensusState) Marshal() []byte {
	var bz []byte
	bz = wire.AppendVarint(bz, 1, encodeTime(cs.Timestamp))
	bz = wire.AppendBytes(bz, 2, cs.Root.GetHash())
	bz = wire.AppendBytes(bz, 3, cs.NextValidatorsHash)
	return bz
}

// Unmarshal decodes a consensus state encoded by Marshal.
func (cs *ConsensusState) Unmarshal(bz []byte) error {
	*cs = ConsensusState{}
	err := wire.RangeFields(bz, func(f wire.Field) error {
		if err := expectTimestampAndBytes(f, 3); err != nil {
			return err
		}

		switch f.Num {
		case 1:
			cs.Timestamp = decodeTime(f.Varint)
		case 2:
			cs.Root = commitmenttypes.NewMerkleRoot(f.Bytes)
		case 3:
			cs.NextValidatorsHash = f.Bytes
		}
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrDecode, "failed to unmarshal consensus state: %v", err)
	}
	return nil
}

// Marshal encodes the optimized consensus state.
func (ocs OptimizedConsensusState) Marshal() []byte {
	var bz []byte
	bz = wire.AppendVarint(bz, 1, encodeTime(ocs.Timestamp))
	bz = wire.AppendBytes(bz, 2, ocs.Root.GetHash())
	return bz
}

// Unmarshal decodes an optimized consensus state encoded by Marshal.
func (ocs *OptimizedConsensusState) Unmarshal(bz []byte) error {
	*ocs = OptimizedConsensusState{}
	err := wire.RangeFields(bz, func(f wire.Field) error {
		if err := expectTimestampAndBytes(f, 2); err != nil {
			return err
		}

		switch f.Num {
		case 1:
			ocs.Timestamp = decodeTime(f.Varint)
		case 2:
			ocs.Root = commitmenttypes.NewMerkleRoot(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrDecode, "failed to unmarshal optimized consensus state: %v", err)
	}
	return nil
}

// Marshal encodes the header.
func (h Header) Marshal() ([]byte, error) {
	var bz []byte
	if h.SignedHeader != nil {
		shBz, err := h.SignedHeader.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidType, "failed to marshal signed header: %v", err)
		}
		bz = wire.AppendMessage(bz, 1, shBz)
	}
	if h.ValidatorSet != nil {
		vsBz, err := h.ValidatorSet.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidType, "failed to marshal validator set: %v", err)
		}
		bz = wire.AppendMessage(bz, 2, vsBz)
	}
	bz = wire.AppendMessage(bz, 3, h.TrustedHeight.Marshal())
	if h.TrustedValidators != nil {
		tvBz, err := h.TrustedValidators.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ibcerrors.ErrInvalidType, "failed to marshal trusted validators: %v", err)
		}
		bz = wire.AppendMessage(bz, 4, tvBz)
	}
	bz = wire.AppendBytes(bz, 5, h.ZeroKnowledgeProof)
	return bz, nil
}

// Unmarshal decodes a header encoded by Marshal.
func (h *Header) Unmarshal(bz []byte) error {
	*h = Header{}
	err := wire.RangeFields(bz, func(f wire.Field) error {
		if f.Num >= 1 && f.Num <= 5 {
			if err := f.ExpectType(protowire.BytesType); err != nil {
				return err
			}
		}

		switch f.Num {
		case 1:
			h.SignedHeader = &cmtproto.SignedHeader{}
			return h.SignedHeader.Unmarshal(f.Bytes)
		case 2:
			h.ValidatorSet = &cmtproto.ValidatorSet{}
			return h.ValidatorSet.Unmarshal(f.Bytes)
		case 3:
			return h.TrustedHeight.Unmarshal(f.Bytes)
		case 4:
			h.TrustedValidators = &cmtproto.ValidatorSet{}
			return h.TrustedValidators.Unmarshal(f.Bytes)
		case 5:
			h.ZeroKnowledgeProof = f.Bytes
		}
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrDecode, "failed to unmarshal header: %v", err)
	}
	return nil
}

// Marshal encodes the misbehaviour.
func (misbehaviour Misbehaviour) Marshal() ([]byte, error) {
	var bz []byte
	bz = wire.AppendString(bz, 1, misbehaviour.ClientId)
	for i, header := range []*Header{misbehaviour.Header1, misbehaviour.Header2} {
		if header == nil {
			continue
		}
		headerBz, err := header.Marshal()
		if err != nil {
			return nil, err
		}
		bz = wire.AppendMessage(bz, protowire.Number(i+2), headerBz)
	}
	return bz, nil
}

// Unmarshal decodes a misbehaviour encoded by Marshal.
func (misbehaviour *Misbehaviour) Unmarshal(bz []byte) error {
	*misbehaviour = Misbehaviour{}
	err := wire.RangeFields(bz, func(f wire.Field) error {
		if f.Num >= 1 && f.Num <= 3 {
			if err := f.ExpectType(protowire.BytesType); err != nil {
				return err
			}
		}

		switch f.Num {
		case 1:
			misbehaviour.ClientId = string(f.Bytes)
		case 2:
			misbehaviour.Header1 = &Header{}
			return misbehaviour.Header1.Unmarshal(f.Bytes)
		case 3:
			misbehaviour.Header2 = &Header{}
			return misbehaviour.Header2.Unmarshal(f.Bytes)
		}
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ibcerrors.ErrDecode, "failed to unmarshal misbehaviour: %v", err)
	}
	return nil
}

// expectTimestampAndBytes checks the wire type of consensus record fields: field 1 is a
// timestamp, fields 2 to last are bytes.
func expectTimestampAndBytes(f wire.Field, last protowire.Number) error {
	switch {
	case f.Num == 1:
		return f.ExpectType(protowire.VarintType)
	case f.Num >= 2 && f.Num <= last:
		return f.ExpectType(protowire.BytesType)
	}
	return nil
}

func encodeTime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	return uint64(t.UnixNano())
}

func decodeTime(ns uint64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, int64(ns)).UTC()
}
