package types

import (
	"fmt"

	cmtcrypto "github.com/cometbft/cometbft/proto/tendermint/crypto"
	ics23 "github.com/cosmos/ics23/go"
	"google.golang.org/protobuf/encoding/protowire"

	errorsmod "cosmossdk.io/errors"

	"github.com/cometbls/ibc-lightclient/internal/wire"
)

// Marshal encodes the proof in the wire format of ibc.core.commitment.v1.MerkleProof.
func (proof MerkleProof) Marshal() ([]byte, error) {
	var bz []byte
	for i, p := range proof.Proofs {
		pbz, err := p.Marshal()
		if err != nil {
			return nil, errorsmod.Wrapf(ErrMalformedProof, "failed to marshal commitment proof at index %d: %v", i, err)
		}
		bz = wire.AppendMessage(bz, 1, pbz)
	}
	return bz, nil
}

// Unmarshal decodes a proof encoded by Marshal.
func (proof *MerkleProof) Unmarshal(bz []byte) error {
	var proofs []*ics23.CommitmentProof
	err := wire.RangeFields(bz, func(f wire.Field) error {
		if f.Num != 1 {
			return nil
		}
		if err := f.ExpectType(protowire.BytesType); err != nil {
			return err
		}

		var p ics23.CommitmentProof
		if err := p.Unmarshal(f.Bytes); err != nil {
			return err
		}
		if p.Proof == nil {
			return fmt.Errorf("commitment proof at index %d is empty", len(proofs))
		}
		proofs = append(proofs, &p)
		return nil
	})
	if err != nil {
		return errorsmod.Wrapf(ErrMalformedProof, "failed to unmarshal bytes into merkle proof: %v", err)
	}

	proof.Proofs = proofs
	return nil
}

// ConvertProofs converts crypto.ProofOps into MerkleProof
func ConvertProofs(tmProof *cmtcrypto.ProofOps) (MerkleProof, error) {
	if tmProof == nil {
		return MerkleProof{}, errorsmod.Wrapf(ErrMalformedProof, "tendermint proof is nil")
	}
	// Unmarshal all proof ops to CommitmentProof
	proofs := make([]*ics23.CommitmentProof, len(tmProof.Ops))
	for i, op := range tmProof.Ops {
		var p ics23.CommitmentProof
		err := p.Unmarshal(op.Data)
		if err != nil || p.Proof == nil {
			return MerkleProof{}, errorsmod.Wrapf(ErrMalformedProof, "could not unmarshal proof op into CommitmentProof at index %d: %v", i, err)
		}
		proofs[i] = &p
	}
	return MerkleProof{Proofs: proofs}, nil
}
