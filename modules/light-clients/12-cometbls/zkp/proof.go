package zkp

import (
	"github.com/consensys/gnark-crypto/ecc/bn254"

	errorsmod "cosmossdk.io/errors"
)

const (
	g1Size = bn254.SizeOfG1AffineUncompressed
	g2Size = bn254.SizeOfG2AffineUncompressed

	// ProofSize is the size of an encoded proof: A | B | C | public signals digest.
	ProofSize = g1Size + g2Size + g1Size + 32
)

// Proof is a Groth16 proof together with the digest of the public signals it was
// generated for.
type Proof struct {
	A             bn254.G1Affine
	B             bn254.G2Affine
	C             bn254.G1Affine
	SignalsDigest [32]byte
}

// ParseProof decodes a proof. Length errors are reported as ErrMalformedProof and
// invalid curve points as ErrInvalidProof.
func ParseProof(bz []byte) (Proof, error) {
	if len(bz) != ProofSize {
		return Proof{}, errorsmod.Wrapf(ErrMalformedProof, "expected %d bytes, got %d", ProofSize, len(bz))
	}

	var (
		proof  Proof
		offset int
	)

	if err := proof.A.Unmarshal(bz[offset : offset+g1Size]); err != nil {
		return Proof{}, errorsmod.Wrapf(ErrInvalidProof, "failed to unmarshal A: %v", err)
	}
	offset += g1Size

	if err := proof.B.Unmarshal(bz[offset : offset+g2Size]); err != nil {
		return Proof{}, errorsmod.Wrapf(ErrInvalidProof, "failed to unmarshal B: %v", err)
	}
	offset += g2Size

	if err := proof.C.Unmarshal(bz[offset : offset+g1Size]); err != nil {
		return Proof{}, errorsmod.Wrapf(ErrInvalidProof, "failed to unmarshal C: %v", err)
	}
	offset += g1Size

	copy(proof.SignalsDigest[:], bz[offset:])

	if proof.A.IsInfinity() || proof.B.IsInfinity() || proof.C.IsInfinity() {
		return Proof{}, errorsmod.Wrap(ErrInvalidProof, "proof elements cannot be the point at infinity")
	}

	return proof, nil
}

// Bytes encodes the proof.
func (p Proof) Bytes() []byte {
	bz := make([]byte, 0, ProofSize)
	bz = append(bz, p.A.Marshal()...)
	bz = append(bz, p.B.Marshal()...)
	bz = append(bz, p.C.Marshal()...)
	return append(bz, p.SignalsDigest[:]...)
}
