package zkp

import (
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	errorsmod "cosmossdk.io/errors"
)

// VerifyingKey is a Groth16 verifying key over BN254 for a circuit with
// NumPublicSignals public inputs. It is immutable once constructed.
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	// K holds the input commitments; K[0] is the constant term.
	K []bn254.G1Affine
}

// NewVerifyingKey returns a validated verifying key.
func NewVerifyingKey(alpha bn254.G1Affine, beta, gamma, delta bn254.G2Affine, k []bn254.G1Affine) (VerifyingKey, error) {
	vk := VerifyingKey{
		Alpha: alpha,
		Beta:  beta,
		Gamma: gamma,
		Delta: delta,
		K:     append([]bn254.G1Affine(nil), k...),
	}
	if err := vk.Validate(); err != nil {
		return VerifyingKey{}, err
	}
	return vk, nil
}

// Validate checks the key size and performs subgroup checks on every point.
func (vk VerifyingKey) Validate() error {
	if len(vk.K) != NumPublicSignals+1 {
		return errorsmod.Wrapf(ErrInvalidVerifyingKey, "expected %d input commitments, got %d", NumPublicSignals+1, len(vk.K))
	}

	if !vk.Alpha.IsInSubGroup() || vk.Alpha.IsInfinity() {
		return errorsmod.Wrap(ErrInvalidVerifyingKey, "alpha point not in G1 subgroup")
	}

	for _, field := range vk.g2Fields() {
		if !field.point.IsInSubGroup() || field.point.IsInfinity() {
			return errorsmod.Wrapf(ErrInvalidVerifyingKey, "%s point not in G2 subgroup", field.name)
		}
	}

	for i := range vk.K {
		if !vk.K[i].IsInSubGroup() {
			return errorsmod.Wrapf(ErrInvalidVerifyingKey, "K[%d] point not in G1 subgroup", i)
		}
	}

	return nil
}

type namedG2 struct {
	name  string
	point *bn254.G2Affine
}

func (vk *VerifyingKey) g2Fields() []namedG2 {
	return []namedG2{{"beta", &vk.Beta}, {"gamma", &vk.Gamma}, {"delta", &vk.Delta}}
}

// Marshal encodes the key as Alpha | Beta | Gamma | Delta | len(K) as uint32 big endian | K.
func (vk VerifyingKey) Marshal() []byte {
	bz := make([]byte, 0, g1Size+3*g2Size+4+len(vk.K)*g1Size)
	bz = append(bz, vk.Alpha.Marshal()...)
	bz = append(bz, vk.Beta.Marshal()...)
	bz = append(bz, vk.Gamma.Marshal()...)
	bz = append(bz, vk.Delta.Marshal()...)
	bz = binary.BigEndian.AppendUint32(bz, uint32(len(vk.K)))
	for i := range vk.K {
		bz = append(bz, vk.K[i].Marshal()...)
	}
	return bz
}

// UnmarshalVerifyingKey decodes and validates a key encoded by Marshal.
func UnmarshalVerifyingKey(bz []byte) (VerifyingKey, error) {
	headerSize := g1Size + 3*g2Size + 4
	if len(bz) < headerSize {
		return VerifyingKey{}, errorsmod.Wrapf(ErrInvalidVerifyingKey, "verifying key too short: %d bytes", len(bz))
	}

	var (
		vk     VerifyingKey
		offset int
	)

	if err := vk.Alpha.Unmarshal(bz[offset : offset+g1Size]); err != nil {
		return VerifyingKey{}, errorsmod.Wrapf(ErrInvalidVerifyingKey, "failed to unmarshal alpha: %v", err)
	}
	offset += g1Size

	for _, field := range vk.g2Fields() {
		if err := field.point.Unmarshal(bz[offset : offset+g2Size]); err != nil {
			return VerifyingKey{}, errorsmod.Wrapf(ErrInvalidVerifyingKey, "failed to unmarshal %s: %v", field.name, err)
		}
		offset += g2Size
	}

	numK := int(binary.BigEndian.Uint32(bz[offset : offset+4]))
	offset += 4

	if numK != NumPublicSignals+1 || len(bz) != offset+numK*g1Size {
		return VerifyingKey{}, errorsmod.Wrapf(ErrInvalidVerifyingKey, "unexpected input commitment section: %d points in %d bytes", numK, len(bz)-offset)
	}

	vk.K = make([]bn254.G1Affine, numK)
	for i := range vk.K {
		if err := vk.K[i].Unmarshal(bz[offset : offset+g1Size]); err != nil {
			return VerifyingKey{}, errorsmod.Wrapf(ErrInvalidVerifyingKey, "failed to unmarshal K[%d]: %v", i, err)
		}
		offset += g1Size
	}

	if err := vk.Validate(); err != nil {
		return VerifyingKey{}, err
	}
	return vk, nil
}

// Verify checks that proofBz attests a quorum of the validator set committed to by
// validatorSetCommitment signed canonicalVote.
func (vk VerifyingKey) Verify(validatorSetCommitment, canonicalVote, proofBz []byte) error {
	proof, err := ParseProof(proofBz)
	if err != nil {
		return err
	}

	signals, err := NewPublicSignals(validatorSetCommitment, canonicalVote)
	if err != nil {
		return err
	}

	if signals.Digest() != proof.SignalsDigest {
		return errorsmod.Wrap(ErrInvalidPublicInput, "proof was generated for a different vote or validator set")
	}

	return vk.verifyPairing(proof, signals.Inputs())
}

// verifyPairing checks e(A, B) = e(alpha, beta) * e(L, gamma) * e(C, delta) where
// L = K[0] + sum(inputs[i] * K[i+1]).
func (vk VerifyingKey) verifyPairing(proof Proof, inputs []fr.Element) error {
	if len(inputs)+1 != len(vk.K) {
		return errorsmod.Wrapf(ErrInvalidPublicInput, "expected %d public inputs, got %d", len(vk.K)-1, len(inputs))
	}

	var acc bn254.G1Jac
	acc.FromAffine(&vk.K[0])
	for i := range inputs {
		var term bn254.G1Affine
		term.ScalarMultiplication(&vk.K[i+1], inputs[i].BigInt(new(big.Int)))
		acc.AddMixed(&term)
	}

	var l, negAlpha, negL, negC bn254.G1Affine
	l.FromJacobian(&acc)
	negAlpha.Neg(&vk.Alpha)
	negL.Neg(&l)
	negC.Neg(&proof.C)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{proof.A, negAlpha, negL, negC},
		[]bn254.G2Affine{proof.B, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return errorsmod.Wrapf(ErrInvalidProof, "pairing failed: %v", err)
	}
	if !ok {
		return errorsmod.Wrap(ErrInvalidProof, "pairing check failed")
	}

	return nil
}
