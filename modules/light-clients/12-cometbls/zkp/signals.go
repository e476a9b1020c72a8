package zkp

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	errorsmod "cosmossdk.io/errors"
)

// NumPublicSignals is the number of public inputs of the circuit.
const NumPublicSignals = 3

// CommitmentSize is the size of a validator set commitment.
const CommitmentSize = sha256.Size

// PublicSignals are the public inputs of the aggregate signature circuit.
type PublicSignals struct {
	// VoteHash is sha256 of the canonical vote bytes.
	VoteHash [32]byte
	// CommitmentHash is sha256 of the validator set commitment.
	CommitmentHash [32]byte
}

// NewPublicSignals derives the public signals for a canonical vote signed by the
// validator set committed to by validatorSetCommitment.
func NewPublicSignals(validatorSetCommitment, canonicalVote []byte) (PublicSignals, error) {
	if len(validatorSetCommitment) != CommitmentSize {
		return PublicSignals{}, errorsmod.Wrapf(ErrInvalidPublicInput, "validator set commitment must be %d bytes, got %d", CommitmentSize, len(validatorSetCommitment))
	}
	if len(canonicalVote) == 0 {
		return PublicSignals{}, errorsmod.Wrap(ErrInvalidPublicInput, "canonical vote cannot be empty")
	}

	return PublicSignals{
		VoteHash:       sha256.Sum256(canonicalVote),
		CommitmentHash: sha256.Sum256(validatorSetCommitment),
	}, nil
}

// Inputs returns the field elements fed to the verifier, in circuit order:
// vote hash, validator set commitment, quorum flag.
func (s PublicSignals) Inputs() []fr.Element {
	var quorum fr.Element
	quorum.SetOne()

	return []fr.Element{HashToField(s.VoteHash), HashToField(s.CommitmentHash), quorum}
}

// Digest binds the public inputs a proof was generated for.
func (s PublicSignals) Digest() [32]byte {
	h := sha256.New()
	for _, input := range s.Inputs() {
		bz := input.Bytes()
		h.Write(bz[:])
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// HashToField maps a 32 byte digest into the BN254 scalar field by clearing its
// three most significant bits.
func HashToField(digest [32]byte) fr.Element {
	digest[0] &= 0x1f

	var e fr.Element
	e.SetBytes(digest[:])
	return e
}
