package ibctesting

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/cometbls/ibc-lightclient/modules/light-clients/12-cometbls/zkp"
)

// MockProver produces valid Groth16 proofs for arbitrary public signals. It knows the
// trapdoor of its verifying key, so it can satisfy the pairing equation directly instead
// of proving a circuit. It stands in for the off-chain proving service in tests.
type MockProver struct {
	alpha, beta, gamma, delta fr.Element
	k                         []fr.Element

	vk zkp.VerifyingKey
}

// NewMockProver generates a fresh trapdoor and the matching verifying key.
func NewMockProver() (*MockProver, error) {
	p := &MockProver{
		k: make([]fr.Element, zkp.NumPublicSignals+1),
	}

	scalars := append([]*fr.Element{&p.alpha, &p.beta, &p.gamma, &p.delta}, pointers(p.k)...)
	for _, s := range scalars {
		if err := randomNonZero(s); err != nil {
			return nil, err
		}
	}

	_, _, g1, g2 := bn254.Generators()

	k := make([]bn254.G1Affine, len(p.k))
	for i := range p.k {
		k[i] = mulG1(g1, p.k[i])
	}

	vk, err := zkp.NewVerifyingKey(mulG1(g1, p.alpha), mulG2(g2, p.beta), mulG2(g2, p.gamma), mulG2(g2, p.delta), k)
	if err != nil {
		return nil, err
	}
	p.vk = vk

	return p, nil
}

// VerifyingKey returns the verifying key matching the prover's trapdoor.
func (p *MockProver) VerifyingKey() zkp.VerifyingKey {
	return p.vk
}

// Prove returns an encoded proof attesting that the validator set committed to by
// validatorSetCommitment signed canonicalVote.
func (p *MockProver) Prove(validatorSetCommitment, canonicalVote []byte) ([]byte, error) {
	signals, err := zkp.NewPublicSignals(validatorSetCommitment, canonicalVote)
	if err != nil {
		return nil, err
	}

	// l = k0 + sum(x_i * k_{i+1})
	l := p.k[0]
	for i, x := range signals.Inputs() {
		var term fr.Element
		term.Mul(&x, &p.k[i+1])
		l.Add(&l, &term)
	}

	var r, s fr.Element
	if err := randomNonZero(&r); err != nil {
		return nil, err
	}
	if err := randomNonZero(&s); err != nil {
		return nil, err
	}

	// e(rG1, sG2) = e(aG1, bG2) * e(lG1, gG2) * e(cG1, dG2) holds for c = (rs - ab - lg) / d
	var c, ab, lg, dInv fr.Element
	c.Mul(&r, &s)
	ab.Mul(&p.alpha, &p.beta)
	lg.Mul(&l, &p.gamma)
	c.Sub(&c, &ab)
	c.Sub(&c, &lg)
	dInv.Inverse(&p.delta)
	c.Mul(&c, &dInv)

	_, _, g1, g2 := bn254.Generators()
	proof := zkp.Proof{
		A:             mulG1(g1, r),
		B:             mulG2(g2, s),
		C:             mulG1(g1, c),
		SignalsDigest: signals.Digest(),
	}

	return proof.Bytes(), nil
}

func mulG1(base bn254.G1Affine, s fr.Element) bn254.G1Affine {
	var p bn254.G1Affine
	p.ScalarMultiplication(&base, s.BigInt(new(big.Int)))
	return p
}

func mulG2(base bn254.G2Affine, s fr.Element) bn254.G2Affine {
	var p bn254.G2Affine
	p.ScalarMultiplication(&base, s.BigInt(new(big.Int)))
	return p
}

func randomNonZero(s *fr.Element) error {
	for {
		if _, err := s.SetRandom(); err != nil {
			return err
		}
		if !s.IsZero() {
			return nil
		}
	}
}

func pointers(elems []fr.Element) []*fr.Element {
	ptrs := make([]*fr.Element, len(elems))
	for i := range elems {
		ptrs[i] = &elems[i]
	}
	return ptrs
}
