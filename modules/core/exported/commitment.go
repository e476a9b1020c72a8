package exported

import ics23 "github.com/cosmos/ics23/go"

// Root is an ICS-23 commitment root.
// A root is constructed from a set of key-value pairs,
// and the inclusion or non-inclusion of an arbitrary key-value pair
// can be proven with the proof.
type Root interface {
	GetHash() []byte
	Empty() bool
}

// Prefix is an ICS-23 commitment prefix.
// Prefix represents the common "prefix" that a set of keys shares.
type Prefix interface {
	Bytes() []byte
	Empty() bool
}

// Path is an ICS-23 commitment path.
// A path is the additional information provided to the verification function.
type Path interface {
	Empty() bool
}

// Proof is an ICS-23 commitment proof.
// Proof can prove whether the key-value pair is a part of the Root or not.
type Proof interface {
	VerifyMembership([]*ics23.ProofSpec, Root, Path, []byte) error
	VerifyNonMembership([]*ics23.ProofSpec, Root, Path) error
	Empty() bool

	ValidateBasic() error
}
