/*
Package cometbls implements a concrete ClientState, ConsensusState,
Header, Misbehaviour and LightClientModule for a CometBFT chain whose commit
signatures are attested by a single zero-knowledge proof.

Headers are verified against a trusted consensus state in the usual
CometBFT way (trusting period, clock drift, validator set continuity) but
instead of checking each commit signature the client canonicalizes the
precommit vote and verifies a Groth16 proof, see package zkp, that more than
two thirds of the committed validator set signed it.
*/
package cometbls
