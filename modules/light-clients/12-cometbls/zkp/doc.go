/*
Package zkp verifies the Groth16 proofs which stand in for the commit signatures of a
CometBFT block in the 12-cometbls light client.

A proof attests that validators holding more than two thirds of the voting power of a
committed validator set signed a canonical vote. The verifier never sees individual
signatures: it recomputes the public signals from the canonical vote and the
validator set commitment and runs one pairing check over BN254 against a fixed
verifying key.
*/
package zkp
