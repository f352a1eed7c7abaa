// Package smear implements smear_hash: the byte-wise XOR of three 32-byte
// digests produced by three independent hash constructions from distinct
// families (a fast tree hash, a sponge permutation, and a truncated
// Merkle–Damgård hash). Breaking the combined output requires breaking all
// three component families.
package smear
