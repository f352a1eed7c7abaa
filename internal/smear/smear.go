package smear

import (
	"crypto/sha512"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Size is the length in bytes of a smear_hash output.
const Size = 32

// Hash returns the byte-wise XOR of three independent 32-byte digests of b:
// BLAKE3 (fast tree hash family), SHA3-256 (sponge permutation family), and
// SHA-512/256 (Merkle–Damgård family, truncated to 32 bytes).
func Hash(b []byte) [Size]byte {
	tree := blake3.Sum256(b)
	sponge := sha3.Sum256(b)
	md := sha512.Sum512_256(b)

	var out [Size]byte
	for i := 0; i < Size; i++ {
		out[i] = tree[i] ^ sponge[i] ^ md[i]
	}
	return out
}
