package clutch

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"ciphera/internal/crypto"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
)

// deriveSeed computes the CLUTCH seed: a
// domain-separated hash over the sorted handle_hashes, every party's
// X25519 public key in that same order, and for each peer (in
// sorted-by-peer-handle_hash order) the peer's handle_hash followed by the
// eight pairwise secrets in crypto.Primitives' fixed order, XOF-extended
// to 256 bytes. Every party feeds in the identical byte sequence, so every
// party derives the identical seed.
func deriveSeed(
	participants []domaintypes.HandleHash,
	self domaintypes.HandleHash,
	offers map[domaintypes.HandleHash]*Offer,
	pairwise map[domaintypes.HandleHash]map[crypto.PrimitiveID][]byte,
) ([]byte, error) {
	xof := sha3.NewShake256()
	xof.Write(domainsep.ClutchSeedV3)

	for _, hh := range participants {
		xof.Write(hh[:])
	}
	for _, hh := range participants {
		offer, ok := offers[hh]
		if !ok {
			return nil, fmt.Errorf("clutch: missing offer for participant %s", hh)
		}
		x25519Pub, ok := offer.PublicKeys[crypto.X25519]
		if !ok || len(x25519Pub) == 0 {
			return nil, fmt.Errorf("clutch: missing X25519 public key for %s", hh)
		}
		xof.Write(x25519Pub)
	}
	for _, peer := range participants {
		if peer == self {
			continue
		}
		secrets, ok := pairwise[peer]
		if !ok {
			return nil, fmt.Errorf("clutch: missing pairwise secrets for %s", peer)
		}
		xof.Write(peer[:])
		for _, pid := range crypto.Primitives {
			s, ok := secrets[pid]
			if !ok || len(s) == 0 {
				return nil, fmt.Errorf("clutch: missing %s secret for %s", pid, peer)
			}
			xof.Write(s)
		}
	}

	seed := make([]byte, 256)
	if _, err := xof.Read(seed); err != nil {
		return nil, err
	}
	return seed, nil
}
