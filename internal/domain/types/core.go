package types

import (
	"encoding/hex"

	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

// Handle is the UTF-8 string a user picks for themselves. It is never
// placed on the wire.
type Handle string

// String returns the handle's string form.
func (h Handle) String() string { return string(h) }

// Hash computes handle_hash: a 32-byte digest of the handle's canonical
// byte encoding, computed instantly. It is derived
// on demand and never persisted independently of the identity that
// produces it.
func (h Handle) Hash() HandleHash {
	return HandleHash(smear.Hash(append(append([]byte{}, domainsep.HandleID...), h...)))
}

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// HandleHash is the 32-byte digest of a handle's canonical byte encoding:
// the private identity seed shared only with people who already know the
// plaintext handle.
type HandleHash [32]byte

// String renders the hash as lower-case hex.
func (h HandleHash) String() string { return hex.EncodeToString(h[:]) }

// CeremonyID is the memory-hard-hardened digest over a sorted set of
// HandleHashes, identical on all parties with no negotiation.
type CeremonyID [32]byte

// String renders the id as lower-case hex.
func (c CeremonyID) String() string { return hex.EncodeToString(c[:]) }

// FriendshipID is the derived identifier for a ceremony's set of
// ParticipantChains.
type FriendshipID [32]byte

// String renders the id as lower-case hex.
func (f FriendshipID) String() string { return hex.EncodeToString(f[:]) }

// NetworkID is the deterministic content identifier used as a storage
// filename and gap-recovery lookup key.
type NetworkID [32]byte

// String renders the id as lower-case hex.
func (n NetworkID) String() string { return hex.EncodeToString(n[:]) }
