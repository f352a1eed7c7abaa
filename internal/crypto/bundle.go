package crypto

import "errors"

// PrimitiveID names one of the eight heterogeneous key-exchange primitives
// CLUTCH combines. Defined as a sum type rather than a flattened "keys"
// list: each variant has its own key/ciphertext sizes and is parsed by
// this tag, never by position.
type PrimitiveID int

const (
	X25519 PrimitiveID = iota
	ECDHP384
	ECDHSecp256k1
	MLKEM1024
	NTRUHPS4096821
	FrodoKEM976
	HQC256
	McEliece460896
)

// Primitives is the fixed, ordered list of the eight bundle members. Order
// matters: seed derivation hashes the eight pairwise secrets in this
// fixed order.
var Primitives = []PrimitiveID{
	X25519, ECDHP384, ECDHSecp256k1,
	MLKEM1024, NTRUHPS4096821, FrodoKEM976, HQC256, McEliece460896,
}

func (id PrimitiveID) String() string {
	switch id {
	case X25519:
		return "x25519"
	case ECDHP384:
		return "ecdh-p384"
	case ECDHSecp256k1:
		return "ecdh-secp256k1"
	case MLKEM1024:
		return "ml-kem-1024"
	case NTRUHPS4096821:
		return "ntru-hps-4096-821"
	case FrodoKEM976:
		return "frodo-kem-976"
	case HQC256:
		return "hqc-256"
	case McEliece460896:
		return "mceliece-460896"
	default:
		return "unknown-primitive"
	}
}

// IsKEM reports whether id is one of the five KEM primitives (ML-KEM, NTRU,
// Frodo, HQC, McEliece) as opposed to one of the three ECDH primitives.
func (id PrimitiveID) IsKEM() bool {
	switch id {
	case MLKEM1024, NTRUHPS4096821, FrodoKEM976, HQC256, McEliece460896:
		return true
	default:
		return false
	}
}

// Primitive is the black-box interface every bundle member exposes: keygen
// for all, encapsulate/decapsulate for KEMs, derive_shared for ECDH. The
// core never makes algorithmic choices inside these; it only invokes them
// and transports their public/ciphertext bytes.
type Primitive interface {
	ID() PrimitiveID

	// Keygen produces one ephemeral keypair.
	Keygen() (public, secret []byte, err error)

	// Encapsulate is valid only for KEM primitives (IsKEM() == true).
	Encapsulate(peerPublic []byte) (ciphertext, shared []byte, err error)

	// Decapsulate is valid only for KEM primitives.
	Decapsulate(secret, ciphertext []byte) (shared []byte, err error)

	// DeriveShared is valid only for ECDH primitives.
	DeriveShared(peerPublic, secret []byte) (shared []byte, err error)
}

// ErrWrongPrimitive is returned when a KEM-only or ECDH-only method is
// called on the wrong kind of primitive.
var ErrWrongPrimitive = errors.New("crypto: method not valid for this primitive")

// ByID returns the Primitive implementation for id.
func ByID(id PrimitiveID) Primitive {
	switch id {
	case X25519:
		return x25519Primitive{}
	case ECDHP384:
		return ecdhP384Primitive{}
	case ECDHSecp256k1:
		return secp256k1Primitive{}
	case MLKEM1024:
		return newMLKEM1024Primitive()
	case NTRUHPS4096821:
		return newNTRUPrimitive()
	case FrodoKEM976:
		return newFrodoPrimitive()
	case HQC256:
		return newHQCPrimitive()
	case McEliece460896:
		return newMceliecePrimitive()
	default:
		return nil
	}
}
