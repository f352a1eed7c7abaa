package crypto

import (
	"fmt"

	"ciphera/internal/domain"
)

// x25519Primitive adapts the existing X25519 Diffie–Hellman helpers to the
// bundle's black-box Primitive interface.
type x25519Primitive struct{}

func (x25519Primitive) ID() PrimitiveID { return X25519 }

func (x25519Primitive) Keygen() (public, secret []byte, err error) {
	priv, pub, err := GenerateX25519()
	if err != nil {
		return nil, nil, err
	}
	return pub[:], priv[:], nil
}

func (x25519Primitive) Encapsulate(peerPublic []byte) (ciphertext, shared []byte, err error) {
	return nil, nil, fmt.Errorf("%w: x25519 is ECDH, not a KEM", ErrWrongPrimitive)
}

func (x25519Primitive) Decapsulate(secret, ciphertext []byte) (shared []byte, err error) {
	return nil, fmt.Errorf("%w: x25519 is ECDH, not a KEM", ErrWrongPrimitive)
}

func (x25519Primitive) DeriveShared(peerPublic, secret []byte) (shared []byte, err error) {
	if len(peerPublic) != 32 || len(secret) != 32 {
		return nil, fmt.Errorf("x25519: wrong key size")
	}
	var priv domain.X25519Private
	var pub domain.X25519Public
	copy(priv[:], secret)
	copy(pub[:], peerPublic)
	s, err := DH(priv, pub)
	if err != nil {
		return nil, err
	}
	return s[:], nil
}
