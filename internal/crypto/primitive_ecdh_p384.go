package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
)

// ecdhP384Primitive is the NIST P-384 ECDH member of the bundle. No pack
// example imports a third-party NIST-curve ECDH library — they all reach
// for crypto/ecdh or raw math/big scalar multiplication — so stdlib is the
// idiomatic choice here, not a fallback (see DESIGN.md).
type ecdhP384Primitive struct{}

func (ecdhP384Primitive) ID() PrimitiveID { return ECDHP384 }

func (ecdhP384Primitive) Keygen() (public, secret []byte, err error) {
	priv, err := ecdh.P384().GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("ecdh-p384: generate key: %w", err)
	}
	return priv.PublicKey().Bytes(), priv.Bytes(), nil
}

func (ecdhP384Primitive) Encapsulate(peerPublic []byte) (ciphertext, shared []byte, err error) {
	return nil, nil, fmt.Errorf("%w: ecdh-p384 is ECDH, not a KEM", ErrWrongPrimitive)
}

func (ecdhP384Primitive) Decapsulate(secret, ciphertext []byte) (shared []byte, err error) {
	return nil, fmt.Errorf("%w: ecdh-p384 is ECDH, not a KEM", ErrWrongPrimitive)
}

func (ecdhP384Primitive) DeriveShared(peerPublic, secret []byte) (shared []byte, err error) {
	curve := ecdh.P384()
	priv, err := curve.NewPrivateKey(secret)
	if err != nil {
		return nil, fmt.Errorf("ecdh-p384: invalid secret: %w", err)
	}
	pub, err := curve.NewPublicKey(peerPublic)
	if err != nil {
		return nil, fmt.Errorf("ecdh-p384: invalid peer public key: %w", err)
	}
	s, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("ecdh-p384: derive shared: %w", err)
	}
	return s, nil
}
