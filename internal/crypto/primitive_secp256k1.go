package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// secp256k1Primitive is the secp256k1 ECDH member of the bundle, backed by
// decred's secp256k1 implementation (the library underlying btcec, and
// attested directly or transitively across several pack manifests:
// hsiuhsiu-cb-mpc-go-exp, kisdex-mpc-lib, leanlp-BTC-coinjoin,
// toole-brendan-shell).
type secp256k1Primitive struct{}

func (secp256k1Primitive) ID() PrimitiveID { return ECDHSecp256k1 }

func (secp256k1Primitive) Keygen() (public, secret []byte, err error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("ecdh-secp256k1: generate key: %w", err)
	}
	return priv.PubKey().SerializeCompressed(), priv.Serialize(), nil
}

func (secp256k1Primitive) Encapsulate(peerPublic []byte) (ciphertext, shared []byte, err error) {
	return nil, nil, fmt.Errorf("%w: ecdh-secp256k1 is ECDH, not a KEM", ErrWrongPrimitive)
}

func (secp256k1Primitive) Decapsulate(secret, ciphertext []byte) (shared []byte, err error) {
	return nil, fmt.Errorf("%w: ecdh-secp256k1 is ECDH, not a KEM", ErrWrongPrimitive)
}

// DeriveShared performs raw-x-coordinate ECDH: scalar-multiply the peer's
// point by our private scalar and take the resulting affine X coordinate.
func (secp256k1Primitive) DeriveShared(peerPublic, secret []byte) (shared []byte, err error) {
	pub, err := secp256k1.ParsePubKey(peerPublic)
	if err != nil {
		return nil, fmt.Errorf("ecdh-secp256k1: invalid peer public key: %w", err)
	}
	priv := secp256k1.PrivKeyFromBytes(secret)

	var point, result secp256k1.JacobianPoint
	pub.AsJacobian(&point)
	secp256k1.ScalarMultNonConst(&priv.Key, &point, &result)
	result.ToAffine()

	x := result.X.Bytes()
	return x[:], nil
}
