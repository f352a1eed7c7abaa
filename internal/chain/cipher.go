package chain

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/smear"
)

// chachaKey derives the stream-cipher key = KDF(domain_chacha ‖ link[511]).
func chachaKey(currentKey [32]byte) [32]byte {
	return smear.Hash(append(append([]byte{}, domainsep.ChachaKey...), currentKey[:]...))
}

// DeriveNonce derives a 12-byte stream-cipher nonce from the message
// timestamp and the sender's handle_hash: nonce = first 12 bytes of
// hash(domain_nonce ‖ timestamp ‖ handle_hash). Monotone timestamps combined with a fixed
// handle_hash keep nonces from repeating across a sender's messages.
func DeriveNonce(timestamp int64, senderHandleHash domaintypes.HandleHash) [chacha20.NonceSize]byte {
	buf := append([]byte{}, domainsep.Nonce...)
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(timestamp))
	buf = append(buf, tsBuf[:]...)
	buf = append(buf, senderHandleHash[:]...)
	digest := smear.Hash(buf)

	var nonce [chacha20.NonceSize]byte
	copy(nonce[:], digest[:chacha20.NonceSize])
	return nonce
}

// sealInner applies the stream-cipher and scratch-pad XOR layers over plaintext, which is already the
// shuffled typed-field serialization. Encryption and decryption are the
// same operation: both layers are involutions.
func sealInner(plaintext []byte, currentKey [32]byte, nonce [chacha20.NonceSize]byte, pad []byte) ([]byte, error) {
	out := make([]byte, len(plaintext))
	key := chachaKey(currentKey)
	stream, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		return nil, err
	}
	stream.XORKeyStream(out, plaintext)

	for i := range out {
		out[i] ^= pad[i%len(pad)]
	}
	return out, nil
}
