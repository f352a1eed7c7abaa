package chain

import (
	"golang.org/x/crypto/chacha20"

	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/protoerr"
)

// Encrypted is the opaque body the message section of the wire envelope
// carries, plus the nonce needed to decrypt it (the nonce itself travels
// alongside the body; it is derived, not secret).
type Encrypted struct {
	Body  []byte
	Nonce [chacha20.NonceSize]byte
}

// Encrypt runs the sender-side pipeline: serialize the shuffled typed fields, stream-cipher under the
// chain's current key, then XOR with a salt-derived scratch pad. Envelope
// wrapping (step 4-5) is internal/envelope's concern, not this package's.
func Encrypt(
	c *domaintypes.ParticipantChain,
	senderHandleHash domaintypes.HandleHash,
	prevPlaintext []byte,
	timestamp int64,
	pt Plaintext,
) (Encrypted, error) {
	serialized, err := EncodeShuffled(pt)
	if err != nil {
		return Encrypted{}, err
	}
	salt := DeriveSalt(prevPlaintext, c, 0)
	pad := ScratchPad(c.Current(), salt)
	nonce := DeriveNonce(timestamp, senderHandleHash)

	body, err := sealInner(serialized, c.Current(), nonce, pad)
	if err != nil {
		return Encrypted{}, err
	}
	return Encrypted{Body: body, Nonce: nonce}, nil
}

// Decrypt attempts to decrypt body against c's current key, then falls
// back through up to 256 positions of chain history: offset 0 is the
// current key, offset o tries links[511-o]. The salt is re-derived at each
// offset from the offset-shifted tail window, reproducing the salt that
// was live when that historical key was current. Returns the offset at
// which decryption succeeded, so the caller can tell whether the sender
// retransmitted an older message.
func Decrypt(
	c *domaintypes.ParticipantChain,
	prevPlaintext []byte,
	nonce [chacha20.NonceSize]byte,
	body []byte,
) (Plaintext, int, error) {
	for offset := 0; offset <= domainsep.HistoryWindow; offset++ {
		idx := domainsep.CurrentKeyIndex - offset
		if idx < 0 {
			break
		}
		key := c.Links[idx]
		salt := DeriveSalt(prevPlaintext, c, offset)
		pad := ScratchPad(key, salt)

		serialized, err := sealInner(body, key, nonce, pad)
		if err != nil {
			continue
		}
		pt, err := DecodeShuffled(serialized)
		if err != nil {
			continue
		}
		return pt, offset, nil
	}
	return Plaintext{}, -1, protoerr.New(protoerr.DecryptionFailed, "no current or historical chain state decrypted the message")
}
