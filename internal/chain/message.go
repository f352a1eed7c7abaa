package chain

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"ciphera/internal/protoerr"
)

type fieldTag byte

const (
	tagText     fieldTag = 0x01
	tagPrevHash fieldTag = 0x02
	tagPadding  fieldTag = 0x03
)

type field struct {
	tag     fieldTag
	payload []byte
}

// Plaintext is the named, typed field structure carried inside one message
//: a text payload and an incorporated
// hash pointer binding both directions of the conversation. A random
// padding blob is added at encode time and discarded at decode time.
type Plaintext struct {
	Text      []byte
	PrevMsgHP [32]byte
}

// EncodeShuffled serializes p's fields, plus a random 0-255 byte padding
// blob, in a randomly shuffled order: receivers must parse by tag tag
// rather than by position.
func EncodeShuffled(p Plaintext) ([]byte, error) {
	padding, err := randomPadding()
	if err != nil {
		return nil, err
	}
	fields := []field{
		{tagText, p.Text},
		{tagPrevHash, p.PrevMsgHP[:]},
		{tagPadding, padding},
	}
	if err := shuffleFields(fields); err != nil {
		return nil, err
	}

	var out []byte
	for _, f := range fields {
		out = append(out, byte(f.tag))
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(f.payload)))
		out = append(out, lenBuf[:]...)
		out = append(out, f.payload...)
	}
	return out, nil
}

// DecodeShuffled parses a shuffled-order typed field buffer by tag,
// independent of encoded order.
func DecodeShuffled(buf []byte) (Plaintext, error) {
	var p Plaintext
	var sawText, sawPrevHash bool
	for len(buf) > 0 {
		if len(buf) < 5 {
			return Plaintext{}, protoerr.New(protoerr.FormatError, "truncated typed field header")
		}
		tag := fieldTag(buf[0])
		length := binary.BigEndian.Uint32(buf[1:5])
		buf = buf[5:]
		if uint64(len(buf)) < uint64(length) {
			return Plaintext{}, protoerr.New(protoerr.FormatError, "truncated typed field payload")
		}
		payload := buf[:length]
		buf = buf[length:]

		switch tag {
		case tagText:
			p.Text = append([]byte{}, payload...)
			sawText = true
		case tagPrevHash:
			if len(payload) != 32 {
				return Plaintext{}, protoerr.New(protoerr.FormatError, "wrong prev_msg_hp length")
			}
			copy(p.PrevMsgHP[:], payload)
			sawPrevHash = true
		case tagPadding:
			// padding obscures length; discarded on decode.
		default:
			return Plaintext{}, protoerr.New(protoerr.FormatError, fmt.Sprintf("unknown field tag 0x%02x", tag))
		}
	}
	if !sawText || !sawPrevHash {
		return Plaintext{}, protoerr.New(protoerr.FormatError, "missing required typed field")
	}
	return p, nil
}

// randomPadding returns a random 0-255 byte blob whose length is the
// minimum of three independent uniform u8 samples, biasing short.
func randomPadding() ([]byte, error) {
	var samples [3]byte
	if _, err := rand.Read(samples[:]); err != nil {
		return nil, err
	}
	n := samples[0]
	if samples[1] < n {
		n = samples[1]
	}
	if samples[2] < n {
		n = samples[2]
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func shuffleFields(fields []field) error {
	for i := len(fields) - 1; i > 0; i-- {
		jBig, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := int(jBig.Int64())
		fields[i], fields[j] = fields[j], fields[i]
	}
	return nil
}
