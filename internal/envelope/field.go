package envelope

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"ciphera/internal/protoerr"
)

// Tag identifies one typed field. Tags below 0x80 are format-reserved
//; 0x80 and above are application-encoded
// wrapped bytes (the "upper-case second character" tags).
type Tag byte

const (
	TagHandleHash   Tag = 0x01 // 32 bytes, inline
	TagFriendshipID Tag = 0x02 // 32 bytes, inline
	TagCeremonyID   Tag = 0x03 // 32 bytes, inline
	TagNetworkID    Tag = 0x04 // 32 bytes, inline
	TagTimestamp    Tag = 0x05 // 8 bytes, inline, big-endian signed
	TagAckProof     Tag = 0x06 // 32 bytes, inline
	TagNonce        Tag = 0x07 // 12 bytes, inline
	TagPrevMsgHP    Tag = 0x08 // 32 bytes, inline: previous message's provenance hash

	TagPublicKey  Tag = 0x40 // length-prefixed: KEM/ECDH public key bytes
	TagCiphertext Tag = 0x41 // length-prefixed: KEM ciphertext bytes
	TagBytes      Tag = 0x42 // length-prefixed: generic opaque bytes

	TagWrappedBody Tag = 0x80 // application-encoded: next byte is an encoding id
)

// inlineWidths gives the fixed byte width of every inline tag.
var inlineWidths = map[Tag]int{
	TagHandleHash:   32,
	TagFriendshipID: 32,
	TagCeremonyID:   32,
	TagNetworkID:    32,
	TagTimestamp:    8,
	TagAckProof:     32,
	TagNonce:        12,
	TagPrevMsgHP:    32,
}

// Field is one typed (tag, value) pair inside a Section. For
// TagWrappedBody fields, EncodingID names the application wrapping scheme.
type Field struct {
	Tag        Tag
	EncodingID byte
	Value      []byte
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func encodeField(buf *bytes.Buffer, f Field) error {
	buf.WriteByte(byte(f.Tag))
	if w, ok := inlineWidths[f.Tag]; ok {
		if len(f.Value) != w {
			return fmt.Errorf("envelope: tag 0x%02x requires %d bytes, got %d", f.Tag, w, len(f.Value))
		}
		buf.Write(f.Value)
		return nil
	}
	if f.Tag == TagWrappedBody {
		buf.WriteByte(f.EncodingID)
	}
	writeUvarint(buf, uint64(len(f.Value)))
	buf.Write(f.Value)
	return nil
}

func decodeField(r *bytes.Reader) (Field, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return Field{}, err
	}
	tag := Tag(tagByte)

	if w, ok := inlineWidths[tag]; ok {
		value := make([]byte, w)
		if _, err := r.Read(value); err != nil {
			return Field{}, protoerr.New(protoerr.FormatError, "truncated inline field")
		}
		return Field{Tag: tag, Value: value}, nil
	}

	var encodingID byte
	if tag == TagWrappedBody {
		encodingID, err = r.ReadByte()
		if err != nil {
			return Field{}, protoerr.New(protoerr.FormatError, "truncated wrapped-body encoding id")
		}
	}
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return Field{}, protoerr.New(protoerr.FormatError, "truncated field length")
	}
	value := make([]byte, length)
	if length > 0 {
		if _, err := r.Read(value); err != nil {
			return Field{}, protoerr.New(protoerr.FormatError, "truncated field payload")
		}
	}
	return Field{Tag: tag, EncodingID: encodingID, Value: value}, nil
}

// ByTag returns the first field with the given tag, for tag-driven parsing
// rather than positional parsing.
func ByTag(fields []Field, tag Tag) (Field, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f, true
		}
	}
	return Field{}, false
}
