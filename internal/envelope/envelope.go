package envelope

import (
	"bytes"
	"encoding/binary"

	"ciphera/internal/crypto"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/protoerr"
	"ciphera/internal/smear"
)

// Magic is the fixed prefix identifying a ciphera envelope.
var Magic = [4]byte{'C', 'P', 'H', 'R'}

// Terminator is the fixed suffix closing an envelope.
var Terminator = [4]byte{'C', 'P', 'H', 'Z'}

// Version is the current protocol version this build produces.
const Version = 1

// MinCompatVersion is the oldest backward-compatibility version this build
// will still parse. The protocol is versioned and breaks freely.
const MinCompatVersion = 1

// Envelope is one self-describing wire message.
type Envelope struct {
	Version               uint8
	BackwardCompatVersion uint8
	Timestamp             int64
	ProvenanceHash        [32]byte
	Signature             []byte // 64 bytes, absent if unsigned
	SignerPublicKey       []byte // 32 bytes, absent if unsigned
	Sections              []Section
}

// New builds an unsigned envelope over sections, computing the provenance
// hash of the serialized body.
func New(timestamp int64, sections []Section) (Envelope, error) {
	body, err := encodeSections(sections)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Version:               Version,
		BackwardCompatVersion: MinCompatVersion,
		Timestamp:             timestamp,
		ProvenanceHash:        smear.Hash(body),
		Sections:              sections,
	}, nil
}

// Sign signs e's provenance hash with priv and attaches priv's public
// counterpart so a recipient can verify without an out-of-band key lookup.
func (e *Envelope) Sign(priv domaintypes.Ed25519Private, pub domaintypes.Ed25519Public) {
	e.Signature = crypto.SignEd25519(priv, e.ProvenanceHash[:])
	e.SignerPublicKey = append([]byte{}, pub.Slice()...)
}

// Verify recomputes e's provenance hash from its sections, rejects if that
// doesn't match the hash the envelope carries, then checks the signature
// over that hash. The recompute step catches a tampered or mismatched
// ProvenanceHash field before trusting it to signature verification; the
// cheap reject step decryption must pass first.
func (e *Envelope) Verify() error {
	if len(e.Signature) != 64 || len(e.SignerPublicKey) != 32 {
		return protoerr.New(protoerr.SignatureInvalid, "missing signature or signer key")
	}
	body, err := encodeSections(e.Sections)
	if err != nil {
		return protoerr.New(protoerr.SignatureInvalid, "cannot recompute provenance hash from sections")
	}
	if smear.Hash(body) != e.ProvenanceHash {
		return protoerr.New(protoerr.SignatureInvalid, "provenance hash does not match envelope sections")
	}
	var pub domaintypes.Ed25519Public
	copy(pub[:], e.SignerPublicKey)
	if !crypto.VerifyEd25519(pub, e.ProvenanceHash[:], e.Signature) {
		return protoerr.New(protoerr.SignatureInvalid, "signature does not verify")
	}
	return nil
}

func encodeSections(sections []Section) ([]byte, error) {
	var buf bytes.Buffer
	writeUvarintPublic(&buf, uint64(len(sections)))
	for _, s := range sections {
		if err := encodeSection(&buf, s); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func writeUvarintPublic(buf *bytes.Buffer, v uint64) { writeUvarint(buf, v) }

// Marshal serializes e to its wire bytes.
func Marshal(e Envelope) ([]byte, error) {
	body, err := encodeSections(e.Sections)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(e.Version)
	buf.WriteByte(e.BackwardCompatVersion)

	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(e.Timestamp))
	buf.Write(tsBuf[:])
	buf.Write(e.ProvenanceHash[:])

	hasSig := len(e.Signature) == 64 && len(e.SignerPublicKey) == 32
	if hasSig {
		buf.WriteByte(1)
		buf.Write(e.Signature)
		buf.Write(e.SignerPublicKey)
	} else {
		buf.WriteByte(0)
	}

	headerLength := uint32(buf.Len() + 4) // + the length field itself
	var out bytes.Buffer
	out.Write(buf.Bytes()[:4])
	var hlBuf [4]byte
	binary.BigEndian.PutUint32(hlBuf[:], headerLength)
	out.Write(hlBuf[:])
	out.Write(buf.Bytes()[4:])
	out.Write(body)
	out.Write(Terminator[:])
	return out.Bytes(), nil
}

// Unmarshal parses wire bytes into an Envelope.
func Unmarshal(data []byte) (Envelope, error) {
	if len(data) < 4+4 {
		return Envelope{}, protoerr.New(protoerr.FormatError, "envelope too short")
	}
	if !bytes.Equal(data[:4], Magic[:]) {
		return Envelope{}, protoerr.New(protoerr.FormatError, "bad magic")
	}
	headerLength := binary.BigEndian.Uint32(data[4:8])
	if int(headerLength) > len(data) {
		return Envelope{}, protoerr.New(protoerr.FormatError, "header length exceeds envelope")
	}

	r := bytes.NewReader(data[8:headerLength])
	var e Envelope
	version, err := r.ReadByte()
	if err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated version")
	}
	e.Version = version
	compat, err := r.ReadByte()
	if err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated compat version")
	}
	e.BackwardCompatVersion = compat
	if e.BackwardCompatVersion < MinCompatVersion {
		return Envelope{}, protoerr.New(protoerr.FormatError, "envelope older than minimum compatible version")
	}

	var tsBuf [8]byte
	if _, err := r.Read(tsBuf[:]); err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated timestamp")
	}
	e.Timestamp = int64(binary.BigEndian.Uint64(tsBuf[:]))

	if _, err := r.Read(e.ProvenanceHash[:]); err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated provenance hash")
	}

	hasSig, err := r.ReadByte()
	if err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated signature flag")
	}
	if hasSig == 1 {
		e.Signature = make([]byte, 64)
		if _, err := r.Read(e.Signature); err != nil {
			return Envelope{}, protoerr.New(protoerr.FormatError, "truncated signature")
		}
		e.SignerPublicKey = make([]byte, 32)
		if _, err := r.Read(e.SignerPublicKey); err != nil {
			return Envelope{}, protoerr.New(protoerr.FormatError, "truncated signer public key")
		}
	}

	body := bytes.NewReader(data[headerLength : len(data)-4])
	sectionCount, err := binary.ReadUvarint(body)
	if err != nil {
		return Envelope{}, protoerr.New(protoerr.FormatError, "truncated section count")
	}
	for i := uint64(0); i < sectionCount; i++ {
		s, err := decodeSection(body)
		if err != nil {
			return Envelope{}, err
		}
		e.Sections = append(e.Sections, s)
	}

	if !bytes.Equal(data[len(data)-4:], Terminator[:]) {
		return Envelope{}, protoerr.New(protoerr.FormatError, "bad terminator")
	}
	return e, nil
}
