package envelope

import (
	"bytes"
	"testing"

	"ciphera/internal/crypto"
	"ciphera/internal/protoerr"
)

func sampleSections() []Section {
	return []Section{
		{
			Name: SectionMessage,
			Fields: []Field{
				{Tag: TagFriendshipID, Value: bytes.Repeat([]byte{0xAA}, 32)},
				{Tag: TagNonce, Value: bytes.Repeat([]byte{0x01}, 12)},
				{Tag: TagBytes, Value: []byte("ciphertext goes here")},
			},
		},
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Timestamp != e.Timestamp {
		t.Fatalf("Timestamp = %d, want %d", got.Timestamp, e.Timestamp)
	}
	if got.ProvenanceHash != e.ProvenanceHash {
		t.Fatal("provenance hash mismatch")
	}
	if len(got.Sections) != 1 || got.Sections[0].Name != SectionMessage {
		t.Fatalf("unexpected sections: %+v", got.Sections)
	}
	f, ok := ByTag(got.Sections[0].Fields, TagBytes)
	if !ok || string(f.Value) != "ciphertext goes here" {
		t.Fatal("TagBytes field not round-tripped correctly")
	}
}

func TestSignedEnvelopeVerifies(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Sign(priv, pub)

	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if err := got.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTamperedSignatureFailsVerify(t *testing.T) {
	priv, pub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	e.Sign(priv, pub)
	e.Signature[0] ^= 0x01

	if err := e.Verify(); err == nil {
		t.Fatal("expected tampered signature to fail verification")
	}
}

func TestTamperedBodyBreaksProvenanceHash(t *testing.T) {
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	// Flip a byte inside the body (after the header, before the terminator)
	// and confirm the recomputed provenance hash would no longer match.
	headerLen := int(data[4])<<24 | int(data[5])<<16 | int(data[6])<<8 | int(data[7])
	data[headerLen+10] ^= 0x01

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	recomputed, err := encodeSections(got.Sections)
	if err != nil {
		t.Fatalf("encodeSections: %v", err)
	}
	if bytes.Equal(recomputed, mustEncode(t, sampleSections())) {
		t.Fatal("expected tampered body to differ from the original encoding")
	}
}

func mustEncode(t *testing.T, sections []Section) []byte {
	t.Helper()
	b, err := encodeSections(sections)
	if err != nil {
		t.Fatalf("encodeSections: %v", err)
	}
	return b
}

func TestUnmarshalRejectsBadMagic(t *testing.T) {
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data[0] = 'X'
	if _, err := Unmarshal(data); !protoerr.Is(err, protoerr.FormatError) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestUnmarshalRejectsBadTerminator(t *testing.T) {
	e, err := New(1700000000, sampleSections())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	data[len(data)-1] ^= 0xFF
	if _, err := Unmarshal(data); !protoerr.Is(err, protoerr.FormatError) {
		t.Fatalf("expected FormatError, got %v", err)
	}
}

func TestUnmarshalRejectsTruncatedInput(t *testing.T) {
	if _, err := Unmarshal([]byte{'C', 'P'}); !protoerr.Is(err, protoerr.FormatError) {
		t.Fatalf("expected FormatError for short input, got %v", err)
	}
}
