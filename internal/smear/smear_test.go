package smear

import (
	"bytes"
	"testing"
)

func TestDeterministic(t *testing.T) {
	in := []byte("the quick brown fox")
	a := Hash(in)
	b := Hash(in)
	if a != b {
		t.Fatalf("Hash is not deterministic: %x != %x", a, b)
	}
}

func TestSensitiveToEveryByte(t *testing.T) {
	a := Hash([]byte("alice"))
	b := Hash([]byte("alicd"))
	if bytes.Equal(a[:], b[:]) {
		t.Fatal("single-byte change produced identical smear_hash output")
	}
}

func TestEmptyInput(t *testing.T) {
	a := Hash(nil)
	b := Hash([]byte{})
	if a != b {
		t.Fatalf("Hash(nil) != Hash([]byte{}): %x != %x", a, b)
	}
}
