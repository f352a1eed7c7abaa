package handleproof

import "testing"

func TestComputeIsPureFunction(t *testing.T) {
	var hh [32]byte
	copy(hh[:], []byte("alice-handle-hash-fixture-bytes"))
	a := Compute(hh)
	b := Compute(hh)
	if a != b {
		t.Fatalf("Compute is not deterministic: %x != %x", a, b)
	}
}

func TestComputeDiffersByInput(t *testing.T) {
	var a, b [32]byte
	copy(a[:], []byte("alice-handle-hash-fixture-bytes"))
	copy(b[:], []byte("bob-handle-hash-fixture-bytes!!!"))
	if Compute(a) == Compute(b) {
		t.Fatal("distinct handle hashes produced the same proof")
	}
}
