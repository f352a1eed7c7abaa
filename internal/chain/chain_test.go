package chain

import (
	"testing"

	domaintypes "ciphera/internal/domain/types"
)

func fixedSeed() []byte {
	seed := make([]byte, 256)
	for i := range seed {
		seed[i] = byte(i * 7)
	}
	return seed
}

func TestChainAgreementAfterSameAdvancementStream(t *testing.T) {
	alice := domaintypes.HandleHash{0x01}
	bob := domaintypes.HandleHash{0x02}
	participants := []domaintypes.HandleHash{alice, bob}

	fc1 := InitChains(fixedSeed(), domaintypes.FriendshipID{0xAA}, participants)
	fc2 := InitChains(fixedSeed(), domaintypes.FriendshipID{0xAA}, participants)

	type ack struct {
		timestamp int64
		hash      [32]byte
	}
	acks := []ack{
		{100, [32]byte{1}},
		{200, [32]byte{2}},
		{300, [32]byte{3}},
	}

	for _, a := range acks {
		Advance(fc1.Chains[alice.String()], a.timestamp, a.hash)
		Advance(fc2.Chains[alice.String()], a.timestamp, a.hash)
	}

	if fc1.Chains[alice.String()].Current() != fc2.Chains[alice.String()].Current() {
		t.Fatal("identical advancement streams produced different chains")
	}
	if fc1.Chains[alice.String()].Links != fc2.Chains[alice.String()].Links {
		t.Fatal("chains diverge beyond the current key")
	}
}

func TestRoundTripMessageDecryptsAndMatchesChain(t *testing.T) {
	alice := domaintypes.HandleHash{0x01}
	bob := domaintypes.HandleHash{0x02}
	participants := []domaintypes.HandleHash{alice, bob}
	friendshipID := domaintypes.FriendshipID{0xAA}

	senderFC := InitChains(fixedSeed(), friendshipID, participants)
	recvFC := InitChains(fixedSeed(), friendshipID, participants)

	senderChain := senderFC.Chains[alice.String()]
	recvChain := recvFC.Chains[alice.String()]

	anchor := FirstMessageAnchor(friendshipID)
	pt := Plaintext{Text: []byte("hello"), PrevMsgHP: anchor}

	enc, err := Encrypt(senderChain, alice, nil, 1000, pt)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	got, offset, err := Decrypt(recvChain, nil, enc.Nonce, enc.Body)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if offset != 0 {
		t.Fatalf("offset = %d, want 0 (current key)", offset)
	}
	if string(got.Text) != "hello" {
		t.Fatalf("Text = %q, want %q", got.Text, "hello")
	}
	if got.PrevMsgHP != anchor {
		t.Fatal("PrevMsgHP mismatch")
	}

	var plaintextHash [32]byte
	copy(plaintextHash[:], []byte("hello-hash-fixture-32-bytes-long"))
	Advance(senderChain, 1000, plaintextHash)
	Advance(recvChain, 1000, plaintextHash)

	if senderChain.Current() != recvChain.Current() {
		t.Fatal("post-ACK chains diverge")
	}
}

func TestHistoryWindowDecryptsWithinBoundsOnly(t *testing.T) {
	alice := domaintypes.HandleHash{0x01}
	bob := domaintypes.HandleHash{0x02}
	participants := []domaintypes.HandleHash{alice, bob}
	friendshipID := domaintypes.FriendshipID{0xAA}

	senderFC := InitChains(fixedSeed(), friendshipID, participants)
	recvFC := InitChains(fixedSeed(), friendshipID, participants)
	senderChain := senderFC.Chains[alice.String()]
	recvChain := recvFC.Chains[alice.String()]

	pt := Plaintext{Text: []byte("first"), PrevMsgHP: FirstMessageAnchor(friendshipID)}
	enc, err := Encrypt(senderChain, alice, nil, 1, pt)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Advance the sender's (and an independent mirror of the receiver's)
	// chain 200 times without the receiver ever seeing the intervening
	// messages, simulating "receiver has advanced to S_{k+200}".
	for i := 0; i < 200; i++ {
		var h [32]byte
		h[0] = byte(i)
		Advance(senderChain, int64(i+2), h)
		Advance(recvChain, int64(i+2), h)
	}

	got, offset, err := Decrypt(recvChain, nil, enc.Nonce, enc.Body)
	if err != nil {
		t.Fatalf("Decrypt within history window: %v", err)
	}
	if offset != 200 {
		t.Fatalf("offset = %d, want 200", offset)
	}
	if string(got.Text) != "first" {
		t.Fatalf("Text = %q, want %q", got.Text, "first")
	}

	// Advance 300 more times (500 total, beyond the 256-entry window):
	// the same old message must now fail to decrypt.
	for i := 200; i < 500; i++ {
		var h [32]byte
		h[0] = byte(i % 256)
		Advance(senderChain, int64(i+2), h)
		Advance(recvChain, int64(i+2), h)
	}
	if _, _, err := Decrypt(recvChain, nil, enc.Nonce, enc.Body); err == nil {
		t.Fatal("expected decryption to fail beyond the 256-entry history window")
	}
}

func TestTamperDetection(t *testing.T) {
	alice := domaintypes.HandleHash{0x01}
	bob := domaintypes.HandleHash{0x02}
	participants := []domaintypes.HandleHash{alice, bob}
	friendshipID := domaintypes.FriendshipID{0xAA}

	senderFC := InitChains(fixedSeed(), friendshipID, participants)
	recvFC := InitChains(fixedSeed(), friendshipID, participants)
	senderChain := senderFC.Chains[alice.String()]
	recvChain := recvFC.Chains[alice.String()]

	pt := Plaintext{Text: []byte("hello"), PrevMsgHP: FirstMessageAnchor(friendshipID)}
	enc, err := Encrypt(senderChain, alice, nil, 1, pt)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	enc.Body[0] ^= 0x01

	if _, _, err := Decrypt(recvChain, nil, enc.Nonce, enc.Body); err == nil {
		t.Fatal("expected tampered body to fail decryption")
	}
}

func TestAckProofDiffersFromFreshLink(t *testing.T) {
	alice := domaintypes.HandleHash{0x01}
	bob := domaintypes.HandleHash{0x02}
	fc := InitChains(fixedSeed(), domaintypes.FriendshipID{0xAA}, []domaintypes.HandleHash{alice, bob})
	c := fc.Chains[alice.String()]

	var plaintextHash [32]byte
	copy(plaintextHash[:], []byte("some-plaintext-hash-fixture-here"))
	proof := AckProof(plaintextHash, 42, c)

	before := c.Current()
	Advance(c, 42, plaintextHash)
	after := c.Current()

	if proof == before || proof == after {
		t.Fatal("ack_proof collided with a chain link value")
	}
}
