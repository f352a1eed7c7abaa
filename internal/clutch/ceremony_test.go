package clutch

import (
	"testing"
	"time"

	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/smear"
)

func handleHashOf(t *testing.T, s string) domaintypes.HandleHash {
	t.Helper()
	return domaintypes.HandleHash(smear.Hash([]byte(s)))
}

// runCeremony wires N Ceremony values together by hand, simulating a
// reliable broadcast transport: every Offer and Response is delivered to
// every other party. It returns the established ceremonies.
func runCeremony(t *testing.T, handles []string) []*Ceremony {
	t.Helper()
	hashes := make([]domaintypes.HandleHash, len(handles))
	for i, h := range handles {
		hashes[i] = handleHashOf(t, h)
	}

	ceremonies := make([]*Ceremony, len(handles))
	for i, h := range handles {
		var peers []domaintypes.HandleHash
		for j, hh := range hashes {
			if j != i {
				peers = append(peers, hh)
			}
		}
		c, err := New(domaintypes.Handle(h), hashes[i], peers, time.Minute)
		if err != nil {
			t.Fatalf("New(%s): %v", h, err)
		}
		ceremonies[i] = c
	}

	// Broadcast every offer to every party (including self, idempotently).
	for _, sender := range ceremonies {
		offer := sender.OwnOffer()
		for _, recv := range ceremonies {
			if err := recv.IngestOffer(offer); err != nil {
				t.Fatalf("IngestOffer: %v", err)
			}
		}
	}

	// Broadcast every response to every party, once available.
	for _, sender := range ceremonies {
		resp, ok := sender.OwnResponse()
		if !ok {
			t.Fatalf("ceremony for %s never produced a response", sender.selfHandle)
		}
		for _, recv := range ceremonies {
			if err := recv.IngestResponse(resp); err != nil {
				t.Fatalf("IngestResponse: %v", err)
			}
		}
	}

	for _, c := range ceremonies {
		if c.State() != Established {
			t.Fatalf("ceremony for %s did not establish: state=%s err=%v", c.selfHandle, c.State(), c.Err())
		}
	}
	return ceremonies
}

func TestTwoPartyCeremonyAgreesOnSeed(t *testing.T) {
	ceremonies := runCeremony(t, []string{"alice", "bob"})

	seedA, fidA, ok := ceremonies[0].Seed()
	if !ok {
		t.Fatal("alice: no seed")
	}
	seedB, fidB, ok := ceremonies[1].Seed()
	if !ok {
		t.Fatal("bob: no seed")
	}
	if len(seedA) != 256 || len(seedB) != 256 {
		t.Fatalf("seed length = %d, %d, want 256", len(seedA), len(seedB))
	}
	if string(seedA) != string(seedB) {
		t.Fatal("alice and bob derived different seeds")
	}
	if fidA != fidB {
		t.Fatal("alice and bob derived different friendship ids")
	}
}

func TestThreePartyCeremonyOutOfOrderArrival(t *testing.T) {
	// runCeremony delivers offers, then responses, in the order the handles
	// are listed, so listing carol first delivers C's messages, then A's,
	// then B's. Every party must still derive the same seed.
	ceremonies := runCeremony(t, []string{"carol", "alice", "bob"})

	var seeds [][]byte
	for _, c := range ceremonies {
		seed, _, ok := c.Seed()
		if !ok {
			t.Fatal("missing seed")
		}
		seeds = append(seeds, seed)
	}
	for i := 1; i < len(seeds); i++ {
		if string(seeds[i]) != string(seeds[0]) {
			t.Fatalf("party %d seed disagrees with party 0", i)
		}
	}
}

func TestCeremonyIDSymmetricUnderPermutation(t *testing.T) {
	a := handleHashOf(t, "alice")
	b := handleHashOf(t, "bob")
	c := handleHashOf(t, "carol")

	id1 := computeCeremonyID(sortedCopy([]domaintypes.HandleHash{a, b, c}))
	id2 := computeCeremonyID(sortedCopy([]domaintypes.HandleHash{c, a, b}))
	id3 := computeCeremonyID(sortedCopy([]domaintypes.HandleHash{b, c, a}))

	if id1 != id2 || id2 != id3 {
		t.Fatal("ceremony_id is not permutation-invariant")
	}
}

func sortedCopy(hs []domaintypes.HandleHash) []domaintypes.HandleHash {
	out := append([]domaintypes.HandleHash{}, hs...)
	sortHandleHashes(out)
	return out
}

func TestUnknownHandleAbortsSilently(t *testing.T) {
	alice := handleHashOf(t, "alice")
	bob := handleHashOf(t, "bob")
	mallory := handleHashOf(t, "mallory")

	c, err := New("alice", alice, []domaintypes.HandleHash{bob}, time.Minute)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	foreignOffer := &Offer{
		CeremonyID:   c.CeremonyID(),
		HandleHashes: sortedCopy([]domaintypes.HandleHash{alice, mallory}),
		Sender:       mallory,
		PublicKeys:   c.OwnOffer().PublicKeys,
	}
	if err := c.IngestOffer(foreignOffer); err == nil {
		t.Fatal("expected ceremony to abort on unknown handle_hash")
	}
	if c.State() != Failed {
		t.Fatalf("state = %s, want Failed", c.State())
	}
}
