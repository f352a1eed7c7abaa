package store_test

import (
	"path/filepath"
	"testing"

	"ciphera/internal/domain"
	"ciphera/internal/store"
)

func openFriendshipStore(t *testing.T) *store.FriendshipBoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "friendships.db")
	s, err := store.NewFriendshipBoltStore(path)
	if err != nil {
		t.Fatalf("NewFriendshipBoltStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFriendshipChainsSaveLoad(t *testing.T) {
	s := openFriendshipStore(t)

	fid := domain.FriendshipID{0xAA}
	alice := domain.HandleHash{0x01}
	fc := domain.FriendshipChains{
		FriendshipID: fid,
		HandleHashes: []domain.HandleHash{alice},
		Chains: map[string]*domain.ParticipantChain{
			alice.String(): {LastAckTime: 42},
		},
	}

	if err := s.SaveFriendshipChains(fc); err != nil {
		t.Fatalf("SaveFriendshipChains: %v", err)
	}

	got, ok, err := s.LoadFriendshipChains(fid)
	if err != nil {
		t.Fatalf("LoadFriendshipChains: %v", err)
	}
	if !ok {
		t.Fatal("expected friendship chains to be found")
	}
	if got.Chains[alice.String()].LastAckTime != 42 {
		t.Fatalf("LastAckTime = %d, want 42", got.Chains[alice.String()].LastAckTime)
	}

	ids, err := s.ListFriendshipIDs()
	if err != nil {
		t.Fatalf("ListFriendshipIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != fid {
		t.Fatalf("ListFriendshipIDs = %v, want [%v]", ids, fid)
	}
}

func TestPendingMessageQueueOrderedAndDeletable(t *testing.T) {
	s := openFriendshipStore(t)
	fid := domain.FriendshipID{0xBB}

	m1 := domain.PendingMessage{Timestamp: 200, PlaintextHash: [32]byte{1}, WireBytes: []byte("later")}
	m2 := domain.PendingMessage{Timestamp: 100, PlaintextHash: [32]byte{2}, WireBytes: []byte("earlier")}

	if err := s.SavePendingMessage(fid, m1); err != nil {
		t.Fatalf("SavePendingMessage m1: %v", err)
	}
	if err := s.SavePendingMessage(fid, m2); err != nil {
		t.Fatalf("SavePendingMessage m2: %v", err)
	}

	got, err := s.ListPendingMessages(fid)
	if err != nil {
		t.Fatalf("ListPendingMessages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(got) = %d, want 2", len(got))
	}
	if got[0].Timestamp != 100 || got[1].Timestamp != 200 {
		t.Fatalf("pending messages not ordered by timestamp: %+v", got)
	}

	if err := s.DeletePendingMessage(fid, m2.PlaintextHash); err != nil {
		t.Fatalf("DeletePendingMessage: %v", err)
	}
	got, err = s.ListPendingMessages(fid)
	if err != nil {
		t.Fatalf("ListPendingMessages after delete: %v", err)
	}
	if len(got) != 1 || got[0].Timestamp != 200 {
		t.Fatalf("unexpected remaining pending messages: %+v", got)
	}
}

func TestDeleteFriendshipChainsClearsPendingQueue(t *testing.T) {
	s := openFriendshipStore(t)
	fid := domain.FriendshipID{0xCC}

	fc := domain.FriendshipChains{FriendshipID: fid}
	if err := s.SaveFriendshipChains(fc); err != nil {
		t.Fatalf("SaveFriendshipChains: %v", err)
	}
	msg := domain.PendingMessage{Timestamp: 1, PlaintextHash: [32]byte{9}}
	if err := s.SavePendingMessage(fid, msg); err != nil {
		t.Fatalf("SavePendingMessage: %v", err)
	}

	if err := s.DeleteFriendshipChains(fid); err != nil {
		t.Fatalf("DeleteFriendshipChains: %v", err)
	}

	if _, ok, err := s.LoadFriendshipChains(fid); err != nil || ok {
		t.Fatalf("expected chains gone, got ok=%v err=%v", ok, err)
	}
	pending, err := s.ListPendingMessages(fid)
	if err != nil {
		t.Fatalf("ListPendingMessages: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected pending queue cleared, got %+v", pending)
	}
}
