package ceremony

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ciphera/internal/crypto"
	"ciphera/internal/domain"
	domaintypes "ciphera/internal/domain/types"
)

// fakeRelay is an in-memory domain.RelayClient: PublishCeremonyMessage
// appends to the recipient's inbox, FetchCeremonyMessages drains it.
type fakeRelay struct {
	mu     sync.Mutex
	boxes  map[domaintypes.HandleHash][][]byte
	public map[domaintypes.HandleHash]domaintypes.X25519Public
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{
		boxes:  make(map[domaintypes.HandleHash][][]byte),
		public: make(map[domaintypes.HandleHash]domaintypes.X25519Public),
	}
}

func (r *fakeRelay) RegisterHandle(_ context.Context, hh domaintypes.HandleHash, pub domaintypes.X25519Public) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.public[hh] = pub
	return nil
}

func (r *fakeRelay) PublishCeremonyMessage(_ context.Context, to domaintypes.HandleHash, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boxes[to] = append(r.boxes[to], payload)
	return nil
}

func (r *fakeRelay) FetchCeremonyMessages(_ context.Context, hh domaintypes.HandleHash, _ int) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.boxes[hh]
	r.boxes[hh] = nil
	return out, nil
}

func (r *fakeRelay) SendEnvelope(context.Context, domaintypes.HandleHash, []byte) error { return nil }
func (r *fakeRelay) FetchEnvelopes(context.Context, domaintypes.HandleHash, int) ([][]byte, error) {
	return nil, nil
}
func (r *fakeRelay) AckEnvelopes(context.Context, domaintypes.HandleHash, int) error { return nil }
func (r *fakeRelay) FetchAccountCanary(context.Context, domaintypes.HandleHash) (string, error) {
	return "", nil
}

var _ domain.RelayClient = (*fakeRelay)(nil)

// fakeIdentityStore returns a fixed identity for any passphrase.
type fakeIdentityStore struct{ id domaintypes.Identity }

func (s *fakeIdentityStore) SaveIdentity(string, domaintypes.Identity) error { return nil }
func (s *fakeIdentityStore) LoadIdentity(string) (domaintypes.Identity, error) {
	return s.id, nil
}

var _ domain.IdentityStore = (*fakeIdentityStore)(nil)

func newFakeIdentity(t *testing.T) *fakeIdentityStore {
	t.Helper()
	xpriv, xpub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	edpriv, edpub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	return &fakeIdentityStore{id: domaintypes.Identity{XPub: xpub, XPriv: xpriv, EdPub: edpub, EdPriv: edpriv}}
}

// fakeFriendshipStore records whatever chains get saved, for assertions.
type fakeFriendshipStore struct {
	mu     sync.Mutex
	saved  map[domaintypes.FriendshipID]domaintypes.FriendshipChains
	pending map[domaintypes.FriendshipID][]domaintypes.PendingMessage
}

func newFakeFriendshipStore() *fakeFriendshipStore {
	return &fakeFriendshipStore{
		saved:   make(map[domaintypes.FriendshipID]domaintypes.FriendshipChains),
		pending: make(map[domaintypes.FriendshipID][]domaintypes.PendingMessage),
	}
}

func (s *fakeFriendshipStore) SaveFriendshipChains(fc domaintypes.FriendshipChains) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[fc.FriendshipID] = fc
	return nil
}
func (s *fakeFriendshipStore) LoadFriendshipChains(id domaintypes.FriendshipID) (domaintypes.FriendshipChains, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fc, ok := s.saved[id]
	return fc, ok, nil
}
func (s *fakeFriendshipStore) ListFriendshipIDs() ([]domaintypes.FriendshipID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []domaintypes.FriendshipID
	for id := range s.saved {
		ids = append(ids, id)
	}
	return ids, nil
}
func (s *fakeFriendshipStore) DeleteFriendshipChains(id domaintypes.FriendshipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, id)
	delete(s.pending, id)
	return nil
}
func (s *fakeFriendshipStore) SavePendingMessage(id domaintypes.FriendshipID, msg domaintypes.PendingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id] = append(s.pending[id], msg)
	return nil
}
func (s *fakeFriendshipStore) ListPendingMessages(id domaintypes.FriendshipID) ([]domaintypes.PendingMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[id], nil
}
func (s *fakeFriendshipStore) DeletePendingMessage(id domaintypes.FriendshipID, hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.pending[id]
	for i, m := range msgs {
		if m.PlaintextHash == hash {
			s.pending[id] = append(msgs[:i], msgs[i+1:]...)
			break
		}
	}
	return nil
}

var _ domain.FriendshipStore = (*fakeFriendshipStore)(nil)

// TestTwoPartyCeremonyEstablishesMatchingChains drives two Services
// against a shared fakeRelay until both observe Established, and checks
// they derived byte-identical FriendshipChains.
func TestTwoPartyCeremonyEstablishesMatchingChains(t *testing.T) {
	relay := newFakeRelay()
	ctx := context.Background()

	alice := New(newFakeIdentity(t), newFakeFriendshipStore(), relay, "alice", time.Minute)
	bob := New(newFakeIdentity(t), newFakeFriendshipStore(), relay, "bob", time.Minute)

	_, err := alice.StartCeremony(ctx, "pw", []domaintypes.Handle{"bob"})
	require.NoError(t, err, "alice StartCeremony")
	_, err = bob.StartCeremony(ctx, "pw", []domaintypes.Handle{"alice"})
	require.NoError(t, err, "bob StartCeremony")

	aliceHash := domaintypes.Handle("alice").Hash()
	bobHash := domaintypes.Handle("bob").Hash()

	var aliceChains, bobChains domaintypes.FriendshipChains
	var aliceDone, bobDone bool
	for round := 0; round < 10 && !(aliceDone && bobDone); round++ {
		if !aliceDone {
			chains, ok, err := alice.AdvanceCeremony(ctx, "pw", aliceHash)
			require.NoError(t, err, "alice AdvanceCeremony")
			if ok {
				aliceChains, aliceDone = chains, true
			}
		}
		if !bobDone {
			chains, ok, err := bob.AdvanceCeremony(ctx, "pw", bobHash)
			require.NoError(t, err, "bob AdvanceCeremony")
			if ok {
				bobChains, bobDone = chains, true
			}
		}
	}
	require.True(t, aliceDone && bobDone, "ceremony did not establish within round budget")
	require.Equal(t, aliceChains.FriendshipID, bobChains.FriendshipID, "alice and bob derived different friendship ids")

	for _, hh := range aliceChains.HandleHashes {
		a := aliceChains.Chains[hh.String()]
		b := bobChains.Chains[hh.String()]
		require.NotNil(t, a, "missing alice chain for %s", hh)
		require.NotNil(t, b, "missing bob chain for %s", hh)
		require.Equal(t, a.Current(), b.Current(), "chain for %s diverges between alice and bob", hh)
	}
}
