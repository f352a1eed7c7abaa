package chainsvc

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"ciphera/internal/chain"
	"ciphera/internal/crypto"
	"ciphera/internal/domain"
	domaintypes "ciphera/internal/domain/types"
)

// fakeRelay is an in-memory domain.RelayClient: SendEnvelope appends to the
// recipient's inbox, FetchEnvelopes peeks it without consuming, AckEnvelopes
// drops the leading count entries.
type fakeRelay struct {
	mu    sync.Mutex
	boxes map[domaintypes.HandleHash][][]byte
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{boxes: make(map[domaintypes.HandleHash][][]byte)}
}

func (r *fakeRelay) RegisterHandle(context.Context, domaintypes.HandleHash, domaintypes.X25519Public) error {
	return nil
}
func (r *fakeRelay) PublishCeremonyMessage(context.Context, domaintypes.HandleHash, []byte) error {
	return nil
}
func (r *fakeRelay) FetchCeremonyMessages(context.Context, domaintypes.HandleHash, int) ([][]byte, error) {
	return nil, nil
}

func (r *fakeRelay) SendEnvelope(_ context.Context, to domaintypes.HandleHash, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boxes[to] = append(r.boxes[to], payload)
	return nil
}
func (r *fakeRelay) FetchEnvelopes(_ context.Context, hh domaintypes.HandleHash, _ int) ([][]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.boxes[hh], nil
}
func (r *fakeRelay) AckEnvelopes(_ context.Context, hh domaintypes.HandleHash, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	box := r.boxes[hh]
	if count > len(box) {
		count = len(box)
	}
	r.boxes[hh] = box[count:]
	return nil
}
func (r *fakeRelay) FetchAccountCanary(context.Context, domaintypes.HandleHash) (string, error) {
	return "", nil
}

var _ domain.RelayClient = (*fakeRelay)(nil)

type fakeIdentityStore struct{ id domaintypes.Identity }

func (s *fakeIdentityStore) SaveIdentity(string, domaintypes.Identity) error { return nil }
func (s *fakeIdentityStore) LoadIdentity(string) (domaintypes.Identity, error) {
	return s.id, nil
}

var _ domain.IdentityStore = (*fakeIdentityStore)(nil)

func newFakeIdentity(t *testing.T) *fakeIdentityStore {
	t.Helper()
	edpriv, edpub, err := crypto.GenerateEd25519()
	if err != nil {
		t.Fatalf("GenerateEd25519: %v", err)
	}
	return &fakeIdentityStore{id: domaintypes.Identity{EdPub: edpub, EdPriv: edpriv}}
}

// fakeFriendshipStore is a minimal single-friendship domain.FriendshipStore.
type fakeFriendshipStore struct {
	mu      sync.Mutex
	chains  domaintypes.FriendshipChains
	pending []domaintypes.PendingMessage
}

func (s *fakeFriendshipStore) SaveFriendshipChains(fc domaintypes.FriendshipChains) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = fc
	return nil
}
func (s *fakeFriendshipStore) LoadFriendshipChains(id domaintypes.FriendshipID) (domaintypes.FriendshipChains, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chains.FriendshipID != id {
		return domaintypes.FriendshipChains{}, false, nil
	}
	return s.chains, true, nil
}
func (s *fakeFriendshipStore) ListFriendshipIDs() ([]domaintypes.FriendshipID, error) {
	return []domaintypes.FriendshipID{s.chains.FriendshipID}, nil
}
func (s *fakeFriendshipStore) DeleteFriendshipChains(domaintypes.FriendshipID) error { return nil }

func (s *fakeFriendshipStore) SavePendingMessage(_ domaintypes.FriendshipID, msg domaintypes.PendingMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, msg)
	return nil
}
func (s *fakeFriendshipStore) ListPendingMessages(domaintypes.FriendshipID) ([]domaintypes.PendingMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domaintypes.PendingMessage{}, s.pending...), nil
}
func (s *fakeFriendshipStore) DeletePendingMessage(_ domaintypes.FriendshipID, hash [32]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.pending {
		if m.PlaintextHash == hash {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return nil
}

var _ domain.FriendshipStore = (*fakeFriendshipStore)(nil)

// sharedChains builds byte-identical FriendshipChains for alice and bob,
// the way ceremony.Service's collectTerminal would once Established.
func sharedChains(t *testing.T) domaintypes.FriendshipChains {
	t.Helper()
	aliceHandle := domaintypes.Handle("alice")
	bobHandle := domaintypes.Handle("bob")
	aliceHash := aliceHandle.Hash()
	bobHash := bobHandle.Hash()

	var friendshipID domaintypes.FriendshipID
	copy(friendshipID[:], []byte("test-friendship-id-00000000000"))

	seed := make([]byte, 256)
	for i := range seed {
		seed[i] = byte(i)
	}

	fc := chain.InitChains(seed, friendshipID, []domaintypes.HandleHash{aliceHash, bobHash})
	fc.Handles = map[string]domaintypes.Handle{
		aliceHash.String(): aliceHandle,
		bobHash.String():   bobHandle,
	}
	return fc
}

// deepCopyChains clones fc so each party's store owns independent
// *ParticipantChain pointers, the way loading from separate bbolt/JSON
// files would. Without this, two stores built from the same fc alias the
// same ParticipantChain structs, so mutating one party's copy silently
// mutates the other's too - an artifact a real deployment never has.
func deepCopyChains(fc domaintypes.FriendshipChains) domaintypes.FriendshipChains {
	out := fc
	out.Chains = make(map[string]*domaintypes.ParticipantChain, len(fc.Chains))
	for k, v := range fc.Chains {
		cp := *v
		out.Chains[k] = &cp
	}
	return out
}

// TestSendThenReceiveRoundTrips drives alice.SendMessage then
// bob.ReceiveMessages and checks bob recovers the plaintext and sender.
func TestSendThenReceiveRoundTrips(t *testing.T) {
	relay := newFakeRelay()
	ctx := context.Background()
	fc := sharedChains(t)

	aliceStore := &fakeFriendshipStore{chains: deepCopyChains(fc)}
	bobStore := &fakeFriendshipStore{chains: deepCopyChains(fc)}

	alice := New(newFakeIdentity(t), aliceStore, relay, "alice")
	bob := New(newFakeIdentity(t), bobStore, relay, "bob")

	err := alice.SendMessage(ctx, "pw", fc.FriendshipID, "bob", []byte("hello bob"))
	require.NoError(t, err, "SendMessage")

	msgs, err := bob.ReceiveMessages(ctx, "pw", fc.FriendshipID, 0)
	require.NoError(t, err, "ReceiveMessages")
	require.Len(t, msgs, 1)
	require.Equal(t, "hello bob", string(msgs[0].Plaintext))
	require.Equal(t, domaintypes.Handle("alice"), msgs[0].From)

	// bob's ack should have landed in alice's pending queue via relay, and
	// alice's next ReceiveMessages call should clear her pending message.
	_, err = alice.ReceiveMessages(ctx, "pw", fc.FriendshipID, 0)
	require.NoError(t, err, "alice ReceiveMessages (ack)")
	require.Empty(t, aliceStore.pending, "expected alice's pending queue to be drained by the ack")
}
