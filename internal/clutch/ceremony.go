package clutch

import (
	"sort"
	"sync"
	"time"

	"ciphera/internal/crypto"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/domainsep"
	"ciphera/internal/handleproof"
	"ciphera/internal/protoerr"
	"ciphera/internal/smear"
	"ciphera/internal/util/memzero"
)

// Ceremony runs one CLUTCH N-party key-generation ceremony for a fixed,
// sorted set of participant handle_hashes. There is no
// designated initiator: every participant runs an identical Ceremony value
// and feeds it the same Offers and Responses.
type Ceremony struct {
	mu sync.Mutex

	selfHandle domaintypes.Handle
	selfHash   domaintypes.HandleHash

	participants []domaintypes.HandleHash // sorted, includes selfHash
	ceremonyID   domaintypes.CeremonyID
	deadline     time.Time

	ownKeys     map[crypto.PrimitiveID]keyPair
	ownOffer    *Offer
	ownResponse *Response

	offers          map[domaintypes.HandleHash]*Offer
	responsesToSelf map[domaintypes.HandleHash]*Response
	pairwise        map[domaintypes.HandleHash]map[crypto.PrimitiveID][]byte

	state State
	err   error

	seed         []byte
	friendshipID domaintypes.FriendshipID
}

// New starts a ceremony for selfHash against peerHashes, generating fresh
// ephemeral keypairs for all eight bundle primitives. deadline bounds how
// long the ceremony may remain non-terminal before the caller should tear
// it down.
func New(
	selfHandle domaintypes.Handle,
	selfHash domaintypes.HandleHash,
	peerHashes []domaintypes.HandleHash,
	deadline time.Duration,
) (*Ceremony, error) {
	participants := append([]domaintypes.HandleHash{selfHash}, peerHashes...)
	sortHandleHashes(participants)
	if hasDuplicateHandleHash(participants) {
		return nil, protoerr.New(protoerr.CeremonyMismatch, "duplicate handle_hash in participant set")
	}

	c := &Ceremony{
		selfHandle:      selfHandle,
		selfHash:        selfHash,
		participants:    participants,
		ceremonyID:      computeCeremonyID(participants),
		deadline:        time.Now().Add(deadline),
		ownKeys:         make(map[crypto.PrimitiveID]keyPair, len(crypto.Primitives)),
		offers:          make(map[domaintypes.HandleHash]*Offer, len(participants)),
		responsesToSelf: make(map[domaintypes.HandleHash]*Response, len(participants)-1),
		pairwise:        make(map[domaintypes.HandleHash]map[crypto.PrimitiveID][]byte, len(participants)-1),
		state:           Idle,
	}

	publicKeys := make(map[crypto.PrimitiveID][]byte, len(crypto.Primitives))
	for _, pid := range crypto.Primitives {
		pub, secret, err := crypto.ByID(pid).Keygen()
		if err != nil {
			return nil, protoerr.Wrap(protoerr.PrimitiveFailure, err)
		}
		c.ownKeys[pid] = keyPair{public: pub, secret: secret}
		publicKeys[pid] = pub
	}
	c.ownOffer = &Offer{
		CeremonyID:   c.ceremonyID,
		HandleHashes: participants,
		Sender:       selfHash,
		PublicKeys:   publicKeys,
	}
	return c, nil
}

// CeremonyID returns the ceremony's identifier.
func (c *Ceremony) CeremonyID() domaintypes.CeremonyID { return c.ceremonyID }

// State returns the ceremony's current state.
func (c *Ceremony) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the reason the ceremony failed, if it has.
func (c *Ceremony) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// OwnOffer returns this party's offer, to be transmitted to every peer.
func (c *Ceremony) OwnOffer() *Offer { return c.ownOffer }

// Expired reports whether the ceremony's wall-clock deadline has passed.
func (c *Ceremony) Expired() bool { return time.Now().After(c.deadline) }

func (c *Ceremony) fail(kind protoerr.Kind, cause error) error {
	c.state = Failed
	c.err = protoerr.Wrap(kind, cause)
	for _, kp := range c.ownKeys {
		memzero.Zero(kp.secret)
	}
	return c.err
}

// IngestOffer folds in a peer's (or our own) offer. An offer whose
// handle_hash set does not exactly match
// this ceremony's participant set aborts the ceremony silently: no wire
// response is ever produced, the caller simply observes state Failed with
// an UnknownHandle error.
func (c *Ceremony) IngestOffer(offer *Offer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Failed || c.state == Established {
		return c.err
	}
	if offer.CeremonyID != c.ceremonyID {
		return c.fail(protoerr.CeremonyMismatch, nil)
	}
	if !sameHandleHashSet(offer.HandleHashes, c.participants) {
		return c.fail(protoerr.UnknownHandle, nil)
	}
	if _, seen := c.offers[offer.Sender]; seen {
		return nil // idempotent
	}
	if len(offer.PublicKeys) != len(crypto.Primitives) {
		return c.fail(protoerr.PrimitiveFailure, nil)
	}
	c.offers[offer.Sender] = offer

	if c.state == Idle {
		c.state = Collecting
	}

	// ECDH pairwise secrets require no wire content: derive them the
	// moment we have the peer's offer.
	if offer.Sender != c.selfHash {
		if err := c.deriveECDHWith(offer); err != nil {
			return c.fail(protoerr.PrimitiveFailure, err)
		}
	}

	if len(c.offers) == len(c.participants) && c.ownResponse == nil {
		if err := c.buildOwnResponse(); err != nil {
			return c.fail(protoerr.PrimitiveFailure, err)
		}
		c.state = Responding
	}
	return c.tryComplete()
}

func (c *Ceremony) deriveECDHWith(offer *Offer) error {
	secrets := c.pairwiseFor(offer.Sender)
	for _, pid := range crypto.Primitives {
		if pid.IsKEM() {
			continue
		}
		peerPub := offer.PublicKeys[pid]
		shared, err := crypto.ByID(pid).DeriveShared(peerPub, c.ownKeys[pid].secret)
		if err != nil {
			return err
		}
		secrets[pid] = shared
	}
	return nil
}

func (c *Ceremony) pairwiseFor(peer domaintypes.HandleHash) map[crypto.PrimitiveID][]byte {
	m, ok := c.pairwise[peer]
	if !ok {
		m = make(map[crypto.PrimitiveID][]byte, len(crypto.Primitives))
		c.pairwise[peer] = m
	}
	return m
}

// buildOwnResponse generates, for every other participant, KEM ciphertexts
// against that participant's offered public keys.
func (c *Ceremony) buildOwnResponse() error {
	bundles := make([]CiphertextBundle, 0, len(c.participants)-1)
	for _, peer := range c.participants {
		if peer == c.selfHash {
			continue
		}
		peerOffer := c.offers[peer]
		cts := make(map[crypto.PrimitiveID][]byte, 5)
		for _, pid := range crypto.Primitives {
			if !pid.IsKEM() {
				continue
			}
			ct, _, err := crypto.ByID(pid).Encapsulate(peerOffer.PublicKeys[pid])
			if err != nil {
				return err
			}
			cts[pid] = ct
		}
		bundles = append(bundles, CiphertextBundle{Recipient: peer, Ciphertexts: cts})
	}
	c.ownResponse = &Response{CeremonyID: c.ceremonyID, Sender: c.selfHash, Bundles: bundles}
	return nil
}

// OwnResponse returns this party's Response, once generated (state
// Responding or later), for transmission to every peer.
func (c *Ceremony) OwnResponse() (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ownResponse == nil {
		return nil, false
	}
	return c.ownResponse, true
}

// IngestResponse folds in a peer's Response. The sender's bundle addressed
// to self is decapsulated immediately with our own KEM secrets.
func (c *Ceremony) IngestResponse(resp *Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Failed || c.state == Established {
		return c.err
	}
	if resp.CeremonyID != c.ceremonyID {
		return c.fail(protoerr.CeremonyMismatch, nil)
	}
	if resp.Sender == c.selfHash {
		return nil
	}
	if !containsHandleHash(c.participants, resp.Sender) {
		return c.fail(protoerr.UnknownHandle, nil)
	}
	if _, seen := c.responsesToSelf[resp.Sender]; seen {
		return nil // idempotent
	}
	bundle, ok := resp.bundleFor(c.selfHash)
	if !ok {
		return c.fail(protoerr.PrimitiveFailure, nil)
	}
	secrets := c.pairwiseFor(resp.Sender)
	for _, pid := range crypto.Primitives {
		if !pid.IsKEM() {
			continue
		}
		ct, ok := bundle.Ciphertexts[pid]
		if !ok {
			return c.fail(protoerr.PrimitiveFailure, nil)
		}
		shared, err := crypto.ByID(pid).Decapsulate(c.ownKeys[pid].secret, ct)
		if err != nil {
			return c.fail(protoerr.PrimitiveFailure, err)
		}
		secrets[pid] = shared
	}
	c.responsesToSelf[resp.Sender] = resp
	return c.tryComplete()
}

// tryComplete transitions Responding -> Deriving -> Established once every
// peer response addressed to self has arrived.
func (c *Ceremony) tryComplete() error {
	if c.state != Responding {
		return nil
	}
	if len(c.responsesToSelf) != len(c.participants)-1 {
		return nil
	}
	c.state = Deriving

	seed, err := deriveSeed(c.participants, c.selfHash, c.offers, c.pairwise)
	if err != nil {
		return c.fail(protoerr.PrimitiveFailure, err)
	}
	c.seed = seed
	c.friendshipID = computeFriendshipID(c.participants)

	for _, kp := range c.ownKeys {
		memzero.Zero(kp.secret)
	}
	for _, m := range c.pairwise {
		for _, s := range m {
			memzero.Zero(s)
		}
	}
	c.state = Established
	return nil
}

// Seed returns the 256-byte CLUTCH seed, once Established. The seed exists
// only long enough to initialize FriendshipChains. Seed hands the ceremony's
// only copy to the caller and drops its own reference, so a second call
// reports false; zeroing the returned slice is up to the caller.
func (c *Ceremony) Seed() ([]byte, domaintypes.FriendshipID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Established || c.seed == nil {
		return nil, domaintypes.FriendshipID{}, false
	}
	seed := c.seed
	c.seed = nil
	return seed, c.friendshipID, true
}

// Participants returns the ceremony's sorted handle_hash list.
func (c *Ceremony) Participants() []domaintypes.HandleHash {
	out := make([]domaintypes.HandleHash, len(c.participants))
	copy(out, c.participants)
	return out
}

func sortHandleHashes(hs []domaintypes.HandleHash) {
	sort.Slice(hs, func(i, j int) bool {
		for k := 0; k < 32; k++ {
			if hs[i][k] != hs[j][k] {
				return hs[i][k] < hs[j][k]
			}
		}
		return false
	})
}

func hasDuplicateHandleHash(hs []domaintypes.HandleHash) bool {
	for i := 1; i < len(hs); i++ {
		if hs[i-1] == hs[i] {
			return true
		}
	}
	return false
}

func sameHandleHashSet(a, b []domaintypes.HandleHash) bool {
	if len(a) != len(b) {
		return false
	}
	sorted := append([]domaintypes.HandleHash{}, a...)
	sortHandleHashes(sorted)
	for i := range sorted {
		if sorted[i] != b[i] {
			return false
		}
	}
	return true
}

func containsHandleHash(hs []domaintypes.HandleHash, target domaintypes.HandleHash) bool {
	for _, h := range hs {
		if h == target {
			return true
		}
	}
	return false
}

// computeCeremonyID is the memory-hard-hardened digest over the sorted
// handle_hash list, reusing handle_proof's construction
// with a distinct domain separator.
func computeCeremonyID(sorted []domaintypes.HandleHash) domaintypes.CeremonyID {
	buf := make([]byte, 0, 32*len(sorted))
	for _, hh := range sorted {
		buf = append(buf, hh[:]...)
	}
	return domaintypes.CeremonyID(handleproof.ComputeWithDomain(domainsep.CeremonyID, buf))
}

// computeFriendshipID is friendship_id = hash(domain_friendship ‖ sorted
// handle_hashes).
func computeFriendshipID(sorted []domaintypes.HandleHash) domaintypes.FriendshipID {
	buf := append([]byte{}, domainsep.FriendshipID...)
	for _, hh := range sorted {
		buf = append(buf, hh[:]...)
	}
	return domaintypes.FriendshipID(smear.Hash(buf))
}
