// Package ceremony implements domain.CeremonyService: driving a CLUTCH
// N-party ceremony from this party's side, from StartCeremony through
// repeated AdvanceCeremony polls until the ceremony reaches Established or
// Failed.
package ceremony

import (
	"context"
	"sync"
	"time"

	"ciphera/internal/chain"
	"ciphera/internal/clutch"
	"ciphera/internal/domain"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/envelope"
	"ciphera/internal/protoerr"
	"ciphera/internal/util/memzero"
)

// inflight tracks one ceremony this party is party to, between the moment
// StartCeremony creates it and the moment AdvanceCeremony observes it reach
// a terminal state.
type inflight struct {
	ceremony          *clutch.Ceremony
	peerHashes        []domaintypes.HandleHash
	peerHandles       []domaintypes.Handle
	responsePublished bool
}

// Service drives CLUTCH ceremonies: building and publishing this party's
// Offer and Response, polling the relay for peers' ceremony messages, and
// persisting FriendshipChains once a ceremony completes.
type Service struct {
	identity    domain.IdentityStore
	friendships domain.FriendshipStore
	relay       domain.RelayClient
	selfHandle  domaintypes.Handle
	deadline    time.Duration

	mu     sync.Mutex
	active map[domaintypes.CeremonyID]*inflight
}

// New returns a Service for selfHandle, backed by the given stores and
// relay. deadline bounds how long any one ceremony may run before it is
// considered abandoned.
func New(
	identity domain.IdentityStore,
	friendships domain.FriendshipStore,
	relay domain.RelayClient,
	selfHandle domaintypes.Handle,
	deadline time.Duration,
) *Service {
	return &Service{
		identity:    identity,
		friendships: friendships,
		relay:       relay,
		selfHandle:  selfHandle,
		deadline:    deadline,
		active:      make(map[domaintypes.CeremonyID]*inflight),
	}
}

var _ domain.CeremonyService = (*Service)(nil)

// StartCeremony begins a ceremony against selfHandle plus peerHandles,
// generates this party's ephemeral bundle keypairs, and publishes its
// Offer to every peer's relay inbox.
func (s *Service) StartCeremony(
	ctx context.Context,
	passphrase string,
	peerHandles []domaintypes.Handle,
) (domaintypes.CeremonyID, error) {
	id, err := s.identity.LoadIdentity(passphrase)
	if err != nil {
		return domaintypes.CeremonyID{}, err
	}

	selfHash := s.selfHandle.Hash()
	peerHashes := make([]domaintypes.HandleHash, len(peerHandles))
	for i, h := range peerHandles {
		peerHashes[i] = h.Hash()
	}

	cer, err := clutch.New(s.selfHandle, selfHash, peerHashes, s.deadline)
	if err != nil {
		return domaintypes.CeremonyID{}, err
	}
	// Our own offer counts toward the participant set's completion tally
	// just like a peer's; New never adds it itself (clutch.Ceremony.IngestOffer
	// doc: "folds in a peer's (or our own) offer").
	if err := cer.IngestOffer(cer.OwnOffer()); err != nil {
		return domaintypes.CeremonyID{}, err
	}

	s.mu.Lock()
	s.active[cer.CeremonyID()] = &inflight{ceremony: cer, peerHashes: peerHashes, peerHandles: peerHandles}
	s.mu.Unlock()

	if err := s.publishOffer(ctx, cer, peerHashes, id); err != nil {
		return domaintypes.CeremonyID{}, err
	}
	return cer.CeremonyID(), nil
}

func (s *Service) publishOffer(
	ctx context.Context,
	cer *clutch.Ceremony,
	peerHashes []domaintypes.HandleHash,
	id domaintypes.Identity,
) error {
	section := encodeOffer(cer.OwnOffer())
	payload, err := buildSignedEnvelope(section, id.EdPriv, id.EdPub)
	if err != nil {
		return err
	}
	for _, peer := range peerHashes {
		if err := s.relay.PublishCeremonyMessage(ctx, peer, payload); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) publishResponseIfReady(ctx context.Context, st *inflight, id domaintypes.Identity) error {
	if st.responsePublished {
		return nil
	}
	resp, ok := st.ceremony.OwnResponse()
	if !ok {
		return nil
	}
	section := encodeResponse(resp)
	payload, err := buildSignedEnvelope(section, id.EdPriv, id.EdPub)
	if err != nil {
		return err
	}
	for _, peer := range st.peerHashes {
		if err := s.relay.PublishCeremonyMessage(ctx, peer, payload); err != nil {
			return err
		}
	}
	st.responsePublished = true
	return nil
}

// AdvanceCeremony fetches queued ceremony messages addressed to
// handleHash, feeds each into its matching in-flight ceremony, and
// publishes this party's Response once every Offer has arrived. It
// returns the first ceremony observed to reach Established, initializing
// and persisting its FriendshipChains before returning.
func (s *Service) AdvanceCeremony(
	ctx context.Context,
	passphrase string,
	handleHash domaintypes.HandleHash,
) (domaintypes.FriendshipChains, bool, error) {
	id, err := s.identity.LoadIdentity(passphrase)
	if err != nil {
		return domaintypes.FriendshipChains{}, false, err
	}

	payloads, err := s.relay.FetchCeremonyMessages(ctx, handleHash, 0)
	if err != nil {
		return domaintypes.FriendshipChains{}, false, err
	}

	for _, payload := range payloads {
		if err := s.ingest(ctx, payload, id); err != nil {
			return domaintypes.FriendshipChains{}, false, err
		}
	}

	return s.collectTerminal()
}

// ingest parses one relay-queued ceremony message and folds it into the
// matching in-flight ceremony. Format and signature failures are dropped
// silently; a ceremony-level failure
// (UnknownHandle, CeremonyMismatch, ...) is recorded on the Ceremony
// itself and surfaces later via collectTerminal, not as an ingest error.
func (s *Service) ingest(ctx context.Context, payload []byte, id domaintypes.Identity) error {
	env, err := parseSignedEnvelope(payload)
	if err != nil {
		if protoerr.Is(err, protoerr.FormatError) || protoerr.Is(err, protoerr.SignatureInvalid) {
			return nil
		}
		return err
	}

	if offerSec, ok := envelope.BySectionName(env.Sections, envelope.SectionClutchOffer); ok {
		offer, err := decodeOffer(offerSec)
		if err != nil {
			return nil
		}
		st, known := s.lookup(offer.CeremonyID)
		if !known {
			return nil
		}
		_ = st.ceremony.IngestOffer(offer)
		return s.publishResponseIfReady(ctx, st, id)
	}
	if kemSec, ok := envelope.BySectionName(env.Sections, envelope.SectionClutchKEM); ok {
		resp, err := decodeResponse(kemSec)
		if err != nil {
			return nil
		}
		st, known := s.lookup(resp.CeremonyID)
		if !known {
			return nil
		}
		_ = st.ceremony.IngestResponse(resp)
		return nil
	}
	return nil
}

func (s *Service) lookup(id domaintypes.CeremonyID) (*inflight, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[id]
	return st, ok
}

// collectTerminal scans in-flight ceremonies for one that has reached
// Established or Failed, or whose deadline has passed, removing it from the
// active set in every case.
func (s *Service) collectTerminal() (domaintypes.FriendshipChains, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cid, st := range s.active {
		switch st.ceremony.State() {
		case clutch.Established:
			seed, friendshipID, ok := st.ceremony.Seed()
			if !ok {
				continue
			}
			chains := chain.InitChains(seed, friendshipID, st.ceremony.Participants())
			memzero.Zero(seed)
			chains.Handles = map[string]domaintypes.Handle{s.selfHandle.Hash().String(): s.selfHandle}
			for i, hh := range st.peerHashes {
				chains.Handles[hh.String()] = st.peerHandles[i]
			}
			if err := s.friendships.SaveFriendshipChains(chains); err != nil {
				return domaintypes.FriendshipChains{}, false, err
			}
			delete(s.active, cid)
			return chains, true, nil
		case clutch.Failed:
			delete(s.active, cid)
			return domaintypes.FriendshipChains{}, false, st.ceremony.Err()
		default:
			if st.ceremony.Expired() {
				delete(s.active, cid)
				return domaintypes.FriendshipChains{}, false, protoerr.New(protoerr.TimeoutExpired, "ceremony deadline passed")
			}
		}
	}
	return domaintypes.FriendshipChains{}, false, nil
}
