// Package chainsvc implements domain.ChainService: sending and receiving
// messages over an established friendship's per-participant chains.
package chainsvc

import (
	"context"
	"time"

	"ciphera/internal/chain"
	"ciphera/internal/domain"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/envelope"
	"ciphera/internal/protoerr"
	"ciphera/internal/smear"
)

// Service sends and receives messages over established friendships,
// advancing each participant's chain as messages are sent and acknowledged.
type Service struct {
	identity    domain.IdentityStore
	friendships domain.FriendshipStore
	relay       domain.RelayClient
	selfHandle  domaintypes.Handle
}

func New(
	identity domain.IdentityStore,
	friendships domain.FriendshipStore,
	relay domain.RelayClient,
	selfHandle domaintypes.Handle,
) *Service {
	return &Service{
		identity:    identity,
		friendships: friendships,
		relay:       relay,
		selfHandle:  selfHandle,
	}
}

var _ domain.ChainService = (*Service)(nil)

// SendMessage encrypts plaintext under the caller's own chain in this
// friendship, persists it as pending before transmitting it, and sends it to the relay inbox of to's handle_hash.
func (s *Service) SendMessage(
	ctx context.Context,
	passphrase string,
	friendshipID domaintypes.FriendshipID,
	to domaintypes.Handle,
	plaintext []byte,
) error {
	id, err := s.identity.LoadIdentity(passphrase)
	if err != nil {
		return err
	}

	fc, found, err := s.friendships.LoadFriendshipChains(friendshipID)
	if err != nil {
		return err
	}
	if !found {
		return protoerr.New(protoerr.UnknownHandle, "no friendship with that id")
	}

	selfHash := s.selfHandle.Hash()
	ownChain, ok := fc.Chains[selfHash.String()]
	if !ok {
		return protoerr.New(protoerr.UnknownHandle, "self is not a participant in this friendship")
	}

	timestamp := time.Now().Unix()
	pt := chain.Plaintext{Text: plaintext, PrevMsgHP: ownChain.LastMsgHP}
	enc, err := chain.Encrypt(ownChain, selfHash, ownChain.LastPlaintext, timestamp, pt)
	if err != nil {
		return err
	}

	sections := []envelope.Section{
		routingSection(selfHash, friendshipID, ownChain.LastMsgHP),
		messageSection(enc),
	}
	payload, provHash, err := buildSignedEnvelope(sections, timestamp, id.EdPriv, id.EdPub)
	if err != nil {
		return err
	}

	plaintextHash := smear.Hash(plaintext)
	ownChain.LastPlaintext = plaintext
	ownChain.LastMsgHP = provHash

	if err := s.friendships.SaveFriendshipChains(fc); err != nil {
		return err
	}
	pending := domaintypes.PendingMessage{
		Timestamp:     timestamp,
		Plaintext:     plaintext,
		PlaintextHash: plaintextHash,
		WireBytes:     payload,
	}
	if err := s.friendships.SavePendingMessage(friendshipID, pending); err != nil {
		return err
	}

	return s.relay.SendEnvelope(ctx, to.Hash(), payload)
}

// ReceiveMessages fetches queued envelopes addressed to this party's own
// handle_hash, decrypts every one that belongs to friendshipID, and
// acknowledges them back to their senders.
//
// The relay's single inbox is shared across every friendship this handle
// participates in, but AckEnvelopes consumes a prefix by count, not by id:
// ReceiveMessages can therefore only safely acknowledge a leading run of
// envelopes that match friendshipID. The first envelope belonging to a
// different friendship halts processing (and acking) for this call; it,
// and everything behind it, is left queued for that friendship's own
// ReceiveMessages call.
func (s *Service) ReceiveMessages(
	ctx context.Context,
	passphrase string,
	friendshipID domaintypes.FriendshipID,
	limit int,
) ([]domaintypes.DecryptedMessage, error) {
	id, err := s.identity.LoadIdentity(passphrase)
	if err != nil {
		return nil, err
	}

	fc, found, err := s.friendships.LoadFriendshipChains(friendshipID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, protoerr.New(protoerr.UnknownHandle, "no friendship with that id")
	}

	selfHash := s.selfHandle.Hash()
	payloads, err := s.relay.FetchEnvelopes(ctx, selfHash, limit)
	if err != nil {
		return nil, err
	}

	var out []domaintypes.DecryptedMessage
	ackCount := 0
	pendingAcks := make(map[domaintypes.HandleHash][]ackEntry)

loop:
	for _, payload := range payloads {
		env, err := parseSignedEnvelope(payload)
		if err != nil {
			ackCount++ // malformed or unsigned: can never become processable
			continue
		}
		msg, err := decodeMessageEnvelope(env.Sections)
		if err != nil {
			ackCount++
			continue
		}
		if msg.FriendshipID != friendshipID {
			break loop
		}

		if len(msg.Acks) > 0 {
			if ownChain, ok := fc.Chains[selfHash.String()]; ok {
				if err := s.applyAcks(friendshipID, ownChain, msg.Acks); err != nil {
					return out, err
				}
				if err := s.friendships.SaveFriendshipChains(fc); err != nil {
					return out, err
				}
			}
		}

		if !msg.HasBody {
			ackCount++
			continue
		}

		peerChain, ok := fc.Chains[msg.SenderHash.String()]
		if !ok {
			ackCount++
			continue
		}
		if peerChain.LastMsgHP != msg.PrevMsgHP {
			return out, protoerr.New(protoerr.GapDetected, "prev_msg_hp does not match the last message processed from this sender")
		}

		pt, _, err := chain.Decrypt(peerChain, peerChain.LastPlaintext, msg.Encrypted.Nonce, msg.Encrypted.Body)
		if err != nil {
			ackCount++
			continue
		}

		plaintextHash := smear.Hash(pt.Text)

		// The proof must be taken over the pre-advance chain: the sender
		// verifies it against ownChain before advancing past this message,
		// so the receiver has to reproduce that same, still-unshifted state.
		proof := chain.AckProof(plaintextHash, env.Timestamp, peerChain)

		chain.Advance(peerChain, env.Timestamp, plaintextHash)
		peerChain.LastPlaintext = pt.Text
		peerChain.LastMsgHP = env.ProvenanceHash
		if err := s.friendships.SaveFriendshipChains(fc); err != nil {
			return out, err
		}

		from := fc.Handles[msg.SenderHash.String()]
		out = append(out, domaintypes.DecryptedMessage{From: from, Plaintext: pt.Text, Timestamp: env.Timestamp})

		pendingAcks[msg.SenderHash] = append(pendingAcks[msg.SenderHash], ackEntry{Timestamp: env.Timestamp, Proof: proof})

		ackCount++
	}

	if ackCount > 0 {
		if err := s.relay.AckEnvelopes(ctx, selfHash, ackCount); err != nil {
			return out, err
		}
	}

	if err := s.sendAcks(ctx, id, fc, friendshipID, selfHash, pendingAcks); err != nil {
		return out, err
	}

	return out, nil
}

// sendAcks replies to each sender whose messages were just processed with a
// routing+acks envelope of its own. Acks are never piggybacked onto an
// outgoing chat message (SendMessage carries none), so a dedicated ack-only
// envelope goes out even when there is nothing else to say right now.
func (s *Service) sendAcks(
	ctx context.Context,
	id domaintypes.Identity,
	fc domaintypes.FriendshipChains,
	friendshipID domaintypes.FriendshipID,
	selfHash domaintypes.HandleHash,
	pendingAcks map[domaintypes.HandleHash][]ackEntry,
) error {
	ownChain, ok := fc.Chains[selfHash.String()]
	if !ok {
		return nil
	}
	for sender, acks := range pendingAcks {
		sections := []envelope.Section{
			routingSection(selfHash, friendshipID, ownChain.LastMsgHP),
			acksSection(acks),
		}
		payload, _, err := buildSignedEnvelope(sections, time.Now().Unix(), id.EdPriv, id.EdPub)
		if err != nil {
			return err
		}
		if err := s.relay.SendEnvelope(ctx, sender, payload); err != nil {
			return err
		}
	}
	return nil
}

// applyAcks folds incoming ack entries into ownChain: one verified ack at
// timestamp T authorizes advancing through every pending message at or
// before T, in ascending order. Each proof is checked against the chain as
// it stood when its own message was current, that is, after the pending
// messages before it have been applied.
func (s *Service) applyAcks(
	friendshipID domaintypes.FriendshipID,
	ownChain *domaintypes.ParticipantChain,
	acks []ackEntry,
) error {
	pending, err := s.friendships.ListPendingMessages(friendshipID)
	if err != nil {
		return err
	}

	scratch := *ownChain
	target := int64(-1)
	for _, p := range pending {
		for _, ack := range acks {
			if p.Timestamp != ack.Timestamp {
				continue
			}
			if chain.AckProof(p.PlaintextHash, p.Timestamp, &scratch) != ack.Proof {
				return protoerr.New(protoerr.ChainAdvanceRefused, "ack proof does not verify against the pending message it names")
			}
			if ack.Timestamp > target {
				target = ack.Timestamp
			}
		}
		chain.Advance(&scratch, p.Timestamp, p.PlaintextHash)
	}
	if target < 0 {
		return nil
	}

	for _, p := range pending {
		if p.Timestamp > target {
			break
		}
		chain.Advance(ownChain, p.Timestamp, p.PlaintextHash)
		if err := s.friendships.DeletePendingMessage(friendshipID, p.PlaintextHash); err != nil {
			return err
		}
	}
	return nil
}
