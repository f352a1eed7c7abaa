package chainsvc

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"

	"ciphera/internal/chain"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/envelope"
	"ciphera/internal/protoerr"
)

// encodingChainPipelineV1 identifies the message section's wrapped body as
// internal/chain's Encrypt/Decrypt pipeline output: a fixed-size nonce
// followed by the sealed body.
const encodingChainPipelineV1 byte = 0x01

// ackEntry is one (timestamp, ack_proof) pair from an acks section.
type ackEntry struct {
	Timestamp int64
	Proof     [32]byte
}

// decodedMessage is the parsed content of one routing+message(+acks)
// envelope.
type decodedMessage struct {
	SenderHash   domaintypes.HandleHash
	FriendshipID domaintypes.FriendshipID
	PrevMsgHP    [32]byte
	HasBody      bool
	Encrypted    chain.Encrypted
	Acks         []ackEntry
}

func routingSection(selfHash domaintypes.HandleHash, friendshipID domaintypes.FriendshipID, prevMsgHP [32]byte) envelope.Section {
	return envelope.Section{
		Name: envelope.SectionRouting,
		Fields: []envelope.Field{
			{Tag: envelope.TagHandleHash, Value: append([]byte{}, selfHash[:]...)},
			{Tag: envelope.TagFriendshipID, Value: append([]byte{}, friendshipID[:]...)},
			{Tag: envelope.TagPrevMsgHP, Value: append([]byte{}, prevMsgHP[:]...)},
		},
	}
}

func messageSection(enc chain.Encrypted) envelope.Section {
	body := make([]byte, 0, chacha20.NonceSize+len(enc.Body))
	body = append(body, enc.Nonce[:]...)
	body = append(body, enc.Body...)
	return envelope.Section{
		Name: envelope.SectionMessage,
		Fields: []envelope.Field{
			{Tag: envelope.TagWrappedBody, EncodingID: encodingChainPipelineV1, Value: body},
		},
	}
}

func acksSection(acks []ackEntry) envelope.Section {
	fields := make([]envelope.Field, 0, len(acks)*2)
	for _, a := range acks {
		var tsBuf [8]byte
		binary.BigEndian.PutUint64(tsBuf[:], uint64(a.Timestamp))
		fields = append(fields, envelope.Field{Tag: envelope.TagTimestamp, Value: tsBuf[:]})
		fields = append(fields, envelope.Field{Tag: envelope.TagAckProof, Value: append([]byte{}, a.Proof[:]...)})
	}
	return envelope.Section{Name: envelope.SectionAcks, Fields: fields}
}

func decodeMessageEnvelope(sections []envelope.Section) (decodedMessage, error) {
	var out decodedMessage

	routing, ok := envelope.BySectionName(sections, envelope.SectionRouting)
	if !ok {
		return out, protoerr.New(protoerr.FormatError, "missing routing section")
	}
	for _, f := range routing.Fields {
		switch f.Tag {
		case envelope.TagHandleHash:
			if len(f.Value) != 32 {
				return out, protoerr.New(protoerr.FormatError, "bad sender_handle_hash length")
			}
			copy(out.SenderHash[:], f.Value)
		case envelope.TagFriendshipID:
			if len(f.Value) != 32 {
				return out, protoerr.New(protoerr.FormatError, "bad friendship_id length")
			}
			copy(out.FriendshipID[:], f.Value)
		case envelope.TagPrevMsgHP:
			if len(f.Value) != 32 {
				return out, protoerr.New(protoerr.FormatError, "bad prev_msg_hp length")
			}
			copy(out.PrevMsgHP[:], f.Value)
		}
	}

	if msgSec, ok := envelope.BySectionName(sections, envelope.SectionMessage); ok {
		bodyField, ok := envelope.ByTag(msgSec.Fields, envelope.TagWrappedBody)
		if !ok {
			return out, protoerr.New(protoerr.FormatError, "missing wrapped body field")
		}
		if bodyField.EncodingID != encodingChainPipelineV1 {
			return out, protoerr.New(protoerr.FormatError, "unrecognized message encoding")
		}
		if len(bodyField.Value) < chacha20.NonceSize {
			return out, protoerr.New(protoerr.FormatError, "truncated message body")
		}
		copy(out.Encrypted.Nonce[:], bodyField.Value[:chacha20.NonceSize])
		out.Encrypted.Body = append([]byte{}, bodyField.Value[chacha20.NonceSize:]...)
		out.HasBody = true
	}

	if acksSec, ok := envelope.BySectionName(sections, envelope.SectionAcks); ok {
		var pendingTS int64
		haveTS := false
		for _, f := range acksSec.Fields {
			switch f.Tag {
			case envelope.TagTimestamp:
				if len(f.Value) != 8 {
					return out, protoerr.New(protoerr.FormatError, "bad ack timestamp length")
				}
				pendingTS = int64(binary.BigEndian.Uint64(f.Value))
				haveTS = true
			case envelope.TagAckProof:
				if !haveTS {
					return out, protoerr.New(protoerr.FormatError, "ack_proof field without preceding timestamp")
				}
				var proof [32]byte
				copy(proof[:], f.Value)
				out.Acks = append(out.Acks, ackEntry{Timestamp: pendingTS, Proof: proof})
				haveTS = false
			}
		}
	}

	return out, nil
}

func buildSignedEnvelope(
	sections []envelope.Section,
	timestamp int64,
	priv domaintypes.Ed25519Private,
	pub domaintypes.Ed25519Public,
) ([]byte, [32]byte, error) {
	env, err := envelope.New(timestamp, sections)
	if err != nil {
		return nil, [32]byte{}, err
	}
	env.Sign(priv, pub)
	data, err := envelope.Marshal(env)
	if err != nil {
		return nil, [32]byte{}, err
	}
	return data, env.ProvenanceHash, nil
}

func parseSignedEnvelope(data []byte) (envelope.Envelope, error) {
	env, err := envelope.Unmarshal(data)
	if err != nil {
		return envelope.Envelope{}, err
	}
	if err := env.Verify(); err != nil {
		return envelope.Envelope{}, err
	}
	return env, nil
}
