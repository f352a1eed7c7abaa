package ceremony

import (
	"time"

	"ciphera/internal/clutch"
	"ciphera/internal/crypto"
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/envelope"
	"ciphera/internal/protoerr"
)

// Wire encoding for clutch_offer and clutch_kem sections.
// Neither envelope.Field nor envelope.Tag distinguishes *which* of the
// eight bundle primitives a public-key or ciphertext field belongs to, so
// each value here is self-tagged: one leading byte holding its
// crypto.PrimitiveID, followed by the raw key/ciphertext bytes.
//
// clutch_offer orders its handle_hash fields sender-first, then the full
// sorted participant set (sender included). clutch_kem orders its
// handle_hash fields sender-first, then one recipient marker per
// CiphertextBundle, each followed immediately by that recipient's KEM
// ciphertexts; a TagCiphertext field always belongs to the most recently
// seen TagHandleHash.

func packPrimitive(id crypto.PrimitiveID, b []byte) []byte {
	return append([]byte{byte(id)}, b...)
}

func unpackPrimitive(v []byte) (crypto.PrimitiveID, []byte, error) {
	if len(v) < 1 {
		return 0, nil, protoerr.New(protoerr.FormatError, "empty primitive-tagged field")
	}
	return crypto.PrimitiveID(v[0]), v[1:], nil
}

func encodeOffer(o *clutch.Offer) envelope.Section {
	fields := make([]envelope.Field, 0, 2+len(o.HandleHashes)+len(crypto.Primitives))
	fields = append(fields, envelope.Field{Tag: envelope.TagCeremonyID, Value: append([]byte{}, o.CeremonyID[:]...)})
	fields = append(fields, envelope.Field{Tag: envelope.TagHandleHash, Value: append([]byte{}, o.Sender[:]...)})
	for _, hh := range o.HandleHashes {
		fields = append(fields, envelope.Field{Tag: envelope.TagHandleHash, Value: append([]byte{}, hh[:]...)})
	}
	for _, pid := range crypto.Primitives {
		fields = append(fields, envelope.Field{
			Tag:   envelope.TagPublicKey,
			Value: packPrimitive(pid, o.PublicKeys[pid]),
		})
	}
	return envelope.Section{Name: envelope.SectionClutchOffer, Fields: fields}
}

func decodeOffer(s envelope.Section) (*clutch.Offer, error) {
	var ceremonyID domaintypes.CeremonyID
	var sender domaintypes.HandleHash
	var handleHashes []domaintypes.HandleHash
	haveSender := false
	publicKeys := make(map[crypto.PrimitiveID][]byte, len(crypto.Primitives))

	for _, f := range s.Fields {
		switch f.Tag {
		case envelope.TagCeremonyID:
			if len(f.Value) != 32 {
				return nil, protoerr.New(protoerr.FormatError, "bad ceremony_id length")
			}
			copy(ceremonyID[:], f.Value)
		case envelope.TagHandleHash:
			if len(f.Value) != 32 {
				return nil, protoerr.New(protoerr.FormatError, "bad handle_hash length")
			}
			var hh domaintypes.HandleHash
			copy(hh[:], f.Value)
			if !haveSender {
				sender = hh
				haveSender = true
				continue
			}
			handleHashes = append(handleHashes, hh)
		case envelope.TagPublicKey:
			pid, key, err := unpackPrimitive(f.Value)
			if err != nil {
				return nil, err
			}
			publicKeys[pid] = append([]byte{}, key...)
		}
	}
	if !haveSender || len(handleHashes) == 0 || len(publicKeys) != len(crypto.Primitives) {
		return nil, protoerr.New(protoerr.FormatError, "incomplete clutch_offer section")
	}
	return &clutch.Offer{
		CeremonyID:   ceremonyID,
		HandleHashes: handleHashes,
		Sender:       sender,
		PublicKeys:   publicKeys,
	}, nil
}

func encodeResponse(r *clutch.Response) envelope.Section {
	fields := make([]envelope.Field, 0, 2+len(r.Bundles)*6)
	fields = append(fields, envelope.Field{Tag: envelope.TagCeremonyID, Value: append([]byte{}, r.CeremonyID[:]...)})
	fields = append(fields, envelope.Field{Tag: envelope.TagHandleHash, Value: append([]byte{}, r.Sender[:]...)})
	for _, bundle := range r.Bundles {
		fields = append(fields, envelope.Field{Tag: envelope.TagHandleHash, Value: append([]byte{}, bundle.Recipient[:]...)})
		for _, pid := range crypto.Primitives {
			if !pid.IsKEM() {
				continue
			}
			fields = append(fields, envelope.Field{
				Tag:   envelope.TagCiphertext,
				Value: packPrimitive(pid, bundle.Ciphertexts[pid]),
			})
		}
	}
	return envelope.Section{Name: envelope.SectionClutchKEM, Fields: fields}
}

func decodeResponse(s envelope.Section) (*clutch.Response, error) {
	var ceremonyID domaintypes.CeremonyID
	var sender domaintypes.HandleHash
	haveSender := false
	var bundles []clutch.CiphertextBundle

	for _, f := range s.Fields {
		switch f.Tag {
		case envelope.TagCeremonyID:
			if len(f.Value) != 32 {
				return nil, protoerr.New(protoerr.FormatError, "bad ceremony_id length")
			}
			copy(ceremonyID[:], f.Value)
		case envelope.TagHandleHash:
			if len(f.Value) != 32 {
				return nil, protoerr.New(protoerr.FormatError, "bad handle_hash length")
			}
			var hh domaintypes.HandleHash
			copy(hh[:], f.Value)
			if !haveSender {
				sender = hh
				haveSender = true
				continue
			}
			bundles = append(bundles, clutch.CiphertextBundle{
				Recipient:   hh,
				Ciphertexts: make(map[crypto.PrimitiveID][]byte, 5),
			})
		case envelope.TagCiphertext:
			if len(bundles) == 0 {
				return nil, protoerr.New(protoerr.FormatError, "ciphertext field precedes any recipient")
			}
			pid, ct, err := unpackPrimitive(f.Value)
			if err != nil {
				return nil, err
			}
			bundles[len(bundles)-1].Ciphertexts[pid] = append([]byte{}, ct...)
		}
	}
	if !haveSender || len(bundles) == 0 {
		return nil, protoerr.New(protoerr.FormatError, "incomplete clutch_kem section")
	}
	return &clutch.Response{CeremonyID: ceremonyID, Sender: sender, Bundles: bundles}, nil
}

// buildSignedEnvelope wraps section in a freshly signed Envelope and
// returns its wire bytes, ready for RelayClient.PublishCeremonyMessage.
func buildSignedEnvelope(
	section envelope.Section,
	priv domaintypes.Ed25519Private,
	pub domaintypes.Ed25519Public,
) ([]byte, error) {
	env, err := envelope.New(time.Now().Unix(), []envelope.Section{section})
	if err != nil {
		return nil, err
	}
	env.Sign(priv, pub)
	return envelope.Marshal(env)
}

// parseSignedEnvelope unmarshals and verifies data, dropping it silently
// on any format or signature failure. The
// embedded SignerPublicKey is trusted on first contact (TOFU), mirroring
// the relay-observed canary's key-change detection rather than an
// independent certificate chain.
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
