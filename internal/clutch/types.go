package clutch

import (
	domaintypes "ciphera/internal/domain/types"
	"ciphera/internal/crypto"
)

// State is one stage of the ceremony state machine.
type State int

const (
	Idle State = iota
	Collecting
	Responding
	Deriving
	Established
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Collecting:
		return "Collecting"
	case Responding:
		return "Responding"
	case Deriving:
		return "Deriving"
	case Established:
		return "Established"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// keyPair is one ephemeral keypair for one bundle primitive.
type keyPair struct {
	public []byte
	secret []byte
}

// Offer is a party's eight ephemeral public keys for a ceremony, tagged with
// the ceremony_id it belongs to. The envelope that carries an Offer has the
// usual provenance hash over its encoded body; that hash is not the
// ceremony_id.
type Offer struct {
	CeremonyID   domaintypes.CeremonyID
	HandleHashes []domaintypes.HandleHash // full sorted participant set
	Sender       domaintypes.HandleHash
	PublicKeys   map[crypto.PrimitiveID][]byte
}

// CiphertextBundle is one recipient's slice of a Response: the KEM
// ciphertexts a sender generated against that recipient's offered public
// keys.
type CiphertextBundle struct {
	Recipient   domaintypes.HandleHash
	Ciphertexts map[crypto.PrimitiveID][]byte
}

// Response carries one sender's per-recipient KEM ciphertext bundles
//. ECDH contributions never appear on the
// wire; each party derives those directly from the peer's offer.
type Response struct {
	CeremonyID domaintypes.CeremonyID
	Sender     domaintypes.HandleHash
	Bundles    []CiphertextBundle
}

func (r *Response) bundleFor(recipient domaintypes.HandleHash) (CiphertextBundle, bool) {
	for _, b := range r.Bundles {
		if b.Recipient == recipient {
			return b, true
		}
	}
	return CiphertextBundle{}, false
}
