package types

// ParticipantChain is one party's 512-link rolling key state: a 512 x 32-byte array plus the last acknowledged timestamp.
// Indices [0,256) are history (initially zero), [256,512) are active, and
// index 511 is the current key.
type ParticipantChain struct {
	Links       [512][32]byte `json:"links"`
	LastAckTime int64         `json:"last_ack_time"`

	// LastPlaintext is the plaintext of the most recent message on this
	// chain's direction, needed to derive the next message's salt. The
	// sender sets it on its own chain when encrypting; a receiver sets it on
	// its copy of the sender's chain after decrypting.
	LastPlaintext []byte `json:"last_plaintext,omitempty"`

	// LastMsgHP is the envelope provenance hash to embed as prev_msg_hp in
	// the next message on this chain's direction, or the first-message
	// anchor before any message has been sent.
	LastMsgHP [32]byte `json:"last_msg_hp"`
}

// Current returns the chain's current key, link[511].
func (c *ParticipantChain) Current() [32]byte { return c.Links[511] }

// FriendshipChains is the set of N ParticipantChains for one ceremony, plus
// the sorted handle hashes and the friendship identifier.
type FriendshipChains struct {
	FriendshipID FriendshipID                 `json:"friendship_id"`
	HandleHashes []HandleHash                 `json:"handle_hashes"`
	Chains       map[string]*ParticipantChain `json:"chains"` // keyed by HandleHash.String()

	// Handles recovers the plaintext Handle behind each HandleHash in this
	// friendship, keyed by HandleHash.String(). CLUTCH is symmetric: every
	// party already knows every participant's plaintext handle before the
	// ceremony starts, so this is populated once at ceremony completion and
	// never needs the wire itself to carry a plaintext handle.
	Handles map[string]Handle `json:"handles,omitempty"`
}

// PendingMessage is a sender-side message retained until acknowledged.
type PendingMessage struct {
	Timestamp     int64  `json:"timestamp"`
	Plaintext     []byte `json:"plaintext"`
	PlaintextHash [32]byte `json:"plaintext_hash"`
	WireBytes     []byte `json:"wire_bytes"`
}

// ReceivedMessage is a receiver-side message ordered by timestamp.
type ReceivedMessage struct {
	Timestamp int64  `json:"timestamp"`
	Encrypted []byte `json:"encrypted"`
	Plaintext []byte `json:"plaintext,omitempty"`
}
